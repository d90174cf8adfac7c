package api

import (
	"encoding/json"
	"net/http"

	"github.com/openledger-dev/bank-reconcile/internal/engine"
	"github.com/openledger-dev/bank-reconcile/internal/ledger"
)

// ReconcileHandler handles batch reconciliation and statistics endpoints.
type ReconcileHandler struct {
	engine *engine.Engine
	store  *ledger.Store
}

// NewReconcileHandler creates a new ReconcileHandler.
func NewReconcileHandler(e *engine.Engine, store *ledger.Store) *ReconcileHandler {
	return &ReconcileHandler{engine: e, store: store}
}

// AutoReconcile handles POST /api/1/auto_reconcile.
func (h *ReconcileHandler) AutoReconcile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		JournalID int64 `json:"journal_id"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid_request", "Failed to parse request body")
			return
		}
	}

	count, err := h.engine.AutoReconcileAll(r.Context(), req.JournalID)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "server_error", "Auto reconciliation failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"reconciled": count})
}

// Stats handles GET /api/1/stats.
func (h *ReconcileHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.Stats()
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "server_error", "Failed to compute stats")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"journals": stats})
}
