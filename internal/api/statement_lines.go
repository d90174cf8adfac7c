// Package api exposes the reconciliation engine over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/openledger-dev/bank-reconcile/internal/engine"
	"github.com/openledger-dev/bank-reconcile/internal/ledger"
	"github.com/openledger-dev/bank-reconcile/internal/model"
)

// StatementLinesHandler handles statement-line reconciliation endpoints.
type StatementLinesHandler struct {
	engine *engine.Engine
	store  *ledger.Store
}

// NewStatementLinesHandler creates a new StatementLinesHandler.
func NewStatementLinesHandler(e *engine.Engine, store *ledger.Store) *StatementLinesHandler {
	return &StatementLinesHandler{engine: e, store: store}
}

func statementLineID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil
}

// List handles GET /api/1/statement_lines.
func (h *StatementLinesHandler) List(w http.ResponseWriter, r *http.Request) {
	var journalID int64
	if raw := r.URL.Query().Get("journal_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Invalid journal_id")
			return
		}
		journalID = id
	}

	lines, err := h.store.UnreconciledStatementLines(journalID)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "server_error", "Failed to list statement lines")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"statement_lines": lines})
}

// Create handles POST /api/1/statement_lines.
func (h *StatementLinesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var st model.StatementLine
	if err := json.NewDecoder(r.Body).Decode(&st); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Failed to parse request body")
		return
	}
	if st.JournalID == 0 {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Missing journal_id")
		return
	}
	if st.Date == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Missing date")
		return
	}

	if err := h.engine.CreateStatementLine(&st); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "server_error", "Failed to create statement line")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"statement_line": st})
}

// Get handles GET /api/1/statement_lines/{id}.
func (h *StatementLinesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := statementLineID(r)
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Invalid statement line ID")
		return
	}
	st, err := h.store.StatementLine(id)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			writeJSONError(w, http.StatusNotFound, "not_found", "Statement line not found")
			return
		}
		writeJSONError(w, http.StatusInternalServerError, "server_error", "Failed to get statement line")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"statement_line": st})
}

// Update handles PUT /api/1/statement_lines/{id}.
func (h *StatementLinesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := statementLineID(r)
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Invalid statement line ID")
		return
	}
	var st model.StatementLine
	if err := json.NewDecoder(r.Body).Decode(&st); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Failed to parse request body")
		return
	}
	st.ID = id

	if err := h.engine.UpdateStatementLine(&st); err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			writeJSONError(w, http.StatusNotFound, "not_found", "Statement line not found")
			return
		}
		writeJSONError(w, http.StatusInternalServerError, "server_error", "Failed to update statement line")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"statement_line": st})
}

// Proposal handles GET /api/1/statement_lines/{id}/proposal.
func (h *StatementLinesHandler) Proposal(w http.ResponseWriter, r *http.Request) {
	h.withProposal(w, r, func(id int64) (*engine.Proposal, error) {
		return h.engine.Proposal(id)
	})
}

// Clean handles POST /api/1/statement_lines/{id}/clean.
func (h *StatementLinesHandler) Clean(w http.ResponseWriter, r *http.Request) {
	h.withProposal(w, r, func(id int64) (*engine.Proposal, error) {
		return h.engine.Clean(id)
	})
}

// Reconcile handles POST /api/1/statement_lines/{id}/reconcile.
func (h *StatementLinesHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	id, ok := statementLineID(r)
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Invalid statement line ID")
		return
	}
	if err := h.engine.Reconcile(id); err != nil {
		switch {
		case errors.Is(err, ledger.ErrNotFound):
			writeJSONError(w, http.StatusNotFound, "not_found", "Statement line not found")
		case errors.Is(err, engine.ErrCannotReconcile):
			writeJSONError(w, http.StatusUnprocessableEntity, "cannot_reconcile", "Proposal is not balanced")
		case errors.Is(err, engine.ErrSuspenseNotAllowed):
			writeJSONError(w, http.StatusUnprocessableEntity, "suspense_not_allowed", "Suspense line not allowed in keep mode")
		default:
			writeJSONError(w, http.StatusInternalServerError, "server_error", "Failed to reconcile")
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"reconciled": true})
}

// Unreconcile handles POST /api/1/statement_lines/{id}/unreconcile.
func (h *StatementLinesHandler) Unreconcile(w http.ResponseWriter, r *http.Request) {
	id, ok := statementLineID(r)
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Invalid statement line ID")
		return
	}
	if err := h.engine.Unreconcile(id); err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			writeJSONError(w, http.StatusNotFound, "not_found", "Statement line not found")
			return
		}
		writeJSONError(w, http.StatusInternalServerError, "server_error", "Failed to unreconcile")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"reconciled": false})
}

// ApplyModel handles POST /api/1/statement_lines/{id}/apply_model.
func (h *StatementLinesHandler) ApplyModel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ModelID int64 `json:"model_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ModelID == 0 {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Missing model_id")
		return
	}
	h.withProposal(w, r, func(id int64) (*engine.Proposal, error) {
		return h.engine.ApplyModel(id, req.ModelID)
	})
}

// AddLine handles POST /api/1/statement_lines/{id}/add_line.
func (h *StatementLinesHandler) AddLine(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LineID int64 `json:"line_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.LineID == 0 {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Missing line_id")
		return
	}
	h.withProposal(w, r, func(id int64) (*engine.Proposal, error) {
		return h.engine.AddMoveLine(id, req.LineID)
	})
}

// AddLines handles POST /api/1/statement_lines/{id}/add_lines. Lines already
// on the proposal are kept rather than toggled off.
func (h *StatementLinesHandler) AddLines(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LineIDs []int64 `json:"line_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.LineIDs) == 0 {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Missing line_ids")
		return
	}
	h.withProposal(w, r, func(id int64) (*engine.Proposal, error) {
		return h.engine.AddMoveLines(id, req.LineIDs)
	})
}

// UpdateLine handles POST /api/1/statement_lines/{id}/update_line.
func (h *StatementLinesHandler) UpdateLine(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Reference      string   `json:"reference"`
		Name           *string  `json:"name"`
		AccountID      *int64   `json:"account_id"`
		PartnerID      *int64   `json:"partner_id"`
		Amount         *float64 `json:"amount"`
		CurrencyAmount *float64 `json:"currency_amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Reference == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Missing reference")
		return
	}
	h.withProposal(w, r, func(id int64) (*engine.Proposal, error) {
		return h.engine.UpdateLine(id, req.Reference, engine.LineEdit{
			Name:           req.Name,
			AccountID:      req.AccountID,
			PartnerID:      req.PartnerID,
			Amount:         req.Amount,
			CurrencyAmount: req.CurrencyAmount,
		})
	})
}

// DeleteLine handles POST /api/1/statement_lines/{id}/delete_line.
func (h *StatementLinesHandler) DeleteLine(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Reference string `json:"reference"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Reference == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Missing reference")
		return
	}
	h.withProposal(w, r, func(id int64) (*engine.Proposal, error) {
		return h.engine.DeleteLine(id, req.Reference)
	})
}

// FullPay handles POST /api/1/statement_lines/{id}/full_pay.
func (h *StatementLinesHandler) FullPay(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Reference string `json:"reference"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Reference == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Missing reference")
		return
	}
	h.withProposal(w, r, func(id int64) (*engine.Proposal, error) {
		return h.engine.FullPay(id, req.Reference)
	})
}

// withProposal runs a proposal-returning operation for the statement line in
// the URL and writes the resulting proposal.
func (h *StatementLinesHandler) withProposal(w http.ResponseWriter, r *http.Request, op func(id int64) (*engine.Proposal, error)) {
	id, ok := statementLineID(r)
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Invalid statement line ID")
		return
	}
	proposal, err := op(id)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrNotFound):
			writeJSONError(w, http.StatusNotFound, "not_found", "Statement line not found")
		case errors.Is(err, engine.ErrLineNotFound):
			writeJSONError(w, http.StatusNotFound, "not_found", "Proposal line not found")
		default:
			writeJSONError(w, http.StatusInternalServerError, "server_error", "Failed to compute proposal")
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"proposal": proposal})
}
