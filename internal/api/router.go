package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/openledger-dev/bank-reconcile/internal/engine"
	"github.com/openledger-dev/bank-reconcile/internal/ledger"
)

// NewRouter wires the reconciliation API.
func NewRouter(e *engine.Engine, store *ledger.Store) chi.Router {
	linesHandler := NewStatementLinesHandler(e, store)
	reconcileHandler := NewReconcileHandler(e, store)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/api/1", func(r chi.Router) {
		r.Route("/statement_lines", func(r chi.Router) {
			r.Get("/", linesHandler.List)
			r.Post("/", linesHandler.Create)
			r.Get("/{id}", linesHandler.Get)
			r.Put("/{id}", linesHandler.Update)
			r.Get("/{id}/proposal", linesHandler.Proposal)
			r.Post("/{id}/clean", linesHandler.Clean)
			r.Post("/{id}/reconcile", linesHandler.Reconcile)
			r.Post("/{id}/unreconcile", linesHandler.Unreconcile)
			r.Post("/{id}/apply_model", linesHandler.ApplyModel)
			r.Post("/{id}/add_line", linesHandler.AddLine)
			r.Post("/{id}/add_lines", linesHandler.AddLines)
			r.Post("/{id}/update_line", linesHandler.UpdateLine)
			r.Post("/{id}/delete_line", linesHandler.DeleteLine)
			r.Post("/{id}/full_pay", linesHandler.FullPay)
		})
		r.Post("/auto_reconcile", reconcileHandler.AutoReconcile)
		r.Get("/stats", reconcileHandler.Stats)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	return r
}
