package engine

import (
	"context"
	"log/slog"
)

// AutoReconcileAll walks the unreconciled statement lines of a journal (all
// journals when journalID is zero) and commits every line whose matched rule
// requests auto reconciliation. Lines reconciled by someone else in the
// meantime are skipped silently; individual failures are logged and do not
// stop the batch. It returns the number of lines reconciled.
func (e *Engine) AutoReconcileAll(ctx context.Context, journalID int64) (int, error) {
	lines, err := e.ledger.UnreconciledStatementLines(journalID)
	if err != nil {
		return 0, err
	}

	reconciled := 0
	for i := range lines {
		if err := ctx.Err(); err != nil {
			return reconciled, err
		}

		// Re-check right before acting, the batch may race manual edits.
		st, err := e.ledger.StatementLine(lines[i].ID)
		if err != nil {
			slog.Warn("auto-reconcile skipped",
				"statement_line_id", lines[i].ID, "error", err)
			continue
		}
		if st.IsReconciled {
			continue
		}
		c, err := e.contextFor(st)
		if err != nil {
			slog.Warn("auto-reconcile skipped",
				"statement_line_id", st.ID, "error", err)
			continue
		}

		proposal, auto, err := e.defaultProposal(c, false)
		if err != nil {
			slog.Warn("auto-reconcile skipped",
				"statement_line_id", st.ID, "error", err)
			continue
		}
		if !auto || !proposal.CanReconcile {
			continue
		}
		if err := e.saveProposal(c, proposal); err != nil {
			return reconciled, err
		}
		if err := e.Reconcile(st.ID); err != nil {
			slog.Warn("auto-reconcile failed",
				"statement_line_id", st.ID, "error", err)
			continue
		}
		reconciled++
		slog.Debug("auto-reconciled statement line",
			"statement_line_id", st.ID, "journal_id", st.JournalID)
	}
	return reconciled, nil
}
