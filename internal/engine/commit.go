package engine

import (
	"errors"
	"fmt"

	"github.com/openledger-dev/bank-reconcile/internal/ledger"
	"github.com/openledger-dev/bank-reconcile/internal/model"
)

// ErrSuspenseNotAllowed is returned when a keep-mode commit is attempted on a
// proposal that still carries a suspense line. Suspense lines on commit are
// only valid under the edit strategy.
var ErrSuspenseNotAllowed = errors.New("suspense line not allowed in keep mode")

// CommitStrategy persists a finalized proposal as ledger lines and undoes a
// committed one. The two variants are selected by the journal's reconcile
// mode.
type CommitStrategy interface {
	Commit(tx *ledger.Tx, c *stContext, p *Proposal) error
	Unreconcile(c *stContext) error
}

func (e *Engine) strategyFor(journal *model.Journal) CommitStrategy {
	if journal.ReconcileMode == model.ReconcileModeKeep {
		return &KeepStrategy{engine: e}
	}
	return &EditStrategy{engine: e}
}

// Reconcile commits the current proposal of a statement line under the
// journal's configured strategy, inside a single transaction. The stored
// snapshot is dropped afterwards so the next read derives from the posted
// entry.
func (e *Engine) Reconcile(statementLineID int64) error {
	c, err := e.contextByID(statementLineID)
	if err != nil {
		return err
	}
	if c.st.IsReconciled {
		return nil
	}
	proposal, err := e.currentProposal(c)
	if err != nil {
		return err
	}
	if !proposal.CanReconcile {
		return ErrCannotReconcile
	}

	committed := *proposal
	committed.Data = prepareCommitLines(proposal.Data)

	strategy := e.strategyFor(c.journal)
	err = e.ledger.Transaction(func(tx *ledger.Tx) error {
		if err := strategy.Commit(tx, c, &committed); err != nil {
			return err
		}
		return tx.SetStatementLineReconciled(c.st.ID, true)
	})
	if err != nil {
		return err
	}
	c.st.IsReconciled = true
	if err := e.snapshots.Delete(statementLineID); err != nil {
		return fmt.Errorf("failed to delete proposal snapshot: %w", err)
	}
	return nil
}

// Unreconcile undoes a committed reconciliation and restores an editable
// default proposal. Unreconciling a line that is not reconciled is a no-op.
func (e *Engine) Unreconcile(statementLineID int64) error {
	c, err := e.contextByID(statementLineID)
	if err != nil {
		return err
	}
	if !c.st.IsReconciled {
		return nil
	}

	strategy := e.strategyFor(c.journal)
	if err := strategy.Unreconcile(c); err != nil {
		return err
	}
	c.st.IsReconciled = false
	return nil
}

// prepareCommitLines folds every exchange difference line into the
// counterpart it belongs to and drops it from the committed set. The posted
// counterpart then carries the amount at the statement date while its currency
// amount keeps the matched line's rate, and the realized gain or loss is left
// to the ledger to post as a separate exchange entry.
func prepareCommitLines(data []ProposalLine) []ProposalLine {
	exchanges := map[int64][]*ProposalLine{}
	for i := range data {
		line := &data[i]
		if line.IsExchangeCounterpart && line.OriginalExchangeLineID != 0 {
			exchanges[line.OriginalExchangeLineID] = append(exchanges[line.OriginalExchangeLineID], line)
		}
	}

	prepared := make([]ProposalLine, 0, len(data))
	for i := range data {
		line := data[i]
		if line.IsExchangeCounterpart && line.OriginalExchangeLineID != 0 {
			continue
		}
		if line.LineID != 0 {
			for _, ex := range exchanges[line.LineID] {
				line.Amount += ex.Amount
				line.Debit += ex.Debit
				line.Credit += ex.Credit
			}
		}
		prepared = append(prepared, line)
	}
	return prepared
}

// commitLine turns a proposal line into a move line on the given move.
func commitLine(c *stContext, moveID int64, line *ProposalLine) *model.MoveLine {
	currencyID := line.LineCurrencyID
	amountCurrency := line.CurrencyAmount
	if currencyID == 0 || currencyID == c.company.CurrencyID {
		currencyID = c.company.CurrencyID
		amountCurrency = line.Amount
	}
	return &model.MoveLine{
		MoveID:         moveID,
		CompanyID:      c.company.ID,
		AccountID:      line.AccountID,
		PartnerID:      line.PartnerID,
		Date:           c.st.Date,
		Name:           line.Name,
		Debit:          line.Debit,
		Credit:         line.Credit,
		CurrencyID:     currencyID,
		AmountCurrency: amountCurrency,
	}
}

// EditStrategy rewrites the statement entry in place: the persisted
// non-liquidity lines are replaced with the proposal's and the counterpart
// links are reconciled immediately.
type EditStrategy struct {
	engine *Engine
}

func (s *EditStrategy) Commit(tx *ledger.Tx, c *stContext, p *Proposal) error {
	liquidity, suspense, other, err := tx.SeekLines(c.st)
	if err != nil {
		return err
	}

	var removeIDs []int64
	for _, line := range append(suspense, other...) {
		removeIDs = append(removeIDs, line.ID)
	}
	if err := tx.UnlinkPartialsForLines(removeIDs); err != nil {
		return err
	}
	if err := tx.DeleteMoveLines(removeIDs); err != nil {
		return err
	}

	if c.st.PartnerID != 0 {
		var liquidityIDs []int64
		for _, line := range liquidity {
			liquidityIDs = append(liquidityIDs, line.ID)
		}
		if err := tx.UpdateMoveLinesPartner(liquidityIDs, c.st.PartnerID); err != nil {
			return err
		}
	}

	for i := range p.Data {
		line := &p.Data[i]
		if line.Kind == KindLiquidity {
			continue
		}
		created := commitLine(c, c.st.MoveID, line)
		if _, err := tx.CreateMoveLine(created); err != nil {
			return err
		}
		if len(line.CounterpartLineIDs) > 0 {
			group := append([]int64{created.ID}, line.CounterpartLineIDs...)
			if err := tx.Reconcile(group); err != nil {
				return err
			}
		}
	}
	return nil
}

// Unreconcile rebuilds the proposal from the recorded partial links before
// tearing the entry back down to liquidity plus suspense, so the restored
// proposal shows what had been matched.
func (s *EditStrategy) Unreconcile(c *stContext) error {
	proposal, _, err := s.engine.defaultProposal(c, true)
	if err != nil {
		return err
	}
	err = s.engine.ledger.Transaction(func(tx *ledger.Tx) error {
		return tx.UndoReconciliation(c.st)
	})
	if err != nil {
		return err
	}
	return s.engine.saveProposal(c, proposal)
}

// KeepStrategy leaves the statement entry untouched and posts a counter
// entry: negated copies of the persisted suspense and counterpart lines plus
// the proposal's non-liquidity lines, each copy reconciled against the line
// it cancels.
type KeepStrategy struct {
	engine *Engine
}

func (s *KeepStrategy) Commit(tx *ledger.Tx, c *stContext, p *Proposal) error {
	for i := range p.Data {
		if p.Data[i].Kind == KindSuspense {
			return ErrSuspenseNotAllowed
		}
	}

	_, suspense, other, err := tx.SeekLines(c.st)
	if err != nil {
		return err
	}

	counterMove := &model.Move{
		CompanyID:       c.company.ID,
		JournalID:       c.journal.ID,
		Date:            c.st.Date,
		Ref:             c.label(),
		State:           model.MoveStateDraft,
		StatementLineID: c.st.ID,
	}
	if _, err := tx.CreateMove(counterMove); err != nil {
		return err
	}

	type reconcileGroup struct {
		lineIDs []int64
	}
	var groups []reconcileGroup
	for _, original := range append(suspense, other...) {
		negated := &model.MoveLine{
			MoveID:         counterMove.ID,
			CompanyID:      original.CompanyID,
			AccountID:      original.AccountID,
			PartnerID:      original.PartnerID,
			Date:           c.st.Date,
			Name:           original.Name,
			Debit:          original.Credit,
			Credit:         original.Debit,
			CurrencyID:     original.CurrencyID,
			AmountCurrency: -original.AmountCurrency,
		}
		if _, err := tx.CreateMoveLine(negated); err != nil {
			return err
		}
		groups = append(groups, reconcileGroup{lineIDs: []int64{original.ID, negated.ID}})
	}

	for i := range p.Data {
		line := &p.Data[i]
		if line.Kind == KindLiquidity {
			continue
		}
		created := commitLine(c, counterMove.ID, line)
		if _, err := tx.CreateMoveLine(created); err != nil {
			return err
		}
		if len(line.CounterpartLineIDs) > 0 {
			groups = append(groups, reconcileGroup{
				lineIDs: append([]int64{created.ID}, line.CounterpartLineIDs...),
			})
		}
	}

	if err := tx.PostMove(counterMove.ID); err != nil {
		return err
	}
	for _, group := range groups {
		if err := tx.Reconcile(group.lineIDs); err != nil {
			return err
		}
	}
	return nil
}

// Unreconcile reverses the posted counter entries instead of deleting them,
// keeping the audit trail intact, then rebuilds the default proposal.
func (s *KeepStrategy) Unreconcile(c *stContext) error {
	err := s.engine.ledger.Transaction(func(tx *ledger.Tx) error {
		moves, err := tx.MovesByStatementLine(c.st.ID)
		if err != nil {
			return err
		}
		for _, move := range moves {
			if move.ID == c.st.MoveID || move.State != model.MoveStatePosted {
				continue
			}
			reversalID, err := tx.ReverseMove(move.ID, c.st.Date, move.Ref)
			if err != nil {
				return err
			}
			if err := closeAgainstReversal(tx, move.ID, reversalID); err != nil {
				return err
			}
			// Once reversed the counter entry must not be picked up again.
			if err := tx.DetachMoveFromStatementLine(move.ID); err != nil {
				return err
			}
		}
		return tx.SetStatementLineReconciled(c.st.ID, false)
	})
	if err != nil {
		return err
	}
	c.st.IsReconciled = false
	proposal, _, err := s.engine.defaultProposal(c, false)
	if err != nil {
		return err
	}
	return s.engine.saveProposal(c, proposal)
}

// closeAgainstReversal reconciles each line of a reversed move against its
// mirror on the reversal entry, account by account, so neither entry is left
// with open residuals.
func closeAgainstReversal(tx *ledger.Tx, moveID, reversalID int64) error {
	original, err := tx.MoveLines(moveID)
	if err != nil {
		return err
	}
	reversed, err := tx.MoveLines(reversalID)
	if err != nil {
		return err
	}
	byAccount := map[int64][]int64{}
	for _, line := range original {
		byAccount[line.AccountID] = append(byAccount[line.AccountID], line.ID)
	}
	for _, line := range reversed {
		byAccount[line.AccountID] = append(byAccount[line.AccountID], line.ID)
	}
	for _, lineIDs := range byAccount {
		if err := tx.Reconcile(lineIDs); err != nil {
			return err
		}
	}
	return nil
}
