package engine

import (
	"fmt"

	"github.com/openledger-dev/bank-reconcile/internal/ledger"
	"github.com/openledger-dev/bank-reconcile/internal/model"
)

// reconcileDataChanged reports whether the stored proposal drifted away from
// the persisted entry: the liquidity totals of both are compared at currency
// precision. Drift means the entry was changed behind the proposal's back.
func (e *Engine) reconcileDataChanged(c *stContext, p *Proposal) (bool, error) {
	liquidity, _, _, err := e.ledger.SeekLines(c.st)
	if err != nil {
		return false, err
	}

	var debit, credit, currencyAmount float64
	for _, line := range liquidity {
		debit += line.Debit
		credit += line.Credit
		currencyAmount += line.AmountCurrency
	}

	var propDebit, propCredit, propCurrencyAmount float64
	for _, line := range p.Data {
		if line.Kind != KindLiquidity {
			continue
		}
		propDebit += line.Debit
		propCredit += line.Credit
		propCurrencyAmount += line.CurrencyAmount
	}

	companyID := c.company.CurrencyID
	if e.currencies.Compare(companyID, debit, propDebit) != 0 ||
		e.currencies.Compare(companyID, credit, propCredit) != 0 ||
		e.currencies.Compare(c.st.CurrencyID, currencyAmount, propCurrencyAmount) != 0 {
		return true, nil
	}
	return false, nil
}

// UpdateStatementLine persists edits to a statement line and keeps the
// backing entry and the cached proposal in sync. A partner-only change is
// pushed straight onto the persisted lines; a change to the amounts, the date
// or the payment reference rebuilds the backing entry and, when the cached
// proposal no longer matches it, discards the proposal and derives a fresh
// one.
func (e *Engine) UpdateStatementLine(st *model.StatementLine) error {
	current, err := e.ledger.StatementLine(st.ID)
	if err != nil {
		return fmt.Errorf("failed to load statement line %d: %w", st.ID, err)
	}
	st.MoveID = current.MoveID
	st.JournalID = current.JournalID
	st.CompanyID = current.CompanyID
	st.CurrencyID = current.CurrencyID
	st.IsReconciled = current.IsReconciled

	entryChanged := st.Amount != current.Amount ||
		st.AmountCurrency != current.AmountCurrency ||
		st.ForeignCurrencyID != current.ForeignCurrencyID ||
		st.Date != current.Date ||
		st.PaymentRef != current.PaymentRef
	partnerChanged := st.PartnerID != current.PartnerID

	err = e.ledger.Transaction(func(tx *ledger.Tx) error {
		if err := tx.UpdateStatementLine(st); err != nil {
			return err
		}
		if entryChanged && !st.IsReconciled {
			return tx.SyncStatementMove(st)
		}
		return nil
	})
	if err != nil {
		return err
	}

	c, err := e.contextFor(st)
	if err != nil {
		return err
	}

	if partnerChanged && !entryChanged {
		// Partner identity never affects balance, push it through directly.
		return e.pushPartner(c)
	}
	if !entryChanged || st.IsReconciled {
		return nil
	}

	stored, err := e.snapshots.Load(st.ID)
	if err != nil {
		return fmt.Errorf("failed to load proposal snapshot: %w", err)
	}
	if stored != nil {
		changed, err := e.reconcileDataChanged(c, stored)
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}
	}
	proposal, _, err := e.defaultProposal(c, false)
	if err != nil {
		return err
	}
	return e.saveProposal(c, proposal)
}

// pushPartner writes the statement partner onto the persisted liquidity and
// suspense lines without rebuilding the proposal.
func (e *Engine) pushPartner(c *stContext) error {
	liquidity, suspense, _, err := e.ledger.SeekLines(c.st)
	if err != nil {
		return err
	}
	var lineIDs []int64
	for _, line := range append(liquidity, suspense...) {
		lineIDs = append(lineIDs, line.ID)
	}
	return e.ledger.Transaction(func(tx *ledger.Tx) error {
		return tx.UpdateMoveLinesPartner(lineIDs, c.st.PartnerID)
	})
}
