package engine

import (
	"errors"
	"fmt"
	"math"
)

// ErrLineNotFound is returned when a mutation references a proposal line that
// is not part of the current proposal.
var ErrLineNotFound = errors.New("proposal line not found")

// AddMoveLine toggles an open move line on the proposal: when the line is not
// yet a counterpart it is added, capped to the pending proposal amount, when
// it already is one it is removed together with its exchange line.
func (e *Engine) AddMoveLine(statementLineID, moveLineID int64) (*Proposal, error) {
	return e.addMoveLines(statementLineID, []int64{moveLineID}, false)
}

// AddMoveLines adds several open move lines to the proposal in one pass.
// Unlike the single-line toggle, lines that are already counterparts stay on
// the proposal untouched.
func (e *Engine) AddMoveLines(statementLineID int64, moveLineIDs []int64) (*Proposal, error) {
	return e.addMoveLines(statementLineID, moveLineIDs, true)
}

func (e *Engine) addMoveLines(statementLineID int64, moveLineIDs []int64, keepCurrent bool) (*Proposal, error) {
	c, err := e.contextByID(statementLineID)
	if err != nil {
		return nil, err
	}
	proposal, err := e.currentProposal(c)
	if err != nil {
		return nil, err
	}

	data := proposal.Data
	auxID := proposal.ReconcileAuxiliaryID
	for _, moveLineID := range moveLineIDs {
		data, auxID, err = e.addMoveLine(c, data, moveLineID, auxID, keepCurrent)
		if err != nil {
			return nil, err
		}
	}

	updated, err := e.recomputeSuspense(c, data, auxID, proposal.ManualReference)
	if err != nil {
		return nil, err
	}
	return updated, e.saveProposal(c, updated)
}

func (e *Engine) addMoveLine(c *stContext, data []ProposalLine, moveLineID, auxID int64, keepCurrent bool) ([]ProposalLine, int64, error) {
	reconcileCurrencyID := c.reconcileCurrency()

	newData := make([]ProposalLine, 0, len(data)+2)
	isNewLine := true
	var pendingAmount float64
	for i := range data {
		line := data[i]
		if line.Kind != KindSuspense {
			// The pending amount accumulates in the reconcile currency so a
			// foreign line added next is capped against it at face value.
			pendingAmount += e.amountInCurrency(c, &line, reconcileCurrencyID)
		}
		if line.hasCounterpart(moveLineID) || line.OriginalExchangeLineID == moveLineID {
			isNewLine = false
			if keepCurrent {
				newData = append(newData, line)
			}
			continue
		}
		newData = append(newData, line)
	}
	if !isNewLine {
		return newData, auxID, nil
	}

	moveLine, err := e.ledger.MoveLine(moveLineID)
	if err != nil {
		return nil, auxID, fmt.Errorf("failed to load move line %d: %w", moveLineID, err)
	}
	auxID, lines, err := e.buildLine(c, moveLine, KindOther, auxID, buildOptions{
		isCounterpart:       true,
		maxAmount:           e.currencies.Round(reconcileCurrencyID, pendingAmount),
		maxAmountCurrencyID: reconcileCurrencyID,
	})
	if err != nil {
		return nil, auxID, err
	}
	return append(newData, lines...), auxID, nil
}

// amountInCurrency expresses a proposal line's amount in the given currency,
// taking the line's own currency amount when it already matches.
func (e *Engine) amountInCurrency(c *stContext, line *ProposalLine, currencyID int64) float64 {
	if currencyID == c.company.CurrencyID {
		return line.Amount
	}
	if line.LineCurrencyID == currencyID {
		return line.CurrencyAmount
	}
	return e.currencies.Convert(line.Amount, c.company.CurrencyID, currencyID, c.st.Date)
}

// ApplyModel replaces every non-liquidity line of the proposal with the
// write-off lines of the given model.
func (e *Engine) ApplyModel(statementLineID, modelID int64) (*Proposal, error) {
	c, err := e.contextByID(statementLineID)
	if err != nil {
		return nil, err
	}
	proposal, err := e.currentProposal(c)
	if err != nil {
		return nil, err
	}
	writeOffModel, err := e.rules.ModelByID(modelID)
	if err != nil {
		return nil, fmt.Errorf("failed to load reconcile model %d: %w", modelID, err)
	}

	newData := make([]ProposalLine, 0, len(proposal.Data))
	for _, line := range proposal.Data {
		if line.Kind == KindLiquidity {
			newData = append(newData, line)
		}
	}
	newData, auxID, err := e.applyWriteOffModel(c, newData, writeOffModel, proposal.ReconcileAuxiliaryID)
	if err != nil {
		return nil, err
	}

	updated, err := e.recomputeSuspense(c, newData, auxID, "")
	if err != nil {
		return nil, err
	}
	return updated, e.saveProposal(c, updated)
}

// LineEdit is a partial update of one proposal line. Nil fields are left
// untouched. Amount is in company currency, CurrencyAmount in the line's own
// currency; setting either re-derives the other.
type LineEdit struct {
	Name           *string
	AccountID      *int64
	PartnerID      *int64
	Amount         *float64
	CurrencyAmount *float64
}

// UpdateLine applies a manual edit to a proposal line. Editing the suspense
// line turns it into a manual line and lets the recompute open a fresh
// suspense for whatever is still unbalanced. Amount edits on counterpart
// lines recompute their exchange difference line in lock-step.
func (e *Engine) UpdateLine(statementLineID int64, reference string, edit LineEdit) (*Proposal, error) {
	c, err := e.contextByID(statementLineID)
	if err != nil {
		return nil, err
	}
	proposal, err := e.currentProposal(c)
	if err != nil {
		return nil, err
	}
	line := proposal.Line(reference)
	if line == nil {
		return nil, fmt.Errorf("%w: %s", ErrLineNotFound, reference)
	}

	if line.Kind == KindSuspense {
		line.Kind = KindOther
	}
	if edit.Name != nil {
		line.Name = *edit.Name
	}
	if edit.AccountID != nil {
		account, err := e.ledger.Account(*edit.AccountID)
		if err != nil {
			return nil, fmt.Errorf("failed to load account %d: %w", *edit.AccountID, err)
		}
		line.AccountID = account.ID
		line.AccountName = account.DisplayName()
	}
	if edit.PartnerID != nil {
		if *edit.PartnerID == 0 {
			line.PartnerID = 0
			line.PartnerName = ""
		} else {
			partner, err := e.ledger.Partner(*edit.PartnerID)
			if err != nil {
				return nil, fmt.Errorf("failed to load partner %d: %w", *edit.PartnerID, err)
			}
			line.PartnerID = partner.ID
			line.PartnerName = partner.Name
		}
	}

	amountChanged := false
	switch {
	case edit.CurrencyAmount != nil:
		line.CurrencyAmount = *edit.CurrencyAmount
		amount := line.CurrencyAmount
		if line.LineCurrencyID != c.company.CurrencyID {
			// A matched line converts at its own date so the historical rate
			// is preserved and the exchange line absorbs the difference.
			date := c.st.Date
			if line.LineID != 0 && line.Kind != KindLiquidity {
				date = line.Date
			}
			amount = e.currencies.Convert(line.CurrencyAmount, line.LineCurrencyID, c.company.CurrencyID, date)
		}
		line.setAmount(amount)
		amountChanged = true
	case edit.Amount != nil:
		line.setAmount(*edit.Amount)
		line.CurrencyAmount = line.Amount
		if line.LineCurrencyID != c.company.CurrencyID {
			line.CurrencyAmount = e.currencies.Convert(line.Amount, c.company.CurrencyID, line.LineCurrencyID, c.st.Date)
		}
		amountChanged = true
	}

	auxID := proposal.ReconcileAuxiliaryID
	data := proposal.Data
	if amountChanged && line.LineID != 0 && !line.IsExchangeCounterpart {
		data, auxID, err = e.refreshExchangeLine(c, data, line.LineID, auxID)
		if err != nil {
			return nil, err
		}
	}

	updated, err := e.recomputeSuspense(c, data, auxID, reference)
	if err != nil {
		return nil, err
	}
	return updated, e.saveProposal(c, updated)
}

// refreshExchangeLine drops the exchange line attached to a source move line
// and synthesizes a fresh one from the source's current amounts.
func (e *Engine) refreshExchangeLine(c *stContext, data []ProposalLine, sourceLineID, auxID int64) ([]ProposalLine, int64, error) {
	newData := make([]ProposalLine, 0, len(data)+1)
	var source *ProposalLine
	for i := range data {
		line := data[i]
		if line.IsExchangeCounterpart && line.OriginalExchangeLineID == sourceLineID {
			continue
		}
		newData = append(newData, line)
		if line.LineID == sourceLineID && !line.IsExchangeCounterpart {
			source = &newData[len(newData)-1]
		}
	}
	if source == nil {
		return newData, auxID, nil
	}
	auxID, exchange, err := e.computeExchange(c, source, sourceLineID, auxID)
	if err != nil {
		return nil, auxID, err
	}
	if exchange != nil {
		newData = append(newData, *exchange)
	}
	return newData, auxID, nil
}

// DeleteLine removes a proposal line. Removing a counterpart also removes its
// exchange line, removing the focused line clears the manual reference.
func (e *Engine) DeleteLine(statementLineID int64, reference string) (*Proposal, error) {
	c, err := e.contextByID(statementLineID)
	if err != nil {
		return nil, err
	}
	proposal, err := e.currentProposal(c)
	if err != nil {
		return nil, err
	}
	target := proposal.Line(reference)
	if target == nil {
		return nil, fmt.Errorf("%w: %s", ErrLineNotFound, reference)
	}

	newData := make([]ProposalLine, 0, len(proposal.Data))
	for _, line := range proposal.Data {
		if line.Reference == reference {
			continue
		}
		if target.LineID != 0 && line.IsExchangeCounterpart && line.OriginalExchangeLineID == target.LineID {
			continue
		}
		newData = append(newData, line)
	}

	manualReference := proposal.ManualReference
	if manualReference == reference {
		manualReference = ""
	}
	updated, err := e.recomputeSuspense(c, newData, proposal.ReconcileAuxiliaryID, manualReference)
	if err != nil {
		return nil, err
	}
	return updated, e.saveProposal(c, updated)
}

// FullPay restores a capped counterpart line to the full open amount of its
// move line, rebuilding its exchange difference along the way.
func (e *Engine) FullPay(statementLineID int64, reference string) (*Proposal, error) {
	c, err := e.contextByID(statementLineID)
	if err != nil {
		return nil, err
	}
	proposal, err := e.currentProposal(c)
	if err != nil {
		return nil, err
	}
	line := proposal.Line(reference)
	if line == nil {
		return nil, fmt.Errorf("%w: %s", ErrLineNotFound, reference)
	}
	if line.LineID == 0 || line.Kind != KindOther || line.IsExchangeCounterpart {
		return proposal, nil
	}
	if line.OriginalAmountUnsigned == 0 ||
		e.currencies.Compare(c.company.CurrencyID, math.Abs(line.Amount), line.OriginalAmountUnsigned) == 0 {
		return proposal, nil
	}

	moveLine, err := e.ledger.MoveLine(line.LineID)
	if err != nil {
		return nil, fmt.Errorf("failed to load move line %d: %w", line.LineID, err)
	}

	newData := make([]ProposalLine, 0, len(proposal.Data)+1)
	for _, existing := range proposal.Data {
		if existing.Reference == reference {
			continue
		}
		if existing.IsExchangeCounterpart && existing.OriginalExchangeLineID == line.LineID {
			continue
		}
		newData = append(newData, existing)
	}

	auxID, lines, err := e.buildLine(c, moveLine, KindOther, proposal.ReconcileAuxiliaryID,
		buildOptions{isCounterpart: true})
	if err != nil {
		return nil, err
	}
	newData = append(newData, lines...)

	updated, err := e.recomputeSuspense(c, newData, auxID, reference)
	if err != nil {
		return nil, err
	}
	return updated, e.saveProposal(c, updated)
}
