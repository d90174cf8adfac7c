package engine

import (
	"sort"
)

// recomputeSuspense is the single source of truth for proposal balance: it
// recomputes the balancing suspense line from the non-suspense lines and
// derives whether the proposal can be reconciled. Recomputing an already
// balanced proposal is a no-op.
func (e *Engine) recomputeSuspense(c *stContext, data []ProposalLine, auxID int64, manualReference string) (*Proposal, error) {
	canReconcile := true
	var totalAmount, currencyAmount float64
	newData := make([]ProposalLine, 0, len(data)+1)
	var suspenseLine *ProposalLine
	counterpartSet := map[int64]bool{}

	suspenseCurrency := c.st.ForeignCurrencyID
	if suspenseCurrency == 0 {
		suspenseCurrency = c.st.CurrencyID
	}

	for i := range data {
		line := data[i]
		for _, id := range line.CounterpartLineIDs {
			counterpartSet[id] = true
		}
		if line.Kind != KindSuspense &&
			(line.AccountID == c.journal.SuspenseAccountID || line.AccountID == 0) {
			canReconcile = false
		}
		if line.Kind == KindSuspense {
			suspenseLine = &line
			continue
		}
		newData = append(newData, line)
		totalAmount += line.Amount
		if line.IsExchangeCounterpart {
			continue
		}
		switch {
		case line.Kind == KindLiquidity && line.LineCurrencyID != suspenseCurrency:
			// Statement line with a foreign currency: the liquidity side
			// counts for the statement's own foreign amount.
			currencyAmount += c.st.AmountCurrency
		case line.CurrencyAmount != 0 && line.LineCurrencyID == suspenseCurrency:
			currencyAmount += line.CurrencyAmount
		default:
			currencyAmount += e.currencies.Convert(line.Amount, c.company.CurrencyID, suspenseCurrency, c.st.Date)
		}
	}

	if !e.currencies.IsZero(c.company.CurrencyID, totalAmount) {
		canReconcile = false
		if suspenseLine != nil {
			suspenseLine.setAmount(-totalAmount)
			suspenseLine.CurrencyAmount = -currencyAmount
		} else {
			accountID := c.journal.SuspenseAccountID
			partnerID := c.st.PartnerID
			// A clean residual against a known partner is a valid
			// receivable/payable proposal, not a dangling suspense.
			if partnerID != 0 && totalAmount > 0 {
				partner, err := e.ledger.Partner(partnerID)
				if err != nil {
					return nil, err
				}
				canReconcile = true
				accountID = partner.ReceivableAccountID
			} else if partnerID != 0 && totalAmount < 0 {
				partner, err := e.ledger.Partner(partnerID)
				if err != nil {
					return nil, err
				}
				canReconcile = true
				accountID = partner.PayableAccountID
			}
			account, err := e.ledger.Account(accountID)
			if err != nil {
				return nil, err
			}
			line := ProposalLine{
				Reference:      auxiliaryReference(auxID),
				AccountID:      account.ID,
				AccountName:    account.DisplayName(),
				PartnerID:      partnerID,
				PartnerName:    c.st.PartnerName,
				Date:           c.st.Date,
				Name:           c.label(),
				Kind:           KindSuspense,
				CurrencyID:     c.company.CurrencyID,
				LineCurrencyID: suspenseCurrency,
				CurrencyAmount: -currencyAmount,
			}
			line.setAmount(-totalAmount)
			if partnerID != 0 {
				partner, err := e.ledger.Partner(partnerID)
				if err != nil {
					return nil, err
				}
				line.PartnerName = partner.Name
			}
			suspenseLine = &line
			auxID++
		}
		newData = append(newData, *suspenseLine)
	}

	counterparts := make([]int64, 0, len(counterpartSet))
	for id := range counterpartSet {
		counterparts = append(counterparts, id)
	}
	sort.Slice(counterparts, func(i, j int) bool { return counterparts[i] < counterparts[j] })

	return &Proposal{
		Data:                 newData,
		Counterparts:         counterparts,
		ReconcileAuxiliaryID: auxID,
		CanReconcile:         canReconcile,
		ManualReference:      manualReference,
	}, nil
}
