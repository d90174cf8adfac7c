package engine

import (
	"github.com/openledger-dev/bank-reconcile/internal/model"
)

// defaultProposal builds the initial proposal of a statement line: liquidity
// lines, then whatever the matching rules propose, else the lines already
// reconciled against the entry (when rebuilding after an unreconcile).
// The second return value reports whether a matched rule requested an
// immediate commit.
func (e *Engine) defaultProposal(c *stContext, fromUnreconcile bool) (*Proposal, bool, error) {
	liquidity, _, other, err := e.ledger.SeekLines(c.st)
	if err != nil {
		return nil, false, err
	}

	var data []ProposalLine
	auxID := int64(1)
	var liquidityTotal float64
	for i := range liquidity {
		var lines []ProposalLine
		auxID, lines, err = e.buildLine(c, &liquidity[i], KindLiquidity, auxID, buildOptions{})
		if err != nil {
			return nil, false, err
		}
		data = append(data, lines...)
		liquidityTotal += liquidity[i].Balance()
	}

	if !fromUnreconcile {
		partner, err := e.partners.Resolve(c.st)
		if err != nil {
			return nil, false, err
		}
		res, err := e.rules.ApplyRules(c.st, partner)
		if err != nil {
			return nil, false, err
		}
		if res != nil && res.Status == MatchStatusWriteOff {
			data, auxID, err = e.applyWriteOffModel(c, data, res.Model, auxID)
			if err != nil {
				return nil, false, err
			}
			proposal, err := e.recomputeSuspense(c, data, auxID, "")
			return proposal, res.AutoReconcile, err
		}
		if res != nil && len(res.Lines) > 0 {
			budget := liquidityTotal
			for i := range res.Lines {
				if e.currencies.IsZero(c.company.CurrencyID, budget) {
					break
				}
				var lines []ProposalLine
				auxID, lines, err = e.buildLine(c, &res.Lines[i], KindOther, auxID,
					buildOptions{isCounterpart: true, maxAmount: budget})
				if err != nil {
					return nil, false, err
				}
				for _, line := range lines {
					budget += line.Amount
				}
				data = append(data, lines...)
			}
			proposal, err := e.recomputeSuspense(c, data, auxID, "")
			return proposal, res.AutoReconcile, err
		}
	}

	for i := range other {
		line := &other[i]
		var partials []model.PartialReconcile
		if fromUnreconcile {
			partials, err = e.allPartials(line)
			if err != nil {
				return nil, false, err
			}
		}
		if len(partials) > 0 {
			data, auxID, err = e.rebuildFromPartials(c, line, partials, data, auxID)
			if err != nil {
				return nil, false, err
			}
		} else {
			var lines []ProposalLine
			auxID, lines, err = e.buildLine(c, line, KindOther, auxID, buildOptions{})
			if err != nil {
				return nil, false, err
			}
			data = append(data, lines...)
		}
	}

	proposal, err := e.recomputeSuspense(c, data, auxID, "")
	return proposal, false, err
}

// allPartials walks the transitive closure of partial reconciliations
// reachable from a line. The traversal tracks visited lines and partials so
// cyclic data cannot loop it.
func (e *Engine) allPartials(line *model.MoveLine) ([]model.PartialReconcile, error) {
	account, err := e.ledger.Account(line.AccountID)
	if err != nil {
		return nil, err
	}
	if !account.Reconcile &&
		account.Type != model.AccountTypeCash &&
		account.Type != model.AccountTypeCreditCard {
		return nil, nil
	}

	var partials []model.PartialReconcile
	seenPartials := map[int64]bool{}
	seenLines := map[int64]bool{line.ID: true}
	frontier := []int64{line.ID}
	for len(frontier) > 0 {
		var next []int64
		for _, lineID := range frontier {
			found, err := e.ledger.MatchedPartials(lineID)
			if err != nil {
				return nil, err
			}
			for _, p := range found {
				if seenPartials[p.ID] {
					continue
				}
				seenPartials[p.ID] = true
				partials = append(partials, p)
				for _, other := range []int64{p.DebitLineID, p.CreditLineID} {
					if !seenLines[other] {
						seenLines[other] = true
						next = append(next, other)
					}
				}
			}
		}
		frontier = next
	}
	return partials, nil
}

// rebuildFromPartials reproduces the counterpart lines a previous
// reconciliation recorded, using the partial amounts so partial matches come
// back with their matched share, not their full residual. Lines posted by
// the exchange journal are expanded into their own move's counterpart lines.
func (e *Engine) rebuildFromPartials(c *stContext, line *model.MoveLine, partials []model.PartialReconcile, data []ProposalLine, auxID int64) ([]ProposalLine, int64, error) {
	lineIDs := map[int64]bool{}
	for _, p := range partials {
		lineIDs[p.DebitLineID] = true
		lineIDs[p.CreditLineID] = true
	}
	delete(lineIDs, line.ID)

	ids := make([]int64, 0, len(lineIDs))
	for id := range lineIDs {
		ids = append(ids, id)
	}
	reconciled, err := e.ledger.MoveLinesByIDs(ids)
	if err != nil {
		return nil, auxID, err
	}

	for i := range reconciled {
		reconciledLine := &reconciled[i]
		move, err := e.ledger.Move(reconciledLine.MoveID)
		if err != nil {
			return nil, auxID, err
		}
		if c.company.CurrencyExchangeJournalID != 0 && move.JournalID == c.company.CurrencyExchangeJournalID {
			// Exchange difference entry: bring back its other side.
			moveLines, err := e.ledger.MoveLines(move.ID)
			if err != nil {
				return nil, auxID, err
			}
			for j := range moveLines {
				if moveLines[j].ID == reconciledLine.ID {
					continue
				}
				var lines []ProposalLine
				auxID, lines, err = e.buildLine(c, &moveLines[j], KindOther, auxID, buildOptions{})
				if err != nil {
					return nil, auxID, err
				}
				data = append(data, lines...)
			}
			continue
		}

		var partialAmount, partialCurrencyAmount float64
		for _, p := range partials {
			if p.CreditLineID == reconciledLine.ID {
				partialAmount += p.Amount
				partialCurrencyAmount += p.CreditAmountCurrency
			}
			if p.DebitLineID == reconciledLine.ID {
				partialAmount -= p.Amount
				partialCurrencyAmount -= p.DebitAmountCurrency
			}
		}
		var lines []ProposalLine
		auxID, lines, err = e.buildLine(c, reconciledLine, KindOther, auxID, buildOptions{
			fromUnreconcile: &overrideAmounts{
				amount:         partialAmount,
				currencyAmount: partialCurrencyAmount,
			},
		})
		if err != nil {
			return nil, auxID, err
		}
		data = append(data, lines...)
	}
	return data, auxID, nil
}

// applyWriteOffModel strips any suspense line and expands the model's
// write-off templates against the proposal residual. The model's partner
// mapping takes precedence over the generic resolver; an explicit template
// or statement partner overrides both.
func (e *Engine) applyWriteOffModel(c *stContext, data []ProposalLine, writeOffModel *model.ReconcileModel, auxID int64) ([]ProposalLine, int64, error) {
	newData := make([]ProposalLine, 0, len(data))
	var liquidityAmount float64
	for _, line := range data {
		if line.Kind == KindSuspense {
			continue
		}
		newData = append(newData, line)
		liquidityAmount += line.Amount
	}

	partner, err := e.rules.PartnerFromMapping(writeOffModel, c.st)
	if err != nil {
		return nil, auxID, err
	}
	if partner == nil {
		partner, err = e.partners.Resolve(c.st)
		if err != nil {
			return nil, auxID, err
		}
	}

	currencyID := c.reconcileCurrency()
	journalCurrency := c.journal.CurrencyID
	if journalCurrency == 0 {
		journalCurrency = c.company.CurrencyID
	}
	for _, writeOff := range writeOffModel.WriteOffLines(-liquidityAmount, c.st.PaymentRef) {
		amount := writeOff.Balance
		if c.st.ForeignCurrencyID != 0 {
			amount = e.currencies.Convert(amount, c.st.ForeignCurrencyID, journalCurrency, c.st.Date)
		}
		currencyAmount := amount
		if currencyID != c.company.CurrencyID {
			currencyAmount = e.currencies.Convert(amount, c.company.CurrencyID, currencyID, c.st.Date)
		}

		account, err := e.ledger.Account(writeOff.AccountID)
		if err != nil {
			return nil, auxID, err
		}
		line := ProposalLine{
			Reference:        auxiliaryReference(auxID),
			AccountID:        account.ID,
			AccountName:      account.DisplayName(),
			Date:             c.st.Date,
			Name:             writeOff.Name,
			Kind:             KindOther,
			CurrencyID:       c.company.CurrencyID,
			LineCurrencyID:   currencyID,
			CurrencyAmount:   currencyAmount,
			ReconcileModelID: writeOff.ModelID,
		}
		line.setAmount(amount)
		if line.Name == "" {
			line.Name = c.label()
		}

		switch {
		case writeOff.PartnerID != 0:
			templatePartner, err := e.ledger.Partner(writeOff.PartnerID)
			if err != nil {
				return nil, auxID, err
			}
			line.PartnerID = templatePartner.ID
			line.PartnerName = templatePartner.Name
		case c.st.PartnerID != 0:
			stPartner, err := e.ledger.Partner(c.st.PartnerID)
			if err != nil {
				return nil, auxID, err
			}
			line.PartnerID = stPartner.ID
			line.PartnerName = stPartner.Name
		case partner != nil:
			line.PartnerID = partner.ID
			line.PartnerName = partner.Name
		default:
			line.PartnerName = c.st.PartnerName
		}

		newData = append(newData, line)
		auxID++
	}
	return newData, auxID, nil
}
