package engine

// exchangeRateAmount computes the realized exchange difference between a
// line's recorded company-currency amount and what its foreign-currency
// amount is worth under the rate the statement movement actually used.
// Three derivations apply, first match wins:
//  1. the line currency is the statement's foreign currency: use the
//     statement's own amount / amount-in-currency rate;
//  2. the line currency is the journal currency and there is no foreign
//     currency: use the liquidity line's balance / amount-in-currency rate;
//  3. otherwise: standard conversion at the statement date.
func (e *Engine) exchangeRateAmount(c *stContext, amount, currencyAmount float64, currencyID int64) (float64, error) {
	var derived float64
	switch {
	case c.st.ForeignCurrencyID == currencyID && c.st.AmountCurrency != 0:
		realRate := c.st.Amount / c.st.AmountCurrency
		journalAmount := currencyAmount * realRate
		derived = e.currencies.Convert(journalAmount, c.st.CurrencyID, c.company.CurrencyID, c.st.Date)
	case c.st.CurrencyID == currencyID && c.st.ForeignCurrencyID == 0:
		liquidity, _, _, err := e.ledger.SeekLines(c.st)
		if err != nil {
			return 0, err
		}
		if len(liquidity) == 0 || liquidity[0].AmountCurrency == 0 {
			return 0, nil
		}
		realRate := liquidity[0].Balance() / liquidity[0].AmountCurrency
		derived = e.currencies.Round(c.company.CurrencyID, currencyAmount*realRate)
	default:
		derived = e.currencies.Convert(currencyAmount, currencyID, c.company.CurrencyID, c.st.Date)
	}
	return e.currencies.Round(c.company.CurrencyID, derived-amount), nil
}

// computeExchange synthesizes the exchange gain/loss line for a proposal
// line whose currency or rate disagrees with the statement's, when the
// difference does not round to zero. Nothing is produced for already
// reconciled statement lines.
func (e *Engine) computeExchange(c *stContext, vals *ProposalLine, sourceLineID, auxID int64) (int64, *ProposalLine, error) {
	foreignCurrency := c.st.CurrencyID != c.company.CurrencyID ||
		c.st.ForeignCurrencyID != 0 ||
		vals.CurrencyID != vals.LineCurrencyID
	if !foreignCurrency || c.st.IsReconciled {
		return auxID, nil, nil
	}

	amount, err := e.exchangeRateAmount(c, vals.Amount, vals.CurrencyAmount, vals.LineCurrencyID)
	if err != nil {
		return auxID, nil, err
	}
	if e.currencies.IsZero(vals.LineCurrencyID, amount) {
		return auxID, nil, nil
	}

	accountID := c.company.ExpenseCurrencyExchangeAccountID
	if amount < 0 {
		accountID = c.company.IncomeCurrencyExchangeAccountID
	}
	account, err := e.ledger.Account(accountID)
	if err != nil {
		return auxID, nil, err
	}

	exchange := ProposalLine{
		IsExchangeCounterpart:  true,
		OriginalExchangeLineID: sourceLineID,
		Reference:              auxiliaryReference(auxID),
		AccountID:              account.ID,
		AccountName:            account.DisplayName(),
		Date:                   c.st.Date,
		Name:                   c.label(),
		Kind:                   KindOther,
		CurrencyID:             c.company.CurrencyID,
		LineCurrencyID:         vals.LineCurrencyID,
		CurrencyAmount:         0,
	}
	exchange.setAmount(amount)
	return auxID + 1, &exchange, nil
}
