package engine

import (
	"math"

	"github.com/openledger-dev/bank-reconcile/internal/model"
)

// buildOptions tunes how a move line is turned into proposal lines.
type buildOptions struct {
	// isCounterpart builds the line as an offset of the source line's open
	// residual, linking it for reconciliation on commit.
	isCounterpart bool

	// maxAmount caps the produced amount in magnitude, zero means no cap.
	// It is expressed in the currency named by maxAmountCurrencyID, or in
	// company currency when that is zero.
	maxAmount           float64
	maxAmountCurrencyID int64

	// fromUnreconcile overrides the produced amounts, used when rebuilding
	// a proposal from recorded partial reconciliations.
	fromUnreconcile *overrideAmounts
}

// overrideAmounts carries explicit amounts for a rebuilt line.
type overrideAmounts struct {
	amount         float64
	currencyAmount float64
}

// buildLine converts a move line into proposal lines: the line itself plus,
// for counterpart and manual kinds, any exchange difference line its currency
// mismatch requires. It returns the updated auxiliary counter.
func (e *Engine) buildLine(c *stContext, line *model.MoveLine, kind Kind, auxID int64, opts buildOptions) (int64, []ProposalLine, error) {
	var amount, currencyAmount, originalUnsigned float64

	switch {
	case opts.isCounterpart:
		// The counterpart offsets what is still open on the source line.
		amount = -line.AmountResidual
		currencyAmount = -line.AmountResidualCurrency
		originalUnsigned = math.Abs(line.AmountResidual)
		if opts.maxAmount != 0 {
			capCurrencyID := opts.maxAmountCurrencyID
			if capCurrencyID == 0 {
				capCurrencyID = c.company.CurrencyID
			}
			if capCurrencyID != c.company.CurrencyID && capCurrencyID == line.CurrencyID {
				// Cap and line share a foreign currency: cap at face value
				// and rate the company amount at the line's own date.
				if math.Abs(currencyAmount) > math.Abs(opts.maxAmount) {
					currencyAmount = math.Copysign(math.Abs(opts.maxAmount), currencyAmount)
					companyCap := e.currencies.Convert(math.Abs(currencyAmount), line.CurrencyID, c.company.CurrencyID, line.Date)
					amount = math.Copysign(companyCap, amount)
				}
			} else {
				maxCompany := math.Abs(opts.maxAmount)
				if capCurrencyID != c.company.CurrencyID {
					maxCompany = math.Abs(e.currencies.Convert(maxCompany, capCurrencyID, c.company.CurrencyID, c.st.Date))
				}
				if math.Abs(amount) > maxCompany {
					currencyCap := e.currencies.Convert(maxCompany, c.company.CurrencyID, line.CurrencyID, line.Date)
					currencyAmount = math.Copysign(currencyCap, currencyAmount)
					amount = math.Copysign(maxCompany, amount)
				}
			}
		}
	case opts.fromUnreconcile != nil:
		amount = opts.fromUnreconcile.amount
		currencyAmount = opts.fromUnreconcile.currencyAmount
	default:
		amount = line.Balance()
		currencyAmount = line.AmountCurrency
	}

	account, err := e.ledger.Account(line.AccountID)
	if err != nil {
		return auxID, nil, err
	}

	vals := ProposalLine{
		Reference:              lineReference(line.ID),
		LineID:                 line.ID,
		AccountID:              account.ID,
		AccountName:            account.DisplayName(),
		Date:                   line.Date,
		Name:                   line.Name,
		Kind:                   kind,
		CurrencyID:             c.company.CurrencyID,
		LineCurrencyID:         line.CurrencyID,
		CurrencyAmount:         currencyAmount,
		OriginalAmountUnsigned: originalUnsigned,
	}
	vals.setAmount(amount)
	if vals.Name == "" {
		vals.Name = c.label()
	}
	if opts.isCounterpart {
		vals.CounterpartLineIDs = []int64{line.ID}
	}

	if line.PartnerID != 0 {
		partner, err := e.ledger.Partner(line.PartnerID)
		if err != nil {
			return auxID, nil, err
		}
		vals.PartnerID = partner.ID
		vals.PartnerName = partner.Name
	} else {
		// Display-only placeholder from the bank file.
		vals.PartnerName = c.st.PartnerName
	}

	result := []ProposalLine{vals}
	if kind != KindSuspense && kind != KindLiquidity {
		var exchange *ProposalLine
		auxID, exchange, err = e.computeExchange(c, &result[0], line.ID, auxID)
		if err != nil {
			return auxID, nil, err
		}
		if exchange != nil {
			result = append(result, *exchange)
		}
	}
	return auxID, result, nil
}
