package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openledger-dev/bank-reconcile/internal/ledger"
	"github.com/openledger-dev/bank-reconcile/internal/model"
)

// postUSDInvoice posts a receivable invoice denominated in USD, recorded at
// the company-currency value of the given date.
func (env *testEnv) postUSDInvoice(t *testing.T, date string, usdAmount float64, name string) *model.MoveLine {
	t.Helper()
	eurAmount := env.service.Convert(usdAmount, currencyUSD, currencyEUR, date)

	move := &model.Move{CompanyID: 1, JournalID: journalBankUSD, Date: date, Ref: name, State: model.MoveStatePosted}
	_, err := env.store.CreateMove(move)
	require.NoError(t, err)

	receivable := &model.MoveLine{
		MoveID: move.ID, CompanyID: 1, AccountID: accountReceivable,
		PartnerID: partnerAcme, Date: date, Name: name,
		Debit: eurAmount, CurrencyID: currencyUSD, AmountCurrency: usdAmount,
	}
	_, err = env.store.CreateMoveLine(receivable)
	require.NoError(t, err)

	income := &model.MoveLine{
		MoveID: move.ID, CompanyID: 1, AccountID: accountIncome,
		PartnerID: partnerAcme, Date: date, Name: name,
		Credit: eurAmount, CurrencyID: currencyUSD, AmountCurrency: -usdAmount,
	}
	_, err = env.store.CreateMoveLine(income)
	require.NoError(t, err)
	return receivable
}

func TestExchangeGainOnRateMovement(t *testing.T) {
	env := newTestEnv(t)

	// Invoiced at 0.80, paid when the rate is 0.90: the 100 USD receivable
	// was booked at 80 EUR but the bank received 90 EUR.
	invoice := env.postUSDInvoice(t, "2024-01-05", 100, "INV/USD/001")
	require.InDelta(t, 80, invoice.Debit, 1e-9)

	st := env.createStatementLine(t, &model.StatementLine{
		JournalID: journalBankUSD, Date: "2024-06-15", PaymentRef: "ACME USD", Amount: 100,
	})
	require.Equal(t, currencyUSD, st.CurrencyID)

	_, err := env.engine.Proposal(st.ID)
	require.NoError(t, err)
	proposal, err := env.engine.AddMoveLine(st.ID, invoice.ID)
	require.NoError(t, err)

	counterpart := proposal.Line(lineReference(invoice.ID))
	require.NotNil(t, counterpart)
	assert.InDelta(t, -80, counterpart.Amount, 1e-9)
	assert.InDelta(t, -100, counterpart.CurrencyAmount, 1e-9)

	var exchange *ProposalLine
	for i := range proposal.Data {
		if proposal.Data[i].IsExchangeCounterpart {
			exchange = &proposal.Data[i]
		}
	}
	require.NotNil(t, exchange)
	assert.Equal(t, invoice.ID, exchange.OriginalExchangeLineID)
	assert.Equal(t, accountFXIncome, exchange.AccountID)
	assert.InDelta(t, -10, exchange.Amount, 1e-9)
	assert.True(t, IsAuxiliaryReference(exchange.Reference))

	// Liquidity 90, counterpart -80, exchange -10: balanced without suspense.
	assert.Nil(t, suspenseOf(proposal))
	assert.InDelta(t, 0, proposalTotal(proposal), 1e-9)
	assert.True(t, proposal.CanReconcile)
}

func TestExchangeLineClosesForeignInvoiceOnCommit(t *testing.T) {
	env := newTestEnv(t)
	invoice := env.postUSDInvoice(t, "2024-01-05", 100, "INV/USD/001")
	st := env.createStatementLine(t, &model.StatementLine{
		JournalID: journalBankUSD, Date: "2024-06-15", PaymentRef: "ACME USD", Amount: 100,
	})
	_, err := env.engine.Proposal(st.ID)
	require.NoError(t, err)
	_, err = env.engine.AddMoveLine(st.ID, invoice.ID)
	require.NoError(t, err)

	require.NoError(t, env.engine.Reconcile(st.ID))

	line, err := env.store.MoveLine(invoice.ID)
	require.NoError(t, err)
	assert.True(t, line.Reconciled)
	assert.InDelta(t, 0, line.AmountResidual, 1e-9)
	assert.InDelta(t, 0, line.AmountResidualCurrency, 1e-9)

	// The committed counterpart absorbs the exchange line: 90 EUR against the
	// full 100 USD at the invoice rate.
	stored, err := env.store.StatementLine(st.ID)
	require.NoError(t, err)
	_, _, other, err := env.seekLines(t, stored)
	require.NoError(t, err)
	var counterpart *model.MoveLine
	for i := range other {
		if other[i].AccountID == accountReceivable {
			counterpart = &other[i]
		}
	}
	require.NotNil(t, counterpart)
	assert.InDelta(t, 90, counterpart.Credit, 1e-9)
	assert.InDelta(t, -100, counterpart.AmountCurrency, 1e-9)
	assert.True(t, counterpart.Reconciled)

	// The realized gain sits on its own entry in the exchange journal.
	partials, err := env.store.MatchedPartials(counterpart.ID)
	require.NoError(t, err)
	var exchangeMoveID int64
	for _, p := range partials {
		if p.ExchangeMoveID != 0 {
			exchangeMoveID = p.ExchangeMoveID
		}
	}
	require.NotZero(t, exchangeMoveID)
	exchangeMove, err := env.store.Move(exchangeMoveID)
	require.NoError(t, err)
	assert.Equal(t, journalFX, exchangeMove.JournalID)

	exchangeLines, err := env.store.MoveLines(exchangeMoveID)
	require.NoError(t, err)
	var gain *model.MoveLine
	for i := range exchangeLines {
		if exchangeLines[i].AccountID == accountFXIncome {
			gain = &exchangeLines[i]
		}
	}
	require.NotNil(t, gain)
	assert.InDelta(t, 10, gain.Credit, 1e-9)
}

func TestUnreconcileDropsExchangeEntry(t *testing.T) {
	env := newTestEnv(t)
	invoice := env.postUSDInvoice(t, "2024-01-05", 100, "INV/USD/001")
	st := env.createStatementLine(t, &model.StatementLine{
		JournalID: journalBankUSD, Date: "2024-06-15", PaymentRef: "ACME USD", Amount: 100,
	})
	_, err := env.engine.Proposal(st.ID)
	require.NoError(t, err)
	_, err = env.engine.AddMoveLine(st.ID, invoice.ID)
	require.NoError(t, err)
	require.NoError(t, env.engine.Reconcile(st.ID))

	stored, err := env.store.StatementLine(st.ID)
	require.NoError(t, err)
	_, _, other, err := env.seekLines(t, stored)
	require.NoError(t, err)
	require.Len(t, other, 1)
	partials, err := env.store.MatchedPartials(other[0].ID)
	require.NoError(t, err)
	var exchangeMoveID int64
	for _, p := range partials {
		if p.ExchangeMoveID != 0 {
			exchangeMoveID = p.ExchangeMoveID
		}
	}
	require.NotZero(t, exchangeMoveID)
	exchangeLines, err := env.store.MoveLines(exchangeMoveID)
	require.NoError(t, err)
	require.NotEmpty(t, exchangeLines)

	require.NoError(t, env.engine.Unreconcile(st.ID))

	// The invoice residual is restored and the exchange entry is gone.
	line, err := env.store.MoveLine(invoice.ID)
	require.NoError(t, err)
	assert.False(t, line.Reconciled)
	assert.InDelta(t, 80, line.AmountResidual, 1e-9)
	assert.InDelta(t, 100, line.AmountResidualCurrency, 1e-9)
	_, err = env.store.MoveLine(exchangeLines[0].ID)
	assert.ErrorIs(t, err, ledger.ErrNotFound)

	// The restored proposal shows the matched invoice with its gain line.
	proposal, err := env.engine.Proposal(st.ID)
	require.NoError(t, err)
	counterpart := proposal.Line(lineReference(invoice.ID))
	require.NotNil(t, counterpart)
	assert.InDelta(t, -80, counterpart.Amount, 1e-9)
	assert.InDelta(t, -100, counterpart.CurrencyAmount, 1e-9)
	var gainTotal float64
	for _, l := range proposal.Data {
		if l.AccountID == accountFXIncome {
			gainTotal += l.Amount
		}
	}
	assert.InDelta(t, -10, gainTotal, 1e-9)
	assert.True(t, proposal.CanReconcile)
}

func TestExchangeLineFollowsAmountEdits(t *testing.T) {
	env := newTestEnv(t)
	invoice := env.postUSDInvoice(t, "2024-01-05", 100, "INV/USD/001")
	st := env.createStatementLine(t, &model.StatementLine{
		JournalID: journalBankUSD, Date: "2024-06-15", PaymentRef: "ACME USD", Amount: 100,
	})
	_, err := env.engine.Proposal(st.ID)
	require.NoError(t, err)
	_, err = env.engine.AddMoveLine(st.ID, invoice.ID)
	require.NoError(t, err)

	// A currency-amount edit on a matched line re-derives the company amount
	// at the invoice's own rate, 0.80, not the statement rate: 50 USD stays
	// 40 EUR and the rate movement keeps flowing through the exchange line.
	proposal, err := env.engine.UpdateLine(st.ID, lineReference(invoice.ID), LineEdit{CurrencyAmount: f64(-50)})
	require.NoError(t, err)

	counterpart := proposal.Line(lineReference(invoice.ID))
	require.NotNil(t, counterpart)
	assert.InDelta(t, -40, counterpart.Amount, 1e-9)
	assert.InDelta(t, -50, counterpart.CurrencyAmount, 1e-9)

	var exchange *ProposalLine
	for i := range proposal.Data {
		if proposal.Data[i].IsExchangeCounterpart {
			exchange = &proposal.Data[i]
		}
	}
	require.NotNil(t, exchange)
	assert.Equal(t, invoice.ID, exchange.OriginalExchangeLineID)
	assert.InDelta(t, -5, exchange.Amount, 1e-9)

	suspense := suspenseOf(proposal)
	require.NotNil(t, suspense)
	assert.InDelta(t, -45, suspense.Amount, 1e-9)
}

func TestDeleteCounterpartDropsExchangeLine(t *testing.T) {
	env := newTestEnv(t)
	invoice := env.postUSDInvoice(t, "2024-01-05", 100, "INV/USD/001")
	st := env.createStatementLine(t, &model.StatementLine{
		JournalID: journalBankUSD, Date: "2024-06-15", PaymentRef: "ACME USD", Amount: 100,
	})
	_, err := env.engine.Proposal(st.ID)
	require.NoError(t, err)
	_, err = env.engine.AddMoveLine(st.ID, invoice.ID)
	require.NoError(t, err)

	proposal, err := env.engine.DeleteLine(st.ID, lineReference(invoice.ID))
	require.NoError(t, err)

	for _, line := range proposal.Data {
		assert.False(t, line.IsExchangeCounterpart)
	}
	suspense := suspenseOf(proposal)
	require.NotNil(t, suspense)
	assert.InDelta(t, -90, suspense.Amount, 1e-9)
}

func TestNoExchangeLineForCompanyCurrency(t *testing.T) {
	env := newTestEnv(t)
	invoice := env.postInvoice(t, "2024-01-10", 100, partnerAcme, "INV/001")
	st := env.createStatementLine(t, &model.StatementLine{
		JournalID: journalBank, Date: "2024-06-15", PaymentRef: "ACME", Amount: 100,
	})
	_, err := env.engine.Proposal(st.ID)
	require.NoError(t, err)
	proposal, err := env.engine.AddMoveLine(st.ID, invoice.ID)
	require.NoError(t, err)

	for _, line := range proposal.Data {
		assert.False(t, line.IsExchangeCounterpart)
	}
}
