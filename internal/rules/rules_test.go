package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openledger-dev/bank-reconcile/internal/currency"
	"github.com/openledger-dev/bank-reconcile/internal/engine"
	"github.com/openledger-dev/bank-reconcile/internal/ledger"
	"github.com/openledger-dev/bank-reconcile/internal/model"
)

func newStore(t *testing.T) *ledger.Store {
	t.Helper()
	service := currency.NewService([]model.Currency{{ID: 1, Code: "EUR", DecimalPlaces: 2}})
	store, err := ledger.OpenInMemory(service)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.SaveCompany(&model.Company{ID: 1, Name: "Test Co", CurrencyID: 1}))
	require.NoError(t, store.SaveAccount(&model.Account{
		ID: 110, CompanyID: 1, Code: "110", Name: "Receivable",
		Type: model.AccountTypeReceivable, Reconcile: true,
	}))
	require.NoError(t, store.SavePartner(&model.Partner{
		ID: 11, CompanyID: 1, Name: "Acme", ReceivableAccountID: 110,
	}))
	return store
}

func postOpenLine(t *testing.T, store *ledger.Store, date, name string, amount float64, partnerID int64) *model.MoveLine {
	t.Helper()
	move := &model.Move{CompanyID: 1, JournalID: 1, Date: date, Ref: name, State: model.MoveStatePosted}
	_, err := store.CreateMove(move)
	require.NoError(t, err)
	line := &model.MoveLine{
		MoveID: move.ID, CompanyID: 1, AccountID: 110, PartnerID: partnerID,
		Date: date, Name: name, Debit: amount, CurrencyID: 1, AmountCurrency: amount,
	}
	_, err = store.CreateMoveLine(line)
	require.NoError(t, err)
	return line
}

func TestMatcherOrdersModelsBySequence(t *testing.T) {
	m := NewMatcher(newStore(t), []model.ReconcileModel{
		{ID: 2, Name: "second", Sequence: 20},
		{ID: 1, Name: "first", Sequence: 10},
	})
	models := m.Models()
	require.Len(t, models, 2)
	assert.Equal(t, int64(1), models[0].ID)
	assert.Equal(t, int64(2), models[1].ID)
}

func TestApplyRulesWriteOffSuggestion(t *testing.T) {
	m := NewMatcher(newStore(t), []model.ReconcileModel{
		{
			ID: 1, Name: "Bank fees", RuleType: model.RuleTypeWriteoffSuggestion,
			MatchLabel: "fee", AutoReconcile: true,
			Lines: []model.WriteOffTemplate{{AccountID: 600, Type: model.AmountTypePercentage, Amount: 100}},
		},
	})

	st := &model.StatementLine{CompanyID: 1, JournalID: 1, PaymentRef: "BANK FEE MARCH", Amount: -12.5}
	result, err := m.ApplyRules(st, nil)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, engine.MatchStatusWriteOff, result.Status)
	assert.Equal(t, int64(1), result.Model.ID)
	assert.True(t, result.AutoReconcile)

	// A label that does not contain the match text produces no verdict.
	st.PaymentRef = "TRANSFER"
	result, err = m.ApplyRules(st, nil)
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestApplyRulesAmountBounds(t *testing.T) {
	m := NewMatcher(newStore(t), []model.ReconcileModel{
		{
			ID: 1, Name: "Small fees", RuleType: model.RuleTypeWriteoffSuggestion,
			MatchAmountMin: -50, MatchAmountMax: 0,
			Lines: []model.WriteOffTemplate{{AccountID: 600, Type: model.AmountTypePercentage, Amount: 100}},
		},
	})

	result, err := m.ApplyRules(&model.StatementLine{JournalID: 1, Amount: -10}, nil)
	require.NoError(t, err)
	assert.NotNil(t, result)

	result, err = m.ApplyRules(&model.StatementLine{JournalID: 1, Amount: -100}, nil)
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestApplyRulesInvoiceMatchingByPartner(t *testing.T) {
	store := newStore(t)
	older := postOpenLine(t, store, "2024-01-05", "INV/002", 50, 11)
	newer := postOpenLine(t, store, "2024-02-01", "INV/001", 70, 11)

	m := NewMatcher(store, []model.ReconcileModel{
		{ID: 1, Name: "Invoices", RuleType: model.RuleTypeInvoiceMatching},
	})

	st := &model.StatementLine{CompanyID: 1, JournalID: 1, PaymentRef: "PAYMENT", PartnerID: 11, Amount: 120}
	result, err := m.ApplyRules(st, nil)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, engine.MatchStatusLines, result.Status)
	require.Len(t, result.Lines, 2)
	// Oldest first.
	assert.Equal(t, older.ID, result.Lines[0].ID)
	assert.Equal(t, newer.ID, result.Lines[1].ID)
}

func TestApplyRulesInvoiceMatchingByReference(t *testing.T) {
	store := newStore(t)
	invoice := postOpenLine(t, store, "2024-01-05", "INV/007", 50, 0)

	m := NewMatcher(store, []model.ReconcileModel{
		{ID: 1, Name: "Invoices", RuleType: model.RuleTypeInvoiceMatching},
	})

	st := &model.StatementLine{CompanyID: 1, JournalID: 1, PaymentRef: "payment inv/007 thanks", Amount: 50}
	result, err := m.ApplyRules(st, nil)
	require.NoError(t, err)
	require.NotNil(t, result)
	require.Len(t, result.Lines, 1)
	assert.Equal(t, invoice.ID, result.Lines[0].ID)
}

func TestApplyRulesFallsThroughWhenNoCandidates(t *testing.T) {
	store := newStore(t)
	m := NewMatcher(store, []model.ReconcileModel{
		{ID: 1, Name: "Invoices", RuleType: model.RuleTypeInvoiceMatching, Sequence: 1},
		{
			ID: 2, Name: "Catch all", RuleType: model.RuleTypeWriteoffSuggestion, Sequence: 2,
			Lines: []model.WriteOffTemplate{{AccountID: 600, Type: model.AmountTypePercentage, Amount: 100}},
		},
	})

	// No open lines exist, so invoice matching yields nothing and the next
	// model takes over.
	st := &model.StatementLine{CompanyID: 1, JournalID: 1, PaymentRef: "SOMETHING", PartnerID: 11, Amount: -5}
	result, err := m.ApplyRules(st, nil)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, int64(2), result.Model.ID)
}

func TestApplyRulesSkipsButtonModels(t *testing.T) {
	m := NewMatcher(newStore(t), []model.ReconcileModel{
		{
			ID: 1, Name: "Manual write-off", RuleType: model.RuleTypeWriteoffButton,
			Lines: []model.WriteOffTemplate{{AccountID: 600, Type: model.AmountTypePercentage, Amount: 100}},
		},
	})
	result, err := m.ApplyRules(&model.StatementLine{JournalID: 1, PaymentRef: "X", Amount: -5}, nil)
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestModelByID(t *testing.T) {
	m := NewMatcher(newStore(t), []model.ReconcileModel{
		{ID: 3, Name: "Manual", RuleType: model.RuleTypeWriteoffButton},
	})

	found, err := m.ModelByID(3)
	require.NoError(t, err)
	assert.Equal(t, "Manual", found.Name)

	_, err = m.ModelByID(99)
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestPartnerFromMapping(t *testing.T) {
	m := NewMatcher(newStore(t), nil)
	rule := &model.ReconcileModel{
		ID: 1,
		PartnerMappings: []model.PartnerMapping{
			{MatchText: "acme corp", PartnerID: 11},
		},
	}

	partner, err := m.PartnerFromMapping(rule, &model.StatementLine{Narration: "wire from ACME CORP ltd"})
	require.NoError(t, err)
	require.NotNil(t, partner)
	assert.Equal(t, int64(11), partner.ID)

	partner, err = m.PartnerFromMapping(rule, &model.StatementLine{PaymentRef: "unrelated"})
	require.NoError(t, err)
	assert.Nil(t, partner)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
models:
  - id: 1
    name: Bank fees
    rule_type: writeoff_suggestion
    match_label: fee
    auto_reconcile: true
    lines:
      - account_id: 600
        amount_type: percentage
        amount: 100
        label: Fees
  - id: 2
    name: Invoices
`), 0644))

	models, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, models, 2)
	assert.Equal(t, model.RuleTypeWriteoffSuggestion, models[0].RuleType)
	assert.True(t, models[0].AutoReconcile)
	require.Len(t, models[0].Lines, 1)
	assert.Equal(t, int64(600), models[0].Lines[0].AccountID)
	// Missing rule type defaults to invoice matching.
	assert.Equal(t, model.RuleTypeInvoiceMatching, models[1].RuleType)
}

func TestLoadFileRejectsBadModels(t *testing.T) {
	dir := t.TempDir()

	missingID := filepath.Join(dir, "missing_id.yaml")
	require.NoError(t, os.WriteFile(missingID, []byte("models:\n  - name: broken\n"), 0644))
	_, err := LoadFile(missingID)
	assert.Error(t, err)

	badType := filepath.Join(dir, "bad_type.yaml")
	require.NoError(t, os.WriteFile(badType, []byte("models:\n  - id: 1\n    rule_type: nonsense\n"), 0644))
	_, err = LoadFile(badType)
	assert.Error(t, err)
}
