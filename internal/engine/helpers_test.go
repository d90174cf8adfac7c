package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openledger-dev/bank-reconcile/internal/currency"
	"github.com/openledger-dev/bank-reconcile/internal/ledger"
	"github.com/openledger-dev/bank-reconcile/internal/model"
)

// Fixture ids, shared by every engine test.
const (
	currencyEUR = int64(1)
	currencyUSD = int64(2)

	accountBank       = int64(101)
	accountSuspense   = int64(102)
	accountReceivable = int64(110)
	accountPayable    = int64(111)
	accountIncome     = int64(400)
	accountFees       = int64(600)
	accountFXExpense  = int64(701)
	accountFXIncome   = int64(702)

	journalBank     = int64(1)
	journalBankKeep = int64(2)
	journalBankUSD  = int64(3)
	journalFX       = int64(9)

	partnerAcme = int64(11)
)

// fakeRules is a RuleMatcher with a canned verdict.
type fakeRules struct {
	result        *MatchResult
	models        map[int64]*model.ReconcileModel
	mappedPartner *model.Partner
}

func (f *fakeRules) ApplyRules(st *model.StatementLine, partner *model.Partner) (*MatchResult, error) {
	return f.result, nil
}

func (f *fakeRules) ModelByID(id int64) (*model.ReconcileModel, error) {
	if m, ok := f.models[id]; ok {
		return m, nil
	}
	return nil, ledger.ErrNotFound
}

func (f *fakeRules) PartnerFromMapping(m *model.ReconcileModel, st *model.StatementLine) (*model.Partner, error) {
	return f.mappedPartner, nil
}

// fakeResolver is a PartnerResolver with a canned partner.
type fakeResolver struct {
	partner *model.Partner
}

func (f *fakeResolver) Resolve(st *model.StatementLine) (*model.Partner, error) {
	return f.partner, nil
}

// memSnapshots is an in-memory SnapshotStore.
type memSnapshots struct {
	proposals map[int64]*Proposal
}

func newMemSnapshots() *memSnapshots {
	return &memSnapshots{proposals: map[int64]*Proposal{}}
}

func (m *memSnapshots) Load(id int64) (*Proposal, error) {
	return m.proposals[id], nil
}

func (m *memSnapshots) Save(id int64, p *Proposal) error {
	m.proposals[id] = p
	return nil
}

func (m *memSnapshots) Delete(id int64) error {
	delete(m.proposals, id)
	return nil
}

// testEnv wires an engine over an in-memory ledger with a EUR company and a
// USD rate table.
type testEnv struct {
	store     *ledger.Store
	engine    *Engine
	rules     *fakeRules
	resolver  *fakeResolver
	snapshots *memSnapshots
	service   *currency.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	service := currency.NewService([]model.Currency{
		{ID: currencyEUR, Code: "EUR", DecimalPlaces: 2},
		{ID: currencyUSD, Code: "USD", DecimalPlaces: 2},
	})
	// 1 USD = 0.80 EUR until June, 0.90 EUR afterwards.
	service.AddRate(currencyUSD, "2024-01-01", 0.80)
	service.AddRate(currencyUSD, "2024-06-01", 0.90)

	store, err := ledger.OpenInMemory(service)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.SaveCompany(&model.Company{
		ID:                               1,
		Name:                             "Test Co",
		CurrencyID:                       currencyEUR,
		ExpenseCurrencyExchangeAccountID: accountFXExpense,
		IncomeCurrencyExchangeAccountID:  accountFXIncome,
		CurrencyExchangeJournalID:        journalFX,
	}))

	accounts := []model.Account{
		{ID: accountBank, CompanyID: 1, Code: "101", Name: "Bank", Type: model.AccountTypeCash},
		{ID: accountSuspense, CompanyID: 1, Code: "102", Name: "Bank Suspense", Type: model.AccountTypeCurrent},
		{ID: accountReceivable, CompanyID: 1, Code: "110", Name: "Receivable", Type: model.AccountTypeReceivable, Reconcile: true},
		{ID: accountPayable, CompanyID: 1, Code: "111", Name: "Payable", Type: model.AccountTypePayable, Reconcile: true},
		{ID: accountIncome, CompanyID: 1, Code: "400", Name: "Sales", Type: model.AccountTypeIncome},
		{ID: accountFees, CompanyID: 1, Code: "600", Name: "Bank Fees", Type: model.AccountTypeExpense},
		{ID: accountFXExpense, CompanyID: 1, Code: "701", Name: "FX Loss", Type: model.AccountTypeExpense},
		{ID: accountFXIncome, CompanyID: 1, Code: "702", Name: "FX Gain", Type: model.AccountTypeIncome},
	}
	for i := range accounts {
		require.NoError(t, store.SaveAccount(&accounts[i]))
	}

	require.NoError(t, store.SaveJournal(&model.Journal{
		ID: journalBank, CompanyID: 1, Name: "Bank",
		DefaultAccountID: accountBank, SuspenseAccountID: accountSuspense,
		ReconcileMode: model.ReconcileModeEdit,
	}))
	require.NoError(t, store.SaveJournal(&model.Journal{
		ID: journalBankKeep, CompanyID: 1, Name: "Bank Keep",
		DefaultAccountID: accountBank, SuspenseAccountID: accountSuspense,
		ReconcileMode: model.ReconcileModeKeep,
	}))
	require.NoError(t, store.SaveJournal(&model.Journal{
		ID: journalBankUSD, CompanyID: 1, Name: "Bank USD", CurrencyID: currencyUSD,
		DefaultAccountID: accountBank, SuspenseAccountID: accountSuspense,
		ReconcileMode: model.ReconcileModeEdit,
	}))
	require.NoError(t, store.SaveJournal(&model.Journal{
		ID: journalFX, CompanyID: 1, Name: "Exchange Differences",
		DefaultAccountID: accountFXExpense, SuspenseAccountID: accountSuspense,
		ReconcileMode: model.ReconcileModeEdit,
	}))

	require.NoError(t, store.SavePartner(&model.Partner{
		ID: partnerAcme, CompanyID: 1, Name: "Acme",
		ReceivableAccountID: accountReceivable, PayableAccountID: accountPayable,
	}))

	env := &testEnv{
		store:     store,
		rules:     &fakeRules{models: map[int64]*model.ReconcileModel{}},
		resolver:  &fakeResolver{},
		snapshots: newMemSnapshots(),
		service:   service,
	}
	env.engine = New(store, env.rules, env.resolver, service, env.snapshots)
	return env
}

// postInvoice posts a receivable invoice (debit receivable, credit income)
// and returns the open receivable line.
func (env *testEnv) postInvoice(t *testing.T, date string, amount float64, partnerID int64, name string) *model.MoveLine {
	t.Helper()
	move := &model.Move{CompanyID: 1, JournalID: journalBank, Date: date, Ref: name, State: model.MoveStatePosted}
	_, err := env.store.CreateMove(move)
	require.NoError(t, err)

	receivable := &model.MoveLine{
		MoveID: move.ID, CompanyID: 1, AccountID: accountReceivable,
		PartnerID: partnerID, Date: date, Name: name,
		Debit: amount, CurrencyID: currencyEUR, AmountCurrency: amount,
	}
	_, err = env.store.CreateMoveLine(receivable)
	require.NoError(t, err)

	income := &model.MoveLine{
		MoveID: move.ID, CompanyID: 1, AccountID: accountIncome,
		PartnerID: partnerID, Date: date, Name: name,
		Credit: amount, CurrencyID: currencyEUR, AmountCurrency: -amount,
	}
	_, err = env.store.CreateMoveLine(income)
	require.NoError(t, err)
	return receivable
}

// createStatementLine stores a statement line without running the engine's
// proposal pipeline.
func (env *testEnv) createStatementLine(t *testing.T, st *model.StatementLine) *model.StatementLine {
	t.Helper()
	err := env.store.Transaction(func(tx *ledger.Tx) error {
		return tx.CreateStatementLine(st)
	})
	require.NoError(t, err)
	return st
}

// proposalTotal sums the signed amounts of a proposal.
func proposalTotal(p *Proposal) float64 {
	var total float64
	for _, line := range p.Data {
		total += line.Amount
	}
	return total
}

// suspenseOf returns the suspense line of a proposal, nil when balanced.
func suspenseOf(p *Proposal) *ProposalLine {
	for i := range p.Data {
		if p.Data[i].Kind == KindSuspense {
			return &p.Data[i]
		}
	}
	return nil
}
