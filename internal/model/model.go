// Package model defines the accounting entities shared by the ledger store,
// the rule matcher and the reconciliation engine.
package model

// Currency represents a currency with its rounding precision.
type Currency struct {
	ID            int64  `json:"id"`
	Code          string `json:"code"`
	Name          string `json:"name"`
	DecimalPlaces int    `json:"decimal_places"`
}

// Company represents a company owning journals and accounts.
type Company struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	CurrencyID int64  `json:"currency_id"`

	// Accounts receiving realized exchange differences.
	ExpenseCurrencyExchangeAccountID int64 `json:"expense_currency_exchange_account_id"`
	IncomeCurrencyExchangeAccountID  int64 `json:"income_currency_exchange_account_id"`

	// Journal where automatic exchange difference entries are posted.
	CurrencyExchangeJournalID int64 `json:"currency_exchange_journal_id"`
}

// AccountType classifies an account for reconciliation purposes.
type AccountType string

const (
	AccountTypeReceivable AccountType = "asset_receivable"
	AccountTypePayable    AccountType = "liability_payable"
	AccountTypeCash       AccountType = "asset_cash"
	AccountTypeCreditCard AccountType = "liability_credit_card"
	AccountTypeCurrent    AccountType = "asset_current"
	AccountTypeIncome     AccountType = "income"
	AccountTypeExpense    AccountType = "expense"
)

// Account represents a ledger account.
type Account struct {
	ID        int64       `json:"id"`
	CompanyID int64       `json:"company_id"`
	Code      string      `json:"code"`
	Name      string      `json:"name"`
	Type      AccountType `json:"type"`

	// Reconcile marks the account as open-item managed: lines posted to it
	// can be matched against each other.
	Reconcile bool `json:"reconcile"`
}

// DisplayName returns the account name prefixed by its code.
func (a *Account) DisplayName() string {
	if a == nil {
		return ""
	}
	if a.Code == "" {
		return a.Name
	}
	return a.Code + " " + a.Name
}

// Partner represents a counterparty (customer or supplier).
type Partner struct {
	ID                  int64    `json:"id"`
	CompanyID           int64    `json:"company_id"`
	Name                string   `json:"name"`
	ReceivableAccountID int64    `json:"receivable_account_id"`
	PayableAccountID    int64    `json:"payable_account_id"`
	BankAccounts        []string `json:"bank_accounts,omitempty"`
}

// ReconcileMode selects the commit strategy of a journal.
type ReconcileMode string

const (
	// ReconcileModeEdit rewrites the statement entry's own lines in place.
	ReconcileModeEdit ReconcileMode = "edit"
	// ReconcileModeKeep keeps the original entry and posts a counter-entry.
	ReconcileModeKeep ReconcileMode = "keep"
)

// Journal represents an accounting journal. Bank journals own the liquidity
// account, the suspense account and the reconcile mode used on commit.
type Journal struct {
	ID        int64  `json:"id"`
	CompanyID int64  `json:"company_id"`
	Name      string `json:"name"`

	// CurrencyID is the journal currency; zero means the company currency.
	CurrencyID int64 `json:"currency_id,omitempty"`

	// DefaultAccountID is the liquidity (bank) account.
	DefaultAccountID int64 `json:"default_account_id"`

	// SuspenseAccountID receives the unmatched residual of statement lines.
	SuspenseAccountID int64 `json:"suspense_account_id"`

	ReconcileMode ReconcileMode `json:"reconcile_mode"`
}
