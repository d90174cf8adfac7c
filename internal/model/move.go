package model

// MoveState is the lifecycle state of a journal entry.
type MoveState string

const (
	MoveStateDraft  MoveState = "draft"
	MoveStatePosted MoveState = "posted"
)

// Move represents a journal entry (a balanced set of move lines).
type Move struct {
	ID        int64     `json:"id"`
	CompanyID int64     `json:"company_id"`
	JournalID int64     `json:"journal_id"`
	Date      string    `json:"date"` // YYYY-MM-DD
	Ref       string    `json:"ref,omitempty"`
	State     MoveState `json:"state"`

	// StatementLineID links the entry to the bank statement line it was
	// created for, when any.
	StatementLineID int64 `json:"statement_line_id,omitempty"`
}

// MoveLine represents a single debit or credit posted on a move.
type MoveLine struct {
	ID        int64  `json:"id"`
	MoveID    int64  `json:"move_id"`
	CompanyID int64  `json:"company_id"`
	AccountID int64  `json:"account_id"`
	PartnerID int64  `json:"partner_id,omitempty"`
	Date      string `json:"date"`
	Name      string `json:"name,omitempty"`

	Debit  float64 `json:"debit"`
	Credit float64 `json:"credit"`

	// CurrencyID and AmountCurrency carry the foreign-currency leg of the
	// line. CurrencyID equals the company currency when no foreign currency
	// is involved.
	CurrencyID     int64   `json:"currency_id"`
	AmountCurrency float64 `json:"amount_currency"`

	// AmountResidual is the still-open part of the line in company currency,
	// AmountResidualCurrency the same in the line currency. Maintained by the
	// ledger store as partial reconciliations are recorded.
	AmountResidual         float64 `json:"amount_residual"`
	AmountResidualCurrency float64 `json:"amount_residual_currency"`

	Reconciled bool `json:"reconciled"`
}

// Balance returns the signed company-currency amount of the line.
func (l *MoveLine) Balance() float64 {
	return l.Debit - l.Credit
}

// PartialReconcile links a debit line to a credit line for a partial amount.
// The full reconciliation of a set of lines is the set of its partials.
type PartialReconcile struct {
	ID           int64   `json:"id"`
	DebitLineID  int64   `json:"debit_line_id"`
	CreditLineID int64   `json:"credit_line_id"`
	Amount       float64 `json:"amount"`

	DebitAmountCurrency  float64 `json:"debit_amount_currency"`
	CreditAmountCurrency float64 `json:"credit_amount_currency"`

	// ExchangeMoveID is the exchange difference entry this partial settled a
	// realized gain or loss through, zero for plain matches. Removing the
	// partial removes the entry with it.
	ExchangeMoveID int64 `json:"exchange_move_id,omitempty"`
}
