package model

// StatementLine represents a single bank movement to reconcile. It is backed
// by a journal entry whose liquidity line mirrors the bank amount and whose
// suspense line holds the unmatched residual until reconciliation.
type StatementLine struct {
	ID        int64 `json:"id"`
	MoveID    int64 `json:"move_id"`
	JournalID int64 `json:"journal_id"`
	CompanyID int64 `json:"company_id"`

	Date       string `json:"date"` // YYYY-MM-DD
	PaymentRef string `json:"payment_ref"`
	Ref        string `json:"ref,omitempty"`
	Narration  string `json:"narration,omitempty"`

	// PartnerID is the resolved counterparty, zero when unknown.
	// PartnerName keeps the free-text counterparty from the bank file and is
	// used for display and partner resolution.
	PartnerID   int64  `json:"partner_id,omitempty"`
	PartnerName string `json:"partner_name,omitempty"`

	// AccountNumber is the counterparty bank account as reported by the bank.
	AccountNumber string `json:"account_number,omitempty"`

	// Amount is the signed movement in journal currency. When the movement
	// was made in another currency, ForeignCurrencyID and AmountCurrency
	// carry the original amount.
	Amount            float64 `json:"amount"`
	AmountCurrency    float64 `json:"amount_currency,omitempty"`
	ForeignCurrencyID int64   `json:"foreign_currency_id,omitempty"`

	// CurrencyID is the journal currency the line is expressed in.
	CurrencyID int64 `json:"currency_id"`

	IsReconciled bool `json:"is_reconciled"`
}
