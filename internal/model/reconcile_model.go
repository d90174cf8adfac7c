package model

import "math"

// RuleType classifies a reconcile model.
type RuleType string

const (
	// RuleTypeInvoiceMatching searches open move lines matching the
	// statement line and proposes them as counterparts.
	RuleTypeInvoiceMatching RuleType = "invoice_matching"
	// RuleTypeWriteoffSuggestion proposes the model's write-off lines
	// automatically when the model matches.
	RuleTypeWriteoffSuggestion RuleType = "writeoff_suggestion"
	// RuleTypeWriteoffButton is only applied on explicit user request.
	RuleTypeWriteoffButton RuleType = "writeoff_button"
)

// AmountType defines how a write-off template computes its amount.
type AmountType string

const (
	AmountTypeFixed      AmountType = "fixed"
	AmountTypePercentage AmountType = "percentage"
)

// WriteOffTemplate is one configured line of a write-off model.
type WriteOffTemplate struct {
	AccountID int64      `json:"account_id" yaml:"account_id"`
	Type      AmountType `json:"amount_type" yaml:"amount_type"`
	Amount    float64    `json:"amount" yaml:"amount"`
	Label     string     `json:"label,omitempty" yaml:"label,omitempty"`
	PartnerID int64      `json:"partner_id,omitempty" yaml:"partner_id,omitempty"`
}

// PartnerMapping maps a text fragment found on the statement line to a
// partner. Model mappings take precedence over the generic partner resolver.
type PartnerMapping struct {
	MatchText string `json:"match_text" yaml:"match_text"`
	PartnerID int64  `json:"partner_id" yaml:"partner_id"`
}

// ReconcileModel is a configured matching rule evaluated against statement
// lines.
type ReconcileModel struct {
	ID        int64    `json:"id" yaml:"id"`
	CompanyID int64    `json:"company_id" yaml:"company_id"`
	Name      string   `json:"name" yaml:"name"`
	RuleType  RuleType `json:"rule_type" yaml:"rule_type"`
	Sequence  int      `json:"sequence" yaml:"sequence"`

	// AutoReconcile commits the proposal immediately when the rule produces
	// a balanced one.
	AutoReconcile bool `json:"auto_reconcile" yaml:"auto_reconcile"`

	// Matching conditions. Zero values mean "no constraint".
	MatchJournalIDs []int64 `json:"match_journal_ids,omitempty" yaml:"match_journal_ids,omitempty"`
	MatchLabel      string  `json:"match_label,omitempty" yaml:"match_label,omitempty"`
	MatchPartnerIDs []int64 `json:"match_partner_ids,omitempty" yaml:"match_partner_ids,omitempty"`
	MatchAmountMin  float64 `json:"match_amount_min,omitempty" yaml:"match_amount_min,omitempty"`
	MatchAmountMax  float64 `json:"match_amount_max,omitempty" yaml:"match_amount_max,omitempty"`

	PartnerMappings []PartnerMapping   `json:"partner_mappings,omitempty" yaml:"partner_mappings,omitempty"`
	Lines           []WriteOffTemplate `json:"lines,omitempty" yaml:"lines,omitempty"`
}

// WriteOffLine is a write-off template expanded against a concrete residual.
type WriteOffLine struct {
	AccountID int64
	PartnerID int64
	Balance   float64
	Name      string
	ModelID   int64
}

// WriteOffLines expands the model templates for the given residual amount.
// Percentage templates take their share of the residual; fixed templates take
// their configured amount with the residual's sign.
func (m *ReconcileModel) WriteOffLines(amount float64, label string) []WriteOffLine {
	lines := make([]WriteOffLine, 0, len(m.Lines))
	for _, tmpl := range m.Lines {
		balance := tmpl.Amount
		if tmpl.Type == AmountTypePercentage {
			balance = amount * tmpl.Amount / 100.0
		} else if amount < 0 {
			balance = -math.Abs(tmpl.Amount)
		} else {
			balance = math.Abs(tmpl.Amount)
		}
		name := tmpl.Label
		if name == "" {
			name = label
		}
		lines = append(lines, WriteOffLine{
			AccountID: tmpl.AccountID,
			PartnerID: tmpl.PartnerID,
			Balance:   balance,
			Name:      name,
			ModelID:   m.ID,
		})
	}
	return lines
}

// MatchesJournal reports whether the model applies to the given journal.
func (m *ReconcileModel) MatchesJournal(journalID int64) bool {
	if len(m.MatchJournalIDs) == 0 {
		return true
	}
	for _, id := range m.MatchJournalIDs {
		if id == journalID {
			return true
		}
	}
	return false
}
