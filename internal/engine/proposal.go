// Package engine implements the bank statement reconciliation core: it
// builds balanced proposals of accounting lines for a statement line,
// applies manual edits, computes exchange differences and commits proposals
// as persisted journal entries.
package engine

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind classifies a proposal line.
type Kind string

const (
	// KindLiquidity marks the bank-account side of the movement.
	KindLiquidity Kind = "liquidity"
	// KindSuspense marks the auto-balancing placeholder line.
	KindSuspense Kind = "suspense"
	// KindOther marks counterparts, write-offs and manual lines.
	KindOther Kind = "other"
)

// ProposalLine is one provisional accounting line of a proposal.
type ProposalLine struct {
	// Reference identifies the line inside the proposal: either the
	// reference of a real move line or a synthetic auxiliary reference.
	Reference string `json:"reference"`

	// LineID is the backing move line id, zero for synthetic lines.
	LineID int64 `json:"id,omitempty"`

	AccountID   int64  `json:"account_id"`
	AccountName string `json:"account_name,omitempty"`
	PartnerID   int64  `json:"partner_id,omitempty"`
	PartnerName string `json:"partner_name,omitempty"`
	Date        string `json:"date"`
	Name        string `json:"name"`

	// Amount is the signed company-currency amount; Debit and Credit are
	// derived from it and kept in sync through setAmount.
	Amount float64 `json:"amount"`
	Debit  float64 `json:"debit"`
	Credit float64 `json:"credit"`

	Kind Kind `json:"kind"`

	// CurrencyID is the currency Amount is expressed in (company currency),
	// LineCurrencyID the line's own currency and CurrencyAmount the amount
	// in that currency.
	CurrencyID     int64   `json:"currency_id"`
	LineCurrencyID int64   `json:"line_currency_id"`
	CurrencyAmount float64 `json:"currency_amount"`

	// CounterpartLineIDs are the open move lines this line clears.
	CounterpartLineIDs []int64 `json:"counterpart_line_ids,omitempty"`

	// IsExchangeCounterpart marks a synthesized exchange gain/loss line;
	// OriginalExchangeLineID points at the move line whose rate mismatch it
	// compensates.
	IsExchangeCounterpart  bool  `json:"is_exchange_counterpart,omitempty"`
	OriginalExchangeLineID int64 `json:"original_exchange_line_id,omitempty"`

	// OriginalAmountUnsigned keeps the full open amount of a partially
	// matched counterpart, backing the full-pay shortcut.
	OriginalAmountUnsigned float64 `json:"original_amount_unsigned,omitempty"`

	AnalyticDistribution map[string]float64 `json:"analytic_distribution,omitempty"`
	ReconcileModelID     int64              `json:"reconcile_model_id,omitempty"`
}

// setAmount sets the signed amount and re-derives debit and credit.
func (l *ProposalLine) setAmount(amount float64) {
	l.Amount = amount
	if amount > 0 {
		l.Debit = amount
		l.Credit = 0
	} else {
		l.Debit = 0
		l.Credit = -amount
	}
}

// hasCounterpart reports whether the line clears the given move line.
func (l *ProposalLine) hasCounterpart(lineID int64) bool {
	for _, id := range l.CounterpartLineIDs {
		if id == lineID {
			return true
		}
	}
	return false
}

// Proposal is the serialized reconciliation proposal of one statement line.
type Proposal struct {
	Data []ProposalLine `json:"data"`

	// Counterparts lists every open move line referenced by the proposal,
	// surfaced for highlighting.
	Counterparts []int64 `json:"counterparts"`

	// ReconcileAuxiliaryID is the next synthetic reference number. It only
	// grows, so references stay unique across the proposal's lifetime.
	ReconcileAuxiliaryID int64 `json:"reconcile_auxiliary_id"`

	CanReconcile bool `json:"can_reconcile"`

	// ManualReference is the line currently focused in the edit widget.
	ManualReference string `json:"manual_reference,omitempty"`
}

// Line returns the proposal line with the given reference, or nil.
func (p *Proposal) Line(reference string) *ProposalLine {
	for i := range p.Data {
		if p.Data[i].Reference == reference {
			return &p.Data[i]
		}
	}
	return nil
}

const auxiliaryPrefix = "reconcile_auxiliary;"

// auxiliaryReference builds the synthetic reference for the given counter.
func auxiliaryReference(id int64) string {
	return auxiliaryPrefix + strconv.FormatInt(id, 10)
}

// IsAuxiliaryReference reports whether a reference is synthetic.
func IsAuxiliaryReference(reference string) bool {
	return strings.HasPrefix(reference, auxiliaryPrefix)
}

// lineReference builds the reference of a real move line.
func lineReference(lineID int64) string {
	return fmt.Sprintf("move_line;%d", lineID)
}
