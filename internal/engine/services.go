package engine

import (
	"github.com/openledger-dev/bank-reconcile/internal/model"
)

//go:generate mockgen -destination=mocks/mock_services.go -package=mocks -source=services.go

// MatchStatus is the verdict of the rule matcher.
type MatchStatus string

const (
	// MatchStatusWriteOff proposes the matched model's write-off lines.
	MatchStatusWriteOff MatchStatus = "write_off"
	// MatchStatusLines proposes a set of open move lines as counterparts.
	MatchStatusLines MatchStatus = "amls"
)

// MatchResult is what a reconcile rule produced for a statement line.
type MatchResult struct {
	Status MatchStatus

	// Model is set for write-off verdicts.
	Model *model.ReconcileModel

	// Lines are the candidate counterpart move lines for line verdicts.
	Lines []model.MoveLine

	// AutoReconcile requests an immediate commit of the resulting proposal.
	AutoReconcile bool
}

// RuleMatcher evaluates the configured reconcile models against a statement
// line. A nil result means no rule matched.
type RuleMatcher interface {
	ApplyRules(st *model.StatementLine, partner *model.Partner) (*MatchResult, error)

	// ModelByID resolves a write-off-button model for explicit application.
	ModelByID(id int64) (*model.ReconcileModel, error)

	// PartnerFromMapping resolves the partner a model's mappings assign to
	// the statement line, nil when no mapping matches.
	PartnerFromMapping(m *model.ReconcileModel, st *model.StatementLine) (*model.Partner, error)
}

// PartnerResolver resolves the likely counterparty of a statement line.
// A nil partner with nil error means no counterparty could be determined.
type PartnerResolver interface {
	Resolve(st *model.StatementLine) (*model.Partner, error)
}

// CurrencyService converts and rounds monetary amounts.
type CurrencyService interface {
	Convert(amount float64, fromID, toID int64, date string) float64
	Round(currencyID int64, amount float64) float64
	IsZero(currencyID int64, amount float64) bool
	Compare(currencyID int64, a, b float64) int
}

// SnapshotStore persists proposals between edit round-trips.
type SnapshotStore interface {
	// Load returns the stored proposal, or nil when none is stored.
	Load(statementLineID int64) (*Proposal, error)
	Save(statementLineID int64, p *Proposal) error
	Delete(statementLineID int64) error
}
