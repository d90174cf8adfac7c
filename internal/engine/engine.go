package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/openledger-dev/bank-reconcile/internal/ledger"
	"github.com/openledger-dev/bank-reconcile/internal/model"
)

// ErrCannotReconcile is returned when a commit is requested for a proposal
// that is not balanced or still carries a suspense residue.
var ErrCannotReconcile = errors.New("proposal cannot be reconciled")

// Engine drives the reconciliation of bank statement lines. All collaborators
// are injected; the engine itself keeps no state between calls.
type Engine struct {
	ledger     *ledger.Store
	rules      RuleMatcher
	partners   PartnerResolver
	currencies CurrencyService
	snapshots  SnapshotStore
}

// New creates an Engine over the given collaborators.
func New(store *ledger.Store, rules RuleMatcher, partners PartnerResolver, currencies CurrencyService, snapshots SnapshotStore) *Engine {
	return &Engine{
		ledger:     store,
		rules:      rules,
		partners:   partners,
		currencies: currencies,
		snapshots:  snapshots,
	}
}

// stContext bundles the statement line with its journal and company, which
// almost every computation needs.
type stContext struct {
	st      *model.StatementLine
	journal *model.Journal
	company *model.Company
}

func (e *Engine) contextFor(st *model.StatementLine) (*stContext, error) {
	journal, err := e.ledger.Journal(st.JournalID)
	if err != nil {
		return nil, fmt.Errorf("failed to load journal %d: %w", st.JournalID, err)
	}
	company, err := e.ledger.Company(journal.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load company %d: %w", journal.CompanyID, err)
	}
	return &stContext{st: st, journal: journal, company: company}, nil
}

func (e *Engine) contextByID(statementLineID int64) (*stContext, error) {
	st, err := e.ledger.StatementLine(statementLineID)
	if err != nil {
		return nil, fmt.Errorf("failed to load statement line %d: %w", statementLineID, err)
	}
	return e.contextFor(st)
}

// reconcileCurrency is the currency proposals are balanced in: the foreign
// currency when the statement line has one, else the journal currency, else
// the company currency.
func (c *stContext) reconcileCurrency() int64 {
	if c.st.ForeignCurrencyID != 0 {
		return c.st.ForeignCurrencyID
	}
	if c.journal.CurrencyID != 0 {
		return c.journal.CurrencyID
	}
	return c.company.CurrencyID
}

// label is the display name of the statement line.
func (c *stContext) label() string {
	if c.st.PaymentRef != "" {
		return c.st.PaymentRef
	}
	return c.st.Ref
}

// Proposal returns the current proposal of a statement line: the stored
// snapshot when one exists and the line is not reconciled, otherwise a fresh
// default proposal.
func (e *Engine) Proposal(statementLineID int64) (*Proposal, error) {
	c, err := e.contextByID(statementLineID)
	if err != nil {
		return nil, err
	}
	if !c.st.IsReconciled {
		stored, err := e.snapshots.Load(statementLineID)
		if err != nil {
			return nil, fmt.Errorf("failed to load proposal snapshot: %w", err)
		}
		if stored != nil {
			return stored, nil
		}
	}
	proposal, _, err := e.defaultProposal(c, c.st.IsReconciled)
	if err != nil {
		return nil, err
	}
	if !c.st.IsReconciled {
		if err := e.snapshots.Save(statementLineID, proposal); err != nil {
			return nil, fmt.Errorf("failed to save proposal snapshot: %w", err)
		}
	}
	return proposal, nil
}

// Clean discards the stored proposal and rebuilds the default one.
func (e *Engine) Clean(statementLineID int64) (*Proposal, error) {
	c, err := e.contextByID(statementLineID)
	if err != nil {
		return nil, err
	}
	proposal, _, err := e.defaultProposal(c, false)
	if err != nil {
		return nil, err
	}
	if err := e.snapshots.Save(statementLineID, proposal); err != nil {
		return nil, fmt.Errorf("failed to save proposal snapshot: %w", err)
	}
	return proposal, nil
}

// CreateStatementLine stores a new statement line with its backing entry,
// builds its initial proposal and, when a matching rule requests it,
// auto-reconciles it immediately.
func (e *Engine) CreateStatementLine(st *model.StatementLine) error {
	err := e.ledger.Transaction(func(tx *ledger.Tx) error {
		return tx.CreateStatementLine(st)
	})
	if err != nil {
		return err
	}

	c, err := e.contextFor(st)
	if err != nil {
		return err
	}
	proposal, autoReconcile, err := e.defaultProposal(c, false)
	if err != nil {
		return err
	}
	if err := e.snapshots.Save(st.ID, proposal); err != nil {
		return fmt.Errorf("failed to save proposal snapshot: %w", err)
	}
	if autoReconcile && proposal.CanReconcile {
		if err := e.Reconcile(st.ID); err != nil {
			slog.Warn("auto-reconcile failed",
				"statement_line_id", st.ID, "error", err)
		}
	}
	return nil
}

// currentProposal loads the stored proposal or computes the default one,
// for mutation operations.
func (e *Engine) currentProposal(c *stContext) (*Proposal, error) {
	stored, err := e.snapshots.Load(c.st.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load proposal snapshot: %w", err)
	}
	if stored != nil {
		return stored, nil
	}
	proposal, _, err := e.defaultProposal(c, false)
	if err != nil {
		return nil, err
	}
	return proposal, nil
}

// saveProposal persists a mutated proposal.
func (e *Engine) saveProposal(c *stContext, p *Proposal) error {
	if err := e.snapshots.Save(c.st.ID, p); err != nil {
		return fmt.Errorf("failed to save proposal snapshot: %w", err)
	}
	return nil
}
