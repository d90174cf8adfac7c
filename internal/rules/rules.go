// Package rules evaluates configured reconcile models against bank statement
// lines: invoice matching against open move lines, write-off suggestions and
// partner mappings.
package rules

import (
	"fmt"
	"sort"
	"strings"

	"github.com/openledger-dev/bank-reconcile/internal/engine"
	"github.com/openledger-dev/bank-reconcile/internal/ledger"
	"github.com/openledger-dev/bank-reconcile/internal/model"
)

// Matcher evaluates reconcile models, ordered by sequence, against statement
// lines. It implements the engine's RuleMatcher.
type Matcher struct {
	ledger *ledger.Store
	models []model.ReconcileModel
}

// NewMatcher creates a Matcher over the given models. The models are sorted
// by sequence once; evaluation order is stable afterwards.
func NewMatcher(store *ledger.Store, models []model.ReconcileModel) *Matcher {
	sorted := make([]model.ReconcileModel, len(models))
	copy(sorted, models)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Sequence < sorted[j].Sequence
	})
	return &Matcher{ledger: store, models: sorted}
}

// Models returns the configured models in evaluation order.
func (m *Matcher) Models() []model.ReconcileModel {
	return m.models
}

// ModelByID resolves a model for explicit application, write-off buttons
// included.
func (m *Matcher) ModelByID(id int64) (*model.ReconcileModel, error) {
	for i := range m.models {
		if m.models[i].ID == id {
			return &m.models[i], nil
		}
	}
	return nil, fmt.Errorf("reconcile model %d: %w", id, ledger.ErrNotFound)
}

// ApplyRules runs the automatic models against a statement line and returns
// the first verdict, nil when nothing matched. Button models are never
// applied automatically.
func (m *Matcher) ApplyRules(st *model.StatementLine, partner *model.Partner) (*engine.MatchResult, error) {
	for i := range m.models {
		rule := &m.models[i]
		if rule.RuleType == model.RuleTypeWriteoffButton {
			continue
		}
		matches, err := m.ruleMatches(rule, st, partner)
		if err != nil {
			return nil, err
		}
		if !matches {
			continue
		}
		switch rule.RuleType {
		case model.RuleTypeWriteoffSuggestion:
			return &engine.MatchResult{
				Status:        engine.MatchStatusWriteOff,
				Model:         rule,
				AutoReconcile: rule.AutoReconcile,
			}, nil
		case model.RuleTypeInvoiceMatching:
			lines, err := m.candidateLines(rule, st, partner)
			if err != nil {
				return nil, err
			}
			if len(lines) == 0 {
				continue
			}
			return &engine.MatchResult{
				Status:        engine.MatchStatusLines,
				Model:         rule,
				Lines:         lines,
				AutoReconcile: rule.AutoReconcile,
			}, nil
		}
	}
	return nil, nil
}

// ruleMatches checks the model's conditions against the statement line.
func (m *Matcher) ruleMatches(rule *model.ReconcileModel, st *model.StatementLine, partner *model.Partner) (bool, error) {
	if !rule.MatchesJournal(st.JournalID) {
		return false, nil
	}
	if rule.MatchLabel != "" &&
		!strings.Contains(strings.ToLower(st.PaymentRef), strings.ToLower(rule.MatchLabel)) {
		return false, nil
	}
	if rule.MatchAmountMin != 0 && st.Amount < rule.MatchAmountMin {
		return false, nil
	}
	if rule.MatchAmountMax != 0 && st.Amount > rule.MatchAmountMax {
		return false, nil
	}
	if len(rule.MatchPartnerIDs) > 0 {
		partnerID := st.PartnerID
		if partnerID == 0 && partner != nil {
			partnerID = partner.ID
		}
		found := false
		for _, id := range rule.MatchPartnerIDs {
			if id == partnerID {
				found = true
				break
			}
		}
		if !found {
			return false, nil
		}
	}
	return true, nil
}

// candidateLines searches the open move lines a matching rule can propose:
// lines of the resolved partner, or lines whose name appears in the payment
// reference, oldest first.
func (m *Matcher) candidateLines(rule *model.ReconcileModel, st *model.StatementLine, partner *model.Partner) ([]model.MoveLine, error) {
	open, err := m.ledger.OpenLines(st.CompanyID, st.MoveID)
	if err != nil {
		return nil, err
	}

	partnerID := st.PartnerID
	if partnerID == 0 && partner != nil {
		partnerID = partner.ID
	}

	ref := strings.ToLower(st.PaymentRef)
	var matched []model.MoveLine
	for _, line := range open {
		switch {
		case partnerID != 0 && line.PartnerID == partnerID:
			matched = append(matched, line)
		case line.Name != "" && ref != "" && strings.Contains(ref, strings.ToLower(line.Name)):
			matched = append(matched, line)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].Date != matched[j].Date {
			return matched[i].Date < matched[j].Date
		}
		return matched[i].ID < matched[j].ID
	})
	return matched, nil
}

// PartnerFromMapping resolves the partner a model's text mappings assign to
// the statement line, nil when no mapping matches.
func (m *Matcher) PartnerFromMapping(rule *model.ReconcileModel, st *model.StatementLine) (*model.Partner, error) {
	if rule == nil {
		return nil, nil
	}
	text := strings.ToLower(st.PaymentRef + " " + st.Ref + " " + st.Narration)
	for _, mapping := range rule.PartnerMappings {
		if mapping.MatchText == "" {
			continue
		}
		if strings.Contains(text, strings.ToLower(mapping.MatchText)) {
			partner, err := m.ledger.Partner(mapping.PartnerID)
			if err != nil {
				return nil, fmt.Errorf("failed to load mapped partner %d: %w", mapping.PartnerID, err)
			}
			return partner, nil
		}
	}
	return nil, nil
}
