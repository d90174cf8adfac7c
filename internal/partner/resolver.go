// Package partner resolves the likely counterparty of a bank statement line.
package partner

import (
	"sort"
	"strings"

	"github.com/openledger-dev/bank-reconcile/internal/ledger"
	"github.com/openledger-dev/bank-reconcile/internal/model"
)

// Resolver finds the partner behind a statement line. Lookups are tried in
// order: the explicit partner, the originating bank account, an exact name
// match, the partner mappings of the reconcile models, and finally a text
// search over partners with posted history. It implements the engine's
// PartnerResolver.
type Resolver struct {
	ledger *ledger.Store
	models []model.ReconcileModel
}

// NewResolver creates a Resolver over the ledger store and the configured
// reconcile models, whose partner mappings take part in resolution.
func NewResolver(store *ledger.Store, models []model.ReconcileModel) *Resolver {
	sorted := make([]model.ReconcileModel, len(models))
	copy(sorted, models)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Sequence < sorted[j].Sequence
	})
	return &Resolver{ledger: store, models: sorted}
}

// Resolve returns the partner of a statement line, nil when none of the
// lookups produced a confident match.
func (r *Resolver) Resolve(st *model.StatementLine) (*model.Partner, error) {
	if st.PartnerID != 0 {
		return r.ledger.Partner(st.PartnerID)
	}

	if st.AccountNumber != "" {
		partner, err := r.ledger.PartnerByBankAccount(st.CompanyID, st.AccountNumber)
		if err != nil {
			return nil, err
		}
		if partner != nil {
			return partner, nil
		}
	}

	if st.PartnerName != "" {
		partner, err := r.ledger.PartnerByName(st.CompanyID, st.PartnerName)
		if err != nil {
			return nil, err
		}
		if partner != nil {
			return partner, nil
		}
	}

	partner, err := r.partnerFromMappings(st)
	if err != nil {
		return nil, err
	}
	if partner != nil {
		return partner, nil
	}

	for _, text := range []string{st.PaymentRef, st.Narration} {
		if text == "" {
			continue
		}
		partner, err := r.ledger.PartnerByTextMatch(st.CompanyID, text)
		if err != nil {
			return nil, err
		}
		if partner != nil {
			return partner, nil
		}
	}
	return nil, nil
}

// partnerFromMappings checks the statement line's text against the partner
// mappings of every model that applies to its journal, in sequence order.
func (r *Resolver) partnerFromMappings(st *model.StatementLine) (*model.Partner, error) {
	text := strings.ToLower(st.PaymentRef + " " + st.Ref + " " + st.Narration)
	for i := range r.models {
		m := &r.models[i]
		if !m.MatchesJournal(st.JournalID) {
			continue
		}
		for _, mapping := range m.PartnerMappings {
			if mapping.MatchText == "" || mapping.PartnerID == 0 {
				continue
			}
			if strings.Contains(text, strings.ToLower(mapping.MatchText)) {
				return r.ledger.Partner(mapping.PartnerID)
			}
		}
	}
	return nil, nil
}
