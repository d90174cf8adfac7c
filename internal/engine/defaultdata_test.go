package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openledger-dev/bank-reconcile/internal/model"
)

func TestDefaultProposalConsumesMatchedLinesWithBudget(t *testing.T) {
	env := newTestEnv(t)
	invoiceA := env.postInvoice(t, "2024-01-10", 70, partnerAcme, "INV/001")
	invoiceB := env.postInvoice(t, "2024-01-20", 50, partnerAcme, "INV/002")

	env.rules.result = &MatchResult{
		Status: MatchStatusLines,
		Lines:  []model.MoveLine{*invoiceA, *invoiceB},
	}
	st := env.createStatementLine(t, &model.StatementLine{
		JournalID: journalBank, Date: "2024-03-01", PaymentRef: "ACME", Amount: 100,
	})

	proposal, err := env.engine.Proposal(st.ID)
	require.NoError(t, err)

	lineA := proposal.Line(lineReference(invoiceA.ID))
	require.NotNil(t, lineA)
	assert.InDelta(t, -70, lineA.Amount, 1e-9)
	assert.Equal(t, []int64{invoiceA.ID}, lineA.CounterpartLineIDs)

	// The second invoice only gets what is left of the statement amount.
	lineB := proposal.Line(lineReference(invoiceB.ID))
	require.NotNil(t, lineB)
	assert.InDelta(t, -30, lineB.Amount, 1e-9)
	assert.InDelta(t, 50, lineB.OriginalAmountUnsigned, 1e-9)

	assert.Nil(t, suspenseOf(proposal))
	assert.True(t, proposal.CanReconcile)
	assert.ElementsMatch(t, []int64{invoiceA.ID, invoiceB.ID}, proposal.Counterparts)
}

func TestDefaultProposalStopsWhenBudgetExhausted(t *testing.T) {
	env := newTestEnv(t)
	invoiceA := env.postInvoice(t, "2024-01-10", 100, partnerAcme, "INV/001")
	invoiceB := env.postInvoice(t, "2024-01-20", 50, partnerAcme, "INV/002")

	env.rules.result = &MatchResult{
		Status: MatchStatusLines,
		Lines:  []model.MoveLine{*invoiceA, *invoiceB},
	}
	st := env.createStatementLine(t, &model.StatementLine{
		JournalID: journalBank, Date: "2024-03-01", PaymentRef: "ACME", Amount: 100,
	})

	proposal, err := env.engine.Proposal(st.ID)
	require.NoError(t, err)

	require.NotNil(t, proposal.Line(lineReference(invoiceA.ID)))
	assert.Nil(t, proposal.Line(lineReference(invoiceB.ID)))
	assert.True(t, proposal.CanReconcile)
}

func TestDefaultProposalAppliesWriteOffModel(t *testing.T) {
	env := newTestEnv(t)
	writeOff := &model.ReconcileModel{
		ID: 5, CompanyID: 1, Name: "Bank fees",
		RuleType: model.RuleTypeWriteoffSuggestion,
		Lines: []model.WriteOffTemplate{
			{AccountID: accountFees, Type: model.AmountTypePercentage, Amount: 100, Label: "Fees"},
		},
	}
	env.rules.result = &MatchResult{Status: MatchStatusWriteOff, Model: writeOff}

	st := env.createStatementLine(t, &model.StatementLine{
		JournalID: journalBank, Date: "2024-03-01", PaymentRef: "FEE MARCH", Amount: -10,
	})
	proposal, err := env.engine.Proposal(st.ID)
	require.NoError(t, err)

	require.Len(t, proposal.Data, 2)
	feeLine := proposal.Data[1]
	assert.Equal(t, accountFees, feeLine.AccountID)
	assert.InDelta(t, 10, feeLine.Amount, 1e-9)
	assert.Equal(t, "Fees", feeLine.Name)
	assert.Equal(t, writeOff.ID, feeLine.ReconcileModelID)
	assert.True(t, proposal.CanReconcile)
}

func TestAuxiliaryReferencesAreNeverReused(t *testing.T) {
	env := newTestEnv(t)
	st := env.createStatementLine(t, &model.StatementLine{
		JournalID: journalBank, Date: "2024-03-01", PaymentRef: "TRANSFER", Amount: 100,
	})

	proposal, err := env.engine.Proposal(st.ID)
	require.NoError(t, err)
	first := suspenseOf(proposal)
	require.NotNil(t, first)
	firstAux := proposal.ReconcileAuxiliaryID

	// Deleting the suspense line forces a new one to be synthesized; its
	// reference must be fresh, the counter only grows.
	updated, err := env.engine.DeleteLine(st.ID, first.Reference)
	require.NoError(t, err)
	second := suspenseOf(updated)
	require.NotNil(t, second)

	assert.NotEqual(t, first.Reference, second.Reference)
	assert.Greater(t, updated.ReconcileAuxiliaryID, firstAux)
	assert.True(t, IsAuxiliaryReference(second.Reference))
}

func TestCreateStatementLineAutoReconciles(t *testing.T) {
	env := newTestEnv(t)
	env.rules.result = &MatchResult{
		Status: MatchStatusWriteOff,
		Model: &model.ReconcileModel{
			ID: 7, CompanyID: 1, Name: "Fees", RuleType: model.RuleTypeWriteoffSuggestion,
			AutoReconcile: true,
			Lines: []model.WriteOffTemplate{
				{AccountID: accountFees, Type: model.AmountTypePercentage, Amount: 100},
			},
		},
		AutoReconcile: true,
	}

	st := &model.StatementLine{
		JournalID: journalBank, Date: "2024-03-01", PaymentRef: "FEE", Amount: -25,
	}
	require.NoError(t, env.engine.CreateStatementLine(st))

	stored, err := env.store.StatementLine(st.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsReconciled)
}
