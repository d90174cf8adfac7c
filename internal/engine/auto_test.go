package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openledger-dev/bank-reconcile/internal/model"
)

func TestAutoReconcileAllCommitsAutoRuleMatches(t *testing.T) {
	env := newTestEnv(t)
	env.rules.result = &MatchResult{
		Status: MatchStatusWriteOff,
		Model: &model.ReconcileModel{
			ID: 7, CompanyID: 1, Name: "Fees", RuleType: model.RuleTypeWriteoffSuggestion,
			AutoReconcile: true,
			Lines: []model.WriteOffTemplate{
				{AccountID: accountFees, Type: model.AmountTypePercentage, Amount: 100, Label: "Fees"},
			},
		},
		AutoReconcile: true,
	}

	first := env.createStatementLine(t, &model.StatementLine{
		JournalID: journalBank, Date: "2024-03-01", PaymentRef: "FEE A", Amount: -10,
	})
	second := env.createStatementLine(t, &model.StatementLine{
		JournalID: journalBank, Date: "2024-03-02", PaymentRef: "FEE B", Amount: -20,
	})

	count, err := env.engine.AutoReconcileAll(context.Background(), journalBank)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	for _, id := range []int64{first.ID, second.ID} {
		st, err := env.store.StatementLine(id)
		require.NoError(t, err)
		assert.True(t, st.IsReconciled)
	}
}

func TestAutoReconcileAllSkipsNonAutoMatches(t *testing.T) {
	env := newTestEnv(t)
	st := env.createStatementLine(t, &model.StatementLine{
		JournalID: journalBank, Date: "2024-03-01", PaymentRef: "TRANSFER", Amount: 100,
	})

	count, err := env.engine.AutoReconcileAll(context.Background(), journalBank)
	require.NoError(t, err)
	assert.Zero(t, count)

	stored, err := env.store.StatementLine(st.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsReconciled)
}

func TestAutoReconcileAllHonorsJournalFilter(t *testing.T) {
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

	inScope := env.createStatementLine(t, &model.StatementLine{
		JournalID: journalBank, Date: "2024-03-01", PaymentRef: "FEE", Amount: -10,
	})
	outOfScope := env.createStatementLine(t, &model.StatementLine{
		JournalID: journalBankKeep, Date: "2024-03-01", PaymentRef: "FEE", Amount: -10,
	})

	count, err := env.engine.AutoReconcileAll(context.Background(), journalBank)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	st, err := env.store.StatementLine(inScope.ID)
	require.NoError(t, err)
	assert.True(t, st.IsReconciled)

	st, err = env.store.StatementLine(outOfScope.ID)
	require.NoError(t, err)
	assert.False(t, st.IsReconciled)
}

func TestAutoReconcileAllStopsOnCancel(t *testing.T) {
	env := newTestEnv(t)
	env.createStatementLine(t, &model.StatementLine{
		JournalID: journalBank, Date: "2024-03-01", PaymentRef: "FEE", Amount: -10,
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := env.engine.AutoReconcileAll(ctx, journalBank)
	assert.ErrorIs(t, err, context.Canceled)
}
