package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteOffLinesPercentage(t *testing.T) {
	m := &ReconcileModel{
		ID: 1,
		Lines: []WriteOffTemplate{
			{AccountID: 600, Type: AmountTypePercentage, Amount: 75, Label: "Fees"},
			{AccountID: 601, Type: AmountTypePercentage, Amount: 25},
		},
	}

	lines := m.WriteOffLines(-80, "BANK FEE")
	require.Len(t, lines, 2)
	assert.InDelta(t, -60, lines[0].Balance, 1e-9)
	assert.Equal(t, "Fees", lines[0].Name)
	assert.InDelta(t, -20, lines[1].Balance, 1e-9)
	// Missing label falls back to the statement label.
	assert.Equal(t, "BANK FEE", lines[1].Name)
	assert.Equal(t, int64(1), lines[1].ModelID)
}

func TestWriteOffLinesFixedFollowsResidualSign(t *testing.T) {
	m := &ReconcileModel{
		ID:    2,
		Lines: []WriteOffTemplate{{AccountID: 600, Type: AmountTypeFixed, Amount: 5}},
	}

	lines := m.WriteOffLines(-80, "x")
	require.Len(t, lines, 1)
	assert.InDelta(t, -5, lines[0].Balance, 1e-9)

	lines = m.WriteOffLines(80, "x")
	require.Len(t, lines, 1)
	assert.InDelta(t, 5, lines[0].Balance, 1e-9)
}

func TestMatchesJournal(t *testing.T) {
	unrestricted := &ReconcileModel{}
	assert.True(t, unrestricted.MatchesJournal(7))

	restricted := &ReconcileModel{MatchJournalIDs: []int64{1, 2}}
	assert.True(t, restricted.MatchesJournal(2))
	assert.False(t, restricted.MatchesJournal(7))
}

func TestAccountDisplayName(t *testing.T) {
	assert.Equal(t, "600 Bank Fees", (&Account{Code: "600", Name: "Bank Fees"}).DisplayName())
	assert.Equal(t, "Bank Fees", (&Account{Name: "Bank Fees"}).DisplayName())
	assert.Equal(t, "", (*Account)(nil).DisplayName())
}
