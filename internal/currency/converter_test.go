package currency

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openledger-dev/bank-reconcile/internal/model"
)

func newService() *Service {
	s := NewService([]model.Currency{
		{ID: 1, Code: "EUR", DecimalPlaces: 2},
		{ID: 2, Code: "USD", DecimalPlaces: 2},
		{ID: 3, Code: "JPY", DecimalPlaces: 0},
	})
	s.AddRate(2, "2024-01-01", 0.80)
	s.AddRate(2, "2024-06-01", 0.90)
	s.AddRate(3, "2024-01-01", 0.0061)
	return s
}

func TestConvertUsesRateInEffect(t *testing.T) {
	s := newService()
	assert.InDelta(t, 80, s.Convert(100, 2, 1, "2024-03-15"), 1e-9)
	assert.InDelta(t, 90, s.Convert(100, 2, 1, "2024-06-01"), 1e-9)
	assert.InDelta(t, 90, s.Convert(100, 2, 1, "2024-12-31"), 1e-9)
}

func TestConvertBeforeFirstRateIsOneToOne(t *testing.T) {
	s := newService()
	assert.InDelta(t, 100, s.Convert(100, 2, 1, "2023-01-01"), 1e-9)
}

func TestConvertBetweenForeignCurrencies(t *testing.T) {
	s := newService()
	// 100 USD = 80 EUR = 80 / 0.0061 JPY, rounded to 0 decimals.
	assert.InDelta(t, 13115, s.Convert(100, 2, 3, "2024-03-15"), 1e-9)
}

func TestConvertSameCurrencyRounds(t *testing.T) {
	s := newService()
	assert.InDelta(t, 10.57, s.Convert(10.567, 1, 1, "2024-03-15"), 1e-9)
}

func TestRoundHonorsDecimalPlaces(t *testing.T) {
	s := newService()
	assert.InDelta(t, 10.57, s.Round(1, 10.567), 1e-9)
	assert.InDelta(t, 11, s.Round(3, 10.567), 1e-9)
}

func TestIsZeroAtPrecision(t *testing.T) {
	s := newService()
	assert.True(t, s.IsZero(1, 0.004))
	assert.False(t, s.IsZero(1, 0.006))
	assert.True(t, s.IsZero(3, 0.4))
}

func TestCompare(t *testing.T) {
	s := newService()
	assert.Equal(t, 0, s.Compare(1, 10.001, 10.004))
	assert.Equal(t, 1, s.Compare(1, 10.02, 10.01))
	assert.Equal(t, -1, s.Compare(1, 10.01, 10.02))
}

func TestCurrencyLookup(t *testing.T) {
	s := newService()
	c, err := s.Currency(2)
	require.NoError(t, err)
	assert.Equal(t, "USD", c.Code)

	_, err = s.Currency(99)
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "currencies.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
currencies:
  - id: 1
    code: EUR
    name: Euro
    decimal_places: 2
  - id: 2
    code: USD
    name: US Dollar
    decimal_places: 2
rates:
  - currency_id: 2
    date: "2024-01-01"
    rate: 0.85
`), 0644))

	s, err := LoadFile(path)
	require.NoError(t, err)

	c, err := s.Currency(1)
	require.NoError(t, err)
	assert.Equal(t, "EUR", c.Code)
	assert.InDelta(t, 85, s.Convert(100, 2, 1, "2024-02-01"), 1e-9)
}
