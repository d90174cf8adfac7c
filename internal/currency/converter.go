// Package currency provides currency rounding and dated conversion between
// currencies backed by a rate table.
package currency

import (
	"fmt"
	"math"
	"sort"

	"github.com/openledger-dev/bank-reconcile/internal/model"
)

// Rate is the value of one unit of a currency expressed in the reference
// (company) currency, valid from Date onwards.
type Rate struct {
	CurrencyID int64   `yaml:"currency_id"`
	Date       string  `yaml:"date"` // YYYY-MM-DD
	Rate       float64 `yaml:"rate"`
}

// Service converts and rounds amounts using per-currency decimal places and a
// dated rate table. The reference currency always has rate 1.
type Service struct {
	currencies map[int64]model.Currency
	rates      map[int64][]Rate // sorted by date ascending
}

// NewService creates a Service over the given currencies.
func NewService(currencies []model.Currency) *Service {
	s := &Service{
		currencies: make(map[int64]model.Currency, len(currencies)),
		rates:      make(map[int64][]Rate),
	}
	for _, c := range currencies {
		s.currencies[c.ID] = c
	}
	return s
}

// AddCurrency registers a currency.
func (s *Service) AddCurrency(c model.Currency) {
	s.currencies[c.ID] = c
}

// AddRate records a rate valid from the given date.
func (s *Service) AddRate(currencyID int64, date string, rate float64) {
	rates := append(s.rates[currencyID], Rate{CurrencyID: currencyID, Date: date, Rate: rate})
	sort.Slice(rates, func(i, j int) bool { return rates[i].Date < rates[j].Date })
	s.rates[currencyID] = rates
}

// Currency returns the currency definition for the given id.
func (s *Service) Currency(id int64) (model.Currency, error) {
	c, ok := s.currencies[id]
	if !ok {
		return model.Currency{}, fmt.Errorf("unknown currency %d", id)
	}
	return c, nil
}

// rateAt returns the latest rate with a date not after the given date.
// A currency without rates converts 1:1 with the reference currency.
func (s *Service) rateAt(currencyID int64, date string) float64 {
	rates := s.rates[currencyID]
	rate := 1.0
	for _, r := range rates {
		if r.Date > date {
			break
		}
		rate = r.Rate
	}
	return rate
}

// Convert converts an amount from one currency to another at the given date
// and rounds it to the target currency precision.
func (s *Service) Convert(amount float64, fromID, toID int64, date string) float64 {
	if fromID == toID {
		return s.Round(toID, amount)
	}
	reference := amount * s.rateAt(fromID, date)
	return s.Round(toID, reference/s.rateAt(toID, date))
}

// Round rounds an amount to the currency's decimal places.
func (s *Service) Round(currencyID int64, amount float64) float64 {
	factor := math.Pow10(s.decimalPlaces(currencyID))
	return math.Round(amount*factor) / factor
}

// IsZero reports whether the amount rounds to zero at the currency precision.
func (s *Service) IsZero(currencyID int64, amount float64) bool {
	return s.Compare(currencyID, amount, 0) == 0
}

// Compare compares two amounts at the currency precision. It returns -1, 0
// or 1 following the sign of a - b.
func (s *Service) Compare(currencyID int64, a, b float64) int {
	delta := s.Round(currencyID, a) - s.Round(currencyID, b)
	epsilon := 1 / math.Pow10(s.decimalPlaces(currencyID)+1)
	switch {
	case delta > epsilon:
		return 1
	case delta < -epsilon:
		return -1
	default:
		return 0
	}
}

func (s *Service) decimalPlaces(currencyID int64) int {
	if c, ok := s.currencies[currencyID]; ok {
		return c.DecimalPlaces
	}
	// Two decimals is the sane default for unknown currencies.
	return 2
}
