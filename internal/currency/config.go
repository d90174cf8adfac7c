package currency

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/openledger-dev/bank-reconcile/internal/model"
)

// File is the on-disk shape of a currency configuration file.
type File struct {
	Currencies []currencyEntry `yaml:"currencies"`
	Rates      []Rate          `yaml:"rates"`
}

type currencyEntry struct {
	ID            int64  `yaml:"id"`
	Code          string `yaml:"code"`
	Name          string `yaml:"name"`
	DecimalPlaces int    `yaml:"decimal_places"`
}

// LoadFile builds a Service from a YAML currency file.
func LoadFile(path string) (*Service, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read currency file: %w", err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse currency file: %w", err)
	}

	service := NewService(nil)
	for _, entry := range file.Currencies {
		service.AddCurrency(model.Currency{
			ID:            entry.ID,
			Code:          entry.Code,
			Name:          entry.Name,
			DecimalPlaces: entry.DecimalPlaces,
		})
	}
	for _, rate := range file.Rates {
		service.AddRate(rate.CurrencyID, rate.Date, rate.Rate)
	}
	return service, nil
}
