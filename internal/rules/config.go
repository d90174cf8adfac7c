package rules

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/openledger-dev/bank-reconcile/internal/model"
)

// File is the on-disk shape of a reconcile model configuration file.
type File struct {
	Models []model.ReconcileModel `yaml:"models"`
}

// LoadFile reads reconcile models from a YAML file.
func LoadFile(path string) ([]model.ReconcileModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read models file: %w", err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse models file: %w", err)
	}

	for i := range file.Models {
		m := &file.Models[i]
		if m.ID == 0 {
			return nil, fmt.Errorf("model %q: missing id", m.Name)
		}
		if m.RuleType == "" {
			m.RuleType = model.RuleTypeInvoiceMatching
		}
		switch m.RuleType {
		case model.RuleTypeInvoiceMatching, model.RuleTypeWriteoffSuggestion, model.RuleTypeWriteoffButton:
		default:
			return nil, fmt.Errorf("model %q: unknown rule type %q", m.Name, m.RuleType)
		}
	}
	return file.Models, nil
}
