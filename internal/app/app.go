// Package app assembles the reconciliation service from its configuration.
package app

import (
	"fmt"

	"github.com/openledger-dev/bank-reconcile/internal/currency"
	"github.com/openledger-dev/bank-reconcile/internal/engine"
	"github.com/openledger-dev/bank-reconcile/internal/ledger"
	"github.com/openledger-dev/bank-reconcile/internal/model"
	"github.com/openledger-dev/bank-reconcile/internal/partner"
	"github.com/openledger-dev/bank-reconcile/internal/rules"
	"github.com/openledger-dev/bank-reconcile/internal/snapshot"
	"github.com/openledger-dev/bank-reconcile/pkg/config"
)

// App bundles the wired components of the service.
type App struct {
	Store      *ledger.Store
	Snapshots  *snapshot.Store
	Currencies *currency.Service
	Engine     *engine.Engine
}

// Open wires the full stack: currency table, sqlite ledger, bbolt snapshot
// store, reconcile models and the engine itself.
func Open(cfg *config.Config) (*App, error) {
	currencies, err := currency.LoadFile(cfg.Ledger.CurrenciesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load currencies: %w", err)
	}

	store, err := ledger.Open(cfg.Ledger.DBPath, currencies)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}

	snapshots, err := snapshot.Open(cfg.Ledger.SnapshotPath)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to open snapshot store: %w", err)
	}

	var models []model.ReconcileModel
	if cfg.Ledger.ModelsPath != "" {
		models, err = rules.LoadFile(cfg.Ledger.ModelsPath)
		if err != nil {
			_ = snapshots.Close()
			_ = store.Close()
			return nil, fmt.Errorf("failed to load reconcile models: %w", err)
		}
	}

	matcher := rules.NewMatcher(store, models)
	resolver := partner.NewResolver(store, models)
	eng := engine.New(store, matcher, resolver, currencies, snapshots)

	return &App{
		Store:      store,
		Snapshots:  snapshots,
		Currencies: currencies,
		Engine:     eng,
	}, nil
}

// Close releases the underlying stores.
func (a *App) Close() error {
	snapErr := a.Snapshots.Close()
	storeErr := a.Store.Close()
	if storeErr != nil {
		return storeErr
	}
	return snapErr
}
