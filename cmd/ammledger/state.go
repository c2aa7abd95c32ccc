package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"ammledger/internal/config"
	"ammledger/internal/ledger"
	"ammledger/internal/storage/postgres"
)

// openState picks the snapshot store: a local file when configured, otherwise Postgres.
// The returned close func is never nil.
func openState(ctx context.Context, cfg config.StateConfig, logger *zap.Logger) (ledger.StateStore, func(), error) {
	if cfg.StateFile != "" {
		return &ledger.FileStateStore{Path: cfg.StateFile}, func() {}, nil
	}
	if cfg.PGDSN == "" {
		return nil, func() {}, nil
	}

	store, err := postgres.NewStore(ctx, cfg.PGDSN)
	if err != nil {
		return nil, func() {}, fmt.Errorf("connect postgres: %w", err)
	}
	if err := store.EnsureSchema(ctx); err != nil {
		store.Close()
		return nil, func() {}, err
	}
	return &ledger.DBStateStore{
		Store:        store,
		Name:         cfg.StateName,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
		Logger:       logger,
	}, store.Close, nil
}
