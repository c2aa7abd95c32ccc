package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ammledger/internal/config"
	"ammledger/internal/ledger"
	"ammledger/internal/model"
)

func runQuote(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadQuote(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	poolID, err := model.ParseAddress(cfg.Pool)
	if err != nil {
		return fmt.Errorf("pool: %w", err)
	}
	direction, err := model.ParseDirection(cfg.Direction)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stateStore, closeState, err := openState(ctx, cfg.State, logger)
	if err != nil {
		return err
	}
	defer closeState()
	if stateStore == nil {
		return fmt.Errorf("state-file or pg-dsn is required")
	}

	snap, ok, err := stateStore.Load(ctx)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	if !ok {
		return fmt.Errorf("no snapshot found")
	}

	l := ledger.New(ledger.Config{Logger: logger})
	if err := l.Restore(snap); err != nil {
		return err
	}
	quote, err := l.QuoteSwap(poolID, direction, cfg.AmountIn)
	if err != nil {
		return fmt.Errorf("quote: %w", err)
	}
	return printJSON(cmd.OutOrStdout(), struct {
		Pool    model.Address `json:"pool"`
		LastSeq uint64        `json:"last_seq"`
		Quote   interface{}   `json:"quote"`
	}{poolID, snap.LastSeq, quote})
}
