package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ammledger/internal/config"
	"ammledger/internal/ledger"
	"ammledger/internal/stake"
	"ammledger/internal/storage"
)

func runReplay(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadReplay(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.In == "" {
		return fmt.Errorf("input journal is required")
	}
	policy, err := stake.NewRewardPolicy(cfg.RewardPolicy, cfg.RewardRateBps)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stateStore, closeState, err := openState(ctx, cfg.State(), logger)
	if err != nil {
		return err
	}
	defer closeState()
	if stateStore == nil {
		logger.Warn("no state store configured; replay starts from an empty ledger and nothing is persisted")
	}

	metrics := ledger.NewMetrics()
	runner := ledger.NewRunner(ledger.RunConfig{
		BatchSize:  cfg.BatchSize,
		RunID:      cfg.RunID,
		StateStore: stateStore,
		Metrics:    metrics,
	}, ledger.New(ledger.Config{Policy: policy, Logger: logger}), storage.NewJsonlStorage(cfg.Out), logger)

	logger.Info("replay start",
		zap.String("run_id", runner.RunID()),
		zap.String("input", cfg.In),
		zap.String("out", cfg.Out),
		zap.String("state_file", cfg.StateFile),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
		zap.String("state_name", cfg.StateName),
		zap.Int("batch_size", cfg.BatchSize),
		zap.String("reward_policy", cfg.RewardPolicy),
		zap.Uint64("reward_rate_bps", cfg.RewardRateBps),
	)

	summary, runErr := runner.Run(ctx, cfg.In)
	if err := metrics.WriteTextfile(cfg.MetricsOut); err != nil {
		logger.Warn("write metrics", zap.String("path", cfg.MetricsOut), zap.Error(err))
	}
	if runErr != nil {
		return runErr
	}
	return printJSON(cmd.OutOrStdout(), summary)
}
