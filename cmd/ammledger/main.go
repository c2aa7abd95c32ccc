package main

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "ammledger",
		Short:        "Constant-product AMM and staking ledger",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	replayCmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay an operation journal through the ledger",
		RunE:  runReplay,
	}

	replayCmd.Flags().String("in", "", "input operation journal JSONL")
	replayCmd.Flags().String("out", "./data/outcomes.jsonl", "output outcomes JSONL")
	replayCmd.Flags().String("state-file", "", "local snapshot file (takes precedence over pg-dsn)")
	replayCmd.Flags().String("pg-dsn", "", "Postgres DSN for snapshots")
	replayCmd.Flags().String("state-name", "ledger", "snapshot name in Postgres")
	replayCmd.Flags().Int("batch-size", 500, "operations per outcome flush and snapshot")
	replayCmd.Flags().String("reward-policy", "linear", "stake reward policy (linear, per_epoch)")
	replayCmd.Flags().Uint64("reward-rate-bps", 1_000, "stake reward rate in basis points")
	replayCmd.Flags().String("metrics-out", "", "write Prometheus metrics to this textfile")
	replayCmd.Flags().String("run-id", "", "run id stamped on outcomes (default: random uuid)")
	replayCmd.Flags().Int("max-retries", 5, "maximum retry attempts for Postgres writes")
	replayCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	replayCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(replayCmd)

	quoteCmd := &cobra.Command{
		Use:   "quote",
		Short: "Quote a swap against the latest snapshot",
		RunE:  runQuote,
	}

	quoteCmd.Flags().String("state-file", "", "local snapshot file (takes precedence over pg-dsn)")
	quoteCmd.Flags().String("pg-dsn", "", "Postgres DSN for snapshots")
	quoteCmd.Flags().String("state-name", "ledger", "snapshot name in Postgres")
	quoteCmd.Flags().String("pool", "", "pool address (base58)")
	quoteCmd.Flags().String("direction", "a_to_b", "swap direction (a_to_b, b_to_a)")
	quoteCmd.Flags().Uint64("amount-in", 0, "input amount")
	quoteCmd.Flags().String("log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(quoteCmd)

	deriveCmd := &cobra.Command{
		Use:   "derive",
		Short: "Print derived pool, stake and vault addresses",
		RunE:  runDerive,
	}

	deriveCmd.Flags().String("amm", "", "AMM instance id (base58)")
	deriveCmd.Flags().String("mint-a", "", "pool mint A (base58)")
	deriveCmd.Flags().String("mint-b", "", "pool mint B (base58)")
	deriveCmd.Flags().String("staker", "", "staker address (base58)")
	deriveCmd.Flags().String("mint", "", "staked mint (base58)")
	deriveCmd.Flags().String("namespace", "", "derive from a raw namespace and --seed values")
	deriveCmd.Flags().StringSlice("seed", nil, "raw seeds; prefix with addr: for a base58 address")

	root.AddCommand(deriveCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func redactDSN(dsn string) string {
	if dsn == "" {
		return dsn
	}
	return "***"
}
