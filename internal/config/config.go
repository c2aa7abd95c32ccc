package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "AMMLEDGER"

// ReplayConfig holds configuration for the replay command.
type ReplayConfig struct {
	In            string
	Out           string
	StateFile     string
	PGDSN         string
	StateName     string
	BatchSize     int
	RewardPolicy  string
	RewardRateBps uint64
	MetricsOut    string
	RunID         string
	MaxRetries    int
	RetryBackoff  time.Duration
	LogLevel      string
}

// StateConfig selects where a snapshot is read from.
type StateConfig struct {
	StateFile    string
	PGDSN        string
	StateName    string
	MaxRetries   int
	RetryBackoff time.Duration
}

// QuoteConfig holds configuration for the quote command.
type QuoteConfig struct {
	State     StateConfig
	Pool      string
	Direction string
	AmountIn  uint64
	LogLevel  string
}

// DeriveConfig holds configuration for the derive command.
type DeriveConfig struct {
	AmmID     string
	MintA     string
	MintB     string
	Staker    string
	Mint      string
	Namespace string
	Seeds     []string
}

// LoadReplay merges config file, environment variables, and flags into ReplayConfig.
func LoadReplay(cfgFile string, flags *pflag.FlagSet) (ReplayConfig, error) {
	v, err := load(cfgFile, flags, map[string]interface{}{
		"out":             "./data/outcomes.jsonl",
		"state-name":      "ledger",
		"batch-size":      500,
		"reward-policy":   "linear",
		"reward-rate-bps": uint64(1_000),
		"max-retries":     5,
		"retry-backoff":   500 * time.Millisecond,
		"log-level":       "info",
	})
	if err != nil {
		return ReplayConfig{}, err
	}

	cfg := ReplayConfig{
		In:            v.GetString("in"),
		Out:           v.GetString("out"),
		StateFile:     v.GetString("state-file"),
		PGDSN:         v.GetString("pg-dsn"),
		StateName:     v.GetString("state-name"),
		BatchSize:     v.GetInt("batch-size"),
		RewardPolicy:  v.GetString("reward-policy"),
		RewardRateBps: v.GetUint64("reward-rate-bps"),
		MetricsOut:    v.GetString("metrics-out"),
		RunID:         v.GetString("run-id"),
		MaxRetries:    v.GetInt("max-retries"),
		RetryBackoff:  v.GetDuration("retry-backoff"),
		LogLevel:      v.GetString("log-level"),
	}
	return cfg, nil
}

// State returns the snapshot location of a replay.
func (c ReplayConfig) State() StateConfig {
	return StateConfig{
		StateFile:    c.StateFile,
		PGDSN:        c.PGDSN,
		StateName:    c.StateName,
		MaxRetries:   c.MaxRetries,
		RetryBackoff: c.RetryBackoff,
	}
}

// LoadQuote merges config file, environment variables, and flags into QuoteConfig.
func LoadQuote(cfgFile string, flags *pflag.FlagSet) (QuoteConfig, error) {
	v, err := load(cfgFile, flags, map[string]interface{}{
		"state-name":    "ledger",
		"direction":     "a_to_b",
		"max-retries":   5,
		"retry-backoff": 500 * time.Millisecond,
		"log-level":     "warn",
	})
	if err != nil {
		return QuoteConfig{}, err
	}

	cfg := QuoteConfig{
		State: StateConfig{
			StateFile:    v.GetString("state-file"),
			PGDSN:        v.GetString("pg-dsn"),
			StateName:    v.GetString("state-name"),
			MaxRetries:   v.GetInt("max-retries"),
			RetryBackoff: v.GetDuration("retry-backoff"),
		},
		Pool:      v.GetString("pool"),
		Direction: v.GetString("direction"),
		AmountIn:  v.GetUint64("amount-in"),
		LogLevel:  v.GetString("log-level"),
	}
	return cfg, nil
}

// LoadDerive merges config file, environment variables, and flags into DeriveConfig.
func LoadDerive(cfgFile string, flags *pflag.FlagSet) (DeriveConfig, error) {
	v, err := load(cfgFile, flags, nil)
	if err != nil {
		return DeriveConfig{}, err
	}

	cfg := DeriveConfig{
		AmmID:     v.GetString("amm"),
		MintA:     v.GetString("mint-a"),
		MintB:     v.GetString("mint-b"),
		Staker:    v.GetString("staker"),
		Mint:      v.GetString("mint"),
		Namespace: v.GetString("namespace"),
		Seeds:     getStringSlice(v, "seed"),
	}
	return cfg, nil
}

func load(cfgFile string, flags *pflag.FlagSet, defaults map[string]interface{}) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for key, val := range defaults {
		v.SetDefault(key, val)
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}
	return v, nil
}

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case []string:
		return cleanStrings(typed)
	case string:
		return splitAndClean(typed)
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	return cleanStrings(parts)
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
