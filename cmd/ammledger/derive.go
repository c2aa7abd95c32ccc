package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"ammledger/internal/config"
	"ammledger/internal/derive"
	"ammledger/internal/model"
)

const addrSeedPrefix = "addr:"

func runDerive(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadDerive(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	out, err := deriveAddresses(cfg)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), out)
}

// deriveAddresses returns every address computable from the provided inputs, keyed by name.
func deriveAddresses(cfg config.DeriveConfig) (map[string]model.Address, error) {
	out := make(map[string]model.Address)

	if cfg.Namespace != "" {
		seeds, err := parseSeeds(cfg.Seeds)
		if err != nil {
			return nil, err
		}
		addr, err := derive.Derive(cfg.Namespace, seeds...)
		if err != nil {
			return nil, err
		}
		out["address"] = addr
	}

	if cfg.AmmID != "" {
		ammID, err := model.ParseAddress(cfg.AmmID)
		if err != nil {
			return nil, fmt.Errorf("amm: %w", err)
		}
		out["amm"] = derive.AmmAddress(ammID)

		if cfg.MintA != "" && cfg.MintB != "" {
			mintA, err := model.ParseAddress(cfg.MintA)
			if err != nil {
				return nil, fmt.Errorf("mint-a: %w", err)
			}
			mintB, err := model.ParseAddress(cfg.MintB)
			if err != nil {
				return nil, fmt.Errorf("mint-b: %w", err)
			}
			out["pool"] = derive.PoolAddress(ammID, mintA, mintB)
			out["pool_authority"] = derive.PoolAuthority(ammID, mintA, mintB)
			out["liquidity_mint"] = derive.LiquidityMint(ammID, mintA, mintB)
		}
	}

	if cfg.Mint != "" {
		mint, err := model.ParseAddress(cfg.Mint)
		if err != nil {
			return nil, fmt.Errorf("mint: %w", err)
		}
		out["reward_vault"] = derive.RewardVault(mint)

		if cfg.Staker != "" {
			staker, err := model.ParseAddress(cfg.Staker)
			if err != nil {
				return nil, fmt.Errorf("staker: %w", err)
			}
			record := derive.StakeRecord(staker, mint)
			out["stake_record"] = record
			out["stake_vault"] = derive.StakeVault(record)
		}
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("nothing to derive: pass --namespace, --amm or --mint")
	}
	return out, nil
}

func parseSeeds(raw []string) ([][]byte, error) {
	seeds := make([][]byte, 0, len(raw))
	for _, s := range raw {
		if strings.HasPrefix(s, addrSeedPrefix) {
			addr, err := model.ParseAddress(strings.TrimPrefix(s, addrSeedPrefix))
			if err != nil {
				return nil, fmt.Errorf("seed %q: %w", s, err)
			}
			seeds = append(seeds, addr[:])
			continue
		}
		seeds = append(seeds, []byte(s))
	}
	return seeds, nil
}
