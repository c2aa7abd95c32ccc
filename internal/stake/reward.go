package stake

import (
	"fmt"
	"strings"

	"ammledger/internal/safemath"
)

const bpsDenominator = 10_000

// RewardPolicy computes the reward owed for amount staked over elapsed epochs.
type RewardPolicy interface {
	Reward(amount uint64, elapsedEpochs uint64) (uint64, error)
}

// LinearRate pays a flat RateBps of the principal regardless of duration.
type LinearRate struct {
	RateBps uint64
}

func (p LinearRate) Reward(amount uint64, _ uint64) (uint64, error) {
	return safemath.MulDiv(amount, p.RateBps, bpsDenominator)
}

// PerEpochRate pays RateBps of the principal for every elapsed epoch.
type PerEpochRate struct {
	RateBps uint64
}

func (p PerEpochRate) Reward(amount uint64, elapsedEpochs uint64) (uint64, error) {
	return safemath.MulMulDiv(amount, elapsedEpochs, p.RateBps, bpsDenominator)
}

// NewRewardPolicy builds a policy by name: "linear" or "per_epoch".
func NewRewardPolicy(name string, rateBps uint64) (RewardPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "linear":
		return LinearRate{RateBps: rateBps}, nil
	case "per_epoch", "per-epoch":
		return PerEpochRate{RateBps: rateBps}, nil
	default:
		return nil, fmt.Errorf("unknown reward policy: %s", name)
	}
}
