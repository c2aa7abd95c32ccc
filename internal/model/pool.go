package model

import "fmt"

// MaxFeeBps is the fee denominator; a pool fee may not exceed it.
const MaxFeeBps = 10_000

// Pool is the state of one constant-product pool keyed by (amm, mintA, mintB).
type Pool struct {
	ID             Address `json:"id"`
	AmmID          Address `json:"amm_id"`
	MintA          Address `json:"mint_a"`
	MintB          Address `json:"mint_b"`
	Authority      Address `json:"authority"`
	LiquidityMint  Address `json:"liquidity_mint"`
	ReserveA       uint64  `json:"reserve_a"`
	ReserveB       uint64  `json:"reserve_b"`
	TotalLiquidity uint64  `json:"total_liquidity"`
	FeeBps         uint16  `json:"fee_bps"`
}

// Empty reports whether the pool holds no liquidity.
func (p Pool) Empty() bool {
	return p.TotalLiquidity == 0
}

// LiquidityPosition is one owner's LP token balance in a pool.
type LiquidityPosition struct {
	Owner    Address `json:"owner"`
	PoolID   Address `json:"pool_id"`
	LPTokens uint64  `json:"lp_tokens"`
}

// Direction selects the input side of a swap.
type Direction string

const (
	AToB Direction = "a_to_b"
	BToA Direction = "b_to_a"
)

// ParseDirection accepts the canonical names plus the short forms "a" and "b".
func ParseDirection(input string) (Direction, error) {
	switch input {
	case string(AToB), "a", "A":
		return AToB, nil
	case string(BToA), "b", "B":
		return BToA, nil
	default:
		return "", fmt.Errorf("invalid direction: %q", input)
	}
}

func (d Direction) Valid() bool {
	return d == AToB || d == BToA
}
