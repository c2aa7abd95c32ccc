package model

// OpKind names a journal operation.
type OpKind string

const (
	OpCreatePool OpKind = "create_pool"
	OpDeposit    OpKind = "deposit"
	OpSwap       OpKind = "swap"
	OpWithdraw   OpKind = "withdraw"
	OpInitVault  OpKind = "init_vault"
	OpFundVault  OpKind = "fund_vault"
	OpStake      OpKind = "stake"
	OpUnstake    OpKind = "unstake"
)

// Operation is one line of the operation journal. Only the fields relevant to Op are read.
type Operation struct {
	Seq   uint64 `json:"seq"`
	Epoch int64  `json:"epoch"`
	Op    OpKind `json:"op"`

	AmmID  Address `json:"amm_id"`
	MintA  Address `json:"mint_a"`
	MintB  Address `json:"mint_b"`
	FeeBps uint16  `json:"fee_bps,omitempty"`

	Pool  Address `json:"pool"`
	Owner Address `json:"owner"`
	Mint  Address `json:"mint"`

	AmountA      uint64    `json:"amount_a,omitempty"`
	AmountB      uint64    `json:"amount_b,omitempty"`
	MinAmountA   uint64    `json:"min_amount_a,omitempty"`
	MinAmountB   uint64    `json:"min_amount_b,omitempty"`
	Direction    Direction `json:"direction,omitempty"`
	AmountIn     uint64    `json:"amount_in,omitempty"`
	MinAmountOut uint64    `json:"min_amount_out,omitempty"`
	LPTokens     uint64    `json:"lp_tokens,omitempty"`
	Amount       uint64    `json:"amount,omitempty"`
}

// Outcome records the result of applying one Operation.
type Outcome struct {
	RunID     string      `json:"run_id"`
	Seq       uint64      `json:"seq"`
	Epoch     int64       `json:"epoch"`
	Op        OpKind      `json:"op"`
	OK        bool        `json:"ok"`
	ErrorCode string      `json:"error_code,omitempty"`
	Error     string      `json:"error,omitempty"`
	Result    interface{} `json:"result,omitempty"`
	Deltas    []Delta     `json:"deltas,omitempty"`
	AppliedAt string      `json:"applied_at"`
}
