package model

// Snapshot is the full persisted state of both engines.
type Snapshot struct {
	LastSeq   uint64              `json:"last_seq"`
	Epoch     int64               `json:"epoch"`
	Pools     []Pool              `json:"pools"`
	Positions []LiquidityPosition `json:"positions"`
	Stakes    []StakeRecord       `json:"stakes"`
	Vaults    []RewardVault       `json:"vaults"`
	UpdatedAt string              `json:"updated_at"`
}
