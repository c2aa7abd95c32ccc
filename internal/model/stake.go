package model

// StakeRecord is an active stake of one mint by one staker.
type StakeRecord struct {
	ID            Address `json:"id"`
	Staker        Address `json:"staker"`
	Mint          Address `json:"mint"`
	Amount        uint64  `json:"amount"`
	IsStaked      bool    `json:"is_staked"`
	StakedAtEpoch int64   `json:"staked_at_epoch"`
}

// Active reports whether the record still holds principal.
func (r StakeRecord) Active() bool {
	return r.IsStaked && r.Amount > 0
}

// RewardVault holds the rewards paid out on unstake for a mint.
type RewardVault struct {
	ID      Address `json:"id"`
	Mint    Address `json:"mint"`
	Balance uint64  `json:"balance"`
}
