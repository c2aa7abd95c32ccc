package derive

import "ammledger/internal/model"

// Namespaces stand in for the two on-chain program ids.
const (
	AMMNamespace   = "amm"
	StakeNamespace = "stake"
)

var (
	seedAmm           = []byte("amm")
	seedAuthority     = []byte("authority")
	seedMintLiquidity = []byte("mint_liquidity")
	seedStakeInfo     = []byte("stake_info")
	seedRewardVault   = []byte("reward_vault")
	seedStakeVault    = []byte("stake_vault")
)

// AmmAddress is the account of the AMM instance identified by id.
func AmmAddress(id model.Address) model.Address {
	return mustDerive(AMMNamespace, seedAmm, id[:])
}

// PoolAddress is the pool account for a mint pair under an AMM instance.
func PoolAddress(ammID, mintA, mintB model.Address) model.Address {
	amm := AmmAddress(ammID)
	return mustDerive(AMMNamespace, amm[:], mintA[:], mintB[:])
}

// PoolAuthority owns the pool's token reserves and the LP mint.
func PoolAuthority(ammID, mintA, mintB model.Address) model.Address {
	amm := AmmAddress(ammID)
	return mustDerive(AMMNamespace, amm[:], mintA[:], mintB[:], seedAuthority)
}

// LiquidityMint is the LP token mint of a pool.
func LiquidityMint(ammID, mintA, mintB model.Address) model.Address {
	amm := AmmAddress(ammID)
	return mustDerive(AMMNamespace, amm[:], mintA[:], mintB[:], seedMintLiquidity)
}

func StakeRecord(staker, mint model.Address) model.Address {
	return mustDerive(StakeNamespace, seedStakeInfo, staker[:], mint[:])
}

// StakeVault holds the principal of one stake record.
func StakeVault(record model.Address) model.Address {
	return mustDerive(StakeNamespace, seedStakeVault, record[:])
}

func RewardVault(mint model.Address) model.Address {
	return mustDerive(StakeNamespace, seedRewardVault, mint[:])
}
