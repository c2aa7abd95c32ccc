// Package stake implements stake and reward accounting: one reward vault per mint,
// at most one active stake per (staker, mint), and reward payout on unstake.
package stake

import (
	"fmt"
	"sort"

	"ammledger/internal/derive"
	"ammledger/internal/model"
	"ammledger/internal/safemath"
)

// DefaultRateBps is the reward rate used when none is configured (10%).
const DefaultRateBps = 1_000

type Config struct {
	Policy RewardPolicy
	Clock  Clock
}

// Engine owns reward vaults and stake records. It is not safe for concurrent use.
type Engine struct {
	policy  RewardPolicy
	clock   Clock
	vaults  map[model.Address]*model.RewardVault
	records map[model.Address]*model.StakeRecord
}

type StakeResult struct {
	Record model.StakeRecord `json:"record"`
	Deltas []model.Delta     `json:"-"`
}

type UnstakeResult struct {
	Principal     uint64        `json:"principal"`
	RewardOwed    uint64        `json:"reward_owed"`
	RewardPaid    uint64        `json:"reward_paid"`
	ElapsedEpochs uint64        `json:"elapsed_epochs"`
	VaultBalance  uint64        `json:"vault_balance"`
	Deltas        []model.Delta `json:"-"`
}

type FundResult struct {
	Vault  model.RewardVault `json:"vault"`
	Deltas []model.Delta     `json:"-"`
}

func NewEngine(cfg Config) *Engine {
	if cfg.Policy == nil {
		cfg.Policy = LinearRate{RateBps: DefaultRateBps}
	}
	if cfg.Clock == nil {
		cfg.Clock = NewManualClock(0)
	}
	return &Engine{
		policy:  cfg.Policy,
		clock:   cfg.Clock,
		vaults:  make(map[model.Address]*model.RewardVault),
		records: make(map[model.Address]*model.StakeRecord),
	}
}

// Initialize creates the reward vault for mint with a zero balance.
func (e *Engine) Initialize(mint model.Address) (model.RewardVault, error) {
	if _, ok := e.vaults[mint]; ok {
		return model.RewardVault{}, fmt.Errorf("%w: %s", ErrAlreadyInitialized, mint)
	}
	vault := &model.RewardVault{ID: derive.RewardVault(mint), Mint: mint}
	e.vaults[mint] = vault
	return *vault, nil
}

// FundVault credits rewards into the vault from funder.
func (e *Engine) FundVault(mint, funder model.Address, amount uint64) (FundResult, error) {
	vault, ok := e.vaults[mint]
	if !ok {
		return FundResult{}, fmt.Errorf("%w: %s", ErrVaultNotFound, mint)
	}
	if amount == 0 {
		return FundResult{}, ErrZeroAmount
	}
	balance, err := safemath.Add(vault.Balance, amount)
	if err != nil {
		return FundResult{}, err
	}

	vault.Balance = balance
	return FundResult{
		Vault: *vault,
		Deltas: []model.Delta{
			model.DebitOf(funder, mint, amount),
			model.CreditOf(vault.ID, mint, amount),
		},
	}, nil
}

// Stake opens a record for (staker, mint) and moves amount into its stake vault.
func (e *Engine) Stake(staker, mint model.Address, amount uint64) (StakeResult, error) {
	if amount == 0 {
		return StakeResult{}, ErrZeroAmount
	}
	id := derive.StakeRecord(staker, mint)
	if rec, ok := e.records[id]; ok && rec.Active() {
		return StakeResult{}, ErrAlreadyStaked
	}
	if _, ok := e.vaults[mint]; !ok {
		return StakeResult{}, fmt.Errorf("%w: %s", ErrVaultNotFound, mint)
	}

	rec := &model.StakeRecord{
		ID:            id,
		Staker:        staker,
		Mint:          mint,
		Amount:        amount,
		IsStaked:      true,
		StakedAtEpoch: e.clock.Epoch(),
	}
	e.records[id] = rec
	return StakeResult{
		Record: *rec,
		Deltas: []model.Delta{
			model.DebitOf(staker, mint, amount),
			model.CreditOf(derive.StakeVault(id), mint, amount),
		},
	}, nil
}

// Unstake returns principal plus reward and closes the record. The reward is capped at
// the vault balance; the cap reduces the payout instead of failing.
func (e *Engine) Unstake(staker, mint model.Address) (UnstakeResult, error) {
	id := derive.StakeRecord(staker, mint)
	rec, ok := e.records[id]
	if !ok || !rec.Active() {
		return UnstakeResult{}, ErrNotStaked
	}
	vault, ok := e.vaults[mint]
	if !ok {
		return UnstakeResult{}, fmt.Errorf("%w: %s", ErrVaultNotFound, mint)
	}

	var elapsed uint64
	if now := e.clock.Epoch(); now > rec.StakedAtEpoch {
		elapsed = uint64(now - rec.StakedAtEpoch)
	}
	owed, err := e.policy.Reward(rec.Amount, elapsed)
	if err != nil {
		return UnstakeResult{}, fmt.Errorf("reward: %w", err)
	}
	paid := min(owed, vault.Balance)
	payout, err := safemath.Add(rec.Amount, paid)
	if err != nil {
		return UnstakeResult{}, err
	}

	vault.Balance -= paid
	delete(e.records, id)

	deltas := []model.Delta{model.DebitOf(derive.StakeVault(id), mint, rec.Amount)}
	if paid > 0 {
		deltas = append(deltas, model.DebitOf(vault.ID, mint, paid))
	}
	deltas = append(deltas, model.CreditOf(staker, mint, payout))

	return UnstakeResult{
		Principal:     rec.Amount,
		RewardOwed:    owed,
		RewardPaid:    paid,
		ElapsedEpochs: elapsed,
		VaultBalance:  vault.Balance,
		Deltas:        deltas,
	}, nil
}

func (e *Engine) Policy() RewardPolicy {
	return e.policy
}

func (e *Engine) Vault(mint model.Address) (model.RewardVault, bool) {
	vault, ok := e.vaults[mint]
	if !ok {
		return model.RewardVault{}, false
	}
	return *vault, true
}

func (e *Engine) Record(staker, mint model.Address) (model.StakeRecord, bool) {
	rec, ok := e.records[derive.StakeRecord(staker, mint)]
	if !ok {
		return model.StakeRecord{}, false
	}
	return *rec, true
}

// Snapshot returns vaults ordered by mint and records ordered by id.
func (e *Engine) Snapshot() ([]model.RewardVault, []model.StakeRecord) {
	vaults := make([]model.RewardVault, 0, len(e.vaults))
	for _, v := range e.vaults {
		vaults = append(vaults, *v)
	}
	sort.Slice(vaults, func(i, j int) bool { return vaults[i].Mint.Compare(vaults[j].Mint) < 0 })

	records := make([]model.StakeRecord, 0, len(e.records))
	for _, r := range e.records {
		records = append(records, *r)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID.Compare(records[j].ID) < 0 })
	return vaults, records
}

// Restore replaces the engine state; inactive records are dropped. On error the engine
// is left unchanged.
func (e *Engine) Restore(vaults []model.RewardVault, records []model.StakeRecord) error {
	nextVaults := make(map[model.Address]*model.RewardVault, len(vaults))
	for i := range vaults {
		v := vaults[i]
		if _, ok := nextVaults[v.Mint]; ok {
			return fmt.Errorf("restore: %w: %s", ErrAlreadyInitialized, v.Mint)
		}
		if want := derive.RewardVault(v.Mint); v.ID != want {
			return fmt.Errorf("restore: vault %s does not match derived %s for mint %s", v.ID, want, v.Mint)
		}
		nextVaults[v.Mint] = &v
	}

	nextRecords := make(map[model.Address]*model.StakeRecord, len(records))
	for i := range records {
		r := records[i]
		if !r.Active() {
			continue
		}
		if r.ID != derive.StakeRecord(r.Staker, r.Mint) {
			return fmt.Errorf("restore: stake record %s does not match staker %s mint %s", r.ID, r.Staker, r.Mint)
		}
		if _, ok := nextRecords[r.ID]; ok {
			return fmt.Errorf("restore: %w: %s", ErrAlreadyStaked, r.ID)
		}
		nextRecords[r.ID] = &r
	}

	e.vaults = nextVaults
	e.records = nextRecords
	return nil
}
