// Package ledger is the caller of the accounting engines. It serialises access to each
// engine, applies journal operations, and turns their results into outcome records.
package ledger

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"ammledger/internal/amm"
	"ammledger/internal/model"
	"ammledger/internal/stake"
)

type Config struct {
	Policy stake.RewardPolicy
	Logger *zap.Logger
	Now    func() time.Time
}

// Ledger owns one pool engine and one stake engine. It is safe for concurrent use;
// each engine is guarded by its own mutex.
type Ledger struct {
	poolMu sync.Mutex
	pools  *amm.Engine

	stakeMu sync.Mutex
	stakes  *stake.Engine

	clock   *stake.ManualClock
	lastSeq atomic.Uint64
	logger  *zap.Logger
	now     func() time.Time
}

func New(cfg Config) *Ledger {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	clock := stake.NewManualClock(0)
	return &Ledger{
		pools:  amm.NewEngine(),
		stakes: stake.NewEngine(stake.Config{Policy: cfg.Policy, Clock: clock}),
		clock:  clock,
		logger: cfg.Logger,
		now:    cfg.Now,
	}
}

// Apply executes one operation and reports its outcome. Engine errors are recorded in
// the outcome rather than returned.
func (l *Ledger) Apply(op model.Operation) model.Outcome {
	l.clock.AdvanceTo(op.Epoch)

	result, deltas, err := l.dispatch(op)
	out := model.Outcome{
		Seq:       op.Seq,
		Epoch:     l.clock.Epoch(),
		Op:        op.Op,
		OK:        err == nil,
		AppliedAt: l.now().UTC().Format(time.RFC3339Nano),
	}
	if err != nil {
		out.ErrorCode = ErrorCode(err)
		out.Error = err.Error()
		l.logger.Debug("operation rejected",
			zap.Uint64("seq", op.Seq),
			zap.String("op", string(op.Op)),
			zap.String("code", out.ErrorCode),
			zap.Error(err),
		)
	} else {
		out.Result = result
		out.Deltas = deltas
	}

	l.bumpSeq(op.Seq)
	return out
}

func (l *Ledger) dispatch(op model.Operation) (interface{}, []model.Delta, error) {
	switch op.Op {
	case model.OpCreatePool:
		l.poolMu.Lock()
		defer l.poolMu.Unlock()
		pool, err := l.pools.CreatePool(op.AmmID, op.MintA, op.MintB, op.FeeBps)
		return pool, nil, err

	case model.OpDeposit:
		l.poolMu.Lock()
		defer l.poolMu.Unlock()
		res, err := l.pools.DepositLiquidity(op.Pool, op.Owner, amm.DepositParams{
			AmountADesired: op.AmountA,
			AmountBDesired: op.AmountB,
			AmountAMin:     op.MinAmountA,
			AmountBMin:     op.MinAmountB,
		})
		return res, res.Deltas, err

	case model.OpSwap:
		l.poolMu.Lock()
		defer l.poolMu.Unlock()
		res, err := l.pools.Swap(op.Pool, op.Owner, op.Direction, op.AmountIn, op.MinAmountOut)
		return res, res.Deltas, err

	case model.OpWithdraw:
		l.poolMu.Lock()
		defer l.poolMu.Unlock()
		res, err := l.pools.WithdrawLiquidity(op.Pool, op.Owner, op.LPTokens)
		return res, res.Deltas, err

	case model.OpInitVault:
		l.stakeMu.Lock()
		defer l.stakeMu.Unlock()
		vault, err := l.stakes.Initialize(op.Mint)
		return vault, nil, err

	case model.OpFundVault:
		l.stakeMu.Lock()
		defer l.stakeMu.Unlock()
		res, err := l.stakes.FundVault(op.Mint, op.Owner, op.Amount)
		return res, res.Deltas, err

	case model.OpStake:
		l.stakeMu.Lock()
		defer l.stakeMu.Unlock()
		res, err := l.stakes.Stake(op.Owner, op.Mint, op.Amount)
		return res, res.Deltas, err

	case model.OpUnstake:
		l.stakeMu.Lock()
		defer l.stakeMu.Unlock()
		res, err := l.stakes.Unstake(op.Owner, op.Mint)
		return res, res.Deltas, err

	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownOp, op.Op)
	}
}

func (l *Ledger) bumpSeq(seq uint64) {
	for {
		cur := l.lastSeq.Load()
		if seq <= cur || l.lastSeq.CompareAndSwap(cur, seq) {
			return
		}
	}
}

// LastSeq is the highest sequence number applied so far.
func (l *Ledger) LastSeq() uint64 {
	return l.lastSeq.Load()
}

// Epoch is the current ledger clock.
func (l *Ledger) Epoch() int64 {
	return l.clock.Epoch()
}

func (l *Ledger) Pool(id model.Address) (model.Pool, bool) {
	l.poolMu.Lock()
	defer l.poolMu.Unlock()
	return l.pools.Pool(id)
}

func (l *Ledger) Position(poolID, owner model.Address) model.LiquidityPosition {
	l.poolMu.Lock()
	defer l.poolMu.Unlock()
	return l.pools.Position(poolID, owner)
}

func (l *Ledger) Vault(mint model.Address) (model.RewardVault, bool) {
	l.stakeMu.Lock()
	defer l.stakeMu.Unlock()
	return l.stakes.Vault(mint)
}

func (l *Ledger) StakeRecord(staker, mint model.Address) (model.StakeRecord, bool) {
	l.stakeMu.Lock()
	defer l.stakeMu.Unlock()
	return l.stakes.Record(staker, mint)
}

// QuoteSwap prices a swap against current reserves without applying it.
func (l *Ledger) QuoteSwap(poolID model.Address, direction model.Direction, amountIn uint64) (amm.SwapQuote, error) {
	l.poolMu.Lock()
	defer l.poolMu.Unlock()
	return l.pools.QuoteSwap(poolID, direction, amountIn)
}

// Snapshot captures both engines at a single point in time.
func (l *Ledger) Snapshot() model.Snapshot {
	l.poolMu.Lock()
	defer l.poolMu.Unlock()
	l.stakeMu.Lock()
	defer l.stakeMu.Unlock()

	pools, positions := l.pools.Snapshot()
	vaults, stakes := l.stakes.Snapshot()
	return model.Snapshot{
		LastSeq:   l.lastSeq.Load(),
		Epoch:     l.clock.Epoch(),
		Pools:     pools,
		Positions: positions,
		Stakes:    stakes,
		Vaults:    vaults,
		UpdatedAt: l.now().UTC().Format(time.RFC3339Nano),
	}
}

// Restore loads a snapshot into both engines. Nothing changes if either engine rejects it.
func (l *Ledger) Restore(snap model.Snapshot) error {
	l.poolMu.Lock()
	defer l.poolMu.Unlock()
	l.stakeMu.Lock()
	defer l.stakeMu.Unlock()

	pools := amm.NewEngine()
	if err := pools.Restore(snap.Pools, snap.Positions); err != nil {
		return fmt.Errorf("restore pools: %w", err)
	}
	stakes := stake.NewEngine(stake.Config{Policy: l.stakes.Policy(), Clock: l.clock})
	if err := stakes.Restore(snap.Vaults, snap.Stakes); err != nil {
		return fmt.Errorf("restore stakes: %w", err)
	}

	l.pools = pools
	l.stakes = stakes
	l.clock.Set(snap.Epoch)
	l.lastSeq.Store(snap.LastSeq)
	return nil
}
