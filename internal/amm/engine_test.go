package amm

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"ammledger/internal/derive"
	"ammledger/internal/model"
)

var (
	ammID    = addr(0xA0)
	mintA    = addr(0x01)
	mintB    = addr(0x02)
	alice    = addr(0x10)
	bob      = addr(0x11)
	feeOnePc = uint16(100)
)

func addr(b byte) model.Address {
	var a model.Address
	a[0] = b
	a[31] = b
	return a
}

func newPool(t *testing.T, fee uint16) (*Engine, model.Address) {
	t.Helper()
	e := NewEngine()
	pool, err := e.CreatePool(ammID, mintA, mintB, fee)
	require.NoError(t, err)
	return e, pool.ID
}

func deposit(t *testing.T, e *Engine, pool model.Address, owner model.Address, a, b uint64) DepositResult {
	t.Helper()
	res, err := e.DepositLiquidity(pool, owner, DepositParams{AmountADesired: a, AmountBDesired: b})
	require.NoError(t, err)
	return res
}

func TestCreatePool(t *testing.T) {
	req := require.New(t)
	e := NewEngine()

	pool, err := e.CreatePool(ammID, mintA, mintB, feeOnePc)
	req.NoError(err)
	req.Equal(derive.PoolAddress(ammID, mintA, mintB), pool.ID)
	req.Equal(derive.PoolAuthority(ammID, mintA, mintB), pool.Authority)
	req.Equal(derive.LiquidityMint(ammID, mintA, mintB), pool.LiquidityMint)
	req.Zero(pool.ReserveA)
	req.Zero(pool.ReserveB)
	req.Zero(pool.TotalLiquidity)

	_, err = e.CreatePool(ammID, mintA, mintB, feeOnePc)
	req.ErrorIs(err, ErrDuplicatePool)

	_, err = e.CreatePool(addr(0xA1), mintA, mintB, feeOnePc)
	req.NoError(err, "same mints under another amm id")

	_, err = e.CreatePool(ammID, mintA, addr(0x03), model.MaxFeeBps+1)
	req.ErrorIs(err, ErrInvalidFee)

	_, err = e.CreatePool(ammID, mintA, mintA, feeOnePc)
	req.ErrorIs(err, ErrIdenticalMints)
}

func TestFirstDepositMintsSqrt(t *testing.T) {
	req := require.New(t)
	e, poolID := newPool(t, feeOnePc)

	res := deposit(t, e, poolID, alice, 100, 200)
	req.Equal(uint64(100), res.AmountA)
	req.Equal(uint64(200), res.AmountB)
	req.Equal(uint64(141), res.LPMinted)

	pool, ok := e.Pool(poolID)
	req.True(ok)
	req.Equal(uint64(100), pool.ReserveA)
	req.Equal(uint64(200), pool.ReserveB)
	req.Equal(uint64(141), pool.TotalLiquidity)
	req.Equal(uint64(141), e.Position(poolID, alice).LPTokens)

	net := netByAccount(res.Deltas)
	req.Equal(int64(-100), net[[2]model.Address{alice, mintA}])
	req.Equal(int64(-200), net[[2]model.Address{alice, mintB}])
	req.Equal(int64(100), net[[2]model.Address{pool.Authority, mintA}])
	req.Equal(int64(200), net[[2]model.Address{pool.Authority, mintB}])
	req.Equal(int64(141), net[[2]model.Address{alice, pool.LiquidityMint}])
}

func TestDepositKeepsRatio(t *testing.T) {
	cases := []struct {
		name string
		a, b uint64
	}{
		{"exact ratio", 10, 30},
		{"excess b", 10, 1000},
		{"excess a", 1000, 30},
		{"odd amounts", 333, 777},
		{"large", 1_000_000, 2_999_999},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := require.New(t)
			e, poolID := newPool(t, feeOnePc)
			deposit(t, e, poolID, alice, 1000, 3000)
			before, _ := e.Pool(poolID)

			res := deposit(t, e, poolID, bob, tc.a, tc.b)
			req.LessOrEqual(res.AmountA, tc.a)
			req.LessOrEqual(res.AmountB, tc.b)

			after, _ := e.Pool(poolID)
			left := new(big.Int).Mul(new(big.Int).SetUint64(after.ReserveA), new(big.Int).SetUint64(before.ReserveB))
			right := new(big.Int).Mul(new(big.Int).SetUint64(after.ReserveB), new(big.Int).SetUint64(before.ReserveA))
			diff := new(big.Int).Abs(new(big.Int).Sub(left, right))
			bound := new(big.Int).SetUint64(max(before.ReserveA, before.ReserveB))
			req.True(diff.Cmp(bound) < 0, "ratio drift %s exceeds %s", diff, bound)

			req.Equal(before.TotalLiquidity+res.LPMinted, after.TotalLiquidity)
			req.Equal(res.LPMinted, e.Position(poolID, bob).LPTokens)
		})
	}
}

func TestDepositRejects(t *testing.T) {
	req := require.New(t)
	e, poolID := newPool(t, feeOnePc)

	_, err := e.DepositLiquidity(poolID, alice, DepositParams{AmountADesired: 0, AmountBDesired: 10})
	req.ErrorIs(err, ErrZeroAmount)

	_, err = e.DepositLiquidity(addr(0xEE), alice, DepositParams{AmountADesired: 1, AmountBDesired: 1})
	req.ErrorIs(err, ErrPoolNotFound)

	deposit(t, e, poolID, alice, 100, 200)
	before, _ := e.Pool(poolID)

	_, err = e.DepositLiquidity(poolID, bob, DepositParams{AmountADesired: 10, AmountBDesired: 100, AmountBMin: 25})
	req.ErrorIs(err, ErrSlippageExceeded)

	// 1 of B implies 0 of A at a 1:2 ratio.
	_, err = e.DepositLiquidity(poolID, bob, DepositParams{AmountADesired: 100, AmountBDesired: 1})
	req.ErrorIs(err, ErrZeroAmount)

	after, _ := e.Pool(poolID)
	req.Equal(before, after)
	req.Zero(e.Position(poolID, bob).LPTokens)
}

func TestDepositOverflow(t *testing.T) {
	req := require.New(t)
	e, poolID := newPool(t, feeOnePc)
	deposit(t, e, poolID, alice, math.MaxUint64-1, math.MaxUint64-1)
	before, _ := e.Pool(poolID)

	_, err := e.DepositLiquidity(poolID, bob, DepositParams{AmountADesired: 10, AmountBDesired: 10})
	req.ErrorIs(err, ErrArithmeticOverflow)

	after, _ := e.Pool(poolID)
	req.Equal(before, after)
}

func TestSwapExample(t *testing.T) {
	req := require.New(t)
	e, poolID := newPool(t, feeOnePc)
	deposit(t, e, poolID, alice, 110, 182)

	res, err := e.Swap(poolID, bob, model.AToB, 10, 1)
	req.NoError(err)
	req.Equal(uint64(9), res.AmountInAfterFee)
	req.Equal(uint64(1), res.Fee)
	req.Equal(uint64(13), res.AmountOut)
	req.Equal(mintA, res.MintIn)
	req.Equal(mintB, res.MintOut)

	pool, _ := e.Pool(poolID)
	req.Equal(uint64(120), pool.ReserveA)
	req.Equal(uint64(169), pool.ReserveB)

	net := netByAccount(res.Deltas)
	req.Equal(int64(-10), net[[2]model.Address{bob, mintA}])
	req.Equal(int64(13), net[[2]model.Address{bob, mintB}])
	req.Equal(int64(10), net[[2]model.Address{pool.Authority, mintA}])
	req.Equal(int64(-13), net[[2]model.Address{pool.Authority, mintB}])
}

func TestSwapConstantProductNonDecreasing(t *testing.T) {
	req := require.New(t)
	for _, fee := range []uint16{0, 30, 100, 10_000} {
		e, poolID := newPool(t, fee)
		deposit(t, e, poolID, alice, 50_000, 80_000)

		for i, amountIn := range []uint64{1, 7, 99, 1_000, 25_000, 3, 60_000} {
			direction := model.AToB
			if i%2 == 1 {
				direction = model.BToA
			}
			before, _ := e.Pool(poolID)
			_, err := e.Swap(poolID, bob, direction, amountIn, 0)
			if err != nil {
				req.ErrorIs(err, ErrZeroAmount)
				continue
			}
			after, _ := e.Pool(poolID)

			k0 := new(big.Int).Mul(new(big.Int).SetUint64(before.ReserveA), new(big.Int).SetUint64(before.ReserveB))
			k1 := new(big.Int).Mul(new(big.Int).SetUint64(after.ReserveA), new(big.Int).SetUint64(after.ReserveB))
			req.True(k1.Cmp(k0) >= 0, "fee %d swap %d: k decreased %s -> %s", fee, amountIn, k0, k1)
			req.NotZero(after.ReserveA)
			req.NotZero(after.ReserveB)
		}
	}
}

func TestSwapRejectsLeaveStateUnchanged(t *testing.T) {
	req := require.New(t)
	e, poolID := newPool(t, feeOnePc)

	_, err := e.Swap(poolID, bob, model.AToB, 10, 0)
	req.ErrorIs(err, ErrEmptyPool)

	deposit(t, e, poolID, alice, 110, 182)
	before, _ := e.Pool(poolID)

	_, err = e.Swap(poolID, bob, model.AToB, 10, 14)
	req.ErrorIs(err, ErrSlippageExceeded)

	_, err = e.Swap(poolID, bob, model.AToB, 0, 0)
	req.ErrorIs(err, ErrZeroAmount)

	_, err = e.Swap(poolID, bob, model.Direction("sideways"), 10, 0)
	req.ErrorIs(err, ErrInvalidDirection)

	_, err = e.Swap(poolID, bob, model.BToA, 1, 0)
	req.ErrorIs(err, ErrZeroAmount, "output rounds down to zero")

	_, err = e.Swap(poolID, bob, model.AToB, math.MaxUint64, 0)
	req.ErrorIs(err, ErrArithmeticOverflow)

	after, _ := e.Pool(poolID)
	req.Equal(before, after)
}

func TestQuoteSwapDoesNotMutate(t *testing.T) {
	req := require.New(t)
	e, poolID := newPool(t, feeOnePc)
	deposit(t, e, poolID, alice, 110, 182)

	quote, err := e.QuoteSwap(poolID, model.AToB, 10)
	req.NoError(err)
	req.Equal(uint64(13), quote.AmountOut)

	pool, _ := e.Pool(poolID)
	req.Equal(uint64(110), pool.ReserveA)
	req.Equal(uint64(182), pool.ReserveB)
}

func TestWithdrawLiquidity(t *testing.T) {
	req := require.New(t)
	e, poolID := newPool(t, feeOnePc)
	deposit(t, e, poolID, alice, 100, 200)

	res, err := e.WithdrawLiquidity(poolID, alice, 50)
	req.NoError(err)
	req.Equal(uint64(35), res.AmountA)
	req.Equal(uint64(70), res.AmountB)
	req.Equal(uint64(91), e.Position(poolID, alice).LPTokens)

	pool, _ := e.Pool(poolID)
	req.Equal(uint64(65), pool.ReserveA)
	req.Equal(uint64(130), pool.ReserveB)
	req.Equal(uint64(91), pool.TotalLiquidity)

	net := netByAccount(res.Deltas)
	req.Equal(int64(-50), net[[2]model.Address{alice, pool.LiquidityMint}])
	req.Equal(int64(35), net[[2]model.Address{alice, mintA}])
	req.Equal(int64(70), net[[2]model.Address{alice, mintB}])
}

func TestWithdrawMoreThanPositionFails(t *testing.T) {
	req := require.New(t)
	e, poolID := newPool(t, feeOnePc)
	deposit(t, e, poolID, alice, 100, 200)
	deposit(t, e, poolID, bob, 10, 20)
	before, _ := e.Pool(poolID)
	held := e.Position(poolID, bob).LPTokens

	_, err := e.WithdrawLiquidity(poolID, bob, held+1)
	req.ErrorIs(err, ErrInsufficientBalance)

	_, err = e.WithdrawLiquidity(poolID, addr(0x99), 1)
	req.ErrorIs(err, ErrInsufficientBalance)

	_, err = e.WithdrawLiquidity(poolID, bob, 0)
	req.ErrorIs(err, ErrZeroAmount)

	after, _ := e.Pool(poolID)
	req.Equal(before, after)
	req.Equal(held, e.Position(poolID, bob).LPTokens)
}

func TestWithdrawAllEmptiesPool(t *testing.T) {
	req := require.New(t)
	e, poolID := newPool(t, feeOnePc)
	deposit(t, e, poolID, alice, 100, 200)

	_, err := e.WithdrawLiquidity(poolID, alice, 141)
	req.NoError(err)

	pool, _ := e.Pool(poolID)
	req.Zero(pool.ReserveA)
	req.Zero(pool.ReserveB)
	req.Zero(pool.TotalLiquidity)
	_, positions := e.Snapshot()
	req.Empty(positions)

	res := deposit(t, e, poolID, bob, 9, 4)
	req.Equal(uint64(6), res.LPMinted, "empty pool accepts a fresh ratio")
}

func TestWithdrawThenDepositRestoresLiquidity(t *testing.T) {
	req := require.New(t)
	e, poolID := newPool(t, feeOnePc)
	deposit(t, e, poolID, alice, 100, 200)
	before, _ := e.Pool(poolID)

	w, err := e.WithdrawLiquidity(poolID, alice, 50)
	req.NoError(err)
	deposit(t, e, poolID, alice, w.AmountA, w.AmountB)

	after, _ := e.Pool(poolID)
	req.LessOrEqual(after.TotalLiquidity, before.TotalLiquidity)
	req.GreaterOrEqual(after.TotalLiquidity+2, before.TotalLiquidity)
}

func TestSnapshotRestore(t *testing.T) {
	req := require.New(t)
	e, poolID := newPool(t, feeOnePc)
	deposit(t, e, poolID, alice, 100, 200)
	deposit(t, e, poolID, bob, 10, 20)

	pools, positions := e.Snapshot()
	restored := NewEngine()
	req.NoError(restored.Restore(pools, positions))

	gotPools, gotPositions := restored.Snapshot()
	req.Equal(pools, gotPools)
	req.Equal(positions, gotPositions)

	positions[0].LPTokens++
	err := restored.Restore(pools, positions)
	req.Error(err)
	req.Contains(err.Error(), "positions sum")
	still, _ := restored.Snapshot()
	req.Equal(pools, still)
}

func TestRestoreRejectsInconsistentPools(t *testing.T) {
	e, poolID := newPool(t, feeOnePc)
	deposit(t, e, poolID, alice, 100, 200)
	pools, positions := e.Snapshot()

	cases := []struct {
		name   string
		mutate func(p *model.Pool)
	}{
		{"one reserve empty", func(p *model.Pool) { p.ReserveB = 0 }},
		{"reserves without liquidity", func(p *model.Pool) { p.TotalLiquidity = 0 }},
		{"foreign id", func(p *model.Pool) { p.ID = addr(0x77) }},
		{"foreign authority", func(p *model.Pool) { p.Authority = addr(0x78) }},
		{"foreign liquidity mint", func(p *model.Pool) { p.LiquidityMint = addr(0x79) }},
		{"identical mints", func(p *model.Pool) { p.MintB = p.MintA }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			bad := append([]model.Pool(nil), pools...)
			tc.mutate(&bad[0])
			restored := NewEngine()
			require.Error(t, restored.Restore(bad, positions))
			require.Empty(t, restored.Pools())
		})
	}
}

func TestRestoreKeepsPoolUnique(t *testing.T) {
	e, _ := newPool(t, feeOnePc)
	pools, positions := e.Snapshot()

	restored := NewEngine()
	require.NoError(t, restored.Restore(pools, positions))
	_, err := restored.CreatePool(ammID, mintA, mintB, 30)
	require.ErrorIs(t, err, ErrDuplicatePool)
	require.Len(t, restored.Pools(), 1)
}

// netByAccount sums deltas per (owner, mint) as signed values.
func netByAccount(deltas []model.Delta) map[[2]model.Address]int64 {
	out := make(map[[2]model.Address]int64, len(deltas))
	for _, d := range deltas {
		key := [2]model.Address{d.Owner, d.Mint}
		if d.Side == model.Credit {
			out[key] += int64(d.Amount)
		} else {
			out[key] -= int64(d.Amount)
		}
	}
	return out
}
