package stake

import "sync/atomic"

// Clock supplies the current epoch used to stamp and age stake records.
type Clock interface {
	Epoch() int64
}

// ManualClock is a Clock advanced explicitly by its owner.
type ManualClock struct {
	epoch atomic.Int64
}

func NewManualClock(start int64) *ManualClock {
	c := &ManualClock{}
	c.epoch.Store(start)
	return c
}

func (c *ManualClock) Epoch() int64 {
	return c.epoch.Load()
}

// Set moves the clock to epoch. Moving backwards is allowed; elapsed time is floored at
// zero when rewards are computed.
func (c *ManualClock) Set(epoch int64) {
	c.epoch.Store(epoch)
}

// AdvanceTo moves the clock forward to epoch and never moves it back.
func (c *ManualClock) AdvanceTo(epoch int64) {
	for {
		cur := c.epoch.Load()
		if epoch <= cur || c.epoch.CompareAndSwap(cur, epoch) {
			return
		}
	}
}

func (c *ManualClock) Advance(epochs int64) int64 {
	return c.epoch.Add(epochs)
}
