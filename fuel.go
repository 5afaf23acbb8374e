package tmplcore

import (
	"math"
	"sync/atomic"

	"github.com/mitsuhiko/tmplcore/value"
)

type fuelTracker struct {
	initial   uint64
	remaining atomic.Int64
}

func newFuelTracker(fuel uint64) *fuelTracker {
	if fuel > math.MaxInt64 {
		fuel = math.MaxInt64
	}
	tracker := &fuelTracker{initial: fuel}
	tracker.remaining.Store(int64(fuel))
	return tracker
}

// consume takes amount units. A nil tracker has unlimited fuel.
func (f *fuelTracker) consume(amount int64) error {
	if f == nil || amount == 0 {
		return nil
	}
	if f.remaining.Add(-amount) < 0 {
		return value.NewError(value.ErrOutOfFuel, "out of fuel")
	}
	return nil
}

func (f *fuelTracker) remainingFuel() uint64 {
	remaining := f.remaining.Load()
	if remaining <= 0 {
		return 0
	}
	return uint64(remaining)
}

func (f *fuelTracker) consumedFuel() uint64 {
	return f.initial - f.remainingFuel()
}
