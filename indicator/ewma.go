// ewma.go implements an exponentially weighted moving average.

package indicator

import (
	"sync"

	"golang.org/x/exp/constraints"
)

type EWMA[T constraints.Integer | constraints.Float] struct {
	Alpha float64

	locker sync.Mutex
	value  float64
	seeded bool
}

var _ MovingAverage[float64] = (*EWMA[float64])(nil)

func NewEWMA[T constraints.Integer | constraints.Float](alpha float64) *EWMA[T] {
	return &EWMA[T]{Alpha: alpha}
}

func (e *EWMA[T]) Update(v T) T {
	e.locker.Lock()
	defer e.locker.Unlock()

	if !e.seeded {
		e.value = float64(v)
		e.seeded = true
		return T(e.value)
	}
	e.value = e.Alpha*float64(v) + (1-e.Alpha)*e.value
	return T(e.value)
}

func (e *EWMA[T]) InitPeriod() int64 {
	return 1
}

func (e *EWMA[T]) Valid() bool {
	e.locker.Lock()
	defer e.locker.Unlock()
	return e.seeded
}
