package indicator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMAMA(t *testing.T) {
	t.Run("steady_timings_pass_through", func(t *testing.T) {
		m := NewMAMADefault[int64](10)
		steady := (8 * time.Millisecond).Microseconds()
		for i := 0; i < 100; i++ {
			require.Equal(t, steady, m.Update(steady), "iteration %d", i)
		}
	})

	t.Run("ramp_lags_but_follows", func(t *testing.T) {
		m := NewMAMA[int64](50, 0.3, 0.05)
		for v := int64(0); v <= 100; v++ {
			got := m.Update(v)
			require.True(t, v/2 <= got && got <= v, "input %d: got %d", v, got)
		}
	})

	t.Run("oscillating_timings_settle_midway", func(t *testing.T) {
		// alternating fast/slow jobs must converge to the middle
		// instead of chasing each spike
		m := NewMAMA[int64](50, 0.3, 0.05)
		for i := 0; i < 100; i++ {
			low := m.Update(0)
			high := m.Update(100)
			if i > 50 {
				require.True(t, 40 <= low && low <= 60, "iteration %d: %d", i, low)
				require.True(t, 40 <= high && high <= 60, "iteration %d: %d", i, high)
			}
		}
	})

	t.Run("bursty_timings_stay_bounded", func(t *testing.T) {
		m := NewMAMA[int64](50, 0.3, 0.05)
		var got int64
		for i := 0; i < 100; i++ {
			m.Update(0)
			got = m.Update(0)
			if i > 50 {
				require.True(t, 20 <= got && got <= 80, "iteration %d: %d", i, got)
			}
			m.Update(100)
			got = m.Update(100)
			if i > 50 {
				require.True(t, 20 <= got && got <= 80, "iteration %d: %d", i, got)
			}
		}
	})
}
