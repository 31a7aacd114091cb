// statistics.go defines the aggregate motion statistics of one frame pair.

// Package motion estimates the apparent motion between two consecutive
// decoded frames and reduces it to aggregate statistics.
package motion

import (
	"fmt"
	"math"
)

// Vector is one sampled displacement, in pixels.
type Vector struct {
	X float64
	Y float64
}

// Statistics is the aggregate of the sampled motion field for one frame
// pair. It is computed fresh per pair and never persisted beyond one
// interpolation decision.
type Statistics struct {
	AvgX      float64
	AvgY      float64
	Magnitude float64
	Angle     float64 // radians

	// Coherence is |mean vector| / mean(|vector|): 1 when the motion is
	// uniform, and it goes towards 0 when the vectors cancel each other
	// out (turbulent or noisy motion).
	Coherence float64
}

func (s Statistics) String() string {
	return fmt.Sprintf(
		"MotionStatistics(avg:(%.3f,%.3f), mag:%.3f, angle:%.3f, coherence:%.3f)",
		s.AvgX, s.AvgY, s.Magnitude, s.Angle, s.Coherence,
	)
}

// aggregate reduces sampled displacement vectors to Statistics. Samples
// with non-finite components are rejected instead of poisoning the
// aggregate.
func aggregate(vectors []Vector) Statistics {
	var sumX, sumY, sumMag float64
	var count int
	for _, v := range vectors {
		if !isFinite(v.X) || !isFinite(v.Y) {
			continue
		}
		sumX += v.X
		sumY += v.Y
		sumMag += math.Hypot(v.X, v.Y)
		count++
	}
	if count == 0 {
		return Statistics{}
	}

	avgX := sumX / float64(count)
	avgY := sumY / float64(count)
	magnitude := math.Hypot(avgX, avgY)
	meanMag := sumMag / float64(count)

	coherence := 0.0
	if meanMag > 0 {
		coherence = magnitude / meanMag
	}
	if coherence > 1 {
		coherence = 1
	}

	return Statistics{
		AvgX:      avgX,
		AvgY:      avgY,
		Magnitude: magnitude,
		Angle:     math.Atan2(avgY, avgX),
		Coherence: coherence,
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
