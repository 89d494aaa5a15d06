// Package chrono provides a chronometer which records the increment of every
// start/stop cycle and summarizes them.
package chrono

import (
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/rasterbench/internal/timeutil"
)

// Chronometer accumulates elapsed time over start/stop cycles.
//
// Resetting empties the increments and sets the elapsed time to an optional
// offset. Starting while running restarts the current cycle.
type Chronometer struct {
	clock      timeutil.Clock
	elapsed    time.Duration
	tic        time.Time
	running    bool
	increments []time.Duration
}

// New creates a stopped chronometer. A nil clock uses the wall clock.
func New(clock timeutil.Clock) *Chronometer {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Chronometer{clock: clock}
}

// Reset stops the chronometer, clears increments and sets elapsed to offset.
func (c *Chronometer) Reset(offset time.Duration) {
	c.elapsed = offset
	c.running = false
	c.increments = nil
}

// Start starts or restarts the current cycle.
func (c *Chronometer) Start() {
	c.running = true
	c.tic = c.clock.Now()
}

// Stop ends the current cycle and returns its increment. Calling Stop on a
// stopped chronometer returns zero and records nothing.
func (c *Chronometer) Stop() time.Duration {
	if !c.running {
		return 0
	}
	inc := c.clock.Since(c.tic)
	if inc < 0 {
		inc = 0
	}
	c.running = false
	c.elapsed += inc
	c.increments = append(c.increments, inc)
	return inc
}

// IsRunning reports whether a cycle is in progress.
func (c *Chronometer) IsRunning() bool { return c.running }

// Elapsed returns the total of all increments plus the reset offset.
func (c *Chronometer) Elapsed() time.Duration { return c.elapsed }

// Count returns the number of completed cycles.
func (c *Chronometer) Count() int { return len(c.increments) }

// Last returns the most recent increment, or zero.
func (c *Chronometer) Last() time.Duration {
	if len(c.increments) == 0 {
		return 0
	}
	return c.increments[len(c.increments)-1]
}

// Increments returns a copy of the recorded increments.
func (c *Chronometer) Increments() []time.Duration {
	out := make([]time.Duration, len(c.increments))
	copy(out, c.increments)
	return out
}

// Milliseconds returns the increments in fractional milliseconds.
func (c *Chronometer) Milliseconds() []float64 {
	out := make([]float64, len(c.increments))
	for i, inc := range c.increments {
		out[i] = Milliseconds(inc)
	}
	return out
}

// Mean returns the mean increment in milliseconds.
func (c *Chronometer) Mean() float64 {
	if len(c.increments) == 0 {
		return 0
	}
	return stat.Mean(c.Milliseconds(), nil)
}

// StdDev returns the sample standard deviation of the increments in
// milliseconds, or zero with fewer than two increments.
func (c *Chronometer) StdDev() float64 {
	if len(c.increments) < 2 {
		return 0
	}
	return stat.StdDev(c.Milliseconds(), nil)
}

// Min returns the shortest increment in milliseconds.
func (c *Chronometer) Min() float64 {
	if len(c.increments) == 0 {
		return 0
	}
	return floats.Min(c.Milliseconds())
}

// Max returns the longest increment in milliseconds.
func (c *Chronometer) Max() float64 {
	if len(c.increments) == 0 {
		return 0
	}
	return floats.Max(c.Milliseconds())
}

// Milliseconds converts d to fractional milliseconds.
func Milliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// Summary holds the statistics of a series of increments.
type Summary struct {
	Count  int
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

// Summarize returns the statistics of the recorded increments.
func (c *Chronometer) Summarize() Summary {
	return Summary{
		Count:  c.Count(),
		Mean:   c.Mean(),
		StdDev: c.StdDev(),
		Min:    c.Min(),
		Max:    c.Max(),
	}
}
