// Package telemetry provides simulation health tracking, bookmarking, and snapshots.
package telemetry

import (
	"math"

	"github.com/pthm-cable/particlelife/systems"
)

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int32
	dt                  float32

	// Current window tracking
	windowStartTick int32

	// Event counters for current window
	decayed      int
	spawned      int
	respawns     int
	skippedTicks int

	// Per-tick step aggregates
	steps            int
	neighbourSum     float64 // Sum over ticks of neighbours per particle
	maxCellOccupancy int
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec float64, dt float32) *Collector {
	ticksPerWindow := int32(math.Round(windowDurationSec / float64(dt)))
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// RecordStep folds one tick's step statistics into the window.
func (c *Collector) RecordStep(s systems.StepStats) {
	if s.Skipped {
		c.skippedTicks++
		return
	}
	c.steps++
	if s.Particles > 0 {
		c.neighbourSum += float64(s.Neighbours) / float64(s.Particles)
	}
	c.maxCellOccupancy = max(c.maxCellOccupancy, s.MaxCellOccupancy)
}

// RecordDecay records n particles re-placed by decay.
func (c *Collector) RecordDecay(n int) {
	c.decayed += n
}

// RecordSpawn records a brush spawn.
func (c *Collector) RecordSpawn() {
	c.spawned++
}

// RecordRespawn records a full respawn.
func (c *Collector) RecordRespawn() {
	c.respawns++
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats and resets counters for the next window.
// speeds is sorted in place; colourCounts holds one entry per active colour.
func (c *Collector) Flush(currentTick int32, speeds []float64, colourCounts []int) WindowStats {
	mean, std, p10, p50, p90 := SpeedStats(speeds)
	shares, skew := ColourShares(colourCounts)

	var neighbours float64
	if c.steps > 0 {
		neighbours = c.neighbourSum / float64(c.steps)
	}

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * float64(c.dt),

		Particles: len(speeds),
		Colours:   len(colourCounts),

		Decayed:      c.decayed,
		Spawned:      c.spawned,
		Respawns:     c.respawns,
		SkippedTicks: c.skippedTicks,

		SpeedMean: mean,
		SpeedStd:  std,
		SpeedP10:  p10,
		SpeedP50:  p50,
		SpeedP90:  p90,

		NeighboursMean:   neighbours,
		MaxCellOccupancy: c.maxCellOccupancy,

		ColourShare: shares,
		ColourSkew:  skew,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.decayed = 0
	c.spawned = 0
	c.respawns = 0
	c.skippedTicks = 0
	c.steps = 0
	c.neighbourSum = 0
	c.maxCellOccupancy = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
