package telemetry

import (
	"log/slog"
	"slices"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/particlelife/systems"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Population at window end
	Particles int `csv:"particles"`
	Colours   int `csv:"colours"`

	// Events during window
	Decayed      int `csv:"decayed"`
	Spawned      int `csv:"spawned"`
	Respawns     int `csv:"respawns"`
	SkippedTicks int `csv:"skipped_ticks"`

	// Speed distribution (sampled at window end)
	SpeedMean float64 `csv:"speed_mean"`
	SpeedStd  float64 `csv:"speed_std"`
	SpeedP10  float64 `csv:"speed_p10"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`

	// Neighbour density averaged over the window's ticks
	NeighboursMean   float64 `csv:"neighbours_mean"`
	MaxCellOccupancy int     `csv:"max_cell_occupancy"`

	// Share of each colour at window end
	ColourShare [systems.MaxColours]float64 `csv:"-"`
	ColourSkew  float64                     `csv:"colour_skew"` // Std of shares; 0 when balanced
}

// SpeedStats calculates mean, std, and percentiles of particle speeds.
// speeds is sorted in place.
func SpeedStats(speeds []float64) (mean, std, p10, p50, p90 float64) {
	n := len(speeds)
	if n == 0 {
		return 0, 0, 0, 0, 0
	}

	if n == 1 {
		mean = speeds[0]
	} else {
		mean, std = stat.MeanStdDev(speeds, nil)
	}

	slices.Sort(speeds)
	p10 = stat.Quantile(0.10, stat.Empirical, speeds, nil)
	p50 = stat.Quantile(0.50, stat.Empirical, speeds, nil)
	p90 = stat.Quantile(0.90, stat.Empirical, speeds, nil)

	return mean, std, p10, p50, p90
}

// ColourShares returns the fraction of particles of each active colour and
// the standard deviation of those fractions.
func ColourShares(counts []int) (shares [systems.MaxColours]float64, skew float64) {
	var total int
	for _, c := range counts {
		total += c
	}
	if total == 0 || len(counts) == 0 {
		return shares, 0
	}

	active := min(len(counts), systems.MaxColours)
	for i := 0; i < active; i++ {
		shares[i] = float64(counts[i]) / float64(total)
	}
	if active > 1 {
		_, skew = stat.PopMeanStdDev(shares[:active], nil)
	}
	return shares, skew
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("particles", s.Particles),
		slog.Int("colours", s.Colours),
		slog.Int("decayed", s.Decayed),
		slog.Int("spawned", s.Spawned),
		slog.Int("respawns", s.Respawns),
		slog.Int("skipped_ticks", s.SkippedTicks),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_std", s.SpeedStd),
		slog.Float64("speed_p10", s.SpeedP10),
		slog.Float64("speed_p50", s.SpeedP50),
		slog.Float64("speed_p90", s.SpeedP90),
		slog.Float64("neighbours_mean", s.NeighboursMean),
		slog.Int("max_cell_occupancy", s.MaxCellOccupancy),
		slog.Float64("colour_skew", s.ColourSkew),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"particles", s.Particles,
		"colours", s.Colours,
		"decayed", s.Decayed,
		"spawned", s.Spawned,
		"respawns", s.Respawns,
		"skipped_ticks", s.SkippedTicks,
		"speed_mean", s.SpeedMean,
		"speed_std", s.SpeedStd,
		"speed_p10", s.SpeedP10,
		"speed_p50", s.SpeedP50,
		"speed_p90", s.SpeedP90,
		"neighbours_mean", s.NeighboursMean,
		"max_cell_occupancy", s.MaxCellOccupancy,
		"colour_skew", s.ColourSkew,
	)
}
