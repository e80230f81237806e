package main

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/particlelife/config"
	"github.com/pthm-cable/particlelife/game"
	"github.com/pthm-cable/particlelife/telemetry"
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params      *ParamVector
	maxTicks    int32
	seeds       []int64
	baseConfig  *config.Config
	preset      string
	statsWindow float64

	mu          sync.Mutex
	lastQuality float64 // quality from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator. Every run uses the named
// preset's matrix with the candidate's force parameters.
func NewFitnessEvaluator(params *ParamVector, maxTicks int32, seeds []int64, baseCfg *config.Config, preset string) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		preset:      preset,
		statsWindow: 5.0,
	}
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Fitness is the negated mean quality over all seeds.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg, err := fe.configFor(x)
	if err != nil {
		// Unusable candidates score worst.
		return 0
	}

	// Run all seeds in parallel
	qualities := make([]float64, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			windows := fe.runSimulation(cfg, s)
			qualities[idx] = computeQuality(windows, expectedNeighbours(cfg))
		}(i, seed)
	}
	wg.Wait()

	var total float64
	for _, q := range qualities {
		total += q
	}
	mean := total / float64(len(qualities))

	fe.mu.Lock()
	fe.lastQuality = mean
	fe.mu.Unlock()

	return -mean
}

// configFor returns a copy of the base config with x applied and the
// preset's own overrides removed, so the candidate's parameters are used.
func (fe *FitnessEvaluator) configFor(x []float64) (*config.Config, error) {
	cfg := *fe.baseConfig
	fe.params.ApplyToConfig(&cfg, x)

	i := cfg.PresetIndex(fe.preset)
	if i < 0 {
		i = 0
	}
	if len(cfg.Presets) > 0 {
		p := cfg.Presets[i]
		p.Params = config.ParamOverrides{}
		cfg.Presets = []config.PresetConfig{p}
	}

	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// runSimulation executes a single headless run and returns its windows.
// Games only read the config, so seeds share it.
func (fe *FitnessEvaluator) runSimulation(cfg *config.Config, seed int64) []telemetry.WindowStats {
	var windows []telemetry.WindowStats

	g := game.NewGameWithOptions(game.Options{
		Seed:           seed,
		Headless:       true,
		StatsWindowSec: fe.statsWindow,
		StepsPerUpdate: 1,
		Config:         cfg,
		StatsCallback: func(stats telemetry.WindowStats) {
			windows = append(windows, stats)
		},
	})
	defer g.Unload()

	for g.Tick() < fe.maxTicks {
		g.UpdateHeadless()
	}
	return windows
}

// expectedNeighbours is the mean neighbour count if particles were spread
// uniformly over the domain.
func expectedNeighbours(cfg *config.Config) float64 {
	size := cfg.WorldSize(cfg.Derived.ScreenW32, cfg.Derived.ScreenH32)
	area := float64(size.X) * float64(size.Y)
	if area <= 0 {
		return 0
	}
	r := cfg.Simulation.AttractionRadius
	return float64(cfg.Particles.Count) * math.Pi * r * r / area
}

// Quality component weights.
const (
	qualityWeightClustering = 0.40
	qualityWeightMotion     = 0.25
	qualityWeightStability  = 0.20
	qualityWeightBalance    = 0.15

	qualityWarmupWindows = 2 // skip first N windows (warmup)

	// Mean speed that reads as lively but not boiling.
	targetSpeed      = 40.0
	targetSpeedWidth = 1.0 // log-space tolerance
)

// computeQuality scores emergent structure in [0, 1] from window stats:
// clustered beyond uniform density, moving, steady over time and with every
// colour present.
func computeQuality(windows []telemetry.WindowStats, uniform float64) float64 {
	if len(windows) <= qualityWarmupWindows {
		return 0
	}
	valid := windows[qualityWarmupWindows:]

	var clusterSum, motionSum, balanceSum float64
	density := make([]float64, 0, len(valid))

	for _, w := range valid {
		if w.Particles == 0 {
			continue
		}
		density = append(density, w.NeighboursMean)

		// 1. Clustering: neighbour density relative to a uniform spread
		if uniform > 0 {
			ratio := w.NeighboursMean / uniform
			clusterSum += 1 - math.Exp(-max(ratio-1, 0)/3)
		}

		// 2. Motion: mean speed near the target in log space
		if w.SpeedMean > 0 {
			logErr := math.Log(w.SpeedMean / targetSpeed)
			motionSum += math.Exp(-logErr * logErr / targetSpeedWidth)
		}

		// 4. Balance: colour shares close to even
		balanceSum += math.Exp(-w.ColourSkew * 10)
	}

	n := float64(len(density))
	if n == 0 {
		return 0
	}

	// 3. Stability: coefficient of variation of density across windows
	stabilityScore := 0.0
	if len(density) >= 2 {
		c := cv(density)
		stabilityScore = math.Exp(-c * c * 4)
	}

	quality := qualityWeightClustering*clusterSum/n +
		qualityWeightMotion*motionSum/n +
		qualityWeightStability*stabilityScore +
		qualityWeightBalance*balanceSum/n

	return clamp01(quality)
}

// cv computes the coefficient of variation (std/mean) for a slice of values.
func cv(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean, std := stat.PopMeanStdDev(values, nil)
	if mean == 0 {
		return 0
	}
	return std / mean
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	return min(max(x, 0), 1)
}
