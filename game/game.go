package game

import (
	"log/slog"
	"math/rand"
	"time"

	"github.com/pthm-cable/particlelife/config"
	"github.com/pthm-cable/particlelife/systems"
	"github.com/pthm-cable/particlelife/telemetry"
)

// Speed limits for steps per update.
const (
	MinStepsPerUpdate = 1
	MaxStepsPerUpdate = 10
)

// Game holds the complete simulation state. It never touches the window;
// the viewer package drives it in graphical mode.
type Game struct {
	cfg *config.Config
	rng *rand.Rand

	// Particles and physics
	store   *particleStore
	sim     *systems.Simulator
	model   *systems.Model
	params  systems.Params
	spawner *spawner
	dt      float32

	// Domain, centred on the origin
	world systems.Rect

	// Window dimensions
	screenWidth, screenHeight float32

	// Lifecycle cursors (slot indices in spawn order)
	recycleCursor int
	decayCursor   int
	decayTimer    float32
	decayDebt     float32

	preset int

	// State
	tick           int32
	paused         bool
	headless       bool
	stepsPerUpdate int

	perfLog    bool
	frameStats *PerfStats

	// Telemetry
	rngSeed          int64
	collector        *telemetry.Collector
	perfCollector    *telemetry.PerfCollector
	bookmarkDetector *telemetry.BookmarkDetector
	outputManager    *telemetry.OutputManager
	logStats         bool
	statsCallback    func(telemetry.WindowStats)
	speedBuf         []float64
}

// Options configures game initialization.
type Options struct {
	Seed           int64
	LogStats       bool
	StatsWindowSec float64
	OutputDir      string
	Headless       bool
	StepsPerUpdate int
	Preset         string // Preset name; empty loads the first preset
	PerfLog        bool   // Show the perf panel and dump perf to the log

	// Config overrides the global config (used by cmd/tune for parallel runs).
	Config *config.Config

	// StatsCallback is called after every stats window flush.
	StatsCallback func(telemetry.WindowStats)
}

// NewGameWithOptions creates a new game instance.
func NewGameWithOptions(opts Options) *Game {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}

	statsWindow := opts.StatsWindowSec
	if statsWindow <= 0 {
		statsWindow = cfg.Telemetry.StatsWindow
	}
	steps := min(max(opts.StepsPerUpdate, MinStepsPerUpdate), MaxStepsPerUpdate)
	if opts.Headless && opts.StepsPerUpdate > MaxStepsPerUpdate {
		steps = opts.StepsPerUpdate
	}

	rng := rand.New(rand.NewSource(opts.Seed))

	g := &Game{
		cfg:            cfg,
		rng:            rng,
		rngSeed:        opts.Seed,
		store:          newParticleStore(),
		model:          systems.NewModel(cfg.Simulation.Colours),
		params:         cfg.Derived.Params,
		spawner:        newSpawner(cfg.Spawn, opts.Seed, rng),
		dt:             cfg.Derived.DT32,
		screenWidth:    cfg.Derived.ScreenW32,
		screenHeight:   cfg.Derived.ScreenH32,
		preset:         customPreset,
		headless:       opts.Headless,
		stepsPerUpdate: steps,
		perfLog:        opts.PerfLog,
		frameStats:     NewPerfStats(),

		collector:        telemetry.NewCollector(statsWindow, cfg.Derived.DT32),
		perfCollector:    telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		bookmarkDetector: telemetry.NewBookmarkDetector(10),
		logStats:         opts.LogStats,
		statsCallback:    opts.StatsCallback,
	}

	size := cfg.WorldSize(g.screenWidth, g.screenHeight)
	g.world = systems.RectFromCenterSize(systems.Vec2{}, size)
	g.sim = systems.NewSimulator(g.world, cfg.World.GridCols, cfg.World.GridRows, cfg.Physics.Workers)

	if opts.OutputDir != "" {
		om, err := telemetry.NewOutputManager(opts.OutputDir)
		if err != nil {
			slog.Error("failed to create output manager", "error", err)
		} else {
			g.outputManager = om
			if err := om.WriteConfig(cfg); err != nil {
				slog.Error("failed to write config", "error", err)
			}
		}
	}

	g.loadInitialModel(opts.Preset)
	return g
}

// loadInitialModel loads the named preset, falling back to the first one,
// or a random model when no presets are configured. Always respawns.
func (g *Game) loadInitialModel(name string) {
	if name != "" {
		if i := g.cfg.PresetIndex(name); i >= 0 {
			g.LoadPreset(i)
			return
		}
		slog.Warn("unknown preset, using default", "preset", name)
	}
	if g.LoadPreset(0) {
		return
	}
	g.model.Randomise(g.rng)
	g.Respawn()
}

// config returns the configuration this game was created with.
func (g *Game) config() *config.Config { return g.cfg }

// Domain returns the current simulation domain.
func (g *Game) Domain() (systems.Rect, bool) {
	return g.world, g.world.Valid()
}

// World returns the current domain.
func (g *Game) World() systems.Rect { return g.world }

// GridDims returns the spatial grid resolution.
func (g *Game) GridDims() (cols, rows int) { return g.sim.GridDims() }

// SetViewport updates the window size and grows or shrinks the domain to
// match. Particles outside a shrunk domain are wrapped by the next step.
func (g *Game) SetViewport(w, h float32) {
	if w == g.screenWidth && h == g.screenHeight {
		return
	}
	g.screenWidth = w
	g.screenHeight = h

	size := g.cfg.WorldSize(w, h)
	g.world = systems.RectFromCenterSize(systems.Vec2{}, size)
}

// Update runs one frame of the interactive loop: stepsPerUpdate ticks
// unless paused.
func (g *Game) Update() {
	start := time.Now()
	g.perfCollector.RecordFrame()

	if !g.paused {
		for range g.stepsPerUpdate {
			g.simulationStep()
		}
	}

	g.frameStats.Record("update", time.Since(start))
}

// UpdateHeadless runs simulation steps without input or rendering.
func (g *Game) UpdateHeadless() {
	for range g.stepsPerUpdate {
		g.simulationStep()
	}
}

// simulationStep advances the world by one tick.
func (g *Game) simulationStep() {
	g.perfCollector.StartTick()

	g.perfCollector.StartPhase(telemetry.PhaseGather)
	ps := g.store.gather()
	g.perfCollector.EndPhase()

	stats := g.sim.StepFrom(ps, g, g.model, g.params, g.dt)
	g.perfCollector.RecordPhase(telemetry.PhaseSpatialGrid, stats.GridTime)
	g.perfCollector.RecordPhase(telemetry.PhaseForces, stats.ForceTime)

	g.perfCollector.StartPhase(telemetry.PhaseScatter)
	if !stats.Skipped {
		g.store.scatter()
	}

	g.perfCollector.StartPhase(telemetry.PhaseDecay)
	g.updateDecay(g.dt)

	g.collector.RecordStep(stats)
	g.tick++

	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.flushTelemetry()

	g.perfCollector.EndTick()

	if g.perfLog && g.tick%perfLogInterval == 0 {
		g.logPerfStats()
	}
}

// Unload releases resources.
func (g *Game) Unload() {
	g.sim.Close()
	if g.outputManager != nil {
		if err := g.outputManager.Close(); err != nil {
			slog.Error("failed to close output", "error", err)
		}
		g.outputManager = nil
	}
}

// Tick returns the current simulation tick.
func (g *Game) Tick() int32 {
	return g.tick
}

// ParticleCount returns the number of live particles.
func (g *Game) ParticleCount() int {
	return g.store.Len()
}

// Paused reports whether the simulation is paused.
func (g *Game) Paused() bool { return g.paused }

// SetPaused pauses or resumes the simulation.
func (g *Game) SetPaused(p bool) { g.paused = p }

// StepsPerUpdate returns the speed multiplier.
func (g *Game) StepsPerUpdate() int { return g.stepsPerUpdate }

// SetStepsPerUpdate sets the speed multiplier, clamped to the allowed range.
func (g *Game) SetStepsPerUpdate(n int) {
	g.stepsPerUpdate = min(max(n, MinStepsPerUpdate), MaxStepsPerUpdate)
}

// FrameStats returns the per-frame timing tracker.
func (g *Game) FrameStats() *PerfStats { return g.frameStats }

// PerfStats returns aggregated tick timings.
func (g *Game) PerfStats() telemetry.PerfStats { return g.perfCollector.Stats() }

// PerfLog reports whether perf output was requested.
func (g *Game) PerfLog() bool { return g.perfLog }

// EachParticle calls fn for every particle.
func (g *Game) EachParticle(fn func(pos, vel systems.Vec2, c systems.Colour)) {
	g.store.each(fn)
}

// Snapshot captures the current state.
func (g *Game) Snapshot(bookmark *telemetry.Bookmark) *telemetry.Snapshot {
	s := telemetry.NewSnapshot(g.tick, g.rngSeed, g.world.Size(), g.store.snapshotView(), g.model, g.params)
	s.Bookmark = bookmark
	return s
}

// RestoreSnapshot replaces particles, model and params with a snapshot's.
// The domain keeps its current size; particles outside it are wrapped.
func (g *Game) RestoreSnapshot(s *telemetry.Snapshot) error {
	ps, model, params, err := s.Restore()
	if err != nil {
		return err
	}

	g.store.Clear()
	g.recycleCursor = 0
	g.decayCursor = 0
	for i := range ps.Pos {
		g.store.Spawn(systems.Wrap(g.world, ps.Pos[i]), ps.Vel[i], ps.Colour[i])
	}
	g.model = model
	g.params = params
	g.preset = customPreset
	g.tick = s.Tick
	return nil
}
