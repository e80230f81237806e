package game

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/pthm-cable/particlelife/config"
	"github.com/pthm-cable/particlelife/systems"
	"github.com/pthm-cable/particlelife/telemetry"
)

// newTestGame builds a headless game from the embedded defaults with a small
// population. edit may adjust the config before it is finalized.
func newTestGame(t *testing.T, edit func(*config.Config), opts Options) *Game {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}
	cfg.Particles.Count = 200
	cfg.Particles.Max = 300
	cfg.Physics.Workers = 2
	if edit != nil {
		edit(cfg)
	}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("finalizing config: %v", err)
	}

	opts.Config = cfg
	opts.Headless = true
	if opts.Seed == 0 {
		opts.Seed = 1
	}
	g := NewGameWithOptions(opts)
	t.Cleanup(g.Unload)
	return g
}

func TestNewGameLoadsFirstPreset(t *testing.T) {
	g := newTestGame(t, nil, Options{})

	if got := g.PresetName(); got != "Primordial" {
		t.Errorf("expected preset Primordial, got %s", got)
	}
	if got := g.ParticleCount(); got != 200 {
		t.Errorf("expected 200 particles, got %d", got)
	}
	if got := g.Model().Colours(); got != 3 {
		t.Errorf("expected 3 colours, got %d", got)
	}
	if _, ok := g.Domain(); !ok {
		t.Error("expected a usable domain")
	}
}

func TestNewGameNamedPreset(t *testing.T) {
	g := newTestGame(t, nil, Options{Preset: "Snakes"})
	if got := g.PresetName(); got != "Snakes" {
		t.Errorf("expected preset Snakes, got %s", got)
	}
	if got := g.Model().Colours(); got != 4 {
		t.Errorf("expected 4 colours, got %d", got)
	}

	// Unknown names fall back to the first preset.
	g = newTestGame(t, nil, Options{Preset: "does-not-exist"})
	if got := g.PresetName(); got != "Primordial" {
		t.Errorf("expected fallback to Primordial, got %s", got)
	}
}

func TestNewGameWithoutPresetsRandomises(t *testing.T) {
	g := newTestGame(t, func(c *config.Config) { c.Presets = nil }, Options{})
	if got := g.PresetName(); got != "custom" {
		t.Errorf("expected custom model, got %s", got)
	}
	if got := g.ParticleCount(); got != 200 {
		t.Errorf("expected 200 particles, got %d", got)
	}
}

func TestRespawnCyclesColours(t *testing.T) {
	g := newTestGame(t, nil, Options{})
	g.Respawn()

	counts := g.store.colourCounts(3)
	want := []int{67, 67, 66}
	for i := range want {
		if counts[i] != want[i] {
			t.Errorf("colour %d: expected %d particles, got %d", i, want[i], counts[i])
		}
	}
}

func TestRespawnPlacesInsideDomain(t *testing.T) {
	for _, pattern := range []string{config.PatternUniform, config.PatternSimplex, config.PatternPerlin} {
		g := newTestGame(t, func(c *config.Config) { c.Spawn.Pattern = pattern }, Options{})
		world := g.World()
		g.EachParticle(func(pos, _ systems.Vec2, _ systems.Colour) {
			if !world.Contains(pos) {
				t.Errorf("%s: particle at %v outside %v", pattern, pos, world)
			}
		})
	}
}

func TestSpawnParticleGrowsToMax(t *testing.T) {
	g := newTestGame(t, func(c *config.Config) {
		c.Particles.Count = 5
		c.Particles.Max = 8
	}, Options{})

	for range 10 {
		g.SpawnParticle(systems.Vec2{X: 10, Y: 20}, 0)
	}
	if got := g.ParticleCount(); got != 8 {
		t.Errorf("expected population capped at 8, got %d", got)
	}
}

func TestSpawnParticleRecyclesOldest(t *testing.T) {
	g := newTestGame(t, func(c *config.Config) {
		c.Particles.Count = 10
		c.Particles.Max = 10
	}, Options{})

	pos := systems.Vec2{X: 10, Y: 20}
	g.SpawnParticle(pos, 1)
	g.SpawnParticle(pos, 5) // Wraps to an active colour

	ps := g.store.snapshotView()
	if ps.Len() != 10 {
		t.Fatalf("expected 10 particles, got %d", ps.Len())
	}
	if ps.Pos[0] != pos || ps.Colour[0] != 1 {
		t.Errorf("slot 0: expected %v colour 1, got %v colour %d", pos, ps.Pos[0], ps.Colour[0])
	}
	if ps.Pos[1] != pos || ps.Colour[1] != 2 {
		t.Errorf("slot 1: expected %v colour 2, got %v colour %d", pos, ps.Pos[1], ps.Colour[1])
	}
}

func TestSpawnParticleWrapsPosition(t *testing.T) {
	g := newTestGame(t, nil, Options{})
	world := g.World()

	g.SpawnParticle(systems.Vec2{X: world.Max.X + 5, Y: 0}, 0)
	ps := g.store.snapshotView()
	last := ps.Pos[ps.Len()-1]
	if !world.Contains(last) {
		t.Errorf("spawned particle at %v outside %v", last, world)
	}
}

func TestDecayReplacesAtRate(t *testing.T) {
	g := newTestGame(t, func(c *config.Config) {
		c.Decay.Enabled = true
		c.Decay.Interval = 0.1
	}, Options{})

	p := g.Params()
	p.DecayRate = 100
	g.SetParams(p)

	g.updateDecay(0.05)
	if g.decayCursor != 0 {
		t.Errorf("expected no decay before the interval, cursor at %d", g.decayCursor)
	}
	g.updateDecay(0.05)
	if g.decayCursor != 10 {
		t.Errorf("expected 10 particles re-placed after one interval, got %d", g.decayCursor)
	}
}

func TestDecayCarriesFractions(t *testing.T) {
	g := newTestGame(t, func(c *config.Config) {
		c.Decay.Enabled = true
		c.Decay.Interval = 0.1
	}, Options{})

	p := g.Params()
	p.DecayRate = 15 // 1.5 per interval
	g.SetParams(p)

	g.updateDecay(0.1)
	g.updateDecay(0.1)
	if g.decayCursor != 3 {
		t.Errorf("expected 3 particles re-placed over two intervals, got %d", g.decayCursor)
	}
}

func TestDecayDisabled(t *testing.T) {
	g := newTestGame(t, func(c *config.Config) { c.Decay.Enabled = false }, Options{})
	for range 10 {
		g.updateDecay(0.1)
	}
	if g.decayCursor != 0 {
		t.Errorf("expected no decay when disabled, cursor at %d", g.decayCursor)
	}
}

func TestDecayStopsParticles(t *testing.T) {
	g := newTestGame(t, func(c *config.Config) {
		c.Particles.Count = 4
		c.Decay.Enabled = true
		c.Decay.Interval = 0.1
	}, Options{})

	ps := g.store.gather()
	for i := range ps.Vel {
		ps.Vel[i] = systems.Vec2{X: 50, Y: -50}
	}
	g.store.scatter()

	p := g.Params()
	p.DecayRate = 40 // Every particle once per interval
	g.SetParams(p)
	g.updateDecay(0.1)

	after := g.store.snapshotView()
	for i, v := range after.Vel {
		if v != (systems.Vec2{}) {
			t.Errorf("particle %d: expected zero velocity after decay, got %v", i, v)
		}
	}
}

func TestUpdateHeadlessAdvancesTicks(t *testing.T) {
	g := newTestGame(t, nil, Options{StepsPerUpdate: 3})

	g.UpdateHeadless()
	if got := g.Tick(); got != 3 {
		t.Errorf("expected tick 3, got %d", got)
	}

	world := g.World()
	g.EachParticle(func(pos, vel systems.Vec2, _ systems.Colour) {
		if !world.Contains(pos) {
			t.Errorf("particle at %v left %v", pos, world)
		}
		if !vel.IsFinite() {
			t.Errorf("non-finite velocity %v", vel)
		}
	})
	if got := g.ParticleCount(); got != 200 {
		t.Errorf("expected population unchanged at 200, got %d", got)
	}
}

func TestHeadlessAllowsHighSpeed(t *testing.T) {
	g := newTestGame(t, nil, Options{StepsPerUpdate: 50})
	if got := g.StepsPerUpdate(); got != 50 {
		t.Errorf("expected 50 steps per update in headless mode, got %d", got)
	}

	g.SetStepsPerUpdate(50)
	if got := g.StepsPerUpdate(); got != MaxStepsPerUpdate {
		t.Errorf("expected interactive speed clamped to %d, got %d", MaxStepsPerUpdate, got)
	}
	g.SetStepsPerUpdate(0)
	if got := g.StepsPerUpdate(); got != MinStepsPerUpdate {
		t.Errorf("expected speed clamped to %d, got %d", MinStepsPerUpdate, got)
	}
}

func TestPausedUpdateDoesNotStep(t *testing.T) {
	g := newTestGame(t, nil, Options{})
	g.SetPaused(true)
	g.Update()
	if got := g.Tick(); got != 0 {
		t.Errorf("expected no ticks while paused, got %d", got)
	}

	g.SetPaused(false)
	g.Update()
	if got := g.Tick(); got != 1 {
		t.Errorf("expected 1 tick after resuming, got %d", got)
	}
	if g.FrameStats().Avg("update") <= 0 {
		t.Error("expected update frame timing to be recorded")
	}
}

func TestStatsCallbackFiresPerWindow(t *testing.T) {
	var windows []telemetry.WindowStats
	g := newTestGame(t, nil, Options{
		StatsWindowSec: 0.5,
		StatsCallback: func(s telemetry.WindowStats) {
			windows = append(windows, s)
		},
	})

	per := int(g.collector.WindowDurationTicks())
	for range 2 * per {
		g.UpdateHeadless()
	}

	if len(windows) != 2 {
		t.Fatalf("expected 2 windows after %d ticks, got %d", 2*per, len(windows))
	}
	w := windows[1]
	if w.Particles != 200 {
		t.Errorf("expected 200 particles in window, got %d", w.Particles)
	}
	if w.Colours != 3 {
		t.Errorf("expected 3 colours in window, got %d", w.Colours)
	}
	if w.WindowEndTick != int32(2*per) {
		t.Errorf("expected window to end at tick %d, got %d", 2*per, w.WindowEndTick)
	}
}

func TestOutputDirReceivesFiles(t *testing.T) {
	dir := t.TempDir()
	g := newTestGame(t, nil, Options{OutputDir: dir, StatsWindowSec: 0.1})
	for range 20 {
		g.UpdateHeadless()
	}
	g.Unload()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) == 0 {
		t.Error("expected config and telemetry files in the output directory")
	}
}

func TestSetViewportResizesDomain(t *testing.T) {
	g := newTestGame(t, nil, Options{})

	g.SetViewport(4000, 2000)
	want := systems.Vec2{X: 4000, Y: 2000}
	if got := g.World().Size(); got != want {
		t.Errorf("expected world %v, got %v", want, got)
	}

	// Shrinking below the minimum keeps the configured size.
	g.SetViewport(100, 100)
	want = systems.Vec2{X: 1920, Y: 1080}
	if got := g.World().Size(); got != want {
		t.Errorf("expected minimum world %v, got %v", want, got)
	}

	g.UpdateHeadless()
	world := g.World()
	g.EachParticle(func(pos, _ systems.Vec2, _ systems.Colour) {
		if !world.Contains(pos) {
			t.Errorf("particle at %v outside shrunk world %v", pos, world)
		}
	})
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	g := newTestGame(t, nil, Options{Preset: "Cells"})
	for range 5 {
		g.UpdateHeadless()
	}
	snap := g.Snapshot(nil)

	other := newTestGame(t, nil, Options{Seed: 99})
	if err := other.RestoreSnapshot(snap); err != nil {
		t.Fatalf("RestoreSnapshot: %v", err)
	}

	if other.Tick() != g.Tick() {
		t.Errorf("expected tick %d, got %d", g.Tick(), other.Tick())
	}
	if other.PresetName() != "custom" {
		t.Errorf("expected restored model to be custom, got %s", other.PresetName())
	}
	if other.Params() != g.Params() {
		t.Errorf("expected params %+v, got %+v", g.Params(), other.Params())
	}

	want, got := g.store.snapshotView(), other.store.snapshotView()
	if got.Len() != want.Len() {
		t.Fatalf("expected %d particles, got %d", want.Len(), got.Len())
	}
	for i := range want.Pos {
		if got.Pos[i] != want.Pos[i] || got.Vel[i] != want.Vel[i] || got.Colour[i] != want.Colour[i] {
			t.Fatalf("particle %d differs: got %v/%v/%d, want %v/%v/%d", i,
				got.Pos[i], got.Vel[i], got.Colour[i], want.Pos[i], want.Vel[i], want.Colour[i])
		}
	}

	wantRows, gotRows := g.Model().Rows(), other.Model().Rows()
	for i := range wantRows {
		for j := range wantRows[i] {
			if gotRows[i][j] != wantRows[i][j] {
				t.Errorf("weight %d->%d: expected %v, got %v", i, j, wantRows[i][j], gotRows[i][j])
			}
		}
	}
}

func TestRestoreSnapshotRejectsBadVersion(t *testing.T) {
	g := newTestGame(t, nil, Options{})
	snap := g.Snapshot(nil)
	snap.Version = 999

	if err := g.RestoreSnapshot(snap); err == nil {
		t.Error("expected an error for an unknown snapshot version")
	}
	if got := g.ParticleCount(); got != 200 {
		t.Errorf("expected particles untouched after a failed restore, got %d", got)
	}
}

func TestLogWorldState(t *testing.T) {
	var buf bytes.Buffer
	SetLogWriter(&buf)
	defer SetLogWriter(nil)

	g := newTestGame(t, nil, Options{})
	g.LogWorldState()

	out := buf.String()
	for _, want := range []string{"preset Primordial", "200 particles", "Red", "Blue"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in world state log:\n%s", want, out)
		}
	}
}
