package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/particlelife/config"
	"github.com/pthm-cable/particlelife/game"
	"github.com/pthm-cable/particlelife/telemetry"
	"github.com/pthm-cable/particlelife/viewer"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs, bookmarks and snapshots")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	stepsPerUpdate := flag.Int("steps-per-update", 1, "Simulation ticks per update call (higher = faster headless runs)")
	preset := flag.String("preset", "", "Preset to load at startup (empty = first preset)")
	perf := flag.Bool("perf", false, "Show the perf panel and log tick timings")
	restore := flag.String("restore", "", "Snapshot JSON file to resume from")
	verbose := flag.Bool("v", false, "Debug logging")

	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	// JSON to stdout for headless runs, text for interactive sessions.
	if *headless {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, handlerOpts)))
	} else {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, handlerOpts)))
	}

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	opts := game.Options{
		Seed:           rngSeed,
		LogStats:       *logStats,
		StatsWindowSec: *statsWindow,
		OutputDir:      *outputDir,
		Headless:       *headless,
		StepsPerUpdate: *stepsPerUpdate,
		Preset:         *preset,
		PerfLog:        *perf,
	}

	if *headless {
		// Headless mode - pure CPU simulation, no raylib needed
		g := game.NewGameWithOptions(opts)
		defer g.Unload()
		restoreSnapshot(g, *restore)

		slog.Info("starting headless simulation",
			"seed", rngSeed,
			"preset", g.PresetName(),
			"particles", g.ParticleCount(),
			"max_ticks", *maxTicks,
			"steps_per_update", g.StepsPerUpdate(),
		)

		for {
			g.UpdateHeadless()

			if *maxTicks > 0 && int(g.Tick()) >= *maxTicks {
				slog.Info("max ticks reached", "tick", g.Tick())
				g.LogWorldState()
				return
			}
		}
	}

	// Graphical mode
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Particle Life")
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	g := game.NewGameWithOptions(opts)
	defer g.Unload()
	restoreSnapshot(g, *restore)

	v := viewer.New(g, float32(rl.GetScreenWidth()), float32(rl.GetScreenHeight()))
	v.Run(*maxTicks)
}

// restoreSnapshot replaces the game state with a saved snapshot. Failures
// are logged and the fresh state is kept.
func restoreSnapshot(g *game.Game, path string) {
	if path == "" {
		return
	}
	snap, err := telemetry.LoadSnapshot(path)
	if err != nil {
		slog.Error("failed to load snapshot", "path", path, "error", err)
		return
	}
	if err := g.RestoreSnapshot(snap); err != nil {
		slog.Error("failed to restore snapshot", "path", path, "error", err)
		return
	}
	slog.Info("snapshot restored", "path", path, "tick", g.Tick(), "particles", g.ParticleCount())
}
