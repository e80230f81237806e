package game

import (
	"fmt"
	"io"
	"time"

	"github.com/pthm-cable/particlelife/systems"
)

// perfLogInterval is the number of ticks between perf dumps.
const perfLogInterval = 120

// logWriter is the destination for log output.
var logWriter io.Writer

// SetLogWriter sets the log output destination.
func SetLogWriter(w io.Writer) {
	logWriter = w
}

// Logf writes a formatted log message.
func Logf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if logWriter != nil {
		fmt.Fprintln(logWriter, msg)
	} else {
		fmt.Println(msg)
	}
}

// logPerfStats logs the per-phase tick breakdown and frame timings.
func (g *Game) logPerfStats() {
	stats := g.perfCollector.Stats()
	Logf("=== Perf @ Tick %d (speed %dx) | FPS: %.0f ===", g.tick, g.stepsPerUpdate, stats.FPS)
	Logf("Avg tick: %s (min %s, max %s), %.0f ticks/s",
		stats.AvgTickDuration.Round(time.Microsecond),
		stats.MinTickDuration.Round(time.Microsecond),
		stats.MaxTickDuration.Round(time.Microsecond),
		stats.TicksPerSecond)

	for _, name := range stats.Phases() {
		Logf("  %-14s %10s  %5.1f%%", name, stats.PhaseAvg[name].Round(time.Microsecond), stats.PhasePct[name])
	}

	if names := g.frameStats.SortedNames(); len(names) > 0 {
		Logf("  --- Frame ---")
		for _, name := range names {
			Logf("  %-14s %10s", name, g.frameStats.Avg(name).Round(time.Microsecond))
		}
	}
	Logf("")
}

// LogWorldState logs population and motion per colour.
func (g *Game) LogWorldState() {
	colours := g.model.Colours()
	counts := g.store.colourCounts(colours)
	g.speedBuf = g.store.speeds(g.speedBuf)

	var speedSum float64
	for _, s := range g.speedBuf {
		speedSum += s
	}
	meanSpeed := 0.0
	if len(g.speedBuf) > 0 {
		meanSpeed = speedSum / float64(len(g.speedBuf))
	}

	Logf("=== Tick %d | preset %s | %d particles | mean speed %.1f ===",
		g.tick, g.PresetName(), g.store.Len(), meanSpeed)
	for i, n := range counts {
		Logf("  %-8s %6d", systems.Colour(i), n)
	}

	p := g.params
	Logf("  friction %.2f strength %.1f radii %.0f/%.0f/%.0f decay %.0f/s",
		p.Friction, p.ForceStrength, p.RepulsionRadius, p.PeakAttractionRadius, p.AttractionRadius, p.DecayRate)
}
