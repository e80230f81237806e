package game

import (
	"log/slog"

	"github.com/pthm-cable/particlelife/systems"
)

// customPreset marks a model that no longer matches any named preset.
const customPreset = -1

// LoadPreset replaces the model and params with preset i and respawns.
// Out of range indices are ignored.
func (g *Game) LoadPreset(i int) bool {
	cfg := g.config()
	if i < 0 || i >= len(cfg.Presets) {
		return false
	}
	p := &cfg.Presets[i]

	g.model.Load(p.Matrix())
	g.params = p.Params.Apply(cfg.Derived.Params)
	g.preset = i
	g.Respawn()

	slog.Info("preset loaded", "name", p.Name, "colours", g.model.Colours())
	return true
}

// CyclePreset loads the next (delta > 0) or previous preset, wrapping.
func (g *Game) CyclePreset(delta int) {
	n := len(g.config().Presets)
	if n == 0 {
		return
	}
	i := g.preset
	if i == customPreset {
		i = 0
		if delta > 0 {
			delta--
		}
	}
	g.LoadPreset(((i+delta)%n + n) % n)
}

// PresetName returns the active preset's name, or "custom".
func (g *Game) PresetName() string {
	cfg := g.config()
	if g.preset < 0 || g.preset >= len(cfg.Presets) {
		return "custom"
	}
	return cfg.Presets[g.preset].Name
}

// SetColours changes the number of active colours and respawns so every
// colour is represented.
func (g *Game) SetColours(n int) {
	before := g.model.Colours()
	g.model.SetColours(n)
	if g.model.Colours() == before {
		return
	}
	g.preset = customPreset
	g.Respawn()
}

// RandomiseModel draws a new weight matrix for the active colours.
func (g *Game) RandomiseModel() {
	g.model.Randomise(g.rng)
	g.preset = customPreset
}

// SetParams replaces the force parameters. Invalid combinations are
// sanitized rather than rejected.
func (g *Game) SetParams(p systems.Params) {
	clean := p.Sanitized()
	if clean != p {
		slog.Warn("force parameters sanitized", "requested", p, "applied", clean)
	}
	g.params = clean
}

// Params returns the active force parameters.
func (g *Game) Params() systems.Params { return g.params }

// Model returns the interaction model.
func (g *Game) Model() *systems.Model { return g.model }

// SetWeight edits one matrix entry. Edits outside the active colours are
// ignored.
func (g *Game) SetWeight(src, dst systems.Colour, w float32) {
	if g.model.SetWeight(src, dst, w) {
		g.preset = customPreset
	}
}
