package viewer

import (
	"strings"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/particlelife/renderer"
	"github.com/pthm-cable/particlelife/systems"
	"github.com/pthm-cable/particlelife/ui"
)

var background = rl.Color{R: 12, G: 12, B: 18, A: 255}

const baseControls = "SPACE: Pause | < >: Speed | R: Respawn | N/B: Preset | X: Randomise | [ ]: Colours | 1-6: Brush | L: Log"

// draw renders one frame.
func (v *Viewer) draw() {
	rl.BeginDrawing()
	defer rl.EndDrawing()

	rl.ClearBackground(background)

	g := v.g
	if v.overlays.IsEnabled(ui.OverlayGrid) {
		cols, rows := g.GridDims()
		renderer.DrawGrid(v.camera, g.World(), cols, rows)
	}

	g.EachParticle(func(pos, vel systems.Vec2, c systems.Colour) {
		v.particles.Draw(v.camera, pos, vel, c)
	})

	if v.overlays.IsEnabled(ui.OverlayRadii) {
		m := rl.GetMousePosition()
		renderer.DrawRadii(v.camera, v.camera.ScreenToWorld(systems.Vec2{X: m.X, Y: m.Y}), g.Params())
	}

	v.hud.Draw(ui.HUDData{
		Title:        title,
		Preset:       g.PresetName(),
		Particles:    g.ParticleCount(),
		Colours:      g.Model().Colours(),
		Tick:         g.Tick(),
		Speed:        g.StepsPerUpdate(),
		FPS:          rl.GetFPS(),
		Zoom:         v.camera.Zoom,
		Paused:       g.Paused(),
		BrushColour:  v.brush.String(),
		ScreenWidth:  int32(v.screenWidth),
		ScreenHeight: int32(v.screenHeight),
	})

	if v.overlays.IsEnabled(ui.OverlayPanel) {
		v.applyPanel(v.panel.Draw(v.panelState()))
	}

	if v.overlays.IsEnabled(ui.OverlayStats) {
		v.drawPopulation()
	}

	if v.overlays.IsEnabled(ui.OverlayPerf) {
		v.drawPerf()
	}

	v.hud.DrawControls(int32(v.screenHeight), baseControls+" | "+strings.Join(v.overlays.Legend(), " | "))
}

// panelState collects what the control panel shows.
func (v *Viewer) panelState() ui.PanelState {
	g := v.g
	colours := g.Model().Colours()
	palette := make([]rl.Color, colours)
	for i := range palette {
		palette[i] = renderer.ColourOf(systems.Colour(i))
	}
	return ui.PanelState{
		Params:  g.Params(),
		Weights: g.Model().Rows(),
		Palette: palette,
		Preset:  g.PresetName(),
	}
}

// applyPanel forwards panel requests to the game.
func (v *Viewer) applyPanel(a ui.PanelActions) {
	g := v.g
	if a.ParamsChanged {
		g.SetParams(a.Params)
	}
	if a.PrevPreset {
		g.CyclePreset(-1)
	}
	if a.NextPreset {
		g.CyclePreset(1)
	}
	if a.Randomise {
		g.RandomiseModel()
	}
	if a.Respawn {
		g.Respawn()
	}
	if a.ColoursDelta != 0 {
		g.SetColours(g.Model().Colours() + a.ColoursDelta)
	}
	if w := a.Weight; w != nil {
		g.SetWeight(w.Source, w.Target, w.Value)
	}
}

// drawPopulation tallies particles per colour and renders the population
// panel in the bottom-right corner.
func (v *Viewer) drawPopulation() {
	g := v.g
	model := g.Model()
	colours := model.Colours()

	counts := make([]int, colours)
	var speedSum float32
	total := 0
	g.EachParticle(func(_, vel systems.Vec2, c systems.Colour) {
		if int(c) < colours {
			counts[c]++
		}
		speedSum += vel.Length()
		total++
	})

	data := ui.PopulationData{
		Colours:  make([]ui.ColourStats, colours),
		Total:    total,
		MaxSpeed: g.Params().MaxSpeed,
	}
	if total > 0 {
		data.MeanSpeed = speedSum / float32(total)
	}
	for i := range data.Colours {
		c := systems.Colour(i)
		data.Colours[i] = ui.ColourStats{
			Name:       c.String(),
			Color:      renderer.ColourOf(c),
			Count:      counts[i],
			SelfWeight: model.Weight(c, c),
		}
	}

	x := int32(v.screenWidth) - 230
	y := int32(v.screenHeight) - 40 - v.popPanel.Height(colours)
	v.popPanel.Draw(x, y, data)
}

// drawPerf renders tick phase timings and frame timings.
func (v *Viewer) drawPerf() {
	stats := v.g.PerfStats()
	frame := v.g.FrameStats()

	v.perfPanel.Draw(ui.PerfPanelData{
		Phases:   stats.Phases(),
		PhaseAvg: stats.PhaseAvg,
		PhasePct: stats.PhasePct,
		Total:    stats.AvgTickDuration,
		Frame: map[string]time.Duration{
			"update": frame.Avg("update"),
			"draw":   frame.Avg("draw"),
		},
	})
}
