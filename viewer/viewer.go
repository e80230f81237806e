// Package viewer is the interactive raylib front end for a game.Game.
package viewer

import (
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/particlelife/camera"
	"github.com/pthm-cable/particlelife/game"
	"github.com/pthm-cable/particlelife/renderer"
	"github.com/pthm-cable/particlelife/systems"
	"github.com/pthm-cable/particlelife/ui"
)

const (
	particleRadius = 2.5
	panSpeed       = 8 // Screen pixels per frame
	title          = "Particle Life"
)

// Viewer owns the window-side state: camera, overlays and UI panels.
type Viewer struct {
	g *game.Game

	camera    *camera.Camera
	particles *renderer.ParticleRenderer
	overlays  *ui.OverlayRegistry
	hud       *ui.HUD
	perfPanel *ui.PerfPanel
	panel     *ui.ControlPanel
	popPanel  *ui.PopulationPanel

	screenWidth, screenHeight float32

	// brush is the colour spawned by left clicks.
	brush systems.Colour
}

// New creates a viewer for g sized to the window.
func New(g *game.Game, width, height float32) *Viewer {
	g.SetViewport(width, height)

	v := &Viewer{
		g:            g,
		camera:       camera.New(systems.Vec2{X: width, Y: height}, g.World()),
		particles:    renderer.NewParticleRenderer(particleRadius),
		overlays:     ui.NewOverlayRegistry(),
		hud:          ui.NewHUD(),
		perfPanel:    ui.NewPerfPanel(int32(width)-300, 10),
		panel:        ui.NewControlPanel(10, 100, 240),
		popPanel:     ui.NewPopulationPanel(220),
		screenWidth:  width,
		screenHeight: height,
	}
	if g.PerfLog() {
		v.overlays.SetEnabled(ui.OverlayPerf, true)
	}
	return v
}

// Run drives the window until it is closed or maxTicks is reached
// (0 = unlimited).
func (v *Viewer) Run(maxTicks int) {
	for !rl.WindowShouldClose() {
		v.Update()
		v.Draw()

		if maxTicks > 0 && int(v.g.Tick()) >= maxTicks {
			return
		}
	}
}

// Update handles input and advances the simulation by one frame.
func (v *Viewer) Update() {
	v.handleInput()
	v.g.Update()
}

// Draw renders the frame.
func (v *Viewer) Draw() {
	start := time.Now()
	v.draw()
	v.g.FrameStats().Record("draw", time.Since(start))
}
