package viewer

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/particlelife/systems"
	"github.com/pthm-cable/particlelife/ui"
)

// brushKeys select the spawn colour, in colour order.
var brushKeys = [systems.MaxColours]int32{
	rl.KeyOne, rl.KeyTwo, rl.KeyThree, rl.KeyFour, rl.KeyFive, rl.KeySix,
}

// handleInput processes keyboard and mouse input.
func (v *Viewer) handleInput() {
	v.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		v.g.SetPaused(!v.g.Paused())
	}

	// Steps-per-update control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) {
		v.g.SetStepsPerUpdate(v.g.StepsPerUpdate() - 1)
	}
	if rl.IsKeyPressed(rl.KeyPeriod) {
		v.g.SetStepsPerUpdate(v.g.StepsPerUpdate() + 1)
	}

	v.handleModelInput()
	v.handleOverlayInput()
	v.handleCameraInput()
	v.handleBrush()
}

// handleResize checks for window resize and propagates new dimensions.
func (v *Viewer) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == v.screenWidth && h == v.screenHeight {
		return
	}
	v.screenWidth = w
	v.screenHeight = h

	v.g.SetViewport(w, h)
	v.camera.Resize(systems.Vec2{X: w, Y: h}, v.g.World())
	v.perfPanel.SetPosition(int32(w)-300, 10)
}

// handleModelInput processes preset, matrix and population keys.
func (v *Viewer) handleModelInput() {
	g := v.g

	if rl.IsKeyPressed(rl.KeyR) {
		g.Respawn()
	}
	if rl.IsKeyPressed(rl.KeyN) {
		g.CyclePreset(1)
	}
	if rl.IsKeyPressed(rl.KeyB) {
		g.CyclePreset(-1)
	}
	if rl.IsKeyPressed(rl.KeyX) {
		g.RandomiseModel()
	}
	if rl.IsKeyPressed(rl.KeyLeftBracket) {
		g.SetColours(g.Model().Colours() - 1)
	}
	if rl.IsKeyPressed(rl.KeyRightBracket) {
		g.SetColours(g.Model().Colours() + 1)
	}
	if rl.IsKeyPressed(rl.KeyL) {
		g.LogWorldState()
	}

	for i, key := range brushKeys {
		if rl.IsKeyPressed(key) && i < g.Model().Colours() {
			v.brush = systems.Colour(i)
		}
	}
	// Shrinking the palette can leave the brush on an inactive colour.
	if int(v.brush) >= g.Model().Colours() {
		v.brush = 0
	}
}

// handleOverlayInput toggles overlays bound to pressed keys.
func (v *Viewer) handleOverlayInput() {
	for _, desc := range v.overlays.All() {
		if desc.Key == 0 || !rl.IsKeyPressed(desc.Key) {
			continue
		}
		if id, on, ok := v.overlays.HandleKeyPress(desc.Key); ok {
			slog.Debug("overlay toggled", "overlay", id, "enabled", on)
		}
	}
	v.particles.Ghosts = v.overlays.IsEnabled(ui.OverlayGhosts)
	v.particles.Velocity = v.overlays.IsEnabled(ui.OverlayVelocity)
}

// handleCameraInput processes camera pan/zoom controls.
func (v *Viewer) handleCameraInput() {
	if rl.IsKeyDown(rl.KeyRight) {
		v.camera.Pan(systems.Vec2{X: panSpeed})
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		v.camera.Pan(systems.Vec2{X: -panSpeed})
	}
	if rl.IsKeyDown(rl.KeyDown) {
		v.camera.Pan(systems.Vec2{Y: panSpeed})
	}
	if rl.IsKeyDown(rl.KeyUp) {
		v.camera.Pan(systems.Vec2{Y: -panSpeed})
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 && !v.overPanel() {
		v.camera.ZoomBy(1 + wheel*0.1)
	}

	// Keyboard zoom with +/- (= and - keys)
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		v.camera.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		v.camera.ZoomBy(0.8)
	}

	if rl.IsKeyPressed(rl.KeyHome) {
		v.camera.Reset()
	}
}

// handleBrush spawns a particle of the brush colour under the cursor while
// the left button is held.
func (v *Viewer) handleBrush() {
	if !rl.IsMouseButtonDown(rl.MouseButtonLeft) || v.overPanel() {
		return
	}
	m := rl.GetMousePosition()
	pos := v.camera.ScreenToWorld(systems.Vec2{X: m.X, Y: m.Y})
	v.g.SpawnParticle(pos, v.brush)
}

// overPanel reports whether the cursor is over the visible control panel.
func (v *Viewer) overPanel() bool {
	if !v.overlays.IsEnabled(ui.OverlayPanel) {
		return false
	}
	return v.panel.Contains(rl.GetMousePosition(), v.panel.Height(v.g.Model().Colours()))
}
