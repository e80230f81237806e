// Package renderer draws particles through a toroidal camera.
package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/particlelife/camera"
	"github.com/pthm-cable/particlelife/systems"
)

// Palette maps each colour to its display colour.
var Palette = [systems.MaxColours]rl.Color{
	{R: 240, G: 70, B: 70, A: 255},   // Red
	{R: 80, G: 220, B: 100, A: 255},  // Green
	{R: 70, G: 130, B: 250, A: 255},  // Blue
	{R: 250, G: 160, B: 50, A: 255},  // Orange
	{R: 240, G: 100, B: 200, A: 255}, // Pink
	{R: 60, G: 220, B: 220, A: 255},  // Aqua
}

// ColourOf returns the display colour for c.
func ColourOf(c systems.Colour) rl.Color {
	if int(c) >= len(Palette) {
		return rl.Gray
	}
	return Palette[c]
}

// ParticleRenderer draws particles as discs.
type ParticleRenderer struct {
	// Radius is the disc radius in world units.
	Radius float32

	// Ghosts draws copies of particles straddling a domain edge on the
	// opposite side, so clusters do not pop at the seam.
	Ghosts bool

	// Velocity draws a short line along each particle's velocity.
	Velocity bool

	ghostBuf []systems.Vec2
}

// NewParticleRenderer creates a new particle renderer.
func NewParticleRenderer(radius float32) *ParticleRenderer {
	return &ParticleRenderer{Radius: radius, Ghosts: true}
}

// Draw renders one particle.
func (r *ParticleRenderer) Draw(cam *camera.Camera, pos, vel systems.Vec2, c systems.Colour) {
	color := ColourOf(c)
	size := max(r.Radius*cam.Zoom, 1)

	if cam.IsVisible(pos, r.Radius) {
		r.drawDisc(cam, pos, vel, size, color)
	}

	if !r.Ghosts {
		return
	}
	r.ghostBuf = cam.GhostPositions(r.ghostBuf[:0], pos, r.Radius)
	for _, g := range r.ghostBuf {
		rl.DrawCircleV(rl.Vector2{X: g.X, Y: g.Y}, size, color)
	}
}

func (r *ParticleRenderer) drawDisc(cam *camera.Camera, pos, vel systems.Vec2, size float32, color rl.Color) {
	screen := cam.WorldToScreen(pos)
	rl.DrawCircleV(rl.Vector2{X: screen.X, Y: screen.Y}, size, color)

	if r.Velocity {
		tip := screen.Add(vel.Scale(0.1 * cam.Zoom))
		faded := color
		faded.A = 140
		rl.DrawLineV(rl.Vector2{X: screen.X, Y: screen.Y}, rl.Vector2{X: tip.X, Y: tip.Y}, faded)
	}
}

// DrawGrid draws the spatial grid cell boundaries.
func DrawGrid(cam *camera.Camera, domain systems.Rect, cols, rows int) {
	if cols < 1 || rows < 1 {
		return
	}
	lineColor := rl.Color{R: 60, G: 70, B: 80, A: 120}
	cell := systems.Vec2{X: domain.Width() / float32(cols), Y: domain.Height() / float32(rows)}

	for i := 0; i <= cols; i++ {
		x := domain.Min.X + float32(i)*cell.X
		a := cam.WorldToScreen(systems.Vec2{X: x, Y: domain.Min.Y})
		rl.DrawLineV(rl.Vector2{X: a.X, Y: 0}, rl.Vector2{X: a.X, Y: cam.Viewport.Y}, lineColor)
	}
	for j := 0; j <= rows; j++ {
		y := domain.Min.Y + float32(j)*cell.Y
		a := cam.WorldToScreen(systems.Vec2{X: domain.Min.X, Y: y})
		rl.DrawLineV(rl.Vector2{X: 0, Y: a.Y}, rl.Vector2{X: cam.Viewport.X, Y: a.Y}, lineColor)
	}
}

// DrawRadii draws the three force radii around a world position.
func DrawRadii(cam *camera.Camera, pos systems.Vec2, p systems.Params) {
	s := cam.WorldToScreen(pos)
	centre := rl.Vector2{X: s.X, Y: s.Y}
	rl.DrawCircleLinesV(centre, p.RepulsionRadius*cam.Zoom, rl.Color{R: 220, G: 80, B: 80, A: 200})
	rl.DrawCircleLinesV(centre, p.PeakAttractionRadius*cam.Zoom, rl.Color{R: 80, G: 220, B: 80, A: 200})
	rl.DrawCircleLinesV(centre, p.AttractionRadius*cam.Zoom, rl.Color{R: 160, G: 160, B: 160, A: 160})
}
