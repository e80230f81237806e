// Package camera provides a 2D camera system for viewport control.
package camera

import "github.com/pthm-cable/particlelife/systems"

// DefaultMaxZoom is the closest the camera may zoom in.
const DefaultMaxZoom = 10

// Camera controls the viewport into the simulation world.
// Supports pan and zoom with toroidal world wrapping.
type Camera struct {
	// Center is the camera position in world coordinates
	Center systems.Vec2

	// Zoom level (1.0 = 1:1, 2.0 = 2x magnification)
	Zoom float32

	// Viewport dimensions (screen size)
	Viewport systems.Vec2

	// World bounds (for toroidal wrapping)
	World systems.Rect

	// Zoom constraints
	MinZoom, MaxZoom float32
}

// New creates a camera centered on the world with 1:1 zoom.
func New(viewport systems.Vec2, world systems.Rect) *Camera {
	c := &Camera{
		Center:   world.Center(),
		Zoom:     1.0,
		Viewport: viewport,
		World:    world,
		MaxZoom:  DefaultMaxZoom,
	}
	c.MinZoom = MinZoom(viewport, world.Size())
	c.SetZoom(c.Zoom)
	return c
}

// MinZoom returns the smallest zoom at which the viewport still fits inside
// the world, so zooming out never shows the same particle twice.
// At zoom Z the visible area is viewport/Z; it must not exceed the world.
func MinZoom(viewport, world systems.Vec2) float32 {
	if !(world.X > 0) || !(world.Y > 0) {
		return 1
	}
	return max(viewport.X/world.X, viewport.Y/world.Y)
}

// WorldToScreen converts world coordinates to screen coordinates.
// For toroidal worlds, this finds the shortest path to the viewport.
func (c *Camera) WorldToScreen(p systems.Vec2) systems.Vec2 {
	d := systems.Displacement(c.World, c.Center, p)
	return c.Viewport.Scale(0.5).Add(d.Scale(c.Zoom))
}

// ScreenToWorld converts screen coordinates to world coordinates.
func (c *Camera) ScreenToWorld(s systems.Vec2) systems.Vec2 {
	d := s.Sub(c.Viewport.Scale(0.5)).Scale(1 / c.Zoom)
	return systems.Wrap(c.World, c.Center.Add(d))
}

// IsVisible returns true if a circle at p with given radius could be
// visible on screen (conservative check for culling).
func (c *Camera) IsVisible(p systems.Vec2, radius float32) bool {
	d := systems.Displacement(c.World, c.Center, p)
	halfW := c.Viewport.X/(2*c.Zoom) + radius
	halfH := c.Viewport.Y/(2*c.Zoom) + radius
	return absf(d.X) <= halfW && absf(d.Y) <= halfH
}

// GhostPositions appends screen positions for copies of a particle near the
// view edge, so particles straddling the wrap are drawn on both sides.
// Appends at most 3 positions (corners).
func (c *Camera) GhostPositions(dst []systems.Vec2, p systems.Vec2, radius float32) []systems.Vec2 {
	halfW := c.Viewport.X / (2 * c.Zoom)
	halfH := c.Viewport.Y / (2 * c.Zoom)
	world := c.World.Size()
	d := systems.Displacement(c.World, c.Center, p)

	var gx, gy float32
	hGhost, vGhost := false, false
	switch {
	case d.X > halfW-radius && d.X < halfW+radius:
		hGhost, gx = true, d.X-world.X
	case d.X < -halfW+radius && d.X > -halfW-radius:
		hGhost, gx = true, d.X+world.X
	}
	switch {
	case d.Y > halfH-radius && d.Y < halfH+radius:
		vGhost, gy = true, d.Y-world.Y
	case d.Y < -halfH+radius && d.Y > -halfH-radius:
		vGhost, gy = true, d.Y+world.Y
	}

	centre := c.Viewport.Scale(0.5)
	if hGhost {
		dst = append(dst, centre.Add(systems.Vec2{X: gx, Y: d.Y}.Scale(c.Zoom)))
	}
	if vGhost {
		dst = append(dst, centre.Add(systems.Vec2{X: d.X, Y: gy}.Scale(c.Zoom)))
	}
	if hGhost && vGhost {
		dst = append(dst, centre.Add(systems.Vec2{X: gx, Y: gy}.Scale(c.Zoom)))
	}
	return dst
}

// Resize updates viewport and world dimensions and recalculates zoom
// constraints.
func (c *Camera) Resize(viewport systems.Vec2, world systems.Rect) {
	if viewport == c.Viewport && world == c.World {
		return
	}
	c.Viewport = viewport
	c.World = world
	c.Center = systems.Wrap(world, c.Center)
	c.MinZoom = MinZoom(viewport, world.Size())
	if c.Zoom < c.MinZoom {
		c.Zoom = c.MinZoom
	}
}

// Pan moves the camera by the given delta in screen pixels.
// Automatically wraps around world boundaries.
func (c *Camera) Pan(delta systems.Vec2) {
	c.Center = systems.Wrap(c.World, c.Center.Add(delta.Scale(1/c.Zoom)))
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float32) {
	c.Zoom = clamp(zoom, c.MinZoom, c.MaxZoom)
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float32) {
	c.SetZoom(c.Zoom * factor)
}

// Reset returns the camera to the default position and zoom.
func (c *Camera) Reset() {
	c.Center = c.World.Center()
	c.SetZoom(1.0)
}

// VisibleWorldBounds returns the world-coordinate bounds of the visible area.
// Note: the bounds may extend past the world when the view wraps.
func (c *Camera) VisibleWorldBounds() systems.Rect {
	half := c.Viewport.Scale(1 / (2 * c.Zoom))
	return systems.RectFromCenterHalfSize(c.Center, half)
}

// absf returns the absolute value of a float32.
func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

// clamp restricts a value to a range.
func clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
