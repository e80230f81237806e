package systems

import "math"

// Vec2 is a 2D vector in world units.
type Vec2 struct {
	X, Y float32
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Scale returns v * s.
func (v Vec2) Scale(s float32) Vec2 { return Vec2{v.X * s, v.Y * s} }

// Neg returns -v.
func (v Vec2) Neg() Vec2 { return Vec2{-v.X, -v.Y} }

// LengthSq returns the squared length (avoids sqrt in hot paths).
func (v Vec2) LengthSq() float32 { return v.X*v.X + v.Y*v.Y }

// Length returns the Euclidean length.
func (v Vec2) Length() float32 {
	return float32(math.Sqrt(float64(v.X*v.X + v.Y*v.Y)))
}

// ClampLength scales v down so its length does not exceed maxLen.
func (v Vec2) ClampLength(maxLen float32) Vec2 {
	lenSq := v.LengthSq()
	if lenSq <= maxLen*maxLen || lenSq == 0 {
		return v
	}
	return v.Scale(maxLen / float32(math.Sqrt(float64(lenSq))))
}

// IsFinite reports whether both components are finite.
func (v Vec2) IsFinite() bool {
	return isFinite(v.X) && isFinite(v.Y)
}

func isFinite(f float32) bool {
	return !math.IsNaN(float64(f)) && !math.IsInf(float64(f), 0)
}

// Rect is an axis-aligned rectangle. Used as the periodic simulation domain:
// the left/right and top/bottom edges are identified.
type Rect struct {
	Min, Max Vec2
}

// RectFromCenterHalfSize builds a rect from its centre and half extent.
func RectFromCenterHalfSize(center, half Vec2) Rect {
	return Rect{Min: center.Sub(half), Max: center.Add(half)}
}

// RectFromCenterSize builds a rect from its centre and full size.
func RectFromCenterSize(center, size Vec2) Rect {
	return RectFromCenterHalfSize(center, size.Scale(0.5))
}

// Width returns the extent along x.
func (r Rect) Width() float32 { return r.Max.X - r.Min.X }

// Height returns the extent along y.
func (r Rect) Height() float32 { return r.Max.Y - r.Min.Y }

// Size returns (width, height).
func (r Rect) Size() Vec2 { return Vec2{r.Width(), r.Height()} }

// Center returns the midpoint of the rect.
func (r Rect) Center() Vec2 {
	return Vec2{(r.Min.X + r.Max.X) / 2, (r.Min.Y + r.Max.Y) / 2}
}

// Valid reports whether the rect has a positive, finite extent on both axes.
func (r Rect) Valid() bool {
	w, h := r.Width(), r.Height()
	return isFinite(w) && isFinite(h) && w > 0 && h > 0
}

// Contains reports whether p lies in [Min, Max) on both axes.
func (r Rect) Contains(p Vec2) bool {
	return p.X >= r.Min.X && p.X < r.Max.X && p.Y >= r.Min.Y && p.Y < r.Max.Y
}

// Displacement returns the shortest vector from a to b on the torus.
// An axis difference of exactly half the extent is left unwrapped.
func Displacement(d Rect, a, b Vec2) Vec2 {
	return Vec2{
		X: shortestDelta(b.X-a.X, d.Width()),
		Y: shortestDelta(b.Y-a.Y, d.Height()),
	}
}

// ToroidalDistance returns the length of Displacement(d, a, b).
func ToroidalDistance(d Rect, a, b Vec2) float32 {
	return Displacement(d, a, b).Length()
}

func shortestDelta(delta, extent float32) float32 {
	half := extent / 2
	if delta > half {
		delta -= extent
	} else if delta < -half {
		delta += extent
	}
	return delta
}

// Wrap maps p into the domain, each coordinate landing in [min, max).
func Wrap(d Rect, p Vec2) Vec2 {
	return Vec2{
		X: wrapAxis(p.X, d.Min.X, d.Max.X),
		Y: wrapAxis(p.Y, d.Min.Y, d.Max.Y),
	}
}

func wrapAxis(v, lo, hi float32) float32 {
	extent := hi - lo
	if !(extent > 0) {
		return lo
	}
	if !isFinite(v) {
		return lo + extent/2
	}

	// Particles overshoot by at most one extent per tick.
	if v >= hi {
		v -= extent
	} else if v < lo {
		v += extent
	}
	if v >= lo && v < hi {
		return v
	}

	m := float32(math.Mod(float64(v-lo), float64(extent)))
	if m < 0 {
		m += extent
	}
	v = lo + m
	// Rounding can land exactly on hi.
	if v >= hi {
		v = lo
	}
	return v
}
