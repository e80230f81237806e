// Package components defines ECS components for the simulation.
package components

import "github.com/pthm-cable/particlelife/systems"

// Position represents a particle's world position.
type Position struct {
	X, Y float32
}

// Vec returns the position as a vector.
func (p Position) Vec() systems.Vec2 { return systems.Vec2{X: p.X, Y: p.Y} }

// Velocity represents a particle's velocity in world units per second.
type Velocity struct {
	X, Y float32
}

// Vec returns the velocity as a vector.
func (v Velocity) Vec() systems.Vec2 { return systems.Vec2{X: v.X, Y: v.Y} }

// Colour is a particle's species.
type Colour struct {
	Value systems.Colour
}

// Particle holds bookkeeping that is not part of the physics.
type Particle struct {
	Slot int32 // Index in spawn order, stable until respawn
}
