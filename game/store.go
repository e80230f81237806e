package game

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/particlelife/components"
	"github.com/pthm-cable/particlelife/systems"
)

// particleStore keeps particles as ECS entities and mirrors them into a flat
// view for the simulator: gather before the step, scatter after it.
type particleStore struct {
	world *ecs.World

	mapper *ecs.Map4[
		components.Position,
		components.Velocity,
		components.Colour,
		components.Particle,
	]
	filter *ecs.Filter4[
		components.Position,
		components.Velocity,
		components.Colour,
		components.Particle,
	]

	// slots holds entities in spawn order; slot i has Particle.Slot == i.
	slots []ecs.Entity

	// view and order are rebuilt by gather. order[i] is the entity behind
	// view index i.
	view  systems.Particles
	order []ecs.Entity
}

func newParticleStore() *particleStore {
	world := ecs.NewWorld()

	return &particleStore{
		world: world,
		mapper: ecs.NewMap4[
			components.Position,
			components.Velocity,
			components.Colour,
			components.Particle,
		](world),
		filter: ecs.NewFilter4[
			components.Position,
			components.Velocity,
			components.Colour,
			components.Particle,
		](world),
	}
}

// Len returns the number of live particles.
func (s *particleStore) Len() int { return len(s.slots) }

// Spawn creates a particle in the next slot.
func (s *particleStore) Spawn(pos, vel systems.Vec2, c systems.Colour) ecs.Entity {
	p := components.Position{X: pos.X, Y: pos.Y}
	v := components.Velocity{X: vel.X, Y: vel.Y}
	col := components.Colour{Value: c}
	part := components.Particle{Slot: int32(len(s.slots))}

	e := s.mapper.NewEntity(&p, &v, &col, &part)
	s.slots = append(s.slots, e)
	return e
}

// Replace overwrites the particle in slot with a fresh one.
func (s *particleStore) Replace(slot int, pos, vel systems.Vec2, c systems.Colour) {
	p, v, col, _ := s.mapper.Get(s.slots[slot])
	*p = components.Position{X: pos.X, Y: pos.Y}
	*v = components.Velocity{X: vel.X, Y: vel.Y}
	col.Value = c
}

// Place moves the particle in slot to pos and stops it.
func (s *particleStore) Place(slot int, pos systems.Vec2) {
	p, v, _, _ := s.mapper.Get(s.slots[slot])
	*p = components.Position{X: pos.X, Y: pos.Y}
	*v = components.Velocity{}
}

// Clear removes every particle.
func (s *particleStore) Clear() {
	for _, e := range s.slots {
		s.world.RemoveEntity(e)
	}
	s.slots = s.slots[:0]
	s.view.Reset()
	s.order = s.order[:0]
}

// gather copies every particle into the flat view.
func (s *particleStore) gather() *systems.Particles {
	s.view.Reset()
	s.order = s.order[:0]

	query := s.filter.Query()
	for query.Next() {
		pos, vel, col, _ := query.Get()
		s.view.Append(pos.Vec(), vel.Vec(), col.Value)
		s.order = append(s.order, query.Entity())
	}
	return &s.view
}

// scatter writes view positions and velocities back to the entities
// recorded by the last gather.
func (s *particleStore) scatter() {
	for i, e := range s.order {
		pos, vel, _, _ := s.mapper.Get(e)
		p, v := s.view.Pos[i], s.view.Vel[i]
		*pos = components.Position{X: p.X, Y: p.Y}
		*vel = components.Velocity{X: v.X, Y: v.Y}
	}
}

// colourCounts returns the particle count per colour, truncated to n colours.
// Particles of inactive colours are not counted.
func (s *particleStore) colourCounts(n int) []int {
	counts := make([]int, n)
	query := s.filter.Query()
	for query.Next() {
		_, _, col, _ := query.Get()
		if int(col.Value) < n {
			counts[col.Value]++
		}
	}
	return counts
}

// speeds returns every particle's speed.
func (s *particleStore) speeds(dst []float64) []float64 {
	dst = dst[:0]
	query := s.filter.Query()
	for query.Next() {
		_, vel, _, _ := query.Get()
		dst = append(dst, float64(vel.Vec().Length()))
	}
	return dst
}

// snapshotView gathers the current state without disturbing order for a
// pending scatter.
func (s *particleStore) snapshotView() *systems.Particles {
	ps := &systems.Particles{}
	for _, e := range s.slots {
		pos, vel, col, _ := s.mapper.Get(e)
		ps.Append(pos.Vec(), vel.Vec(), col.Value)
	}
	return ps
}

// each calls fn for every particle.
func (s *particleStore) each(fn func(pos, vel systems.Vec2, c systems.Colour)) {
	query := s.filter.Query()
	for query.Next() {
		pos, vel, col, _ := query.Get()
		fn(pos.Vec(), vel.Vec(), col.Value)
	}
}
