package systems

import "time"

// Particles is a flat structure-of-arrays view of every live particle. The
// slices are index-aligned and owned by the caller; Step only rewrites Pos
// and Vel in place.
type Particles struct {
	Pos    []Vec2
	Vel    []Vec2
	Colour []Colour
}

// Len returns the particle count.
func (p *Particles) Len() int { return len(p.Pos) }

// Reset truncates all arrays, keeping capacity.
func (p *Particles) Reset() {
	p.Pos = p.Pos[:0]
	p.Vel = p.Vel[:0]
	p.Colour = p.Colour[:0]
}

// Append adds one particle.
func (p *Particles) Append(pos, vel Vec2, c Colour) {
	p.Pos = append(p.Pos, pos)
	p.Vel = append(p.Vel, vel)
	p.Colour = append(p.Colour, c)
}

// particleRef is the grid payload: identity for self-exclusion plus the
// colour needed for the weight lookup.
type particleRef struct {
	index  int32
	colour Colour
}

// StepStats describes one tick.
type StepStats struct {
	Particles        int
	Neighbours       int64 // Sum over particles of neighbours within the attraction radius
	MaxCellOccupancy int
	Skipped          bool // Domain or dt unusable; state left untouched

	GridTime  time.Duration // Grid rebuild
	ForceTime time.Duration // Force accumulation and integration
}

// DomainSource supplies the current simulation domain. ok is false while the
// domain is not available yet, for example before the window exists.
type DomainSource interface {
	Domain() (d Rect, ok bool)
}

// FixedDomain is a DomainSource that never changes.
type FixedDomain Rect

// Domain returns the rectangle, available whenever it has area.
func (f FixedDomain) Domain() (Rect, bool) {
	r := Rect(f)
	return r, r.Valid()
}

// workerScratch holds per-worker reusable buffers.
type workerScratch struct {
	neighbours []Neighbour[particleRef]
	count      int64
	_          [56]byte // keep counters on separate cache lines
}

// Simulator advances particles one tick at a time. It owns the spatial grid
// and the worker pool; neither survives between ticks in any meaningful
// state.
type Simulator struct {
	grid      *Grid[particleRef]
	pool      *WorkerPool
	scratches []workerScratch

	// Per-tick inputs shared read-only with workers.
	particles *Particles
	domain    Rect
	model     *Model
	params    Params
	dt        float32
	friction  float32
}

// NewSimulator creates a simulator with a cols×rows grid over bounds and a
// pool of workers goroutines (<= 0 uses GOMAXPROCS).
func NewSimulator(bounds Rect, cols, rows, workers int) *Simulator {
	pool := NewWorkerPool(workers)
	scratches := make([]workerScratch, pool.Workers())
	for i := range scratches {
		scratches[i].neighbours = make([]Neighbour[particleRef], 0, 64)
	}
	return &Simulator{
		grid:      NewGrid[particleRef](bounds, cols, rows),
		pool:      pool,
		scratches: scratches,
	}
}

// Close stops the worker goroutines.
func (s *Simulator) Close() {
	s.pool.Close()
}

// GridDims returns the grid resolution.
func (s *Simulator) GridDims() (cols, rows int) { return s.grid.Dims() }

// Step runs one tick: rebuild the grid, accumulate forces, integrate and
// wrap. An unusable domain or dt makes the tick a no-op.
func (s *Simulator) Step(ps *Particles, domain Rect, model *Model, params Params, dt float32) StepStats {
	n := ps.Len()
	if !domain.Valid() || !(dt > 0) || !isFinite(dt) || model == nil {
		return StepStats{Particles: n, Skipped: true}
	}

	s.particles = ps
	s.domain = domain
	s.model = model
	s.params = params.Sanitized()
	s.dt = dt
	s.friction = expf(-s.params.Friction * dt)
	defer s.release()

	start := time.Now()
	s.rebuildGrid()
	gridDone := time.Now()

	for i := range s.scratches {
		s.scratches[i].count = 0
	}
	s.pool.Run(n, s.integrateChunk)

	stats := StepStats{
		Particles:        n,
		MaxCellOccupancy: s.grid.MaxCellLen(),
		GridTime:         gridDone.Sub(start),
		ForceTime:        time.Since(gridDone),
	}
	for i := range s.scratches {
		stats.Neighbours += s.scratches[i].count
	}
	return stats
}

// StepFrom resolves the domain from src and runs Step. An unavailable domain
// skips the tick.
func (s *Simulator) StepFrom(ps *Particles, src DomainSource, model *Model, params Params, dt float32) StepStats {
	d, ok := src.Domain()
	if !ok {
		return StepStats{Particles: ps.Len(), Skipped: true}
	}
	return s.Step(ps, d, model, params, dt)
}

// release drops per-tick references so the caller's arrays are not pinned.
func (s *Simulator) release() {
	s.particles = nil
	s.model = nil
}

// rebuildGrid clears and reinserts every particle (single writer).
func (s *Simulator) rebuildGrid() {
	if s.grid.Bounds() != s.domain {
		s.grid.UpdateBounds(s.domain)
	}
	s.grid.Clear()

	ps := s.particles
	for i := range ps.Pos {
		// The domain may have shrunk since the last tick.
		if !s.domain.Contains(ps.Pos[i]) {
			ps.Pos[i] = Wrap(s.domain, ps.Pos[i])
		}
		s.grid.Insert(ps.Pos[i], particleRef{index: int32(i), colour: ps.Colour[i]})
	}
}

// integrateChunk computes force and integrates particles [i0, i1).
// Workers read neighbour positions from the grid copy and write only their
// own indices, so no synchronisation is needed.
func (s *Simulator) integrateChunk(i0, i1, worker int) {
	scratch := &s.scratches[worker]
	ps := s.particles
	p := &s.params

	for i := i0; i < i1; i++ {
		pos := ps.Pos[i]
		force := s.force(i, pos, ps.Colour[i], scratch)

		vel := ps.Vel[i].Add(force.Scale(s.dt)).Scale(s.friction)
		vel = vel.ClampLength(p.MaxSpeed)
		if !vel.IsFinite() {
			vel = Vec2{}
		}

		ps.Vel[i] = vel
		ps.Pos[i] = Wrap(s.domain, pos.Add(vel.Scale(s.dt)))
	}
}

// force sums the contributions of every neighbour within the attraction
// radius of particle i.
func (s *Simulator) force(i int, pos Vec2, colour Colour, scratch *workerScratch) Vec2 {
	p := &s.params
	scratch.neighbours = s.grid.QueryInto(scratch.neighbours[:0], pos, p.AttractionRadius)

	crowded := p.CrowdingThreshold > 0 && s.grid.CellLen(pos) > p.CrowdingThreshold

	var force Vec2
	self := int32(i)
	for k := range scratch.neighbours {
		nb := &scratch.neighbours[k]
		if nb.Item.index == self {
			continue
		}
		scratch.count++

		// Coincident particles have no direction to push along.
		if nb.DistSq == 0 {
			continue
		}

		dist := sqrtf(nb.DistSq)
		mag := Magnitude(p, s.model.Weight(colour, nb.Item.colour), dist)
		if crowded && mag > 0 {
			continue
		}
		force = force.Add(nb.Delta.Scale(mag * p.ForceStrength / dist))
	}
	return force
}
