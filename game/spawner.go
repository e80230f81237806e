package game

import (
	"math/rand"

	perlin "github.com/aquilax/go-perlin"
	"github.com/ojrac/opensimplex-go"

	"github.com/pthm-cable/particlelife/config"
	"github.com/pthm-cable/particlelife/systems"
)

// maxSpawnTries bounds rejection sampling for noise patterns.
const maxSpawnTries = 32

// Perlin octave settings.
const (
	perlinAlpha  = 2.0
	perlinBeta   = 2.0
	perlinOctave = 3
)

// spawner picks initial particle positions according to a spawn pattern.
// Noise patterns accept a candidate only where the noise field exceeds the
// threshold, which seeds the world with clumps instead of uniform dust.
type spawner struct {
	rng       *rand.Rand
	pattern   string
	scale     float32
	threshold float32

	simplex opensimplex.Noise32
	perlin  *perlin.Perlin
}

func newSpawner(cfg config.SpawnConfig, seed int64, rng *rand.Rand) *spawner {
	s := &spawner{
		rng:       rng,
		pattern:   cfg.Pattern,
		scale:     float32(cfg.NoiseScale),
		threshold: float32(cfg.Threshold),
	}
	if s.scale <= 0 {
		s.scale = 1
	}
	switch s.pattern {
	case config.PatternSimplex:
		s.simplex = opensimplex.NewNormalized32(seed)
	case config.PatternPerlin:
		s.perlin = perlin.NewPerlin(perlinAlpha, perlinBeta, perlinOctave, seed)
	}
	return s
}

// Position returns a spawn position inside d.
func (s *spawner) Position(d systems.Rect) systems.Vec2 {
	p := s.uniform(d)
	if s.simplex == nil && s.perlin == nil {
		return p
	}
	for range maxSpawnTries {
		if s.density(p) >= s.threshold {
			return p
		}
		p = s.uniform(d)
	}
	return p
}

// uniform returns a uniformly distributed point in d.
func (s *spawner) uniform(d systems.Rect) systems.Vec2 {
	return systems.Wrap(d, systems.Vec2{
		X: d.Min.X + s.rng.Float32()*d.Width(),
		Y: d.Min.Y + s.rng.Float32()*d.Height(),
	})
}

// density samples the noise field at p, normalised to [0, 1].
func (s *spawner) density(p systems.Vec2) float32 {
	x, y := p.X/s.scale, p.Y/s.scale
	switch {
	case s.simplex != nil:
		return s.simplex.Eval2(x, y)
	case s.perlin != nil:
		n := float32(s.perlin.Noise2D(float64(x), float64(y)))
		return min(max((n+1)/2, 0), 1)
	}
	return 1
}

// spawnColour returns the colour for the i-th spawned particle.
func spawnColour(i, colours int) systems.Colour {
	if colours < 1 {
		colours = 1
	}
	return systems.Colour(i % colours)
}
