package game

import (
	"math/rand"
	"testing"

	"github.com/pthm-cable/particlelife/config"
	"github.com/pthm-cable/particlelife/systems"
)

func TestStoreGatherScatter(t *testing.T) {
	s := newParticleStore()
	s.Spawn(systems.Vec2{X: 1, Y: 2}, systems.Vec2{}, 0)
	s.Spawn(systems.Vec2{X: 3, Y: 4}, systems.Vec2{}, 1)
	s.Spawn(systems.Vec2{X: 5, Y: 6}, systems.Vec2{}, 2)

	ps := s.gather()
	if ps.Len() != 3 {
		t.Fatalf("expected 3 gathered particles, got %d", ps.Len())
	}
	for i := range ps.Pos {
		ps.Pos[i] = ps.Pos[i].Add(systems.Vec2{X: 10})
		ps.Vel[i] = systems.Vec2{X: float32(i), Y: 1}
	}
	s.scatter()

	view := s.snapshotView()
	want := []systems.Vec2{{X: 11, Y: 2}, {X: 13, Y: 4}, {X: 15, Y: 6}}
	for i, w := range want {
		if view.Pos[i] != w {
			t.Errorf("slot %d: expected %v, got %v", i, w, view.Pos[i])
		}
		if view.Colour[i] != systems.Colour(i) {
			t.Errorf("slot %d: expected colour %d, got %d", i, i, view.Colour[i])
		}
	}
}

func TestStoreReplaceAndPlace(t *testing.T) {
	s := newParticleStore()
	s.Spawn(systems.Vec2{X: 1, Y: 1}, systems.Vec2{X: 5, Y: 5}, 0)
	s.Spawn(systems.Vec2{X: 2, Y: 2}, systems.Vec2{X: 5, Y: 5}, 0)

	s.Replace(0, systems.Vec2{X: 7, Y: 8}, systems.Vec2{X: 1}, 3)
	s.Place(1, systems.Vec2{X: 9, Y: 9})

	view := s.snapshotView()
	if view.Pos[0] != (systems.Vec2{X: 7, Y: 8}) || view.Colour[0] != 3 || view.Vel[0] != (systems.Vec2{X: 1}) {
		t.Errorf("slot 0 not replaced: %v %v %d", view.Pos[0], view.Vel[0], view.Colour[0])
	}
	if view.Pos[1] != (systems.Vec2{X: 9, Y: 9}) || view.Vel[1] != (systems.Vec2{}) {
		t.Errorf("slot 1 not placed: %v %v", view.Pos[1], view.Vel[1])
	}
	if view.Colour[1] != 0 {
		t.Errorf("Place should keep colour, got %d", view.Colour[1])
	}
}

func TestStoreClear(t *testing.T) {
	s := newParticleStore()
	for i := range 5 {
		s.Spawn(systems.Vec2{X: float32(i)}, systems.Vec2{}, 0)
	}
	s.Clear()

	if s.Len() != 0 {
		t.Errorf("expected empty store, got %d", s.Len())
	}
	if ps := s.gather(); ps.Len() != 0 {
		t.Errorf("expected nothing gathered after clear, got %d", ps.Len())
	}

	// Slots restart from zero.
	s.Spawn(systems.Vec2{}, systems.Vec2{}, 1)
	_, _, _, part := s.mapper.Get(s.slots[0])
	if part.Slot != 0 {
		t.Errorf("expected slot 0 after clear, got %d", part.Slot)
	}
}

func TestStoreColourCountsAndSpeeds(t *testing.T) {
	s := newParticleStore()
	s.Spawn(systems.Vec2{}, systems.Vec2{X: 3, Y: 4}, 0)
	s.Spawn(systems.Vec2{}, systems.Vec2{}, 1)
	s.Spawn(systems.Vec2{}, systems.Vec2{}, 1)
	s.Spawn(systems.Vec2{}, systems.Vec2{}, 4) // Inactive below

	counts := s.colourCounts(2)
	if counts[0] != 1 || counts[1] != 2 {
		t.Errorf("expected counts [1 2], got %v", counts)
	}

	speeds := s.speeds(nil)
	if len(speeds) != 4 {
		t.Fatalf("expected 4 speeds, got %d", len(speeds))
	}
	var sum float64
	for _, v := range speeds {
		sum += v
	}
	if sum != 5 {
		t.Errorf("expected speeds summing to 5, got %v", sum)
	}
}

func TestSpawnerPatternsStayInDomain(t *testing.T) {
	domain := systems.RectFromCenterSize(systems.Vec2{}, systems.Vec2{X: 400, Y: 300})

	for _, pattern := range []string{config.PatternUniform, config.PatternSimplex, config.PatternPerlin} {
		cfg := config.SpawnConfig{Pattern: pattern, NoiseScale: 100, Threshold: 0.5}
		s := newSpawner(cfg, 7, rand.New(rand.NewSource(7)))
		for i := range 500 {
			if p := s.Position(domain); !domain.Contains(p) {
				t.Errorf("%s: position %d at %v outside %v", pattern, i, p, domain)
				break
			}
		}
	}
}

func TestSpawnerNoiseDensityRange(t *testing.T) {
	for _, pattern := range []string{config.PatternSimplex, config.PatternPerlin} {
		cfg := config.SpawnConfig{Pattern: pattern, NoiseScale: 50, Threshold: 0.5}
		s := newSpawner(cfg, 3, rand.New(rand.NewSource(3)))
		for x := float32(-500); x < 500; x += 37 {
			for y := float32(-500); y < 500; y += 41 {
				if d := s.density(systems.Vec2{X: x, Y: y}); d < 0 || d > 1 {
					t.Errorf("%s: density %v at (%v, %v) outside [0, 1]", pattern, d, x, y)
				}
			}
		}
	}
}

func TestSpawnerSameSeedSamePositions(t *testing.T) {
	domain := systems.RectFromCenterSize(systems.Vec2{}, systems.Vec2{X: 400, Y: 300})
	cfg := config.SpawnConfig{Pattern: config.PatternSimplex, NoiseScale: 100, Threshold: 0.5}

	a := newSpawner(cfg, 11, rand.New(rand.NewSource(11)))
	b := newSpawner(cfg, 11, rand.New(rand.NewSource(11)))
	for i := range 50 {
		if pa, pb := a.Position(domain), b.Position(domain); pa != pb {
			t.Fatalf("position %d differs: %v vs %v", i, pa, pb)
		}
	}
}

func TestSpawnColour(t *testing.T) {
	tests := []struct {
		i, colours int
		want       systems.Colour
	}{
		{0, 3, 0},
		{4, 3, 1},
		{5, 1, 0},
		{2, 0, 0},
	}
	for _, tc := range tests {
		if got := spawnColour(tc.i, tc.colours); got != tc.want {
			t.Errorf("spawnColour(%d, %d) = %d, want %d", tc.i, tc.colours, got, tc.want)
		}
	}
}
