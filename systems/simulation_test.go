package systems

import (
	"math"
	"math/rand"
	"testing"
)

const testDT = float32(1.0 / 60.0)

func bigDomain() Rect {
	return RectFromCenterSize(Vec2{}, Vec2{1000, 1000})
}

func sameColourModel(w float32) *Model {
	m := NewModel(1)
	m.SetWeight(Red, Red, w)
	return m
}

func TestStepSingleParticleNoSelfForce(t *testing.T) {
	sim := NewSimulator(bigDomain(), 10, 10, 1)
	defer sim.Close()

	ps := &Particles{}
	ps.Append(Vec2{12, -7}, Vec2{}, Red)

	stats := sim.Step(ps, bigDomain(), sameColourModel(1), DefaultParams(), testDT)
	if stats.Skipped {
		t.Fatal("step unexpectedly skipped")
	}
	if ps.Vel[0] != (Vec2{}) {
		t.Errorf("expected zero velocity without neighbours, got %v", ps.Vel[0])
	}
	if ps.Pos[0] != (Vec2{12, -7}) {
		t.Errorf("expected position unchanged, got %v", ps.Pos[0])
	}
	if stats.Neighbours != 0 {
		t.Errorf("expected particle not to count itself, got %d neighbours", stats.Neighbours)
	}
}

func TestStepCoincidentParticlesNoNaN(t *testing.T) {
	sim := NewSimulator(bigDomain(), 10, 10, 1)
	defer sim.Close()

	ps := &Particles{}
	ps.Append(Vec2{5, 5}, Vec2{}, Red)
	ps.Append(Vec2{5, 5}, Vec2{}, Red)

	for i := 0; i < 10; i++ {
		sim.Step(ps, bigDomain(), sameColourModel(1), DefaultParams(), testDT)
	}
	for i := range ps.Pos {
		if !ps.Pos[i].IsFinite() || !ps.Vel[i].IsFinite() {
			t.Fatalf("particle %d went non-finite: pos %v vel %v", i, ps.Pos[i], ps.Vel[i])
		}
	}
}

func TestStepVelocityClamp(t *testing.T) {
	sim := NewSimulator(bigDomain(), 10, 10, 1)
	defer sim.Close()

	rng := rand.New(rand.NewSource(5))
	ps := &Particles{}
	for i := 0; i < 50; i++ {
		ps.Append(Vec2{rng.Float32() * 10, rng.Float32() * 10}, Vec2{}, Red)
	}

	params := DefaultParams()
	params.ForceStrength = 1e7
	params.Friction = 0

	for tick := 0; tick < 5; tick++ {
		sim.Step(ps, bigDomain(), sameColourModel(1), params, testDT)
		for i, v := range ps.Vel {
			if v.Length() > params.MaxSpeed*(1+1e-5) {
				t.Fatalf("tick %d particle %d: speed %v exceeds %v", tick, i, v.Length(), params.MaxSpeed)
			}
		}
	}
}

func TestStepTwoParticlesAttractFirstTick(t *testing.T) {
	sim := NewSimulator(bigDomain(), 10, 10, 1)
	defer sim.Close()

	params := DefaultParams()
	params.Friction = 0

	half := params.PeakAttractionRadius / 2
	ps := &Particles{}
	ps.Append(Vec2{-half, 0}, Vec2{}, Red)
	ps.Append(Vec2{half, 0}, Vec2{}, Red)

	sim.Step(ps, bigDomain(), sameColourModel(1), params, testDT)

	if !(ps.Vel[0].X > 0) || !(ps.Vel[1].X < 0) {
		t.Errorf("expected velocities toward each other, got %v and %v", ps.Vel[0], ps.Vel[1])
	}
	if ps.Vel[0].Y != 0 || ps.Vel[1].Y != 0 {
		t.Errorf("expected no perpendicular velocity, got %v and %v", ps.Vel[0], ps.Vel[1])
	}
	if !approxEq(ps.Vel[0].X, -ps.Vel[1].X) {
		t.Errorf("expected symmetric velocities, got %v and %v", ps.Vel[0], ps.Vel[1])
	}
}

func TestStepTwoParticlesSettleAtRepulsionRadius(t *testing.T) {
	sim := NewSimulator(bigDomain(), 10, 10, 1)
	defer sim.Close()

	params := DefaultParams()
	// Overdamped so the approach is monotonic instead of oscillating.
	params.Friction = 8

	half := params.PeakAttractionRadius / 2
	ps := &Particles{}
	ps.Append(Vec2{-half, 0}, Vec2{}, Red)
	ps.Append(Vec2{half, 0}, Vec2{}, Red)

	model := sameColourModel(1)
	prev := ToroidalDistance(bigDomain(), ps.Pos[0], ps.Pos[1])
	for tick := 0; tick < 900; tick++ {
		sim.Step(ps, bigDomain(), model, params, testDT)
		sep := ToroidalDistance(bigDomain(), ps.Pos[0], ps.Pos[1])
		if sep > prev+1e-3 {
			t.Fatalf("tick %d: separation grew from %v to %v", tick, prev, sep)
		}
		prev = sep
	}

	if math.Abs(float64(prev-params.RepulsionRadius)) > 0.5 {
		t.Errorf("expected separation to settle near %v, got %v", params.RepulsionRadius, prev)
	}
}

func TestStepAttractsAcrossEdge(t *testing.T) {
	d := bigDomain()
	sim := NewSimulator(d, 10, 10, 1)
	defer sim.Close()

	params := DefaultParams()
	ps := &Particles{}
	ps.Append(Vec2{480, 0}, Vec2{}, Red)
	ps.Append(Vec2{-480, 0}, Vec2{}, Red)

	sim.Step(ps, d, sameColourModel(1), params, testDT)

	// 40 apart through the east/west edge: the east particle moves east.
	if !(ps.Vel[0].X > 0) || !(ps.Vel[1].X < 0) {
		t.Errorf("expected attraction through the wrap, got %v and %v", ps.Vel[0], ps.Vel[1])
	}
}

func TestStepAsymmetricWeights(t *testing.T) {
	sim := NewSimulator(bigDomain(), 10, 10, 1)
	defer sim.Close()

	m := NewModel(2)
	m.SetWeight(Red, Green, 1)  // red chases green
	m.SetWeight(Green, Red, -1) // green flees red

	params := DefaultParams()
	ps := &Particles{}
	ps.Append(Vec2{0, 0}, Vec2{}, Red)
	ps.Append(Vec2{params.PeakAttractionRadius, 0}, Vec2{}, Green)

	sim.Step(ps, bigDomain(), m, params, testDT)

	if !(ps.Vel[0].X > 0) {
		t.Errorf("expected red to move towards green, got %v", ps.Vel[0])
	}
	if !(ps.Vel[1].X > 0) {
		t.Errorf("expected green to move away from red, got %v", ps.Vel[1])
	}
}

func TestStepSkipsWithoutDomain(t *testing.T) {
	sim := NewSimulator(bigDomain(), 10, 10, 1)
	defer sim.Close()

	ps := &Particles{}
	ps.Append(Vec2{1, 1}, Vec2{3, 4}, Red)

	for _, tc := range []struct {
		name   string
		domain Rect
		dt     float32
	}{
		{"zero domain", Rect{}, testDT},
		{"zero dt", bigDomain(), 0},
		{"nan dt", bigDomain(), float32(math.NaN())},
	} {
		stats := sim.Step(ps, tc.domain, sameColourModel(1), DefaultParams(), tc.dt)
		if !stats.Skipped {
			t.Errorf("%s: expected skipped tick", tc.name)
		}
		if ps.Pos[0] != (Vec2{1, 1}) || ps.Vel[0] != (Vec2{3, 4}) {
			t.Errorf("%s: expected state untouched, got pos %v vel %v", tc.name, ps.Pos[0], ps.Vel[0])
		}
	}
}

func TestStepWrapsIntoShrunkDomain(t *testing.T) {
	sim := NewSimulator(bigDomain(), 10, 10, 1)
	defer sim.Close()

	ps := &Particles{}
	ps.Append(Vec2{400, 400}, Vec2{}, Red)

	small := RectFromCenterSize(Vec2{}, Vec2{100, 100})
	sim.Step(ps, small, sameColourModel(0), DefaultParams(), testDT)

	if !small.Contains(ps.Pos[0]) {
		t.Errorf("expected particle wrapped into resized domain, got %v", ps.Pos[0])
	}
}

func TestStepParallelMatchesSerial(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	d := RectFromCenterSize(Vec2{}, Vec2{800, 600})
	m := NewModel(4)
	m.Randomise(rng)

	serial := &Particles{}
	for i := 0; i < 500; i++ {
		serial.Append(randomPoint(rng, d), Vec2{}, Colour(i%4))
	}
	parallel := &Particles{
		Pos:    append([]Vec2(nil), serial.Pos...),
		Vel:    append([]Vec2(nil), serial.Vel...),
		Colour: append([]Colour(nil), serial.Colour...),
	}

	one := NewSimulator(d, 10, 10, 1)
	defer one.Close()
	many := NewSimulator(d, 10, 10, 4)
	defer many.Close()

	var s1, s2 StepStats
	for tick := 0; tick < 20; tick++ {
		s1 = one.Step(serial, d, m, DefaultParams(), testDT)
		s2 = many.Step(parallel, d, m, DefaultParams(), testDT)
	}

	for i := range serial.Pos {
		if serial.Pos[i] != parallel.Pos[i] || serial.Vel[i] != parallel.Vel[i] {
			t.Fatalf("particle %d diverged: serial %v/%v parallel %v/%v",
				i, serial.Pos[i], serial.Vel[i], parallel.Pos[i], parallel.Vel[i])
		}
	}
	if s1.Neighbours != s2.Neighbours {
		t.Errorf("neighbour counts differ: %d vs %d", s1.Neighbours, s2.Neighbours)
	}
}

func TestStepCrowdingGuardDropsAttraction(t *testing.T) {
	d := bigDomain()
	params := DefaultParams()
	params.CrowdingThreshold = 1

	sim := NewSimulator(d, 10, 10, 1)
	defer sim.Close()

	ps := &Particles{}
	ps.Append(Vec2{10, 10}, Vec2{}, Red)
	ps.Append(Vec2{10 + params.PeakAttractionRadius, 10}, Vec2{}, Red)

	// Both particles share a 100-unit cell, so occupancy 2 exceeds 1.
	sim.Step(ps, d, sameColourModel(1), params, testDT)
	if ps.Vel[0] != (Vec2{}) || ps.Vel[1] != (Vec2{}) {
		t.Errorf("expected attraction suppressed in crowded cell, got %v and %v", ps.Vel[0], ps.Vel[1])
	}
}

type pendingDomain struct{}

func (pendingDomain) Domain() (Rect, bool) { return Rect{}, false }

func TestStepFromUnavailableDomain(t *testing.T) {
	sim := NewSimulator(bigDomain(), 10, 10, 1)
	defer sim.Close()

	ps := &Particles{}
	ps.Append(Vec2{1, 1}, Vec2{3, 4}, Red)

	if stats := sim.StepFrom(ps, pendingDomain{}, sameColourModel(1), DefaultParams(), testDT); !stats.Skipped {
		t.Error("expected tick skipped while domain is unavailable")
	}
	if ps.Pos[0] != (Vec2{1, 1}) {
		t.Errorf("expected position untouched, got %v", ps.Pos[0])
	}

	stats := sim.StepFrom(ps, FixedDomain(bigDomain()), sameColourModel(1), DefaultParams(), testDT)
	if stats.Skipped {
		t.Error("expected tick to run with a fixed domain")
	}
	if ps.Pos[0] == (Vec2{1, 1}) {
		t.Error("expected particle to move under its own velocity")
	}
}
