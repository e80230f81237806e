package systems

import (
	"math"
	"math/rand"
	"testing"
)

func testDomain() Rect {
	return RectFromCenterHalfSize(Vec2{}, Vec2{50, 50})
}

func TestDisplacementShortestPath(t *testing.T) {
	d := testDomain()

	tests := []struct {
		name string
		a, b Vec2
		want Vec2
	}{
		{"direct", Vec2{0, 0}, Vec2{10, -5}, Vec2{10, -5}},
		{"wraps east", Vec2{-45, 0}, Vec2{45, 0}, Vec2{-10, 0}},
		{"wraps west", Vec2{45, 0}, Vec2{-45, 0}, Vec2{10, 0}},
		{"wraps north", Vec2{0, 45}, Vec2{0, -45}, Vec2{0, 10}},
		{"wraps diagonal", Vec2{-45, -45}, Vec2{45, 45}, Vec2{-10, -10}},
		{"exact half is not wrapped", Vec2{-25, 0}, Vec2{25, 0}, Vec2{50, 0}},
		{"exact half reversed", Vec2{25, 0}, Vec2{-25, 0}, Vec2{-50, 0}},
	}

	for _, tc := range tests {
		got := Displacement(d, tc.a, tc.b)
		if got != tc.want {
			t.Errorf("%s: Displacement(%v, %v) = %v, want %v", tc.name, tc.a, tc.b, got, tc.want)
		}
	}
}

func TestDisplacementAntisymmetric(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	domains := []Rect{
		testDomain(),
		RectFromCenterSize(Vec2{}, Vec2{1920, 1080}),
		{Min: Vec2{3, -7}, Max: Vec2{13.5, 100}},
	}

	for _, d := range domains {
		for i := 0; i < 2000; i++ {
			a := randomPoint(rng, d)
			b := randomPoint(rng, d)
			ab := Displacement(d, a, b)
			ba := Displacement(d, b, a)
			if ab != ba.Neg() {
				t.Fatalf("domain %v: Displacement(%v,%v)=%v but reverse=%v", d, a, b, ab, ba)
			}
		}
	}
}

func TestToroidalDistanceAcrossEdge(t *testing.T) {
	d := testDomain()
	got := ToroidalDistance(d, Vec2{45, 0}, Vec2{-45, 0})
	if math.Abs(float64(got-10)) > 1e-5 {
		t.Errorf("expected distance 10 across the edge, got %f", got)
	}
}

func TestWrapRangeAndIdempotence(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	d := testDomain()

	inputs := []Vec2{
		{0, 0}, {50, 50}, {-50, -50}, {49.999, -50.0001},
		{150, -150}, {1e6, -1e6}, {-123456.7, 98765.4},
	}
	for i := 0; i < 1000; i++ {
		inputs = append(inputs, Vec2{
			X: (rng.Float32()*2 - 1) * 500,
			Y: (rng.Float32()*2 - 1) * 500,
		})
	}

	for _, p := range inputs {
		w := Wrap(d, p)
		if !d.Contains(w) {
			t.Errorf("Wrap(%v) = %v, outside [%v, %v)", p, w, d.Min, d.Max)
		}
		if again := Wrap(d, w); again != w {
			t.Errorf("Wrap not idempotent for %v: %v then %v", p, w, again)
		}
	}
}

func TestWrapOneExtentOvershoot(t *testing.T) {
	d := testDomain()
	got := Wrap(d, Vec2{55, -52})
	want := Vec2{-45, 48}
	if math.Abs(float64(got.X-want.X)) > 1e-4 || math.Abs(float64(got.Y-want.Y)) > 1e-4 {
		t.Errorf("Wrap = %v, want %v", got, want)
	}
}

func TestWrapNonFinite(t *testing.T) {
	d := testDomain()
	nan := float32(math.NaN())
	inf := float32(math.Inf(1))

	for _, p := range []Vec2{{nan, 0}, {0, inf}, {-inf, nan}} {
		w := Wrap(d, p)
		if !w.IsFinite() || !d.Contains(w) {
			t.Errorf("Wrap(%v) = %v, expected finite point in domain", p, w)
		}
	}
}

func TestRectValid(t *testing.T) {
	if !testDomain().Valid() {
		t.Error("expected test domain to be valid")
	}
	if (Rect{}).Valid() {
		t.Error("expected zero rect to be invalid")
	}
	if (Rect{Min: Vec2{10, 0}, Max: Vec2{0, 10}}).Valid() {
		t.Error("expected inverted rect to be invalid")
	}
}

func TestClampLength(t *testing.T) {
	v := Vec2{300, 400}.ClampLength(200)
	if math.Abs(float64(v.Length()-200)) > 1e-3 {
		t.Errorf("expected length 200, got %f", v.Length())
	}
	short := Vec2{3, 4}
	if got := short.ClampLength(200); got != short {
		t.Errorf("short vector should be unchanged, got %v", got)
	}
}

func randomPoint(rng *rand.Rand, d Rect) Vec2 {
	return Vec2{
		X: d.Min.X + rng.Float32()*d.Width(),
		Y: d.Min.Y + rng.Float32()*d.Height(),
	}
}
