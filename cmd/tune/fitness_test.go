package main

import (
	"math"
	"testing"

	"github.com/pthm-cable/particlelife/config"
	"github.com/pthm-cable/particlelife/telemetry"
)

func TestParamVectorKeepsRadiiOrdered(t *testing.T) {
	pv := NewParamVector()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}

	// Out-of-range values are clamped, gaps never go negative.
	pv.ApplyToConfig(cfg, []float64{100, -5, 30, -10, 1000, 50})
	s := cfg.Simulation
	if s.Friction != 8 {
		t.Errorf("expected friction clamped to 8, got %v", s.Friction)
	}
	if s.ForceStrength != 10 {
		t.Errorf("expected force clamped to 10, got %v", s.ForceStrength)
	}
	if !(s.RepulsionRadius <= s.PeakAttractionRadius && s.PeakAttractionRadius <= s.AttractionRadius) {
		t.Errorf("radii out of order: %v/%v/%v", s.RepulsionRadius, s.PeakAttractionRadius, s.AttractionRadius)
	}
	if err := cfg.Finalize(); err != nil {
		t.Errorf("tuned config should validate: %v", err)
	}
}

func TestParamVectorExtractRoundTrip(t *testing.T) {
	pv := NewParamVector()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	want := pv.ExtractFromConfig(cfg)
	pv.ApplyToConfig(cfg, want)
	got := pv.ExtractFromConfig(cfg)
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("%s: got %v, want %v", pv.Specs[i].Name, got[i], want[i])
		}
	}

	norm := pv.Normalize(want)
	back := pv.Denormalize(norm)
	for i := range want {
		if math.Abs(back[i]-want[i]) > 1e-9 {
			t.Errorf("normalize round trip %s: got %v, want %v", pv.Specs[i].Name, back[i], want[i])
		}
	}
}

func TestComputeQualityPrefersStructure(t *testing.T) {
	window := func(neighbours, speed, skew float64) telemetry.WindowStats {
		return telemetry.WindowStats{
			Particles:      1000,
			NeighboursMean: neighbours,
			SpeedMean:      speed,
			ColourSkew:     skew,
		}
	}
	series := func(w telemetry.WindowStats) []telemetry.WindowStats {
		out := make([]telemetry.WindowStats, 8)
		for i := range out {
			out[i] = w
		}
		return out
	}

	const uniform = 5
	clustered := computeQuality(series(window(40, targetSpeed, 0)), uniform)
	gas := computeQuality(series(window(uniform, targetSpeed, 0)), uniform)
	frozen := computeQuality(series(window(40, 0, 0)), uniform)

	if !(clustered > gas) {
		t.Errorf("clustered %v should beat uniform gas %v", clustered, gas)
	}
	if !(clustered > frozen) {
		t.Errorf("moving clusters %v should beat frozen ones %v", clustered, frozen)
	}
	if clustered < 0 || clustered > 1 {
		t.Errorf("quality %v outside [0, 1]", clustered)
	}
}

func TestComputeQualityNeedsWindowsPastWarmup(t *testing.T) {
	windows := make([]telemetry.WindowStats, qualityWarmupWindows)
	if q := computeQuality(windows, 5); q != 0 {
		t.Errorf("expected 0 quality during warmup, got %v", q)
	}
}

func TestCV(t *testing.T) {
	if got := cv(nil); got != 0 {
		t.Errorf("cv(nil) = %v, want 0", got)
	}
	if got := cv([]float64{3, 3, 3}); got != 0 {
		t.Errorf("cv(constant) = %v, want 0", got)
	}
	// mean 2, population std 1
	if got := cv([]float64{1, 3}); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("cv([1 3]) = %v, want 0.5", got)
	}
}

func TestFormatDuration(t *testing.T) {
	if got := formatDuration(95 * 1e9); got != "1m35s" {
		t.Errorf("got %q", got)
	}
	if got := formatDuration(3725 * 1e9); got != "1h02m05s" {
		t.Errorf("got %q", got)
	}
}
