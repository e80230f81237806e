// Package main provides CMA-ES tuning of particle life force parameters.
package main

import (
	"github.com/pthm-cable/particlelife/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all optimizable parameters.
// Radii are encoded as the repulsion radius plus two non-negative gaps so
// every candidate keeps repulsion <= peak <= attraction.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "friction", Path: "simulation.friction", Min: 0.2, Max: 8.0, Default: 2.0},
			{Name: "force_strength", Path: "simulation.force_strength", Min: 10, Max: 400, Default: 100},
			{Name: "repulsion_radius", Path: "simulation.repulsion_radius", Min: 5, Max: 60, Default: 25},
			{Name: "peak_gap", Path: "simulation.peak_attraction_radius - repulsion_radius", Min: 0, Max: 80, Default: 25},
			{Name: "cutoff_gap", Path: "simulation.attraction_radius - peak_attraction_radius", Min: 0, Max: 80, Default: 25},
			{Name: "decay_rate", Path: "simulation.decay_rate", Min: 0, Max: 500, Default: 100},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config struct.
// Order must match Specs order.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	c := pv.Clamp(values)

	s := &cfg.Simulation
	s.Friction = c[0]
	s.ForceStrength = c[1]
	s.RepulsionRadius = c[2]
	s.PeakAttractionRadius = c[2] + c[3]
	s.AttractionRadius = c[2] + c[3] + c[4]
	s.DecayRate = c[5]
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	s := cfg.Simulation
	return []float64{
		s.Friction,
		s.ForceStrength,
		s.RepulsionRadius,
		s.PeakAttractionRadius - s.RepulsionRadius,
		s.AttractionRadius - s.PeakAttractionRadius,
		s.DecayRate,
	}
}
