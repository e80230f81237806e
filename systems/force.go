package systems

// Params holds the simulation tunables read fresh every tick.
type Params struct {
	Friction             float32 // Velocity decay rate per second
	ForceStrength        float32 // Scales the force profile
	RepulsionRadius      float32 // Inner band: always repulsive
	PeakAttractionRadius float32 // Where the interaction factor peaks
	AttractionRadius     float32 // Interaction cutoff
	DecayRate            float32 // Particles re-placed per second
	MaxSpeed             float32 // Velocity clamp
	CrowdingThreshold    int     // Cell occupancy above which attraction is dropped (0 = off)
}

// interactionRadius is the default attraction cutoff.
const interactionRadius = 75.0

// DefaultParams returns the reference tuning.
func DefaultParams() Params {
	return Params{
		Friction:             2.0,
		ForceStrength:        100.0,
		RepulsionRadius:      interactionRadius / 3,
		PeakAttractionRadius: 2 * interactionRadius / 3,
		AttractionRadius:     interactionRadius,
		DecayRate:            100.0,
		MaxSpeed:             200.0,
	}
}

// Sanitized returns a copy satisfying 0 <= repulsion <= peak <= attraction
// with non-negative scalars. Out-of-order radii are sorted rather than
// rejected.
func (p Params) Sanitized() Params {
	p.Friction = nonNegative(p.Friction)
	p.ForceStrength = nonNegative(p.ForceStrength)
	p.DecayRate = nonNegative(p.DecayRate)
	p.MaxSpeed = nonNegative(p.MaxSpeed)
	p.CrowdingThreshold = max(p.CrowdingThreshold, 0)

	r := [3]float32{
		nonNegative(p.RepulsionRadius),
		nonNegative(p.PeakAttractionRadius),
		nonNegative(p.AttractionRadius),
	}
	if r[0] > r[1] {
		r[0], r[1] = r[1], r[0]
	}
	if r[1] > r[2] {
		r[1], r[2] = r[2], r[1]
	}
	if r[0] > r[1] {
		r[0], r[1] = r[1], r[0]
	}
	p.RepulsionRadius, p.PeakAttractionRadius, p.AttractionRadius = r[0], r[1], r[2]
	return p
}

// Ordered reports whether the radii already satisfy the ordering invariant.
func (p Params) Ordered() bool {
	return p.RepulsionRadius >= 0 &&
		p.RepulsionRadius <= p.PeakAttractionRadius &&
		p.PeakAttractionRadius <= p.AttractionRadius
}

// Magnitude maps a distance and a signed interaction factor to a signed
// force magnitude:
//
//	[0, repulsion]        -1 .. 0       (always repulsive)
//	(repulsion, peak]      0 .. factor
//	(peak, attraction]     factor .. 0
//
// Beyond the attraction radius the result is 0; the force loop never asks
// because the neighbour query stops there.
func Magnitude(p *Params, factor, distance float32) float32 {
	switch {
	case distance <= p.RepulsionRadius:
		return Remap(distance, 0, p.RepulsionRadius, -1, 0)
	case distance <= p.PeakAttractionRadius:
		return Remap(distance, p.RepulsionRadius, p.PeakAttractionRadius, 0, factor)
	case distance <= p.AttractionRadius:
		return Remap(distance, p.PeakAttractionRadius, p.AttractionRadius, factor, 0)
	default:
		return 0
	}
}
