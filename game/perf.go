package game

import (
	"cmp"
	"slices"
	"time"
)

// perfSamples is about two seconds of frames at 60fps.
const perfSamples = 120

// perfRing is a fixed-size window of durations.
type perfRing struct {
	buf   [perfSamples]time.Duration
	next  int
	count int
	sum   time.Duration
}

func (r *perfRing) add(d time.Duration) {
	if r.count == perfSamples {
		r.sum -= r.buf[r.next]
	} else {
		r.count++
	}
	r.buf[r.next] = d
	r.sum += d
	r.next = (r.next + 1) % perfSamples
}

// PerfStats tracks per-frame durations for the viewer (update, draw).
// Simulation phases are tracked by telemetry.PerfCollector.
type PerfStats struct {
	rings map[string]*perfRing
}

// NewPerfStats creates a new frame timing tracker.
func NewPerfStats() *PerfStats {
	return &PerfStats{rings: make(map[string]*perfRing)}
}

// Record adds a duration sample for the named section.
func (p *PerfStats) Record(name string, d time.Duration) {
	r, ok := p.rings[name]
	if !ok {
		r = &perfRing{}
		p.rings[name] = r
	}
	r.add(d)
}

// Avg returns the average duration for the named section.
func (p *PerfStats) Avg(name string) time.Duration {
	r, ok := p.rings[name]
	if !ok || r.count == 0 {
		return 0
	}
	return r.sum / time.Duration(r.count)
}

// Total returns the sum of all average durations.
func (p *PerfStats) Total() time.Duration {
	var total time.Duration
	for name := range p.rings {
		total += p.Avg(name)
	}
	return total
}

// SortedNames returns section names sorted by average duration (descending).
func (p *PerfStats) SortedNames() []string {
	names := make([]string, 0, len(p.rings))
	for name := range p.rings {
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b string) int {
		if c := cmp.Compare(p.Avg(b), p.Avg(a)); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	return names
}
