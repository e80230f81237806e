package telemetry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pthm-cable/particlelife/systems"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds the complete simulation state for replay.
type Snapshot struct {
	Version int   `json:"version"`
	RNGSeed int64 `json:"rng_seed"`

	WorldWidth  float32 `json:"world_width"`
	WorldHeight float32 `json:"world_height"`

	Tick int32 `json:"tick"`

	Params  ParamsState `json:"params"`
	Weights [][]float32 `json:"weights"`

	Particles []ParticleState `json:"particles"`

	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

// ParamsState is the JSON form of systems.Params.
type ParamsState struct {
	Friction             float32 `json:"friction"`
	ForceStrength        float32 `json:"force_strength"`
	RepulsionRadius      float32 `json:"repulsion_radius"`
	PeakAttractionRadius float32 `json:"peak_attraction_radius"`
	AttractionRadius     float32 `json:"attraction_radius"`
	DecayRate            float32 `json:"decay_rate"`
	MaxSpeed             float32 `json:"max_speed"`
	CrowdingThreshold    int     `json:"crowding_threshold"`
}

// ParticleState holds one particle's complete state.
type ParticleState struct {
	X      float32        `json:"x"`
	Y      float32        `json:"y"`
	VelX   float32        `json:"vel_x"`
	VelY   float32        `json:"vel_y"`
	Colour systems.Colour `json:"colour"`
}

// NewSnapshot captures particles, model and params.
func NewSnapshot(tick int32, seed int64, world systems.Vec2, ps *systems.Particles, model *systems.Model, params systems.Params) *Snapshot {
	s := &Snapshot{
		Version:     SnapshotVersion,
		RNGSeed:     seed,
		WorldWidth:  world.X,
		WorldHeight: world.Y,
		Tick:        tick,
		Params:      ParamsState(params),
		Weights:     model.Rows(),
		Particles:   make([]ParticleState, ps.Len()),
	}
	for i := range ps.Pos {
		s.Particles[i] = ParticleState{
			X:      ps.Pos[i].X,
			Y:      ps.Pos[i].Y,
			VelX:   ps.Vel[i].X,
			VelY:   ps.Vel[i].Y,
			Colour: ps.Colour[i],
		}
	}
	return s
}

// Restore rebuilds particles, model and params from the snapshot.
func (s *Snapshot) Restore() (*systems.Particles, *systems.Model, systems.Params, error) {
	if s.Version != SnapshotVersion {
		return nil, nil, systems.Params{}, fmt.Errorf("snapshot version %d, want %d", s.Version, SnapshotVersion)
	}
	if len(s.Weights) == 0 {
		return nil, nil, systems.Params{}, errors.New("snapshot has no interaction weights")
	}

	model := systems.NewModel(len(s.Weights))
	model.Load(s.Weights)

	ps := &systems.Particles{}
	for _, p := range s.Particles {
		if int(p.Colour) >= model.Colours() {
			return nil, nil, systems.Params{}, fmt.Errorf("particle colour %d outside %d colours", p.Colour, model.Colours())
		}
		ps.Append(systems.Vec2{X: p.X, Y: p.Y}, systems.Vec2{X: p.VelX, Y: p.VelY}, p.Colour)
	}
	return ps, model, systems.Params(s.Params).Sanitized(), nil
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	name := fmt.Sprintf("snapshot_%d", snapshot.Tick)
	if snapshot.Bookmark != nil {
		sanitized := strings.ReplaceAll(string(snapshot.Bookmark.Type), " ", "_")
		name = fmt.Sprintf("snapshot_%d_%s", snapshot.Tick, sanitized)
	}
	name += ".json"

	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}

	return &snapshot, nil
}
