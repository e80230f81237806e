// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/particlelife/systems"
)

//go:embed defaults.yaml
var defaultsYAML []byte

//go:embed presets.yaml
var presetsYAML []byte

// Spawn patterns understood by the spawner.
const (
	PatternUniform = "uniform"
	PatternSimplex = "simplex"
	PatternPerlin  = "perlin"
)

// Config holds all simulation configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	World      WorldConfig      `yaml:"world"`
	Physics    PhysicsConfig    `yaml:"physics"`
	Simulation SimulationConfig `yaml:"simulation"`
	Particles  ParticlesConfig  `yaml:"particles"`
	Decay      DecayConfig      `yaml:"decay"`
	Spawn      SpawnConfig      `yaml:"spawn"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Presets    []PresetConfig   `yaml:"presets"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// WorldConfig holds simulation domain settings.
// The domain is centred on the origin and never smaller than the minimum
// size; a larger window grows it.
type WorldConfig struct {
	MinWidth  int `yaml:"min_width"`
	MinHeight int `yaml:"min_height"`
	GridCols  int `yaml:"grid_cols"` // Spatial grid columns
	GridRows  int `yaml:"grid_rows"` // Spatial grid rows
}

// PhysicsConfig holds integration settings.
type PhysicsConfig struct {
	DT      float64 `yaml:"dt"`
	Workers int     `yaml:"workers"` // 0 = GOMAXPROCS
}

// SimulationConfig holds the force profile and interaction model settings.
type SimulationConfig struct {
	Colours              int     `yaml:"colours"`
	Friction             float64 `yaml:"friction"`
	ForceStrength        float64 `yaml:"force_strength"`
	RepulsionRadius      float64 `yaml:"repulsion_radius"`
	PeakAttractionRadius float64 `yaml:"peak_attraction_radius"`
	AttractionRadius     float64 `yaml:"attraction_radius"`
	DecayRate            float64 `yaml:"decay_rate"` // Particles re-placed per second
	MaxSpeed             float64 `yaml:"max_speed"`
	CrowdingThreshold    int     `yaml:"crowding_threshold"` // 0 disables the guard
}

// ParticlesConfig holds population settings.
type ParticlesConfig struct {
	Count int `yaml:"count"` // Spawned on respawn
	Max   int `yaml:"max"`   // Brush spawns recycle the oldest beyond this
}

// DecayConfig holds the background re-seeding schedule.
type DecayConfig struct {
	Enabled  bool    `yaml:"enabled"`
	Interval float64 `yaml:"interval"` // Seconds between decay passes
}

// SpawnConfig holds initial placement settings.
type SpawnConfig struct {
	Pattern    string  `yaml:"pattern"`     // uniform, simplex or perlin
	NoiseScale float64 `yaml:"noise_scale"` // World units per noise period
	Threshold  float64 `yaml:"threshold"`   // Minimum normalised noise to accept a position
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// PresetConfig is a named interaction matrix with optional parameter
// overrides.
type PresetConfig struct {
	Name    string         `yaml:"name"`
	Weights [][]float64    `yaml:"weights"`
	Params  ParamOverrides `yaml:"params,omitempty"`
}

// ParamOverrides replaces only the fields that are set.
type ParamOverrides struct {
	Friction             *float64 `yaml:"friction,omitempty"`
	ForceStrength        *float64 `yaml:"force_strength,omitempty"`
	RepulsionRadius      *float64 `yaml:"repulsion_radius,omitempty"`
	PeakAttractionRadius *float64 `yaml:"peak_attraction_radius,omitempty"`
	AttractionRadius     *float64 `yaml:"attraction_radius,omitempty"`
	DecayRate            *float64 `yaml:"decay_rate,omitempty"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32      float32        // Physics.DT as float32
	ScreenW32 float32        // Screen.Width as float32
	ScreenH32 float32        // Screen.Height as float32
	MinWorld  systems.Vec2   // World minimum size as float32
	Params    systems.Params // Simulation section as force parameters
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(presetsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded presets: %w", err)
	}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	cfg.computeDerived()

	return cfg, nil
}

// Validate reports every problem with the configuration at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Screen.Width <= 0 || c.Screen.Height <= 0 {
		errs = append(errs, fmt.Errorf("screen size %dx%d must be positive", c.Screen.Width, c.Screen.Height))
	}
	if c.World.MinWidth <= 0 || c.World.MinHeight <= 0 {
		errs = append(errs, fmt.Errorf("world minimum size %dx%d must be positive", c.World.MinWidth, c.World.MinHeight))
	}
	if c.World.GridCols < 1 || c.World.GridRows < 1 {
		errs = append(errs, fmt.Errorf("grid %dx%d needs at least one cell per axis", c.World.GridCols, c.World.GridRows))
	}
	if !(c.Physics.DT > 0) {
		errs = append(errs, fmt.Errorf("physics.dt %v must be positive", c.Physics.DT))
	}
	if c.Simulation.Colours < 1 || c.Simulation.Colours > systems.MaxColours {
		errs = append(errs, fmt.Errorf("simulation.colours %d outside 1..%d", c.Simulation.Colours, systems.MaxColours))
	}
	s := c.Simulation
	if !(s.RepulsionRadius <= s.PeakAttractionRadius && s.PeakAttractionRadius <= s.AttractionRadius) {
		errs = append(errs, fmt.Errorf("radii must satisfy repulsion <= peak <= attraction, got %v/%v/%v",
			s.RepulsionRadius, s.PeakAttractionRadius, s.AttractionRadius))
	}
	for name, v := range map[string]float64{
		"friction":         s.Friction,
		"force_strength":   s.ForceStrength,
		"repulsion_radius": s.RepulsionRadius,
		"decay_rate":       s.DecayRate,
		"max_speed":        s.MaxSpeed,
	} {
		if v < 0 {
			errs = append(errs, fmt.Errorf("simulation.%s %v must not be negative", name, v))
		}
	}
	if c.Particles.Count < 0 || c.Particles.Max < 1 {
		errs = append(errs, fmt.Errorf("particles count %d / max %d out of range", c.Particles.Count, c.Particles.Max))
	}
	if c.Particles.Count > c.Particles.Max {
		errs = append(errs, fmt.Errorf("particles.count %d exceeds particles.max %d", c.Particles.Count, c.Particles.Max))
	}
	if c.Decay.Enabled && !(c.Decay.Interval > 0) {
		errs = append(errs, fmt.Errorf("decay.interval %v must be positive", c.Decay.Interval))
	}
	if !slices.Contains([]string{PatternUniform, PatternSimplex, PatternPerlin}, c.Spawn.Pattern) {
		errs = append(errs, fmt.Errorf("unknown spawn.pattern %q", c.Spawn.Pattern))
	}
	base := c.Simulation.Params()
	for i, p := range c.Presets {
		if err := p.validate(base); err != nil {
			errs = append(errs, fmt.Errorf("preset %d (%s): %w", i, p.Name, err))
		}
	}
	return errors.Join(errs...)
}

func (p *PresetConfig) validate(base systems.Params) error {
	if p.Name == "" {
		return errors.New("missing name")
	}
	if len(p.Weights) == 0 || len(p.Weights) > systems.MaxColours {
		return fmt.Errorf("%d weight rows, want 1..%d", len(p.Weights), systems.MaxColours)
	}
	for _, row := range p.Weights {
		for _, w := range row {
			if w < -1 || w > 1 {
				return fmt.Errorf("weight %v outside [-1, 1]", w)
			}
		}
	}
	if m := p.Params.merge(base); !m.Ordered() {
		return fmt.Errorf("radii must satisfy repulsion <= peak <= attraction, got %v/%v/%v",
			m.RepulsionRadius, m.PeakAttractionRadius, m.AttractionRadius)
	}
	return nil
}

// Finalize validates a programmatically edited config and refreshes its
// derived values.
func (c *Config) Finalize() error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	c.computeDerived()
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DT32 = float32(c.Physics.DT)
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)
	c.Derived.MinWorld = systems.Vec2{X: float32(c.World.MinWidth), Y: float32(c.World.MinHeight)}
	c.Derived.Params = c.Simulation.Params()
}

// Params converts the simulation section to force parameters.
func (s SimulationConfig) Params() systems.Params {
	return systems.Params{
		Friction:             float32(s.Friction),
		ForceStrength:        float32(s.ForceStrength),
		RepulsionRadius:      float32(s.RepulsionRadius),
		PeakAttractionRadius: float32(s.PeakAttractionRadius),
		AttractionRadius:     float32(s.AttractionRadius),
		DecayRate:            float32(s.DecayRate),
		MaxSpeed:             float32(s.MaxSpeed),
		CrowdingThreshold:    s.CrowdingThreshold,
	}
}

// Apply returns base with the preset's overrides applied, sanitized.
func (o ParamOverrides) Apply(base systems.Params) systems.Params {
	return o.merge(base).Sanitized()
}

func (o ParamOverrides) merge(base systems.Params) systems.Params {
	set := func(dst *float32, v *float64) {
		if v != nil {
			*dst = float32(*v)
		}
	}
	set(&base.Friction, o.Friction)
	set(&base.ForceStrength, o.ForceStrength)
	set(&base.RepulsionRadius, o.RepulsionRadius)
	set(&base.PeakAttractionRadius, o.PeakAttractionRadius)
	set(&base.AttractionRadius, o.AttractionRadius)
	set(&base.DecayRate, o.DecayRate)
	return base
}

// Matrix converts preset weights to the model's row format.
func (p *PresetConfig) Matrix() [][]float32 {
	rows := make([][]float32, len(p.Weights))
	for i, row := range p.Weights {
		rows[i] = make([]float32, len(row))
		for j, w := range row {
			rows[i][j] = float32(w)
		}
	}
	return rows
}

// PresetIndex returns the index of the named preset, or -1.
func (c *Config) PresetIndex(name string) int {
	return slices.IndexFunc(c.Presets, func(p PresetConfig) bool { return p.Name == name })
}

// WorldSize returns the simulation domain size for a window of the given
// size: the window, but never smaller than the configured minimum.
func (c *Config) WorldSize(windowW, windowH float32) systems.Vec2 {
	return systems.Vec2{
		X: max(windowW, c.Derived.MinWorld.X),
		Y: max(windowH, c.Derived.MinWorld.Y),
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
