package config

import (
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	MinBobs     = 2
	MaxBobs     = 20
	DefaultBobs = 5

	MinMassRatio     = 0.5
	MaxMassRatio     = 3.0
	MassRatioStep    = 0.1
	DefaultMassRatio = 1.0

	DefaultDt         = 1.0 / 60
	DefaultSubsteps   = 8
	DefaultIterations = 20
	DefaultGravity    = 1000.0
	DefaultWidth      = 800.0
	DefaultHeight     = 600.0
	DefaultFPS        = 60
)

// Engine names the physics backend a session runs on.
type Engine string

const (
	EngineNative   Engine = "native"
	EngineChipmunk Engine = "chipmunk"
)

type MassMode string

const (
	MassUniform    MassMode = "uniform"
	MassIndividual MassMode = "individual"
)

// Cradle is the user-facing configuration of the row of bobs.
type Cradle struct {
	BobCount      int       `yaml:"bob_count" json:"bob_count"`
	ContactGap    bool      `yaml:"contact_gap" json:"contact_gap"`
	MassMode      MassMode  `yaml:"mass_mode" json:"mass_mode"`
	MassOverrides []float64 `yaml:"mass_overrides" json:"mass_overrides"`
}

// Sim holds the stepping and viewport settings.
type Sim struct {
	Dt         float64 `yaml:"dt" json:"dt"`
	Substeps   int     `yaml:"substeps" json:"substeps"`
	Iterations int     `yaml:"iterations" json:"iterations"`
	Gravity    float64 `yaml:"gravity" json:"gravity"`
	Width      float64 `yaml:"width" json:"width"`
	Height     float64 `yaml:"height" json:"height"`
	FPS        int     `yaml:"fps" json:"fps"`
	Engine     Engine  `yaml:"engine" json:"engine"`
}

type Config struct {
	Cradle Cradle `yaml:"cradle" json:"cradle"`
	Sim    Sim    `yaml:"sim" json:"sim"`
}

func DefaultCradle() Cradle {
	c := Cradle{BobCount: DefaultBobs, MassMode: MassUniform}
	c.ensureOverrides()
	return c
}

func DefaultSim() Sim {
	return Sim{
		Dt:         DefaultDt,
		Substeps:   DefaultSubsteps,
		Iterations: DefaultIterations,
		Gravity:    DefaultGravity,
		Width:      DefaultWidth,
		Height:     DefaultHeight,
		FPS:        DefaultFPS,
		Engine:     EngineNative,
	}
}

func DefaultConfig() *Config {
	return &Config{Cradle: DefaultCradle(), Sim: DefaultSim()}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.Clamp()
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clamp pulls every field back into its valid range. Out-of-range input is
// never an error.
func (c *Config) Clamp() {
	c.Cradle = c.Cradle.Clamp()

	d := DefaultSim()
	if c.Sim.Dt <= 0 {
		c.Sim.Dt = d.Dt
	}
	if c.Sim.Substeps < 1 {
		c.Sim.Substeps = d.Substeps
	}
	if c.Sim.Iterations < 1 {
		c.Sim.Iterations = d.Iterations
	}
	if c.Sim.Gravity < 0 {
		c.Sim.Gravity = 0
	}
	if c.Sim.Width <= 0 {
		c.Sim.Width = d.Width
	}
	if c.Sim.Height <= 0 {
		c.Sim.Height = d.Height
	}
	if c.Sim.FPS <= 0 {
		c.Sim.FPS = d.FPS
	}
	if c.Sim.Engine != EngineChipmunk {
		c.Sim.Engine = EngineNative
	}
}

// Clamp returns a copy with the bob count in range, a known mass mode and
// enough quantized overrides for every bob. The override list is copied so
// the result never aliases the receiver.
func (c Cradle) Clamp() Cradle {
	c.BobCount = min(max(c.BobCount, MinBobs), MaxBobs)
	if c.MassMode != MassIndividual {
		c.MassMode = MassUniform
	}
	c.MassOverrides = append([]float64(nil), c.MassOverrides...)
	for i, v := range c.MassOverrides {
		c.MassOverrides[i] = QuantizeMass(v)
	}
	c.ensureOverrides()
	return c
}

// MassRatio is the mass multiplier of bob i under the current mode.
func (c Cradle) MassRatio(i int) float64 {
	if c.MassMode != MassIndividual || i < 0 || i >= len(c.MassOverrides) {
		return DefaultMassRatio
	}
	return c.MassOverrides[i]
}

// ensureOverrides pads the override list with the default ratio until it
// covers BobCount. It never shrinks.
func (c *Cradle) ensureOverrides() {
	for len(c.MassOverrides) < c.BobCount {
		c.MassOverrides = append(c.MassOverrides, DefaultMassRatio)
	}
}

// QuantizeMass snaps a ratio to the 0.1 grid inside [MinMassRatio, MaxMassRatio].
func QuantizeMass(v float64) float64 {
	if math.IsNaN(v) {
		return DefaultMassRatio
	}
	v = math.Round(v*10) / 10
	return math.Min(math.Max(v, MinMassRatio), MaxMassRatio)
}
