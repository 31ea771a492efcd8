package config

import (
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/san-kum/partsim/internal/particle"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPreset = "fountain"
	DefaultFrames = 600
	DefaultDt     = 1.0 / 60
)

type Config struct {
	Preset  string        `yaml:"preset"`
	Seed    uint64        `yaml:"seed"`
	Frames  int           `yaml:"frames"`
	Dt      float32       `yaml:"dt"`
	Emitter EmitterConfig `yaml:"emitter"`
}

type EmitterConfig struct {
	Capacity    int        `yaml:"capacity"`
	Position    [4]float32 `yaml:"position"`
	MaxAlive    int        `yaml:"max_alive"`
	SpawnBudget int        `yaml:"spawn_budget"`
	MinLife     int        `yaml:"min_life"`
	MaxLife     int        `yaml:"max_life"`
	Gravity     [4]float32 `yaml:"gravity"`
	EmitDir     [4]float32 `yaml:"emit_dir"`
	Spread      float32    `yaml:"spread"`
}

func DefaultConfig() *Config {
	p := particle.DefaultConfig()
	return &Config{
		Preset: DefaultPreset,
		Frames: DefaultFrames,
		Dt:     DefaultDt,
		Emitter: EmitterConfig{
			Capacity:    p.Capacity,
			Position:    p.Position,
			MaxAlive:    p.MaxAlive,
			SpawnBudget: p.SpawnBudget,
			MinLife:     p.MinLife,
			MaxLife:     p.MaxLife,
			Gravity:     p.Gravity,
			EmitDir:     p.EmitDir,
			Spread:      p.Spread,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Particle converts the emitter section into a pool configuration.
func (c *Config) Particle() particle.Config {
	e := c.Emitter
	return particle.Config{
		Capacity:    e.Capacity,
		Position:    mgl32.Vec4(e.Position),
		MaxAlive:    e.MaxAlive,
		SpawnBudget: e.SpawnBudget,
		MinLife:     e.MinLife,
		MaxLife:     e.MaxLife,
		Gravity:     mgl32.Vec4(e.Gravity),
		EmitDir:     mgl32.Vec4(e.EmitDir),
		Spread:      e.Spread,
	}
}

// Clone returns a deep copy; presets must never be mutated in place.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}
