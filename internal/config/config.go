package config

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/san-kum/ising/internal/lattice"
	"github.com/san-kum/ising/internal/sim"
	"gopkg.in/yaml.v3"
)

const (
	DefaultSideLength  = 100
	DefaultCoupling    = 1.0
	DefaultField       = 0.0
	DefaultBeta        = lattice.DefaultInverseTemperature
	DefaultSweeps      = 1000
	DefaultThermalize  = 200
	DefaultSampleEvery = 1
)

type Config struct {
	SideLength  int     `yaml:"side_length"`
	Coupling    float64 `yaml:"coupling"`
	Field       float64 `yaml:"field"`
	Beta        float64 `yaml:"beta"`
	Sweeps      int     `yaml:"sweeps"`
	Thermalize  int     `yaml:"thermalize"`
	SampleEvery int     `yaml:"sample_every"`
	Seed        int64   `yaml:"seed"`
}

func DefaultConfig() *Config {
	return &Config{
		SideLength:  DefaultSideLength,
		Coupling:    DefaultCoupling,
		Field:       DefaultField,
		Beta:        DefaultBeta,
		Sweeps:      DefaultSweeps,
		Thermalize:  DefaultThermalize,
		SampleEvery: DefaultSampleEvery,
	}
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
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate reports the first field that cannot drive a run.
func (c *Config) Validate() error {
	switch {
	case c.SideLength <= 0:
		return fmt.Errorf("side_length must be positive, got %d", c.SideLength)
	case c.Beta < 0:
		return fmt.Errorf("beta must be non-negative, got %f", c.Beta)
	case c.Sweeps <= 0:
		return fmt.Errorf("sweeps must be positive, got %d", c.Sweeps)
	case c.Thermalize < 0:
		return fmt.Errorf("thermalize must be non-negative, got %d", c.Thermalize)
	case c.SampleEvery <= 0:
		return fmt.Errorf("sample_every must be positive, got %d", c.SampleEvery)
	}
	return nil
}

func (c *Config) SimConfig() sim.Config {
	return sim.Config{
		Sweeps:      c.Sweeps,
		Thermalize:  c.Thermalize,
		SampleEvery: c.SampleEvery,
	}
}

// NewLattice builds a lattice from the config. A zero seed draws one from the clock.
func (c *Config) NewLattice() (*lattice.Lattice, error) {
	seed := c.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return lattice.New(c.Coupling, c.SideLength, c.Field,
		lattice.WithSource(rand.New(rand.NewSource(seed))),
		lattice.WithInverseTemperature(c.Beta),
	)
}
