package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/ising/internal/lattice"
)

// Simulator drives one lattice through thermalization and measurement sweeps.
type Simulator struct {
	lat       *lattice.Lattice
	metrics   []Metric
	observers []Observer
}

func New(l *lattice.Lattice) *Simulator {
	return &Simulator{
		lat:       l,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Lattice() *lattice.Lattice { return s.lat }

// Run thermalizes for cfg.Thermalize sweeps without sampling, then performs
// cfg.Sweeps sweeps and samples every cfg.SampleEvery. The context is checked
// between sweeps; on cancellation the partial result is returned with ctx.Err().
func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}

	samples := cfg.Sweeps / cfg.SampleEvery
	result := &Result{
		Sweeps:        make([]int, 0, samples),
		Energy:        make([]float64, 0, samples),
		Magnetization: make([]float64, 0, samples),
		Acceptance:    make([]float64, 0, samples),
		Metrics:       make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	for i := 0; i < cfg.Thermalize; i++ {
		if err := ctx.Err(); err != nil {
			s.collect(result)
			return result, err
		}
		s.lat.Sweep()
		result.StepsTaken++
	}

	sites := s.lat.Sites()
	for i := 0; i < cfg.Sweeps; i++ {
		select {
		case <-ctx.Done():
			s.collect(result)
			return result, ctx.Err()
		default:
		}

		accepted := s.lat.Sweep()
		result.StepsTaken++

		if e := s.lat.Energy(); math.IsNaN(e) || math.IsInf(e, 0) {
			s.collect(result)
			return result, SimError{Sweep: i, Message: "energy is not finite"}
		}

		for _, obs := range s.observers {
			obs.OnSweep(i, s.lat)
		}

		if (i+1)%cfg.SampleEvery != 0 {
			continue
		}

		sample := Sample{
			Sweep:         i,
			Energy:        s.lat.Energy(),
			Magnetization: s.lat.Magnetization(),
			Sites:         sites,
			Beta:          s.lat.InverseTemperature(),
			Accepted:      accepted,
		}
		for _, m := range s.metrics {
			m.Observe(sample)
		}

		result.Sweeps = append(result.Sweeps, i)
		result.Energy = append(result.Energy, s.lat.EnergyPerSite())
		result.Magnetization = append(result.Magnetization, s.lat.MagnetizationPerSite())
		result.Acceptance = append(result.Acceptance, float64(accepted)/float64(sites))
	}

	s.collect(result)
	return result, nil
}

// RunWithCallback sweeps until cfg.Sweeps is reached, the context ends or fn
// returns false. Thermalization and sampling are left to the caller.
func (s *Simulator) RunWithCallback(ctx context.Context, cfg Config, fn func(sweep int, l *lattice.Lattice) bool) error {
	if err := s.validateConfig(cfg); err != nil {
		return err
	}

	for i := 0; i < cfg.Sweeps; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		s.lat.Sweep()
		if !fn(i, s.lat) {
			return nil
		}
	}

	return nil
}

func (s *Simulator) validateConfig(cfg Config) error {
	if s.lat == nil {
		return fmt.Errorf("simulator has no lattice")
	}
	if cfg.Sweeps <= 0 {
		return fmt.Errorf("sweeps must be positive, got %d", cfg.Sweeps)
	}
	if cfg.Thermalize < 0 {
		return fmt.Errorf("thermalize must be non-negative, got %d", cfg.Thermalize)
	}
	if cfg.SampleEvery <= 0 {
		return fmt.Errorf("sample interval must be positive, got %d", cfg.SampleEvery)
	}
	return nil
}

func (s *Simulator) collect(result *Result) {
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}
