package sim

import (
	"fmt"

	"github.com/san-kum/ising/internal/lattice"
)

// Sample is a snapshot of the lattice observables taken after a sweep.
type Sample struct {
	Sweep         int
	Energy        float64
	Magnetization int
	Sites         int
	Beta          float64
	Accepted      int
}

type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}

type Observer interface {
	OnSweep(sweep int, l *lattice.Lattice)
}

type Config struct {
	Sweeps      int
	Thermalize  int
	SampleEvery int
}

func DefaultConfig() Config {
	return Config{
		Sweeps:      1000,
		Thermalize:  200,
		SampleEvery: 1,
	}
}

// Result holds per-site series, one entry per sample.
type Result struct {
	Sweeps        []int
	Energy        []float64
	Magnetization []float64
	Acceptance    []float64
	Metrics       map[string]float64
	StepsTaken    int
}

type SimError struct {
	Sweep   int
	Message string
}

func (e SimError) Error() string {
	return fmt.Sprintf("sweep %d: %s", e.Sweep, e.Message)
}
