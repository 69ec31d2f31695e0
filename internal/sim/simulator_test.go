package sim

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/san-kum/ising/internal/lattice"
)

func newLattice(t *testing.T, size int, beta float64, seed int64) *lattice.Lattice {
	t.Helper()
	l, err := lattice.New(1.0, size, 0.0,
		lattice.WithSource(rand.New(rand.NewSource(seed))),
		lattice.WithInverseTemperature(beta))
	if err != nil {
		t.Fatalf("lattice: %v", err)
	}
	return l
}

type testMetric struct {
	count int
	sum   float64
}

func (t *testMetric) Name() string { return "test" }
func (t *testMetric) Observe(s Sample) {
	t.count++
	t.sum += s.Energy
}
func (t *testMetric) Value() float64 {
	if t.count == 0 {
		return 0
	}
	return t.sum / float64(t.count)
}
func (t *testMetric) Reset() {
	t.count = 0
	t.sum = 0
}

type sweepCounter struct{ sweeps []int }

func (c *sweepCounter) OnSweep(sweep int, l *lattice.Lattice) { c.sweeps = append(c.sweeps, sweep) }

func TestSimulatorRun(t *testing.T) {
	s := New(newLattice(t, 8, 0.5, 1))

	cfg := Config{Sweeps: 20, Thermalize: 5, SampleEvery: 1}
	result, err := s.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if result.StepsTaken != 25 {
		t.Errorf("expected 25 sweeps, got %d", result.StepsTaken)
	}
	if len(result.Energy) != 20 || len(result.Magnetization) != 20 || len(result.Acceptance) != 20 {
		t.Errorf("expected 20 samples, got %d/%d/%d", len(result.Energy), len(result.Magnetization), len(result.Acceptance))
	}

	l := s.Lattice()
	last := len(result.Energy) - 1
	if result.Energy[last] != l.EnergyPerSite() {
		t.Errorf("expected last energy sample %f, got %f", l.EnergyPerSite(), result.Energy[last])
	}
	if result.Magnetization[last] != l.MagnetizationPerSite() {
		t.Errorf("expected last magnetization sample %f, got %f", l.MagnetizationPerSite(), result.Magnetization[last])
	}
	for i, a := range result.Acceptance {
		if a < 0 || a > 1 {
			t.Errorf("sample %d: acceptance %f out of range", i, a)
		}
	}
}

func TestSimulatorSampleEvery(t *testing.T) {
	s := New(newLattice(t, 4, 0.3, 2))

	result, err := s.Run(context.Background(), Config{Sweeps: 10, SampleEvery: 3})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	want := []int{2, 5, 8}
	if len(result.Sweeps) != len(want) {
		t.Fatalf("expected %d samples, got %d", len(want), len(result.Sweeps))
	}
	for i := range want {
		if result.Sweeps[i] != want[i] {
			t.Errorf("sample %d: expected sweep %d, got %d", i, want[i], result.Sweeps[i])
		}
	}
}

func TestSimulatorInvalidConfig(t *testing.T) {
	s := New(newLattice(t, 4, 0.3, 1))

	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero sweeps", Config{Sweeps: 0, SampleEvery: 1}},
		{"negative sweeps", Config{Sweeps: -1, SampleEvery: 1}},
		{"negative thermalize", Config{Sweeps: 10, Thermalize: -1, SampleEvery: 1}},
		{"zero interval", Config{Sweeps: 10, SampleEvery: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.Run(context.Background(), tt.cfg); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}

	if _, err := New(nil).Run(context.Background(), DefaultConfig()); err == nil {
		t.Error("expected error for missing lattice")
	}
}

func TestSimulatorMetrics(t *testing.T) {
	s := New(newLattice(t, 6, 0.4, 3))
	metric := &testMetric{}
	s.AddMetric(metric)

	result, err := s.Run(context.Background(), Config{Sweeps: 10, Thermalize: 4, SampleEvery: 2})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if _, ok := result.Metrics["test"]; !ok {
		t.Error("metric not found in result")
	}
	if metric.count != 5 {
		t.Errorf("expected 5 observations, got %d", metric.count)
	}
}

func TestSimulatorObservers(t *testing.T) {
	s := New(newLattice(t, 4, 0.4, 4))
	c := &sweepCounter{}
	s.AddObserver(c)

	if _, err := s.Run(context.Background(), Config{Sweeps: 7, Thermalize: 3, SampleEvery: 1}); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(c.sweeps) != 7 {
		t.Errorf("expected 7 observed sweeps, got %d", len(c.sweeps))
	}
}

func TestSimulatorCanceled(t *testing.T) {
	s := New(newLattice(t, 4, 0.4, 5))
	ctx, cancel := context.WithCancel(context.Background())

	stop := &cancelAfter{n: 3, cancel: cancel}
	s.AddObserver(stop)

	result, err := s.Run(ctx, Config{Sweeps: 100, SampleEvery: 1})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if result == nil || len(result.Energy) != 3 {
		t.Errorf("expected partial result with 3 samples, got %+v", result)
	}
}

type cancelAfter struct {
	n      int
	seen   int
	cancel context.CancelFunc
}

func (c *cancelAfter) OnSweep(sweep int, l *lattice.Lattice) {
	c.seen++
	if c.seen == c.n {
		c.cancel()
	}
}

func TestSimulatorNonFiniteEnergy(t *testing.T) {
	l, err := lattice.New(math.Inf(1), 4, 0.0, lattice.WithSource(rand.New(rand.NewSource(1))), lattice.WithInverseTemperature(0))
	if err != nil {
		t.Fatalf("lattice: %v", err)
	}

	_, err = New(l).Run(context.Background(), Config{Sweeps: 5, SampleEvery: 1})
	var se SimError
	if !errors.As(err, &se) {
		t.Fatalf("expected SimError, got %v", err)
	}
}

func TestRunWithCallback(t *testing.T) {
	s := New(newLattice(t, 4, 0.4, 6))

	calls := 0
	err := s.RunWithCallback(context.Background(), Config{Sweeps: 50, SampleEvery: 1}, func(sweep int, l *lattice.Lattice) bool {
		calls++
		return sweep < 9
	})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if calls != 10 {
		t.Errorf("expected 10 callbacks, got %d", calls)
	}
}

func TestEnsembleRun(t *testing.T) {
	betas := []float64{0.1, 0.3, 0.6, 1.0}
	factory := func(run int, seed int64) (*lattice.Lattice, error) {
		return lattice.New(1.0, 6, 0.0,
			lattice.WithSource(rand.New(rand.NewSource(seed))),
			lattice.WithInverseTemperature(betas[run]))
	}

	e := NewEnsemble(factory, len(betas), 100).
		WithWorkers(2).
		WithMetrics(func() []Metric { return []Metric{&testMetric{}} })

	results, err := e.Run(context.Background(), Config{Sweeps: 10, SampleEvery: 1})
	if err != nil {
		t.Fatalf("ensemble failed: %v", err)
	}
	if len(results) != len(betas) {
		t.Fatalf("expected %d results, got %d", len(betas), len(results))
	}
	for i, r := range results {
		if r == nil || len(r.Energy) != 10 {
			t.Errorf("run %d: expected 10 samples", i)
			continue
		}
		if _, ok := r.Metrics["test"]; !ok {
			t.Errorf("run %d: metric missing", i)
		}
	}
}

func TestEnsembleFactoryError(t *testing.T) {
	factory := func(run int, seed int64) (*lattice.Lattice, error) {
		return lattice.New(1.0, run-1, 0.0)
	}

	_, err := NewEnsemble(factory, 3, 0).Run(context.Background(), Config{Sweeps: 1, SampleEvery: 1})
	if !errors.Is(err, lattice.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter, got %v", err)
	}
}
