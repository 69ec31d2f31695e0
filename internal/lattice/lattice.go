package lattice

import (
	"math"
	"math/rand"
	"time"
)

// DefaultInverseTemperature is the β a new lattice starts with.
const DefaultInverseTemperature = 0.002

// Source supplies uniform variates in [0, 1). *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

// Site addresses one cell as (row, column).
type Site struct {
	I, J int
}

// Trial describes one Metropolis flip attempt.
type Trial struct {
	Site        Site
	DeltaE      float64
	Probability float64
	Accepted    bool
}

// Observer is notified after every flip attempt of a sweep.
type Observer interface {
	OnTrial(t Trial)
}

type Option func(*Lattice)

// WithSource injects the random source used for initial states and acceptance draws.
func WithSource(src Source) Option {
	return func(l *Lattice) {
		if src != nil {
			l.src = src
		}
	}
}

func WithInverseTemperature(beta float64) Option {
	return func(l *Lattice) { l.beta = beta }
}

// Lattice is an L×L Ising spin field with periodic boundaries.
type Lattice struct {
	size     int
	spins    []int8
	coupling float64
	field    float64
	beta     float64

	energy        float64
	magnetization int

	src       Source
	observers []Observer
}

// New builds a lattice with a uniformly random spin configuration.
func New(coupling float64, sideLength int, field float64, opts ...Option) (*Lattice, error) {
	if sideLength <= 0 {
		return nil, &ParameterError{Name: "side_length", Value: sideLength, Reason: "must be positive"}
	}

	l := &Lattice{
		size:     sideLength,
		spins:    make([]int8, sideLength*sideLength),
		coupling: coupling,
		field:    field,
		beta:     DefaultInverseTemperature,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.src == nil {
		l.src = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	l.Randomize()
	return l, nil
}

func (l *Lattice) AddObserver(o Observer) { l.observers = append(l.observers, o) }

func (l *Lattice) SideLength() int             { return l.size }
func (l *Lattice) Sites() int                  { return len(l.spins) }
func (l *Lattice) Coupling() float64           { return l.coupling }
func (l *Lattice) Field() float64              { return l.field }
func (l *Lattice) InverseTemperature() float64 { return l.beta }
func (l *Lattice) Energy() float64             { return l.energy }
func (l *Lattice) Magnetization() int          { return l.magnetization }

func (l *Lattice) EnergyPerSite() float64 {
	return l.energy / float64(len(l.spins))
}

func (l *Lattice) MagnetizationPerSite() float64 {
	return float64(l.magnetization) / float64(len(l.spins))
}

// SetInverseTemperature takes effect from the next sweep.
func (l *Lattice) SetInverseTemperature(beta float64) {
	l.beta = beta
}

// SetField takes effect from the next sweep. The stored energy is shifted by
// -(h'-h)·M so it stays equal to ComputeEnergy under the new field.
func (l *Lattice) SetField(h float64) {
	l.energy -= (h - l.field) * float64(l.magnetization)
	l.field = h
}

// Randomize assigns every spin ±1 with equal probability and recomputes
// energy and magnetization.
func (l *Lattice) Randomize() {
	for idx := range l.spins {
		if l.src.Float64() < 0.5 {
			l.spins[idx] = 1
		} else {
			l.spins[idx] = -1
		}
	}
	l.recompute()
}

// Fill sets every spin to s, which must be +1 or -1.
func (l *Lattice) Fill(s int) error {
	if s != 1 && s != -1 {
		return &ParameterError{Name: "spin", Value: s, Reason: "must be +1 or -1"}
	}
	for idx := range l.spins {
		l.spins[idx] = int8(s)
	}
	l.recompute()
	return nil
}

// SetSpins replaces the configuration with grid, which must be L×L and ±1 valued.
func (l *Lattice) SetSpins(grid [][]int8) error {
	if len(grid) != l.size {
		return &ParameterError{Name: "rows", Value: len(grid), Reason: "must equal side length"}
	}
	for _, row := range grid {
		if len(row) != l.size {
			return &ParameterError{Name: "columns", Value: len(row), Reason: "must equal side length"}
		}
		for _, s := range row {
			if s != 1 && s != -1 {
				return &ParameterError{Name: "spin", Value: s, Reason: "must be +1 or -1"}
			}
		}
	}
	for i, row := range grid {
		copy(l.spins[i*l.size:(i+1)*l.size], row)
	}
	l.recompute()
	return nil
}

// Spin returns the spin at (i, j); indices wrap around the torus.
func (l *Lattice) Spin(i, j int) int {
	return int(l.spins[l.wrap(i)*l.size+l.wrap(j)])
}

// Spins returns a copy of the configuration, one row per slice.
func (l *Lattice) Spins() [][]int8 {
	grid := make([][]int8, l.size)
	for i := range grid {
		grid[i] = make([]int8, l.size)
		copy(grid[i], l.spins[i*l.size:(i+1)*l.size])
	}
	return grid
}

// Neighbors returns north, south, west and east of (i, j).
func (l *Lattice) Neighbors(i, j int) [4]Site {
	i, j = l.wrap(i), l.wrap(j)
	n := l.size
	return [4]Site{
		{(i - 1 + n) % n, j},
		{(i + 1) % n, j},
		{i, (j - 1 + n) % n},
		{i, (j + 1) % n},
	}
}

// DeltaE is the energy change that flipping (i, j) would cause.
func (l *Lattice) DeltaE(i, j int) float64 {
	i, j = l.wrap(i), l.wrap(j)
	return l.flipDelta(l.spins[i*l.size+j], l.neighborSum(i, j))
}

// AcceptanceProbability is min(1, exp(-dE·β)), clamped to [0, 1].
func (l *Lattice) AcceptanceProbability(dE float64) float64 {
	x := -dE * l.beta
	if math.IsNaN(x) {
		// 0·∞: a neutral move at zero temperature
		return 1
	}
	p := math.Exp(x)
	if p > 1 {
		return 1
	}
	return p
}

// ComputeEnergy recomputes the total energy from scratch in O(L²).
func (l *Lattice) ComputeEnergy() float64 {
	energy := 0.0
	for i := 0; i < l.size; i++ {
		for j := 0; j < l.size; j++ {
			s := float64(l.spins[i*l.size+j])
			energy -= 0.5*s*l.coupling*float64(l.neighborSum(i, j)) + s*l.field
		}
	}
	return energy
}

// Sweep attempts one Metropolis flip per site in row-major order and returns
// the number of accepted flips. Exactly one variate is drawn per site.
func (l *Lattice) Sweep() int {
	n := l.size
	accepted := 0

	for i := 0; i < n; i++ {
		row := i * n
		up := ((i - 1 + n) % n) * n
		down := ((i + 1) % n) * n

		for j := 0; j < n; j++ {
			left := (j - 1 + n) % n
			right := (j + 1) % n

			idx := row + j
			s := l.spins[idx]
			nb := int(l.spins[up+j]) + int(l.spins[down+j]) + int(l.spins[row+left]) + int(l.spins[row+right])

			dE := l.flipDelta(s, nb)
			p := l.AcceptanceProbability(dE)
			ok := l.src.Float64() < p

			if ok {
				l.energy += dE
				l.magnetization -= 2 * int(s)
				l.spins[idx] = -s
				accepted++
			}

			if len(l.observers) > 0 {
				t := Trial{Site: Site{i, j}, DeltaE: dE, Probability: p, Accepted: ok}
				for _, o := range l.observers {
					o.OnTrial(t)
				}
			}
		}
	}

	return accepted
}

func (l *Lattice) flipDelta(s int8, nb int) float64 {
	if l.size == 1 {
		// all four neighbours are the site itself, the bond term is constant
		nb = 0
	}
	return 2 * float64(s) * (l.coupling*float64(nb) + l.field)
}

func (l *Lattice) neighborSum(i, j int) int {
	n := l.size
	return int(l.spins[((i-1+n)%n)*n+j]) +
		int(l.spins[((i+1)%n)*n+j]) +
		int(l.spins[i*n+(j-1+n)%n]) +
		int(l.spins[i*n+(j+1)%n])
}

func (l *Lattice) recompute() {
	m := 0
	for _, s := range l.spins {
		m += int(s)
	}
	l.magnetization = m
	l.energy = l.ComputeEnergy()
}

func (l *Lattice) wrap(k int) int {
	k %= l.size
	if k < 0 {
		k += l.size
	}
	return k
}
