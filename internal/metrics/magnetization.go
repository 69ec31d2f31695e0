package metrics

import (
	"math"

	"github.com/san-kum/ising/internal/sim"
)

// Magnetization is the mean |M| per site.
type Magnetization struct {
	name    string
	sum     float64
	samples int
}

func NewMagnetization() *Magnetization {
	return &Magnetization{name: "magnetization"}
}

func (m *Magnetization) Name() string { return m.name }

func (m *Magnetization) Observe(s sim.Sample) {
	if s.Sites == 0 {
		return
	}
	m.sum += math.Abs(float64(s.Magnetization)) / float64(s.Sites)
	m.samples++
}

func (m *Magnetization) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *Magnetization) Reset() {
	m.sum = 0
	m.samples = 0
}

// moments accumulates ⟨|M|⟩, ⟨M²⟩ and ⟨M⁴⟩ over samples.
type moments struct {
	abs, sq, quad float64
	beta          float64
	sites         int
	samples       int
}

func (mm *moments) observe(s sim.Sample) {
	m := float64(s.Magnetization)
	mm.abs += math.Abs(m)
	mm.sq += m * m
	mm.quad += m * m * m * m
	mm.beta = s.Beta
	mm.sites = s.Sites
	mm.samples++
}

func (mm *moments) reset() { *mm = moments{} }

// Susceptibility is β·(⟨M²⟩−⟨|M|⟩²)/N.
type Susceptibility struct {
	name string
	moments
}

func NewSusceptibility() *Susceptibility {
	return &Susceptibility{name: "susceptibility"}
}

func (x *Susceptibility) Name() string         { return x.name }
func (x *Susceptibility) Observe(s sim.Sample) { x.observe(s) }
func (x *Susceptibility) Reset()               { x.reset() }

func (x *Susceptibility) Value() float64 {
	if x.samples == 0 || x.sites == 0 {
		return 0
	}
	n := float64(x.samples)
	mean := x.abs / n
	variance := x.sq/n - mean*mean
	if variance < 0 {
		variance = 0
	}
	return x.beta * variance / float64(x.sites)
}

// Binder is the fourth-order cumulant 1 − ⟨M⁴⟩/(3⟨M²⟩²).
type Binder struct {
	name string
	moments
}

func NewBinder() *Binder {
	return &Binder{name: "binder"}
}

func (b *Binder) Name() string         { return b.name }
func (b *Binder) Observe(s sim.Sample) { b.observe(s) }
func (b *Binder) Reset()               { b.reset() }

func (b *Binder) Value() float64 {
	if b.samples == 0 {
		return 0
	}
	n := float64(b.samples)
	m2 := b.sq / n
	if m2 == 0 {
		return 0
	}
	return 1 - (b.quad/n)/(3*m2*m2)
}
