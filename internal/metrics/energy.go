package metrics

import "github.com/san-kum/ising/internal/sim"

// Energy is the mean energy per site.
type Energy struct {
	name    string
	sum     float64
	samples int
}

func NewEnergy() *Energy {
	return &Energy{name: "energy"}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(s sim.Sample) {
	if s.Sites == 0 {
		return
	}
	e.sum += s.Energy / float64(s.Sites)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.sum / float64(e.samples)
}

func (e *Energy) Reset() {
	e.sum = 0
	e.samples = 0
}

// SpecificHeat is β²·(⟨E²⟩−⟨E⟩²)/N using the β of the latest sample.
type SpecificHeat struct {
	name    string
	sum     float64
	sumSq   float64
	beta    float64
	sites   int
	samples int
}

func NewSpecificHeat() *SpecificHeat {
	return &SpecificHeat{name: "specific_heat"}
}

func (c *SpecificHeat) Name() string { return c.name }

func (c *SpecificHeat) Observe(s sim.Sample) {
	c.sum += s.Energy
	c.sumSq += s.Energy * s.Energy
	c.beta = s.Beta
	c.sites = s.Sites
	c.samples++
}

func (c *SpecificHeat) Value() float64 {
	if c.samples == 0 || c.sites == 0 {
		return 0
	}
	n := float64(c.samples)
	mean := c.sum / n
	variance := c.sumSq/n - mean*mean
	if variance < 0 {
		variance = 0
	}
	return c.beta * c.beta * variance / float64(c.sites)
}

func (c *SpecificHeat) Reset() {
	c.sum, c.sumSq, c.beta = 0, 0, 0
	c.sites, c.samples = 0, 0
}
