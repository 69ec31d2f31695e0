package metrics

import "github.com/san-kum/ising/internal/sim"

// Acceptance is the fraction of accepted flips over all sampled sweeps.
type Acceptance struct {
	name     string
	accepted int
	trials   int
}

func NewAcceptance() *Acceptance {
	return &Acceptance{name: "acceptance"}
}

func (a *Acceptance) Name() string { return a.name }

func (a *Acceptance) Observe(s sim.Sample) {
	a.accepted += s.Accepted
	a.trials += s.Sites
}

func (a *Acceptance) Value() float64 {
	if a.trials == 0 {
		return 0
	}
	return float64(a.accepted) / float64(a.trials)
}

func (a *Acceptance) Reset() {
	a.accepted = 0
	a.trials = 0
}

// Defaults returns a fresh instance of every observable.
func Defaults() []sim.Metric {
	return []sim.Metric{
		NewEnergy(),
		NewMagnetization(),
		NewSpecificHeat(),
		NewSusceptibility(),
		NewBinder(),
		NewAcceptance(),
	}
}
