// Package lattice implements a 2D Ising model on a periodic square lattice.
//
// The package provides the Monte Carlo engine and nothing else:
//
//   - [Lattice]: L×L spin field with coupling, external field and inverse temperature
//   - [Lattice.Sweep]: one sequential Metropolis pass over every site
//   - [Lattice.ComputeEnergy]: full O(L²) energy recomputation
//   - [Source]: injectable uniform random source
//
// # Bookkeeping
//
// Energy and magnetization are kept up to date per accepted flip, so a sweep
// costs O(L²) and reading [Lattice.Energy] is O(1):
//
//	l, _ := lattice.New(1.0, 32, 0.0, lattice.WithSource(rand.New(rand.NewSource(1))))
//	l.SetInverseTemperature(0.44)
//	for i := 0; i < 1000; i++ {
//	    l.Sweep()
//	}
//	m := l.MagnetizationPerSite()
//
// # Thread Safety
//
// Lattice instances are NOT thread-safe. Sweep, Randomize and the setters
// must be serialized by the caller.
package lattice
