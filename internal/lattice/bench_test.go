package lattice

import (
	"math/rand"
	"testing"
)

func benchmarkSweep(b *testing.B, size int, beta float64) {
	l, err := New(1.0, size, 0.0, WithSource(rand.New(rand.NewSource(1))), WithInverseTemperature(beta))
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		l.Sweep()
	}
}

func BenchmarkSweep32Hot(b *testing.B)      { benchmarkSweep(b, 32, 0.1) }
func BenchmarkSweep32Critical(b *testing.B) { benchmarkSweep(b, 32, 0.4407) }
func BenchmarkSweep128Cold(b *testing.B)    { benchmarkSweep(b, 128, 1.0) }

func BenchmarkComputeEnergy128(b *testing.B) {
	l, _ := New(1.0, 128, 0.0, WithSource(rand.New(rand.NewSource(1))))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = l.ComputeEnergy()
	}
}
