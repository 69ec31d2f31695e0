package lattice_test

import (
	"math"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/ising/internal/lattice"
)

func spinSum(l *lattice.Lattice) int {
	sum := 0
	for _, row := range l.Spins() {
		for _, s := range row {
			sum += int(s)
		}
	}
	return sum
}

func expectConsistent(l *lattice.Lattice) {
	for _, row := range l.Spins() {
		for _, s := range row {
			ExpectWithOffset(1, s).To(Or(Equal(int8(1)), Equal(int8(-1))))
		}
	}
	ExpectWithOffset(1, l.Magnetization()).To(Equal(spinSum(l)))
	want := l.ComputeEnergy()
	ExpectWithOffset(1, l.Energy()).To(BeNumerically("~", want, 1e-9*math.Max(1, math.Abs(want))))
}

var _ = Describe("Lattice", func() {
	DescribeTable("keeps energy and magnetization consistent with the spins",
		func(size int, coupling, field, beta float64, seed int64) {
			l, err := lattice.New(coupling, size, field,
				lattice.WithSource(rand.New(rand.NewSource(seed))),
				lattice.WithInverseTemperature(beta))
			Expect(err).NotTo(HaveOccurred())
			expectConsistent(l)

			for i := 0; i < 40; i++ {
				l.Sweep()
				expectConsistent(l)
			}
		},
		Entry("critical ferromagnet", 24, 1.0, 0.0, 0.4407, int64(1)),
		Entry("ordered with field", 16, 1.0, 0.4, 1.0, int64(2)),
		Entry("antiferromagnet", 10, -1.0, 0.0, 0.7, int64(3)),
		Entry("infinite temperature", 9, 1.0, 0.9, 0.0, int64(4)),
		Entry("negative temperature", 8, 1.0, 0.1, -0.3, int64(5)),
		Entry("weak coupling", 13, 0.1, -0.2, 2.0, int64(6)),
	)

	It("rejects non-positive side lengths", func() {
		for _, size := range []int{0, -4} {
			l, err := lattice.New(1.0, size, 0.0)
			Expect(l).To(BeNil())
			Expect(err).To(MatchError(lattice.ErrInvalidParameter))
		}
	})

	It("wraps neighbours around both edges", func() {
		l, err := lattice.New(1.0, 6, 0.0)
		Expect(err).NotTo(HaveOccurred())
		Expect(l.Neighbors(0, 0)).To(ConsistOf(
			lattice.Site{I: 5, J: 0},
			lattice.Site{I: 1, J: 0},
			lattice.Site{I: 0, J: 5},
			lattice.Site{I: 0, J: 1},
		))
	})

	Context("with a field change and no intervening sweep", func() {
		It("still matches a full recomputation under the new field", func() {
			l, err := lattice.New(1.0, 12, 0.0, lattice.WithSource(rand.New(rand.NewSource(7))))
			Expect(err).NotTo(HaveOccurred())

			for _, h := range []float64{0.7, -0.2, 1.5, 0} {
				l.SetField(h)
				Expect(l.Field()).To(Equal(h))
				expectConsistent(l)
			}
		})
	})

	Context("near zero temperature", func() {
		It("never accepts an uphill move", func() {
			l, err := lattice.New(1.0, 14, 0.0,
				lattice.WithSource(rand.New(rand.NewSource(9))),
				lattice.WithInverseTemperature(1e12))
			Expect(err).NotTo(HaveOccurred())

			prev := l.Energy()
			for i := 0; i < 60; i++ {
				l.Sweep()
				Expect(l.Energy()).To(BeNumerically("<=", prev+1e-9))
				prev = l.Energy()
			}
		})
	})

	Context("at infinite temperature", func() {
		It("flips every site once per sweep", func() {
			l, err := lattice.New(1.0, 7, 0.3,
				lattice.WithSource(rand.New(rand.NewSource(10))),
				lattice.WithInverseTemperature(0))
			Expect(err).NotTo(HaveOccurred())

			m := l.Magnetization()
			Expect(l.Sweep()).To(Equal(49))
			Expect(l.Magnetization()).To(Equal(-m))
			expectConsistent(l)
		})
	})
})
