package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// window is the Sokal cut-off factor: the sum stops at the first t ≥ window·τ.
const window = 6.0

func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range data {
		sum += v
	}
	return sum / float64(len(data))
}

// Variance is the population variance.
func Variance(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	mean := Mean(data)
	sum := 0.0
	for _, v := range data {
		d := v - mean
		sum += d * d
	}
	return sum / float64(len(data))
}

// Autocorrelation returns ρ(t) for t in [0, len(data)), normalised so ρ(0) = 1.
// The series is zero-padded to avoid circular wrap-around.
func Autocorrelation(data []float64) []float64 {
	n := len(data)
	if n == 0 {
		return nil
	}

	size := 1
	for size < 2*n {
		size *= 2
	}

	mean := Mean(data)
	padded := make([]float64, size)
	for i, v := range data {
		padded[i] = v - mean
	}

	spectrum := fft.FFTReal(padded)
	for i, c := range spectrum {
		spectrum[i] = complex(real(c*cmplx.Conj(c)), 0)
	}
	raw := fft.IFFT(spectrum)

	acf := make([]float64, n)
	c0 := real(raw[0])
	if c0 <= 0 {
		acf[0] = 1
		return acf
	}
	for t := 0; t < n; t++ {
		acf[t] = real(raw[t]) / c0
	}
	return acf
}

// IntegratedTime is τ_int = ½ + Σ ρ(t), summed up to the first t ≥ 6τ_int.
func IntegratedTime(data []float64) float64 {
	acf := Autocorrelation(data)
	tau := 0.5
	for t := 1; t < len(acf); t++ {
		tau += acf[t]
		if float64(t) >= window*tau {
			break
		}
	}
	if tau < 0.5 {
		return 0.5
	}
	return tau
}

// StdErr is the standard error of the mean, inflated by 2τ_int.
func StdErr(data []float64) float64 {
	n := len(data)
	if n < 2 {
		return 0
	}
	return math.Sqrt(Variance(data) * 2 * IntegratedTime(data) / float64(n))
}

// BlockAverage splits data into blocks of equal length (the remainder is
// dropped) and returns the mean and the standard error of the block means.
func BlockAverage(data []float64, blocks int) (mean, stderr float64) {
	if blocks < 2 || len(data) < blocks {
		return Mean(data), 0
	}

	size := len(data) / blocks
	means := make([]float64, blocks)
	for b := 0; b < blocks; b++ {
		means[b] = Mean(data[b*size : (b+1)*size])
	}

	mean = Mean(means)
	stderr = math.Sqrt(Variance(means) / float64(blocks-1))
	return mean, stderr
}
