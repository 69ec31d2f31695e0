// Package analysis provides time-series statistics for Monte Carlo output.
//
// Successive sweeps of a Markov chain are correlated, so naive error bars
// underestimate the uncertainty. The package estimates that correlation:
//
//   - [Autocorrelation]: normalised autocorrelation function via FFT
//   - [IntegratedTime]: integrated autocorrelation time with automatic windowing
//   - [StdErr]: standard error of the mean corrected for correlation
//   - [BlockAverage]: mean and error from non-overlapping blocks
//
// # Example
//
//	tau := analysis.IntegratedTime(result.Magnetization)
//	err := analysis.StdErr(result.Magnetization)
package analysis
