// Package testutil provides shared helpers for signal-level assertions
// in tests.
package testutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Sine generates n samples of a sine at freq Hz sampled at rate Hz with
// the given amplitude.
func Sine(n int, freq, rate, amplitude float64) []float64 {
	out := make([]float64, n)
	w := 2 * math.Pi * freq / rate
	for i := range out {
		out[i] = amplitude * math.Sin(w*float64(i))
	}
	return out
}

// AssertNoNaNOrInf fails if any sample is NaN or infinite.
func AssertNoNaNOrInf(t *testing.T, samples []float64, msgAndArgs ...any) {
	t.Helper()
	for i, v := range samples {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			assert.Fail(t, "non-finite sample", "index %d: %v %v", i, v, msgAndArgs)
			return
		}
	}
}

// AssertAllInRange fails if any sample falls outside [lo, hi].
func AssertAllInRange(t *testing.T, samples []float64, lo, hi float64, msgAndArgs ...any) {
	t.Helper()
	for i, v := range samples {
		if v < lo || v > hi {
			assert.Fail(t, "sample out of range", "index %d: %v not in [%v, %v] %v", i, v, lo, hi, msgAndArgs)
			return
		}
	}
}

// AssertSymmetric fails unless the slice equals its own reversal to
// within tol, as a linear-phase FIR kernel must.
func AssertSymmetric(t *testing.T, kernel []float64, tol float64) {
	t.Helper()
	for i, j := 0, len(kernel)-1; i < j; i, j = i+1, j-1 {
		assert.InDelta(t, kernel[i], kernel[j], tol, "kernel[%d] vs kernel[%d]", i, j)
	}
}

// AssertDCGain fails unless the kernel's coefficients sum to the
// expected DC gain within tol.
func AssertDCGain(t *testing.T, kernel []float64, want, tol float64) {
	t.Helper()
	var sum float64
	for _, v := range kernel {
		sum += v
	}
	assert.InDelta(t, want, sum, tol, "DC gain")
}

// Peak returns the largest absolute sample value.
func Peak(samples []float64) float64 {
	var peak float64
	for _, v := range samples {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	return peak
}
