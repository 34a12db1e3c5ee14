package soxstream

import (
	"github.com/aatturi/soxstream/internal/engine"
)

// Interpolation selects how polyphase coefficients are derived for
// fractional positions between table entries.
type Interpolation uint32

const (
	// InterpolationAuto picks a strategy from the coefficient budget.
	InterpolationAuto Interpolation = 0

	// InterpolationLow spends memory on a denser table to avoid
	// per-sample interpolation.
	InterpolationLow Interpolation = 2

	// InterpolationHigh keeps the table small and interpolates between
	// entries on every sample.
	InterpolationHigh Interpolation = 3
)

// RuntimeSpec configures resource usage: buffer sizing, coefficient
// table budget, and worker parallelism. Zero-valued sizing fields fall
// back to the engine defaults.
type RuntimeSpec struct {
	// Log2MinDFTSize and Log2LargeDFTSize bound the streaming block
	// size as powers of two.
	Log2MinDFTSize   uint32
	Log2LargeDFTSize uint32

	// CoefSizeKbytes budgets the polyphase coefficient table.
	CoefSizeKbytes uint32

	// NumThreads is the number of worker goroutines used to render
	// channels in parallel; 0 means one per CPU.
	NumThreads uint32

	// Interpolation selects the coefficient interpolation strategy.
	Interpolation Interpolation
}

// DefaultRuntime returns the default runtime configuration:
// single-threaded with a 400 KiB coefficient budget.
func DefaultRuntime() RuntimeSpec {
	return RuntimeSpec{
		Log2MinDFTSize:   10,
		Log2LargeDFTSize: 17,
		CoefSizeKbytes:   400,
		NumThreads:       1,
		Interpolation:    InterpolationAuto,
	}
}

// NewRuntimeSpec returns the default runtime configuration with the
// given worker count.
func NewRuntimeSpec(numThreads uint32) RuntimeSpec {
	r := DefaultRuntime()
	r.NumThreads = numThreads
	return r
}

// WithLog2MinDFTSize returns a copy with the minimum block exponent
// replaced.
func (r RuntimeSpec) WithLog2MinDFTSize(v uint32) RuntimeSpec {
	r.Log2MinDFTSize = v
	return r
}

// WithLog2LargeDFTSize returns a copy with the maximum block exponent
// replaced.
func (r RuntimeSpec) WithLog2LargeDFTSize(v uint32) RuntimeSpec {
	r.Log2LargeDFTSize = v
	return r
}

// WithCoefSizeKbytes returns a copy with the coefficient budget
// replaced.
func (r RuntimeSpec) WithCoefSizeKbytes(v uint32) RuntimeSpec {
	r.CoefSizeKbytes = v
	return r
}

// WithNumThreads returns a copy with the worker count replaced.
func (r RuntimeSpec) WithNumThreads(v uint32) RuntimeSpec {
	r.NumThreads = v
	return r
}

// WithInterpolation returns a copy with the interpolation strategy
// replaced.
func (r RuntimeSpec) WithInterpolation(i Interpolation) RuntimeSpec {
	r.Interpolation = i
	return r
}

// raw translates the spec to the engine's native record; the
// translation is total.
func (r RuntimeSpec) raw() engine.RuntimeRec {
	return engine.RuntimeRec{
		Log2MinDFTSize:   r.Log2MinDFTSize,
		Log2LargeDFTSize: r.Log2LargeDFTSize,
		CoefSizeKbytes:   r.CoefSizeKbytes,
		NumThreads:       r.NumThreads,
		Flags:            uint32(r.Interpolation),
	}
}
