package soxstream

import (
	"github.com/aatturi/soxstream/internal/engine"
)

// QualityRecipe selects a conversion precision preset.
type QualityRecipe int

// Quality recipes, in increasing precision. Quick bypasses filter
// design entirely and converts with cubic interpolation.
const (
	Quick QualityRecipe = iota
	LowQuality
	MediumQuality
	Bits16
	Bits20
	Bits24
	Bits28
	Bits32

	HighQuality     = Bits20
	VeryHighQuality = Bits28
)

// precisionBits maps each recipe to its conversion precision.
var precisionBits = [...]float64{
	Quick:         0,
	LowQuality:    12,
	MediumQuality: 16,
	Bits16:        16,
	Bits20:        20,
	Bits24:        24,
	Bits28:        28,
	Bits32:        32,
}

// Rolloff selects how much passband rolloff the filter design may
// spend in exchange for a shorter filter.
type Rolloff uint32

const (
	// RolloffSmall allows at most 0.01 dB of passband rolloff.
	RolloffSmall Rolloff = 0

	// RolloffMedium allows at most 0.35 dB of passband rolloff.
	RolloffMedium Rolloff = 1

	// RolloffNone preserves the full passband.
	RolloffNone Rolloff = 2

	rolloffMask = 3
)

// Quality option flags, combinable with bitwise or.
const (
	// HighPrecisionClock accumulates the stream position with error
	// compensation, for very long streams at irrational ratios.
	HighPrecisionClock uint32 = 8

	// DoublePrecisionMath forces double precision internal mathematics.
	DoublePrecisionMath uint32 = 16

	// VariableRateConversion reserves filter headroom so the io ratio
	// can be changed mid-stream without aliasing.
	VariableRateConversion uint32 = 32
)

// QualitySpec configures the conversion filter. The zero value is not
// meaningful; start from DefaultQuality or NewQualitySpec and refine
// with the With methods.
type QualitySpec struct {
	// Precision is the conversion precision in bits. Values at or
	// below zero select cubic interpolation.
	Precision float64

	// PhaseResponse positions the filter phase: 0 is minimum phase, 50
	// linear phase, 100 maximum phase.
	PhaseResponse float64

	// PassbandEnd is the edge of the band preserved at 0 dB, as a
	// fraction of the lower Nyquist frequency.
	PassbandEnd float64

	// StopbandBegin is the point where aliasing and imaging are fully
	// rejected, as a fraction of the lower Nyquist frequency.
	StopbandBegin float64

	// Flags carries the rolloff class in its low two bits and the
	// quality option bits above them.
	Flags uint32
}

// DefaultQuality returns the high quality recipe: 20-bit precision,
// linear phase, small rolloff.
func DefaultQuality() QualitySpec {
	return NewQualitySpec(HighQuality, 0)
}

// NewQualitySpec builds a QualitySpec from a recipe and option flags.
// Out-of-range recipes are clamped to the nearest preset.
func NewQualitySpec(recipe QualityRecipe, flags uint32) QualitySpec {
	if recipe < Quick {
		recipe = Quick
	}
	if recipe > Bits32 {
		recipe = Bits32
	}
	return QualitySpec{
		Precision:     precisionBits[recipe],
		PhaseResponse: 50,
		PassbandEnd:   0.913,
		StopbandBegin: 1.0,
		Flags:         flags,
	}
}

// WithPrecision returns a copy with the precision replaced.
func (q QualitySpec) WithPrecision(bits float64) QualitySpec {
	q.Precision = bits
	return q
}

// WithPhaseResponse returns a copy with the phase response replaced.
func (q QualitySpec) WithPhaseResponse(phase float64) QualitySpec {
	q.PhaseResponse = phase
	return q
}

// WithPassbandEnd returns a copy with the passband edge replaced.
func (q QualitySpec) WithPassbandEnd(end float64) QualitySpec {
	q.PassbandEnd = end
	return q
}

// WithStopbandBegin returns a copy with the stopband edge replaced.
func (q QualitySpec) WithStopbandBegin(begin float64) QualitySpec {
	q.StopbandBegin = begin
	return q
}

// WithRolloff returns a copy with the rolloff class replaced.
func (q QualitySpec) WithRolloff(r Rolloff) QualitySpec {
	q.Flags = (q.Flags &^ rolloffMask) | uint32(r&rolloffMask)
	return q
}

// WithFlags returns a copy with the given option flags set.
func (q QualitySpec) WithFlags(flags uint32) QualitySpec {
	q.Flags |= flags
	return q
}

// raw translates the spec to the engine's native record. The
// translation is total: every field carries over unchanged, so no
// QualitySpec value can fail to cross the boundary.
func (q QualitySpec) raw() engine.QualityRec {
	return engine.QualityRec{
		Precision:     q.Precision,
		PhaseResponse: q.PhaseResponse,
		PassbandEnd:   q.PassbandEnd,
		StopbandBegin: q.StopbandBegin,
		Flags:         q.Flags,
	}
}
