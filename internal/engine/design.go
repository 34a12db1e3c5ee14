package engine

import (
	"github.com/aatturi/soxstream/internal/filter"
)

// Filter design constants.
const (
	// dB of stopband attenuation bought per bit of precision.
	dbPerBit = 6.0206

	// Defaults applied to zero-valued quality fields, matching the
	// high-quality recipe.
	defaultPassbandEnd   = 0.913
	defaultStopbandBegin = 1.0

	// Cutoff placement inside the transition band per rolloff class.
	// Values closer to the stopband leave less droop at the passband
	// edge but spend more of the band on the filter skirt.
	cutoffFracSmall  = 0.70
	cutoffFracMedium = 0.50
	cutoffFracNone   = 0.90

	// Medium rolloff trades passband droop for a shorter kernel.
	mediumTapsNum = 3
	mediumTapsDen = 4

	// Guard band reserved when variable-rate operation is requested,
	// leaving headroom for the ratio to slew upward without aliasing.
	variableRateGuard = 0.85

	// Polyphase table shape bounds.
	minPhases = 16
	maxPhases = 4096

	// Branch counts below this interpolate between adjacent phases
	// under the Auto strategy; denser tables use nearest-phase lookup.
	autoInterpPhaseLimit = 512

	// Branch count cap under the high-CPU/low-memory strategy.
	highInterpPhases = 32

	bytesPerCoef = 8
)

// polyFilter is a polyphase fractional-delay filter bank. branches has
// phases+1 rows so phase interpolation can read one row past the last
// phase without wrapping; each row holds taps coefficients stored in
// window order (reversed prototype).
type polyFilter struct {
	phases   int
	taps     int
	interp   bool
	branches [][]float64
}

// designPolyFilter builds the filter bank for the given configuration.
// ioRatio is the creation-time input/output ratio; for downsampling the
// whole design is scaled so the stopband lands below the output Nyquist.
func designPolyFilter(q QualityRec, rt RuntimeRec, ioRatio float64) (*polyFilter, error) {
	attenuation := (q.Precision + 1) * dbPerBit

	passband := q.PassbandEnd
	if passband <= 0 {
		passband = defaultPassbandEnd
	}
	stopband := q.StopbandBegin
	if stopband <= passband {
		stopband = defaultStopbandBegin
	}

	cutoffFrac := cutoffFracSmall
	mediumRolloff := false
	switch q.Flags & RolloffMask {
	case RolloffMedium:
		cutoffFrac = cutoffFracMedium
		mediumRolloff = true
	case RolloffNone:
		cutoffFrac = cutoffFracNone
	}

	// Design in the input-sample domain: Nyquist is 0.5, and for
	// downsampling everything shrinks by the ratio.
	base := 0.5
	if ioRatio > 1 {
		base /= ioRatio
	}
	if q.Flags&VariableRate != 0 {
		base *= variableRateGuard
	}

	cutoff := base * (passband + cutoffFrac*(stopband-passband))
	transition := base * (stopband - passband)

	taps := filter.EstimateLength(attenuation, transition)
	if mediumRolloff {
		taps = taps * mediumTapsNum / mediumTapsDen
		if taps%2 == 0 {
			taps++
		}
	}

	phases, interp := tableShape(rt, taps)

	proto, err := filter.DesignLowPass(filter.Params{
		NumTaps:     taps * phases,
		CutoffFreq:  cutoff / float64(phases),
		Attenuation: attenuation,
		Gain:        float64(phases),
	})
	if err != nil {
		return nil, err
	}

	if q.PhaseResponse != filter.LinearPhase {
		proto = filter.FirToPhase(proto, q.PhaseResponse)
	}

	// Split into branches, reversing the prototype so each row can be
	// applied to a forward window of history with a plain dot product:
	// y = Σ_u win[u] · branch[φ][u], branch[φ][u] = proto[(taps-1-u)·L + φ].
	branches := make([][]float64, phases+1)
	for p := 0; p <= phases; p++ {
		row := make([]float64, taps)
		for u := 0; u < taps; u++ {
			m := (taps-1-u)*phases + p
			if m < len(proto) {
				row[u] = proto[m]
			}
		}
		branches[p] = row
	}

	return &polyFilter{
		phases:   phases,
		taps:     taps,
		interp:   interp,
		branches: branches,
	}, nil
}

// tableShape derives the branch count and interpolation mode from the
// runtime record's coefficient budget and strategy bits.
func tableShape(rt RuntimeRec, taps int) (phases int, interp bool) {
	coefKB := int(rt.CoefSizeKbytes)
	if coefKB <= 0 {
		coefKB = defaultCoefKbytes
	}

	budget := coefKB * 1024 / bytesPerCoef / taps
	phases = minPhases
	for phases*2 <= budget && phases < maxPhases {
		phases *= 2
	}

	switch rt.Flags & InterpMask {
	case InterpLow:
		// Dense table, nearest-phase lookup.
		return phases, false
	case InterpHigh:
		if phases > highInterpPhases {
			phases = highInterpPhases
		}
		return phases, true
	default:
		return phases, phases < autoInterpPhaseLimit
	}
}
