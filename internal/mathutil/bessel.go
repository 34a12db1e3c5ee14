// Package mathutil provides the numeric helpers behind filter design:
// the modified Bessel function used by the Kaiser window and the
// empirical Kaiser formulas for window shape and filter length.
package mathutil

import (
	"math"
)

// BesselI0 computes the modified Bessel function of the first kind,
// order zero: I₀(x).
//
// Chebyshev polynomial approximations are used for numerical stability:
// a direct series expansion for |x| ≤ 3.75 and an exponentially scaled
// asymptotic expansion above it. Accuracy is about seven significant
// digits, which is ample for window design.
func BesselI0(x float64) float64 {
	// I₀(x) = I₀(-x)
	ax := math.Abs(x)

	if ax < besselSmallArgThreshold {
		// I₀(x) ≈ 1 + (x/3.75)² · P(t)
		t := x / besselSmallArgThreshold
		t *= t

		return 1.0 + t*(besselI0Coeff1+t*(besselI0Coeff2+t*(besselI0Coeff3+
			t*(besselI0Coeff4+t*(besselI0Coeff5+t*besselI0Coeff6)))))
	}

	// I₀(x) ≈ (eˣ / √x) · P(3.75/x)
	t := besselSmallArgThreshold / ax

	result := besselI0AsympCoeff0 + t*(besselI0AsympCoeff1+t*(besselI0AsympCoeff2+
		t*(besselI0AsympCoeff3+t*(besselI0AsympCoeff4+t*(besselI0AsympCoeff5+
			t*(besselI0AsympCoeff6+t*(besselI0AsympCoeff7+t*besselI0AsympCoeff8)))))))

	return math.Exp(ax) * result / math.Sqrt(ax)
}

// KaiserBeta computes the Kaiser window β parameter from the desired
// stopband attenuation in decibels, using the Kaiser & Schafer
// formulas:
//
//   - att > 50 dB:      β = 0.1102 (att - 8.7)
//   - 21 dB < att ≤ 50: β = 0.5842 (att - 21)^0.4 + 0.07886 (att - 21)
//   - att ≤ 21 dB:      β = 0
func KaiserBeta(attenuation float64) float64 {
	if attenuation > kaiserAttHigh {
		return kaiserBetaHighCoeff1 * (attenuation - kaiserBetaHighOffset)
	}
	if attenuation >= kaiserAttMedium {
		delta := attenuation - kaiserAttMedium
		return kaiserBetaMediumCoeff1*math.Pow(delta, kaiserBetaMediumPower) + kaiserBetaMediumCoeff2*delta
	}
	return 0.0
}

// EstimateFilterLength estimates the FIR length needed to reach the
// given stopband attenuation across a transition band of width
// transitionBW (as a fraction of the sample rate), per Kaiser's
// formula. The result is rounded up to an odd tap count and clamped to
// sane bounds.
func EstimateFilterLength(attenuation, transitionBW float64) int {
	if transitionBW <= 0 {
		transitionBW = defaultTransitionBW
	}

	numTaps := (attenuation - kaiserFilterLengthOffset) /
		(kaiserFilterLengthMultiplier * kaiserFilterLengthPiFactor * math.Pi * transitionBW)

	taps := int(math.Ceil(numTaps))
	if taps%2 == 0 {
		taps++
	}

	if taps < minFilterLength {
		taps = minFilterLength
	}
	if taps > maxFilterLength {
		taps = maxFilterLength
	}

	return taps
}
