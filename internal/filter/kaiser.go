// Package filter designs the FIR prototypes used by the resampling
// engine: Kaiser windowed-sinc lowpass kernels and the cepstral phase
// transform that turns them into minimum or intermediate phase filters.
package filter

import (
	"fmt"
	"math"

	"github.com/tphakala/simd/f64"

	"github.com/aatturi/soxstream/internal/mathutil"
)

const (
	minFilterTaps = 3
	maxFilterTaps = 1 << 20

	sincZeroThreshold = 1e-10
)

// KaiserWindow generates a Kaiser window of the given length and β.
// The window is symmetric: w[i] = w[length-1-i]. Higher β buys more
// sidelobe attenuation at the price of a wider main lobe.
func KaiserWindow(length int, beta float64) []float64 {
	if length < 1 {
		return []float64{}
	}

	window := make([]float64, length)
	if length == 1 {
		window[0] = 1.0
		return window
	}

	// w[n] = I₀(β √(1 - ((n-α)/α)²)) / I₀(β), α = (N-1)/2
	alpha := float64(length-1) / 2
	i0Beta := mathutil.BesselI0(beta)

	for n := range length {
		x := (float64(n) - alpha) / alpha
		window[n] = mathutil.BesselI0(beta*math.Sqrt(1.0-x*x)) / i0Beta
	}

	return window
}

// Params holds lowpass design parameters.
type Params struct {
	// NumTaps is the filter length; odd lengths give a symmetric
	// linear-phase kernel with an integral group delay.
	NumTaps int

	// CutoffFreq is the normalized cutoff (0 to 0.5, Nyquist = 0.5).
	CutoffFreq float64

	// Attenuation is the stopband attenuation target in dB.
	Attenuation float64

	// Gain is the passband gain. Polyphase prototypes use the phase
	// count here so each branch sums to unity.
	Gain float64
}

// Validate checks the design parameters.
func (p *Params) Validate() error {
	if p.NumTaps < minFilterTaps {
		return fmt.Errorf("filter too short: %d taps (minimum %d)", p.NumTaps, minFilterTaps)
	}
	if p.NumTaps > maxFilterTaps {
		return fmt.Errorf("filter too long: %d taps (maximum %d)", p.NumTaps, maxFilterTaps)
	}
	if p.CutoffFreq <= 0 || p.CutoffFreq >= 0.5 {
		return fmt.Errorf("invalid cutoff frequency: %f (must be in (0, 0.5))", p.CutoffFreq)
	}
	if p.Attenuation < 0 {
		return fmt.Errorf("invalid attenuation: %f dB (must be positive)", p.Attenuation)
	}
	if p.Gain <= 0 {
		return fmt.Errorf("invalid gain: %f (must be positive)", p.Gain)
	}
	return nil
}

// DesignLowPass designs a windowed-sinc lowpass FIR kernel: an ideal
// sinc truncated to NumTaps and shaped by a Kaiser window whose β is
// derived from the attenuation target. The result is normalized to the
// requested DC gain and has linear phase.
func DesignLowPass(params Params) ([]float64, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	beta := mathutil.KaiserBeta(params.Attenuation)
	window := KaiserWindow(params.NumTaps, beta)

	kernel := make([]float64, params.NumTaps)
	center := float64(params.NumTaps-1) / 2

	for n := range params.NumTaps {
		x := float64(n) - center

		// sinc: sin(2πfc·x) / (πx), with the x→0 limit 2fc
		var sinc float64
		if math.Abs(x) < sincZeroThreshold {
			sinc = 2 * params.CutoffFreq
		} else {
			sinc = math.Sin(2*math.Pi*params.CutoffFreq*x) / (math.Pi * x)
		}

		kernel[n] = sinc * window[n]
	}

	sum := f64.Sum(kernel)
	if math.Abs(sum) > sincZeroThreshold {
		f64.Scale(kernel, kernel, params.Gain/sum)
	}

	return kernel, nil
}

// EstimateLength estimates the tap count needed for the attenuation and
// transition bandwidth, delegating to Kaiser's formula.
func EstimateLength(attenuation, transitionBW float64) int {
	return mathutil.EstimateFilterLength(attenuation, transitionBW)
}

// Response holds a sampled frequency response.
type Response struct {
	Frequencies []float64 // normalized, 0 to 0.5
	Magnitude   []float64 // linear scale
	Phase       []float64 // radians
}

// FrequencyResponse evaluates H(e^jω) of a FIR kernel at numPoints
// frequencies from DC to Nyquist via direct DTFT evaluation.
func FrequencyResponse(kernel []float64, numPoints int) Response {
	if numPoints <= 0 {
		numPoints = 512
	}

	r := Response{
		Frequencies: make([]float64, numPoints),
		Magnitude:   make([]float64, numPoints),
		Phase:       make([]float64, numPoints),
	}

	for k := range numPoints {
		freq := float64(k) / float64(2*numPoints)
		r.Frequencies[k] = freq

		var re, im float64
		omega := 2 * math.Pi * freq
		for n, h := range kernel {
			angle := omega * float64(n)
			re += h * math.Cos(angle)
			im -= h * math.Sin(angle)
		}

		r.Magnitude[k] = math.Hypot(re, im)
		r.Phase[k] = math.Atan2(im, re)
	}

	return r
}

// MagnitudeDB converts linear magnitude to decibels, clamping near-zero
// magnitudes to avoid log(0).
func MagnitudeDB(magnitude float64) float64 {
	const minMagnitude = 1e-10
	if magnitude < minMagnitude {
		magnitude = minMagnitude
	}
	return 20 * math.Log10(magnitude)
}
