package filter

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Cepstral phase transform constants.
const (
	// Oversampling of the FFT grid relative to the kernel length keeps
	// the time-aliasing of the reconstructed kernel below the design
	// attenuation.
	phaseFFTOversample = 8

	// Spectral floor relative to the magnitude peak, so the log
	// magnitude stays finite in the stopband.
	phaseSpectralFloor = 1e-10

	// LinearPhase is the phase-response value that leaves a symmetric
	// kernel untouched.
	LinearPhase = 50.0
)

// FirToPhase converts a linear-phase FIR kernel to the requested phase
// response in the 0..100 range: 0 is minimum phase, 50 linear, 100
// maximum phase. Intermediate values blend the group delay via cepstrum
// scaling, the same homomorphic construction soxr uses for its
// phase-response knob.
//
// The kernel's magnitude response and DC gain are preserved; only the
// phase, and with it the latency, changes.
func FirToPhase(kernel []float64, phase float64) []float64 {
	if len(kernel) == 0 || phase == LinearPhase {
		out := make([]float64, len(kernel))
		copy(out, kernel)
		return out
	}

	// The maximum-phase half mirrors the minimum-phase construction.
	if phase > LinearPhase {
		out := FirToPhase(kernel, 2*LinearPhase-phase)
		reverse(out)
		return out
	}

	// 0 → full minimum phase, approaching 50 → keep the linear phase.
	lambda := 1.0 - phase/LinearPhase

	n := 1
	for n < phaseFFTOversample*len(kernel) {
		n <<= 1
	}
	fft := fourier.NewCmplxFFT(n)

	// Magnitude spectrum of the zero-padded kernel.
	buf := make([]complex128, n)
	for i, v := range kernel {
		buf[i] = complex(v, 0)
	}
	spec := fft.Coefficients(nil, buf)

	peak := 0.0
	for _, c := range spec {
		if m := cmplx.Abs(c); m > peak {
			peak = m
		}
	}
	floor := peak * phaseSpectralFloor

	logMag := make([]complex128, n)
	for i, c := range spec {
		m := cmplx.Abs(c)
		if m < floor {
			m = floor
		}
		logMag[i] = complex(math.Log(m), 0)
	}

	// Real cepstrum of the magnitude response.
	ceps := fft.Sequence(nil, logMag)
	inv := 1.0 / float64(n)
	for i := range ceps {
		ceps[i] = complex(real(ceps[i])*inv, 0)
	}

	// Cepstrum folding, weighted by lambda: at lambda=1 the causal part
	// is doubled and the anti-causal part discarded (minimum phase); at
	// lambda=0 the cepstrum is untouched (zero phase).
	for i := 1; i < n/2; i++ {
		ceps[i] *= complex(1+lambda, 0)
		ceps[n-i] *= complex(1-lambda, 0)
	}

	// Back to a spectrum and a time-domain kernel.
	logSpec := fft.Coefficients(nil, ceps)
	for i := range logSpec {
		logSpec[i] = cmplx.Exp(logSpec[i])
	}
	rec := fft.Sequence(nil, logSpec)

	// The reconstruction is anchored at time zero; restore the fraction
	// of the original group delay that the phase setting retains.
	delay := int(math.Round(float64(len(kernel)-1) / 2 * (1 - lambda)))

	out := make([]float64, len(kernel))
	for i := range out {
		src := i - delay
		if src < 0 {
			src += n
		}
		out[i] = real(rec[src]) * inv
	}

	// Preserve the DC gain exactly.
	var oldSum, newSum float64
	for _, v := range kernel {
		oldSum += v
	}
	for _, v := range out {
		newSum += v
	}
	if newSum != 0 {
		s := oldSum / newSum
		for i := range out {
			out[i] *= s
		}
	}

	return out
}

func reverse(s []float64) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
