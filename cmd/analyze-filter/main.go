// Command analyze-filter designs a lowpass prototype and prints its
// frequency response as CSV, for inspecting filter quality trade-offs.
//
// Usage:
//
//	analyze-filter -taps 101 -cutoff 0.2 -atten 120 > response.csv
//	analyze-filter -taps 101 -cutoff 0.2 -atten 120 -phase 0   # minimum phase
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/aatturi/soxstream/internal/filter"
)

func main() {
	taps := flag.Int("taps", 101, "Filter length in taps")
	cutoff := flag.Float64("cutoff", 0.2, "Normalized cutoff frequency (Nyquist = 0.5)")
	atten := flag.Float64("atten", 120, "Stopband attenuation in dB")
	phase := flag.Float64("phase", filter.LinearPhase, "Phase response: 0 minimum, 50 linear, 100 maximum")
	points := flag.Int("points", 512, "Response sample points from DC to Nyquist")
	flag.Parse()

	kernel, err := filter.DesignLowPass(filter.Params{
		NumTaps:     *taps,
		CutoffFreq:  *cutoff,
		Attenuation: *atten,
		Gain:        1,
	})
	if err != nil {
		log.Fatal(err)
	}

	if *phase != filter.LinearPhase {
		kernel = filter.FirToPhase(kernel, *phase)
	}

	resp := filter.FrequencyResponse(kernel, *points)

	fmt.Fprintln(os.Stdout, "frequency,magnitude_db,phase_rad")
	for i := range resp.Frequencies {
		fmt.Fprintf(os.Stdout, "%.6f,%.2f,%.4f\n",
			resp.Frequencies[i], filter.MagnitudeDB(resp.Magnitude[i]), resp.Phase[i])
	}
}
