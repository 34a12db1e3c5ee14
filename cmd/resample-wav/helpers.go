package main

import (
	"fmt"
	"math"

	"github.com/aatturi/soxstream"
)

// qualityByName maps a CLI preset name to its quality spec.
func qualityByName(name string) (soxstream.QualitySpec, error) {
	switch name {
	case "quick":
		return soxstream.NewQualitySpec(soxstream.Quick, 0), nil
	case "low":
		return soxstream.NewQualitySpec(soxstream.LowQuality, 0), nil
	case "medium":
		return soxstream.NewQualitySpec(soxstream.MediumQuality, 0), nil
	case "high":
		return soxstream.NewQualitySpec(soxstream.HighQuality, 0), nil
	case "veryhigh":
		return soxstream.NewQualitySpec(soxstream.VeryHighQuality, 0), nil
	}
	return soxstream.QualitySpec{}, fmt.Errorf("unknown quality preset %q", name)
}

// outputChunkLen sizes an output chunk for an input chunk of the given
// length, with margin for filter transients.
func outputChunkLen(inFrames int, inRate, outRate float64) int {
	return int(math.Ceil(float64(inFrames)*outRate/inRate)) + 256
}

// widenSamples converts decoder samples at the source bit depth to
// full-scale int32.
func widenSamples(src []int, dst []int32, bits int) {
	shift := uint(32 - bits)
	for i, v := range src {
		dst[i] = int32(v) << shift
	}
}

// narrowSamples converts full-scale int32 back to encoder samples at
// the target bit depth, rounding to the nearest representable value.
func narrowSamples(src []int32, dst []int, bits int) {
	shift := uint(32 - bits)
	half := int32(1) << (shift - 1)
	maxVal := int32(math.MaxInt32) >> shift
	for i, v := range src {
		if v > math.MaxInt32-half {
			dst[i] = int(maxVal)
			continue
		}
		dst[i] = int((v + half) >> shift)
	}
}
