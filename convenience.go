package soxstream

// Common sample rates for convenience.
const (
	// RateCD is the CD quality sample rate (Red Book standard).
	RateCD = 44100

	// RateDAT is the DAT/DVD sample rate.
	RateDAT = 48000

	// RateHiRes88 is the high-resolution 2x CD sample rate.
	RateHiRes88 = 88200

	// RateHiRes96 is the high-resolution 2x DAT sample rate.
	RateHiRes96 = 96000

	// RateHiRes176 is the very high resolution 4x CD sample rate.
	RateHiRes176 = 176400

	// RateHiRes192 is the very high resolution 4x DAT sample rate.
	RateHiRes192 = 192000

	// RateTelephony is the telephony (PSTN narrowband) sample rate.
	RateTelephony = 8000

	// RateVoIP is the VoIP wideband sample rate.
	RateVoIP = 16000
)

// NewQuick creates a session using the cubic interpolation recipe,
// trading precision for minimal setup and processing cost.
func NewQuick[S Sample](inRate, outRate float64, format Format[S]) (*Session[S], error) {
	return NewWithParams(inRate, outRate, format, NewQualitySpec(Quick, 0), DefaultRuntime())
}

// NewVariableRate creates a session whose ratio may be retuned
// mid-stream with SetIORatio. maxIORatio is the largest input/output
// ratio the session will be asked to reach; the filter is designed
// with headroom for it.
func NewVariableRate[S Sample](maxIORatio float64, format Format[S]) (*Session[S], error) {
	q := DefaultQuality().WithFlags(VariableRateConversion)
	return NewWithParams(maxIORatio, 1, format, q, DefaultRuntime())
}

// Resample converts a complete interleaved signal in one call, growing
// the result as needed. It is a convenience for offline use; streaming
// callers should drive a Session directly.
func Resample[S Sample](input []S, channels int, inRate, outRate float64) ([]S, error) {
	s, err := New(inRate, outRate, Interleaved[S](channels))
	if err != nil {
		return nil, err
	}
	defer s.Close()

	in := NewFrames(input, channels)
	inFrames := in.Frames()

	// Size the result for the rate change plus filter transients.
	outCap := int(float64(inFrames)*outRate/inRate) + 256
	result := make([]S, 0, outCap*channels)
	chunk := make([]S, 4096*channels)

	fed := 0
	for fed < inFrames {
		res, err := s.Process(NewFrames(input[fed*channels:], channels), NewFrames(chunk, channels))
		if err != nil {
			return nil, err
		}
		fed += res.InputFrames
		result = append(result, chunk[:res.OutputFrames*channels]...)
	}

	for {
		n, err := s.Drain(NewFrames(chunk, channels))
		if err != nil {
			return nil, err
		}
		if n == 0 {
			break
		}
		result = append(result, chunk[:n*channels]...)
	}

	return result, nil
}
