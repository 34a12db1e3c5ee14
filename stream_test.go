package soxstream_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aatturi/soxstream"
)

// runMono drives a float32 mono session over input with the given
// output chunk size, returning everything produced including the
// drained tail.
func runMono(t *testing.T, s *soxstream.Session[float32], input []float32, chunkLen int) []float32 {
	t.Helper()

	out := make([]float32, 0, len(input)*2)
	chunk := make([]float32, chunkLen)

	fed := 0
	for fed < len(input) {
		res, err := s.Process(soxstream.NewMono(input[fed:]), soxstream.NewMono(chunk))
		require.NoError(t, err)
		require.Positive(t, res.InputFrames+res.OutputFrames, "no progress")
		fed += res.InputFrames
		out = append(out, chunk[:res.OutputFrames]...)
	}

	for {
		n, err := s.Drain(soxstream.NewMono(chunk))
		require.NoError(t, err)
		if n == 0 {
			break
		}
		out = append(out, chunk[:n]...)
	}
	return out
}

func sineF32(n int, freq, rate, amp float64) []float32 {
	out := make([]float32, n)
	w := 2 * math.Pi * freq / rate
	for i := range out {
		out[i] = float32(amp * math.Sin(w*float64(i)))
	}
	return out
}

func TestIdentityRatioConservesFrameCount(t *testing.T) {
	t.Parallel()

	s, err := soxstream.New(48000, 48000, soxstream.Mono[float32]())
	require.NoError(t, err)
	defer s.Close()

	const n = 4000
	input := make([]float32, n)
	for i := range input {
		input[i] = 1
	}

	out := runMono(t, s, input, 8192)
	assert.Len(t, out, n, "identity conversion must produce exactly the input length")

	// Steady state of a unity DC signal through a unity DC gain filter.
	for _, v := range out[500 : n-500] {
		assert.InDelta(t, 1.0, v, 5e-3)
	}
}

func TestDownsample48kTo44k1(t *testing.T) {
	t.Parallel()

	s, err := soxstream.New(48000, 44100, soxstream.Mono[float32]())
	require.NoError(t, err)
	defer s.Close()

	const n = 48000
	input := sineF32(n, 1000, 48000, 0.5)

	out := runMono(t, s, input, 4096)
	assert.InDelta(t, 44100, len(out), 2, "one second in is one second out")

	var peak float64
	for _, v := range out[2000 : len(out)-2000] {
		require.False(t, math.IsNaN(float64(v)) || math.IsInf(float64(v), 0))
		if a := math.Abs(float64(v)); a > peak {
			peak = a
		}
	}
	assert.InDelta(t, 0.5, peak, 0.02, "passband tone amplitude must be preserved")
}

func TestSingleCallAccounting(t *testing.T) {
	t.Parallel()

	s, err := soxstream.New(48000, 44100, soxstream.Mono[float32]())
	require.NoError(t, err)
	defer s.Close()

	res, err := s.Process(soxstream.NewMono(make([]float32, 1024)), soxstream.NewMono(make([]float32, 2048)))
	require.NoError(t, err)

	assert.LessOrEqual(t, res.InputFrames, 1024)
	assert.Positive(t, res.InputFrames)

	// Produced approximately 1024 × 44100/48000, short of the filter
	// latency still buffered.
	want := 1024.0 * 44100 / 48000
	assert.Less(t, float64(res.OutputFrames), want+50)
	assert.Greater(t, float64(res.OutputFrames), want-250)
}

func TestSmallOutputBufferMakesProgress(t *testing.T) {
	t.Parallel()

	s, err := soxstream.New(44100, 48000, soxstream.Mono[float32]())
	require.NoError(t, err)
	defer s.Close()

	const n = 10000
	out := runMono(t, s, sineF32(n, 440, 44100, 0.25), 100)
	assert.InDelta(t, float64(n)*48000/44100, len(out), 2)
}

func TestDrainIsIdempotentAndBlocksFurtherInput(t *testing.T) {
	t.Parallel()

	s, err := soxstream.New(48000, 44100, soxstream.Mono[float32]())
	require.NoError(t, err)
	defer s.Close()

	runMono(t, s, sineF32(2000, 500, 48000, 0.3), 1024)

	chunk := make([]float32, 1024)
	n, err := s.Drain(soxstream.NewMono(chunk))
	require.NoError(t, err)
	assert.Zero(t, n, "a drained stream stays drained")

	// An empty-input Process stays a pure harvest even after the end
	// of the stream.
	res, err := s.Process(soxstream.NewMono[float32](nil), soxstream.NewMono(chunk))
	require.NoError(t, err)
	assert.Zero(t, res.OutputFrames)

	_, err = s.Process(soxstream.NewMono(make([]float32, 10)), soxstream.NewMono(chunk))
	require.Error(t, err)
	assert.ErrorIs(t, err, soxstream.ErrInputAfterDrain)
}

func TestClearRestartsTheStream(t *testing.T) {
	t.Parallel()

	s, err := soxstream.New(48000, 44100, soxstream.Mono[float32]())
	require.NoError(t, err)
	defer s.Close()

	first := runMono(t, s, sineF32(4800, 1000, 48000, 0.5), 1024)
	require.NoError(t, s.Clear())
	second := runMono(t, s, sineF32(4800, 1000, 48000, 0.5), 1024)

	// The engine is deterministic, so a cleared session must reproduce
	// a fresh session's output bit for bit; anything less means Clear
	// leaked position or ratio state.
	require.Equal(t, first, second, "a cleared session behaves like a fresh one")
}

func TestQuickRecipeReproducesConstantSignal(t *testing.T) {
	t.Parallel()

	s, err := soxstream.NewQuick(16000, 16000, soxstream.Mono[float32]())
	require.NoError(t, err)
	defer s.Close()

	const n = 1000
	input := make([]float32, n)
	for i := range input {
		input[i] = 0.75
	}

	out := runMono(t, s, input, 512)
	require.Len(t, out, n)
	for _, v := range out {
		assert.InDelta(t, 0.75, v, 1e-6)
	}
}

func TestVariableRateRetune(t *testing.T) {
	t.Parallel()

	s, err := soxstream.NewVariableRate(2.0, soxstream.Mono[float32]())
	require.NoError(t, err)
	defer s.Close()

	input := sineF32(4000, 100, 2000, 0.4)
	chunk := make([]float32, 4096)

	// Half the stream at ratio 2, then retune to ratio 1 with a slew.
	total := 0
	fed := 0
	for fed < 2000 {
		res, err := s.Process(soxstream.NewMono(input[fed:2000]), soxstream.NewMono(chunk))
		require.NoError(t, err)
		fed += res.InputFrames
		total += res.OutputFrames
	}
	require.NoError(t, s.SetIORatio(1.0, 200))

	for fed < len(input) {
		res, err := s.Process(soxstream.NewMono(input[fed:]), soxstream.NewMono(chunk))
		require.NoError(t, err)
		fed += res.InputFrames
		total += res.OutputFrames
	}
	for {
		n, err := s.Drain(soxstream.NewMono(chunk))
		require.NoError(t, err)
		if n == 0 {
			break
		}
		total += n
	}

	// Ratio 2 for the first half and ~1 for the second produces more
	// output than ratio 2 throughout and less than ratio 1 throughout.
	assert.Greater(t, total, 2200)
	assert.Less(t, total, 3800)
}

func TestPlanarStereoKeepsChannelsIndependent(t *testing.T) {
	t.Parallel()

	s, err := soxstream.New(48000, 24000, soxstream.Planar[float64](2))
	require.NoError(t, err)
	defer s.Close()

	const n = 6000
	left := make([]float64, n)
	for i := range left {
		left[i] = 0.5 * math.Sin(2*math.Pi*440*float64(i)/48000)
	}
	right := make([]float64, n) // silence

	outL := make([]float64, 0, n)
	outR := make([]float64, 0, n)
	chunkL := make([]float64, 2048)
	chunkR := make([]float64, 2048)

	fed := 0
	for fed < n {
		in := soxstream.NewPlanes([][]float64{left[fed:], right[fed:]})
		out := soxstream.NewPlanes([][]float64{chunkL, chunkR})
		res, err := s.Process(in, out)
		require.NoError(t, err)
		fed += res.InputFrames
		outL = append(outL, chunkL[:res.OutputFrames]...)
		outR = append(outR, chunkR[:res.OutputFrames]...)
	}
	for {
		produced, err := s.Drain(soxstream.NewPlanes([][]float64{chunkL, chunkR}))
		require.NoError(t, err)
		if produced == 0 {
			break
		}
		outL = append(outL, chunkL[:produced]...)
		outR = append(outR, chunkR[:produced]...)
	}

	assert.InDelta(t, n/2, len(outL), 2)

	var peakL float64
	for _, v := range outL {
		if a := math.Abs(v); a > peakL {
			peakL = a
		}
	}
	assert.Greater(t, peakL, 0.4, "signal channel must carry the tone")
	for i, v := range outR {
		require.InDelta(t, 0.0, v, 1e-12, "silent channel leaked at %d", i)
	}
}

func TestInt16StreamPreservesLoudness(t *testing.T) {
	t.Parallel()

	s, err := soxstream.New(44100, 44100, soxstream.Mono[int16]())
	require.NoError(t, err)
	defer s.Close()

	const n = 8000
	input := make([]int16, n)
	for i := range input {
		input[i] = int16(16000 * math.Sin(2*math.Pi*997*float64(i)/44100))
	}

	out := make([]int16, 0, n)
	chunk := make([]int16, 2048)
	fed := 0
	for fed < n {
		res, err := s.Process(soxstream.NewMono(input[fed:]), soxstream.NewMono(chunk))
		require.NoError(t, err)
		fed += res.InputFrames
		out = append(out, chunk[:res.OutputFrames]...)
	}
	for {
		produced, err := s.Drain(soxstream.NewMono(chunk))
		require.NoError(t, err)
		if produced == 0 {
			break
		}
		out = append(out, chunk[:produced]...)
	}

	require.Len(t, out, n)

	var peak int
	for _, v := range out[1000 : n-1000] {
		a := int(v)
		if a < 0 {
			a = -a
		}
		if a > peak {
			peak = a
		}
	}
	assert.InDelta(t, 16000, peak, 400)
}

func TestResampleConvenience(t *testing.T) {
	t.Parallel()

	const n = 12000
	input := make([]float32, n*2)
	for i := 0; i < n; i++ {
		v := float32(0.3 * math.Sin(2*math.Pi*880*float64(i)/48000))
		input[2*i] = v
		input[2*i+1] = -v
	}

	out, err := soxstream.Resample(input, 2, 48000, 32000)
	require.NoError(t, err)

	frames := len(out) / 2
	assert.InDelta(t, n*32000/48000, frames, 2)
	assert.Zero(t, len(out)%2, "output must hold whole frames")
}

func TestParallelRenderingMatchesSerial(t *testing.T) {
	t.Parallel()

	const n = 6000
	input := sineF32(n, 220, 48000, 0.4)
	quad := make([]float32, n*4)
	for i := 0; i < n; i++ {
		for ch := 0; ch < 4; ch++ {
			quad[i*4+ch] = input[i]
		}
	}

	run := func(threads uint32) []float32 {
		s, err := soxstream.NewWithParams(48000, 44100, soxstream.Interleaved[float32](4),
			soxstream.DefaultQuality(), soxstream.NewRuntimeSpec(threads))
		require.NoError(t, err)
		defer s.Close()

		out := make([]float32, 0, n*4)
		chunk := make([]float32, 4096*4)
		fed := 0
		for fed < n {
			res, err := s.Process(soxstream.NewFrames(quad[fed*4:n*4], 4), soxstream.NewFrames(chunk, 4))
			require.NoError(t, err)
			fed += res.InputFrames
			out = append(out, chunk[:res.OutputFrames*4]...)
		}
		for {
			produced, err := s.Drain(soxstream.NewFrames(chunk, 4))
			require.NoError(t, err)
			if produced == 0 {
				break
			}
			out = append(out, chunk[:produced*4]...)
		}
		return out
	}

	serial := run(1)
	parallel := run(4)
	require.Equal(t, len(serial), len(parallel))
	for i := range serial {
		require.Equal(t, serial[i], parallel[i], "sample %d", i)
	}
}
