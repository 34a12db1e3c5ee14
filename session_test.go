package soxstream

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aatturi/soxstream/internal/engine"
)

// stubEngine records boundary calls so session behavior can be tested
// without a real converter.
type stubEngine struct {
	processCalls int
	lastIn       engine.Memory
	lastInFrames int
	lastOut      engine.Memory
	lastOutN     int
	consumed     int
	produced     int
	processErr   error

	ratio    float64
	slew     int
	ratioErr error

	clearCalls  int
	deleteCalls int
}

func (s *stubEngine) Process(in engine.Memory, inFrames int, out engine.Memory, outFrames int) (int, int, error) {
	s.processCalls++
	s.lastIn = in
	s.lastInFrames = inFrames
	s.lastOut = out
	s.lastOutN = outFrames
	return s.consumed, s.produced, s.processErr
}

func (s *stubEngine) SetIORatio(ratio float64, slewFrames int) error {
	if s.ratioErr != nil {
		return s.ratioErr
	}
	s.ratio = ratio
	s.slew = slewFrames
	return nil
}

func (s *stubEngine) Clear() error {
	s.clearCalls++
	return nil
}

func (s *stubEngine) Delete() {
	s.deleteCalls++
}

// withStubEngine swaps the engine factory for the duration of a test,
// returning the stub and a count of factory invocations.
func withStubEngine(t *testing.T, stub *stubEngine) *int {
	t.Helper()
	calls := 0
	orig := newEngineHandle
	newEngineHandle = func(inRate, outRate float64, channels int, io engine.IOSpec, q engine.QualityRec, rt engine.RuntimeRec) (engineHandle, error) {
		calls++
		return stub, nil
	}
	t.Cleanup(func() { newEngineHandle = orig })
	return &calls
}

func TestNewRejectsOversizedChannelCountBeforeEngine(t *testing.T) {
	var huge int64 = 1 << 33
	channels := int(huge)
	if int64(channels) != huge {
		t.Skip("channel count not representable on this platform")
	}

	stub := &stubEngine{}
	calls := withStubEngine(t, stub)

	_, err := New(48000, 44100, Interleaved[float32](channels))
	require.ErrorIs(t, err, ErrChannelCountTooLarge)
	assert.Zero(t, *calls, "engine must not be created for an unrepresentable channel count")
}

func TestNewWrapsEngineError(t *testing.T) {
	orig := newEngineHandle
	newEngineHandle = func(inRate, outRate float64, channels int, io engine.IOSpec, q engine.QualityRec, rt engine.RuntimeRec) (engineHandle, error) {
		return nil, engine.ErrInvalidRate
	}
	t.Cleanup(func() { newEngineHandle = orig })

	_, err := New(-1, 44100, Mono[float32]())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidRate)
}

func TestProcessPassesCountsThrough(t *testing.T) {
	stub := &stubEngine{consumed: 5, produced: 7}
	withStubEngine(t, stub)

	s, err := New(48000, 44100, Mono[float32]())
	require.NoError(t, err)

	res, err := s.Process(NewMono(make([]float32, 10)), NewMono(make([]float32, 20)))
	require.NoError(t, err)
	assert.Equal(t, Processed{InputFrames: 5, OutputFrames: 7}, res)
	assert.Equal(t, 10, stub.lastInFrames)
	assert.Equal(t, 20, stub.lastOutN)
}

func TestProcessEmptyInputIsNotEndOfStream(t *testing.T) {
	stub := &stubEngine{}
	withStubEngine(t, stub)

	s, err := New(48000, 44100, Mono[float32]())
	require.NoError(t, err)

	// A zero-length input buffer, even one backed by a nil slice, must
	// reach the engine as a non-null view; only Drain signals the end.
	_, err = s.Process(NewMono[float32](nil), NewMono(make([]float32, 8)))
	require.NoError(t, err)
	assert.False(t, stub.lastIn.IsNull())
	assert.Equal(t, 0, stub.lastInFrames)
}

func TestDrainPassesNullInput(t *testing.T) {
	stub := &stubEngine{produced: 3}
	withStubEngine(t, stub)

	s, err := New(48000, 44100, Mono[float32]())
	require.NoError(t, err)

	n, err := s.Drain(NewMono(make([]float32, 8)))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.True(t, stub.lastIn.IsNull())
	assert.Equal(t, 0, stub.lastInFrames)
}

func TestProcessWrapsEngineError(t *testing.T) {
	stub := &stubEngine{processErr: engine.ErrInputAfterEOS}
	withStubEngine(t, stub)

	s, err := New(48000, 44100, Mono[float32]())
	require.NoError(t, err)

	_, err = s.Process(NewMono(make([]float32, 4)), NewMono(make([]float32, 4)))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInputAfterDrain)
}

func TestCloseIsIdempotentAndReleasesOnce(t *testing.T) {
	stub := &stubEngine{}
	withStubEngine(t, stub)

	s, err := New(48000, 44100, Mono[float32]())
	require.NoError(t, err)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.Equal(t, 1, stub.deleteCalls)
}

func TestUseAfterClosePanics(t *testing.T) {
	stub := &stubEngine{}
	withStubEngine(t, stub)

	s, err := New(48000, 44100, Mono[float32]())
	require.NoError(t, err)
	require.NoError(t, s.Close())

	assert.Panics(t, func() { _, _ = s.Process(NewMono[float32](nil), NewMono[float32](nil)) })
	assert.Panics(t, func() { _, _ = s.Drain(NewMono[float32](nil)) })
	assert.Panics(t, func() { _ = s.Clear() })
	assert.Panics(t, func() { _ = s.SetIORatio(1, 0) })
}

func TestLayoutMismatchPanics(t *testing.T) {
	stub := &stubEngine{}
	withStubEngine(t, stub)

	s, err := New(48000, 44100, Stereo[float32]())
	require.NoError(t, err)

	mono := NewMono(make([]float32, 8))
	stereo := NewStereo(make([]float32, 8))
	planar := NewPlanes([][]float32{make([]float32, 4), make([]float32, 4)})

	assert.Panics(t, func() { _, _ = s.Process(mono, stereo) }, "channel count mismatch")
	assert.Panics(t, func() { _, _ = s.Process(stereo, planar) }, "layout mismatch")
	assert.Panics(t, func() { _, _ = s.Drain(mono) })
}

func TestSetRatesValidatesBeforeEngine(t *testing.T) {
	stub := &stubEngine{}
	withStubEngine(t, stub)

	s, err := New(48000, 44100, Mono[float32]())
	require.NoError(t, err)

	require.ErrorIs(t, s.SetRates(-1, 44100, 0), ErrInvalidRate)
	require.ErrorIs(t, s.SetRates(48000, 0, 0), ErrInvalidRate)
	assert.Zero(t, stub.ratio, "invalid rates must not reach the engine")

	require.NoError(t, s.SetRates(96000, 48000, 50))
	assert.InDelta(t, 2.0, stub.ratio, 1e-12)
	assert.Equal(t, 50, stub.slew)
	assert.Equal(t, 96000.0, s.InputRate())
	assert.Equal(t, 48000.0, s.OutputRate())
}

func TestClearDelegates(t *testing.T) {
	stub := &stubEngine{}
	withStubEngine(t, stub)

	s, err := New(48000, 44100, Mono[float32]())
	require.NoError(t, err)

	require.NoError(t, s.Clear())
	assert.Equal(t, 1, stub.clearCalls)
}

func TestSessionFormatAccessors(t *testing.T) {
	stub := &stubEngine{}
	withStubEngine(t, stub)

	s, err := New(48000, 44100, Planar[int16](4))
	require.NoError(t, err)

	assert.Equal(t, 4, s.Format().Channels())
	assert.True(t, s.Format().IsPlanar())
	assert.Equal(t, 48000.0, s.InputRate())
	assert.Equal(t, 44100.0, s.OutputRate())
}

func TestSetIORatioWrapsEngineError(t *testing.T) {
	stub := &stubEngine{ratioErr: engine.ErrInvalidRatio}
	withStubEngine(t, stub)

	s, err := New(48000, 44100, Mono[float32]())
	require.NoError(t, err)

	err = s.SetIORatio(-2, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidRatio))
}
