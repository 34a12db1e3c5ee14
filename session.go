package soxstream

import (
	"fmt"
	"math"
	"unsafe"

	"github.com/aatturi/soxstream/internal/engine"
)

// Processed reports how much of a Process call's input and output was
// actually used.
type Processed struct {
	// InputFrames is the number of input frames consumed. The caller
	// resubmits anything beyond it on the next call.
	InputFrames int

	// OutputFrames is the number of output frames produced, counted
	// from the start of the output buffer.
	OutputFrames int
}

// engineHandle is the session's view of the conversion engine. Tests
// substitute it through newEngineHandle.
type engineHandle interface {
	Process(in engine.Memory, inFrames int, out engine.Memory, outFrames int) (consumed, produced int, err error)
	SetIORatio(ratio float64, slewFrames int) error
	Clear() error
	Delete()
}

var newEngineHandle = func(inRate, outRate float64, channels int, io engine.IOSpec, q engine.QualityRec, rt engine.RuntimeRec) (engineHandle, error) {
	return engine.New(inRate, outRate, channels, io, q, rt)
}

// emptyInput stands in for the base pointer of a zero-length input
// buffer, which must stay distinguishable from the null view that
// signals end of stream.
var emptyInput byte

// Session is a streaming sample rate converter for streams of element
// type S. Create one with New or NewWithParams, feed it with Process,
// flush it with Drain, and release it with Close. A Session is not
// safe for concurrent use.
type Session[S Sample] struct {
	eng     engineHandle
	format  Format[S]
	inRate  float64
	outRate float64
	closed  bool
}

// New creates a session converting from inRate to outRate with the
// default quality and runtime configuration.
func New[S Sample](inRate, outRate float64, format Format[S]) (*Session[S], error) {
	return NewWithParams(inRate, outRate, format, DefaultQuality(), DefaultRuntime())
}

// NewWithParams creates a session with explicit quality and runtime
// configuration.
func NewWithParams[S Sample](inRate, outRate float64, format Format[S], q QualitySpec, rt RuntimeSpec) (*Session[S], error) {
	if uint64(format.channels) > math.MaxUint32 {
		return nil, ErrChannelCountTooLarge
	}

	dt := format.Datatype()
	io := engine.IOSpec{In: dt, Out: dt, Scale: 1}

	eng, err := newEngineHandle(inRate, outRate, format.channels, io, q.raw(), rt.raw())
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	return &Session[S]{
		eng:     eng,
		format:  format,
		inRate:  inRate,
		outRate: outRate,
	}, nil
}

// Format returns the session's stream format.
func (s *Session[S]) Format() Format[S] {
	return s.format
}

// InputRate returns the input sample rate the session was created
// with.
func (s *Session[S]) InputRate() float64 {
	return s.inRate
}

// OutputRate returns the output sample rate the session was created
// with.
func (s *Session[S]) OutputRate() float64 {
	return s.outRate
}

// Process feeds input and harvests output in one call. Either side may
// be used only partially: the conversion stops when the output buffer
// is full or the useful input is exhausted, and the returned Processed
// says how far each side got. An empty input buffer is a pure harvest
// of already-buffered output.
//
// Both buffers must match the session's format in layout and channel
// count; a mismatch is a programming error and panics.
func (s *Session[S]) Process(in, out Buffer[S]) (Processed, error) {
	s.mustBeOpen()
	s.checkLayout(in, "input")
	s.checkLayout(out, "output")

	inMem := in.memory()
	if inMem.IsNull() {
		inMem = engine.NewMemory(unsafe.Pointer(&emptyInput))
	}

	consumed, produced, err := s.eng.Process(inMem, in.Frames(), out.memory(), out.Frames())
	if err != nil {
		return Processed{}, fmt.Errorf("process: %w", err)
	}
	return Processed{InputFrames: consumed, OutputFrames: produced}, nil
}

// Drain signals end of input and harvests buffered output into out,
// returning the number of frames produced. Call it repeatedly until it
// returns zero; after that the stream is complete and only Clear can
// restart it.
func (s *Session[S]) Drain(out Buffer[S]) (int, error) {
	s.mustBeOpen()
	s.checkLayout(out, "output")

	_, produced, err := s.eng.Process(engine.Memory{}, 0, out.memory(), out.Frames())
	if err != nil {
		return 0, fmt.Errorf("drain: %w", err)
	}
	return produced, nil
}

// Clear resets the session to its just-created state, discarding all
// buffered audio and restoring the creation-time conversion ratio. The
// designed filter is reused, so Clear is much cheaper than creating a
// new session.
func (s *Session[S]) Clear() error {
	s.mustBeOpen()
	if err := s.eng.Clear(); err != nil {
		return fmt.Errorf("clear: %w", err)
	}
	return nil
}

// SetRates retunes the conversion to new input and output rates,
// slewing to the implied ratio over slewFrames output frames; zero
// switches immediately.
func (s *Session[S]) SetRates(inRate, outRate float64, slewFrames int) error {
	if !(inRate > 0) || !(outRate > 0) || math.IsInf(inRate, 0) || math.IsInf(outRate, 0) {
		return ErrInvalidRate
	}
	if err := s.SetIORatio(inRate/outRate, slewFrames); err != nil {
		return err
	}
	s.inRate = inRate
	s.outRate = outRate
	return nil
}

// SetIORatio retunes the input/output ratio directly, slewing to the
// new value over slewFrames output frames; zero switches immediately.
func (s *Session[S]) SetIORatio(ratio float64, slewFrames int) error {
	s.mustBeOpen()
	if err := s.eng.SetIORatio(ratio, slewFrames); err != nil {
		return fmt.Errorf("set io ratio: %w", err)
	}
	return nil
}

// Close releases the underlying engine. It is safe to call more than
// once; any other method after Close panics.
func (s *Session[S]) Close() error {
	if s.closed {
		return nil
	}
	s.eng.Delete()
	s.closed = true
	return nil
}

func (s *Session[S]) mustBeOpen() {
	if s.closed {
		panic("soxstream: use of closed Session")
	}
}

func (s *Session[S]) checkLayout(b Buffer[S], which string) {
	if b.layoutPlanar() != s.format.planar || b.channelCount() != s.format.channels {
		panic(fmt.Sprintf("soxstream: %s buffer layout does not match session format (%d-channel planar=%v, got %d-channel planar=%v)",
			which, s.format.channels, s.format.planar, b.channelCount(), b.layoutPlanar()))
	}
}
