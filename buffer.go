package soxstream

import (
	"fmt"
	"unsafe"

	"github.com/aatturi/soxstream/internal/engine"
)

// Buffer is a typed view of sample storage that a Session can read
// from or write into. Frames is the interleaved implementation, Planes
// the planar one. The interface is closed: only buffers constructed by
// this package satisfy it.
type Buffer[S Sample] interface {
	// Frames returns the buffer's capacity in frames.
	Frames() int

	memory() engine.Memory
	channelCount() int
	layoutPlanar() bool
}

// Frames is an interleaved sample buffer: len(data) = frames × channels,
// with the channels of each frame adjacent.
type Frames[S Sample] struct {
	data     []S
	channels int
}

// NewFrames wraps data as an interleaved buffer with the given channel
// count. It panics if channels is not positive or len(data) is not a
// whole number of frames; a short final frame cannot be expressed in
// the interleaved layout and truncating it silently would lose samples.
func NewFrames[S Sample](data []S, channels int) Frames[S] {
	if channels < 1 {
		panic(fmt.Sprintf("soxstream: NewFrames with %d channels", channels))
	}
	if len(data)%channels != 0 {
		panic(fmt.Sprintf("soxstream: NewFrames: %d samples is not a whole number of %d-channel frames", len(data), channels))
	}
	return Frames[S]{data: data, channels: channels}
}

// NewMono wraps data as a single-channel interleaved buffer.
func NewMono[S Sample](data []S) Frames[S] {
	return Frames[S]{data: data, channels: 1}
}

// NewStereo wraps data as a two-channel interleaved buffer.
func NewStereo[S Sample](data []S) Frames[S] {
	return NewFrames(data, 2)
}

// Frames returns the buffer length in frames.
func (b Frames[S]) Frames() int {
	return len(b.data) / b.channels
}

// Samples returns the underlying interleaved sample slice.
func (b Frames[S]) Samples() []S {
	return b.data
}

func (b Frames[S]) memory() engine.Memory {
	return engine.NewMemory(unsafe.Pointer(unsafe.SliceData(b.data)))
}

func (b Frames[S]) channelCount() int {
	return b.channels
}

func (b Frames[S]) layoutPlanar() bool {
	return false
}

// Planes is a planar sample buffer: one contiguous slice per channel,
// all of equal length.
type Planes[S Sample] struct {
	chans  [][]S
	frames int
	ptrs   []unsafe.Pointer
}

// NewPlanes wraps per-channel slices as a planar buffer. It panics if
// no channels are given or the channel slices differ in length; a
// ragged buffer has no consistent frame count.
func NewPlanes[S Sample](chans [][]S) Planes[S] {
	if len(chans) == 0 {
		panic("soxstream: NewPlanes with no channels")
	}
	frames := len(chans[0])
	for ch, p := range chans[1:] {
		if len(p) != frames {
			panic(fmt.Sprintf("soxstream: NewPlanes: channel %d has %d frames, channel 0 has %d", ch+1, len(p), frames))
		}
	}
	return newPlanes(chans, frames)
}

// NewPlanesUnchecked wraps per-channel slices as a planar buffer
// without validating their lengths; the first channel's length is
// taken as the frame count. The caller must guarantee every channel
// holds at least that many samples, or the conversion will read or
// write out of bounds.
func NewPlanesUnchecked[S Sample](chans [][]S) Planes[S] {
	if len(chans) == 0 {
		panic("soxstream: NewPlanesUnchecked with no channels")
	}
	return newPlanes(chans, len(chans[0]))
}

func newPlanes[S Sample](chans [][]S, frames int) Planes[S] {
	ptrs := make([]unsafe.Pointer, len(chans))
	for ch, p := range chans {
		ptrs[ch] = unsafe.Pointer(unsafe.SliceData(p))
	}
	return Planes[S]{chans: chans, frames: frames, ptrs: ptrs}
}

// Frames returns the buffer length in frames.
func (b Planes[S]) Frames() int {
	return b.frames
}

// Channel returns channel ch's slice.
func (b Planes[S]) Channel(ch int) []S {
	return b.chans[ch]
}

func (b Planes[S]) memory() engine.Memory {
	return engine.NewMemory(unsafe.Pointer(unsafe.SliceData(b.ptrs)))
}

func (b Planes[S]) channelCount() int {
	return len(b.chans)
}

func (b Planes[S]) layoutPlanar() bool {
	return true
}
