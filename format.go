package soxstream

// Format describes the shape of a stream: its element type S, channel
// count, and memory layout. A Session created with some Format accepts
// only buffers of the matching layout and channel count.
type Format[S Sample] struct {
	channels int
	planar   bool
}

// Interleaved returns a format with channels interleaved frame by
// frame, the layout of Frames buffers.
func Interleaved[S Sample](channels int) Format[S] {
	return Format[S]{channels: channels}
}

// Planar returns a format with each channel in its own contiguous run,
// the layout of Planes buffers.
func Planar[S Sample](channels int) Format[S] {
	return Format[S]{channels: channels, planar: true}
}

// Mono returns a single-channel interleaved format.
func Mono[S Sample]() Format[S] {
	return Interleaved[S](1)
}

// Stereo returns a two-channel interleaved format.
func Stereo[S Sample]() Format[S] {
	return Interleaved[S](2)
}

// Channels returns the channel count.
func (f Format[S]) Channels() int {
	return f.channels
}

// IsPlanar reports whether the format uses the planar layout.
func (f Format[S]) IsPlanar() bool {
	return f.planar
}

// Datatype returns the wire tag describing the format's element type
// and layout.
func (f Format[S]) Datatype() Datatype {
	return DatatypeOf[S](f.planar)
}
