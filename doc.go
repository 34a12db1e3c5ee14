// Package soxstream provides streaming, variable-ratio sample rate
// conversion with a typed buffer and format abstraction.
//
// A Session converts one audio stream between two sample rates. Input
// is fed and output harvested in caller-sized pieces through Process,
// which may consume and produce fewer frames than offered; the caller
// resubmits the unconsumed tail and keeps harvesting. Drain flushes
// the filter tail once the input is exhausted, and SetIORatio retunes
// the conversion ratio mid-stream, optionally slewing to the new value
// over a number of output frames.
//
// Sample element types are captured in the type system: a
// Session[float32] only accepts float32 buffers, interleaved or planar
// per its Format. The int16 and int32 element types use the full-scale
// fixed-point convention, so a conversion between integer and float
// streams preserves loudness.
//
//	s, err := soxstream.New[float32](48000, 44100, soxstream.Stereo[float32]())
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer s.Close()
//
//	res, err := s.Process(soxstream.NewStereo(in), soxstream.NewStereo(out))
//
// Quality and runtime behavior are configured at creation through
// QualitySpec and RuntimeSpec; the defaults give a 20-bit, linear
// phase conversion suitable for most uses.
package soxstream
