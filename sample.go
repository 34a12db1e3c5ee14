package soxstream

import (
	"github.com/aatturi/soxstream/internal/engine"
)

// Sample is the set of element types a stream can carry. Integer
// elements use the full-scale fixed-point convention: the int16 value
// 32767 and the float value 1.0 - 2⁻¹⁵ denote the same amplitude.
type Sample interface {
	int16 | int32 | float32 | float64
}

// Datatype tags an element type and memory layout as used on the
// engine boundary.
type Datatype = engine.Datatype

// Wire datatype tags. Interleaved layouts store whole frames
// contiguously; split (planar) layouts keep one contiguous run per
// channel.
const (
	Float32I = engine.Float32I
	Float64I = engine.Float64I
	Int32I   = engine.Int32I
	Int16I   = engine.Int16I
	Float32S = engine.Float32S
	Float64S = engine.Float64S
	Int32S   = engine.Int32S
	Int16S   = engine.Int16S
)

// DatatypeOf returns the wire tag for element type S in the given
// layout.
func DatatypeOf[S Sample](planar bool) Datatype {
	var z S
	switch any(z).(type) {
	case float32:
		if planar {
			return Float32S
		}
		return Float32I
	case float64:
		if planar {
			return Float64S
		}
		return Float64I
	case int32:
		if planar {
			return Int32S
		}
		return Int32I
	default:
		if planar {
			return Int16S
		}
		return Int16I
	}
}
