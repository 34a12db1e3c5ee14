// Package engine implements the streaming variable-ratio sample rate
// converter behind the soxstream session layer.
//
// The package boundary is deliberately narrow and mirrors the classic
// resampler C call contract: create, process (with partial consumption
// and partial production), set_io_ratio, clear, delete. Sample memory
// crosses the boundary as raw pointers tagged with a wire datatype so
// the engine owns all element decoding and encoding.
package engine

import "unsafe"

// Datatype tags the element type and memory layout of sample data
// handed across the engine boundary. Interleaved layouts store whole
// frames contiguously; split (planar) layouts pass an array of
// per-channel base pointers.
type Datatype uint32

const (
	Float32I Datatype = iota // interleaved float32
	Float64I                 // interleaved float64
	Int32I                   // interleaved int32
	Int16I                   // interleaved int16
	Float32S                 // split (planar) float32
	Float64S                 // split (planar) float64
	Int32S                   // split (planar) int32
	Int16S                   // split (planar) int16

	numDatatypes = iota
)

// Split reports whether the datatype uses the planar memory layout.
func (d Datatype) Split() bool {
	return d >= Float32S && d < numDatatypes
}

// String returns the datatype name as used in diagnostics.
func (d Datatype) String() string {
	switch d {
	case Float32I:
		return "float32-interleaved"
	case Float64I:
		return "float64-interleaved"
	case Int32I:
		return "int32-interleaved"
	case Int16I:
		return "int16-interleaved"
	case Float32S:
		return "float32-split"
	case Float64S:
		return "float64-split"
	case Int32S:
		return "int32-split"
	case Int16S:
		return "int16-split"
	}
	return "invalid"
}

// Memory is a raw view of sample storage. For interleaved datatypes the
// pointer addresses the first element of the flat sample sequence; for
// split datatypes it addresses the first entry of an array of
// per-channel base pointers. The zero Memory is the null descriptor and
// signals end of input when passed to Process.
type Memory struct {
	ptr unsafe.Pointer
}

// NewMemory wraps a raw base pointer.
func NewMemory(p unsafe.Pointer) Memory {
	return Memory{ptr: p}
}

// IsNull reports whether m is the null descriptor.
func (m Memory) IsNull() bool {
	return m.ptr == nil
}

// IOSpec describes the wire format of the input and output streams.
type IOSpec struct {
	// In and Out are the element wire tags for input and output.
	In, Out Datatype

	// Scale is applied to every output sample. The session layer fixes
	// this at 1.0.
	Scale float64

	// Extension is reserved for engine-private use and is always nil
	// when coming from the session layer.
	Extension unsafe.Pointer
}

// Quality flag bits. The low two bits carry the rolloff class; the
// remaining bits are independent options.
const (
	RolloffSmall  uint32 = 0 // passband rolloff <= 0.01 dB
	RolloffMedium uint32 = 1 // passband rolloff <= 0.35 dB
	RolloffNone   uint32 = 2 // preserve the full passband
	RolloffMask   uint32 = 3

	HighPrecClock   uint32 = 8  // compensated ratio clock accumulation
	DoublePrecision uint32 = 16 // force double precision mathematics
	VariableRate    uint32 = 32 // reserve guard band for ratio slews
)

// QualityRec is the engine's native quality configuration record.
// Field ranges are interpreted, not validated, by the engine.
type QualityRec struct {
	Precision     float64 // conversion precision in bits; <= 0 selects cubic interpolation
	PhaseResponse float64 // 0 minimum .. 50 linear .. 100 maximum
	PassbandEnd   float64 // 0 dB bandwidth to preserve; Nyquist = 1
	StopbandBegin float64 // aliasing/imaging control point; > PassbandEnd
	Flags         uint32  // rolloff class and option bits
}

// Runtime flag bits. The low two bits carry the coefficient
// interpolation strategy.
const (
	InterpAuto uint32 = 0 // choose by coefficient budget
	InterpLow  uint32 = 2 // low CPU: larger tables, no interpolation
	InterpHigh uint32 = 3 // high CPU: smaller tables, interpolated
	InterpMask uint32 = 3
)

// RuntimeRec is the engine's native runtime configuration record.
// Zero-valued sizing fields fall back to the engine defaults.
type RuntimeRec struct {
	Log2MinDFTSize   uint32 // lower bound on the streaming block exponent
	Log2LargeDFTSize uint32 // upper bound on the streaming block exponent
	CoefSizeKbytes   uint32 // coefficient table budget
	NumThreads       uint32 // worker goroutines; 0 = one per CPU
	Flags            uint32 // interpolation strategy bits
}
