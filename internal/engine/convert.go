package engine

import (
	"math"
	"unsafe"
)

// Normalization factors between integer wire formats and the engine's
// internal float64 representation.
const (
	int16Scale = 32768.0
	int32Scale = 2147483648.0

	int16Max = 32767.0
	int16Min = -32768.0
	int32Max = 2147483647.0
	int32Min = -2147483648.0
)

// appendInput decodes frames from the raw input view into the
// per-channel history buffers. Integer formats are normalized to the
// [-1, 1) range used internally.
func (e *Engine) appendInput(in Memory, frames int) {
	if frames == 0 {
		return
	}

	switch e.io.In {
	case Float32I:
		flat := unsafe.Slice((*float32)(in.ptr), frames*e.channels)
		for ch := 0; ch < e.channels; ch++ {
			h := e.hist[ch]
			for i := 0; i < frames; i++ {
				h = append(h, float64(flat[i*e.channels+ch]))
			}
			e.hist[ch] = h
		}

	case Float64I:
		flat := unsafe.Slice((*float64)(in.ptr), frames*e.channels)
		for ch := 0; ch < e.channels; ch++ {
			h := e.hist[ch]
			for i := 0; i < frames; i++ {
				h = append(h, flat[i*e.channels+ch])
			}
			e.hist[ch] = h
		}

	case Int32I:
		flat := unsafe.Slice((*int32)(in.ptr), frames*e.channels)
		for ch := 0; ch < e.channels; ch++ {
			h := e.hist[ch]
			for i := 0; i < frames; i++ {
				h = append(h, float64(flat[i*e.channels+ch])/int32Scale)
			}
			e.hist[ch] = h
		}

	case Int16I:
		flat := unsafe.Slice((*int16)(in.ptr), frames*e.channels)
		for ch := 0; ch < e.channels; ch++ {
			h := e.hist[ch]
			for i := 0; i < frames; i++ {
				h = append(h, float64(flat[i*e.channels+ch])/int16Scale)
			}
			e.hist[ch] = h
		}

	case Float32S:
		planes := unsafe.Slice((*unsafe.Pointer)(in.ptr), e.channels)
		for ch := 0; ch < e.channels; ch++ {
			p := unsafe.Slice((*float32)(planes[ch]), frames)
			h := e.hist[ch]
			for _, v := range p {
				h = append(h, float64(v))
			}
			e.hist[ch] = h
		}

	case Float64S:
		planes := unsafe.Slice((*unsafe.Pointer)(in.ptr), e.channels)
		for ch := 0; ch < e.channels; ch++ {
			p := unsafe.Slice((*float64)(planes[ch]), frames)
			e.hist[ch] = append(e.hist[ch], p...)
		}

	case Int32S:
		planes := unsafe.Slice((*unsafe.Pointer)(in.ptr), e.channels)
		for ch := 0; ch < e.channels; ch++ {
			p := unsafe.Slice((*int32)(planes[ch]), frames)
			h := e.hist[ch]
			for _, v := range p {
				h = append(h, float64(v)/int32Scale)
			}
			e.hist[ch] = h
		}

	case Int16S:
		planes := unsafe.Slice((*unsafe.Pointer)(in.ptr), e.channels)
		for ch := 0; ch < e.channels; ch++ {
			p := unsafe.Slice((*int16)(planes[ch]), frames)
			h := e.hist[ch]
			for _, v := range p {
				h = append(h, float64(v)/int16Scale)
			}
			e.hist[ch] = h
		}
	}
}

// writeOutput encodes frames produced into the staging buffers out to
// the raw output view, applying the io-spec scale and clipping integer
// formats.
func (e *Engine) writeOutput(out Memory, frames int) {
	if frames == 0 {
		return
	}
	scale := e.io.Scale

	switch e.io.Out {
	case Float32I:
		flat := unsafe.Slice((*float32)(out.ptr), frames*e.channels)
		for ch := 0; ch < e.channels; ch++ {
			s := e.stage[ch]
			for i := 0; i < frames; i++ {
				flat[i*e.channels+ch] = float32(s[i] * scale)
			}
		}

	case Float64I:
		flat := unsafe.Slice((*float64)(out.ptr), frames*e.channels)
		for ch := 0; ch < e.channels; ch++ {
			s := e.stage[ch]
			for i := 0; i < frames; i++ {
				flat[i*e.channels+ch] = s[i] * scale
			}
		}

	case Int32I:
		flat := unsafe.Slice((*int32)(out.ptr), frames*e.channels)
		for ch := 0; ch < e.channels; ch++ {
			s := e.stage[ch]
			for i := 0; i < frames; i++ {
				flat[i*e.channels+ch] = clipInt32(s[i] * scale)
			}
		}

	case Int16I:
		flat := unsafe.Slice((*int16)(out.ptr), frames*e.channels)
		for ch := 0; ch < e.channels; ch++ {
			s := e.stage[ch]
			for i := 0; i < frames; i++ {
				flat[i*e.channels+ch] = clipInt16(s[i] * scale)
			}
		}

	case Float32S:
		planes := unsafe.Slice((*unsafe.Pointer)(out.ptr), e.channels)
		for ch := 0; ch < e.channels; ch++ {
			p := unsafe.Slice((*float32)(planes[ch]), frames)
			s := e.stage[ch]
			for i := 0; i < frames; i++ {
				p[i] = float32(s[i] * scale)
			}
		}

	case Float64S:
		planes := unsafe.Slice((*unsafe.Pointer)(out.ptr), e.channels)
		for ch := 0; ch < e.channels; ch++ {
			p := unsafe.Slice((*float64)(planes[ch]), frames)
			s := e.stage[ch]
			for i := 0; i < frames; i++ {
				p[i] = s[i] * scale
			}
		}

	case Int32S:
		planes := unsafe.Slice((*unsafe.Pointer)(out.ptr), e.channels)
		for ch := 0; ch < e.channels; ch++ {
			p := unsafe.Slice((*int32)(planes[ch]), frames)
			s := e.stage[ch]
			for i := 0; i < frames; i++ {
				p[i] = clipInt32(s[i] * scale)
			}
		}

	case Int16S:
		planes := unsafe.Slice((*unsafe.Pointer)(out.ptr), e.channels)
		for ch := 0; ch < e.channels; ch++ {
			p := unsafe.Slice((*int16)(planes[ch]), frames)
			s := e.stage[ch]
			for i := 0; i < frames; i++ {
				p[i] = clipInt16(s[i] * scale)
			}
		}
	}
}

// clipInt16 converts a normalized sample to int16, rounding half away
// from zero and clipping to the representable range.
func clipInt16(v float64) int16 {
	v = math.Round(v * int16Scale)
	if v >= int16Max {
		return int16(int16Max)
	}
	if v <= int16Min {
		return int16(int16Min)
	}
	return int16(v)
}

// clipInt32 converts a normalized sample to int32 with clipping.
func clipInt32(v float64) int32 {
	v = math.Round(v * int32Scale)
	if v >= int32Max {
		return int32(int32Max)
	}
	if v <= int32Min {
		return int32(int32Min)
	}
	return int32(v)
}
