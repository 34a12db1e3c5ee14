package engine

import (
	"math"
	"runtime"
	"sync"

	"github.com/tphakala/simd/f64"
)

// Streaming defaults applied when the runtime record leaves the sizing
// fields zero.
const (
	defaultLog2MinDFTSize   = 10
	defaultLog2LargeDFTSize = 17
	defaultCoefKbytes       = 400

	maxLog2ChunkSize = 20

	// Cubic interpolation window, used when precision <= 0 selects the
	// quick conversion path.
	cubicTaps = 4
)

// schedEntry is one output sample's read position in the history
// buffer: the integer index and the fractional offset past it.
type schedEntry struct {
	idx  int
	frac float64
}

// Engine converts a sample stream between two rates. It accepts input
// and emits output in caller-sized pieces, holding filter history and
// the fractional read position between calls. An Engine is not safe for
// concurrent use; its internal worker goroutines fan out per channel
// within a single Process call.
type Engine struct {
	channels int
	io       IOSpec

	poly *polyFilter // nil selects the cubic path
	taps int         // history window span in input samples
	half int         // filter latency in input samples

	maxChunk int // input frames accepted per call
	threads  int
	hiPrec   bool

	createRatio float64
	ioRatio     float64
	targetRatio float64
	slewStep    float64
	slewLeft    int

	pos    float64 // read position in hist, in input samples
	posErr float64 // Kahan compensation term for pos

	hist  [][]float64 // per-channel input history, prefilled with taps-1 zeros
	stage [][]float64 // per-channel output staging
	sched []schedEntry

	eos     bool
	flushed bool
	deleted bool
}

// New creates an engine converting from inRate to outRate. The quality
// and runtime records follow the native configuration conventions:
// zero-valued sizing fields select defaults, q.Precision <= 0 selects
// cubic interpolation instead of a designed filter.
func New(inRate, outRate float64, channels int, io IOSpec, q QualityRec, rt RuntimeRec) (*Engine, error) {
	if !(inRate > 0) || !(outRate > 0) || math.IsInf(inRate, 0) || math.IsInf(outRate, 0) {
		return nil, ErrInvalidRate
	}
	if channels < 1 {
		return nil, ErrInvalidChannelCount
	}
	if io.In >= numDatatypes || io.Out >= numDatatypes {
		return nil, ErrInvalidDatatype
	}
	if io.Scale == 0 {
		io.Scale = 1
	}

	if rt.Log2MinDFTSize == 0 {
		rt.Log2MinDFTSize = defaultLog2MinDFTSize
	}
	if rt.Log2LargeDFTSize == 0 {
		rt.Log2LargeDFTSize = defaultLog2LargeDFTSize
	}
	if rt.Log2LargeDFTSize < rt.Log2MinDFTSize {
		rt.Log2LargeDFTSize = rt.Log2MinDFTSize
	}
	if rt.Log2LargeDFTSize > maxLog2ChunkSize {
		rt.Log2LargeDFTSize = maxLog2ChunkSize
	}

	ratio := inRate / outRate

	e := &Engine{
		channels:    channels,
		io:          io,
		maxChunk:    1 << rt.Log2LargeDFTSize,
		hiPrec:      q.Flags&HighPrecClock != 0,
		createRatio: ratio,
		ioRatio:     ratio,
		targetRatio: ratio,
	}

	e.threads = int(rt.NumThreads)
	if e.threads == 0 {
		e.threads = runtime.GOMAXPROCS(0)
	}

	if q.Precision > 0 {
		poly, err := designPolyFilter(q, rt, ratio)
		if err != nil {
			return nil, ErrFilterDesign
		}
		e.poly = poly
		e.taps = poly.taps
	} else {
		e.taps = cubicTaps
	}
	e.half = e.taps / 2

	e.hist = make([][]float64, channels)
	e.stage = make([][]float64, channels)
	for ch := range e.hist {
		e.hist[ch] = make([]float64, e.taps-1, e.taps-1+e.maxChunk)
	}
	e.pos = float64(e.taps - 1 + e.half)

	return e, nil
}

// Channels returns the stream's channel count.
func (e *Engine) Channels() int {
	return e.channels
}

// IORatio returns the instantaneous input/output ratio, which moves
// during a slew.
func (e *Engine) IORatio() float64 {
	return e.ioRatio
}

// Latency returns the filter delay in input frames.
func (e *Engine) Latency() int {
	return e.half
}

// Process feeds up to inFrames of input and fills up to outFrames of
// output, returning how many frames of each were actually used. Either
// count may fall short of the request; the caller resubmits what was
// not consumed and harvests again for what was not produced.
//
// A null input view signals end of stream: the filter tail is flushed
// and subsequent calls drain buffered output until produced reaches
// zero. Offering further input frames after that is an error until
// Clear; zero-frame calls remain plain harvests.
func (e *Engine) Process(in Memory, inFrames int, out Memory, outFrames int) (consumed, produced int, err error) {
	if e.deleted {
		return 0, 0, ErrDeleted
	}
	if inFrames < 0 || outFrames < 0 {
		return 0, 0, ErrInvalidFrameCount
	}
	if out.IsNull() {
		outFrames = 0
	}

	switch {
	case in.IsNull():
		if !e.flushed {
			// Pad with the filter half-length so the last real input
			// sample can be read at full filter weight.
			for ch := range e.hist {
				for i := 0; i < e.half; i++ {
					e.hist[ch] = append(e.hist[ch], 0)
				}
			}
			e.eos = true
			e.flushed = true
		}

	case e.eos:
		// Offering frames after the stream end is an error, but a
		// zero-frame call is still a plain harvest.
		if inFrames > 0 {
			return 0, 0, ErrInputAfterEOS
		}

	case inFrames > 0 && outFrames > 0:
		// Cap intake so the output buffer bounds the work done per
		// call, net of input already buffered ahead of the read
		// position; unconsumed frames stay with the caller. This keeps
		// the history bounded when the caller's output chunks are
		// small relative to its input supply.
		maxIn := int(math.Ceil(float64(outFrames)*e.maxRatio())) + e.taps
		if backlog := len(e.hist[0]) - int(e.pos) - (e.taps - 1); backlog > 0 {
			maxIn -= backlog
		}
		if maxIn > e.maxChunk {
			maxIn = e.maxChunk
		}
		if maxIn < 0 {
			maxIn = 0
		}
		consumed = inFrames
		if consumed > maxIn {
			consumed = maxIn
		}
		e.appendInput(in, consumed)
	}

	produced = e.generate(outFrames)
	e.writeOutput(out, produced)
	e.compact()

	return consumed, produced, nil
}

// generate schedules up to limit output positions against the current
// history, renders them into the staging buffers, and returns how many
// were produced.
func (e *Engine) generate(limit int) int {
	e.sched = e.sched[:0]
	histLen := len(e.hist[0])
	for len(e.sched) < limit {
		i := int(e.pos)
		if i >= histLen {
			break
		}
		e.sched = append(e.sched, schedEntry{idx: i, frac: e.pos - float64(i)})
		e.advance()
	}

	n := len(e.sched)
	if n == 0 {
		return 0
	}
	e.ensureStage(n)
	e.renderAll(n)
	return n
}

// advance steps the read position by one output frame and applies any
// ratio slew in progress.
func (e *Engine) advance() {
	if e.hiPrec {
		y := e.ioRatio - e.posErr
		t := e.pos + y
		e.posErr = (t - e.pos) - y
		e.pos = t
	} else {
		e.pos += e.ioRatio
	}

	if e.slewLeft > 0 {
		e.ioRatio += e.slewStep
		e.slewLeft--
		if e.slewLeft == 0 {
			e.ioRatio = e.targetRatio
		}
	}
}

func (e *Engine) maxRatio() float64 {
	if e.targetRatio > e.ioRatio {
		return e.targetRatio
	}
	return e.ioRatio
}

func (e *Engine) ensureStage(n int) {
	for ch := range e.stage {
		if cap(e.stage[ch]) < n {
			e.stage[ch] = make([]float64, n)
		}
		e.stage[ch] = e.stage[ch][:n]
	}
}

// renderAll computes the scheduled output samples for every channel,
// fanning out across worker goroutines when configured and the channel
// count warrants it.
func (e *Engine) renderAll(n int) {
	workers := e.threads
	if workers > e.channels {
		workers = e.channels
	}
	if workers <= 1 {
		for ch := 0; ch < e.channels; ch++ {
			e.renderChannel(ch, n)
		}
		return
	}

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for ch := 0; ch < e.channels; ch++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(ch int) {
			defer wg.Done()
			e.renderChannel(ch, n)
			<-sem
		}(ch)
	}
	wg.Wait()
}

// renderChannel evaluates one channel's scheduled positions. Polyphase
// output is a dot product of the history window against the branch
// nearest the fractional position, linearly interpolated between
// adjacent branches when the table is sparse. The cubic path evaluates
// a Catmull-Rom segment instead.
func (e *Engine) renderChannel(ch, n int) {
	hist := e.hist[ch]
	stage := e.stage[ch]

	if e.poly == nil {
		for k, s := range e.sched[:n] {
			i := s.idx
			stage[k] = catmullRom(hist[i-3], hist[i-2], hist[i-1], hist[i], s.frac)
		}
		return
	}

	p := e.poly
	for k, s := range e.sched[:n] {
		w := s.idx - p.taps + 1
		win := hist[w : w+p.taps]

		phi := s.frac * float64(p.phases)
		pi := int(phi)
		if p.interp {
			f := phi - float64(pi)
			d0 := f64.DotProductUnsafe(win, p.branches[pi])
			d1 := f64.DotProductUnsafe(win, p.branches[pi+1])
			stage[k] = d0 + f*(d1-d0)
		} else {
			if phi-float64(pi) >= 0.5 {
				pi++
			}
			stage[k] = f64.DotProductUnsafe(win, p.branches[pi])
		}
	}
}

// catmullRom interpolates between p1 and p2 at fraction f using the
// uniform Catmull-Rom cubic.
func catmullRom(p0, p1, p2, p3, f float64) float64 {
	a := -0.5*p0 + 1.5*p1 - 1.5*p2 + 0.5*p3
	b := p0 - 2.5*p1 + 2*p2 - 0.5*p3
	c := -0.5*p0 + 0.5*p2
	return ((a*f+b)*f+c)*f + p1
}

// compact discards history the read position has permanently passed,
// keeping taps-1 samples of context behind the position.
func (e *Engine) compact() {
	drop := int(e.pos) - (e.taps - 1)
	if drop <= 0 {
		return
	}
	if limit := len(e.hist[0]); drop > limit {
		drop = limit
	}
	for ch := range e.hist {
		h := e.hist[ch]
		n := copy(h, h[drop:])
		e.hist[ch] = h[:n]
	}
	e.pos -= float64(drop)
}

// SetIORatio retargets the input/output ratio, reaching the new value
// gradually over slewFrames output frames. A slew of zero switches
// immediately.
func (e *Engine) SetIORatio(ratio float64, slewFrames int) error {
	if e.deleted {
		return ErrDeleted
	}
	if !(ratio > 0) || math.IsInf(ratio, 0) {
		return ErrInvalidRatio
	}
	if slewFrames < 0 {
		return ErrInvalidFrameCount
	}

	e.targetRatio = ratio
	if slewFrames == 0 {
		e.ioRatio = ratio
		e.slewStep = 0
		e.slewLeft = 0
		return nil
	}
	e.slewStep = (ratio - e.ioRatio) / float64(slewFrames)
	e.slewLeft = slewFrames
	return nil
}

// Clear resets the engine to its just-created state: history and
// position are discarded and the ratio returns to the creation ratio.
// The designed filter is retained.
func (e *Engine) Clear() error {
	if e.deleted {
		return ErrDeleted
	}
	for ch := range e.hist {
		h := e.hist[ch][:0]
		for i := 0; i < e.taps-1; i++ {
			h = append(h, 0)
		}
		e.hist[ch] = h
	}
	e.pos = float64(e.taps - 1 + e.half)
	e.posErr = 0
	e.ioRatio = e.createRatio
	e.targetRatio = e.createRatio
	e.slewStep = 0
	e.slewLeft = 0
	e.eos = false
	e.flushed = false
	return nil
}

// Delete releases the engine's buffers. It never fails and further
// calls are no-ops; other methods report ErrDeleted afterwards.
func (e *Engine) Delete() {
	if e.deleted {
		return
	}
	e.deleted = true
	e.hist = nil
	e.stage = nil
	e.sched = nil
	e.poly = nil
}
