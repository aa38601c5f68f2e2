package graph

import (
	"github.com/cwbudde/algo-soundscape/dsp/filter/biquad"
	"github.com/cwbudde/algo-soundscape/dsp/filter/design"
	"github.com/cwbudde/algo-soundscape/dsp/param"
)

// FilterType selects the biquad response.
type FilterType int

const (
	Lowpass FilterType = iota
	Bandpass
)

// Filter sums its inputs and runs them through a stereo biquad. Frequency
// and Q are k-rate: they are sampled once at the start of every quantum.
type Filter struct {
	ctx *Context
	in  inputs
	out output

	typ         FilterType
	left, right *biquad.Section
	designed    [2]float64 // frequency and Q of the current coefficients

	Frequency *param.Param // Hz
	Q         *param.Param
}

// NewFilter creates an unconnected filter.
func (c *Context) NewFilter(typ FilterType, freqHz, q float64) *Filter {
	f := &Filter{
		ctx:       c,
		out:       newOutput(c.cfg.BlockSize),
		typ:       typ,
		left:      biquad.NewSection(biquad.Coefficients{}),
		right:     biquad.NewSection(biquad.Coefficients{}),
		Frequency: param.New(freqHz),
		Q:         param.New(q),
	}
	f.redesign(freqHz, q)
	return f
}

// Connect attaches src as an input. It reports false if src was already
// attached.
func (f *Filter) Connect(src Node) bool {
	f.ctx.mu.Lock()
	defer f.ctx.mu.Unlock()

	return f.in.connect(src)
}

// Disconnect detaches src and reports whether it was attached.
func (f *Filter) Disconnect(src Node) bool {
	f.ctx.mu.Lock()
	defer f.ctx.mu.Unlock()

	return f.in.disconnect(src)
}

// IsConnected reports whether src is currently an input.
func (f *Filter) IsConnected(src Node) bool {
	f.ctx.mu.Lock()
	defer f.ctx.mu.Unlock()

	return f.in.contains(src)
}

// Inputs returns the number of attached inputs.
func (f *Filter) Inputs() int {
	f.ctx.mu.Lock()
	defer f.ctx.mu.Unlock()

	return len(f.in.nodes)
}

// Coefficients returns the coefficients currently in use.
func (f *Filter) Coefficients() biquad.Coefficients {
	f.ctx.mu.Lock()
	defer f.ctx.mu.Unlock()

	return f.left.Coefficients
}

// Process implements Node.
func (f *Filter) Process(q Quantum) Block {
	if b, ok := f.out.cached(q); ok {
		return b
	}

	l, r := f.out.stereo(q)
	mono := f.in.mix(q, l, r)

	freq := f.Frequency.ValueAt(q.Time)
	qv := f.Q.ValueAt(q.Time)
	end := q.SampleTime(q.Frames)
	f.Frequency.Advance(end)
	f.Q.Advance(end)
	if freq != f.designed[0] || qv != f.designed[1] {
		f.redesign(freq, qv)
	}

	f.left.ProcessBlock(l)
	f.right.ProcessBlock(r)

	return f.out.store(q, Block{L: l, R: r, Mono: mono})
}

func (f *Filter) redesign(freq, q float64) {
	var c biquad.Coefficients
	switch f.typ {
	case Bandpass:
		c = design.Bandpass(freq, q, f.ctx.cfg.SampleRate)
	default:
		c = design.Lowpass(freq, q, f.ctx.cfg.SampleRate)
	}
	f.left.SetCoefficients(c)
	f.right.SetCoefficients(c)
	f.designed = [2]float64{freq, q}
}
