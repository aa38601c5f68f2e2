package graph

import (
	"github.com/cwbudde/algo-soundscape/dsp/core"
	"github.com/cwbudde/algo-soundscape/dsp/param"
)

// StereoPanner places its input in the stereo field with equal-power gains.
// Stereo input is folded to mono first.
type StereoPanner struct {
	ctx   *Context
	input Node
	out   output

	pan []float64

	// Pan is the position in [-1, 1], -1 = hard left.
	Pan *param.Param
}

// NewStereoPanner creates a panner fed by input.
func (c *Context) NewStereoPanner(input Node, pan float64) *StereoPanner {
	return &StereoPanner{
		ctx:   c,
		input: input,
		out:   newOutput(c.cfg.BlockSize),
		pan:   make([]float64, c.cfg.BlockSize),
		Pan:   param.New(pan),
	}
}

// Process implements Node.
func (p *StereoPanner) Process(q Quantum) Block {
	if b, ok := p.out.cached(q); ok {
		return b
	}

	l, r := p.out.stereo(q)
	in := p.input.Process(q)

	pan := p.pan[:q.Frames]
	p.Pan.Fill(pan, q.Time, 1/q.SampleRate)

	for i := range l {
		x := in.L[i]
		if !in.Mono {
			x = 0.5 * (in.L[i] + in.R[i])
		}
		gl, gr := core.EqualPowerPan(pan[i])
		l[i] = x * gl
		r[i] = x * gr
	}

	return p.out.store(q, Block{L: l, R: r})
}
