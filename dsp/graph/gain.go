package graph

import (
	vecmath "github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-soundscape/dsp/param"
)

// Gain sums any number of inputs and scales the mix by an automatable gain.
type Gain struct {
	ctx *Context
	in  inputs
	out output

	curve []float64

	// Gain is the linear gain applied to the summed inputs.
	Gain *param.Param
}

// NewGain creates an unconnected Gain node.
func (c *Context) NewGain(initial float64) *Gain {
	return &Gain{
		ctx:   c,
		out:   newOutput(c.cfg.BlockSize),
		curve: make([]float64, c.cfg.BlockSize),
		Gain:  param.New(initial),
	}
}

// Connect attaches src as an input. It reports false if src was already
// attached.
func (g *Gain) Connect(src Node) bool {
	g.ctx.mu.Lock()
	defer g.ctx.mu.Unlock()

	return g.in.connect(src)
}

// Disconnect detaches src and reports whether it was attached. Detaching a
// node that is not attached is a no-op.
func (g *Gain) Disconnect(src Node) bool {
	g.ctx.mu.Lock()
	defer g.ctx.mu.Unlock()

	return g.in.disconnect(src)
}

// IsConnected reports whether src is currently an input.
func (g *Gain) IsConnected(src Node) bool {
	g.ctx.mu.Lock()
	defer g.ctx.mu.Unlock()

	return g.in.contains(src)
}

// Inputs returns the number of attached inputs.
func (g *Gain) Inputs() int {
	g.ctx.mu.Lock()
	defer g.ctx.mu.Unlock()

	return len(g.in.nodes)
}

// Process implements Node.
func (g *Gain) Process(q Quantum) Block {
	if b, ok := g.out.cached(q); ok {
		return b
	}

	l, r := g.out.stereo(q)
	mono := g.in.mix(q, l, r)

	curve := g.curve[:q.Frames]
	g.Gain.Fill(curve, q.Time, 1/q.SampleRate)
	vecmath.MulBlockInPlace(l, curve)
	if mono {
		copy(r, l)
	} else {
		vecmath.MulBlockInPlace(r, curve)
	}

	return g.out.store(q, Block{L: l, R: r, Mono: mono})
}
