package graph

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-soundscape/dsp/core"
	"github.com/cwbudde/algo-soundscape/dsp/delay"
	"github.com/cwbudde/algo-soundscape/dsp/param"
)

// Echo is a feedback delay send/return. It reads its input, feeds
// input + delayed*Feedback back into the delay line and outputs only the
// wet signal, delayed*Wet, for mixing next to the dry path.
type Echo struct {
	ctx   *Context
	input Node
	out   output

	delaySamples int
	left, right  *delay.Line

	fb, wet []float64

	Feedback *param.Param
	Wet      *param.Param
}

// NewEcho creates an echo return fed by input with a fixed delay time.
func (c *Context) NewEcho(input Node, delaySeconds, feedback, wet float64) (*Echo, error) {
	if delaySeconds <= 0 || math.IsNaN(delaySeconds) || math.IsInf(delaySeconds, 0) {
		return nil, fmt.Errorf("echo delay must be > 0: %f", delaySeconds)
	}

	n := int(math.Round(delaySeconds * c.cfg.SampleRate))
	if n < 1 {
		n = 1
	}
	left, err := delay.New(n)
	if err != nil {
		return nil, fmt.Errorf("echo left line: %w", err)
	}
	right, err := delay.New(n)
	if err != nil {
		return nil, fmt.Errorf("echo right line: %w", err)
	}

	return &Echo{
		ctx:          c,
		input:        input,
		out:          newOutput(c.cfg.BlockSize),
		delaySamples: n,
		left:         left,
		right:        right,
		fb:           make([]float64, c.cfg.BlockSize),
		wet:          make([]float64, c.cfg.BlockSize),
		Feedback:     param.New(feedback),
		Wet:          param.New(wet),
	}, nil
}

// DelaySamples returns the delay length in frames.
func (e *Echo) DelaySamples() int { return e.delaySamples }

// Process implements Node.
func (e *Echo) Process(q Quantum) Block {
	if b, ok := e.out.cached(q); ok {
		return b
	}

	l, r := e.out.stereo(q)
	in := e.input.Process(q)

	dt := 1 / q.SampleRate
	fb := e.fb[:q.Frames]
	wet := e.wet[:q.Frames]
	e.Feedback.Fill(fb, q.Time, dt)
	e.Wet.Fill(wet, q.Time, dt)

	for i := range l {
		dl := e.left.Read(e.delaySamples)
		dr := e.right.Read(e.delaySamples)
		e.left.Write(core.FlushDenormals(in.L[i] + dl*fb[i]))
		e.right.Write(core.FlushDenormals(in.R[i] + dr*fb[i]))
		l[i] = dl * wet[i]
		r[i] = dr * wet[i]
	}

	return e.out.store(q, Block{L: l, R: r, Mono: in.Mono})
}
