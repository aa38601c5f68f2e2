package soundscape

import (
	"math"

	"github.com/cwbudde/algo-soundscape/dsp/buffer"
	"github.com/cwbudde/algo-soundscape/dsp/core"
	"github.com/cwbudde/algo-soundscape/dsp/filter/biquad"
	"github.com/cwbudde/algo-soundscape/dsp/filter/design"
	"github.com/cwbudde/algo-soundscape/dsp/graph"
	"github.com/cwbudde/algo-soundscape/dsp/param"
	"github.com/cwbudde/algo-soundscape/dsp/signal"
)

// transient is a one-shot band-passed noise burst. Its noise buffer is
// leased from the engine pool and returned when the mixer releases the
// finished node.
type transient struct {
	noise   *buffer.Buffer
	pos     int
	section *biquad.Section
	env     *param.Param

	mono   bool
	gl, gr float64

	l, r    []float64
	curve   []float64
	quantum uint64
	block   graph.Block
}

// Process implements graph.Node.
func (t *transient) Process(q graph.Quantum) graph.Block {
	if t.quantum == q.Index {
		return t.block
	}

	t.l = core.EnsureLen(t.l, q.Frames)
	t.curve = core.EnsureLen(t.curve, q.Frames)
	t.env.Fill(t.curve, q.Time, 1/q.SampleRate)

	var samples []float64
	if t.noise != nil {
		samples = t.noise.Samples()
	}
	for i := range t.l {
		if t.pos >= len(samples) {
			t.l[i] = 0
			continue
		}
		t.l[i] = t.section.ProcessSample(samples[t.pos]) * t.curve[i]
		t.pos++
	}

	if t.mono {
		t.block = graph.Block{L: t.l, R: t.l, Mono: true}
	} else {
		t.r = core.EnsureLen(t.r, q.Frames)
		for i, x := range t.l {
			t.r[i] = x * t.gr
			t.l[i] = x * t.gl
		}
		t.block = graph.Block{L: t.l, R: t.r}
	}
	t.quantum = q.Index
	return t.block
}

// Finished implements graph.Finisher.
func (t *transient) Finished() bool {
	return t.noise == nil || t.pos >= t.noise.Len()
}

// Release implements graph.Finisher.
func (t *transient) Release() {
	if t.noise != nil {
		t.noise.Release()
		t.noise = nil
	}
}

// newTransientLocked leases and fills a noise buffer of the given length.
// e.mu must be held.
func (e *Engine) newTransientLocked(seconds, centerHz, q float64) *transient {
	sr := e.ctx.SampleRate()
	n := int(math.Round(seconds * sr))

	noise := e.pool.Get(n)
	if err := signal.WhiteNoise(noise.Samples(), 1, e.rng); err != nil {
		e.logger.Printf("soundscape: transient noise: %v", err)
	}

	return &transient{
		noise:   noise,
		section: biquad.NewSection(design.Bandpass(centerHz, q, sr)),
		mono:    true,
	}
}

// emitSelectionTickLocked plays the short feedback tick on the dry master.
func (e *Engine) emitSelectionTickLocked() {
	t := e.newTransientLocked(0.020, 2500, 1)

	now := e.ctx.CurrentTime()
	t.env = param.New(0.3)
	t.env.SetValueAtTime(0.3, now)
	t.env.ExponentialRampToValueAtTime(0.01, now+0.020)

	e.master.Connect(t)
}

// ClickBand returns the range the band-pass centre of a collision click at
// intensity x is drawn from. Denser records click higher.
func ClickBand(x float64) (lo, hi float64) {
	return 1000 + x*2000, 3000 + x*2000
}

// ClickQ returns the band-pass Q of a collision click at intensity x.
func ClickQ(x float64) float64 {
	return 5 + x*5
}

// emitClickLocked plays one collision click into the shared filter.
func (e *Engine) emitClickLocked(intensity float64) {
	lo, hi := ClickBand(intensity)
	t := e.newTransientLocked(0.050, e.uniform(lo, hi), ClickQ(intensity))

	t.mono = false
	t.gl, t.gr = core.EqualPowerPan(e.uniform(-1, 1))

	now := e.ctx.CurrentTime()
	t.env = param.New(0)
	t.env.SetValueAtTime(0, now)
	t.env.LinearRampToValueAtTime(0.05, now+0.005)
	t.env.ExponentialRampToValueAtTime(0.001, now+0.040)

	e.filter.Connect(t)
}
