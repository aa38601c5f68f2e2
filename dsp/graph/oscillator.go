package graph

import (
	"math"

	"github.com/cwbudde/algo-soundscape/dsp/core"
	"github.com/cwbudde/algo-soundscape/dsp/param"
	"github.com/cwbudde/algo-soundscape/dsp/signal"
)

// Oscillator is a mono periodic source. Its instantaneous frequency is
//
//	(Frequency + modulator) * 2^(Detune/1200)
//
// where modulator is the optional audio-rate input set via SetModulator.
type Oscillator struct {
	ctx *Context
	out output

	waveform  signal.Waveform
	phase     float64
	stopped   bool
	modulator Node

	freq, detune []float64

	Frequency *param.Param // Hz
	Detune    *param.Param // cents
}

// NewOscillator creates a running oscillator.
func (c *Context) NewOscillator(w signal.Waveform, freqHz float64) *Oscillator {
	return &Oscillator{
		ctx:       c,
		out:       newOutput(c.cfg.BlockSize),
		waveform:  w,
		freq:      make([]float64, c.cfg.BlockSize),
		detune:    make([]float64, c.cfg.BlockSize),
		Frequency: param.New(freqHz),
		Detune:    param.New(0),
	}
}

// Waveform returns the oscillator shape.
func (o *Oscillator) Waveform() signal.Waveform { return o.waveform }

// SetModulator routes n into the frequency input; nil removes it.
func (o *Oscillator) SetModulator(n Node) {
	o.ctx.mu.Lock()
	defer o.ctx.mu.Unlock()

	o.modulator = n
}

// Stop silences the oscillator permanently and drops its modulator.
func (o *Oscillator) Stop() {
	o.ctx.mu.Lock()
	defer o.ctx.mu.Unlock()

	o.stopped = true
	o.modulator = nil
}

// Stopped reports whether Stop was called.
func (o *Oscillator) Stopped() bool {
	o.ctx.mu.Lock()
	defer o.ctx.mu.Unlock()

	return o.stopped
}

// Process implements Node.
func (o *Oscillator) Process(q Quantum) Block {
	if b, ok := o.out.cached(q); ok {
		return b
	}

	buf := o.out.mono(q)
	if o.stopped {
		core.Zero(buf)
		return o.out.store(q, Block{L: buf, R: buf, Mono: true})
	}

	dt := 1 / q.SampleRate
	freq := o.freq[:q.Frames]
	detune := o.detune[:q.Frames]
	o.Frequency.Fill(freq, q.Time, dt)
	o.Detune.Fill(detune, q.Time, dt)

	var mod []float64
	if o.modulator != nil {
		mod = o.modulator.Process(q).L
	}

	for i := range buf {
		f := freq[i]
		if mod != nil {
			f += mod[i]
		}
		if detune[i] != 0 {
			f *= core.CentsToRatio(detune[i])
		}

		buf[i] = o.waveform.Sample(o.phase)
		o.phase = signal.WrapPhase(o.phase + 2*math.Pi*f*dt)
	}

	return o.out.store(q, Block{L: buf, R: buf, Mono: true})
}
