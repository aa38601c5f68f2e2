package soundscape

import (
	"fmt"
	"log"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/cwbudde/algo-soundscape/debris"
	"github.com/cwbudde/algo-soundscape/dsp/buffer"
	"github.com/cwbudde/algo-soundscape/dsp/core"
	"github.com/cwbudde/algo-soundscape/dsp/graph"
	"github.com/cwbudde/algo-soundscape/dsp/meter"
	"github.com/cwbudde/algo-soundscape/dsp/spectrum"
)

const (
	echoDelay    = 0.4 // seconds
	echoFeedback = 0.4
	echoWet      = 0.25

	filterQ = math.Sqrt2 / 2
)

// Output is an audio device that pulls frames from a graph context.
type Output interface {
	Open(ctx *graph.Context) error
	Resume() error
	Close() error
}

// Engine is the soundscape synthesis engine. All methods are safe for
// concurrent use.
type Engine struct {
	mu sync.Mutex

	cfg      config
	logger   *log.Logger
	rng      *rand.Rand
	pool     *buffer.Pool
	analyser *spectrum.Analyser
	meter    *meter.Meter
	procCfg  core.ProcessorConfig

	params EffectParameters

	ctx    *graph.Context
	master *graph.Gain
	filter *graph.Filter
	echo   *graph.Echo
	opened bool
	closed bool

	session    *session
	collisions *collisionLoop
}

// New creates an uninitialised engine. No audio is produced until
// Initialize.
func New(opts ...Option) (*Engine, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	proc := core.ApplyProcessorOptions(cfg.processor...)
	e := &Engine{
		cfg:     cfg,
		logger:  cfg.logger,
		rng:     rand.New(rand.NewSource(cfg.seed)),
		pool:    buffer.NewPool(),
		procCfg: proc,
		params:  DefaultEffectParameters(),
	}

	m, err := meter.New(proc.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("soundscape: %w", err)
	}
	e.meter = m

	if cfg.analyser {
		a, err := spectrum.NewAnalyser(proc.SampleRate, cfg.analyserOpts...)
		if err != nil {
			return nil, fmt.Errorf("soundscape: %w", err)
		}
		e.analyser = a
	}
	return e, nil
}

// Initialize builds the persistent graph on the first call and resumes
// rendering. Later calls only resume a suspended context.
func (e *Engine) Initialize() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}
	if e.ctx == nil {
		if err := e.buildGraphLocked(); err != nil {
			e.logger.Printf("soundscape: build graph: %v", err)
			return
		}
	}

	if e.ctx.State() == graph.StateSuspended {
		if err := e.ctx.Resume(); err != nil {
			e.logger.Printf("soundscape: resume: %v", err)
		}
	}
	if e.cfg.output != nil {
		if !e.opened {
			if err := e.cfg.output.Open(e.ctx); err != nil {
				e.logger.Printf("soundscape: open output: %v", err)
				return
			}
			e.opened = true
		}
		if err := e.cfg.output.Resume(); err != nil {
			e.logger.Printf("soundscape: resume output: %v", err)
		}
	}
}

func (e *Engine) buildGraphLocked() error {
	ctx, err := graph.NewContext(core.WithSampleRate(e.procCfg.SampleRate), core.WithBlockSize(e.procCfg.BlockSize))
	if err != nil {
		return err
	}

	master := ctx.NewGain(e.params.Volume)
	filter := ctx.NewFilter(graph.Lowpass, FilterCutoff(e.params.FilterOpenness), filterQ)
	echo, err := ctx.NewEcho(filter, echoDelay, echoFeedback, echoWet)
	if err != nil {
		return err
	}

	master.Connect(filter)
	master.Connect(echo)
	ctx.Destination().Connect(master)

	a, m := e.analyser, e.meter
	var mono []float64
	ctx.SetTap(func(b graph.Block) {
		m.Update(b.L, b.R)
		if a == nil {
			return
		}
		mono = core.EnsureLen(mono, len(b.L))
		for i := range mono {
			mono[i] = 0.5 * (b.L[i] + b.R[i])
		}
		a.Push(mono)
	})

	e.ctx, e.master, e.filter, e.echo = ctx, master, filter, echo
	return nil
}

// Initialized reports whether the graph exists.
func (e *Engine) Initialized() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.ctx != nil
}

// PlayData starts a new session for d, replacing any current one. The
// order is fixed: stop the old session, tick, build voices, apply a
// non-default divergence, start the collision loop.
func (e *Engine) PlayData(d debris.Datum) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.ctx == nil || e.closed {
		return
	}

	e.stopLocked()
	e.emitSelectionTickLocked()

	profile := ProfileFor(d.Severity)
	e.session = &session{
		datum:   d,
		profile: profile,
		voices:  e.buildVoicesLocked(d, profile),
	}

	if e.params.Dissonance != 1.0 {
		e.applyDetuneLocked()
	}

	e.startCollisionsLocked(d.Density)

	e.logger.Printf("soundscape: session %q severity=%v density=%.1f voices=%d",
		d.ID, d.Severity, d.Density, profile.Voices)
}

// StopAll ends the current session. In-flight transients play out and
// release themselves. Idempotent.
func (e *Engine) StopAll() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.stopLocked()
}

func (e *Engine) stopLocked() {
	if e.collisions != nil {
		e.collisions.cancel()
		e.collisions = nil
	}
	if e.session == nil {
		return
	}
	for _, v := range e.session.voices {
		v.release(e.filter)
	}
	e.session = nil
}

func (e *Engine) startCollisionsLocked(density float64) {
	loop := newCollisionLoop(e.cfg.clock, density, e.collisionTick)
	e.collisions = loop
	e.emitClickLocked(loop.intensity)
	loop.start(e.jitterLocked(loop.base))
}

// collisionTick runs on the clock goroutine.
func (e *Engine) collisionTick(l *collisionLoop) (time.Duration, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.collisions != l || !l.active() {
		return 0, false
	}
	e.emitClickLocked(l.intensity)
	return e.jitterLocked(l.base), true
}

func (e *Engine) jitterLocked(base time.Duration) time.Duration {
	return time.Duration(float64(base) * e.uniform(0.5, 1.5))
}

// uniform returns a value in [lo, hi). e.mu must be held.
func (e *Engine) uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*e.rng.Float64()
}

// Render pulls interleaved stereo frames from the graph. Before Initialize
// it writes silence.
func (e *Engine) Render(dst []float32) {
	e.mu.Lock()
	ctx := e.ctx
	e.mu.Unlock()

	if ctx == nil {
		for i := range dst {
			dst[i] = 0
		}
		return
	}
	ctx.Render(dst)
}

// SpectrumDB returns the smoothed output spectrum in dBFS at freqs, or nil
// when the analyser is disabled.
func (e *Engine) SpectrumDB(freqs []float64) []float64 {
	if e.analyser == nil {
		return nil
	}
	return e.analyser.CurveDB(freqs)
}

// Levels returns the smoothed output levels.
func (e *Engine) Levels() meter.Levels {
	return e.meter.Levels()
}

// Close ends the session, stops rendering and closes the output device.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.stopLocked()
	e.closed = true

	if e.ctx != nil {
		e.ctx.Close()
	}
	if e.cfg.output != nil && e.opened {
		return e.cfg.output.Close()
	}
	return nil
}
