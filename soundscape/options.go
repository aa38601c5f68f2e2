package soundscape

import (
	"errors"
	"io"
	"log"

	"github.com/cwbudde/algo-soundscape/dsp/core"
	"github.com/cwbudde/algo-soundscape/dsp/spectrum"
)

// Option configures an Engine.
type Option func(*config) error

type config struct {
	processor    []core.ProcessorOption
	seed         int64
	clock        Clock
	output       Output
	logger       *log.Logger
	analyser     bool
	analyserOpts []spectrum.Option
}

func defaultConfig() config {
	return config{
		seed:     1,
		clock:    wallClock{},
		logger:   log.New(io.Discard, "", 0),
		analyser: true,
	}
}

// WithProcessorOptions sets the render sample rate and block size.
func WithProcessorOptions(opts ...core.ProcessorOption) Option {
	return func(cfg *config) error {
		cfg.processor = append(cfg.processor, opts...)
		return nil
	}
}

// WithSeed seeds the random source behind pitch variance, panning, detune
// flux and collision jitter.
func WithSeed(seed int64) Option {
	return func(cfg *config) error {
		cfg.seed = seed
		return nil
	}
}

// WithClock replaces the wall clock driving the collision loop.
func WithClock(c Clock) Option {
	return func(cfg *config) error {
		if c == nil {
			return errors.New("soundscape: nil clock")
		}
		cfg.clock = c
		return nil
	}
}

// WithOutput attaches an audio device that is opened on Initialize.
func WithOutput(o Output) Option {
	return func(cfg *config) error {
		cfg.output = o
		return nil
	}
}

// WithLogger sets the logger for session and device events.
func WithLogger(l *log.Logger) Option {
	return func(cfg *config) error {
		if l == nil {
			return errors.New("soundscape: nil logger")
		}
		cfg.logger = l
		return nil
	}
}

// WithAnalyser configures the spectrum readback. It is enabled by default.
func WithAnalyser(opts ...spectrum.Option) Option {
	return func(cfg *config) error {
		cfg.analyser = true
		cfg.analyserOpts = append(cfg.analyserOpts, opts...)
		return nil
	}
}

// WithoutAnalyser disables the spectrum readback.
func WithoutAnalyser() Option {
	return func(cfg *config) error {
		cfg.analyser = false
		return nil
	}
}
