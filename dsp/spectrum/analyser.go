package spectrum

import (
	"fmt"
	"math"
	"sync"

	algofft "github.com/MeKo-Christian/algo-fft"
	vecmath "github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-soundscape/dsp/window"
)

const (
	defaultFFTSize   = 2048
	defaultOverlap   = 0.5
	defaultSmoothing = 0.8

	// FloorDB is the value reported before the first frame and for silence.
	FloorDB = -130.0
)

// Option mutates analyser construction parameters.
type Option func(*config) error

type config struct {
	fftSize   int
	overlap   float64
	smoothing float64
	window    window.Type
}

// WithFFTSize sets the analysis frame length. It must be a power of two in
// [256, 8192].
func WithFFTSize(n int) Option {
	return func(cfg *config) error {
		if n < 256 || n > 8192 || n&(n-1) != 0 {
			return fmt.Errorf("analyser fft size must be a power of two in [256, 8192]: %d", n)
		}
		cfg.fftSize = n
		return nil
	}
}

// WithOverlap sets frame overlap in [0, 0.95].
func WithOverlap(overlap float64) Option {
	return func(cfg *config) error {
		if overlap < 0 || overlap > 0.95 || math.IsNaN(overlap) {
			return fmt.Errorf("analyser overlap must be in [0, 0.95]: %f", overlap)
		}
		cfg.overlap = overlap
		return nil
	}
}

// WithWindow selects the analysis window. The default is a 4-term
// Blackman-Harris.
func WithWindow(t window.Type) Option {
	return func(cfg *config) error {
		if t < window.TypeRectangular || t > window.TypeBlackmanHarris4Term {
			return fmt.Errorf("analyser window not supported: %v", t)
		}
		cfg.window = t
		return nil
	}
}

// WithSmoothing sets the time smoothing between frames in [0, 0.95].
func WithSmoothing(smoothing float64) Option {
	return func(cfg *config) error {
		if smoothing < 0 || smoothing > 0.95 || math.IsNaN(smoothing) {
			return fmt.Errorf("analyser smoothing must be in [0, 0.95]: %f", smoothing)
		}
		cfg.smoothing = smoothing
		return nil
	}
}

// Analyser computes a smoothed magnitude spectrum of a sample stream.
// Push and CurveDB may be called from different goroutines.
type Analyser struct {
	mu sync.Mutex

	sampleRate float64
	cfg        config
	hop        int

	plan       *algofft.Plan[complex128]
	window     []float64
	windowGain float64

	ring         []float64
	write        int
	filled       int
	samplesToHop int

	frame    []float64
	input    []complex128
	output   []complex128
	re, im   []float64
	mag      []float64
	db       []float64
	hasFrame bool
}

// NewAnalyser creates an analyser for a stream at sampleRate.
func NewAnalyser(sampleRate float64, opts ...Option) (*Analyser, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("analyser sample rate must be > 0: %f", sampleRate)
	}

	cfg := config{
		fftSize:   defaultFFTSize,
		overlap:   defaultOverlap,
		smoothing: defaultSmoothing,
		window:    window.TypeBlackmanHarris4Term,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	plan, err := algofft.NewPlan64(cfg.fftSize)
	if err != nil {
		return nil, fmt.Errorf("analyser init fft plan: %w", err)
	}

	n := cfg.fftSize
	bins := n/2 + 1
	win := window.Generate(cfg.window, n, window.WithPeriodic())

	hop := int(math.Round(float64(n) * (1 - cfg.overlap)))
	if hop < 1 {
		hop = 1
	}

	a := &Analyser{
		sampleRate: sampleRate,
		cfg:        cfg,
		hop:        hop,
		plan:       plan,
		window:     win,
		windowGain: window.CoherentGain(win),
		ring:       make([]float64, n),
		frame:      make([]float64, n),
		input:      make([]complex128, n),
		output:     make([]complex128, n),
		re:         make([]float64, bins),
		im:         make([]float64, bins),
		mag:        make([]float64, bins),
		db:         make([]float64, bins),
	}
	for i := range a.db {
		a.db[i] = FloorDB
	}
	return a, nil
}

// FFTSize returns the analysis frame length.
func (a *Analyser) FFTSize() int { return a.cfg.fftSize }

// Push appends samples to the analysis stream.
func (a *Analyser) Push(samples []float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, x := range samples {
		a.ring[a.write] = x
		a.write++
		if a.write >= len(a.ring) {
			a.write = 0
		}
		if a.filled < len(a.ring) {
			a.filled++
		}

		a.samplesToHop++
		if a.filled < len(a.ring) || a.samplesToHop < a.hop {
			continue
		}
		a.samplesToHop = 0
		a.updateFrame()
	}
}

// Ready reports whether at least one frame has been analysed.
func (a *Analyser) Ready() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.hasFrame
}

// CurveDB returns the smoothed spectrum in dBFS, linearly interpolated at
// freqs. Before the first frame every value is FloorDB.
func (a *Analyser) CurveDB(freqs []float64) []float64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]float64, len(freqs))
	if !a.hasFrame {
		for i := range out {
			out[i] = FloorDB
		}
		return out
	}

	last := len(a.db) - 1
	binHz := a.sampleRate / float64(a.cfg.fftSize)
	for i, f := range freqs {
		bin := math.Max(0, f) / binHz
		if bin >= float64(last) {
			out[i] = a.db[last]
			continue
		}
		base := int(bin)
		frac := bin - float64(base)
		out[i] = a.db[base] + frac*(a.db[base+1]-a.db[base])
	}
	return out
}

// Reset clears the stream history and the smoothed spectrum.
func (a *Analyser) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()

	for i := range a.ring {
		a.ring[i] = 0
	}
	for i := range a.db {
		a.db[i] = FloorDB
	}
	a.write, a.filled, a.samplesToHop = 0, 0, 0
	a.hasFrame = false
}

func (a *Analyser) updateFrame() {
	const eps = 1e-12

	n := a.cfg.fftSize
	// Unroll the ring oldest-first, then window it.
	copy(a.frame, a.ring[a.write:])
	copy(a.frame[n-a.write:], a.ring[:a.write])
	vecmath.MulBlockInPlace(a.frame, a.window)
	for i, x := range a.frame {
		a.input[i] = complex(x, 0)
	}

	if err := a.plan.Forward(a.output, a.input); err != nil {
		return
	}

	for k := range a.re {
		a.re[k] = real(a.output[k])
		a.im[k] = imag(a.output[k])
	}
	vecmath.Magnitude(a.mag, a.re, a.im)

	norm := float64(n) * math.Max(a.windowGain, eps)
	last := len(a.mag) - 1
	for k, m := range a.mag {
		m /= norm
		if k > 0 && k < last {
			m *= 2
		}
		v := math.Max(FloorDB, 20*math.Log10(math.Max(eps, m)))
		if !a.hasFrame {
			a.db[k] = v
			continue
		}
		s := a.cfg.smoothing
		a.db[k] = s*a.db[k] + (1-s)*v
	}
	a.hasFrame = true
}
