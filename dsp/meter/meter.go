// Package meter provides block-based level metering for display readback.
package meter

import (
	"fmt"
	"math"
	"sync"
)

// MinDB is reported for silence.
const MinDB = -120.0

const (
	defaultIntegration = 0.3 // seconds
	defaultPeakRelease = 1.5 // seconds for 1/e
)

// RMS returns the root-mean-square of the signal.
func RMS(signal []float64) float64 {
	if len(signal) == 0 {
		return 0
	}

	var sumSq float64
	for _, x := range signal {
		sumSq += x * x
	}

	return math.Sqrt(sumSq / float64(len(signal)))
}

// Peak returns the peak absolute amplitude of the signal.
func Peak(signal []float64) float64 {
	peak := 0.0
	for _, x := range signal {
		if a := math.Abs(x); a > peak {
			peak = a
		}
	}

	return peak
}

// AmpToDB converts an amplitude to decibels, floored at MinDB.
func AmpToDB(value float64) float64 {
	a := math.Abs(value)
	if a == 0 {
		return MinDB
	}

	return math.Max(MinDB, 20*math.Log10(a))
}

// Levels is a stereo level snapshot in dBFS. Index 0 is left.
type Levels struct {
	PeakDB [2]float64
	RMSDB  [2]float64
}

// Option configures a Meter.
type Option func(*config) error

type config struct {
	integration float64
	peakRelease float64
}

// WithIntegration sets the RMS time constant in seconds.
func WithIntegration(seconds float64) Option {
	return func(cfg *config) error {
		if seconds <= 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
			return fmt.Errorf("meter integration must be > 0: %f", seconds)
		}
		cfg.integration = seconds
		return nil
	}
}

// WithPeakRelease sets the peak fall-back time constant in seconds.
func WithPeakRelease(seconds float64) Option {
	return func(cfg *config) error {
		if seconds <= 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
			return fmt.Errorf("meter peak release must be > 0: %f", seconds)
		}
		cfg.peakRelease = seconds
		return nil
	}
}

// Meter tracks smoothed RMS and decaying peak levels of a stereo stream.
// Update and Levels may be called from different goroutines.
type Meter struct {
	mu sync.Mutex

	sampleRate float64
	cfg        config

	meanSquare [2]float64
	peak       [2]float64
}

// New creates a meter for a stream at sampleRate.
func New(sampleRate float64, opts ...Option) (*Meter, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("meter sample rate must be > 0: %f", sampleRate)
	}

	cfg := config{integration: defaultIntegration, peakRelease: defaultPeakRelease}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	return &Meter{sampleRate: sampleRate, cfg: cfg}, nil
}

// Update folds one block per channel into the running levels.
func (m *Meter) Update(left, right []float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for ch, block := range [2][]float64{left, right} {
		n := float64(len(block))
		if n == 0 {
			continue
		}

		a := math.Exp(-n / (m.cfg.integration * m.sampleRate))
		rms := RMS(block)
		m.meanSquare[ch] = a*m.meanSquare[ch] + (1-a)*rms*rms

		decay := math.Exp(-n / (m.cfg.peakRelease * m.sampleRate))
		m.peak[ch] = math.Max(Peak(block), m.peak[ch]*decay)
	}
}

// Levels returns the current levels.
func (m *Meter) Levels() Levels {
	m.mu.Lock()
	defer m.mu.Unlock()

	var l Levels
	for ch := range l.PeakDB {
		l.PeakDB[ch] = AmpToDB(m.peak[ch])
		l.RMSDB[ch] = AmpToDB(math.Sqrt(m.meanSquare[ch]))
	}
	return l
}

// Reset clears the running levels.
func (m *Meter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.meanSquare = [2]float64{}
	m.peak = [2]float64{}
}
