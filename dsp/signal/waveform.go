// Package signal provides the oscillator shapes and noise sources the
// soundscape voices are built from.
package signal

import (
	"fmt"
	"math"
	"strings"
)

// Waveform defines oscillator shape.
type Waveform int

const (
	WaveSine Waveform = iota
	WaveTriangle
	WaveSawtooth
	WaveSquare
)

// String returns the lower-case waveform name.
func (w Waveform) String() string {
	switch w {
	case WaveSine:
		return "sine"
	case WaveTriangle:
		return "triangle"
	case WaveSawtooth:
		return "sawtooth"
	case WaveSquare:
		return "square"
	default:
		return fmt.Sprintf("Waveform(%d)", int(w))
	}
}

// ParseWaveform resolves a waveform name; "saw" is accepted for sawtooth.
func ParseWaveform(name string) (Waveform, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sine":
		return WaveSine, nil
	case "triangle":
		return WaveTriangle, nil
	case "sawtooth", "saw":
		return WaveSawtooth, nil
	case "square":
		return WaveSquare, nil
	default:
		return 0, fmt.Errorf("unsupported waveform: %q", name)
	}
}

// Sample evaluates the waveform at phase in [-pi, pi). Output is in [-1, 1].
func (w Waveform) Sample(phase float64) float64 {
	switch w {
	case WaveTriangle:
		return (2 / math.Pi) * math.Asin(math.Sin(phase))
	case WaveSawtooth:
		return phase / math.Pi
	case WaveSquare:
		if math.Sin(phase) >= 0 {
			return 1
		}
		return -1
	default:
		return math.Sin(phase)
	}
}

// WrapPhase folds phase back into [-pi, pi).
func WrapPhase(phase float64) float64 {
	if phase >= -math.Pi && phase < math.Pi {
		return phase
	}
	phase = math.Mod(phase+math.Pi, 2*math.Pi)
	if phase < 0 {
		phase += 2 * math.Pi
	}
	return phase - math.Pi
}
