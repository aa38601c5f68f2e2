package soundscape

import "math"

const (
	detuneRamp     = 0.2 // seconds
	lfoRateRamp    = 0.5
	chaosThreshold = 1.2
)

// Intensity maps a divergence multiplier to detuning intensity,
// m^2.5 - 1. It is zero at m = 1.
func Intensity(m float64) float64 {
	return math.Pow(m, 2.5) - 1
}

// DetuneCents returns the deterministic detune of voice i for multiplier m,
// before the random flux is added.
func DetuneCents(i int, m float64) float64 {
	return (float64(i) + 0.5) * 50 * Intensity(m)
}

// applyDetuneLocked ramps every live voice toward the detune for the
// current multiplier. Above chaosThreshold the LFO rates are re-randomised
// too. e.mu must be held.
func (e *Engine) applyDetuneLocked() {
	if e.session == nil {
		return
	}

	m := e.params.Dissonance
	intensity := Intensity(m)
	now := e.ctx.CurrentTime()

	for i, v := range e.session.voices {
		flux := e.uniform(-10, 10) * intensity
		v.osc.Detune.RampTo(DetuneCents(i, m)+flux, now, detuneRamp)

		if m > chaosThreshold {
			rate := e.uniform(0.5, 0.5+8*(m-1))
			v.lfo.Frequency.RampTo(rate, now, lfoRateRamp)
		}
	}
}
