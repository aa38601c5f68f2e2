package soundscape

import "github.com/cwbudde/algo-soundscape/dsp/core"

const (
	controlRamp = 0.1 // seconds

	minCutoff = 100.0
	maxCutoff = 20000.0
)

// EffectParameters are the listener-controlled values.
type EffectParameters struct {
	Volume         float64 // master gain, [0, 1]
	FilterOpenness float64 // [0, 1], mapped by FilterCutoff
	Dissonance     float64 // divergence multiplier, [0.5, 2.5], 1 = profile default
}

// DefaultEffectParameters returns the values in effect before any control
// change.
func DefaultEffectParameters() EffectParameters {
	return EffectParameters{Volume: 0.5, FilterOpenness: 1, Dissonance: 1}
}

// FilterCutoff maps filter openness x to a cutoff in Hz,
// 100 * (20000/100)^x.
func FilterCutoff(x float64) float64 {
	return core.ExpMap(x, minCutoff, maxCutoff)
}

// Parameters returns the current control values.
func (e *Engine) Parameters() EffectParameters {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.params
}

// SetVolume ramps the master gain to v over 100 ms. Values are not
// validated.
func (e *Engine) SetVolume(v float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.params.Volume = v
	if e.ctx == nil {
		return
	}
	e.master.Gain.RampTo(v, e.ctx.CurrentTime(), controlRamp)
}

// SetFilterFrequency ramps the shared low-pass cutoff to FilterCutoff(x)
// over 100 ms.
func (e *Engine) SetFilterFrequency(x float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.params.FilterOpenness = x
	if e.ctx == nil {
		return
	}
	e.filter.Frequency.ExponentialRampTo(FilterCutoff(x), e.ctx.CurrentTime(), controlRamp)
}

// SetDissonance stores the divergence multiplier and retunes live voices.
func (e *Engine) SetDissonance(m float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.params.Dissonance = m
	if e.ctx == nil {
		return
	}
	e.applyDetuneLocked()
}
