package soundscape

import (
	"github.com/cwbudde/algo-soundscape/debris"
	"github.com/cwbudde/algo-soundscape/dsp/signal"
)

// Profile holds the synthesis parameters derived from a severity tier.
type Profile struct {
	Voices   int
	Waveform signal.Waveform

	// InherentDissonance bounds the random pitch variance of each voice:
	// the variance is (InherentDissonance-1) times the user multiplier.
	InherentDissonance float64

	// ModulationSpeed is the nominal LFO rate in Hz.
	ModulationSpeed float64
}

var profiles = [...]Profile{
	debris.Low:      {Voices: 3, Waveform: signal.WaveSine, InherentDissonance: 1.001, ModulationSpeed: 0.05},
	debris.Moderate: {Voices: 4, Waveform: signal.WaveTriangle, InherentDissonance: 1.02, ModulationSpeed: 0.5},
	debris.High:     {Voices: 6, Waveform: signal.WaveSawtooth, InherentDissonance: 1.10, ModulationSpeed: 2.0},
	debris.Critical: {Voices: 8, Waveform: signal.WaveSawtooth, InherentDissonance: 1.25, ModulationSpeed: 8.0},
}

// ProfileFor returns the profile of a tier. Unknown tiers map to Low.
func ProfileFor(s debris.Severity) Profile {
	if s < debris.Low || s > debris.Critical {
		s = debris.Low
	}
	return profiles[s]
}

// ModulationDepth returns the LFO pitch deviation in Hz for a tier.
func ModulationDepth(s debris.Severity) float64 {
	if s == debris.Critical {
		return 250
	}
	return 50
}

// VoiceWaveform returns the waveform of voice i: even voices use the
// profile waveform, odd voices a sine.
func (p Profile) VoiceWaveform(i int) signal.Waveform {
	if i%2 == 0 {
		return p.Waveform
	}
	return signal.WaveSine
}

// VoiceGain returns the envelope peak of each voice, scaled so the whole
// ensemble peaks near 0.1 regardless of its size.
func (p Profile) VoiceGain() float64 {
	return 0.1 / float64(p.Voices)
}

// BaseFrequency returns the drone root in Hz for a latitude.
func BaseFrequency(latitude float64) float64 {
	return 100 + 10*(latitude-32)
}

// VoiceFrequency returns the unperturbed frequency of voice i.
func VoiceFrequency(latitude float64, i int) float64 {
	return BaseFrequency(latitude) * (1 + 0.5*float64(i))
}
