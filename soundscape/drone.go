package soundscape

import (
	"github.com/cwbudde/algo-soundscape/debris"
	"github.com/cwbudde/algo-soundscape/dsp/graph"
	"github.com/cwbudde/algo-soundscape/dsp/signal"
)

const attackSeconds = 2.0

// voice is one drone oscillator with its pitch LFO.
//
//	lfo -> depth -> osc.frequency
//	osc -> env -> pan -> shared filter
type voice struct {
	osc   *graph.Oscillator
	lfo   *graph.Oscillator
	depth *graph.Gain
	env   *graph.Gain
	pan   *graph.StereoPanner
}

// release detaches the voice from the filter bus if it is still attached
// and stops both oscillators.
func (v *voice) release(bus *graph.Filter) {
	bus.Disconnect(v.pan)
	v.osc.Stop()
	v.lfo.Stop()
}

type session struct {
	datum   debris.Datum
	profile Profile
	voices  []*voice
}

func (e *Engine) buildVoicesLocked(d debris.Datum, p Profile) []*voice {
	now := e.ctx.CurrentTime()
	depth := ModulationDepth(d.Severity)
	variance := (p.InherentDissonance - 1) * e.params.Dissonance
	peak := p.VoiceGain()

	voices := make([]*voice, p.Voices)
	for i := range voices {
		freq := VoiceFrequency(d.Latitude, i) * (1 + e.uniform(-variance, variance))

		v := &voice{
			osc:   e.ctx.NewOscillator(p.VoiceWaveform(i), freq),
			lfo:   e.ctx.NewOscillator(signal.WaveSine, p.ModulationSpeed*e.uniform(0.5, 1.0)),
			depth: e.ctx.NewGain(depth),
			env:   e.ctx.NewGain(0),
		}
		v.depth.Connect(v.lfo)
		v.osc.SetModulator(v.depth)

		v.env.Gain.SetValueAtTime(0, now)
		v.env.Gain.LinearRampToValueAtTime(peak, now+attackSeconds)
		v.env.Connect(v.osc)

		v.pan = e.ctx.NewStereoPanner(v.env, e.uniform(-1, 1))
		e.filter.Connect(v.pan)

		voices[i] = v
	}
	return voices
}
