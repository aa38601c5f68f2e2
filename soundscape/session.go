package soundscape

import (
	"time"

	"github.com/cwbudde/algo-soundscape/debris"
	"github.com/cwbudde/algo-soundscape/dsp/signal"
)

// VoiceInfo describes one live voice.
type VoiceInfo struct {
	Waveform  signal.Waveform
	Frequency float64 // Hz, before modulation and detune
	Detune    float64 // cents the voice is ramping toward
	LFORate   float64 // Hz the modulator is ramping toward
	Pan       float64
}

// SessionInfo is a snapshot of the engine for display and tests.
type SessionInfo struct {
	Initialized bool
	Active      bool
	Datum       debris.Datum
	Profile     Profile
	Voices      []VoiceInfo

	// CollisionPending reports an outstanding collision timer.
	CollisionPending  bool
	CollisionInterval time.Duration // base interval before jitter

	// Transients counts click and tick buffers not yet released.
	Transients int
}

// Session returns a snapshot of the current session.
func (e *Engine) Session() SessionInfo {
	e.mu.Lock()
	defer e.mu.Unlock()

	info := SessionInfo{
		Initialized: e.ctx != nil,
		Transients:  e.pool.Outstanding(),
	}
	if e.collisions != nil {
		info.CollisionPending = e.collisions.pending()
		info.CollisionInterval = e.collisions.base
	}
	if e.session == nil {
		return info
	}

	info.Active = true
	info.Datum = e.session.datum
	info.Profile = e.session.profile
	info.Voices = make([]VoiceInfo, len(e.session.voices))
	for i, v := range e.session.voices {
		info.Voices[i] = VoiceInfo{
			Waveform:  v.osc.Waveform(),
			Frequency: v.osc.Frequency.Target(),
			Detune:    v.osc.Detune.Target(),
			LFORate:   v.lfo.Frequency.Target(),
			Pan:       v.pan.Pan.Target(),
		}
	}
	return info
}
