// Package control exposes an engine over a websocket so a map or UI front
// end can drive it. Each text message is one JSON command; the server
// answers every command with a state message.
package control

import (
	"fmt"
	"log"
	"math"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/cwbudde/algo-soundscape/debris"
	"github.com/cwbudde/algo-soundscape/dsp/core"
	"github.com/cwbudde/algo-soundscape/soundscape"
)

// Command ops.
const (
	OpInit       = "init"
	OpPlay       = "play"
	OpStop       = "stop"
	OpVolume     = "volume"
	OpFilter     = "filter"
	OpDissonance = "dissonance"
	OpState      = "state"
	OpSpectrum   = "spectrum"
)

// Command is a client request.
type Command struct {
	Op     string  `json:"op"`
	Record string  `json:"record,omitempty"`
	Value  float64 `json:"value,omitempty"`
}

// State is the reply to every command.
type State struct {
	Type        string    `json:"type"`
	Error       string    `json:"error,omitempty"`
	Initialized bool      `json:"initialized"`
	Active      bool      `json:"active"`
	Record      string    `json:"record,omitempty"`
	Severity    string    `json:"severity,omitempty"`
	Voices      int       `json:"voices"`
	IntervalMS  float64   `json:"collisionIntervalMs,omitempty"`
	Volume      float64   `json:"volume"`
	Filter      float64   `json:"filter"`
	CutoffHz    float64   `json:"cutoffHz"`
	Dissonance  float64   `json:"dissonance"`
	PeakDB      []float64 `json:"peakDb"`
	RMSDB       []float64 `json:"rmsDb"`
	SpectrumHz  []float64 `json:"spectrumHz,omitempty"`
	SpectrumDB  []float64 `json:"spectrumDb,omitempty"`
}

// Handler serves the control websocket.
type Handler struct {
	engine   *soundscape.Engine
	records  map[string]debris.Datum
	logger   *log.Logger
	upgrader websocket.Upgrader
}

// NewHandler returns a handler driving engine with the given records.
func NewHandler(engine *soundscape.Engine, records []debris.Datum, logger *log.Logger) *Handler {
	byID := make(map[string]debris.Datum, len(records))
	for _, r := range records {
		byID[r.ID] = r
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{
		engine:  engine,
		records: byID,
		logger:  logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// ServeHTTP upgrades the request and processes commands until the client
// disconnects.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("control: upgrade: %v", err)
		return
	}
	defer conn.Close()

	h.logger.Printf("control: client %s connected", r.RemoteAddr)
	for {
		var cmd Command
		if err := conn.ReadJSON(&cmd); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Printf("control: read: %v", err)
			}
			return
		}

		if err := conn.WriteJSON(h.Apply(cmd)); err != nil {
			h.logger.Printf("control: write: %v", err)
			return
		}
	}
}

// Apply executes one command and returns the resulting state. Control
// values are clamped to their documented ranges before reaching the engine.
func (h *Handler) Apply(cmd Command) State {
	var cmdErr error
	switch cmd.Op {
	case OpInit:
		h.engine.Initialize()
	case OpPlay:
		d, ok := h.records[cmd.Record]
		if !ok {
			cmdErr = fmt.Errorf("unknown record %q", cmd.Record)
			break
		}
		h.engine.PlayData(d)
	case OpStop:
		h.engine.StopAll()
	case OpVolume:
		h.engine.SetVolume(clamp(cmd.Value, 0, 1))
	case OpFilter:
		h.engine.SetFilterFrequency(clamp(cmd.Value, 0, 1))
	case OpDissonance:
		h.engine.SetDissonance(clamp(cmd.Value, 0.5, 2.5))
	case OpState, OpSpectrum:
	default:
		cmdErr = fmt.Errorf("unknown op %q", cmd.Op)
	}

	st := h.state(cmd.Op == OpSpectrum)
	if cmdErr != nil {
		st.Error = cmdErr.Error()
	}
	return st
}

func (h *Handler) state(withSpectrum bool) State {
	s := h.engine.Session()
	p := h.engine.Parameters()

	st := State{
		Type:        "state",
		Initialized: s.Initialized,
		Active:      s.Active,
		Voices:      len(s.Voices),
		Volume:      p.Volume,
		Filter:      p.FilterOpenness,
		CutoffHz:    soundscape.FilterCutoff(p.FilterOpenness),
		Dissonance:  p.Dissonance,
	}
	lv := h.engine.Levels()
	st.PeakDB = lv.PeakDB[:]
	st.RMSDB = lv.RMSDB[:]

	if s.Active {
		st.Record = s.Datum.ID
		st.Severity = s.Datum.Severity.String()
		st.IntervalMS = float64(s.CollisionInterval.Microseconds()) / 1000
	}
	if withSpectrum {
		st.SpectrumHz = spectrumFrequencies(48)
		st.SpectrumDB = h.engine.SpectrumDB(st.SpectrumHz)
	}
	return st
}

// spectrumFrequencies returns n log-spaced display frequencies from 20 Hz
// to 20 kHz.
func spectrumFrequencies(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = core.ExpMap(float64(i)/float64(n-1), 20, 20000)
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return core.Clamp(v, lo, hi)
}
