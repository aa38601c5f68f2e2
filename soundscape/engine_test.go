package soundscape

import (
	"bytes"
	"errors"
	"log"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/cwbudde/algo-soundscape/debris"
	"github.com/cwbudde/algo-soundscape/dsp/core"
	"github.com/cwbudde/algo-soundscape/dsp/graph"
	"github.com/cwbudde/algo-soundscape/dsp/meter"
	"github.com/cwbudde/algo-soundscape/dsp/signal"
	"github.com/cwbudde/algo-soundscape/dsp/spectrum"
	"github.com/cwbudde/algo-soundscape/internal/testutil"
)

func newTestEngine(t *testing.T, opts ...Option) (*Engine, *fakeClock) {
	t.Helper()

	clock := &fakeClock{}
	opts = append([]Option{
		WithClock(clock),
		WithSeed(7),
		WithProcessorOptions(core.WithSampleRate(48000), core.WithBlockSize(128)),
	}, opts...)

	e, err := New(opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = e.Close() })
	return e, clock
}

func record(sev debris.Severity, density float64) debris.Datum {
	return debris.Datum{ID: sev.String(), Severity: sev, Density: density, Latitude: 40}
}

// settle renders long enough for every in-flight transient to finish and
// be released by its mixer.
func settle(e *Engine) {
	e.ctx.RenderSeconds(0.1)
}

func TestNewRejectsInvalidOptions(t *testing.T) {
	if _, err := New(WithClock(nil)); err == nil {
		t.Fatal("expected error for nil clock")
	}
	if _, err := New(WithAnalyser(spectrum.WithFFTSize(3))); err == nil {
		t.Fatal("expected error for invalid analyser size")
	}
}

func TestOperationsBeforeInitialize(t *testing.T) {
	e, clock := newTestEngine(t)

	e.PlayData(record(debris.High, 100))
	e.StopAll()
	e.SetVolume(0.2)
	e.SetFilterFrequency(0)
	e.SetDissonance(2)

	s := e.Session()
	if s.Initialized || s.Active || s.CollisionPending {
		t.Fatalf("uninitialised engine has state: %+v", s)
	}
	if clock.Pending() != 0 {
		t.Fatal("collision scheduled before Initialize")
	}

	want := EffectParameters{Volume: 0.2, FilterOpenness: 0, Dissonance: 2}
	if got := e.Parameters(); got != want {
		t.Fatalf("parameters: got %+v want %+v", got, want)
	}

	buf := make([]float32, 64)
	buf[0] = 1
	e.Render(buf)
	testutil.RequireSilent(t, buf)

	e.Initialize()
	if got := e.master.Gain.Value(); got != 0.2 {
		t.Fatalf("stored volume not applied: got %v want 0.2", got)
	}
	if got := e.filter.Frequency.Value(); math.Abs(got-100) > 1e-9 {
		t.Fatalf("stored filter not applied: got %v want 100", got)
	}
}

func TestInitializeIdempotent(t *testing.T) {
	out := &fakeOutput{}
	e, _ := newTestEngine(t, WithOutput(out))

	e.Initialize()
	ctx := e.ctx
	if ctx.State() != graph.StateRunning {
		t.Fatalf("state after Initialize: got %v want running", ctx.State())
	}

	if err := ctx.Suspend(); err != nil {
		t.Fatal(err)
	}
	e.Initialize()

	if e.ctx != ctx {
		t.Fatal("Initialize rebuilt the graph")
	}
	if ctx.State() != graph.StateRunning {
		t.Fatal("Initialize did not resume a suspended context")
	}
	if out.opens != 1 || out.resumes != 2 {
		t.Fatalf("output calls: opens=%d resumes=%d", out.opens, out.resumes)
	}

	if err := e.Close(); err != nil {
		t.Fatal(err)
	}
	if err := e.Close(); err != nil {
		t.Fatal(err)
	}
	if out.closes != 1 {
		t.Fatalf("output closes: got %d want 1", out.closes)
	}
}

func TestOutputOpenFailureAbsorbed(t *testing.T) {
	out := &fakeOutput{openErr: errors.New("no device")}
	e, _ := newTestEngine(t, WithOutput(out))

	e.Initialize()
	e.PlayData(record(debris.Low, 10))

	if !e.Session().Active {
		t.Fatal("engine must keep working without a device")
	}
}

func TestVoiceCountAndWaveforms(t *testing.T) {
	tests := []struct {
		sev      debris.Severity
		voices   int
		waveform signal.Waveform
	}{
		{debris.Low, 3, signal.WaveSine},
		{debris.Moderate, 4, signal.WaveTriangle},
		{debris.High, 6, signal.WaveSawtooth},
		{debris.Critical, 8, signal.WaveSawtooth},
	}

	e, _ := newTestEngine(t)
	e.Initialize()

	for _, tt := range tests {
		e.PlayData(record(tt.sev, 50))
		s := e.Session()

		if len(s.Voices) != tt.voices {
			t.Fatalf("%v voices: got %d want %d", tt.sev, len(s.Voices), tt.voices)
		}
		primary := 0
		for i, v := range s.Voices {
			want := signal.WaveSine
			if i%2 == 0 {
				want = tt.waveform
			}
			if v.Waveform != want {
				t.Fatalf("%v voice %d: got %v want %v", tt.sev, i, v.Waveform, want)
			}
			if i%2 == 0 {
				primary++
			}
		}
		if primary != (tt.voices+1)/2 {
			t.Fatalf("%v primary voices: got %d", tt.sev, primary)
		}
		settle(e)
		if got := e.filter.Inputs(); got != tt.voices {
			t.Fatalf("%v filter inputs: got %d want %d", tt.sev, got, tt.voices)
		}
	}
}

func TestVoiceFrequencies(t *testing.T) {
	e, _ := newTestEngine(t)
	e.Initialize()

	d := record(debris.High, 50)
	e.PlayData(d)

	variance := ProfileFor(debris.High).InherentDissonance - 1
	for i, v := range e.Session().Voices {
		nominal := VoiceFrequency(d.Latitude, i)
		if math.Abs(v.Frequency-nominal) > nominal*variance {
			t.Fatalf("voice %d: got %.2f Hz want %.2f +- %.0f%%", i, v.Frequency, nominal, variance*100)
		}
		if v.Pan < -1 || v.Pan > 1 {
			t.Fatalf("voice %d pan out of range: %v", i, v.Pan)
		}
		if v.Detune != 0 {
			t.Fatalf("voice %d detuned at default divergence: %v", i, v.Detune)
		}
	}
	if VoiceFrequency(40, 0) != 180 || VoiceFrequency(40, 2) != 360 {
		t.Fatalf("unexpected nominal frequencies")
	}
}

func TestStopAll(t *testing.T) {
	e, clock := newTestEngine(t)

	e.StopAll()
	e.Initialize()
	e.StopAll()

	e.PlayData(record(debris.Critical, 800))
	if !e.Session().CollisionPending {
		t.Fatal("collision loop not started")
	}

	for i := 0; i < 3; i++ {
		e.StopAll()
		s := e.Session()
		if s.Active || len(s.Voices) != 0 || s.CollisionPending {
			t.Fatalf("after StopAll #%d: %+v", i+1, s)
		}
		settle(e)
		if e.filter.Inputs() != 0 {
			t.Fatalf("filter still has %d inputs", e.filter.Inputs())
		}
		if clock.Pending() != 0 {
			t.Fatalf("clock has %d pending timers", clock.Pending())
		}
	}

	if n := clock.Advance(10 * time.Second); n != 0 {
		t.Fatalf("timers fired after StopAll: %d", n)
	}
}

func TestPlayDataReplacesSession(t *testing.T) {
	e, clock := newTestEngine(t)
	e.Initialize()

	e.PlayData(record(debris.Low, 15))
	first := e.session.voices
	e.PlayData(record(debris.Critical, 1250))

	if got := len(e.Session().Voices); got != 8 {
		t.Fatalf("voices: got %d want 8", got)
	}
	settle(e)
	if got := e.filter.Inputs(); got != 8 {
		t.Fatalf("filter inputs: got %d want 8", got)
	}
	for i, v := range first {
		if e.filter.IsConnected(v.pan) {
			t.Fatalf("voice %d of the first session still attached", i)
		}
		if !v.osc.Stopped() || !v.lfo.Stopped() {
			t.Fatalf("voice %d of the first session still running", i)
		}
	}
	if clock.Pending() != 1 {
		t.Fatalf("pending collision timers: got %d want 1", clock.Pending())
	}
}

func TestFilterCutoff(t *testing.T) {
	if got := FilterCutoff(0); math.Abs(got-100) > 1e-9 {
		t.Fatalf("FilterCutoff(0): got %v want 100", got)
	}
	if got := FilterCutoff(1); math.Abs(got-20000) > 1e-6 {
		t.Fatalf("FilterCutoff(1): got %v want 20000", got)
	}
	prev := FilterCutoff(0)
	for x := 0.01; x <= 1; x += 0.01 {
		cur := FilterCutoff(x)
		if cur <= prev {
			t.Fatalf("FilterCutoff not increasing at %v", x)
		}
		prev = cur
	}

	e, _ := newTestEngine(t)
	e.Initialize()
	e.SetFilterFrequency(0)
	if got := e.filter.Frequency.Target(); math.Abs(got-100) > 1e-9 {
		t.Fatalf("filter target: got %v want 100", got)
	}
	e.SetVolume(0.8)
	if got := e.master.Gain.Target(); got != 0.8 {
		t.Fatalf("master target: got %v want 0.8", got)
	}
}

func TestControlRamps(t *testing.T) {
	e, _ := newTestEngine(t)
	e.Initialize()

	e.SetVolume(1)
	e.ctx.RenderSeconds(0.05)
	mid := e.master.Gain.ValueAt(e.ctx.CurrentTime())
	if !(mid > 0.5 && mid < 1) {
		t.Fatalf("volume halfway through ramp: got %v", mid)
	}
	e.ctx.RenderSeconds(0.1)
	if got := e.master.Gain.ValueAt(e.ctx.CurrentTime()); got != 1 {
		t.Fatalf("volume after ramp: got %v want 1", got)
	}
}

func TestDetuneMonotonicInDivergence(t *testing.T) {
	if Intensity(1) != 0 {
		t.Fatalf("Intensity(1): got %v want 0", Intensity(1))
	}

	e, _ := newTestEngine(t)
	e.Initialize()
	e.PlayData(record(debris.Critical, 50))

	e.SetDissonance(1.5)
	low := e.Session().Voices
	e.SetDissonance(2.5)
	high := e.Session().Voices

	for i := range high {
		if math.Abs(high[i].Detune) <= math.Abs(low[i].Detune) {
			t.Fatalf("voice %d: |%v| not > |%v|", i, high[i].Detune, low[i].Detune)
		}
	}

	e.SetDissonance(1)
	for i, v := range e.Session().Voices {
		if v.Detune != 0 {
			t.Fatalf("voice %d: detune at 1.0 got %v want 0", i, v.Detune)
		}
	}
}

func TestDetuneReturnsToZero(t *testing.T) {
	e, _ := newTestEngine(t)
	e.Initialize()
	e.PlayData(record(debris.High, 50))

	e.SetDissonance(2)
	for i, v := range e.Session().Voices {
		lo := DetuneCents(i, 2) - 10*Intensity(2)
		hi := DetuneCents(i, 2) + 10*Intensity(2)
		if v.Detune < lo || v.Detune > hi {
			t.Fatalf("voice %d: detune %v outside [%v, %v]", i, v.Detune, lo, hi)
		}
	}

	e.ctx.RenderSeconds(0.1)
	e.SetDissonance(1)
	e.ctx.RenderSeconds(0.3)

	for i, v := range e.session.voices {
		if got := v.osc.Detune.ValueAt(e.ctx.CurrentTime()); got != 0 {
			t.Fatalf("voice %d: stale detune %v", i, got)
		}
	}
}

func TestLFORateChaosThreshold(t *testing.T) {
	e, _ := newTestEngine(t)
	e.Initialize()
	e.PlayData(record(debris.Moderate, 50))

	before := e.Session().Voices
	e.SetDissonance(1.2)
	for i, v := range e.Session().Voices {
		if v.LFORate != before[i].LFORate {
			t.Fatalf("voice %d: LFO rate changed below threshold", i)
		}
	}

	e.SetDissonance(2)
	for i, v := range e.Session().Voices {
		if v.LFORate < 0.5 || v.LFORate > 8.5 {
			t.Fatalf("voice %d: LFO rate %v outside [0.5, 8.5]", i, v.LFORate)
		}
	}
}

func TestStoredDivergenceAppliedToNewSession(t *testing.T) {
	e, _ := newTestEngine(t)
	e.Initialize()

	e.PlayData(record(debris.Low, 50))
	for i, v := range e.session.voices {
		if v.osc.Detune.Pending() != 0 {
			t.Fatalf("voice %d: detune pass ran at multiplier 1.0", i)
		}
	}

	e.SetDissonance(1.8)
	e.PlayData(record(debris.Low, 50))
	for i, v := range e.Session().Voices {
		if v.Detune <= 0 {
			t.Fatalf("voice %d: stored divergence not applied: %v", i, v.Detune)
		}
	}
}

func TestScenarioLowDensity(t *testing.T) {
	e, _ := newTestEngine(t)
	e.Initialize()
	e.PlayData(record(debris.Low, 15))

	s := e.Session()
	if len(s.Voices) != 3 {
		t.Fatalf("voices: got %d want 3", len(s.Voices))
	}
	for i, v := range s.Voices {
		if v.Waveform != signal.WaveSine {
			t.Fatalf("voice %d: got %v want sine", i, v.Waveform)
		}
	}
	want := 1000 / (0.3 + 0.015*11.7)
	got := float64(s.CollisionInterval) / float64(time.Millisecond)
	if math.Abs(got-want) > 0.01 {
		t.Fatalf("interval: got %.2f ms want %.2f ms", got, want)
	}
}

func TestScenarioCriticalDensity(t *testing.T) {
	e, clock := newTestEngine(t)
	e.Initialize()
	e.PlayData(record(debris.Critical, 1250))

	s := e.Session()
	if len(s.Voices) != 8 || s.Voices[0].Waveform != signal.WaveSawtooth {
		t.Fatalf("ensemble: %d voices, first %v", len(s.Voices), s.Voices[0].Waveform)
	}
	got := float64(s.CollisionInterval) / float64(time.Millisecond)
	if math.Abs(got-1000.0/12) > 0.01 {
		t.Fatalf("interval: got %.2f ms want %.2f ms", got, 1000.0/12)
	}

	// Jitter keeps each gap within [0.5, 1.5] of the base interval.
	fired := clock.Advance(time.Second)
	if fired < 8 || fired > 24 {
		t.Fatalf("clicks in one second: got %d", fired)
	}
	if clock.Pending() != 1 {
		t.Fatalf("pending timers: got %d want 1", clock.Pending())
	}
}

func TestFirstClickAtSessionStart(t *testing.T) {
	var logs bytes.Buffer
	e, clock := newTestEngine(t, WithLogger(log.New(&logs, "", 0)))
	e.Initialize()
	e.PlayData(record(debris.Low, 0))

	if strings.Contains(logs.String(), "transient noise") {
		t.Fatalf("transient noise fill failed: %s", logs.String())
	}

	if got := e.Session().Transients; got != 2 {
		t.Fatalf("transients after PlayData: got %d want 2 (tick and click)", got)
	}
	if got := clock.Pending(); got != 1 {
		t.Fatalf("pending collision timers: got %d want 1", got)
	}
}

func TestTransientRouting(t *testing.T) {
	e, clock := newTestEngine(t)
	e.Initialize()
	e.PlayData(record(debris.High, 500))

	// The tick joins the dry master next to the filter and echo returns;
	// the first click joins the voices on the filter bus.
	if got := e.master.Inputs(); got != 3 {
		t.Fatalf("master inputs after PlayData: got %d want 3", got)
	}
	if got := e.filter.Inputs(); got != 6+1 {
		t.Fatalf("filter inputs after PlayData: got %d want 7", got)
	}

	fired := clock.Advance(CollisionBaseInterval(500) * 3 / 2)
	if fired < 1 {
		t.Fatal("no collision fired within 1.5 base intervals")
	}
	if got := e.master.Inputs(); got != 3 {
		t.Fatalf("master inputs after clicks: got %d want 3", got)
	}
	if got := e.filter.Inputs(); got != 6+1+fired {
		t.Fatalf("filter inputs after %d clicks: got %d want %d", fired, got, 7+fired)
	}
	if got := e.Session().Transients; got != 2+fired {
		t.Fatalf("transients: got %d want %d", got, 2+fired)
	}
}

func TestTransientsReleaseThemselves(t *testing.T) {
	e, clock := newTestEngine(t)
	e.Initialize()
	e.PlayData(record(debris.Critical, 1000))

	clock.Advance(500 * time.Millisecond)
	if e.Session().Transients < 2 {
		t.Fatalf("expected tick and clicks in flight, got %d", e.Session().Transients)
	}

	e.StopAll()
	if e.Session().Transients == 0 {
		t.Fatal("StopAll must not clip in-flight transients")
	}

	settle(e)
	if got := e.Session().Transients; got != 0 {
		t.Fatalf("transients after playback: got %d want 0", got)
	}
	if e.filter.Inputs() != 0 || e.master.Inputs() != 2 {
		t.Fatalf("graph inputs after release: filter=%d master=%d", e.filter.Inputs(), e.master.Inputs())
	}
}

func TestRenderIsAudible(t *testing.T) {
	e, _ := newTestEngine(t)
	e.Initialize()
	e.PlayData(record(debris.Moderate, 50))

	e.ctx.RenderSeconds(2)
	buf := make([]float32, 2*4800)
	e.Render(buf)

	l, r := testutil.Deinterleave(buf)
	testutil.RequireFinite(t, l)
	testutil.RequireFinite(t, r)
	if peak := math.Max(testutil.Peak(l), testutil.Peak(r)); peak < 1e-3 || peak > 1 {
		t.Fatalf("peak: got %v", peak)
	}

	if lv := e.Levels(); lv.PeakDB[0] <= meter.MinDB || lv.RMSDB[1] <= meter.MinDB {
		t.Fatalf("levels: %+v", lv)
	}

	curve := e.SpectrumDB([]float64{VoiceFrequency(40, 0)})
	if len(curve) != 1 || curve[0] <= spectrum.FloorDB {
		t.Fatalf("spectrum readback: %v", curve)
	}
}

func TestWithoutAnalyser(t *testing.T) {
	e, _ := newTestEngine(t, WithoutAnalyser())
	e.Initialize()
	if e.SpectrumDB([]float64{1000}) != nil {
		t.Fatal("expected nil spectrum without analyser")
	}
}

func TestClosedEngineIgnoresPlay(t *testing.T) {
	e, clock := newTestEngine(t)
	e.Initialize()
	_ = e.Close()

	e.PlayData(record(debris.High, 100))
	if e.Session().Active || clock.Pending() != 0 {
		t.Fatal("closed engine started a session")
	}
}

type fakeOutput struct {
	opens, resumes, closes int
	openErr                error
}

func (o *fakeOutput) Open(*graph.Context) error {
	o.opens++
	return o.openErr
}

func (o *fakeOutput) Resume() error {
	o.resumes++
	return nil
}

func (o *fakeOutput) Close() error {
	o.closes++
	return nil
}
