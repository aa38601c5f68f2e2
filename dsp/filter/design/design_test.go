package design

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/cwbudde/algo-soundscape/dsp/filter/biquad"
)

func almostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func mag(c biquad.Coefficients, freq, sampleRate float64) float64 {
	return cmplx.Abs(c.Response(freq, sampleRate))
}

func TestLowpass_ResponseShape(t *testing.T) {
	sr := 48000.0
	lp := Lowpass(1000, defaultQ, sr)

	if !almostEqual(mag(lp, 1, sr), 1, 1e-6) {
		t.Fatalf("DC gain = %v, want 1", mag(lp, 1, sr))
	}
	if !almostEqual(mag(lp, 1000, sr), 1/math.Sqrt2, 1e-6) {
		t.Fatalf("cutoff gain = %v, want -3 dB", mag(lp, 1000, sr))
	}
	if !(mag(lp, 100, sr) > mag(lp, 10000, sr)) {
		t.Fatal("lowpass shape check failed")
	}
}

func TestLowpass_AboveNyquistStaysOpen(t *testing.T) {
	sr := 44100.0
	lp := Lowpass(30000, defaultQ, sr)
	if lp == (biquad.Coefficients{}) {
		t.Fatal("expected clamped design, got zero coefficients")
	}
	if g := mag(lp, 1000, sr); !almostEqual(g, 1, 1e-3) {
		t.Fatalf("passband gain = %v, want ~1", g)
	}
}

func TestBandpass_ConstantPeak(t *testing.T) {
	sr := 48000.0
	for _, q := range []float64{1, 5, 10} {
		bp := Bandpass(2500, q, sr)
		if !almostEqual(mag(bp, 2500, sr), 1, 1e-9) {
			t.Fatalf("q=%v: peak gain = %v, want 1", q, mag(bp, 2500, sr))
		}
		if !(mag(bp, 2500, sr) > mag(bp, 250, sr) && mag(bp, 2500, sr) > mag(bp, 15000, sr)) {
			t.Fatalf("q=%v: bandpass shape check failed", q)
		}
	}
}

func TestBandpass_HigherQIsNarrower(t *testing.T) {
	sr := 48000.0
	wide := Bandpass(2000, 1, sr)
	narrow := Bandpass(2000, 10, sr)
	if !(mag(narrow, 3000, sr) < mag(wide, 3000, sr)) {
		t.Fatal("expected narrower skirt for higher Q")
	}
}

func TestInvalidInputs(t *testing.T) {
	zero := biquad.Coefficients{}
	if got := Lowpass(0, 1, 48000); got != zero {
		t.Fatalf("zero freq: got %+v", got)
	}
	if got := Bandpass(1000, 1, 0); got != zero {
		t.Fatalf("zero rate: got %+v", got)
	}
	if got := Lowpass(math.NaN(), 1, 48000); got != zero {
		t.Fatalf("NaN freq: got %+v", got)
	}

	// Invalid Q falls back to Butterworth.
	if Lowpass(1000, -1, 48000) != Lowpass(1000, defaultQ, 48000) {
		t.Fatal("expected default Q fallback")
	}
}
