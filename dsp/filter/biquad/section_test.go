package biquad

import (
	"math"
	"testing"
)

// tolerance for floating-point comparisons.
const eps = 1e-12

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestNewSection(t *testing.T) {
	c := Coefficients{B0: 1, B1: 2, B2: 3, A1: 4, A2: 5}
	s := NewSection(c)
	if s.Coefficients != c {
		t.Fatalf("coefficients mismatch: got %v, want %v", s.Coefficients, c)
	}
	if st := s.State(); st != [2]float64{0, 0} {
		t.Fatalf("initial state not zero: %v", st)
	}
}

func TestProcessSample_DFIIT(t *testing.T) {
	// Hand-traced impulse response for
	// B0=0.25, B1=0.5, B2=0.25, A1=-0.2, A2=0.04.
	c := Coefficients{B0: 0.25, B1: 0.5, B2: 0.25, A1: -0.2, A2: 0.04}
	s := NewSection(c)

	want := []float64{0.25, 0.55, 0.35, 0.048, -0.0044}
	for i, w := range want {
		var x float64
		if i == 0 {
			x = 1
		}
		if y := s.ProcessSample(x); !almostEqual(y, w, eps) {
			t.Fatalf("sample %d: got %v, want %v", i, y, w)
		}
	}
}

func TestProcessBlock_MatchesProcessSample(t *testing.T) {
	c := Coefficients{B0: 0.25, B1: 0.5, B2: 0.25, A1: -0.2, A2: 0.04}
	ref := NewSection(c)
	blk := NewSection(c)

	buf := make([]float64, 64)
	for i := range buf {
		buf[i] = math.Sin(float64(i) * 0.3)
	}
	want := make([]float64, len(buf))
	for i, x := range buf {
		want[i] = ref.ProcessSample(x)
	}

	blk.ProcessBlock(buf)
	for i := range buf {
		if !almostEqual(buf[i], want[i], eps) {
			t.Fatalf("index %d: got %v want %v", i, buf[i], want[i])
		}
	}
}

func TestSetCoefficientsKeepsState(t *testing.T) {
	s := NewSection(Coefficients{B0: 0.25, B1: 0.5, B2: 0.25, A1: -0.2, A2: 0.04})
	s.ProcessSample(1)
	before := s.State()

	s.SetCoefficients(Coefficients{B0: 1})
	if s.State() != before {
		t.Fatalf("state changed: got %v want %v", s.State(), before)
	}
	if s.B0 != 1 || s.B1 != 0 {
		t.Fatalf("coefficients not replaced: %+v", s.Coefficients)
	}
}

func TestReset(t *testing.T) {
	s := NewSection(Coefficients{B0: 0.25, B1: 0.5, B2: 0.25, A1: -0.2, A2: 0.04})
	s.ProcessSample(1)
	s.Reset()
	if st := s.State(); st != [2]float64{0, 0} {
		t.Fatalf("state after reset: %v", st)
	}
}

func TestProcessBlock_FlushesDenormalState(t *testing.T) {
	s := NewSection(Coefficients{B0: 1e-20, B1: 1e-20, B2: 1e-20})
	buf := []float64{1e-15, 0}
	s.ProcessBlock(buf)
	if st := s.State(); st != [2]float64{0, 0} {
		t.Fatalf("state not flushed: %v", st)
	}
}
