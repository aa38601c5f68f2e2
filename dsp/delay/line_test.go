package delay

import "testing"

func TestNewValidation(t *testing.T) {
	if _, err := New(0); err == nil {
		t.Fatal("expected error for size=0")
	}

	if _, err := New(-1); err == nil {
		t.Fatal("expected error for size=-1")
	}
}

func TestReadWrite(t *testing.T) {
	d, err := New(8)
	if err != nil {
		t.Fatal(err)
	}

	for i := 1; i <= 5; i++ {
		d.Write(float64(i))
	}

	for delay, want := range map[int]float64{1: 5, 2: 4, 5: 1, 6: 0} {
		if got := d.Read(delay); got != want {
			t.Fatalf("Read(%d): got %v want %v", delay, got, want)
		}
	}
}

func TestWrapAround(t *testing.T) {
	d, err := New(4)
	if err != nil {
		t.Fatal(err)
	}

	for i := 1; i <= 10; i++ {
		d.Write(float64(i))
	}

	if got := d.Read(1); got != 10 {
		t.Fatalf("Read(1): got %v want 10", got)
	}
	if got := d.Read(4); got != 7 {
		t.Fatalf("Read(4): got %v want 7", got)
	}
}

func TestReset(t *testing.T) {
	d, err := New(4)
	if err != nil {
		t.Fatal(err)
	}

	d.Write(1)
	d.Reset()

	for i := 1; i <= 4; i++ {
		if got := d.Read(i); got != 0 {
			t.Fatalf("Read(%d) after reset: got %v want 0", i, got)
		}
	}
}
