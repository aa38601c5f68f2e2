package main

import "testing"

func TestParseDensities(t *testing.T) {
	got, err := parseDensities(nil)
	if err != nil || len(got) != len(defaultDensities) {
		t.Fatalf("defaults: got %v err %v", got, err)
	}

	got, err = parseDensities([]string{"15", "1250.5"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != 15 || got[1] != 1250.5 {
		t.Fatalf("got %v want [15 1250.5]", got)
	}

	if _, err := parseDensities([]string{"dense"}); err == nil {
		t.Fatal("expected error for non-numeric density")
	}
}
