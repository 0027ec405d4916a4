package core

import "testing"

func TestParseRateToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"85.50", 8550, true},
		{"85,50", 8550, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"-1", 0, false},
		{"0", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseRateToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestParseHourlyRate(t *testing.T) {
	got, err := ParseHourlyRate("85,50")
	if err != nil || got != 85.5 {
		t.Fatalf("expected 85.5, got %v (err=%v)", got, err)
	}
	if _, err := ParseHourlyRate("nope"); err == nil {
		t.Fatal("expected error for invalid rate")
	}
}
