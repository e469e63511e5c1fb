package main

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseFloat64Range(t *testing.T) {
	// Test case 1: Valid input range
	min, max, err := parseFloat64Range("0.5:1.5", 0.0, 2.0)
	if err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}
	if min != 0.5 {
		t.Errorf("Expected min to be 0.5, got: %f", min)
	}
	if max != 1.5 {
		t.Errorf("Expected max to be 1.5, got: %f", max)
	}

	// Test case 2: Empty input range
	min, max, err = parseFloat64Range("", 0.0, 2.0)
	if err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}
	if min != 0.0 {
		t.Errorf("Expected min to be 0.0, got: %f", min)
	}
	if max != 2.0 {
		t.Errorf("Expected max to be 2.0, got: %f", max)
	}

	// Test case 3: Invalid input range
	min, max, err = parseFloat64Range("2.5:1.5", 0.0, 2.0)
	if !errors.Is(err, ErrRangeSpec) {
		t.Errorf("Expected error: %v, got: %v", ErrRangeSpec, err)
	}
	if min != 1.5 {
		t.Errorf("Expected min to be 1.5, got: %f", min)
	}
	if max != 1.5 {
		t.Errorf("Expected max to be 1.5, got: %f", max)
	}

	// Test case 4: Only max specified
	min, max, err = parseFloat64Range(":1.5", 0.0, 2.0)
	if err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}
	if min != 0.0 || max != 1.5 {
		t.Errorf("Expected 0.0:1.5, got: %f:%f", min, max)
	}

	// Test case 5: Exponents in numbers
	min, max, err = parseFloat64Range("150:2e3", 0.0, 1e6)
	if err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}
	if min != 150.0 || max != 2000.0 {
		t.Errorf("Expected 150.0:2000.0, got: %f:%f", min, max)
	}

	// Test case 6: Out of range
	min, max, err = parseFloat64Range("-2.0:2.0", -1.0, 1.0)
	if err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}
	if min != -1.0 || max != 1.0 {
		t.Errorf("Expected -1.0:1.0, got: %f:%f", min, max)
	}
}

func TestParseIntRange(t *testing.T) {
	tests := []struct {
		in       string
		min, max int
		wantMin  int
		wantMax  int
		wantErr  error
	}{
		{"-1:3", -10, 10, -1, 3, nil},
		{"2:4", 1, 100, 2, 4, nil},
		{":3", -10, 10, -10, 3, nil},
		{"0:", -10, 10, 0, 10, nil},
		{"", 1, 5, 1, 5, nil},
		{"0:9", 1, 5, 1, 5, nil},
		{"4:2", 1, 5, 2, 2, ErrRangeSpec},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			gotMin, gotMax, err := parseIntRange(tt.in, tt.min, tt.max)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("parseIntRange(%q) error %v, want %v", tt.in, err, tt.wantErr)
			}
			if gotMin != tt.wantMin || gotMax != tt.wantMax {
				t.Errorf("parseIntRange(%q) = %d:%d, want %d:%d", tt.in, gotMin, gotMax, tt.wantMin, tt.wantMax)
			}
		})
	}
}

func TestParseMods(t *testing.T) {
	got, err := parseMods([]string{"C=57.021464", "^=42.010565", " M = 15.9949"})
	if err != nil {
		t.Fatalf("parseMods: %v", err)
	}
	want := map[rune]float64{'C': 57.021464, '^': 42.010565, 'M': 15.9949}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("parseMods mismatch (-want +got):\n%s", diff)
	}

	if got, err := parseMods(nil); err != nil || got != nil {
		t.Errorf("parseMods(nil) = %v, %v, want nil, nil", got, err)
	}

	for _, spec := range []string{"C", "CM=1.0", "C=x", "=1.0"} {
		if _, err := parseMods([]string{spec}); !errors.Is(err, ErrModSpec) {
			t.Errorf("parseMods(%q) error %v, want ErrModSpec", spec, err)
		}
	}
	if _, err := parseMods([]string{"C=1", "C=2"}); !errors.Is(err, ErrModSpec) {
		t.Errorf("duplicate site: error %v, want ErrModSpec", err)
	}
}
