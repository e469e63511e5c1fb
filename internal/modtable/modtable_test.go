package modtable

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNew(t *testing.T) {
	tab, err := New(
		map[rune]float64{'C': 57.0215, NTerm: 229.1629},
		map[rune]float64{'M': 15.9949, 'S': 79.9663, NTerm: 42.0106, CTerm: -0.984},
	)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if tab.Static('C') != 57.0215 {
		t.Errorf("Static(C) = %f", tab.Static('C'))
	}
	if tab.Static('K') != 0 {
		t.Errorf("Static(K) = %f, want 0", tab.Static('K'))
	}
	if tab.StaticNTerm() != 229.1629 || tab.StaticCTerm() != 0 {
		t.Errorf("terminal mods: %f %f", tab.StaticNTerm(), tab.StaticCTerm())
	}
	// Ordered by site byte: '$' < 'M' < 'S' < '^'
	want := []Variable{
		{Site: CTerm, Mass: -0.984},
		{Site: 'M', Mass: 15.9949},
		{Site: 'S', Mass: 79.9663},
		{Site: NTerm, Mass: 42.0106},
	}
	if diff := cmp.Diff(want, tab.Variable()); diff != "" {
		t.Errorf("Variable() mismatch (-want +got):\n%s", diff)
	}
	if !tab.HasVariable() {
		t.Errorf("HasVariable() = false")
	}
}

func TestNewInvalid(t *testing.T) {
	tests := []struct {
		name     string
		static   map[rune]float64
		variable map[rune]float64
	}{
		{"unknown static residue", map[rune]float64{'X': 1}, nil},
		{"unknown variable residue", nil, map[rune]float64{'B': 1}},
		{"NaN mass", map[rune]float64{'C': math.NaN()}, nil},
		{"infinite mass", nil, map[rune]float64{'M': math.Inf(1)}},
		{"non ascii", map[rune]float64{'é': 1}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.static, tt.variable)
			if !errors.Is(err, ErrInvalidMod) {
				t.Errorf("Expected error: %v, got: %v", ErrInvalidMod, err)
			}
		})
	}
}
