package digest

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func sequences(ds []Digest) []string {
	var s []string
	for _, d := range ds {
		s = append(s, d.Sequence)
	}
	return s
}

func TestTrypsin(t *testing.T) {
	p := Parameters{Enzyme: Trypsin, MinLen: 2, MaxLen: 50, MissedCleavages: 0}
	got := sequences(p.Digest("MAGKPLEKRDDAR"))
	// K before P is not a cleavage site
	want := []string{"MAGKPLEK", "DDAR"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Digest mismatch (-want +got):\n%s", diff)
	}
}

func TestMissedCleavages(t *testing.T) {
	p := Parameters{Enzyme: Trypsin, MinLen: 1, MaxLen: 50, MissedCleavages: 1}
	got := p.Digest("AAKCCRDD")
	want := []Digest{
		{Sequence: "AAK", MissedCleavages: 0, Start: 0},
		{Sequence: "AAKCCR", MissedCleavages: 1, Start: 0},
		{Sequence: "CCR", MissedCleavages: 0, Start: 3},
		{Sequence: "CCRDD", MissedCleavages: 1, Start: 3},
		{Sequence: "DD", MissedCleavages: 0, Start: 6},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Digest mismatch (-want +got):\n%s", diff)
	}
}

func TestLengthBounds(t *testing.T) {
	p := Parameters{Enzyme: Trypsin, MinLen: 4, MaxLen: 6, MissedCleavages: 2}
	for _, d := range p.Digest("PEPTIDEKAAAAKCCCCCCCCCCRGGGR") {
		if len(d.Sequence) < 4 || len(d.Sequence) > 6 {
			t.Errorf("peptide %s violates length bounds", d.Sequence)
		}
	}
	if got := p.Digest("PEP"); got != nil {
		t.Errorf("protein shorter than MinLen produced %v", got)
	}
}

func TestDedupe(t *testing.T) {
	p := Parameters{Enzyme: Trypsin, MinLen: 3, MaxLen: 50, MissedCleavages: 1}
	got := p.Digest("GGGKGGGKGGGK")
	counts := map[string]int{}
	for _, d := range got {
		counts[d.Sequence]++
	}
	for s, c := range counts {
		if c != 1 {
			t.Errorf("%s reported %d times", s, c)
		}
	}
	if counts["GGGK"] != 1 || counts["GGGKGGGK"] != 1 {
		t.Errorf("unexpected digest %v", sequences(got))
	}
}

func TestInvalidResidues(t *testing.T) {
	p := Parameters{Enzyme: Trypsin, MinLen: 2, MaxLen: 50}
	got := sequences(p.Digest("AAXAKDPEPTIDER"))
	want := []string{"DPEPTIDER"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Digest mismatch (-want +got):\n%s", diff)
	}
}

func TestAspN(t *testing.T) {
	p := Parameters{Enzyme: AspN, MinLen: 1, MaxLen: 50}
	got := sequences(p.Digest("AAADBBBDCC"))
	// B is not an amino acid, so that fragment is dropped
	want := []string{"AAA", "DCC"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Digest mismatch (-want +got):\n%s", diff)
	}
}

func TestSemiSpecific(t *testing.T) {
	p := Parameters{Enzyme: Trypsin, MinLen: 3, MaxLen: 4, Mode: SemiSpecific}
	got := sequences(p.Digest("AAAKGGGR"))
	want := []string{"AAA", "AAAK", "AAK", "GGG", "GGGR", "GGR"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Digest mismatch (-want +got):\n%s", diff)
	}
}

func TestNonSpecific(t *testing.T) {
	p := Parameters{Enzyme: Trypsin, MinLen: 3, MaxLen: 3, Mode: NonSpecific}
	got := p.Digest("ACDEFG")
	if len(got) != 4 {
		t.Errorf("expected 4 peptides, got %v", sequences(got))
	}
}

// Fully cleaved peptides digested again never exceed the length bound
func TestRedigest(t *testing.T) {
	p := Parameters{Enzyme: Trypsin, MinLen: 1, MaxLen: 8, MissedCleavages: 2}
	protein := strings.Repeat("PEPTIDEKSAMPLERLONGERPEPTIDESEQUENCEK", 3)
	for _, d := range p.Digest(protein) {
		for _, dd := range p.Digest(d.Sequence) {
			if len(dd.Sequence) > p.MaxLen {
				t.Errorf("re-digest of %s produced %s", d.Sequence, dd.Sequence)
			}
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		p    Parameters
		ok   bool
	}{
		{"defaults", DefaultParameters(), true},
		{"min > max", Parameters{Enzyme: Trypsin, MinLen: 10, MaxLen: 5}, false},
		{"zero min", Parameters{Enzyme: Trypsin, MinLen: 0, MaxLen: 5}, false},
		{"negative missed", Parameters{Enzyme: Trypsin, MinLen: 1, MaxLen: 5, MissedCleavages: -1}, false},
		{"bad mode", Parameters{Enzyme: Trypsin, MinLen: 1, MaxLen: 5, Mode: 7}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate()
			if tt.ok && err != nil {
				t.Errorf("Expected no error, got: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidParameters) {
				t.Errorf("Expected error: %v, got: %v", ErrInvalidParameters, err)
			}
		})
	}
}

func TestEnzymeByName(t *testing.T) {
	e, err := EnzymeByName("Trypsin")
	if err != nil || e.CleaveAt != "KR" {
		t.Errorf("EnzymeByName(Trypsin) = %+v, %v", e, err)
	}
	if _, err := EnzymeByName("pepsin"); !errors.Is(err, ErrInvalidParameters) {
		t.Errorf("Expected error: %v, got: %v", ErrInvalidParameters, err)
	}
}
