package peptide

import (
	"errors"
	"math"
	"testing"

	"github.com/524D/mzsearch/internal/mass"
)

func TestParseProForma(t *testing.T) {
	for _, s := range []string{
		"PEPTIDE",
		"[+10.0000]-PEPTC[+57.0215]IDE",
		"C[+57.0215]AC[+57.0215]K-[-0.9840]",
		"[+42.0106]-M[+15.9949]K-[-0.9840]",
	} {
		p, err := ParseProForma(s)
		if err != nil {
			t.Errorf("ParseProForma(%s): unexpected error: %v", s, err)
			continue
		}
		if got := p.ProForma(); got != s {
			t.Errorf("ParseProForma(%s).ProForma() = %s", s, got)
		}
	}

	p, _ := ParseProForma("[+10.0000]-PEPTC[+57.0215]IDE")
	plain, _ := mass.Peptide("PEPTCIDE")
	if math.Abs(p.Monoisotopic-(plain+57.0215+10)) > 1e-9 {
		t.Errorf("Monoisotopic = %f, want %f", p.Monoisotopic, plain+57.0215+10)
	}
}

func TestParseProFormaErrors(t *testing.T) {
	for _, s := range []string{
		"[+10-PEPTIDE",
		"[+10]PEPTIDE",
		"[x]-PEPTIDE",
		"[+1]",
		"PEPTIDE-",
		"PEPTIDE-[+1]K",
	} {
		if _, err := ParseProForma(s); !errors.Is(err, ErrProForma) {
			t.Errorf("ParseProForma(%s): expected error: %v, got: %v", s, ErrProForma, err)
		}
	}
	if _, err := ParseProForma("PEPXIDE"); !errors.Is(err, mass.ErrInvalidResidue) {
		t.Errorf("Expected error: %v, got: %v", mass.ErrInvalidResidue, err)
	}
	if _, err := ParseProForma(""); !errors.Is(err, ErrEmpty) {
		t.Errorf("Expected error: %v, got: %v", ErrEmpty, err)
	}
}
