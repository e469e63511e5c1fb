package peptide

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/524D/mzsearch/internal/mass"
	"github.com/524D/mzsearch/internal/modtable"
)

func mustTable(t *testing.T, static, variable map[rune]float64) *modtable.Table {
	t.Helper()
	tab, err := modtable.New(static, variable)
	if err != nil {
		t.Fatalf("modtable.New: %v", err)
	}
	return tab
}

func TestNewStaticMods(t *testing.T) {
	tab := mustTable(t, map[rune]float64{'C': 57.0215, modtable.NTerm: 10}, nil)
	p, err := New("PEPTCIDE", tab)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	plain, _ := mass.Peptide("PEPTCIDE")
	if math.Abs(p.Monoisotopic-(plain+57.0215+10)) > 1e-9 {
		t.Errorf("Monoisotopic = %f, want %f", p.Monoisotopic, plain+57.0215+10)
	}
	if got, want := p.ProForma(), "[+10.0000]-PEPTC[+57.0215]IDE"; got != want {
		t.Errorf("ProForma() = %s, want %s", got, want)
	}
}

func TestNewInvalid(t *testing.T) {
	if _, err := New("", nil); !errors.Is(err, ErrEmpty) {
		t.Errorf("Expected error: %v, got: %v", ErrEmpty, err)
	}
	if _, err := New("PEPXIDE", nil); !errors.Is(err, mass.ErrInvalidResidue) {
		t.Errorf("Expected error: %v, got: %v", mass.ErrInvalidResidue, err)
	}
}

func TestStaticMod(t *testing.T) {
	p, _ := New("CACK", nil)
	base := p.Monoisotopic
	p.StaticMod('C', 57.0215)
	p.StaticMod(modtable.CTerm, -0.9840)
	if math.Abs(p.Monoisotopic-(base+2*57.0215-0.9840)) > 1e-9 {
		t.Errorf("Monoisotopic = %f", p.Monoisotopic)
	}
	if got, want := p.ProForma(), "C[+57.0215]AC[+57.0215]K-[-0.9840]"; got != want {
		t.Errorf("ProForma() = %s, want %s", got, want)
	}
}

func TestVariants(t *testing.T) {
	tab := mustTable(t, nil, map[rune]float64{'M': 15.9949, 'S': 79.9663})
	p, _ := New("MSMK", tab)
	var got []string
	p.Variants(tab, 2, func(v Peptide) bool {
		got = append(got, v.ProForma())
		return true
	})
	want := []string{
		"MSMK",
		"MSM[+15.9949]K",
		"MS[+79.9663]MK",
		"MS[+79.9663]M[+15.9949]K",
		"M[+15.9949]SMK",
		"M[+15.9949]SM[+15.9949]K",
		"M[+15.9949]S[+79.9663]MK",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Variants mismatch (-want +got):\n%s", diff)
	}
	// The source peptide must not be modified
	if p.ProForma() != "MSMK" {
		t.Errorf("source peptide changed to %s", p.ProForma())
	}
}

func TestVariantsMass(t *testing.T) {
	tab := mustTable(t, map[rune]float64{'C': 57.0215}, map[rune]float64{'M': 15.9949, modtable.NTerm: 42.0106})
	p, _ := New("MCPEPTMK", tab)
	count := 0
	p.Variants(tab, 3, func(v Peptide) bool {
		count++
		sum := mass.H2O + v.NTerm + v.CTerm
		for i := 0; i < v.Len(); i++ {
			sum += v.ResidueMass(i)
		}
		if math.Abs(sum-v.Monoisotopic) > 1e-9 {
			t.Errorf("%s: mass %f, sum of residues %f", v.ProForma(), v.Monoisotopic, sum)
		}
		return true
	})
	// 3 sites (N-term, M, M), up to 3 mods: 2^3 combinations
	if count != 8 {
		t.Errorf("expected 8 variants, got %d", count)
	}
}

func TestVariantsStop(t *testing.T) {
	tab := mustTable(t, nil, map[rune]float64{'M': 15.9949})
	p, _ := New("MMMMMK", tab)
	count := 0
	p.Variants(tab, 5, func(v Peptide) bool {
		count++
		return count < 3
	})
	if count != 3 {
		t.Errorf("iteration did not stop, count %d", count)
	}
}

func TestVariantsNoVariable(t *testing.T) {
	p, _ := New("PEPTIDE", nil)
	count := 0
	p.Variants(nil, 2, func(v Peptide) bool {
		count++
		return true
	})
	if count != 1 {
		t.Errorf("expected only the unmodified form, got %d", count)
	}
}
