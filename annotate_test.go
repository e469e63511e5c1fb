package mzsearch

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/524D/mzsearch/internal/mass"
	"github.com/524D/mzsearch/spectrum"
)

func TestAnnotateSequence(t *testing.T) {
	db := singlePeptideDB(t)
	s := spectrum.New(2, "scan=1", 1, nil, yPeaks(t, "SAMPLER", 0))

	got, err := db.AnnotateSequence(s, "SAMPLER", DefaultAnnotateOptions())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(got) != 6 {
		t.Fatalf("AnnotateSequence returned %d peaks, want 6", len(got))
	}
	for i, p := range got {
		if p.Ion != IonY || p.Index != i+1 || p.Charge != 1 || p.Intensity != 100 {
			t.Errorf("peak %d = %+v, want y%d charge 1", i, p, i+1)
		}
		if p.Mass != s.Peaks[i].Mass {
			t.Errorf("peak %d mass %f, want %f", i, p.Mass, s.Peaks[i].Mass)
		}
	}
}

func TestAnnotateExactOnly(t *testing.T) {
	db := singlePeptideDB(t)
	s := spectrum.New(2, "scan=1", 1, nil, yPeaks(t, "SAMPLER", 0.001))
	opts := DefaultAnnotateOptions()
	opts.TolerancePPM = 0
	got, err := db.AnnotateSequence(s, "SAMPLER", opts)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("AnnotateSequence with 0 ppm returned %d peaks, want 0", len(got))
	}
}

func TestAnnotateModified(t *testing.T) {
	db := singlePeptideDB(t)
	s := spectrum.New(2, "scan=1", 1, nil, yPeaks(t, "SAMPLER", 0))

	// Oxidation of M shifts y5 and y6 out of tolerance
	got, err := db.AnnotateSequence(s, "SAM[+15.9949]PLER", DefaultAnnotateOptions())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(got) != 4 {
		t.Errorf("AnnotateSequence(ProForma) returned %d peaks, want 4", len(got))
	}

	opts := DefaultAnnotateOptions()
	opts.Mods = map[rune]float64{'M': 15.9949}
	withMods, err := db.AnnotateSequence(s, "SAMPLER", opts)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if diff := cmp.Diff(got, withMods); diff != "" {
		t.Errorf("static mod annotation mismatch (-ProForma +mods):\n%s", diff)
	}
}

func TestAnnotateErrors(t *testing.T) {
	db := singlePeptideDB(t)
	s := spectrum.New(2, "scan=1", 1, nil, yPeaks(t, "SAMPLER", 0))
	for _, seq := range []string{"", "SAMPLXR", "SAM[+x]PLER"} {
		if _, err := db.AnnotateSequence(s, seq, DefaultAnnotateOptions()); !errors.Is(err, ErrInvalidSequence) {
			t.Errorf("AnnotateSequence(%q): expected error: %v, got: %v", seq, ErrInvalidSequence, err)
		}
	}
	opts := DefaultAnnotateOptions()
	opts.TolerancePPM = -1
	if _, err := db.AnnotateSequence(s, "SAMPLER", opts); !errors.Is(err, ErrConfig) {
		t.Errorf("Expected error: %v, got: %v", ErrConfig, err)
	}
}

func TestAnnotatePSM(t *testing.T) {
	db := singlePeptideDB(t)
	m, _ := mass.Peptide("SAMPLER")
	s := spectrum.New(2, "scan=1", 1,
		[]spectrum.Precursor{{Mz: mass.MzFromNeutral(m, 2), Charge: 2}},
		yPeaks(t, "SAMPLER", 0))
	psms, err := db.Search(context.Background(), s, 1)
	if err != nil || len(psms) != 1 {
		t.Fatalf("Search returned %d PSMs, err %v", len(psms), err)
	}
	want, err := db.AnnotateSequence(s, "SAMPLER", DefaultAnnotateOptions())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	got, err := db.AnnotatePSM(s, psms[0], DefaultAnnotateOptions())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("AnnotatePSM mismatch (-want +got):\n%s", diff)
	}

	// A PSM that did not come from Search is annotated from its ProForma
	got, err = db.AnnotatePSM(s, Psm{Peptide: psms[0].Peptide}, DefaultAnnotateOptions())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("AnnotatePSM(ProForma) mismatch (-want +got):\n%s", diff)
	}
}

func TestXICForPSM(t *testing.T) {
	psm := Psm{ExpMass: 1000, IsotopeError: mass.C13, RT: 10}
	mh := 1000 - mass.C13 + mass.Proton
	spectra := []*spectrum.Spectrum{
		spectrum.New(1, "1", 6, nil, []spectrum.Peak{{Mass: mh, Intensity: 1}}),
		spectrum.New(1, "2", 9, nil, []spectrum.Peak{{Mass: mh, Intensity: 2}}),
		spectrum.New(1, "3", 11, nil, []spectrum.Peak{{Mass: mh + 1, Intensity: 3}}),
	}
	got := XICForPSM(spectra, psm, DefaultXICRTTolerance)
	want := []spectrum.XICPoint{{RT: 9, Mass: mh, Intensity: 2}}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("XICForPSM mismatch (-want +got):\n%s", diff)
	}
}
