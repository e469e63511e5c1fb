package main

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/524D/mzsearch"
	"github.com/524D/mzsearch/spectrum"
)

func TestDebuggerRange(t *testing.T) {
	var buf bytes.Buffer
	dbg, err := newDebugger(&buf, "1:1", 3)
	if err != nil {
		t.Fatalf("newDebugger: %v", err)
	}
	db, err := mzsearch.BuildFromProteins(context.Background(),
		[]mzsearch.Protein{{Accession: "P1", Sequence: "SAMPLER"}})
	if err != nil {
		t.Fatalf("BuildFromProteins: %v", err)
	}
	s := spectrum.New(2, "scan=7", 1, nil, []spectrum.Peak{{Mass: 175.119, Intensity: 10}})
	dbg.logSpectrum(db, 0, s, nil)
	if buf.Len() != 0 {
		t.Errorf("spectrum 0 outside debug range was printed: %q", buf.String())
	}
	dbg.logSpectrum(db, 1, s, nil)
	if !strings.HasPrefix(buf.String(), "Spectrum:1 id:scan=7") {
		t.Errorf("debug output %q", buf.String())
	}

	var nilDebugger *debugger
	nilDebugger.logSpectrum(db, 1, s, nil)
}

func TestDebuggerAnnotateError(t *testing.T) {
	var logBuf bytes.Buffer
	defer slog.SetDefault(slog.Default())
	slog.SetDefault(newLogger(&logBuf, infoDefault))

	var buf bytes.Buffer
	dbg, err := newDebugger(&buf, "0:0", 1)
	if err != nil {
		t.Fatalf("newDebugger: %v", err)
	}
	db, err := mzsearch.BuildFromProteins(context.Background(),
		[]mzsearch.Protein{{Accession: "P1", Sequence: "SAMPLER"}})
	if err != nil {
		t.Fatalf("BuildFromProteins: %v", err)
	}
	s := spectrum.New(2, "scan=3", 1, nil, []spectrum.Peak{{Mass: 175.119, Intensity: 10}})
	psms := []mzsearch.Psm{{SpectrumTitle: "scan=3", Peptide: "PEP[x]K", Charge: 2}}
	dbg.logSpectrum(db, 0, s, psms)

	if !strings.Contains(logBuf.String(), "annotate PSM") || !strings.Contains(logBuf.String(), "scan=3") {
		t.Errorf("annotation error not logged: %q", logBuf.String())
	}
	if !strings.Contains(buf.String(), "0 mass:175.119") {
		t.Errorf("peaks not printed: %q", buf.String())
	}
}
