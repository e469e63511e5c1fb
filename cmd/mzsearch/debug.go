// This file contains code to help debugging, and is
// separated in from the rest in order not to litter
// the main code with debugging stuff

package main

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/524D/mzsearch"
	"github.com/524D/mzsearch/spectrum"
)

// debugger prints the peaks and the annotation of the best PSM for the
// spectra with a scan index (position in the mzML file) in [min, max]
type debugger struct {
	mu       sync.Mutex
	w        io.Writer
	min, max int
}

// newDebugger returns nil when specs is empty
func newDebugger(w io.Writer, specs string, numSpecs int) (*debugger, error) {
	if specs == `` {
		return nil, nil
	}
	debugMin, debugMax, err := parseIntRange(specs, 0, numSpecs-1)
	if err != nil {
		return nil, fmt.Errorf("--debug %q: %w", specs, err)
	}
	return &debugger{w: w, min: debugMin, max: debugMax}, nil
}

func (d *debugger) logSpectrum(db *mzsearch.Database, i int, s *spectrum.Spectrum, psms []mzsearch.Psm) {
	if d == nil || i < d.min || i > d.max {
		return
	}
	var annotated []mzsearch.AnnotatedPeak
	if len(psms) > 0 {
		opts := mzsearch.DefaultAnnotateOptions()
		opts.TolerancePPM = db.Parameters().Search.FragmentTolerancePPM
		opts.Charge = psms[0].Charge
		var err error
		annotated, err = db.AnnotatePSM(s, psms[0], opts)
		if err != nil {
			slog.Warn("annotate PSM", "spectrum", s.Title, "peptide", psms[0].Peptide, "error", err)
		}
	}
	peak2ion := make(map[float64]mzsearch.AnnotatedPeak, len(annotated))
	for _, a := range annotated {
		peak2ion[a.Mass] = a
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	fmt.Fprintf(d.w, "Spectrum:%d id:%s rt:%f\n", i, s.Title, s.ScanStartTime)
	for _, p := range psms {
		fmt.Fprintf(d.w, "  psm:%s charge:%d hyperscore:%f poisson:%f matched:%d decoy:%t\n",
			p.Peptide, p.Charge, p.Hyperscore, p.Poisson, p.MatchedPeaks, p.Decoy)
	}
	for j, p := range s.Peaks {
		fmt.Fprintf(d.w, "%d mass:%f intens:%f", j, p.Mass, p.Intensity)
		if a, exists := peak2ion[p.Mass]; exists {
			fmt.Fprintf(d.w, " ion:%s%d", a.Ion, a.Index)
			if a.Charge > 1 {
				fmt.Fprintf(d.w, "(%d+)", a.Charge)
			}
		}
		fmt.Fprintln(d.w)
	}
}
