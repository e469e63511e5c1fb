package mzsearch

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/524D/mzsearch/internal/ions"
	"github.com/524D/mzsearch/internal/mass"
	"github.com/524D/mzsearch/internal/match"
	"github.com/524D/mzsearch/internal/modtable"
	"github.com/524D/mzsearch/internal/peptide"
	"github.com/524D/mzsearch/spectrum"
)

// DefaultXICRTTolerance is the retention time half window of XICForPSM,
// in minutes
const DefaultXICRTTolerance = 2.5

// AnnotateOptions control peak annotation. Start from
// DefaultAnnotateOptions; a zero TolerancePPM only annotates exact matches.
type AnnotateOptions struct {
	TolerancePPM float64
	// Highest fragment charge; values < 1 mean DefaultAnnotateCharge
	Charge int
	// Static modifications for AnnotateSequence. nil means the static
	// modifications of the Database.
	Mods map[rune]float64
}

// DefaultAnnotateOptions returns the default annotation settings
func DefaultAnnotateOptions() AnnotateOptions {
	return AnnotateOptions{
		TolerancePPM: DefaultAnnotateTolerancePPM,
		Charge:       DefaultAnnotateCharge,
	}
}

// AnnotateSequence returns the peaks of s explained by b and y ions of
// sequence. sequence is a plain peptide sequence or a ProForma string as
// found in Psm.Peptide; static modifications are only applied to plain
// sequences.
func (db *Database) AnnotateSequence(s *spectrum.Spectrum, sequence string, opts AnnotateOptions) ([]AnnotatedPeak, error) {
	if strings.ContainsRune(sequence, '[') {
		p, err := peptide.ParseProForma(sequence)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidSequence, err)
		}
		return annotate(s, &p, opts)
	}

	mods := db.mods
	if opts.Mods != nil {
		var err error
		mods, err = modtable.New(opts.Mods, nil)
		if err != nil {
			return nil, configError("mods", err)
		}
	}
	p, err := peptide.New(sequence, mods)
	if err != nil {
		if errors.Is(err, mass.ErrInvalidResidue) || errors.Is(err, peptide.ErrEmpty) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidSequence, err)
		}
		return nil, err
	}
	return annotate(s, &p, opts)
}

// AnnotatePSM returns the peaks of s explained by the peptide of psm
func (db *Database) AnnotatePSM(s *spectrum.Spectrum, psm Psm, opts AnnotateOptions) ([]AnnotatedPeak, error) {
	if psm.pep != nil {
		return annotate(s, psm.pep, opts)
	}
	p, err := peptide.ParseProForma(psm.Peptide)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSequence, err)
	}
	return annotate(s, &p, opts)
}

func annotate(s *spectrum.Spectrum, p *peptide.Peptide, opts AnnotateOptions) ([]AnnotatedPeak, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: nil spectrum", ErrInvalidSpectrum)
	}
	if opts.TolerancePPM < 0 {
		return nil, &ConfigError{Field: "tolerance_ppm", Message: "must not be negative"}
	}
	charge := opts.Charge
	if charge < 1 {
		charge = DefaultAnnotateCharge
	}
	peaks := s.Peaks
	if !s.Sorted() {
		peaks = append([]spectrum.Peak(nil), s.Peaks...)
		sort.SliceStable(peaks, func(i, j int) bool { return peaks[i].Mass < peaks[j].Mass })
	}

	ionList := ions.Generate(p, charge, 0, 0)
	res := match.Match(ionList, peaks, opts.TolerancePPM)
	annotated := make([]AnnotatedPeak, 0, len(res.Pairs))
	for _, pair := range res.Pairs {
		ion := ionList[pair.Ion]
		annotated = append(annotated, AnnotatedPeak{
			Mass:      peaks[pair.Peak].Mass,
			Intensity: peaks[pair.Peak].Intensity,
			Ion:       IonKind(ion.Kind),
			Index:     ion.Index,
			Charge:    ion.Charge,
		})
	}
	sort.Slice(annotated, func(i, j int) bool { return annotated[i].Mass < annotated[j].Mass })
	return annotated, nil
}

// XICForPSM extracts the MS1 chromatogram of the precursor of psm from
// spectra, within rtTolerance minutes of the PSM retention time.
// spectra must be sorted by scan start time.
func XICForPSM(spectra []*spectrum.Spectrum, psm Psm, rtTolerance float64) []spectrum.XICPoint {
	mh := psm.ExpMass - psm.IsotopeError + mass.Proton
	return spectrum.XIC(spectra, psm.RT-rtTolerance, psm.RT+rtTolerance, mh)
}
