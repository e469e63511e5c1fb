// Package spectrum holds the mass spectrum data model shared by the search
// engine and the spectrum sources that feed it.
package spectrum

import (
	"errors"
	"fmt"
	"sort"
)

// ErrNotFound is returned by a Source for an unknown spectrum title
var ErrNotFound = errors.New("spectrum not found")

// Peak is a centroided peak. Mass is the singly charged equivalent (MH+).
type Peak struct {
	Mass      float64
	Intensity float64
}

// Precursor is the parent ion of an MSn spectrum. Zero values mean the
// field was not reported.
type Precursor struct {
	Mz          float64
	Intensity   float64
	Charge      int
	SpectrumRef string
}

// Spectrum is a single scan. Peaks are sorted by mass.
// A Spectrum must not be modified after it has been handed to the search
// engine.
type Spectrum struct {
	Level            int
	Title            string
	ScanStartTime    float64 // minutes
	IonInjectionTime float64
	Precursors       []Precursor
	Peaks            []Peak
	TotalIntensity   float64
}

// New creates a spectrum from unsorted peaks. Peaks are sorted by mass and
// TotalIntensity is computed.
func New(level int, title string, rt float64, precursors []Precursor, peaks []Peak) *Spectrum {
	s := &Spectrum{
		Level:         level,
		Title:         title,
		ScanStartTime: rt,
		Precursors:    precursors,
		Peaks:         append([]Peak(nil), peaks...),
	}
	sort.SliceStable(s.Peaks, func(i, j int) bool { return s.Peaks[i].Mass < s.Peaks[j].Mass })
	for _, p := range s.Peaks {
		s.TotalIntensity += p.Intensity
	}
	return s
}

// Sorted reports whether the peaks are sorted by mass
func (s *Spectrum) Sorted() bool {
	return sort.SliceIsSorted(s.Peaks, func(i, j int) bool { return s.Peaks[i].Mass < s.Peaks[j].Mass })
}

// Source supplies spectra by title
type Source interface {
	Spectrum(title string) (*Spectrum, error)
}

// MemorySource is a Source backed by a slice of spectra
type MemorySource struct {
	spectra []*Spectrum
	byTitle map[string]int
}

// NewMemorySource indexes spectra by title. Titles must be unique.
func NewMemorySource(spectra []*Spectrum) (*MemorySource, error) {
	m := &MemorySource{
		spectra: spectra,
		byTitle: make(map[string]int, len(spectra)),
	}
	for i, s := range spectra {
		if _, dup := m.byTitle[s.Title]; dup {
			return nil, fmt.Errorf("duplicate spectrum title %q", s.Title)
		}
		m.byTitle[s.Title] = i
	}
	return m, nil
}

// Spectrum returns the spectrum with the given title
func (m *MemorySource) Spectrum(title string) (*Spectrum, error) {
	i, ok := m.byTitle[title]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, title)
	}
	return m.spectra[i], nil
}

// Len returns the number of spectra
func (m *MemorySource) Len() int {
	return len(m.spectra)
}

// Spectra returns all spectra in input order
func (m *MemorySource) Spectra() []*Spectrum {
	return m.spectra
}
