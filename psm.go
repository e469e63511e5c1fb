package mzsearch

import (
	"github.com/524D/mzsearch/internal/ions"
	"github.com/524D/mzsearch/internal/peptide"
)

// Psm is a peptide-spectrum match
type Psm struct {
	Peptide             string   `json:"peptide"` // ProForma
	PeptideLen          int      `json:"peptide_len"`
	Proteins            []string `json:"proteins"`
	NumProteins         int      `json:"num_proteins"`
	SpectrumTitle       string   `json:"spectrum_title"`
	Decoy               bool     `json:"decoy"`
	ExpMass             float64  `json:"expmass"`
	CalcMass            float64  `json:"calcmass"`
	Charge              int      `json:"charge"`
	RT                  float64  `json:"rt"`
	DeltaMass           float64  `json:"delta_mass"`    // ppm
	IsotopeError        float64  `json:"isotope_error"` // Da
	AveragePPM          float64  `json:"average_ppm"`
	Hyperscore          float64  `json:"hyperscore"`
	DeltaHyperscore     float64  `json:"delta_hyperscore"`
	MatchedPeaks        int      `json:"matched_peaks"`
	LongestB            int      `json:"longest_b"`
	LongestY            int      `json:"longest_y"`
	LongestYPct         int      `json:"longest_y_pct"`
	MissedCleavages     int      `json:"missed_cleavages"`
	MatchedIntensityPct float64  `json:"matched_intensity_pct"`
	ScoredCandidates    int      `json:"scored_candidates"`
	Poisson             float64  `json:"poisson"`

	pep *peptide.Peptide
}

// IonKind is the fragment ion series of an annotated peak
type IonKind byte

const (
	IonB IonKind = IonKind(ions.B)
	IonY IonKind = IonKind(ions.Y)
)

func (k IonKind) String() string {
	return string(rune(k))
}

// AnnotatedPeak is an observed peak explained by a fragment ion
type AnnotatedPeak struct {
	Mass      float64 `json:"mass"`
	Intensity float64 `json:"intensity"`
	Ion       IonKind `json:"ion"`
	Index     int     `json:"index"`
	Charge    int     `json:"charge"`
}
