// Package rank orders the scored candidates of one spectrum.
package rank

import (
	"math"
	"sort"
)

// Candidate is a scored peptide-spectrum pairing
type Candidate struct {
	Peptide             int // position in the peptide index
	Charge              int
	ExpMass             float64 // neutral
	CalcMass            float64 // neutral
	IsotopeError        float64 // Da
	Hyperscore          float64
	Poisson             float64
	MatchedPeaks        int
	LongestB            int
	LongestY            int
	PeptideLen          int
	MatchedIntensityPct float64
	AveragePPM          float64

	// Filled by Rank
	DeltaHyperscore float64
	LongestYPct     int
	DeltaMass       float64 // ppm
}

// Rank sorts cands by descending hyperscore, then ascending Poisson, then
// input order, and returns at most report candidates with the derived
// fields filled in. cands is reordered in place.
func Rank(cands []Candidate, report int) []Candidate {
	if len(cands) == 0 || report <= 0 {
		return []Candidate{}
	}
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].Hyperscore != cands[j].Hyperscore {
			return cands[i].Hyperscore > cands[j].Hyperscore
		}
		return cands[i].Poisson < cands[j].Poisson
	})
	n := min(report, len(cands))
	out := make([]Candidate, n)
	for i := range out {
		c := cands[i]
		next := 0.0
		if i+1 < len(cands) {
			next = cands[i+1].Hyperscore
		}
		c.DeltaHyperscore = c.Hyperscore - next
		c.LongestYPct = LongestYPct(c.LongestY, c.PeptideLen)
		c.DeltaMass = DeltaMass(c.ExpMass, c.IsotopeError, c.CalcMass)
		out[i] = c
	}
	return out
}

// LongestYPct returns floor(100 * longestY / peptideLen)
func LongestYPct(longestY, peptideLen int) int {
	if peptideLen <= 0 {
		return 0
	}
	return 100 * longestY / peptideLen
}

// DeltaMass returns the precursor mass error in ppm after isotope correction
func DeltaMass(expMass, isotopeError, calcMass float64) float64 {
	if calcMass == 0 {
		return 0
	}
	d := (expMass - isotopeError - calcMass) / calcMass * 1e6
	if math.IsNaN(d) {
		return 0
	}
	return d
}
