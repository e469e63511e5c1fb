// Package score implements the peptide-spectrum match scores.
package score

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	// HyperscoreFloor is the hyperscore of a candidate without matched ions
	HyperscoreFloor = 0.0
	// PoissonFloor is the lowest reported log10 probability
	PoissonFloor = -300.0
)

// Hyperscore returns ln(nb!) + ln(ny!) + ln(ib+1) + ln(iy+1), where nb, ny
// are the matched b and y ion counts and ib, iy their summed intensities
func Hyperscore(nb, ny int, ib, iy float64) float64 {
	if nb+ny <= 0 {
		return HyperscoreFloor
	}
	lb, _ := math.Lgamma(float64(nb) + 1)
	ly, _ := math.Lgamma(float64(ny) + 1)
	s := lb + ly + math.Log1p(ib) + math.Log1p(iy)
	if math.IsNaN(s) || s < HyperscoreFloor {
		return HyperscoreFloor
	}
	return s
}

// LongestLadder returns the length of the longest run of consecutive
// values in the sorted, duplicate free slice indices
func LongestLadder(indices []int) int {
	if len(indices) == 0 {
		return 0
	}
	longest, run := 1, 1
	for i := 1; i < len(indices); i++ {
		if indices[i] == indices[i-1]+1 {
			run++
		} else {
			run = 1
		}
		longest = max(longest, run)
	}
	return longest
}

// MatchedIntensityPct returns matched as a percentage of total
func MatchedIntensityPct(matched, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return 100 * matched / total
}

// Poisson returns log10 P(X >= k) for X ~ Poisson(lambda), clamped to
// [PoissonFloor, 0]
func Poisson(k int, lambda float64) float64 {
	if k <= 0 {
		return 0
	}
	if lambda <= 0 || math.IsNaN(lambda) {
		return PoissonFloor
	}
	d := distuv.Poisson{Lambda: lambda}
	// The tail beyond upper is negligible compared to the terms summed
	upper := max(k, int(math.Ceil(lambda))) + 20 + int(math.Ceil(10*math.Sqrt(lambda)))
	terms := make([]float64, 0, upper-k+1)
	for i := k; i <= upper; i++ {
		terms = append(terms, d.LogProb(float64(i)))
	}
	p := floats.LogSumExp(terms) / math.Ln10
	switch {
	case math.IsNaN(p) || p < PoissonFloor:
		return PoissonFloor
	case p > 0:
		return 0
	}
	return p
}
