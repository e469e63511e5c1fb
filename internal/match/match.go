// Package match pairs theoretical fragment ions with observed peaks.
package match

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/524D/mzsearch/internal/ions"
	"github.com/524D/mzsearch/internal/mass"
	"github.com/524D/mzsearch/spectrum"
)

// Pair links ion Ions[Ion] to peak Peaks[Peak]
type Pair struct {
	Ion      int
	Peak     int
	ErrorPPM float64 // signed, relative to the ion m/z
}

// Result summarises the matching of one candidate against one spectrum
type Result struct {
	Pairs      []Pair // sorted by ion index
	MatchedB   int
	MatchedY   int
	IntensityB float64
	IntensityY float64
	Intensity  float64 // IntensityB + IntensityY
	MeanPPM    float64 // mean absolute error of the pairs
}

// Matched returns the total number of matched ions
func (r *Result) Matched() int {
	return r.MatchedB + r.MatchedY
}

// Indices returns the ladder positions of the matched ions of kind k,
// with duplicates from different charge states removed
func (r *Result) Indices(ionList []ions.Ion, k ions.Kind) []int {
	seen := make(map[int]struct{})
	var idx []int
	for _, p := range r.Pairs {
		ion := ionList[p.Ion]
		if ion.Kind != k {
			continue
		}
		if _, ok := seen[ion.Index]; ok {
			continue
		}
		seen[ion.Index] = struct{}{}
		idx = append(idx, ion.Index)
	}
	sort.Ints(idx)
	return idx
}

type candidate struct {
	ion, peak int
	absErr    float64
}

// Match pairs every ion with at most one peak within tolPPM of the ion
// m/z, and every peak with at most one ion. Closest pairs are assigned
// first; ties go to the lower ion index, then the lower peak index.
// ionList and peaks must be sorted by mass.
func Match(ionList []ions.Ion, peaks []spectrum.Peak, tolPPM float64) Result {
	tol := mass.PPM(tolPPM)
	var cands []candidate
	for i, ion := range ionList {
		lo, hi := tol.Bounds(ion.Mz)
		j := sort.Search(len(peaks), func(j int) bool { return peaks[j].Mass >= lo })
		for ; j < len(peaks) && peaks[j].Mass <= hi; j++ {
			cands = append(cands, candidate{ion: i, peak: j, absErr: math.Abs(peaks[j].Mass - ion.Mz)})
		}
	}
	sort.Slice(cands, func(a, b int) bool {
		ca, cb := cands[a], cands[b]
		if ca.absErr != cb.absErr {
			return ca.absErr < cb.absErr
		}
		if ca.ion != cb.ion {
			return ca.ion < cb.ion
		}
		return ca.peak < cb.peak
	})

	var r Result
	ionUsed := make([]bool, len(ionList))
	peakUsed := make(map[int]bool, len(cands))
	for _, c := range cands {
		if ionUsed[c.ion] || peakUsed[c.peak] {
			continue
		}
		ionUsed[c.ion] = true
		peakUsed[c.peak] = true
		r.Pairs = append(r.Pairs, Pair{
			Ion:      c.ion,
			Peak:     c.peak,
			ErrorPPM: mass.ErrorPPM(ionList[c.ion].Mz, peaks[c.peak].Mass),
		})
	}
	sort.Slice(r.Pairs, func(a, b int) bool { return r.Pairs[a].Ion < r.Pairs[b].Ion })

	if len(r.Pairs) == 0 {
		return r
	}
	absPPM := make([]float64, len(r.Pairs))
	for i, p := range r.Pairs {
		intensity := peaks[p.Peak].Intensity
		switch ionList[p.Ion].Kind {
		case ions.B:
			r.MatchedB++
			r.IntensityB += intensity
		case ions.Y:
			r.MatchedY++
			r.IntensityY += intensity
		}
		absPPM[i] = math.Abs(p.ErrorPPM)
	}
	r.Intensity = r.IntensityB + r.IntensityY
	r.MeanPPM = stat.Mean(absPPM, nil)
	return r
}
