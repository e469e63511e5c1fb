package mzsearch

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/524D/mzsearch/internal/ions"
	"github.com/524D/mzsearch/internal/mass"
	"github.com/524D/mzsearch/internal/match"
	"github.com/524D/mzsearch/internal/rank"
	"github.com/524D/mzsearch/internal/score"
	"github.com/524D/mzsearch/spectrum"
)

// candidateKey identifies a peptide at a precursor charge
type candidateKey struct {
	peptide int
	charge  int
}

// Search scores the peptides whose mass matches the precursor of s and
// returns the best reportPSMs matches, best first.
// s must be an MS2 spectrum with at least one precursor.
func (db *Database) Search(ctx context.Context, s *spectrum.Spectrum, reportPSMs int) ([]Psm, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: nil spectrum", ErrInvalidSpectrum)
	}
	if s.Level != 2 {
		return nil, fmt.Errorf("%w: %s has MS level %d, want 2", ErrInvalidSpectrum, s.Title, s.Level)
	}
	if len(s.Precursors) == 0 {
		return nil, fmt.Errorf("%w: %s has no precursor", ErrInvalidSpectrum, s.Title)
	}
	par := db.cfg.search
	prec := s.Precursors[0]
	if prec.Mz <= mass.Proton {
		return nil, fmt.Errorf("%w: %s has precursor m/z %f", ErrInvalidSpectrum, s.Title, prec.Mz)
	}

	peaks := s.Peaks
	if !s.Sorted() {
		peaks = append([]spectrum.Peak(nil), s.Peaks...)
		sort.SliceStable(peaks, func(i, j int) bool { return peaks[i].Mass < peaks[j].Mass })
	}
	total := s.TotalIntensity
	if total <= 0 {
		for _, p := range peaks {
			total += p.Intensity
		}
	}

	charges := []int{prec.Charge}
	if prec.Charge <= 0 {
		charges = charges[:0]
		for z := par.MinCharge; z <= par.MaxCharge; z++ {
			charges = append(charges, z)
		}
	}
	isotopes := isotopeOrder(par.MinIsotopeError, par.MaxIsotopeError)
	tol := mass.PPM(par.PrecursorTolerancePPM)

	var cands []rank.Candidate
	seen := make(map[candidateKey]struct{})
	scored, matchedSum := 0, 0
	for _, z := range charges {
		expMass := mass.NeutralFromMz(prec.Mz, z)
		fragCharge := z
		if par.MaxFragmentCharge > 0 {
			fragCharge = min(fragCharge, par.MaxFragmentCharge)
		}
		for _, iso := range isotopes {
			isoErr := float64(iso) * mass.C13
			lo, hi := db.idx.Query(expMass-isoErr, tol)
			for i := lo; i < hi; i++ {
				key := candidateKey{peptide: i, charge: z}
				if _, ok := seen[key]; ok {
					continue
				}
				seen[key] = struct{}{}
				if err := ctx.Err(); err != nil {
					return nil, err
				}
				pep := db.idx.Peptide(i)
				ionList := ions.Generate(pep, fragCharge, par.MinFragmentMz, par.MaxFragmentMz)
				res := match.Match(ionList, peaks, par.FragmentTolerancePPM)

				scored++
				matchedSum += res.Matched()
				if res.Matched() < par.MinMatchedPeaks {
					continue
				}
				cands = append(cands, rank.Candidate{
					Peptide:             i,
					Charge:              z,
					ExpMass:             expMass,
					CalcMass:            pep.Monoisotopic,
					IsotopeError:        isoErr,
					Hyperscore:          score.Hyperscore(res.MatchedB, res.MatchedY, res.IntensityB, res.IntensityY),
					MatchedPeaks:        res.Matched(),
					LongestB:            score.LongestLadder(res.Indices(ionList, ions.B)),
					LongestY:            score.LongestLadder(res.Indices(ionList, ions.Y)),
					PeptideLen:          pep.Len(),
					MatchedIntensityPct: score.MatchedIntensityPct(res.Intensity, total),
					AveragePPM:          res.MeanPPM,
				})
			}
		}
	}

	if scored > 0 {
		lambda := float64(matchedSum) / float64(scored)
		for i := range cands {
			cands[i].Poisson = score.Poisson(cands[i].MatchedPeaks, lambda)
		}
	}
	ranked := rank.Rank(cands, reportPSMs)
	db.logger.Debug("searched spectrum",
		"spectrum", s.Title,
		"scored", scored,
		"ranked", len(cands),
		"reported", len(ranked))

	psms := make([]Psm, len(ranked))
	for i, c := range ranked {
		pep := db.idx.Peptide(c.Peptide)
		psms[i] = Psm{
			Peptide:             pep.ProForma(),
			PeptideLen:          c.PeptideLen,
			Proteins:            db.idx.Accessions(pep.Proteins),
			NumProteins:         len(pep.Proteins),
			SpectrumTitle:       s.Title,
			Decoy:               pep.Decoy,
			ExpMass:             c.ExpMass,
			CalcMass:            c.CalcMass,
			Charge:              c.Charge,
			RT:                  s.ScanStartTime,
			DeltaMass:           c.DeltaMass,
			IsotopeError:        c.IsotopeError,
			AveragePPM:          c.AveragePPM,
			Hyperscore:          c.Hyperscore,
			DeltaHyperscore:     c.DeltaHyperscore,
			MatchedPeaks:        c.MatchedPeaks,
			LongestB:            c.LongestB,
			LongestY:            c.LongestY,
			LongestYPct:         c.LongestYPct,
			MissedCleavages:     pep.MissedCleavages,
			MatchedIntensityPct: c.MatchedIntensityPct,
			ScoredCandidates:    scored,
			Poisson:             c.Poisson,
			pep:                 pep,
		}
	}
	return psms, nil
}

// isotopeOrder returns the isotope errors lo..hi, smallest correction first,
// so that a peptide reachable through several isotope errors is scored with
// the smallest one
func isotopeOrder(lo, hi int) []int {
	var iso []int
	for i := lo; i <= hi; i++ {
		iso = append(iso, i)
	}
	sort.SliceStable(iso, func(a, b int) bool {
		return abs(iso[a]) < abs(iso[b])
	})
	return iso
}

func abs(i int) int {
	if i < 0 {
		return -i
	}
	return i
}

// SearchByID fetches the spectrum titled title from src and searches it
func (db *Database) SearchByID(ctx context.Context, src spectrum.Source, title string, reportPSMs int) ([]Psm, error) {
	s, err := src.Spectrum(title)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get spectrum %q: %w", title, err)
	}
	return db.Search(ctx, s, reportPSMs)
}
