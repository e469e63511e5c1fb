// Package digest cleaves protein sequences into candidate peptides.
package digest

import (
	"errors"
	"fmt"
	"sort"

	"github.com/524D/mzsearch/internal/mass"
)

// Default digestion parameters
const (
	DefaultMinLen          = 5
	DefaultMaxLen          = 50
	DefaultMissedCleavages = 1
)

// ErrInvalidParameters is returned by Validate for unusable digestion settings
var ErrInvalidParameters = errors.New("invalid digestion parameters")

// Mode selects how strictly peptide termini must follow the enzyme.
// SemiSpecific and NonSpecific grow the index by orders of magnitude.
type Mode int

const (
	Specific Mode = iota
	SemiSpecific
	NonSpecific
)

func (m Mode) String() string {
	switch m {
	case Specific:
		return "specific"
	case SemiSpecific:
		return "semi"
	case NonSpecific:
		return "nonspecific"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Parameters control a digestion
type Parameters struct {
	Enzyme          Enzyme
	MinLen          int
	MaxLen          int
	MissedCleavages int // Ignored in NonSpecific mode
	Mode            Mode
}

// DefaultParameters returns a fully tryptic digestion with the default bounds
func DefaultParameters() Parameters {
	return Parameters{
		Enzyme:          Trypsin,
		MinLen:          DefaultMinLen,
		MaxLen:          DefaultMaxLen,
		MissedCleavages: DefaultMissedCleavages,
		Mode:            Specific,
	}
}

// Validate checks that the parameters can produce peptides
func (p Parameters) Validate() error {
	if p.MinLen < 1 {
		return fmt.Errorf("%w: minimum length %d < 1", ErrInvalidParameters, p.MinLen)
	}
	if p.MinLen > p.MaxLen {
		return fmt.Errorf("%w: minimum length %d > maximum length %d",
			ErrInvalidParameters, p.MinLen, p.MaxLen)
	}
	if p.MissedCleavages < 0 {
		return fmt.Errorf("%w: negative missed cleavages", ErrInvalidParameters)
	}
	if p.Mode < Specific || p.Mode > NonSpecific {
		return fmt.Errorf("%w: unknown mode %v", ErrInvalidParameters, p.Mode)
	}
	return nil
}

// Digest is a single peptide cut from a protein
type Digest struct {
	Sequence        string
	MissedCleavages int
	Start           int // 0-based offset in the protein
}

// Digest cleaves protein into peptides. Identical sequences are reported
// once, with the lowest missed cleavage count and first position.
// Peptides containing non amino acid characters are dropped.
func (p Parameters) Digest(protein string) []Digest {
	n := len(protein)
	if n < p.MinLen {
		return nil
	}
	cut := p.Enzyme.boundaries(protein)
	// sites[k] is the number of internal cleavage sites in protein[:k]
	sites := make([]int, n+1)
	for k := 1; k <= n; k++ {
		sites[k] = sites[k-1]
		if k < n && cut[k] {
			sites[k]++
		}
	}
	missed := func(s, e int) int {
		// internal sites strictly between s and e
		return sites[e-1] - sites[s]
	}

	seen := make(map[string]int)
	var out []Digest
	add := func(s, e int) {
		l := e - s
		if l < p.MinLen || l > p.MaxLen {
			return
		}
		mc := missed(s, e)
		if p.Mode != NonSpecific && mc > p.MissedCleavages {
			return
		}
		seq := protein[s:e]
		if i, ok := seen[seq]; ok {
			if mc < out[i].MissedCleavages {
				out[i].MissedCleavages = mc
			}
			return
		}
		for k := 0; k < len(seq); k++ {
			if !mass.ValidResidue(seq[k]) {
				return
			}
		}
		seen[seq] = len(out)
		out = append(out, Digest{Sequence: seq, MissedCleavages: mc, Start: s})
	}

	switch p.Mode {
	case Specific:
		var bounds []int
		for k, c := range cut {
			if c {
				bounds = append(bounds, k)
			}
		}
		for i := 0; i < len(bounds)-1; i++ {
			for j := i + 1; j < len(bounds) && j-i-1 <= p.MissedCleavages; j++ {
				add(bounds[i], bounds[j])
			}
		}
	case SemiSpecific:
		for s := 0; s < n; s++ {
			for e := s + p.MinLen; e <= n && e-s <= p.MaxLen; e++ {
				if cut[s] || cut[e] {
					add(s, e)
				}
			}
		}
	case NonSpecific:
		for s := 0; s < n; s++ {
			for e := s + p.MinLen; e <= n && e-s <= p.MaxLen; e++ {
				add(s, e)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}
