// Package ions computes theoretical b and y fragment ions of peptides.
package ions

import (
	"sort"

	"github.com/524D/mzsearch/internal/mass"
	"github.com/524D/mzsearch/internal/peptide"
)

// Kind is the fragment ion series
type Kind byte

const (
	B Kind = 'b'
	Y Kind = 'y'
)

func (k Kind) String() string {
	return string(rune(k))
}

// Ion is a theoretical fragment ion. Index is the number of residues in
// the fragment.
type Ion struct {
	Kind   Kind
	Index  int
	Charge int
	Mz     float64
}

// Generate returns the b and y ions of p for charges 1..maxCharge,
// sorted by m/z. Ions outside [minMz, maxMz] are omitted; maxMz <= 0
// means no upper bound.
func Generate(p *peptide.Peptide, maxCharge int, minMz, maxMz float64) []Ion {
	n := p.Len()
	if n < 2 || maxCharge < 1 {
		return nil
	}
	ions := make([]Ion, 0, 2*(n-1)*maxCharge)
	add := func(k Kind, idx int, mh float64) {
		for z := 1; z <= maxCharge; z++ {
			mz := (mh + float64(z-1)*mass.Proton) / float64(z)
			if mz < minMz || (maxMz > 0 && mz > maxMz) {
				continue
			}
			ions = append(ions, Ion{Kind: k, Index: idx, Charge: z, Mz: mz})
		}
	}

	b := p.NTerm + mass.Proton
	for i := 0; i < n-1; i++ {
		b += p.ResidueMass(i)
		add(B, i+1, b)
	}
	y := p.CTerm + mass.H2O + mass.Proton
	for i := n - 1; i > 0; i-- {
		y += p.ResidueMass(i)
		add(Y, n-i, y)
	}
	sort.SliceStable(ions, func(i, j int) bool { return ions[i].Mz < ions[j].Mz })
	return ions
}
