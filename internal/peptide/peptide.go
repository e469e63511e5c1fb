// Package peptide holds the digested peptide representation: residues,
// applied modification masses and the derived monoisotopic mass.
package peptide

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/524D/mzsearch/internal/mass"
	"github.com/524D/mzsearch/internal/modtable"
)

// ErrEmpty is returned when a peptide without residues is constructed
var ErrEmpty = errors.New("empty peptide")

// Peptide is a (possibly modified) peptide sequence.
// After it is placed in an index it must be treated as read-only;
// Proteins is shared between all modified forms of the same sequence.
type Peptide struct {
	Sequence        string
	Mods            []float64 // modification mass per residue
	NTerm           float64   // N-terminal modification mass
	CTerm           float64   // C-terminal modification mass
	Monoisotopic    float64   // neutral mass
	Decoy           bool
	Collision       bool // decoy sequence that is also a target sequence
	Proteins        []int
	MissedCleavages int
}

// New creates a peptide and applies the static modifications of t.
// t may be nil.
func New(seq string, t *modtable.Table) (Peptide, error) {
	if len(seq) == 0 {
		return Peptide{}, ErrEmpty
	}
	p := Peptide{
		Sequence: seq,
		Mods:     make([]float64, len(seq)),
	}
	for i := 0; i < len(seq); i++ {
		if !mass.ValidResidue(seq[i]) {
			return Peptide{}, fmt.Errorf("%w %q in %s", mass.ErrInvalidResidue, seq[i], seq)
		}
		if t != nil {
			p.Mods[i] = t.Static(seq[i])
		}
	}
	if t != nil {
		p.NTerm = t.StaticNTerm()
		p.CTerm = t.StaticCTerm()
	}
	p.updateMass()
	return p, nil
}

// StaticMod adds mass to every residue aa, or to a terminus when aa is
// modtable.NTerm or modtable.CTerm
func (p *Peptide) StaticMod(aa byte, m float64) {
	switch aa {
	case modtable.NTerm:
		p.NTerm += m
	case modtable.CTerm:
		p.CTerm += m
	default:
		for i := 0; i < len(p.Sequence); i++ {
			if p.Sequence[i] == aa {
				p.Mods[i] += m
			}
		}
	}
	p.updateMass()
}

func (p *Peptide) updateMass() {
	m := mass.H2O + p.NTerm + p.CTerm
	for i := 0; i < len(p.Sequence); i++ {
		r, _ := mass.Residue(p.Sequence[i])
		m += r + p.Mods[i]
	}
	p.Monoisotopic = m
}

// Len returns the number of residues
func (p *Peptide) Len() int {
	return len(p.Sequence)
}

// ResidueMass returns the modified mass of residue i
func (p *Peptide) ResidueMass(i int) float64 {
	r, _ := mass.Residue(p.Sequence[i])
	return r + p.Mods[i]
}

func formatMod(sb *strings.Builder, m float64) {
	sb.WriteByte('[')
	if m >= 0 {
		sb.WriteByte('+')
	}
	sb.WriteString(strconv.FormatFloat(m, 'f', 4, 64))
	sb.WriteByte(']')
}

// ProForma renders the peptide in ProForma notation, e.g.
// [+42.0106]-PEPTC[+57.0215]IDE
func (p *Peptide) ProForma() string {
	var sb strings.Builder
	sb.Grow(len(p.Sequence) * 2)
	if p.NTerm != 0 {
		formatMod(&sb, p.NTerm)
		sb.WriteByte('-')
	}
	for i := 0; i < len(p.Sequence); i++ {
		sb.WriteByte(p.Sequence[i])
		if p.Mods[i] != 0 {
			formatMod(&sb, p.Mods[i])
		}
	}
	if p.CTerm != 0 {
		sb.WriteByte('-')
		formatMod(&sb, p.CTerm)
	}
	return sb.String()
}

func (p Peptide) String() string {
	return p.ProForma()
}
