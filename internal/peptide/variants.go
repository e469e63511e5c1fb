package peptide

import "github.com/524D/mzsearch/internal/modtable"

// DefaultMaxVariableMods is the default cap on simultaneously modified sites
const DefaultMaxVariableMods = 2

// site is a position that can carry a variable modification.
// pos -1 is the N-terminus, pos len(seq) the C-terminus.
type site struct {
	pos    int
	masses []float64
}

func (p *Peptide) variableSites(t *modtable.Table) []site {
	var sites []site
	n := len(p.Sequence)
	byPos := func(pos int, aa byte) {
		var masses []float64
		for _, v := range t.Variable() {
			if v.Site == aa {
				masses = append(masses, v.Mass)
			}
		}
		if len(masses) > 0 {
			sites = append(sites, site{pos: pos, masses: masses})
		}
	}
	byPos(-1, modtable.NTerm)
	for i := 0; i < n; i++ {
		byPos(i, p.Sequence[i])
	}
	byPos(n, modtable.CTerm)
	return sites
}

// Variants calls yield for p and for every combination of variable
// modifications with at most maxMods modified sites. Each site carries at
// most one variable modification. The unmodified form is yielded first and
// the order is deterministic. Variants are generated on demand; iteration
// stops when yield returns false.
func (p Peptide) Variants(t *modtable.Table, maxMods int, yield func(Peptide) bool) {
	if t == nil || !t.HasVariable() || maxMods <= 0 {
		yield(p)
		return
	}
	sites := p.variableSites(t)
	n := len(p.Sequence)
	// delta[0] is the N-terminus, delta[n+1] the C-terminus
	delta := make([]float64, n+2)

	emit := func() bool {
		v := p
		v.Mods = make([]float64, n)
		for i := 0; i < n; i++ {
			v.Mods[i] = p.Mods[i] + delta[i+1]
		}
		v.NTerm = p.NTerm + delta[0]
		v.CTerm = p.CTerm + delta[n+1]
		v.updateMass()
		return yield(v)
	}

	var rec func(k, used int) bool
	rec = func(k, used int) bool {
		if k == len(sites) {
			return emit()
		}
		if !rec(k+1, used) {
			return false
		}
		if used == maxMods {
			return true
		}
		s := sites[k]
		for _, m := range s.masses {
			delta[s.pos+1] = m
			if !rec(k+1, used+1) {
				delta[s.pos+1] = 0
				return false
			}
		}
		delta[s.pos+1] = 0
		return true
	}
	rec(0, 0)
}
