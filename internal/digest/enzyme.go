package digest

import (
	"fmt"
	"strings"
)

// Enzyme describes where a protease cleaves.
// A C-terminal enzyme cuts after any residue in CleaveAt unless the next
// residue is in Restrict; an N-terminal enzyme cuts before any residue in
// CleaveAt unless the previous residue is in Restrict.
// An empty CleaveAt never cleaves.
type Enzyme struct {
	Name      string
	CleaveAt  string
	Restrict  string
	CTerminal bool
}

// Built-in enzymes
var (
	Trypsin      = Enzyme{Name: "trypsin", CleaveAt: "KR", Restrict: "P", CTerminal: true}
	TrypsinP     = Enzyme{Name: "trypsin/p", CleaveAt: "KR", CTerminal: true}
	LysC         = Enzyme{Name: "lys-c", CleaveAt: "K", Restrict: "P", CTerminal: true}
	ArgC         = Enzyme{Name: "arg-c", CleaveAt: "R", Restrict: "P", CTerminal: true}
	AspN         = Enzyme{Name: "asp-n", CleaveAt: "D", CTerminal: false}
	Chymotrypsin = Enzyme{Name: "chymotrypsin", CleaveAt: "FWYL", Restrict: "P", CTerminal: true}
	NoCleavage   = Enzyme{Name: "none", CTerminal: true}
)

var enzymes = []Enzyme{Trypsin, TrypsinP, LysC, ArgC, AspN, Chymotrypsin, NoCleavage}

// EnzymeByName looks up a built-in enzyme, case insensitive
func EnzymeByName(name string) (Enzyme, error) {
	for _, e := range enzymes {
		if strings.EqualFold(e.Name, name) {
			return e, nil
		}
	}
	return Enzyme{}, fmt.Errorf("%w: unknown enzyme %q", ErrInvalidParameters, name)
}

// boundaries returns, for each of the len(seq)+1 positions between residues,
// whether the enzyme cuts there. Both sequence ends are always boundaries.
func (e Enzyme) boundaries(seq string) []bool {
	n := len(seq)
	cut := make([]bool, n+1)
	cut[0] = true
	cut[n] = true
	if e.CleaveAt == "" {
		return cut
	}
	for k := 1; k < n; k++ {
		if e.CTerminal {
			cut[k] = strings.IndexByte(e.CleaveAt, seq[k-1]) >= 0 &&
				strings.IndexByte(e.Restrict, seq[k]) < 0
		} else {
			cut[k] = strings.IndexByte(e.CleaveAt, seq[k]) >= 0 &&
				strings.IndexByte(e.Restrict, seq[k-1]) < 0
		}
	}
	return cut
}
