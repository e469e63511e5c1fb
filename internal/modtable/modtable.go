// Package modtable turns static and variable modification maps into
// lookup tables that the digestion and scoring loops can index directly.
package modtable

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/524D/mzsearch/internal/mass"
)

// Terminus keys in modification maps
const (
	NTerm = '^'
	CTerm = '$'
)

// ErrInvalidMod is returned for modification entries that cannot be applied
var ErrInvalidMod = errors.New("invalid modification")

// Variable is a single variable modification
type Variable struct {
	Site byte // residue, NTerm or CTerm
	Mass float64
}

// Table holds static modifications per residue plus the terminal
// and variable entries
type Table struct {
	static      [256]float64
	staticNTerm float64
	staticCTerm float64
	variable    []Variable
}

// New validates the modification maps and builds the lookup table
func New(static, variable map[rune]float64) (*Table, error) {
	var t Table
	for site, m := range static {
		if err := checkEntry(site, m); err != nil {
			return nil, fmt.Errorf("static %w", err)
		}
		switch site {
		case NTerm:
			t.staticNTerm = m
		case CTerm:
			t.staticCTerm = m
		default:
			t.static[byte(site)] = m
		}
	}
	for site, m := range variable {
		if err := checkEntry(site, m); err != nil {
			return nil, fmt.Errorf("variable %w", err)
		}
		t.variable = append(t.variable, Variable{Site: byte(site), Mass: m})
	}
	sort.Slice(t.variable, func(i, j int) bool {
		if t.variable[i].Site != t.variable[j].Site {
			return t.variable[i].Site < t.variable[j].Site
		}
		return t.variable[i].Mass < t.variable[j].Mass
	})
	return &t, nil
}

func checkEntry(site rune, m float64) error {
	if site != NTerm && site != CTerm && (site > 255 || !mass.ValidResidue(byte(site))) {
		return fmt.Errorf("%w: unknown site %q", ErrInvalidMod, site)
	}
	if math.IsNaN(m) || math.IsInf(m, 0) {
		return fmt.Errorf("%w: mass for %q is not a number", ErrInvalidMod, site)
	}
	return nil
}

// Static returns the static modification mass of a residue
func (t *Table) Static(aa byte) float64 {
	return t.static[aa]
}

// StaticNTerm returns the static peptide N-terminal modification mass
func (t *Table) StaticNTerm() float64 {
	return t.staticNTerm
}

// StaticCTerm returns the static peptide C-terminal modification mass
func (t *Table) StaticCTerm() float64 {
	return t.staticCTerm
}

// Variable returns the variable modifications, ordered by site and mass.
// The returned slice must not be modified.
func (t *Table) Variable() []Variable {
	return t.variable
}

// HasVariable reports whether any variable modification is configured
func (t *Table) HasVariable() bool {
	return len(t.variable) > 0
}
