package peptide

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrProForma is returned for strings that ParseProForma cannot read
var ErrProForma = errors.New("invalid ProForma string")

// ParseProForma reads the subset of ProForma written by Peptide.ProForma:
// mass shift modifications on residues and both termini.
// A plain sequence is accepted as well.
func ParseProForma(s string) (Peptide, error) {
	var seq strings.Builder
	var mods []float64
	var nTerm, cTerm float64

	readMod := func(i int) (float64, int, error) {
		end := strings.IndexByte(s[i:], ']')
		if end < 0 {
			return 0, 0, fmt.Errorf("%w: unterminated modification in %s", ErrProForma, s)
		}
		m, err := strconv.ParseFloat(s[i+1:i+end], 64)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: bad modification mass in %s: %w", ErrProForma, s, err)
		}
		return m, i + end + 1, nil
	}

	i := 0
	if strings.HasPrefix(s, "[") {
		m, next, err := readMod(0)
		if err != nil {
			return Peptide{}, err
		}
		if next >= len(s) || s[next] != '-' {
			return Peptide{}, fmt.Errorf("%w: N-terminal modification without '-' in %s", ErrProForma, s)
		}
		nTerm = m
		i = next + 1
	}
	for i < len(s) {
		switch c := s[i]; {
		case c == '-':
			if i+1 >= len(s) || s[i+1] != '[' {
				return Peptide{}, fmt.Errorf("%w: dangling '-' in %s", ErrProForma, s)
			}
			m, next, err := readMod(i + 1)
			if err != nil {
				return Peptide{}, err
			}
			if next != len(s) {
				return Peptide{}, fmt.Errorf("%w: trailing characters in %s", ErrProForma, s)
			}
			cTerm = m
			i = next
		case c == '[':
			if len(mods) == 0 {
				return Peptide{}, fmt.Errorf("%w: modification before first residue in %s", ErrProForma, s)
			}
			m, next, err := readMod(i)
			if err != nil {
				return Peptide{}, err
			}
			mods[len(mods)-1] += m
			i = next
		default:
			seq.WriteByte(c)
			mods = append(mods, 0)
			i++
		}
	}

	p, err := New(seq.String(), nil)
	if err != nil {
		return Peptide{}, err
	}
	copy(p.Mods, mods)
	p.NTerm = nTerm
	p.CTerm = cTerm
	p.updateMass()
	return p, nil
}
