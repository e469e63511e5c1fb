// Package mass holds the monoisotopic masses and mass tolerance arithmetic
// shared by the search engine.
package mass

import "errors"

const (
	Proton  = float64(1.007276466879)
	H2O     = float64(18.0105647)
	Neutron = float64(1.00335)
	// C13 is the mass difference between the 13C and 12C isotopes,
	// used for precursor isotope error correction
	C13 = float64(1.0033548378)
)

// ErrInvalidResidue is returned for characters that are not amino acids
var ErrInvalidResidue = errors.New("invalid amino acid")

// Masses of amino acids (minus H2O)
var aaMass = map[byte]float64{
	'A': 71.0371138,
	'C': 103.0091848,
	'D': 115.0269430,
	'E': 129.0425931,
	'F': 147.0684139,
	'G': 57.0214637,
	'H': 137.0589119,
	'I': 113.0840640,
	'K': 128.0949630,
	'L': 113.0840640,
	'M': 131.0404849,
	'N': 114.0429274,
	'P': 97.0527638,
	'O': 237.1477269, // Pyrrolysine
	'Q': 128.0585775,
	'R': 156.1011110,
	'S': 87.0320284,
	'T': 101.0476785,
	'U': 150.9536355, // Selenocysteine
	'V': 99.0684139,
	'W': 186.0793129,
	'Y': 163.0633285,
}

// residueTable is aaMass flattened into a lookup indexed by residue byte.
// Zero means "not an amino acid".
var residueTable [256]float64

func init() {
	for aa, m := range aaMass {
		residueTable[aa] = m
	}
}

// Residue returns the monoisotopic residue mass of aa
func Residue(aa byte) (float64, bool) {
	m := residueTable[aa]
	return m, m != 0
}

// ValidResidue reports whether aa is one of the supported amino acids
func ValidResidue(aa byte) bool {
	return residueTable[aa] != 0
}

// Peptide computes the lowest isotope (neutral) mass of an unmodified peptide
func Peptide(seq string) (float64, error) {
	m := H2O
	for i := 0; i < len(seq); i++ {
		aam := residueTable[seq[i]]
		if aam == 0 {
			return 0.0, ErrInvalidResidue
		}
		m += aam
	}
	return m, nil
}

// NeutralFromMz converts a precursor m/z and charge into a neutral mass
func NeutralFromMz(mz float64, charge int) float64 {
	return (mz - Proton) * float64(charge)
}

// MzFromNeutral converts a neutral mass into the m/z at the given charge
func MzFromNeutral(m float64, charge int) float64 {
	fCharge := float64(charge)
	return (m + fCharge*Proton) / fCharge
}
