// Package decoy generates decoy peptides from target peptides.
package decoy

import (
	"errors"
	"fmt"
	"hash/fnv"
	"math/rand/v2"
)

// DefaultTag is prepended to the accession of decoy proteins
const DefaultTag = "rev_"

// maxShuffles is the number of attempts to find a shuffle that differs
// from the target before falling back to reversal
const maxShuffles = 10

// ErrInvalidGenerator is returned for unusable decoy settings
var ErrInvalidGenerator = errors.New("invalid decoy settings")

// Method selects how decoy sequences are derived
type Method int

const (
	// Reverse reverses all residues except the C-terminal one
	Reverse Method = iota
	// Shuffle permutes all residues except the C-terminal one,
	// seeded from Generator.Seed and the target sequence
	Shuffle
)

// CollisionPolicy decides what happens to a decoy whose sequence is also
// a target sequence
type CollisionPolicy int

const (
	// Drop discards colliding decoys; the target is kept
	Drop CollisionPolicy = iota
	// Keep retains colliding decoys and flags them
	Keep
)

// Generator produces decoys
type Generator struct {
	Tag       string
	Method    Method
	Seed      uint64
	Collision CollisionPolicy
}

// Pair links a target sequence to its decoy
type Pair struct {
	Target    string
	Decoy     string
	Collision bool
}

// NewGenerator returns a reversing generator with the default tag
func NewGenerator() Generator {
	return Generator{Tag: DefaultTag}
}

// Validate checks the generator settings
func (g Generator) Validate() error {
	if g.Tag == "" {
		return fmt.Errorf("%w: empty decoy tag", ErrInvalidGenerator)
	}
	if g.Method != Reverse && g.Method != Shuffle {
		return fmt.Errorf("%w: unknown method %d", ErrInvalidGenerator, g.Method)
	}
	if g.Collision != Drop && g.Collision != Keep {
		return fmt.Errorf("%w: unknown collision policy %d", ErrInvalidGenerator, g.Collision)
	}
	return nil
}

// Accession returns the decoy accession for a target protein accession
func (g Generator) Accession(acc string) string {
	return g.Tag + acc
}

// Decoy returns the decoy sequence of a target sequence.
// Residue composition is preserved, so the decoy has the target's mass.
func (g Generator) Decoy(seq string) string {
	if len(seq) < 3 {
		return seq
	}
	if g.Method == Shuffle {
		if s, ok := g.shuffle(seq); ok {
			return s
		}
	}
	return reverse(seq)
}

func reverse(seq string) string {
	b := []byte(seq)
	n := len(b) - 1 // C-terminal residue stays in place
	for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}

func (g Generator) shuffle(seq string) (string, bool) {
	h := fnv.New64a()
	h.Write([]byte(seq))
	r := rand.New(rand.NewPCG(g.Seed, h.Sum64()))
	b := []byte(seq)
	n := len(b) - 1
	for try := 0; try < maxShuffles; try++ {
		r.Shuffle(n, func(i, j int) { b[i], b[j] = b[j], b[i] })
		if s := string(b); s != seq {
			return s, true
		}
	}
	return "", false
}

// Pairs derives one decoy for every target sequence and applies the
// collision policy. targets must not contain duplicates. The result is in
// the order of targets.
func (g Generator) Pairs(targets []string) []Pair {
	isTarget := make(map[string]struct{}, len(targets))
	for _, t := range targets {
		isTarget[t] = struct{}{}
	}
	pairs := make([]Pair, 0, len(targets))
	for _, t := range targets {
		d := g.Decoy(t)
		_, collision := isTarget[d]
		if collision && g.Collision == Drop {
			continue
		}
		pairs = append(pairs, Pair{Target: t, Decoy: d, Collision: collision})
	}
	return pairs
}
