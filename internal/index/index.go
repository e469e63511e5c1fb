// Package index builds the mass sorted peptide index that candidate
// retrieval runs against.
package index

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/524D/mzsearch/internal/decoy"
	"github.com/524D/mzsearch/internal/digest"
	"github.com/524D/mzsearch/internal/fasta"
	"github.com/524D/mzsearch/internal/mass"
	"github.com/524D/mzsearch/internal/modtable"
	"github.com/524D/mzsearch/internal/peptide"
)

// Parameters control how the index is built
type Parameters struct {
	Digest          digest.Parameters
	Mods            *modtable.Table // nil means no modifications
	GenerateDecoys  bool
	Decoys          decoy.Generator
	MaxVariableMods int
	Workers         int // 0 means GOMAXPROCS
	Logger          *slog.Logger
}

// Index is an immutable collection of peptides sorted by monoisotopic mass.
// It is safe for concurrent use once Build returns.
type Index struct {
	peptides []peptide.Peptide
	masses   []float64 // masses[i] == peptides[i].Monoisotopic
	proteins []string  // accession per protein id
}

// entry is a unique peptide sequence with the proteins it occurs in
type entry struct {
	seq       string
	proteins  []int
	missed    int
	decoy     bool
	collision bool
}

// Build digests proteins, merges identical sequences, adds decoys and
// modified forms, and sorts the result by mass.
func Build(ctx context.Context, proteins []fasta.Protein, par Parameters) (*Index, error) {
	if err := par.Digest.Validate(); err != nil {
		return nil, err
	}
	if par.GenerateDecoys {
		if err := par.Decoys.Validate(); err != nil {
			return nil, err
		}
	}
	logger := par.Logger
	if logger == nil {
		logger = slog.Default().With("component", "index")
	}
	workers := par.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	t := time.Now()

	digests, err := digestAll(ctx, proteins, par.Digest, workers)
	if err != nil {
		return nil, err
	}
	entries := mergeDigests(digests)
	logger.Debug("digested proteins",
		"proteins", len(proteins),
		"sequences", len(entries),
		"elapsed", time.Since(t))

	idx := &Index{proteins: make([]string, 0, 2*len(proteins))}
	for _, p := range proteins {
		idx.proteins = append(idx.proteins, p.Accession)
	}
	if par.GenerateDecoys {
		for _, p := range proteins {
			idx.proteins = append(idx.proteins, par.Decoys.Accession(p.Accession))
		}
		entries = append(entries, decoyEntries(entries, par.Decoys, len(proteins))...)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	idx.peptides, err = expand(ctx, entries, par, workers)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(idx.peptides, func(i, j int) bool {
		a, b := &idx.peptides[i], &idx.peptides[j]
		if a.Monoisotopic != b.Monoisotopic {
			return a.Monoisotopic < b.Monoisotopic
		}
		if a.Sequence != b.Sequence {
			return a.Sequence < b.Sequence
		}
		return !a.Decoy && b.Decoy
	})
	idx.masses = make([]float64, len(idx.peptides))
	for i := range idx.peptides {
		idx.masses[i] = idx.peptides[i].Monoisotopic
	}
	logger.Info("peptide index built",
		"proteins", len(idx.proteins),
		"peptides", len(idx.peptides),
		"elapsed", time.Since(t))
	return idx, nil
}

// digestAll digests every protein, in parallel. The result is ordered
// like proteins.
func digestAll(ctx context.Context, proteins []fasta.Protein, dp digest.Parameters, workers int) ([][]digest.Digest, error) {
	out := make([][]digest.Digest, len(proteins))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range proteins {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i] = dp.Digest(proteins[i].Sequence)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// mergeDigests collapses identical sequences from different proteins.
// Protein ids are the positions in digests, so id lists come out sorted.
func mergeDigests(digests [][]digest.Digest) []entry {
	bySeq := make(map[string]int)
	var entries []entry
	for protID, ds := range digests {
		for _, d := range ds {
			if i, ok := bySeq[d.Sequence]; ok {
				e := &entries[i]
				if e.proteins[len(e.proteins)-1] != protID {
					e.proteins = append(e.proteins, protID)
				}
				if d.MissedCleavages < e.missed {
					e.missed = d.MissedCleavages
				}
				continue
			}
			bySeq[d.Sequence] = len(entries)
			entries = append(entries, entry{
				seq:      d.Sequence,
				proteins: []int{protID},
				missed:   d.MissedCleavages,
			})
		}
	}
	return entries
}

// decoyEntries creates the decoy for every target entry. Decoy protein ids
// are offset by nTargets. Decoys with identical sequences are merged.
func decoyEntries(targets []entry, g decoy.Generator, nTargets int) []entry {
	seqs := make([]string, len(targets))
	bySeq := make(map[string]int, len(targets))
	for i, e := range targets {
		seqs[i] = e.seq
		bySeq[e.seq] = i
	}
	var decoys []entry
	decoyBySeq := make(map[string]int)
	for _, pair := range g.Pairs(seqs) {
		t := targets[bySeq[pair.Target]]
		ids := make([]int, len(t.proteins))
		for k, id := range t.proteins {
			ids[k] = id + nTargets
		}
		if i, ok := decoyBySeq[pair.Decoy]; ok {
			decoys[i].proteins = unionSorted(decoys[i].proteins, ids)
			continue
		}
		decoyBySeq[pair.Decoy] = len(decoys)
		decoys = append(decoys, entry{
			seq:       pair.Decoy,
			proteins:  ids,
			missed:    t.missed,
			decoy:     true,
			collision: pair.Collision,
		})
	}
	return decoys
}

func unionSorted(a, b []int) []int {
	out := make([]int, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) || j < len(b) {
		switch {
		case j == len(b) || (i < len(a) && a[i] < b[j]):
			out = append(out, a[i])
			i++
		case i == len(a) || b[j] < a[i]:
			out = append(out, b[j])
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	return out
}

// expand applies modifications to every entry, producing all modified
// forms. Chunks are processed in parallel and concatenated in order.
func expand(ctx context.Context, entries []entry, par Parameters, workers int) ([]peptide.Peptide, error) {
	const chunkSize = 4096
	nChunks := (len(entries) + chunkSize - 1) / chunkSize
	chunks := make([][]peptide.Peptide, nChunks)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for c := 0; c < nChunks; c++ {
		g.Go(func() error {
			end := min((c+1)*chunkSize, len(entries))
			var out []peptide.Peptide
			for _, e := range entries[c*chunkSize : end] {
				if err := ctx.Err(); err != nil {
					return err
				}
				p, err := peptide.New(e.seq, par.Mods)
				if err != nil {
					return fmt.Errorf("peptide %s: %w", e.seq, err)
				}
				p.Proteins = e.proteins
				p.MissedCleavages = e.missed
				p.Decoy = e.decoy
				p.Collision = e.collision
				p.Variants(par.Mods, par.MaxVariableMods, func(v peptide.Peptide) bool {
					out = append(out, v)
					return true
				})
			}
			chunks[c] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	var n int
	for _, c := range chunks {
		n += len(c)
	}
	peptides := make([]peptide.Peptide, 0, n)
	for _, c := range chunks {
		peptides = append(peptides, c...)
	}
	return peptides, nil
}

// Query returns the half open range [lo, hi) of peptides whose mass lies
// within tol of m
func (idx *Index) Query(m float64, tol mass.Tolerance) (int, int) {
	mMin, mMax := tol.Bounds(m)
	lo := sort.SearchFloat64s(idx.masses, mMin)
	hi := sort.Search(len(idx.masses), func(i int) bool { return idx.masses[i] > mMax })
	return lo, hi
}

// Len returns the number of peptides, including decoys and modified forms
func (idx *Index) Len() int {
	return len(idx.peptides)
}

// Peptide returns peptide i. The result must not be modified.
func (idx *Index) Peptide(i int) *peptide.Peptide {
	return &idx.peptides[i]
}

// Accessions maps protein ids to accessions
func (idx *Index) Accessions(ids []int) []string {
	acc := make([]string, len(ids))
	for i, id := range ids {
		acc[i] = idx.proteins[id]
	}
	return acc
}

// NumProteins returns the number of protein accessions, including decoys
func (idx *Index) NumProteins() int {
	return len(idx.proteins)
}

// Fragments returns the number of b and y ions (charge 1) over all peptides
func (idx *Index) Fragments() int {
	var n int
	for i := range idx.peptides {
		n += 2 * (idx.peptides[i].Len() - 1)
	}
	return n
}
