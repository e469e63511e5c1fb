// Copyright 2018 Rob Marissen.
// SPDX-License-Identifier: MIT

// Command mzsearch identifies peptides in mzML files by searching a FASTA
// protein database.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/524D/mzsearch"
)

// Program name and version, stored with the search results
const progName = "mzSearch"

var progVersion = `Unknown`

const (
	infoDefault = iota
	infoSilent
	infoVerbose
)

// Command line parameters shared by all commands
type params struct {
	fastaFilename  string
	staticMods     []string // <residue>=<mass>
	variableMods   []string
	maxVarMods     int
	decoys         bool
	decoyTag       string
	enzyme         string
	missedCleavage int
	peptideLen     string // length range of peptides
	threads        int
	verbose        bool
	quiet          bool
}

var par params

var rootCmd = &cobra.Command{
	Use:   "mzsearch",
	Short: "Peptide identification from MS2 spectra",
	Long: `mzsearch digests the proteins in a FASTA file in silico and matches
the resulting peptides against the MS2 spectra in an mzML file.

Spectra are scored with a hyperscore and a Poisson score; target-decoy
competition is supported by generating reversed decoy peptides.`,
	Version:       progVersion,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		slog.SetDefault(newLogger(cmd.ErrOrStderr(), verbosity(par)))
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&par.fastaFilename, "fasta", "", "FASTA `filename` (may be gzip compressed)")
	pf.StringArrayVar(&par.staticMods, "static", nil,
		"static modification `<residue>=<mass>`, e.g. C=57.021464 (repeatable, ^ = N-term, $ = C-term)")
	pf.StringArrayVar(&par.variableMods, "variable", nil,
		"variable modification `<residue>=<mass>`, e.g. M=15.9949 (repeatable)")
	pf.IntVar(&par.maxVarMods, "max-variable-mods", mzsearch.DefaultMaxVariableMods,
		"maximum number of variable modifications per peptide")
	pf.BoolVar(&par.decoys, "decoys", true, "generate reversed decoy peptides")
	pf.StringVar(&par.decoyTag, "decoy-tag", mzsearch.DefaultDecoyTag, "prefix of decoy protein accessions")
	pf.StringVar(&par.enzyme, "enzyme", mzsearch.DefaultDigestParameters().Enzyme, "digestion enzyme")
	pf.IntVar(&par.missedCleavage, "missed-cleavages", mzsearch.DefaultDigestParameters().MissedCleavages,
		"maximum number of missed cleavages")
	pf.StringVar(&par.peptideLen, "length", "", "peptide length `range`, e.g. 7:50")
	pf.IntVar(&par.threads, "threads", runtime.GOMAXPROCS(0), "number of worker threads")
	pf.BoolVar(&par.verbose, "verbose", false, "print more verbose progress information")
	pf.BoolVar(&par.quiet, "quiet", false, "don't print any output except for errors")

	rootCmd.AddCommand(digestCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(annotateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", progName, err)
		os.Exit(1)
	}
}

func verbosity(p params) int {
	switch {
	case p.quiet:
		return infoSilent
	case p.verbose:
		return infoVerbose
	}
	return infoDefault
}

// newLogger returns a text logger on w for the given verbosity
func newLogger(w io.Writer, v int) *slog.Logger {
	level := slog.LevelInfo
	switch v {
	case infoSilent:
		level = slog.LevelError
	case infoVerbose:
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// databaseOptions converts the shared command line parameters into
// Database options
func databaseOptions(p params) ([]mzsearch.Option, error) {
	static, err := parseMods(p.staticMods)
	if err != nil {
		return nil, fmt.Errorf("--static: %w", err)
	}
	variable, err := parseMods(p.variableMods)
	if err != nil {
		return nil, fmt.Errorf("--variable: %w", err)
	}
	dp := mzsearch.DefaultDigestParameters()
	dp.Enzyme = p.enzyme
	dp.MissedCleavages = p.missedCleavage
	if p.peptideLen != "" {
		// Out of range lengths are rejected by the digest validation,
		// an omitted bound keeps its default
		minLen, maxLen, err := parseIntRange(p.peptideLen, math.MinInt32, math.MaxInt32)
		if err != nil {
			return nil, fmt.Errorf("--length %q: %w", p.peptideLen, err)
		}
		if minLen != math.MinInt32 {
			dp.MinLen = minLen
		}
		if maxLen != math.MaxInt32 {
			dp.MaxLen = maxLen
		}
	}
	return []mzsearch.Option{
		mzsearch.WithStaticMods(static),
		mzsearch.WithVariableMods(variable),
		mzsearch.WithMaxVariableMods(p.maxVarMods),
		mzsearch.WithGenerateDecoys(p.decoys),
		mzsearch.WithDecoyTag(p.decoyTag),
		mzsearch.WithDigest(dp),
		mzsearch.WithWorkers(p.threads),
		mzsearch.WithLogger(slog.Default()),
	}, nil
}

// buildDatabase builds the Database from the --fasta file
func buildDatabase(ctx context.Context, p params, extra ...mzsearch.Option) (*mzsearch.Database, error) {
	if p.fastaFilename == "" {
		return nil, fmt.Errorf("required flag \"fasta\" not set")
	}
	opts, err := databaseOptions(p)
	if err != nil {
		return nil, err
	}
	return mzsearch.Build(ctx, p.fastaFilename, append(opts, extra...)...)
}
