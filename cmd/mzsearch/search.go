package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/spf13/cobra"

	"github.com/524D/mzsearch"
	"github.com/524D/mzsearch/internal/export"
	"github.com/524D/mzsearch/internal/mzidentml"
	"github.com/524D/mzsearch/internal/mzml"
	"github.com/524D/mzsearch/spectrum"
)

// Parameters of the search command
type searchParams struct {
	mzMLFilename   string
	outFilename    string
	mzidFilename   string // optional mzIdentML output
	paramsFilename string // Filename where JSON search parameters will be written
	report         int
	precursorPPM   float64
	fragmentPPM    float64
	isotopeErrors  string // isotope error range
	charges        string // precursor charge range for spectra without charge
	fragmentMz     string // fragment m/z range
	fragmentCharge int
	minMatched     int
	topN           int
	debugSpecs     string // Print debug output for given spectrum range
}

var spar searchParams

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search the MS2 spectra of an mzML file",
	Long: `Search every MS2 spectrum of an mzML file against the peptides of a FASTA
file and write the best matches to an SQLite database.

Examples:
  # Search with default parameters, results go to yeast.psms.db
  mzsearch search --fasta yeast.fasta --mzml yeast.mzML

  # Report the 5 best matches per spectrum, 10 ppm precursor tolerance
  mzsearch search --fasta yeast.fasta --mzml yeast.mzML --report 5 --precursor-ppm 10

  # Print annotated peaks of spectra 3 to 6
  mzsearch search --fasta yeast.fasta --mzml yeast.mzML --debug 3:6`,
	Args: cobra.NoArgs,
	RunE: runSearch,
}

func init() {
	f := searchCmd.Flags()
	f.StringVar(&spar.mzMLFilename, "mzml", "", "mzML `filename` (may be gzip compressed)")
	f.StringVarP(&spar.outFilename, "out", "o", "", "SQLite output `filename` (default <mzML name>.psms.db)")
	f.StringVar(&spar.mzidFilename, "mzid", "", "mzIdentML output `filename` (optional)")
	f.StringVar(&spar.paramsFilename, "params", "", "`filename` for output of the search parameters as JSON")
	f.IntVar(&spar.report, "report", mzsearch.DefaultReportPSMs, "number of PSMs to report per spectrum")
	f.Float64Var(&spar.precursorPPM, "precursor-ppm", mzsearch.DefaultPrecursorTolerancePPM, "precursor mass tolerance (ppm)")
	f.Float64Var(&spar.fragmentPPM, "fragment-ppm", mzsearch.DefaultFragmentTolerancePPM, "fragment mass tolerance (ppm)")
	f.StringVar(&spar.isotopeErrors, "isotope-errors",
		fmt.Sprintf("%d:%d", mzsearch.DefaultMinIsotopeError, mzsearch.DefaultMaxIsotopeError),
		"isotope error `range`")
	f.StringVar(&spar.charges, "charges",
		fmt.Sprintf("%d:%d", mzsearch.DefaultMinCharge, mzsearch.DefaultMaxCharge),
		"charge `range` tried for precursors without charge")
	f.StringVar(&spar.fragmentMz, "fragment-mz",
		fmt.Sprintf("%g:%g", mzsearch.DefaultMinFragmentMz, mzsearch.DefaultMaxFragmentMz),
		"fragment m/z `range`")
	f.IntVar(&spar.fragmentCharge, "fragment-charge", mzsearch.DefaultMaxFragmentCharge,
		"highest fragment charge, 0 means up to the precursor charge")
	f.IntVar(&spar.minMatched, "min-matched", mzsearch.DefaultMinMatchedPeaks,
		"minimum number of matched peaks of a reported PSM")
	f.IntVar(&spar.topN, "top-n", mzml.DefaultProcessor().TakeTopN,
		"number of most intense peaks to keep per MS2 spectrum, <1 means all peaks")
	f.StringVar(&spar.debugSpecs, "debug", "",
		"print debug output for given scan index `range` e.g. 3:6 (position in the mzML file, from 0)")
}

// searchParameters converts the search flags into SearchParameters
func searchParameters(sp searchParams) (mzsearch.SearchParameters, error) {
	p := mzsearch.DefaultSearchParameters()
	p.PrecursorTolerancePPM = sp.precursorPPM
	p.FragmentTolerancePPM = sp.fragmentPPM
	p.MaxFragmentCharge = sp.fragmentCharge
	p.MinMatchedPeaks = sp.minMatched

	var err error
	p.MinIsotopeError, p.MaxIsotopeError, err = parseIntRange(sp.isotopeErrors, math.MinInt32, math.MaxInt32)
	if err != nil {
		return p, fmt.Errorf("--isotope-errors %q: %w", sp.isotopeErrors, err)
	}
	p.MinCharge, p.MaxCharge, err = parseIntRange(sp.charges, 1, math.MaxInt32)
	if err != nil {
		return p, fmt.Errorf("--charges %q: %w", sp.charges, err)
	}
	p.MinFragmentMz, p.MaxFragmentMz, err = parseFloat64Range(sp.fragmentMz, 0, math.MaxFloat64)
	if err != nil {
		return p, fmt.Errorf("--fragment-mz %q: %w", sp.fragmentMz, err)
	}
	return p, nil
}

// outputFilename returns the name of the results database, by default the
// mzML name with extension .psms.db
func outputFilename(sp searchParams) string {
	if sp.outFilename != "" {
		return sp.outFilename
	}
	name := strings.TrimSuffix(sp.mzMLFilename, ".gz")
	return strings.TrimSuffix(name, filepath.Ext(name)) + ".psms.db"
}

// Search run description written by --params
type searchInfo struct {
	Program    string              `json:"program"`
	Version    string              `json:"version"`
	Fasta      string              `json:"fasta"`
	MzML       string              `json:"mzml"`
	Report     int                 `json:"report"`
	Parameters mzsearch.Parameters `json:"parameters"`
}

func writeParams(w io.Writer, info searchInfo) error {
	e := json.NewEncoder(w)
	e.SetIndent(``, `  `) // Make output easier to read for humans
	return e.Encode(info)
}

func writeParamsFile(filename string, info searchInfo) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := writeParams(f, info); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func runSearch(cmd *cobra.Command, args []string) error {
	if spar.mzMLFilename == "" {
		return fmt.Errorf("required flag \"mzml\" not set")
	}
	sp, err := searchParameters(spar)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	start := time.Now()
	db, err := buildDatabase(ctx, par, mzsearch.WithSearchParameters(sp))
	if err != nil {
		return err
	}
	slog.Info("database built", "peptides", db.Peptides(), "fragments", db.Fragments(),
		"elapsed", time.Since(start))

	proc := mzml.DefaultProcessor()
	proc.TakeTopN = spar.topN
	proc.MinMz, proc.MaxMz = sp.MinFragmentMz, sp.MaxFragmentMz
	mzML, err := mzml.Open(spar.mzMLFilename, proc)
	if err != nil {
		return fmt.Errorf("read mzML file %s: %w", spar.mzMLFilename, err)
	}
	spectra, err := mzML.Spectra()
	if err != nil {
		return fmt.Errorf("decode spectra of %s: %w", spar.mzMLFilename, err)
	}

	info := searchInfo{
		Program:    progName,
		Version:    progVersion,
		Fasta:      par.fastaFilename,
		MzML:       spar.mzMLFilename,
		Report:     spar.report,
		Parameters: db.Parameters(),
	}
	if spar.paramsFilename != "" {
		if err := writeParamsFile(spar.paramsFilename, info); err != nil {
			return fmt.Errorf("write parameters: %w", err)
		}
	}

	dbg, err := newDebugger(cmd.OutOrStdout(), spar.debugSpecs, len(spectra))
	if err != nil {
		return err
	}
	outName := outputFilename(spar)
	w, err := export.NewWriter(outName)
	if err != nil {
		return err
	}
	writers := []psmWriter{w}
	var mzid *mzidentml.Writer
	if spar.mzidFilename != "" {
		mzid = mzidentml.NewWriter(mzidentml.Run{
			Software: progName,
			Version:  progVersion,
			Fasta:    par.fastaFilename,
			Spectra:  spar.mzMLFilename,
		})
		writers = append(writers, mzid)
	}
	stats, err := searchAll(ctx, db, spectra, writers, par.threads, spar.report, dbg)
	if ferr := w.Finalize(info.Fasta, info.MzML, info.Parameters); err == nil {
		err = ferr
	}
	if err != nil {
		return err
	}
	if mzid != nil {
		if err := mzid.Write(spar.mzidFilename); err != nil {
			return fmt.Errorf("write mzIdentML: %w", err)
		}
	}
	slog.Info("search finished", "spectra", stats.searched, "identified", stats.identified,
		"psms", stats.psms, "output", outName, "elapsed", time.Since(start))
	return nil
}

// psmWriter stores the ranked PSMs of one spectrum
type psmWriter interface {
	WritePSMs(psms []mzsearch.Psm) error
}

type searchStats struct {
	searched   int
	identified int
	psms       int
}

// searchAll searches the MS2 spectra with a pool of threads workers and
// writes the PSMs of every spectrum to each of writers
func searchAll(ctx context.Context, db *mzsearch.Database, spectra []*spectrum.Spectrum,
	writers []psmWriter, threads, report int, dbg *debugger) (searchStats, error) {
	if threads < 1 {
		threads = 1
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	pool, err := ants.NewPool(threads)
	if err != nil {
		return searchStats{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		stats    searchStats
		firstErr error
	)
	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
			cancel()
		}
		mu.Unlock()
	}

	for i, s := range spectra {
		if s.Level != 2 {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			psms, err := db.Search(ctx, s, report)
			if err != nil {
				if ctx.Err() == nil {
					slog.Warn("spectrum skipped", "spectrum", s.Title, "error", err)
				}
				return
			}
			for _, w := range writers {
				if err := w.WritePSMs(psms); err != nil {
					fail(err)
					return
				}
			}
			dbg.logSpectrum(db, i, s, psms)
			mu.Lock()
			stats.searched++
			if len(psms) > 0 {
				stats.identified++
			}
			stats.psms += len(psms)
			mu.Unlock()
		})
		if err != nil {
			wg.Done()
			fail(fmt.Errorf("submit spectrum %s: %w", s.Title, err))
			break
		}
	}
	wg.Wait()

	if firstErr != nil {
		return stats, firstErr
	}
	return stats, ctx.Err()
}
