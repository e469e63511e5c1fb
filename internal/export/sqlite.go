// Package export writes search results to SQLite database files.
package export

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/524D/mzsearch"
)

// ProteinSeparator joins the accessions of a PSM in the proteins column
const ProteinSeparator = ";"

// Date format for the run table (ISO 8601)
const runDateFormat = "2006-01-02T15:04:05Z07:00"

// Writer writes PSMs to an SQLite database. It is safe for concurrent use.
type Writer struct {
	mu      sync.Mutex
	db      *sql.DB
	psmStmt *sql.Stmt
	psmID   int
}

// NewWriter creates the database at outputPath, replacing an existing file
func NewWriter(outputPath string) (*Writer, error) {
	if err := os.Remove(outputPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to remove old database: %w", err)
	}
	db, err := sql.Open("sqlite3", outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	w := &Writer{db: db, psmID: 1}
	if err := w.createTables(); err != nil {
		db.Close()
		return nil, err
	}
	if err := w.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}
	return w, nil
}

// createTables creates the required database schema
func (w *Writer) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS PsmTable (
		PsmId INTEGER PRIMARY KEY,
		SpectrumTitle TEXT,
		Rank INTEGER,
		Peptide TEXT,
		PeptideLen INTEGER,
		Proteins TEXT,
		NumProteins INTEGER,
		Decoy BOOL,
		ExpMass DOUBLE,
		CalcMass DOUBLE,
		Charge INTEGER,
		RetentionTime DOUBLE,
		DeltaMass DOUBLE,
		IsotopeError DOUBLE,
		AveragePPM DOUBLE,
		Hyperscore DOUBLE,
		DeltaHyperscore DOUBLE,
		MatchedPeaks INTEGER,
		LongestB INTEGER,
		LongestY INTEGER,
		LongestYPct INTEGER,
		MissedCleavages INTEGER,
		MatchedIntensityPct DOUBLE,
		ScoredCandidates INTEGER,
		Poisson DOUBLE
	);

	CREATE TABLE IF NOT EXISTS RunTable (
		CreationDate TEXT,
		Fasta TEXT,
		Spectra TEXT,
		Parameters TEXT
	);
	`
	if _, err := w.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}

// prepareStatements prepares SQL statements for batch insertion
func (w *Writer) prepareStatements() error {
	var err error
	w.psmStmt, err = w.db.Prepare(`
		INSERT INTO PsmTable (
			PsmId, SpectrumTitle, Rank, Peptide, PeptideLen, Proteins,
			NumProteins, Decoy, ExpMass, CalcMass, Charge, RetentionTime,
			DeltaMass, IsotopeError, AveragePPM, Hyperscore, DeltaHyperscore,
			MatchedPeaks, LongestB, LongestY, LongestYPct, MissedCleavages,
			MatchedIntensityPct, ScoredCandidates, Poisson
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare PSM statement: %w", err)
	}
	return nil
}

// WritePSMs writes the ranked PSMs of one spectrum in a single transaction.
// The rank of a PSM is its position in psms, starting at 1.
func (w *Writer) WritePSMs(psms []mzsearch.Psm) error {
	if len(psms) == 0 {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	stmt := tx.Stmt(w.psmStmt)
	for i, p := range psms {
		_, err := stmt.Exec(
			w.psmID,
			p.SpectrumTitle,
			i+1,
			p.Peptide,
			p.PeptideLen,
			strings.Join(p.Proteins, ProteinSeparator),
			p.NumProteins,
			p.Decoy,
			p.ExpMass,
			p.CalcMass,
			p.Charge,
			p.RT,
			p.DeltaMass,
			p.IsotopeError,
			p.AveragePPM,
			p.Hyperscore,
			p.DeltaHyperscore,
			p.MatchedPeaks,
			p.LongestB,
			p.LongestY,
			p.LongestYPct,
			p.MissedCleavages,
			p.MatchedIntensityPct,
			p.ScoredCandidates,
			p.Poisson,
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert PSM: %w", err)
		}
		w.psmID++
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit PSMs: %w", err)
	}
	return nil
}

// Finalize writes the run table and closes the database
func (w *Writer) Finalize(fasta, spectra string, par mzsearch.Parameters) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	parJSON, err := json.Marshal(par)
	if err != nil {
		return fmt.Errorf("failed to encode parameters: %w", err)
	}
	_, err = w.db.Exec(`
		INSERT INTO RunTable (CreationDate, Fasta, Spectra, Parameters)
		VALUES (?, ?, ?, ?)
	`, time.Now().Format(runDateFormat), fasta, spectra, string(parJSON))
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	if w.psmStmt != nil {
		w.psmStmt.Close()
	}
	if err := w.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}
