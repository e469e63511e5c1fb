// Package fasta reads protein sequences from (optionally gzip compressed)
// FASTA files.
package fasta

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// ErrNoProteins is returned when a FASTA file has no sequence records
var ErrNoProteins = errors.New("no proteins in FASTA input")

// Protein is a single FASTA record
type Protein struct {
	Accession   string
	Description string
	Sequence    string
}

// Open reads all proteins from a FASTA file. Files ending in .gz are
// decompressed.
func Open(path string) ([]Protein, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open gzip reader: %w", err)
		}
		defer gz.Close()
		r = gz
	}
	return Read(r)
}

// Read parses FASTA records from r. The accession is the first word of the
// header line; sequences are upper-cased and a trailing stop codon '*' is
// removed.
func Read(r io.Reader) ([]Protein, error) {
	scanner := bufio.NewScanner(r)
	// Increase buffer size for long sequences on a single line
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 16*1024*1024)

	var proteins []Protein
	var cur *Protein
	var seq strings.Builder
	flush := func() {
		if cur != nil {
			cur.Sequence = strings.TrimSuffix(strings.ToUpper(seq.String()), "*")
			if cur.Sequence != "" {
				proteins = append(proteins, *cur)
			}
		}
		seq.Reset()
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}
		if strings.HasPrefix(line, ">") {
			flush()
			header := strings.TrimPrefix(line, ">")
			acc, desc, _ := strings.Cut(header, " ")
			cur = &Protein{Accession: acc, Description: strings.TrimSpace(desc)}
			continue
		}
		if cur == nil {
			return nil, fmt.Errorf("sequence data before first header: %q", line)
		}
		seq.WriteString(line)
	}
	flush()
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan FASTA: %w", err)
	}
	if len(proteins) == 0 {
		return nil, ErrNoProteins
	}
	return proteins, nil
}
