package fasta

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/klauspost/compress/gzip"
)

const testFasta = `>sp|P00001|TEST1 First protein
MKWVTFISLL
LLFSSAYSR*
; comment line
>sp|P00002|TEST2
peptidek

>empty
>sp|P00003|TEST3 Third
ACDEFGHIK
`

var wantProteins = []Protein{
	{Accession: "sp|P00001|TEST1", Description: "First protein", Sequence: "MKWVTFISLLLLFSSAYSR"},
	{Accession: "sp|P00002|TEST2", Sequence: "PEPTIDEK"},
	{Accession: "sp|P00003|TEST3", Description: "Third", Sequence: "ACDEFGHIK"},
}

func TestRead(t *testing.T) {
	got, err := Read(strings.NewReader(testFasta))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if diff := cmp.Diff(wantProteins, got); diff != "" {
		t.Errorf("Read mismatch (-want +got):\n%s", diff)
	}
}

func TestReadErrors(t *testing.T) {
	if _, err := Read(strings.NewReader("")); !errors.Is(err, ErrNoProteins) {
		t.Errorf("Expected error: %v, got: %v", ErrNoProteins, err)
	}
	if _, err := Read(strings.NewReader("PEPTIDE\n>x\nK\n")); err == nil {
		t.Errorf("Expected error for sequence before header")
	}
}

func TestOpenGzip(t *testing.T) {
	dir := t.TempDir()
	fn := filepath.Join(dir, "test.fasta.gz")
	f, err := os.Create(fn)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	zw := gzip.NewWriter(f)
	if _, err := zw.Write([]byte(testFasta)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	zw.Close()
	f.Close()

	got, err := Open(fn)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if diff := cmp.Diff(wantProteins, got); diff != "" {
		t.Errorf("Open mismatch (-want +got):\n%s", diff)
	}
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.fasta"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected error: %v, got: %v", os.ErrNotExist, err)
	}
}
