package mzidentml

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/524D/mzsearch"
	"github.com/524D/mzsearch/internal/mass"
	"github.com/524D/mzsearch/internal/peptide"
)

const (
	unitMinute   = "UO:0000031"
	dateFormat   = "2006-01-02T15:04:05"
	softwareID   = "AS_mzsearch"
	searchDBID   = "SDB_1"
	spectraID    = "SD_1"
	specIdentID  = "SIL_1"
	scoreFmtPrec = 6
)

// Run describes the search that produced the PSMs
type Run struct {
	Software string
	Version  string
	Fasta    string
	Spectra  string
}

type spectrumResult struct {
	title string
	rt    float64
	psms  []mzsearch.Psm
}

// Writer collects PSMs and writes them as mzIdentML.
// WritePSMs is safe for concurrent use.
type Writer struct {
	mu      sync.Mutex
	run     Run
	results []spectrumResult
}

// NewWriter returns a Writer for the PSMs of run
func NewWriter(run Run) *Writer {
	return &Writer{run: run}
}

// WritePSMs adds the ranked PSMs of one spectrum.
// The rank of a PSM is its position in psms, starting at 1.
func (w *Writer) WritePSMs(psms []mzsearch.Psm) error {
	if len(psms) == 0 {
		return nil
	}
	for _, p := range psms {
		if _, err := peptide.ParseProForma(p.Peptide); err != nil {
			return fmt.Errorf("PSM of %s: %w", p.SpectrumTitle, err)
		}
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.results = append(w.results, spectrumResult{
		title: psms[0].SpectrumTitle,
		rt:    psms[0].RT,
		psms:  append([]mzsearch.Psm(nil), psms...),
	})
	return nil
}

// Encode writes the collected PSMs to out. Results are ordered by
// retention time, then spectrum id.
func (w *Writer) Encode(out io.Writer) error {
	w.mu.Lock()
	content := w.content()
	w.mu.Unlock()

	if _, err := io.WriteString(out, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(out)
	enc.Indent("", "  ")
	if err := enc.Encode(content); err != nil {
		return fmt.Errorf("encode mzIdentML: %w", err)
	}
	_, err := io.WriteString(out, "\n")
	return err
}

// Write writes the collected PSMs to the file at path
func (w *Writer) Write(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := w.Encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', scoreFmtPrec, 64)
}

// content assembles the document. Ids are assigned in output order, so the
// result does not depend on the order in which PSMs were added.
func (w *Writer) content() mzIdentMLContent {
	results := append([]spectrumResult(nil), w.results...)
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].rt != results[j].rt {
			return results[i].rt < results[j].rt
		}
		return results[i].title < results[j].title
	})

	c := mzIdentMLContent{
		Xmlns:        Namespace,
		ID:           "mzsearch",
		Version:      Version,
		CreationDate: time.Now().Format(dateFormat),
		AnalysisSoftwareList: analysisSoftwareList{AnalysisSoftware: []analysisSoftware{
			{ID: softwareID, Name: w.run.Software, Version: w.run.Version},
		}},
	}
	c.DataCollection.Inputs = inputs{
		SearchDatabase: []inputFile{{ID: searchDBID, Location: w.run.Fasta}},
		SpectraData:    []inputFile{{ID: spectraID, Location: w.run.Spectra}},
	}
	sc := &c.SequenceCollection
	pepIDs := make(map[string]string)
	dbSeqIDs := make(map[string]string)
	evidenceIDs := make(map[[2]string]string)

	pepRef := func(proForma string) string {
		if id, ok := pepIDs[proForma]; ok {
			return id
		}
		id := "PEP_" + strconv.Itoa(len(sc.Peptide)+1)
		pepIDs[proForma] = id
		// Validated by WritePSMs
		p, _ := peptide.ParseProForma(proForma)
		sc.Peptide = append(sc.Peptide, xmlPeptide{
			ID:              id,
			PeptideSequence: p.Sequence,
			Modification:    modifications(&p),
		})
		return id
	}
	dbSeqRef := func(accession string) string {
		if id, ok := dbSeqIDs[accession]; ok {
			return id
		}
		id := "DBSeq_" + strconv.Itoa(len(sc.DBSequence)+1)
		dbSeqIDs[accession] = id
		sc.DBSequence = append(sc.DBSequence, dbSequence{ID: id, Accession: accession, SearchDatabaseRef: searchDBID})
		return id
	}
	evidenceRef := func(pepID, accession string, decoy bool) string {
		key := [2]string{pepID, accession}
		if id, ok := evidenceIDs[key]; ok {
			return id
		}
		id := "PE_" + strconv.Itoa(len(sc.PeptideEvidence)+1)
		evidenceIDs[key] = id
		sc.PeptideEvidence = append(sc.PeptideEvidence, peptideEvidence{
			ID:            id,
			DBSequenceRef: dbSeqRef(accession),
			PeptideRef:    pepID,
			IsDecoy:       decoy,
		})
		return id
	}

	list := spectrumIdentificationList{ID: specIdentID}
	for r, res := range results {
		sir := spectrumIdentificationResult{
			ID:             "SIR_" + strconv.Itoa(r+1),
			SpectrumID:     res.title,
			SpectraDataRef: spectraID,
			CvPar: []cvParam{{
				CvRef:         "PSI-MS",
				Accession:     "MS:1000016",
				Name:          "scan start time",
				Value:         formatFloat(res.rt),
				UnitAccession: unitMinute,
				UnitName:      "minute",
			}},
		}
		for i, p := range res.psms {
			pepID := pepRef(p.Peptide)
			sii := spectrumIdentificationItem{
				ID:                       fmt.Sprintf("SII_%d_%d", r+1, i+1),
				ChargeState:              p.Charge,
				ExperimentalMassToCharge: mass.MzFromNeutral(p.ExpMass, p.Charge),
				CalculatedMassToCharge:   mass.MzFromNeutral(p.CalcMass, p.Charge),
				PeptideRef:               pepID,
				Rank:                     i + 1,
				// No score threshold is applied by the search
				PassThreshold: true,
				UserParam: []userParam{
					{Name: "hyperscore", Value: formatFloat(p.Hyperscore), Type: "xsd:double"},
					{Name: "delta_hyperscore", Value: formatFloat(p.DeltaHyperscore), Type: "xsd:double"},
					{Name: "poisson", Value: formatFloat(p.Poisson), Type: "xsd:double"},
					{Name: "matched_peaks", Value: strconv.Itoa(p.MatchedPeaks), Type: "xsd:int"},
					{Name: "isotope_error", Value: formatFloat(p.IsotopeError), Type: "xsd:double"},
				},
			}
			for _, acc := range p.Proteins {
				sii.PeptideEvidenceRef = append(sii.PeptideEvidenceRef,
					peptideEvidenceRef{PeptideEvidenceRef: evidenceRef(pepID, acc, p.Decoy)})
			}
			sir.SpectrumIdentificationItem = append(sir.SpectrumIdentificationItem, sii)
		}
		list.SpectrumIdentificationResult = append(list.SpectrumIdentificationResult, sir)
	}
	c.DataCollection.AnalysisData.SpectrumIdentificationList = []spectrumIdentificationList{list}
	return c
}

// modifications lists the modification masses of p by location
func modifications(p *peptide.Peptide) []modification {
	var mods []modification
	if p.NTerm != 0 {
		mods = append(mods, modification{Location: 0, MonoisotopicMassDelta: p.NTerm})
	}
	for i, m := range p.Mods {
		if m != 0 {
			mods = append(mods, modification{Location: i + 1, MonoisotopicMassDelta: m, Residues: p.Sequence[i : i+1]})
		}
	}
	if p.CTerm != 0 {
		mods = append(mods, modification{Location: p.Len() + 1, MonoisotopicMassDelta: p.CTerm})
	}
	return mods
}
