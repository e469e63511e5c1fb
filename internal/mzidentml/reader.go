package mzidentml

import (
	"encoding/xml"
	"io"
	"math"
	"strconv"

	"golang.org/x/net/html/charset"
)

// Read reads mzIdentML content from io.reader
func Read(reader io.Reader) (MzIdentML, error) {
	var mzIdentML MzIdentML
	d := xml.NewDecoder(reader)
	d.CharsetReader = charset.NewReaderLabel
	err := d.Decode(&mzIdentML.content)
	if err != nil {
		return mzIdentML, err
	}
	mzIdentML.buildRefs()
	mzIdentML.buildIdentList()
	return mzIdentML, err
}

// buildRefs maps the ids of peptides, database sequences and peptide
// evidence to their position in the sequence collection
func (m *MzIdentML) buildRefs() {
	sc := &m.content.SequenceCollection
	m.pepID2Idx = make(map[string]int, len(sc.Peptide))
	for i, p := range sc.Peptide {
		m.pepID2Idx[p.ID] = i
	}
	m.dbSeqID2Idx = make(map[string]int, len(sc.DBSequence))
	for i, s := range sc.DBSequence {
		m.dbSeqID2Idx[s.ID] = i
	}
	m.evidence = make(map[string]int, len(sc.PeptideEvidence))
	for i, e := range sc.PeptideEvidence {
		m.evidence[e.ID] = i
	}
}

func (m *MzIdentML) buildIdentList() {
	for l, list := range m.content.DataCollection.AnalysisData.SpectrumIdentificationList {
		for i := range list.SpectrumIdentificationResult {
			for j := range list.SpectrumIdentificationResult[i].SpectrumIdentificationItem {
				m.identList = append(m.identList, identRef{listIdx: l, resultIdx: i, itemIdx: j})
			}
		}
	}
}

// NumIdents returns the total number of identifications in the mzIdentML file
// Note that for some spectra, multiple identifications may be present
// The identifications can be accessed using the Ident() method, which takes
// an index as argument. The index runs from 0 to NumIdents()-1
func (m *MzIdentML) NumIdents() int {
	return len(m.identList)
}

// Ident returns a spectrum identification from the mzIdentML file.
// Parameter i is the index of the identification to return. The index runs
// from 0 to NumIdents()-1
func (m *MzIdentML) Ident(i int) (Identification, error) {

	var ident Identification

	if i < 0 || i >= len(m.identList) {
		return ident, ErrInvalidIdentIndex
	}
	ref := m.identList[i]
	result := &m.content.DataCollection.AnalysisData.SpectrumIdentificationList[ref.listIdx].SpectrumIdentificationResult[ref.resultIdx]
	item := &result.SpectrumIdentificationItem[ref.itemIdx]
	sc := &m.content.SequenceCollection

	if pepIdx, ok := m.pepID2Idx[item.PeptideRef]; ok {
		ident.PepSeq = sc.Peptide[pepIdx].PeptideSequence
		ident.PepID = sc.Peptide[pepIdx].ID
		for _, mod := range sc.Peptide[pepIdx].Modification {
			ident.ModMass += mod.MonoisotopicMassDelta
		}
	}
	ident.Charge = item.ChargeState
	ident.Rank = item.Rank
	for _, ev := range item.PeptideEvidenceRef {
		evIdx, ok := m.evidence[ev.PeptideEvidenceRef]
		if !ok {
			continue
		}
		e := sc.PeptideEvidence[evIdx]
		ident.Decoy = ident.Decoy || e.IsDecoy
		if seqIdx, ok := m.dbSeqID2Idx[e.DBSequenceRef]; ok {
			ident.Proteins = append(ident.Proteins, sc.DBSequence[seqIdx].Accession)
		}
	}
	ident.SpecID = result.SpectrumID
	ident.RetentionTime = float64(-1)
	prio := math.MaxInt32
	for _, cv := range result.CvPar {
		// There are multiple CV terms that can be used to report the
		// retention time. In order of decreasing preference we use:
		// 1. MS:1000016 - scan start time
		// 2. MS:1000894 - retention time
		// 3. MS:1000826 - elution time
		// 4. MS:1001114 - retention time (deprecated)
		useTime := false
		switch cv.Accession {
		case "MS:1000016":
			if prio > 1 {
				prio = 1
				useTime = true
			}
		case "MS:1000894":
			if prio > 2 {
				prio = 2
				useTime = true
			}
		case "MS:1000826":
			if prio > 3 {
				prio = 3
				useTime = true
			}
		case "MS:1001114":
			if prio > 4 {
				prio = 4
				useTime = true
			}
		}
		// If a (higher priority) term was found, process/store the retention time
		if useTime {
			retentionTime, err := strconv.ParseFloat(cv.Value, 64)
			if err != nil {
				return ident, err
			}
			// Check if the retention time is in minutes, otherwise assume it's seconds
			if cv.UnitAccession != unitMinute && cv.UnitAccession != "MS:1000038" {
				retentionTime /= 60
			}
			ident.RetentionTime = retentionTime
		}
	}
	// Collect CV terms/values for the identification, the scores are in there
	ident.Cv = append(ident.Cv, item.CvPar...)
	ident.UserParams = append(ident.UserParams, item.UserParam...)

	return ident, nil
}
