package mzidentml

import (
	"encoding/xml"
	"errors"
)

// Types for reading and writing mzIdentML

// MzIdentML holds only the part of mzIdentML files
// in which we are interrested
type MzIdentML struct {
	pepID2Idx   map[string]int
	dbSeqID2Idx map[string]int
	evidence    map[string]int
	identList   []identRef
	content     mzIdentMLContent
}

type identRef struct {
	listIdx   int // Index into SpectrumIdentificationList
	resultIdx int // Index into SpectrumIdentificationResult
	itemIdx   int // Index into SpectrumIdentificationItem
}

// Identification is one spectrum identification item
type Identification struct {
	PepSeq        string
	PepID         string
	Charge        int
	Rank          int
	ModMass       float64
	SpecID        string
	RetentionTime float64 // minutes, -1 if unknown
	Decoy         bool
	Proteins      []string
	Cv            []cvParam
	UserParams    []userParam
}

// The namespace and version written by Writer
const (
	Namespace = "http://psidev.info/psi/pi/mzIdentML/1.1"
	Version   = "1.1.0"
)

type mzIdentMLContent struct {
	XMLName              xml.Name             `xml:"MzIdentML"`
	Xmlns                string               `xml:"xmlns,attr,omitempty"`
	ID                   string               `xml:"id,attr,omitempty"`
	Version              string               `xml:"version,attr,omitempty"`
	CreationDate         string               `xml:"creationDate,attr,omitempty"`
	AnalysisSoftwareList analysisSoftwareList `xml:"AnalysisSoftwareList"`
	SequenceCollection   sequenceCollection   `xml:"SequenceCollection"`
	DataCollection       dataCollection       `xml:"DataCollection"`
}

type analysisSoftwareList struct {
	AnalysisSoftware []analysisSoftware `xml:"AnalysisSoftware"`
}

type analysisSoftware struct {
	ID      string `xml:"id,attr"`
	Name    string `xml:"name,attr,omitempty"`
	Version string `xml:"version,attr,omitempty"`
}

type sequenceCollection struct {
	DBSequence      []dbSequence      `xml:"DBSequence"`
	Peptide         []xmlPeptide      `xml:"Peptide"`
	PeptideEvidence []peptideEvidence `xml:"PeptideEvidence"`
}

type dbSequence struct {
	ID                string `xml:"id,attr"`
	Accession         string `xml:"accession,attr"`
	SearchDatabaseRef string `xml:"searchDatabase_ref,attr,omitempty"`
}

type xmlPeptide struct {
	ID              string `xml:"id,attr"`
	PeptideSequence string
	Modification    []modification
}

type modification struct {
	// Location 0 is the N-terminus, length+1 the C-terminus
	Location int `xml:"location,attr"`
	// Note: monoisotopicMassDelta is optional according the the schema, but
	// appears to be no other way to determine mass shift, as other
	// corresponding cvParam's don't carry this info either
	MonoisotopicMassDelta float64   `xml:"monoisotopicMassDelta,attr"`
	Residues              string    `xml:"residues,attr,omitempty"`
	CvPar                 []cvParam `xml:"cvParam"`
}

type peptideEvidence struct {
	ID            string `xml:"id,attr"`
	DBSequenceRef string `xml:"dBSequence_ref,attr"`
	PeptideRef    string `xml:"peptide_ref,attr"`
	IsDecoy       bool   `xml:"isDecoy,attr"`
}

type dataCollection struct {
	Inputs       inputs       `xml:"Inputs"`
	AnalysisData analysisData `xml:"AnalysisData"`
}

type inputs struct {
	SearchDatabase []inputFile `xml:"SearchDatabase"`
	SpectraData    []inputFile `xml:"SpectraData"`
}

type inputFile struct {
	ID       string `xml:"id,attr"`
	Location string `xml:"location,attr"`
}

type analysisData struct {
	SpectrumIdentificationList []spectrumIdentificationList `xml:"SpectrumIdentificationList"`
}

type spectrumIdentificationList struct {
	ID                           string                         `xml:"id,attr"`
	SpectrumIdentificationResult []spectrumIdentificationResult `xml:"SpectrumIdentificationResult"`
}

type spectrumIdentificationResult struct {
	ID                         string `xml:"id,attr,omitempty"`
	SpectrumID                 string `xml:"spectrumID,attr"`
	SpectraDataRef             string `xml:"spectraData_ref,attr,omitempty"`
	SpectrumIdentificationItem []spectrumIdentificationItem
	CvPar                      []cvParam `xml:"cvParam"`
}

type spectrumIdentificationItem struct {
	ID                       string               `xml:"id,attr,omitempty"`
	ChargeState              int                  `xml:"chargeState,attr"`
	ExperimentalMassToCharge float64              `xml:"experimentalMassToCharge,attr"`
	CalculatedMassToCharge   float64              `xml:"calculatedMassToCharge,attr"`
	PeptideRef               string               `xml:"peptide_ref,attr"`
	Rank                     int                  `xml:"rank,attr"`
	PassThreshold            bool                 `xml:"passThreshold,attr"`
	PeptideEvidenceRef       []peptideEvidenceRef `xml:"PeptideEvidenceRef"`
	CvPar                    []cvParam            `xml:"cvParam"`
	UserParam                []userParam          `xml:"userParam"`
}

type peptideEvidenceRef struct {
	PeptideEvidenceRef string `xml:"peptideEvidence_ref,attr"`
}

type cvParam struct {
	CvRef         string `xml:"cvRef,attr,omitempty"`
	Accession     string `xml:"accession,attr"`
	Name          string `xml:"name,attr"`
	Value         string `xml:"value,attr,omitempty"`
	UnitAccession string `xml:"unitAccession,attr,omitempty"`
	UnitName      string `xml:"unitName,attr,omitempty"`
}

type userParam struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
	Type  string `xml:"type,attr,omitempty"`
}

var (
	ErrInvalidIdentIndex = errors.New("mzIdentML: invalid identification index")
)
