// Package mzml reads spectra from mzML files.
package mzml

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"golang.org/x/net/html/charset"

	"github.com/524D/mzsearch/spectrum"
)

// Processor filters the peaks of MSn spectra while they are read
type Processor struct {
	TakeTopN int     // keep the most intense peaks, 0 keeps all
	MinMz    float64 // lowest fragment m/z kept
	MaxMz    float64 // highest fragment m/z kept, 0 means no limit
}

// DefaultProcessor keeps the 150 most intense peaks between m/z 150 and 2000
func DefaultProcessor() Processor {
	return Processor{TakeTopN: 150, MinMz: 150, MaxMz: 2000}
}

// Open reads an mzML file. Files ending in .gz are decompressed.
func Open(path string, proc Processor) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	var r io.Reader = fh
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(fh)
		if err != nil {
			return nil, fmt.Errorf("open gzip reader: %w", err)
		}
		defer gz.Close()
		r = gz
	}
	return Read(r, proc)
}

// Read reads mzML file from an io.Reader
func Read(reader io.Reader, proc Processor) (*File, error) {
	f := &File{proc: proc}

	d := xml.NewDecoder(reader)
	d.CharsetReader = charset.NewReaderLabel

	// We are only interested in mzML content, so skip over indexedmzML
	// and everything else
	for {
		t, tokenErr := d.Token()
		if tokenErr != nil {
			if tokenErr == io.EOF {
				break
			}
			return nil, tokenErr
		}
		if t, ok := t.(xml.StartElement); ok && t.Name.Local == "mzML" {
			if err := d.DecodeElement(&f.content, &t); err != nil {
				return nil, err
			}
		}
	}
	if err := f.traverseScan(); err != nil {
		return nil, err
	}
	return f, nil
}

// binaryDataPars decodes the CV terms in a mzML binarydata section
//
// CV Terms for binary data compression
// MS:1000574 zlib compression
// MS:1000576 No Compression
// MS:1002312 MS-Numpress linear prediction compression
// MS:1002313 MS-Numpress positive integer compression
// MS:1002314 MS-Numpress short logged float compression
// MS:1002746 MS-Numpress linear prediction compression followed by zlib compression
// MS:1002747 MS-Numpress positive integer compression followed by zlib compression
// MS:1002748 MS-Numpress short logged float compression followed by zlib compression
//
// CV Terms for binary data array types
// MS:1000514 m/z array
// MS:1000515 intensity array
//
// CV Terms for binary-data-type
// MS:1000521 32-bit float
// MS:1000523 64-bit float
func binaryDataPars(binaryDataArray *binaryDataArray) (
	zlibCompression, bits64, mzArray, intensityArray bool, err error) {
	for _, cvParam := range binaryDataArray.CvPar {
		switch cvParam.Accession {
		case `MS:1000574`:
			zlibCompression = true
		case `MS:1000514`:
			mzArray = true
		case `MS:1000515`:
			intensityArray = true
		case `MS:1000523`:
			bits64 = true
		case `MS:1002312`, `MS:1002313`, `MS:1002314`,
			`MS:1002746`, `MS:1002747`, `MS:1002748`:
			return false, false, false, false,
				fmt.Errorf("%w (CV term %s)", ErrUnsupportedCompression, cvParam.Accession)
		}
	}
	return zlibCompression, bits64, mzArray, intensityArray, nil
}

// decodeArray returns the values of a binary data array, or nil if the
// array is neither m/z nor intensity
func decodeArray(binaryDataArray *binaryDataArray) (values []float64, isMz bool, err error) {
	zlibCompression, bits64, mzArray, intensityArray, err :=
		binaryDataPars(binaryDataArray)
	if err != nil || !(mzArray || intensityArray) {
		return nil, false, err
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(binaryDataArray.Binary))
	if err != nil {
		return nil, false, err
	}
	if zlibCompression {
		z, err := zlib.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, false, err
		}
		defer z.Close()
		if data, err = io.ReadAll(z); err != nil {
			return nil, false, err
		}
	}
	if bits64 {
		values = make([]float64, len(data)/8)
		for i := range values {
			values[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[i*8:]))
		}
	} else {
		values = make([]float64, len(data)/4)
		for i := range values {
			values[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:])))
		}
	}
	return values, mzArray, nil
}

// NumSpecs returns the number of spectra
func (f *File) NumSpecs() int {
	return len(f.content.Run.SpectrumList.Spectrum)
}

func findCV(params []CVParam, accession string) (CVParam, bool) {
	for _, cvParam := range params {
		if cvParam.Accession == accession {
			return cvParam, true
		}
	}
	return CVParam{}, false
}

// retentionTime returns the scan start time in minutes, or -1 if absent
func retentionTime(s *xmlSpectrum) (float64, error) {
	for _, scan := range s.ScanList.Scan {
		cvParam, ok := findCV(scan.CvPar, "MS:1000016")
		if !ok {
			continue
		}
		rt, err := strconv.ParseFloat(cvParam.Value, 64)
		switch cvParam.UnitAccession {
		case "UO:0000031", "MS:1000038": // minute
		case "UO:0000010", "": // second
			rt /= 60
		default:
			return rt, fmt.Errorf("%w %s for scan start time", ErrUnknownUnit, cvParam.UnitAccession)
		}
		return rt, err
	}
	return -1.0, nil
}

// ionInjectionTime returns the ion injection time in ms, or NaN if absent
func ionInjectionTime(s *xmlSpectrum) (float64, error) {
	for _, scan := range s.ScanList.Scan {
		cvParam, ok := findCV(scan.CvPar, "MS:1000927")
		if !ok {
			continue
		}
		t, err := strconv.ParseFloat(cvParam.Value, 64)
		// Ion injection time is always in milliseconds currently
		if cvParam.UnitAccession != "UO:0000028" {
			return t, fmt.Errorf("%w %s for ion injection time", ErrUnknownUnit, cvParam.UnitAccession)
		}
		return t, err
	}
	return math.NaN(), nil
}

// msLevel returns the MS level of a scan
func msLevel(s *xmlSpectrum) (int, error) {
	if cvParam, ok := findCV(s.CvPar, "MS:1000511"); ok {
		level, err := strconv.Atoi(cvParam.Value)
		return level, err
	}
	return 1, nil // If nothing else, guess it's MS1
}

// precursors returns the selected ions of the first precursor list
//
// MS:1000744 selected ion m/z
// MS:1000041 charge state
// MS:1000042 peak intensity
func precursors(s *xmlSpectrum) ([]spectrum.Precursor, error) {
	if len(s.PrecursorList) == 0 {
		return nil, nil
	}
	var precs []spectrum.Precursor
	for _, p := range s.PrecursorList[0].Precursor {
		for _, ion := range p.SelectedIonList.SelectedIon {
			prec := spectrum.Precursor{SpectrumRef: p.SpectrumRef}
			for _, cvParam := range ion.CvPar {
				var err error
				switch cvParam.Accession {
				case "MS:1000744":
					prec.Mz, err = strconv.ParseFloat(cvParam.Value, 64)
				case "MS:1000041":
					prec.Charge, err = strconv.Atoi(cvParam.Value)
				case "MS:1000042":
					prec.Intensity, err = strconv.ParseFloat(cvParam.Value, 64)
				}
				if err != nil {
					return nil, fmt.Errorf("spectrum %s: %s: %w", s.ID, cvParam.Name, err)
				}
			}
			precs = append(precs, prec)
		}
	}
	return precs, nil
}

// ReadScan decodes the spectrum at scanIndex.
// scanIndex is the sequence number of the scan in the mzML file,
// use ScanIndex to find the index of a spectrum id.
func (f *File) ReadScan(scanIndex int) (*spectrum.Spectrum, error) {
	if scanIndex < 0 || scanIndex >= f.NumSpecs() {
		return nil, ErrInvalidScanIndex
	}
	s := &f.content.Run.SpectrumList.Spectrum[scanIndex]

	level, err := msLevel(s)
	if err != nil {
		return nil, fmt.Errorf("spectrum %s: ms level: %w", s.ID, err)
	}
	rt, err := retentionTime(s)
	if err != nil {
		return nil, fmt.Errorf("spectrum %s: %w", s.ID, err)
	}
	iit, err := ionInjectionTime(s)
	if err != nil {
		return nil, fmt.Errorf("spectrum %s: %w", s.ID, err)
	}
	precs, err := precursors(s)
	if err != nil {
		return nil, err
	}

	var mz, intens []float64
	for i := range s.BinaryDataArrayList.BinaryDataArray {
		values, isMz, err := decodeArray(&s.BinaryDataArrayList.BinaryDataArray[i])
		if err != nil {
			return nil, fmt.Errorf("spectrum %s: %w", s.ID, err)
		}
		if values == nil {
			continue
		}
		if isMz {
			mz = values
		} else {
			intens = values
		}
	}
	if len(mz) != len(intens) {
		return nil, fmt.Errorf("spectrum %s: %d m/z values but %d intensities", s.ID, len(mz), len(intens))
	}

	// Fragment charges are unknown, so m/z is taken as the singly charged mass
	peaks := make([]spectrum.Peak, len(mz))
	for i := range mz {
		peaks[i] = spectrum.Peak{Mass: mz[i], Intensity: intens[i]}
	}
	if level > 1 {
		peaks = f.proc.filter(peaks)
	}
	spec := spectrum.New(level, s.ID, rt, precs, peaks)
	spec.IonInjectionTime = iit
	return spec, nil
}

// filter applies the m/z bounds and keeps the TakeTopN most intense peaks
func (p Processor) filter(peaks []spectrum.Peak) []spectrum.Peak {
	kept := peaks[:0]
	for _, pk := range peaks {
		if pk.Mass < p.MinMz || (p.MaxMz > 0 && pk.Mass > p.MaxMz) {
			continue
		}
		kept = append(kept, pk)
	}
	if p.TakeTopN > 0 && len(kept) > p.TakeTopN {
		sort.SliceStable(kept, func(i, j int) bool { return kept[i].Intensity > kept[j].Intensity })
		kept = kept[:p.TakeTopN]
	}
	return kept
}

// Spectrum returns the spectrum with the given id
func (f *File) Spectrum(title string) (*spectrum.Spectrum, error) {
	i, err := f.ScanIndex(title)
	if err != nil {
		return nil, err
	}
	return f.ReadScan(i)
}

// Spectra decodes all spectra in file order, so spectra[i] is the scan
// with index i. spectrum.XIC needs them sorted by scan start time.
func (f *File) Spectra() ([]*spectrum.Spectrum, error) {
	spectra := make([]*spectrum.Spectrum, f.NumSpecs())
	for i := range spectra {
		s, err := f.ReadScan(i)
		if err != nil {
			return nil, err
		}
		spectra[i] = s
	}
	return spectra, nil
}

// traverseScan traverses all scans and fills f.index2id and f.id2Index
// to make scans accessible by id
func (f *File) traverseScan() error {
	f.index2id = make([]string, f.NumSpecs())
	f.id2Index = make(map[string]int, f.NumSpecs())
	for i, s := range f.content.Run.SpectrumList.Spectrum {
		if i != s.Index {
			return fmt.Errorf("%w: spectrum %s has index %d at position %d", ErrInvalidScanIndex, s.ID, s.Index, i)
		}
		f.index2id[i] = s.ID
		f.id2Index[s.ID] = i
	}
	return nil
}

// ScanIndex converts a scan identifier (the string used in the mzML file)
// into an index that is used to access the scans
func (f *File) ScanIndex(scanID string) (int, error) {
	if index, ok := f.id2Index[scanID]; ok {
		return index, nil
	}
	return 0, fmt.Errorf("%w: %q", spectrum.ErrNotFound, scanID)
}

// ScanID converts a scan index (used to access the scan data) into a scan id
// (used in the mzML file)
func (f *File) ScanID(scanIndex int) (string, error) {
	if scanIndex >= 0 && scanIndex < f.NumSpecs() {
		return f.index2id[scanIndex], nil
	}
	return "", ErrInvalidScanIndex
}
