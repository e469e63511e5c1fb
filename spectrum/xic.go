package spectrum

import "sort"

// XICTolerancePPM is the mass window used for extracted ion chromatograms
const XICTolerancePPM = 5.0

// XICPoint is one MS1 peak of an extracted ion chromatogram
type XICPoint struct {
	RT        float64
	Mass      float64
	Intensity float64
}

// XIC returns all MS1 peaks within XICTolerancePPM of mass, for spectra
// with a scan start time in [rtMin, rtMax]. spectra must be sorted by scan
// start time.
func XIC(spectra []*Spectrum, rtMin, rtMax, mass float64) []XICPoint {
	lo := mass - mass*XICTolerancePPM/1000000.0
	hi := mass + mass*XICTolerancePPM/1000000.0

	first := sort.Search(len(spectra), func(i int) bool { return spectra[i].ScanStartTime >= rtMin })
	var xic []XICPoint
	for _, s := range spectra[first:] {
		if s.ScanStartTime > rtMax {
			break
		}
		if s.Level != 1 {
			continue
		}
		i := sort.Search(len(s.Peaks), func(i int) bool { return s.Peaks[i].Mass >= lo })
		for ; i < len(s.Peaks) && s.Peaks[i].Mass <= hi; i++ {
			xic = append(xic, XICPoint{RT: s.ScanStartTime, Mass: s.Peaks[i].Mass, Intensity: s.Peaks[i].Intensity})
		}
	}
	return xic
}
