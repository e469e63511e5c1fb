package mass

// Tolerance is an asymmetric mass window in parts per million,
// e.g. Tolerance{Lo: -20, Hi: 20}
type Tolerance struct {
	Lo float64
	Hi float64
}

// PPM returns a symmetric tolerance of +/- ppm
func PPM(ppm float64) Tolerance {
	if ppm < 0 {
		ppm = -ppm
	}
	return Tolerance{Lo: -ppm, Hi: ppm}
}

// Bounds returns the lowest and highest mass that are within tolerance of m
func (t Tolerance) Bounds(m float64) (float64, float64) {
	return m + m*t.Lo/1000000.0, m + m*t.Hi/1000000.0
}

// Contains reports whether observed lies within tolerance of reference
func (t Tolerance) Contains(reference, observed float64) bool {
	lo, hi := t.Bounds(reference)
	return observed >= lo && observed <= hi
}

// ErrorPPM returns the signed relative error of observed w.r.t. reference
func ErrorPPM(reference, observed float64) float64 {
	if reference == 0 {
		return 0
	}
	return (observed - reference) / reference * 1000000.0
}
