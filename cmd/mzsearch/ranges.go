package main

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var ErrRangeSpec = errors.New("invalid range specified")

// ErrModSpec means a modification flag is not of the form <residue>=<mass>
var ErrModSpec = errors.New("invalid modification specified")

// Parse string like "-12:6" into 2 values, -12 and 6
// Parameters min and max are the "default" min/max values,
// when a value is not specified (e.g. "-12:"), the default is assigned
func parseIntRange(r string, min int, max int) (int, int, error) {
	re := regexp.MustCompile(`\s*(\-?\d*):(\-?\d*)`)
	m := re.FindStringSubmatch(r)
	minOut := min
	maxOut := max
	if len(m) >= 2 && m[1] != "" {
		minOut, _ = strconv.Atoi(m[1])
		if minOut < min {
			minOut = min
		}
	}
	if len(m) >= 3 && m[2] != "" {
		maxOut, _ = strconv.Atoi(m[2])
		if maxOut > max {
			maxOut = max
		}
	}
	var err error
	if minOut > maxOut {
		err = ErrRangeSpec
		minOut = maxOut
	}
	return minOut, maxOut, err
}

// Parse string like "150:2e3" into 2 values, 150.0 and 2000.0
// Parameters min and max are the "default" min/max values,
// when a value is not specified (e.g. "150:"), the default is assigned
func parseFloat64Range(r string, min float64, max float64) (
	float64, float64, error) {
	re := regexp.MustCompile(`\s*([-+]?[0-9]*\.?[0-9]*([eE][-+]?[0-9]+)?):([-+]?[0-9]*\.?[0-9]*([eE][-+]?[0-9]+)?)`)
	m := re.FindStringSubmatch(r)
	minOut := min
	maxOut := max
	if len(m) >= 2 && m[1] != "" {
		minOut, _ = strconv.ParseFloat(m[1], 64)
		if minOut < min {
			minOut = min
		}
	}
	if len(m) >= 4 && m[3] != "" {
		maxOut, _ = strconv.ParseFloat(m[3], 64)
		if maxOut > max {
			maxOut = max
		}
	}
	var err error
	if minOut > maxOut {
		err = ErrRangeSpec
		minOut = maxOut
	}
	return minOut, maxOut, err
}

// parseMods converts flag values like "C=57.021464" into a modification
// table. "^" and "$" denote the peptide N- and C-terminus.
func parseMods(specs []string) (map[rune]float64, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	mods := make(map[rune]float64, len(specs))
	for _, spec := range specs {
		site, value, ok := strings.Cut(spec, "=")
		site = strings.TrimSpace(site)
		if !ok || len([]rune(site)) != 1 {
			return nil, fmt.Errorf("%w: %q", ErrModSpec, spec)
		}
		delta, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrModSpec, spec, err)
		}
		r := []rune(site)[0]
		if _, dup := mods[r]; dup {
			return nil, fmt.Errorf("%w: %q specified twice", ErrModSpec, site)
		}
		mods[r] = delta
	}
	return mods, nil
}
