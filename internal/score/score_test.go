package score

import (
	"math"
	"testing"
)

func TestHyperscore(t *testing.T) {
	tests := []struct {
		nb, ny int
		ib, iy float64
		want   float64
	}{
		{0, 0, 0, 0, HyperscoreFloor},
		{0, 0, 100, 100, HyperscoreFloor},
		{2, 3, 9, 99, 9.392661},
		{1, 0, 0, 0, 0},
	}
	for _, tt := range tests {
		got := Hyperscore(tt.nb, tt.ny, tt.ib, tt.iy)
		if math.Abs(got-tt.want) > 1e-5 {
			t.Errorf("Hyperscore(%d, %d, %f, %f) = %f, want %f", tt.nb, tt.ny, tt.ib, tt.iy, got, tt.want)
		}
	}
	// Large ladders must not overflow
	if got := Hyperscore(500, 500, 1e9, 1e9); math.IsInf(got, 0) || math.IsNaN(got) {
		t.Errorf("Hyperscore overflowed: %f", got)
	}
}

func TestLongestLadder(t *testing.T) {
	tests := []struct {
		indices []int
		want    int
	}{
		{nil, 0},
		{[]int{4}, 1},
		{[]int{1, 2, 3, 5, 6}, 3},
		{[]int{1, 3, 5}, 1},
		{[]int{2, 3, 4, 5, 6, 7}, 6},
	}
	for _, tt := range tests {
		if got := LongestLadder(tt.indices); got != tt.want {
			t.Errorf("LongestLadder(%v) = %d, want %d", tt.indices, got, tt.want)
		}
	}
}

func TestMatchedIntensityPct(t *testing.T) {
	if got := MatchedIntensityPct(25, 200); got != 12.5 {
		t.Errorf("MatchedIntensityPct(25, 200) = %f, want 12.5", got)
	}
	if got := MatchedIntensityPct(25, 0); got != 0 {
		t.Errorf("MatchedIntensityPct(25, 0) = %f, want 0", got)
	}
}

func TestPoisson(t *testing.T) {
	tests := []struct {
		k      int
		lambda float64
		want   float64
	}{
		{0, 2, 0},
		{1, 2, -0.063154},
		{10, 1, -6.95312},
		{5, 0, PoissonFloor},
		{400, 1, PoissonFloor},
	}
	for _, tt := range tests {
		got := Poisson(tt.k, tt.lambda)
		if math.Abs(got-tt.want) > 1e-3 {
			t.Errorf("Poisson(%d, %f) = %f, want %f", tt.k, tt.lambda, got, tt.want)
		}
	}
}

func TestPoissonMonotonic(t *testing.T) {
	prev := Poisson(1, 3.5)
	for k := 2; k < 60; k++ {
		p := Poisson(k, 3.5)
		if p > prev {
			t.Errorf("Poisson(%d) = %f > Poisson(%d) = %f", k, p, k-1, prev)
		}
		if math.IsNaN(p) || p > 0 || p < PoissonFloor {
			t.Errorf("Poisson(%d) = %f out of range", k, p)
		}
		prev = p
	}
}
