package features

import (
	"math"
	"testing"
)

func TestSampleVarianceConstantSeriesIsNegligible(t *testing.T) {
	// 0.3 is not exactly representable, so the mean carries a few ulps of
	// error; the deviation form must keep the variance far below any
	// flat-window guard.
	xs := make([]float64, 14)
	for i := range xs {
		xs[i] = 0.3
	}
	if v := SampleVariance(xs); v >= 1e-18 {
		t.Fatalf("variance of constant series = %g, want < 1e-18", v)
	}
	if sd := StdDev(xs); sd >= 1e-9 {
		t.Fatalf("stddev of constant series = %g, want < 1e-9", sd)
	}
}

func TestSampleVariance(t *testing.T) {
	xs := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	// sum of squared deviations = 32, n-1 = 7
	want := 32.0 / 7.0
	if v := SampleVariance(xs); math.Abs(v-want) > 1e-12 {
		t.Fatalf("variance = %v, want %v", v, want)
	}
}

func TestSampleVarianceShortInput(t *testing.T) {
	if v := SampleVariance([]float64{0.5}); v != 0 {
		t.Fatalf("single point variance = %v, want 0", v)
	}
	if v := SampleVariance(nil); v != 0 {
		t.Fatalf("empty variance = %v, want 0", v)
	}
}

func TestSampleVarianceNeverNegative(t *testing.T) {
	xs := []float64{1e8, 1e8 + 0.1, 1e8 - 0.1}
	if v := SampleVariance(xs); v < 0 {
		t.Fatalf("variance = %v, want >= 0", v)
	}
}
