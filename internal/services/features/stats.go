package features

import "math"

// Mean returns the arithmetic mean, or 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// SampleVariance computes the unbiased variance (n-1 denominator).
// Two-pass over squared deviations, so a constant series is exactly 0.
// Returns 0 with fewer than two points.
func SampleVariance(xs []float64) float64 {
	n := len(xs)
	if n < 2 {
		return 0
	}
	mean := Mean(xs)
	ss := 0.0
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	return ss / float64(n-1)
}

// StdDev is the square root of the sample variance.
func StdDev(xs []float64) float64 {
	return math.Sqrt(SampleVariance(xs))
}

// Diffs computes day-over-day changes d_t = x_t - x_{t-1}.
// Returns a slice of length len(xs)-1, or nil if insufficient data.
func Diffs(xs []float64) []float64 {
	if len(xs) < 2 {
		return nil
	}
	out := make([]float64, 0, len(xs)-1)
	for i := 1; i < len(xs); i++ {
		out = append(out, xs[i]-xs[i-1])
	}
	return out
}

// Pearson computes the correlation coefficient between two equal-length
// series. The second return is false when the coefficient is undefined
// (short input or a zero-variance side).
func Pearson(xs, ys []float64) (float64, bool) {
	n := len(xs)
	if n < 2 || n != len(ys) {
		return 0, false
	}
	mx := Mean(xs)
	my := Mean(ys)
	var sxy, sxx, syy float64
	for i := 0; i < n; i++ {
		dx := xs[i] - mx
		dy := ys[i] - my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return 0, false
	}
	r := sxy / math.Sqrt(sxx*syy)
	// float error can push |r| epsilon past 1
	return Clamp(r, -1, 1), true
}

// EWMASeries computes the exponentially weighted moving average
// baseline b_t = alpha*x_t + (1-alpha)*b_{t-1}, seeded with x_0.
func EWMASeries(xs []float64, alpha float64) []float64 {
	if len(xs) == 0 {
		return nil
	}
	out := make([]float64, len(xs))
	out[0] = xs[0]
	for i := 1; i < len(xs); i++ {
		out[i] = alpha*xs[i] + (1-alpha)*out[i-1]
	}
	return out
}

// Slope fits least squares over the index positions 0..n-1 and returns
// the per-step slope. Returns 0 with fewer than two points.
func Slope(xs []float64) float64 {
	n := len(xs)
	if n < 2 {
		return 0
	}
	// x values are 0..n-1, so their mean and variance are closed-form
	mx := float64(n-1) / 2
	my := Mean(xs)
	var sxy, sxx float64
	for i := 0; i < n; i++ {
		dx := float64(i) - mx
		sxy += dx * (xs[i] - my)
		sxx += dx * dx
	}
	if sxx == 0 {
		return 0
	}
	return sxy / sxx
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp01 bounds v to the unit interval.
func Clamp01(v float64) float64 { return Clamp(v, 0, 1) }

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}
