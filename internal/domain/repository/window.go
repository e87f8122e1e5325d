package repository

// Request window bounds shared by handlers and the refresh job.
const (
	DefaultDaysBack = 90
	MinDaysBack     = 1
	MaxDaysBack     = 365

	DefaultHorizon = 7
	MinHorizon     = 1
	MaxHorizon     = 30
)

// ClampDaysBack folds an out-of-range window length back into bounds.
// Zero or negative means the caller wants the default.
func ClampDaysBack(n int) int {
	if n <= 0 {
		return DefaultDaysBack
	}
	if n < MinDaysBack {
		return MinDaysBack
	}
	if n > MaxDaysBack {
		return MaxDaysBack
	}
	return n
}

// ClampHorizon folds an out-of-range horizon back into bounds.
func ClampHorizon(n int) int {
	if n <= 0 {
		return DefaultHorizon
	}
	if n > MaxHorizon {
		return MaxHorizon
	}
	return n
}
