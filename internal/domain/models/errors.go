package models

import (
	"errors"
	"fmt"
)

// ErrAnalysisSkipped marks a sub-analysis that lacked enough window to
// compute. The pipeline consumes it and substitutes the neutral result.
var ErrAnalysisSkipped = errors.New("analysis skipped: window too short")

// ErrDataUnavailable means the history provider failed or timed out. The
// whole request fails rather than proceeding on partial input.
var ErrDataUnavailable = errors.New("history data unavailable")

// InsufficientHistoryError is fatal to a forecast request: the composite
// series is shorter than the minimum the forecaster accepts.
type InsufficientHistoryError struct {
	Points int
	Min    int
}

func (e *InsufficientHistoryError) Error() string {
	return fmt.Sprintf("insufficient history: %d points, need at least %d", e.Points, e.Min)
}

// IsInsufficientHistory reports whether err wraps an
// InsufficientHistoryError.
func IsInsufficientHistory(err error) bool {
	var ih *InsufficientHistoryError
	return errors.As(err, &ih)
}
