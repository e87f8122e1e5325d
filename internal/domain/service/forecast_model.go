package service

// Prediction is one model output step, before calendar dates are
// attached by the forecaster.
type Prediction struct {
	Mean  float64
	Lower float64
	Upper float64
}

// ForecastModel is the capability contract for univariate index models.
// Fit must be called before Predict; a model that cannot represent the
// series (too short, degenerate) fails Fit and the forecaster moves to
// its fallback.
type ForecastModel interface {
	Name() string
	Fit(series []float64) error
	Predict(horizon int) ([]Prediction, error)
}
