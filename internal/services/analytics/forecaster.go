package analytics

import (
	"fmt"

	"RegionPulse/internal/domain/models"
	domsvc "RegionPulse/internal/domain/service"
	"RegionPulse/internal/services/features"
	"RegionPulse/pkg/config"
	"RegionPulse/pkg/logger"
)

// IndexForecaster resolves the primary model from the registry, falls
// back when fitting fails, stamps calendar dates onto the predictions,
// and keeps everything inside the index's [0,1] range.
type IndexForecaster struct {
	registry   *ModelRegistry
	primary    string
	fallback   string
	minHistory int
	log        *logger.Logger
}

func NewIndexForecaster(cfg *config.Config, registry *ModelRegistry, log *logger.Logger) *IndexForecaster {
	primary := cfg.Forecast.PrimaryModel
	if primary == "" {
		primary = "holt"
	}
	fallback := cfg.Forecast.FallbackModel
	if fallback == "" {
		fallback = "trend"
	}
	minHistory := cfg.Forecast.MinHistory
	if minHistory < 2 {
		minHistory = 2
	}
	return &IndexForecaster{
		registry:   registry,
		primary:    primary,
		fallback:   fallback,
		minHistory: minHistory,
		log:        log,
	}
}

func (f *IndexForecaster) Forecast(series *models.CompositeIndexSeries, horizon int) (*models.Forecast, error) {
	if series == nil || series.Len() < f.minHistory {
		points := 0
		if series != nil {
			points = series.Len()
		}
		return nil, &models.InsufficientHistoryError{Points: points, Min: f.minHistory}
	}
	if horizon <= 0 {
		return nil, fmt.Errorf("forecast: horizon must be positive, got %d", horizon)
	}

	preds, used, err := f.fit(series.Values, horizon)
	if err != nil {
		return nil, err
	}

	lastDate, _ := series.LastDate()
	points := make([]models.ForecastPoint, 0, horizon)
	for i, p := range preds {
		points = append(points, models.ForecastPoint{
			Date:  lastDate.AddDate(0, 0, i+1),
			Mean:  features.Clamp01(p.Mean),
			Lower: features.Clamp01(p.Lower),
			Upper: features.Clamp01(p.Upper),
		})
	}
	return &models.Forecast{Model: used, Points: points}, nil
}

// fit tries the primary model, then the fallback. A fit failure on the
// primary is routine (short or flat series); on the fallback it is a
// hard error.
func (f *IndexForecaster) fit(values []float64, horizon int) ([]domsvc.Prediction, string, error) {
	if preds, err := f.runModel(f.primary, values, horizon); err == nil {
		return preds, f.primary, nil
	} else {
		f.log.Debug("primary forecast model rejected series, falling back",
			logger.String("primary", f.primary),
			logger.String("fallback", f.fallback),
			logger.Error(err))
	}

	preds, err := f.runModel(f.fallback, values, horizon)
	if err != nil {
		return nil, "", fmt.Errorf("fallback model %s: %w", f.fallback, err)
	}
	return preds, f.fallback, nil
}

func (f *IndexForecaster) runModel(name string, values []float64, horizon int) ([]domsvc.Prediction, error) {
	model, err := f.registry.Resolve(name)
	if err != nil {
		return nil, err
	}
	if err := model.Fit(values); err != nil {
		return nil, err
	}
	return model.Predict(horizon)
}

var _ domsvc.Forecaster = (*IndexForecaster)(nil)
