package analytics

import (
	"fmt"
	"sort"

	domsvc "RegionPulse/internal/domain/service"
	"RegionPulse/pkg/config"
)

// ModelRegistry maps model names to factories. Resolve hands out a fresh
// instance per call, so fit state never leaks between concurrent
// requests. Built once at startup, read-only afterwards.
type ModelRegistry struct {
	factories map[string]func() domsvc.ForecastModel
}

func NewModelRegistry() *ModelRegistry {
	return &ModelRegistry{factories: make(map[string]func() domsvc.ForecastModel)}
}

// Register binds a name to a factory. Last registration wins.
func (r *ModelRegistry) Register(name string, factory func() domsvc.ForecastModel) {
	r.factories[name] = factory
}

// Resolve returns a new unfitted model for the name.
func (r *ModelRegistry) Resolve(name string) (domsvc.ForecastModel, error) {
	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown forecast model %q (have %v)", name, r.Names())
	}
	return factory(), nil
}

// Names lists registered models, sorted.
func (r *ModelRegistry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultModelRegistry registers the shipped models with smoothing
// parameters from config.
func DefaultModelRegistry(cfg *config.Config) *ModelRegistry {
	r := NewModelRegistry()
	alpha := cfg.Forecast.Alpha
	beta := cfg.Forecast.Beta
	r.Register("holt", func() domsvc.ForecastModel { return NewHoltModel(alpha, beta) })
	r.Register("trend", func() domsvc.ForecastModel { return NewTrendModel() })
	r.Register("naive", func() domsvc.ForecastModel { return NewNaiveModel() })
	return r
}
