package sources

import (
	"RegionPulse/internal/domain/repository"
	"RegionPulse/pkg/config"
	applogger "RegionPulse/pkg/logger"
)

// Registry holds the configured connectors, addressable as a whole or by
// the sub-index they feed.
type Registry struct {
	all        []repository.SourceConnector
	bySubIndex map[string]repository.SourceConnector
}

func NewRegistry(cfg *config.Config, logger *applogger.Logger) *Registry {
	r := &Registry{bySubIndex: make(map[string]repository.SourceConnector, len(cfg.Sources))}
	for _, sc := range cfg.Sources {
		c := NewHTTPConnector(sc, logger)
		r.all = append(r.all, c)
		r.bySubIndex[sc.SubIndex] = c
	}
	return r
}

func (r *Registry) All() []repository.SourceConnector { return r.all }

func (r *Registry) BySubIndex(name string) (repository.SourceConnector, bool) {
	c, ok := r.bySubIndex[name]
	return c, ok
}
