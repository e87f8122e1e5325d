package repository

import (
	"context"
	"fmt"
	"time"

	"RegionPulse/internal/domain/models"
	"RegionPulse/internal/domain/repository"
	domsvc "RegionPulse/internal/domain/service"
	pkgcache "RegionPulse/pkg/cache"
	applogger "RegionPulse/pkg/logger"
	"RegionPulse/pkg/util"
)

const historyKeyPrefix = "regionpulse:history"

// CachedHistoryProvider serves harmonized daily windows, reading through
// the injectable cache. A provider failure surfaces as ErrDataUnavailable
// so callers fail the whole request instead of analyzing partial input.
type CachedHistoryProvider struct {
	reader     repository.RawHistoryReader
	harmonizer domsvc.Harmonizer
	cache      pkgcache.Service
	ttl        time.Duration
	l          *applogger.Logger
	now        func() time.Time
}

var _ repository.HistoryProvider = (*CachedHistoryProvider)(nil)

func NewCachedHistoryProvider(reader repository.RawHistoryReader, h domsvc.Harmonizer, c pkgcache.Service, ttl time.Duration, l *applogger.Logger) *CachedHistoryProvider {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedHistoryProvider{
		reader:     reader,
		harmonizer: h,
		cache:      c,
		ttl:        ttl,
		l:          l,
		now:        time.Now,
	}
}

// SetClock overrides the provider's notion of "today". Tests use it to pin
// the window.
func (p *CachedHistoryProvider) SetClock(now func() time.Time) { p.now = now }

func (p *CachedHistoryProvider) History(ctx context.Context, region string, daysBack int) ([]models.DailyRecord, error) {
	from, to := util.DayRange(p.now(), daysBack)
	key := pkgcache.GenerateKeyWithParams(historyKeyPrefix, region, daysBack, to.Format(time.DateOnly))

	if p.cache != nil {
		if recs, ok, err := pkgcache.GetTyped[[]models.DailyRecord](ctx, p.cache, key); err == nil && ok {
			return recs, nil
		}
	}

	obs, err := p.reader.ReadRange(ctx, region, from, to)
	if err != nil {
		if p.l != nil {
			p.l.Error("history read failed",
				applogger.String("region", region),
				applogger.Int("days_back", daysBack),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("%w: %v", models.ErrDataUnavailable, err)
	}

	recs := p.harmonizer.Harmonize(region, from, to, obs)

	if p.cache != nil {
		if err := p.cache.Set(ctx, key, recs, p.ttl); err != nil && p.l != nil {
			p.l.Warn("history cache set failed",
				applogger.String("region", region),
				applogger.Error(err),
			)
		}
	}
	return recs, nil
}

// Invalidate drops every cached window for a region. The refresh job calls
// it after new observations land.
func (p *CachedHistoryProvider) Invalidate(ctx context.Context, region string) {
	if p.cache == nil {
		return
	}
	pattern := pkgcache.BuildPattern(pkgcache.GenerateKey(historyKeyPrefix, region))
	if err := p.cache.DeleteByPattern(ctx, pattern); err != nil && p.l != nil {
		p.l.Warn("history cache invalidate failed",
			applogger.String("region", region),
			applogger.Error(err),
		)
	}
}
