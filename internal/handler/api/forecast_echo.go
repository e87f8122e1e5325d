package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"RegionPulse/internal/domain/models"
	drepo "RegionPulse/internal/domain/repository"
	icache "RegionPulse/internal/service/cache"
	"RegionPulse/internal/service/metrics"
	"RegionPulse/internal/service/ratelimit"
	"RegionPulse/internal/usecase"
	"RegionPulse/pkg/config"
	xhttp "RegionPulse/pkg/http"
	xlogger "RegionPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ForecastEchoHandler exposes the forecast API. Every read endpoint is
// rate limited per client and backed by the response byte cache; cached
// and fresh paths emit identical bytes.
type ForecastEchoHandler struct {
	logger    *xlogger.Logger
	pipeline  *usecase.ForecastPipeline
	history   *usecase.HistoryUseCase
	cache     icache.BytesCache
	snapshots drepo.SnapshotStore
	rl        *ratelimit.Limiter
	rps       float64
	burst     float64
	ttl       time.Duration
}

func NewForecastEchoHandler(logger *xlogger.Logger, pipeline *usecase.ForecastPipeline, history *usecase.HistoryUseCase, cfg *config.Config) *ForecastEchoHandler {
	metrics.Register()
	rps := cfg.RateLimit.RPS
	if rps <= 0 {
		rps = 2
	}
	burst := float64(cfg.RateLimit.Burst)
	if burst <= 0 {
		burst = 5
	}
	ttl := cfg.Cache.ResultTTL
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &ForecastEchoHandler{
		logger:   logger,
		pipeline: pipeline,
		history:  history,
		rl:       ratelimit.New(),
		rps:      rps,
		burst:    burst,
		ttl:      ttl,
	}
}

// SetCache injects the response byte cache.
func (h *ForecastEchoHandler) SetCache(c icache.BytesCache) { h.cache = c }

// SetSnapshots enables the precomputed fast path.
func (h *ForecastEchoHandler) SetSnapshots(s drepo.SnapshotStore) { h.snapshots = s }

func (h *ForecastEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/v1")
	g.GET("/forecast", h.Forecast)
	g.GET("/forecast/latest", h.LatestForecast)
	g.GET("/history", h.History)
	g.GET("/risk", h.Risk)
	g.GET("/correlations", h.Correlations)
	g.GET("/regions", h.Regions)
	e.GET("/health", h.Health)
}

func (h *ForecastEchoHandler) Forecast(c echo.Context) error {
	start := time.Now()
	endpoint := "forecast"
	defer func() { metrics.EndpointLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.ForecastRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.history.KnownRegion(req.Region) {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("unknown region %q", req.Region))
	}
	if !h.rl.Allow(c.RealIP()+":"+endpoint, h.burst, h.rps) {
		return xhttp.AppErrorResponse(c, rateLimited())
	}

	key := fmt.Sprintf("forecast:%s:%d:%d", req.Region, req.DaysBack, req.Horizon)
	if b, ok := h.cached(endpoint, key); ok {
		return h.writeJSON(c, b)
	}

	res, err := h.pipeline.BuildForecast(c.Request().Context(), req.Region, req.DaysBack, req.Horizon)
	if err != nil {
		metrics.EndpointErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("forecast pipeline error",
			xlogger.String("region", req.Region),
			xlogger.Error(err))
		return h.respondError(c, err)
	}
	return h.respond(c, endpoint, key, res)
}

// LatestForecast serves the newest refresh snapshot verbatim, skipping
// the pipeline. 404 until the first refresh has landed.
func (h *ForecastEchoHandler) LatestForecast(c echo.Context) error {
	start := time.Now()
	endpoint := "forecast_latest"
	defer func() { metrics.EndpointLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.LatestForecastRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.history.KnownRegion(req.Region) {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("unknown region %q", req.Region))
	}
	if !h.rl.Allow(c.RealIP()+":"+endpoint, h.burst, h.rps) {
		return xhttp.AppErrorResponse(c, rateLimited())
	}
	if h.snapshots == nil {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("no snapshot for region %q", req.Region))
	}

	snap, err := h.snapshots.LatestSnapshot(c.Request().Context(), req.Region)
	if err != nil {
		metrics.EndpointErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("latest snapshot error",
			xlogger.String("region", req.Region),
			xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	if snap == nil {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("no snapshot for region %q", req.Region))
	}
	return h.writeJSON(c, snap.Payload)
}

func (h *ForecastEchoHandler) History(c echo.Context) error {
	start := time.Now()
	endpoint := "history"
	defer func() { metrics.EndpointLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.history.KnownRegion(req.Region) {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("unknown region %q", req.Region))
	}
	if !h.rl.Allow(c.RealIP()+":"+endpoint, h.burst, h.rps) {
		return xhttp.AppErrorResponse(c, rateLimited())
	}

	key := fmt.Sprintf("history:%s:%d", req.Region, req.DaysBack)
	if b, ok := h.cached(endpoint, key); ok {
		return h.writeJSON(c, b)
	}

	res, err := h.history.GetHistory(c.Request().Context(), usecase.GetHistoryParams{
		Region:   req.Region,
		DaysBack: req.DaysBack,
	})
	if err != nil {
		metrics.EndpointErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("history usecase error",
			xlogger.String("region", req.Region),
			xlogger.Error(err))
		return h.respondError(c, err)
	}
	return h.respond(c, endpoint, key, res)
}

type riskDoc struct {
	Region      string              `json:"region"`
	RiskTier    *models.RiskTier    `json:"risk_tier"`
	ShockEvents []models.ShockEvent `json:"shock_events"`
	GeneratedAt time.Time           `json:"generated_at"`
}

func (h *ForecastEchoHandler) Risk(c echo.Context) error {
	start := time.Now()
	endpoint := "risk"
	defer func() { metrics.EndpointLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.RiskRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.history.KnownRegion(req.Region) {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("unknown region %q", req.Region))
	}
	if !h.rl.Allow(c.RealIP()+":"+endpoint, h.burst, h.rps) {
		return xhttp.AppErrorResponse(c, rateLimited())
	}

	key := fmt.Sprintf("risk:%s:%d", req.Region, req.DaysBack)
	if b, ok := h.cached(endpoint, key); ok {
		return h.writeJSON(c, b)
	}

	res, err := h.pipeline.BuildForecast(c.Request().Context(), req.Region, req.DaysBack, usecase.DefaultHorizon)
	if err != nil {
		metrics.EndpointErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("risk pipeline error",
			xlogger.String("region", req.Region),
			xlogger.Error(err))
		return h.respondError(c, err)
	}
	return h.respond(c, endpoint, key, riskDoc{
		Region:      res.Region,
		RiskTier:    res.RiskTier,
		ShockEvents: res.ShockEvents,
		GeneratedAt: res.GeneratedAt,
	})
}

type correlationsDoc struct {
	Region       string                 `json:"region"`
	Correlations *models.CorrelationSet `json:"correlations"`
	GeneratedAt  time.Time              `json:"generated_at"`
}

func (h *ForecastEchoHandler) Correlations(c echo.Context) error {
	start := time.Now()
	endpoint := "correlations"
	defer func() { metrics.EndpointLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.CorrelationsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.history.KnownRegion(req.Region) {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("unknown region %q", req.Region))
	}
	if !h.rl.Allow(c.RealIP()+":"+endpoint, h.burst, h.rps) {
		return xhttp.AppErrorResponse(c, rateLimited())
	}

	key := fmt.Sprintf("corr:%s:%d", req.Region, req.DaysBack)
	if b, ok := h.cached(endpoint, key); ok {
		return h.writeJSON(c, b)
	}

	res, err := h.pipeline.BuildForecast(c.Request().Context(), req.Region, req.DaysBack, usecase.DefaultHorizon)
	if err != nil {
		metrics.EndpointErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("correlations pipeline error",
			xlogger.String("region", req.Region),
			xlogger.Error(err))
		return h.respondError(c, err)
	}
	return h.respond(c, endpoint, key, correlationsDoc{
		Region:       res.Region,
		Correlations: res.Correlations,
		GeneratedAt:  res.GeneratedAt,
	})
}

func (h *ForecastEchoHandler) Regions(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"regions": h.history.Regions(),
	})
}

func (h *ForecastEchoHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *ForecastEchoHandler) cached(endpoint, key string) ([]byte, bool) {
	if h.cache == nil {
		return nil, false
	}
	b, ok, err := h.cache.GetBytes(key)
	if err != nil {
		h.logger.Warn("response cache get error",
			xlogger.String("key", key),
			xlogger.Error(err))
		return nil, false
	}
	if ok {
		metrics.CacheHits.WithLabelValues(endpoint).Inc()
		return b, true
	}
	return nil, false
}

// respond marshals the document, caches it, and writes it. Serving the
// same bytes on hit and miss keeps responses reproducible.
func (h *ForecastEchoHandler) respond(c echo.Context, endpoint, key string, doc interface{}) error {
	b, err := json.Marshal(doc)
	if err != nil {
		metrics.EndpointErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("response marshal error", xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	if h.cache != nil {
		if err := h.cache.SetBytes(key, b, h.ttl); err != nil {
			h.logger.Warn("response cache set error",
				xlogger.String("key", key),
				xlogger.Error(err))
		}
	}
	return h.writeJSON(c, b)
}

func (h *ForecastEchoHandler) writeJSON(c echo.Context, b []byte) error {
	c.Response().Header().Set(echo.HeaderCacheControl, fmt.Sprintf("public, max-age=%d", int(h.ttl.Seconds())))
	return c.JSONBlob(http.StatusOK, b)
}

func (h *ForecastEchoHandler) respondError(c echo.Context, err error) error {
	switch {
	case models.IsInsufficientHistory(err):
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_INSUFFICIENT_HISTORY", "", err.Error(), http.StatusUnprocessableEntity))
	case errors.Is(err, models.ErrDataUnavailable):
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_DATA_UNAVAILABLE", "", "history data unavailable", http.StatusServiceUnavailable))
	default:
		return xhttp.AppErrorResponse(c, err)
	}
}

func rateLimited() *xhttp.AppError {
	return xhttp.NewAppError("ERR_RATE_LIMITED", "", "rate limited", http.StatusTooManyRequests)
}
