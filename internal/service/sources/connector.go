package sources

import (
	"context"
	"fmt"
	"time"

	"RegionPulse/internal/domain/models"
	"RegionPulse/pkg/config"
	xhttp "RegionPulse/pkg/http"
	applogger "RegionPulse/pkg/logger"
	"RegionPulse/pkg/util"
)

const (
	defaultTimeout  = 10 * time.Second
	defaultAttempts = 3
)

// providerResponse is the wire shape every upstream provider returns from
// its daily endpoint.
type providerResponse struct {
	Region string          `json:"region"`
	Points []providerPoint `json:"points"`
}

type providerPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// HTTPConnector fetches raw daily observations for one sub-index from one
// upstream provider. Values come back unscaled; the harmonizer owns the
// mapping into [0,1].
type HTTPConnector struct {
	name     string
	subIndex string
	baseURL  string
	apiKey   string
	client   *xhttp.Client
	logger   *applogger.Logger
}

func NewHTTPConnector(sc config.SourceConfig, logger *applogger.Logger) *HTTPConnector {
	timeout := sc.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPConnector{
		name:     sc.Name,
		subIndex: sc.SubIndex,
		baseURL:  sc.BaseURL,
		apiKey:   sc.APIKey,
		client:   xhttp.NewClient(xhttp.WithTimeout(timeout)),
		logger:   logger,
	}
}

func (c *HTTPConnector) Name() string { return c.name }

func (c *HTTPConnector) SubIndex() string { return c.subIndex }

// FetchDaily pulls the provider's daily series for region over [from, to].
// Transient failures are retried with a short backoff before giving up.
func (c *HTTPConnector) FetchDaily(ctx context.Context, region string, from, to time.Time) ([]models.SourceObservation, error) {
	if c.client == nil || c.baseURL == "" {
		return nil, fmt.Errorf("source %s not initialized", c.name)
	}

	var resp providerResponse
	if err := c.getWithRetry(ctx, region, from, to, &resp, defaultAttempts); err != nil {
		return nil, fmt.Errorf("fetch %s for %s: %w", c.name, region, err)
	}

	fetched := time.Now().UTC()
	obs := make([]models.SourceObservation, 0, len(resp.Points))
	for _, p := range resp.Points {
		day, ok := util.ParseTime(p.Date)
		if !ok {
			c.logger.Warn("skipping point with bad date",
				applogger.String("source", c.name),
				applogger.String("date", p.Date))
			continue
		}
		obs = append(obs, models.SourceObservation{
			Region:   region,
			SubIndex: c.subIndex,
			Source:   c.name,
			Date:     util.Day(day),
			Value:    p.Value,
			Fetched:  fetched,
		})
	}
	return obs, nil
}

func (c *HTTPConnector) getWithRetry(ctx context.Context, region string, from, to time.Time, dest interface{}, attempts int) error {
	headers := map[string]string{"Accept": "application/json"}
	if c.apiKey != "" {
		headers["X-Api-Key"] = c.apiKey
	}
	opts := &xhttp.RequestOptions{
		Method:  xhttp.MethodGet,
		URL:     c.baseURL + "/v1/daily",
		Headers: headers,
		QueryParams: map[string][]string{
			"region": {region},
			"from":   {from.Format(time.DateOnly)},
			"to":     {to.Format(time.DateOnly)},
		},
	}

	var err error
	for i := 1; i <= attempts; i++ {
		err = c.client.SendAndParse(ctx, opts, dest)
		if err == nil {
			return nil
		}
		select {
		case <-time.After(time.Duration(i) * 50 * time.Millisecond):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}
