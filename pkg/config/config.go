package config

import (
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// WeightTolerance is how far the sub-index weight sum may drift from 1.0
// before the configuration is rejected.
const WeightTolerance = 1e-6

// SourceConfig describes one upstream provider feeding one sub-index.
// Min/Max are the raw-value bounds the harmonizer scales into [0,1].
type SourceConfig struct {
	Name     string        `yaml:"name"`
	SubIndex string        `yaml:"sub_index"`
	BaseURL  string        `yaml:"base_url"`
	APIKey   string        `yaml:"api_key"`
	Timeout  time.Duration `yaml:"timeout"`
	Min      float64       `yaml:"min"`
	Max      float64       `yaml:"max"`
}

type Config struct {
	Environment string   `yaml:"environment"`
	Regions     []string `yaml:"regions"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Backend struct {
		Type         string        `yaml:"type"`
		BatchSize    int           `yaml:"batch_size"`
		BatchTimeout time.Duration `yaml:"batch_timeout"`
	} `yaml:"backend"`
	Kafka struct {
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic"`
		ResultsTopic string   `yaml:"results_topic"`
		LogsTopic    string   `yaml:"logs_topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string        `yaml:"group_id"`
			Workers    int           `yaml:"workers"`
			BufferSize int           `yaml:"buffer_size"`
			RetryMax   int           `yaml:"retry_max"`
			BackoffMin time.Duration `yaml:"backoff_min"`
			BackoffMax time.Duration `yaml:"backoff_max"`
			DLQTopic   string        `yaml:"dlq_topic"`
			MinBytes   int           `yaml:"min_bytes"`
			MaxBytes   int           `yaml:"max_bytes"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Sources []SourceConfig `yaml:"sources"`
	Index   struct {
		Weights map[string]float64 `yaml:"weights"`
	} `yaml:"index"`
	Forecast struct {
		MinHistory    int     `yaml:"min_history"`
		PrimaryModel  string  `yaml:"primary_model"`
		FallbackModel string  `yaml:"fallback_model"`
		Alpha         float64 `yaml:"alpha"`
		Beta          float64 `yaml:"beta"`
	} `yaml:"forecast"`
	Shock struct {
		Window        int       `yaml:"window"`
		ZScore        float64   `yaml:"zscore_threshold"`
		Delta         float64   `yaml:"delta_threshold"`
		EWMAAlpha     float64   `yaml:"ewma_alpha"`
		EWMAThreshold float64   `yaml:"ewma_threshold"`
		SeveritySteps []float64 `yaml:"severity_steps"`
		RecentDays    int       `yaml:"recent_days"`
	} `yaml:"shock"`
	Convergence struct {
		Window        int     `yaml:"window"`
		Threshold     float64 `yaml:"threshold"`
		ElevatedLevel float64 `yaml:"elevated_level"`
	} `yaml:"convergence"`
	Risk struct {
		Boundaries []float64 `yaml:"boundaries"`
		TrendScale float64   `yaml:"trend_scale"`
		TrendDays  int       `yaml:"trend_days"`
	} `yaml:"risk"`
	Monitor struct {
		Window int `yaml:"window"`
	} `yaml:"monitor"`
	Cache struct {
		Mode       string        `yaml:"mode"`
		MaxSize    int           `yaml:"max_size"`
		HistoryTTL time.Duration `yaml:"history_ttl"`
		ResultTTL  time.Duration `yaml:"result_ttl"`
	} `yaml:"cache"`
	RateLimit struct {
		RPS   float64 `yaml:"rps"`
		Burst int     `yaml:"burst"`
	} `yaml:"ratelimit"`
	Refresh struct {
		Enabled  bool          `yaml:"enabled"`
		Interval time.Duration `yaml:"interval"`
		DaysBack int           `yaml:"days_back"`
		Horizon  int           `yaml:"horizon"`
		Queue    string        `yaml:"queue"`
		Workers  int           `yaml:"workers"`
	} `yaml:"refresh"`
}

// ConfigurationError is a startup-time rejection of the loaded file. The
// process must not serve requests on top of one.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("config %s: %s", e.Field, e.Reason)
}

// DefaultWeights is the canonical sub-index weight table, used when the
// file does not override it. Sums to exactly 1.0.
func DefaultWeights() map[string]float64 {
	return map[string]float64{
		"economic_stress":        0.20,
		"political_stress":       0.20,
		"environmental_stress":   0.15,
		"mobility_activity":      0.15,
		"misinformation_stress":  0.15,
		"social_cohesion_stress": 0.15,
	}
}

// IndexWeights returns the configured weight table, falling back to the
// canonical defaults when the file leaves it empty.
func (c *Config) IndexWeights() map[string]float64 {
	if len(c.Index.Weights) == 0 {
		return DefaultWeights()
	}
	return c.Index.Weights
}

// SeveritySteps returns the shock severity ladder as multiples of each
// method's base threshold: mild, moderate, high, severe.
func (c *Config) SeveritySteps() []float64 {
	if len(c.Shock.SeveritySteps) == 4 {
		return c.Shock.SeveritySteps
	}
	return []float64{1.0, 1.5, 2.0, 3.0}
}

// TierBoundaries returns the four ascending risk-score cutoffs between
// the five tiers.
func (c *Config) TierBoundaries() []float64 {
	if len(c.Risk.Boundaries) == 4 {
		return c.Risk.Boundaries
	}
	return []float64{20, 40, 60, 80}
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// Validate required fields
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	// Override with environment variables
	if v := os.Getenv("REGIONS"); v != "" {
		c.Regions = strings.Split(v, ",")
	}
	if v := os.Getenv("BACKEND"); v != "" {
		c.Backend.Type = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}

	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return &ConfigurationError{Field: "environment", Reason: "is required"}
	}
	if c.Backend.Type == "" {
		return &ConfigurationError{Field: "backend.type", Reason: "is required"}
	}
	if c.Backend.Type != "kafka" && c.Backend.Type != "clickhouse" {
		return &ConfigurationError{Field: "backend.type", Reason: fmt.Sprintf("must be 'kafka' or 'clickhouse', got '%s'", c.Backend.Type)}
	}
	if len(c.Regions) == 0 {
		return &ConfigurationError{Field: "regions", Reason: "cannot be empty"}
	}

	weights := c.IndexWeights()
	sum := 0.0
	for name, w := range weights {
		if w < 0 {
			return &ConfigurationError{Field: "index.weights." + name, Reason: fmt.Sprintf("must be non-negative, got %v", w)}
		}
		sum += w
	}
	if math.Abs(sum-1.0) > WeightTolerance {
		return &ConfigurationError{Field: "index.weights", Reason: fmt.Sprintf("must sum to 1.0, got %v", sum)}
	}

	steps := c.SeveritySteps()
	for i := 1; i < len(steps); i++ {
		if steps[i] <= steps[i-1] {
			return &ConfigurationError{Field: "shock.severity_steps", Reason: "must be strictly ascending"}
		}
	}

	bounds := c.TierBoundaries()
	for i := 1; i < len(bounds); i++ {
		if bounds[i] <= bounds[i-1] {
			return &ConfigurationError{Field: "risk.boundaries", Reason: "must be strictly ascending"}
		}
	}

	if th := c.Convergence.Threshold; th != 0 && (th <= 0 || th > 1) {
		return &ConfigurationError{Field: "convergence.threshold", Reason: fmt.Sprintf("must be in (0,1], got %v", th)}
	}

	for i, s := range c.Sources {
		if s.SubIndex == "" {
			return &ConfigurationError{Field: fmt.Sprintf("sources[%d].sub_index", i), Reason: "is required"}
		}
		if s.BaseURL == "" {
			return &ConfigurationError{Field: fmt.Sprintf("sources[%d].base_url", i), Reason: "is required"}
		}
		if s.Max <= s.Min {
			return &ConfigurationError{Field: fmt.Sprintf("sources[%d]", i), Reason: "max must exceed min"}
		}
	}
	return nil
}
