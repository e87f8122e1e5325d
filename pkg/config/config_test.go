package config

import (
	"errors"
	"testing"
)

func validConfig() *Config {
	c := &Config{}
	c.Environment = "test"
	c.Backend.Type = "clickhouse"
	c.Regions = []string{"US-CA"}
	return c
}

func TestValidateDefaults(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestDefaultWeightsSumToOne(t *testing.T) {
	sum := 0.0
	for _, w := range DefaultWeights() {
		sum += w
	}
	if diff := sum - 1.0; diff > WeightTolerance || diff < -WeightTolerance {
		t.Fatalf("default weights sum %v", sum)
	}
}

func TestValidateWeightSum(t *testing.T) {
	c := validConfig()
	c.Index.Weights = map[string]float64{"economic_stress": 0.6, "political_stress": 0.6}
	err := c.Validate()
	if err == nil {
		t.Fatalf("expected weight sum error")
	}
	var ce *ConfigurationError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConfigurationError, got %T", err)
	}
	if ce.Field != "index.weights" {
		t.Fatalf("unexpected field %q", ce.Field)
	}
}

func TestValidateWeightSumWithinTolerance(t *testing.T) {
	c := validConfig()
	c.Index.Weights = map[string]float64{"economic_stress": 0.5, "political_stress": 0.5 + 5e-7}
	if err := c.Validate(); err != nil {
		t.Fatalf("tolerance should accept, got %v", err)
	}
}

func TestValidateNegativeWeight(t *testing.T) {
	c := validConfig()
	c.Index.Weights = map[string]float64{"economic_stress": 1.2, "political_stress": -0.2}
	if c.Validate() == nil {
		t.Fatalf("expected negative weight error")
	}
}

func TestValidateBackendType(t *testing.T) {
	c := validConfig()
	c.Backend.Type = "postgres"
	if c.Validate() == nil {
		t.Fatalf("expected backend error")
	}
}

func TestValidateSeveritySteps(t *testing.T) {
	c := validConfig()
	c.Shock.SeveritySteps = []float64{1, 2, 2, 3}
	if c.Validate() == nil {
		t.Fatalf("expected severity steps error")
	}
}

func TestValidateTierBoundaries(t *testing.T) {
	c := validConfig()
	c.Risk.Boundaries = []float64{20, 40, 30, 80}
	if c.Validate() == nil {
		t.Fatalf("expected boundaries error")
	}
}
