package analytics

import (
	"math"
	"testing"

	"RegionPulse/internal/domain/models"
)

func TestComposeWeightedSum(t *testing.T) {
	c, err := NewComposer(testConfig())
	if err != nil {
		t.Fatalf("NewComposer: %v", err)
	}
	history := historyOf(1, func(int) map[string]float64 { return flatValues(0.4) })
	series, err := c.Compose(history)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if series.Len() != 1 {
		t.Fatalf("expected 1 value, got %d", series.Len())
	}
	// all at 0.4 except mobility contributes 0.6: 0.85*0.4 + 0.15*0.6
	want := 0.85*0.4 + 0.15*0.6
	if got := series.Values[0]; math.Abs(got-want) > 1e-9 {
		t.Fatalf("composite = %v, want %v", got, want)
	}
}

func TestComposeMobilityInverted(t *testing.T) {
	c, err := NewComposer(testConfig())
	if err != nil {
		t.Fatalf("NewComposer: %v", err)
	}
	lowMobility := historyOf(1, func(int) map[string]float64 {
		v := flatValues(0.5)
		v[models.MobilityActivity] = 0.1
		return v
	})
	highMobility := historyOf(1, func(int) map[string]float64 {
		v := flatValues(0.5)
		v[models.MobilityActivity] = 0.9
		return v
	})
	low, _ := c.Compose(lowMobility)
	high, _ := c.Compose(highMobility)
	if low.Values[0] <= high.Values[0] {
		t.Fatalf("low mobility should raise the index: low=%v high=%v", low.Values[0], high.Values[0])
	}
}

func TestComposeStaysInRange(t *testing.T) {
	c, err := NewComposer(testConfig())
	if err != nil {
		t.Fatalf("NewComposer: %v", err)
	}
	history := historyOf(60, func(d int) map[string]float64 {
		level := float64(d%11) / 10 // cycles 0.0 .. 1.0
		return flatValues(level)
	})
	series, err := c.Compose(history)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	for i, v := range series.Values {
		if v < 0 || v > 1 {
			t.Fatalf("day %d composite %v out of range", i, v)
		}
	}
}

func TestComposeDiffersWhenHistoriesDiffer(t *testing.T) {
	c, err := NewComposer(testConfig())
	if err != nil {
		t.Fatalf("NewComposer: %v", err)
	}
	regionA := historyOf(10, func(int) map[string]float64 {
		v := flatValues(0.5)
		v[models.EnvironmentalStress] = 0.2
		return v
	})
	regionB := historyOf(10, func(int) map[string]float64 {
		v := flatValues(0.5)
		v[models.EnvironmentalStress] = 0.9
		return v
	})
	a, _ := c.Compose(regionA)
	b, _ := c.Compose(regionB)
	for i := range a.Values {
		if a.Values[i] == b.Values[i] {
			t.Fatalf("day %d composites should differ", i)
		}
	}
}

func TestNewComposerRejectsBadWeights(t *testing.T) {
	cfg := testConfig()
	cfg.Index.Weights = map[string]float64{"economic_stress": 0.7, "political_stress": 0.7}
	if _, err := NewComposer(cfg); err == nil {
		t.Fatalf("expected weight sum error")
	}
}

func TestComposeEmptyHistory(t *testing.T) {
	c, _ := NewComposer(testConfig())
	if _, err := c.Compose(nil); err == nil {
		t.Fatalf("expected error on empty history")
	}
}
