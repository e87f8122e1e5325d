package usecase

import (
	"testing"
	"time"

	"RegionPulse/internal/domain/models"
	"RegionPulse/pkg/config"
)

func harmonizerConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Index.Weights = map[string]float64{
		"economic_stress":   0.5,
		"mobility_activity": 0.5,
	}
	cfg.Sources = []config.SourceConfig{
		{Name: "econ-api", SubIndex: "economic_stress", Min: 0, Max: 100},
		{Name: "econ-alt", SubIndex: "economic_stress", Min: 0, Max: 200},
	}
	return cfg
}

func obsAt(day time.Time, subIndex, source string, value float64) *models.SourceObservation {
	return &models.SourceObservation{
		Region:   "PL-MZ",
		SubIndex: subIndex,
		Source:   source,
		Date:     day,
		Value:    value,
	}
}

func TestHarmonizeAlignsCalendarAndForwardFills(t *testing.T) {
	h := NewHarmonizer(harmonizerConfig(), nil)
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 2)

	obs := []*models.SourceObservation{
		obsAt(from, "economic_stress", "econ-api", 40),
		obsAt(to, "economic_stress", "econ-api", 80),
	}

	records := h.Harmonize("PL-MZ", from, to, obs)
	if len(records) != 3 {
		t.Fatalf("records = %d, want 3", len(records))
	}
	for i, r := range records {
		want := from.AddDate(0, 0, i)
		if !r.Date.Equal(want) {
			t.Fatalf("records[%d].Date = %v, want %v", i, r.Date, want)
		}
	}

	// Day 1 has no economic reading and carries day 0 forward.
	if got := records[1].Values["economic_stress"]; got != 0.4 {
		t.Fatalf("forward-filled value = %v, want 0.4", got)
	}
	if got := records[2].Values["economic_stress"]; got != 0.8 {
		t.Fatalf("day 2 value = %v, want 0.8", got)
	}

	// Mobility never reports, so every day holds the neutral substitute.
	for i, r := range records {
		if got := r.Values["mobility_activity"]; got != models.NeutralValue {
			t.Fatalf("records[%d] mobility = %v, want %v", i, got, models.NeutralValue)
		}
	}
}

func TestHarmonizeAveragesSourcesPerDay(t *testing.T) {
	h := NewHarmonizer(harmonizerConfig(), nil)
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	// econ-api scales 60/100 -> 0.6, econ-alt scales 80/200 -> 0.4.
	obs := []*models.SourceObservation{
		obsAt(day, "economic_stress", "econ-api", 60),
		obsAt(day, "economic_stress", "econ-alt", 80),
	}

	records := h.Harmonize("PL-MZ", day, day, obs)
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1", len(records))
	}
	if got := records[0].Values["economic_stress"]; got != 0.5 {
		t.Fatalf("averaged value = %v, want 0.5", got)
	}
}

func TestHarmonizeClampsOutOfBoundsReadings(t *testing.T) {
	h := NewHarmonizer(harmonizerConfig(), nil)
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	obs := []*models.SourceObservation{
		obsAt(day, "economic_stress", "econ-api", 250),
	}

	records := h.Harmonize("PL-MZ", day, day, obs)
	if got := records[0].Values["economic_stress"]; got != 1 {
		t.Fatalf("clamped value = %v, want 1", got)
	}
}

func TestHarmonizeDropsObservationsOutsideWindow(t *testing.T) {
	h := NewHarmonizer(harmonizerConfig(), nil)
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	obs := []*models.SourceObservation{
		obsAt(from.AddDate(0, 0, -1), "economic_stress", "econ-api", 90),
		obsAt(from.AddDate(0, 0, 5), "economic_stress", "econ-api", 90),
	}

	records := h.Harmonize("PL-MZ", from, from, obs)
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1", len(records))
	}
	if got := records[0].Values["economic_stress"]; got != models.NeutralValue {
		t.Fatalf("value = %v, want neutral %v", got, models.NeutralValue)
	}
}

func TestHarmonizeEmptyWindow(t *testing.T) {
	h := NewHarmonizer(harmonizerConfig(), nil)
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	if got := h.Harmonize("PL-MZ", day, day.AddDate(0, 0, -1), nil); got != nil {
		t.Fatalf("inverted window = %v, want nil", got)
	}
}
