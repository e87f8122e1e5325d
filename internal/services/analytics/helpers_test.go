package analytics

import (
	"time"

	"RegionPulse/internal/domain/models"
	"RegionPulse/pkg/config"
	"RegionPulse/pkg/logger"
)

func testConfig() *config.Config {
	c := &config.Config{}
	c.Environment = "test"
	c.Backend.Type = "clickhouse"
	c.Regions = []string{"US-CA"}
	return c
}

func testLogger() *logger.Logger {
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		panic(err)
	}
	return log
}

func dayAt(n int) time.Time {
	return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func historyOf(days int, fn func(d int) map[string]float64) []models.DailyRecord {
	recs := make([]models.DailyRecord, 0, days)
	for i := 0; i < days; i++ {
		recs = append(recs, models.DailyRecord{Date: dayAt(i), Values: fn(i)})
	}
	return recs
}

func flatValues(level float64) map[string]float64 {
	return map[string]float64{
		models.EconomicStress:       level,
		models.EnvironmentalStress:  level,
		models.MobilityActivity:     level,
		models.PoliticalStress:      level,
		models.MisinformationStress: level,
		models.SocialCohesionStress: level,
	}
}

func seriesOf(name string, vals ...float64) models.SubIndexSeries {
	s := models.SubIndexSeries{Name: name}
	for i, v := range vals {
		s.Dates = append(s.Dates, dayAt(i))
		s.Values = append(s.Values, v)
	}
	return s
}

func compositeOf(vals ...float64) *models.CompositeIndexSeries {
	s := &models.CompositeIndexSeries{}
	for i, v := range vals {
		s.Dates = append(s.Dates, dayAt(i))
		s.Values = append(s.Values, v)
	}
	return s
}
