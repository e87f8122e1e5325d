package analytics

import (
	"sort"
	"time"

	"RegionPulse/internal/domain/models"
)

// SplitIndices explodes harmonized history into one ordered series per
// sub-index. Every record carries the same key set, so the union is
// driven by the first record plus any stragglers.
func SplitIndices(history []models.DailyRecord) map[string]models.SubIndexSeries {
	out := make(map[string]models.SubIndexSeries)
	if len(history) == 0 {
		return out
	}
	seen := make(map[string]bool)
	var names []string
	for _, rec := range history {
		for name := range rec.Values {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	for _, name := range names {
		s := models.SubIndexSeries{
			Name:   name,
			Dates:  make([]time.Time, 0, len(history)),
			Values: make([]float64, 0, len(history)),
		}
		for _, rec := range history {
			s.Dates = append(s.Dates, rec.Date)
			s.Values = append(s.Values, rec.Values[name])
		}
		out[name] = s
	}
	return out
}

// sortedIndexNames returns the map keys in deterministic order.
func sortedIndexNames(indices map[string]models.SubIndexSeries) []string {
	names := make([]string, 0, len(indices))
	for name := range indices {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
