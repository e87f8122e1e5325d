package models

import "time"

// SourceObservation is one raw daily reading from one upstream source,
// before harmonization. Value is in the source's native scale; the
// harmonizer normalizes it with the per-source bounds from config.
type SourceObservation struct {
	Region   string
	SubIndex string
	Source   string
	Date     time.Time
	Value    float64
	Fetched  time.Time
}

// ForecastSnapshot is one persisted pipeline run: the serialized
// ForecastResult plus enough columns to query latest-per-region.
type ForecastSnapshot struct {
	Region      string
	Model       string
	Horizon     int
	GeneratedAt time.Time
	Payload     []byte
}
