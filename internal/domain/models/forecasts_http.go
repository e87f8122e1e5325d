package models

// Requests for the forecast API endpoints. Defined in domain for consistency and reuse.

type ForecastRequest struct {
	Region   string `query:"region" json:"region" validate:"required"`
	DaysBack int    `query:"days_back" json:"days_back" default:"90" validate:"gte=14,lte=365"`
	Horizon  int    `query:"horizon" json:"horizon" default:"7" validate:"gte=1,lte=30"`
}

type HistoryRequest struct {
	Region   string `query:"region" json:"region" validate:"required"`
	DaysBack int    `query:"days_back" json:"days_back" default:"90" validate:"gte=1,lte=365"`
}

type RiskRequest struct {
	Region   string `query:"region" json:"region" validate:"required"`
	DaysBack int    `query:"days_back" json:"days_back" default:"30" validate:"gte=14,lte=365"`
}

type CorrelationsRequest struct {
	Region   string `query:"region" json:"region" validate:"required"`
	DaysBack int    `query:"days_back" json:"days_back" default:"30" validate:"gte=7,lte=365"`
}

type LatestForecastRequest struct {
	Region string `query:"region" json:"region" validate:"required"`
}
