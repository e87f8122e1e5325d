package usecase

import (
	"context"
	"fmt"

	"RegionPulse/internal/domain/models"
	domrepo "RegionPulse/internal/domain/repository"
	domsvc "RegionPulse/internal/domain/service"
)

// HistoryUseCase serves harmonized history windows straight to the API,
// bypassing the forecast stages. Each day still carries its composite
// value so the output shape matches the forecast history block.
type HistoryUseCase struct {
	provider domrepo.HistoryProvider
	composer domsvc.IndexComposer
	regions  []string
	known    map[string]bool
}

func NewHistoryUseCase(provider domrepo.HistoryProvider, composer domsvc.IndexComposer, regions []string) *HistoryUseCase {
	known := make(map[string]bool, len(regions))
	for _, r := range regions {
		known[r] = true
	}
	return &HistoryUseCase{provider: provider, composer: composer, regions: regions, known: known}
}

type GetHistoryParams struct {
	Region   string
	DaysBack int
}

type GetHistoryResult struct {
	Region   string              `json:"region"`
	DaysBack int                 `json:"days_back"`
	Count    int                 `json:"count"`
	History  []models.HistoryDay `json:"history"`
}

// KnownRegion reports whether the region is configured.
func (uc *HistoryUseCase) KnownRegion(region string) bool {
	return uc.known[region]
}

// Regions returns the configured region list in config order.
func (uc *HistoryUseCase) Regions() []string {
	return uc.regions
}

func (uc *HistoryUseCase) GetHistory(ctx context.Context, p GetHistoryParams) (*GetHistoryResult, error) {
	if p.Region == "" {
		return nil, fmt.Errorf("region required")
	}
	p.DaysBack = domrepo.ClampDaysBack(p.DaysBack)

	records, err := uc.provider.History(ctx, p.Region, p.DaysBack)
	if err != nil {
		return nil, fmt.Errorf("get history: %w", err)
	}

	days := make([]models.HistoryDay, 0, len(records))
	if len(records) > 0 {
		series, err := uc.composer.Compose(records)
		if err != nil {
			return nil, fmt.Errorf("compose history: %w", err)
		}
		days = assembleHistory(records, series)
	}

	return &GetHistoryResult{
		Region:   p.Region,
		DaysBack: p.DaysBack,
		Count:    len(days),
		History:  days,
	}, nil
}
