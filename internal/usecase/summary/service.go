package summary

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/taxfolio/backend/internal/domain"
	"github.com/taxfolio/backend/internal/usecase/apportion"
	"github.com/taxfolio/backend/internal/usecase/valuation"
)

// NetWorthResult represents the statement of assets and liabilities for a
// year of assessment
type NetWorthResult struct {
	TaxYear          domain.TaxYear
	TotalAssets      decimal.Decimal
	TotalLiabilities decimal.Decimal
	NetWorth         decimal.Decimal
	AssetsByCategory map[domain.AssetCategory]decimal.Decimal
}

// SummaryService computes wealth snapshots across the family's records
type SummaryService struct {
	AssetRepo     domain.AssetRepository
	LiabilityRepo domain.LiabilityRepository
	Normalizer    *valuation.Normalizer
}

// NewSummaryService creates a new SummaryService instance
func NewSummaryService(assetRepo domain.AssetRepository, liabilityRepo domain.LiabilityRepository, normalizer *valuation.Normalizer) *SummaryService {
	return &SummaryService{
		AssetRepo:     assetRepo,
		LiabilityRepo: liabilityRepo,
		Normalizer:    normalizer,
	}
}

// GetNetWorth calculates one entity's statement of assets and liabilities
// Logic:
//   - Assets: sum of normalized values of active assets, joint holdings
//     counted at the entity's ownership percentage
//   - Liabilities: outstanding balances replayed up to the year, likewise
//     apportioned
//   - Net worth: assets minus liabilities
func (s *SummaryService) GetNetWorth(ctx context.Context, entityID uuid.UUID, year domain.TaxYear) (*NetWorthResult, error) {
	assets, err := s.AssetRepo.ListByOwner(ctx, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	liabilities, err := s.LiabilityRepo.ListByOwner(ctx, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to list liabilities: %w", err)
	}

	result := &NetWorthResult{
		TaxYear:          year,
		AssetsByCategory: make(map[domain.AssetCategory]decimal.Decimal),
	}

	for _, asset := range assets {
		if !asset.ActiveIn(year) {
			continue
		}
		share := asset.SharePercentage(entityID)
		if share.IsZero() {
			continue
		}
		value := apportion.Share(s.Normalizer.ResolveValue(asset, year), share)
		result.TotalAssets = result.TotalAssets.Add(value)
		result.AssetsByCategory[asset.Category] = result.AssetsByCategory[asset.Category].Add(value)
	}

	for _, l := range liabilities {
		share := l.SharePercentage(entityID)
		if share.IsZero() {
			continue
		}
		balance := apportion.Share(l.BalanceAsOf(year), share)
		result.TotalLiabilities = result.TotalLiabilities.Add(balance)
	}

	result.NetWorth = result.TotalAssets.Sub(result.TotalLiabilities)
	return result, nil
}

// GetFamilyNetWorth calculates the combined statement across the whole
// family. Joint holdings contribute their full value exactly once.
func (s *SummaryService) GetFamilyNetWorth(ctx context.Context, year domain.TaxYear) (*NetWorthResult, error) {
	assets, err := s.AssetRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	liabilities, err := s.LiabilityRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list liabilities: %w", err)
	}

	result := &NetWorthResult{
		TaxYear:          year,
		AssetsByCategory: make(map[domain.AssetCategory]decimal.Decimal),
	}

	for _, asset := range assets {
		if !asset.ActiveIn(year) {
			continue
		}
		value := s.Normalizer.ResolveValue(asset, year)
		result.TotalAssets = result.TotalAssets.Add(value)
		result.AssetsByCategory[asset.Category] = result.AssetsByCategory[asset.Category].Add(value)
	}

	for _, l := range liabilities {
		result.TotalLiabilities = result.TotalLiabilities.Add(l.BalanceAsOf(year))
	}

	result.NetWorth = result.TotalAssets.Sub(result.TotalLiabilities)
	return result, nil
}
