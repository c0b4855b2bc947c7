package valuation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/taxfolio/backend/internal/domain"
	"github.com/taxfolio/backend/internal/usecase/taxconfig"
	"go.uber.org/zap"
)

// Normalizer resolves the authoritative value of an asset for a year of
// assessment across heterogeneous categories. The same priority order is
// used for single-year snapshots and multi-year trends; the only special
// case is the in-progress year, where the latest known record wins over a
// year-matched one.
type Normalizer struct {
	AssetRepo domain.AssetRepository
	Config    *taxconfig.Resolver

	log *zap.Logger
	now func() time.Time // injected for deterministic tests
}

// NewNormalizer creates a new Normalizer instance
func NewNormalizer(assetRepo domain.AssetRepository, cfg *taxconfig.Resolver, log *zap.Logger) *Normalizer {
	return &Normalizer{
		AssetRepo: assetRepo,
		Config:    cfg,
		log:       log,
		now:       time.Now,
	}
}

// WithClock overrides the wall clock; tests use this to pin the
// in-progress year.
func (n *Normalizer) WithClock(now func() time.Time) *Normalizer {
	n.now = now
	return n
}

// ResolveValue returns the asset's value for the year using a strict
// first-match-wins priority over the competing evidence of value:
//  1. Explicit yearly valuation record (property/vehicle appraisals)
//  2. Latest property expense entry up to the year carrying a market value
//  3. Latest stock balance portfolio value (shares)
//  4. Category formula: jewellery cost scaled by the metal index;
//     monetary assets by latest balance, foreign currency at the year's rate
//  5. The asset's static market value
func (n *Normalizer) ResolveValue(asset *domain.Asset, year domain.TaxYear) decimal.Decimal {
	inProgress := year == domain.TaxYearOf(n.now())

	// 1. Explicit appraisal
	if v, ok := n.valuationFor(asset, year, inProgress); ok {
		return v
	}

	// 2. Property expense revaluation
	if v, ok := latestRevaluedExpense(asset, year); ok {
		return v
	}

	// 3. Stock portfolio
	if asset.Category == domain.AssetCategoryShares {
		if sb, ok := n.stockBalanceFor(asset, year, inProgress); ok {
			return sb.PortfolioValue.Add(sb.CashBalance)
		}
	}

	// 4. Category-specific formula
	if v, ok := n.categoryFormula(asset, year, inProgress); ok {
		return v
	}

	// 5. Static fallback — degraded accuracy for categories that should
	// have carried yearly evidence
	if asset.IsMonetary() || asset.Category == domain.AssetCategoryShares {
		n.log.Warn("no balance record for asset, using static market value",
			zap.String("asset_id", asset.ID.String()),
			zap.String("category", string(asset.Category)),
			zap.String("tax_year", year.String()),
		)
	}
	return asset.MarketValue
}

// valuationFor applies the in-progress-year rule to explicit appraisals.
func (n *Normalizer) valuationFor(asset *domain.Asset, year domain.TaxYear, inProgress bool) (decimal.Decimal, bool) {
	if inProgress {
		var best domain.Valuation
		found := false
		for _, v := range asset.Valuations {
			if !found || v.TaxYear > best.TaxYear {
				best = v
				found = true
			}
		}
		if found {
			return best.Value, true
		}
		return decimal.Decimal{}, false
	}

	if v, ok := asset.ValuationFor(year); ok {
		return v.Value, true
	}
	return decimal.Decimal{}, false
}

func (n *Normalizer) stockBalanceFor(asset *domain.Asset, year domain.TaxYear, inProgress bool) (domain.StockBalance, bool) {
	if inProgress {
		// Latest known record regardless of year
		return asset.LatestStockBalanceUpTo(domain.TaxYear(1<<30 - 1))
	}
	if sb, ok := asset.StockBalanceFor(year); ok {
		return sb, true
	}
	return asset.LatestStockBalanceUpTo(year)
}

func (n *Normalizer) balanceFor(asset *domain.Asset, year domain.TaxYear, inProgress bool) (domain.YearlyBalance, bool) {
	if inProgress {
		return asset.LatestBalanceUpTo(domain.TaxYear(1<<30 - 1))
	}
	if b, ok := asset.BalanceFor(year); ok {
		return b, true
	}
	return asset.LatestBalanceUpTo(year)
}

// latestRevaluedExpense finds the most recent property expense at or before
// the year that carries a revalued market figure.
func latestRevaluedExpense(asset *domain.Asset, year domain.TaxYear) (decimal.Decimal, bool) {
	var bestYear domain.TaxYear
	var best decimal.Decimal
	found := false
	for _, pe := range asset.PropertyExpense {
		if pe.TaxYear > year || pe.MarketValue == nil {
			continue
		}
		if !found || pe.TaxYear > bestYear {
			bestYear = pe.TaxYear
			best = *pe.MarketValue
			found = true
		}
	}
	return best, found
}

func (n *Normalizer) categoryFormula(asset *domain.Asset, year domain.TaxYear, inProgress bool) (decimal.Decimal, bool) {
	switch {
	case asset.Category == domain.AssetCategoryJewellery:
		return n.jewelleryValue(asset, year)

	case asset.IsMonetary():
		balance, ok := n.balanceFor(asset, year, inProgress)
		if !ok {
			return decimal.Decimal{}, false
		}
		if asset.Currency == "" || asset.Currency == "LKR" {
			return balance.ClosingBalance, true
		}
		rate, ok := n.Config.ExchangeRate(asset.Currency, year)
		if !ok {
			n.log.Warn("no exchange rate for currency, using balance at par",
				zap.String("asset_id", asset.ID.String()),
				zap.String("currency", asset.Currency),
				zap.String("tax_year", year.String()),
			)
			return balance.ClosingBalance, true
		}
		return balance.ClosingBalance.Mul(rate), true
	}

	return decimal.Decimal{}, false
}

// jewelleryValue scales acquisition cost by the ratio of the metal index
// between the acquisition year and the target year.
func (n *Normalizer) jewelleryValue(asset *domain.Asset, year domain.TaxYear) (decimal.Decimal, bool) {
	target, ok := n.Config.JewelleryIndex(asset.Metal, year)
	if !ok {
		return decimal.Decimal{}, false
	}
	base, ok := n.Config.JewelleryIndex(asset.Metal, domain.TaxYearOf(asset.AcquisitionDate))
	if !ok || base.IsZero() {
		return decimal.Decimal{}, false
	}

	// Net acquisitions within the jewellery asset shift the cost base
	cost := asset.Cost
	for _, txn := range asset.JewelleryTxns {
		if domain.TaxYearOf(txn.Date) <= year {
			cost = cost.Add(txn.Amount)
		}
	}
	if cost.IsNegative() {
		cost = decimal.Zero
	}

	return cost.Mul(target).Div(base), true
}

// RecordValuation appends an explicit appraisal to an asset for a year.
// Logic: fetch the asset, reject a duplicate year, persist the updated
// record. Returns the stored valuation entry.
func (n *Normalizer) RecordValuation(ctx context.Context, assetID uuid.UUID, year domain.TaxYear, value decimal.Decimal, source string) (*domain.Valuation, error) {
	if value.LessThanOrEqual(decimal.Zero) {
		return nil, errors.New("valuation must be positive")
	}

	asset, err := n.AssetRepo.GetByID(ctx, assetID)
	if err != nil {
		return nil, err
	}

	if _, exists := asset.ValuationFor(year); exists {
		return nil, domain.ErrDuplicateYearRecord
	}

	entry := domain.Valuation{
		TaxYear: year,
		Value:   value,
		Source:  source,
	}
	asset.Valuations = append(asset.Valuations, entry)

	if err := asset.Validate(); err != nil {
		return nil, err
	}

	if err := n.AssetRepo.Update(ctx, asset); err != nil {
		return nil, err
	}

	return &entry, nil
}
