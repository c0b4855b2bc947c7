package investment

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/taxfolio/backend/internal/domain"
)

// Deriver materializes schedule 3 (investment) income from asset balance
// history. Derived records are never persisted; they are recomputed on every
// call so investment income can never drift out of sync with the underlying
// balance evidence.
type Deriver struct{}

// NewDeriver creates a new Deriver instance
func NewDeriver() *Deriver {
	return &Deriver{}
}

// CalculateDerivedInvestmentIncome walks each asset's yearly balances for
// the target year and accumulates interest (bank/cash/loans-given),
// dividends (shares) and the WHT deducted at source. Joint assets yield one
// record per shareholder, apportioned by ownership percentage.
func (d *Deriver) CalculateDerivedInvestmentIncome(assets []*domain.Asset, year domain.TaxYear) []*domain.Income {
	var incomes []*domain.Income

	for _, asset := range assets {
		if !asset.ActiveIn(year) {
			// A disposal/closure year still reports the income earned in it;
			// ActiveIn keeps the marker year visible.
			continue
		}

		gross, wht, incomeType := yearIncome(asset, year)
		if gross.IsZero() && wht.IsZero() {
			continue
		}

		for _, share := range shareholders(asset) {
			factor := share.percentage.Div(decimal.NewFromInt(100))
			incomes = append(incomes, &domain.Income{
				ID:       uuid.New(),
				OwnerID:  share.entityID,
				TaxYear:  year,
				Schedule: domain.ScheduleInvestment,
				Investment: &domain.InvestmentDetails{
					Type:        incomeType,
					GrossAmount: gross.Mul(factor),
					WHTDeducted: wht.Mul(factor),
					SourceLabel: asset.Name,
					AssetID:     asset.ID,
				},
			})
		}
	}

	return incomes
}

// yearIncome extracts the gross investment income and WHT an asset earned
// in the year, by category.
func yearIncome(asset *domain.Asset, year domain.TaxYear) (gross, wht decimal.Decimal, t domain.InvestmentType) {
	gross, wht = decimal.Zero, decimal.Zero

	switch {
	case asset.IsMonetary():
		t = domain.InvestmentTypeInterest
		if b, ok := asset.BalanceFor(year); ok {
			gross = b.InterestEarned
			wht = b.WHTDeducted
		}

	case asset.Category == domain.AssetCategoryShares:
		t = domain.InvestmentTypeDividend
		if sb, ok := asset.StockBalanceFor(year); ok {
			gross = sb.Dividends
			wht = sb.WHTDeducted
		}
	}

	return gross, wht, t
}

type shareholder struct {
	entityID   uuid.UUID
	percentage decimal.Decimal
}

// shareholders lists the entities the asset's income accrues to with their
// percentages: the sole owner at 100, or each joint owner at their share.
func shareholders(asset *domain.Asset) []shareholder {
	if len(asset.OwnershipShares) == 0 {
		return []shareholder{{entityID: asset.OwnerID, percentage: decimal.NewFromInt(100)}}
	}
	out := make([]shareholder, 0, len(asset.OwnershipShares))
	for _, s := range asset.OwnershipShares {
		out = append(out, shareholder{entityID: s.EntityID, percentage: s.Percentage})
	}
	return out
}
