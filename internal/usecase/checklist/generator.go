// Package checklist derives the evidence still missing for a year of
// assessment. Tax and audit-risk computations degrade silently when yearly
// records are absent, so the checklist is how gaps get surfaced instead.
package checklist

import (
	"github.com/taxfolio/backend/internal/domain"
)

// GenerateTasks walks the family's assets and liabilities and returns one
// task per missing yearly record.
//
// Logic:
//   - Monetary assets (bank, cash, loans given) need a closing balance per year
//   - Share portfolios need a stock balance per year
//   - Properties and vehicles with no valuation for the year are flagged,
//     unless a revalued property expense already covers it
//   - Liabilities with an outstanding balance need a payment record per year
//     (a zero payment is a valid record; no record at all is a gap)
//
// Disposed and closed holdings drop out of the year they are no longer
// active in.
func GenerateTasks(assets []*domain.Asset, liabilities []*domain.Liability, year domain.TaxYear) []domain.RecordTask {
	tasks := make([]domain.RecordTask, 0)

	for _, asset := range assets {
		if !asset.ActiveIn(year) {
			continue
		}
		if _, sold := asset.DisposedIn(year); sold {
			continue
		}

		switch {
		case asset.IsMonetary():
			if _, ok := asset.BalanceFor(year); !ok {
				tasks = append(tasks, domain.RecordTask{
					Kind:    domain.TaskRecordYearlyBalance,
					TaxYear: year,
					AssetID: asset.ID,
					Subject: asset.Name,
					Detail:  "closing balance for " + year.String() + " not recorded",
				})
			}
		case asset.Category == domain.AssetCategoryShares:
			if _, ok := asset.StockBalanceFor(year); !ok {
				tasks = append(tasks, domain.RecordTask{
					Kind:    domain.TaskRecordStockBalance,
					TaxYear: year,
					AssetID: asset.ID,
					Subject: asset.Name,
					Detail:  "portfolio balance for " + year.String() + " not recorded",
				})
			}
		case asset.Category == domain.AssetCategoryImmovableProperty,
			asset.Category == domain.AssetCategoryBusinessProperty,
			asset.Category == domain.AssetCategoryVehicle:
			if !hasValuationEvidence(asset, year) {
				tasks = append(tasks, domain.RecordTask{
					Kind:    domain.TaskRecordValuation,
					TaxYear: year,
					AssetID: asset.ID,
					Subject: asset.Name,
					Detail:  "no valuation for " + year.String() + "; static cost will be used",
				})
			}
		}
	}

	for _, liability := range liabilities {
		if liability.DateAcquired.After(year.End()) {
			continue
		}
		if liability.BalanceAsOf(year).IsZero() && !liability.NewInYear(year) {
			continue
		}
		if _, ok := liability.PaymentFor(year); !ok {
			tasks = append(tasks, domain.RecordTask{
				Kind:        domain.TaskRecordLoanPayment,
				TaxYear:     year,
				LiabilityID: liability.ID,
				Subject:     liability.Lender,
				Detail:      "no payment record for " + year.String(),
			})
		}
	}

	return tasks
}

// hasValuationEvidence reports whether any valuation source other than the
// static fallback covers the year.
func hasValuationEvidence(asset *domain.Asset, year domain.TaxYear) bool {
	if _, ok := asset.ValuationFor(year); ok {
		return true
	}
	for _, e := range asset.PropertyExpense {
		if e.TaxYear <= year && e.MarketValue != nil {
			return true
		}
	}
	return false
}
