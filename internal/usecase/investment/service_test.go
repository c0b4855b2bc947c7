package investment

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taxfolio/backend/internal/domain"
)

func TestCalculateDerivedInvestmentIncome(t *testing.T) {
	d := NewDeriver()
	owner := uuid.New()

	t.Run("interest from a bank deposit", func(t *testing.T) {
		// Setup
		assets := []*domain.Asset{
			{
				ID:       uuid.New(),
				OwnerID:  owner,
				Name:     "NSB fixed deposit",
				Category: domain.AssetCategoryBankDeposit,
				Balances: []domain.YearlyBalance{
					{TaxYear: 2023, ClosingBalance: decimal.NewFromInt(1000000), InterestEarned: decimal.NewFromInt(120000), WHTDeducted: decimal.NewFromInt(6000)},
					{TaxYear: 2022, ClosingBalance: decimal.NewFromInt(900000), InterestEarned: decimal.NewFromInt(90000)},
				},
			},
		}

		// Execute
		incomes := d.CalculateDerivedInvestmentIncome(assets, 2023)

		// Assert
		require.Len(t, incomes, 1)
		inc := incomes[0]
		assert.Equal(t, owner, inc.OwnerID)
		assert.Equal(t, domain.TaxYear(2023), inc.TaxYear)
		assert.Equal(t, domain.ScheduleInvestment, inc.Schedule)
		require.NotNil(t, inc.Investment)
		assert.Equal(t, domain.InvestmentTypeInterest, inc.Investment.Type)
		assert.True(t, decimal.NewFromInt(120000).Equal(inc.Investment.GrossAmount))
		assert.True(t, decimal.NewFromInt(6000).Equal(inc.Investment.WHTDeducted))
		assert.Equal(t, "NSB fixed deposit", inc.Investment.SourceLabel)
	})

	t.Run("dividends from a share portfolio", func(t *testing.T) {
		assets := []*domain.Asset{
			{
				ID:       uuid.New(),
				OwnerID:  owner,
				Name:     "CSE portfolio",
				Category: domain.AssetCategoryShares,
				StockBalances: []domain.StockBalance{
					{TaxYear: 2023, PortfolioValue: decimal.NewFromInt(500000), Dividends: decimal.NewFromInt(30000), WHTDeducted: decimal.NewFromInt(4500)},
				},
			},
		}

		incomes := d.CalculateDerivedInvestmentIncome(assets, 2023)

		require.Len(t, incomes, 1)
		assert.Equal(t, domain.InvestmentTypeDividend, incomes[0].Investment.Type)
		assert.True(t, decimal.NewFromInt(30000).Equal(incomes[0].Investment.GrossAmount))
		assert.True(t, decimal.NewFromInt(4500).Equal(incomes[0].Investment.WHTDeducted))
	})

	t.Run("joint asset yields one record per shareholder", func(t *testing.T) {
		spouse := uuid.New()
		assets := []*domain.Asset{
			{
				ID:      uuid.New(),
				Name:    "joint savings",
				OwnershipShares: []domain.OwnershipShare{
					{EntityID: owner, Percentage: decimal.NewFromInt(60)},
					{EntityID: spouse, Percentage: decimal.NewFromInt(40)},
				},
				Category: domain.AssetCategoryBankDeposit,
				Balances: []domain.YearlyBalance{
					{TaxYear: 2023, InterestEarned: decimal.NewFromInt(100000), WHTDeducted: decimal.NewFromInt(5000)},
				},
			},
		}

		incomes := d.CalculateDerivedInvestmentIncome(assets, 2023)

		require.Len(t, incomes, 2)
		byOwner := make(map[uuid.UUID]*domain.Income, 2)
		for _, inc := range incomes {
			byOwner[inc.OwnerID] = inc
		}
		require.Contains(t, byOwner, owner)
		require.Contains(t, byOwner, spouse)
		assert.True(t, decimal.NewFromInt(60000).Equal(byOwner[owner].Investment.GrossAmount))
		assert.True(t, decimal.NewFromInt(40000).Equal(byOwner[spouse].Investment.GrossAmount))
		assert.True(t, decimal.NewFromInt(3000).Equal(byOwner[owner].Investment.WHTDeducted))
		assert.True(t, decimal.NewFromInt(2000).Equal(byOwner[spouse].Investment.WHTDeducted))
	})

	t.Run("no record without a balance for the year", func(t *testing.T) {
		assets := []*domain.Asset{
			{
				ID:       uuid.New(),
				OwnerID:  owner,
				Category: domain.AssetCategoryBankDeposit,
				Balances: []domain.YearlyBalance{
					{TaxYear: 2022, InterestEarned: decimal.NewFromInt(90000)},
				},
			},
		}

		incomes := d.CalculateDerivedInvestmentIncome(assets, 2023)

		assert.Empty(t, incomes)
	})

	t.Run("zero interest yields no record", func(t *testing.T) {
		assets := []*domain.Asset{
			{
				ID:       uuid.New(),
				OwnerID:  owner,
				Category: domain.AssetCategoryCash,
				Balances: []domain.YearlyBalance{
					{TaxYear: 2023, ClosingBalance: decimal.NewFromInt(50000)},
				},
			},
		}

		incomes := d.CalculateDerivedInvestmentIncome(assets, 2023)

		assert.Empty(t, incomes)
	})

	t.Run("closed account reports the closure year but not later ones", func(t *testing.T) {
		asset := &domain.Asset{
			ID:       uuid.New(),
			OwnerID:  owner,
			Category: domain.AssetCategoryBankDeposit,
			Balances: []domain.YearlyBalance{
				{TaxYear: 2023, InterestEarned: decimal.NewFromInt(10000)},
				{TaxYear: 2024, InterestEarned: decimal.NewFromInt(1)},
			},
			Closed: &domain.Lifecycle{Date: time.Date(2023, time.August, 1, 0, 0, 0, 0, time.UTC)},
		}

		incomes := d.CalculateDerivedInvestmentIncome([]*domain.Asset{asset}, 2023)
		assert.Len(t, incomes, 1)

		incomes = d.CalculateDerivedInvestmentIncome([]*domain.Asset{asset}, 2024)
		assert.Empty(t, incomes)
	})
}
