package checklist

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taxfolio/backend/internal/domain"
)

func TestGenerateTasks(t *testing.T) {
	owner := uuid.New()

	t.Run("monetary asset without a balance", func(t *testing.T) {
		assets := []*domain.Asset{
			{
				ID:       uuid.New(),
				OwnerID:  owner,
				Name:     "NSB savings",
				Category: domain.AssetCategoryBankDeposit,
				Balances: []domain.YearlyBalance{
					{TaxYear: 2022, ClosingBalance: decimal.NewFromInt(100000)},
				},
			},
		}

		tasks := GenerateTasks(assets, nil, 2023)

		require.Len(t, tasks, 1)
		assert.Equal(t, domain.TaskRecordYearlyBalance, tasks[0].Kind)
		assert.Equal(t, assets[0].ID, tasks[0].AssetID)
		assert.Equal(t, "NSB savings", tasks[0].Subject)
		assert.Contains(t, tasks[0].Detail, "2023/24")
	})

	t.Run("recorded balance produces no task", func(t *testing.T) {
		assets := []*domain.Asset{
			{
				ID:       uuid.New(),
				OwnerID:  owner,
				Name:     "NSB savings",
				Category: domain.AssetCategoryBankDeposit,
				Balances: []domain.YearlyBalance{
					{TaxYear: 2023, ClosingBalance: decimal.NewFromInt(100000)},
				},
			},
		}

		tasks := GenerateTasks(assets, nil, 2023)

		assert.Empty(t, tasks)
	})

	t.Run("share portfolio without a stock balance", func(t *testing.T) {
		assets := []*domain.Asset{
			{
				ID:       uuid.New(),
				OwnerID:  owner,
				Name:     "CSE portfolio",
				Category: domain.AssetCategoryShares,
			},
		}

		tasks := GenerateTasks(assets, nil, 2023)

		require.Len(t, tasks, 1)
		assert.Equal(t, domain.TaskRecordStockBalance, tasks[0].Kind)
	})

	t.Run("property without valuation evidence", func(t *testing.T) {
		assets := []*domain.Asset{
			{
				ID:       uuid.New(),
				OwnerID:  owner,
				Name:     "house in Galle",
				Category: domain.AssetCategoryImmovableProperty,
			},
		}

		tasks := GenerateTasks(assets, nil, 2023)

		require.Len(t, tasks, 1)
		assert.Equal(t, domain.TaskRecordValuation, tasks[0].Kind)
	})

	t.Run("revalued property expense counts as evidence", func(t *testing.T) {
		mv := decimal.NewFromInt(9000000)
		assets := []*domain.Asset{
			{
				ID:       uuid.New(),
				OwnerID:  owner,
				Name:     "house in Galle",
				Category: domain.AssetCategoryImmovableProperty,
				PropertyExpense: []domain.PropertyExpense{
					{TaxYear: 2021, Amount: decimal.NewFromInt(200000), MarketValue: &mv},
				},
			},
		}

		tasks := GenerateTasks(assets, nil, 2023)

		assert.Empty(t, tasks)
	})

	t.Run("jewellery needs nothing", func(t *testing.T) {
		assets := []*domain.Asset{
			{
				ID:       uuid.New(),
				OwnerID:  owner,
				Name:     "wedding jewellery",
				Category: domain.AssetCategoryJewellery,
				Metal:    domain.MetalTypeGold,
			},
		}

		tasks := GenerateTasks(assets, nil, 2023)

		assert.Empty(t, tasks)
	})

	t.Run("disposed asset drops out", func(t *testing.T) {
		assets := []*domain.Asset{
			{
				ID:       uuid.New(),
				OwnerID:  owner,
				Name:     "closed account",
				Category: domain.AssetCategoryBankDeposit,
				Closed: &domain.Lifecycle{
					Date: time.Date(2023, time.May, 1, 0, 0, 0, 0, time.UTC),
				},
			},
		}

		assert.Empty(t, GenerateTasks(assets, nil, 2023))
		assert.Empty(t, GenerateTasks(assets, nil, 2024))
	})
}

func TestGenerateTasksLiabilities(t *testing.T) {
	loan := func() *domain.Liability {
		return &domain.Liability{
			ID:             uuid.New(),
			OwnerID:        uuid.New(),
			Lender:         "BOC housing loan",
			OriginalAmount: decimal.NewFromInt(5000000),
			CurrentBalance: decimal.NewFromInt(5000000),
			DateAcquired:   time.Date(2021, time.July, 1, 0, 0, 0, 0, time.UTC),
		}
	}

	t.Run("outstanding loan without a payment record", func(t *testing.T) {
		l := loan()

		tasks := GenerateTasks(nil, []*domain.Liability{l}, 2023)

		require.Len(t, tasks, 1)
		assert.Equal(t, domain.TaskRecordLoanPayment, tasks[0].Kind)
		assert.Equal(t, l.ID, tasks[0].LiabilityID)
		assert.Equal(t, "BOC housing loan", tasks[0].Subject)
	})

	t.Run("a zero payment is still a record", func(t *testing.T) {
		l := loan()
		l.Payments = []domain.LiabilityPayment{
			{TaxYear: 2023, BalanceAfterPayment: decimal.NewFromInt(5000000)},
		}

		tasks := GenerateTasks(nil, []*domain.Liability{l}, 2023)

		assert.Empty(t, tasks)
	})

	t.Run("loans not yet drawn down are skipped", func(t *testing.T) {
		l := loan()
		l.DateAcquired = time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)

		tasks := GenerateTasks(nil, []*domain.Liability{l}, 2023)

		assert.Empty(t, tasks)
	})

	t.Run("settled loans are skipped", func(t *testing.T) {
		l := loan()
		l.Payments = []domain.LiabilityPayment{
			{TaxYear: 2022, PrincipalPaid: decimal.NewFromInt(5000000)},
		}
		l.CurrentBalance = decimal.Zero

		tasks := GenerateTasks(nil, []*domain.Liability{l}, 2023)

		assert.Empty(t, tasks)
	})
}
