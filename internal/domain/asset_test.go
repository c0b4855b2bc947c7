package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validAsset() *Asset {
	return &Asset{
		ID:              uuid.New(),
		OwnerID:         uuid.New(),
		Name:            "NSB savings account",
		Category:        AssetCategoryBankDeposit,
		AcquisitionDate: time.Date(2019, time.June, 1, 0, 0, 0, 0, time.UTC),
		Cost:            decimal.NewFromInt(100000),
	}
}

func TestAssetValidate(t *testing.T) {
	ownerA := uuid.New()
	ownerB := uuid.New()

	tests := []struct {
		name    string
		mutate  func(a *Asset)
		wantErr error
		errMsg  string
	}{
		{
			name:   "valid sole owned asset",
			mutate: func(a *Asset) {},
		},
		{
			name: "valid joint asset",
			mutate: func(a *Asset) {
				a.OwnerID = uuid.Nil
				a.OwnershipShares = []OwnershipShare{
					{EntityID: ownerA, Percentage: decimal.NewFromInt(60)},
					{EntityID: ownerB, Percentage: decimal.NewFromInt(40)},
				}
			},
		},
		{
			name: "empty name",
			mutate: func(a *Asset) {
				a.Name = ""
			},
			errMsg: "asset name cannot be empty",
		},
		{
			name: "unknown category",
			mutate: func(a *Asset) {
				a.Category = "CRYPTO"
			},
			errMsg: "asset category is not a recognised cage category",
		},
		{
			name: "no owner and no shares",
			mutate: func(a *Asset) {
				a.OwnerID = uuid.Nil
			},
			errMsg: "must have an owner or ownership shares",
		},
		{
			name: "both sole owner and shares",
			mutate: func(a *Asset) {
				a.OwnershipShares = []OwnershipShare{
					{EntityID: ownerA, Percentage: decimal.NewFromInt(100)},
				}
			},
			errMsg: "cannot have both a sole owner and ownership shares",
		},
		{
			name: "shares do not sum to 100",
			mutate: func(a *Asset) {
				a.OwnerID = uuid.Nil
				a.OwnershipShares = []OwnershipShare{
					{EntityID: ownerA, Percentage: decimal.NewFromInt(60)},
					{EntityID: ownerB, Percentage: decimal.NewFromInt(30)},
				}
			},
			wantErr: ErrInconsistentOwnershipShares,
		},
		{
			name: "duplicate entity in shares",
			mutate: func(a *Asset) {
				a.OwnerID = uuid.Nil
				a.OwnershipShares = []OwnershipShare{
					{EntityID: ownerA, Percentage: decimal.NewFromInt(50)},
					{EntityID: ownerA, Percentage: decimal.NewFromInt(50)},
				}
			},
			errMsg: "duplicate entity in ownership shares",
		},
		{
			name: "non positive share percentage",
			mutate: func(a *Asset) {
				a.OwnerID = uuid.Nil
				a.OwnershipShares = []OwnershipShare{
					{EntityID: ownerA, Percentage: decimal.NewFromInt(100)},
					{EntityID: ownerB, Percentage: decimal.Zero},
				}
			},
			errMsg: "ownership share percentage must be positive",
		},
		{
			name: "duplicate yearly balance",
			mutate: func(a *Asset) {
				a.Balances = []YearlyBalance{
					{TaxYear: 2023, ClosingBalance: decimal.NewFromInt(500000)},
					{TaxYear: 2023, ClosingBalance: decimal.NewFromInt(600000)},
				}
			},
			wantErr: ErrDuplicateYearRecord,
		},
		{
			name: "duplicate stock balance",
			mutate: func(a *Asset) {
				a.Category = AssetCategoryShares
				a.StockBalances = []StockBalance{
					{TaxYear: 2022},
					{TaxYear: 2022},
				}
			},
			wantErr: ErrDuplicateYearRecord,
		},
		{
			name: "duplicate valuation",
			mutate: func(a *Asset) {
				a.Category = AssetCategoryImmovableProperty
				a.Valuations = []Valuation{
					{TaxYear: 2021, Value: decimal.NewFromInt(9000000)},
					{TaxYear: 2021, Value: decimal.NewFromInt(9500000)},
				}
			},
			wantErr: ErrDuplicateYearRecord,
		},
		{
			name: "jewellery without metal type",
			mutate: func(a *Asset) {
				a.Category = AssetCategoryJewellery
			},
			errMsg: "jewellery asset must carry a metal type",
		},
		{
			name: "disposed and closed at once",
			mutate: func(a *Asset) {
				a.Disposed = &Lifecycle{Date: time.Date(2023, time.May, 1, 0, 0, 0, 0, time.UTC)}
				a.Closed = &Lifecycle{Date: time.Date(2023, time.May, 1, 0, 0, 0, 0, time.UTC)}
			},
			errMsg: "asset cannot be both disposed and closed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := validAsset()
			tt.mutate(a)

			err := a.Validate()

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestAssetSharePercentage(t *testing.T) {
	owner := uuid.New()
	spouse := uuid.New()
	stranger := uuid.New()

	sole := validAsset()
	sole.OwnerID = owner
	assert.True(t, decimal.NewFromInt(100).Equal(sole.SharePercentage(owner)))
	assert.True(t, sole.SharePercentage(stranger).IsZero())

	joint := validAsset()
	joint.OwnerID = uuid.Nil
	joint.OwnershipShares = []OwnershipShare{
		{EntityID: owner, Percentage: decimal.NewFromInt(60)},
		{EntityID: spouse, Percentage: decimal.NewFromInt(40)},
	}
	assert.True(t, decimal.NewFromInt(60).Equal(joint.SharePercentage(owner)))
	assert.True(t, decimal.NewFromInt(40).Equal(joint.SharePercentage(spouse)))
	assert.True(t, joint.SharePercentage(stranger).IsZero())
}

func TestAssetLifecycle(t *testing.T) {
	a := validAsset()
	assert.True(t, a.ActiveIn(2023))
	_, disposed := a.DisposedIn(2023)
	assert.False(t, disposed)

	a.Disposed = &Lifecycle{
		Date:     time.Date(2023, time.October, 5, 0, 0, 0, 0, time.UTC),
		Proceeds: decimal.NewFromInt(750000),
	}

	// Visible through the year of sale, gone afterwards.
	assert.True(t, a.ActiveIn(2022))
	assert.True(t, a.ActiveIn(2023))
	assert.False(t, a.ActiveIn(2024))

	proceeds, ok := a.DisposedIn(2023)
	require.True(t, ok)
	assert.True(t, decimal.NewFromInt(750000).Equal(proceeds))

	_, ok = a.DisposedIn(2022)
	assert.False(t, ok)
}

func TestAssetAcquiredIn(t *testing.T) {
	a := validAsset()
	a.AcquisitionDate = time.Date(2024, time.February, 10, 0, 0, 0, 0, time.UTC)

	assert.True(t, a.AcquiredIn(2023))
	assert.False(t, a.AcquiredIn(2024))
}

func TestAssetBalanceLookups(t *testing.T) {
	a := validAsset()
	a.Balances = []YearlyBalance{
		{TaxYear: 2021, ClosingBalance: decimal.NewFromInt(100000)},
		{TaxYear: 2023, ClosingBalance: decimal.NewFromInt(300000)},
	}

	exact, ok := a.BalanceFor(2023)
	require.True(t, ok)
	assert.True(t, decimal.NewFromInt(300000).Equal(exact.ClosingBalance))

	_, ok = a.BalanceFor(2022)
	assert.False(t, ok)

	// Falls back to the most recent earlier record.
	latest, ok := a.LatestBalanceUpTo(2022)
	require.True(t, ok)
	assert.Equal(t, TaxYear(2021), latest.TaxYear)

	latest, ok = a.LatestBalanceUpTo(2024)
	require.True(t, ok)
	assert.Equal(t, TaxYear(2023), latest.TaxYear)

	_, ok = a.LatestBalanceUpTo(2020)
	assert.False(t, ok)
}

func TestAssetIsMonetary(t *testing.T) {
	tests := []struct {
		category AssetCategory
		want     bool
	}{
		{AssetCategoryBankDeposit, true},
		{AssetCategoryCash, true},
		{AssetCategoryLoansGiven, true},
		{AssetCategoryShares, false},
		{AssetCategoryImmovableProperty, false},
		{AssetCategoryJewellery, false},
	}

	for _, tt := range tests {
		a := &Asset{Category: tt.category}
		assert.Equal(t, tt.want, a.IsMonetary(), string(tt.category))
	}
}
