package apportion

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taxfolio/backend/internal/domain"
)

func TestApportion(t *testing.T) {
	a := uuid.New()
	b := uuid.New()
	c := uuid.New()

	t.Run("even split", func(t *testing.T) {
		shares := []domain.OwnershipShare{
			{EntityID: a, Percentage: decimal.NewFromInt(60)},
			{EntityID: b, Percentage: decimal.NewFromInt(40)},
		}

		allocation, err := Apportion(decimal.NewFromInt(1000000), shares)

		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(600000).Equal(allocation[a]))
		assert.True(t, decimal.NewFromInt(400000).Equal(allocation[b]))
	})

	t.Run("residue goes to the largest shareholder", func(t *testing.T) {
		shares := []domain.OwnershipShare{
			{EntityID: a, Percentage: decimal.NewFromFloat(33.33)},
			{EntityID: b, Percentage: decimal.NewFromFloat(33.33)},
			{EntityID: c, Percentage: decimal.NewFromFloat(33.34)},
		}
		total := decimal.NewFromInt(100)

		allocation, err := Apportion(total, shares)

		require.NoError(t, err)
		sum := decimal.Zero
		for _, amount := range allocation {
			sum = sum.Add(amount)
		}
		assert.True(t, total.Equal(sum), "allocation must reproduce the total exactly")
		assert.True(t, allocation[c].GreaterThanOrEqual(allocation[a]))
	})

	t.Run("percentages must sum to 100", func(t *testing.T) {
		shares := []domain.OwnershipShare{
			{EntityID: a, Percentage: decimal.NewFromInt(50)},
			{EntityID: b, Percentage: decimal.NewFromInt(40)},
		}

		_, err := Apportion(decimal.NewFromInt(1000), shares)

		assert.ErrorIs(t, err, domain.ErrInconsistentOwnershipShares)
	})

	t.Run("empty shares rejected", func(t *testing.T) {
		_, err := Apportion(decimal.NewFromInt(1000), nil)
		assert.Error(t, err)
	})
}

func TestShare(t *testing.T) {
	got := Share(decimal.NewFromInt(200000), decimal.NewFromInt(25))
	assert.True(t, decimal.NewFromInt(50000).Equal(got))

	got = Share(decimal.NewFromInt(200000), decimal.NewFromInt(100))
	assert.True(t, decimal.NewFromInt(200000).Equal(got))
}
