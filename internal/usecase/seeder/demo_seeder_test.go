package seeder

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taxfolio/backend/internal/adapter/repository/memory"
)

func TestDemoSeederSeed(t *testing.T) {
	// Setup
	ctx := context.Background()
	store := memory.New()
	s := NewDemoSeeder(store.Entities(), store.Assets(), store.Liabilities(), store.Incomes(), store.Certificates())

	// Execute
	err := s.Seed(ctx)

	// Assert
	require.NoError(t, err)

	primary, err := store.Entities().GetByID(ctx, DEMO_ENTITY_PRIMARY)
	require.NoError(t, err)
	assert.Equal(t, "Demo Taxpayer", primary.Name)

	assets, err := store.Assets().ListByOwner(ctx, DEMO_ENTITY_PRIMARY)
	require.NoError(t, err)
	assert.Len(t, assets, 2) // joint house + sole bank account

	loan, err := store.Liabilities().GetByID(ctx, DEMO_LIABILITY_LOAN)
	require.NoError(t, err)
	assert.Equal(t, "8800000", loan.CurrentBalance.String())

	incomes, err := store.Incomes().ListByOwnerYear(ctx, DEMO_ENTITY_PRIMARY, 2023)
	require.NoError(t, err)
	assert.Len(t, incomes, 1)
}

func TestDemoSeederSeedIdempotent(t *testing.T) {
	// Setup
	ctx := context.Background()
	store := memory.New()
	s := NewDemoSeeder(store.Entities(), store.Assets(), store.Liabilities(), store.Incomes(), store.Certificates())
	require.NoError(t, s.Seed(ctx))

	// Execute: a second run must not duplicate anything
	err := s.Seed(ctx)

	// Assert
	require.NoError(t, err)
	entities, err := store.Entities().List(ctx)
	require.NoError(t, err)
	assert.Len(t, entities, 2)
}
