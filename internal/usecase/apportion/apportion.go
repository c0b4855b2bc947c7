package apportion

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/taxfolio/backend/internal/domain"
)

// Apportion splits a total amount across joint ownership shares.
// Returns a map of entity ID to apportioned amount.
// Logic:
//  1. Each share receives Percentage% of the total
//  2. Any rounding residue is assigned to the largest shareholder
//
// Safety: Ensures the apportioned amounts sum to the total exactly, so a
// joint asset contributes its value to the family aggregate exactly once
// (no rupee lost, none double-counted).
func Apportion(total decimal.Decimal, shares []domain.OwnershipShare) (map[uuid.UUID]decimal.Decimal, error) {
	if len(shares) == 0 {
		return nil, errors.New("shares list cannot be empty")
	}

	percentSum := decimal.Zero
	for _, s := range shares {
		percentSum = percentSum.Add(s.Percentage)
	}
	if !percentSum.Equal(decimal.NewFromInt(100)) {
		return nil, domain.ErrInconsistentOwnershipShares
	}

	allocation := make(map[uuid.UUID]decimal.Decimal, len(shares))
	hundred := decimal.NewFromInt(100)

	// Step 1: Percentage allocations
	allocated := decimal.Zero
	largest := shares[0]
	for _, s := range shares {
		amount := total.Mul(s.Percentage).Div(hundred)
		allocation[s.EntityID] = amount
		allocated = allocated.Add(amount)
		if s.Percentage.GreaterThan(largest.Percentage) {
			largest = s
		}
	}

	// Step 2: Assign the rounding residue to the largest shareholder
	residue := total.Sub(allocated)
	if !residue.IsZero() {
		allocation[largest.EntityID] = allocation[largest.EntityID].Add(residue)
	}

	// Safety check: the apportionment must reproduce the total exactly
	check := decimal.Zero
	for _, amount := range allocation {
		check = check.Add(amount)
	}
	if !check.Equal(total) {
		return nil, errors.New("apportioned amounts do not sum to total")
	}

	return allocation, nil
}

// Share returns one entity's portion of a total for an asset or liability,
// treating a sole-owner record as a 100% share.
func Share(total decimal.Decimal, percentage decimal.Decimal) decimal.Decimal {
	return total.Mul(percentage).Div(decimal.NewFromInt(100))
}
