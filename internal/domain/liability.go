package domain

import (
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LiabilityPayment records one year's principal and interest paid on a
// liability, together with the balance after the payment.
type LiabilityPayment struct {
	TaxYear             TaxYear
	PrincipalPaid       decimal.Decimal
	InterestPaid        decimal.Decimal
	BalanceAfterPayment decimal.Decimal
}

// Liability represents a loan or other debt in the domain layer.
// Either OwnerID is set (sole) or OwnershipShares is non-empty (joint).
type Liability struct {
	ID              uuid.UUID
	OwnerID         uuid.UUID
	OwnershipShares []OwnershipShare
	Lender          string
	OriginalAmount  decimal.Decimal
	CurrentBalance  decimal.Decimal
	DateAcquired    time.Time
	Payments        []LiabilityPayment
}

// SharePercentage returns the percentage of the liability attributed to the
// entity, mirroring Asset.SharePercentage.
func (l *Liability) SharePercentage(entityID uuid.UUID) decimal.Decimal {
	if len(l.OwnershipShares) == 0 {
		if l.OwnerID == entityID {
			return decimal.NewFromInt(100)
		}
		return decimal.Zero
	}
	for _, s := range l.OwnershipShares {
		if s.EntityID == entityID {
			return s.Percentage
		}
	}
	return decimal.Zero
}

// PaymentFor returns the payment recorded for the exact year.
func (l *Liability) PaymentFor(year TaxYear) (LiabilityPayment, bool) {
	for _, p := range l.Payments {
		if p.TaxYear == year {
			return p, true
		}
	}
	return LiabilityPayment{}, false
}

// NewInYear reports whether the liability was drawn down within the year.
func (l *Liability) NewInYear(year TaxYear) bool {
	return year.Contains(l.DateAcquired)
}

// ReplayPayments re-derives the running balance by applying payments in
// chronological order, returning the rebuilt payment list (with corrected
// BalanceAfterPayment figures) and the final balance.
// This is the authority after any payment edit or deletion: the stored
// CurrentBalance must equal OriginalAmount minus the sum of principal paid.
func (l *Liability) ReplayPayments() ([]LiabilityPayment, decimal.Decimal) {
	replayed := make([]LiabilityPayment, len(l.Payments))
	copy(replayed, l.Payments)

	sort.Slice(replayed, func(i, j int) bool {
		return replayed[i].TaxYear < replayed[j].TaxYear
	})

	balance := l.OriginalAmount
	for i := range replayed {
		balance = balance.Sub(replayed[i].PrincipalPaid)
		replayed[i].BalanceAfterPayment = balance
	}

	return replayed, balance
}

// BalanceAsOf returns the outstanding balance at the end of the given year,
// derived by replaying payments up to and including that year.
func (l *Liability) BalanceAsOf(year TaxYear) decimal.Decimal {
	replayed, _ := l.ReplayPayments()
	balance := l.OriginalAmount
	for _, p := range replayed {
		if p.TaxYear > year {
			break
		}
		balance = p.BalanceAfterPayment
	}
	return balance
}

// Validate ensures the liability adheres to domain rules
// Returns an error if validation fails
// CRITICAL: CurrentBalance must equal OriginalAmount minus total principal paid
func (l *Liability) Validate() error {
	if l.OriginalAmount.LessThanOrEqual(decimal.Zero) {
		return errors.New("liability original amount must be positive")
	}

	if err := validateOwnership(l.OwnerID, l.OwnershipShares); err != nil {
		return err
	}

	seen := make(map[TaxYear]bool)
	for _, p := range l.Payments {
		if seen[p.TaxYear] {
			return ErrDuplicateYearRecord
		}
		seen[p.TaxYear] = true
		if p.PrincipalPaid.IsNegative() || p.InterestPaid.IsNegative() {
			return errors.New("liability payment amounts cannot be negative")
		}
	}

	_, derived := l.ReplayPayments()
	if !l.CurrentBalance.Equal(derived) {
		return errors.New("liability current balance does not match replayed payments")
	}

	return nil
}
