package liability

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/taxfolio/backend/internal/domain"
	"github.com/taxfolio/backend/internal/errs"
)

// RecordPaymentInput represents the input for recording a liability payment
type RecordPaymentInput struct {
	LiabilityID   uuid.UUID
	TaxYear       domain.TaxYear
	PrincipalPaid decimal.Decimal
	InterestPaid  decimal.Decimal
}

// LiabilityService handles liability payment operations, keeping the
// balance invariant: CurrentBalance always equals OriginalAmount minus the
// principal paid across all recorded payments.
type LiabilityService struct {
	LiabilityRepo domain.LiabilityRepository
}

// NewLiabilityService creates a new LiabilityService instance
func NewLiabilityService(liabilityRepo domain.LiabilityRepository) *LiabilityService {
	return &LiabilityService{
		LiabilityRepo: liabilityRepo,
	}
}

// RecordPayment appends a payment for a year of assessment
// Logic:
//  1. Fetch the liability
//  2. Reject a duplicate year or principal exceeding the outstanding balance
//  3. Append and replay payments chronologically to re-derive balances
//  4. Validate and save
func (s *LiabilityService) RecordPayment(ctx context.Context, input RecordPaymentInput) (*domain.Liability, error) {
	if input.PrincipalPaid.IsNegative() || input.InterestPaid.IsNegative() {
		return nil, errors.New("payment amounts cannot be negative")
	}
	if input.PrincipalPaid.IsZero() && input.InterestPaid.IsZero() {
		return nil, errors.New("payment must have a principal or interest amount")
	}

	l, err := s.LiabilityRepo.GetByID(ctx, input.LiabilityID)
	if err != nil {
		return nil, err
	}

	if _, exists := l.PaymentFor(input.TaxYear); exists {
		return nil, errs.ErrConflict
	}

	totalPrincipal := input.PrincipalPaid
	for _, p := range l.Payments {
		totalPrincipal = totalPrincipal.Add(p.PrincipalPaid)
	}
	if totalPrincipal.GreaterThan(l.OriginalAmount) {
		return nil, errors.New("principal paid would exceed the original amount")
	}

	l.Payments = append(l.Payments, domain.LiabilityPayment{
		TaxYear:       input.TaxYear,
		PrincipalPaid: input.PrincipalPaid,
		InterestPaid:  input.InterestPaid,
	})
	s.replay(l)

	if err := l.Validate(); err != nil {
		return nil, err
	}

	if err := s.LiabilityRepo.Update(ctx, l); err != nil {
		return nil, err
	}

	return l, nil
}

// DeletePayment removes the payment recorded for a year and re-derives the
// balance by replaying the remaining payments in chronological order.
func (s *LiabilityService) DeletePayment(ctx context.Context, liabilityID uuid.UUID, year domain.TaxYear) (*domain.Liability, error) {
	l, err := s.LiabilityRepo.GetByID(ctx, liabilityID)
	if err != nil {
		return nil, err
	}

	found := false
	remaining := l.Payments[:0]
	for _, p := range l.Payments {
		if p.TaxYear == year {
			found = true
			continue
		}
		remaining = append(remaining, p)
	}
	if !found {
		return nil, errs.ErrNotFound
	}
	l.Payments = remaining
	s.replay(l)

	if err := l.Validate(); err != nil {
		return nil, err
	}

	if err := s.LiabilityRepo.Update(ctx, l); err != nil {
		return nil, err
	}

	return l, nil
}

// replay rebuilds the stored payment list and current balance from the
// chronological replay.
func (s *LiabilityService) replay(l *domain.Liability) {
	replayed, balance := l.ReplayPayments()
	l.Payments = replayed
	l.CurrentBalance = balance
}
