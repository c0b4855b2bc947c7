package domain

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Schedule represents the income schedule on the return of income
type Schedule int

const (
	ScheduleEmployment Schedule = 1
	ScheduleBusiness   Schedule = 2
	ScheduleInvestment Schedule = 3
)

// Income represents one income record for an entity and year of assessment.
// Exactly one of the detail structs must be set, matching Schedule.
// Schedule 3 (investment) records are derived from asset balance history and
// are never hand-entered or persisted (see usecase/investment).
type Income struct {
	ID         uuid.UUID
	OwnerID    uuid.UUID
	TaxYear    TaxYear
	Schedule   Schedule
	Employment *EmploymentDetails
	Business   *BusinessDetails
	Investment *InvestmentDetails
}

// EmploymentDetails holds schedule 1 specifics
type EmploymentDetails struct {
	Employer     string
	GrossAmount  decimal.Decimal
	APITWithheld decimal.Decimal // Advance Personal Income Tax withheld by employer
}

// BusinessDetails holds schedule 2 specifics
type BusinessDetails struct {
	BusinessName string
	Turnover     decimal.Decimal
	Expenses     decimal.Decimal
	NetProfit    decimal.Decimal
}

// InvestmentType classifies derived schedule 3 income
type InvestmentType string

const (
	InvestmentTypeInterest InvestmentType = "INTEREST"
	InvestmentTypeDividend InvestmentType = "DIVIDEND"
)

// InvestmentDetails holds schedule 3 specifics
type InvestmentDetails struct {
	Type        InvestmentType
	GrossAmount decimal.Decimal
	WHTDeducted decimal.Decimal // Withholding Tax deducted at source
	SourceLabel string          // e.g. bank and account number, company name
	AssetID     uuid.UUID       // asset the income was derived from
}

// GrossAmount returns the assessable gross figure for the record,
// regardless of schedule.
func (i *Income) GrossAmount() decimal.Decimal {
	switch i.Schedule {
	case ScheduleEmployment:
		if i.Employment != nil {
			return i.Employment.GrossAmount
		}
	case ScheduleBusiness:
		if i.Business != nil {
			return i.Business.NetProfit
		}
	case ScheduleInvestment:
		if i.Investment != nil {
			return i.Investment.GrossAmount
		}
	}
	return decimal.Zero
}

// Validate ensures the income record adheres to domain rules
// Returns an error if validation fails
func (i *Income) Validate() error {
	if i.OwnerID == uuid.Nil {
		return errors.New("income must have an owner")
	}

	switch i.Schedule {
	case ScheduleEmployment:
		if i.Employment == nil || i.Business != nil || i.Investment != nil {
			return errors.New("schedule 1 income must carry employment details only")
		}
		if i.Employment.GrossAmount.IsNegative() {
			return errors.New("employment gross amount cannot be negative")
		}
		if i.Employment.APITWithheld.IsNegative() {
			return errors.New("APIT withheld cannot be negative")
		}
	case ScheduleBusiness:
		if i.Business == nil || i.Employment != nil || i.Investment != nil {
			return errors.New("schedule 2 income must carry business details only")
		}
	case ScheduleInvestment:
		if i.Investment == nil || i.Employment != nil || i.Business != nil {
			return errors.New("schedule 3 income must carry investment details only")
		}
		if i.Investment.GrossAmount.IsNegative() {
			return errors.New("investment gross amount cannot be negative")
		}
	default:
		return errors.New("income schedule must be 1, 2 or 3")
	}

	return nil
}
