package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/taxfolio/backend/internal/domain"
	"github.com/taxfolio/backend/internal/errs"
)

// incomeRepository implements domain.IncomeRepository.
// Only schedule 1 and 2 rows exist in the table; schedule 3 is derived.
type incomeRepository struct {
	db *DB
}

// NewIncomeRepository creates a new income repository
func NewIncomeRepository(db *DB) domain.IncomeRepository {
	return &incomeRepository{db: db}
}

const incomeColumns = `
	id, owner_id, tax_year, schedule,
	employer, employment_gross, apit_withheld,
	business_name, turnover, expenses, net_profit
`

// GetByID retrieves an income record by its ID
func (r *incomeRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Income, error) {
	query := `SELECT ` + incomeColumns + ` FROM incomes WHERE id = $1`

	income, err := scanIncome(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("income %s: %w", id, errs.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get income by ID: %w", err)
	}

	return income, nil
}

// Create creates a new income record
func (r *incomeRepository) Create(ctx context.Context, income *domain.Income) error {
	if income.Schedule == domain.ScheduleInvestment {
		// Derived records must never be persisted
		return fmt.Errorf("schedule 3 income is derived, not stored: %w", errs.ErrInvalid)
	}

	query := `
		INSERT INTO incomes (id, owner_id, tax_year, schedule,
		                     employer, employment_gross, apit_withheld,
		                     business_name, turnover, expenses, net_profit)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	var employer, employmentGross, apitWithheld interface{}
	if income.Employment != nil {
		employer = income.Employment.Employer
		employmentGross = income.Employment.GrossAmount.String()
		apitWithheld = income.Employment.APITWithheld.String()
	}
	var businessName, turnover, expenses, netProfit interface{}
	if income.Business != nil {
		businessName = income.Business.BusinessName
		turnover = income.Business.Turnover.String()
		expenses = income.Business.Expenses.String()
		netProfit = income.Business.NetProfit.String()
	}

	_, err := r.db.ExecContext(ctx, query,
		income.ID,
		income.OwnerID,
		int(income.TaxYear),
		int(income.Schedule),
		employer, employmentGross, apitWithheld,
		businessName, turnover, expenses, netProfit,
	)
	if err != nil {
		return fmt.Errorf("failed to create income: %w", err)
	}

	return nil
}

// ListByOwnerYear retrieves the stored income records for an entity and year
// of assessment
func (r *incomeRepository) ListByOwnerYear(ctx context.Context, entityID uuid.UUID, year domain.TaxYear) ([]*domain.Income, error) {
	query := `SELECT ` + incomeColumns + ` FROM incomes WHERE owner_id = $1 AND tax_year = $2 ORDER BY schedule, id`

	rows, err := r.db.QueryContext(ctx, query, entityID, int(year))
	if err != nil {
		return nil, fmt.Errorf("failed to list incomes: %w", err)
	}
	defer rows.Close()

	var incomes []*domain.Income
	for rows.Next() {
		income, err := scanIncome(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan income: %w", err)
		}
		incomes = append(incomes, income)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate incomes: %w", err)
	}

	return incomes, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanIncome(row rowScanner) (*domain.Income, error) {
	var income domain.Income
	var employer, employmentGross, apitWithheld sql.NullString
	var businessName, turnover, expenses, netProfit sql.NullString

	err := row.Scan(
		&income.ID,
		&income.OwnerID,
		&income.TaxYear,
		&income.Schedule,
		&employer, &employmentGross, &apitWithheld,
		&businessName, &turnover, &expenses, &netProfit,
	)
	if err != nil {
		return nil, err
	}

	switch income.Schedule {
	case domain.ScheduleEmployment:
		details := &domain.EmploymentDetails{Employer: employer.String}
		if details.GrossAmount, err = parseNullDecimal(employmentGross); err != nil {
			return nil, fmt.Errorf("failed to parse employment_gross: %w", err)
		}
		if details.APITWithheld, err = parseNullDecimal(apitWithheld); err != nil {
			return nil, fmt.Errorf("failed to parse apit_withheld: %w", err)
		}
		income.Employment = details
	case domain.ScheduleBusiness:
		details := &domain.BusinessDetails{BusinessName: businessName.String}
		if details.Turnover, err = parseNullDecimal(turnover); err != nil {
			return nil, fmt.Errorf("failed to parse turnover: %w", err)
		}
		if details.Expenses, err = parseNullDecimal(expenses); err != nil {
			return nil, fmt.Errorf("failed to parse expenses: %w", err)
		}
		if details.NetProfit, err = parseNullDecimal(netProfit); err != nil {
			return nil, fmt.Errorf("failed to parse net_profit: %w", err)
		}
		income.Business = details
	}

	return &income, nil
}

func parseNullDecimal(v sql.NullString) (decimal.Decimal, error) {
	if !v.Valid {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(v.String)
}
