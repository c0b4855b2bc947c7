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

// liabilityRepository implements domain.LiabilityRepository
type liabilityRepository struct {
	db *DB
}

// NewLiabilityRepository creates a new liability repository
func NewLiabilityRepository(db *DB) domain.LiabilityRepository {
	return &liabilityRepository{db: db}
}

// GetByID retrieves a liability with its payment history
func (r *liabilityRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Liability, error) {
	query := `
		SELECT id, owner_id, lender, original_amount, current_balance, date_acquired
		FROM liabilities
		WHERE id = $1
	`

	var liability domain.Liability
	var ownerID sql.NullString
	var originalStr, currentStr string

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&liability.ID,
		&ownerID,
		&liability.Lender,
		&originalStr,
		&currentStr,
		&liability.DateAcquired,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("liability %s: %w", id, errs.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get liability by ID: %w", err)
	}

	if ownerID.Valid {
		owner, err := uuid.Parse(ownerID.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse owner_id: %w", err)
		}
		liability.OwnerID = owner
	}
	if liability.OriginalAmount, err = decimal.NewFromString(originalStr); err != nil {
		return nil, fmt.Errorf("failed to parse original_amount: %w", err)
	}
	if liability.CurrentBalance, err = decimal.NewFromString(currentStr); err != nil {
		return nil, fmt.Errorf("failed to parse current_balance: %w", err)
	}

	shares, err := scanOwnershipShares(ctx, r.db.DB,
		`SELECT entity_id, percentage FROM liability_ownership_shares WHERE liability_id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load ownership shares: %w", err)
	}
	liability.OwnershipShares = shares

	rows, err := r.db.QueryContext(ctx,
		`SELECT tax_year, principal_paid, interest_paid, balance_after_payment
		 FROM liability_payments WHERE liability_id = $1 ORDER BY tax_year`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load payments: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var p domain.LiabilityPayment
		var principal, interest, balance string
		if err := rows.Scan(&p.TaxYear, &principal, &interest, &balance); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		if p.PrincipalPaid, err = decimal.NewFromString(principal); err != nil {
			return nil, fmt.Errorf("failed to parse principal_paid: %w", err)
		}
		if p.InterestPaid, err = decimal.NewFromString(interest); err != nil {
			return nil, fmt.Errorf("failed to parse interest_paid: %w", err)
		}
		if p.BalanceAfterPayment, err = decimal.NewFromString(balance); err != nil {
			return nil, fmt.Errorf("failed to parse balance_after_payment: %w", err)
		}
		liability.Payments = append(liability.Payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payments: %w", err)
	}

	return &liability, nil
}

// Create creates a new liability with its payments in a database transaction
func (r *liabilityRepository) Create(ctx context.Context, liability *domain.Liability) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	insertQuery := `
		INSERT INTO liabilities (id, owner_id, lender, original_amount, current_balance, date_acquired)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := dbTx.ExecContext(ctx, insertQuery, liabilityArgs(liability)...); err != nil {
		return fmt.Errorf("failed to insert liability: %w", err)
	}

	if err := insertLiabilitySubRecords(ctx, dbTx, liability); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Update replaces a liability and rewrites its payments in a database transaction
func (r *liabilityRepository) Update(ctx context.Context, liability *domain.Liability) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	updateQuery := `
		UPDATE liabilities
		SET owner_id = $2, lender = $3, original_amount = $4, current_balance = $5, date_acquired = $6
		WHERE id = $1
	`
	res, err := dbTx.ExecContext(ctx, updateQuery, liabilityArgs(liability)...)
	if err != nil {
		return fmt.Errorf("failed to update liability: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("liability %s: %w", liability.ID, errs.ErrNotFound)
	}

	for _, table := range []string{"liability_ownership_shares", "liability_payments"} {
		if _, err := dbTx.ExecContext(ctx, "DELETE FROM "+table+" WHERE liability_id = $1", liability.ID); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	if err := insertLiabilitySubRecords(ctx, dbTx, liability); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ListByOwner retrieves liabilities owned solely by the entity plus joint
// liabilities in which it holds a share
func (r *liabilityRepository) ListByOwner(ctx context.Context, entityID uuid.UUID) ([]*domain.Liability, error) {
	query := `
		SELECT l.id
		FROM liabilities l
		LEFT JOIN liability_ownership_shares s ON s.liability_id = l.id AND s.entity_id = $1
		WHERE l.owner_id = $1 OR s.entity_id IS NOT NULL
		ORDER BY l.lender
	`
	return r.listByIDQuery(ctx, query, entityID)
}

// List retrieves all liabilities across the family
func (r *liabilityRepository) List(ctx context.Context) ([]*domain.Liability, error) {
	return r.listByIDQuery(ctx, `SELECT id FROM liabilities ORDER BY lender`)
}

func (r *liabilityRepository) listByIDQuery(ctx context.Context, query string, args ...interface{}) ([]*domain.Liability, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list liabilities: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan liability id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate liabilities: %w", err)
	}

	liabilities := make([]*domain.Liability, 0, len(ids))
	for _, id := range ids {
		liability, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		liabilities = append(liabilities, liability)
	}

	return liabilities, nil
}

func liabilityArgs(liability *domain.Liability) []interface{} {
	var ownerID interface{}
	if liability.OwnerID != uuid.Nil {
		ownerID = liability.OwnerID
	}
	return []interface{}{
		liability.ID,
		ownerID,
		liability.Lender,
		liability.OriginalAmount.String(),
		liability.CurrentBalance.String(),
		liability.DateAcquired,
	}
}

func insertLiabilitySubRecords(ctx context.Context, dbTx *sql.Tx, liability *domain.Liability) error {
	for _, s := range liability.OwnershipShares {
		_, err := dbTx.ExecContext(ctx,
			`INSERT INTO liability_ownership_shares (liability_id, entity_id, percentage) VALUES ($1, $2, $3)`,
			liability.ID, s.EntityID, s.Percentage.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert ownership share: %w", err)
		}
	}

	for _, p := range liability.Payments {
		_, err := dbTx.ExecContext(ctx,
			`INSERT INTO liability_payments (liability_id, tax_year, principal_paid, interest_paid, balance_after_payment)
			 VALUES ($1, $2, $3, $4, $5)`,
			liability.ID, int(p.TaxYear), p.PrincipalPaid.String(), p.InterestPaid.String(), p.BalanceAfterPayment.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert payment: %w", err)
		}
	}

	return nil
}
