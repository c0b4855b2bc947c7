package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/taxfolio/backend/internal/domain"
	"github.com/taxfolio/backend/internal/errs"
)

// entityRepository implements domain.EntityRepository
type entityRepository struct {
	db *DB
}

// NewEntityRepository creates a new tax entity repository
func NewEntityRepository(db *DB) domain.EntityRepository {
	return &entityRepository{db: db}
}

// GetByID retrieves an entity by its ID
func (r *entityRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.TaxEntity, error) {
	query := `
		SELECT id, name, tin, nic, entity_type, first_tax_year
		FROM entities
		WHERE id = $1
	`

	var entity domain.TaxEntity
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&entity.ID,
		&entity.Name,
		&entity.TIN,
		&entity.NIC,
		&entity.Type,
		&entity.FirstTaxYear,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("entity %s: %w", id, errs.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get entity by ID: %w", err)
	}

	return &entity, nil
}

// Create creates a new entity
func (r *entityRepository) Create(ctx context.Context, entity *domain.TaxEntity) error {
	query := `
		INSERT INTO entities (id, name, tin, nic, entity_type, first_tax_year)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		entity.ID,
		entity.Name,
		entity.TIN,
		entity.NIC,
		string(entity.Type),
		int(entity.FirstTaxYear),
	)
	if err != nil {
		return fmt.Errorf("failed to create entity: %w", err)
	}

	return nil
}

// List retrieves all entities in the family
func (r *entityRepository) List(ctx context.Context) ([]*domain.TaxEntity, error) {
	query := `
		SELECT id, name, tin, nic, entity_type, first_tax_year
		FROM entities
		ORDER BY name
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list entities: %w", err)
	}
	defer rows.Close()

	var entities []*domain.TaxEntity
	for rows.Next() {
		var entity domain.TaxEntity
		if err := rows.Scan(
			&entity.ID,
			&entity.Name,
			&entity.TIN,
			&entity.NIC,
			&entity.Type,
			&entity.FirstTaxYear,
		); err != nil {
			return nil, fmt.Errorf("failed to scan entity: %w", err)
		}
		entities = append(entities, &entity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate entities: %w", err)
	}

	return entities, nil
}
