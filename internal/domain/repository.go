package domain

import (
	"context"

	"github.com/google/uuid"
)

// EntityRepository defines the interface for tax entity persistence operations
type EntityRepository interface {
	// GetByID retrieves an entity by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*TaxEntity, error)

	// Create creates a new entity
	Create(ctx context.Context, entity *TaxEntity) error

	// List retrieves all entities in the family
	List(ctx context.Context) ([]*TaxEntity, error)
}

// AssetRepository defines the interface for asset persistence operations
type AssetRepository interface {
	// GetByID retrieves an asset by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*Asset, error)

	// Create creates a new asset
	Create(ctx context.Context, asset *Asset) error

	// Update replaces an asset, including its yearly sub-records
	Update(ctx context.Context, asset *Asset) error

	// ListByOwner retrieves assets owned solely by the entity plus joint
	// assets in which it holds a share
	ListByOwner(ctx context.Context, entityID uuid.UUID) ([]*Asset, error)

	// List retrieves all assets across the family
	List(ctx context.Context) ([]*Asset, error)
}

// LiabilityRepository defines the interface for liability persistence operations
type LiabilityRepository interface {
	// GetByID retrieves a liability by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*Liability, error)

	// Create creates a new liability
	Create(ctx context.Context, liability *Liability) error

	// Update replaces a liability, including its payments
	Update(ctx context.Context, liability *Liability) error

	// ListByOwner retrieves liabilities owned solely by the entity plus
	// joint liabilities in which it holds a share
	ListByOwner(ctx context.Context, entityID uuid.UUID) ([]*Liability, error)

	// List retrieves all liabilities across the family
	List(ctx context.Context) ([]*Liability, error)
}

// IncomeRepository defines the interface for income persistence operations.
// Only schedule 1 and 2 records are ever stored; schedule 3 is always
// recomputed from asset balance history.
type IncomeRepository interface {
	// GetByID retrieves an income record by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*Income, error)

	// Create creates a new income record
	Create(ctx context.Context, income *Income) error

	// ListByOwnerYear retrieves the stored income records for an entity
	// and year of assessment
	ListByOwnerYear(ctx context.Context, entityID uuid.UUID, year TaxYear) ([]*Income, error)
}

// CertificateRepository defines the interface for certificate persistence operations
type CertificateRepository interface {
	// GetByID retrieves a certificate by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*Certificate, error)

	// Create creates a new certificate
	Create(ctx context.Context, cert *Certificate) error

	// ListByOwnerYear retrieves the certificates for an entity and year
	// of assessment
	ListByOwnerYear(ctx context.Context, entityID uuid.UUID, year TaxYear) ([]*Certificate, error)
}
