package domain

import (
	"errors"

	"github.com/google/uuid"
)

// EntityType represents the kind of taxpayer an entity is
type EntityType string

const (
	EntityTypeIndividual  EntityType = "INDIVIDUAL"
	EntityTypeCompany     EntityType = "COMPANY"
	EntityTypePartnership EntityType = "PARTNERSHIP"
	EntityTypeTrust       EntityType = "TRUST"
)

// TaxEntity represents a single taxpayer in the domain layer.
// Several entities together form a "family"; assets and liabilities
// may be held jointly across them via OwnershipShares.
type TaxEntity struct {
	ID   uuid.UUID
	Name string
	TIN  string // Taxpayer Identification Number
	NIC  string // National Identity Card number (individuals)
	Type EntityType
	// FirstTaxYear is the first year of assessment this entity files for.
	// Computations for earlier years are meaningless and rejected upstream.
	FirstTaxYear TaxYear
}

// Validate ensures the entity adheres to domain rules
// Returns an error if validation fails
func (e *TaxEntity) Validate() error {
	if e.Name == "" {
		return errors.New("entity name cannot be empty")
	}

	switch e.Type {
	case EntityTypeIndividual, EntityTypeCompany, EntityTypePartnership, EntityTypeTrust:
	default:
		return errors.New("entity type must be INDIVIDUAL, COMPANY, PARTNERSHIP or TRUST")
	}

	// Individuals are identified by NIC or TIN; non-individuals need a TIN
	if e.Type != EntityTypeIndividual && e.TIN == "" {
		return errors.New("non-individual entity must have a TIN")
	}

	return nil
}
