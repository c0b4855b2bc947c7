package domain

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CertificateType represents the kind of withholding a certificate evidences
type CertificateType string

const (
	CertificateTypeEmployment CertificateType = "EMPLOYMENT" // APIT (T-10)
	CertificateTypeInterest   CertificateType = "INTEREST"
	CertificateTypeDividend   CertificateType = "DIVIDEND"
	CertificateTypeRent       CertificateType = "RENT"
	CertificateTypeOther      CertificateType = "OTHER"
)

// Certificate represents an APIT or WHT certificate issued to an entity.
// Employment certificates evidence APIT; all other types evidence WHT.
type Certificate struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	TaxYear     TaxYear
	Type        CertificateType
	Issuer      string
	GrossAmount decimal.Decimal
	TaxDeducted decimal.Decimal
	NetAmount   decimal.Decimal
	IncomeID    *uuid.UUID // optional link to the income record it supports
}

// IsAPIT reports whether the certificate counts toward the APIT credit
// (as opposed to the WHT credit).
func (c *Certificate) IsAPIT() bool {
	return c.Type == CertificateTypeEmployment
}

// Validate ensures the certificate adheres to domain rules
// Returns an error if validation fails
func (c *Certificate) Validate() error {
	if c.OwnerID == uuid.Nil {
		return errors.New("certificate must have an owner")
	}

	switch c.Type {
	case CertificateTypeEmployment, CertificateTypeInterest, CertificateTypeDividend,
		CertificateTypeRent, CertificateTypeOther:
	default:
		return errors.New("certificate type must be EMPLOYMENT, INTEREST, DIVIDEND, RENT or OTHER")
	}

	if c.GrossAmount.IsNegative() || c.TaxDeducted.IsNegative() {
		return errors.New("certificate amounts cannot be negative")
	}

	if c.TaxDeducted.GreaterThan(c.GrossAmount) {
		return errors.New("certificate tax deducted cannot exceed gross amount")
	}

	return nil
}
