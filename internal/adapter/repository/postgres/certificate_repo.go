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

// certificateRepository implements domain.CertificateRepository
type certificateRepository struct {
	db *DB
}

// NewCertificateRepository creates a new certificate repository
func NewCertificateRepository(db *DB) domain.CertificateRepository {
	return &certificateRepository{db: db}
}

// GetByID retrieves a certificate by its ID
func (r *certificateRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Certificate, error) {
	query := `
		SELECT id, owner_id, tax_year, cert_type, issuer, gross_amount, tax_deducted, net_amount, income_id
		FROM certificates
		WHERE id = $1
	`

	cert, err := scanCertificate(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("certificate %s: %w", id, errs.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get certificate by ID: %w", err)
	}

	return cert, nil
}

// Create creates a new certificate
func (r *certificateRepository) Create(ctx context.Context, cert *domain.Certificate) error {
	query := `
		INSERT INTO certificates (id, owner_id, tax_year, cert_type, issuer, gross_amount, tax_deducted, net_amount, income_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	var incomeID interface{}
	if cert.IncomeID != nil {
		incomeID = *cert.IncomeID
	}

	_, err := r.db.ExecContext(ctx, query,
		cert.ID,
		cert.OwnerID,
		int(cert.TaxYear),
		string(cert.Type),
		cert.Issuer,
		cert.GrossAmount.String(),
		cert.TaxDeducted.String(),
		cert.NetAmount.String(),
		incomeID,
	)
	if err != nil {
		return fmt.Errorf("failed to create certificate: %w", err)
	}

	return nil
}

// ListByOwnerYear retrieves the certificates for an entity and year of assessment
func (r *certificateRepository) ListByOwnerYear(ctx context.Context, entityID uuid.UUID, year domain.TaxYear) ([]*domain.Certificate, error) {
	query := `
		SELECT id, owner_id, tax_year, cert_type, issuer, gross_amount, tax_deducted, net_amount, income_id
		FROM certificates
		WHERE owner_id = $1 AND tax_year = $2
		ORDER BY cert_type, issuer
	`

	rows, err := r.db.QueryContext(ctx, query, entityID, int(year))
	if err != nil {
		return nil, fmt.Errorf("failed to list certificates: %w", err)
	}
	defer rows.Close()

	var certs []*domain.Certificate
	for rows.Next() {
		cert, err := scanCertificate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan certificate: %w", err)
		}
		certs = append(certs, cert)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate certificates: %w", err)
	}

	return certs, nil
}

func scanCertificate(row rowScanner) (*domain.Certificate, error) {
	var cert domain.Certificate
	var grossStr, deductedStr, netStr string
	var incomeID sql.NullString

	err := row.Scan(
		&cert.ID,
		&cert.OwnerID,
		&cert.TaxYear,
		&cert.Type,
		&cert.Issuer,
		&grossStr,
		&deductedStr,
		&netStr,
		&incomeID,
	)
	if err != nil {
		return nil, err
	}

	if cert.GrossAmount, err = decimal.NewFromString(grossStr); err != nil {
		return nil, fmt.Errorf("failed to parse gross_amount: %w", err)
	}
	if cert.TaxDeducted, err = decimal.NewFromString(deductedStr); err != nil {
		return nil, fmt.Errorf("failed to parse tax_deducted: %w", err)
	}
	if cert.NetAmount, err = decimal.NewFromString(netStr); err != nil {
		return nil, fmt.Errorf("failed to parse net_amount: %w", err)
	}
	if incomeID.Valid {
		id, err := uuid.Parse(incomeID.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse income_id: %w", err)
		}
		cert.IncomeID = &id
	}

	return &cert, nil
}
