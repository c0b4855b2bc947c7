package domain

import (
	"github.com/google/uuid"
)

// RecordTaskKind names the kind of evidence a record task asks for
type RecordTaskKind string

const (
	TaskRecordYearlyBalance RecordTaskKind = "RECORD_YEARLY_BALANCE"
	TaskRecordStockBalance  RecordTaskKind = "RECORD_STOCK_BALANCE"
	TaskRecordLoanPayment   RecordTaskKind = "RECORD_LOAN_PAYMENT"
	TaskRecordValuation     RecordTaskKind = "RECORD_VALUATION"
)

// RecordTask represents one piece of yearly evidence still missing before
// the family's records are complete for a year of assessment. Tasks are
// derived on demand and never persisted.
type RecordTask struct {
	Kind        RecordTaskKind
	TaxYear     TaxYear
	AssetID     uuid.UUID // set for asset tasks
	LiabilityID uuid.UUID // set for liability tasks
	Subject     string    // asset name or lender, for display
	Detail      string
}
