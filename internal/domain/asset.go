package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AssetCategory represents the IRD cage classification of an asset
type AssetCategory string

const (
	AssetCategoryImmovableProperty AssetCategory = "IMMOVABLE_PROPERTY"
	AssetCategoryVehicle           AssetCategory = "VEHICLE"
	AssetCategoryBankDeposit       AssetCategory = "BANK_DEPOSIT"
	AssetCategoryShares            AssetCategory = "SHARES"
	AssetCategoryCash              AssetCategory = "CASH"
	AssetCategoryLoansGiven        AssetCategory = "LOANS_GIVEN"
	AssetCategoryJewellery         AssetCategory = "JEWELLERY"
	AssetCategoryBusinessProperty  AssetCategory = "BUSINESS_PROPERTY"
)

// MetalType classifies jewellery for the appreciation index
type MetalType string

const (
	MetalTypeGold   MetalType = "GOLD"
	MetalTypeSilver MetalType = "SILVER"
	MetalTypeGems   MetalType = "GEMS"
)

// OwnershipShare attributes a percentage of a jointly held asset or
// liability to one family entity. Percentages over an asset sum to 100.
type OwnershipShare struct {
	EntityID   uuid.UUID
	Percentage decimal.Decimal
}

// YearlyBalance is the closing balance evidence for monetary assets
// (bank deposits, cash, loans given), one per (asset, tax year).
type YearlyBalance struct {
	TaxYear        TaxYear
	ClosingBalance decimal.Decimal
	InterestEarned decimal.Decimal
	WHTDeducted    decimal.Decimal
}

// StockBalance is the yearly evidence for share portfolios,
// one per (asset, tax year).
type StockBalance struct {
	TaxYear        TaxYear
	PortfolioValue decimal.Decimal // holdings at market
	CashBalance    decimal.Decimal // un-invested cash with the broker
	Dividends      decimal.Decimal
	WHTDeducted    decimal.Decimal
}

// PropertyExpense records yearly capital expenditure on a property,
// optionally carrying a revalued market figure.
type PropertyExpense struct {
	TaxYear     TaxYear
	Amount      decimal.Decimal
	Description string
	MarketValue *decimal.Decimal // revaluation evidence, if assessed
}

// Valuation is an explicit yearly appraisal (property, vehicle).
type Valuation struct {
	TaxYear TaxYear
	Value   decimal.Decimal
	Source  string // e.g. licensed valuer, municipal assessment
}

// JewelleryTransaction records an acquisition or sale within a jewellery asset.
type JewelleryTransaction struct {
	Date        time.Time
	Description string
	Amount      decimal.Decimal // positive = acquisition, negative = sale
}

// Lifecycle marks an asset as disposed (sold) or closed (account shut).
// The asset remains visible historically but is excluded from active
// aggregations for periods after the marker date.
type Lifecycle struct {
	Date     time.Time
	Proceeds decimal.Decimal
}

// Asset represents an asset entity in the domain layer.
// Either OwnerID is set (sole ownership) or OwnershipShares is non-empty
// (joint ownership); never both.
type Asset struct {
	ID              uuid.UUID
	OwnerID         uuid.UUID
	OwnershipShares []OwnershipShare
	Name            string
	Category        AssetCategory
	AcquisitionDate time.Time
	Cost            decimal.Decimal
	MarketValue     decimal.Decimal // static fallback value

	// Category-specific sub-records
	Metal           MetalType // jewellery only
	Currency        string    // ISO code for foreign-currency deposits, "" = LKR
	Balances        []YearlyBalance
	StockBalances   []StockBalance
	PropertyExpense []PropertyExpense
	Valuations      []Valuation
	JewelleryTxns   []JewelleryTransaction

	Disposed *Lifecycle
	Closed   *Lifecycle
}

// IsMonetary reports whether the asset's yearly balances represent money
// whose year-over-year movement is classified by the audit-risk engine.
func (a *Asset) IsMonetary() bool {
	switch a.Category {
	case AssetCategoryBankDeposit, AssetCategoryCash, AssetCategoryLoansGiven:
		return true
	}
	return false
}

// ActiveIn reports whether the asset is part of active aggregations for the
// given year of assessment. Disposed/closed assets drop out of years after
// the marker date but remain visible for the year of the event itself.
func (a *Asset) ActiveIn(year TaxYear) bool {
	end := a.lifecycleEnd()
	if end == nil {
		return true
	}
	return !year.Start().After(end.Date)
}

// DisposedIn reports whether the asset was sold or closed within the year,
// returning the proceeds when it was.
func (a *Asset) DisposedIn(year TaxYear) (decimal.Decimal, bool) {
	end := a.lifecycleEnd()
	if end == nil || !year.Contains(end.Date) {
		return decimal.Zero, false
	}
	return end.Proceeds, true
}

// AcquiredIn reports whether the asset was acquired within the year.
func (a *Asset) AcquiredIn(year TaxYear) bool {
	return year.Contains(a.AcquisitionDate)
}

func (a *Asset) lifecycleEnd() *Lifecycle {
	if a.Disposed != nil {
		return a.Disposed
	}
	return a.Closed
}

// BalanceFor returns the yearly balance recorded for the exact year.
func (a *Asset) BalanceFor(year TaxYear) (YearlyBalance, bool) {
	for _, b := range a.Balances {
		if b.TaxYear == year {
			return b, true
		}
	}
	return YearlyBalance{}, false
}

// LatestBalanceUpTo returns the most recent yearly balance at or before year.
func (a *Asset) LatestBalanceUpTo(year TaxYear) (YearlyBalance, bool) {
	var best YearlyBalance
	found := false
	for _, b := range a.Balances {
		if b.TaxYear <= year && (!found || b.TaxYear > best.TaxYear) {
			best = b
			found = true
		}
	}
	return best, found
}

// StockBalanceFor returns the stock balance recorded for the exact year.
func (a *Asset) StockBalanceFor(year TaxYear) (StockBalance, bool) {
	for _, b := range a.StockBalances {
		if b.TaxYear == year {
			return b, true
		}
	}
	return StockBalance{}, false
}

// LatestStockBalanceUpTo returns the most recent stock balance at or before year.
func (a *Asset) LatestStockBalanceUpTo(year TaxYear) (StockBalance, bool) {
	var best StockBalance
	found := false
	for _, b := range a.StockBalances {
		if b.TaxYear <= year && (!found || b.TaxYear > best.TaxYear) {
			best = b
			found = true
		}
	}
	return best, found
}

// ValuationFor returns the explicit appraisal recorded for the exact year.
func (a *Asset) ValuationFor(year TaxYear) (Valuation, bool) {
	for _, v := range a.Valuations {
		if v.TaxYear == year {
			return v, true
		}
	}
	return Valuation{}, false
}

// SharePercentage returns the percentage of the asset attributed to the
// entity: 100 for the sole owner, the recorded share for joint owners,
// zero otherwise.
func (a *Asset) SharePercentage(entityID uuid.UUID) decimal.Decimal {
	if len(a.OwnershipShares) == 0 {
		if a.OwnerID == entityID {
			return decimal.NewFromInt(100)
		}
		return decimal.Zero
	}
	for _, s := range a.OwnershipShares {
		if s.EntityID == entityID {
			return s.Percentage
		}
	}
	return decimal.Zero
}

// Validate ensures the asset adheres to domain rules
// Returns an error if validation fails
// CRITICAL: joint ownership percentages must sum to exactly 100, and yearly
// sub-records must be unique per (asset, tax year)
func (a *Asset) Validate() error {
	if a.Name == "" {
		return errors.New("asset name cannot be empty")
	}

	switch a.Category {
	case AssetCategoryImmovableProperty, AssetCategoryVehicle, AssetCategoryBankDeposit,
		AssetCategoryShares, AssetCategoryCash, AssetCategoryLoansGiven,
		AssetCategoryJewellery, AssetCategoryBusinessProperty:
	default:
		return errors.New("asset category is not a recognised cage category")
	}

	if err := validateOwnership(a.OwnerID, a.OwnershipShares); err != nil {
		return err
	}

	// One balance/valuation record per (asset, taxYear)
	seen := make(map[TaxYear]bool)
	for _, b := range a.Balances {
		if seen[b.TaxYear] {
			return ErrDuplicateYearRecord
		}
		seen[b.TaxYear] = true
	}
	seen = make(map[TaxYear]bool)
	for _, b := range a.StockBalances {
		if seen[b.TaxYear] {
			return ErrDuplicateYearRecord
		}
		seen[b.TaxYear] = true
	}
	seen = make(map[TaxYear]bool)
	for _, v := range a.Valuations {
		if seen[v.TaxYear] {
			return ErrDuplicateYearRecord
		}
		seen[v.TaxYear] = true
	}

	if a.Category == AssetCategoryJewellery && a.Metal == "" {
		return errors.New("jewellery asset must carry a metal type")
	}

	if a.Disposed != nil && a.Closed != nil {
		return errors.New("asset cannot be both disposed and closed")
	}

	return nil
}

// ErrDuplicateYearRecord signals more than one balance/valuation record
// for the same (asset, tax year).
var ErrDuplicateYearRecord = errors.New("duplicate yearly record for tax year")

// ErrInconsistentOwnershipShares signals joint ownership percentages that do
// not sum to 100.
var ErrInconsistentOwnershipShares = errors.New("ownership shares do not sum to 100")

// validateOwnership enforces the sole-vs-joint ownership rules shared by
// assets and liabilities.
func validateOwnership(ownerID uuid.UUID, shares []OwnershipShare) error {
	if len(shares) == 0 {
		if ownerID == uuid.Nil {
			return errors.New("must have an owner or ownership shares")
		}
		return nil
	}

	if ownerID != uuid.Nil {
		return errors.New("cannot have both a sole owner and ownership shares")
	}

	total := decimal.Zero
	seen := make(map[uuid.UUID]bool)
	for _, s := range shares {
		if s.EntityID == uuid.Nil {
			return errors.New("ownership share must reference an entity")
		}
		if seen[s.EntityID] {
			return errors.New("duplicate entity in ownership shares")
		}
		seen[s.EntityID] = true
		if s.Percentage.LessThanOrEqual(decimal.Zero) {
			return errors.New("ownership share percentage must be positive")
		}
		total = total.Add(s.Percentage)
	}

	if !total.Equal(decimal.NewFromInt(100)) {
		return ErrInconsistentOwnershipShares
	}

	return nil
}
