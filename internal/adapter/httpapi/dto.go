package httpapi

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/taxfolio/backend/internal/domain"
	"github.com/taxfolio/backend/internal/usecase/auditrisk"
	"github.com/taxfolio/backend/internal/usecase/summary"
	"github.com/taxfolio/backend/internal/usecase/taxcalc"
)

// Monetary amounts travel as decimal strings to avoid float rounding on
// the wire. Tax years travel in "2023/24" display form.

type entityRequest struct {
	Name         string `json:"name"`
	TIN          string `json:"tin,omitempty"`
	NIC          string `json:"nic,omitempty"`
	Type         string `json:"type"`
	FirstTaxYear string `json:"firstTaxYear"`
}

type entityResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	TIN          string    `json:"tin,omitempty"`
	NIC          string    `json:"nic,omitempty"`
	Type         string    `json:"type"`
	FirstTaxYear string    `json:"firstTaxYear"`
}

func (req *entityRequest) toDomain() (*domain.TaxEntity, error) {
	firstYear, err := domain.ParseTaxYear(req.FirstTaxYear)
	if err != nil {
		return nil, fmt.Errorf("firstTaxYear: %w", err)
	}
	return &domain.TaxEntity{
		ID:           uuid.New(),
		Name:         req.Name,
		TIN:          req.TIN,
		NIC:          req.NIC,
		Type:         domain.EntityType(req.Type),
		FirstTaxYear: firstYear,
	}, nil
}

func toEntityResponse(e *domain.TaxEntity) entityResponse {
	return entityResponse{
		ID:           e.ID,
		Name:         e.Name,
		TIN:          e.TIN,
		NIC:          e.NIC,
		Type:         string(e.Type),
		FirstTaxYear: e.FirstTaxYear.String(),
	}
}

type ownershipShareDTO struct {
	EntityID   uuid.UUID `json:"entityId"`
	Percentage string    `json:"percentage"`
}

type yearlyBalanceDTO struct {
	TaxYear        string `json:"taxYear"`
	ClosingBalance string `json:"closingBalance"`
	InterestEarned string `json:"interestEarned"`
	WHTDeducted    string `json:"whtDeducted"`
}

type stockBalanceDTO struct {
	TaxYear        string `json:"taxYear"`
	PortfolioValue string `json:"portfolioValue"`
	CashBalance    string `json:"cashBalance"`
	Dividends      string `json:"dividends"`
	WHTDeducted    string `json:"whtDeducted"`
}

type propertyExpenseDTO struct {
	TaxYear     string  `json:"taxYear"`
	Amount      string  `json:"amount"`
	Description string  `json:"description,omitempty"`
	MarketValue *string `json:"marketValue,omitempty"`
}

type valuationDTO struct {
	TaxYear string `json:"taxYear"`
	Value   string `json:"value"`
	Source  string `json:"source,omitempty"`
}

type jewelleryTxnDTO struct {
	Date        string `json:"date"`
	Description string `json:"description,omitempty"`
	Amount      string `json:"amount"`
}

type lifecycleDTO struct {
	Date     string `json:"date"`
	Proceeds string `json:"proceeds"`
}

type assetRequest struct {
	OwnerID         *uuid.UUID           `json:"ownerId,omitempty"`
	OwnershipShares []ownershipShareDTO  `json:"ownershipShares,omitempty"`
	Name            string               `json:"name"`
	Category        string               `json:"category"`
	AcquisitionDate string               `json:"acquisitionDate"`
	Cost            string               `json:"cost"`
	MarketValue     string               `json:"marketValue,omitempty"`
	Metal           string               `json:"metal,omitempty"`
	Currency        string               `json:"currency,omitempty"`
	Balances        []yearlyBalanceDTO   `json:"balances,omitempty"`
	StockBalances   []stockBalanceDTO    `json:"stockBalances,omitempty"`
	PropertyExpense []propertyExpenseDTO `json:"propertyExpenses,omitempty"`
	Valuations      []valuationDTO       `json:"valuations,omitempty"`
	JewelleryTxns   []jewelleryTxnDTO    `json:"jewelleryTransactions,omitempty"`
	Disposed        *lifecycleDTO        `json:"disposed,omitempty"`
	Closed          *lifecycleDTO        `json:"closed,omitempty"`
}

type assetResponse struct {
	ID              uuid.UUID            `json:"id"`
	OwnerID         *uuid.UUID           `json:"ownerId,omitempty"`
	OwnershipShares []ownershipShareDTO  `json:"ownershipShares,omitempty"`
	Name            string               `json:"name"`
	Category        string               `json:"category"`
	AcquisitionDate string               `json:"acquisitionDate"`
	Cost            string               `json:"cost"`
	MarketValue     string               `json:"marketValue"`
	Metal           string               `json:"metal,omitempty"`
	Currency        string               `json:"currency,omitempty"`
	Balances        []yearlyBalanceDTO   `json:"balances,omitempty"`
	StockBalances   []stockBalanceDTO    `json:"stockBalances,omitempty"`
	PropertyExpense []propertyExpenseDTO `json:"propertyExpenses,omitempty"`
	Valuations      []valuationDTO       `json:"valuations,omitempty"`
	JewelleryTxns   []jewelleryTxnDTO    `json:"jewelleryTransactions,omitempty"`
	Disposed        *lifecycleDTO        `json:"disposed,omitempty"`
	Closed          *lifecycleDTO        `json:"closed,omitempty"`
}

func (req *assetRequest) toDomain(id uuid.UUID) (*domain.Asset, error) {
	asset := &domain.Asset{
		ID:       id,
		Name:     req.Name,
		Category: domain.AssetCategory(req.Category),
		Metal:    domain.MetalType(req.Metal),
		Currency: req.Currency,
	}
	if req.OwnerID != nil {
		asset.OwnerID = *req.OwnerID
	}

	var err error
	if asset.AcquisitionDate, err = parseDate(req.AcquisitionDate); err != nil {
		return nil, fmt.Errorf("acquisitionDate: %w", err)
	}
	if asset.Cost, err = parseAmount(req.Cost); err != nil {
		return nil, fmt.Errorf("cost: %w", err)
	}
	if req.MarketValue != "" {
		if asset.MarketValue, err = parseAmount(req.MarketValue); err != nil {
			return nil, fmt.Errorf("marketValue: %w", err)
		}
	}

	for _, s := range req.OwnershipShares {
		pct, err := parseAmount(s.Percentage)
		if err != nil {
			return nil, fmt.Errorf("ownershipShares.percentage: %w", err)
		}
		asset.OwnershipShares = append(asset.OwnershipShares, domain.OwnershipShare{
			EntityID:   s.EntityID,
			Percentage: pct,
		})
	}

	for _, b := range req.Balances {
		parsed, err := b.toDomain()
		if err != nil {
			return nil, fmt.Errorf("balances: %w", err)
		}
		asset.Balances = append(asset.Balances, parsed)
	}
	for _, b := range req.StockBalances {
		parsed, err := b.toDomain()
		if err != nil {
			return nil, fmt.Errorf("stockBalances: %w", err)
		}
		asset.StockBalances = append(asset.StockBalances, parsed)
	}
	for _, e := range req.PropertyExpense {
		parsed, err := e.toDomain()
		if err != nil {
			return nil, fmt.Errorf("propertyExpenses: %w", err)
		}
		asset.PropertyExpense = append(asset.PropertyExpense, parsed)
	}
	for _, v := range req.Valuations {
		parsed, err := v.toDomain()
		if err != nil {
			return nil, fmt.Errorf("valuations: %w", err)
		}
		asset.Valuations = append(asset.Valuations, parsed)
	}
	for _, t := range req.JewelleryTxns {
		parsed, err := t.toDomain()
		if err != nil {
			return nil, fmt.Errorf("jewelleryTransactions: %w", err)
		}
		asset.JewelleryTxns = append(asset.JewelleryTxns, parsed)
	}

	if asset.Disposed, err = lifecycleFromDTO(req.Disposed); err != nil {
		return nil, fmt.Errorf("disposed: %w", err)
	}
	if asset.Closed, err = lifecycleFromDTO(req.Closed); err != nil {
		return nil, fmt.Errorf("closed: %w", err)
	}

	return asset, nil
}

func (b yearlyBalanceDTO) toDomain() (domain.YearlyBalance, error) {
	var out domain.YearlyBalance
	var err error
	if out.TaxYear, err = domain.ParseTaxYear(b.TaxYear); err != nil {
		return out, err
	}
	if out.ClosingBalance, err = parseAmount(b.ClosingBalance); err != nil {
		return out, err
	}
	if out.InterestEarned, err = parseOptionalAmount(b.InterestEarned); err != nil {
		return out, err
	}
	if out.WHTDeducted, err = parseOptionalAmount(b.WHTDeducted); err != nil {
		return out, err
	}
	return out, nil
}

func (b stockBalanceDTO) toDomain() (domain.StockBalance, error) {
	var out domain.StockBalance
	var err error
	if out.TaxYear, err = domain.ParseTaxYear(b.TaxYear); err != nil {
		return out, err
	}
	if out.PortfolioValue, err = parseAmount(b.PortfolioValue); err != nil {
		return out, err
	}
	if out.CashBalance, err = parseOptionalAmount(b.CashBalance); err != nil {
		return out, err
	}
	if out.Dividends, err = parseOptionalAmount(b.Dividends); err != nil {
		return out, err
	}
	if out.WHTDeducted, err = parseOptionalAmount(b.WHTDeducted); err != nil {
		return out, err
	}
	return out, nil
}

func (e propertyExpenseDTO) toDomain() (domain.PropertyExpense, error) {
	var out domain.PropertyExpense
	var err error
	if out.TaxYear, err = domain.ParseTaxYear(e.TaxYear); err != nil {
		return out, err
	}
	if out.Amount, err = parseAmount(e.Amount); err != nil {
		return out, err
	}
	out.Description = e.Description
	if e.MarketValue != nil {
		mv, err := parseAmount(*e.MarketValue)
		if err != nil {
			return out, err
		}
		out.MarketValue = &mv
	}
	return out, nil
}

func (v valuationDTO) toDomain() (domain.Valuation, error) {
	var out domain.Valuation
	var err error
	if out.TaxYear, err = domain.ParseTaxYear(v.TaxYear); err != nil {
		return out, err
	}
	if out.Value, err = parseAmount(v.Value); err != nil {
		return out, err
	}
	out.Source = v.Source
	return out, nil
}

func (t jewelleryTxnDTO) toDomain() (domain.JewelleryTransaction, error) {
	var out domain.JewelleryTransaction
	var err error
	if out.Date, err = parseDate(t.Date); err != nil {
		return out, err
	}
	if out.Amount, err = parseAmount(t.Amount); err != nil {
		return out, err
	}
	out.Description = t.Description
	return out, nil
}

func lifecycleFromDTO(dto *lifecycleDTO) (*domain.Lifecycle, error) {
	if dto == nil {
		return nil, nil
	}
	date, err := parseDate(dto.Date)
	if err != nil {
		return nil, err
	}
	proceeds, err := parseOptionalAmount(dto.Proceeds)
	if err != nil {
		return nil, err
	}
	return &domain.Lifecycle{Date: date, Proceeds: proceeds}, nil
}

func toAssetResponse(a *domain.Asset) assetResponse {
	resp := assetResponse{
		ID:              a.ID,
		Name:            a.Name,
		Category:        string(a.Category),
		AcquisitionDate: a.AcquisitionDate.Format("2006-01-02"),
		Cost:            a.Cost.String(),
		MarketValue:     a.MarketValue.String(),
		Metal:           string(a.Metal),
		Currency:        a.Currency,
	}
	if a.OwnerID != uuid.Nil {
		owner := a.OwnerID
		resp.OwnerID = &owner
	}
	for _, s := range a.OwnershipShares {
		resp.OwnershipShares = append(resp.OwnershipShares, ownershipShareDTO{
			EntityID:   s.EntityID,
			Percentage: s.Percentage.String(),
		})
	}
	for _, b := range a.Balances {
		resp.Balances = append(resp.Balances, yearlyBalanceDTO{
			TaxYear:        b.TaxYear.String(),
			ClosingBalance: b.ClosingBalance.String(),
			InterestEarned: b.InterestEarned.String(),
			WHTDeducted:    b.WHTDeducted.String(),
		})
	}
	for _, b := range a.StockBalances {
		resp.StockBalances = append(resp.StockBalances, stockBalanceDTO{
			TaxYear:        b.TaxYear.String(),
			PortfolioValue: b.PortfolioValue.String(),
			CashBalance:    b.CashBalance.String(),
			Dividends:      b.Dividends.String(),
			WHTDeducted:    b.WHTDeducted.String(),
		})
	}
	for _, e := range a.PropertyExpense {
		dto := propertyExpenseDTO{
			TaxYear:     e.TaxYear.String(),
			Amount:      e.Amount.String(),
			Description: e.Description,
		}
		if e.MarketValue != nil {
			mv := e.MarketValue.String()
			dto.MarketValue = &mv
		}
		resp.PropertyExpense = append(resp.PropertyExpense, dto)
	}
	for _, v := range a.Valuations {
		resp.Valuations = append(resp.Valuations, valuationDTO{
			TaxYear: v.TaxYear.String(),
			Value:   v.Value.String(),
			Source:  v.Source,
		})
	}
	for _, t := range a.JewelleryTxns {
		resp.JewelleryTxns = append(resp.JewelleryTxns, jewelleryTxnDTO{
			Date:        t.Date.Format("2006-01-02"),
			Description: t.Description,
			Amount:      t.Amount.String(),
		})
	}
	resp.Disposed = lifecycleToDTO(a.Disposed)
	resp.Closed = lifecycleToDTO(a.Closed)
	return resp
}

func lifecycleToDTO(l *domain.Lifecycle) *lifecycleDTO {
	if l == nil {
		return nil
	}
	return &lifecycleDTO{
		Date:     l.Date.Format("2006-01-02"),
		Proceeds: l.Proceeds.String(),
	}
}

type liabilityRequest struct {
	OwnerID         *uuid.UUID          `json:"ownerId,omitempty"`
	OwnershipShares []ownershipShareDTO `json:"ownershipShares,omitempty"`
	Lender          string              `json:"lender"`
	OriginalAmount  string              `json:"originalAmount"`
	DateAcquired    string              `json:"dateAcquired"`
}

type liabilityPaymentDTO struct {
	TaxYear             string `json:"taxYear"`
	PrincipalPaid       string `json:"principalPaid"`
	InterestPaid        string `json:"interestPaid"`
	BalanceAfterPayment string `json:"balanceAfterPayment"`
}

type liabilityResponse struct {
	ID              uuid.UUID             `json:"id"`
	OwnerID         *uuid.UUID            `json:"ownerId,omitempty"`
	OwnershipShares []ownershipShareDTO   `json:"ownershipShares,omitempty"`
	Lender          string                `json:"lender"`
	OriginalAmount  string                `json:"originalAmount"`
	CurrentBalance  string                `json:"currentBalance"`
	DateAcquired    string                `json:"dateAcquired"`
	Payments        []liabilityPaymentDTO `json:"payments,omitempty"`
}

func (req *liabilityRequest) toDomain() (*domain.Liability, error) {
	liability := &domain.Liability{
		ID:     uuid.New(),
		Lender: req.Lender,
	}
	if req.OwnerID != nil {
		liability.OwnerID = *req.OwnerID
	}
	for _, s := range req.OwnershipShares {
		pct, err := parseAmount(s.Percentage)
		if err != nil {
			return nil, fmt.Errorf("ownershipShares.percentage: %w", err)
		}
		liability.OwnershipShares = append(liability.OwnershipShares, domain.OwnershipShare{
			EntityID:   s.EntityID,
			Percentage: pct,
		})
	}
	var err error
	if liability.OriginalAmount, err = parseAmount(req.OriginalAmount); err != nil {
		return nil, fmt.Errorf("originalAmount: %w", err)
	}
	if liability.DateAcquired, err = parseDate(req.DateAcquired); err != nil {
		return nil, fmt.Errorf("dateAcquired: %w", err)
	}
	// A new liability starts with no payments recorded
	liability.CurrentBalance = liability.OriginalAmount
	return liability, nil
}

func toLiabilityResponse(l *domain.Liability) liabilityResponse {
	resp := liabilityResponse{
		ID:             l.ID,
		Lender:         l.Lender,
		OriginalAmount: l.OriginalAmount.String(),
		CurrentBalance: l.CurrentBalance.String(),
		DateAcquired:   l.DateAcquired.Format("2006-01-02"),
	}
	if l.OwnerID != uuid.Nil {
		owner := l.OwnerID
		resp.OwnerID = &owner
	}
	for _, s := range l.OwnershipShares {
		resp.OwnershipShares = append(resp.OwnershipShares, ownershipShareDTO{
			EntityID:   s.EntityID,
			Percentage: s.Percentage.String(),
		})
	}
	for _, p := range l.Payments {
		resp.Payments = append(resp.Payments, liabilityPaymentDTO{
			TaxYear:             p.TaxYear.String(),
			PrincipalPaid:       p.PrincipalPaid.String(),
			InterestPaid:        p.InterestPaid.String(),
			BalanceAfterPayment: p.BalanceAfterPayment.String(),
		})
	}
	return resp
}

type incomeRequest struct {
	OwnerID    uuid.UUID             `json:"ownerId"`
	TaxYear    string                `json:"taxYear"`
	Schedule   int                   `json:"schedule"`
	Employment *employmentDetailsDTO `json:"employment,omitempty"`
	Business   *businessDetailsDTO   `json:"business,omitempty"`
}

type employmentDetailsDTO struct {
	Employer     string `json:"employer"`
	GrossAmount  string `json:"grossAmount"`
	APITWithheld string `json:"apitWithheld"`
}

type businessDetailsDTO struct {
	BusinessName string `json:"businessName"`
	Turnover     string `json:"turnover"`
	Expenses     string `json:"expenses"`
	NetProfit    string `json:"netProfit"`
}

type investmentDetailsDTO struct {
	Type        string    `json:"type"`
	GrossAmount string    `json:"grossAmount"`
	WHTDeducted string    `json:"whtDeducted"`
	SourceLabel string    `json:"sourceLabel,omitempty"`
	AssetID     uuid.UUID `json:"assetId,omitempty"`
}

type incomeResponse struct {
	ID         uuid.UUID             `json:"id"`
	OwnerID    uuid.UUID             `json:"ownerId"`
	TaxYear    string                `json:"taxYear"`
	Schedule   int                   `json:"schedule"`
	Employment *employmentDetailsDTO `json:"employment,omitempty"`
	Business   *businessDetailsDTO   `json:"business,omitempty"`
	Investment *investmentDetailsDTO `json:"investment,omitempty"`
}

func (req *incomeRequest) toDomain() (*domain.Income, error) {
	year, err := domain.ParseTaxYear(req.TaxYear)
	if err != nil {
		return nil, fmt.Errorf("taxYear: %w", err)
	}
	income := &domain.Income{
		ID:       uuid.New(),
		OwnerID:  req.OwnerID,
		TaxYear:  year,
		Schedule: domain.Schedule(req.Schedule),
	}
	if req.Employment != nil {
		details := &domain.EmploymentDetails{Employer: req.Employment.Employer}
		if details.GrossAmount, err = parseAmount(req.Employment.GrossAmount); err != nil {
			return nil, fmt.Errorf("employment.grossAmount: %w", err)
		}
		if details.APITWithheld, err = parseOptionalAmount(req.Employment.APITWithheld); err != nil {
			return nil, fmt.Errorf("employment.apitWithheld: %w", err)
		}
		income.Employment = details
	}
	if req.Business != nil {
		details := &domain.BusinessDetails{BusinessName: req.Business.BusinessName}
		if details.Turnover, err = parseOptionalAmount(req.Business.Turnover); err != nil {
			return nil, fmt.Errorf("business.turnover: %w", err)
		}
		if details.Expenses, err = parseOptionalAmount(req.Business.Expenses); err != nil {
			return nil, fmt.Errorf("business.expenses: %w", err)
		}
		if details.NetProfit, err = parseAmount(req.Business.NetProfit); err != nil {
			return nil, fmt.Errorf("business.netProfit: %w", err)
		}
		income.Business = details
	}
	return income, nil
}

func toIncomeResponse(i *domain.Income) incomeResponse {
	resp := incomeResponse{
		ID:       i.ID,
		OwnerID:  i.OwnerID,
		TaxYear:  i.TaxYear.String(),
		Schedule: int(i.Schedule),
	}
	if i.Employment != nil {
		resp.Employment = &employmentDetailsDTO{
			Employer:     i.Employment.Employer,
			GrossAmount:  i.Employment.GrossAmount.String(),
			APITWithheld: i.Employment.APITWithheld.String(),
		}
	}
	if i.Business != nil {
		resp.Business = &businessDetailsDTO{
			BusinessName: i.Business.BusinessName,
			Turnover:     i.Business.Turnover.String(),
			Expenses:     i.Business.Expenses.String(),
			NetProfit:    i.Business.NetProfit.String(),
		}
	}
	if i.Investment != nil {
		resp.Investment = &investmentDetailsDTO{
			Type:        string(i.Investment.Type),
			GrossAmount: i.Investment.GrossAmount.String(),
			WHTDeducted: i.Investment.WHTDeducted.String(),
			SourceLabel: i.Investment.SourceLabel,
			AssetID:     i.Investment.AssetID,
		}
	}
	return resp
}

type certificateRequest struct {
	OwnerID     uuid.UUID  `json:"ownerId"`
	TaxYear     string     `json:"taxYear"`
	Type        string     `json:"type"`
	Issuer      string     `json:"issuer"`
	GrossAmount string     `json:"grossAmount"`
	TaxDeducted string     `json:"taxDeducted"`
	IncomeID    *uuid.UUID `json:"incomeId,omitempty"`
}

type certificateResponse struct {
	ID          uuid.UUID  `json:"id"`
	OwnerID     uuid.UUID  `json:"ownerId"`
	TaxYear     string     `json:"taxYear"`
	Type        string     `json:"type"`
	Issuer      string     `json:"issuer"`
	GrossAmount string     `json:"grossAmount"`
	TaxDeducted string     `json:"taxDeducted"`
	NetAmount   string     `json:"netAmount"`
	IncomeID    *uuid.UUID `json:"incomeId,omitempty"`
}

func (req *certificateRequest) toDomain() (*domain.Certificate, error) {
	year, err := domain.ParseTaxYear(req.TaxYear)
	if err != nil {
		return nil, fmt.Errorf("taxYear: %w", err)
	}
	cert := &domain.Certificate{
		ID:       uuid.New(),
		OwnerID:  req.OwnerID,
		TaxYear:  year,
		Type:     domain.CertificateType(req.Type),
		Issuer:   req.Issuer,
		IncomeID: req.IncomeID,
	}
	if cert.GrossAmount, err = parseAmount(req.GrossAmount); err != nil {
		return nil, fmt.Errorf("grossAmount: %w", err)
	}
	if cert.TaxDeducted, err = parseOptionalAmount(req.TaxDeducted); err != nil {
		return nil, fmt.Errorf("taxDeducted: %w", err)
	}
	cert.NetAmount = cert.GrossAmount.Sub(cert.TaxDeducted)
	return cert, nil
}

func toCertificateResponse(c *domain.Certificate) certificateResponse {
	return certificateResponse{
		ID:          c.ID,
		OwnerID:     c.OwnerID,
		TaxYear:     c.TaxYear.String(),
		Type:        string(c.Type),
		Issuer:      c.Issuer,
		GrossAmount: c.GrossAmount.String(),
		TaxDeducted: c.TaxDeducted.String(),
		NetAmount:   c.NetAmount.String(),
		IncomeID:    c.IncomeID,
	}
}

type slabTaxDTO struct {
	CumulativeLimit string `json:"cumulativeLimit"`
	Rate            string `json:"rate"`
	Amount          string `json:"amount"`
	Tax             string `json:"tax"`
}

type taxComputationResponse struct {
	TaxYear          string       `json:"taxYear"`
	AssessableIncome string       `json:"assessableIncome"`
	PersonalRelief   string       `json:"personalRelief"`
	TaxableIncome    string       `json:"taxableIncome"`
	Slabs            []slabTaxDTO `json:"slabs"`
	TaxOnIncome      string       `json:"taxOnIncome"`
	APITCredit       string       `json:"apitCredit"`
	WHTCredit        string       `json:"whtCredit"`
	ExcessCredit     string       `json:"excessCredit"`
	TaxPayable       string       `json:"taxPayable"`
}

func toTaxComputationResponse(comp *taxcalc.TaxComputation) taxComputationResponse {
	resp := taxComputationResponse{
		TaxYear:          comp.TaxYear.String(),
		AssessableIncome: comp.AssessableIncome.String(),
		PersonalRelief:   comp.PersonalRelief.String(),
		TaxableIncome:    comp.TaxableIncome.String(),
		TaxOnIncome:      comp.TaxOnIncome.String(),
		APITCredit:       comp.TaxCredits.APIT.String(),
		WHTCredit:        comp.TaxCredits.WHT.String(),
		ExcessCredit:     comp.ExcessCredit.String(),
		TaxPayable:       comp.TaxPayable.String(),
	}
	for _, s := range comp.Slabs {
		resp.Slabs = append(resp.Slabs, slabTaxDTO{
			CumulativeLimit: s.CumulativeLimit.String(),
			Rate:            s.Rate.String(),
			Amount:          s.Amount.String(),
			Tax:             s.Tax.String(),
		})
	}
	return resp
}

type auditRiskResponse struct {
	TaxYear string `json:"taxYear"`

	EmploymentIncome string `json:"employmentIncome"`
	BusinessIncome   string `json:"businessIncome"`
	InvestmentIncome string `json:"investmentIncome"`
	TotalIncome      string `json:"totalIncome"`

	TaxDeducted  string `json:"taxDeducted"`
	AssetGrowth  string `json:"assetGrowth"`
	NewLoans     string `json:"newLoans"`
	LoanPayments string `json:"loanPayments"`
	AssetSales   string `json:"assetSales"`

	InflowBreakdown  map[string]string `json:"inflowBreakdown"`
	OutflowBreakdown map[string]string `json:"outflowBreakdown"`

	TotalInflows                 string `json:"totalInflows"`
	TotalOutflowsExcludingLiving string `json:"totalOutflowsExcludingLiving"`

	DerivedLivingExpenses string `json:"derivedLivingExpenses"`
	RiskScore             string `json:"riskScore"`
	RiskLevel             string `json:"riskLevel"`
}

func toAuditRiskResponse(r *auditrisk.AuditRisk) auditRiskResponse {
	return auditRiskResponse{
		TaxYear:                      r.TaxYear.String(),
		EmploymentIncome:             r.EmploymentIncome.String(),
		BusinessIncome:               r.BusinessIncome.String(),
		InvestmentIncome:             r.InvestmentIncome.String(),
		TotalIncome:                  r.TotalIncome.String(),
		TaxDeducted:                  r.TaxDeducted.String(),
		AssetGrowth:                  r.AssetGrowth.String(),
		NewLoans:                     r.NewLoans.String(),
		LoanPayments:                 r.LoanPayments.String(),
		AssetSales:                   r.AssetSales.String(),
		InflowBreakdown:              breakdownStrings(r.InflowBreakdown),
		OutflowBreakdown:             breakdownStrings(r.OutflowBreakdown),
		TotalInflows:                 r.TotalInflows.String(),
		TotalOutflowsExcludingLiving: r.TotalOutflowsExcludingLiving.String(),
		DerivedLivingExpenses:        r.DerivedLivingExpenses.String(),
		RiskScore:                    r.RiskScore.String(),
		RiskLevel:                    string(r.RiskLevel),
	}
}

func breakdownStrings(m map[string]decimal.Decimal) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v.String()
	}
	return out
}

type netWorthResponse struct {
	TaxYear          string            `json:"taxYear"`
	TotalAssets      string            `json:"totalAssets"`
	TotalLiabilities string            `json:"totalLiabilities"`
	NetWorth         string            `json:"netWorth"`
	AssetsByCategory map[string]string `json:"assetsByCategory"`
}

func toNetWorthResponse(r *summary.NetWorthResult) netWorthResponse {
	byCategory := make(map[string]string, len(r.AssetsByCategory))
	for category, value := range r.AssetsByCategory {
		byCategory[string(category)] = value.String()
	}
	return netWorthResponse{
		TaxYear:          r.TaxYear.String(),
		TotalAssets:      r.TotalAssets.String(),
		TotalLiabilities: r.TotalLiabilities.String(),
		NetWorth:         r.NetWorth.String(),
		AssetsByCategory: byCategory,
	}
}

type paymentRequest struct {
	TaxYear       string `json:"taxYear"`
	PrincipalPaid string `json:"principalPaid"`
	InterestPaid  string `json:"interestPaid"`
}

type valuationRequest struct {
	TaxYear string `json:"taxYear"`
	Value   string `json:"value"`
	Source  string `json:"source,omitempty"`
}

func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

func parseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, fmt.Errorf("amount is required")
	}
	return decimal.NewFromString(s)
}

func parseOptionalAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
