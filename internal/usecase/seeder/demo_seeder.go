package seeder

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/taxfolio/backend/internal/domain"
)

// Fixed UUIDs for the demo family so local runs get stable IDs
var (
	DEMO_ENTITY_PRIMARY = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	DEMO_ENTITY_SPOUSE  = uuid.MustParse("00000000-0000-0000-0000-000000000002")
	DEMO_ASSET_HOUSE    = uuid.MustParse("00000000-0000-0000-0000-000000000011")
	DEMO_ASSET_BANK     = uuid.MustParse("00000000-0000-0000-0000-000000000012")
	DEMO_ASSET_SHARES   = uuid.MustParse("00000000-0000-0000-0000-000000000013")
	DEMO_LIABILITY_LOAN = uuid.MustParse("00000000-0000-0000-0000-000000000021")
)

// DemoSeeder seeds a small family (two entities, a joint property, bank
// assets, a housing loan, employment income) for local development runs
type DemoSeeder struct {
	entityRepo    domain.EntityRepository
	assetRepo     domain.AssetRepository
	liabilityRepo domain.LiabilityRepository
	incomeRepo    domain.IncomeRepository
	certRepo      domain.CertificateRepository
}

// NewDemoSeeder creates a new DemoSeeder instance
func NewDemoSeeder(
	entityRepo domain.EntityRepository,
	assetRepo domain.AssetRepository,
	liabilityRepo domain.LiabilityRepository,
	incomeRepo domain.IncomeRepository,
	certRepo domain.CertificateRepository,
) *DemoSeeder {
	return &DemoSeeder{
		entityRepo:    entityRepo,
		assetRepo:     assetRepo,
		liabilityRepo: liabilityRepo,
		incomeRepo:    incomeRepo,
		certRepo:      certRepo,
	}
}

// Seed creates the demo records if the primary entity does not exist yet.
// Running it twice is a no-op.
func (s *DemoSeeder) Seed(ctx context.Context) error {
	if _, err := s.entityRepo.GetByID(ctx, DEMO_ENTITY_PRIMARY); err == nil {
		return nil
	}

	entities := []*domain.TaxEntity{
		{
			ID:           DEMO_ENTITY_PRIMARY,
			Name:         "Demo Taxpayer",
			TIN:          "123456789",
			NIC:          "851234567V",
			Type:         domain.EntityTypeIndividual,
			FirstTaxYear: 2020,
		},
		{
			ID:           DEMO_ENTITY_SPOUSE,
			Name:         "Demo Spouse",
			TIN:          "987654321",
			NIC:          "887654321V",
			Type:         domain.EntityTypeIndividual,
			FirstTaxYear: 2020,
		},
	}
	for _, e := range entities {
		if err := e.Validate(); err != nil {
			return err
		}
		if err := s.entityRepo.Create(ctx, e); err != nil {
			return err
		}
	}

	assets := []*domain.Asset{
		{
			ID: DEMO_ASSET_HOUSE,
			OwnershipShares: []domain.OwnershipShare{
				{EntityID: DEMO_ENTITY_PRIMARY, Percentage: decimal.NewFromInt(60)},
				{EntityID: DEMO_ENTITY_SPOUSE, Percentage: decimal.NewFromInt(40)},
			},
			Name:            "Family Home, Colombo 05",
			Category:        domain.AssetCategoryImmovableProperty,
			AcquisitionDate: time.Date(2018, time.June, 12, 0, 0, 0, 0, time.UTC),
			Cost:            decimal.NewFromInt(25000000),
			MarketValue:     decimal.NewFromInt(38000000),
			Valuations: []domain.Valuation{
				{TaxYear: 2023, Value: decimal.NewFromInt(36000000), Source: "licensed valuer"},
			},
		},
		{
			ID:              DEMO_ASSET_BANK,
			OwnerID:         DEMO_ENTITY_PRIMARY,
			Name:            "Savings Account - BOC 7040",
			Category:        domain.AssetCategoryBankDeposit,
			AcquisitionDate: time.Date(2015, time.January, 5, 0, 0, 0, 0, time.UTC),
			Cost:            decimal.Zero,
			MarketValue:     decimal.NewFromInt(100000),
			Balances: []domain.YearlyBalance{
				{TaxYear: 2022, ClosingBalance: decimal.NewFromInt(850000), InterestEarned: decimal.NewFromInt(42000), WHTDeducted: decimal.NewFromInt(2100)},
				{TaxYear: 2023, ClosingBalance: decimal.NewFromInt(1100000), InterestEarned: decimal.NewFromInt(61000), WHTDeducted: decimal.NewFromInt(3050)},
			},
		},
		{
			ID:              DEMO_ASSET_SHARES,
			OwnerID:         DEMO_ENTITY_SPOUSE,
			Name:            "CSE Portfolio - NDB Securities",
			Category:        domain.AssetCategoryShares,
			AcquisitionDate: time.Date(2021, time.August, 2, 0, 0, 0, 0, time.UTC),
			Cost:            decimal.NewFromInt(600000),
			MarketValue:     decimal.NewFromInt(600000),
			StockBalances: []domain.StockBalance{
				{TaxYear: 2022, PortfolioValue: decimal.NewFromInt(580000), CashBalance: decimal.NewFromInt(20000), Dividends: decimal.NewFromInt(18000), WHTDeducted: decimal.NewFromInt(2700)},
				{TaxYear: 2023, PortfolioValue: decimal.NewFromInt(690000), CashBalance: decimal.NewFromInt(15000), Dividends: decimal.NewFromInt(22000), WHTDeducted: decimal.NewFromInt(3300)},
			},
		},
	}
	for _, a := range assets {
		if err := a.Validate(); err != nil {
			return err
		}
		if err := s.assetRepo.Create(ctx, a); err != nil {
			return err
		}
	}

	loan := &domain.Liability{
		ID: DEMO_LIABILITY_LOAN,
		OwnershipShares: []domain.OwnershipShare{
			{EntityID: DEMO_ENTITY_PRIMARY, Percentage: decimal.NewFromInt(60)},
			{EntityID: DEMO_ENTITY_SPOUSE, Percentage: decimal.NewFromInt(40)},
		},
		Lender:         "NSB Housing Loan",
		OriginalAmount: decimal.NewFromInt(10000000),
		DateAcquired:   time.Date(2021, time.May, 20, 0, 0, 0, 0, time.UTC),
	}
	loan.Payments = []domain.LiabilityPayment{
		{TaxYear: 2022, PrincipalPaid: decimal.NewFromInt(600000), InterestPaid: decimal.NewFromInt(950000)},
		{TaxYear: 2023, PrincipalPaid: decimal.NewFromInt(600000), InterestPaid: decimal.NewFromInt(880000)},
	}
	replayed, balance := loan.ReplayPayments()
	loan.Payments = replayed
	loan.CurrentBalance = balance
	if err := loan.Validate(); err != nil {
		return err
	}
	if err := s.liabilityRepo.Create(ctx, loan); err != nil {
		return err
	}

	incomes := []*domain.Income{
		{
			ID:       uuid.MustParse("00000000-0000-0000-0000-000000000031"),
			OwnerID:  DEMO_ENTITY_PRIMARY,
			TaxYear:  2023,
			Schedule: domain.ScheduleEmployment,
			Employment: &domain.EmploymentDetails{
				Employer:     "Ceylon Software (Pvt) Ltd",
				GrossAmount:  decimal.NewFromInt(4800000),
				APITWithheld: decimal.NewFromInt(420000),
			},
		},
		{
			ID:       uuid.MustParse("00000000-0000-0000-0000-000000000032"),
			OwnerID:  DEMO_ENTITY_SPOUSE,
			TaxYear:  2023,
			Schedule: domain.ScheduleBusiness,
			Business: &domain.BusinessDetails{
				BusinessName: "Home Bakery",
				Turnover:     decimal.NewFromInt(2400000),
				Expenses:     decimal.NewFromInt(1500000),
				NetProfit:    decimal.NewFromInt(900000),
			},
		},
	}
	for _, inc := range incomes {
		if err := inc.Validate(); err != nil {
			return err
		}
		if err := s.incomeRepo.Create(ctx, inc); err != nil {
			return err
		}
	}

	cert := &domain.Certificate{
		ID:          uuid.MustParse("00000000-0000-0000-0000-000000000041"),
		OwnerID:     DEMO_ENTITY_PRIMARY,
		TaxYear:     2023,
		Type:        domain.CertificateTypeEmployment,
		Issuer:      "Ceylon Software (Pvt) Ltd",
		GrossAmount: decimal.NewFromInt(4800000),
		TaxDeducted: decimal.NewFromInt(420000),
		NetAmount:   decimal.NewFromInt(4380000),
	}
	cert.IncomeID = &incomes[0].ID
	if err := cert.Validate(); err != nil {
		return err
	}
	return s.certRepo.Create(ctx, cert)
}
