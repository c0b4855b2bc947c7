package taxcalc

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/taxfolio/backend/internal/domain"
	"github.com/taxfolio/backend/internal/usecase/investment"
	"github.com/taxfolio/backend/internal/usecase/taxconfig"
)

// TaxCredits splits the credits applied against the tax on income.
type TaxCredits struct {
	APIT decimal.Decimal
	WHT  decimal.Decimal
}

// SlabTax is the portion of tax arising in one bracket, kept for the
// slab-by-slab breakdown on the return.
type SlabTax struct {
	CumulativeLimit decimal.Decimal // zero = open-ended top slab
	Rate            decimal.Decimal
	Amount          decimal.Decimal // taxable income falling in this slab
	Tax             decimal.Decimal
}

// TaxComputation is the full result of a tax computation for one entity
// and year of assessment.
type TaxComputation struct {
	TaxYear          domain.TaxYear
	AssessableIncome decimal.Decimal
	PersonalRelief   decimal.Decimal
	TaxableIncome    decimal.Decimal
	Slabs            []SlabTax
	TaxOnIncome      decimal.Decimal
	TaxCredits       TaxCredits
	// ExcessCredit is any credit beyond the tax on income. It is reported,
	// not carried forward; refund framing is a presentation concern.
	ExcessCredit decimal.Decimal
	TaxPayable   decimal.Decimal
}

// Calculator computes progressive income tax from income records, asset
// balance history and withholding certificates.
type Calculator struct {
	Config  *taxconfig.Resolver
	Deriver *investment.Deriver
}

// NewCalculator creates a new Calculator instance
func NewCalculator(cfg *taxconfig.Resolver, deriver *investment.Deriver) *Calculator {
	return &Calculator{
		Config:  cfg,
		Deriver: deriver,
	}
}

// ComputeTax computes the tax position over the given records.
// Schedule 3 income is derived from the assets' balance history and merged
// with the stored incomes; manualAdjustment (which may be negative) is added
// to assessable income before relief.
func (c *Calculator) ComputeTax(incomes []*domain.Income, assets []*domain.Asset, year domain.TaxYear, manualAdjustment decimal.Decimal, certificates []*domain.Certificate) (*TaxComputation, error) {
	return c.compute(uuid.Nil, incomes, assets, year, manualAdjustment, certificates)
}

// ComputeTaxForEntity is ComputeTax restricted to one entity: derived
// investment income from joint assets only counts the entity's own share,
// and certificates belonging to other family members are ignored.
func (c *Calculator) ComputeTaxForEntity(entityID uuid.UUID, incomes []*domain.Income, assets []*domain.Asset, year domain.TaxYear, manualAdjustment decimal.Decimal, certificates []*domain.Certificate) (*TaxComputation, error) {
	return c.compute(entityID, incomes, assets, year, manualAdjustment, certificates)
}

func (c *Calculator) compute(owner uuid.UUID, incomes []*domain.Income, assets []*domain.Asset, year domain.TaxYear, manualAdjustment decimal.Decimal, certificates []*domain.Certificate) (*TaxComputation, error) {
	table, err := c.Config.Resolve(year)
	if err != nil {
		return nil, err
	}

	// Merge stored incomes (filtered to the year) with derived schedule 3
	all := make([]*domain.Income, 0, len(incomes))
	for _, inc := range incomes {
		if inc.TaxYear != year || inc.Schedule == domain.ScheduleInvestment {
			// Stored schedule 3 records are ignored: balance history is the
			// single source of truth for investment income.
			continue
		}
		if owner != uuid.Nil && inc.OwnerID != owner {
			continue
		}
		all = append(all, inc)
	}
	for _, inc := range c.Deriver.CalculateDerivedInvestmentIncome(assets, year) {
		if owner != uuid.Nil && inc.OwnerID != owner {
			continue
		}
		all = append(all, inc)
	}

	// 1. Assessable income
	assessable := manualAdjustment
	for _, inc := range all {
		assessable = assessable.Add(inc.GrossAmount())
	}
	if assessable.IsNegative() {
		assessable = decimal.Zero
	}

	// 2. Taxable income after personal relief, clamped at zero
	taxable := assessable.Sub(table.PersonalRelief)
	if taxable.IsNegative() {
		taxable = decimal.Zero
	}

	// 3. Slab-by-slab tax
	slabs, taxOnIncome := slabWalk(taxable, table.Brackets)

	// 4. Credits, with payable floored at zero
	credits := c.collectCredits(owner, all, certificates, year)
	totalCredits := credits.APIT.Add(credits.WHT)

	payable := taxOnIncome.Sub(totalCredits)
	excess := decimal.Zero
	if payable.IsNegative() {
		excess = payable.Neg()
		payable = decimal.Zero
	}

	return &TaxComputation{
		TaxYear:          year,
		AssessableIncome: assessable,
		PersonalRelief:   table.PersonalRelief,
		TaxableIncome:    taxable,
		Slabs:            slabs,
		TaxOnIncome:      taxOnIncome,
		TaxCredits:       credits,
		ExcessCredit:     excess,
		TaxPayable:       payable,
	}, nil
}

// slabWalk applies the brackets in ascending cumulative-limit order until
// taxable income is exhausted. The open-ended final bracket absorbs all
// remaining income at its rate.
func slabWalk(taxable decimal.Decimal, brackets []taxconfig.Bracket) ([]SlabTax, decimal.Decimal) {
	var slabs []SlabTax
	total := decimal.Zero
	remaining := taxable
	prevLimit := decimal.Zero

	for _, b := range brackets {
		if remaining.LessThanOrEqual(decimal.Zero) {
			break
		}

		inSlab := remaining
		if !b.CumulativeLimit.IsZero() {
			width := b.CumulativeLimit.Sub(prevLimit)
			if inSlab.GreaterThan(width) {
				inSlab = width
			}
			prevLimit = b.CumulativeLimit
		}

		tax := inSlab.Mul(b.Rate)
		slabs = append(slabs, SlabTax{
			CumulativeLimit: b.CumulativeLimit,
			Rate:            b.Rate,
			Amount:          inSlab,
			Tax:             tax,
		})
		total = total.Add(tax)
		remaining = remaining.Sub(inSlab)
	}

	return slabs, total
}

// collectCredits sums APIT withheld on employment income and WHT evidenced
// by balance records and certificates. A certificate linked to an income
// record in the computation is skipped: the income's own withheld figure
// already covers it.
func (c *Calculator) collectCredits(owner uuid.UUID, incomes []*domain.Income, certificates []*domain.Certificate, year domain.TaxYear) TaxCredits {
	credits := TaxCredits{APIT: decimal.Zero, WHT: decimal.Zero}

	linked := make(map[uuid.UUID]bool, len(incomes))
	for _, inc := range incomes {
		linked[inc.ID] = true
		switch inc.Schedule {
		case domain.ScheduleEmployment:
			credits.APIT = credits.APIT.Add(inc.Employment.APITWithheld)
		case domain.ScheduleInvestment:
			credits.WHT = credits.WHT.Add(inc.Investment.WHTDeducted)
		}
	}

	for _, cert := range certificates {
		if cert.TaxYear != year {
			continue
		}
		if owner != uuid.Nil && cert.OwnerID != owner {
			continue
		}
		if cert.IncomeID != nil && linked[*cert.IncomeID] {
			continue
		}
		if cert.IsAPIT() {
			credits.APIT = credits.APIT.Add(cert.TaxDeducted)
		} else {
			credits.WHT = credits.WHT.Add(cert.TaxDeducted)
		}
	}

	return credits
}
