package auditrisk

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/taxfolio/backend/internal/domain"
	"github.com/taxfolio/backend/internal/usecase/investment"
	"github.com/taxfolio/backend/internal/usecase/taxcalc"
	"github.com/taxfolio/backend/internal/usecase/taxconfig"
)

// RiskLevel is the three-way classification of a reconciliation result
type RiskLevel string

const (
	RiskLevelSafe    RiskLevel = "SAFE"
	RiskLevelWarning RiskLevel = "WARNING"
	RiskLevelDanger  RiskLevel = "DANGER"
)

// Flow category labels used in the breakdowns
const (
	FlowEmploymentIncome = "employment_income"
	FlowBusinessIncome   = "business_income"
	FlowInvestmentIncome = "investment_income"
	FlowNewLoans         = "new_loans"
	FlowAssetSales       = "asset_sales"
	FlowBalanceDrawdown  = "balance_drawdowns"

	FlowTaxDeducted      = "tax_deducted"
	FlowAssetGrowth      = "asset_growth"
	FlowBalanceBuildup   = "balance_buildups"
	FlowPropertyExpenses = "property_expenses"
	FlowLoanPrincipal    = "loan_principal"
	FlowLoanInterest     = "loan_interest"
)

// AuditRisk is the sources-and-uses-of-funds reconciliation for one entity
// (or a combined family view) and one year of assessment. A positive
// RiskScore means documented spending, asset growth and debt repayment
// exceeded documented income and borrowing: funds with no declared source.
type AuditRisk struct {
	TaxYear domain.TaxYear

	EmploymentIncome decimal.Decimal
	BusinessIncome   decimal.Decimal
	InvestmentIncome decimal.Decimal
	TotalIncome      decimal.Decimal

	TaxDeducted  decimal.Decimal
	AssetGrowth  decimal.Decimal
	NewLoans     decimal.Decimal
	LoanPayments decimal.Decimal // principal plus interest
	AssetSales   decimal.Decimal

	InflowBreakdown  map[string]decimal.Decimal
	OutflowBreakdown map[string]decimal.Decimal

	TotalInflows                 decimal.Decimal
	TotalOutflowsExcludingLiving decimal.Decimal

	DerivedLivingExpenses decimal.Decimal
	RiskScore             decimal.Decimal
	RiskLevel             RiskLevel
}

// Engine classifies every financial movement in a tax year into inflow and
// outflow categories and derives a consistency score. It is a pure
// computation over immutable snapshots: identical inputs give identical
// results.
type Engine struct {
	Config  *taxconfig.Resolver
	Deriver *investment.Deriver
	Calc    *taxcalc.Calculator
}

// NewEngine creates a new Engine instance
func NewEngine(cfg *taxconfig.Resolver, deriver *investment.Deriver, calc *taxcalc.Calculator) *Engine {
	return &Engine{
		Config:  cfg,
		Deriver: deriver,
		Calc:    calc,
	}
}

// CalculateAuditRisk reconciles all the given records at full value. Use
// CalculateEntityAuditRisk when joint holdings must be apportioned to one
// family member.
func (e *Engine) CalculateAuditRisk(assets []*domain.Asset, liabilities []*domain.Liability, incomes []*domain.Income, certificates []*domain.Certificate, year domain.TaxYear) (*AuditRisk, error) {
	return e.classify(uuid.Nil, assets, liabilities, incomes, certificates, year)
}

// CalculateEntityAuditRisk reconciles one entity's records, counting only
// the entity's percentage of jointly held assets and liabilities.
func (e *Engine) CalculateEntityAuditRisk(entityID uuid.UUID, assets []*domain.Asset, liabilities []*domain.Liability, incomes []*domain.Income, certificates []*domain.Certificate, year domain.TaxYear) (*AuditRisk, error) {
	return e.classify(entityID, assets, liabilities, incomes, certificates, year)
}

// CalculateFamilyAuditRisk sums the per-entity classifications across all
// family members, then derives the residual figures once from the family
// totals. Joint holdings are apportioned by ownership share per entity, so
// each contributes to the family aggregate exactly once.
func (e *Engine) CalculateFamilyAuditRisk(entities []*domain.TaxEntity, assets []*domain.Asset, liabilities []*domain.Liability, incomes []*domain.Income, certificates []*domain.Certificate, year domain.TaxYear) (*AuditRisk, error) {
	combined := newResult(year)

	for _, entity := range entities {
		r, err := e.classify(entity.ID, assets, liabilities, incomes, certificates, year)
		if err != nil {
			return nil, err
		}
		combined.EmploymentIncome = combined.EmploymentIncome.Add(r.EmploymentIncome)
		combined.BusinessIncome = combined.BusinessIncome.Add(r.BusinessIncome)
		combined.InvestmentIncome = combined.InvestmentIncome.Add(r.InvestmentIncome)
		combined.TaxDeducted = combined.TaxDeducted.Add(r.TaxDeducted)
		combined.AssetGrowth = combined.AssetGrowth.Add(r.AssetGrowth)
		combined.NewLoans = combined.NewLoans.Add(r.NewLoans)
		combined.LoanPayments = combined.LoanPayments.Add(r.LoanPayments)
		combined.AssetSales = combined.AssetSales.Add(r.AssetSales)
		for label, amount := range r.InflowBreakdown {
			combined.InflowBreakdown[label] = combined.InflowBreakdown[label].Add(amount)
		}
		for label, amount := range r.OutflowBreakdown {
			combined.OutflowBreakdown[label] = combined.OutflowBreakdown[label].Add(amount)
		}
	}

	e.finalize(combined)
	return combined, nil
}

func newResult(year domain.TaxYear) *AuditRisk {
	return &AuditRisk{
		TaxYear:          year,
		InflowBreakdown:  make(map[string]decimal.Decimal),
		OutflowBreakdown: make(map[string]decimal.Decimal),
	}
}

// classify is the core sources-and-uses walk. owner == uuid.Nil means the
// whole record set at full value; otherwise amounts from joint holdings are
// scaled by the entity's ownership percentage.
//
// Monetary assets (bank deposits, cash, loans given) must be recorded with
// zero Cost: the money used to open them is already counted as a balance
// buildup in the opening year, and a non-zero Cost would count the same
// rupees twice under asset growth.
func (e *Engine) classify(owner uuid.UUID, assets []*domain.Asset, liabilities []*domain.Liability, incomes []*domain.Income, certificates []*domain.Certificate, year domain.TaxYear) (*AuditRisk, error) {
	r := newResult(year)
	hundred := decimal.NewFromInt(100)

	shareOfAsset := func(a *domain.Asset) decimal.Decimal {
		if owner == uuid.Nil {
			return decimal.NewFromInt(1)
		}
		return a.SharePercentage(owner).Div(hundred)
	}
	shareOfLiability := func(l *domain.Liability) decimal.Decimal {
		if owner == uuid.Nil {
			return decimal.NewFromInt(1)
		}
		return l.SharePercentage(owner).Div(hundred)
	}

	// Declared income: schedules 1 and 2 from stored records, schedule 3
	// derived from balance history (already owner-apportioned by the deriver)
	for _, inc := range incomes {
		if inc.TaxYear != year || (owner != uuid.Nil && inc.OwnerID != owner) {
			continue
		}
		switch inc.Schedule {
		case domain.ScheduleEmployment:
			r.EmploymentIncome = r.EmploymentIncome.Add(inc.GrossAmount())
		case domain.ScheduleBusiness:
			r.BusinessIncome = r.BusinessIncome.Add(inc.GrossAmount())
		}
	}
	for _, inc := range e.Deriver.CalculateDerivedInvestmentIncome(assets, year) {
		if owner != uuid.Nil && inc.OwnerID != owner {
			continue
		}
		r.InvestmentIncome = r.InvestmentIncome.Add(inc.GrossAmount())
	}

	addInflow(r, FlowEmploymentIncome, r.EmploymentIncome)
	addInflow(r, FlowBusinessIncome, r.BusinessIncome)
	addInflow(r, FlowInvestmentIncome, r.InvestmentIncome)

	// Tax withheld/deducted is an outflow: the credit totals of the tax
	// computation are the authority here
	comp, err := e.creditTotals(owner, incomes, assets, certificates, year)
	if err != nil {
		return nil, err
	}
	r.TaxDeducted = comp.APIT.Add(comp.WHT)
	addOutflow(r, FlowTaxDeducted, r.TaxDeducted)

	// Asset movements
	for _, asset := range assets {
		factor := shareOfAsset(asset)
		if factor.IsZero() {
			continue
		}

		if asset.AcquiredIn(year) {
			r.AssetGrowth = r.AssetGrowth.Add(asset.Cost.Mul(factor))
		}
		for _, txn := range asset.JewelleryTxns {
			if !year.Contains(txn.Date) {
				continue
			}
			if txn.Amount.IsPositive() {
				r.AssetGrowth = r.AssetGrowth.Add(txn.Amount.Mul(factor))
			} else {
				r.AssetSales = r.AssetSales.Add(txn.Amount.Neg().Mul(factor))
			}
		}

		if proceeds, ok := asset.DisposedIn(year); ok {
			r.AssetSales = r.AssetSales.Add(proceeds.Mul(factor))
		}

		if asset.IsMonetary() {
			delta, ok := e.balanceDelta(asset, year)
			if !ok {
				continue
			}
			delta = delta.Mul(factor)
			if delta.IsPositive() {
				// Money parked rather than spent
				addOutflow(r, FlowBalanceBuildup, delta)
			} else if delta.IsNegative() {
				// Money withdrawn into general use
				addInflow(r, FlowBalanceDrawdown, delta.Neg())
			}
		}

		for _, pe := range asset.PropertyExpense {
			if pe.TaxYear == year {
				addOutflow(r, FlowPropertyExpenses, pe.Amount.Mul(factor))
			}
		}
	}
	addOutflow(r, FlowAssetGrowth, r.AssetGrowth)
	addInflow(r, FlowAssetSales, r.AssetSales)

	// Liability movements
	for _, l := range liabilities {
		factor := shareOfLiability(l)
		if factor.IsZero() {
			continue
		}

		if l.NewInYear(year) {
			r.NewLoans = r.NewLoans.Add(l.OriginalAmount.Mul(factor))
		}

		if p, ok := l.PaymentFor(year); ok {
			principal := p.PrincipalPaid.Mul(factor)
			interest := p.InterestPaid.Mul(factor)
			r.LoanPayments = r.LoanPayments.Add(principal).Add(interest)
			addOutflow(r, FlowLoanPrincipal, principal)
			addOutflow(r, FlowLoanInterest, interest)
		}
	}
	addInflow(r, FlowNewLoans, r.NewLoans)

	e.finalize(r)
	return r, nil
}

// creditTotals obtains the tax computation's credit totals for the scope.
func (e *Engine) creditTotals(owner uuid.UUID, incomes []*domain.Income, assets []*domain.Asset, certificates []*domain.Certificate, year domain.TaxYear) (taxcalc.TaxCredits, error) {
	var comp *taxcalc.TaxComputation
	var err error
	if owner == uuid.Nil {
		comp, err = e.Calc.ComputeTax(incomes, assets, year, decimal.Zero, certificates)
	} else {
		comp, err = e.Calc.ComputeTaxForEntity(owner, incomes, assets, year, decimal.Zero, certificates)
	}
	if err != nil {
		return taxcalc.TaxCredits{}, err
	}
	return comp.TaxCredits, nil
}

// balanceDelta is the year-over-year closing balance movement of a monetary
// asset, in LKR. Without a balance record for the year there is no movement
// evidence, so no classification is made.
func (e *Engine) balanceDelta(asset *domain.Asset, year domain.TaxYear) (decimal.Decimal, bool) {
	current, ok := asset.BalanceFor(year)
	if !ok {
		return decimal.Decimal{}, false
	}

	prior := decimal.Zero
	if prev, ok := asset.LatestBalanceUpTo(year - 1); ok {
		prior = prev.ClosingBalance
	}

	delta := current.ClosingBalance.Sub(prior)
	if asset.Currency != "" && asset.Currency != "LKR" {
		if rate, ok := e.Config.ExchangeRate(asset.Currency, year); ok {
			delta = delta.Mul(rate)
		}
	}

	return delta, true
}

// finalize derives the residual figures and the risk level from the
// classified totals.
func (e *Engine) finalize(r *AuditRisk) {
	r.TotalIncome = r.EmploymentIncome.Add(r.BusinessIncome).Add(r.InvestmentIncome)

	r.TotalInflows = decimal.Zero
	for _, amount := range r.InflowBreakdown {
		r.TotalInflows = r.TotalInflows.Add(amount)
	}
	r.TotalOutflowsExcludingLiving = decimal.Zero
	for _, amount := range r.OutflowBreakdown {
		r.TotalOutflowsExcludingLiving = r.TotalOutflowsExcludingLiving.Add(amount)
	}

	// Living expenses are whatever inflow is left unaccounted for by
	// documented outflows; the score is the same residual seen from the
	// other side.
	r.RiskScore = r.TotalOutflowsExcludingLiving.Sub(r.TotalInflows)
	r.DerivedLivingExpenses = r.RiskScore.Neg()
	if r.DerivedLivingExpenses.IsNegative() {
		r.DerivedLivingExpenses = decimal.Zero
	}

	r.RiskLevel = e.level(r.RiskScore, r.TotalIncome)
}

// level applies the configured policy thresholds: scores at or below the
// safe margin (or under the absolute floor) are safe; otherwise the score
// relative to the entity's income scale separates warning from danger.
func (e *Engine) level(score, totalIncome decimal.Decimal) RiskLevel {
	t := e.Config.RiskThresholds()

	if score.LessThanOrEqual(t.SafeMargin) {
		return RiskLevelSafe
	}
	if score.LessThan(t.AbsoluteFloor) {
		return RiskLevelSafe
	}
	if totalIncome.LessThanOrEqual(decimal.Zero) {
		return RiskLevelDanger
	}
	if score.Div(totalIncome).GreaterThanOrEqual(t.DangerRatio) {
		return RiskLevelDanger
	}
	return RiskLevelWarning
}

func addInflow(r *AuditRisk, label string, amount decimal.Decimal) {
	if amount.IsZero() {
		return
	}
	r.InflowBreakdown[label] = r.InflowBreakdown[label].Add(amount)
}

func addOutflow(r *AuditRisk, label string, amount decimal.Decimal) {
	if amount.IsZero() {
		return
	}
	r.OutflowBreakdown[label] = r.OutflowBreakdown[label].Add(amount)
}

// Labels returns the breakdown labels in a stable order for rendering.
func Labels(breakdown map[string]decimal.Decimal) []string {
	labels := make([]string, 0, len(breakdown))
	for label := range breakdown {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}
