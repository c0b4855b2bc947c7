package taxconfig

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/taxfolio/backend/internal/domain"
	"github.com/taxfolio/backend/internal/errs"
)

// Bracket is one slab of the progressive rate schedule.
// CumulativeLimit is the upper bound of taxable income covered by this and
// all lower slabs; a zero limit marks the open-ended top slab.
type Bracket struct {
	CumulativeLimit decimal.Decimal
	Rate            decimal.Decimal
}

// BracketTable is the rate schedule and personal relief for one year of
// assessment. Brackets are ordered by ascending cumulative limit with the
// unbounded slab last.
type BracketTable struct {
	Brackets       []Bracket
	PersonalRelief decimal.Decimal
}

// RiskThresholds are the policy knobs for the audit-risk three-way
// classification. They are policy parameters, not law-derived constants.
type RiskThresholds struct {
	// SafeMargin: scores at or below this are safe outright.
	SafeMargin decimal.Decimal
	// AbsoluteFloor: positive scores under this stay safe (data noise).
	AbsoluteFloor decimal.Decimal
	// DangerRatio: score/income at or above this is danger; below is warning.
	DangerRatio decimal.Decimal
}

// Resolver maps a year of assessment to its bracket table, personal relief,
// valuation indices and risk thresholds. It is a pure read over static
// tables; no caching is needed.
type Resolver struct {
	tables    map[domain.TaxYear]BracketTable
	jewellery map[domain.MetalType]map[domain.TaxYear]decimal.Decimal
	exchange  map[string]map[domain.TaxYear]decimal.Decimal
	risk      RiskThresholds
}

// NewResolver creates a resolver pre-loaded with the built-in tables.
// Rates follow the Sri Lankan schedules in force for each year; legal
// accuracy is a collaborator concern, not guaranteed here.
func NewResolver() *Resolver {
	return &Resolver{
		tables:    defaultTables(),
		jewellery: defaultJewelleryIndex(),
		exchange:  defaultExchangeIndex(),
		risk: RiskThresholds{
			SafeMargin:    decimal.Zero,
			AbsoluteFloor: decimal.NewFromInt(100000),
			DangerRatio:   decimal.NewFromFloat(0.25),
		},
	}
}

// SetTable installs or replaces the bracket table for a year.
func (r *Resolver) SetTable(year domain.TaxYear, table BracketTable) {
	r.tables[year] = table
}

// SetRiskThresholds replaces the audit-risk classification thresholds.
func (r *Resolver) SetRiskThresholds(t RiskThresholds) {
	r.risk = t
}

// Resolve returns the bracket table for the year. It fails with
// errs.ErrConfigNotFound when the year has no defined table; callers must
// not fall back to a different year's table.
func (r *Resolver) Resolve(year domain.TaxYear) (BracketTable, error) {
	table, ok := r.tables[year]
	if !ok {
		return BracketTable{}, fmt.Errorf("no tax configuration for %s: %w", year, errs.ErrConfigNotFound)
	}
	return table, nil
}

// JewelleryIndex returns the cumulative price index for a metal in a year.
// The appreciation factor between two years is the ratio of their indices.
func (r *Resolver) JewelleryIndex(metal domain.MetalType, year domain.TaxYear) (decimal.Decimal, bool) {
	byYear, ok := r.jewellery[metal]
	if !ok {
		return decimal.Decimal{}, false
	}
	return latestIndexUpTo(byYear, year)
}

// ExchangeRate returns the LKR-per-unit rate for a currency in a year.
func (r *Resolver) ExchangeRate(currency string, year domain.TaxYear) (decimal.Decimal, bool) {
	byYear, ok := r.exchange[currency]
	if !ok {
		return decimal.Decimal{}, false
	}
	return latestIndexUpTo(byYear, year)
}

// RiskThresholds returns the configured audit-risk classification thresholds.
func (r *Resolver) RiskThresholds() RiskThresholds {
	return r.risk
}

// latestIndexUpTo picks the index value for the year, falling back to the
// most recent earlier year so a thin table still resolves deterministically.
func latestIndexUpTo(byYear map[domain.TaxYear]decimal.Decimal, year domain.TaxYear) (decimal.Decimal, bool) {
	if v, ok := byYear[year]; ok {
		return v, true
	}
	years := make([]domain.TaxYear, 0, len(byYear))
	for y := range byYear {
		if y < year {
			years = append(years, y)
		}
	}
	if len(years) == 0 {
		return decimal.Decimal{}, false
	}
	sort.Slice(years, func(i, j int) bool { return years[i] > years[j] })
	return byYear[years[0]], true
}

func defaultTables() map[domain.TaxYear]BracketTable {
	pct := func(p int64) decimal.Decimal {
		return decimal.NewFromInt(p).Div(decimal.NewFromInt(100))
	}
	lkr := func(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

	// 2020/21 and 2021/22: three wide slabs, relief 3,000,000
	wide := BracketTable{
		PersonalRelief: lkr(3000000),
		Brackets: []Bracket{
			{CumulativeLimit: lkr(3000000), Rate: pct(6)},
			{CumulativeLimit: lkr(6000000), Rate: pct(12)},
			{CumulativeLimit: decimal.Zero, Rate: pct(18)},
		},
	}

	// 2022/23 through 2024/25: 500,000 slabs stepping 6% to 36%, relief 1,200,000
	steep := BracketTable{
		PersonalRelief: lkr(1200000),
		Brackets: []Bracket{
			{CumulativeLimit: lkr(500000), Rate: pct(6)},
			{CumulativeLimit: lkr(1000000), Rate: pct(12)},
			{CumulativeLimit: lkr(1500000), Rate: pct(18)},
			{CumulativeLimit: lkr(2000000), Rate: pct(24)},
			{CumulativeLimit: lkr(2500000), Rate: pct(30)},
			{CumulativeLimit: decimal.Zero, Rate: pct(36)},
		},
	}

	// 2025/26 onwards: widened first slab, relief 1,800,000
	relieved := BracketTable{
		PersonalRelief: lkr(1800000),
		Brackets: []Bracket{
			{CumulativeLimit: lkr(1000000), Rate: pct(6)},
			{CumulativeLimit: lkr(1500000), Rate: pct(18)},
			{CumulativeLimit: lkr(2000000), Rate: pct(24)},
			{CumulativeLimit: lkr(2500000), Rate: pct(30)},
			{CumulativeLimit: decimal.Zero, Rate: pct(36)},
		},
	}

	return map[domain.TaxYear]BracketTable{
		2020: wide,
		2021: wide,
		2022: steep,
		2023: steep,
		2024: steep,
		2025: relieved,
	}
}

func defaultJewelleryIndex() map[domain.MetalType]map[domain.TaxYear]decimal.Decimal {
	idx := func(pairs map[int]string) map[domain.TaxYear]decimal.Decimal {
		out := make(map[domain.TaxYear]decimal.Decimal, len(pairs))
		for y, v := range pairs {
			out[domain.TaxYear(y)] = decimal.RequireFromString(v)
		}
		return out
	}

	return map[domain.MetalType]map[domain.TaxYear]decimal.Decimal{
		domain.MetalTypeGold: idx(map[int]string{
			2018: "100", 2019: "112", 2020: "131", 2021: "139",
			2022: "215", 2023: "228", 2024: "252", 2025: "270",
		}),
		domain.MetalTypeSilver: idx(map[int]string{
			2018: "100", 2019: "104", 2020: "118", 2021: "124",
			2022: "176", 2023: "181", 2024: "194", 2025: "203",
		}),
		domain.MetalTypeGems: idx(map[int]string{
			2018: "100", 2019: "103", 2020: "107", 2021: "112",
			2022: "140", 2023: "146", 2024: "152", 2025: "158",
		}),
	}
}

func defaultExchangeIndex() map[string]map[domain.TaxYear]decimal.Decimal {
	idx := func(pairs map[int]string) map[domain.TaxYear]decimal.Decimal {
		out := make(map[domain.TaxYear]decimal.Decimal, len(pairs))
		for y, v := range pairs {
			out[domain.TaxYear(y)] = decimal.RequireFromString(v)
		}
		return out
	}

	// End-of-fiscal-year LKR rates per unit of foreign currency
	return map[string]map[domain.TaxYear]decimal.Decimal{
		"USD": idx(map[int]string{
			2018: "176", 2019: "186", 2020: "199", 2021: "299",
			2022: "328", 2023: "300", 2024: "298", 2025: "302",
		}),
		"GBP": idx(map[int]string{
			2018: "230", 2019: "229", 2020: "273", 2021: "392",
			2022: "404", 2023: "379", 2024: "385", 2025: "390",
		}),
		"EUR": idx(map[int]string{
			2018: "197", 2019: "204", 2020: "233", 2021: "331",
			2022: "356", 2023: "324", 2024: "322", 2025: "327",
		}),
	}
}
