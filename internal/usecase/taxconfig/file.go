package taxconfig

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/taxfolio/backend/internal/domain"
	"gopkg.in/yaml.v3"
)

// fileConfig mirrors the YAML override file. Any section present replaces
// the built-in table for the years/metals/currencies it names; absent
// sections keep the defaults.
type fileConfig struct {
	Years map[string]struct {
		PersonalRelief string `yaml:"personal_relief"`
		Brackets       []struct {
			UpTo string `yaml:"up_to"` // empty or omitted = unbounded top slab
			Rate string `yaml:"rate"`
		} `yaml:"brackets"`
	} `yaml:"years"`

	JewelleryIndex map[string]map[string]string `yaml:"jewellery_index"`
	ExchangeIndex  map[string]map[string]string `yaml:"exchange_index"`

	Risk *struct {
		SafeMargin    string `yaml:"safe_margin"`
		AbsoluteFloor string `yaml:"absolute_floor"`
		DangerRatio   string `yaml:"danger_ratio"`
	} `yaml:"risk"`
}

// ApplyFile overlays tables from a YAML file onto the resolver.
// Used for rate revisions without a rebuild; the built-in tables remain
// for everything the file does not mention.
func (r *Resolver) ApplyFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read tax config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("parse tax config file: %w", err)
	}

	for yearStr, yc := range fc.Years {
		year, err := domain.ParseTaxYear(yearStr)
		if err != nil {
			return fmt.Errorf("tax config year %q: %w", yearStr, err)
		}

		relief, err := decimal.NewFromString(yc.PersonalRelief)
		if err != nil {
			return fmt.Errorf("tax config %s: personal relief: %w", year, err)
		}

		table := BracketTable{PersonalRelief: relief}
		for i, b := range yc.Brackets {
			rate, err := decimal.NewFromString(b.Rate)
			if err != nil {
				return fmt.Errorf("tax config %s bracket %d: rate: %w", year, i, err)
			}
			limit := decimal.Zero
			if b.UpTo != "" {
				limit, err = decimal.NewFromString(b.UpTo)
				if err != nil {
					return fmt.Errorf("tax config %s bracket %d: limit: %w", year, i, err)
				}
			}
			table.Brackets = append(table.Brackets, Bracket{CumulativeLimit: limit, Rate: rate})
		}
		if len(table.Brackets) == 0 {
			return fmt.Errorf("tax config %s: no brackets defined", year)
		}
		r.tables[year] = table
	}

	for metal, byYear := range fc.JewelleryIndex {
		parsed, err := parseIndex(byYear)
		if err != nil {
			return fmt.Errorf("jewellery index %s: %w", metal, err)
		}
		r.jewellery[domain.MetalType(metal)] = parsed
	}

	for currency, byYear := range fc.ExchangeIndex {
		parsed, err := parseIndex(byYear)
		if err != nil {
			return fmt.Errorf("exchange index %s: %w", currency, err)
		}
		r.exchange[currency] = parsed
	}

	if fc.Risk != nil {
		if fc.Risk.SafeMargin != "" {
			v, err := decimal.NewFromString(fc.Risk.SafeMargin)
			if err != nil {
				return fmt.Errorf("risk safe_margin: %w", err)
			}
			r.risk.SafeMargin = v
		}
		if fc.Risk.AbsoluteFloor != "" {
			v, err := decimal.NewFromString(fc.Risk.AbsoluteFloor)
			if err != nil {
				return fmt.Errorf("risk absolute_floor: %w", err)
			}
			r.risk.AbsoluteFloor = v
		}
		if fc.Risk.DangerRatio != "" {
			v, err := decimal.NewFromString(fc.Risk.DangerRatio)
			if err != nil {
				return fmt.Errorf("risk danger_ratio: %w", err)
			}
			r.risk.DangerRatio = v
		}
	}

	return nil
}

func parseIndex(byYear map[string]string) (map[domain.TaxYear]decimal.Decimal, error) {
	out := make(map[domain.TaxYear]decimal.Decimal, len(byYear))
	for yearStr, valStr := range byYear {
		year, err := domain.ParseTaxYear(yearStr)
		if err != nil {
			return nil, err
		}
		val, err := decimal.NewFromString(valStr)
		if err != nil {
			return nil, fmt.Errorf("year %s: %w", year, err)
		}
		out[year] = val
	}
	return out, nil
}
