package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/taxfolio/backend/internal/usecase/auditrisk"
	"github.com/taxfolio/backend/internal/usecase/taxcalc"
)

var hundred = decimal.NewFromInt(100)

// Format selects the export encoding
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// Export is an encoded report ready to hand to the client
type Export struct {
	Data        []byte
	Filename    string
	ContentType string
}

// ExportTaxComputation encodes a tax computation as CSV or JSON.
func ExportTaxComputation(comp *taxcalc.TaxComputation, format Format) (*Export, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(comp, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal tax computation: %w", err)
		}
		return &Export{
			Data:        data,
			Filename:    fmt.Sprintf("tax-computation-%d.json", int(comp.TaxYear)),
			ContentType: "application/json",
		}, nil

	case FormatCSV:
		var buf strings.Builder
		w := csv.NewWriter(&buf)
		_ = w.Write([]string{"Field", "Amount (LKR)"})
		_ = w.Write([]string{"Year of Assessment", comp.TaxYear.String()})
		_ = w.Write([]string{"Assessable Income", comp.AssessableIncome.StringFixed(2)})
		_ = w.Write([]string{"Personal Relief", comp.PersonalRelief.StringFixed(2)})
		_ = w.Write([]string{"Taxable Income", comp.TaxableIncome.StringFixed(2)})
		for _, slab := range comp.Slabs {
			label := fmt.Sprintf("Tax at %s%%", slab.Rate.Mul(hundred).StringFixed(0))
			_ = w.Write([]string{label, slab.Tax.StringFixed(2)})
		}
		_ = w.Write([]string{"Tax on Income", comp.TaxOnIncome.StringFixed(2)})
		_ = w.Write([]string{"APIT Credit", comp.TaxCredits.APIT.StringFixed(2)})
		_ = w.Write([]string{"WHT Credit", comp.TaxCredits.WHT.StringFixed(2)})
		_ = w.Write([]string{"Excess Credit", comp.ExcessCredit.StringFixed(2)})
		_ = w.Write([]string{"Tax Payable", comp.TaxPayable.StringFixed(2)})
		w.Flush()
		if err := w.Error(); err != nil {
			return nil, fmt.Errorf("write tax computation csv: %w", err)
		}
		return &Export{
			Data:        []byte(buf.String()),
			Filename:    fmt.Sprintf("tax-computation-%d.csv", int(comp.TaxYear)),
			ContentType: "text/csv",
		}, nil
	}

	return nil, fmt.Errorf("unsupported export format %q", format)
}

// ExportAuditRisk encodes a reconciliation result as CSV or JSON.
func ExportAuditRisk(r *auditrisk.AuditRisk, format Format) (*Export, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal audit risk: %w", err)
		}
		return &Export{
			Data:        data,
			Filename:    fmt.Sprintf("audit-risk-%d.json", int(r.TaxYear)),
			ContentType: "application/json",
		}, nil

	case FormatCSV:
		var buf strings.Builder
		w := csv.NewWriter(&buf)
		_ = w.Write([]string{"Field", "Amount (LKR)"})
		_ = w.Write([]string{"Year of Assessment", r.TaxYear.String()})
		for _, label := range auditrisk.Labels(r.InflowBreakdown) {
			_ = w.Write([]string{"Inflow: " + label, r.InflowBreakdown[label].StringFixed(2)})
		}
		for _, label := range auditrisk.Labels(r.OutflowBreakdown) {
			_ = w.Write([]string{"Outflow: " + label, r.OutflowBreakdown[label].StringFixed(2)})
		}
		_ = w.Write([]string{"Total Inflows", r.TotalInflows.StringFixed(2)})
		_ = w.Write([]string{"Total Outflows (excl. living)", r.TotalOutflowsExcludingLiving.StringFixed(2)})
		_ = w.Write([]string{"Derived Living Expenses", r.DerivedLivingExpenses.StringFixed(2)})
		_ = w.Write([]string{"Risk Score", r.RiskScore.StringFixed(2)})
		_ = w.Write([]string{"Risk Level", string(r.RiskLevel)})
		w.Flush()
		if err := w.Error(); err != nil {
			return nil, fmt.Errorf("write audit risk csv: %w", err)
		}
		return &Export{
			Data:        []byte(buf.String()),
			Filename:    fmt.Sprintf("audit-risk-%d.csv", int(r.TaxYear)),
			ContentType: "text/csv",
		}, nil
	}

	return nil, fmt.Errorf("unsupported export format %q", format)
}
