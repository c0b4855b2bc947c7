package httpapi

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/taxfolio/backend/internal/domain"
	"github.com/taxfolio/backend/internal/usecase/auditrisk"
	"github.com/taxfolio/backend/internal/usecase/report"
	"github.com/taxfolio/backend/internal/usecase/taxcalc"
	"go.uber.org/zap"
)

// entityInputs loads everything a per-entity computation needs and rejects
// years before the entity started filing.
func (s *Server) entityInputs(ctx context.Context, entityID uuid.UUID, year domain.TaxYear) (*domain.TaxEntity, []*domain.Income, []*domain.Asset, []*domain.Liability, []*domain.Certificate, error) {
	entity, err := s.repos.Entities.GetByID(ctx, entityID)
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}
	incomes, err := s.repos.Incomes.ListByOwnerYear(ctx, entityID, year)
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}
	assets, err := s.repos.Assets.ListByOwner(ctx, entityID)
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}
	liabilities, err := s.repos.Liabilities.ListByOwner(ctx, entityID)
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}
	certs, err := s.repos.Certificates.ListByOwnerYear(ctx, entityID, year)
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}
	return entity, incomes, assets, liabilities, certs, nil
}

func (s *Server) computeTax(w http.ResponseWriter, r *http.Request) (*taxcalc.TaxComputation, bool) {
	id, ok := pathID(w, r)
	if !ok {
		return nil, false
	}
	year, ok := queryYear(w, r)
	if !ok {
		return nil, false
	}

	adjustment := decimal.Zero
	if raw := r.URL.Query().Get("adjustment"); raw != "" {
		var err error
		if adjustment, err = decimal.NewFromString(raw); err != nil {
			badRequest(w, "adjustment: "+err.Error())
			return nil, false
		}
	}

	entity, incomes, assets, _, certs, err := s.entityInputs(r.Context(), id, year)
	if err != nil {
		writeDomainErr(w, err)
		return nil, false
	}
	if year < entity.FirstTaxYear {
		unprocessable(w, "year precedes the entity's first year of assessment")
		return nil, false
	}

	comp, err := s.calc.ComputeTaxForEntity(id, incomes, assets, year, adjustment, certs)
	if err != nil {
		s.log.Error("compute tax", zap.Error(err), zap.Stringer("entity", id))
		writeDomainErr(w, err)
		return nil, false
	}

	return comp, true
}

func (s *Server) getTaxComputation(w http.ResponseWriter, r *http.Request) {
	comp, ok := s.computeTax(w, r)
	if !ok {
		return
	}
	toJSON(w, http.StatusOK, toTaxComputationResponse(comp))
}

func (s *Server) exportTaxComputation(w http.ResponseWriter, r *http.Request) {
	comp, ok := s.computeTax(w, r)
	if !ok {
		return
	}

	export, err := report.ExportTaxComputation(comp, exportFormat(r))
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	serveExport(w, export)
}

func (s *Server) computeEntityRisk(w http.ResponseWriter, r *http.Request) (*auditrisk.AuditRisk, bool) {
	id, ok := pathID(w, r)
	if !ok {
		return nil, false
	}
	year, ok := queryYear(w, r)
	if !ok {
		return nil, false
	}

	entity, incomes, assets, liabilities, certs, err := s.entityInputs(r.Context(), id, year)
	if err != nil {
		writeDomainErr(w, err)
		return nil, false
	}
	if year < entity.FirstTaxYear {
		unprocessable(w, "year precedes the entity's first year of assessment")
		return nil, false
	}

	risk, err := s.risk.CalculateEntityAuditRisk(id, assets, liabilities, incomes, certs, year)
	if err != nil {
		s.log.Error("audit risk", zap.Error(err), zap.Stringer("entity", id))
		writeDomainErr(w, err)
		return nil, false
	}

	return risk, true
}

func (s *Server) getEntityAuditRisk(w http.ResponseWriter, r *http.Request) {
	risk, ok := s.computeEntityRisk(w, r)
	if !ok {
		return
	}
	toJSON(w, http.StatusOK, toAuditRiskResponse(risk))
}

func (s *Server) exportEntityAuditRisk(w http.ResponseWriter, r *http.Request) {
	risk, ok := s.computeEntityRisk(w, r)
	if !ok {
		return
	}

	export, err := report.ExportAuditRisk(risk, exportFormat(r))
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	serveExport(w, export)
}

func (s *Server) getFamilyAuditRisk(w http.ResponseWriter, r *http.Request) {
	year, ok := queryYear(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	entities, err := s.repos.Entities.List(ctx)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	assets, err := s.repos.Assets.List(ctx)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	liabilities, err := s.repos.Liabilities.List(ctx)
	if err != nil {
		writeDomainErr(w, err)
		return
	}

	var incomes []*domain.Income
	var certs []*domain.Certificate
	for _, e := range entities {
		entityIncomes, err := s.repos.Incomes.ListByOwnerYear(ctx, e.ID, year)
		if err != nil {
			writeDomainErr(w, err)
			return
		}
		incomes = append(incomes, entityIncomes...)
		entityCerts, err := s.repos.Certificates.ListByOwnerYear(ctx, e.ID, year)
		if err != nil {
			writeDomainErr(w, err)
			return
		}
		certs = append(certs, entityCerts...)
	}

	risk, err := s.risk.CalculateFamilyAuditRisk(entities, assets, liabilities, incomes, certs, year)
	if err != nil {
		s.log.Error("family audit risk", zap.Error(err))
		writeDomainErr(w, err)
		return
	}

	toJSON(w, http.StatusOK, toAuditRiskResponse(risk))
}

func (s *Server) getInvestmentIncome(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	year, ok := queryYear(w, r)
	if !ok {
		return
	}

	assets, err := s.repos.Assets.ListByOwner(r.Context(), id)
	if err != nil {
		writeDomainErr(w, err)
		return
	}

	derived := s.deriver.CalculateDerivedInvestmentIncome(assets, year)
	out := make([]incomeResponse, 0, len(derived))
	for _, i := range derived {
		if i.OwnerID != id {
			continue
		}
		out = append(out, toIncomeResponse(i))
	}
	toJSON(w, http.StatusOK, out)
}

func (s *Server) getNetWorth(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	year, ok := queryYear(w, r)
	if !ok {
		return
	}

	result, err := s.summarySvc.GetNetWorth(r.Context(), id, year)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, toNetWorthResponse(result))
}

func (s *Server) getFamilyNetWorth(w http.ResponseWriter, r *http.Request) {
	year, ok := queryYear(w, r)
	if !ok {
		return
	}

	result, err := s.summarySvc.GetFamilyNetWorth(r.Context(), year)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, toNetWorthResponse(result))
}

func exportFormat(r *http.Request) report.Format {
	if f := r.URL.Query().Get("format"); f != "" {
		return report.Format(f)
	}
	return report.FormatJSON
}

func serveExport(w http.ResponseWriter, export *report.Export) {
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(export.Data)
}
