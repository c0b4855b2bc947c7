// Package httpapi exposes the record keeper over an HTTP JSON API.
// Handlers stay thin: they decode, delegate to the usecases and encode.
package httpapi

import (
	"net/http"

	chi "github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/taxfolio/backend/internal/domain"
	"github.com/taxfolio/backend/internal/usecase/auditrisk"
	"github.com/taxfolio/backend/internal/usecase/investment"
	"github.com/taxfolio/backend/internal/usecase/liability"
	"github.com/taxfolio/backend/internal/usecase/summary"
	"github.com/taxfolio/backend/internal/usecase/taxcalc"
	"github.com/taxfolio/backend/internal/usecase/valuation"
)

// Repositories groups the persistence interfaces the server needs.
type Repositories struct {
	Entities     domain.EntityRepository
	Assets       domain.AssetRepository
	Liabilities  domain.LiabilityRepository
	Incomes      domain.IncomeRepository
	Certificates domain.CertificateRepository
}

// Server wires handlers and middleware using Chi.
type Server struct {
	repos        Repositories
	calc         *taxcalc.Calculator
	risk         *auditrisk.Engine
	deriver      *investment.Deriver
	normalizer   *valuation.Normalizer
	summarySvc   *summary.SummaryService
	liabilitySvc *liability.LiabilityService
	log          *zap.Logger
	rt           *chi.Mux
}

// New constructs the HTTP server with routes and middleware.
// apiToken guards every route except health and metrics.
func New(
	repos Repositories,
	calc *taxcalc.Calculator,
	risk *auditrisk.Engine,
	deriver *investment.Deriver,
	normalizer *valuation.Normalizer,
	summarySvc *summary.SummaryService,
	liabilitySvc *liability.LiabilityService,
	apiToken string,
	logger *zap.Logger,
) *Server {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(requestLogger(logger))
	r.Use(recoverer(logger))
	r.Use(metricsMiddleware)

	s := &Server{
		repos:        repos,
		calc:         calc,
		risk:         risk,
		deriver:      deriver,
		normalizer:   normalizer,
		summarySvc:   summarySvc,
		liabilitySvc: liabilitySvc,
		log:          logger,
		rt:           r,
	}
	s.routes(apiToken)
	return s
}

// Handler exposes the configured http.Handler.
func (s *Server) Handler() http.Handler { return s.rt }

func (s *Server) routes(apiToken string) {
	s.rt.Get("/healthz", s.healthz)
	s.rt.Get("/readyz", s.healthz)
	s.rt.Method(http.MethodGet, "/metrics", metricsHandler())

	s.rt.Route("/v1", func(r chi.Router) {
		r.Use(bearerAuth(apiToken))

		r.Post("/entities", s.postEntity)
		r.Get("/entities", s.listEntities)
		r.Get("/entities/{id}", s.getEntity)

		r.Post("/assets", s.postAsset)
		r.Get("/assets", s.listAssets)
		r.Get("/assets/{id}", s.getAsset)
		r.Put("/assets/{id}", s.putAsset)
		r.Post("/assets/{id}/valuations", s.postValuation)
		r.Get("/assets/{id}/value", s.getAssetValue)

		r.Post("/liabilities", s.postLiability)
		r.Get("/liabilities", s.listLiabilities)
		r.Get("/liabilities/{id}", s.getLiability)
		r.Post("/liabilities/{id}/payments", s.postPayment)
		r.Delete("/liabilities/{id}/payments/{year}", s.deletePayment)

		r.Post("/incomes", s.postIncome)
		r.Get("/incomes", s.listIncomes)

		r.Post("/certificates", s.postCertificate)
		r.Get("/certificates", s.listCertificates)

		r.Get("/entities/{id}/tax", s.getTaxComputation)
		r.Get("/entities/{id}/tax/export", s.exportTaxComputation)
		r.Get("/entities/{id}/audit-risk", s.getEntityAuditRisk)
		r.Get("/entities/{id}/audit-risk/export", s.exportEntityAuditRisk)
		r.Get("/entities/{id}/investment-income", s.getInvestmentIncome)
		r.Get("/entities/{id}/net-worth", s.getNetWorth)

		r.Get("/family/audit-risk", s.getFamilyAuditRisk)
		r.Get("/family/net-worth", s.getFamilyNetWorth)
		r.Get("/family/checklist", s.getChecklist)
	})
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	toJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
