package httpapi

import (
	"net/http"

	chi "github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/taxfolio/backend/internal/domain"
	"github.com/taxfolio/backend/internal/usecase/liability"
	"go.uber.org/zap"
)

func (s *Server) postLiability(w http.ResponseWriter, r *http.Request) {
	var req liabilityRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid json: "+err.Error())
		return
	}

	l, err := req.toDomain()
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := l.Validate(); err != nil {
		unprocessable(w, err.Error())
		return
	}

	if err := s.repos.Liabilities.Create(r.Context(), l); err != nil {
		s.log.Error("create liability", zap.Error(err))
		writeDomainErr(w, err)
		return
	}

	toJSON(w, http.StatusCreated, toLiabilityResponse(l))
}

func (s *Server) listLiabilities(w http.ResponseWriter, r *http.Request) {
	var err error
	var liabilities []*domain.Liability
	if owner := r.URL.Query().Get("owner"); owner != "" {
		ownerID, parseErr := uuid.Parse(owner)
		if parseErr != nil {
			badRequest(w, "invalid owner")
			return
		}
		liabilities, err = s.repos.Liabilities.ListByOwner(r.Context(), ownerID)
	} else {
		liabilities, err = s.repos.Liabilities.List(r.Context())
	}
	if err != nil {
		s.log.Error("list liabilities", zap.Error(err))
		writeDomainErr(w, err)
		return
	}

	out := make([]liabilityResponse, 0, len(liabilities))
	for _, l := range liabilities {
		out = append(out, toLiabilityResponse(l))
	}
	toJSON(w, http.StatusOK, out)
}

func (s *Server) getLiability(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	l, err := s.repos.Liabilities.GetByID(r.Context(), id)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, toLiabilityResponse(l))
}

func (s *Server) postPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req paymentRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid json: "+err.Error())
		return
	}

	year, err := domain.ParseTaxYear(req.TaxYear)
	if err != nil {
		badRequest(w, "taxYear: "+err.Error())
		return
	}
	principal, err := parseOptionalAmount(req.PrincipalPaid)
	if err != nil {
		badRequest(w, "principalPaid: "+err.Error())
		return
	}
	interest, err := parseOptionalAmount(req.InterestPaid)
	if err != nil {
		badRequest(w, "interestPaid: "+err.Error())
		return
	}

	updated, err := s.liabilitySvc.RecordPayment(r.Context(), liability.RecordPaymentInput{
		LiabilityID:   id,
		TaxYear:       year,
		PrincipalPaid: principal,
		InterestPaid:  interest,
	})
	if err != nil {
		writeDomainErr(w, err)
		return
	}

	toJSON(w, http.StatusCreated, toLiabilityResponse(updated))
}

func (s *Server) deletePayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	year, err := domain.ParseTaxYear(chi.URLParam(r, "year"))
	if err != nil {
		badRequest(w, "year: "+err.Error())
		return
	}

	updated, err := s.liabilitySvc.DeletePayment(r.Context(), id, year)
	if err != nil {
		writeDomainErr(w, err)
		return
	}

	toJSON(w, http.StatusOK, toLiabilityResponse(updated))
}
