package httpapi

import (
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (s *Server) postIncome(w http.ResponseWriter, r *http.Request) {
	var req incomeRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid json: "+err.Error())
		return
	}

	income, err := req.toDomain()
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := income.Validate(); err != nil {
		unprocessable(w, err.Error())
		return
	}

	if err := s.repos.Incomes.Create(r.Context(), income); err != nil {
		s.log.Error("create income", zap.Error(err))
		writeDomainErr(w, err)
		return
	}

	toJSON(w, http.StatusCreated, toIncomeResponse(income))
}

// listIncomes returns the stored records for ?owner= and ?year=.
// Derived schedule 3 income is served per entity under investment-income.
func (s *Server) listIncomes(w http.ResponseWriter, r *http.Request) {
	owner := r.URL.Query().Get("owner")
	if owner == "" {
		badRequest(w, "owner query parameter is required")
		return
	}
	ownerID, err := uuid.Parse(owner)
	if err != nil {
		badRequest(w, "invalid owner")
		return
	}
	year, ok := queryYear(w, r)
	if !ok {
		return
	}

	incomes, err := s.repos.Incomes.ListByOwnerYear(r.Context(), ownerID, year)
	if err != nil {
		s.log.Error("list incomes", zap.Error(err))
		writeDomainErr(w, err)
		return
	}

	out := make([]incomeResponse, 0, len(incomes))
	for _, i := range incomes {
		out = append(out, toIncomeResponse(i))
	}
	toJSON(w, http.StatusOK, out)
}

func (s *Server) postCertificate(w http.ResponseWriter, r *http.Request) {
	var req certificateRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid json: "+err.Error())
		return
	}

	cert, err := req.toDomain()
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := cert.Validate(); err != nil {
		unprocessable(w, err.Error())
		return
	}

	if err := s.repos.Certificates.Create(r.Context(), cert); err != nil {
		s.log.Error("create certificate", zap.Error(err))
		writeDomainErr(w, err)
		return
	}

	toJSON(w, http.StatusCreated, toCertificateResponse(cert))
}

func (s *Server) listCertificates(w http.ResponseWriter, r *http.Request) {
	owner := r.URL.Query().Get("owner")
	if owner == "" {
		badRequest(w, "owner query parameter is required")
		return
	}
	ownerID, err := uuid.Parse(owner)
	if err != nil {
		badRequest(w, "invalid owner")
		return
	}
	year, ok := queryYear(w, r)
	if !ok {
		return
	}

	certs, err := s.repos.Certificates.ListByOwnerYear(r.Context(), ownerID, year)
	if err != nil {
		s.log.Error("list certificates", zap.Error(err))
		writeDomainErr(w, err)
		return
	}

	out := make([]certificateResponse, 0, len(certs))
	for _, c := range certs {
		out = append(out, toCertificateResponse(c))
	}
	toJSON(w, http.StatusOK, out)
}
