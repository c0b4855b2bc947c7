package httpapi

import (
	"net/http"

	chi "github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/taxfolio/backend/internal/domain"
	"go.uber.org/zap"
)

func (s *Server) postEntity(w http.ResponseWriter, r *http.Request) {
	var req entityRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid json: "+err.Error())
		return
	}

	entity, err := req.toDomain()
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := entity.Validate(); err != nil {
		unprocessable(w, err.Error())
		return
	}

	if err := s.repos.Entities.Create(r.Context(), entity); err != nil {
		s.log.Error("create entity", zap.Error(err))
		writeDomainErr(w, err)
		return
	}

	toJSON(w, http.StatusCreated, toEntityResponse(entity))
}

func (s *Server) listEntities(w http.ResponseWriter, r *http.Request) {
	entities, err := s.repos.Entities.List(r.Context())
	if err != nil {
		s.log.Error("list entities", zap.Error(err))
		writeDomainErr(w, err)
		return
	}

	out := make([]entityResponse, 0, len(entities))
	for _, e := range entities {
		out = append(out, toEntityResponse(e))
	}
	toJSON(w, http.StatusOK, out)
}

func (s *Server) getEntity(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	entity, err := s.repos.Entities.GetByID(r.Context(), id)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, toEntityResponse(entity))
}

// pathID parses the {id} path parameter, writing a 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

// queryYear parses the required ?year= query parameter, writing a 400 on failure.
func queryYear(w http.ResponseWriter, r *http.Request) (domain.TaxYear, bool) {
	raw := r.URL.Query().Get("year")
	if raw == "" {
		badRequest(w, "year query parameter is required")
		return 0, false
	}
	year, err := domain.ParseTaxYear(raw)
	if err != nil {
		badRequest(w, "year: "+err.Error())
		return 0, false
	}
	return year, true
}
