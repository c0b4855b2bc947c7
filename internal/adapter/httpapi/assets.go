package httpapi

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/taxfolio/backend/internal/domain"
	"go.uber.org/zap"
)

func (s *Server) postAsset(w http.ResponseWriter, r *http.Request) {
	var req assetRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid json: "+err.Error())
		return
	}

	asset, err := req.toDomain(uuid.New())
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := asset.Validate(); err != nil {
		unprocessable(w, err.Error())
		return
	}

	if err := s.repos.Assets.Create(r.Context(), asset); err != nil {
		s.log.Error("create asset", zap.Error(err))
		writeDomainErr(w, err)
		return
	}

	toJSON(w, http.StatusCreated, toAssetResponse(asset))
}

func (s *Server) listAssets(w http.ResponseWriter, r *http.Request) {
	var err error
	var assets []*domain.Asset
	if owner := r.URL.Query().Get("owner"); owner != "" {
		ownerID, parseErr := uuid.Parse(owner)
		if parseErr != nil {
			badRequest(w, "invalid owner")
			return
		}
		assets, err = s.repos.Assets.ListByOwner(r.Context(), ownerID)
	} else {
		assets, err = s.repos.Assets.List(r.Context())
	}
	if err != nil {
		s.log.Error("list assets", zap.Error(err))
		writeDomainErr(w, err)
		return
	}

	out := make([]assetResponse, 0, len(assets))
	for _, a := range assets {
		out = append(out, toAssetResponse(a))
	}
	toJSON(w, http.StatusOK, out)
}

func (s *Server) getAsset(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	asset, err := s.repos.Assets.GetByID(r.Context(), id)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, toAssetResponse(asset))
}

func (s *Server) putAsset(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req assetRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid json: "+err.Error())
		return
	}

	asset, err := req.toDomain(id)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := asset.Validate(); err != nil {
		unprocessable(w, err.Error())
		return
	}

	if err := s.repos.Assets.Update(r.Context(), asset); err != nil {
		s.log.Error("update asset", zap.Error(err))
		writeDomainErr(w, err)
		return
	}

	toJSON(w, http.StatusOK, toAssetResponse(asset))
}

func (s *Server) postValuation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req valuationRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid json: "+err.Error())
		return
	}

	parsed, err := (valuationDTO{TaxYear: req.TaxYear, Value: req.Value, Source: req.Source}).toDomain()
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	valuation, err := s.normalizer.RecordValuation(r.Context(), id, parsed.TaxYear, parsed.Value, parsed.Source)
	if err != nil {
		writeDomainErr(w, err)
		return
	}

	toJSON(w, http.StatusCreated, valuationDTO{
		TaxYear: valuation.TaxYear.String(),
		Value:   valuation.Value.String(),
		Source:  valuation.Source,
	})
}

func (s *Server) getAssetValue(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	year, ok := queryYear(w, r)
	if !ok {
		return
	}

	asset, err := s.repos.Assets.GetByID(r.Context(), id)
	if err != nil {
		writeDomainErr(w, err)
		return
	}

	value := s.normalizer.ResolveValue(asset, year)
	toJSON(w, http.StatusOK, map[string]string{
		"assetId": asset.ID.String(),
		"taxYear": year.String(),
		"value":   value.String(),
	})
}
