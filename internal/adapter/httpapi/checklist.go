package httpapi

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/taxfolio/backend/internal/domain"
	"github.com/taxfolio/backend/internal/usecase/checklist"
)

type recordTaskResponse struct {
	Kind        string     `json:"kind"`
	TaxYear     string     `json:"taxYear"`
	AssetID     *uuid.UUID `json:"assetId,omitempty"`
	LiabilityID *uuid.UUID `json:"liabilityId,omitempty"`
	Subject     string     `json:"subject"`
	Detail      string     `json:"detail"`
}

// getChecklist lists the yearly evidence still missing across the family.
func (s *Server) getChecklist(w http.ResponseWriter, r *http.Request) {
	year, ok := queryYear(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
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

	tasks := checklist.GenerateTasks(assets, liabilities, year)
	out := make([]recordTaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toRecordTaskResponse(t))
	}
	toJSON(w, http.StatusOK, out)
}

func toRecordTaskResponse(t domain.RecordTask) recordTaskResponse {
	resp := recordTaskResponse{
		Kind:    string(t.Kind),
		TaxYear: t.TaxYear.String(),
		Subject: t.Subject,
		Detail:  t.Detail,
	}
	if t.AssetID != uuid.Nil {
		id := t.AssetID
		resp.AssetID = &id
	}
	if t.LiabilityID != uuid.Nil {
		id := t.LiabilityID
		resp.LiabilityID = &id
	}
	return resp
}
