package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/farewatch/farewatch/internal/api"
	"github.com/farewatch/farewatch/internal/domain"
	"github.com/farewatch/farewatch/internal/service"
)

type IngestService interface {
	Ingest(ctx context.Context, input service.IngestInput) (*service.IngestSummary, error)
}

type IngestHandler struct {
	svc IngestService
}

func NewIngestHandler(svc IngestService) *IngestHandler {
	return &IngestHandler{svc: svc}
}

type IngestRequest struct {
	Source     string             `json:"source"`
	Candidates []domain.Candidate `json:"candidates"`
}

// Ingest accepts one producer batch for a query. A failed batch is safe to
// resubmit wholesale: the store absorbs the replays as duplicates.
func (h *IngestHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	queryID := chi.URLParam(r, "queryID")

	var req IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Source == "" {
		api.Error(w, http.StatusBadRequest, "source is required")
		return
	}
	if len(req.Candidates) == 0 {
		api.Error(w, http.StatusBadRequest, "candidates are required")
		return
	}

	summary, err := h.svc.Ingest(r.Context(), service.IngestInput{
		QueryID:      queryID,
		SourceDomain: req.Source,
		Candidates:   req.Candidates,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, summary)
}
