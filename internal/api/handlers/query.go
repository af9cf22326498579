package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/farewatch/farewatch/internal/api"
	"github.com/farewatch/farewatch/internal/api/middleware"
	"github.com/farewatch/farewatch/internal/domain"
	"github.com/farewatch/farewatch/internal/service"
)

type QueryService interface {
	Create(ctx context.Context, input service.CreateQueryInput) (*domain.SearchQuery, error)
	GetByID(ctx context.Context, id string) (*domain.SearchQuery, error)
	Archive(ctx context.Context, id string) error
}

type ResultService interface {
	ListByQuery(ctx context.Context, queryID string) (*service.QueryResults, error)
	PollFeed(ctx context.Context, queryID string, cursor int) (*service.FeedPage, error)
	Invalidate(ctx context.Context, observationID string) error
	PayloadURL(ctx context.Context, queryID, observationID string) (string, error)
}

type QueryHandler struct {
	queries QueryService
	results ResultService
}

func NewQueryHandler(queries QueryService, results ResultService) *QueryHandler {
	return &QueryHandler{queries: queries, results: results}
}

type CreateQueryRequest struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	DepartDate  string `json:"depart_date,omitempty"`
	ReturnDate  string `json:"return_date,omitempty"`
	Cabin       string `json:"cabin,omitempty"`
	Passengers  int    `json:"passengers,omitempty"`
}

type QueryResponse struct {
	ID          string `json:"id"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	DepartDate  string `json:"depart_date,omitempty"`
	ReturnDate  string `json:"return_date,omitempty"`
	Cabin       string `json:"cabin"`
	Passengers  int    `json:"passengers"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
}

func queryToResponse(q *domain.SearchQuery) *QueryResponse {
	resp := &QueryResponse{
		ID:          q.ID,
		Origin:      q.Origin,
		Destination: q.Destination,
		Cabin:       string(q.Cabin),
		Passengers:  q.Passengers,
		Status:      string(q.Status),
		CreatedAt:   q.CreatedAt.UTC().Format(time.RFC3339),
	}
	if q.DepartDate != nil {
		resp.DepartDate = q.DepartDate.UTC().Format("2006-01-02")
	}
	if q.ReturnDate != nil {
		resp.ReturnDate = q.ReturnDate.UTC().Format("2006-01-02")
	}
	return resp
}

func (h *QueryHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Origin == "" {
		api.Error(w, http.StatusBadRequest, "origin is required")
		return
	}
	if req.Destination == "" {
		api.Error(w, http.StatusBadRequest, "destination is required")
		return
	}

	departDate, err := parseDate(req.DepartDate)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "invalid depart_date")
		return
	}
	returnDate, err := parseDate(req.ReturnDate)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "invalid return_date")
		return
	}

	query, err := h.queries.Create(r.Context(), service.CreateQueryInput{
		Origin:      req.Origin,
		Destination: req.Destination,
		DepartDate:  departDate,
		ReturnDate:  returnDate,
		Cabin:       domain.CabinClass(req.Cabin),
		Passengers:  req.Passengers,
		UserID:      userID,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, queryToResponse(query))
}

func (h *QueryHandler) Get(w http.ResponseWriter, r *http.Request) {
	queryID := chi.URLParam(r, "queryID")

	query, err := h.queries.GetByID(r.Context(), queryID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, queryToResponse(query))
}

func (h *QueryHandler) Archive(w http.ResponseWriter, r *http.Request) {
	queryID := chi.URLParam(r, "queryID")

	if err := h.queries.Archive(r.Context(), queryID); err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, map[string]string{"status": string(domain.QueryStatusArchived)})
}

type ObservationResponse struct {
	ID            string   `json:"id"`
	Price         float64  `json:"price"`
	Currency      string   `json:"currency"`
	Origin        string   `json:"origin"`
	Destination   string   `json:"destination"`
	Carriers      []string `json:"carriers"`
	FlightNumbers []string `json:"flight_numbers"`
	Aircraft      []string `json:"aircraft,omitempty"`
	Stops         int      `json:"stops"`
	FareBrand     string   `json:"fare_brand,omitempty"`
	SourceDomain  string   `json:"source_domain"`
	SourceTrusted bool     `json:"source_trusted"`
	FetchedAt     string   `json:"fetched_at"`
}

type RouteStatsResponse struct {
	Count    int     `json:"count"`
	MinPrice float64 `json:"min_price"`
	MaxPrice float64 `json:"max_price"`
	AvgPrice float64 `json:"avg_price"`
}

type ResultsResponse struct {
	Items []*ObservationResponse `json:"items"`
	Stats *RouteStatsResponse    `json:"stats"`
}

func observationToResponse(o *domain.RankedObservation) *ObservationResponse {
	return &ObservationResponse{
		ID:            o.ID,
		Price:         o.Price,
		Currency:      o.Currency,
		Origin:        o.Origin,
		Destination:   o.Destination,
		Carriers:      o.Carriers,
		FlightNumbers: o.FlightNumbers,
		Aircraft:      o.Aircraft,
		Stops:         o.Stops,
		FareBrand:     o.FareBrand,
		SourceDomain:  o.SourceDomain,
		SourceTrusted: o.SourceTrusted,
		FetchedAt:     o.FetchedAt.UTC().Format(time.RFC3339),
	}
}

func (h *QueryHandler) ListResults(w http.ResponseWriter, r *http.Request) {
	queryID := chi.URLParam(r, "queryID")

	results, err := h.results.ListByQuery(r.Context(), queryID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	items := make([]*ObservationResponse, 0, len(results.Items))
	for _, o := range results.Items {
		items = append(items, observationToResponse(o))
	}

	api.Success(w, http.StatusOK, &ResultsResponse{
		Items: items,
		Stats: &RouteStatsResponse{
			Count:    results.Stats.Count,
			MinPrice: results.Stats.MinPrice,
			MaxPrice: results.Stats.MaxPrice,
			AvgPrice: results.Stats.AvgPrice,
		},
	})
}

func (h *QueryHandler) PollFeed(w http.ResponseWriter, r *http.Request) {
	queryID := chi.URLParam(r, "queryID")

	cursor := 0
	if raw := r.URL.Query().Get("cursor"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			api.Error(w, http.StatusBadRequest, "invalid cursor")
			return
		}
		cursor = parsed
	}

	page, err := h.results.PollFeed(r.Context(), queryID, cursor)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, page)
}

func (h *QueryHandler) InvalidateResult(w http.ResponseWriter, r *http.Request) {
	observationID := chi.URLParam(r, "observationID")

	if err := h.results.Invalidate(r.Context(), observationID); err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, map[string]bool{"invalidated": true})
}

func (h *QueryHandler) ResultPayloadURL(w http.ResponseWriter, r *http.Request) {
	queryID := chi.URLParam(r, "queryID")
	observationID := chi.URLParam(r, "observationID")

	url, err := h.results.PayloadURL(r.Context(), queryID, observationID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, map[string]string{"url": url})
}

func parseDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
