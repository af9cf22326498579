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

type AlertService interface {
	Create(ctx context.Context, input service.CreateAlertInput) (*domain.Alert, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Alert, error)
	Delete(ctx context.Context, id, userID string) error
	ListMatches(ctx context.Context, input service.ListMatchesInput) (*service.MatchPage, error)
	MarkSeen(ctx context.Context, id, userID string) error
}

type AlertHandler struct {
	svc AlertService
}

func NewAlertHandler(svc AlertService) *AlertHandler {
	return &AlertHandler{svc: svc}
}

type CreateAlertRequest struct {
	Type        string   `json:"type"`
	Origin      string   `json:"origin,omitempty"`
	Destination string   `json:"destination,omitempty"`
	DateFrom    string   `json:"date_from,omitempty"`
	DateTo      string   `json:"date_to,omitempty"`
	MinPrice    *float64 `json:"min_price,omitempty"`
	MaxPrice    *float64 `json:"max_price,omitempty"`
	Aircraft    []string `json:"aircraft,omitempty"`
	OneWayOnly  bool     `json:"one_way_only,omitempty"`
}

type AlertResponse struct {
	ID          string   `json:"id"`
	Type        string   `json:"type"`
	Origin      string   `json:"origin,omitempty"`
	Destination string   `json:"destination,omitempty"`
	DateFrom    string   `json:"date_from,omitempty"`
	DateTo      string   `json:"date_to,omitempty"`
	MinPrice    *float64 `json:"min_price,omitempty"`
	MaxPrice    *float64 `json:"max_price,omitempty"`
	Aircraft    []string `json:"aircraft,omitempty"`
	OneWayOnly  bool     `json:"one_way_only"`
	Active      bool     `json:"active"`
	CreatedAt   string   `json:"created_at"`
}

func alertToResponse(a *domain.Alert) *AlertResponse {
	resp := &AlertResponse{
		ID:          a.ID,
		Type:        string(a.Type),
		Origin:      a.Origin,
		Destination: a.Destination,
		MinPrice:    a.MinPrice,
		MaxPrice:    a.MaxPrice,
		Aircraft:    a.Aircraft,
		OneWayOnly:  a.OneWayOnly,
		Active:      a.Active,
		CreatedAt:   a.CreatedAt.UTC().Format(time.RFC3339),
	}
	if a.DateFrom != nil {
		resp.DateFrom = a.DateFrom.UTC().Format("2006-01-02")
	}
	if a.DateTo != nil {
		resp.DateTo = a.DateTo.UTC().Format("2006-01-02")
	}
	return resp
}

func (h *AlertHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Type == "" {
		api.Error(w, http.StatusBadRequest, "type is required")
		return
	}

	dateFrom, err := parseDate(req.DateFrom)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "invalid date_from")
		return
	}
	dateTo, err := parseDate(req.DateTo)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "invalid date_to")
		return
	}

	alert, err := h.svc.Create(r.Context(), service.CreateAlertInput{
		UserID:      userID,
		Type:        domain.AlertType(req.Type),
		Origin:      req.Origin,
		Destination: req.Destination,
		DateFrom:    dateFrom,
		DateTo:      dateTo,
		MinPrice:    req.MinPrice,
		MaxPrice:    req.MaxPrice,
		Aircraft:    req.Aircraft,
		OneWayOnly:  req.OneWayOnly,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, alertToResponse(alert))
}

func (h *AlertHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	alerts, err := h.svc.ListByUser(r.Context(), userID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	items := make([]*AlertResponse, 0, len(alerts))
	for _, a := range alerts {
		items = append(items, alertToResponse(a))
	}

	api.Success(w, http.StatusOK, items)
}

func (h *AlertHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	alertID := chi.URLParam(r, "alertID")
	if err := h.svc.Delete(r.Context(), alertID, userID); err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, map[string]bool{"deleted": true})
}

type MatchResponse struct {
	ID            string  `json:"id"`
	AlertID       string  `json:"alert_id"`
	ObservationID string  `json:"observation_id"`
	AlertType     string  `json:"alert_type"`
	Price         float64 `json:"price"`
	Currency      string  `json:"currency"`
	Carrier       string  `json:"carrier,omitempty"`
	Origin        string  `json:"origin"`
	Destination   string  `json:"destination"`
	SourceDomain  string  `json:"source_domain"`
	MatchedAt     string  `json:"matched_at"`
	Seen          bool    `json:"seen"`
}

type MatchListResponse struct {
	Items      []*MatchResponse `json:"items"`
	NextCursor string           `json:"next_cursor,omitempty"`
	HasMore    bool             `json:"has_more"`
}

func matchToResponse(m *domain.MatchDetail) *MatchResponse {
	return &MatchResponse{
		ID:            m.ID,
		AlertID:       m.AlertID,
		ObservationID: m.ObservationID,
		AlertType:     string(m.AlertType),
		Price:         m.Price,
		Currency:      m.Currency,
		Carrier:       m.Carrier,
		Origin:        m.Origin,
		Destination:   m.Destination,
		SourceDomain:  m.SourceDomain,
		MatchedAt:     m.MatchedAt.UTC().Format(time.RFC3339),
		Seen:          m.Seen,
	}
}

func (h *AlertHandler) ListMatches(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var window time.Duration
	if raw := r.URL.Query().Get("window"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil || parsed <= 0 {
			api.Error(w, http.StatusBadRequest, "invalid window")
			return
		}
		window = parsed
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			api.Error(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	page, err := h.svc.ListMatches(r.Context(), service.ListMatchesInput{
		UserID: userID,
		Window: window,
		Cursor: r.URL.Query().Get("cursor"),
		Limit:  limit,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	items := make([]*MatchResponse, 0, len(page.Items))
	for _, m := range page.Items {
		items = append(items, matchToResponse(m))
	}

	api.Success(w, http.StatusOK, &MatchListResponse{
		Items:      items,
		NextCursor: page.NextCursor,
		HasMore:    page.HasMore,
	})
}

func (h *AlertHandler) MarkSeen(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	matchID := chi.URLParam(r, "matchID")
	if err := h.svc.MarkSeen(r.Context(), matchID, userID); err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, map[string]bool{"seen": true})
}
