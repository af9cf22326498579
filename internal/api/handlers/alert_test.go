package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/farewatch/farewatch/internal/api/middleware"
	"github.com/farewatch/farewatch/internal/domain"
	"github.com/farewatch/farewatch/internal/service"
)

// MockAlertService is a mock implementation of AlertService
type MockAlertService struct {
	mock.Mock
}

func (m *MockAlertService) Create(ctx context.Context, input service.CreateAlertInput) (*domain.Alert, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Alert), args.Error(1)
}

func (m *MockAlertService) ListByUser(ctx context.Context, userID string) ([]*domain.Alert, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Alert), args.Error(1)
}

func (m *MockAlertService) Delete(ctx context.Context, id, userID string) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *MockAlertService) ListMatches(ctx context.Context, input service.ListMatchesInput) (*service.MatchPage, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.MatchPage), args.Error(1)
}

func (m *MockAlertService) MarkSeen(ctx context.Context, id, userID string) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func withUser(req *http.Request, userID string) *http.Request {
	return req.WithContext(context.WithValue(req.Context(), middleware.UserIDKey, userID))
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx, ok := req.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestAlertHandler_Create(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	t.Run("creates an alert", func(t *testing.T) {
		created := domain.NewAlert("alert-1", "user1", domain.AlertTypeCheap, now)
		created.Origin = "LHR"

		svc := new(MockAlertService)
		svc.On("Create", mock.Anything, mock.MatchedBy(func(input service.CreateAlertInput) bool {
			return input.UserID == "user1" &&
				input.Type == domain.AlertTypeCheap &&
				input.Origin == "LHR" &&
				input.DateFrom != nil
		})).Return(created, nil)

		handler := NewAlertHandler(svc)
		body := `{"type": "cheap", "origin": "LHR", "date_from": "2026-10-01", "max_price": 150}`
		req := withUser(httptest.NewRequest(http.MethodPost, "/alerts", strings.NewReader(body)), "user1")
		rec := httptest.NewRecorder()

		handler.Create(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)

		var resp struct {
			Data AlertResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "alert-1", resp.Data.ID)
		assert.Equal(t, "cheap", resp.Data.Type)
		assert.True(t, resp.Data.Active)
		svc.AssertExpectations(t)
	})

	t.Run("requires a type", func(t *testing.T) {
		handler := NewAlertHandler(new(MockAlertService))
		req := withUser(httptest.NewRequest(http.MethodPost, "/alerts", strings.NewReader(`{}`)), "user1")
		rec := httptest.NewRecorder()

		handler.Create(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "type is required")
	})

	t.Run("rejects a malformed travel date", func(t *testing.T) {
		handler := NewAlertHandler(new(MockAlertService))
		body := `{"type": "cheap", "date_from": "next tuesday"}`
		req := withUser(httptest.NewRequest(http.MethodPost, "/alerts", strings.NewReader(body)), "user1")
		rec := httptest.NewRecorder()

		handler.Create(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid date_from")
	})

	t.Run("requires an attributed user", func(t *testing.T) {
		handler := NewAlertHandler(new(MockAlertService))
		req := httptest.NewRequest(http.MethodPost, "/alerts", strings.NewReader(`{"type": "cheap"}`))
		rec := httptest.NewRecorder()

		handler.Create(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAlertHandler_Delete(t *testing.T) {
	t.Run("soft-deletes the user's alert", func(t *testing.T) {
		svc := new(MockAlertService)
		svc.On("Delete", mock.Anything, "alert-1", "user1").Return(nil)

		handler := NewAlertHandler(svc)
		req := withURLParam(withUser(httptest.NewRequest(http.MethodDelete, "/alerts/alert-1", nil), "user1"), "alertID", "alert-1")
		rec := httptest.NewRecorder()

		handler.Delete(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"deleted":true`)
		svc.AssertExpectations(t)
	})

	t.Run("another user's alert maps to 404", func(t *testing.T) {
		svc := new(MockAlertService)
		svc.On("Delete", mock.Anything, "alert-1", "user2").Return(domain.ErrAlertNotFound)

		handler := NewAlertHandler(svc)
		req := withURLParam(withUser(httptest.NewRequest(http.MethodDelete, "/alerts/alert-1", nil), "user2"), "alertID", "alert-1")
		rec := httptest.NewRecorder()

		handler.Delete(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestAlertHandler_ListMatches(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	t.Run("returns the match page", func(t *testing.T) {
		page := &service.MatchPage{
			Items: []*domain.MatchDetail{
				{
					Match: domain.Match{
						ID:            "match-1",
						AlertID:       "alert-1",
						ObservationID: "obs-1",
						MatchedAt:     now,
					},
					AlertType:    domain.AlertTypeCheap,
					Price:        89.99,
					Currency:     "GBP",
					Origin:       "LHR",
					Destination:  "AMS",
					SourceDomain: "kiwi.com",
				},
			},
			NextCursor: "next",
			HasMore:    true,
		}

		svc := new(MockAlertService)
		svc.On("ListMatches", mock.Anything, mock.MatchedBy(func(input service.ListMatchesInput) bool {
			return input.UserID == "user1" && input.Window == time.Hour && input.Limit == 10
		})).Return(page, nil)

		handler := NewAlertHandler(svc)
		req := withUser(httptest.NewRequest(http.MethodGet, "/matches?window=1h&limit=10", nil), "user1")
		rec := httptest.NewRecorder()

		handler.ListMatches(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Data MatchListResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Data.Items, 1)
		assert.Equal(t, "match-1", resp.Data.Items[0].ID)
		assert.Equal(t, "cheap", resp.Data.Items[0].AlertType)
		assert.True(t, resp.Data.HasMore)
	})

	t.Run("rejects a malformed window", func(t *testing.T) {
		handler := NewAlertHandler(new(MockAlertService))
		req := withUser(httptest.NewRequest(http.MethodGet, "/matches?window=yesterday", nil), "user1")
		rec := httptest.NewRecorder()

		handler.ListMatches(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid window")
	})

	t.Run("rejects a non-positive limit", func(t *testing.T) {
		handler := NewAlertHandler(new(MockAlertService))
		req := withUser(httptest.NewRequest(http.MethodGet, "/matches?limit=0", nil), "user1")
		rec := httptest.NewRecorder()

		handler.ListMatches(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid limit")
	})
}

func TestAlertHandler_MarkSeen(t *testing.T) {
	svc := new(MockAlertService)
	svc.On("MarkSeen", mock.Anything, "match-1", "user1").Return(nil)

	handler := NewAlertHandler(svc)
	req := withURLParam(withUser(httptest.NewRequest(http.MethodPost, "/matches/match-1/seen", nil), "user1"), "matchID", "match-1")
	rec := httptest.NewRecorder()

	handler.MarkSeen(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"seen":true`)
	svc.AssertExpectations(t)
}
