package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farewatch/farewatch/internal/api/handlers"
	"github.com/farewatch/farewatch/internal/domain"
	"github.com/farewatch/farewatch/internal/service"
)

type stubIngestService struct{}

func (s *stubIngestService) Ingest(ctx context.Context, input service.IngestInput) (*service.IngestSummary, error) {
	return &service.IngestSummary{Stored: len(input.Candidates)}, nil
}

type stubQueryService struct{}

func (s *stubQueryService) Create(ctx context.Context, input service.CreateQueryInput) (*domain.SearchQuery, error) {
	return nil, domain.NewDomainError(domain.ErrCodeValidation, "invalid search query")
}

func (s *stubQueryService) GetByID(ctx context.Context, id string) (*domain.SearchQuery, error) {
	return nil, domain.ErrQueryNotFound
}

func (s *stubQueryService) Archive(ctx context.Context, id string) error {
	return domain.ErrQueryNotFound
}

type stubResultService struct{}

func (s *stubResultService) ListByQuery(ctx context.Context, queryID string) (*service.QueryResults, error) {
	return nil, domain.ErrQueryNotFound
}

func (s *stubResultService) PollFeed(ctx context.Context, queryID string, cursor int) (*service.FeedPage, error) {
	return nil, domain.ErrQueryNotFound
}

func (s *stubResultService) Invalidate(ctx context.Context, observationID string) error {
	return domain.ErrObservationNotFound
}

func (s *stubResultService) PayloadURL(ctx context.Context, queryID, observationID string) (string, error) {
	return "", domain.ErrQueryNotFound
}

type stubAlertService struct{}

func (s *stubAlertService) Create(ctx context.Context, input service.CreateAlertInput) (*domain.Alert, error) {
	return nil, domain.NewDomainError(domain.ErrCodeValidation, "invalid alert")
}

func (s *stubAlertService) ListByUser(ctx context.Context, userID string) ([]*domain.Alert, error) {
	return []*domain.Alert{}, nil
}

func (s *stubAlertService) Delete(ctx context.Context, id, userID string) error {
	return domain.ErrAlertNotFound
}

func (s *stubAlertService) ListMatches(ctx context.Context, input service.ListMatchesInput) (*service.MatchPage, error) {
	return &service.MatchPage{}, nil
}

func (s *stubAlertService) MarkSeen(ctx context.Context, id, userID string) error {
	return domain.ErrMatchNotFound
}

func newTestRouter() http.Handler {
	return NewRouter(RouterConfig{
		IngestSecret:    "topsecret",
		IngestHandler:   handlers.NewIngestHandler(&stubIngestService{}),
		QueryHandler:    handlers.NewQueryHandler(&stubQueryService{}, &stubResultService{}),
		AlertHandler:    handlers.NewAlertHandler(&stubAlertService{}),
		AircraftHandler: handlers.NewAircraftHandler(),
	})
}

func TestRouter_Health(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestRouter_Metrics(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_IngestRequiresToken(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/ingest/q1", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_IngestWithToken(t *testing.T) {
	router := newTestRouter()

	body := `{"source": "kiwi.com", "candidates": [{"provider": "kiwi.com", "price": 89.99, "currency": "GBP", "legs": []}]}`
	req := httptest.NewRequest(http.MethodPost, "/ingest/q1", strings.NewReader(body))
	req.Header.Set("X-Ingest-Token", "topsecret")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"stored":1`)
}

func TestRouter_UserRoutesRequireIdentity(t *testing.T) {
	router := newTestRouter()

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/queries"},
		{http.MethodGet, "/queries/q1"},
		{http.MethodGet, "/queries/q1/results"},
		{http.MethodGet, "/alerts"},
		{http.MethodGet, "/matches"},
	}

	for _, p := range paths {
		t.Run(p.method+" "+p.path, func(t *testing.T) {
			req := httptest.NewRequest(p.method, p.path, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestRouter_UserRoutesWithIdentity(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/alerts", nil)
	req.Header.Set("X-User-ID", "user1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_RareAircraftIsPublic(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/aircraft/rare", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "A380")
}
