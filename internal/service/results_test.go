package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/farewatch/farewatch/internal/domain"
	"github.com/farewatch/farewatch/internal/feed"
)

// MockObservationRepository is a mock implementation of ObservationRepositoryInterface
type MockObservationRepository struct {
	mock.Mock
}

func (m *MockObservationRepository) ListByQuery(ctx context.Context, queryID string) ([]*domain.RankedObservation, error) {
	args := m.Called(ctx, queryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.RankedObservation), args.Error(1)
}

func (m *MockObservationRepository) SetValidity(ctx context.Context, id string, valid bool) error {
	args := m.Called(ctx, id, valid)
	return args.Error(0)
}

func (m *MockObservationRepository) Stats(ctx context.Context, queryID string) (*domain.RouteStats, error) {
	args := m.Called(ctx, queryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RouteStats), args.Error(1)
}

func TestResultService_ListByQuery(t *testing.T) {
	ctx := context.Background()

	t.Run("returns ranked observations with stats", func(t *testing.T) {
		queryRepo := new(MockQueryRepository)
		obsRepo := new(MockObservationRepository)

		ranked := []*domain.RankedObservation{
			{Observation: *storedObservation(nil), SourceDomain: "kiwi.com"},
		}
		stats := &domain.RouteStats{Count: 1, MinPrice: 89.99, MaxPrice: 89.99, AvgPrice: 89.99}

		queryRepo.On("GetByID", mock.Anything, "q1").Return(activeQuery(), nil)
		obsRepo.On("ListByQuery", mock.Anything, "q1").Return(ranked, nil)
		obsRepo.On("Stats", mock.Anything, "q1").Return(stats, nil)

		svc := NewResultService(queryRepo, obsRepo, feed.New())

		results, err := svc.ListByQuery(ctx, "q1")
		require.NoError(t, err)
		assert.Len(t, results.Items, 1)
		assert.Equal(t, stats, results.Stats)
	})

	t.Run("unknown query returns not found", func(t *testing.T) {
		queryRepo := new(MockQueryRepository)
		obsRepo := new(MockObservationRepository)

		queryRepo.On("GetByID", mock.Anything, "missing").Return(nil, domain.ErrQueryNotFound)

		svc := NewResultService(queryRepo, obsRepo, feed.New())

		_, err := svc.ListByQuery(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrQueryNotFound)
		obsRepo.AssertNotCalled(t, "ListByQuery", mock.Anything, mock.Anything)
	})
}

func TestResultService_PollFeed(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	t.Run("drains entries past the cursor", func(t *testing.T) {
		queryRepo := new(MockQueryRepository)
		queryRepo.On("GetByID", mock.Anything, "q1").Return(activeQuery(), nil)

		updates := feed.New()
		updates.Append("q1", feed.Entry{ObservationID: "obs-1", Price: 89.99, AppendedAt: now})
		updates.Append("q1", feed.Entry{ObservationID: "obs-2", Price: 125.50, AppendedAt: now})

		svc := NewResultService(queryRepo, new(MockObservationRepository), updates)

		page, err := svc.PollFeed(ctx, "q1", 0)
		require.NoError(t, err)
		require.Len(t, page.Entries, 2)
		assert.Equal(t, "obs-1", page.Entries[0].ObservationID)
		assert.Equal(t, 2, page.Cursor)

		// Resuming from the returned cursor redelivers nothing.
		page, err = svc.PollFeed(ctx, "q1", page.Cursor)
		require.NoError(t, err)
		assert.Empty(t, page.Entries)
		assert.Equal(t, 2, page.Cursor)
	})

	t.Run("unknown query returns not found", func(t *testing.T) {
		queryRepo := new(MockQueryRepository)
		queryRepo.On("GetByID", mock.Anything, "missing").Return(nil, domain.ErrQueryNotFound)

		svc := NewResultService(queryRepo, new(MockObservationRepository), feed.New())

		_, err := svc.PollFeed(ctx, "missing", 0)
		assert.ErrorIs(t, err, domain.ErrQueryNotFound)
	})
}

func TestResultService_Invalidate(t *testing.T) {
	obsRepo := new(MockObservationRepository)
	obsRepo.On("SetValidity", mock.Anything, "obs-1", false).Return(nil)

	svc := NewResultService(new(MockQueryRepository), obsRepo, feed.New())

	require.NoError(t, svc.Invalidate(context.Background(), "obs-1"))
	obsRepo.AssertExpectations(t)
}

// MockPayloadArchive is a mock implementation of PayloadArchiveReader
type MockPayloadArchive struct {
	mock.Mock
}

func (m *MockPayloadArchive) GenerateDownloadURL(ctx context.Context, queryID, observationID string) (string, error) {
	args := m.Called(ctx, queryID, observationID)
	return args.String(0), args.Error(1)
}

func TestResultService_PayloadURL(t *testing.T) {
	ctx := context.Background()

	t.Run("returns a presigned url", func(t *testing.T) {
		queryRepo := new(MockQueryRepository)
		queryRepo.On("GetByID", mock.Anything, "q1").Return(activeQuery(), nil)

		archive := new(MockPayloadArchive)
		archive.On("GenerateDownloadURL", mock.Anything, "q1", "obs-1").
			Return("https://archive.example/payloads/q1/obs-1.json", nil)

		svc := NewResultServiceWithArchive(queryRepo, new(MockObservationRepository), feed.New(), archive)

		url, err := svc.PayloadURL(ctx, "q1", "obs-1")
		require.NoError(t, err)
		assert.Equal(t, "https://archive.example/payloads/q1/obs-1.json", url)
	})

	t.Run("fails when no archive is configured", func(t *testing.T) {
		svc := NewResultService(new(MockQueryRepository), new(MockObservationRepository), feed.New())

		_, err := svc.PayloadURL(ctx, "q1", "obs-1")

		var domainErr *domain.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, domain.ErrCodeInvalidOperation, domainErr.Code)
	})

	t.Run("unknown query returns not found", func(t *testing.T) {
		queryRepo := new(MockQueryRepository)
		queryRepo.On("GetByID", mock.Anything, "missing").Return(nil, domain.ErrQueryNotFound)

		svc := NewResultServiceWithArchive(queryRepo, new(MockObservationRepository), feed.New(), new(MockPayloadArchive))

		_, err := svc.PayloadURL(ctx, "missing", "obs-1")
		assert.ErrorIs(t, err, domain.ErrQueryNotFound)
	})

	t.Run("wraps archive failures as unavailable", func(t *testing.T) {
		queryRepo := new(MockQueryRepository)
		queryRepo.On("GetByID", mock.Anything, "q1").Return(activeQuery(), nil)

		archive := new(MockPayloadArchive)
		archive.On("GenerateDownloadURL", mock.Anything, "q1", "obs-1").Return("", assert.AnError)

		svc := NewResultServiceWithArchive(queryRepo, new(MockObservationRepository), feed.New(), archive)

		_, err := svc.PayloadURL(ctx, "q1", "obs-1")

		var domainErr *domain.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, domain.ErrCodeUnavailable, domainErr.Code)
	})
}
