package service

import (
	"context"

	"github.com/farewatch/farewatch/internal/domain"
	"github.com/farewatch/farewatch/internal/feed"
	"github.com/farewatch/farewatch/internal/telemetry"
)

type ObservationRepositoryInterface interface {
	ListByQuery(ctx context.Context, queryID string) ([]*domain.RankedObservation, error)
	SetValidity(ctx context.Context, id string, valid bool) error
	Stats(ctx context.Context, queryID string) (*domain.RouteStats, error)
}

// PayloadArchiveReader resolves presigned download URLs for archived raw
// payloads.
type PayloadArchiveReader interface {
	GenerateDownloadURL(ctx context.Context, queryID, observationID string) (string, error)
}

type ResultService struct {
	queryRepo       QueryRepositoryInterface
	observationRepo ObservationRepositoryInterface
	updates         *feed.Feed
	archive         PayloadArchiveReader
}

func NewResultService(
	queryRepo QueryRepositoryInterface,
	observationRepo ObservationRepositoryInterface,
	updates *feed.Feed,
) *ResultService {
	return &ResultService{
		queryRepo:       queryRepo,
		observationRepo: observationRepo,
		updates:         updates,
	}
}

// NewResultServiceWithArchive additionally exposes the raw payload archive
// for audit downloads.
func NewResultServiceWithArchive(
	queryRepo QueryRepositoryInterface,
	observationRepo ObservationRepositoryInterface,
	updates *feed.Feed,
	archive PayloadArchiveReader,
) *ResultService {
	svc := NewResultService(queryRepo, observationRepo, updates)
	svc.archive = archive
	return svc
}

// QueryResults is the ranked result set for one query plus its route
// statistics.
type QueryResults struct {
	Items []*domain.RankedObservation
	Stats *domain.RouteStats
}

// ListByQuery returns the valid observations for a query, cheapest first
// with trusted sources breaking ties.
func (s *ResultService) ListByQuery(ctx context.Context, queryID string) (*QueryResults, error) {
	ctx, span := telemetry.StartSpan(ctx, "ResultService.ListByQuery", telemetry.SpanAttributes{
		QueryID:   queryID,
		Operation: "list_results",
	})
	defer span.End()

	if _, err := s.queryRepo.GetByID(ctx, queryID); err != nil {
		return nil, err
	}

	items, err := s.observationRepo.ListByQuery(ctx, queryID)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	stats, err := s.observationRepo.Stats(ctx, queryID)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	return &QueryResults{Items: items, Stats: stats}, nil
}

// FeedPage is one poll of a query's update feed: the entries past the
// caller's cursor and the cursor to resume from.
type FeedPage struct {
	Entries []feed.Entry `json:"entries"`
	Cursor  int          `json:"cursor"`
}

// PollFeed drains the query's update feed past the given cursor. The feed
// is in-process and best-effort; callers needing durability read the
// ranked results instead.
func (s *ResultService) PollFeed(ctx context.Context, queryID string, cursor int) (*FeedPage, error) {
	if _, err := s.queryRepo.GetByID(ctx, queryID); err != nil {
		return nil, err
	}

	entries, next := s.updates.Since(queryID, cursor)
	return &FeedPage{Entries: entries, Cursor: next}, nil
}

// Invalidate flips an observation to invalid so it drops out of rankings
// without deleting the row.
func (s *ResultService) Invalidate(ctx context.Context, observationID string) error {
	return s.observationRepo.SetValidity(ctx, observationID, false)
}

// PayloadURL returns a presigned download URL for an observation's archived
// raw payload, for auditing disputed prices.
func (s *ResultService) PayloadURL(ctx context.Context, queryID, observationID string) (string, error) {
	if s.archive == nil {
		return "", domain.NewDomainError(domain.ErrCodeInvalidOperation, "payload archive is not configured")
	}

	if _, err := s.queryRepo.GetByID(ctx, queryID); err != nil {
		return "", err
	}

	url, err := s.archive.GenerateDownloadURL(ctx, queryID, observationID)
	if err != nil {
		return "", domain.NewDomainErrorWithCause(domain.ErrCodeUnavailable, "payload archive unavailable", err)
	}

	return url, nil
}
