package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/farewatch/farewatch/internal/breaker"
	"github.com/farewatch/farewatch/internal/canonical"
	"github.com/farewatch/farewatch/internal/domain"
	"github.com/farewatch/farewatch/internal/feed"
	"github.com/farewatch/farewatch/internal/metrics"
	"github.com/farewatch/farewatch/internal/telemetry"
	"github.com/farewatch/farewatch/internal/validate"
)

type SourceRepositoryInterface interface {
	Create(ctx context.Context, src *domain.Source) error
	GetByDomain(ctx context.Context, domainName string) (*domain.Source, error)
	RecordAttempt(ctx context.Context, sourceID string, ok bool, at time.Time) error
	UpdateSuccessRate(ctx context.Context, sourceID string, now time.Time) error
}

type ObservationRecorderInterface interface {
	Record(ctx context.Context, o *domain.Observation) (bool, error)
}

// ResultMatcherInterface is the alert matcher invoked after a batch stores
// at least one new observation.
type ResultMatcherInterface interface {
	MatchNewResults(ctx context.Context, queryID, sourceID string) (int, error)
}

// PayloadArchiveInterface archives raw payloads for later audit. Optional;
// archiving failures never fail a batch.
type PayloadArchiveInterface interface {
	ArchivePayload(ctx context.Context, queryID, observationID string, payload []byte) error
}

type IngestService struct {
	queryRepo       QueryRepositoryInterface
	sourceRepo      SourceRepositoryInterface
	observationRepo ObservationRecorderInterface
	matcher         ResultMatcherInterface
	updates         *feed.Feed
	archive         PayloadArchiveInterface
	store           *breaker.Breaker
	uuidGen         UUIDGenerator
	now             func() time.Time
}

func NewIngestService(
	queryRepo QueryRepositoryInterface,
	sourceRepo SourceRepositoryInterface,
	observationRepo ObservationRecorderInterface,
	matcher ResultMatcherInterface,
	updates *feed.Feed,
	store *breaker.Breaker,
) *IngestService {
	return &IngestService{
		queryRepo:       queryRepo,
		sourceRepo:      sourceRepo,
		observationRepo: observationRepo,
		matcher:         matcher,
		updates:         updates,
		store:           store,
		uuidGen:         &DefaultUUIDGenerator{},
		now:             time.Now,
	}
}

func NewIngestServiceWithArchive(
	queryRepo QueryRepositoryInterface,
	sourceRepo SourceRepositoryInterface,
	observationRepo ObservationRecorderInterface,
	matcher ResultMatcherInterface,
	updates *feed.Feed,
	store *breaker.Breaker,
	archive PayloadArchiveInterface,
) *IngestService {
	s := NewIngestService(queryRepo, sourceRepo, observationRepo, matcher, updates, store)
	s.archive = archive
	return s
}

type IngestInput struct {
	QueryID      string
	SourceDomain string
	Candidates   []domain.Candidate
}

// IngestSummary reports the per-batch outcome. Counts always add up to the
// number of submitted candidates.
type IngestSummary struct {
	Stored    int `json:"stored"`
	Duplicate int `json:"duplicate"`
	Rejected  int `json:"rejected"`
}

// Ingest runs one producer batch through validation, canonical keying,
// batch-level dedup and the result store, then feeds the update buffer and
// the alert matcher. Persistence failures surface as a retryable
// store-unavailable error; validation failures only ever skip the single
// candidate.
func (s *IngestService) Ingest(ctx context.Context, input IngestInput) (*IngestSummary, error) {
	ctx, span := telemetry.StartSpan(ctx, "IngestService.Ingest", telemetry.SpanAttributes{
		QueryID:   input.QueryID,
		Operation: "ingest_batch",
	})
	defer span.End()

	telemetry.AddBreadcrumb(ctx, "ingest",
		fmt.Sprintf("batch of %d candidates from %s", len(input.Candidates), input.SourceDomain))

	var query *domain.SearchQuery
	if err := s.guard(ctx, func(ctx context.Context) error {
		var err error
		query, err = s.queryRepo.GetByID(ctx, input.QueryID)
		return err
	}); err != nil {
		span.SetError(err)
		return nil, err
	}
	if query.Status != domain.QueryStatusActive {
		return nil, domain.NewDomainError(domain.ErrCodeInvalidOperation, "query is archived")
	}

	source, err := s.resolveSource(ctx, input.SourceDomain)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	now := s.now().UTC()
	qctx := validate.QueryContext{
		Origin:      query.Origin,
		Destination: query.Destination,
		DepartDate:  query.DepartDate,
	}

	summary := &IngestSummary{}

	accepted := make([]domain.Candidate, 0, len(input.Candidates))
	for _, c := range input.Candidates {
		if err := validate.Candidate(c, qctx, now); err != nil {
			summary.Rejected++
			metrics.ObservationsRejected.WithLabelValues(source.Domain).Inc()
			log.Printf("ingest: rejected candidate for query %s from %s: %v", query.ID, source.Domain, err)
			continue
		}
		accepted = append(accepted, c)
	}

	// Collapse within the batch on the secondary key, keeping the cheapest
	// offer per (route, carrier, price) bucket. Collapsed candidates count
	// as duplicates.
	bySecondary := make(map[string]domain.Candidate, len(accepted))
	order := make([]string, 0, len(accepted))
	for _, c := range accepted {
		key := canonical.Secondary(c)
		existing, seen := bySecondary[key]
		if !seen {
			bySecondary[key] = c
			order = append(order, key)
			continue
		}
		summary.Duplicate++
		metrics.ObservationsDuplicate.WithLabelValues(source.Domain).Inc()
		if c.Price < existing.Price {
			bySecondary[key] = c
		}
	}

	var persistErr error
	stored := make([]*domain.Observation, 0, len(order))
	for _, key := range order {
		c := bySecondary[key]
		raw, err := json.Marshal(c)
		if err != nil {
			// Candidates arrive as decoded JSON; re-encoding cannot fail
			// for them, but never let one oddity sink the batch.
			log.Printf("ingest: failed to encode payload for query %s: %v", query.ID, err)
			raw = nil
		}

		obs := domain.NewObservation(
			s.uuidGen.NewString(),
			query.ID,
			source.ID,
			c,
			raw,
			canonical.Primary(c),
			key,
			now,
		)

		var inserted bool
		if err := s.guard(ctx, func(ctx context.Context) error {
			var err error
			inserted, err = s.observationRepo.Record(ctx, obs)
			return err
		}); err != nil {
			// Writes are independent; keep going so a transient failure
			// only costs the candidates it touched.
			persistErr = err
			continue
		}

		if inserted {
			summary.Stored++
			metrics.ObservationsStored.WithLabelValues(source.Domain).Inc()
			stored = append(stored, obs)
		} else {
			summary.Duplicate++
			metrics.ObservationsDuplicate.WithLabelValues(source.Domain).Inc()
		}
	}

	for _, obs := range stored {
		s.updates.Append(query.ID, feed.Entry{
			ObservationID: obs.ID,
			Price:         obs.Price,
			Currency:      obs.Currency,
			Origin:        obs.Origin,
			Destination:   obs.Destination,
			SourceDomain:  source.Domain,
			AppendedAt:    now,
		})

		if s.archive != nil && len(obs.RawPayload) > 0 {
			if err := s.archive.ArchivePayload(ctx, query.ID, obs.ID, obs.RawPayload); err != nil {
				log.Printf("ingest: failed to archive payload for observation %s: %v", obs.ID, err)
				telemetry.CaptureError(ctx, err)
			}
		}
	}

	if summary.Stored > 0 {
		if _, err := s.matcher.MatchNewResults(ctx, query.ID, source.ID); err != nil {
			log.Printf("ingest: matcher failed for query %s: %v", query.ID, err)
			telemetry.CaptureError(ctx, err)
		}
	}

	s.recordAttempt(ctx, source.ID, persistErr == nil, now)

	return summary, persistErr
}

// resolveSource looks the producer up by domain, auto-registering unseen
// domains as ad-hoc sources. The concurrent-registration race resolves
// through the domain uniqueness constraint and a re-read.
func (s *IngestService) resolveSource(ctx context.Context, domainName string) (*domain.Source, error) {
	normalized := domain.NormalizeDomain(domainName)

	var src *domain.Source
	err := s.guard(ctx, func(ctx context.Context) error {
		var err error
		src, err = s.sourceRepo.GetByDomain(ctx, normalized)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrSourceNotFound) {
			return err
		}

		candidate := domain.NewSource(s.uuidGen.NewString(), normalized, s.now().UTC())
		if err := s.sourceRepo.Create(ctx, candidate); err != nil {
			return err
		}
		src, err = s.sourceRepo.GetByDomain(ctx, normalized)
		return err
	})
	if err != nil {
		return nil, err
	}
	return src, nil
}

// recordAttempt books the batch outcome against the source and refreshes
// its rolling success rate. Trust bookkeeping is best-effort.
func (s *IngestService) recordAttempt(ctx context.Context, sourceID string, ok bool, at time.Time) {
	if err := s.sourceRepo.RecordAttempt(ctx, sourceID, ok, at); err != nil {
		log.Printf("ingest: failed to record attempt for source %s: %v", sourceID, err)
		return
	}
	if err := s.sourceRepo.UpdateSuccessRate(ctx, sourceID, at); err != nil {
		log.Printf("ingest: failed to update success rate for source %s: %v", sourceID, err)
	}
}

// guard runs a persistence call under the store breaker. Domain outcomes
// (not-found and friends) pass through untouched and count as successful
// calls; anything else trips the breaker and maps to the retryable
// store-unavailable error.
func (s *IngestService) guard(ctx context.Context, fn func(context.Context) error) error {
	if !s.store.Allow(s.now()) {
		return domain.NewDomainErrorWithCause(domain.ErrCodeUnavailable, "result store unavailable", breaker.ErrOpen)
	}

	err := fn(ctx)
	if err == nil {
		s.store.MarkSuccess()
		return nil
	}

	var de *domain.DomainError
	if errors.As(err, &de) {
		s.store.MarkSuccess()
		return err
	}

	s.store.MarkFailure(s.now())
	return domain.NewDomainErrorWithCause(domain.ErrCodeUnavailable, "result store unavailable", err)
}
