package service

import (
	"context"
	"log"
	"time"

	"github.com/farewatch/farewatch/internal/domain"
	"github.com/farewatch/farewatch/internal/metrics"
	"github.com/farewatch/farewatch/internal/pagination"
	"github.com/farewatch/farewatch/internal/telemetry"
)

// returnTripLegCount is the leg count at which an itinerary is treated as a
// return trip for one-way-only alerts.
const returnTripLegCount = 2

const (
	defaultMatchWindow = 15 * time.Minute
	defaultMatchLimit  = 50
	maxMatchLimit      = 200
)

type AlertRepositoryInterface interface {
	Create(ctx context.Context, a *domain.Alert) error
	GetByID(ctx context.Context, id string) (*domain.Alert, error)
	ListActive(ctx context.Context) ([]*domain.Alert, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Alert, error)
	Deactivate(ctx context.Context, id, userID string) error
}

type MatchRepositoryInterface interface {
	Create(ctx context.Context, m *domain.Match) (bool, error)
	ListByUser(ctx context.Context, userID string, since time.Time, cursor *pagination.Cursor, limit int) (*MatchPage, error)
	MarkSeen(ctx context.Context, id, userID string) error
}

type RecentObservationListerInterface interface {
	ListRecent(ctx context.Context, queryID, sourceID string, since time.Time) ([]*domain.Observation, error)
}

type AlertService struct {
	alertRepo       AlertRepositoryInterface
	matchRepo       MatchRepositoryInterface
	observationRepo RecentObservationListerInterface
	matchWindow     time.Duration
	uuidGen         UUIDGenerator
	now             func() time.Time
}

func NewAlertService(
	alertRepo AlertRepositoryInterface,
	matchRepo MatchRepositoryInterface,
	observationRepo RecentObservationListerInterface,
	matchWindow time.Duration,
) *AlertService {
	if matchWindow <= 0 {
		matchWindow = defaultMatchWindow
	}
	return &AlertService{
		alertRepo:       alertRepo,
		matchRepo:       matchRepo,
		observationRepo: observationRepo,
		matchWindow:     matchWindow,
		uuidGen:         &DefaultUUIDGenerator{},
		now:             time.Now,
	}
}

type CreateAlertInput struct {
	UserID      string
	Type        domain.AlertType
	Origin      string
	Destination string
	DateFrom    *time.Time
	DateTo      *time.Time
	MinPrice    *float64
	MaxPrice    *float64
	Aircraft    []string
	OneWayOnly  bool
}

func (s *AlertService) Create(ctx context.Context, input CreateAlertInput) (*domain.Alert, error) {
	ctx, span := telemetry.StartSpan(ctx, "AlertService.Create", telemetry.SpanAttributes{
		UserID:    input.UserID,
		Operation: "create_alert",
	})
	defer span.End()

	a := domain.NewAlert(s.uuidGen.NewString(), input.UserID, input.Type, s.now().UTC())
	a.Origin = input.Origin
	a.Destination = input.Destination
	a.DateFrom = input.DateFrom
	a.DateTo = input.DateTo
	a.MinPrice = input.MinPrice
	a.MaxPrice = input.MaxPrice
	a.Aircraft = input.Aircraft
	a.OneWayOnly = input.OneWayOnly

	if err := domain.ValidateAlert(a); err != nil {
		span.SetError(err)
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid alert", err)
	}

	if err := s.alertRepo.Create(ctx, a); err != nil {
		span.SetError(err)
		return nil, err
	}
	return a, nil
}

func (s *AlertService) ListByUser(ctx context.Context, userID string) ([]*domain.Alert, error) {
	return s.alertRepo.ListByUser(ctx, userID)
}

// Delete soft-deletes one of the user's alerts. Existing matches survive.
func (s *AlertService) Delete(ctx context.Context, id, userID string) error {
	ctx, span := telemetry.StartSpan(ctx, "AlertService.Delete", telemetry.SpanAttributes{
		AlertID:   id,
		UserID:    userID,
		Operation: "delete_alert",
	})
	defer span.End()

	return s.alertRepo.Deactivate(ctx, id, userID)
}

type ListMatchesInput struct {
	UserID string
	Window time.Duration
	Cursor string
	Limit  int
}

func (s *AlertService) ListMatches(ctx context.Context, input ListMatchesInput) (*MatchPage, error) {
	ctx, span := telemetry.StartSpan(ctx, "AlertService.ListMatches", telemetry.SpanAttributes{
		UserID:    input.UserID,
		Operation: "list_matches",
	})
	defer span.End()

	window := input.Window
	if window <= 0 {
		window = 24 * time.Hour
	}
	limit := input.Limit
	if limit <= 0 {
		limit = defaultMatchLimit
	}
	if limit > maxMatchLimit {
		limit = maxMatchLimit
	}

	cursor, err := pagination.DecodeCursor(input.Cursor)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid cursor", err)
	}

	since := s.now().UTC().Add(-window)
	return s.matchRepo.ListByUser(ctx, input.UserID, since, cursor, limit)
}

func (s *AlertService) MarkSeen(ctx context.Context, id, userID string) error {
	return s.matchRepo.MarkSeen(ctx, id, userID)
}

// MatchNewResults evaluates every active alert against the observations the
// source stored for the query within the match window, recording one match
// per (alert, observation) pair. Re-running over the same window is safe:
// the uniqueness constraint absorbs replays. Malformed alerts and
// observations are skipped and logged, never fatal.
func (s *AlertService) MatchNewResults(ctx context.Context, queryID, sourceID string) (int, error) {
	ctx, span := telemetry.StartSpan(ctx, "AlertService.MatchNewResults", telemetry.SpanAttributes{
		QueryID:   queryID,
		SourceID:  sourceID,
		Operation: "match_results",
	})
	defer span.End()

	since := s.now().UTC().Add(-s.matchWindow)
	observations, err := s.observationRepo.ListRecent(ctx, queryID, sourceID, since)
	if err != nil {
		span.SetError(err)
		return 0, err
	}
	if len(observations) == 0 {
		return 0, nil
	}

	candidates := observations[:0]
	for _, o := range observations {
		if err := domain.ValidateObservation(o); err != nil {
			log.Printf("matcher: skipping malformed observation %s: %v", o.ID, err)
			continue
		}
		candidates = append(candidates, o)
	}

	alerts, err := s.alertRepo.ListActive(ctx)
	if err != nil {
		span.SetError(err)
		return 0, err
	}

	created := 0
	for _, a := range alerts {
		if err := domain.ValidateAlert(a); err != nil {
			log.Printf("matcher: skipping malformed alert %s: %v", a.ID, err)
			continue
		}
		for _, o := range candidates {
			if !alertMatches(a, o) {
				continue
			}
			m := domain.NewMatch(s.uuidGen.NewString(), a.ID, o.ID, s.now().UTC())
			inserted, err := s.matchRepo.Create(ctx, m)
			if err != nil {
				log.Printf("matcher: failed to record match for alert %s: %v", a.ID, err)
				continue
			}
			if inserted {
				created++
				metrics.MatchesCreated.Inc()
			}
		}
	}
	return created, nil
}

// alertMatches applies the rule chain in order; the first failing rule
// wins. Open-destination alerts carry no destination, so the generic
// destination equality is skipped for them and replaced by the dedicated
// branch below.
func alertMatches(a *domain.Alert, o *domain.Observation) bool {
	if a.Origin != "" && a.Origin != o.Origin {
		return false
	}
	if a.Type != domain.AlertTypeOpenDestination && a.Destination != "" && a.Destination != o.Destination {
		return false
	}

	if a.MinPrice != nil && o.Price < *a.MinPrice {
		return false
	}
	if a.MaxPrice != nil && o.Price > *a.MaxPrice {
		return false
	}

	if a.OneWayOnly && o.LegCount() >= returnTripLegCount {
		return false
	}

	switch a.Type {
	case domain.AlertTypeRareAircraft:
		allow := a.Aircraft
		if len(allow) == 0 {
			allow = domain.RareAircraftModels()
		}
		if !intersects(o.Aircraft, allow) {
			return false
		}
	case domain.AlertTypeOpenDestination:
		if a.Origin == "" || a.Destination != "" {
			return false
		}
	}

	return true
}

func intersects(have, want []string) bool {
	if len(have) == 0 || len(want) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(want))
	for _, w := range want {
		set[w] = struct{}{}
	}
	for _, h := range have {
		if _, ok := set[h]; ok {
			return true
		}
	}
	return false
}
