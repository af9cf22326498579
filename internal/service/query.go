package service

import (
	"context"
	"time"

	"github.com/farewatch/farewatch/internal/domain"
	"github.com/farewatch/farewatch/internal/telemetry"
)

type QueryRepositoryInterface interface {
	Create(ctx context.Context, q *domain.SearchQuery) error
	GetByID(ctx context.Context, id string) (*domain.SearchQuery, error)
	SetStatus(ctx context.Context, id string, status domain.QueryStatus) error
}

type QueryService struct {
	queryRepo QueryRepositoryInterface
	uuidGen   UUIDGenerator
	now       func() time.Time
}

func NewQueryService(queryRepo QueryRepositoryInterface) *QueryService {
	return &QueryService{
		queryRepo: queryRepo,
		uuidGen:   &DefaultUUIDGenerator{},
		now:       time.Now,
	}
}

func NewQueryServiceWithUUIDGen(queryRepo QueryRepositoryInterface, uuidGen UUIDGenerator) *QueryService {
	return &QueryService{
		queryRepo: queryRepo,
		uuidGen:   uuidGen,
		now:       time.Now,
	}
}

type CreateQueryInput struct {
	Origin      string
	Destination string
	DepartDate  *time.Time
	ReturnDate  *time.Time
	Cabin       domain.CabinClass
	Passengers  int
	UserID      string
}

func (s *QueryService) Create(ctx context.Context, input CreateQueryInput) (*domain.SearchQuery, error) {
	ctx, span := telemetry.StartSpan(ctx, "QueryService.Create", telemetry.SpanAttributes{
		UserID:    input.UserID,
		Operation: "create_query",
	})
	defer span.End()

	cabin := input.Cabin
	if cabin == "" {
		cabin = domain.CabinEconomy
	}
	passengers := input.Passengers
	if passengers == 0 {
		passengers = 1
	}

	q := domain.NewSearchQuery(
		s.uuidGen.NewString(),
		input.Origin,
		input.Destination,
		input.DepartDate,
		input.ReturnDate,
		cabin,
		passengers,
		input.UserID,
		s.now().UTC(),
	)
	if err := domain.ValidateSearchQuery(q); err != nil {
		span.SetError(err)
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid search query", err)
	}

	if err := s.queryRepo.Create(ctx, q); err != nil {
		span.SetError(err)
		return nil, err
	}
	return q, nil
}

func (s *QueryService) GetByID(ctx context.Context, id string) (*domain.SearchQuery, error) {
	return s.queryRepo.GetByID(ctx, id)
}

// Archive retires a query; archived queries stop accepting observations.
func (s *QueryService) Archive(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "QueryService.Archive", telemetry.SpanAttributes{
		QueryID:   id,
		Operation: "archive_query",
	})
	defer span.End()

	if _, err := s.queryRepo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.queryRepo.SetStatus(ctx, id, domain.QueryStatusArchived)
}
