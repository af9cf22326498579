package repository

import (
	"context"
	"time"

	"github.com/farewatch/farewatch/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ObservationRepository struct {
	db dbtx
}

func NewObservationRepository(pool *pgxpool.Pool) *ObservationRepository {
	return &ObservationRepository{db: pool}
}

// Record inserts the observation, relying on the (query_id, primary_hash)
// unique constraint: of two concurrent producers submitting the identical
// offer exactly one row is stored, and the loser sees stored=false, which
// is a normal outcome rather than an error.
func (r *ObservationRepository) Record(ctx context.Context, o *domain.Observation) (bool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	cmdTag, err := r.db.Exec(ctx,
		`INSERT INTO observations (id, query_id, source_id, raw_payload, primary_hash, secondary_hash,
		                           price, currency, origin, destination, carriers, flight_numbers, aircraft,
		                           stops, fare_brand, booking_ref, valid, fetched_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		 ON CONFLICT ON CONSTRAINT observations_query_primary_hash_key DO NOTHING`,
		o.ID, o.QueryID, o.SourceID, o.RawPayload, o.PrimaryHash, o.SecondaryHash,
		o.Price, o.Currency, o.Origin, o.Destination, o.Carriers, o.FlightNumbers, o.Aircraft,
		o.Stops, nullableString(o.FareBrand), nullableString(o.BookingRef), o.Valid, o.FetchedAt,
	)
	if err != nil {
		return false, err
	}
	return cmdTag.RowsAffected() == 1, nil
}

// ListByQuery returns the query's valid observations with source
// attribution, ordered by price ascending, then source trust descending,
// then recency descending. The id tiebreak keeps repeated reads stable.
func (r *ObservationRepository) ListByQuery(ctx context.Context, queryID string) ([]*domain.RankedObservation, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(ctx,
		`SELECT o.id, o.query_id, o.source_id, o.primary_hash, o.secondary_hash,
		        o.price, o.currency, o.origin, o.destination, o.carriers, o.flight_numbers, o.aircraft,
		        o.stops, o.fare_brand, o.booking_ref, o.valid, o.fetched_at,
		        s.domain, s.trusted
		 FROM observations o
		 JOIN sources s ON s.id = o.source_id
		 WHERE o.query_id = $1 AND o.valid
		 ORDER BY o.price ASC, s.trusted DESC, o.fetched_at DESC, o.id`,
		queryID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*domain.RankedObservation
	for rows.Next() {
		var ro domain.RankedObservation
		var fareBrand, bookingRef *string
		if err := rows.Scan(&ro.ID, &ro.QueryID, &ro.SourceID, &ro.PrimaryHash, &ro.SecondaryHash,
			&ro.Price, &ro.Currency, &ro.Origin, &ro.Destination, &ro.Carriers, &ro.FlightNumbers, &ro.Aircraft,
			&ro.Stops, &fareBrand, &bookingRef, &ro.Valid, &ro.FetchedAt,
			&ro.SourceDomain, &ro.SourceTrusted); err != nil {
			return nil, err
		}
		ro.FareBrand = derefString(fareBrand)
		ro.BookingRef = derefString(bookingRef)
		results = append(results, &ro)
	}
	return results, rows.Err()
}

// ListRecent returns the valid observations for (query, source) fetched at
// or after the given instant. This bounds the alert matcher's per-call cost
// independent of historical volume.
func (r *ObservationRepository) ListRecent(ctx context.Context, queryID, sourceID string, since time.Time) ([]*domain.Observation, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(ctx,
		`SELECT id, query_id, source_id, primary_hash, secondary_hash,
		        price, currency, origin, destination, carriers, flight_numbers, aircraft,
		        stops, fare_brand, booking_ref, valid, fetched_at
		 FROM observations
		 WHERE query_id = $1 AND source_id = $2 AND valid AND fetched_at >= $3
		 ORDER BY fetched_at DESC`,
		queryID, sourceID, since,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanObservationRows(rows)
}

// SetValidity soft-invalidates (or restores) an observation. The row is
// never deleted.
func (r *ObservationRepository) SetValidity(ctx context.Context, id string, valid bool) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	cmdTag, err := r.db.Exec(ctx,
		`UPDATE observations SET valid = $1 WHERE id = $2`,
		valid, id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrObservationNotFound
	}
	return nil
}

// Stats aggregates the query's valid observations.
func (r *ObservationRepository) Stats(ctx context.Context, queryID string) (*domain.RouteStats, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var stats domain.RouteStats
	var minPrice, maxPrice, avgPrice *float64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*), MIN(price), MAX(price), AVG(price)
		 FROM observations WHERE query_id = $1 AND valid`,
		queryID,
	).Scan(&stats.Count, &minPrice, &maxPrice, &avgPrice)
	if err != nil {
		return nil, err
	}
	if minPrice != nil {
		stats.MinPrice = *minPrice
	}
	if maxPrice != nil {
		stats.MaxPrice = *maxPrice
	}
	if avgPrice != nil {
		stats.AvgPrice = *avgPrice
	}
	return &stats, nil
}

func scanObservationRows(rows pgx.Rows) ([]*domain.Observation, error) {
	var results []*domain.Observation
	for rows.Next() {
		var o domain.Observation
		var fareBrand, bookingRef *string
		if err := rows.Scan(&o.ID, &o.QueryID, &o.SourceID, &o.PrimaryHash, &o.SecondaryHash,
			&o.Price, &o.Currency, &o.Origin, &o.Destination, &o.Carriers, &o.FlightNumbers, &o.Aircraft,
			&o.Stops, &fareBrand, &bookingRef, &o.Valid, &o.FetchedAt); err != nil {
			return nil, err
		}
		o.FareBrand = derefString(fareBrand)
		o.BookingRef = derefString(bookingRef)
		results = append(results, &o)
	}
	return results, rows.Err()
}
