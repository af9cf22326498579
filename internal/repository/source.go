package repository

import (
	"context"
	"errors"
	"time"

	"github.com/farewatch/farewatch/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// trustWindow is the trailing window the rolling success rate is computed
// over.
const trustWindow = 7 * 24 * time.Hour

type SourceRepository struct {
	db dbtx
}

func NewSourceRepository(pool *pgxpool.Pool) *SourceRepository {
	return &SourceRepository{db: pool}
}

// Create inserts a source; the domain's unique constraint makes concurrent
// registration of the same domain yield exactly one row.
func (r *SourceRepository) Create(ctx context.Context, s *domain.Source) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	_, err := r.db.Exec(ctx,
		`INSERT INTO sources (id, domain, display_name, trusted, success_rate, priority, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (domain) DO NOTHING`,
		s.ID, s.Domain, s.DisplayName, s.Trusted, s.SuccessRate, s.Priority, s.CreatedAt,
	)
	return err
}

func (r *SourceRepository) GetByDomain(ctx context.Context, domainName string) (*domain.Source, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var s domain.Source
	err := r.db.QueryRow(ctx,
		`SELECT id, domain, display_name, trusted, success_rate, priority, created_at
		 FROM sources WHERE domain = $1`,
		domainName,
	).Scan(&s.ID, &s.Domain, &s.DisplayName, &s.Trusted, &s.SuccessRate, &s.Priority, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSourceNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *SourceRepository) List(ctx context.Context) ([]*domain.Source, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(ctx,
		`SELECT id, domain, display_name, trusted, success_rate, priority, created_at
		 FROM sources ORDER BY domain`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sources []*domain.Source
	for rows.Next() {
		var s domain.Source
		if err := rows.Scan(&s.ID, &s.Domain, &s.DisplayName, &s.Trusted, &s.SuccessRate, &s.Priority, &s.CreatedAt); err != nil {
			return nil, err
		}
		sources = append(sources, &s)
	}
	return sources, rows.Err()
}

// RecordAttempt books one ingestion attempt for the rolling success rate.
func (r *SourceRepository) RecordAttempt(ctx context.Context, sourceID string, ok bool, at time.Time) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	_, err := r.db.Exec(ctx,
		`INSERT INTO source_attempts (source_id, ok, created_at) VALUES ($1, $2, $3)`,
		sourceID, ok, at,
	)
	return err
}

// UpdateSuccessRate recomputes the trailing 7-day successes/(successes+
// failures) ratio and writes it back. Read-aggregate-then-write; under a
// race the last writer wins, which is acceptable for an advisory signal.
func (r *SourceRepository) UpdateSuccessRate(ctx context.Context, sourceID string, now time.Time) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var successes, total int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FILTER (WHERE ok), COUNT(*)
		 FROM source_attempts WHERE source_id = $1 AND created_at >= $2`,
		sourceID, now.Add(-trustWindow),
	).Scan(&successes, &total)
	if err != nil {
		return err
	}

	rate := 0.0
	if total > 0 {
		rate = float64(successes) / float64(total)
	}

	cmdTag, err := r.db.Exec(ctx,
		`UPDATE sources SET success_rate = $1 WHERE id = $2`,
		rate, sourceID,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrSourceNotFound
	}
	return nil
}
