package repository

import (
	"context"
	"time"

	"github.com/farewatch/farewatch/internal/domain"
	"github.com/farewatch/farewatch/internal/pagination"
	"github.com/farewatch/farewatch/internal/service"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MatchRepository struct {
	db dbtx
}

func NewMatchRepository(pool *pgxpool.Pool) *MatchRepository {
	return &MatchRepository{db: pool}
}

// Create inserts the match, relying on the (alert_id, observation_id)
// unique constraint for idempotence: concurrent matcher runs over the same
// window cannot double-record.
func (r *MatchRepository) Create(ctx context.Context, m *domain.Match) (bool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	cmdTag, err := r.db.Exec(ctx,
		`INSERT INTO matches (id, alert_id, observation_id, matched_at, seen)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT ON CONSTRAINT matches_alert_observation_key DO NOTHING`,
		m.ID, m.AlertID, m.ObservationID, m.MatchedAt, m.Seen,
	)
	if err != nil {
		return false, err
	}
	return cmdTag.RowsAffected() == 1, nil
}

// ListByUser returns the user's matches since the given instant, newest
// first, cursor-paginated, each joined with the originating observation's
// price, carrier, route and source.
func (r *MatchRepository) ListByUser(ctx context.Context, userID string, since time.Time, cursor *pagination.Cursor, limit int) (*service.MatchPage, error) {
	if limit <= 0 {
		limit = 20
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	const matchSelect = `
		SELECT m.id, m.alert_id, m.observation_id, m.matched_at, m.seen,
		       a.type, o.price, o.currency, o.carriers, o.origin, o.destination, s.domain
		FROM matches m
		JOIN alerts a ON a.id = m.alert_id
		JOIN observations o ON o.id = m.observation_id
		JOIN sources s ON s.id = o.source_id
		WHERE a.user_id = $1 AND m.matched_at >= $2`

	var rows pgx.Rows
	var err error
	if cursor != nil {
		rows, err = r.db.Query(ctx,
			matchSelect+` AND (m.matched_at, m.id) < ($3, $4)
			ORDER BY m.matched_at DESC, m.id DESC
			LIMIT $5`,
			userID, since, cursor.Timestamp, cursor.LastID, limit+1,
		)
	} else {
		rows, err = r.db.Query(ctx,
			matchSelect+`
			ORDER BY m.matched_at DESC, m.id DESC
			LIMIT $3`,
			userID, since, limit+1,
		)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*domain.MatchDetail
	for rows.Next() {
		var d domain.MatchDetail
		var carriers []string
		if err := rows.Scan(&d.ID, &d.AlertID, &d.ObservationID, &d.MatchedAt, &d.Seen,
			&d.AlertType, &d.Price, &d.Currency, &carriers, &d.Origin, &d.Destination, &d.SourceDomain); err != nil {
			return nil, err
		}
		if len(carriers) > 0 {
			d.Carrier = carriers[0]
		}
		items = append(items, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	hasMore := len(items) > limit
	if hasMore {
		items = items[:limit]
	}

	var nextCursor string
	if hasMore && len(items) > 0 {
		last := items[len(items)-1]
		nextCursor = pagination.EncodeCursor(last.ID, last.MatchedAt)
	}

	return &service.MatchPage{
		Items:      items,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

// MarkSeen flips the seen flag on one of the user's matches.
func (r *MatchRepository) MarkSeen(ctx context.Context, id, userID string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	cmdTag, err := r.db.Exec(ctx,
		`UPDATE matches m SET seen = TRUE
		 FROM alerts a
		 WHERE m.id = $1 AND m.alert_id = a.id AND a.user_id = $2`,
		id, userID,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrMatchNotFound
	}
	return nil
}
