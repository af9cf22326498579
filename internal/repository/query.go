package repository

import (
	"context"
	"errors"

	"github.com/farewatch/farewatch/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type QueryRepository struct {
	db dbtx
}

func NewQueryRepository(pool *pgxpool.Pool) *QueryRepository {
	return &QueryRepository{db: pool}
}

func (r *QueryRepository) Create(ctx context.Context, q *domain.SearchQuery) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	_, err := r.db.Exec(ctx,
		`INSERT INTO search_queries (id, origin, destination, depart_date, return_date, cabin_class, passengers, user_id, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		q.ID, q.Origin, q.Destination, q.DepartDate, q.ReturnDate, q.Cabin, q.Passengers, nullableString(q.UserID), q.Status, q.CreatedAt,
	)
	return err
}

func (r *QueryRepository) GetByID(ctx context.Context, id string) (*domain.SearchQuery, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var q domain.SearchQuery
	var userID *string
	err := r.db.QueryRow(ctx,
		`SELECT id, origin, destination, depart_date, return_date, cabin_class, passengers, user_id, status, created_at
		 FROM search_queries WHERE id = $1`,
		id,
	).Scan(&q.ID, &q.Origin, &q.Destination, &q.DepartDate, &q.ReturnDate, &q.Cabin, &q.Passengers, &userID, &q.Status, &q.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrQueryNotFound
		}
		return nil, err
	}
	q.UserID = derefString(userID)
	return &q, nil
}

func (r *QueryRepository) SetStatus(ctx context.Context, id string, status domain.QueryStatus) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	cmdTag, err := r.db.Exec(ctx,
		`UPDATE search_queries SET status = $1 WHERE id = $2`,
		status, id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrQueryNotFound
	}
	return nil
}
