package repository

import (
	"context"
	"errors"

	"github.com/farewatch/farewatch/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AlertRepository struct {
	db dbtx
}

func NewAlertRepository(pool *pgxpool.Pool) *AlertRepository {
	return &AlertRepository{db: pool}
}

func (r *AlertRepository) Create(ctx context.Context, a *domain.Alert) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	_, err := r.db.Exec(ctx,
		`INSERT INTO alerts (id, user_id, type, origin, destination, date_from, date_to, min_price, max_price, aircraft, one_way_only, active, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		a.ID, a.UserID, a.Type, nullableString(a.Origin), nullableString(a.Destination),
		a.DateFrom, a.DateTo, a.MinPrice, a.MaxPrice, a.Aircraft, a.OneWayOnly, a.Active, a.CreatedAt,
	)
	return err
}

func (r *AlertRepository) GetByID(ctx context.Context, id string) (*domain.Alert, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	row := r.db.QueryRow(ctx, alertSelect+` WHERE id = $1`, id)
	a, err := scanAlert(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAlertNotFound
		}
		return nil, err
	}
	return a, nil
}

// ListActive returns every active alert, the matcher's evaluation set.
func (r *AlertRepository) ListActive(ctx context.Context) ([]*domain.Alert, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(ctx, alertSelect+` WHERE active ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAlertRows(rows)
}

func (r *AlertRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Alert, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(ctx, alertSelect+` WHERE user_id = $1 AND active ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAlertRows(rows)
}

// Deactivate soft-deletes the user's alert by clearing the active flag.
func (r *AlertRepository) Deactivate(ctx context.Context, id, userID string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	cmdTag, err := r.db.Exec(ctx,
		`UPDATE alerts SET active = FALSE WHERE id = $1 AND user_id = $2 AND active`,
		id, userID,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrAlertNotFound
	}
	return nil
}

const alertSelect = `SELECT id, user_id, type, origin, destination, date_from, date_to, min_price, max_price, aircraft, one_way_only, active, created_at FROM alerts`

func scanAlert(row pgx.Row) (*domain.Alert, error) {
	var a domain.Alert
	var origin, destination *string
	if err := row.Scan(&a.ID, &a.UserID, &a.Type, &origin, &destination, &a.DateFrom, &a.DateTo,
		&a.MinPrice, &a.MaxPrice, &a.Aircraft, &a.OneWayOnly, &a.Active, &a.CreatedAt); err != nil {
		return nil, err
	}
	a.Origin = derefString(origin)
	a.Destination = derefString(destination)
	return &a, nil
}

func scanAlertRows(rows pgx.Rows) ([]*domain.Alert, error) {
	var alerts []*domain.Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}
