//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farewatch/farewatch/internal/domain"
	"github.com/farewatch/farewatch/internal/testutil"
)

func TestQueryRepository_CreateAndGetByID(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewQueryRepository(pool)

	depart := time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC)
	ret := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	q := domain.NewSearchQuery(uuid.NewString(), "LHR", "AMS", &depart, &ret,
		domain.CabinBusiness, 2, "user1", time.Now().UTC().Truncate(time.Microsecond))
	require.NoError(t, repo.Create(ctx, q))

	retrieved, err := repo.GetByID(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, q.ID, retrieved.ID)
	assert.Equal(t, "LHR", retrieved.Origin)
	assert.Equal(t, "AMS", retrieved.Destination)
	assert.Equal(t, domain.CabinBusiness, retrieved.Cabin)
	assert.Equal(t, 2, retrieved.Passengers)
	assert.Equal(t, "user1", retrieved.UserID)
	assert.Equal(t, domain.QueryStatusActive, retrieved.Status)
	require.NotNil(t, retrieved.DepartDate)
	assert.True(t, depart.Equal(*retrieved.DepartDate))
}

func TestQueryRepository_GetByID_NotFound(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewQueryRepository(pool)

	_, err := repo.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrQueryNotFound)
}

func TestQueryRepository_SetStatus(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewQueryRepository(pool)

	q := seedQuery(ctx, t, repo)
	require.NoError(t, repo.SetStatus(ctx, q.ID, domain.QueryStatusArchived))

	retrieved, err := repo.GetByID(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.QueryStatusArchived, retrieved.Status)
}

func TestQueryRepository_SetStatus_NotFound(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewQueryRepository(pool)

	err := repo.SetStatus(ctx, uuid.NewString(), domain.QueryStatusArchived)
	assert.ErrorIs(t, err, domain.ErrQueryNotFound)
}
