package ratings

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storeratings/storeratings-backend/pkg/db/dbtest"
	"github.com/storeratings/storeratings-backend/pkg/db/models"
	"github.com/storeratings/storeratings-backend/pkg/enums"
	"github.com/storeratings/storeratings-backend/pkg/pagination"
)

func TestRepositoryUpsertKeepsOneRowPerPair(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	user := dbtest.SeedUser(t, conn, "Regular Rating Person", "rater@example.com", enums.RoleNormalUser)
	store := dbtest.SeedStore(t, conn, "City Market", "city@example.com", nil)

	require.NoError(t, repo.Upsert(ctx, &models.Rating{UserID: user.ID, StoreID: store.ID, Rating: 2}))
	first, err := repo.Find(ctx, user.ID, store.ID)
	require.NoError(t, err)

	comment := "much better now"
	require.NoError(t, repo.Upsert(ctx, &models.Rating{UserID: user.ID, StoreID: store.ID, Rating: 5, Comment: &comment}))

	var count int64
	require.NoError(t, conn.Model(&models.Rating{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	second, err := repo.Find(ctx, user.ID, store.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 5, second.Rating)
	require.NotNil(t, second.Comment)
	assert.Equal(t, comment, *second.Comment)

	agg, err := repo.Stats(ctx, store.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(5), agg.AverageRating)
	assert.Equal(t, int64(1), agg.TotalRatings)
}

func TestRepositoryStatsForUnratedStore(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	store := dbtest.SeedStore(t, conn, "Quiet Shop", "quiet@example.com", nil)

	agg, err := repo.Stats(context.Background(), store.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(0), agg.AverageRating)
	assert.Equal(t, int64(0), agg.TotalRatings)
}

func TestRepositoryListAllFilters(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	alice := dbtest.SeedUser(t, conn, "Alice Rating Person Name", "alice@example.com", enums.RoleNormalUser)
	bob := dbtest.SeedUser(t, conn, "Bob Rating Person Name", "bob@example.com", enums.RoleNormalUser)
	market := dbtest.SeedStore(t, conn, "City Market", "city@example.com", nil)
	bakery := dbtest.SeedStore(t, conn, "Bakery", "bakery@example.com", nil)
	base := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	dbtest.SeedRating(t, conn, alice.ID, market.ID, 5, base)
	dbtest.SeedRating(t, conn, alice.ID, bakery.ID, 3, base.Add(time.Minute))
	dbtest.SeedRating(t, conn, bob.ID, market.ID, 1, base.Add(2*time.Minute))

	rows, total, err := repo.ListAll(ctx, AdminFilter{StoreID: &market.ID, Page: pagination.NewParams(1, 10)})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, rows, 2)
	assert.Equal(t, "bob@example.com", rows[0].UserEmail)
	assert.Equal(t, "City Market", rows[0].StoreName)

	rows, total, err = repo.ListAll(ctx, AdminFilter{StoreID: &market.ID, UserID: &alice.ID, Page: pagination.NewParams(1, 10)})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, 5, rows[0].Rating)

	mine, total, err := repo.ListByUser(ctx, alice.ID, pagination.NewParams(1, 1))
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, mine, 1)
	assert.Equal(t, "Bakery", mine[0].StoreName)
}

func TestRepositoryDeletes(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	user := dbtest.SeedUser(t, conn, "Regular Rating Person", "rater@example.com", enums.RoleNormalUser)
	store := dbtest.SeedStore(t, conn, "City Market", "city@example.com", nil)
	rating := dbtest.SeedRating(t, conn, user.ID, store.ID, 4, time.Time{})

	n, err := repo.DeleteByUserStore(ctx, user.ID, store.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repo.DeleteByID(ctx, rating.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}
