package ratings

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/storeratings/storeratings-backend/pkg/db/dbtest"
	"github.com/storeratings/storeratings-backend/pkg/enums"
	pkgerrors "github.com/storeratings/storeratings-backend/pkg/errors"
	"github.com/storeratings/storeratings-backend/pkg/metrics"
	"github.com/storeratings/storeratings-backend/pkg/pagination"
)

type countingMetrics struct {
	counts map[string]int
}

func (c *countingMetrics) Inc(outcome string) {
	if c.counts == nil {
		c.counts = map[string]int{}
	}
	c.counts[outcome]++
}

func newTestService(t *testing.T) (Service, *gorm.DB, *countingMetrics) {
	t.Helper()
	conn := dbtest.Open(t)
	counter := &countingMetrics{}
	svc, err := NewService(ServiceParams{Repo: NewRepository(conn), Metrics: counter})
	require.NoError(t, err)
	return svc, conn, counter
}

func requireCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	require.Error(t, err)
	require.Truef(t, pkgerrors.IsCode(err, code), "expected %s, got %v", code, err)
}

func TestSubmitCreatesThenUpdates(t *testing.T) {
	svc, conn, counter := newTestService(t)
	ctx := context.Background()

	owner := dbtest.SeedUser(t, conn, "Sarah The Store Owner", "sarah@example.com", enums.RoleStoreOwner)
	rater := dbtest.SeedUser(t, conn, "Regular Rating Person", "rater@example.com", enums.RoleNormalUser)
	store := dbtest.SeedStore(t, conn, "City Market", "city@example.com", &owner.ID)

	first, err := svc.Submit(ctx, rater.ID, store.ID, SubmitRatingRequest{Rating: 5})
	require.NoError(t, err)
	assert.True(t, first.Created)
	assert.Equal(t, 5, first.Rating.Rating)
	assert.Equal(t, StoreAggregate{StoreID: store.ID, AverageRating: 5, TotalRatings: 1}, first.Store)

	comment := "  still good  "
	second, err := svc.Submit(ctx, rater.ID, store.ID, SubmitRatingRequest{Rating: 4, Comment: &comment})
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, first.Rating.ID, second.Rating.ID)
	require.NotNil(t, second.Rating.Comment)
	assert.Equal(t, "still good", *second.Rating.Comment)
	assert.Equal(t, int64(1), second.Store.TotalRatings)
	assert.Equal(t, float64(4), second.Store.AverageRating)

	assert.Equal(t, 1, counter.counts[metrics.RatingCreated])
	assert.Equal(t, 1, counter.counts[metrics.RatingUpdated])
}

func TestSubmitAverageRoundsToTwoDecimals(t *testing.T) {
	svc, conn, _ := newTestService(t)
	ctx := context.Background()

	store := dbtest.SeedStore(t, conn, "City Market", "city@example.com", nil)
	for i, value := range []int{5, 5, 4} {
		user := dbtest.SeedUser(t, conn, "Rating Person Number Here", uuid.NewString()+"@example.com", enums.RoleNormalUser)
		res, err := svc.Submit(ctx, user.ID, store.ID, SubmitRatingRequest{Rating: value})
		require.NoError(t, err)
		assert.Equal(t, int64(i+1), res.Store.TotalRatings)
	}

	rater := dbtest.SeedUser(t, conn, "Last Rating Person Here", "last@example.com", enums.RoleNormalUser)
	agg, err := svc.Submit(ctx, rater.ID, store.ID, SubmitRatingRequest{Rating: 1})
	require.NoError(t, err)
	assert.Equal(t, 3.75, agg.Store.AverageRating)

	res, err := svc.Delete(ctx, rater.ID, store.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.67, res.AverageRating)
	assert.Equal(t, int64(3), res.TotalRatings)
}

func TestSubmitValidation(t *testing.T) {
	svc, conn, _ := newTestService(t)
	ctx := context.Background()
	rater := dbtest.SeedUser(t, conn, "Regular Rating Person", "rater@example.com", enums.RoleNormalUser)
	store := dbtest.SeedStore(t, conn, "City Market", "city@example.com", nil)

	for _, value := range []int{0, 6, -1} {
		_, err := svc.Submit(ctx, rater.ID, store.ID, SubmitRatingRequest{Rating: value})
		requireCode(t, err, pkgerrors.CodeValidation)
	}

	_, err := svc.Submit(ctx, rater.ID, uuid.New(), SubmitRatingRequest{Rating: 3})
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestDeleteMissingRatingIsNotFound(t *testing.T) {
	svc, conn, counter := newTestService(t)
	ctx := context.Background()
	rater := dbtest.SeedUser(t, conn, "Regular Rating Person", "rater@example.com", enums.RoleNormalUser)
	other := dbtest.SeedUser(t, conn, "Another Rating Person", "other@example.com", enums.RoleNormalUser)
	store := dbtest.SeedStore(t, conn, "City Market", "city@example.com", nil)
	dbtest.SeedRating(t, conn, other.ID, store.ID, 2, time.Time{})

	_, err := svc.Delete(ctx, rater.ID, store.ID)
	requireCode(t, err, pkgerrors.CodeNotFound)
	assert.Zero(t, counter.counts[metrics.RatingDeleted])

	_, err = svc.Delete(ctx, rater.ID, uuid.New())
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestListMineAndAdminDelete(t *testing.T) {
	svc, conn, _ := newTestService(t)
	ctx := context.Background()
	rater := dbtest.SeedUser(t, conn, "Regular Rating Person", "rater@example.com", enums.RoleNormalUser)
	store := dbtest.SeedStore(t, conn, "City Market", "city@example.com", nil)
	rating := dbtest.SeedRating(t, conn, rater.ID, store.ID, 3, time.Time{})

	page, err := svc.ListMine(ctx, rater.ID, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "City Market", page.Items[0].StoreName)
	assert.Equal(t, 1, page.Pagination.TotalPages)

	all, err := svc.AdminList(ctx, AdminFilter{UserID: &rater.ID})
	require.NoError(t, err)
	require.Len(t, all.Items, 1)
	assert.Equal(t, "rater@example.com", all.Items[0].UserEmail)

	require.NoError(t, svc.AdminDelete(ctx, rating.ID))
	requireCode(t, svc.AdminDelete(ctx, rating.ID), pkgerrors.CodeNotFound)

	empty, err := svc.ListMine(ctx, rater.ID, pagination.Params{})
	require.NoError(t, err)
	assert.NotNil(t, empty.Items)
	assert.Empty(t, empty.Items)
	assert.Equal(t, 0, empty.Pagination.TotalPages)
}
