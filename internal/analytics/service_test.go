package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/storeratings/storeratings-backend/internal/users"
	"github.com/storeratings/storeratings-backend/pkg/config"
	"github.com/storeratings/storeratings-backend/pkg/db/dbtest"
	"github.com/storeratings/storeratings-backend/pkg/db/models"
	"github.com/storeratings/storeratings-backend/pkg/enums"
	pkgerrors "github.com/storeratings/storeratings-backend/pkg/errors"
	"github.com/storeratings/storeratings-backend/pkg/pagination"
)

var fixedNow = time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	conn := dbtest.Open(t)
	svc, err := NewService(ServiceParams{
		Repo:   NewRepository(conn),
		Users:  users.NewRepository(conn),
		Config: config.AnalyticsConfig{TrendWindowDays: 7, TopStoresLimit: 2, RecentRatingsLimit: 2},
		Now:    func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	return svc, conn
}

type fixture struct {
	owner  *models.User
	store  *models.Store
	raters []*models.User
}

// seedOwnerStore rates the owner's store 5, 4, 2 and 1 across the window.
func seedOwnerStore(t *testing.T, conn *gorm.DB) fixture {
	t.Helper()
	owner := dbtest.SeedUser(t, conn, "Sarah The Store Owner", "sarah@example.com", enums.RoleStoreOwner)
	store := dbtest.SeedStore(t, conn, "City Market", "city@example.com", &owner.ID)

	f := fixture{owner: owner, store: store}
	when := []time.Time{
		fixedNow.AddDate(0, 0, -20), // outside the 7 day window
		fixedNow.AddDate(0, 0, -3),
		fixedNow.AddDate(0, 0, -3).Add(time.Hour),
		fixedNow.Add(-time.Hour),
	}
	for i, value := range []int{5, 4, 2, 1} {
		rater := dbtest.SeedUser(t, conn, "Rating Person Number "+string(rune('A'+i)), uuid.NewString()+"@example.com", enums.RoleNormalUser)
		dbtest.SeedRating(t, conn, rater.ID, store.ID, value, when[i])
		f.raters = append(f.raters, rater)
	}
	return f
}

func TestOwnerDashboardAggregates(t *testing.T) {
	svc, conn := newTestService(t)
	f := seedOwnerStore(t, conn)

	dash, err := svc.OwnerDashboard(context.Background(), f.owner.ID)
	require.NoError(t, err)

	assert.Equal(t, "City Market", dash.Store.Name)
	assert.Equal(t, int64(4), dash.TotalRatings)
	assert.Equal(t, 3.0, dash.AverageRating)
	assert.Equal(t, 50.0, dash.PositiveShare)
	assert.Equal(t, 50.0, dash.NegativeShare)
	require.NotNil(t, dash.MinRating)
	require.NotNil(t, dash.MaxRating)
	assert.Equal(t, 1, *dash.MinRating)
	assert.Equal(t, 5, *dash.MaxRating)

	require.Len(t, dash.Distribution, 5)
	assert.Equal(t, DistributionBucket{Rating: 3, Count: 0, Percent: 0}, dash.Distribution[2])
	assert.Equal(t, DistributionBucket{Rating: 5, Count: 1, Percent: 25}, dash.Distribution[4])

	require.Len(t, dash.Trend, 7)
	assert.Equal(t, "2025-03-04", dash.Trend[0].Date)
	assert.Equal(t, "2025-03-10", dash.Trend[6].Date)
	assert.Equal(t, TrendPoint{Date: "2025-03-07", Count: 2, AverageRating: 3}, dash.Trend[3])
	assert.Equal(t, TrendPoint{Date: "2025-03-10", Count: 1, AverageRating: 1}, dash.Trend[6])
	assert.Equal(t, TrendPoint{Date: "2025-03-05"}, dash.Trend[1])

	require.Len(t, dash.RecentRatings, 2)
	assert.Equal(t, 1, dash.RecentRatings[0].Rating)
	assert.Equal(t, f.raters[3].ID, dash.RecentRatings[0].UserID)
}

func TestOwnerDashboardWithoutStoreIsNotFound(t *testing.T) {
	svc, conn := newTestService(t)
	owner := dbtest.SeedUser(t, conn, "Storeless Owner Person", "none@example.com", enums.RoleStoreOwner)

	_, err := svc.OwnerDashboard(context.Background(), owner.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)

	_, err = svc.OwnerRaters(context.Background(), owner.ID, pagination.Sort{}, pagination.Params{})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)
}

func TestOwnerDashboardEmptyStore(t *testing.T) {
	svc, conn := newTestService(t)
	owner := dbtest.SeedUser(t, conn, "Sarah The Store Owner", "sarah@example.com", enums.RoleStoreOwner)
	dbtest.SeedStore(t, conn, "City Market", "city@example.com", &owner.ID)

	dash, err := svc.OwnerDashboard(context.Background(), owner.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(0), dash.AverageRating)
	assert.Zero(t, dash.TotalRatings)
	assert.Nil(t, dash.MinRating)
	assert.Nil(t, dash.MaxRating)
	assert.Len(t, dash.Trend, 7)
	assert.NotNil(t, dash.RecentRatings)
}

func TestOwnerRatersSortsByUserName(t *testing.T) {
	svc, conn := newTestService(t)
	f := seedOwnerStore(t, conn)

	page, err := svc.OwnerRaters(context.Background(), f.owner.ID, RatersSortSpec.Resolve("user_name", "desc"), pagination.NewParams(1, 3))
	require.NoError(t, err)
	assert.Equal(t, int64(4), page.Pagination.TotalCount)
	assert.Equal(t, 2, page.Pagination.TotalPages)
	require.Len(t, page.Items, 3)
	assert.Equal(t, "Rating Person Number D", page.Items[0].UserName)
	assert.Equal(t, "Rating Person Number B", page.Items[2].UserName)
}

func TestAdminDashboard(t *testing.T) {
	svc, conn := newTestService(t)
	seedOwnerStore(t, conn)

	rater := dbtest.SeedUser(t, conn, "Another Rating Person", "another@example.com", enums.RoleNormalUser)
	dbtest.SeedUser(t, conn, "Platform Administrator", "admin@example.com", enums.RoleSystemAdmin)
	best := dbtest.SeedStore(t, conn, "Best Bakery", "best@example.com", nil)
	dbtest.SeedStore(t, conn, "Never Rated", "never@example.com", nil)
	dbtest.SeedRating(t, conn, rater.ID, best.ID, 5, fixedNow.Add(-2*time.Hour))

	dash, err := svc.AdminDashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Totals{Users: 7, Stores: 3, Ratings: 5}, dash.Totals)
	assert.Equal(t, int64(5), dash.UsersByRole[enums.RoleNormalUser])
	assert.Equal(t, int64(1), dash.UsersByRole[enums.RoleStoreOwner])
	assert.Equal(t, int64(1), dash.UsersByRole[enums.RoleSystemAdmin])
	assert.Equal(t, 3.4, dash.AverageRating)
	assert.Equal(t, int64(4), dash.Growth.NewRatings)
	assert.Equal(t, int64(7), dash.Growth.NewUsers)

	require.Len(t, dash.TopStores, 2)
	assert.Equal(t, "Best Bakery", dash.TopStores[0].Name)
	assert.Equal(t, 5.0, dash.TopStores[0].AverageRating)
	assert.Equal(t, "City Market", dash.TopStores[1].Name)

	require.Len(t, dash.Trend, 7)
	assert.Equal(t, int64(2), dash.Trend[6].Count)
	assert.Equal(t, 3.0, dash.Trend[6].AverageRating)
}

type failingRepo struct {
	analyticsRepository
	store     *models.Store
	storeErr  error
	ratersErr error
}

func (f failingRepo) StoreForOwner(context.Context, uuid.UUID) (*models.Store, error) {
	return f.store, f.storeErr
}

func (f failingRepo) Raters(context.Context, uuid.UUID, pagination.Sort, pagination.Params) ([]RaterRow, int64, error) {
	return nil, 0, f.ratersErr
}

type fixedRoleCounter map[enums.Role]int64

func (c fixedRoleCounter) CountByRole(context.Context) (map[enums.Role]int64, error) {
	return c, nil
}

func TestOwnerQueriesMapRepositoryFailures(t *testing.T) {
	newSvc := func(repo failingRepo) Service {
		svc, err := NewService(ServiceParams{Repo: repo, Users: fixedRoleCounter{}})
		require.NoError(t, err)
		return svc
	}
	ctx := context.Background()

	_, err := newSvc(failingRepo{storeErr: gorm.ErrRecordNotFound}).OwnerDashboard(ctx, uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)

	_, err = newSvc(failingRepo{storeErr: errors.New("connection reset")}).OwnerDashboard(ctx, uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInternal), "got %v", err)

	store := &models.Store{ID: uuid.New(), Name: "City Market"}
	_, err = newSvc(failingRepo{store: store, ratersErr: errors.New("timeout")}).
		OwnerRaters(ctx, uuid.New(), pagination.Sort{}, pagination.NewParams(1, 10))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInternal), "got %v", err)
}
