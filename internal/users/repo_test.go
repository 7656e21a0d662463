package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/storeratings/storeratings-backend/pkg/db/dbtest"
	"github.com/storeratings/storeratings-backend/pkg/db/models"
	"github.com/storeratings/storeratings-backend/pkg/enums"
	"github.com/storeratings/storeratings-backend/pkg/pagination"
)

func TestRepositoryCreateNormalizesEmail(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	user, err := repo.Create(ctx, CreateUserDTO{
		Name:         "  Jonathan Appleseed Junior ",
		Email:        " Jon@Example.COM ",
		PasswordHash: "hash",
	})
	require.NoError(t, err)
	assert.Equal(t, "jon@example.com", user.Email)
	assert.Equal(t, "Jonathan Appleseed Junior", user.Name)
	assert.Equal(t, enums.RoleNormalUser, user.Role)

	found, err := repo.FindByEmail(ctx, "JON@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
}

func TestRepositoryDeleteCascadesRatingsAndOrphansStore(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	owner := dbtest.SeedUser(t, conn, "Sarah Store Owner Person", "sarah@example.com", enums.RoleStoreOwner)
	rater := dbtest.SeedUser(t, conn, "Regular Rating Person", "rater@example.com", enums.RoleNormalUser)
	store := dbtest.SeedStore(t, conn, "City Market", "city@example.com", &owner.ID)
	dbtest.SeedRating(t, conn, owner.ID, store.ID, 4, time.Time{})
	dbtest.SeedRating(t, conn, rater.ID, store.ID, 5, time.Time{})

	require.NoError(t, repo.Delete(ctx, owner.ID))

	var reloaded models.Store
	require.NoError(t, conn.First(&reloaded, "id = ?", store.ID).Error)
	assert.Nil(t, reloaded.OwnerID)

	var remaining int64
	require.NoError(t, conn.Model(&models.Rating{}).Count(&remaining).Error)
	assert.Equal(t, int64(1), remaining)

	err := repo.Delete(ctx, owner.ID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestRepositoryListFiltersSortsAndPaginates(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	dbtest.SeedUser(t, conn, "Charlie Example Person", "charlie@example.com", enums.RoleNormalUser)
	dbtest.SeedUser(t, conn, "Alice Example Person", "alice@example.com", enums.RoleNormalUser)
	dbtest.SeedUser(t, conn, "Bob Example Person", "bob@example.com", enums.RoleStoreOwner)
	dbtest.SeedUser(t, conn, "Admin Example Person", "root@admin.test", enums.RoleSystemAdmin)

	filter := ListFilter{
		Search: "example.com",
		Sort:   SortSpec.Resolve("name", "asc"),
		Page:   pagination.NewParams(1, 2),
	}
	rows, total, err := repo.List(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, rows, 2)
	assert.Equal(t, "alice@example.com", rows[0].Email)
	assert.Equal(t, "bob@example.com", rows[1].Email)

	filter.Page = pagination.NewParams(2, 2)
	rows, _, err = repo.List(ctx, filter)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "charlie@example.com", rows[0].Email)

	owner := enums.RoleStoreOwner
	rows, total, err = repo.List(ctx, ListFilter{Role: &owner, Sort: SortSpec.Resolve("", ""), Page: pagination.NewParams(1, 10)})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "bob@example.com", rows[0].Email)
}

func TestRepositoryUpdateAndCountByRole(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	user := dbtest.SeedUser(t, conn, "Someone Updatable Here", "upd@example.com", enums.RoleNormalUser)
	updated, err := repo.Update(ctx, user.ID, map[string]any{"address": "42 New Road", "role": enums.RoleStoreOwner})
	require.NoError(t, err)
	assert.Equal(t, "42 New Road", updated.Address)
	assert.Equal(t, enums.RoleStoreOwner, updated.Role)

	require.NoError(t, repo.UpdatePasswordHash(ctx, user.ID, "new-hash"))

	counts, err := repo.CountByRole(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[enums.RoleStoreOwner])
	assert.Equal(t, int64(0), counts[enums.RoleSystemAdmin])
	assert.Len(t, counts, 3)
}
