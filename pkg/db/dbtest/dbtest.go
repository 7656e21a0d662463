// Package dbtest opens throwaway sqlite databases shaped like the postgres
// schema so repositories can be exercised without a server.
package dbtest

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/storeratings/storeratings-backend/pkg/db/models"
	"github.com/storeratings/storeratings-backend/pkg/enums"
)

const statsView = `
CREATE VIEW IF NOT EXISTS store_rating_stats AS
SELECT s.id AS store_id,
       CAST(COALESCE(AVG(r.rating), 0) AS REAL) AS average_rating,
       COUNT(r.id) AS total_ratings
FROM stores s
LEFT JOIN ratings r ON r.store_id = s.id
GROUP BY s.id`

// Open returns an isolated in-memory database with every table and the
// store_rating_stats view.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc:                func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.User{}, &models.Store{}, &models.Rating{}); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	if err := conn.Exec(statsView).Error; err != nil {
		t.Fatalf("create stats view: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return conn
}

// SeedUser inserts a user with a placeholder hash.
func SeedUser(t testing.TB, conn *gorm.DB, name, email string, role enums.Role) *models.User {
	t.Helper()
	user := &models.User{Name: name, Email: email, PasswordHash: "x", Address: "1 Test Street", Role: role}
	if err := conn.Create(user).Error; err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}
	return user
}

// SeedStore inserts a store, optionally owned.
func SeedStore(t testing.TB, conn *gorm.DB, name, email string, ownerID *uuid.UUID) *models.Store {
	t.Helper()
	store := &models.Store{Name: name, Email: email, Address: name + " Avenue", OwnerID: ownerID}
	if err := conn.Create(store).Error; err != nil {
		t.Fatalf("seed store %s: %v", email, err)
	}
	return store
}

// SeedRating inserts a rating. A zero at keeps the database timestamps.
func SeedRating(t testing.TB, conn *gorm.DB, userID, storeID uuid.UUID, value int, at time.Time) *models.Rating {
	t.Helper()
	rating := &models.Rating{UserID: userID, StoreID: storeID, Rating: value}
	if !at.IsZero() {
		rating.CreatedAt = at.UTC()
		rating.UpdatedAt = at.UTC()
	}
	if err := conn.Create(rating).Error; err != nil {
		t.Fatalf("seed rating: %v", err)
	}
	return rating
}
