package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storeratings/storeratings-backend/pkg/db/models"
	"github.com/storeratings/storeratings-backend/pkg/pagination"
)

const summarySelect = `COUNT(*) AS count,
COALESCE(SUM(rating), 0) AS sum,
MIN(rating) AS min_rating,
MAX(rating) AS max_rating,
COALESCE(SUM(CASE WHEN rating >= 4 THEN 1 ELSE 0 END), 0) AS positive,
COALESCE(SUM(CASE WHEN rating <= 2 THEN 1 ELSE 0 END), 0) AS negative`

// Repository runs the read-only aggregate queries behind the dashboards.
// A nil storeID widens rating queries to every store.
type Repository struct {
	db *gorm.DB
}

func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{db: conn}
}

func (r *Repository) ratings(ctx context.Context, storeID *uuid.UUID) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Rating{})
	if storeID != nil {
		q = q.Where("store_id = ?", *storeID)
	}
	return q
}

// StoreForOwner loads the store linked to ownerID.
func (r *Repository) StoreForOwner(ctx context.Context, ownerID uuid.UUID) (*models.Store, error) {
	var store models.Store
	if err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&store).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

// Summary aggregates count, sum, extremes and sentiment counts.
func (r *Repository) Summary(ctx context.Context, storeID *uuid.UUID) (summaryRow, error) {
	var row summaryRow
	err := r.ratings(ctx, storeID).Select(summarySelect).Scan(&row).Error
	return row, err
}

// Distribution counts ratings per score. Scores without ratings are absent.
func (r *Repository) Distribution(ctx context.Context, storeID *uuid.UUID) (map[int]int64, error) {
	var rows []struct {
		Rating int
		Count  int64
	}
	if err := r.ratings(ctx, storeID).
		Select("rating, COUNT(*) AS count").
		Group("rating").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[int]int64, len(rows))
	for _, row := range rows {
		out[row.Rating] = row.Count
	}
	return out, nil
}

// PointsSince returns every rating created at or after since.
func (r *Repository) PointsSince(ctx context.Context, storeID *uuid.UUID, since time.Time) ([]RatingPoint, error) {
	var points []RatingPoint
	if err := r.ratings(ctx, storeID).
		Select("created_at, rating").
		Where("created_at >= ?", since.UTC()).
		Order("created_at ASC").
		Scan(&points).Error; err != nil {
		return nil, err
	}
	return points, nil
}

// Raters pages through the ratings of storeID with rater identity.
func (r *Repository) Raters(ctx context.Context, storeID uuid.UUID, sort pagination.Sort, page pagination.Params) ([]RaterRow, int64, error) {
	scoped := func() *gorm.DB {
		return r.db.WithContext(ctx).
			Table("ratings").
			Joins("JOIN users ON users.id = ratings.user_id").
			Where("ratings.store_id = ?", storeID)
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []RaterRow
	if total == 0 {
		return rows, 0, nil
	}
	if err := scoped().
		Select(`ratings.id AS rating_id, ratings.user_id, users.name AS user_name, users.email AS user_email,
ratings.rating, ratings.comment, ratings.created_at, ratings.updated_at`).
		Order(sort.Clause()).
		Limit(page.Limit).
		Offset(page.Offset()).
		Scan(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// Totals counts every user, store and rating.
func (r *Repository) Totals(ctx context.Context) (Totals, error) {
	return r.countAll(ctx, time.Time{})
}

// CreatedSince counts rows created at or after since.
func (r *Repository) CreatedSince(ctx context.Context, since time.Time) (Totals, error) {
	return r.countAll(ctx, since)
}

func (r *Repository) countAll(ctx context.Context, since time.Time) (Totals, error) {
	var out Totals
	for _, target := range []struct {
		model any
		dest  *int64
	}{
		{&models.User{}, &out.Users},
		{&models.Store{}, &out.Stores},
		{&models.Rating{}, &out.Ratings},
	} {
		q := r.db.WithContext(ctx).Model(target.model)
		if !since.IsZero() {
			q = q.Where("created_at >= ?", since.UTC())
		}
		if err := q.Count(target.dest).Error; err != nil {
			return Totals{}, err
		}
	}
	return out, nil
}

// TopStores returns rated stores ordered by average, then count, then name.
func (r *Repository) TopStores(ctx context.Context, limit int) ([]models.StoreWithStats, error) {
	var rows []models.StoreWithStats
	if err := r.db.WithContext(ctx).
		Table("stores").
		Joins("JOIN store_rating_stats st ON st.store_id = stores.id").
		Select("stores.*, st.average_rating, st.total_ratings").
		Where("st.total_ratings > 0").
		Order("st.average_rating DESC, st.total_ratings DESC, stores.name ASC, stores.id ASC").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
