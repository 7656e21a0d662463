package ratings

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/storeratings/storeratings-backend/pkg/db/models"
	"github.com/storeratings/storeratings-backend/pkg/pagination"
)

const rowSelect = `ratings.id, ratings.user_id, ratings.store_id, ratings.rating, ratings.comment,
ratings.created_at, ratings.updated_at, users.name AS user_name, users.email AS user_email,
stores.name AS store_name, stores.address AS store_address`

// Repository persists ratings.
type Repository struct {
	db *gorm.DB
}

func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{db: conn}
}

// StoreExists reports whether the rated store is present.
func (r *Repository) StoreExists(ctx context.Context, storeID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Store{}).Where("id = ?", storeID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Find returns userID's rating of storeID.
func (r *Repository) Find(ctx context.Context, userID, storeID uuid.UUID) (*models.Rating, error) {
	var rating models.Rating
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND store_id = ?", userID, storeID).
		First(&rating).Error; err != nil {
		return nil, err
	}
	return &rating, nil
}

// Upsert inserts the rating or, when (user_id, store_id) already exists,
// overwrites its score and comment in the same statement.
func (r *Repository) Upsert(ctx context.Context, rating *models.Rating) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "store_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"rating", "comment", "updated_at"}),
		}).
		Create(rating).Error
}

// DeleteByUserStore removes userID's rating of storeID and reports how many rows went.
func (r *Repository) DeleteByUserStore(ctx context.Context, userID, storeID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND store_id = ?", userID, storeID).
		Delete(&models.Rating{})
	return res.RowsAffected, res.Error
}

// DeleteByID removes one rating regardless of author.
func (r *Repository) DeleteByID(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Rating{})
	return res.RowsAffected, res.Error
}

// Stats reads the store_rating_stats row for storeID.
func (r *Repository) Stats(ctx context.Context, storeID uuid.UUID) (models.StoreRatingStats, error) {
	var row models.StoreRatingStats
	err := r.db.WithContext(ctx).
		Table(models.StoreRatingStats{}.TableName()).
		Where("store_id = ?", storeID).
		Take(&row).Error
	return row, err
}

// ListByUser pages through userID's ratings, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID, page pagination.Params) ([]RatingRow, int64, error) {
	return r.list(ctx, page, func(q *gorm.DB) *gorm.DB {
		return q.Where("ratings.user_id = ?", userID)
	})
}

// ListAll pages through every rating matching the optional filters.
func (r *Repository) ListAll(ctx context.Context, filter AdminFilter) ([]RatingRow, int64, error) {
	return r.list(ctx, filter.Page, func(q *gorm.DB) *gorm.DB {
		if filter.StoreID != nil {
			q = q.Where("ratings.store_id = ?", *filter.StoreID)
		}
		if filter.UserID != nil {
			q = q.Where("ratings.user_id = ?", *filter.UserID)
		}
		return q
	})
}

func (r *Repository) list(ctx context.Context, page pagination.Params, filter func(*gorm.DB) *gorm.DB) ([]RatingRow, int64, error) {
	scoped := func() *gorm.DB {
		q := r.db.WithContext(ctx).
			Table("ratings").
			Joins("JOIN users ON users.id = ratings.user_id").
			Joins("JOIN stores ON stores.id = ratings.store_id")
		return filter(q)
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []RatingRow
	if total == 0 {
		return rows, 0, nil
	}
	if err := scoped().
		Select(rowSelect).
		Order(listSort.Clause()).
		Limit(page.Limit).
		Offset(page.Offset()).
		Scan(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
