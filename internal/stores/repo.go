package stores

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storeratings/storeratings-backend/pkg/db"
	"github.com/storeratings/storeratings-backend/pkg/db/models"
	"github.com/storeratings/storeratings-backend/pkg/pagination"
)

const (
	statsJoin   = "LEFT JOIN store_rating_stats st ON st.store_id = stores.id"
	statsSelect = "stores.*, COALESCE(st.average_rating, 0) AS average_rating, COALESCE(st.total_ratings, 0) AS total_ratings"
)

// Repository handles store persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to store operations.
func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{db: conn}
}

func (r *Repository) withStats(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Table("stores").Joins(statsJoin)
}

// List returns one page of stores joined with their aggregates.
func (r *Repository) List(ctx context.Context, in ListInput) ([]models.StoreWithStats, int64, error) {
	scoped := func() *gorm.DB {
		q := r.withStats(ctx)
		if in.Search != "" {
			clause, args := db.ContainsClause(in.Search, "stores.name", "stores.address")
			q = q.Where(clause, args...)
		}
		return q
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.StoreWithStats
	if total == 0 {
		return rows, 0, nil
	}
	if err := scoped().
		Select(statsSelect).
		Order(in.Sort.Clause()).
		Limit(in.Page.Limit).
		Offset(in.Page.Offset()).
		Scan(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// FindByIDWithStats loads one store and its aggregate.
func (r *Repository) FindByIDWithStats(ctx context.Context, id uuid.UUID) (*models.StoreWithStats, error) {
	var row models.StoreWithStats
	if err := r.withStats(ctx).Select(statsSelect).Where("stores.id = ?", id).Take(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// FindByOwnerWithStats loads the store linked to ownerID.
func (r *Repository) FindByOwnerWithStats(ctx context.Context, ownerID uuid.UUID) (*models.StoreWithStats, error) {
	var row models.StoreWithStats
	if err := r.withStats(ctx).Select(statsSelect).Where("stores.owner_id = ?", ownerID).Take(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// FindByID loads a store by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	var store models.Store
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&store).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

// Exists reports whether a store with id is present.
func (r *Repository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Store{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create persists a new store row.
func (r *Repository) Create(ctx context.Context, store *models.Store) error {
	return r.db.WithContext(ctx).Create(store).Error
}

// Update applies column updates to a store.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&models.Store{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the store and every rating it received.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return db.WithTx(r.db.WithContext(ctx), func(tx *gorm.DB) error {
		if err := tx.Where("store_id = ?", id).Delete(&models.Rating{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.Store{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// ListRatings pages through a store's ratings with the rater's name.
func (r *Repository) ListRatings(ctx context.Context, storeID uuid.UUID, sort pagination.Sort, page pagination.Params) ([]StoreRatingRow, int64, error) {
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

	var rows []StoreRatingRow
	if total == 0 {
		return rows, 0, nil
	}
	if err := scoped().
		Select("ratings.id, ratings.user_id, users.name AS user_name, ratings.rating, ratings.comment, ratings.created_at, ratings.updated_at").
		Order(sort.Clause()).
		Limit(page.Limit).
		Offset(page.Offset()).
		Scan(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// UserRatings returns userID's score for each of storeIDs that they rated.
func (r *Repository) UserRatings(ctx context.Context, userID uuid.UUID, storeIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	out := make(map[uuid.UUID]int, len(storeIDs))
	if len(storeIDs) == 0 {
		return out, nil
	}
	var rows []models.Rating
	if err := r.db.WithContext(ctx).
		Select("store_id", "rating").
		Where("user_id = ? AND store_id IN ?", userID, storeIDs).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.StoreID] = row.Rating
	}
	return out, nil
}
