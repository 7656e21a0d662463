package users

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storeratings/storeratings-backend/pkg/db"
	"github.com/storeratings/storeratings-backend/pkg/db/models"
	"github.com/storeratings/storeratings-backend/pkg/enums"
)

// Repository exposes user-related persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{db: conn}
}

// Create inserts a new user and returns the persisted model.
func (r *Repository) Create(ctx context.Context, dto CreateUserDTO) (*models.User, error) {
	user := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// FindByEmail retrieves the user matching the provided email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", NormalizeEmail(email)).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID loads a user by their UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Update applies column updates and returns the refreshed row.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.User, error) {
	if len(updates) > 0 {
		res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, gorm.ErrRecordNotFound
		}
	}
	return r.FindByID(ctx, id)
}

// UpdatePasswordHash overwrites the stored hash.
func (r *Repository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("password_hash", hash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the user together with their ratings and unlinks any store
// they owned.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return db.WithTx(r.db.WithContext(ctx), func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.Rating{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Store{}).Where("owner_id = ?", id).Update("owner_id", nil).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.User{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// List returns one page of users and the total matching the filter.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]models.User, int64, error) {
	scoped := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&models.User{})
		if filter.Search != "" {
			clause, args := db.ContainsClause(filter.Search, "users.name", "users.email", "users.address")
			q = q.Where(clause, args...)
		}
		if filter.Role != nil {
			q = q.Where("users.role = ?", *filter.Role)
		}
		return q
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.User
	if total == 0 {
		return rows, 0, nil
	}
	if err := scoped().
		Order(filter.Sort.Clause()).
		Limit(filter.Page.Limit).
		Offset(filter.Page.Offset()).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// CountByRole groups all users by role. Roles without users are present with 0.
func (r *Repository) CountByRole(ctx context.Context) (map[enums.Role]int64, error) {
	var rows []struct {
		Role  enums.Role
		Count int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select("role, COUNT(*) AS count").
		Group("role").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[enums.Role]int64, len(enums.Roles()))
	for _, role := range enums.Roles() {
		counts[role] = 0
	}
	for _, row := range rows {
		counts[row.Role] = row.Count
	}
	return counts, nil
}
