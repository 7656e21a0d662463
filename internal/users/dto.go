package users

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/storeratings/storeratings-backend/pkg/db/models"
	"github.com/storeratings/storeratings-backend/pkg/enums"
	"github.com/storeratings/storeratings-backend/pkg/pagination"
	"github.com/storeratings/storeratings-backend/pkg/stats"
)

// UserDTO is the transport shape that omits sensitive credentials.
type UserDTO struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Address   string     `json:"address"`
	Role      enums.Role `json:"role"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// OwnedStoreDTO summarizes the store a store_owner is linked to.
type OwnedStoreDTO struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Address       string    `json:"address"`
	AverageRating float64   `json:"average_rating"`
	TotalRatings  int64     `json:"total_ratings"`
}

// UserDetailDTO is the admin view of a single user.
type UserDetailDTO struct {
	UserDTO
	Store *OwnedStoreDTO `json:"store,omitempty"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Name         string
	Email        string
	PasswordHash string
	Address      string
	Role         enums.Role
}

// CreateUserRequest is the admin payload for adding a user of any role.
type CreateUserRequest struct {
	Name     string     `json:"name" validate:"required,min=20,max=60"`
	Email    string     `json:"email" validate:"required,email,max=255"`
	Password string     `json:"password" validate:"required,password" trim:"-"`
	Address  string     `json:"address" validate:"max=400"`
	Role     enums.Role `json:"role" validate:"required,role"`
}

// UpdateUserRequest is the admin payload; nil fields are left untouched.
type UpdateUserRequest struct {
	Name    *string     `json:"name,omitempty" validate:"omitempty,min=20,max=60"`
	Email   *string     `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Address *string     `json:"address,omitempty" validate:"omitempty,max=400"`
	Role    *enums.Role `json:"role,omitempty" validate:"omitempty,role"`
}

// UpdateProfileRequest only carries the fields a user may change on themselves.
type UpdateProfileRequest struct {
	Name    *string `json:"name,omitempty" validate:"omitempty,min=20,max=60"`
	Address *string `json:"address,omitempty" validate:"omitempty,max=400"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required" trim:"-"`
	NewPassword     string `json:"new_password" validate:"required,password" trim:"-"`
}

// ListFilter narrows the admin user listing.
type ListFilter struct {
	Search string
	Role   *enums.Role
	Sort   pagination.Sort
	Page   pagination.Params
}

// SortSpec is the allow-list for admin user listings.
var SortSpec = pagination.NewSortSpec("name", enums.SortAsc, "users.id", map[string]string{
	"name":       "users.name",
	"email":      "users.email",
	"address":    "users.address",
	"role":       "users.role",
	"created_at": "users.created_at",
})

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Address:   u.Address,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func ownedStoreFromModel(s *models.StoreWithStats) *OwnedStoreDTO {
	if s == nil {
		return nil
	}
	return &OwnedStoreDTO{
		ID:            s.ID,
		Name:          s.Name,
		Email:         s.Email,
		Address:       s.Address,
		AverageRating: stats.Round2(s.AverageRating),
		TotalRatings:  s.TotalRatings,
	}
}

func (c CreateUserDTO) ToModel() *models.User {
	role := c.Role
	if role == "" {
		role = enums.RoleNormalUser
	}
	return &models.User{
		Name:         strings.TrimSpace(c.Name),
		Email:        NormalizeEmail(c.Email),
		PasswordHash: c.PasswordHash,
		Address:      strings.TrimSpace(c.Address),
		Role:         role,
	}
}

// NormalizeEmail is applied before every write and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
