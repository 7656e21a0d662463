package stores

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/storeratings/storeratings-backend/pkg/db/models"
	"github.com/storeratings/storeratings-backend/pkg/enums"
	"github.com/storeratings/storeratings-backend/pkg/pagination"
	"github.com/storeratings/storeratings-backend/pkg/stats"
	"github.com/storeratings/storeratings-backend/pkg/types"
)

// StoreDTO is a store with its rating aggregate. UserRating is only present
// for authenticated callers who have rated the store.
type StoreDTO struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Address       string     `json:"address"`
	OwnerID       *uuid.UUID `json:"owner_id"`
	AverageRating float64    `json:"average_rating"`
	TotalRatings  int64      `json:"total_ratings"`
	UserRating    *int       `json:"user_rating,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// StoreRatingDTO is one rating as shown on a store page.
type StoreRatingDTO struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	UserName  string    `json:"user_name"`
	Rating    int       `json:"rating"`
	Comment   *string   `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StoreRatingRow is the repository projection behind StoreRatingDTO.
type StoreRatingRow struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	UserName  string
	Rating    int
	Comment   *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ListInput drives both the public and the admin store listing.
type ListInput struct {
	Search   string
	Sort     pagination.Sort
	Page     pagination.Params
	ViewerID *uuid.UUID
}

type CreateStoreRequest struct {
	Name    string     `json:"name" validate:"required,min=1,max=100"`
	Email   string     `json:"email" validate:"required,email,max=255"`
	Address string     `json:"address" validate:"max=400"`
	OwnerID *uuid.UUID `json:"owner_id,omitempty"`
}

// UpdateStoreRequest leaves nil fields untouched; owner_id null unlinks the owner.
type UpdateStoreRequest struct {
	Name    *string          `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Email   *string          `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Address *string          `json:"address,omitempty" validate:"omitempty,max=400"`
	OwnerID types.OptionalID `json:"owner_id"`
}

// SortSpec is the allow-list for store listings.
var SortSpec = pagination.NewSortSpec("name", enums.SortAsc, "stores.id", map[string]string{
	"name":           "stores.name",
	"email":          "stores.email",
	"address":        "stores.address",
	"created_at":     "stores.created_at",
	"average_rating": "average_rating",
	"total_ratings":  "total_ratings",
})

// RatingsSortSpec orders a store's ratings newest first.
var RatingsSortSpec = pagination.NewSortSpec("created_at", enums.SortDesc, "ratings.id", map[string]string{
	"created_at": "ratings.created_at",
	"rating":     "ratings.rating",
})

func FromStats(row *models.StoreWithStats) StoreDTO {
	return StoreDTO{
		ID:            row.ID,
		Name:          row.Name,
		Email:         row.Email,
		Address:       row.Address,
		OwnerID:       row.OwnerID,
		AverageRating: stats.Round2(row.AverageRating),
		TotalRatings:  row.TotalRatings,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
}

func (r StoreRatingRow) toDTO() StoreRatingDTO {
	return StoreRatingDTO(r)
}

func (c CreateStoreRequest) toModel() *models.Store {
	return &models.Store{
		Name:    strings.TrimSpace(c.Name),
		Email:   normalizeEmail(c.Email),
		Address: strings.TrimSpace(c.Address),
		OwnerID: c.OwnerID,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
