package ratings

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/storeratings/storeratings-backend/pkg/db/models"
	"github.com/storeratings/storeratings-backend/pkg/enums"
	"github.com/storeratings/storeratings-backend/pkg/pagination"
	"github.com/storeratings/storeratings-backend/pkg/stats"
)

const (
	MinRating        = 1
	MaxRating        = 5
	maxCommentLength = 1000
)

// SubmitRatingRequest is the body of a rating submission.
type SubmitRatingRequest struct {
	Rating  int     `json:"rating" validate:"required,min=1,max=5"`
	Comment *string `json:"comment,omitempty" validate:"omitempty,max=1000"`
}

type RatingDTO struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	StoreID   uuid.UUID `json:"store_id"`
	Rating    int       `json:"rating"`
	Comment   *string   `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StoreAggregate is the refreshed average and count after a write.
type StoreAggregate struct {
	StoreID       uuid.UUID `json:"store_id"`
	AverageRating float64   `json:"average_rating"`
	TotalRatings  int64     `json:"total_ratings"`
}

// SubmitResult is returned by a submission; Created decides 201 vs 200.
type SubmitResult struct {
	Rating  RatingDTO      `json:"rating"`
	Store   StoreAggregate `json:"store"`
	Created bool           `json:"created"`
}

// MyRatingDTO is one of the caller's ratings with the rated store's name.
type MyRatingDTO struct {
	RatingDTO
	StoreName    string `json:"store_name"`
	StoreAddress string `json:"store_address"`
}

// AdminRatingDTO carries both sides of a rating for moderation.
type AdminRatingDTO struct {
	RatingDTO
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email"`
	StoreName string `json:"store_name"`
}

// RatingRow is the joined projection behind the list DTOs.
type RatingRow struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	StoreID      uuid.UUID
	Rating       int
	Comment      *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	UserName     string
	UserEmail    string
	StoreName    string
	StoreAddress string
}

// AdminFilter narrows the admin rating listing.
type AdminFilter struct {
	StoreID *uuid.UUID
	UserID  *uuid.UUID
	Page    pagination.Params
}

// listSort orders rating lists newest first.
var listSort = pagination.NewSortSpec("created_at", enums.SortDesc, "ratings.id", map[string]string{
	"created_at": "ratings.created_at",
}).Resolve("", "")

func FromModel(m *models.Rating) RatingDTO {
	return RatingDTO{
		ID:        m.ID,
		UserID:    m.UserID,
		StoreID:   m.StoreID,
		Rating:    m.Rating,
		Comment:   m.Comment,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func aggregateFromStats(s models.StoreRatingStats) StoreAggregate {
	return StoreAggregate{
		StoreID:       s.StoreID,
		AverageRating: stats.Round2(s.AverageRating),
		TotalRatings:  s.TotalRatings,
	}
}

func (r RatingRow) base() RatingDTO {
	return RatingDTO{
		ID:        r.ID,
		UserID:    r.UserID,
		StoreID:   r.StoreID,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// normalizeComment trims the comment and drops it when empty.
func normalizeComment(comment *string) *string {
	if comment == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*comment)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
