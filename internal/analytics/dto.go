package analytics

import (
	"time"

	"github.com/google/uuid"

	"github.com/storeratings/storeratings-backend/pkg/enums"
	"github.com/storeratings/storeratings-backend/pkg/pagination"
)

// DistributionBucket counts ratings with one score. Percent is of all ratings.
type DistributionBucket struct {
	Rating  int     `json:"rating"`
	Count   int64   `json:"count"`
	Percent float64 `json:"percent"`
}

// TrendPoint is one UTC day of rating activity.
type TrendPoint struct {
	Date          string  `json:"date"`
	Count         int64   `json:"count"`
	AverageRating float64 `json:"average_rating"`
}

// RaterDTO is a rating on the owner's store together with who left it.
type RaterDTO struct {
	RatingID  uuid.UUID `json:"rating_id"`
	UserID    uuid.UUID `json:"user_id"`
	UserName  string    `json:"user_name"`
	UserEmail string    `json:"user_email"`
	Rating    int       `json:"rating"`
	Comment   *string   `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RaterRow is the repository projection behind RaterDTO.
type RaterRow struct {
	RatingID  uuid.UUID
	UserID    uuid.UUID
	UserName  string
	UserEmail string
	Rating    int
	Comment   *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type OwnerStoreDTO struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Email   string    `json:"email"`
	Address string    `json:"address"`
}

// RatingSummary is the shared block of aggregate figures.
type RatingSummary struct {
	AverageRating float64              `json:"average_rating"`
	TotalRatings  int64                `json:"total_ratings"`
	PositiveShare float64              `json:"positive_share"`
	NegativeShare float64              `json:"negative_share"`
	MinRating     *int                 `json:"min_rating"`
	MaxRating     *int                 `json:"max_rating"`
	Distribution  []DistributionBucket `json:"distribution"`
}

type OwnerDashboard struct {
	Store OwnerStoreDTO `json:"store"`
	RatingSummary
	WindowDays    int          `json:"window_days"`
	Trend         []TrendPoint `json:"trend"`
	RecentRatings []RaterDTO   `json:"recent_ratings"`
}

type Totals struct {
	Users   int64 `json:"users"`
	Stores  int64 `json:"stores"`
	Ratings int64 `json:"ratings"`
}

// Growth counts rows created inside the trend window.
type Growth struct {
	WindowDays int   `json:"window_days"`
	NewUsers   int64 `json:"new_users"`
	NewStores  int64 `json:"new_stores"`
	NewRatings int64 `json:"new_ratings"`
}

type TopStoreDTO struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	AverageRating float64   `json:"average_rating"`
	TotalRatings  int64     `json:"total_ratings"`
}

type AdminDashboard struct {
	Totals      Totals               `json:"totals"`
	UsersByRole map[enums.Role]int64 `json:"users_by_role"`
	RatingSummary
	Growth    Growth        `json:"growth"`
	TopStores []TopStoreDTO `json:"top_stores"`
	Trend     []TrendPoint  `json:"trend"`
}

// summaryRow is the single-row aggregate read from ratings.
type summaryRow struct {
	Count     int64
	Sum       int64
	MinRating *int
	MaxRating *int
	Positive  int64
	Negative  int64
}

// RatersSortSpec is the allow-list for the owner's raters listing.
var RatersSortSpec = pagination.NewSortSpec("created_at", enums.SortDesc, "ratings.id", map[string]string{
	"created_at": "ratings.created_at",
	"rating":     "ratings.rating",
	"user_name":  "users.name",
})

func (r RaterRow) toDTO() RaterDTO {
	return RaterDTO(r)
}
