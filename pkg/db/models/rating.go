package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Rating is one user's score for one store. (user_id, store_id) is unique.
type Rating struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_ratings_user_store"`
	StoreID   uuid.UUID `gorm:"column:store_id;type:uuid;not null;uniqueIndex:idx_ratings_user_store;index"`
	Rating    int       `gorm:"column:rating;type:smallint;not null"`
	Comment   *string   `gorm:"column:comment;type:text"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Rating) TableName() string { return "ratings" }

func (r *Rating) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// StoreRatingStats maps the store_rating_stats view.
type StoreRatingStats struct {
	StoreID       uuid.UUID `gorm:"column:store_id;type:uuid"`
	AverageRating float64   `gorm:"column:average_rating"`
	TotalRatings  int64     `gorm:"column:total_ratings"`
}

func (StoreRatingStats) TableName() string { return "store_rating_stats" }
