package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Store is a rateable business, optionally linked to one store_owner user.
type Store struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Name      string     `gorm:"column:name;type:varchar(100);not null"`
	Email     string     `gorm:"column:email;type:text;not null;uniqueIndex"`
	Address   string     `gorm:"column:address;type:varchar(400);not null;default:''"`
	OwnerID   *uuid.UUID `gorm:"column:owner_id;type:uuid;uniqueIndex"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Store) TableName() string { return "stores" }

func (s *Store) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// StoreWithStats is a store row joined with its store_rating_stats aggregate.
type StoreWithStats struct {
	Store
	AverageRating float64 `gorm:"column:average_rating"`
	TotalRatings  int64   `gorm:"column:total_ratings"`
}
