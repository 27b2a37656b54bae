package models

import "time"

const (
	MinRating = 1
	MaxRating = 5
)

// Rating is a user's star rating and optional review of a store.
// There is at most one Rating per (UserID, StoreID).
type Rating struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `json:"userId" gorm:"type:varchar(36);not null;uniqueIndex:idx_ratings_user_store"`
	StoreID   string    `json:"storeId" gorm:"type:varchar(36);not null;uniqueIndex:idx_ratings_user_store;index"`
	Rating    int       `json:"rating" gorm:"not null;check:rating >= 1 AND rating <= 5"`
	Review    *string   `json:"review" gorm:"type:text"`
	User      *User     `json:"-" gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Store     *Store    `json:"-" gorm:"foreignKey:StoreID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RatingView is a Rating joined with the names of its author and store.
type RatingView struct {
	Rating
	UserName     string `json:"userName"`
	UserEmail    string `json:"userEmail"`
	StoreName    string `json:"storeName"`
	StoreAddress string `json:"storeAddress"`
}

// StoreAggregate is the derived rating state of a store.
type StoreAggregate struct {
	StoreID       string  `json:"storeId"`
	AverageRating float64 `json:"averageRating"`
	TotalRatings  int64   `json:"totalRatings"`
}
