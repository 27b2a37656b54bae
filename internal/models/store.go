package models

import "time"

// DefaultStoreImage is used when a store is created without an image.
const DefaultStoreImage = "/placeholder.jpg"

// StoreCategories lists the categories offered by the client. The server
// accepts any non-empty category string.
var StoreCategories = []string{
	"Restaurant", "Retail", "Electronics", "Grocery", "Fashion",
	"Beauty", "Health", "Services", "Entertainment", "Other",
}

// Store is a business that customers can rate.
// AverageRating and TotalRatings are derived from the ratings table and are
// only ever written by the rating repository.
type Store struct {
	ID            string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name          string    `json:"name" gorm:"type:varchar(100);not null;index"`
	Description   *string   `json:"description" gorm:"type:text"`
	Address       string    `json:"address" gorm:"type:varchar(400);not null"`
	Category      string    `json:"category" gorm:"type:varchar(50);not null;index"`
	ImageURL      string    `json:"imageUrl" gorm:"type:text"`
	OwnerID       string    `json:"ownerId" gorm:"type:varchar(36);not null;index"`
	Owner         *User     `json:"-" gorm:"foreignKey:OwnerID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;"`
	AverageRating float64   `json:"averageRating" gorm:"type:numeric(3,2);not null;default:0"`
	TotalRatings  int64     `json:"totalRatings" gorm:"not null;default:0"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// StoreView is a Store joined with its owner's name and, when the listing is
// made on behalf of a user, that user's own rating of the store.
type StoreView struct {
	Store
	OwnerName  string  `json:"ownerName"`
	UserRating *int    `json:"userRating"`
	UserReview *string `json:"userReview"`
}
