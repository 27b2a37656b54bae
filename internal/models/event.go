package models

import "time"

// RatingEventType names what happened to a rating.
type RatingEventType string

const (
	RatingCreated RatingEventType = "rating.created"
	RatingUpdated RatingEventType = "rating.updated"
	RatingDeleted RatingEventType = "rating.deleted"
)

// RatingEvent is published after a rating mutation commits. It carries the
// store aggregate as it stood after the change.
type RatingEvent struct {
	Type          RatingEventType `json:"type"`
	RatingID      string          `json:"ratingId"`
	StoreID       string          `json:"storeId"`
	UserID        string          `json:"userId"`
	Rating        int             `json:"rating"`
	AverageRating float64         `json:"averageRating"`
	TotalRatings  int64           `json:"totalRatings"`
	OccurredAt    time.Time       `json:"occurredAt"`
}
