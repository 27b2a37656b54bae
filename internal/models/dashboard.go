package models

import "time"

// RatingDistribution counts ratings per star value. All five buckets are
// always present.
type RatingDistribution map[int]int64

// NewRatingDistribution returns a distribution with every bucket set to zero.
func NewRatingDistribution() RatingDistribution {
	d := make(RatingDistribution, MaxRating)
	for star := MinRating; star <= MaxRating; star++ {
		d[star] = 0
	}
	return d
}

// ActivityEntry is one line of the admin recent-activity feed.
type ActivityEntry struct {
	Type      string    `json:"type"`
	UserName  string    `json:"userName"`
	StoreName string    `json:"storeName"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"createdAt"`
}

// AdminStats is the admin dashboard payload.
type AdminStats struct {
	TotalUsers     int64           `json:"totalUsers"`
	TotalStores    int64           `json:"totalStores"`
	TotalRatings   int64           `json:"totalRatings"`
	UserRoles      map[Role]int64  `json:"userRoles"`
	RecentActivity []ActivityEntry `json:"recentActivity"`
}

// OwnerStoreSummary identifies the store an owner dashboard describes.
type OwnerStoreSummary struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	AverageRating float64 `json:"averageRating"`
	TotalRatings  int64   `json:"totalRatings"`
}

// StoreReview is a review as shown on the owner dashboard.
type StoreReview struct {
	Rating    int       `json:"rating"`
	Review    *string   `json:"review"`
	UserName  string    `json:"userName"`
	CreatedAt time.Time `json:"createdAt"`
}

// OwnerStats is the store owner dashboard payload.
type OwnerStats struct {
	Store              OwnerStoreSummary  `json:"store"`
	Ratings            []StoreReview      `json:"ratings"`
	RatingDistribution RatingDistribution `json:"ratingDistribution"`
}

// CustomerRating is a rating as shown on the customer dashboard.
type CustomerRating struct {
	Rating    int       `json:"rating"`
	Review    *string   `json:"review"`
	StoreName string    `json:"storeName"`
	CreatedAt time.Time `json:"createdAt"`
}

// CustomerStats is the customer dashboard payload.
type CustomerStats struct {
	TotalRatingsSubmitted int64            `json:"totalRatingsSubmitted"`
	AverageRatingGiven    float64          `json:"averageRatingGiven"`
	RecentRatings         []CustomerRating `json:"recentRatings"`
}
