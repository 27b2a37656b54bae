package repositories

import (
	"context"

	"storerate/internal/models"
)

// Totals counts the rows of every table.
type Totals struct {
	Users   int64
	Stores  int64
	Ratings int64
}

// DashboardRepository defines the aggregate queries behind the dashboards.
type DashboardRepository interface {
	Totals(ctx context.Context) (*Totals, error)
	RoleCounts(ctx context.Context) (map[models.Role]int64, error)
	RecentActivity(ctx context.Context, limit int) ([]models.ActivityEntry, error)
	StoreReviews(ctx context.Context, storeID string) ([]models.StoreReview, error)
	StoreDistribution(ctx context.Context, storeID string) (map[int]int64, error)
	CustomerSummary(ctx context.Context, userID string) (count int64, average float64, err error)
	CustomerRecentRatings(ctx context.Context, userID string, limit int) ([]models.CustomerRating, error)
}
