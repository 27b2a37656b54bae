package repositories

import (
	"context"

	"storerate/internal/models"
)

// RatingRepository defines the interface for rating data access. Every
// mutation recomputes the parent store's aggregate in the same transaction
// and returns it.
type RatingRepository interface {
	GetByID(ctx context.Context, id string) (*models.Rating, error)
	GetView(ctx context.Context, id string) (*models.RatingView, error)
	List(ctx context.Context, filter RatingFilter) ([]models.RatingView, error)
	Create(ctx context.Context, rating *models.Rating) (*models.StoreAggregate, error)
	UpdateForUser(ctx context.Context, userID, storeID string, score int, review *string) (*models.Rating, *models.StoreAggregate, error)
	UpdateByID(ctx context.Context, id string, score int, review *string) (*models.Rating, *models.StoreAggregate, error)
	Delete(ctx context.Context, id string) (*models.Rating, *models.StoreAggregate, error)
}
