package repositories

import (
	"context"

	"storerate/internal/models"
)

// StoreRepository defines the interface for store data access.
type StoreRepository interface {
	GetByID(ctx context.Context, id string) (*models.Store, error)
	GetView(ctx context.Context, id, viewerID string) (*models.StoreView, error)
	List(ctx context.Context, filter StoreFilter) ([]models.StoreView, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Store, error)
	Create(ctx context.Context, store *models.Store) error
	Update(ctx context.Context, store *models.Store) error
	Delete(ctx context.Context, id string) error
}
