package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"storerate/internal/models"
)

const storeViewColumns = "s.id, s.name, s.description, s.address, s.category, s.image_url, s.owner_id, " +
	"s.average_rating, s.total_ratings, s.created_at, s.updated_at, u.name AS owner_name"

// GORMStoreRepository is a GORM implementation of StoreRepository.
type GORMStoreRepository struct {
	db *gorm.DB
}

// NewGORMStoreRepository creates a new instance of GORMStoreRepository.
func NewGORMStoreRepository(db *gorm.DB) *GORMStoreRepository {
	return &GORMStoreRepository{
		db: db,
	}
}

// GetByID retrieves a single store by its ID from the database.
func (r *GORMStoreRepository) GetByID(ctx context.Context, id string) (*models.Store, error) {
	var store models.Store
	if err := r.db.WithContext(ctx).First(&store, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to get store by ID %s: %w", id, translate(err))
	}
	return &store, nil
}

// viewQuery selects stores joined with their owner and, when viewerID is set,
// the viewer's own rating.
func (r *GORMStoreRepository) viewQuery(ctx context.Context, viewerID string) *gorm.DB {
	columns := storeViewColumns
	q := r.db.WithContext(ctx).Table("stores AS s")
	if viewerID != "" {
		columns += ", vr.rating AS user_rating, vr.review AS user_review"
	}
	q = q.Select(columns).Joins("JOIN users u ON u.id = s.owner_id")
	if viewerID != "" {
		q = q.Joins("LEFT JOIN ratings vr ON vr.store_id = s.id AND vr.user_id = ?", viewerID)
	}
	return q
}

// GetView retrieves one store with its owner name and the viewer's rating.
func (r *GORMStoreRepository) GetView(ctx context.Context, id, viewerID string) (*models.StoreView, error) {
	var views []models.StoreView
	if err := r.viewQuery(ctx, viewerID).Where("s.id = ?", id).Limit(1).Scan(&views).Error; err != nil {
		return nil, fmt.Errorf("failed to get store view %s: %w", id, translate(err))
	}
	if len(views) == 0 {
		return nil, fmt.Errorf("store with ID %s not found: %w", id, ErrNotFound)
	}
	return &views[0], nil
}

// List returns stores matching filter. Name and address match
// case-insensitive substrings, category matches exactly.
func (r *GORMStoreRepository) List(ctx context.Context, filter StoreFilter) ([]models.StoreView, error) {
	q := r.viewQuery(ctx, filter.ViewerID)
	if filter.Name != "" {
		q = q.Where("LOWER(s.name) LIKE ?", containsPattern(filter.Name))
	}
	if filter.Address != "" {
		q = q.Where("LOWER(s.address) LIKE ?", containsPattern(filter.Address))
	}
	if filter.Category != "" {
		q = q.Where("s.category = ?", filter.Category)
	}

	field, dir := filter.Sort.resolve(storeSortFields, "name", SortAsc)
	q = q.Order("s." + field + " " + dir).Order("s.id ASC")

	var stores []models.StoreView
	if err := q.Scan(&stores).Error; err != nil {
		return nil, fmt.Errorf("failed to list stores: %w", translate(err))
	}
	return stores, nil
}

// ListByOwner returns the stores owned by ownerID, oldest first.
func (r *GORMStoreRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Store, error) {
	var stores []models.Store
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at ASC").Order("id ASC").
		Find(&stores).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list stores of owner %s: %w", ownerID, translate(err))
	}
	return stores, nil
}

// Create creates a new store in the database. Derived rating columns always
// start at zero.
func (r *GORMStoreRepository) Create(ctx context.Context, store *models.Store) error {
	if store.ID == "" {
		store.ID = uuid.New().String()
	}
	store.AverageRating = 0
	store.TotalRatings = 0
	if err := r.db.WithContext(ctx).Create(store).Error; err != nil {
		return fmt.Errorf("failed to create store: %w", translate(err))
	}
	return nil
}

// Update saves the editable columns of an existing store. The derived
// rating columns are never written here.
func (r *GORMStoreRepository) Update(ctx context.Context, store *models.Store) error {
	res := r.db.WithContext(ctx).
		Model(store).
		Select("name", "description", "address", "category", "image_url", "owner_id").
		Updates(store)
	if res.Error != nil {
		return fmt.Errorf("failed to update store: %w", translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("store with ID %s not found for update: %w", store.ID, ErrNotFound)
	}
	return nil
}

// Delete deletes a store by its ID. Its ratings go with it.
func (r *GORMStoreRepository) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("store_id = ?", id).Delete(&models.Rating{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Store{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("store with ID %s not found for deletion: %w", id, ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete store: %w", translate(err))
	}
	return nil
}
