package repositories

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storerate/internal/models"
)

const ratingViewColumns = "r.id, r.user_id, r.store_id, r.rating, r.review, r.created_at, r.updated_at, " +
	"u.name AS user_name, u.email AS user_email, s.name AS store_name, s.address AS store_address"

// GORMRatingRepository is a GORM implementation of RatingRepository.
type GORMRatingRepository struct {
	db *gorm.DB
}

// NewGORMRatingRepository creates a new instance of GORMRatingRepository.
func NewGORMRatingRepository(db *gorm.DB) *GORMRatingRepository {
	return &GORMRatingRepository{
		db: db,
	}
}

// GetByID retrieves a single rating by its ID.
func (r *GORMRatingRepository) GetByID(ctx context.Context, id string) (*models.Rating, error) {
	var rating models.Rating
	if err := r.db.WithContext(ctx).First(&rating, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to get rating by ID %s: %w", id, translate(err))
	}
	return &rating, nil
}

func (r *GORMRatingRepository) viewQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("ratings AS r").
		Select(ratingViewColumns).
		Joins("JOIN users u ON u.id = r.user_id").
		Joins("JOIN stores s ON s.id = r.store_id")
}

// GetView retrieves one rating with its author and store names.
func (r *GORMRatingRepository) GetView(ctx context.Context, id string) (*models.RatingView, error) {
	var views []models.RatingView
	if err := r.viewQuery(ctx).Where("r.id = ?", id).Limit(1).Scan(&views).Error; err != nil {
		return nil, fmt.Errorf("failed to get rating view %s: %w", id, translate(err))
	}
	if len(views) == 0 {
		return nil, fmt.Errorf("rating with ID %s not found: %w", id, ErrNotFound)
	}
	return &views[0], nil
}

// List returns ratings matching filter, newest first unless sorted otherwise.
func (r *GORMRatingRepository) List(ctx context.Context, filter RatingFilter) ([]models.RatingView, error) {
	q := r.viewQuery(ctx)
	if filter.UserID != "" {
		q = q.Where("r.user_id = ?", filter.UserID)
	}
	if filter.StoreID != "" {
		q = q.Where("r.store_id = ?", filter.StoreID)
	}
	if filter.StoreOwnerID != "" {
		q = q.Where("s.owner_id = ?", filter.StoreOwnerID)
	}

	field, dir := filter.Sort.resolve(ratingSortFields, "created_at", SortDesc)
	q = q.Order("r." + field + " " + dir).Order("r.id ASC")

	var ratings []models.RatingView
	if err := q.Scan(&ratings).Error; err != nil {
		return nil, fmt.Errorf("failed to list ratings: %w", translate(err))
	}
	return ratings, nil
}

// Create inserts a rating. It fails with ErrNotFound when the store does not
// exist and with ErrDuplicate when the user already rated the store.
func (r *GORMRatingRepository) Create(ctx context.Context, rating *models.Rating) (*models.StoreAggregate, error) {
	if rating.ID == "" {
		rating.ID = uuid.New().String()
	}

	var agg *models.StoreAggregate
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockStore(tx, rating.StoreID); err != nil {
			return err
		}

		var existing int64
		if err := tx.Model(&models.Rating{}).
			Where("user_id = ? AND store_id = ?", rating.UserID, rating.StoreID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return fmt.Errorf("user %s already rated store %s: %w", rating.UserID, rating.StoreID, ErrDuplicate)
		}

		if err := tx.Create(rating).Error; err != nil {
			return err
		}

		var err error
		agg, err = recomputeStore(tx, rating.StoreID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create rating: %w", translate(err))
	}
	return agg, nil
}

// UpdateForUser overwrites the rating userID gave storeID.
func (r *GORMRatingRepository) UpdateForUser(ctx context.Context, userID, storeID string, score int, review *string) (*models.Rating, *models.StoreAggregate, error) {
	var (
		rating models.Rating
		agg    *models.StoreAggregate
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockStore(tx, storeID); err != nil {
			return err
		}
		if err := tx.First(&rating, "user_id = ? AND store_id = ?", userID, storeID).Error; err != nil {
			return err
		}
		if err := applyScore(tx, &rating, score, review); err != nil {
			return err
		}
		var err error
		agg, err = recomputeStore(tx, storeID)
		return err
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to update rating of user %s for store %s: %w", userID, storeID, translate(err))
	}
	return &rating, agg, nil
}

// UpdateByID overwrites the score and review of rating id.
func (r *GORMRatingRepository) UpdateByID(ctx context.Context, id string, score int, review *string) (*models.Rating, *models.StoreAggregate, error) {
	var (
		rating models.Rating
		agg    *models.StoreAggregate
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&rating, "id = ?", id).Error; err != nil {
			return err
		}
		if err := lockStore(tx, rating.StoreID); err != nil {
			return err
		}
		if err := applyScore(tx, &rating, score, review); err != nil {
			return err
		}
		var err error
		agg, err = recomputeStore(tx, rating.StoreID)
		return err
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to update rating %s: %w", id, translate(err))
	}
	return &rating, agg, nil
}

// Delete removes rating id and returns the deleted row.
func (r *GORMRatingRepository) Delete(ctx context.Context, id string) (*models.Rating, *models.StoreAggregate, error) {
	var (
		rating models.Rating
		agg    *models.StoreAggregate
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&rating, "id = ?", id).Error; err != nil {
			return err
		}
		if err := lockStore(tx, rating.StoreID); err != nil {
			return err
		}
		if err := tx.Delete(&models.Rating{}, "id = ?", id).Error; err != nil {
			return err
		}
		var err error
		agg, err = recomputeStore(tx, rating.StoreID)
		return err
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to delete rating %s: %w", id, translate(err))
	}
	return &rating, agg, nil
}

// lockStore takes a row lock on the store so that concurrent rating
// mutations on it recompute the aggregate one after another. SQLite ignores
// the locking clause; its writers are already serialized.
func lockStore(tx *gorm.DB, storeID string) error {
	var store models.Store
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		First(&store, "id = ?", storeID).Error
	if err != nil {
		return fmt.Errorf("store with ID %s: %w", storeID, translate(err))
	}
	return nil
}

func applyScore(tx *gorm.DB, rating *models.Rating, score int, review *string) error {
	rating.Rating = score
	rating.Review = review
	rating.UpdatedAt = time.Now()
	return tx.Model(rating).
		Select("rating", "review", "updated_at").
		Updates(rating).Error
}

// recomputeStore rewrites the store's average and count from its ratings.
func recomputeStore(tx *gorm.DB, storeID string) (*models.StoreAggregate, error) {
	var row struct {
		Total   int64
		Average float64
	}
	err := tx.Model(&models.Rating{}).
		Select("COUNT(*) AS total, COALESCE(AVG(rating), 0) AS average").
		Where("store_id = ?", storeID).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}

	agg := &models.StoreAggregate{
		StoreID:       storeID,
		AverageRating: RoundTo(row.Average, 2),
		TotalRatings:  row.Total,
	}
	err = tx.Model(&models.Store{}).
		Where("id = ?", storeID).
		Updates(map[string]interface{}{
			"average_rating": agg.AverageRating,
			"total_ratings":  agg.TotalRatings,
		}).Error
	if err != nil {
		return nil, err
	}
	return agg, nil
}

// RoundTo rounds v half away from zero to the given number of decimals.
func RoundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
