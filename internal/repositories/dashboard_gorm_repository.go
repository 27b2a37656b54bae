package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"storerate/internal/models"
)

// GORMDashboardRepository is a GORM implementation of DashboardRepository.
type GORMDashboardRepository struct {
	db *gorm.DB
}

// NewGORMDashboardRepository creates a new instance of GORMDashboardRepository.
func NewGORMDashboardRepository(db *gorm.DB) *GORMDashboardRepository {
	return &GORMDashboardRepository{
		db: db,
	}
}

// Totals counts users, stores and ratings.
func (r *GORMDashboardRepository) Totals(ctx context.Context) (*Totals, error) {
	db := r.db.WithContext(ctx)
	var t Totals
	if err := db.Model(&models.User{}).Count(&t.Users).Error; err != nil {
		return nil, fmt.Errorf("failed to count users: %w", translate(err))
	}
	if err := db.Model(&models.Store{}).Count(&t.Stores).Error; err != nil {
		return nil, fmt.Errorf("failed to count stores: %w", translate(err))
	}
	if err := db.Model(&models.Rating{}).Count(&t.Ratings).Error; err != nil {
		return nil, fmt.Errorf("failed to count ratings: %w", translate(err))
	}
	return &t, nil
}

// RoleCounts groups users by role.
func (r *GORMDashboardRepository) RoleCounts(ctx context.Context) (map[models.Role]int64, error) {
	var rows []struct {
		Role  models.Role
		Count int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select("role, COUNT(*) AS count").
		Group("role").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count users by role: %w", translate(err))
	}

	counts := make(map[models.Role]int64, len(rows))
	for _, row := range rows {
		counts[row.Role] = row.Count
	}
	return counts, nil
}

// RecentActivity returns the latest ratings joined with user and store names.
func (r *GORMDashboardRepository) RecentActivity(ctx context.Context, limit int) ([]models.ActivityEntry, error) {
	var entries []models.ActivityEntry
	err := r.db.WithContext(ctx).
		Table("ratings AS r").
		Select("'rating' AS type, u.name AS user_name, s.name AS store_name, r.rating, r.created_at").
		Joins("JOIN users u ON u.id = r.user_id").
		Joins("JOIN stores s ON s.id = r.store_id").
		Order("r.created_at DESC").Order("r.id ASC").
		Limit(limit).
		Scan(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load recent activity: %w", translate(err))
	}
	return entries, nil
}

// StoreReviews returns every rating of a store, newest first.
func (r *GORMDashboardRepository) StoreReviews(ctx context.Context, storeID string) ([]models.StoreReview, error) {
	var reviews []models.StoreReview
	err := r.db.WithContext(ctx).
		Table("ratings AS r").
		Select("r.rating, r.review, r.created_at, u.name AS user_name").
		Joins("JOIN users u ON u.id = r.user_id").
		Where("r.store_id = ?", storeID).
		Order("r.created_at DESC").Order("r.id ASC").
		Scan(&reviews).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load reviews of store %s: %w", storeID, translate(err))
	}
	return reviews, nil
}

// StoreDistribution counts a store's ratings per star value. Star values
// nobody gave are absent from the result.
func (r *GORMDashboardRepository) StoreDistribution(ctx context.Context, storeID string) (map[int]int64, error) {
	var rows []struct {
		Rating int
		Count  int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Rating{}).
		Select("rating, COUNT(*) AS count").
		Where("store_id = ?", storeID).
		Group("rating").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load rating distribution of store %s: %w", storeID, translate(err))
	}

	dist := make(map[int]int64, len(rows))
	for _, row := range rows {
		dist[row.Rating] = row.Count
	}
	return dist, nil
}

// CustomerSummary returns how many ratings a user submitted and their mean.
func (r *GORMDashboardRepository) CustomerSummary(ctx context.Context, userID string) (int64, float64, error) {
	var row struct {
		Total   int64
		Average float64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Rating{}).
		Select("COUNT(*) AS total, COALESCE(AVG(rating), 0) AS average").
		Where("user_id = ?", userID).
		Scan(&row).Error
	if err != nil {
		return 0, 0, fmt.Errorf("failed to summarize ratings of user %s: %w", userID, translate(err))
	}
	return row.Total, row.Average, nil
}

// CustomerRecentRatings returns the latest ratings a user submitted.
func (r *GORMDashboardRepository) CustomerRecentRatings(ctx context.Context, userID string, limit int) ([]models.CustomerRating, error) {
	var ratings []models.CustomerRating
	err := r.db.WithContext(ctx).
		Table("ratings AS r").
		Select("r.rating, r.review, r.created_at, s.name AS store_name").
		Joins("JOIN stores s ON s.id = r.store_id").
		Where("r.user_id = ?", userID).
		Order("r.created_at DESC").Order("r.id ASC").
		Limit(limit).
		Scan(&ratings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load recent ratings of user %s: %w", userID, translate(err))
	}
	return ratings, nil
}
