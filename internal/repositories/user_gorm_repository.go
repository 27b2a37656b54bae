package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"storerate/internal/models"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// Create creates a new user in the database.
func (r *GORMUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", translate(err))
	}
	return nil
}

// GetByEmail retrieves a user by their email from the database.
func (r *GORMUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, fmt.Errorf("failed to get user by email %s: %w", email, translate(err))
	}
	return &user, nil
}

// GetByID retrieves a user by their ID from the database.
func (r *GORMUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to get user by ID %s: %w", id, translate(err))
	}
	return &user, nil
}

// List returns users matching filter. The derived rating column is the mean
// average rating of the stores a user owns, zero when they own none.
func (r *GORMUserRepository) List(ctx context.Context, filter UserFilter) ([]models.UserView, error) {
	q := r.db.WithContext(ctx).
		Table("users AS u").
		Select("u.*, COALESCE((SELECT AVG(s.average_rating) FROM stores s WHERE s.owner_id = u.id), 0) AS rating")

	if filter.Name != "" {
		q = q.Where("LOWER(u.name) LIKE ?", containsPattern(filter.Name))
	}
	if filter.Email != "" {
		q = q.Where("LOWER(u.email) LIKE ?", containsPattern(filter.Email))
	}
	if filter.Address != "" {
		q = q.Where("LOWER(u.address) LIKE ?", containsPattern(filter.Address))
	}
	if filter.Role != "" {
		q = q.Where("u.role = ?", filter.Role)
	}

	field, dir := filter.Sort.resolve(userSortFields, "name", SortAsc)
	if field == "rating" {
		q = q.Order("rating " + dir).Order("u.name ASC")
	} else {
		q = q.Order("u." + field + " " + dir).Order("u.id ASC")
	}

	var users []models.UserView
	if err := q.Scan(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", translate(err))
	}
	for i := range users {
		if users[i].Role != models.RoleStoreOwner {
			users[i].Rating = nil
		} else if users[i].Rating == nil {
			zero := 0.0
			users[i].Rating = &zero
		}
	}
	return users, nil
}

// Update saves the mutable profile columns of an existing user.
func (r *GORMUserRepository) Update(ctx context.Context, user *models.User) error {
	res := r.db.WithContext(ctx).
		Model(user).
		Select("name", "email", "password_hash", "address", "role").
		Updates(user)
	if res.Error != nil {
		return fmt.Errorf("failed to update user: %w", translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user with ID %s not found for update: %w", user.ID, ErrNotFound)
	}
	return nil
}
