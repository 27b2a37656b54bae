package services_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"storerate/internal/models"
	"storerate/internal/repositories"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, filter repositories.UserFilter) ([]models.UserView, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.UserView), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// MockStoreRepository is a mock implementation of repositories.StoreRepository
type MockStoreRepository struct {
	mock.Mock
}

func (m *MockStoreRepository) GetByID(ctx context.Context, id string) (*models.Store, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Store), args.Error(1)
}

func (m *MockStoreRepository) GetView(ctx context.Context, id, viewerID string) (*models.StoreView, error) {
	args := m.Called(ctx, id, viewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StoreView), args.Error(1)
}

func (m *MockStoreRepository) List(ctx context.Context, filter repositories.StoreFilter) ([]models.StoreView, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.StoreView), args.Error(1)
}

func (m *MockStoreRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Store, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Store), args.Error(1)
}

func (m *MockStoreRepository) Create(ctx context.Context, store *models.Store) error {
	args := m.Called(ctx, store)
	return args.Error(0)
}

func (m *MockStoreRepository) Update(ctx context.Context, store *models.Store) error {
	args := m.Called(ctx, store)
	return args.Error(0)
}

func (m *MockStoreRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockRatingRepository is a mock implementation of repositories.RatingRepository
type MockRatingRepository struct {
	mock.Mock
}

func (m *MockRatingRepository) GetByID(ctx context.Context, id string) (*models.Rating, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Rating), args.Error(1)
}

func (m *MockRatingRepository) GetView(ctx context.Context, id string) (*models.RatingView, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RatingView), args.Error(1)
}

func (m *MockRatingRepository) List(ctx context.Context, filter repositories.RatingFilter) ([]models.RatingView, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RatingView), args.Error(1)
}

func (m *MockRatingRepository) Create(ctx context.Context, rating *models.Rating) (*models.StoreAggregate, error) {
	args := m.Called(ctx, rating)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StoreAggregate), args.Error(1)
}

func (m *MockRatingRepository) UpdateForUser(ctx context.Context, userID, storeID string, score int, review *string) (*models.Rating, *models.StoreAggregate, error) {
	args := m.Called(ctx, userID, storeID, score, review)
	return ratingResult(args)
}

func (m *MockRatingRepository) UpdateByID(ctx context.Context, id string, score int, review *string) (*models.Rating, *models.StoreAggregate, error) {
	args := m.Called(ctx, id, score, review)
	return ratingResult(args)
}

func (m *MockRatingRepository) Delete(ctx context.Context, id string) (*models.Rating, *models.StoreAggregate, error) {
	args := m.Called(ctx, id)
	return ratingResult(args)
}

func ratingResult(args mock.Arguments) (*models.Rating, *models.StoreAggregate, error) {
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*models.Rating), args.Get(1).(*models.StoreAggregate), args.Error(2)
}

// MockDashboardRepository is a mock implementation of repositories.DashboardRepository
type MockDashboardRepository struct {
	mock.Mock
}

func (m *MockDashboardRepository) Totals(ctx context.Context) (*repositories.Totals, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repositories.Totals), args.Error(1)
}

func (m *MockDashboardRepository) RoleCounts(ctx context.Context) (map[models.Role]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[models.Role]int64), args.Error(1)
}

func (m *MockDashboardRepository) RecentActivity(ctx context.Context, limit int) ([]models.ActivityEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ActivityEntry), args.Error(1)
}

func (m *MockDashboardRepository) StoreReviews(ctx context.Context, storeID string) ([]models.StoreReview, error) {
	args := m.Called(ctx, storeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.StoreReview), args.Error(1)
}

func (m *MockDashboardRepository) StoreDistribution(ctx context.Context, storeID string) (map[int]int64, error) {
	args := m.Called(ctx, storeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int]int64), args.Error(1)
}

func (m *MockDashboardRepository) CustomerSummary(ctx context.Context, userID string) (int64, float64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Get(1).(float64), args.Error(2)
}

func (m *MockDashboardRepository) CustomerRecentRatings(ctx context.Context, userID string, limit int) ([]models.CustomerRating, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CustomerRating), args.Error(1)
}

// MockPublisher is a mock implementation of services.Publisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(exchange, routingKey string, body []byte) error {
	args := m.Called(exchange, routingKey, body)
	return args.Error(0)
}

// MockSchema is a mock implementation of services.Schema
type MockSchema struct {
	mock.Mock
}

func (m *MockSchema) Reset(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
