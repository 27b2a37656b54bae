package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storerate/internal/models"
	"storerate/internal/repositories"
	"storerate/internal/services"
)

type dashboardFixture struct {
	service   *services.DashboardService
	dashRepo  *MockDashboardRepository
	storeRepo *MockStoreRepository
	userRepo  *MockUserRepository
}

func newDashboardFixture() *dashboardFixture {
	f := &dashboardFixture{
		dashRepo:  new(MockDashboardRepository),
		storeRepo: new(MockStoreRepository),
		userRepo:  new(MockUserRepository),
	}
	f.service = services.NewDashboardService(f.dashRepo, f.storeRepo, f.userRepo)
	return f
}

func TestDashboardService_Admin(t *testing.T) {
	ctx := context.Background()
	f := newDashboardFixture()

	f.dashRepo.On("Totals", ctx).Return(&repositories.Totals{Users: 3, Stores: 2, Ratings: 1}, nil).Once()
	f.dashRepo.On("RoleCounts", ctx).Return(map[models.Role]int64{models.RoleCustomer: 2, models.RoleAdmin: 1}, nil).Once()
	f.dashRepo.On("RecentActivity", ctx, 10).Return(nil, nil).Once()

	stats, err := f.service.Stats(ctx, adminActor, services.DashboardQuery{})
	require.NoError(t, err)
	require.NotNil(t, stats.Admin)
	assert.Equal(t, models.RoleAdmin, stats.Role)
	assert.Equal(t, int64(3), stats.Admin.TotalUsers)
	assert.Equal(t, int64(0), stats.Admin.UserRoles[models.RoleStoreOwner])
	assert.NotNil(t, stats.Admin.RecentActivity)
	f.dashRepo.AssertExpectations(t)
}

func TestDashboardService_OwnerDistributionIsZeroFilled(t *testing.T) {
	ctx := context.Background()
	f := newDashboardFixture()

	stores := []models.Store{
		{ID: "store-1", Name: "First", AverageRating: 4.5, TotalRatings: 2},
		{ID: "store-2", Name: "Second"},
	}
	f.storeRepo.On("ListByOwner", ctx, "owner-1").Return(stores, nil).Once()
	f.dashRepo.On("StoreReviews", ctx, "store-1").Return([]models.StoreReview{{Rating: 5}, {Rating: 4}}, nil).Once()
	f.dashRepo.On("StoreDistribution", ctx, "store-1").Return(map[int]int64{4: 1, 5: 1}, nil).Once()

	stats, err := f.service.Stats(ctx, ownerActor, services.DashboardQuery{})
	require.NoError(t, err)
	require.NotNil(t, stats.Owner)
	assert.Equal(t, "store-1", stats.Owner.Store.ID)
	assert.Equal(t, 4.5, stats.Owner.Store.AverageRating)
	assert.Equal(t, models.RatingDistribution{1: 0, 2: 0, 3: 0, 4: 1, 5: 1}, stats.Owner.RatingDistribution)
	f.dashRepo.AssertExpectations(t)
}

func TestDashboardService_OwnerPicksStore(t *testing.T) {
	ctx := context.Background()
	f := newDashboardFixture()

	stores := []models.Store{{ID: "store-1"}, {ID: "store-2", Name: "Second"}}
	f.storeRepo.On("ListByOwner", ctx, "owner-1").Return(stores, nil).Twice()
	f.dashRepo.On("StoreReviews", ctx, "store-2").Return(nil, nil).Once()
	f.dashRepo.On("StoreDistribution", ctx, "store-2").Return(map[int]int64{}, nil).Once()

	stats, err := f.service.Stats(ctx, ownerActor, services.DashboardQuery{StoreID: "store-2"})
	require.NoError(t, err)
	assert.Equal(t, "Second", stats.Owner.Store.Name)
	assert.Empty(t, stats.Owner.Ratings)
	assert.Len(t, stats.Owner.RatingDistribution, 5)

	_, err = f.service.Stats(ctx, ownerActor, services.DashboardQuery{StoreID: "someone-elses"})
	assertKind(t, err, services.KindNotFound, "Store not found")
}

func TestDashboardService_OwnerWithoutStore(t *testing.T) {
	ctx := context.Background()
	f := newDashboardFixture()

	f.storeRepo.On("ListByOwner", ctx, "owner-1").Return([]models.Store{}, nil).Once()
	_, err := f.service.Stats(ctx, ownerActor, services.DashboardQuery{})
	assertKind(t, err, services.KindNotFound, "No store found for this owner")
}

func TestDashboardService_Customer(t *testing.T) {
	ctx := context.Background()
	f := newDashboardFixture()

	f.dashRepo.On("CustomerSummary", ctx, "customer-1").Return(int64(3), 11.0/3.0, nil).Once()
	f.dashRepo.On("CustomerRecentRatings", ctx, "customer-1", 5).Return([]models.CustomerRating{{Rating: 4, StoreName: "Alpha"}}, nil).Once()

	stats, err := f.service.Stats(ctx, customerActor, services.DashboardQuery{UserRole: "customer"})
	require.NoError(t, err)
	require.NotNil(t, stats.Customer)
	assert.Equal(t, int64(3), stats.Customer.TotalRatingsSubmitted)
	assert.Equal(t, 3.67, stats.Customer.AverageRatingGiven)
	assert.Len(t, stats.Customer.RecentRatings, 1)
	f.dashRepo.AssertExpectations(t)
}

func TestDashboardService_Targeting(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown role is rejected", func(t *testing.T) {
		f := newDashboardFixture()
		_, err := f.service.Stats(ctx, customerActor, services.DashboardQuery{UserRole: "guest"})
		assertKind(t, err, services.KindValidation, "Invalid role or parameters")
	})

	t.Run("customer cannot read another dashboard", func(t *testing.T) {
		f := newDashboardFixture()
		_, err := f.service.Stats(ctx, customerActor, services.DashboardQuery{UserID: "customer-2", UserRole: "customer"})
		assertKind(t, err, services.KindForbidden, "")
	})

	t.Run("customer cannot claim the admin role", func(t *testing.T) {
		f := newDashboardFixture()
		_, err := f.service.Stats(ctx, customerActor, services.DashboardQuery{UserRole: "admin"})
		assertKind(t, err, services.KindForbidden, "")
	})

	t.Run("admin reads a customer dashboard", func(t *testing.T) {
		f := newDashboardFixture()
		f.userRepo.On("GetByID", ctx, "customer-2").Return(&models.User{ID: "customer-2", Role: models.RoleCustomer}, nil).Once()
		f.dashRepo.On("CustomerSummary", ctx, "customer-2").Return(int64(0), 0.0, nil).Once()
		f.dashRepo.On("CustomerRecentRatings", ctx, "customer-2", 5).Return(nil, nil).Once()

		stats, err := f.service.Stats(ctx, adminActor, services.DashboardQuery{UserID: "customer-2", UserRole: "customer"})
		require.NoError(t, err)
		assert.Equal(t, models.RoleCustomer, stats.Role)
		assert.NotNil(t, stats.Customer.RecentRatings)
	})

	t.Run("admin with mismatched role", func(t *testing.T) {
		f := newDashboardFixture()
		f.userRepo.On("GetByID", ctx, "customer-2").Return(&models.User{ID: "customer-2", Role: models.RoleCustomer}, nil).Once()
		_, err := f.service.Stats(ctx, adminActor, services.DashboardQuery{UserID: "customer-2", UserRole: "store_owner"})
		assertKind(t, err, services.KindValidation, "Invalid role or parameters")
	})

	t.Run("admin with a role but no user", func(t *testing.T) {
		f := newDashboardFixture()
		_, err := f.service.Stats(ctx, adminActor, services.DashboardQuery{UserRole: "customer"})
		assertKind(t, err, services.KindValidation, "Invalid role or parameters")
	})
}
