package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"storerate/internal/models"
	"storerate/internal/repositories"
	"storerate/internal/services"
)

var (
	adminActor    = services.Identity{UserID: "admin-1", Role: models.RoleAdmin}
	ownerActor    = services.Identity{UserID: "owner-1", Role: models.RoleStoreOwner}
	customerActor = services.Identity{UserID: "customer-1", Role: models.RoleCustomer}
)

func strPtr(s string) *string { return &s }

func TestUserService_ListUsers(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	service := services.NewUserService(mockRepo, services.NewValidator())

	filter := repositories.UserFilter{Role: "store_owner", Sort: repositories.Sort{Field: "rating", Order: repositories.SortDesc}}
	expected := []models.UserView{{User: models.User{ID: "owner-1"}}}
	mockRepo.On("List", ctx, filter).Return(expected, nil).Once()

	users, err := service.ListUsers(ctx, adminActor, filter)
	require.NoError(t, err)
	assert.Equal(t, expected, users)
	mockRepo.AssertExpectations(t)

	_, err = service.ListUsers(ctx, customerActor, filter)
	assertKind(t, err, services.KindForbidden, "")
}

func TestUserService_CreateUser(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	service := services.NewUserService(mockRepo, services.NewValidator())

	in := services.CreateUserInput{
		Name:     "Another Administrator Here",
		Email:    "second.admin@storerate.com",
		Password: "Sup3r$ecret",
		Role:     models.RoleAdmin,
	}

	_, err := service.CreateUser(ctx, ownerActor, in)
	assertKind(t, err, services.KindForbidden, "")

	mockRepo.On("GetByEmail", ctx, in.Email).Return(nil, notFound("user")).Once()
	mockRepo.On("Create", ctx, mock.AnythingOfType("*models.User")).Return(nil).Once()
	user, err := service.CreateUser(ctx, adminActor, in)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)
	mockRepo.AssertExpectations(t)

	missingRole := in
	missingRole.Role = ""
	_, err = service.CreateUser(ctx, adminActor, missingRole)
	assertKind(t, err, services.KindValidation, "Role is required")
}

func TestUserService_GetUser(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	service := services.NewUserService(mockRepo, services.NewValidator())

	mockRepo.On("GetByID", ctx, "customer-1").Return(&models.User{ID: "customer-1"}, nil).Twice()

	_, err := service.GetUser(ctx, customerActor, "customer-1")
	require.NoError(t, err)
	_, err = service.GetUser(ctx, adminActor, "customer-1")
	require.NoError(t, err)

	_, err = service.GetUser(ctx, ownerActor, "customer-1")
	assertKind(t, err, services.KindForbidden, "")
	mockRepo.AssertExpectations(t)
}

func TestUserService_UpdateUser(t *testing.T) {
	ctx := context.Background()

	existing := func() *models.User {
		return &models.User{
			ID:    "customer-1",
			Name:  "Original Customer Name",
			Email: "customer@example.com",
			Role:  models.RoleCustomer,
		}
	}

	t.Run("self update of profile fields", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		service := services.NewUserService(mockRepo, services.NewValidator())

		mockRepo.On("GetByID", ctx, "customer-1").Return(existing(), nil).Once()
		mockRepo.On("Update", ctx, mock.AnythingOfType("*models.User")).Return(nil).Once()

		user, err := service.UpdateUser(ctx, customerActor, "customer-1", services.UpdateUserInput{
			Address:  strPtr("  10 Downing Street "),
			Password: strPtr("N3w-Passw0rd!"),
		})
		require.NoError(t, err)
		require.NotNil(t, user.Address)
		assert.Equal(t, "10 Downing Street", *user.Address)
		assert.Equal(t, "Original Customer Name", user.Name)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("N3w-Passw0rd!")))
		mockRepo.AssertExpectations(t)
	})

	t.Run("non-admin cannot change role", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		service := services.NewUserService(mockRepo, services.NewValidator())

		mockRepo.On("GetByID", ctx, "customer-1").Return(existing(), nil).Once()
		role := models.RoleAdmin
		_, err := service.UpdateUser(ctx, customerActor, "customer-1", services.UpdateUserInput{Role: &role})
		assertKind(t, err, services.KindForbidden, "Only admins can change roles")
		mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("admin changes role", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		service := services.NewUserService(mockRepo, services.NewValidator())

		mockRepo.On("GetByID", ctx, "customer-1").Return(existing(), nil).Once()
		mockRepo.On("Update", ctx, mock.MatchedBy(func(u *models.User) bool {
			return u.Role == models.RoleStoreOwner
		})).Return(nil).Once()

		role := models.RoleStoreOwner
		user, err := service.UpdateUser(ctx, adminActor, "customer-1", services.UpdateUserInput{Role: &role})
		require.NoError(t, err)
		assert.Equal(t, models.RoleStoreOwner, user.Role)
		mockRepo.AssertExpectations(t)
	})

	t.Run("email taken", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		service := services.NewUserService(mockRepo, services.NewValidator())

		mockRepo.On("GetByID", ctx, "customer-1").Return(existing(), nil).Once()
		mockRepo.On("GetByEmail", ctx, "taken@example.com").Return(&models.User{ID: "other"}, nil).Once()
		_, err := service.UpdateUser(ctx, customerActor, "customer-1", services.UpdateUserInput{Email: strPtr("Taken@Example.com")})
		assertKind(t, err, services.KindConflict, "User with this email already exists")
	})

	t.Run("other user's profile", func(t *testing.T) {
		service := services.NewUserService(new(MockUserRepository), services.NewValidator())
		_, err := service.UpdateUser(ctx, customerActor, "someone-else", services.UpdateUserInput{Name: strPtr("A Perfectly Valid Long Name")})
		assertKind(t, err, services.KindForbidden, "")
	})

	t.Run("invalid name", func(t *testing.T) {
		service := services.NewUserService(new(MockUserRepository), services.NewValidator())
		_, err := service.UpdateUser(ctx, customerActor, "customer-1", services.UpdateUserInput{Name: strPtr("")})
		assertKind(t, err, services.KindValidation, "Name must be between 20 and 60 characters")
	})

	t.Run("missing user", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		service := services.NewUserService(mockRepo, services.NewValidator())

		mockRepo.On("GetByID", ctx, "ghost").Return(nil, notFound("user")).Once()
		_, err := service.UpdateUser(ctx, adminActor, "ghost", services.UpdateUserInput{})
		assertKind(t, err, services.KindNotFound, "User not found")
	})
}
