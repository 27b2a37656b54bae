package middleware_test

import (
	"context"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storerate/internal/config"
	"storerate/internal/database"
	"storerate/internal/middleware"
	"storerate/internal/models"
	"storerate/internal/repositories"
	"storerate/internal/services"
)

func newTestApp(t *testing.T) (*fiber.App, *services.AuthService, *repositories.GORMUserRepository) {
	t.Helper()
	cfg := &config.Config{
		DatabaseDriver: config.DriverSQLite,
		DatabaseDSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	}
	db, err := database.Open(cfg)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })

	userRepo := repositories.NewGORMUserRepository(db)
	for _, u := range []models.User{
		{ID: "user-1", Name: "Customer Example Account", Email: "user-1@example.com", PasswordHash: "hash", Role: models.RoleCustomer},
		{ID: "admin-1", Name: "Admin Example Account Name", Email: "admin-1@example.com", PasswordHash: "hash", Role: models.RoleAdmin},
	} {
		u := u
		require.NoError(t, userRepo.Create(context.Background(), &u))
	}
	authService := services.NewAuthService(userRepo, services.NewValidator(), "middleware_secret", time.Hour)

	app := fiber.New()
	whoami := func(c *fiber.Ctx) error {
		identity, ok := middleware.CurrentUser(c)
		if !ok {
			return c.JSON(fiber.Map{"anonymous": true})
		}
		return c.JSON(fiber.Map{"userId": identity.UserID, "role": identity.Role})
	}
	app.Get("/private", middleware.AuthRequired(authService), whoami)
	app.Get("/optional", middleware.OptionalAuth(authService), whoami)
	app.Get("/admin", middleware.AuthRequired(authService), middleware.RequireRoles(models.RoleAdmin), whoami)
	return app, authService, userRepo
}

func setRole(t *testing.T, userRepo *repositories.GORMUserRepository, id string, role models.Role) {
	t.Helper()
	user, err := userRepo.GetByID(context.Background(), id)
	require.NoError(t, err)
	user.Role = role
	require.NoError(t, userRepo.Update(context.Background(), user))
}

func tokenFor(t *testing.T, authService *services.AuthService, id string, role models.Role) string {
	t.Helper()
	token, err := authService.IssueToken(&models.User{ID: id, Email: id + "@example.com", Role: role})
	require.NoError(t, err)
	return token
}

func get(t *testing.T, app *fiber.App, path, authorization string) int {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestAuthRequired(t *testing.T) {
	app, authService, _ := newTestApp(t)
	token := tokenFor(t, authService, "user-1", models.RoleCustomer)

	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, "/private", ""))
	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, "/private", "Token "+token))
	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, "/private", "Bearer not-a-jwt"))
	assert.Equal(t, fiber.StatusOK, get(t, app, "/private", "Bearer "+token))
}

func TestOptionalAuth(t *testing.T) {
	app, authService, _ := newTestApp(t)
	token := tokenFor(t, authService, "user-1", models.RoleCustomer)

	assert.Equal(t, fiber.StatusOK, get(t, app, "/optional", ""))
	assert.Equal(t, fiber.StatusOK, get(t, app, "/optional", "Bearer "+token))
	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, "/optional", "Bearer garbage"))
}

func TestRequireRoles(t *testing.T) {
	app, authService, _ := newTestApp(t)

	assert.Equal(t, fiber.StatusForbidden, get(t, app, "/admin", "Bearer "+tokenFor(t, authService, "user-1", models.RoleCustomer)))
	assert.Equal(t, fiber.StatusOK, get(t, app, "/admin", "Bearer "+tokenFor(t, authService, "admin-1", models.RoleAdmin)))
}

func TestAuthRequiredUsesStoredRole(t *testing.T) {
	app, authService, userRepo := newTestApp(t)
	customerToken := tokenFor(t, authService, "user-1", models.RoleCustomer)
	adminToken := tokenFor(t, authService, "admin-1", models.RoleAdmin)

	setRole(t, userRepo, "user-1", models.RoleAdmin)
	setRole(t, userRepo, "admin-1", models.RoleCustomer)

	assert.Equal(t, fiber.StatusOK, get(t, app, "/admin", "Bearer "+customerToken))
	assert.Equal(t, fiber.StatusForbidden, get(t, app, "/admin", "Bearer "+adminToken))
}

func TestAuthRequiredMissingUser(t *testing.T) {
	app, authService, _ := newTestApp(t)
	token := tokenFor(t, authService, "ghost-1", models.RoleAdmin)

	assert.Equal(t, fiber.StatusNotFound, get(t, app, "/private", "Bearer "+token))
	assert.Equal(t, fiber.StatusNotFound, get(t, app, "/optional", "Bearer "+token))
	assert.Equal(t, fiber.StatusNotFound, get(t, app, "/admin", "Bearer "+token))
}

func TestRateLimiter(t *testing.T) {
	limiter := middleware.NewRateLimiter(0.001, 2)
	app := fiber.New()
	app.Post("/login", limiter.Handler(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest("POST", "/login", nil), -1)
		require.NoError(t, err)
		statuses = append(statuses, resp.StatusCode)
	}
	assert.Equal(t, []int{fiber.StatusOK, fiber.StatusOK, fiber.StatusTooManyRequests}, statuses)

	limiter.Cleanup()
}
