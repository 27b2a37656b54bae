package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storerate/internal/middleware"
	"storerate/internal/models"
	"storerate/internal/repositories"
	"storerate/internal/services"
)

// UserHandler handles HTTP requests for the user directory.
type UserHandler struct {
	service     *services.UserService
	authService *services.AuthService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service *services.UserService, authService *services.AuthService) *UserHandler {
	return &UserHandler{
		service:     service,
		authService: authService,
	}
}

// RegisterRoutes registers the user routes with the Fiber app.
func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	userRoutes := router.Group("/users", middleware.AuthRequired(h.authService))
	userRoutes.Get("/", middleware.RequireRoles(models.RoleAdmin), h.HandleListUsers)
	userRoutes.Post("/", middleware.RequireRoles(models.RoleAdmin), h.HandleCreateUser)
	userRoutes.Get("/:id", h.HandleGetUser)
	userRoutes.Put("/:id", h.HandleUpdateUser)
}

// HandleListUsers lists users filtered by name, email, address and role.
func (h *UserHandler) HandleListUsers(c *fiber.Ctx) error {
	filter := repositories.UserFilter{
		Name:    c.Query("name"),
		Email:   c.Query("email"),
		Address: c.Query("address"),
		Role:    c.Query("role"),
		Sort:    sortFromQuery(c),
	}

	users, err := h.service.ListUsers(c.UserContext(), identity(c), filter)
	if err != nil {
		return respondError(c, "list users", err)
	}
	if users == nil {
		users = []models.UserView{}
	}
	return c.JSON(fiber.Map{
		"users": users,
	})
}

// HandleCreateUser creates a user of any role.
func (h *UserHandler) HandleCreateUser(c *fiber.Ctx) error {
	var req services.CreateUserInput
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, "create user", err)
	}

	user, err := h.service.CreateUser(c.UserContext(), identity(c), req)
	if err != nil {
		return respondError(c, "create user", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User created successfully",
		"user":    user,
	})
}

// HandleGetUser retrieves a single user by ID.
func (h *UserHandler) HandleGetUser(c *fiber.Ctx) error {
	user, err := h.service.GetUser(c.UserContext(), identity(c), c.Params("id"))
	if err != nil {
		return respondError(c, "get user", err)
	}
	return c.JSON(fiber.Map{
		"user": user,
	})
}

// HandleUpdateUser applies a partial update to a user.
func (h *UserHandler) HandleUpdateUser(c *fiber.Ctx) error {
	var req services.UpdateUserInput
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, "update user", err)
	}

	user, err := h.service.UpdateUser(c.UserContext(), identity(c), c.Params("id"), req)
	if err != nil {
		return respondError(c, "update user", err)
	}
	return c.JSON(fiber.Map{
		"message": "User updated successfully",
		"user":    user,
	})
}
