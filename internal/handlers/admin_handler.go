package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storerate/internal/services"
)

// InitTokenHeader carries the token guarding POST /init-db.
const InitTokenHeader = "X-Init-Token"

// AdminHandler exposes maintenance operations.
type AdminHandler struct {
	service *services.AdminService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(service *services.AdminService) *AdminHandler {
	return &AdminHandler{service: service}
}

// RegisterRoutes registers the admin routes with the Fiber app.
func (h *AdminHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/init-db", h.HandleInitDatabase)
}

// HandleInitDatabase resets the schema and seeds the demo data.
func (h *AdminHandler) HandleInitDatabase(c *fiber.Ctx) error {
	summary, err := h.service.InitDatabase(c.UserContext(), c.Get(InitTokenHeader))
	if err != nil {
		return respondError(c, "init database", err)
	}
	return c.JSON(fiber.Map{
		"message": "Database initialized successfully",
		"success": true,
		"users":   summary.Users,
		"stores":  summary.Stores,
	})
}
