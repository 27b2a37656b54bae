package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storerate/internal/middleware"
	"storerate/internal/services"
)

// DashboardHandler serves the role-scoped dashboard aggregates.
type DashboardHandler struct {
	service     *services.DashboardService
	authService *services.AuthService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(service *services.DashboardService, authService *services.AuthService) *DashboardHandler {
	return &DashboardHandler{
		service:     service,
		authService: authService,
	}
}

// RegisterRoutes registers the dashboard routes with the Fiber app.
func (h *DashboardHandler) RegisterRoutes(router fiber.Router) {
	dashboardRoutes := router.Group("/dashboard", middleware.AuthRequired(h.authService))
	dashboardRoutes.Get("/stats", h.HandleStats)
}

// HandleStats answers with the payload of the resolved role only.
func (h *DashboardHandler) HandleStats(c *fiber.Ctx) error {
	q := services.DashboardQuery{
		UserID:   c.Query("userId"),
		UserRole: c.Query("userRole"),
		StoreID:  c.Query("storeId"),
	}

	stats, err := h.service.Stats(c.UserContext(), identity(c), q)
	if err != nil {
		return respondError(c, "dashboard stats", err)
	}

	switch {
	case stats.Admin != nil:
		return c.JSON(stats.Admin)
	case stats.Owner != nil:
		return c.JSON(stats.Owner)
	default:
		return c.JSON(stats.Customer)
	}
}
