package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storerate/internal/middleware"
	"storerate/internal/models"
	"storerate/internal/repositories"
	"storerate/internal/services"
)

// StoreHandler handles HTTP requests for stores.
type StoreHandler struct {
	service     *services.StoreService
	authService *services.AuthService
}

// NewStoreHandler creates a new StoreHandler.
func NewStoreHandler(service *services.StoreService, authService *services.AuthService) *StoreHandler {
	return &StoreHandler{
		service:     service,
		authService: authService,
	}
}

// RegisterRoutes registers the store routes with the Fiber app.
func (h *StoreHandler) RegisterRoutes(router fiber.Router) {
	storeRoutes := router.Group("/stores")
	storeRoutes.Get("/", middleware.OptionalAuth(h.authService), h.HandleListStores)
	storeRoutes.Get("/categories", h.HandleListCategories)
	storeRoutes.Get("/:id", middleware.OptionalAuth(h.authService), h.HandleGetStore)

	authed := middleware.AuthRequired(h.authService)
	storeRoutes.Post("/", authed, middleware.RequireRoles(models.RoleStoreOwner, models.RoleAdmin), h.HandleCreateStore)
	storeRoutes.Put("/:id", authed, h.HandleUpdateStore)
	storeRoutes.Delete("/:id", authed, h.HandleDeleteStore)
}

// viewerID picks whose rating is joined onto stores: the caller by default,
// or the userId query parameter when the caller is an admin.
func viewerID(c *fiber.Ctx) string {
	caller := identity(c)
	if requested := c.Query("userId"); requested != "" && caller.IsAdmin() {
		return requested
	}
	return caller.UserID
}

// HandleListStores lists stores filtered by name, address and category.
func (h *StoreHandler) HandleListStores(c *fiber.Ctx) error {
	filter := repositories.StoreFilter{
		Name:     c.Query("name"),
		Address:  c.Query("address"),
		Category: c.Query("category"),
		ViewerID: viewerID(c),
		Sort:     sortFromQuery(c),
	}

	stores, err := h.service.ListStores(c.UserContext(), filter)
	if err != nil {
		return respondError(c, "list stores", err)
	}
	if stores == nil {
		stores = []models.StoreView{}
	}
	return c.JSON(fiber.Map{
		"stores": stores,
	})
}

// HandleListCategories returns the store categories offered to clients.
func (h *StoreHandler) HandleListCategories(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"categories": models.StoreCategories,
	})
}

// HandleGetStore retrieves a single store by its ID.
func (h *StoreHandler) HandleGetStore(c *fiber.Ctx) error {
	store, err := h.service.GetStore(c.UserContext(), c.Params("id"), viewerID(c))
	if err != nil {
		return respondError(c, "get store", err)
	}
	return c.JSON(fiber.Map{
		"store": store,
	})
}

// HandleCreateStore creates a new store.
func (h *StoreHandler) HandleCreateStore(c *fiber.Ctx) error {
	var req services.StoreInput
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, "create store", err)
	}

	store, err := h.service.CreateStore(c.UserContext(), identity(c), req)
	if err != nil {
		return respondError(c, "create store", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Store created successfully",
		"store":   store,
	})
}

// HandleUpdateStore applies a partial update to a store.
func (h *StoreHandler) HandleUpdateStore(c *fiber.Ctx) error {
	var req services.UpdateStoreInput
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, "update store", err)
	}

	store, err := h.service.UpdateStore(c.UserContext(), identity(c), c.Params("id"), req)
	if err != nil {
		return respondError(c, "update store", err)
	}
	return c.JSON(fiber.Map{
		"message": "Store updated successfully",
		"store":   store,
	})
}

// HandleDeleteStore deletes a store and its ratings.
func (h *StoreHandler) HandleDeleteStore(c *fiber.Ctx) error {
	if err := h.service.DeleteStore(c.UserContext(), identity(c), c.Params("id")); err != nil {
		return respondError(c, "delete store", err)
	}
	return c.JSON(fiber.Map{
		"message": "Store deleted successfully",
	})
}
