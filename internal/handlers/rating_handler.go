package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storerate/internal/middleware"
	"storerate/internal/models"
	"storerate/internal/repositories"
	"storerate/internal/services"
)

// RatingHandler handles HTTP requests for ratings.
type RatingHandler struct {
	service     *services.RatingService
	authService *services.AuthService
}

// NewRatingHandler creates a new RatingHandler.
func NewRatingHandler(service *services.RatingService, authService *services.AuthService) *RatingHandler {
	return &RatingHandler{
		service:     service,
		authService: authService,
	}
}

// RegisterRoutes registers the rating routes with the Fiber app.
func (h *RatingHandler) RegisterRoutes(router fiber.Router) {
	ratingRoutes := router.Group("/ratings")
	ratingRoutes.Get("/", h.HandleListRatings)
	ratingRoutes.Get("/:id", h.HandleGetRating)

	authed := middleware.AuthRequired(h.authService)
	ratingRoutes.Post("/", authed, h.HandleCreateRating)
	ratingRoutes.Put("/", authed, h.HandleUpdateMyRating)
	ratingRoutes.Put("/:id", authed, h.HandleUpdateRating)
	ratingRoutes.Delete("/:id", authed, h.HandleDeleteRating)
}

// HandleListRatings lists ratings filtered by user, store or store owner.
func (h *RatingHandler) HandleListRatings(c *fiber.Ctx) error {
	filter := repositories.RatingFilter{
		UserID:       c.Query("userId"),
		StoreID:      c.Query("storeId"),
		StoreOwnerID: c.Query("storeOwnerId"),
		Sort:         sortFromQuery(c),
	}

	ratings, err := h.service.ListRatings(c.UserContext(), filter)
	if err != nil {
		return respondError(c, "list ratings", err)
	}
	if ratings == nil {
		ratings = []models.RatingView{}
	}
	return c.JSON(fiber.Map{
		"ratings": ratings,
	})
}

// HandleGetRating retrieves a single rating by its ID.
func (h *RatingHandler) HandleGetRating(c *fiber.Ctx) error {
	rating, err := h.service.GetRating(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, "get rating", err)
	}
	return c.JSON(fiber.Map{
		"rating": rating,
	})
}

// HandleCreateRating records the caller's first rating of a store.
func (h *RatingHandler) HandleCreateRating(c *fiber.Ctx) error {
	var req services.RatingInput
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, "create rating", err)
	}

	result, err := h.service.CreateRating(c.UserContext(), identity(c), req)
	if err != nil {
		return respondError(c, "create rating", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Rating submitted successfully",
		"rating":  result.Rating,
		"store":   result.Store,
	})
}

// HandleUpdateMyRating replaces the caller's rating of the store in the body.
func (h *RatingHandler) HandleUpdateMyRating(c *fiber.Ctx) error {
	var req services.RatingInput
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, "update rating", err)
	}

	result, err := h.service.UpdateMyRating(c.UserContext(), identity(c), req)
	if err != nil {
		return respondError(c, "update rating", err)
	}
	return c.JSON(fiber.Map{
		"message": "Rating updated successfully",
		"rating":  result.Rating,
		"store":   result.Store,
	})
}

// HandleUpdateRating replaces a rating by its ID.
func (h *RatingHandler) HandleUpdateRating(c *fiber.Ctx) error {
	var req services.UpdateRatingInput
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, "update rating", err)
	}

	result, err := h.service.UpdateRating(c.UserContext(), identity(c), c.Params("id"), req)
	if err != nil {
		return respondError(c, "update rating", err)
	}
	return c.JSON(fiber.Map{
		"message": "Rating updated successfully",
		"rating":  result.Rating,
		"store":   result.Store,
	})
}

// HandleDeleteRating deletes a rating by its ID.
func (h *RatingHandler) HandleDeleteRating(c *fiber.Ctx) error {
	agg, err := h.service.DeleteRating(c.UserContext(), identity(c), c.Params("id"))
	if err != nil {
		return respondError(c, "delete rating", err)
	}
	return c.JSON(fiber.Map{
		"message": "Rating deleted successfully",
		"store":   agg,
	})
}
