package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"storerate/internal/middleware"
	"storerate/internal/repositories"
	"storerate/internal/services"
)

var kindStatus = map[services.Kind]int{
	services.KindValidation:   fiber.StatusBadRequest,
	services.KindUnauthorized: fiber.StatusUnauthorized,
	services.KindForbidden:    fiber.StatusForbidden,
	services.KindNotFound:     fiber.StatusNotFound,
	services.KindConflict:     fiber.StatusConflict,
	services.KindUnavailable:  fiber.StatusServiceUnavailable,
}

// respondError maps a service error onto one {"error": message} response. Unexpected
// errors are logged with their cause and answered with a generic message.
func respondError(c *fiber.Ctx, op string, err error) error {
	kind := services.KindOf(err)
	status, ok := kindStatus[kind]
	if !ok {
		status = fiber.StatusInternalServerError
	}

	entry := log.WithFields(log.Fields{
		"op":     op,
		"method": c.Method(),
		"path":   c.Path(),
		"status": status,
	}).WithError(err)

	message := "Internal server error"
	switch {
	case status == fiber.StatusInternalServerError:
		entry.Error("request failed")
	case status == fiber.StatusServiceUnavailable:
		entry.Warn("database unavailable")
		message = services.UnavailableMessage
	default:
		entry.Debug("request rejected")
		var svcErr *services.Error
		if errors.As(err, &svcErr) {
			message = svcErr.Message
		}
	}

	return c.Status(status).JSON(fiber.Map{
		"error": message,
	})
}

// badBody answers a request whose JSON body could not be parsed.
func badBody(c *fiber.Ctx, op string, err error) error {
	log.WithError(err).WithField("op", op).Debug("error parsing request body")
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": "Invalid request body",
	})
}

// identity returns the caller set by the auth middleware. Routes without
// AuthRequired get the zero Identity.
func identity(c *fiber.Ctx) services.Identity {
	id, _ := middleware.CurrentUser(c)
	return id
}

func sortFromQuery(c *fiber.Ctx) repositories.Sort {
	return repositories.Sort{
		Field: c.Query("sortBy"),
		Order: repositories.SortOrder(c.Query("sortOrder")),
	}
}
