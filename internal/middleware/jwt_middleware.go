package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"storerate/internal/models"
	"storerate/internal/services"
)

const identityKey = "identity"

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(c *fiber.Ctx) (string, string) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return "", "Authorization header is required"
	}

	// Expected format: "Bearer <token>"
	parts := strings.SplitN(authHeader, " ", 2)
	if !(len(parts) == 2 && parts[0] == "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", "Authorization header format must be 'Bearer <token>'"
	}
	return strings.TrimSpace(parts[1]), ""
}

// AuthRequired is a Fiber middleware to check for a valid JWT token. The
// identity it stores carries the role of the account as currently stored.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, problem := bearerToken(c)
		if problem != "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": problem,
			})
		}

		identity, err := authService.Authenticate(c.UserContext(), token)
		if err != nil {
			return rejectCredentials(c, err)
		}

		// Store identity in Fiber context for subsequent handlers
		c.Locals(identityKey, *identity)
		return c.Next()
	}
}

// rejectCredentials answers a request whose token could not be turned into
// a live account.
func rejectCredentials(c *fiber.Ctx, err error) error {
	entry := log.WithError(err).WithField("path", c.Path())
	switch services.KindOf(err) {
	case services.KindNotFound:
		entry.Info("token names a missing user")
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	case services.KindUnavailable:
		entry.Warn("database unavailable")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": services.UnavailableMessage,
		})
	case services.KindInternal:
		entry.Error("authentication failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}
	entry.Info("rejected bearer token")
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": "Invalid or expired token",
	})
}

// OptionalAuth attaches the caller's identity when a valid token is present
// and lets anonymous requests through. A malformed or invalid token is
// still rejected.
func OptionalAuth(authService *services.AuthService) fiber.Handler {
	required := AuthRequired(authService)
	return func(c *fiber.Ctx) error {
		if c.Get(fiber.HeaderAuthorization) == "" {
			return c.Next()
		}
		return required(c)
	}
}

// RequireRoles rejects callers whose role is not listed. It must run after
// AuthRequired.
func RequireRoles(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := CurrentUser(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authentication required",
			})
		}
		for _, role := range roles {
			if identity.Role == role {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "You do not have permission to perform this action",
		})
	}
}

// CurrentUser returns the identity stored by AuthRequired or OptionalAuth.
func CurrentUser(c *fiber.Ctx) (services.Identity, bool) {
	identity, ok := c.Locals(identityKey).(services.Identity)
	return identity, ok
}
