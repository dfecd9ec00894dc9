package middleware

import (
	"log"
	"strings"

	"kelime/internal/services"

	"github.com/gofiber/fiber/v2"
)

// Context keys for the identity injected by AuthRequired.
const (
	LocalUserID  = "user_id"
	LocalIsAdmin = "is_admin"
)

// AuthRequired is a Fiber middleware that checks for a valid bearer token
// and injects the decoded identity (user id, role) into the request
// context for downstream handlers.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header is required",
			})
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header format must be 'Bearer <token>'",
			})
		}

		claims, err := authService.ValidateToken(parts[1])
		if err != nil {
			log.Printf("JWT validation failed: %v", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
			})
		}

		userID, ok := claims["user_id"].(string)
		if !ok || userID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Token is missing its identity claim",
			})
		}
		isAdmin, _ := claims["is_admin"].(bool)

		c.Locals(LocalUserID, userID)
		c.Locals(LocalIsAdmin, isAdmin)

		return c.Next()
	}
}

// AdminRequired rejects any request whose verified identity does not carry
// the admin role. It must run after AuthRequired.
func AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		isAdmin, _ := c.Locals(LocalIsAdmin).(bool)
		if !isAdmin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Admin privileges are required",
			})
		}
		return c.Next()
	}
}

// UserID returns the authenticated user's id injected by AuthRequired.
func UserID(c *fiber.Ctx) string {
	userID, _ := c.Locals(LocalUserID).(string)
	return userID
}
