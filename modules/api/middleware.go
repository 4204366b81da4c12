package api

import (
	"strings"

	domain "github.com/example/taskboard/domain/user"
	"github.com/example/taskboard/modules/auth"
	"github.com/gofiber/fiber/v2"
)

const (
	// UserContextKey is the key used to store user claims in the Fiber context.
	UserContextKey = "user"
)

// AuthMiddleware creates a middleware that validates JWT bearer tokens and
// stores the resulting claims in the request context.
func AuthMiddleware(authAdapter auth.AuthPort) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Error:   "unauthorized",
				Message: "Authorization header is required",
			})
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Error:   "unauthorized",
				Message: "Invalid authorization header format. Use: Bearer <token>",
			})
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Error:   "unauthorized",
				Message: "Token is required",
			})
		}

		resp, err := authAdapter.ValidateToken(c.UserContext(), token)
		if err != nil || !resp.Valid {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Error:   "unauthorized",
				Message: "Invalid or expired token",
			})
		}

		c.Locals(UserContextKey, &domain.Claims{
			UserID: resp.UserID,
			Email:  resp.Email,
		})

		return c.Next()
	}
}

// claimsFromContext fetches the authenticated user's claims set by
// AuthMiddleware. Returns nil if the request is not authenticated.
func claimsFromContext(c *fiber.Ctx) *domain.Claims {
	claims, ok := c.Locals(UserContextKey).(*domain.Claims)
	if !ok {
		return nil
	}
	return claims
}
