package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	applog "tambour/internal/log"
	"tambour/internal/services"
)

func bearerToken(c *fiber.Ctx) string {
	h := c.Get(fiber.HeaderAuthorization)
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// RequireToken guards an endpoint with a bearer token. The verified
// claims land in c.Locals("claims") for downstream handlers.
func RequireToken(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing bearer token"})
		}
		claims, err := auth.Parse(token)
		if err != nil {
			applog.Security(c, "access.denied.token", map[string]any{"path": c.Path()})
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid bearer token"})
		}
		c.Locals("claims", claims)
		return c.Next()
	}
}

// RequireAdmin stacks on RequireToken and checks the role claim.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := claimsFrom(c)
		if claims == nil || claims.Role != "ADMIN" {
			applog.Security(c, "access.denied.admin", map[string]any{"path": c.Path()})
			return failMsg(c, fiber.StatusForbidden, "admin access required")
		}
		return c.Next()
	}
}

// OptionalAuth attaches claims when a valid token is present but lets
// anonymous requests through; carts work for both.
func OptionalAuth(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token := bearerToken(c); token != "" {
			if claims, err := auth.Parse(token); err == nil {
				c.Locals("claims", claims)
			}
		}
		return c.Next()
	}
}

func claimsFrom(c *fiber.Ctx) *services.Claims {
	claims, _ := c.Locals("claims").(*services.Claims)
	return claims
}

func userIDFrom(c *fiber.Ctx) string {
	if claims := claimsFrom(c); claims != nil {
		return claims.Subject
	}
	return ""
}
