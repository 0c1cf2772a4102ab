package middleware

import "github.com/gofiber/fiber/v2"

// SecurityHeaders attaches the no-cache and nosniff headers every response
// must carry, including 404/405 fallbacks.
func SecurityHeaders() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderCacheControl, "no-cache, no-store, must-revalidate")
		c.Set(fiber.HeaderPragma, "no-cache")
		c.Set(fiber.HeaderXContentTypeOptions, "nosniff")
		return c.Next()
	}
}
