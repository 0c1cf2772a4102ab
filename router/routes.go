package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"

	handler "webapp/handlers"
	"webapp/middleware"
)

type Deps struct {
	Users  *handler.UserHandler
	Images *handler.ImageHandler
	Health *handler.HealthHandler
	Auth   fiber.Handler
}

// SetupRoutes wires the full HTTP surface. Known paths answer 405 for
// unsupported methods (without authenticating first, matching the contract);
// everything else falls through to 404.
func SetupRoutes(app *fiber.App, d Deps) {
	app.Use(middleware.SecurityHeaders())
	app.Use(logger.New())

	// healthz owns its own method check so non-GET is 405, not 404
	app.All("/healthz", d.Health.Healthz)

	user := app.Group("/v1/user")
	user.Post("/", d.Users.Create)
	user.Get("/self", d.Auth, d.Users.GetSelf)
	user.Put("/self", d.Auth, d.Users.UpdateSelf)
	user.Post("/self/pic", d.Auth, d.Images.Upload)
	user.Get("/self/pic", d.Auth, d.Images.GetSelf)
	user.Delete("/self/pic", d.Auth, d.Images.DeleteSelf)

	user.All("/", methodNotAllowed)
	user.All("/self", methodNotAllowed)
	user.All("/self/pic", methodNotAllowed)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Route not found"})
	})
}

func methodNotAllowed(c *fiber.Ctx) error {
	return c.Status(fiber.StatusMethodNotAllowed).JSON(fiber.Map{"message": "Method Not Allowed"})
}
