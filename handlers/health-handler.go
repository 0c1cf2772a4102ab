package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// Pinger is the connectivity probe the health endpoint runs. It must not
// touch stored data.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	DB  Pinger
	Log *logrus.Logger
}

// Healthz handles /healthz for every method. GET with no payload and no
// query string probes the database once; anything else is rejected before
// the probe runs.
func (h *HealthHandler) Healthz(c *fiber.Ctx) error {
	if c.Method() != fiber.MethodGet {
		return c.Status(fiber.StatusMethodNotAllowed).Send(nil)
	}

	if len(c.Body()) > 0 || hasQueryString(c) {
		return c.Status(fiber.StatusBadRequest).Send(nil)
	}

	if err := h.DB.Ping(c.Context()); err != nil {
		h.Log.WithError(err).Error("healthz: database unreachable")
		return c.Status(fiber.StatusServiceUnavailable).Send(nil)
	}

	return c.Status(fiber.StatusOK).Send(nil)
}
