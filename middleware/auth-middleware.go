package middleware

import (
	"context"
	"encoding/base64"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"webapp/models"
)

const principalKey = "principal"

// Principal is the authenticated identity attached to a request after
// credential verification.
type Principal struct {
	UserID string
	Email  string
}

// UserFinder resolves a login email to a stored user.
type UserFinder interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// BasicAuth verifies HTTP Basic credentials against the stored password hash
// on every request. No session state is created; any failure halts the
// pipeline with a 401.
func BasicAuth(users UserFinder, log *logrus.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		email, password, ok := decodeBasic(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return unauthorized(c)
		}

		user, err := users.FindByEmail(c.Context(), email)
		if err != nil {
			log.WithError(err).WithField("email", email).Warn("basic auth lookup failed")
			return unauthorized(c)
		}

		// bcrypt compare is constant time
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
			return unauthorized(c)
		}

		c.Locals(principalKey, Principal{UserID: user.ID, Email: user.Email})
		return c.Next()
	}
}

// CurrentPrincipal returns the identity attached by BasicAuth.
func CurrentPrincipal(c *fiber.Ctx) (Principal, bool) {
	p, ok := c.Locals(principalKey).(Principal)
	return p, ok
}

func decodeBasic(header string) (email, password string, ok bool) {
	const prefix = "Basic "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", "", false
	}
	raw, err := base64.StdEncoding.DecodeString(header[len(prefix):])
	if err != nil {
		return "", "", false
	}
	return strings.Cut(string(raw), ":")
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"message": "Unauthorized",
	})
}
