package handler

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"webapp/middleware"
	"webapp/models"
	"webapp/repository"
)

// UserStore is the persistence surface the user handler needs.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
}

type UserHandler struct {
	Users UserStore
	Log   *logrus.Logger
}

// emailPattern is the exact local@domain rule the API has always enforced;
// net/mail is laxer and would admit addresses this contract rejects.
var emailPattern = regexp.MustCompile("^[a-zA-Z0-9.!#$%&'*+/=?^_`{|}~-]+@[a-zA-Z0-9-]+(?:\\.[a-zA-Z0-9-]+)*$")

// userInput is the request body for create and update. Pointers distinguish
// absent fields; a wrong JSON type fails decoding and yields a 400.
type userInput struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
	Password  *string `json:"password"`
}

// normalize drops empty strings so they read as "not provided".
func (in *userInput) normalize() {
	for _, f := range []**string{&in.FirstName, &in.LastName, &in.Email, &in.Password} {
		if *f != nil && **f == "" {
			*f = nil
		}
	}
}

// validate checks the fields that are present and returns an error message,
// or "" when everything passes.
func (in *userInput) validate() string {
	if in.Password != nil && len(*in.Password) <= 5 {
		return "Password must be a string with a minimum length of 6 characters."
	}
	if in.Email != nil && !emailPattern.MatchString(*in.Email) {
		return "Invalid Email Format"
	}
	return ""
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), 10)
	return string(hashed), err
}

// Create handles POST /v1/user (public).
func (h *UserHandler) Create(c *fiber.Ctx) error {
	if hasQueryString(c) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Bad Request"})
	}

	var in userInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid Request Body"})
	}
	in.normalize()

	if in.FirstName == nil || in.LastName == nil || in.Email == nil || in.Password == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid Request Body: Missing required fields."})
	}
	if msg := in.validate(); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": msg})
	}

	if _, err := h.Users.FindByEmail(c.Context(), *in.Email); err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "Email already exists"})
	} else if !errors.Is(err, repository.ErrNotFound) {
		h.Log.WithError(err).Error("user create: email lookup failed")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request"})
	}

	hash, err := hashPassword(*in.Password)
	if err != nil {
		h.Log.WithError(err).Error("user create: hashing failed")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request"})
	}

	user := &models.User{
		FirstName: *in.FirstName,
		LastName:  *in.LastName,
		Email:     *in.Email,
		Password:  hash,
	}
	if err := h.Users.Create(c.Context(), user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "Email already exists"})
		}
		h.Log.WithError(err).Error("user create: insert failed")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request"})
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}

// GetSelf handles GET /v1/user/self (authenticated).
func (h *UserHandler) GetSelf(c *fiber.Ctx) error {
	if c.Request().Header.ContentLength() > 0 || hasQueryString(c) {
		return c.Status(fiber.StatusBadRequest).Send(nil)
	}

	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Unauthorized"})
	}

	user, err := h.Users.FindByEmail(c.Context(), p.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "User not found"})
		}
		h.Log.WithError(err).Error("user get: lookup failed")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request"})
	}

	return c.Status(fiber.StatusOK).JSON(user)
}

// UpdateSelf handles PUT /v1/user/self (authenticated). Fields left out of
// the body keep their stored values; email is not updatable.
func (h *UserHandler) UpdateSelf(c *fiber.Ctx) error {
	var in userInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid Request Body"})
	}
	in.normalize()

	if in.FirstName == nil && in.LastName == nil && in.Password == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid Request Body: Missing required fields."})
	}
	if msg := in.validate(); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": msg})
	}

	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Unauthorized"})
	}

	user, err := h.Users.FindByEmail(c.Context(), p.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "User Not Found"})
		}
		h.Log.WithError(err).Error("user update: lookup failed")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request"})
	}

	if in.FirstName != nil {
		user.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		user.LastName = *in.LastName
	}
	if in.Password != nil {
		hash, err := hashPassword(*in.Password)
		if err != nil {
			h.Log.WithError(err).Error("user update: hashing failed")
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request"})
		}
		user.Password = hash
	}
	user.AccountUpdated = time.Now().UTC()

	if err := h.Users.Update(c.Context(), user); err != nil {
		h.Log.WithError(err).Error("user update: save failed")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request"})
	}

	return c.Status(fiber.StatusNoContent).Send(nil)
}

func hasQueryString(c *fiber.Ctx) bool {
	return len(c.Request().URI().QueryString()) > 0
}
