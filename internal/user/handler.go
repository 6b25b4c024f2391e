package user

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	service *Service
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(app fiber.Router) {
	app.Post("/api/v1/sign-in", h.login)
	app.Post("/api/v1/sign-up", h.register)
}

func (h *Handler) RegisterProtectedRoutes(app fiber.Router) {
	app.Get("/api/v1/profile", h.getProfile)
	// PATCH and PUT both accept partial payloads.
	app.Put("/api/v1/profile", h.updateProfile)
	app.Patch("/api/v1/profile", h.updateProfile)
}

// RegisterAdminRoutes expects r to be mounted behind the admin guard.
func (h *Handler) RegisterAdminRoutes(r fiber.Router) {
	r.Get("/users", h.listUsers)
	r.Patch("/users/:id/role", h.setRole)
}

func (h *Handler) login(c *fiber.Ctx) error {
	payload := new(loginRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	u, err := h.service.Authenticate(c.UserContext(), payload.Email, payload.Password)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid email or password"})
	}

	signed, err := h.service.IssueToken(u)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to generate token"})
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"user":    u,
		"token":   signed,
	})
}

func (h *Handler) register(c *fiber.Ctx) error {
	payload := new(Registration)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	created, err := h.service.Register(c.UserContext(), *payload)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// getProfile returns the user record for the currently authenticated user.
func (h *Handler) getProfile(c *fiber.Ctx) error {
	userID, err := GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	u, err := h.service.GetByID(c.UserContext(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(u)
}

func (h *Handler) updateProfile(c *fiber.Ctx) error {
	userID, err := GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	payload := new(ProfileUpdate)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	updated, err := h.service.UpdateProfile(c.UserContext(), userID, *payload)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(updated)
}

func (h *Handler) listUsers(c *fiber.Ctx) error {
	users, err := h.service.List(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(users)
}

func (h *Handler) setRole(c *fiber.Ctx) error {
	var payload struct {
		Role string `json:"role"`
	}
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	updated, err := h.service.SetRole(c.UserContext(), c.Params("id"), Role(payload.Role))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(updated)
}

func writeError(c *fiber.Ctx, err error) error {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": ve.Error(), "errors": ve.Fields})
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "user not found"})
	case errors.Is(err, ErrEmailExists):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "Email already exists"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
}
