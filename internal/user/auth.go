package user

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v2"
	"github.com/golang-jwt/jwt/v4"
)

// Middleware validates the bearer token and stores it in c.Locals("user").
// With optional set, requests without an Authorization header pass through
// anonymously.
func Middleware(secret string, optional bool) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: []byte(secret),
		Filter: func(c *fiber.Ctx) bool {
			return optional && strings.TrimSpace(c.Get(fiber.HeaderAuthorization)) == ""
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
		},
	})
}

// RequireAdmin rejects requests whose token does not carry the admin role.
func RequireAdmin(c *fiber.Ctx) error {
	claims, ok := claimsFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	if role, _ := claims["role"].(string); Role(role) != RoleAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "admin access required"})
	}
	return c.Next()
}

// GetUserIDFromCtx extracts the user_id claim from the JWT token stored
// in `c.Locals("user")`.
func GetUserIDFromCtx(c *fiber.Ctx) (string, error) {
	return stringClaim(c, "user_id")
}

// GetEmailFromCtx returns the email claim. Account data is owned by email.
func GetEmailFromCtx(c *fiber.Ctx) (string, error) {
	email, err := stringClaim(c, "email")
	if err != nil {
		return "", err
	}
	return strings.ToLower(email), nil
}

func stringClaim(c *fiber.Ctx, key string) (string, error) {
	claims, ok := claimsFromCtx(c)
	if !ok {
		return "", fiber.ErrUnauthorized
	}
	v, ok := claims[key].(string)
	if !ok || strings.TrimSpace(v) == "" {
		return "", fiber.ErrUnauthorized
	}
	return v, nil
}

func claimsFromCtx(c *fiber.Ctx) (jwt.MapClaims, bool) {
	tok, ok := c.Locals("user").(*jwt.Token)
	if !ok || tok == nil {
		return nil, false
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	return claims, ok
}
