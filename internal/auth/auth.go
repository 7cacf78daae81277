package auth

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v2"
	"github.com/golang-jwt/jwt/v4"
)

const (
	ClaimEmployeeID = "employee_id"
	contextKey      = "user"
)

// Required rejects requests without a valid bearer token.
func Required(secret string) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:   []byte(secret),
		ContextKey:   contextKey,
		ErrorHandler: unauthorized,
	})
}

// Optional parses a bearer token when one is sent and lets anonymous
// requests through untouched.
func Optional(secret string) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:   []byte(secret),
		ContextKey:   contextKey,
		ErrorHandler: unauthorized,
		Filter: func(c *fiber.Ctx) bool {
			return c.Get(fiber.HeaderAuthorization) == ""
		},
	})
}

func unauthorized(c *fiber.Ctx, _ error) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "UNAUTHORIZED"})
}

// IssueToken signs an HS256 token carrying the employee id.
func IssueToken(secret string, employeeID int64, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		ClaimEmployeeID: employeeID,
		"exp":           time.Now().Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// EmployeeIDFromCtx reads the employee id claim placed in locals by the JWT
// middleware.
func EmployeeIDFromCtx(c *fiber.Ctx) (int64, error) {
	tok, ok := c.Locals(contextKey).(*jwt.Token)
	if !ok {
		return 0, fiber.ErrUnauthorized
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return 0, fiber.ErrUnauthorized
	}
	switch v := claims[ClaimEmployeeID].(type) {
	case float64:
		return int64(v), nil
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case string:
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fiber.ErrUnauthorized
		}
		return id, nil
	default:
		return 0, fiber.ErrUnauthorized
	}
}
