package middleware

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const HeaderCorrelationID = "X-Correlation-Id"

type ctxKey struct{}

// CorrelationID reuses the caller's correlation id or mints a new one, echoes
// it in the response and stores it on the request's user context.
func CorrelationID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		cid := c.Get(HeaderCorrelationID)
		if cid == "" {
			cid = uuid.NewString()
		}
		c.Set(HeaderCorrelationID, cid)
		c.SetUserContext(WithCorrelationID(c.UserContext(), cid))
		return c.Next()
	}
}

func WithCorrelationID(ctx context.Context, cid string) context.Context {
	return context.WithValue(ctx, ctxKey{}, cid)
}

func GetCorrelationID(ctx context.Context) string {
	if s, ok := ctx.Value(ctxKey{}).(string); ok {
		return s
	}
	return ""
}
