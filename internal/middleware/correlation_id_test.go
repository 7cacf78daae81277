package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func TestCorrelationID(t *testing.T) {
	app := fiber.New()
	app.Use(CorrelationID())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(GetCorrelationID(c.UserContext()))
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(HeaderCorrelationID, "abc")
	res, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, "abc", res.Header.Get(HeaderCorrelationID))

	res, err = app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	require.Len(t, res.Header.Get(HeaderCorrelationID), 36)
}
