package checkout

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"github.com/wichananm65/grocery-pos-backend/internal/auth"
)

const testSecret = "pos-secret"

var errBoom = errors.New("pq: relation \"order_details\" is locked")

func setupApp(t *testing.T, f *fixture) *fiber.App {
	t.Helper()
	app := fiber.New()
	app.Use(auth.Optional(testSecret))
	NewHandler(f.svc).RegisterPublicRoutes(app)
	return app
}

func post(t *testing.T, app *fiber.App, path, body string, headers ...string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	res, err := app.Test(req)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.NewDecoder(res.Body).Decode(&out))
	return res.StatusCode, out
}

func TestQuoteRoute(t *testing.T) {
	f := newFixture(t, StockStrict, product(1, "Apple", "3.00", 10))
	app := setupApp(t, f)

	status, body := post(t, app, "/api/v1/checkout/quote", `{"items":[{"ProductID":1,"Qty":2}]}`)
	require.Equal(t, fiber.StatusOK, status)
	require.Equal(t, 6.0, body["subtotal"])
	require.Equal(t, 0.48, body["tax"])
	require.Equal(t, 6.48, body["total"])
	items := body["items"].([]any)
	require.Len(t, items, 1)
	require.Equal(t, "Apple", items[0].(map[string]any)["Name"])
	require.Equal(t, 6.0, items[0].(map[string]any)["LineTotal"])

	status, body = post(t, app, "/api/v1/checkout/quote", `{"items":[{"ProductID":1,"Qty":"2"}],"taxRate":0}`)
	require.Equal(t, fiber.StatusOK, status)
	require.Equal(t, 6.0, body["total"])
}

func TestQuoteRoute_Errors(t *testing.T) {
	f := newFixture(t, StockStrict, product(1, "Apple", "3.00", 10))
	app := setupApp(t, f)

	cases := []struct {
		body   string
		status int
		code   string
	}{
		{`{"items":[]}`, fiber.StatusBadRequest, "EMPTY_CART"},
		{`{}`, fiber.StatusBadRequest, "EMPTY_CART"},
		{`{"items":null}`, fiber.StatusBadRequest, "EMPTY_CART"},
		{`{"items":{"ProductID":1}}`, fiber.StatusBadRequest, "EMPTY_CART"},
		{`{"items":[{"ProductID":1,"Qty":0}]}`, fiber.StatusBadRequest, "BAD_QTY"},
		{`{"items":[{"ProductID":1,"Qty":2.5}]}`, fiber.StatusBadRequest, "BAD_QTY"},
		{`{"items":[{"ProductID":1,"Qty":"abc"}]}`, fiber.StatusBadRequest, "BAD_QTY"},
		{`{"items":[{"ProductID":1}]}`, fiber.StatusBadRequest, "BAD_QTY"},
		{`{"items":[{"ProductID":"x","Qty":1}]}`, fiber.StatusBadRequest, "BAD_REQUEST"},
		{`{"items":[{"ProductID":1,"Qty":1}],"taxRate":-0.1}`, fiber.StatusBadRequest, "BAD_REQUEST"},
		{`{"items":[{"ProductID":42,"Qty":1}]}`, fiber.StatusNotFound, "PRODUCT_NOT_FOUND"},
	}
	for _, tc := range cases {
		status, body := post(t, app, "/api/v1/checkout/quote", tc.body)
		require.Equal(t, tc.status, status, tc.body)
		require.Equal(t, tc.code, body["error"], tc.body)
	}
}

func TestCheckoutRoute_CreatesOrder(t *testing.T) {
	f := newFixture(t, StockStrict, product(1, "Apple", "3.00", 10))
	app := setupApp(t, f)

	status, body := post(t, app, "/api/v1/checkout",
		`{"items":[{"ProductID":1,"Qty":2}],"payment":{"method":"cash","tendered":10}}`)
	require.Equal(t, fiber.StatusCreated, status)
	require.Equal(t, true, body["ok"])
	require.Equal(t, 6.48, body["total"])

	orderID := int64(body["OrderID"].(float64))
	o, _, ok := f.orders.Get(orderID)
	require.True(t, ok)
	require.Equal(t, guestID, *o.CustomerID)
	require.Nil(t, o.EmployeeID)
	require.Equal(t, 8, stockOf(t, f, 1))
}

func TestCheckoutRoute_EmployeeFromToken(t *testing.T) {
	f := newFixture(t, StockStrict, product(1, "Apple", "3.00", 10))
	app := setupApp(t, f)
	token, err := auth.IssueToken(testSecret, 9, time.Hour)
	require.NoError(t, err)

	status, body := post(t, app, "/api/v1/checkout", `{"items":[{"ProductID":1,"Qty":1}]}`,
		"Authorization", "Bearer "+token)
	require.Equal(t, fiber.StatusCreated, status)
	o, _, _ := f.orders.Get(int64(body["OrderID"].(float64)))
	require.Equal(t, int64(9), *o.EmployeeID)

	status, body = post(t, app, "/api/v1/checkout", `{"employeeId":3,"items":[{"ProductID":1,"Qty":1}]}`,
		"Authorization", "Bearer "+token)
	require.Equal(t, fiber.StatusCreated, status)
	o, _, _ = f.orders.Get(int64(body["OrderID"].(float64)))
	require.Equal(t, int64(3), *o.EmployeeID)
}

func TestCheckoutRoute_Errors(t *testing.T) {
	f := newFixture(t, StockStrict, product(1, "Apple", "3.00", 1))
	app := setupApp(t, f)

	status, body := post(t, app, "/api/v1/checkout", `{"items":[{"ProductID":1,"Qty":2}]}`)
	require.Equal(t, fiber.StatusConflict, status)
	require.Equal(t, "INSUFFICIENT_STOCK", body["error"])

	status, body = post(t, app, "/api/v1/checkout", `{"items":[]}`)
	require.Equal(t, fiber.StatusBadRequest, status)
	require.Equal(t, "EMPTY_CART", body["error"])

	f.store.FailAt(StepInsertLines, errBoom)
	status, body = post(t, app, "/api/v1/checkout", `{"items":[{"ProductID":1,"Qty":1}]}`)
	require.Equal(t, fiber.StatusInternalServerError, status)
	require.Equal(t, "DB_ERROR", body["error"])
	require.Len(t, body, 1)
	requireNoWrites(t, f)
	require.Equal(t, 1, stockOf(t, f, 1))
}
