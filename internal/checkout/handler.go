package checkout

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/wichananm65/grocery-pos-backend/internal/auth"
	"github.com/wichananm65/grocery-pos-backend/internal/pricing"
)

var errMalformedItem = errors.New("malformed cart item")

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Post("/api/v1/checkout/quote", h.quote)
	app.Post("/api/v1/checkout", h.checkout)
}

type cartItem struct {
	ProductID int `json:"ProductID"`
	Qty       any `json:"Qty"`
}

type quoteRequest struct {
	Items   json.RawMessage  `json:"items"`
	TaxRate *decimal.Decimal `json:"taxRate"`
}

type checkoutRequest struct {
	CustomerID *int64           `json:"customerId"`
	EmployeeID *int64           `json:"employeeId"`
	Phone      string           `json:"phone"`
	Items      json.RawMessage  `json:"items"`
	Payment    json.RawMessage  `json:"payment"`
	TaxRate    *decimal.Decimal `json:"taxRate"`
}

type quoteItemResponse struct {
	ProductID int     `json:"ProductID"`
	Name      string  `json:"Name"`
	Qty       int     `json:"Qty"`
	Price     float64 `json:"Price"`
	LineTotal float64 `json:"LineTotal"`
}

type quoteResponse struct {
	Subtotal float64             `json:"subtotal"`
	Tax      float64             `json:"tax"`
	Total    float64             `json:"total"`
	Items    []quoteItemResponse `json:"items"`
}

type checkoutResponse struct {
	OK       bool    `json:"ok"`
	OrderID  int64   `json:"OrderID"`
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

func (h *Handler) quote(c *fiber.Ctx) error {
	payload := new(quoteRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "BAD_REQUEST"})
	}
	if payload.TaxRate != nil && payload.TaxRate.IsNegative() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "BAD_REQUEST"})
	}
	lines, err := parseItems(payload.Items)
	if err != nil {
		return h.writeError(c, err)
	}

	q, err := h.service.Quote(c.UserContext(), QuoteRequest{Lines: lines, TaxRate: payload.TaxRate})
	if err != nil {
		return h.writeError(c, err)
	}

	out := quoteResponse{
		Subtotal: q.Subtotal.InexactFloat64(),
		Tax:      q.Tax.InexactFloat64(),
		Total:    q.Total.InexactFloat64(),
		Items:    make([]quoteItemResponse, 0, len(q.Lines)),
	}
	for _, l := range q.Lines {
		out.Items = append(out.Items, quoteItemResponse{
			ProductID: l.ProductID,
			Name:      l.Name,
			Qty:       l.Quantity,
			Price:     l.UnitPrice.InexactFloat64(),
			LineTotal: l.LineTotal.InexactFloat64(),
		})
	}
	return c.JSON(out)
}

func (h *Handler) checkout(c *fiber.Ctx) error {
	payload := new(checkoutRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "BAD_REQUEST"})
	}
	if payload.TaxRate != nil && payload.TaxRate.IsNegative() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "BAD_REQUEST"})
	}
	lines, err := parseItems(payload.Items)
	if err != nil {
		return h.writeError(c, err)
	}

	employeeID := payload.EmployeeID
	if employeeID == nil {
		if id, err := auth.EmployeeIDFromCtx(c); err == nil {
			employeeID = &id
		}
	}

	res, err := h.service.Checkout(c.UserContext(), Request{
		Lines:      lines,
		CustomerID: payload.CustomerID,
		Phone:      payload.Phone,
		EmployeeID: employeeID,
		TaxRate:    payload.TaxRate,
	})
	if err != nil {
		return h.writeError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(checkoutResponse{
		OK:       true,
		OrderID:  res.OrderID,
		Subtotal: res.Subtotal.InexactFloat64(),
		Tax:      res.Tax.InexactFloat64(),
		Total:    res.Total.InexactFloat64(),
	})
}

// parseItems turns the raw items value into cart lines. Anything that is not
// a non-empty array is an empty cart; quantities that are not positive whole
// numbers become a BadQuantityError.
func parseItems(raw json.RawMessage) ([]pricing.CartLine, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, pricing.ErrEmptyCart
	}
	var items []cartItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, errMalformedItem
	}
	if len(items) == 0 {
		return nil, pricing.ErrEmptyCart
	}

	lines := make([]pricing.CartLine, 0, len(items))
	for _, it := range items {
		qty, ok := pricing.ParseQuantity(it.Qty)
		if !ok {
			return nil, &pricing.BadQuantityError{ProductID: it.ProductID}
		}
		lines = append(lines, pricing.CartLine{ProductID: it.ProductID, Quantity: qty})
	}
	return lines, nil
}

func (h *Handler) writeError(c *fiber.Ctx, err error) error {
	var (
		badQty   *pricing.BadQuantityError
		notFound *pricing.ProductNotFoundError
		noStock  *InsufficientStockError
	)
	switch {
	case errors.Is(err, pricing.ErrEmptyCart):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "EMPTY_CART"})
	case errors.As(err, &badQty):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "BAD_QTY", "ProductID": badQty.ProductID})
	case errors.Is(err, errMalformedItem):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "BAD_REQUEST"})
	case errors.As(err, &notFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "PRODUCT_NOT_FOUND", "ProductID": notFound.ProductID})
	case errors.As(err, &noStock):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":     "INSUFFICIENT_STOCK",
			"ProductID": noStock.ProductID,
			"requested": noStock.Requested,
			"available": noStock.Available,
		})
	default:
		h.service.logger.Printf("%s %s: %v", c.Method(), c.Path(), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB_ERROR"})
	}
}
