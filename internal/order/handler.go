package order

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Get("/api/v1/orders/:id/receipt", h.getReceipt)
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/v1/orders", h.listOrders)
	app.Patch("/api/v1/orders/:id/customer", h.assignCustomer)
	app.Patch("/api/v1/orders/:id/status", h.updateStatus)
}

type receiptItemResponse struct {
	ProductID int     `json:"ProductID"`
	Name      string  `json:"Name"`
	Qty       int     `json:"Qty"`
	Price     float64 `json:"Price"`
	LineTotal float64 `json:"LineTotal"`
}

type receiptResponse struct {
	OrderID      int64                 `json:"OrderID"`
	DatePlaced   time.Time             `json:"DatePlaced"`
	Status       string                `json:"Status"`
	CustomerID   *int64                `json:"CustomerID"`
	EmployeeID   *int64                `json:"EmployeeID"`
	CustomerName string                `json:"CustomerName"`
	Items        []receiptItemResponse `json:"items"`
	Subtotal     float64               `json:"subtotal"`
	Tax          float64               `json:"tax"`
	Total        float64               `json:"total"`
}

type orderResponse struct {
	OrderID    int64     `json:"OrderID"`
	CustomerID *int64    `json:"CustomerID"`
	EmployeeID *int64    `json:"EmployeeID"`
	DatePlaced time.Time `json:"DatePlaced"`
	Status     string    `json:"Status"`
	Subtotal   float64   `json:"subtotal"`
	Tax        float64   `json:"tax"`
	Total      float64   `json:"total"`
}

func toReceiptResponse(r *Receipt) receiptResponse {
	out := receiptResponse{
		OrderID:      r.OrderID,
		DatePlaced:   r.DatePlaced,
		Status:       r.Status,
		CustomerID:   r.CustomerID,
		EmployeeID:   r.EmployeeID,
		CustomerName: r.CustomerName,
		Items:        make([]receiptItemResponse, 0, len(r.Items)),
		Subtotal:     r.Subtotal.InexactFloat64(),
		Tax:          r.Tax.InexactFloat64(),
		Total:        r.Total.InexactFloat64(),
	}
	for _, it := range r.Items {
		out.Items = append(out.Items, receiptItemResponse{
			ProductID: it.ProductID,
			Name:      it.Name,
			Qty:       it.Qty,
			Price:     it.Price.InexactFloat64(),
			LineTotal: it.LineTotal.InexactFloat64(),
		})
	}
	return out
}

func (h *Handler) getReceipt(c *fiber.Ctx) error {
	id, err := orderIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "BAD_REQUEST"})
	}

	rec, err := h.service.Receipt(c.UserContext(), id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB_ERROR"})
	}
	if rec == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "NOT_FOUND"})
	}
	return c.JSON(toReceiptResponse(rec))
}

func (h *Handler) listOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListRecent(c.UserContext(), c.QueryInt("limit", DefaultListLimit))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB_ERROR"})
	}

	out := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, orderResponse{
			OrderID:    o.ID,
			CustomerID: o.CustomerID,
			EmployeeID: o.EmployeeID,
			DatePlaced: o.DatePlaced,
			Status:     o.Status,
			Subtotal:   o.Subtotal.InexactFloat64(),
			Tax:        o.Tax.InexactFloat64(),
			Total:      o.Total.InexactFloat64(),
		})
	}
	return c.JSON(out)
}

type assignCustomerRequest struct {
	CustomerID int64 `json:"customerId"`
}

func (h *Handler) assignCustomer(c *fiber.Ctx) error {
	id, err := orderIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "BAD_REQUEST"})
	}
	payload := new(assignCustomerRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "BAD_REQUEST"})
	}

	if err := h.service.AssignCustomer(c.UserContext(), id, payload.CustomerID); err != nil {
		return writeUpdateError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) updateStatus(c *fiber.Ctx) error {
	id, err := orderIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "BAD_REQUEST"})
	}
	payload := new(updateStatusRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "BAD_REQUEST"})
	}

	if err := h.service.UpdateStatus(c.UserContext(), id, payload.Status); err != nil {
		return writeUpdateError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

func writeUpdateError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrInvalidStatus):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "BAD_STATUS"})
	case errors.Is(err, ErrInvalidCustomer):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "BAD_REQUEST"})
	case errors.Is(err, ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "NOT_FOUND"})
	case errors.Is(err, ErrCustomerNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "CUSTOMER_NOT_FOUND"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB_ERROR"})
	}
}

func orderIDParam(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fiber.ErrBadRequest
	}
	return id, nil
}
