package order

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusPaid     = "paid"
	StatusRefunded = "refunded"
	StatusVoid     = "void"
)

var (
	ErrNotFound         = errors.New("order not found")
	ErrInvalidStatus    = errors.New("invalid order status")
	ErrCustomerNotFound = errors.New("customer not found")
)

// Order is the persisted header of a completed sale. Only CustomerID and
// Status change after creation.
type Order struct {
	ID         int64
	CustomerID *int64
	EmployeeID *int64
	DatePlaced time.Time
	Status     string
	Subtotal   decimal.Decimal
	Tax        decimal.Decimal
	Total      decimal.Decimal
}

// Line is one order_details row. UnitPrice is the price at the time of sale.
type Line struct {
	OrderID   int64
	ProductID int
	Quantity  int
	UnitPrice decimal.Decimal
}

type Receipt struct {
	OrderID      int64
	DatePlaced   time.Time
	Status       string
	CustomerID   *int64
	EmployeeID   *int64
	CustomerName string
	Items        []ReceiptItem
	Subtotal     decimal.Decimal
	Tax          decimal.Decimal
	Total        decimal.Decimal
}

type ReceiptItem struct {
	ProductID int
	Name      string
	Qty       int
	Price     decimal.Decimal
	LineTotal decimal.Decimal
}

// NormalizeStatus lower-cases status and reports whether it is one of the
// known order states.
func NormalizeStatus(status string) (string, bool) {
	s := strings.ToLower(strings.TrimSpace(status))
	switch s {
	case StatusPaid, StatusRefunded, StatusVoid:
		return s, true
	}
	return "", false
}
