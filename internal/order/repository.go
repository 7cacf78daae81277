package order

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/wichananm65/grocery-pos-backend/internal/pricing"
)

type Repository interface {
	// GetReceipt returns nil, nil when the order does not exist.
	GetReceipt(ctx context.Context, orderID int64) (*Receipt, error)
	ListRecent(ctx context.Context, limit int) ([]Order, error)
	AssignCustomer(ctx context.Context, orderID, customerID int64) error
	UpdateStatus(ctx context.Context, orderID int64, status string) error
}

// ProductNamer resolves live product names for receipts.
type ProductNamer interface {
	Name(productID int) (string, bool)
}

type CustomerNamer interface {
	Name(customerID int64) (string, bool)
}

// InMemoryRepository stores orders in memory. It also serves as the order
// side of the in-memory checkout store.
type InMemoryRepository struct {
	mu        sync.RWMutex
	orders    map[int64]Order
	lines     map[int64][]Line
	lastID    int64
	products  ProductNamer
	customers CustomerNamer
}

func NewInMemoryRepository(products ProductNamer, customers CustomerNamer) *InMemoryRepository {
	return &InMemoryRepository{
		orders:    map[int64]Order{},
		lines:     map[int64][]Line{},
		products:  products,
		customers: customers,
	}
}

// NextID reserves an order id, like a sequence: ids are never reused even
// when the order is never saved.
func (r *InMemoryRepository) NextID() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastID++
	return r.lastID
}

// Save stores an order together with its lines.
func (r *InMemoryRepository) Save(o Order, lines []Line) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[o.ID] = o
	r.lines[o.ID] = append([]Line(nil), lines...)
}

// Count returns the number of stored orders and order lines.
func (r *InMemoryRepository) Count() (orders, lines int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, ls := range r.lines {
		lines += len(ls)
	}
	return len(r.orders), lines
}

func (r *InMemoryRepository) Get(orderID int64) (Order, []Line, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[orderID]
	return o, append([]Line(nil), r.lines[orderID]...), ok
}

func (r *InMemoryRepository) GetReceipt(ctx context.Context, orderID int64) (*Receipt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[orderID]
	if !ok {
		return nil, nil
	}
	rec := &Receipt{
		OrderID:    o.ID,
		DatePlaced: o.DatePlaced,
		Status:     o.Status,
		CustomerID: o.CustomerID,
		EmployeeID: o.EmployeeID,
		Items:      make([]ReceiptItem, 0, len(r.lines[orderID])),
		Subtotal:   o.Subtotal,
		Tax:        o.Tax,
		Total:      o.Total,
	}
	if o.CustomerID != nil && r.customers != nil {
		rec.CustomerName, _ = r.customers.Name(*o.CustomerID)
	}
	for _, l := range r.lines[orderID] {
		item := ReceiptItem{
			ProductID: l.ProductID,
			Qty:       l.Quantity,
			Price:     l.UnitPrice,
			LineTotal: lineTotal(l),
		}
		if r.products != nil {
			item.Name, _ = r.products.Name(l.ProductID)
		}
		rec.Items = append(rec.Items, item)
	}
	return rec, nil
}

func (r *InMemoryRepository) ListRecent(ctx context.Context, limit int) ([]Order, error) {
	r.mu.RLock()
	out := make([]Order, 0, len(r.orders))
	for _, o := range r.orders {
		out = append(out, o)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].DatePlaced.Equal(out[j].DatePlaced) {
			return out[i].ID > out[j].ID
		}
		return out[i].DatePlaced.After(out[j].DatePlaced)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *InMemoryRepository) AssignCustomer(ctx context.Context, orderID, customerID int64) error {
	if r.customers != nil {
		if _, ok := r.customers.Name(customerID); !ok {
			return ErrCustomerNotFound
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok {
		return ErrNotFound
	}
	o.CustomerID = &customerID
	r.orders[orderID] = o
	return nil
}

func (r *InMemoryRepository) UpdateStatus(ctx context.Context, orderID int64, status string) error {
	status, ok := NormalizeStatus(status)
	if !ok {
		return ErrInvalidStatus
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok {
		return ErrNotFound
	}
	o.Status = status
	r.orders[orderID] = o
	return nil
}

func lineTotal(l Line) decimal.Decimal {
	return pricing.Round2(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
}
