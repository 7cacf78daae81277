package checkout

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/wichananm65/grocery-pos-backend/internal/catalog"
	"github.com/wichananm65/grocery-pos-backend/internal/order"
)

// Step names a point in a memory transaction where a failure can be injected.
type Step int

const (
	StepNone Step = iota
	StepLock
	StepInsertOrder
	StepInsertLines
	StepDecrement
	StepCommit
)

// MemoryStore is a Store over the in-memory catalog and order repositories.
// Writes are staged on the transaction and applied on Commit; product row
// locks are held from LockProducts until Commit or Rollback.
type MemoryStore struct {
	products *catalog.InMemoryRepository
	orders   *order.InMemoryRepository

	mu      sync.Mutex
	failAt  Step
	failErr error
}

func NewMemoryStore(products *catalog.InMemoryRepository, orders *order.InMemoryRepository) *MemoryStore {
	return &MemoryStore{products: products, orders: orders}
}

// FailAt makes every later transaction fail with err when it reaches step.
func (s *MemoryStore) FailAt(step Step, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failAt, s.failErr = step, err
}

func (s *MemoryStore) fail(step Step) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAt != StepNone && s.failAt == step {
		return s.failErr
	}
	return nil
}

func (s *MemoryStore) Begin(ctx context.Context) (Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	return &memoryTx{store: s, unlock: func() {}}, nil
}

type stockChange struct {
	productID int
	qty       int
}

type memoryTx struct {
	store  *MemoryStore
	unlock func()
	done   bool

	order      *order.Order
	lines      []order.Line
	decrements []stockChange
}

func (t *memoryTx) LockProducts(ctx context.Context, ids []int) (map[int]catalog.Product, error) {
	if err := t.store.fail(StepLock); err != nil {
		return nil, fmt.Errorf("lock products: %w", err)
	}
	t.unlock = t.store.products.LockRows(ids)
	return t.store.products.Snapshot(ids), nil
}

func (t *memoryTx) InsertOrder(ctx context.Context, o order.Order) (int64, error) {
	if err := t.store.fail(StepInsertOrder); err != nil {
		return 0, fmt.Errorf("insert order: %w", err)
	}
	o.ID = t.store.orders.NextID()
	t.order = &o
	return o.ID, nil
}

func (t *memoryTx) InsertLines(ctx context.Context, orderID int64, lines []order.Line) error {
	if err := t.store.fail(StepInsertLines); err != nil {
		return fmt.Errorf("insert order lines: %w", err)
	}
	for _, l := range lines {
		l.OrderID = orderID
		t.lines = append(t.lines, l)
	}
	return nil
}

func (t *memoryTx) DecrementStock(ctx context.Context, productID, qty int) error {
	if err := t.store.fail(StepDecrement); err != nil {
		return fmt.Errorf("decrement stock for product %d: %w", productID, err)
	}
	if _, ok := t.store.products.Name(productID); !ok {
		return fmt.Errorf("decrement stock for product %d: %w", productID, catalog.ErrNotFound)
	}
	t.decrements = append(t.decrements, stockChange{productID: productID, qty: qty})
	return nil
}

func (t *memoryTx) Commit() error {
	if t.done {
		return sql.ErrTxDone
	}
	if err := t.store.fail(StepCommit); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	for _, d := range t.decrements {
		if err := t.store.products.AdjustStock(d.productID, -d.qty); err != nil {
			return fmt.Errorf("commit: %w", err)
		}
	}
	if t.order != nil {
		t.store.orders.Save(*t.order, t.lines)
	}
	t.finish()
	return nil
}

func (t *memoryTx) Rollback() error {
	if t.done {
		return sql.ErrTxDone
	}
	t.finish()
	return nil
}

func (t *memoryTx) finish() {
	t.done = true
	t.order, t.lines, t.decrements = nil, nil, nil
	t.unlock()
}
