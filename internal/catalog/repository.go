package catalog

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/wichananm65/grocery-pos-backend/internal/pricing"
)

var (
	ErrNotFound        = errors.New("product not found")
	ErrInvalidQuantity = errors.New("restock quantity must be positive")
)

// Repository is the read side of the product catalog plus restocking.
type Repository interface {
	// Lookup returns name and price for every known id; unknown ids are absent
	// from the result.
	Lookup(ctx context.Context, ids []int) (map[int]pricing.Item, error)
	Get(ctx context.Context, id int) (Product, error)
	// Restock adds qty to the product's stock under a row lock and returns the
	// new stock level.
	Restock(ctx context.Context, id int, qty int) (int, error)
}

// InMemoryRepository keeps products in memory for tests and local runs. Each
// product has its own row lock so checkout can reproduce the database's
// locking discipline.
type InMemoryRepository struct {
	mu       sync.RWMutex
	products map[int]Product

	locksMu sync.Mutex
	rowLock map[int]*sync.Mutex
}

func NewInMemoryRepository(seed []Product) *InMemoryRepository {
	r := &InMemoryRepository{
		products: make(map[int]Product, len(seed)),
		rowLock:  make(map[int]*sync.Mutex, len(seed)),
	}
	for _, p := range seed {
		r.products[p.ID] = p
	}
	return r
}

func (r *InMemoryRepository) Lookup(ctx context.Context, ids []int) (map[int]pricing.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[int]pricing.Item, len(ids))
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			out[id] = pricing.Item{Name: p.Name, Price: p.Price}
		}
	}
	return out, nil
}

func (r *InMemoryRepository) Get(ctx context.Context, id int) (Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	return p, nil
}

func (r *InMemoryRepository) Restock(ctx context.Context, id int, qty int) (int, error) {
	if qty <= 0 {
		return 0, ErrInvalidQuantity
	}
	unlock := r.LockRows([]int{id})
	defer unlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return 0, ErrNotFound
	}
	p.Stock += qty
	r.products[id] = p
	return p.Stock, nil
}

// LockRows acquires the row locks of ids in ascending order and returns the
// matching release function, which is safe to call more than once.
func (r *InMemoryRepository) LockRows(ids []int) func() {
	sorted := append([]int(nil), ids...)
	sort.Ints(sorted)

	held := make([]*sync.Mutex, 0, len(sorted))
	for i, id := range sorted {
		if i > 0 && sorted[i-1] == id {
			continue
		}
		m := r.rowMutex(id)
		m.Lock()
		held = append(held, m)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			for i := len(held) - 1; i >= 0; i-- {
				held[i].Unlock()
			}
		})
	}
}

func (r *InMemoryRepository) rowMutex(id int) *sync.Mutex {
	r.locksMu.Lock()
	defer r.locksMu.Unlock()
	m, ok := r.rowLock[id]
	if !ok {
		m = &sync.Mutex{}
		r.rowLock[id] = m
	}
	return m
}

// Snapshot returns the current rows for ids. Callers are expected to hold the
// row locks from LockRows.
func (r *InMemoryRepository) Snapshot(ids []int) map[int]Product {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[int]Product, len(ids))
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			out[id] = p
		}
	}
	return out
}

// AdjustStock adds delta to the product's stock. Callers must hold the row
// lock.
func (r *InMemoryRepository) AdjustStock(id int, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return ErrNotFound
	}
	p.Stock += delta
	r.products[id] = p
	return nil
}

// Name implements order.ProductNamer.
func (r *InMemoryRepository) Name(id int) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.products[id]
	return p.Name, ok
}
