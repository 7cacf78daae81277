package customer

import (
	"context"
	"strings"
	"sync"
)

const (
	guestFirstName = "Guest"
	guestLastName  = "Customer"
)

// Repository covers the customer operations checkout depends on.
type Repository interface {
	// EnsureGuest makes sure the reserved guest customer exists. It is safe
	// to call repeatedly.
	EnsureGuest(ctx context.Context, id int64) error
	FindIDByPhone(ctx context.Context, phone string) (int64, bool, error)
}

type InMemoryRepository struct {
	mu        sync.RWMutex
	customers map[int64]Customer
}

func NewInMemoryRepository(seed []Customer) *InMemoryRepository {
	r := &InMemoryRepository{customers: make(map[int64]Customer, len(seed))}
	for _, c := range seed {
		r.customers[c.ID] = c
	}
	return r
}

func (r *InMemoryRepository) EnsureGuest(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.customers[id]; !ok {
		r.customers[id] = Customer{ID: id, FirstName: guestFirstName, LastName: guestLastName}
	}
	return nil
}

func (r *InMemoryRepository) FindIDByPhone(ctx context.Context, phone string) (int64, bool, error) {
	phone = NormalizePhone(phone)
	if phone == "" {
		return 0, false, nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.customers {
		if NormalizePhone(c.Phone) == phone {
			return c.ID, true, nil
		}
	}
	return 0, false, nil
}

// Name implements order.CustomerNamer.
func (r *InMemoryRepository) Name(id int64) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.customers[id]
	return c.DisplayName(), ok
}

// NormalizePhone keeps digits and a leading plus sign.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for i, ch := range strings.TrimSpace(phone) {
		if ch >= '0' && ch <= '9' || (i == 0 && ch == '+') {
			b.WriteRune(ch)
		}
	}
	return b.String()
}
