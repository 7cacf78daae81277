package order

import (
	"context"
	"errors"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 200
)

var ErrInvalidCustomer = errors.New("customer id must be positive")

// Service provides the order read path and the administrative updates.
type Service struct {
	repo Repository
}

func NewService(r Repository) *Service {
	return &Service{repo: r}
}

func (s *Service) Receipt(ctx context.Context, orderID int64) (*Receipt, error) {
	return s.repo.GetReceipt(ctx, orderID)
}

func (s *Service) ListRecent(ctx context.Context, limit int) ([]Order, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	return s.repo.ListRecent(ctx, limit)
}

func (s *Service) AssignCustomer(ctx context.Context, orderID, customerID int64) error {
	if customerID <= 0 {
		return ErrInvalidCustomer
	}
	return s.repo.AssignCustomer(ctx, orderID, customerID)
}

func (s *Service) UpdateStatus(ctx context.Context, orderID int64, status string) error {
	if _, ok := NormalizeStatus(status); !ok {
		return ErrInvalidStatus
	}
	return s.repo.UpdateStatus(ctx, orderID, status)
}
