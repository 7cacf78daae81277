package catalog

import "context"

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, id int) (Product, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Restock(ctx context.Context, id int, qty int) (int, error) {
	return s.repo.Restock(ctx, id, qty)
}
