package menu

import (
	"context"

	"menubasket/internal/domain"
	menurepo "menubasket/internal/repository/menu"
)

type Service struct {
	repo menurepo.Repository
}

func New(repo menurepo.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Categories(ctx context.Context, branchID int64) ([]domain.MenuCategory, error) {
	return s.repo.ListCategories(ctx, branchID)
}

func (s *Service) Products(ctx context.Context, branchID int64) ([]domain.BranchProduct, error) {
	return s.repo.ListProducts(ctx, branchID)
}

func (s *Service) Product(ctx context.Context, branchID, id int64) (*domain.BranchProduct, error) {
	return s.repo.GetProductByID(ctx, branchID, id)
}
