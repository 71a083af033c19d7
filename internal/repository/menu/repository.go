package menu

import (
	"context"

	"menubasket/internal/domain"
)

type Repository interface {
	ListCategories(ctx context.Context, branchID int64) ([]domain.MenuCategory, error)
	ListProducts(ctx context.Context, branchID int64) ([]domain.BranchProduct, error)
	GetProductByID(ctx context.Context, branchID, id int64) (*domain.BranchProduct, error)
	GetAddonByID(ctx context.Context, id int64) (*domain.BranchProductAddon, error)
	UpsertCategory(ctx context.Context, c domain.MenuCategory) (*domain.MenuCategory, error)
	UpsertProduct(ctx context.Context, p domain.BranchProduct) (*domain.BranchProduct, error)
}
