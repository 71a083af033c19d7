package basket

import (
	"context"

	"menubasket/internal/domain"
)

// AddEntry is one item to insert in a batch add. ParentID set means the
// entry is an addon attached to an existing parent row, and the product
// reference is an addon id.
type AddEntry struct {
	Product  *domain.BranchProduct
	Addon    *domain.BranchProductAddon
	Quantity int
	ParentID *int64
}

type Repository interface {
	GetActiveBySession(ctx context.Context, branchID int64, sessionID string) (*domain.Basket, error)
	GetOrCreate(ctx context.Context, branchID int64, sessionID string) (*domain.Basket, error)
	GetItem(ctx context.Context, basketID, itemID int64) (*domain.BasketItem, error)
	AddUnifiedItem(ctx context.Context, basketID int64, product domain.BranchProduct, quantity int) error
	BatchAdd(ctx context.Context, basketID int64, entries []AddEntry) error
	UpdateItemQuantity(ctx context.Context, basketID, itemID int64, quantity int) error
	DeleteItem(ctx context.Context, basketID, itemID int64) error
	DeleteBasket(ctx context.Context, branchID int64, sessionID string) error
}
