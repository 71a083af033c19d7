package domain

import "time"

const (
	BasketStateActive  = "active"
	BasketStateDeleted = "deleted"
)

// Basket is the server-held, session-scoped collection of items a customer
// intends to order from one branch.
type Basket struct {
	ID         int64        `json:"id"`
	BranchID   int64        `json:"-"`
	SessionID  string       `json:"-"`
	State      string       `json:"state"`
	TotalCents int64        `json:"totalCents"`
	CreatedAt  time.Time    `json:"createdAt"`
	Items      []BasketItem `json:"items,omitempty"`
}

// BasketItem is one stored basket row. A parent row references a branch
// product; an addon row references a branch product addon and carries the
// parent row's id. Addon rows have no lifecycle of their own: deleting the
// parent removes them.
type BasketItem struct {
	ID                   int64        `json:"id"`
	BasketID             int64        `json:"-"`
	ParentID             *int64       `json:"parentId,omitempty"`
	BranchProductID      *int64       `json:"branchProductId,omitempty"`
	BranchProductAddonID *int64       `json:"branchProductAddonId,omitempty"`
	ProductName          string       `json:"productName"`
	PriceCents           int64        `json:"priceCents"`
	Quantity             int          `json:"quantity"`
	ImageURL             string       `json:"imageUrl,omitempty"`
	CreatedAt            time.Time    `json:"createdAt"`
	Addons               []BasketItem `json:"addons,omitempty"`
}

// IsAddon reports whether the item is an addon row attached to a parent.
func (i BasketItem) IsAddon() bool {
	return i.ParentID != nil
}
