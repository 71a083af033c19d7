package cart

import "context"

// Gateway is the remote basket the reconciler mediates. Both the HTTP
// client and the in-process service adapter implement it; a basket that
// does not exist yet reads back as an empty payload, never as an error.
type Gateway interface {
	GetMyBasket(ctx context.Context) (*BasketPayload, error)
	AddUnifiedItem(ctx context.Context, in AddItemInput) error
	BatchAddItems(ctx context.Context, entries []BatchEntry) error
	UpdateBasketItem(ctx context.Context, itemID int64, in UpdateItemInput) error
	DeleteBasketItem(ctx context.Context, itemID int64) error
	DeleteBasket(ctx context.Context) error
}

type BasketPayload struct {
	BasketID int64         `json:"basketId"`
	Items    []ItemPayload `json:"items"`
}

type ItemPayload struct {
	BasketItemID    int64          `json:"basketItemId"`
	BranchProductID int64          `json:"branchProductId"`
	ProductName     string         `json:"productName,omitempty"`
	PriceCents      int64          `json:"priceCents,omitempty"`
	Quantity        int            `json:"quantity"`
	ImageURL        string         `json:"imageUrl,omitempty"`
	TotalPriceCents int64          `json:"totalPriceCents,omitempty"`
	AddonItems      []AddonPayload `json:"addonItems,omitempty"`
}

type AddonPayload struct {
	BasketItemID    int64  `json:"basketItemId"`
	BranchProductID int64  `json:"branchProductId"`
	ProductName     string `json:"productName,omitempty"`
	PriceCents      int64  `json:"priceCents,omitempty"`
	Quantity        int    `json:"quantity"`
}

type AddItemInput struct {
	BranchProductID int64 `json:"branchProductId"`
	Quantity        int   `json:"quantity"`
}

// BatchEntry adds one line. With ParentBasketItemID set, BranchProductID
// carries a branch product addon id and the entry attaches to that parent.
type BatchEntry struct {
	BranchProductID    int64  `json:"branchProductId"`
	Quantity           int    `json:"quantity"`
	ParentBasketItemID *int64 `json:"parentBasketItemId,omitempty"`
}

type UpdateItemInput struct {
	BasketItemID    int64 `json:"basketItemId"`
	BasketID        int64 `json:"basketId"`
	BranchProductID int64 `json:"branchProductId"`
	Quantity        int   `json:"quantity"`
}
