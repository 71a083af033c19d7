package domain

// BasketLine is the client-side view of one parent basket row, as produced
// by a snapshot fetch. A line with a BasketItemID corresponds 1:1 to a
// server row; lines are never merged locally, even when two lines share the
// same BranchProductID.
type BasketLine struct {
	BasketItemID        int64       `json:"basketItemId"`
	BranchProductID     int64       `json:"branchProductId"`
	ProductName         string      `json:"productName"`
	Quantity            int         `json:"quantity"`
	UnitPriceCents      int64       `json:"unitPriceCents"`
	TotalItemPriceCents int64       `json:"totalItemPriceCents"`
	ImageURL            string      `json:"imageUrl,omitempty"`
	Addons              []AddonLine `json:"addons,omitempty"`
}

// AddonLine belongs to exactly one parent BasketLine.
type AddonLine struct {
	BasketItemID         int64  `json:"basketItemId"`
	BranchProductAddonID int64  `json:"branchProductAddonId"`
	ProductName          string `json:"productName"`
	Quantity             int    `json:"quantity"`
	PriceCents           int64  `json:"priceCents"`
}

// CartGroup aggregates all lines of one product for display. It is a pure
// derived view: rebuilt from the current line list on every snapshot change
// and never mutated independently.
type CartGroup struct {
	BranchProductID int64         `json:"branchProductId"`
	ProductName     string        `json:"productName"`
	TotalQuantity   int           `json:"totalQuantity"`
	TotalPriceCents int64         `json:"totalPriceCents"`
	Variants        []CartVariant `json:"variants"`
}

// CartVariant is one underlying line inside a group. IsPlain is true iff the
// line carries no addons.
type CartVariant struct {
	Line    BasketLine `json:"line"`
	IsPlain bool       `json:"isPlain"`
}
