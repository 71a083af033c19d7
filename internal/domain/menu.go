package domain

import "time"

// Branch is one restaurant location. Every menu entry and basket is scoped
// to a branch, and API routes address branches by Key.
type Branch struct {
	ID        int64     `json:"id"`
	Key       string    `json:"key"`
	Name      string    `json:"name"`
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"createdAt"`
}

type MenuCategory struct {
	ID        int64  `json:"id"`
	BranchID  int64  `json:"-"`
	Key       string `json:"key"`
	Name      string `json:"name"`
	SortOrder int    `json:"sortOrder"`
}

type BranchProduct struct {
	ID          int64                `json:"id"`
	BranchID    int64                `json:"-"`
	CategoryID  *int64               `json:"categoryId,omitempty"`
	Key         string               `json:"key"`
	Name        string               `json:"name"`
	Description string               `json:"description,omitempty"`
	PriceCents  int64                `json:"priceCents"`
	ImageURL    string               `json:"imageUrl,omitempty"`
	Addons      []BranchProductAddon `json:"addons,omitempty"`
	CreatedAt   time.Time            `json:"createdAt"`
}

// BranchProductAddon is an extra attachable to basket lines of exactly one
// product (e.g. an extra shot for a coffee product).
type BranchProductAddon struct {
	ID              int64  `json:"id"`
	BranchProductID int64  `json:"-"`
	Key             string `json:"key"`
	Name            string `json:"name"`
	PriceCents      int64  `json:"priceCents"`
}
