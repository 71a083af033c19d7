package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type addonSeed struct {
	Key        string
	Name       string
	PriceCents int64
}

type productSeed struct {
	Key         string
	Category    string
	Name        string
	Description string
	PriceCents  int64
	ImageURL    string
	Addons      []addonSeed
}

// Apply inserts basic seed data for manual testing. It is idempotent via ON CONFLICT.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	branchID, err := ensureBranch(ctx, pool, "demo", "Demo Diner", "USD")
	if err != nil {
		return fmt.Errorf("ensure branch: %w", err)
	}

	categories := map[string]struct {
		Name string
		Sort int
	}{
		"burgers": {Name: "Burgers", Sort: 1},
		"sides":   {Name: "Sides", Sort: 2},
		"drinks":  {Name: "Drinks", Sort: 3},
	}
	categoryIDs := make(map[string]int64, len(categories))
	for key, cat := range categories {
		id, err := ensureCategory(ctx, pool, branchID, key, cat.Name, cat.Sort)
		if err != nil {
			return fmt.Errorf("ensure category %s: %w", key, err)
		}
		categoryIDs[key] = id
	}

	products := []productSeed{
		{
			Key:         "classic-burger",
			Category:    "burgers",
			Name:        "Classic Burger",
			Description: "Beef patty, lettuce, tomato, house sauce",
			PriceCents:  1099,
			ImageURL:    "https://img.example.com/classic-burger.jpg",
			Addons: []addonSeed{
				{Key: "extra-cheese", Name: "Extra Cheese", PriceCents: 150},
				{Key: "bacon", Name: "Bacon", PriceCents: 250},
				{Key: "extra-patty", Name: "Extra Patty", PriceCents: 400},
			},
		},
		{
			Key:         "veggie-burger",
			Category:    "burgers",
			Name:        "Veggie Burger",
			Description: "Grilled halloumi and portobello",
			PriceCents:  999,
			ImageURL:    "https://img.example.com/veggie-burger.jpg",
			Addons: []addonSeed{
				{Key: "extra-cheese", Name: "Extra Cheese", PriceCents: 150},
				{Key: "avocado", Name: "Avocado", PriceCents: 200},
			},
		},
		{
			Key:         "fries",
			Category:    "sides",
			Name:        "Fries",
			Description: "Hand cut, double fried",
			PriceCents:  449,
			ImageURL:    "https://img.example.com/fries.jpg",
			Addons: []addonSeed{
				{Key: "cheese-dip", Name: "Cheese Dip", PriceCents: 100},
				{Key: "truffle-mayo", Name: "Truffle Mayo", PriceCents: 150},
			},
		},
		{
			Key:         "onion-rings",
			Category:    "sides",
			Name:        "Onion Rings",
			Description: "Crispy battered rings",
			PriceCents:  499,
			ImageURL:    "https://img.example.com/onion-rings.jpg",
		},
		{
			Key:         "cola",
			Category:    "drinks",
			Name:        "Cola",
			Description: "330ml can",
			PriceCents:  249,
			ImageURL:    "https://img.example.com/cola.jpg",
		},
		{
			Key:         "lemonade",
			Category:    "drinks",
			Name:        "Fresh Lemonade",
			Description: "Squeezed to order",
			PriceCents:  399,
			ImageURL:    "https://img.example.com/lemonade.jpg",
		},
	}

	for _, p := range products {
		if err := upsertProduct(ctx, pool, branchID, categoryIDs[p.Category], p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.Key, err)
		}
	}

	return nil
}

func ensureBranch(ctx context.Context, pool *pgxpool.Pool, key, name, currency string) (int64, error) {
	const q = `
INSERT INTO branches (key, name, currency)
VALUES ($1, $2, $3)
ON CONFLICT (key) DO UPDATE SET name = EXCLUDED.name, currency = EXCLUDED.currency
RETURNING id
`
	var id int64
	if err := pool.QueryRow(ctx, q, key, name, currency).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func ensureCategory(ctx context.Context, pool *pgxpool.Pool, branchID int64, key, name string, sortOrder int) (int64, error) {
	const q = `
INSERT INTO menu_categories (branch_id, key, name, sort_order)
VALUES ($1, $2, $3, $4)
ON CONFLICT (branch_id, key) DO UPDATE SET name = EXCLUDED.name, sort_order = EXCLUDED.sort_order
RETURNING id
`
	var id int64
	if err := pool.QueryRow(ctx, q, branchID, key, name, sortOrder).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func upsertProduct(ctx context.Context, pool *pgxpool.Pool, branchID, categoryID int64, p productSeed) error {
	const q = `
INSERT INTO branch_products (branch_id, category_id, key, name, description, price_cents, image_url)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (branch_id, key) DO UPDATE
SET category_id = EXCLUDED.category_id,
    name = EXCLUDED.name,
    description = EXCLUDED.description,
    price_cents = EXCLUDED.price_cents,
    image_url = EXCLUDED.image_url
RETURNING id
`
	var productID int64
	if err := pool.QueryRow(ctx, q, branchID, categoryID, p.Key, p.Name, p.Description, p.PriceCents, p.ImageURL).Scan(&productID); err != nil {
		return err
	}

	const addonQ = `
INSERT INTO branch_product_addons (branch_product_id, key, name, price_cents)
VALUES ($1, $2, $3, $4)
ON CONFLICT (branch_product_id, key) DO UPDATE
SET name = EXCLUDED.name,
    price_cents = EXCLUDED.price_cents
`
	for _, a := range p.Addons {
		if _, err := pool.Exec(ctx, addonQ, productID, a.Key, a.Name, a.PriceCents); err != nil {
			return fmt.Errorf("upsert addon %s: %w", a.Key, err)
		}
	}
	return nil
}
