package menu

import (
	"context"
	"errors"
	"io"
	"log"

	"menubasket/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) ListCategories(ctx context.Context, branchID int64) ([]domain.MenuCategory, error) {
	const q = `
SELECT id, branch_id, key, name, sort_order
FROM menu_categories
WHERE branch_id = $1
ORDER BY sort_order ASC, name ASC
`
	rows, err := r.pool.Query(ctx, q, branchID)
	if err != nil {
		r.logger.Printf("menu repo: list categories branch_id=%d error=%v", branchID, err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.MenuCategory
	for rows.Next() {
		var c domain.MenuCategory
		if err := rows.Scan(&c.ID, &c.BranchID, &c.Key, &c.Name, &c.SortOrder); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *postgresRepo) ListProducts(ctx context.Context, branchID int64) ([]domain.BranchProduct, error) {
	const q = `
SELECT id, branch_id, category_id, key, name, COALESCE(description, ''), price_cents, COALESCE(image_url, ''), created_at
FROM branch_products
WHERE branch_id = $1
ORDER BY name ASC
`
	rows, err := r.pool.Query(ctx, q, branchID)
	if err != nil {
		r.logger.Printf("menu repo: list products branch_id=%d error=%v", branchID, err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.BranchProduct
	index := make(map[int64]int)
	for rows.Next() {
		var p domain.BranchProduct
		if err := rows.Scan(&p.ID, &p.BranchID, &p.CategoryID, &p.Key, &p.Name, &p.Description, &p.PriceCents, &p.ImageURL, &p.CreatedAt); err != nil {
			return nil, err
		}
		index[p.ID] = len(result)
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return result, nil
	}

	const addonQ = `
SELECT a.id, a.branch_product_id, a.key, a.name, a.price_cents
FROM branch_product_addons a
JOIN branch_products p ON p.id = a.branch_product_id
WHERE p.branch_id = $1
ORDER BY a.name ASC
`
	addonRows, err := r.pool.Query(ctx, addonQ, branchID)
	if err != nil {
		return nil, err
	}
	defer addonRows.Close()

	for addonRows.Next() {
		var a domain.BranchProductAddon
		if err := addonRows.Scan(&a.ID, &a.BranchProductID, &a.Key, &a.Name, &a.PriceCents); err != nil {
			return nil, err
		}
		if pos, ok := index[a.BranchProductID]; ok {
			result[pos].Addons = append(result[pos].Addons, a)
		}
	}
	if err := addonRows.Err(); err != nil {
		return nil, err
	}

	r.logger.Printf("menu repo: list products branch_id=%d count=%d", branchID, len(result))
	return result, nil
}

func (r *postgresRepo) GetProductByID(ctx context.Context, branchID, id int64) (*domain.BranchProduct, error) {
	const q = `
SELECT id, branch_id, category_id, key, name, COALESCE(description, ''), price_cents, COALESCE(image_url, ''), created_at
FROM branch_products
WHERE branch_id = $1 AND id = $2
`
	var p domain.BranchProduct
	err := r.pool.QueryRow(ctx, q, branchID, id).Scan(&p.ID, &p.BranchID, &p.CategoryID, &p.Key, &p.Name, &p.Description, &p.PriceCents, &p.ImageURL, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Printf("menu repo: get product branch_id=%d id=%d not found", branchID, id)
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("menu repo: get product branch_id=%d id=%d error=%v", branchID, id, err)
		return nil, err
	}
	return &p, nil
}

func (r *postgresRepo) GetAddonByID(ctx context.Context, id int64) (*domain.BranchProductAddon, error) {
	const q = `
SELECT id, branch_product_id, key, name, price_cents
FROM branch_product_addons
WHERE id = $1
`
	var a domain.BranchProductAddon
	err := r.pool.QueryRow(ctx, q, id).Scan(&a.ID, &a.BranchProductID, &a.Key, &a.Name, &a.PriceCents)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Printf("menu repo: get addon id=%d not found", id)
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *postgresRepo) UpsertCategory(ctx context.Context, c domain.MenuCategory) (*domain.MenuCategory, error) {
	const q = `
INSERT INTO menu_categories (branch_id, key, name, sort_order)
VALUES ($1, $2, $3, $4)
ON CONFLICT (branch_id, key) DO UPDATE
SET name = EXCLUDED.name,
    sort_order = EXCLUDED.sort_order
RETURNING id
`
	out := c
	if err := r.pool.QueryRow(ctx, q, c.BranchID, c.Key, c.Name, c.SortOrder).Scan(&out.ID); err != nil {
		r.logger.Printf("menu repo: upsert category key=%s branch_id=%d error=%v", c.Key, c.BranchID, err)
		return nil, err
	}
	return &out, nil
}

func (r *postgresRepo) UpsertProduct(ctx context.Context, p domain.BranchProduct) (*domain.BranchProduct, error) {
	const q = `
INSERT INTO branch_products (branch_id, category_id, key, name, description, price_cents, image_url)
VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, NULLIF($7, ''))
ON CONFLICT (branch_id, key) DO UPDATE
SET category_id = EXCLUDED.category_id,
    name = EXCLUDED.name,
    description = EXCLUDED.description,
    price_cents = EXCLUDED.price_cents,
    image_url = EXCLUDED.image_url
RETURNING id, created_at
`
	out := p
	err := r.pool.QueryRow(ctx, q, p.BranchID, p.CategoryID, p.Key, p.Name, p.Description, p.PriceCents, p.ImageURL).
		Scan(&out.ID, &out.CreatedAt)
	if err != nil {
		r.logger.Printf("menu repo: upsert product key=%s branch_id=%d error=%v", p.Key, p.BranchID, err)
		return nil, err
	}

	const addonQ = `
INSERT INTO branch_product_addons (branch_product_id, key, name, price_cents)
VALUES ($1, $2, $3, $4)
ON CONFLICT (branch_product_id, key) DO UPDATE
SET name = EXCLUDED.name,
    price_cents = EXCLUDED.price_cents
RETURNING id
`
	out.Addons = nil
	for _, a := range p.Addons {
		a.BranchProductID = out.ID
		if err := r.pool.QueryRow(ctx, addonQ, out.ID, a.Key, a.Name, a.PriceCents).Scan(&a.ID); err != nil {
			r.logger.Printf("menu repo: upsert addon key=%s product_id=%d error=%v", a.Key, out.ID, err)
			return nil, err
		}
		out.Addons = append(out.Addons, a)
	}

	r.logger.Printf("menu repo: upserted product key=%s branch_id=%d id=%d addons=%d", out.Key, out.BranchID, out.ID, len(out.Addons))
	return &out, nil
}
