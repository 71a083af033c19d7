package basket

import (
	"context"
	"errors"
	"fmt"
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

const basketColumns = `id, branch_id, session_id, state, total_cents, created_at`

func (r *postgresRepo) GetActiveBySession(ctx context.Context, branchID int64, sessionID string) (*domain.Basket, error) {
	const q = `
SELECT ` + basketColumns + `
FROM baskets
WHERE branch_id = $1 AND session_id = $2 AND state = 'active'
`
	var b domain.Basket
	err := r.pool.QueryRow(ctx, q, branchID, sessionID).Scan(
		&b.ID, &b.BranchID, &b.SessionID, &b.State, &b.TotalCents, &b.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("basket repo: get branch_id=%d session=%s error=%v", branchID, sessionID, err)
		return nil, err
	}
	if err := r.loadItems(ctx, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *postgresRepo) GetOrCreate(ctx context.Context, branchID int64, sessionID string) (*domain.Basket, error) {
	b, err := r.GetActiveBySession(ctx, branchID, sessionID)
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	const q = `
INSERT INTO baskets (branch_id, session_id)
VALUES ($1, $2)
ON CONFLICT (branch_id, session_id) WHERE state = 'active' DO UPDATE SET session_id = EXCLUDED.session_id
RETURNING ` + basketColumns + `
`
	var created domain.Basket
	err = r.pool.QueryRow(ctx, q, branchID, sessionID).Scan(
		&created.ID, &created.BranchID, &created.SessionID, &created.State, &created.TotalCents, &created.CreatedAt,
	)
	if err != nil {
		r.logger.Printf("basket repo: create branch_id=%d session=%s error=%v", branchID, sessionID, err)
		return nil, err
	}
	r.logger.Printf("basket repo: created basket id=%d branch_id=%d", created.ID, created.BranchID)
	return &created, nil
}

func (r *postgresRepo) GetItem(ctx context.Context, basketID, itemID int64) (*domain.BasketItem, error) {
	const q = `
SELECT id, basket_id, parent_id, branch_product_id, branch_product_addon_id, product_name, price_cents, quantity, COALESCE(image_url, ''), created_at
FROM basket_items
WHERE basket_id = $1 AND id = $2
`
	var item domain.BasketItem
	err := r.pool.QueryRow(ctx, q, basketID, itemID).Scan(
		&item.ID, &item.BasketID, &item.ParentID, &item.BranchProductID, &item.BranchProductAddonID,
		&item.ProductName, &item.PriceCents, &item.Quantity, &item.ImageURL, &item.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// AddUnifiedItem adds quantity units of a plain product. The backend owns
// merge semantics: an existing parent line for the same product with no
// addon children absorbs the quantity, otherwise a new line is appended.
func (r *postgresRepo) AddUnifiedItem(ctx context.Context, basketID int64, product domain.BranchProduct, quantity int) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := addParentLine(ctx, tx, basketID, product, quantity); err != nil {
		return err
	}
	if err := updateBasketTotal(ctx, tx, basketID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *postgresRepo) BatchAdd(ctx context.Context, basketID int64, entries []AddEntry) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, e := range entries {
		switch {
		case e.ParentID != nil:
			if e.Addon == nil {
				return fmt.Errorf("batch add: addon entry without addon reference")
			}
			if err := addAddonLine(ctx, tx, basketID, *e.ParentID, *e.Addon, e.Quantity); err != nil {
				return err
			}
		case e.Product != nil:
			if err := addParentLine(ctx, tx, basketID, *e.Product, e.Quantity); err != nil {
				return err
			}
		default:
			return fmt.Errorf("batch add: entry without product reference")
		}
	}

	if err := updateBasketTotal(ctx, tx, basketID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *postgresRepo) UpdateItemQuantity(ctx context.Context, basketID, itemID int64, quantity int) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if quantity <= 0 {
		cmd, err := tx.Exec(ctx, `
DELETE FROM basket_items
WHERE id = $1 AND basket_id = $2
`, itemID, basketID)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return domain.ErrNotFound
		}
	} else {
		cmd, err := tx.Exec(ctx, `
UPDATE basket_items
SET quantity = $1
WHERE id = $2 AND basket_id = $3
`, quantity, itemID, basketID)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return domain.ErrNotFound
		}
	}

	if err := updateBasketTotal(ctx, tx, basketID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *postgresRepo) DeleteItem(ctx context.Context, basketID, itemID int64) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// Addon rows cascade with their parent.
	cmd, err := tx.Exec(ctx, `
DELETE FROM basket_items
WHERE id = $1 AND basket_id = $2
`, itemID, basketID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	if err := updateBasketTotal(ctx, tx, basketID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *postgresRepo) DeleteBasket(ctx context.Context, branchID int64, sessionID string) error {
	const q = `
UPDATE baskets
SET state = 'deleted'
WHERE branch_id = $1 AND session_id = $2 AND state = 'active'
`
	cmd, err := r.pool.Exec(ctx, q, branchID, sessionID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logger.Printf("basket repo: deleted basket branch_id=%d session=%s", branchID, sessionID)
	return nil
}

func (r *postgresRepo) loadItems(ctx context.Context, b *domain.Basket) error {
	const q = `
SELECT id, basket_id, parent_id, branch_product_id, branch_product_addon_id, product_name, price_cents, quantity, COALESCE(image_url, ''), created_at
FROM basket_items
WHERE basket_id = $1
ORDER BY created_at ASC, id ASC
`
	rows, err := r.pool.Query(ctx, q, b.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	parents := make(map[int64]int)
	var orphans []domain.BasketItem
	for rows.Next() {
		var item domain.BasketItem
		if err := rows.Scan(
			&item.ID, &item.BasketID, &item.ParentID, &item.BranchProductID, &item.BranchProductAddonID,
			&item.ProductName, &item.PriceCents, &item.Quantity, &item.ImageURL, &item.CreatedAt,
		); err != nil {
			return err
		}
		if item.ParentID == nil {
			parents[item.ID] = len(b.Items)
			b.Items = append(b.Items, item)
			continue
		}
		orphans = append(orphans, item)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, addon := range orphans {
		if pos, ok := parents[*addon.ParentID]; ok {
			b.Items[pos].Addons = append(b.Items[pos].Addons, addon)
		}
	}
	return nil
}

func addParentLine(ctx context.Context, tx pgx.Tx, basketID int64, product domain.BranchProduct, quantity int) error {
	var lineID int64
	var existingQty int
	err := tx.QueryRow(ctx, `
SELECT i.id, i.quantity
FROM basket_items i
WHERE i.basket_id = $1
  AND i.branch_product_id = $2
  AND i.parent_id IS NULL
  AND NOT EXISTS (SELECT 1 FROM basket_items c WHERE c.parent_id = i.id)
ORDER BY i.id ASC
LIMIT 1
`, basketID, product.ID).Scan(&lineID, &existingQty)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	if err == nil {
		_, err = tx.Exec(ctx, `
UPDATE basket_items
SET quantity = $1
WHERE id = $2
`, existingQty+quantity, lineID)
		return err
	}

	_, err = tx.Exec(ctx, `
INSERT INTO basket_items (basket_id, branch_product_id, product_name, price_cents, quantity, image_url)
VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''))
`, basketID, product.ID, product.Name, product.PriceCents, quantity, product.ImageURL)
	return err
}

func addAddonLine(ctx context.Context, tx pgx.Tx, basketID, parentID int64, addon domain.BranchProductAddon, quantity int) error {
	var parentExists bool
	if err := tx.QueryRow(ctx, `
SELECT EXISTS (
	SELECT 1 FROM basket_items
	WHERE id = $1 AND basket_id = $2 AND parent_id IS NULL
)
`, parentID, basketID).Scan(&parentExists); err != nil {
		return err
	}
	if !parentExists {
		return domain.ErrNotFound
	}

	var lineID int64
	var existingQty int
	err := tx.QueryRow(ctx, `
SELECT id, quantity
FROM basket_items
WHERE basket_id = $1 AND parent_id = $2 AND branch_product_addon_id = $3
`, basketID, parentID, addon.ID).Scan(&lineID, &existingQty)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	if err == nil {
		_, err = tx.Exec(ctx, `
UPDATE basket_items
SET quantity = $1
WHERE id = $2
`, existingQty+quantity, lineID)
		return err
	}

	_, err = tx.Exec(ctx, `
INSERT INTO basket_items (basket_id, parent_id, branch_product_addon_id, product_name, price_cents, quantity)
VALUES ($1, $2, $3, $4, $5, $6)
`, basketID, parentID, addon.ID, addon.Name, addon.PriceCents, quantity)
	return err
}

func updateBasketTotal(ctx context.Context, tx pgx.Tx, basketID int64) error {
	_, err := tx.Exec(ctx, `
UPDATE baskets
SET total_cents = COALESCE((
	SELECT SUM(price_cents * quantity)
	FROM basket_items
	WHERE basket_id = $1
), 0)
WHERE id = $1
`, basketID)
	return err
}
