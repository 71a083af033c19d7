package branch

import (
	"context"
	"errors"

	"menubasket/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) GetByKey(ctx context.Context, key string) (*domain.Branch, error) {
	const q = `
SELECT id, key, name, currency, created_at
FROM branches
WHERE key = $1
`
	var b domain.Branch
	err := r.pool.QueryRow(ctx, q, key).Scan(&b.ID, &b.Key, &b.Name, &b.Currency, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *postgresRepo) Create(ctx context.Context, b *domain.Branch) (*domain.Branch, error) {
	const q = `
INSERT INTO branches (key, name, currency)
VALUES ($1, $2, $3)
RETURNING id, key, name, currency, created_at
`
	currency := b.Currency
	if currency == "" {
		currency = "USD"
	}
	var created domain.Branch
	err := r.pool.QueryRow(ctx, q, b.Key, b.Name, currency).Scan(
		&created.ID, &created.Key, &created.Name, &created.Currency, &created.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &created, nil
}
