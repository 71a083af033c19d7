package branch

import (
	"context"

	"menubasket/internal/domain"
)

type Repository interface {
	GetByKey(ctx context.Context, key string) (*domain.Branch, error)
	Create(ctx context.Context, b *domain.Branch) (*domain.Branch, error)
}
