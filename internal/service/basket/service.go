package basket

import (
	"context"
	"errors"

	"menubasket/internal/domain"
	basketrepo "menubasket/internal/repository/basket"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrProductNotFound = errors.New("product not found")
	ErrAddonNotFound   = errors.New("addon not found")
	ErrAddonMismatch   = errors.New("addon does not belong to product")
	ErrEntriesRequired = errors.New("entries required")
)

type Service struct {
	repo     basketRepo
	menuRepo menuRepo
}

type basketRepo interface {
	GetActiveBySession(ctx context.Context, branchID int64, sessionID string) (*domain.Basket, error)
	GetOrCreate(ctx context.Context, branchID int64, sessionID string) (*domain.Basket, error)
	GetItem(ctx context.Context, basketID, itemID int64) (*domain.BasketItem, error)
	AddUnifiedItem(ctx context.Context, basketID int64, product domain.BranchProduct, quantity int) error
	BatchAdd(ctx context.Context, basketID int64, entries []basketrepo.AddEntry) error
	UpdateItemQuantity(ctx context.Context, basketID, itemID int64, quantity int) error
	DeleteItem(ctx context.Context, basketID, itemID int64) error
	DeleteBasket(ctx context.Context, branchID int64, sessionID string) error
}

type menuRepo interface {
	GetProductByID(ctx context.Context, branchID, id int64) (*domain.BranchProduct, error)
	GetAddonByID(ctx context.Context, id int64) (*domain.BranchProductAddon, error)
}

func New(repo basketrepo.Repository, menuRepo menuRepo) *Service {
	return &Service{repo: repo, menuRepo: menuRepo}
}

type AddItemInput struct {
	BranchProductID int64 `json:"branchProductId"`
	Quantity        int   `json:"quantity"`
}

// BatchEntryInput adds one line. When ParentBasketItemID is set the entry is
// an addon add and BranchProductID carries a branch product addon id.
type BatchEntryInput struct {
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

// GetMyBasket returns the session's active basket for the branch, or
// domain.ErrNotFound when the session has none.
func (s *Service) GetMyBasket(ctx context.Context, branchID int64, sessionID string) (*domain.Basket, error) {
	return s.repo.GetActiveBySession(ctx, branchID, sessionID)
}

// AddUnifiedItem adds quantity units of a plain product, creating the
// session basket when needed. Merging into an existing plain line is the
// repository's call, not the caller's.
func (s *Service) AddUnifiedItem(ctx context.Context, branchID int64, sessionID string, in AddItemInput) error {
	if in.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	product, err := s.menuRepo.GetProductByID(ctx, branchID, in.BranchProductID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	basket, err := s.repo.GetOrCreate(ctx, branchID, sessionID)
	if err != nil {
		return err
	}
	return s.repo.AddUnifiedItem(ctx, basket.ID, *product, in.Quantity)
}

// BatchAddItems adds several lines in one transaction. Addon entries are
// validated against the parent line: the parent must be a parent row of the
// session's basket and the addon must belong to the parent's product.
func (s *Service) BatchAddItems(ctx context.Context, branchID int64, sessionID string, entries []BatchEntryInput) error {
	if len(entries) == 0 {
		return ErrEntriesRequired
	}

	basket, err := s.repo.GetOrCreate(ctx, branchID, sessionID)
	if err != nil {
		return err
	}

	adds := make([]basketrepo.AddEntry, 0, len(entries))
	for _, e := range entries {
		if e.Quantity <= 0 {
			return ErrInvalidQuantity
		}
		if e.ParentBasketItemID == nil {
			product, err := s.menuRepo.GetProductByID(ctx, branchID, e.BranchProductID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return ErrProductNotFound
				}
				return err
			}
			adds = append(adds, basketrepo.AddEntry{Product: product, Quantity: e.Quantity})
			continue
		}

		parent, err := s.repo.GetItem(ctx, basket.ID, *e.ParentBasketItemID)
		if err != nil {
			return err
		}
		if parent.IsAddon() || parent.BranchProductID == nil {
			return domain.ErrNotFound
		}
		addon, err := s.menuRepo.GetAddonByID(ctx, e.BranchProductID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return ErrAddonNotFound
			}
			return err
		}
		if addon.BranchProductID != *parent.BranchProductID {
			return ErrAddonMismatch
		}
		adds = append(adds, basketrepo.AddEntry{Addon: addon, Quantity: e.Quantity, ParentID: e.ParentBasketItemID})
	}

	return s.repo.BatchAdd(ctx, basket.ID, adds)
}

func (s *Service) UpdateBasketItem(ctx context.Context, branchID int64, sessionID string, itemID int64, in UpdateItemInput) error {
	if in.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	basket, err := s.repo.GetActiveBySession(ctx, branchID, sessionID)
	if err != nil {
		return err
	}
	return s.repo.UpdateItemQuantity(ctx, basket.ID, itemID, in.Quantity)
}

func (s *Service) DeleteBasketItem(ctx context.Context, branchID int64, sessionID string, itemID int64) error {
	basket, err := s.repo.GetActiveBySession(ctx, branchID, sessionID)
	if err != nil {
		return err
	}
	return s.repo.DeleteItem(ctx, basket.ID, itemID)
}

func (s *Service) DeleteBasket(ctx context.Context, branchID int64, sessionID string) error {
	return s.repo.DeleteBasket(ctx, branchID, sessionID)
}
