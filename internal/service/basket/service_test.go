package basket

import (
	"context"
	"errors"
	"testing"

	"menubasket/internal/domain"
	basketrepo "menubasket/internal/repository/basket"
)

type stubBasketRepo struct {
	basket *domain.Basket
	items  map[int64]*domain.BasketItem

	created       bool
	addedProducts []domain.BranchProduct
	addedQty      []int
	batches       [][]basketrepo.AddEntry
	updates       map[int64]int
	deleted       []int64
	basketDeleted bool
}

func newStubBasketRepo() *stubBasketRepo {
	return &stubBasketRepo{
		basket:  &domain.Basket{ID: 42, BranchID: 1, SessionID: "sess-1", State: domain.BasketStateActive},
		items:   map[int64]*domain.BasketItem{},
		updates: map[int64]int{},
	}
}

func (s *stubBasketRepo) GetActiveBySession(_ context.Context, _ int64, _ string) (*domain.Basket, error) {
	if s.basket == nil {
		return nil, domain.ErrNotFound
	}
	return s.basket, nil
}

func (s *stubBasketRepo) GetOrCreate(_ context.Context, branchID int64, sessionID string) (*domain.Basket, error) {
	if s.basket == nil {
		s.basket = &domain.Basket{ID: 42, BranchID: branchID, SessionID: sessionID, State: domain.BasketStateActive}
		s.created = true
	}
	return s.basket, nil
}

func (s *stubBasketRepo) GetItem(_ context.Context, _, itemID int64) (*domain.BasketItem, error) {
	item, ok := s.items[itemID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

func (s *stubBasketRepo) AddUnifiedItem(_ context.Context, _ int64, product domain.BranchProduct, quantity int) error {
	s.addedProducts = append(s.addedProducts, product)
	s.addedQty = append(s.addedQty, quantity)
	return nil
}

func (s *stubBasketRepo) BatchAdd(_ context.Context, _ int64, entries []basketrepo.AddEntry) error {
	s.batches = append(s.batches, entries)
	return nil
}

func (s *stubBasketRepo) UpdateItemQuantity(_ context.Context, _, itemID int64, quantity int) error {
	s.updates[itemID] = quantity
	return nil
}

func (s *stubBasketRepo) DeleteItem(_ context.Context, _, itemID int64) error {
	s.deleted = append(s.deleted, itemID)
	return nil
}

func (s *stubBasketRepo) DeleteBasket(_ context.Context, _ int64, _ string) error {
	s.basketDeleted = true
	return nil
}

type stubMenuRepo struct {
	products map[int64]*domain.BranchProduct
	addons   map[int64]*domain.BranchProductAddon
}

func (s *stubMenuRepo) GetProductByID(_ context.Context, _, id int64) (*domain.BranchProduct, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (s *stubMenuRepo) GetAddonByID(_ context.Context, id int64) (*domain.BranchProductAddon, error) {
	a, ok := s.addons[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return a, nil
}

func testMenuRepo() *stubMenuRepo {
	return &stubMenuRepo{
		products: map[int64]*domain.BranchProduct{
			1: {ID: 1, BranchID: 1, Name: "Classic Burger", PriceCents: 1099},
			2: {ID: 2, BranchID: 1, Name: "Cola", PriceCents: 249},
		},
		addons: map[int64]*domain.BranchProductAddon{
			5: {ID: 5, BranchProductID: 1, Name: "Bacon", PriceCents: 250},
			6: {ID: 6, BranchProductID: 2, Name: "Lemon Slice", PriceCents: 50},
		},
	}
}

func parentItem(id, productID int64) *domain.BasketItem {
	return &domain.BasketItem{ID: id, BranchProductID: &productID, Quantity: 1}
}

func TestAddUnifiedItem(t *testing.T) {
	repo := newStubBasketRepo()
	repo.basket = nil
	svc := New(repo, testMenuRepo())

	err := svc.AddUnifiedItem(context.Background(), 1, "sess-1", AddItemInput{BranchProductID: 1, Quantity: 2})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !repo.created {
		t.Fatalf("expected basket to be created on first add")
	}
	if len(repo.addedProducts) != 1 || repo.addedProducts[0].ID != 1 || repo.addedQty[0] != 2 {
		t.Fatalf("unexpected add: %+v qty %v", repo.addedProducts, repo.addedQty)
	}
}

func TestAddUnifiedItemValidation(t *testing.T) {
	svc := New(newStubBasketRepo(), testMenuRepo())

	err := svc.AddUnifiedItem(context.Background(), 1, "sess-1", AddItemInput{BranchProductID: 1, Quantity: 0})
	if !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}

	err = svc.AddUnifiedItem(context.Background(), 1, "sess-1", AddItemInput{BranchProductID: 99, Quantity: 1})
	if !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestBatchAddItems(t *testing.T) {
	repo := newStubBasketRepo()
	repo.items[11] = parentItem(11, 1)
	svc := New(repo, testMenuRepo())

	parent := int64(11)
	err := svc.BatchAddItems(context.Background(), 1, "sess-1", []BatchEntryInput{
		{BranchProductID: 2, Quantity: 1},
		{BranchProductID: 5, Quantity: 1, ParentBasketItemID: &parent},
	})
	if err != nil {
		t.Fatalf("batch add: %v", err)
	}
	if len(repo.batches) != 1 {
		t.Fatalf("expected one batch, got %d", len(repo.batches))
	}
	entries := repo.batches[0]
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Product == nil || entries[0].Product.ID != 2 || entries[0].ParentID != nil {
		t.Fatalf("unexpected plain entry: %+v", entries[0])
	}
	if entries[1].Addon == nil || entries[1].Addon.ID != 5 || entries[1].ParentID == nil || *entries[1].ParentID != 11 {
		t.Fatalf("unexpected addon entry: %+v", entries[1])
	}
}

func TestBatchAddItemsValidation(t *testing.T) {
	repo := newStubBasketRepo()
	repo.items[11] = parentItem(11, 1)
	addonProduct := int64(5)
	addonParent := &domain.BasketItem{ID: 21, ParentID: ptr(int64(11)), BranchProductAddonID: &addonProduct, Quantity: 1}
	repo.items[21] = addonParent
	svc := New(repo, testMenuRepo())

	if err := svc.BatchAddItems(context.Background(), 1, "sess-1", nil); !errors.Is(err, ErrEntriesRequired) {
		t.Fatalf("expected ErrEntriesRequired, got %v", err)
	}

	parent := int64(11)
	err := svc.BatchAddItems(context.Background(), 1, "sess-1", []BatchEntryInput{
		{BranchProductID: 5, Quantity: 0, ParentBasketItemID: &parent},
	})
	if !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}

	// Addon from another product is rejected.
	err = svc.BatchAddItems(context.Background(), 1, "sess-1", []BatchEntryInput{
		{BranchProductID: 6, Quantity: 1, ParentBasketItemID: &parent},
	})
	if !errors.Is(err, ErrAddonMismatch) {
		t.Fatalf("expected ErrAddonMismatch, got %v", err)
	}

	// Unknown addon id.
	err = svc.BatchAddItems(context.Background(), 1, "sess-1", []BatchEntryInput{
		{BranchProductID: 99, Quantity: 1, ParentBasketItemID: &parent},
	})
	if !errors.Is(err, ErrAddonNotFound) {
		t.Fatalf("expected ErrAddonNotFound, got %v", err)
	}

	// An addon row cannot be a parent.
	addonRow := int64(21)
	err = svc.BatchAddItems(context.Background(), 1, "sess-1", []BatchEntryInput{
		{BranchProductID: 5, Quantity: 1, ParentBasketItemID: &addonRow},
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for addon parent, got %v", err)
	}
}

func TestUpdateBasketItem(t *testing.T) {
	repo := newStubBasketRepo()
	svc := New(repo, testMenuRepo())

	err := svc.UpdateBasketItem(context.Background(), 1, "sess-1", 11, UpdateItemInput{BasketItemID: 11, Quantity: 3})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if repo.updates[11] != 3 {
		t.Fatalf("expected quantity 3, got %d", repo.updates[11])
	}

	err = svc.UpdateBasketItem(context.Background(), 1, "sess-1", 11, UpdateItemInput{BasketItemID: 11, Quantity: 0})
	if !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
}

func TestDeleteBasketItemWithoutBasket(t *testing.T) {
	repo := newStubBasketRepo()
	repo.basket = nil
	svc := New(repo, testMenuRepo())

	if err := svc.DeleteBasketItem(context.Background(), 1, "sess-1", 11); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteBasket(t *testing.T) {
	repo := newStubBasketRepo()
	svc := New(repo, testMenuRepo())

	if err := svc.DeleteBasket(context.Background(), 1, "sess-1"); err != nil {
		t.Fatalf("delete basket: %v", err)
	}
	if !repo.basketDeleted {
		t.Fatalf("expected basket delete to reach repository")
	}
}

func ptr[T any](v T) *T { return &v }
