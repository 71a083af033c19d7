package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"menubasket/internal/cart"
	"menubasket/internal/domain"
	basketrepo "menubasket/internal/repository/basket"
	basketsvc "menubasket/internal/service/basket"
	menusvc "menubasket/internal/service/menu"

	"github.com/gin-gonic/gin"
)

type stubBranchRepo struct{}

func (stubBranchRepo) GetByKey(_ context.Context, key string) (*domain.Branch, error) {
	if key != "demo" {
		return nil, domain.ErrNotFound
	}
	return &domain.Branch{ID: 1, Key: "demo", Name: "Demo Diner", Currency: "USD"}, nil
}

func (stubBranchRepo) Create(_ context.Context, b *domain.Branch) (*domain.Branch, error) {
	return b, nil
}

type stubMenuRepo struct{}

func (stubMenuRepo) ListCategories(_ context.Context, _ int64) ([]domain.MenuCategory, error) {
	return []domain.MenuCategory{
		{ID: 1, BranchID: 1, Key: "burgers", Name: "Burgers", SortOrder: 1},
		{ID: 2, BranchID: 1, Key: "drinks", Name: "Drinks", SortOrder: 2},
	}, nil
}

func (stubMenuRepo) ListProducts(_ context.Context, _ int64) ([]domain.BranchProduct, error) {
	cat1, cat2 := int64(1), int64(2)
	return []domain.BranchProduct{
		{ID: 1, BranchID: 1, CategoryID: &cat1, Key: "classic-burger", Name: "Classic Burger", PriceCents: 1099},
		{ID: 2, BranchID: 1, CategoryID: &cat2, Key: "cola", Name: "Cola", PriceCents: 249},
		{ID: 3, BranchID: 1, Key: "special", Name: "Daily Special", PriceCents: 1499},
	}, nil
}

func (s stubMenuRepo) GetProductByID(ctx context.Context, branchID, id int64) (*domain.BranchProduct, error) {
	products, _ := s.ListProducts(ctx, branchID)
	for _, p := range products {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (stubMenuRepo) GetAddonByID(_ context.Context, id int64) (*domain.BranchProductAddon, error) {
	if id != 5 {
		return nil, domain.ErrNotFound
	}
	return &domain.BranchProductAddon{ID: 5, BranchProductID: 1, Name: "Bacon", PriceCents: 250}, nil
}

func (stubMenuRepo) UpsertCategory(_ context.Context, c domain.MenuCategory) (*domain.MenuCategory, error) {
	return &c, nil
}

func (stubMenuRepo) UpsertProduct(_ context.Context, p domain.BranchProduct) (*domain.BranchProduct, error) {
	return &p, nil
}

// memBasketRepo keeps one session basket in memory, merging plain lines by
// product the way the postgres repository does.
type memBasketRepo struct {
	basket *domain.Basket
	nextID int64
}

func (m *memBasketRepo) GetActiveBySession(_ context.Context, _ int64, _ string) (*domain.Basket, error) {
	if m.basket == nil {
		return nil, domain.ErrNotFound
	}
	return m.basket, nil
}

func (m *memBasketRepo) GetOrCreate(ctx context.Context, branchID int64, sessionID string) (*domain.Basket, error) {
	if m.basket == nil {
		m.basket = &domain.Basket{ID: 42, BranchID: branchID, SessionID: sessionID, State: domain.BasketStateActive}
	}
	return m.basket, nil
}

func (m *memBasketRepo) GetItem(_ context.Context, _, itemID int64) (*domain.BasketItem, error) {
	for i := range m.basket.Items {
		if m.basket.Items[i].ID == itemID {
			return &m.basket.Items[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memBasketRepo) AddUnifiedItem(_ context.Context, _ int64, product domain.BranchProduct, quantity int) error {
	for i := range m.basket.Items {
		item := &m.basket.Items[i]
		if item.BranchProductID != nil && *item.BranchProductID == product.ID && len(item.Addons) == 0 {
			item.Quantity += quantity
			return nil
		}
	}
	m.nextID++
	productID := product.ID
	m.basket.Items = append(m.basket.Items, domain.BasketItem{
		ID:              m.nextID,
		BasketID:        m.basket.ID,
		BranchProductID: &productID,
		ProductName:     product.Name,
		PriceCents:      product.PriceCents,
		Quantity:        quantity,
	})
	return nil
}

func (m *memBasketRepo) BatchAdd(ctx context.Context, basketID int64, entries []basketrepo.AddEntry) error {
	for _, e := range entries {
		if e.Product != nil {
			if err := m.AddUnifiedItem(ctx, basketID, *e.Product, e.Quantity); err != nil {
				return err
			}
			continue
		}
		for i := range m.basket.Items {
			if m.basket.Items[i].ID == *e.ParentID {
				m.nextID++
				addonID := e.Addon.ID
				m.basket.Items[i].Addons = append(m.basket.Items[i].Addons, domain.BasketItem{
					ID:                   m.nextID,
					ParentID:             e.ParentID,
					BranchProductAddonID: &addonID,
					ProductName:          e.Addon.Name,
					PriceCents:           e.Addon.PriceCents,
					Quantity:             e.Quantity,
				})
			}
		}
	}
	return nil
}

func (m *memBasketRepo) UpdateItemQuantity(_ context.Context, _, itemID int64, quantity int) error {
	for i := range m.basket.Items {
		if m.basket.Items[i].ID == itemID {
			m.basket.Items[i].Quantity = quantity
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *memBasketRepo) DeleteItem(_ context.Context, _, itemID int64) error {
	for i := range m.basket.Items {
		if m.basket.Items[i].ID == itemID {
			m.basket.Items = append(m.basket.Items[:i], m.basket.Items[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *memBasketRepo) DeleteBasket(_ context.Context, _ int64, _ string) error {
	if m.basket == nil {
		return domain.ErrNotFound
	}
	m.basket = nil
	return nil
}

func testRouter(t *testing.T) (*gin.Engine, *memBasketRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := log.New(io.Discard, "", 0)

	branchRepo := stubBranchRepo{}
	menuRepo := stubMenuRepo{}
	basketRepo := &memBasketRepo{}
	basketService := basketsvc.New(basketRepo, menuRepo)
	menuService := menusvc.New(menuRepo)

	reconcilers := cart.NewRegistry(time.Minute, func(branchKey, sessionID string) *cart.Reconciler {
		gw := NewServiceGateway(branchRepo, basketService, branchKey, sessionID)
		return cart.New(gw, cart.Options{})
	})

	router := buildRouter(logger, nil, Deps{
		BranchRepo:  branchRepo,
		MenuSvc:     menuService,
		BasketSvc:   basketService,
		Reconcilers: reconcilers,
	})
	return router, basketRepo
}

func doRequest(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		encoded, _ := json.Marshal(body)
		reader = bytes.NewReader(encoded)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("X-Session-ID", "sess-1")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	router, _ := testRouter(t)
	w := doRequest(router, http.MethodGet, "/healthz", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestReadyzWithoutDB(t *testing.T) {
	router, _ := testRouter(t)
	w := doRequest(router, http.MethodGet, "/readyz", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}

func TestUnknownBranch(t *testing.T) {
	router, _ := testRouter(t)
	w := doRequest(router, http.MethodGet, "/v1/branches/nope/menu", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestSessionHeaderMinted(t *testing.T) {
	router, _ := testRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/v1/branches/demo/basket", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Header().Get("X-Session-ID") == "" {
		t.Fatalf("expected minted session id header")
	}
}

func TestMenuList(t *testing.T) {
	router, _ := testRouter(t)
	w := doRequest(router, http.MethodGet, "/v1/branches/demo/menu", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp menuResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Branch != "demo" || len(resp.Categories) != 2 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if len(resp.Categories[0].Products) != 1 || resp.Categories[0].Products[0].Key != "classic-burger" {
		t.Fatalf("unexpected burgers category: %+v", resp.Categories[0])
	}
	if len(resp.Uncategorized) != 1 || resp.Uncategorized[0].Key != "special" {
		t.Fatalf("expected uncategorized special, got %+v", resp.Uncategorized)
	}
}

func TestMenuSearch(t *testing.T) {
	router, _ := testRouter(t)
	w := doRequest(router, http.MethodGet, "/v1/branches/demo/menu/search?q=burger&maxCents=1200", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp searchResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Total != 1 || resp.Results[0].Key != "classic-burger" {
		t.Fatalf("unexpected results: %+v", resp)
	}
}

func TestBasketLifecycle(t *testing.T) {
	router, _ := testRouter(t)

	// Empty payload before any add.
	w := doRequest(router, http.MethodGet, "/v1/branches/demo/basket", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var payload cart.BasketPayload
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(payload.Items) != 0 {
		t.Fatalf("expected empty basket, got %+v", payload)
	}

	// Add twice: plain lines merge.
	for i := 0; i < 2; i++ {
		w = doRequest(router, http.MethodPost, "/v1/branches/demo/basket/items",
			basketsvc.AddItemInput{BranchProductID: 1, Quantity: 1})
		if w.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d: %s", w.Code, w.Body.String())
		}
	}

	w = doRequest(router, http.MethodGet, "/v1/branches/demo/basket", nil)
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(payload.Items) != 1 || payload.Items[0].Quantity != 2 {
		t.Fatalf("expected one merged line of quantity 2, got %+v", payload.Items)
	}
	itemID := payload.Items[0].BasketItemID

	// Attach an addon.
	w = doRequest(router, http.MethodPost, "/v1/branches/demo/basket/items/batch",
		[]basketsvc.BatchEntryInput{{BranchProductID: 5, Quantity: 1, ParentBasketItemID: &itemID}})
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", w.Code, w.Body.String())
	}

	w = doRequest(router, http.MethodGet, "/v1/branches/demo/basket", nil)
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(payload.Items[0].AddonItems) != 1 || payload.Items[0].AddonItems[0].ProductName != "Bacon" {
		t.Fatalf("expected bacon addon, got %+v", payload.Items[0].AddonItems)
	}

	// Delete the basket; reads go back to the empty payload.
	w = doRequest(router, http.MethodDelete, "/v1/branches/demo/basket", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	w = doRequest(router, http.MethodGet, "/v1/branches/demo/basket", nil)
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(payload.Items) != 0 {
		t.Fatalf("expected empty basket after delete, got %+v", payload.Items)
	}
}

func TestBasketValidationErrors(t *testing.T) {
	router, _ := testRouter(t)

	w := doRequest(router, http.MethodPost, "/v1/branches/demo/basket/items",
		basketsvc.AddItemInput{BranchProductID: 1, Quantity: 0})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for zero quantity, got %d", w.Code)
	}

	w = doRequest(router, http.MethodPost, "/v1/branches/demo/basket/items",
		basketsvc.AddItemInput{BranchProductID: 999, Quantity: 1})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown product, got %d", w.Code)
	}

	w = doRequest(router, http.MethodPut, "/v1/branches/demo/basket/items/abc",
		basketsvc.UpdateItemInput{Quantity: 1})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad item id, got %d", w.Code)
	}
}

func TestCartViewAndIntents(t *testing.T) {
	router, _ := testRouter(t)

	// Seed the basket through the API, then load the cart view.
	w := doRequest(router, http.MethodPost, "/v1/branches/demo/basket/items",
		basketsvc.AddItemInput{BranchProductID: 1, Quantity: 1})
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}

	w = doRequest(router, http.MethodGet, "/v1/branches/demo/cart", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var view cartResponse
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(view.Groups) != 1 || view.Groups[0].TotalQuantity != 1 {
		t.Fatalf("unexpected view: %+v", view)
	}
	itemID := view.Groups[0].Variants[0].Line.BasketItemID

	// Increase adds one unit and refetches.
	w = doRequest(router, http.MethodPost, fmt.Sprintf("/v1/branches/demo/cart/items/%d/increase", itemID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if view.Groups[0].TotalQuantity != 2 {
		t.Fatalf("expected quantity 2 after increase, got %+v", view.Groups)
	}

	// Unknown ids are no-ops, not errors.
	w = doRequest(router, http.MethodPost, "/v1/branches/demo/cart/items/9999/increase", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for unknown id, got %d", w.Code)
	}

	// Decrease without the in-place flag removes the whole line.
	w = doRequest(router, http.MethodPost, fmt.Sprintf("/v1/branches/demo/cart/items/%d/decrease", itemID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(view.Groups) != 0 {
		t.Fatalf("expected empty cart after decrease, got %+v", view.Groups)
	}

	// Clear succeeds on an already-empty basket.
	w = doRequest(router, http.MethodDelete, "/v1/branches/demo/cart", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}
