package cart

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"menubasket/internal/domain"
)

// HTTPGateway talks to a remote basket service over its REST API. It is the
// gateway used when the cart view runs as a BFF in front of a separately
// deployed basket backend.
type HTTPGateway struct {
	client    *http.Client
	baseURL   string
	branchKey string
	sessionID string
}

func NewHTTPGateway(baseURL, branchKey, sessionID string, timeout time.Duration) *HTTPGateway {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPGateway{
		client:    &http.Client{Timeout: timeout},
		baseURL:   strings.TrimRight(baseURL, "/"),
		branchKey: branchKey,
		sessionID: sessionID,
	}
}

func (g *HTTPGateway) GetMyBasket(ctx context.Context) (*BasketPayload, error) {
	var payload BasketPayload
	if err := g.do(ctx, http.MethodGet, g.basketPath(""), nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (g *HTTPGateway) AddUnifiedItem(ctx context.Context, in AddItemInput) error {
	return g.do(ctx, http.MethodPost, g.basketPath("/items"), in, nil)
}

func (g *HTTPGateway) BatchAddItems(ctx context.Context, entries []BatchEntry) error {
	return g.do(ctx, http.MethodPost, g.basketPath("/items/batch"), entries, nil)
}

func (g *HTTPGateway) UpdateBasketItem(ctx context.Context, itemID int64, in UpdateItemInput) error {
	return g.do(ctx, http.MethodPut, g.basketPath(fmt.Sprintf("/items/%d", itemID)), in, nil)
}

func (g *HTTPGateway) DeleteBasketItem(ctx context.Context, itemID int64) error {
	return g.do(ctx, http.MethodDelete, g.basketPath(fmt.Sprintf("/items/%d", itemID)), nil, nil)
}

// DeleteBasket is idempotent: deleting a basket that no longer exists is
// treated as success.
func (g *HTTPGateway) DeleteBasket(ctx context.Context) error {
	err := g.do(ctx, http.MethodDelete, g.basketPath(""), nil, nil)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	return err
}

func (g *HTTPGateway) basketPath(suffix string) string {
	return fmt.Sprintf("/v1/branches/%s/basket%s", g.branchKey, suffix)
}

func (g *HTTPGateway) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-Session-ID", g.sessionID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("basket api %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("basket api %s %s: %w", method, path, domain.ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("basket api %s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
