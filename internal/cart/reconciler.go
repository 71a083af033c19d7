package cart

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"time"

	"menubasket/internal/domain"
)

// ErrLineBusy is returned when an intent targets a basket item that already
// has an intent in flight. Overlapping mutations on one line read stale
// state and race; the reconciler rejects them instead of queueing.
var ErrLineBusy = errors.New("basket line busy")

// User-facing messages recorded on gateway failures. The Go error still
// reaches the caller; the message is what a cart view displays next to the
// last good snapshot.
const (
	msgLoadFailed   = "Failed to load basket"
	msgUpdateFailed = "Failed to update item quantity"
	msgRemoveFailed = "Failed to remove item from basket"
	msgClearFailed  = "Failed to clear basket"
)

type Options struct {
	// Timeout bounds each gateway call so a hung call cannot keep a line
	// busy forever. Zero means no per-call deadline beyond the caller's.
	Timeout time.Duration

	// DecrementInPlace makes decrease intents update quantity-1 for lines
	// with quantity above one instead of deleting the whole line.
	DecrementInPlace bool

	Logger *log.Logger
}

// Reconciler translates quantity intents on a locally held basket snapshot
// into the minimal set of gateway mutations, refetching the snapshot after
// each successful mutation. The snapshot is authoritative only immediately
// after a fetch; the reconciler never updates quantities optimistically.
type Reconciler struct {
	gateway          Gateway
	logger           *log.Logger
	timeout          time.Duration
	decrementInPlace bool

	mu        sync.Mutex
	lines     []domain.BasketLine
	index     map[int64]lineRef
	basketID  int64
	lastError string
	busy      map[int64]struct{}
}

func New(gateway Gateway, opts Options) *Reconciler {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Reconciler{
		gateway:          gateway,
		logger:           logger,
		timeout:          opts.Timeout,
		decrementInPlace: opts.DecrementInPlace,
		index:            map[int64]lineRef{},
		busy:             map[int64]struct{}{},
	}
}

// Load replaces the snapshot with a fresh fetch. On failure the previous
// snapshot is discarded rather than kept: a failed fetch means the local
// state is unknown, not stale.
func (r *Reconciler) Load(ctx context.Context) error {
	callCtx, cancel := r.callContext(ctx)
	defer cancel()
	payload, err := r.gateway.GetMyBasket(callCtx)

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.lines = nil
		r.index = map[int64]lineRef{}
		r.basketID = 0
		r.lastError = msgLoadFailed
		r.logger.Printf("cart: load basket failed: %v", err)
		return err
	}
	r.lines, r.index = buildSnapshot(payload)
	if payload != nil {
		r.basketID = payload.BasketID
	} else {
		r.basketID = 0
	}
	r.lastError = ""
	return nil
}

// IncreaseItem adds one more unit of the line's product. The increase is
// expressed as "add one unit", not "set to N+1": the backend owns merge
// semantics for plain items and the refetch is the sole source of truth.
func (r *Reconciler) IncreaseItem(ctx context.Context, basketItemID int64) error {
	release, err := r.acquire(basketItemID)
	if err != nil {
		return err
	}
	defer release()

	r.mu.Lock()
	ref, ok := r.index[basketItemID]
	var productID int64
	if ok && ref.addon == -1 {
		productID = r.lines[ref.line].BranchProductID
	} else {
		ok = false
	}
	r.mu.Unlock()
	if !ok {
		r.logger.Printf("cart: increase ignored, unknown basket item id=%d", basketItemID)
		return nil
	}

	callCtx, cancel := r.callContext(ctx)
	defer cancel()
	if err := r.gateway.AddUnifiedItem(callCtx, AddItemInput{BranchProductID: productID, Quantity: 1}); err != nil {
		r.fail(msgUpdateFailed, "increase item", basketItemID, err)
		return err
	}
	return r.Load(ctx)
}

// DecreaseItem takes one unit off the line. Without DecrementInPlace the
// whole line is deleted regardless of its quantity, which matches a backend
// whose lines always carry quantity one; with the flag set, lines above
// quantity one are updated to quantity-1 instead.
func (r *Reconciler) DecreaseItem(ctx context.Context, basketItemID int64) error {
	release, err := r.acquire(basketItemID)
	if err != nil {
		return err
	}
	defer release()

	r.mu.Lock()
	ref, ok := r.index[basketItemID]
	var productID, basketID int64
	var quantity int
	if ok && ref.addon == -1 {
		line := r.lines[ref.line]
		productID = line.BranchProductID
		quantity = line.Quantity
		basketID = r.basketID
	} else {
		ok = false
	}
	r.mu.Unlock()
	if !ok {
		r.logger.Printf("cart: decrease ignored, unknown basket item id=%d", basketItemID)
		return nil
	}

	callCtx, cancel := r.callContext(ctx)
	defer cancel()
	if r.decrementInPlace && quantity > 1 {
		in := UpdateItemInput{
			BasketItemID:    basketItemID,
			BasketID:        basketID,
			BranchProductID: productID,
			Quantity:        quantity - 1,
		}
		if err := r.gateway.UpdateBasketItem(callCtx, basketItemID, in); err != nil {
			r.fail(msgUpdateFailed, "decrease item", basketItemID, err)
			return err
		}
	} else {
		if err := r.gateway.DeleteBasketItem(callCtx, basketItemID); err != nil {
			r.fail(msgUpdateFailed, "decrease item", basketItemID, err)
			return err
		}
	}
	return r.Load(ctx)
}

// IncreaseAddon adds exactly one unit of the addon to its parent line.
// N invocations add N units; each call is independently awaited.
func (r *Reconciler) IncreaseAddon(ctx context.Context, addonBasketItemID int64) error {
	release, err := r.acquire(addonBasketItemID)
	if err != nil {
		return err
	}
	defer release()

	r.mu.Lock()
	ref, ok := r.index[addonBasketItemID]
	var addonID, parentID int64
	if ok && ref.addon >= 0 {
		line := r.lines[ref.line]
		addonID = line.Addons[ref.addon].BranchProductAddonID
		parentID = line.BasketItemID
	} else {
		ok = false
	}
	r.mu.Unlock()
	if !ok {
		r.logger.Printf("cart: increase addon ignored, unknown basket item id=%d", addonBasketItemID)
		return nil
	}

	callCtx, cancel := r.callContext(ctx)
	defer cancel()
	entry := BatchEntry{BranchProductID: addonID, Quantity: 1, ParentBasketItemID: &parentID}
	if err := r.gateway.BatchAddItems(callCtx, []BatchEntry{entry}); err != nil {
		r.fail(msgUpdateFailed, "increase addon", addonBasketItemID, err)
		return err
	}
	return r.Load(ctx)
}

// DecreaseAddon is symmetric to DecreaseItem for addon lines.
func (r *Reconciler) DecreaseAddon(ctx context.Context, addonBasketItemID int64) error {
	release, err := r.acquire(addonBasketItemID)
	if err != nil {
		return err
	}
	defer release()

	r.mu.Lock()
	ref, ok := r.index[addonBasketItemID]
	var addonID, basketID int64
	var quantity int
	if ok && ref.addon >= 0 {
		addon := r.lines[ref.line].Addons[ref.addon]
		addonID = addon.BranchProductAddonID
		quantity = addon.Quantity
		basketID = r.basketID
	} else {
		ok = false
	}
	r.mu.Unlock()
	if !ok {
		r.logger.Printf("cart: decrease addon ignored, unknown basket item id=%d", addonBasketItemID)
		return nil
	}

	callCtx, cancel := r.callContext(ctx)
	defer cancel()
	if r.decrementInPlace && quantity > 1 {
		in := UpdateItemInput{
			BasketItemID:    addonBasketItemID,
			BasketID:        basketID,
			BranchProductID: addonID,
			Quantity:        quantity - 1,
		}
		if err := r.gateway.UpdateBasketItem(callCtx, addonBasketItemID, in); err != nil {
			r.fail(msgUpdateFailed, "decrease addon", addonBasketItemID, err)
			return err
		}
	} else {
		if err := r.gateway.DeleteBasketItem(callCtx, addonBasketItemID); err != nil {
			r.fail(msgUpdateFailed, "decrease addon", addonBasketItemID, err)
			return err
		}
	}
	return r.Load(ctx)
}

// RemoveItem deletes a line outright, parent or addon.
func (r *Reconciler) RemoveItem(ctx context.Context, basketItemID int64) error {
	release, err := r.acquire(basketItemID)
	if err != nil {
		return err
	}
	defer release()

	r.mu.Lock()
	_, ok := r.index[basketItemID]
	r.mu.Unlock()
	if !ok {
		r.logger.Printf("cart: remove ignored, unknown basket item id=%d", basketItemID)
		return nil
	}

	callCtx, cancel := r.callContext(ctx)
	defer cancel()
	if err := r.gateway.DeleteBasketItem(callCtx, basketItemID); err != nil {
		r.fail(msgRemoveFailed, "remove item", basketItemID, err)
		return err
	}
	return r.Load(ctx)
}

// Clear deletes the whole basket. On success the local state is reset to an
// empty snapshot without a refetch, since the basket no longer exists.
func (r *Reconciler) Clear(ctx context.Context) error {
	callCtx, cancel := r.callContext(ctx)
	defer cancel()
	if err := r.gateway.DeleteBasket(callCtx); err != nil {
		r.mu.Lock()
		r.lastError = msgClearFailed
		r.mu.Unlock()
		r.logger.Printf("cart: clear basket failed: %v", err)
		return err
	}

	r.mu.Lock()
	r.lines = nil
	r.index = map[int64]lineRef{}
	r.basketID = 0
	r.lastError = ""
	r.mu.Unlock()
	return nil
}

// Groups returns the current snapshot folded into display groups.
func (r *Reconciler) Groups() []domain.CartGroup {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Group(r.lines)
}

// Lines returns a copy of the current snapshot.
func (r *Reconciler) Lines() []domain.BasketLine {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.BasketLine, len(r.lines))
	copy(out, r.lines)
	return out
}

func (r *Reconciler) BasketID() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.basketID
}

// LastError reports the message of the most recent failed operation, empty
// after a successful one.
func (r *Reconciler) LastError() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastError
}

// acquire marks a line busy for the duration of one intent. A second intent
// on the same line fails fast instead of racing on stale state; intents on
// different lines proceed independently.
func (r *Reconciler) acquire(basketItemID int64) (func(), error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, held := r.busy[basketItemID]; held {
		return nil, ErrLineBusy
	}
	r.busy[basketItemID] = struct{}{}
	return func() {
		r.mu.Lock()
		delete(r.busy, basketItemID)
		r.mu.Unlock()
	}, nil
}

func (r *Reconciler) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.timeout)
}

func (r *Reconciler) fail(message, op string, basketItemID int64, err error) {
	r.mu.Lock()
	r.lastError = message
	r.mu.Unlock()
	r.logger.Printf("cart: %s failed id=%d error=%v", op, basketItemID, err)
}
