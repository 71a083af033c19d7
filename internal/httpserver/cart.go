package httpserver

import (
	"errors"
	"log"
	"net/http"

	"menubasket/internal/cart"
	"menubasket/internal/domain"

	"github.com/gin-gonic/gin"
)

type cartHandler struct {
	reconcilers *cart.Registry
	logger      *log.Logger
}

func newCartHandler(reconcilers *cart.Registry, logger *log.Logger) *cartHandler {
	return &cartHandler{reconcilers: reconcilers, logger: logger}
}

type cartResponse struct {
	BasketID int64              `json:"basketId"`
	Groups   []domain.CartGroup `json:"groups"`
	Error    string             `json:"error,omitempty"`
}

func (h *cartHandler) resolve(c *gin.Context) *cart.Reconciler {
	branch := branchFromContext(c)
	return h.reconcilers.Get(branch.Key, sessionFromContext(c))
}

func (h *cartHandler) render(c *gin.Context, rec *cart.Reconciler) {
	groups := rec.Groups()
	if groups == nil {
		groups = []domain.CartGroup{}
	}
	c.JSON(http.StatusOK, cartResponse{
		BasketID: rec.BasketID(),
		Groups:   groups,
		Error:    rec.LastError(),
	})
}

// view handles GET /cart: refetch the basket and return the grouped view.
func (h *cartHandler) view(c *gin.Context) {
	rec := h.resolve(c)
	_ = rec.Load(c.Request.Context())
	h.render(c, rec)
}

func (h *cartHandler) applyIntent(c *gin.Context, apply func(rec *cart.Reconciler, itemID int64) error) {
	itemID, ok := parseItemID(c)
	if !ok {
		return
	}
	rec := h.resolve(c)
	if err := apply(rec, itemID); err != nil {
		if errors.Is(err, cart.ErrLineBusy) {
			c.JSON(http.StatusConflict, gin.H{"message": "item update already in progress"})
			return
		}
		h.logger.Printf("cart intent failed item_id=%d err=%v", itemID, err)
	}
	h.render(c, rec)
}

func (h *cartHandler) increaseItem(c *gin.Context) {
	h.applyIntent(c, func(rec *cart.Reconciler, itemID int64) error {
		return rec.IncreaseItem(c.Request.Context(), itemID)
	})
}

func (h *cartHandler) decreaseItem(c *gin.Context) {
	h.applyIntent(c, func(rec *cart.Reconciler, itemID int64) error {
		return rec.DecreaseItem(c.Request.Context(), itemID)
	})
}

func (h *cartHandler) increaseAddon(c *gin.Context) {
	h.applyIntent(c, func(rec *cart.Reconciler, itemID int64) error {
		return rec.IncreaseAddon(c.Request.Context(), itemID)
	})
}

func (h *cartHandler) decreaseAddon(c *gin.Context) {
	h.applyIntent(c, func(rec *cart.Reconciler, itemID int64) error {
		return rec.DecreaseAddon(c.Request.Context(), itemID)
	})
}

func (h *cartHandler) removeItem(c *gin.Context) {
	h.applyIntent(c, func(rec *cart.Reconciler, itemID int64) error {
		return rec.RemoveItem(c.Request.Context(), itemID)
	})
}

func (h *cartHandler) clear(c *gin.Context) {
	rec := h.resolve(c)
	if err := rec.Clear(c.Request.Context()); err != nil {
		if errors.Is(err, cart.ErrLineBusy) {
			c.JSON(http.StatusConflict, gin.H{"message": "basket update already in progress"})
			return
		}
		h.logger.Printf("cart clear failed err=%v", err)
	}
	h.render(c, rec)
}
