package httpserver

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"menubasket/internal/domain"
	basketsvc "menubasket/internal/service/basket"

	"github.com/gin-gonic/gin"
)

type basketHandler struct {
	svc    *basketsvc.Service
	logger *log.Logger
}

func newBasketHandler(svc *basketsvc.Service, logger *log.Logger) *basketHandler {
	return &basketHandler{svc: svc, logger: logger}
}

// get handles GET /basket. A session without a basket reads back as an
// empty payload, not an error.
func (h *basketHandler) get(c *gin.Context) {
	branch := branchFromContext(c)
	sessionID := sessionFromContext(c)

	basket, err := h.svc.GetMyBasket(c.Request.Context(), branch.ID, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusOK, toBasketPayload(nil))
			return
		}
		h.logger.Printf("basket handler: get session=%s error=%v", sessionID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}
	c.JSON(http.StatusOK, toBasketPayload(basket))
}

func (h *basketHandler) addItem(c *gin.Context) {
	branch := branchFromContext(c)
	sessionID := sessionFromContext(c)

	var in basketsvc.AddItemInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	if err := h.svc.AddUnifiedItem(c.Request.Context(), branch.ID, sessionID, in); err != nil {
		h.renderMutationError(c, sessionID, "add item", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *basketHandler) batchAdd(c *gin.Context) {
	branch := branchFromContext(c)
	sessionID := sessionFromContext(c)

	var entries []basketsvc.BatchEntryInput
	if err := c.ShouldBindJSON(&entries); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	if err := h.svc.BatchAddItems(c.Request.Context(), branch.ID, sessionID, entries); err != nil {
		h.renderMutationError(c, sessionID, "batch add", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *basketHandler) updateItem(c *gin.Context) {
	branch := branchFromContext(c)
	sessionID := sessionFromContext(c)

	itemID, ok := parseItemID(c)
	if !ok {
		return
	}

	var in basketsvc.UpdateItemInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	if err := h.svc.UpdateBasketItem(c.Request.Context(), branch.ID, sessionID, itemID, in); err != nil {
		h.renderMutationError(c, sessionID, "update item", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *basketHandler) deleteItem(c *gin.Context) {
	branch := branchFromContext(c)
	sessionID := sessionFromContext(c)

	itemID, ok := parseItemID(c)
	if !ok {
		return
	}

	if err := h.svc.DeleteBasketItem(c.Request.Context(), branch.ID, sessionID, itemID); err != nil {
		h.renderMutationError(c, sessionID, "delete item", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *basketHandler) deleteBasket(c *gin.Context) {
	branch := branchFromContext(c)
	sessionID := sessionFromContext(c)

	if err := h.svc.DeleteBasket(c.Request.Context(), branch.ID, sessionID); err != nil {
		h.renderMutationError(c, sessionID, "delete basket", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *basketHandler) renderMutationError(c *gin.Context, sessionID, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "not found"})
	case errors.Is(err, basketsvc.ErrInvalidQuantity),
		errors.Is(err, basketsvc.ErrProductNotFound),
		errors.Is(err, basketsvc.ErrAddonNotFound),
		errors.Is(err, basketsvc.ErrAddonMismatch),
		errors.Is(err, basketsvc.ErrEntriesRequired):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	default:
		h.logger.Printf("basket handler: %s session=%s error=%v", op, sessionID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
	}
}

func parseItemID(c *gin.Context) (int64, bool) {
	itemID, err := strconv.ParseInt(c.Param("itemID"), 10, 64)
	if err != nil || itemID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid item id"})
		return 0, false
	}
	return itemID, true
}
