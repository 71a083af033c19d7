package httpserver

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	"menubasket/internal/domain"
	menusvc "menubasket/internal/service/menu"

	"github.com/gin-gonic/gin"
)

type menuHandler struct {
	svc *menusvc.Service
}

func newMenuHandler(svc *menusvc.Service) *menuHandler {
	return &menuHandler{svc: svc}
}

type menuCategoryPayload struct {
	domain.MenuCategory
	Products []domain.BranchProduct `json:"products"`
}

type menuResponse struct {
	Branch        string                 `json:"branch"`
	Currency      string                 `json:"currency"`
	Categories    []menuCategoryPayload  `json:"categories"`
	Uncategorized []domain.BranchProduct `json:"uncategorized,omitempty"`
}

// list handles GET /menu: the branch's categories in display order, each
// with its products and their addons.
func (h *menuHandler) list(c *gin.Context) {
	branch := branchFromContext(c)
	ctx := c.Request.Context()

	categories, err := h.svc.Categories(ctx, branch.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}
	products, err := h.svc.Products(ctx, branch.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}

	resp := menuResponse{Branch: branch.Key, Currency: branch.Currency}
	index := make(map[int64]int, len(categories))
	for _, cat := range categories {
		index[cat.ID] = len(resp.Categories)
		resp.Categories = append(resp.Categories, menuCategoryPayload{MenuCategory: cat, Products: []domain.BranchProduct{}})
	}
	for _, p := range products {
		if p.CategoryID != nil {
			if pos, ok := index[*p.CategoryID]; ok {
				resp.Categories[pos].Products = append(resp.Categories[pos].Products, p)
				continue
			}
		}
		resp.Uncategorized = append(resp.Uncategorized, p)
	}

	c.JSON(http.StatusOK, resp)
}

type searchResponse struct {
	Total   int                    `json:"total"`
	Results []domain.BranchProduct `json:"results"`
}

// search handles GET /menu/search with optional name query, price range
// and category filters. Results default to name-ascending order.
func (h *menuHandler) search(c *gin.Context) {
	branch := branchFromContext(c)

	products, err := h.svc.Products(c.Request.Context(), branch.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}

	query := strings.ToLower(strings.TrimSpace(c.Query("q")))
	minCents, hasMin := parseCentsParam(c.Query("minCents"))
	maxCents, hasMax := parseCentsParam(c.Query("maxCents"))
	categoryID, hasCategory := parseCentsParam(c.Query("categoryId"))

	filtered := filterProducts(products, query, minCents, hasMin, maxCents, hasMax, categoryID, hasCategory)
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Name < filtered[j].Name
	})

	c.JSON(http.StatusOK, searchResponse{Total: len(filtered), Results: filtered})
}

func filterProducts(products []domain.BranchProduct, query string, minCents int64, hasMin bool, maxCents int64, hasMax bool, categoryID int64, hasCategory bool) []domain.BranchProduct {
	result := make([]domain.BranchProduct, 0, len(products))
	for _, p := range products {
		if query != "" && !strings.Contains(strings.ToLower(p.Name), query) {
			continue
		}
		if hasMin && p.PriceCents < minCents {
			continue
		}
		if hasMax && p.PriceCents > maxCents {
			continue
		}
		if hasCategory && (p.CategoryID == nil || *p.CategoryID != categoryID) {
			continue
		}
		result = append(result, p)
	}
	return result
}

func parseCentsParam(raw string) (int64, bool) {
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
