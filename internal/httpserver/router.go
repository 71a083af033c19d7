package httpserver

import (
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "X-Session-ID")
	corsCfg.ExposeHeaders = append(corsCfg.ExposeHeaders, "X-Session-ID")
	router.Use(cors.New(corsCfg))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	branch := router.Group("/v1/branches/:branchKey")
	branch.Use(branchMiddleware(deps.BranchRepo), sessionMiddleware())

	menu := newMenuHandler(deps.MenuSvc)
	branch.GET("/menu", menu.list)
	branch.GET("/menu/search", menu.search)

	basket := newBasketHandler(deps.BasketSvc, logger)
	branch.GET("/basket", basket.get)
	branch.POST("/basket/items", basket.addItem)
	branch.POST("/basket/items/batch", basket.batchAdd)
	branch.PUT("/basket/items/:itemID", basket.updateItem)
	branch.DELETE("/basket/items/:itemID", basket.deleteItem)
	branch.DELETE("/basket", basket.deleteBasket)

	cartView := newCartHandler(deps.Reconcilers, logger)
	branch.GET("/cart", cartView.view)
	branch.POST("/cart/items/:itemID/increase", cartView.increaseItem)
	branch.POST("/cart/items/:itemID/decrease", cartView.decreaseItem)
	branch.POST("/cart/addons/:itemID/increase", cartView.increaseAddon)
	branch.POST("/cart/addons/:itemID/decrease", cartView.decreaseAddon)
	branch.DELETE("/cart/items/:itemID", cartView.removeItem)
	branch.DELETE("/cart", cartView.clear)

	return router
}
