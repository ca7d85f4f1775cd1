package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"grocery-backend/internal/shared/middleware"
	"grocery-backend/internal/shared/response"
	"grocery-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(),
		middleware.Metrics(),
	)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))

		setupAuthRoutes(v1, c)
		setupCatalogRoutes(v1, c)
		setupPromotionRoutes(v1, c)
		setupCartRoutes(v1, c)
		setupShopperRoutes(v1, c)
		setupAdminRoutes(v1, c)
	}

	return router
}

// ========================================
// AUTH ROUTES
// ========================================
func setupAuthRoutes(v1 *gin.RouterGroup, c *container.Container) {
	auth := v1.Group("/auth")
	{
		auth.POST("/register", c.UserHandler.Register)
		// Login merges the anonymous cart, so it needs the session cookie
		auth.POST("/login",
			middleware.OptionalAuthMiddleware(c.JWTManager),
			middleware.CartMiddleware(c.CartCookies),
			c.UserHandler.Login,
		)
		auth.POST("/refresh", c.UserHandler.RefreshToken)
		auth.POST("/logout", middleware.AuthMiddleware(c.JWTManager), c.UserHandler.Logout)
	}
}

// ========================================
// CATALOG ROUTES (public)
// ========================================
func setupCatalogRoutes(v1 *gin.RouterGroup, c *container.Container) {
	v1.GET("/categories", c.CatalogHandler.ListCategories)
	v1.GET("/categories/:slug/products", c.CatalogHandler.CategoryProducts)

	products := v1.Group("/products")
	{
		products.GET("/search", c.CatalogHandler.Search)
		products.GET("/:id", c.CatalogHandler.GetProduct)
	}
}

// ========================================
// PROMOTION ROUTES (public)
// ========================================
func setupPromotionRoutes(v1 *gin.RouterGroup, c *container.Container) {
	v1.POST("/promo-codes/preview", c.PublicPromoHandler.Preview)
}

// ========================================
// CART ROUTES (anonymous or signed in)
// ========================================
func setupCartRoutes(v1 *gin.RouterGroup, c *container.Container) {
	cart := v1.Group("/cart")
	cart.Use(
		middleware.OptionalAuthMiddleware(c.JWTManager),
		middleware.CartMiddleware(c.CartCookies),
	)
	{
		cart.GET("", c.CartHandler.GetCart)
		cart.DELETE("", c.CartHandler.Clear)
		cart.POST("/items", c.CartHandler.AddItem)
		cart.PUT("/items/:product_id", c.CartHandler.UpdateItem)
		cart.DELETE("/items/:product_id", c.CartHandler.RemoveItem)
		cart.POST("/promo", c.CartHandler.ApplyPromo)
		cart.DELETE("/promo", c.CartHandler.RemovePromo)
	}
}

// ========================================
// SHOPPER ROUTES (auth required)
// ========================================
func setupShopperRoutes(v1 *gin.RouterGroup, c *container.Container) {
	shopper := v1.Group("")
	shopper.Use(middleware.AuthMiddleware(c.JWTManager))

	// Checkout + order history
	c.OrderHandler.RegisterRoutes(shopper)

	wishlist := shopper.Group("/wishlist")
	{
		wishlist.GET("", c.WishlistHandler.List)
		wishlist.POST("", c.WishlistHandler.Add)
		wishlist.DELETE("/:product_id", c.WishlistHandler.Remove)
		wishlist.POST("/:product_id/move-to-cart", c.WishlistHandler.MoveToCart)
	}

	me := shopper.Group("/users/me")
	{
		me.GET("", c.UserHandler.GetProfile)
		me.PUT("", c.UserHandler.UpdateProfile)
		me.GET("/settings", c.UserHandler.GetSettings)
		me.PUT("/settings", c.UserHandler.UpdateSettings)
	}
}

// ========================================
// ADMIN ROUTES
// ========================================
func setupAdminRoutes(v1 *gin.RouterGroup, c *container.Container) {
	admin := v1.Group("/admin")
	admin.Use(
		middleware.AuthMiddleware(c.JWTManager),
		middleware.AdminMiddleware(),
	)

	promos := admin.Group("/promo-codes")
	{
		promos.POST("", c.AdminPromoHandler.CreatePromoCode)
		promos.GET("", c.AdminPromoHandler.ListPromoCodes)
		promos.GET("/:id", c.AdminPromoHandler.GetPromoCode)
		promos.PUT("/:id", c.AdminPromoHandler.UpdatePromoCode)
		promos.PATCH("/:id/status", c.AdminPromoHandler.UpdateStatus)
		promos.DELETE("/:id", c.AdminPromoHandler.DeletePromoCode)
		promos.GET("/:id/usages", c.AdminPromoHandler.GetUsageHistory)
		promos.GET("/:id/usages/export", c.AdminPromoHandler.ExportUsageReport)
	}

	categories := admin.Group("/categories")
	{
		categories.POST("", c.CatalogHandler.CreateCategory)
		categories.PUT("/:id", c.CatalogHandler.UpdateCategory)
		categories.DELETE("/:id", c.CatalogHandler.DeleteCategory)
	}

	products := admin.Group("/products")
	{
		products.GET("", c.CatalogHandler.ListProducts)
		products.POST("", c.CatalogHandler.CreateProduct)
		products.PUT("/:id", c.CatalogHandler.UpdateProduct)
		products.DELETE("/:id", c.CatalogHandler.DeleteProduct)
	}

	c.OrderHandler.RegisterAdminRoutes(admin)

	users := admin.Group("/users")
	{
		users.GET("", c.UserHandler.ListUsers)
		users.PUT("/:id/role", c.UserHandler.UpdateUserRole)
	}
}

// ========================================
// HEALTH
// ========================================
func healthCheckHandler(c *container.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		checkCtx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
		defer cancel()

		status, healthy := c.Health(checkCtx)
		if !healthy {
			response.ErrorResponse(ctx, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "service unhealthy", status)
			return
		}

		response.Success(ctx, http.StatusOK, "ok", gin.H{
			"status":  status,
			"version": c.Config.App.Version,
		})
	}
}
