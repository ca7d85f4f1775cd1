package container

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"grocery-backend/internal/config"
	infraCache "grocery-backend/internal/infrastructure/cache"
	"grocery-backend/internal/infrastructure/database"
	"grocery-backend/internal/shared/middleware"
	"grocery-backend/pkg/cache"
	txdb "grocery-backend/pkg/database"
	"grocery-backend/pkg/jwt"
	"grocery-backend/pkg/logger"

	// Catalog
	catalogHandler "grocery-backend/internal/domains/catalog/handler"
	catalogRepo "grocery-backend/internal/domains/catalog/repository"
	catalogService "grocery-backend/internal/domains/catalog/service"

	// Promotion
	promoHandler "grocery-backend/internal/domains/promotion/handler"
	promoRepo "grocery-backend/internal/domains/promotion/repository"
	promoService "grocery-backend/internal/domains/promotion/service"

	// Cart
	cartHandler "grocery-backend/internal/domains/cart/handler"
	cartRepo "grocery-backend/internal/domains/cart/repository"
	cartService "grocery-backend/internal/domains/cart/service"

	// User
	"grocery-backend/internal/domains/user"
	userHandler "grocery-backend/internal/domains/user/handler"
	userRepo "grocery-backend/internal/domains/user/repository"
	userService "grocery-backend/internal/domains/user/service"

	// Order
	orderHandler "grocery-backend/internal/domains/order/handler"
	orderRepo "grocery-backend/internal/domains/order/repository"
	orderService "grocery-backend/internal/domains/order/service"

	// Wishlist
	wishlistHandler "grocery-backend/internal/domains/wishlist/handler"
	wishlistRepo "grocery-backend/internal/domains/wishlist/repository"
	wishlistService "grocery-backend/internal/domains/wishlist/service"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container holds every dependency of the application.
// Build order: config, infrastructure, repositories, services, handlers.
type Container struct {
	// ========================================
	// INFRASTRUCTURE LAYER
	// ========================================
	Config     *config.Config
	DB         *database.PostgresDB
	Cache      cache.Cache
	redis      *infraCache.RedisCache // nil when Redis was unreachable at startup
	JWTManager *jwt.Manager

	// Session cookie settings shared by the cart middleware and login
	CartCookies middleware.CartMiddlewareConfig

	// ========================================
	// REPOSITORY LAYER
	// ========================================
	CategoryRepo catalogRepo.CategoryRepository
	ProductRepo  catalogRepo.ProductRepository
	PromoRepo    promoRepo.PromoCodeRepository
	CartRepo     cartRepo.CartRepository
	UserRepo     user.Repository
	OrderRepo    orderRepo.OrderRepository
	WishlistRepo wishlistRepo.WishlistRepository

	// ========================================
	// SERVICE LAYER
	// ========================================
	CatalogService  catalogService.ServiceInterface
	PromoService    promoService.ServiceInterface
	CartService     cartService.ServiceInterface
	UserService     user.Service
	OrderService    orderService.OrderService
	WishlistService wishlistService.ServiceInterface

	// ========================================
	// HANDLER LAYER
	// ========================================
	CatalogHandler     *catalogHandler.CatalogHandler
	AdminPromoHandler  *promoHandler.AdminHandler
	PublicPromoHandler *promoHandler.PublicHandler
	CartHandler        *cartHandler.Handler
	UserHandler        *userHandler.UserHandler
	OrderHandler       *orderHandler.OrderHandler
	WishlistHandler    *wishlistHandler.Handler
}

// ========================================
// CONSTRUCTOR: BUILD CONTAINER
// ========================================

// NewContainer builds the dependency graph. A failure in any layer aborts startup,
// except Redis, which degrades to a no-op cache.
func NewContainer() (*Container, error) {
	logger.Info("initializing container", nil)

	c := &Container{}

	// ========================================
	// STEP 1: LOAD CONFIGURATION
	// ========================================
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	logger.Info("config loaded", map[string]interface{}{
		"environment": cfg.App.Environment,
	})

	// ========================================
	// STEP 2: INITIALIZE DATABASE
	// ========================================
	db := database.NewPostgresDB(cfg.LoadDatabaseConfig())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.HealthCheck(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database health check failed: %w", err)
	}
	c.DB = db

	if cfg.Database.AutoMigrate {
		if err := database.RunMigrations(cfg.Database.DatabaseURL()); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	// ========================================
	// STEP 3: INITIALIZE CACHE
	// ========================================
	c.initCache(ctx)

	c.JWTManager = jwt.NewManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry, cfg.JWT.RefreshTokenExpiry)

	c.CartCookies = middleware.DefaultCartMiddlewareConfig()
	c.CartCookies.CookieSecure = cfg.Shop.SessionCookieSecure
	c.CartCookies.CookieDomain = cfg.Shop.SessionCookieDomain
	if cfg.Shop.SessionCookieMaxDays > 0 {
		c.CartCookies.CookieMaxAge = cfg.Shop.SessionCookieMaxDays * 24 * 60 * 60
	}

	// ========================================
	// STEP 4-6: REPOSITORIES, SERVICES, HANDLERS
	// ========================================
	c.initRepositories()

	if err := c.initServices(); err != nil {
		c.Cleanup()
		return nil, fmt.Errorf("failed to init services: %w", err)
	}

	c.initHandlers()

	logger.Info("container initialized", nil)
	return c, nil
}

// ========================================
// PRIVATE INITIALIZATION METHODS
// ========================================

func (c *Container) initCache(ctx context.Context) {
	rc := infraCache.NewRedisCache(c.Config.Redis.Host, c.Config.Redis.Password, c.Config.Redis.DB)
	if err := rc.Connect(ctx); err != nil {
		// Catalog reads fall through to Postgres
		logger.Warn("redis unavailable, catalog cache disabled", map[string]interface{}{
			"host":  c.Config.Redis.Host,
			"error": err.Error(),
		})
		_ = rc.Close()
		c.Cache = cache.Noop{}
		return
	}

	c.redis = rc
	c.Cache = rc
}

func (c *Container) initRepositories() {
	pool := c.DB.Pool

	c.CategoryRepo = catalogRepo.NewCategoryRepository(pool)
	c.ProductRepo = catalogRepo.NewProductRepository(pool)
	c.PromoRepo = promoRepo.NewPostgresRepository(pool)
	c.CartRepo = cartRepo.NewPostgresRepository(pool)
	c.UserRepo = userRepo.NewPostgresRepository(pool)
	c.OrderRepo = orderRepo.NewPostgresOrderRepository(pool)
	c.WishlistRepo = wishlistRepo.NewPostgresRepository(pool)
}

func (c *Container) initServices() error {
	deliveryCost, err := c.Config.Shop.DeliveryCostDecimal()
	if err != nil {
		return err
	}

	// ----------------------------------------
	// CATALOG + PROMOTION (no cross-domain deps)
	// ----------------------------------------
	c.CatalogService = catalogService.NewCatalogService(c.CategoryRepo, c.ProductRepo, c.Cache, c.Config.Redis.TTL)
	c.PromoService = promoService.NewPromotionService(c.PromoRepo, deliveryCost)

	// ----------------------------------------
	// CART (prices from catalog, summary from the promo engine)
	// ----------------------------------------
	c.CartService = cartService.NewCartService(c.CartRepo, c.CatalogService, c.PromoService)

	// ----------------------------------------
	// USER
	// ----------------------------------------
	c.UserService = userService.NewUserService(c.UserRepo, c.JWTManager, bcrypt.DefaultCost)

	// ----------------------------------------
	// ORDER (one transaction across cart, catalog and promotion)
	// ----------------------------------------
	c.OrderService = orderService.NewOrderService(
		txdb.NewPoolRunner(c.DB),
		c.OrderRepo,
		c.CartService,
		c.CatalogService,
		c.PromoService,
		c.UserService,
	)

	// ----------------------------------------
	// WISHLIST
	// ----------------------------------------
	c.WishlistService = wishlistService.NewWishlistService(c.WishlistRepo, c.CatalogService, c.CartService)

	return nil
}

func (c *Container) initHandlers() {
	c.CatalogHandler = catalogHandler.NewCatalogHandler(c.CatalogService)
	c.AdminPromoHandler = promoHandler.NewAdminHandler(c.PromoService)
	c.PublicPromoHandler = promoHandler.NewPublicHandler(c.PromoService)
	c.CartHandler = cartHandler.NewHandler(c.CartService)
	c.UserHandler = userHandler.NewUserHandler(c.UserService, c.CartService, c.CartCookies, c.Config.JWT.RefreshTokenExpiry)
	c.OrderHandler = orderHandler.NewOrderHandler(c.OrderService)
	c.WishlistHandler = wishlistHandler.NewHandler(c.WishlistService)
}

// ========================================
// HEALTH + CLEANUP
// ========================================

// Health reports per-dependency status. Redis is "disabled" when the app started without it.
func (c *Container) Health(ctx context.Context) (map[string]string, bool) {
	status := map[string]string{"database": "up", "redis": "up"}
	healthy := true

	if err := c.DB.HealthCheck(ctx); err != nil {
		status["database"] = "down"
		healthy = false
	}

	switch {
	case c.redis == nil:
		status["redis"] = "disabled"
	case c.redis.Ping(ctx) != nil:
		status["redis"] = "down"
	}

	return status, healthy
}

// Cleanup releases connections; called on shutdown.
func (c *Container) Cleanup() {
	if c.DB != nil {
		c.DB.Close()
	}

	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			logger.Error("failed to close redis", err)
		}
	}

	logger.Info("container cleanup completed", nil)
}
