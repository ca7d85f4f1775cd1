package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"grocery-backend/internal/domains/catalog/model"
	"grocery-backend/internal/domains/catalog/repository"
	"grocery-backend/internal/shared/utils"
	"grocery-backend/pkg/cache"
	"grocery-backend/pkg/logger"
)

const (
	cacheKeyCategories    = "catalog:categories"
	cacheKeyProductPrefix = "catalog:product:"
)

type catalogService struct {
	categories repository.CategoryRepository
	products   repository.ProductRepository
	cache      cache.Cache
	cacheTTL   time.Duration
}

func NewCatalogService(
	categories repository.CategoryRepository,
	products repository.ProductRepository,
	cache cache.Cache,
	cacheTTL time.Duration,
) ServiceInterface {
	return &catalogService{
		categories: categories,
		products:   products,
		cache:      cache,
		cacheTTL:   cacheTTL,
	}
}

// ============================================================
// STOREFRONT
// ============================================================

func (s *catalogService) ListCategories(ctx context.Context) ([]*model.CategoryView, error) {
	var cached []*model.CategoryView
	if s.cacheGet(ctx, cacheKeyCategories, &cached) {
		return cached, nil
	}

	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}

	counts, err := s.categories.CountProducts(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]*model.CategoryView, 0, len(categories))
	for _, c := range categories {
		views = append(views, model.NewCategoryView(c, counts[c.ID]))
	}

	s.cacheSet(ctx, cacheKeyCategories, views)
	return views, nil
}

// GetCategoryProducts is the single slug-keyed category page.
func (s *catalogService) GetCategoryProducts(ctx context.Context, slug string, page utils.Pagination) (*model.CategoryProductsResponse, error) {
	category, err := s.categories.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	products, total, err := s.products.List(ctx, model.ProductFilter{
		CategoryID: &category.ID,
		Offset:     page.Offset(),
		Limit:      page.Limit,
	})
	if err != nil {
		return nil, err
	}

	return &model.CategoryProductsResponse{
		Category: model.NewCategoryView(category, total),
		Products: products,
		Total:    total,
	}, nil
}

// Search matches name or description and optionally narrows to one category.
// An empty query lists everything, like the storefront search page.
func (s *catalogService) Search(ctx context.Context, req model.SearchRequest) (*model.SearchResponse, error) {
	categoryID, ok := req.CategoryFilter()
	if !ok {
		return nil, validation.Errors{"category": errors.New("category must be a category id or 'all'")}
	}

	page := utils.Pagination{Page: req.Page, Limit: req.Limit}
	products, total, err := s.products.List(ctx, model.ProductFilter{
		Query:      req.Query,
		CategoryID: categoryID,
		Offset:     page.Offset(),
		Limit:      page.Limit,
	})
	if err != nil {
		return nil, err
	}

	categories, err := s.ListCategories(ctx)
	if err != nil {
		return nil, err
	}

	selected := "all"
	if categoryID != nil {
		selected = categoryID.String()
	}

	return &model.SearchResponse{
		Query:            req.Query,
		SelectedCategory: selected,
		Products:         products,
		Total:            total,
		Categories:       categories,
	}, nil
}

func (s *catalogService) GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	key := cacheKeyProductPrefix + id.String()

	var cached model.Product
	if s.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cacheSet(ctx, key, product)
	return product, nil
}

// GetProductsByIDs always reads the database: carts and checkout need current prices.
func (s *catalogService) GetProductsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*model.Product, error) {
	return s.products.FindByIDs(ctx, ids)
}

// ============================================================
// ADMIN: CATEGORIES
// ============================================================

func (s *catalogService) CreateCategory(ctx context.Context, req *model.CreateCategoryRequest) (*model.CategoryView, error) {
	// ========== STEP 1: Normalize (slug from name) and validate ==========
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// ========== STEP 2: Insert, unique constraints catch duplicates ==========
	category := &model.Category{
		Name:     req.Name,
		Slug:     req.Slug,
		ImageURL: req.ImageURL,
	}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, err
	}

	// ========== STEP 3: Invalidate listing ==========
	s.invalidate(ctx, cacheKeyCategories)

	logger.Info("category created", map[string]interface{}{
		"category_id": category.ID.String(),
		"slug":        category.Slug,
	})
	return model.NewCategoryView(category, 0), nil
}

func (s *catalogService) UpdateCategory(ctx context.Context, id uuid.UUID, req *model.UpdateCategoryRequest) (*model.CategoryView, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	category, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	req.Apply(category)
	if err := s.categories.Update(ctx, category); err != nil {
		return nil, err
	}

	// Joined category name/slug is part of every cached product
	s.invalidate(ctx, cacheKeyCategories)
	s.invalidatePattern(ctx, cacheKeyProductPrefix+"*")

	return model.NewCategoryView(category, 0), nil
}

func (s *catalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if err := s.categories.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidate(ctx, cacheKeyCategories)
	s.invalidatePattern(ctx, cacheKeyProductPrefix+"*")

	logger.Info("category deleted", map[string]interface{}{"category_id": id.String()})
	return nil
}

// ============================================================
// ADMIN: PRODUCTS
// ============================================================

func (s *catalogService) ListProducts(ctx context.Context, page utils.Pagination) ([]*model.Product, int, error) {
	return s.products.List(ctx, model.ProductFilter{Offset: page.Offset(), Limit: page.Limit})
}

func (s *catalogService) CreateProduct(ctx context.Context, req *model.CreateProductRequest) (*model.Product, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if req.CategoryID != nil {
		if _, err := s.categories.FindByID(ctx, *req.CategoryID); err != nil {
			return nil, err
		}
	}

	product := req.ToProduct()
	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}

	s.invalidate(ctx, cacheKeyCategories)

	logger.Info("product created", map[string]interface{}{
		"product_id": product.ID.String(),
		"price":      product.Price.String(),
	})

	// Re-read to pick up the joined category fields
	return s.products.FindByID(ctx, product.ID)
}

func (s *catalogService) UpdateProduct(ctx context.Context, id uuid.UUID, req *model.UpdateProductRequest) (*model.Product, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.CategoryID != nil {
		if _, err := s.categories.FindByID(ctx, *req.CategoryID); err != nil {
			return nil, err
		}
	}

	req.Apply(product)
	if err := s.products.Update(ctx, product); err != nil {
		return nil, err
	}

	s.invalidate(ctx, cacheKeyProductPrefix+id.String(), cacheKeyCategories)

	return s.products.FindByID(ctx, id)
}

func (s *catalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidate(ctx, cacheKeyProductPrefix+id.String(), cacheKeyCategories)
	return nil
}

// ============================================================
// CACHE HELPERS
// ============================================================
// Redis failures degrade to a cache miss, they never fail the request.

func (s *catalogService) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	found, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		logger.Warn("cache get failed", map[string]interface{}{"key": key, "error": err.Error()})
		return false
	}
	return found
}

func (s *catalogService) cacheSet(ctx context.Context, key string, value interface{}) {
	if err := s.cache.Set(ctx, key, value, s.cacheTTL); err != nil {
		logger.Warn("cache set failed", map[string]interface{}{"key": key, "error": err.Error()})
	}
}

func (s *catalogService) invalidate(ctx context.Context, keys ...string) {
	if err := s.cache.Delete(ctx, keys...); err != nil {
		logger.Warn("cache delete failed", map[string]interface{}{"keys": keys, "error": err.Error()})
	}
}

func (s *catalogService) invalidatePattern(ctx context.Context, pattern string) {
	if err := s.cache.DeletePattern(ctx, pattern); err != nil {
		logger.Warn("cache delete pattern failed", map[string]interface{}{
			"pattern": pattern,
			"error":   fmt.Sprint(err),
		})
	}
}
