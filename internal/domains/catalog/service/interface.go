package service

import (
	"context"

	"github.com/google/uuid"

	"grocery-backend/internal/domains/catalog/model"
	"grocery-backend/internal/shared/utils"
)

type ServiceInterface interface {
	// Storefront
	ListCategories(ctx context.Context) ([]*model.CategoryView, error)
	GetCategoryProducts(ctx context.Context, slug string, page utils.Pagination) (*model.CategoryProductsResponse, error)
	Search(ctx context.Context, req model.SearchRequest) (*model.SearchResponse, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error)
	GetProductsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*model.Product, error)

	// Admin
	CreateCategory(ctx context.Context, req *model.CreateCategoryRequest) (*model.CategoryView, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, req *model.UpdateCategoryRequest) (*model.CategoryView, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	ListProducts(ctx context.Context, page utils.Pagination) ([]*model.Product, int, error)
	CreateProduct(ctx context.Context, req *model.CreateProductRequest) (*model.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, req *model.UpdateProductRequest) (*model.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}
