package model

import (
	"net/http"

	"grocery-backend/internal/shared/apperror"
)

const (
	ErrCodeCategoryNotFound  = "CATEGORY_NOT_FOUND"
	ErrCodeCategoryDuplicate = "CATEGORY_DUPLICATE"
	ErrCodeProductNotFound   = "PRODUCT_NOT_FOUND"
)

var (
	ErrCategoryNotFound  = apperror.New(ErrCodeCategoryNotFound, "category not found", http.StatusNotFound)
	ErrCategoryDuplicate = apperror.New(ErrCodeCategoryDuplicate, "a category with this name or slug already exists", http.StatusConflict)
	ErrProductNotFound   = apperror.New(ErrCodeProductNotFound, "product not found", http.StatusNotFound)
)
