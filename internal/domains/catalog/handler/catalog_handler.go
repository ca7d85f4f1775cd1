package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"grocery-backend/internal/domains/catalog/model"
	"grocery-backend/internal/domains/catalog/service"
	"grocery-backend/internal/shared/response"
	"grocery-backend/internal/shared/utils"
)

// ============================================================
// HANDLER STRUCT
// ============================================================
type CatalogHandler struct {
	service service.ServiceInterface
}

func NewCatalogHandler(svc service.ServiceInterface) *CatalogHandler {
	return &CatalogHandler{service: svc}
}

// ========== GET /v1/categories ==========
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.service.ListCategories(c.Request.Context())
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "categories retrieved", categories)
}

// ========== GET /v1/categories/:slug/products ==========
// One handler for every category page.
func (h *CatalogHandler) CategoryProducts(c *gin.Context) {
	slug := strings.ToLower(strings.TrimSpace(c.Param("slug")))
	if !utils.SlugPattern.MatchString(slug) {
		response.BadRequest(c, "invalid category slug", nil)
		return
	}

	page := utils.ParsePagination(c.Query("page"), c.Query("limit"))

	result, err := h.service.GetCategoryProducts(c.Request.Context(), slug, page)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, "category products retrieved", result, &response.Meta{
		Page:       page.Page,
		Limit:      page.Limit,
		Total:      result.Total,
		TotalPages: page.TotalPages(result.Total),
	})
}

// ========== GET /v1/products/search?q=&category= ==========
func (h *CatalogHandler) Search(c *gin.Context) {
	page := utils.ParsePagination(c.Query("page"), c.Query("limit"))

	result, err := h.service.Search(c.Request.Context(), model.SearchRequest{
		Query:    c.Query("q"),
		Category: c.Query("category"),
		Page:     page.Page,
		Limit:    page.Limit,
	})
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, "search results", result, &response.Meta{
		Page:       page.Page,
		Limit:      page.Limit,
		Total:      result.Total,
		TotalPages: page.TotalPages(result.Total),
	})
}

// ========== GET /v1/products/:id ==========
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	product, err := h.service.GetProduct(c.Request.Context(), id)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "product retrieved", product)
}

// ============================================================
// ADMIN
// ============================================================

// ========== POST /v1/admin/categories ==========
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req model.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body", err.Error())
		return
	}

	category, err := h.service.CreateCategory(c.Request.Context(), &req)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "category created", category)
}

// ========== PUT /v1/admin/categories/:id ==========
func (h *CatalogHandler) UpdateCategory(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req model.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body", err.Error())
		return
	}

	category, err := h.service.UpdateCategory(c.Request.Context(), id, &req)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "category updated", category)
}

// ========== DELETE /v1/admin/categories/:id ==========
func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteCategory(c.Request.Context(), id); err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "category deleted", nil)
}

// ========== GET /v1/admin/products ==========
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	page := utils.ParsePagination(c.Query("page"), c.Query("limit"))

	products, total, err := h.service.ListProducts(c.Request.Context(), page)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, "products retrieved", products, &response.Meta{
		Page:       page.Page,
		Limit:      page.Limit,
		Total:      total,
		TotalPages: page.TotalPages(total),
	})
}

// ========== POST /v1/admin/products ==========
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req model.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body", err.Error())
		return
	}

	product, err := h.service.CreateProduct(c.Request.Context(), &req)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "product created", product)
}

// ========== PUT /v1/admin/products/:id ==========
func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req model.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body", err.Error())
		return
	}

	product, err := h.service.UpdateProduct(c.Request.Context(), id, &req)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "product updated", product)
}

// ========== DELETE /v1/admin/products/:id ==========
func (h *CatalogHandler) DeleteProduct(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteProduct(c.Request.Context(), id); err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "product deleted", nil)
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id := utils.ParseStringToUUID(c.Param(name))
	if id == uuid.Nil {
		response.BadRequest(c, "invalid "+name, nil)
		return uuid.Nil, false
	}
	return id, true
}
