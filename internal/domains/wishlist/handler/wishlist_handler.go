package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"grocery-backend/internal/domains/wishlist/model"
	"grocery-backend/internal/domains/wishlist/service"
	"grocery-backend/internal/shared/middleware"
	"grocery-backend/internal/shared/response"
	"grocery-backend/internal/shared/utils"
)

// Handler serves the signed-in user's wishlist. Mount behind AuthMiddleware.
type Handler struct {
	service service.ServiceInterface
}

func NewHandler(svc service.ServiceInterface) *Handler {
	return &Handler{service: svc}
}

// ========== GET /v1/wishlist ==========
func (h *Handler) List(c *gin.Context) {
	userID, ok := middleware.MustUserID(c)
	if !ok {
		return
	}

	items, err := h.service.List(c.Request.Context(), userID)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "wishlist retrieved", items)
}

// ========== POST /v1/wishlist ==========
func (h *Handler) Add(c *gin.Context) {
	userID, ok := middleware.MustUserID(c)
	if !ok {
		return
	}

	var req model.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body", err.Error())
		return
	}

	items, err := h.service.Add(c.Request.Context(), userID, &req)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "added to wishlist", items)
}

// ========== DELETE /v1/wishlist/:product_id ==========
func (h *Handler) Remove(c *gin.Context) {
	userID, ok := middleware.MustUserID(c)
	if !ok {
		return
	}
	productID, ok := productIDParam(c)
	if !ok {
		return
	}

	if err := h.service.Remove(c.Request.Context(), userID, productID); err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "removed from wishlist", nil)
}

// ========== POST /v1/wishlist/:product_id/move-to-cart ==========
func (h *Handler) MoveToCart(c *gin.Context) {
	userID, ok := middleware.MustUserID(c)
	if !ok {
		return
	}
	productID, ok := productIDParam(c)
	if !ok {
		return
	}

	cart, err := h.service.MoveToCart(c.Request.Context(), userID, productID)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "moved to cart", cart)
}

func productIDParam(c *gin.Context) (uuid.UUID, bool) {
	id := utils.ParseStringToUUID(c.Param("product_id"))
	if id == uuid.Nil {
		response.BadRequest(c, "invalid product id", nil)
		return uuid.Nil, false
	}
	return id, true
}
