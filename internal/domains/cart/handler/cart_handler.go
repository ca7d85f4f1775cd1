package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"grocery-backend/internal/domains/cart/model"
	"grocery-backend/internal/domains/cart/service"
	"grocery-backend/internal/shared/middleware"
	"grocery-backend/internal/shared/response"
	"grocery-backend/internal/shared/utils"
)

// Handler serves the cart for both signed-in users and anonymous sessions.
// CartMiddleware must run first so an owner is always present.
type Handler struct {
	service service.ServiceInterface
}

func NewHandler(svc service.ServiceInterface) *Handler {
	return &Handler{service: svc}
}

// ownerFrom resolves the polymorphic cart owner set by the auth and cart middleware.
func ownerFrom(c *gin.Context) model.Owner {
	userID, sessionID := middleware.GetCartOwner(c)
	if userID != nil {
		return model.UserOwner(*userID)
	}
	return model.SessionOwner(sessionID)
}

// ========== GET /v1/cart ==========
func (h *Handler) GetCart(c *gin.Context) {
	cart, err := h.service.GetCart(c.Request.Context(), ownerFrom(c))
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "cart retrieved", cart)
}

// ========== POST /v1/cart/items ==========
// Adding a product already in the cart increases its quantity.
func (h *Handler) AddItem(c *gin.Context) {
	var req model.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body", err.Error())
		return
	}

	cart, err := h.service.AddItem(c.Request.Context(), ownerFrom(c), &req)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "item added to cart", cart)
}

// ========== PUT /v1/cart/items/:product_id ==========
// Quantity 0 removes the item.
func (h *Handler) UpdateItem(c *gin.Context) {
	productID, ok := productIDParam(c)
	if !ok {
		return
	}

	var req model.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body", err.Error())
		return
	}

	cart, err := h.service.UpdateItem(c.Request.Context(), ownerFrom(c), productID, &req)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "cart updated", cart)
}

// ========== DELETE /v1/cart/items/:product_id ==========
func (h *Handler) RemoveItem(c *gin.Context) {
	productID, ok := productIDParam(c)
	if !ok {
		return
	}

	cart, err := h.service.RemoveItem(c.Request.Context(), ownerFrom(c), productID)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "item removed from cart", cart)
}

// ========== DELETE /v1/cart ==========
func (h *Handler) Clear(c *gin.Context) {
	if err := h.service.Clear(c.Request.Context(), ownerFrom(c)); err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "cart cleared", nil)
}

// ========== POST /v1/cart/promo ==========
func (h *Handler) ApplyPromo(c *gin.Context) {
	var req model.ApplyPromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body", err.Error())
		return
	}

	cart, err := h.service.ApplyPromo(c.Request.Context(), ownerFrom(c), &req)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "promo code applied", cart)
}

// ========== DELETE /v1/cart/promo ==========
func (h *Handler) RemovePromo(c *gin.Context) {
	cart, err := h.service.RemovePromo(c.Request.Context(), ownerFrom(c))
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "promo code removed", cart)
}

func productIDParam(c *gin.Context) (uuid.UUID, bool) {
	id := utils.ParseStringToUUID(c.Param("product_id"))
	if id == uuid.Nil {
		response.BadRequest(c, "invalid product_id", nil)
		return uuid.Nil, false
	}
	return id, true
}
