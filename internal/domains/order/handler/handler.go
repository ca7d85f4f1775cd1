package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"grocery-backend/internal/domains/order/model"
	"grocery-backend/internal/domains/order/service"
	"grocery-backend/internal/shared/middleware"
	"grocery-backend/internal/shared/response"
	"grocery-backend/internal/shared/utils"
)

// =====================================================
// ORDER HANDLER
// =====================================================
type OrderHandler struct {
	orderService service.OrderService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

// =====================================================
// ROUTES REGISTRATION
// =====================================================

// RegisterRoutes registers the shopper routes. The group must already require auth.
func (h *OrderHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/checkout", h.Checkout)                    // POST /api/v1/checkout
	router.GET("/orders", h.ListOrders)                     // GET /api/v1/orders?page=1&limit=20
	router.GET("/orders/:id", h.GetOrder)                   // GET /api/v1/orders/:id
	router.GET("/products/:id/orders", h.ListProductOrders) // GET /api/v1/products/:id/orders
}

// RegisterAdminRoutes registers the admin listing. The group must already require admin.
func (h *OrderHandler) RegisterAdminRoutes(router *gin.RouterGroup) {
	router.GET("/orders", h.ListAllOrders) // GET /api/v1/admin/orders
}

// =====================================================
// CHECKOUT
// =====================================================

// Checkout places an order from the caller's cart.
// A failed promo code fails the whole order; nothing is written.
func (h *OrderHandler) Checkout(c *gin.Context) {
	userID, ok := middleware.MustUserID(c)
	if !ok {
		return
	}

	var req model.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body", err.Error())
		return
	}

	order, err := h.orderService.Checkout(c.Request.Context(), userID, &req)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	c.Header("Location", "/api/v1/orders/"+order.ID.String())
	response.Success(c, http.StatusCreated, "order placed", order)
}

// =====================================================
// ORDER HISTORY
// =====================================================

func (h *OrderHandler) ListOrders(c *gin.Context) {
	userID, ok := middleware.MustUserID(c)
	if !ok {
		return
	}

	page := utils.ParsePagination(c.Query("page"), c.Query("limit"))
	orders, total, err := h.orderService.ListOrders(c.Request.Context(), userID, page)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, "orders retrieved", orders, &response.Meta{
		Page:       page.Page,
		Limit:      page.Limit,
		Total:      total,
		TotalPages: page.TotalPages(total),
	})
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	userID, ok := middleware.MustUserID(c)
	if !ok {
		return
	}

	orderID := utils.ParseStringToUUID(c.Param("id"))
	if orderID == uuid.Nil {
		response.BadRequest(c, "invalid order id", nil)
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), userID, orderID)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "order retrieved", order)
}

// ListProductOrders lists the caller's orders that contain the product.
func (h *OrderHandler) ListProductOrders(c *gin.Context) {
	userID, ok := middleware.MustUserID(c)
	if !ok {
		return
	}

	productID := utils.ParseStringToUUID(c.Param("id"))
	if productID == uuid.Nil {
		response.BadRequest(c, "invalid product id", nil)
		return
	}

	orders, err := h.orderService.ListProductOrders(c.Request.Context(), userID, productID)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "orders retrieved", orders)
}

// =====================================================
// ADMIN
// =====================================================

func (h *OrderHandler) ListAllOrders(c *gin.Context) {
	page := utils.ParsePagination(c.Query("page"), c.Query("limit"))

	orders, total, err := h.orderService.ListAllOrders(c.Request.Context(), page)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, "orders retrieved", orders, &response.Meta{
		Page:       page.Page,
		Limit:      page.Limit,
		Total:      total,
		TotalPages: page.TotalPages(total),
	})
}
