package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"grocery-backend/internal/domains/promotion/model"
	"grocery-backend/internal/domains/promotion/service"
	"grocery-backend/internal/shared/response"
)

// PublicHandler serves the shopper-facing promo endpoints.
type PublicHandler struct {
	service service.ServiceInterface
}

func NewPublicHandler(promotionService service.ServiceInterface) *PublicHandler {
	return &PublicHandler{service: promotionService}
}

// Preview evaluates a code against an order amount without redeeming it.
//
// @Summary  Preview promo code
// @Tags     promotions
// @Accept   json
// @Produce  json
// @Param    request body model.PreviewRequest true "Preview request"
// @Success  200 {object} response.Response{data=model.PreviewResponse}
// @Failure  400 {object} response.Response
// @Failure  404 {object} response.Response
// @Router   /v1/promo-codes/preview [post]
func (h *PublicHandler) Preview(c *gin.Context) {
	var req model.PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body", err.Error())
		return
	}

	result, err := h.service.Preview(c.Request.Context(), &req)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "promo code applied", result)
}
