package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"grocery-backend/internal/domains/promotion/model"
	"grocery-backend/internal/domains/promotion/service"
	"grocery-backend/internal/shared/response"
	"grocery-backend/internal/shared/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// AdminHandler serves /admin/promo-codes.
type AdminHandler struct {
	service service.ServiceInterface
}

func NewAdminHandler(service service.ServiceInterface) *AdminHandler {
	return &AdminHandler{service: service}
}

// -------------------------------------------------------------------
// CREATE & UPDATE
// -------------------------------------------------------------------

// CreatePromoCode
// @Router /v1/admin/promo-codes [post]
func (h *AdminHandler) CreatePromoCode(c *gin.Context) {
	var req model.CreatePromoCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body", err.Error())
		return
	}

	promo, err := h.service.CreatePromoCode(c.Request.Context(), &req)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "promo code created", promo)
}

// UpdatePromoCode
// @Router /v1/admin/promo-codes/{id} [put]
func (h *AdminHandler) UpdatePromoCode(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req model.UpdatePromoCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body", err.Error())
		return
	}

	promo, err := h.service.UpdatePromoCode(c.Request.Context(), id, &req)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "promo code updated", promo)
}

// UpdateStatus flips the kill switch.
// @Router /v1/admin/promo-codes/{id}/status [patch]
func (h *AdminHandler) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req model.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(c, err)
		return
	}

	promo, err := h.service.UpdateStatus(c.Request.Context(), id, *req.IsActive)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "promo code status updated", promo)
}

// -------------------------------------------------------------------
// READ
// -------------------------------------------------------------------

// ListPromoCodes
// @Param state  query string false "PENDING | LIVE | EXHAUSTED | EXPIRED | DISABLED"
// @Param search query string false "code or description"
// @Router /v1/admin/promo-codes [get]
func (h *AdminHandler) ListPromoCodes(c *gin.Context) {
	pagination := utils.ParsePagination(c.Query("page"), c.Query("limit"))

	filter := model.ListFilter{
		State:  model.PromoState(strings.ToUpper(strings.TrimSpace(c.Query("state")))),
		Search: c.Query("search"),
		Page:   pagination.Page,
		Limit:  pagination.Limit,
	}

	promos, total, err := h.service.ListPromoCodes(c.Request.Context(), filter)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, "promo codes retrieved", promos, &response.Meta{
		Page:       pagination.Page,
		Limit:      pagination.Limit,
		Total:      total,
		TotalPages: pagination.TotalPages(total),
	})
}

// GetPromoCode returns the code with its usage stats.
// @Router /v1/admin/promo-codes/{id} [get]
func (h *AdminHandler) GetPromoCode(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	detail, err := h.service.GetPromoCode(c.Request.Context(), id)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "promo code retrieved", detail)
}

// GetUsageHistory
// @Router /v1/admin/promo-codes/{id}/usages [get]
func (h *AdminHandler) GetUsageHistory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	pagination := utils.ParsePagination(c.Query("page"), c.Query("limit"))

	history, err := h.service.GetUsageHistory(c.Request.Context(), id, pagination.Page, pagination.Limit)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "usage history retrieved", history)
}

// ExportUsageReport downloads the full ledger as xlsx.
// @Router /v1/admin/promo-codes/{id}/usages/export [get]
func (h *AdminHandler) ExportUsageReport(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	report, err := h.service.ExportUsageReport(c.Request.Context(), id)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	defer report.Workbook.Close()

	buf, err := report.Workbook.WriteToBuffer()
	if err != nil {
		response.HandleError(c, err)
		return
	}

	filename := fmt.Sprintf("%s-usages-%s.xlsx", report.Code, time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// -------------------------------------------------------------------
// DELETE
// -------------------------------------------------------------------

// DeletePromoCode
// @Router /v1/admin/promo-codes/{id} [delete]
func (h *AdminHandler) DeletePromoCode(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.service.DeletePromoCode(c.Request.Context(), id); err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "promo code deleted", nil)
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id := utils.ParseStringToUUID(c.Param("id"))
	if id == uuid.Nil {
		response.BadRequest(c, "invalid promo code id", nil)
		return uuid.Nil, false
	}
	return id, true
}
