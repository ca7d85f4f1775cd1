package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"grocery-backend/internal/domains/order/model"
	"grocery-backend/internal/domains/order/service"
	promoModel "grocery-backend/internal/domains/promotion/model"
	"grocery-backend/internal/shared/middleware"
)

type mockOrderService struct {
	service.OrderService
	mock.Mock
}

func (m *mockOrderService) Checkout(ctx context.Context, userID uuid.UUID, req *model.CheckoutRequest) (*model.Order, error) {
	args := m.Called(ctx, userID, req)
	order, _ := args.Get(0).(*model.Order)
	return order, args.Error(1)
}

func (m *mockOrderService) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*model.Order, error) {
	args := m.Called(ctx, userID, orderID)
	order, _ := args.Get(0).(*model.Order)
	return order, args.Error(1)
}

// asUser stands in for AuthMiddleware.
func asUser(userID uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextKeyUserID, userID)
		c.Set(middleware.ContextKeyIsAuthenticated, true)
		c.Next()
	}
}

func newRouter(svc service.OrderService, userID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	group := r.Group("/api/v1")
	if userID != uuid.Nil {
		group.Use(asUser(userID))
	}
	NewOrderHandler(svc).RegisterRoutes(group)
	return r
}

func postCheckout(r *gin.Engine, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var parsed map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &parsed)
	return w, parsed
}

func errorCode(body map[string]interface{}) string {
	errBody, _ := body["error"].(map[string]interface{})
	code, _ := errBody["code"].(string)
	return code
}

func TestCheckout_RequiresAuth(t *testing.T) {
	svc := new(mockOrderService)

	w, _ := postCheckout(newRouter(svc, uuid.Nil), `{}`)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	svc.AssertNotCalled(t, "Checkout", mock.Anything, mock.Anything, mock.Anything)
}

func TestCheckout_Created(t *testing.T) {
	svc := new(mockOrderService)
	userID := uuid.New()
	orderID := uuid.New()
	svc.On("Checkout", mock.Anything, userID, mock.MatchedBy(func(req *model.CheckoutRequest) bool {
		return req.FullName == "Alice" && req.PromoCode != nil && *req.PromoCode == "SAVE10"
	})).Return(&model.Order{ID: orderID, UserID: userID}, nil)

	w, _ := postCheckout(newRouter(svc, userID), `{"full_name":"Alice","promo_code":"SAVE10"}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "/api/v1/orders/"+orderID.String(), w.Header().Get("Location"))
}

func TestCheckout_PromoErrorsKeepTheirStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"unknown code", promoModel.ErrPromoNotFound, http.StatusNotFound, promoModel.ErrCodePromoNotFound},
		{"expired", promoModel.ErrPromoExpired, http.StatusBadRequest, promoModel.ErrCodePromoExpired},
		{"minimum", promoModel.ErrPromoMinOrderNotMet.WithMessage("minimum order amount not met: 50"), http.StatusBadRequest, promoModel.ErrCodePromoMinOrderNotMet},
		{"lost race", promoModel.ErrPromoRedemptionLost, http.StatusConflict, promoModel.ErrCodePromoLimitReached},
		{"switched off mid-checkout", promoModel.ErrPromoDeactivated, http.StatusConflict, promoModel.ErrCodePromoInactive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockOrderService)
			userID := uuid.New()
			svc.On("Checkout", mock.Anything, userID, mock.Anything).Return(nil, tt.err)

			w, body := postCheckout(newRouter(svc, userID), `{"full_name":"Alice","promo_code":"X"}`)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, errorCode(body))
		})
	}
}

func TestGetOrder(t *testing.T) {
	svc := new(mockOrderService)
	userID := uuid.New()
	r := newRouter(svc, userID)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/orders/latest", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	orderID := uuid.New()
	svc.On("GetOrder", mock.Anything, userID, orderID).Return(nil, model.ErrOrderNotFound)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/orders/"+orderID.String(), nil))
	require.Equal(t, http.StatusNotFound, w.Code)
}
