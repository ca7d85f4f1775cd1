package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	cartModel "grocery-backend/internal/domains/cart/model"
	catalogModel "grocery-backend/internal/domains/catalog/model"
	"grocery-backend/internal/domains/order/model"
	promoModel "grocery-backend/internal/domains/promotion/model"
	"grocery-backend/internal/domains/user"
	"grocery-backend/internal/shared/utils"
)

// =====================================================
// ORDER SERVICE INTERFACE
// =====================================================
type OrderService interface {
	// Checkout places an order from the user's cart in one transaction
	Checkout(ctx context.Context, userID uuid.UUID, req *model.CheckoutRequest) (*model.Order, error)

	// GetOrder returns the order with its items
	GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*model.Order, error)

	// ListOrders is the user's order history
	ListOrders(ctx context.Context, userID uuid.UUID, page utils.Pagination) ([]model.OrderSummary, int, error)

	// ListProductOrders lists the user's orders that contain a product
	ListProductOrders(ctx context.Context, userID, productID uuid.UUID) ([]model.OrderSummary, error)

	// Admin: List all orders
	ListAllOrders(ctx context.Context, page utils.Pagination) ([]model.OrderSummary, int, error)
}

// =====================================================
// COLLABORATORS
// =====================================================

// CartSource hands over the locked cart and clears it, inside the order tx.
type CartSource interface {
	LoadForCheckout(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*cartModel.Cart, []*cartModel.CartItem, error)
	ClearTx(ctx context.Context, tx pgx.Tx, cartID uuid.UUID) error
}

// ProductPricer snapshots product names and prices.
type ProductPricer interface {
	GetProductsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*catalogModel.Product, error)
}

// PromoRedeemer re-checks and commits a code inside the order tx.
type PromoRedeemer interface {
	EvaluateTx(ctx context.Context, tx pgx.Tx, code string, orderAmount, deliveryCost decimal.Decimal) (*promoModel.Evaluation, error)
	Redeem(ctx context.Context, tx pgx.Tx, eval *promoModel.Evaluation, orderID uuid.UUID, userID *uuid.UUID) (*promoModel.PromoCodeUsage, error)
	DeliveryCost() decimal.Decimal
}

// SettingsProvider supplies saved checkout defaults.
type SettingsProvider interface {
	GetSettings(ctx context.Context, userID uuid.UUID) (*user.Settings, error)
}
