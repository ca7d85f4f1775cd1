package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"grocery-backend/internal/domains/order/model"
	"grocery-backend/internal/shared/utils"
)

// OrderRepository is the data access contract for orders.
// Writes only happen inside the checkout transaction.
type OrderRepository interface {
	// =====================================================
	// CHECKOUT (inside tx)
	// =====================================================

	// CreateTx inserts the order row and fills ID and CreatedAt.
	CreateTx(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateItemsTx inserts all line items in one batch.
	CreateItemsTx(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, items []model.OrderItem) error

	// =====================================================
	// READS
	// =====================================================

	// FindByIDForUser returns ErrOrderNotFound when the order is missing or owned by someone else.
	FindByIDForUser(ctx context.Context, orderID, userID uuid.UUID) (*model.Order, error)

	ListItems(ctx context.Context, orderID uuid.UUID) ([]model.OrderItem, error)

	// ListByUser returns the user's orders, newest first, with the total count.
	ListByUser(ctx context.Context, userID uuid.UUID, page utils.Pagination) ([]model.OrderSummary, int, error)

	// ListByUserAndProduct returns the user's orders that contain the product.
	ListByUserAndProduct(ctx context.Context, userID, productID uuid.UUID) ([]model.OrderSummary, error)

	// ListAll is the admin listing.
	ListAll(ctx context.Context, page utils.Pagination) ([]model.OrderSummary, int, error)
}
