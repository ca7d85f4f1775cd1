package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"grocery-backend/internal/domains/cart/model"
	catalogModel "grocery-backend/internal/domains/catalog/model"
	promoModel "grocery-backend/internal/domains/promotion/model"
)

type ServiceInterface interface {
	GetCart(ctx context.Context, owner model.Owner) (*model.CartResponse, error)
	AddItem(ctx context.Context, owner model.Owner, req *model.AddItemRequest) (*model.CartResponse, error)
	UpdateItem(ctx context.Context, owner model.Owner, productID uuid.UUID, req *model.UpdateItemRequest) (*model.CartResponse, error)
	RemoveItem(ctx context.Context, owner model.Owner, productID uuid.UUID) (*model.CartResponse, error)
	Clear(ctx context.Context, owner model.Owner) error

	// Apply-discount. The code is re-evaluated on every read of the cart.
	ApplyPromo(ctx context.Context, owner model.Owner, req *model.ApplyPromoRequest) (*model.CartResponse, error)
	RemovePromo(ctx context.Context, owner model.Owner) (*model.CartResponse, error)

	// MergeSessionCart runs after login.
	MergeSessionCart(ctx context.Context, sessionID string, userID uuid.UUID) error

	// Checkout (inside the order transaction)
	LoadForCheckout(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*model.Cart, []*model.CartItem, error)
	ClearTx(ctx context.Context, tx pgx.Tx, cartID uuid.UUID) error
}

// ProductCatalog prices cart lines. Implemented by the catalog service.
type ProductCatalog interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*catalogModel.Product, error)
	GetProductsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*catalogModel.Product, error)
}

// PromoEvaluator previews an applied code. Implemented by the promotion service.
type PromoEvaluator interface {
	Evaluate(ctx context.Context, code string, orderAmount, deliveryCost decimal.Decimal) (*promoModel.Evaluation, error)
	DeliveryCost() decimal.Decimal
}
