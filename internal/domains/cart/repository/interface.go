package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"grocery-backend/internal/domains/cart/model"
)

// CartRepository defines data access for carts and their items.
type CartRepository interface {
	// GetOrCreate returns the owner's cart, creating an empty one on first use.
	GetOrCreate(ctx context.Context, owner model.Owner) (*model.Cart, error)

	// FindByOwner returns nil (no error) when the owner has no cart yet.
	FindByOwner(ctx context.Context, owner model.Owner) (*model.Cart, error)

	ListItems(ctx context.Context, cartID uuid.UUID) ([]*model.CartItem, error)

	// AddItem inserts the product or increments its quantity, capped at MaxItemQuantity.
	AddItem(ctx context.Context, cartID, productID uuid.UUID, quantity int) (*model.CartItem, error)

	// SetItemQuantity returns ErrCartItemNotFound when the product is not in the cart.
	SetItemQuantity(ctx context.Context, cartID, productID uuid.UUID, quantity int) error
	RemoveItem(ctx context.Context, cartID, productID uuid.UUID) error

	// Clear empties the cart and drops any applied promo code.
	Clear(ctx context.Context, cartID uuid.UUID) error

	SetPromoCode(ctx context.Context, cartID uuid.UUID, code *string) error

	// MergeSessionIntoUser moves an anonymous cart into the user's cart and deletes it.
	MergeSessionIntoUser(ctx context.Context, sessionID string, userID uuid.UUID) error

	// Checkout (inside the order transaction)
	FindByUserTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*model.Cart, error)
	ListItemsTx(ctx context.Context, tx pgx.Tx, cartID uuid.UUID) ([]*model.CartItem, error)
	ClearTx(ctx context.Context, tx pgx.Tx, cartID uuid.UUID) error
}
