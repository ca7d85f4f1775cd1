package repository

import (
	"context"

	"github.com/google/uuid"

	"grocery-backend/internal/domains/wishlist/model"
)

type WishlistRepository interface {
	// Add is idempotent. added=false means the product was already saved.
	Add(ctx context.Context, userID, productID uuid.UUID) (added bool, err error)

	// List returns the saved products, newest first.
	List(ctx context.Context, userID uuid.UUID) ([]model.ItemView, error)

	Contains(ctx context.Context, userID, productID uuid.UUID) (bool, error)

	// Remove returns ErrItemNotFound when nothing was deleted.
	Remove(ctx context.Context, userID, productID uuid.UUID) error
}
