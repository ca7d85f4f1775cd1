package model

import (
	"net/http"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"grocery-backend/internal/shared/apperror"
	"grocery-backend/internal/shared/utils"
)

// Item is one saved product. A product is saved at most once per user.
type Item struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	ProductID uuid.UUID `json:"product_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ItemView joins the saved product for display.
type ItemView struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	ImageURL  *string         `json:"image_url,omitempty"`
	AddedAt   time.Time       `json:"added_at"`
}

type AddItemRequest struct {
	ProductID uuid.UUID `json:"product_id"`
}

func (r AddItemRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ProductID, utils.UUIDRequired("product_id is required")),
	)
}

const ErrCodeWishlistItemNotFound = "WISHLIST_ITEM_NOT_FOUND"

var ErrItemNotFound = apperror.New(ErrCodeWishlistItemNotFound, "product is not in your wishlist", http.StatusNotFound)
