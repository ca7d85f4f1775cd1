package model

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"grocery-backend/internal/shared/utils"
)

type AddItemRequest struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

// Normalize defaults the quantity to one, like the storefront "add" button.
func (r *AddItemRequest) Normalize() {
	if r.Quantity == 0 {
		r.Quantity = MinItemQuantity
	}
}

func (r AddItemRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ProductID, utils.UUIDRequired("product_id is required")),
		validation.Field(&r.Quantity,
			validation.Min(MinItemQuantity).Error("quantity must be at least 1"),
			validation.Max(MaxItemQuantity).Error("quantity must be at most 100"),
		),
	)
}

// UpdateItemRequest sets an absolute quantity. Zero removes the item.
type UpdateItemRequest struct {
	Quantity *int `json:"quantity"`
}

func (r UpdateItemRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Quantity,
			validation.NotNil.Error("quantity is required"),
			validation.Min(0).Error("quantity cannot be negative"),
			validation.Max(MaxItemQuantity).Error("quantity must be at most 100"),
		),
	)
}

type ApplyPromoRequest struct {
	Code string `json:"code"`
}

func (r *ApplyPromoRequest) Normalize() {
	r.Code = strings.ToUpper(strings.TrimSpace(r.Code))
}

func (r ApplyPromoRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Code,
			validation.Required.Error("code is required"),
			validation.Length(1, 50).Error("code must be at most 50 characters"),
		),
	)
}
