package model

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"grocery-backend/internal/domains/user"
	"grocery-backend/internal/shared/utils"
)

// =====================================================
// CHECKOUT REQUEST
// =====================================================

// CheckoutRequest places an order from the caller's cart.
// Blank phone and address fall back to the saved settings, a missing promo code to the cart's code.
type CheckoutRequest struct {
	FullName  string  `json:"full_name"`
	Phone     string  `json:"phone"`
	Address   string  `json:"address"`
	PromoCode *string `json:"promo_code"`
}

func (r *CheckoutRequest) Normalize() {
	r.FullName = strings.TrimSpace(r.FullName)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Address = strings.TrimSpace(r.Address)
	if r.PromoCode != nil {
		code := utils.NormalizeCode(*r.PromoCode)
		if code == "" {
			r.PromoCode = nil
		} else {
			r.PromoCode = &code
		}
	}
}

// ApplyDefaults fills blank contact fields from the user's settings.
func (r *CheckoutRequest) ApplyDefaults(settings *user.Settings) {
	if settings == nil {
		return
	}
	if r.Phone == "" && settings.DefaultPhone != nil {
		r.Phone = *settings.DefaultPhone
	}
	if r.Address == "" && settings.DefaultAddress != nil {
		r.Address = *settings.DefaultAddress
	}
}

func (r CheckoutRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FullName,
			validation.Required.Error("full_name is required"),
			validation.Length(1, 100).Error("full_name must be at most 100 characters"),
		),
		validation.Field(&r.Phone,
			validation.Required.Error("phone is required"),
			validation.Match(user.PhonePattern()).Error("phone is not a valid phone number"),
		),
		validation.Field(&r.Address,
			validation.Required.Error("address is required"),
			validation.Length(1, 500).Error("address must be at most 500 characters"),
		),
		validation.Field(&r.PromoCode,
			validation.Length(1, 50).Error("promo_code must be at most 50 characters"),
		),
	)
}

// =====================================================
// LIST RESPONSES
// =====================================================

// OrderSummary is one row of an order history listing.
type OrderSummary struct {
	Order
	ItemsCount int `json:"items_count"`
}
