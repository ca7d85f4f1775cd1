package model

import (
	"net/http"

	"grocery-backend/internal/shared/apperror"
)

const (
	ErrCodeCartEmpty        = "CART_EMPTY"
	ErrCodeCartItemNotFound = "CART_ITEM_NOT_FOUND"
	ErrCodeCartOwnerMissing = "CART_OWNER_MISSING"
)

var (
	ErrCartEmpty        = apperror.New(ErrCodeCartEmpty, "your cart is empty", http.StatusBadRequest)
	ErrCartItemNotFound = apperror.New(ErrCodeCartItemNotFound, "product is not in your cart", http.StatusNotFound)
	ErrCartOwnerMissing = apperror.New(ErrCodeCartOwnerMissing, "no cart session, enable cookies or sign in", http.StatusBadRequest)
)
