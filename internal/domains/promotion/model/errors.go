package model

import (
	"net/http"

	"grocery-backend/internal/shared/apperror"
)

const (
	// Lookup (404)
	ErrCodePromoNotFound = "PROMO_NOT_FOUND"

	// Eligibility (400)
	ErrCodePromoInactive     = "PROMO_INACTIVE"
	ErrCodePromoNotStarted   = "PROMO_NOT_STARTED"
	ErrCodePromoExpired      = "PROMO_EXPIRED"
	ErrCodePromoLimitReached = "PROMO_LIMIT_REACHED"

	// Computation no-op (400)
	ErrCodePromoMinOrderNotMet = "PROMO_MIN_ORDER_NOT_MET"

	// Admin operations
	ErrCodePromoDuplicateCode = "PROMO_DUPLICATE_CODE"
	ErrCodePromoInUse         = "PROMO_IN_USE"
	ErrCodePromoFrozen        = "PROMO_DISCOUNT_FROZEN"
)

var (
	ErrPromoNotFound = apperror.New(ErrCodePromoNotFound, "promo code not found", http.StatusNotFound)

	ErrPromoInactive     = apperror.New(ErrCodePromoInactive, "promo code is not active", http.StatusBadRequest)
	ErrPromoNotStarted   = apperror.New(ErrCodePromoNotStarted, "promo code is not valid yet", http.StatusBadRequest)
	ErrPromoExpired      = apperror.New(ErrCodePromoExpired, "promo code has expired", http.StatusBadRequest)
	ErrPromoLimitReached = apperror.New(ErrCodePromoLimitReached, "promo code usage limit has been reached", http.StatusBadRequest)

	// ErrPromoRedemptionLost is returned when the conditional increment at checkout matched no row.
	ErrPromoRedemptionLost = apperror.New(ErrCodePromoLimitReached, "promo code usage limit was reached while placing the order", http.StatusConflict)
	// ErrPromoDeactivated is the same miss when an admin switched the code off mid-checkout.
	ErrPromoDeactivated = apperror.New(ErrCodePromoInactive, "promo code was deactivated while placing the order", http.StatusConflict)

	ErrPromoMinOrderNotMet = apperror.New(ErrCodePromoMinOrderNotMet, "minimum order amount not met", http.StatusBadRequest)

	ErrPromoDuplicateCode = apperror.New(ErrCodePromoDuplicateCode, "a promo code with this code already exists", http.StatusConflict)
	ErrPromoInUse         = apperror.New(ErrCodePromoInUse, "promo code has been redeemed and cannot be deleted, deactivate it instead", http.StatusConflict)
	ErrPromoFrozen        = apperror.New(ErrCodePromoFrozen, "the discount of a redeemed promo code cannot be changed", http.StatusConflict)
)

// ErrorForReason maps an eligibility failure onto its AppError. OK maps to nil.
func ErrorForReason(reason Reason) *apperror.AppError {
	switch reason {
	case ReasonInactive:
		return ErrPromoInactive
	case ReasonNotYetActive:
		return ErrPromoNotStarted
	case ReasonExpired:
		return ErrPromoExpired
	case ReasonLimitReached:
		return ErrPromoLimitReached
	default:
		return nil
	}
}
