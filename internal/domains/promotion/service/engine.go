package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"grocery-backend/internal/domains/promotion/model"
	"grocery-backend/pkg/metrics"
)

// UsageStore is the slice of the repository the engine needs to redeem a code.
type UsageStore interface {
	// IncrementUsage bumps times_used only while the code is active and under its limit.
	// Any reason other than ReasonOK means no row matched.
	IncrementUsage(ctx context.Context, tx pgx.Tx, promoID uuid.UUID) (timesUsed int, reason model.Reason, err error)
	CreateUsage(ctx context.Context, tx pgx.Tx, usage *model.PromoCodeUsage) error
}

// DiscountResult is the outcome of CalculateDiscount.
type DiscountResult struct {
	Amount       decimal.Decimal
	FreeShipping bool
	Description  string
	MinimumMet   bool
}

// Engine evaluates and redeems promo codes.
// Preview and checkout go through the same CheckEligibility and CalculateDiscount.
type Engine struct {
	store UsageStore
	now   func() time.Time
}

func NewEngine(store UsageStore) *Engine {
	return &Engine{store: store, now: time.Now}
}

func (e *Engine) Now() time.Time {
	return e.now()
}

// ===================================
// ELIGIBILITY
// ===================================

// CheckEligibility runs the checks in a fixed order and returns the first failure.
func (e *Engine) CheckEligibility(promo *model.PromoCode, now time.Time) (bool, model.Reason) {
	// Step 1: kill switch
	if !promo.IsActive {
		return false, model.ReasonInactive
	}

	// Step 2: window start
	if promo.ValidFrom != nil && now.Before(*promo.ValidFrom) {
		return false, model.ReasonNotYetActive
	}

	// Step 3: window end
	if promo.ValidUntil != nil && now.After(*promo.ValidUntil) {
		return false, model.ReasonExpired
	}

	// Step 4: usage limit
	if promo.IsExhausted() {
		return false, model.ReasonLimitReached
	}

	return true, model.ReasonOK
}

// ===================================
// CALCULATION
// ===================================

// CalculateDiscount computes what the code takes off orderAmount.
// deliveryCost does not change the discount, it is only echoed in descriptions.
func (e *Engine) CalculateDiscount(promo *model.PromoCode, orderAmount, deliveryCost decimal.Decimal) DiscountResult {
	if orderAmount.LessThan(promo.MinimumOrderAmount) {
		return DiscountResult{
			Amount:      decimal.Zero,
			Description: fmt.Sprintf("minimum order amount not met: %s", promo.MinimumOrderAmount.String()),
		}
	}

	var result DiscountResult
	result.MinimumMet = true

	switch promo.DiscountType {
	case model.DiscountTypePercentage:
		pct := decimalOrZero(promo.DiscountPercentage)
		amount := orderAmount.Mul(pct).Div(decimal.NewFromInt(100))
		if promo.MaxDiscountAmount != nil && amount.GreaterThan(*promo.MaxDiscountAmount) {
			amount = *promo.MaxDiscountAmount
		}
		result.Amount = amount.Round(2)
		result.Description = fmt.Sprintf("%s%% off", pct.String())
		if promo.MaxDiscountAmount != nil {
			result.Description += fmt.Sprintf(" (up to %s)", promo.MaxDiscountAmount.StringFixed(2))
		}

	case model.DiscountTypeFixed:
		amount := decimal.Min(decimalOrZero(promo.DiscountAmount), orderAmount)
		result.Amount = amount.Round(2)
		result.Description = fmt.Sprintf("%s off your order", result.Amount.StringFixed(2))

	case model.DiscountTypeFreeShipping:
		result.Amount = decimal.Zero
		result.FreeShipping = true
		if deliveryCost.IsPositive() {
			result.Description = fmt.Sprintf("free shipping (saves %s)", deliveryCost.StringFixed(2))
		} else {
			result.Description = "free shipping"
		}
	}

	if promo.Description != "" {
		result.Description = promo.Description
	}

	return result
}

// FinalAmount = orderAmount - discount + deliveryCost, delivery waived on free shipping.
func FinalAmount(orderAmount, discount, deliveryCost decimal.Decimal, freeShipping bool) decimal.Decimal {
	total := orderAmount.Sub(discount)
	if !freeShipping {
		total = total.Add(deliveryCost)
	}
	return total
}

// Evaluate is eligibility followed by calculation.
// Returns the reason's error when ineligible, and ErrPromoMinOrderNotMet (with the
// engine's message) when the minimum is not reached.
func (e *Engine) Evaluate(promo *model.PromoCode, orderAmount, deliveryCost decimal.Decimal) (*model.Evaluation, error) {
	ok, reason := e.CheckEligibility(promo, e.now())
	metrics.PromoEvaluations.WithLabelValues(reason.String()).Inc()
	if !ok {
		return nil, model.ErrorForReason(reason)
	}

	result := e.CalculateDiscount(promo, orderAmount, deliveryCost)
	if !result.MinimumMet {
		return nil, model.ErrPromoMinOrderNotMet.
			WithMessage(result.Description).
			WithDetails(map[string]interface{}{
				"minimum_order_amount": promo.MinimumOrderAmount.String(),
				"order_amount":         orderAmount.String(),
			})
	}

	return &model.Evaluation{
		Promo:          promo,
		OrderAmount:    orderAmount,
		DeliveryCost:   deliveryCost,
		DiscountAmount: result.Amount,
		FreeShipping:   result.FreeShipping,
		Description:    result.Description,
	}, nil
}

// ===================================
// COMMIT
// ===================================

// Commit redeems an evaluation inside the caller's transaction.
// The conditional increment comes first; if it matches no row the usage row is never written.
func (e *Engine) Commit(ctx context.Context, tx pgx.Tx, eval *model.Evaluation, orderID uuid.UUID, userID *uuid.UUID) (*model.PromoCodeUsage, error) {
	_, reason, err := e.store.IncrementUsage(ctx, tx, eval.Promo.ID)
	if err != nil {
		metrics.PromoCommits.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("increment promo usage: %w", err)
	}
	switch reason {
	case model.ReasonOK:
	case model.ReasonInactive:
		metrics.PromoCommits.WithLabelValues("deactivated").Inc()
		return nil, model.ErrPromoDeactivated
	default:
		metrics.PromoCommits.WithLabelValues("limit_reached").Inc()
		return nil, model.ErrPromoRedemptionLost
	}

	usage := &model.PromoCodeUsage{
		ID:             uuid.New(),
		PromoCodeID:    eval.Promo.ID,
		OrderID:        orderID,
		UserID:         userID,
		OrderAmount:    eval.OrderAmount,
		DiscountAmount: eval.DiscountAmount,
		UsedAt:         e.now(),
	}
	if err := e.store.CreateUsage(ctx, tx, usage); err != nil {
		metrics.PromoCommits.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("record promo usage: %w", err)
	}

	metrics.PromoCommits.WithLabelValues("ok").Inc()
	return usage, nil
}

// IsIneligible reports whether err is one of the promo rejections a shopper can see
// (eligibility, minimum, lookup), as opposed to an infrastructure failure.
func IsIneligible(err error) bool {
	for _, target := range []error{
		model.ErrPromoNotFound,
		model.ErrPromoInactive,
		model.ErrPromoNotStarted,
		model.ErrPromoExpired,
		model.ErrPromoLimitReached,
		model.ErrPromoMinOrderNotMet,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func decimalOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
