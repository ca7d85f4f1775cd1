package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DiscountType selects how a promo code reduces the order.
type DiscountType string

const (
	DiscountTypePercentage   DiscountType = "percentage"
	DiscountTypeFixed        DiscountType = "fixed"
	DiscountTypeFreeShipping DiscountType = "free_shipping"
)

func (t DiscountType) IsValid() bool {
	switch t {
	case DiscountTypePercentage, DiscountTypeFixed, DiscountTypeFreeShipping:
		return true
	}
	return false
}

// PromoCode is a redeemable discount code.
//
// DiscountPercentage is set iff DiscountType is percentage,
// DiscountAmount iff fixed. MaxDiscountAmount only caps percentage codes.
// UsageLimit nil means unlimited. TimesUsed only ever grows.
type PromoCode struct {
	ID                 uuid.UUID        `json:"id"`
	Code               string           `json:"code"`
	Description        string           `json:"description"`
	DiscountType       DiscountType     `json:"discount_type"`
	DiscountPercentage *decimal.Decimal `json:"discount_percentage,omitempty"`
	DiscountAmount     *decimal.Decimal `json:"discount_amount,omitempty"`
	MaxDiscountAmount  *decimal.Decimal `json:"max_discount_amount,omitempty"`
	MinimumOrderAmount decimal.Decimal  `json:"minimum_order_amount"`
	UsageLimit         *int             `json:"usage_limit,omitempty"`
	TimesUsed          int              `json:"times_used"`
	ValidFrom          *time.Time       `json:"valid_from,omitempty"`
	ValidUntil         *time.Time       `json:"valid_until,omitempty"`
	IsActive           bool             `json:"is_active"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// PromoState is derived from the stored fields, never persisted.
type PromoState string

const (
	StatePending   PromoState = "PENDING"
	StateLive      PromoState = "LIVE"
	StateExhausted PromoState = "EXHAUSTED"
	StateExpired   PromoState = "EXPIRED"
	StateDisabled  PromoState = "DISABLED"
)

// State derives the lifecycle state at now.
// Terminal states win: EXPIRED > EXHAUSTED > DISABLED > PENDING > LIVE.
func (p *PromoCode) State(now time.Time) PromoState {
	switch {
	case p.ValidUntil != nil && now.After(*p.ValidUntil):
		return StateExpired
	case p.IsExhausted():
		return StateExhausted
	case !p.IsActive:
		return StateDisabled
	case p.ValidFrom != nil && now.Before(*p.ValidFrom):
		return StatePending
	default:
		return StateLive
	}
}

func (p *PromoCode) IsExhausted() bool {
	return p.UsageLimit != nil && p.TimesUsed >= *p.UsageLimit
}

// RemainingUses is nil for unlimited codes.
func (p *PromoCode) RemainingUses() *int {
	if p.UsageLimit == nil {
		return nil
	}
	remaining := *p.UsageLimit - p.TimesUsed
	if remaining < 0 {
		remaining = 0
	}
	return &remaining
}

// PromoCodeUsage is one immutable redemption ledger row.
type PromoCodeUsage struct {
	ID             uuid.UUID       `json:"id"`
	PromoCodeID    uuid.UUID       `json:"promo_code_id"`
	OrderID        uuid.UUID       `json:"order_id"`
	UserID         *uuid.UUID      `json:"user_id,omitempty"`
	OrderAmount    decimal.Decimal `json:"order_amount"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	UsedAt         time.Time       `json:"used_at"`
}

// UsageStats aggregates the ledger of one code.
type UsageStats struct {
	TotalUses        int             `json:"total_uses"`
	UniqueUsers      int             `json:"unique_users"`
	TotalDiscount    decimal.Decimal `json:"total_discount"`
	TotalOrderAmount decimal.Decimal `json:"total_order_amount"`
	AverageDiscount  decimal.Decimal `json:"average_discount"`
	FirstUsedAt      *time.Time      `json:"first_used_at,omitempty"`
	LastUsedAt       *time.Time      `json:"last_used_at,omitempty"`
}
