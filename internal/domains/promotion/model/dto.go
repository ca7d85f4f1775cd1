package model

import (
	"errors"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"grocery-backend/internal/shared/utils"
)

var (
	codePattern = regexp.MustCompile(`^[A-Z0-9_-]+$`)
	hundred     = decimal.NewFromInt(100)
)

// -------------------------------------------------------------------
// PUBLIC REQUESTS
// -------------------------------------------------------------------

// PreviewRequest asks what a code would do to an order, without redeeming it.
type PreviewRequest struct {
	Code         string           `json:"code"`
	OrderAmount  decimal.Decimal  `json:"order_amount"`
	DeliveryCost *decimal.Decimal `json:"delivery_cost"` // nil = shop default
}

func (r PreviewRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Code,
			validation.Required.Error("promo code is required"),
			validation.Length(1, 50).Error("promo code must be at most 50 characters"),
		),
		validation.Field(&r.OrderAmount,
			utils.DecimalPositive("order amount must be greater than 0"),
		),
		validation.Field(&r.DeliveryCost,
			utils.DecimalMin(decimal.Zero, "delivery cost must not be negative"),
		),
	)
}

func (r *PreviewRequest) Normalize() {
	r.Code = utils.NormalizeCode(r.Code)
}

// -------------------------------------------------------------------
// PUBLIC RESPONSES
// -------------------------------------------------------------------

// PreviewResponse is the data block of POST /promo-codes/preview.
type PreviewResponse struct {
	Code           string          `json:"code"`
	DiscountType   DiscountType    `json:"discount_type"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	OriginalAmount decimal.Decimal `json:"original_amount"`
	DeliveryCost   decimal.Decimal `json:"delivery_cost"`
	FreeShipping   bool            `json:"free_shipping"`
	FinalAmount    decimal.Decimal `json:"final_amount"`
	Description    string          `json:"description"`
}

// Evaluation is a successful eligibility + calculation pass for one code and one order.
// Checkout redeems it, preview only reports it.
type Evaluation struct {
	Promo          *PromoCode
	OrderAmount    decimal.Decimal
	DeliveryCost   decimal.Decimal
	DiscountAmount decimal.Decimal
	FreeShipping   bool
	Description    string
}

// HasEffect reports whether redeeming the code changes the payable amount.
func (e *Evaluation) HasEffect() bool {
	if e.DiscountAmount.IsPositive() {
		return true
	}
	return e.FreeShipping && e.DeliveryCost.IsPositive()
}

// EffectiveDeliveryCost is zero when the code grants free shipping.
func (e *Evaluation) EffectiveDeliveryCost() decimal.Decimal {
	if e.FreeShipping {
		return decimal.Zero
	}
	return e.DeliveryCost
}

// FinalAmount = order - discount + delivery (unless free shipping).
func (e *Evaluation) FinalAmount() decimal.Decimal {
	return e.OrderAmount.Sub(e.DiscountAmount).Add(e.EffectiveDeliveryCost())
}

func (e *Evaluation) ToPreviewResponse() *PreviewResponse {
	return &PreviewResponse{
		Code:           e.Promo.Code,
		DiscountType:   e.Promo.DiscountType,
		DiscountAmount: e.DiscountAmount,
		OriginalAmount: e.OrderAmount,
		DeliveryCost:   e.DeliveryCost,
		FreeShipping:   e.FreeShipping,
		FinalAmount:    e.FinalAmount(),
		Description:    e.Description,
	}
}

// -------------------------------------------------------------------
// ADMIN REQUESTS
// -------------------------------------------------------------------

// CreatePromoCodeRequest creates a new code.
type CreatePromoCodeRequest struct {
	Code               string           `json:"code"`
	Description        string           `json:"description"`
	DiscountType       DiscountType     `json:"discount_type"`
	DiscountPercentage *decimal.Decimal `json:"discount_percentage"`
	DiscountAmount     *decimal.Decimal `json:"discount_amount"`
	MaxDiscountAmount  *decimal.Decimal `json:"max_discount_amount"`
	MinimumOrderAmount *decimal.Decimal `json:"minimum_order_amount"`
	UsageLimit         *int             `json:"usage_limit"`
	ValidFrom          *time.Time       `json:"valid_from"`
	ValidUntil         *time.Time       `json:"valid_until"`
	IsActive           *bool            `json:"is_active"` // default true
}

func (r *CreatePromoCodeRequest) Normalize() {
	r.Code = utils.NormalizeCode(r.Code)
	r.Description = strings.TrimSpace(r.Description)
}

func (r CreatePromoCodeRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Code,
			validation.Required.Error("code is required"),
			validation.Length(3, 50).Error("code must be 3-50 characters"),
			validation.Match(codePattern).Error("code may only contain A-Z, 0-9, '-' and '_'"),
		),
		validation.Field(&r.Description,
			validation.Length(0, 500).Error("description must be at most 500 characters"),
		),
		validation.Field(&r.DiscountType,
			validation.Required.Error("discount_type is required"),
			validation.In(DiscountTypePercentage, DiscountTypeFixed, DiscountTypeFreeShipping).
				Error("discount_type must be one of percentage, fixed, free_shipping"),
		),
		validation.Field(&r.DiscountPercentage,
			validation.When(r.DiscountType == DiscountTypePercentage,
				validation.NotNil.Error("discount_percentage is required for percentage codes"),
			).Else(validation.Nil.Error("discount_percentage is only allowed for percentage codes")),
			utils.DecimalMin(decimal.Zero, "discount_percentage must not be negative"),
			utils.DecimalMax(hundred, "discount_percentage must not exceed 100"),
			utils.DecimalMaxScale(2, "discount_percentage must have at most 2 decimal places"),
		),
		validation.Field(&r.DiscountAmount,
			validation.When(r.DiscountType == DiscountTypeFixed,
				validation.NotNil.Error("discount_amount is required for fixed codes"),
			).Else(validation.Nil.Error("discount_amount is only allowed for fixed codes")),
			utils.DecimalMin(decimal.Zero, "discount_amount must not be negative"),
			utils.DecimalMaxScale(2, "discount_amount must have at most 2 decimal places"),
		),
		validation.Field(&r.MaxDiscountAmount,
			validation.When(r.DiscountType != DiscountTypePercentage,
				validation.Nil.Error("max_discount_amount only applies to percentage codes"),
			),
			utils.DecimalMin(decimal.Zero, "max_discount_amount must not be negative"),
			utils.DecimalMaxScale(2, "max_discount_amount must have at most 2 decimal places"),
		),
		validation.Field(&r.MinimumOrderAmount,
			utils.DecimalMin(decimal.Zero, "minimum_order_amount must not be negative"),
			utils.DecimalMaxScale(2, "minimum_order_amount must have at most 2 decimal places"),
		),
		validation.Field(&r.UsageLimit,
			validation.When(r.UsageLimit != nil, validation.Min(1).Error("usage_limit must be at least 1")),
		),
		validation.Field(&r.ValidUntil,
			validation.By(validWindow(r.ValidFrom)),
		),
	)
}

// ToPromoCode builds the entity for insertion.
func (r CreatePromoCodeRequest) ToPromoCode() *PromoCode {
	isActive := true
	if r.IsActive != nil {
		isActive = *r.IsActive
	}

	minimum := decimal.Zero
	if r.MinimumOrderAmount != nil {
		minimum = *r.MinimumOrderAmount
	}

	return &PromoCode{
		Code:               r.Code,
		Description:        r.Description,
		DiscountType:       r.DiscountType,
		DiscountPercentage: r.DiscountPercentage,
		DiscountAmount:     r.DiscountAmount,
		MaxDiscountAmount:  r.MaxDiscountAmount,
		MinimumOrderAmount: minimum,
		UsageLimit:         r.UsageLimit,
		ValidFrom:          r.ValidFrom,
		ValidUntil:         r.ValidUntil,
		IsActive:           isActive,
	}
}

// UpdatePromoCodeRequest patches an existing code. Nil fields are left unchanged.
// The discount itself (type and value) is frozen once the code has been redeemed.
type UpdatePromoCodeRequest struct {
	Description        *string          `json:"description"`
	DiscountType       *DiscountType    `json:"discount_type"`
	DiscountPercentage *decimal.Decimal `json:"discount_percentage"`
	DiscountAmount     *decimal.Decimal `json:"discount_amount"`
	MaxDiscountAmount  *decimal.Decimal `json:"max_discount_amount"`
	MinimumOrderAmount *decimal.Decimal `json:"minimum_order_amount"`
	UsageLimit         *int             `json:"usage_limit"`
	RemoveUsageLimit   bool             `json:"remove_usage_limit"`
	ValidFrom          *time.Time       `json:"valid_from"`
	ValidUntil         *time.Time       `json:"valid_until"`
	IsActive           *bool            `json:"is_active"`
}

func (r UpdatePromoCodeRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Description,
			validation.When(r.Description != nil, validation.Length(0, 500).Error("description must be at most 500 characters")),
		),
		validation.Field(&r.DiscountType,
			validation.When(r.DiscountType != nil,
				validation.In(DiscountTypePercentage, DiscountTypeFixed, DiscountTypeFreeShipping).
					Error("discount_type must be one of percentage, fixed, free_shipping"),
			),
		),
		validation.Field(&r.DiscountPercentage,
			utils.DecimalMin(decimal.Zero, "discount_percentage must not be negative"),
			utils.DecimalMax(hundred, "discount_percentage must not exceed 100"),
			utils.DecimalMaxScale(2, "discount_percentage must have at most 2 decimal places"),
		),
		validation.Field(&r.DiscountAmount,
			utils.DecimalMin(decimal.Zero, "discount_amount must not be negative"),
			utils.DecimalMaxScale(2, "discount_amount must have at most 2 decimal places"),
		),
		validation.Field(&r.MaxDiscountAmount,
			utils.DecimalMin(decimal.Zero, "max_discount_amount must not be negative"),
			utils.DecimalMaxScale(2, "max_discount_amount must have at most 2 decimal places"),
		),
		validation.Field(&r.MinimumOrderAmount,
			utils.DecimalMin(decimal.Zero, "minimum_order_amount must not be negative"),
			utils.DecimalMaxScale(2, "minimum_order_amount must have at most 2 decimal places"),
		),
		validation.Field(&r.UsageLimit,
			validation.When(r.UsageLimit != nil, validation.Min(1).Error("usage_limit must be at least 1")),
			validation.When(r.RemoveUsageLimit, validation.Nil.Error("usage_limit conflicts with remove_usage_limit")),
		),
		validation.Field(&r.ValidUntil,
			validation.By(validWindow(r.ValidFrom)),
		),
	)
}

// ChangesDiscount reports whether the patch touches the discount definition.
func (r UpdatePromoCodeRequest) ChangesDiscount() bool {
	return r.DiscountType != nil || r.DiscountPercentage != nil || r.DiscountAmount != nil || r.MaxDiscountAmount != nil
}

// Apply merges the patch into promo. The result must be re-validated with ValidateDefinition.
func (r UpdatePromoCodeRequest) Apply(promo *PromoCode) {
	if r.Description != nil {
		promo.Description = strings.TrimSpace(*r.Description)
	}
	if r.DiscountType != nil && *r.DiscountType != promo.DiscountType {
		promo.DiscountType = *r.DiscountType
		promo.DiscountPercentage = nil
		promo.DiscountAmount = nil
		promo.MaxDiscountAmount = nil
	}
	if r.DiscountPercentage != nil {
		promo.DiscountPercentage = r.DiscountPercentage
	}
	if r.DiscountAmount != nil {
		promo.DiscountAmount = r.DiscountAmount
	}
	if r.MaxDiscountAmount != nil {
		promo.MaxDiscountAmount = r.MaxDiscountAmount
	}
	if r.MinimumOrderAmount != nil {
		promo.MinimumOrderAmount = *r.MinimumOrderAmount
	}
	if r.RemoveUsageLimit {
		promo.UsageLimit = nil
	} else if r.UsageLimit != nil {
		promo.UsageLimit = r.UsageLimit
	}
	if r.ValidFrom != nil {
		promo.ValidFrom = r.ValidFrom
	}
	if r.ValidUntil != nil {
		promo.ValidUntil = r.ValidUntil
	}
	if r.IsActive != nil {
		promo.IsActive = *r.IsActive
	}
}

// ValidateDefinition checks the cross-field invariants of a complete code.
func (p *PromoCode) ValidateDefinition() error {
	errs := validation.Errors{}

	switch p.DiscountType {
	case DiscountTypePercentage:
		if p.DiscountPercentage == nil {
			errs["discount_percentage"] = errors.New("discount_percentage is required for percentage codes")
		}
		if p.DiscountAmount != nil {
			errs["discount_amount"] = errors.New("discount_amount is only allowed for fixed codes")
		}
	case DiscountTypeFixed:
		if p.DiscountAmount == nil {
			errs["discount_amount"] = errors.New("discount_amount is required for fixed codes")
		}
		if p.DiscountPercentage != nil {
			errs["discount_percentage"] = errors.New("discount_percentage is only allowed for percentage codes")
		}
		if p.MaxDiscountAmount != nil {
			errs["max_discount_amount"] = errors.New("max_discount_amount only applies to percentage codes")
		}
	case DiscountTypeFreeShipping:
		if p.DiscountPercentage != nil || p.DiscountAmount != nil || p.MaxDiscountAmount != nil {
			errs["discount_type"] = errors.New("free_shipping codes carry no discount value")
		}
	default:
		errs["discount_type"] = errors.New("discount_type must be one of percentage, fixed, free_shipping")
	}

	if p.UsageLimit != nil && *p.UsageLimit < p.TimesUsed {
		errs["usage_limit"] = errors.New("usage_limit must not be below times_used")
	}

	if err := validWindow(p.ValidFrom)(p.ValidUntil); err != nil {
		errs["valid_until"] = err
	}

	return errs.Filter()
}

func validWindow(from *time.Time) validation.RuleFunc {
	return func(value interface{}) error {
		until, _ := value.(*time.Time)
		if from == nil || until == nil {
			return nil
		}
		if !until.After(*from) {
			return errors.New("valid_until must be after valid_from")
		}
		return nil
	}
}

// UpdateStatusRequest toggles the kill switch.
type UpdateStatusRequest struct {
	IsActive *bool `json:"is_active"`
}

func (r UpdateStatusRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.IsActive, validation.NotNil.Error("is_active is required")),
	)
}

// ListFilter filters the admin list.
type ListFilter struct {
	State  PromoState // "" = all
	Search string
	Page   int
	Limit  int
}

func (f ListFilter) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.State,
			validation.In(StatePending, StateLive, StateExhausted, StateExpired, StateDisabled).
				Error("state must be one of PENDING, LIVE, EXHAUSTED, EXPIRED, DISABLED"),
		),
	)
}

// -------------------------------------------------------------------
// ADMIN RESPONSES
// -------------------------------------------------------------------

// PromoCodeView is a code plus its derived fields.
type PromoCodeView struct {
	*PromoCode
	State         PromoState `json:"state"`
	RemainingUses *int       `json:"remaining_uses,omitempty"`
}

func NewPromoCodeView(p *PromoCode, now time.Time) *PromoCodeView {
	return &PromoCodeView{
		PromoCode:     p,
		State:         p.State(now),
		RemainingUses: p.RemainingUses(),
	}
}

// PromoCodeDetail is the admin detail page.
type PromoCodeDetail struct {
	*PromoCodeView
	Stats *UsageStats `json:"stats"`
}

// UsageHistoryResponse is one page of the ledger.
type UsageHistoryResponse struct {
	PromoCodeID uuid.UUID         `json:"promo_code_id"`
	Code        string            `json:"code"`
	Usages      []*PromoCodeUsage `json:"usages"`
	Total       int               `json:"total"`
	Page        int               `json:"page"`
	Limit       int               `json:"limit"`
}

// UsageReport is the ledger of one code as an xlsx workbook.
type UsageReport struct {
	Code     string
	Rows     int
	Workbook *excelize.File
}
