package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	MinItemQuantity = 1
	MaxItemQuantity = 100
)

// Cart belongs to exactly one owner: a registered user or an anonymous session.
type Cart struct {
	ID        uuid.UUID  `json:"id"`
	UserID    *uuid.UUID `json:"user_id,omitempty"`
	SessionID *string    `json:"-"`
	PromoCode *string    `json:"promo_code,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type CartItem struct {
	ID        uuid.UUID `json:"id"`
	CartID    uuid.UUID `json:"cart_id"`
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Owner is the polymorphic cart key. Exactly one side is set.
type Owner struct {
	UserID    *uuid.UUID
	SessionID string
}

func UserOwner(id uuid.UUID) Owner {
	return Owner{UserID: &id}
}

func SessionOwner(sessionID string) Owner {
	return Owner{SessionID: sessionID}
}

func (o Owner) Valid() bool {
	return (o.UserID != nil) != (o.SessionID != "")
}

func (o Owner) IsAnonymous() bool {
	return o.UserID == nil
}

// String is used for log fields only.
func (o Owner) String() string {
	if o.UserID != nil {
		return "user:" + o.UserID.String()
	}
	return "session:" + o.SessionID
}

// ============================================================
// CART VIEW
// ============================================================

// LineItem is a cart item priced at the current product price.
type LineItem struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	ImageURL  *string         `json:"image_url,omitempty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

func NewLineItem(productID uuid.UUID, name string, imageURL *string, unitPrice decimal.Decimal, quantity int) LineItem {
	return LineItem{
		ProductID: productID,
		Name:      name,
		ImageURL:  imageURL,
		UnitPrice: unitPrice,
		Quantity:  quantity,
		LineTotal: unitPrice.Mul(decimal.NewFromInt(int64(quantity))),
	}
}

// Summary is what the shopper would pay right now.
// PromoMessage explains why an applied code gives nothing, when it does.
type Summary struct {
	ItemsCount     int             `json:"items_count"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	DeliveryCost   decimal.Decimal `json:"delivery_cost"`
	FreeShipping   bool            `json:"free_shipping"`
	Total          decimal.Decimal `json:"total"`
	PromoCode      *string         `json:"promo_code,omitempty"`
	PromoApplied   bool            `json:"promo_applied"`
	PromoMessage   string          `json:"promo_message,omitempty"`
}

type CartResponse struct {
	ID      uuid.UUID  `json:"id"`
	Items   []LineItem `json:"items"`
	Summary Summary    `json:"summary"`
}

// Subtotal sums line totals.
func Subtotal(items []LineItem) (decimal.Decimal, int) {
	subtotal := decimal.Zero
	count := 0
	for _, item := range items {
		subtotal = subtotal.Add(item.LineTotal)
		count += item.Quantity
	}
	return subtotal, count
}
