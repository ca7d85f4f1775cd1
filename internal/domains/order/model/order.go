package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =====================================================
// ORDER ENTITY
// =====================================================

// Order is immutable once placed. Money fields are snapshots taken at checkout.
type Order struct {
	ID       uuid.UUID `json:"id"`
	UserID   uuid.UUID `json:"user_id"`
	FullName string    `json:"full_name"`
	Phone    string    `json:"phone"`
	Address  string    `json:"address"`

	// Amounts
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	DeliveryCost   decimal.Decimal `json:"delivery_cost"`
	FreeShipping   bool            `json:"free_shipping"`
	TotalPrice     decimal.Decimal `json:"total_price"`

	// Promotion (PromoCodeID is set only when the code was redeemed)
	PromoCodeID *uuid.UUID `json:"promo_code_id,omitempty"`
	PromoCode   *string    `json:"promo_code,omitempty"`

	CreatedAt time.Time `json:"created_at"`

	Items []OrderItem `json:"items,omitempty"`
}

// =====================================================
// ORDER ITEM ENTITY
// =====================================================

// OrderItem snapshots the product name and price. ProductID goes nil if the product is deleted.
type OrderItem struct {
	ID          uuid.UUID       `json:"id"`
	OrderID     uuid.UUID       `json:"order_id"`
	ProductID   *uuid.UUID      `json:"product_id,omitempty"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

func NewOrderItem(productID uuid.UUID, name string, unitPrice decimal.Decimal, quantity int) OrderItem {
	id := productID
	return OrderItem{
		ID:          uuid.New(),
		ProductID:   &id,
		ProductName: name,
		UnitPrice:   unitPrice,
		Quantity:    quantity,
		LineTotal:   unitPrice.Mul(decimal.NewFromInt(int64(quantity))),
	}
}

// Subtotal sums the line totals.
func Subtotal(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal)
	}
	return total
}
