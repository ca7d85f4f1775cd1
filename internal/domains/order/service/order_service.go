package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	cartModel "grocery-backend/internal/domains/cart/model"
	"grocery-backend/internal/domains/order/model"
	"grocery-backend/internal/domains/order/repository"
	promoModel "grocery-backend/internal/domains/promotion/model"
	promoService "grocery-backend/internal/domains/promotion/service"
	"grocery-backend/internal/shared/utils"
	"grocery-backend/pkg/database"
	"grocery-backend/pkg/logger"
	"grocery-backend/pkg/metrics"
)

// =====================================================
// ORDER SERVICE IMPLEMENTATION
// =====================================================
type orderService struct {
	tx       database.TxRunner
	repo     repository.OrderRepository
	carts    CartSource
	products ProductPricer
	promos   PromoRedeemer
	settings SettingsProvider
}

// NewOrderService creates a new order service
func NewOrderService(
	tx database.TxRunner,
	repo repository.OrderRepository,
	carts CartSource,
	products ProductPricer,
	promos PromoRedeemer,
	settings SettingsProvider,
) OrderService {
	return &orderService{
		tx:       tx,
		repo:     repo,
		carts:    carts,
		products: products,
		promos:   promos,
		settings: settings,
	}
}

// =====================================================
// CHECKOUT
// =====================================================

// Checkout works like this:
//
//	Validate contact details (saved settings fill the blanks)
//	In one transaction:
//	    Lock the cart and snapshot its lines
//	    Re-check and recalculate the promo code
//	    Insert the order
//	    Redeem the code (conditional increment + ledger row)
//	    Insert the items, clear the cart
//
// Any failure rolls everything back.
func (s *orderService) Checkout(ctx context.Context, userID uuid.UUID, req *model.CheckoutRequest) (*model.Order, error) {
	// ==================== STEP 1: VALIDATE REQUEST ====================
	req.Normalize()
	if req.Phone == "" || req.Address == "" {
		settings, err := s.settings.GetSettings(ctx, userID)
		if err != nil {
			return nil, err
		}
		req.ApplyDefaults(settings)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var order *model.Order
	err := s.tx.WithTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		order, err = s.placeOrder(ctx, tx, userID, req)
		return err
	})
	if err != nil {
		logger.Warn("checkout failed", map[string]interface{}{
			"user_id": userID.String(),
			"error":   err.Error(),
		})
		return nil, err
	}

	// ==================== STEP 7: AFTER COMMIT ====================
	metrics.OrdersPlaced.Inc()
	logger.Info("order placed", map[string]interface{}{
		"order_id":    order.ID.String(),
		"user_id":     userID.String(),
		"items":       len(order.Items),
		"total_price": order.TotalPrice.String(),
		"promo_code":  order.PromoCodeID != nil,
	})

	return order, nil
}

func (s *orderService) placeOrder(ctx context.Context, tx pgx.Tx, userID uuid.UUID, req *model.CheckoutRequest) (*model.Order, error) {
	// ==================== STEP 2: LOCK CART + ITEMS ====================
	cart, cartItems, err := s.carts.LoadForCheckout(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	// ==================== STEP 3: PRICE SNAPSHOT ====================
	items, err := s.priceItems(ctx, cartItems)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, cartModel.ErrCartEmpty
	}
	subtotal := model.Subtotal(items)

	order := &model.Order{
		UserID:         userID,
		FullName:       req.FullName,
		Phone:          req.Phone,
		Address:        req.Address,
		Subtotal:       subtotal,
		DiscountAmount: decimal.Zero,
		DeliveryCost:   s.promos.DeliveryCost(),
		TotalPrice:     subtotal.Add(s.promos.DeliveryCost()),
	}

	// ==================== STEP 4: PROMO CODE (request wins over cart) ====================
	code, fromCart := req.PromoCode, false
	if code == nil && cart.PromoCode != nil {
		code, fromCart = cart.PromoCode, true
	}

	var eval *promoModel.Evaluation
	if code != nil {
		eval, err = s.promos.EvaluateTx(ctx, tx, *code, subtotal, order.DeliveryCost)
		switch {
		case err != nil && fromCart && promoService.IsIneligible(err):
			// The cart view already shows this code as not applying.
			logger.Info("checkout ignoring stale cart promo code", map[string]interface{}{
				"user_id": userID.String(),
				"code":    *code,
				"reason":  err.Error(),
			})
			eval = nil
		case err != nil:
			return nil, err
		}
	}

	if eval != nil {
		order.PromoCode = code
		order.DiscountAmount = eval.DiscountAmount
		order.FreeShipping = eval.FreeShipping
		order.TotalPrice = eval.FinalAmount()
		if eval.HasEffect() {
			promoID := eval.Promo.ID
			order.PromoCodeID = &promoID
		}
	}

	// ==================== STEP 5: INSERT ORDER, THEN REDEEM ====================
	if err := s.repo.CreateTx(ctx, tx, order); err != nil {
		return nil, err
	}

	if order.PromoCodeID != nil {
		uid := userID
		if _, err := s.promos.Redeem(ctx, tx, eval, order.ID, &uid); err != nil {
			return nil, err
		}
	}

	// ==================== STEP 6: ITEMS + CLEAR CART ====================
	for i := range items {
		items[i].OrderID = order.ID
	}
	if err := s.repo.CreateItemsTx(ctx, tx, order.ID, items); err != nil {
		return nil, err
	}
	if err := s.carts.ClearTx(ctx, tx, cart.ID); err != nil {
		return nil, err
	}

	order.Items = items
	return order, nil
}

// priceItems snapshots current names and prices. Lines whose product is gone are dropped,
// the same way the cart view hides them.
func (s *orderService) priceItems(ctx context.Context, cartItems []*cartModel.CartItem) ([]model.OrderItem, error) {
	ids := make([]uuid.UUID, 0, len(cartItems))
	for _, item := range cartItems {
		ids = append(ids, item.ProductID)
	}

	products, err := s.products.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]model.OrderItem, 0, len(cartItems))
	for _, item := range cartItems {
		product, ok := products[item.ProductID]
		if !ok {
			logger.Warn("dropping vanished product from checkout", map[string]interface{}{
				"product_id": item.ProductID.String(),
			})
			continue
		}
		items = append(items, model.NewOrderItem(product.ID, product.Name, product.Price, item.Quantity))
	}
	return items, nil
}

// =====================================================
// READS
// =====================================================

func (s *orderService) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*model.Order, error) {
	order, err := s.repo.FindByIDForUser(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.ListItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return order, nil
}

func (s *orderService) ListOrders(ctx context.Context, userID uuid.UUID, page utils.Pagination) ([]model.OrderSummary, int, error) {
	return s.repo.ListByUser(ctx, userID, page)
}

func (s *orderService) ListProductOrders(ctx context.Context, userID, productID uuid.UUID) ([]model.OrderSummary, error) {
	return s.repo.ListByUserAndProduct(ctx, userID, productID)
}

func (s *orderService) ListAllOrders(ctx context.Context, page utils.Pagination) ([]model.OrderSummary, int, error) {
	return s.repo.ListAll(ctx, page)
}
