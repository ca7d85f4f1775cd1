package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"grocery-backend/internal/domains/cart/model"
	"grocery-backend/internal/domains/cart/repository"
	promoModel "grocery-backend/internal/domains/promotion/model"
	"grocery-backend/internal/shared/apperror"
	"grocery-backend/pkg/logger"
)

type cartService struct {
	repo    repository.CartRepository
	catalog ProductCatalog
	promos  PromoEvaluator
}

func NewCartService(repo repository.CartRepository, catalog ProductCatalog, promos PromoEvaluator) ServiceInterface {
	return &cartService{
		repo:    repo,
		catalog: catalog,
		promos:  promos,
	}
}

// ============================================================
// READ
// ============================================================

// GetCart never creates a cart, an owner without one sees an empty cart.
func (s *cartService) GetCart(ctx context.Context, owner model.Owner) (*model.CartResponse, error) {
	cart, err := s.repo.FindByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return emptyResponse(), nil
	}
	return s.buildResponse(ctx, cart)
}

// ============================================================
// ITEMS
// ============================================================

func (s *cartService) AddItem(ctx context.Context, owner model.Owner, req *model.AddItemRequest) (*model.CartResponse, error) {
	// ========== STEP 1: Validate ==========
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// ========== STEP 2: Product must exist (404 otherwise) ==========
	if _, err := s.catalog.GetProduct(ctx, req.ProductID); err != nil {
		return nil, err
	}

	// ========== STEP 3: Upsert the line ==========
	cart, err := s.repo.GetOrCreate(ctx, owner)
	if err != nil {
		return nil, err
	}

	item, err := s.repo.AddItem(ctx, cart.ID, req.ProductID, req.Quantity)
	if err != nil {
		return nil, err
	}

	logger.Info("cart item added", map[string]interface{}{
		"owner":      owner.String(),
		"product_id": req.ProductID.String(),
		"quantity":   item.Quantity,
	})

	return s.buildResponse(ctx, cart)
}

func (s *cartService) UpdateItem(ctx context.Context, owner model.Owner, productID uuid.UUID, req *model.UpdateItemRequest) (*model.CartResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	cart, err := s.repo.FindByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, model.ErrCartItemNotFound
	}

	if *req.Quantity == 0 {
		err = s.repo.RemoveItem(ctx, cart.ID, productID)
	} else {
		err = s.repo.SetItemQuantity(ctx, cart.ID, productID, *req.Quantity)
	}
	if err != nil {
		return nil, err
	}

	return s.buildResponse(ctx, cart)
}

func (s *cartService) RemoveItem(ctx context.Context, owner model.Owner, productID uuid.UUID) (*model.CartResponse, error) {
	cart, err := s.repo.FindByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, model.ErrCartItemNotFound
	}

	if err := s.repo.RemoveItem(ctx, cart.ID, productID); err != nil {
		return nil, err
	}

	return s.buildResponse(ctx, cart)
}

func (s *cartService) Clear(ctx context.Context, owner model.Owner) error {
	cart, err := s.repo.FindByOwner(ctx, owner)
	if err != nil || cart == nil {
		return err
	}
	return s.repo.Clear(ctx, cart.ID)
}

// ============================================================
// PROMO CODE
// ============================================================

// ApplyPromo stores the code on the cart after checking it against the current subtotal.
// A code whose minimum is not met yet is stored anyway: it starts working once the
// shopper adds enough items. Every other rejection is returned and nothing is stored.
func (s *cartService) ApplyPromo(ctx context.Context, owner model.Owner, req *model.ApplyPromoRequest) (*model.CartResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	cart, err := s.repo.FindByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, model.ErrCartEmpty
	}

	lines, err := s.priceLines(ctx, cart.ID)
	if err != nil {
		return nil, err
	}
	subtotal, count := model.Subtotal(lines)
	if count == 0 {
		return nil, model.ErrCartEmpty
	}

	if _, err := s.promos.Evaluate(ctx, req.Code, subtotal, s.promos.DeliveryCost()); err != nil {
		if !errors.Is(err, promoModel.ErrPromoMinOrderNotMet) {
			return nil, err
		}
	}

	if err := s.repo.SetPromoCode(ctx, cart.ID, &req.Code); err != nil {
		return nil, err
	}
	cart.PromoCode = &req.Code

	logger.Info("promo code applied to cart", map[string]interface{}{
		"owner": owner.String(),
		"code":  req.Code,
	})

	return s.respond(ctx, cart, lines)
}

func (s *cartService) RemovePromo(ctx context.Context, owner model.Owner) (*model.CartResponse, error) {
	cart, err := s.repo.FindByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return emptyResponse(), nil
	}

	if cart.PromoCode != nil {
		if err := s.repo.SetPromoCode(ctx, cart.ID, nil); err != nil {
			return nil, err
		}
		cart.PromoCode = nil
	}

	return s.buildResponse(ctx, cart)
}

// ============================================================
// LOGIN / CHECKOUT
// ============================================================

func (s *cartService) MergeSessionCart(ctx context.Context, sessionID string, userID uuid.UUID) error {
	if sessionID == "" {
		return nil
	}

	if err := s.repo.MergeSessionIntoUser(ctx, sessionID, userID); err != nil {
		return err
	}

	logger.Info("session cart merged", map[string]interface{}{"user_id": userID.String()})
	return nil
}

// LoadForCheckout returns the locked cart and its lines, or ErrCartEmpty.
func (s *cartService) LoadForCheckout(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*model.Cart, []*model.CartItem, error) {
	cart, err := s.repo.FindByUserTx(ctx, tx, userID)
	if err != nil {
		return nil, nil, err
	}
	if cart == nil {
		return nil, nil, model.ErrCartEmpty
	}

	items, err := s.repo.ListItemsTx(ctx, tx, cart.ID)
	if err != nil {
		return nil, nil, err
	}
	if len(items) == 0 {
		return nil, nil, model.ErrCartEmpty
	}
	return cart, items, nil
}

func (s *cartService) ClearTx(ctx context.Context, tx pgx.Tx, cartID uuid.UUID) error {
	return s.repo.ClearTx(ctx, tx, cartID)
}

// ============================================================
// SUMMARY
// ============================================================

func (s *cartService) buildResponse(ctx context.Context, cart *model.Cart) (*model.CartResponse, error) {
	lines, err := s.priceLines(ctx, cart.ID)
	if err != nil {
		return nil, err
	}
	return s.respond(ctx, cart, lines)
}

func (s *cartService) respond(ctx context.Context, cart *model.Cart, lines []model.LineItem) (*model.CartResponse, error) {
	summary, err := s.summarize(ctx, cart, lines)
	if err != nil {
		return nil, err
	}
	return &model.CartResponse{ID: cart.ID, Items: lines, Summary: summary}, nil
}

// priceLines prices every item at the product's current price.
// Lines whose product disappeared are skipped.
func (s *cartService) priceLines(ctx context.Context, cartID uuid.UUID) ([]model.LineItem, error) {
	items, err := s.repo.ListItems(ctx, cartID)
	if err != nil {
		return nil, err
	}

	lines := make([]model.LineItem, 0, len(items))
	if len(items) == 0 {
		return lines, nil
	}

	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}

	products, err := s.catalog.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	for _, item := range items {
		p, ok := products[item.ProductID]
		if !ok {
			continue
		}
		lines = append(lines, model.NewLineItem(p.ID, p.Name, p.ImageURL, p.Price, item.Quantity))
	}
	return lines, nil
}

// summarize runs the applied code through the engine in preview mode.
// A code that no longer applies shows its reason and leaves the totals alone.
func (s *cartService) summarize(ctx context.Context, cart *model.Cart, lines []model.LineItem) (model.Summary, error) {
	subtotal, count := model.Subtotal(lines)

	summary := model.Summary{
		ItemsCount:     count,
		Subtotal:       subtotal,
		DiscountAmount: decimal.Zero,
		DeliveryCost:   decimal.Zero,
		Total:          decimal.Zero,
		PromoCode:      cart.PromoCode,
	}
	if count == 0 {
		return summary, nil
	}

	delivery := s.promos.DeliveryCost()
	summary.DeliveryCost = delivery
	summary.Total = subtotal.Add(delivery)

	if cart.PromoCode == nil {
		return summary, nil
	}

	eval, err := s.promos.Evaluate(ctx, *cart.PromoCode, subtotal, delivery)
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			summary.PromoMessage = appErr.Message
			return summary, nil
		}
		return summary, err
	}

	summary.DiscountAmount = eval.DiscountAmount
	summary.FreeShipping = eval.FreeShipping
	summary.Total = eval.FinalAmount()
	summary.PromoApplied = true
	summary.PromoMessage = eval.Description
	return summary, nil
}

func emptyResponse() *model.CartResponse {
	return &model.CartResponse{
		Items: []model.LineItem{},
		Summary: model.Summary{
			Subtotal:       decimal.Zero,
			DiscountAmount: decimal.Zero,
			DeliveryCost:   decimal.Zero,
			Total:          decimal.Zero,
		},
	}
}
