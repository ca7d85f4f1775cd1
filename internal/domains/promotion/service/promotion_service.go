package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"grocery-backend/internal/domains/promotion/model"
	"grocery-backend/internal/domains/promotion/repository"
	"grocery-backend/pkg/logger"
)

type promotionService struct {
	repo         repository.PromoCodeRepository
	engine       *Engine
	deliveryCost decimal.Decimal
}

// NewPromotionService wires the engine to the repository.
// deliveryCost is used whenever a caller does not quote one.
func NewPromotionService(repo repository.PromoCodeRepository, deliveryCost decimal.Decimal) ServiceInterface {
	return &promotionService{
		repo:         repo,
		engine:       NewEngine(repo),
		deliveryCost: deliveryCost,
	}
}

func (s *promotionService) DeliveryCost() decimal.Decimal {
	return s.deliveryCost
}

// -------------------------------------------------------------------
// PREVIEW
// -------------------------------------------------------------------

// Preview answers "what would this code do to my order", without redeeming.
//
// Flow:
// 1. Validate input (no lookup for malformed requests)
// 2. Lookup by normalized code (404 when unknown)
// 3. Eligibility + calculation
func (s *promotionService) Preview(ctx context.Context, req *model.PreviewRequest) (*model.PreviewResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	deliveryCost := s.deliveryCost
	if req.DeliveryCost != nil {
		deliveryCost = *req.DeliveryCost
	}

	eval, err := s.Evaluate(ctx, req.Code, req.OrderAmount, deliveryCost)
	if err != nil {
		return nil, err
	}

	return eval.ToPreviewResponse(), nil
}

// Evaluate looks the code up and runs the engine on the given amounts.
func (s *promotionService) Evaluate(ctx context.Context, code string, orderAmount, deliveryCost decimal.Decimal) (*model.Evaluation, error) {
	promo, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return s.engine.Evaluate(promo, orderAmount, deliveryCost)
}

// -------------------------------------------------------------------
// CHECKOUT
// -------------------------------------------------------------------

// EvaluateTx re-reads the code inside the order transaction and re-runs the engine.
// Whatever the shopper previewed earlier is not trusted.
func (s *promotionService) EvaluateTx(ctx context.Context, tx pgx.Tx, code string, orderAmount, deliveryCost decimal.Decimal) (*model.Evaluation, error) {
	promo, err := s.repo.FindByCodeTx(ctx, tx, code)
	if err != nil {
		return nil, err
	}
	return s.engine.Evaluate(promo, orderAmount, deliveryCost)
}

// Redeem commits a code against an order that already exists in tx.
func (s *promotionService) Redeem(ctx context.Context, tx pgx.Tx, eval *model.Evaluation, orderID uuid.UUID, userID *uuid.UUID) (*model.PromoCodeUsage, error) {
	usage, err := s.engine.Commit(ctx, tx, eval, orderID, userID)
	if err != nil {
		if errors.Is(err, model.ErrPromoRedemptionLost) || errors.Is(err, model.ErrPromoDeactivated) {
			logger.Warn("promo code lost the redemption race", map[string]interface{}{
				"code":     eval.Promo.Code,
				"order_id": orderID.String(),
			})
		}
		return nil, err
	}

	logger.Info("promo code redeemed", map[string]interface{}{
		"code":            eval.Promo.Code,
		"order_id":        orderID.String(),
		"discount_amount": eval.DiscountAmount.String(),
		"free_shipping":   eval.FreeShipping,
	})
	return usage, nil
}

// -------------------------------------------------------------------
// ADMIN
// -------------------------------------------------------------------

func (s *promotionService) CreatePromoCode(ctx context.Context, req *model.CreatePromoCodeRequest) (*model.PromoCodeView, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	exists, err := s.repo.CheckCodeExists(ctx, req.Code, nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, model.ErrPromoDuplicateCode
	}

	promo := req.ToPromoCode()
	if err := promo.ValidateDefinition(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, promo); err != nil {
		return nil, err
	}

	logger.Info("promo code created", map[string]interface{}{
		"promo_id":      promo.ID.String(),
		"code":          promo.Code,
		"discount_type": string(promo.DiscountType),
	})
	return model.NewPromoCodeView(promo, s.engine.Now()), nil
}

// UpdatePromoCode patches a code. The discount definition is frozen once redeemed.
func (s *promotionService) UpdatePromoCode(ctx context.Context, id uuid.UUID, req *model.UpdatePromoCodeRequest) (*model.PromoCodeView, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	promo, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.ChangesDiscount() && promo.TimesUsed > 0 {
		return nil, model.ErrPromoFrozen
	}

	req.Apply(promo)
	if err := promo.ValidateDefinition(); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, promo); err != nil {
		return nil, err
	}

	return model.NewPromoCodeView(promo, s.engine.Now()), nil
}

func (s *promotionService) GetPromoCode(ctx context.Context, id uuid.UUID) (*model.PromoCodeDetail, error) {
	promo, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	stats, err := s.repo.GetUsageStats(ctx, id)
	if err != nil {
		return nil, err
	}

	return &model.PromoCodeDetail{
		PromoCodeView: model.NewPromoCodeView(promo, s.engine.Now()),
		Stats:         stats,
	}, nil
}

func (s *promotionService) ListPromoCodes(ctx context.Context, filter model.ListFilter) ([]*model.PromoCodeView, int, error) {
	if err := filter.Validate(); err != nil {
		return nil, 0, err
	}

	now := s.engine.Now()
	promos, total, err := s.repo.List(ctx, filter, now)
	if err != nil {
		return nil, 0, err
	}

	views := make([]*model.PromoCodeView, 0, len(promos))
	for _, p := range promos {
		views = append(views, model.NewPromoCodeView(p, now))
	}
	return views, total, nil
}

func (s *promotionService) UpdateStatus(ctx context.Context, id uuid.UUID, isActive bool) (*model.PromoCodeView, error) {
	if err := s.repo.UpdateStatus(ctx, id, isActive); err != nil {
		return nil, err
	}

	promo, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	logger.Info("promo code status changed", map[string]interface{}{
		"promo_id":  id.String(),
		"is_active": isActive,
	})
	return model.NewPromoCodeView(promo, s.engine.Now()), nil
}

// DeletePromoCode only removes codes that were never redeemed.
func (s *promotionService) DeletePromoCode(ctx context.Context, id uuid.UUID) error {
	used, err := s.repo.CountUsages(ctx, id)
	if err != nil {
		return err
	}
	if used > 0 {
		return model.ErrPromoInUse
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	logger.Info("promo code deleted", map[string]interface{}{"promo_id": id.String()})
	return nil
}

func (s *promotionService) GetUsageHistory(ctx context.Context, id uuid.UUID, page, limit int) (*model.UsageHistoryResponse, error) {
	promo, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	usages, total, err := s.repo.ListUsages(ctx, id, page, limit)
	if err != nil {
		return nil, fmt.Errorf("usage history: %w", err)
	}

	return &model.UsageHistoryResponse{
		PromoCodeID: promo.ID,
		Code:        promo.Code,
		Usages:      usages,
		Total:       total,
		Page:        page,
		Limit:       limit,
	}, nil
}
