package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"grocery-backend/internal/domains/promotion/model"
)

type ServiceInterface interface {
	// Shopper side (read-only)
	Preview(ctx context.Context, req *model.PreviewRequest) (*model.PreviewResponse, error)
	Evaluate(ctx context.Context, code string, orderAmount, deliveryCost decimal.Decimal) (*model.Evaluation, error)
	DeliveryCost() decimal.Decimal

	// Checkout side (inside the order transaction)
	EvaluateTx(ctx context.Context, tx pgx.Tx, code string, orderAmount, deliveryCost decimal.Decimal) (*model.Evaluation, error)
	Redeem(ctx context.Context, tx pgx.Tx, eval *model.Evaluation, orderID uuid.UUID, userID *uuid.UUID) (*model.PromoCodeUsage, error)

	// Admin methods
	CreatePromoCode(ctx context.Context, req *model.CreatePromoCodeRequest) (*model.PromoCodeView, error)
	UpdatePromoCode(ctx context.Context, id uuid.UUID, req *model.UpdatePromoCodeRequest) (*model.PromoCodeView, error)
	GetPromoCode(ctx context.Context, id uuid.UUID) (*model.PromoCodeDetail, error)
	ListPromoCodes(ctx context.Context, filter model.ListFilter) ([]*model.PromoCodeView, int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, isActive bool) (*model.PromoCodeView, error)
	DeletePromoCode(ctx context.Context, id uuid.UUID) error
	GetUsageHistory(ctx context.Context, id uuid.UUID, page, limit int) (*model.UsageHistoryResponse, error)
	ExportUsageReport(ctx context.Context, id uuid.UUID) (*model.UsageReport, error)
}
