package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"grocery-backend/internal/domains/promotion/model"
)

// PromoCodeRepository is the data access of promo codes and their usage ledger.
type PromoCodeRepository interface {
	// Read operations
	FindByID(ctx context.Context, id uuid.UUID) (*model.PromoCode, error)
	FindByCode(ctx context.Context, code string) (*model.PromoCode, error)
	FindByCodeTx(ctx context.Context, tx pgx.Tx, code string) (*model.PromoCode, error)
	List(ctx context.Context, filter model.ListFilter, now time.Time) ([]*model.PromoCode, int, error)

	// Write operations
	Create(ctx context.Context, promo *model.PromoCode) error
	Update(ctx context.Context, promo *model.PromoCode) error
	UpdateStatus(ctx context.Context, id uuid.UUID, isActive bool) error
	Delete(ctx context.Context, id uuid.UUID) error

	// Usage tracking
	IncrementUsage(ctx context.Context, tx pgx.Tx, id uuid.UUID) (int, model.Reason, error)
	CreateUsage(ctx context.Context, tx pgx.Tx, usage *model.PromoCodeUsage) error
	ListUsages(ctx context.Context, promoID uuid.UUID, page, limit int) ([]*model.PromoCodeUsage, int, error)
	GetUsageStats(ctx context.Context, promoID uuid.UUID) (*model.UsageStats, error)
	CountUsages(ctx context.Context, promoID uuid.UUID) (int, error)

	// Utility
	CheckCodeExists(ctx context.Context, code string, excludeID *uuid.UUID) (bool, error)
}
