package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"grocery-backend/internal/domains/promotion/model"
	"grocery-backend/internal/shared/utils"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

const promoColumns = `
	id, code, description,
	discount_type, discount_percentage, discount_amount, max_discount_amount,
	minimum_order_amount, usage_limit, times_used,
	valid_from, valid_until, is_active,
	created_at, updated_at`

// PostgresRepository implements PromoCodeRepository on pgxpool.
type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) PromoCodeRepository {
	return &PostgresRepository{db: db}
}

func scanPromo(row pgx.Row) (*model.PromoCode, error) {
	var p model.PromoCode
	err := row.Scan(
		&p.ID,
		&p.Code,
		&p.Description,
		&p.DiscountType,
		&p.DiscountPercentage, // nullable
		&p.DiscountAmount,     // nullable
		&p.MaxDiscountAmount,  // nullable
		&p.MinimumOrderAmount,
		&p.UsageLimit, // nullable
		&p.TimesUsed,
		&p.ValidFrom,  // nullable
		&p.ValidUntil, // nullable
		&p.IsActive,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// -------------------------------------------------------------------
// READ OPERATIONS
// -------------------------------------------------------------------

func (r *PostgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.PromoCode, error) {
	query := `SELECT ` + promoColumns + ` FROM promo_codes WHERE id = $1`

	p, err := scanPromo(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrPromoNotFound
		}
		return nil, fmt.Errorf("find promo code by id: %w", err)
	}
	return p, nil
}

// FindByCode looks the code up without filtering on state; eligibility is the engine's job.
func (r *PostgresRepository) FindByCode(ctx context.Context, code string) (*model.PromoCode, error) {
	query := `SELECT ` + promoColumns + ` FROM promo_codes WHERE code = $1`

	p, err := scanPromo(r.db.QueryRow(ctx, query, utils.NormalizeCode(code)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrPromoNotFound
		}
		return nil, fmt.Errorf("find promo code by code: %w", err)
	}
	return p, nil
}

// FindByCodeTx reads the code inside the checkout transaction.
func (r *PostgresRepository) FindByCodeTx(ctx context.Context, tx pgx.Tx, code string) (*model.PromoCode, error) {
	query := `SELECT ` + promoColumns + ` FROM promo_codes WHERE code = $1`

	p, err := scanPromo(tx.QueryRow(ctx, query, utils.NormalizeCode(code)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrPromoNotFound
		}
		return nil, fmt.Errorf("find promo code by code (tx): %w", err)
	}
	return p, nil
}

// List filters on the derived state. The CASE order mirrors PromoCode.State.
func (r *PostgresRepository) List(ctx context.Context, filter model.ListFilter, now time.Time) ([]*model.PromoCode, int, error) {
	pagination := utils.Pagination{Page: filter.Page, Limit: filter.Limit}

	whereClauses := []string{}
	args := []interface{}{}
	argIndex := 1

	const stateExpr = `
		CASE
			WHEN valid_until IS NOT NULL AND valid_until < %[1]s THEN 'EXPIRED'
			WHEN usage_limit IS NOT NULL AND times_used >= usage_limit THEN 'EXHAUSTED'
			WHEN NOT is_active THEN 'DISABLED'
			WHEN valid_from IS NOT NULL AND valid_from > %[1]s THEN 'PENDING'
			ELSE 'LIVE'
		END`

	if filter.State != "" {
		whereClauses = append(whereClauses, fmt.Sprintf(stateExpr, fmt.Sprintf("$%d", argIndex))+fmt.Sprintf(" = $%d", argIndex+1))
		args = append(args, now, string(filter.State))
		argIndex += 2
	}

	if search := strings.TrimSpace(filter.Search); search != "" {
		whereClauses = append(whereClauses, fmt.Sprintf(
			"(code LIKE $%d OR LOWER(description) LIKE $%d)",
			argIndex, argIndex+1,
		))
		args = append(args,
			"%"+utils.EscapeLike(strings.ToUpper(search))+"%",
			"%"+utils.EscapeLike(strings.ToLower(search))+"%",
		)
		argIndex += 2
	}

	whereSQL := ""
	if len(whereClauses) > 0 {
		whereSQL = "WHERE " + strings.Join(whereClauses, " AND ")
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM promo_codes %s", whereSQL)
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count promo codes: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM promo_codes
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, promoColumns, whereSQL, argIndex, argIndex+1)
	args = append(args, pagination.Limit, pagination.Offset())

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list promo codes: %w", err)
	}
	defer rows.Close()

	promos := make([]*model.PromoCode, 0)
	for rows.Next() {
		p, err := scanPromo(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan promo code: %w", err)
		}
		promos = append(promos, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate promo codes: %w", err)
	}

	return promos, total, nil
}

// -------------------------------------------------------------------
// WRITE OPERATIONS
// -------------------------------------------------------------------

func (r *PostgresRepository) Create(ctx context.Context, promo *model.PromoCode) error {
	if promo.ID == uuid.Nil {
		promo.ID = uuid.New()
	}

	query := `
		INSERT INTO promo_codes (
			id, code, description,
			discount_type, discount_percentage, discount_amount, max_discount_amount,
			minimum_order_amount, usage_limit, valid_from, valid_until, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING times_used, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		promo.ID,
		promo.Code,
		promo.Description,
		promo.DiscountType,
		promo.DiscountPercentage,
		promo.DiscountAmount,
		promo.MaxDiscountAmount,
		promo.MinimumOrderAmount,
		promo.UsageLimit,
		promo.ValidFrom,
		promo.ValidUntil,
		promo.IsActive,
	).Scan(&promo.TimesUsed, &promo.CreatedAt, &promo.UpdatedAt)
	if err != nil {
		if isPgError(err, pgUniqueViolation) {
			return model.ErrPromoDuplicateCode
		}
		return fmt.Errorf("create promo code: %w", err)
	}

	return nil
}

// Update rewrites the definition. times_used is never touched here.
func (r *PostgresRepository) Update(ctx context.Context, promo *model.PromoCode) error {
	query := `
		UPDATE promo_codes SET
			description = $2,
			discount_type = $3,
			discount_percentage = $4,
			discount_amount = $5,
			max_discount_amount = $6,
			minimum_order_amount = $7,
			usage_limit = $8,
			valid_from = $9,
			valid_until = $10,
			is_active = $11,
			updated_at = NOW()
		WHERE id = $1
		RETURNING times_used, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		promo.ID,
		promo.Description,
		promo.DiscountType,
		promo.DiscountPercentage,
		promo.DiscountAmount,
		promo.MaxDiscountAmount,
		promo.MinimumOrderAmount,
		promo.UsageLimit,
		promo.ValidFrom,
		promo.ValidUntil,
		promo.IsActive,
	).Scan(&promo.TimesUsed, &promo.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrPromoNotFound
		}
		return fmt.Errorf("update promo code: %w", err)
	}

	return nil
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, id uuid.UUID, isActive bool) error {
	query := `UPDATE promo_codes SET is_active = $2, updated_at = NOW() WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id, isActive)
	if err != nil {
		return fmt.Errorf("update promo code status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrPromoNotFound
	}
	return nil
}

// Delete hard-deletes a code that was never redeemed. The ledger FK restricts the rest.
func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM promo_codes WHERE id = $1`, id)
	if err != nil {
		if isPgError(err, pgForeignKeyViolation) {
			return model.ErrPromoInUse
		}
		return fmt.Errorf("delete promo code: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrPromoNotFound
	}
	return nil
}

// -------------------------------------------------------------------
// USAGE TRACKING
// -------------------------------------------------------------------

// IncrementUsage is the conditional increment that closes the usage-limit race.
// Row-level locking serializes concurrent checkouts on the same code; the loser
// re-evaluates the WHERE clause against the committed counter and matches nothing.
// When nothing matches, the returned reason says whether the code was switched off
// (or deleted) or ran out of uses.
func (r *PostgresRepository) IncrementUsage(ctx context.Context, tx pgx.Tx, id uuid.UUID) (int, model.Reason, error) {
	query := `
		UPDATE promo_codes
		SET times_used = times_used + 1, updated_at = NOW()
		WHERE id = $1
		  AND is_active
		  AND (usage_limit IS NULL OR times_used < usage_limit)
		RETURNING times_used
	`

	var timesUsed int
	err := tx.QueryRow(ctx, query, id).Scan(&timesUsed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			reason, err := r.incrementMissReason(ctx, tx, id)
			return 0, reason, err
		}
		return 0, "", fmt.Errorf("increment promo usage: %w", err)
	}

	return timesUsed, model.ReasonOK, nil
}

func (r *PostgresRepository) incrementMissReason(ctx context.Context, tx pgx.Tx, id uuid.UUID) (model.Reason, error) {
	var isActive bool
	err := tx.QueryRow(ctx, `SELECT is_active FROM promo_codes WHERE id = $1`, id).Scan(&isActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ReasonInactive, nil
		}
		return "", fmt.Errorf("inspect promo after failed increment: %w", err)
	}
	if !isActive {
		return model.ReasonInactive, nil
	}
	return model.ReasonLimitReached, nil
}

func (r *PostgresRepository) CreateUsage(ctx context.Context, tx pgx.Tx, usage *model.PromoCodeUsage) error {
	query := `
		INSERT INTO promo_code_usages (
			id, promo_code_id, order_id, user_id, order_amount, discount_amount, used_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := tx.Exec(ctx, query,
		usage.ID,
		usage.PromoCodeID,
		usage.OrderID,
		usage.UserID,
		usage.OrderAmount,
		usage.DiscountAmount,
		usage.UsedAt,
	)
	if err != nil {
		return fmt.Errorf("insert promo usage: %w", err)
	}

	return nil
}

func (r *PostgresRepository) ListUsages(ctx context.Context, promoID uuid.UUID, page, limit int) ([]*model.PromoCodeUsage, int, error) {
	pagination := utils.Pagination{Page: page, Limit: limit}

	var total int
	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM promo_code_usages WHERE promo_code_id = $1`, promoID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count promo usages: %w", err)
	}

	query := `
		SELECT id, promo_code_id, order_id, user_id, order_amount, discount_amount, used_at
		FROM promo_code_usages
		WHERE promo_code_id = $1
		ORDER BY used_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, promoID, pagination.Limit, pagination.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list promo usages: %w", err)
	}
	defer rows.Close()

	usages := make([]*model.PromoCodeUsage, 0)
	for rows.Next() {
		var u model.PromoCodeUsage
		if err := rows.Scan(
			&u.ID,
			&u.PromoCodeID,
			&u.OrderID,
			&u.UserID,
			&u.OrderAmount,
			&u.DiscountAmount,
			&u.UsedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan promo usage: %w", err)
		}
		usages = append(usages, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate promo usages: %w", err)
	}

	return usages, total, nil
}

func (r *PostgresRepository) GetUsageStats(ctx context.Context, promoID uuid.UUID) (*model.UsageStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(DISTINCT user_id),
			COALESCE(SUM(discount_amount), 0),
			COALESCE(SUM(order_amount), 0),
			COALESCE(ROUND(AVG(discount_amount), 2), 0),
			MIN(used_at),
			MAX(used_at)
		FROM promo_code_usages
		WHERE promo_code_id = $1
	`

	var s model.UsageStats
	err := r.db.QueryRow(ctx, query, promoID).Scan(
		&s.TotalUses,
		&s.UniqueUsers,
		&s.TotalDiscount,
		&s.TotalOrderAmount,
		&s.AverageDiscount,
		&s.FirstUsedAt,
		&s.LastUsedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("get promo usage stats: %w", err)
	}

	return &s, nil
}

func (r *PostgresRepository) CountUsages(ctx context.Context, promoID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM promo_code_usages WHERE promo_code_id = $1`, promoID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count promo usages: %w", err)
	}
	return count, nil
}

// -------------------------------------------------------------------
// UTILITY
// -------------------------------------------------------------------

func (r *PostgresRepository) CheckCodeExists(ctx context.Context, code string, excludeID *uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM promo_codes WHERE code = $1 AND ($2::uuid IS NULL OR id <> $2))`

	var exists bool
	if err := r.db.QueryRow(ctx, query, utils.NormalizeCode(code), excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check promo code exists: %w", err)
	}
	return exists, nil
}

func isPgError(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
