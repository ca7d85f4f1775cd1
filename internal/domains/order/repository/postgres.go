package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"grocery-backend/internal/domains/order/model"
	"grocery-backend/internal/shared/utils"
)

const orderColumns = `
	o.id, o.user_id, o.full_name, o.phone, o.address,
	o.subtotal, o.discount_amount, o.delivery_cost, o.free_shipping, o.total_price,
	o.promo_code_id, o.promo_code, o.created_at`

// summaryColumns appends the item count to orderColumns.
const summaryColumns = orderColumns + `,
	(SELECT COUNT(*) FROM order_items oi WHERE oi.order_id = o.id)`

type postgresOrderRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresOrderRepository creates a new PostgreSQL order repository
func NewPostgresOrderRepository(pool *pgxpool.Pool) OrderRepository {
	return &postgresOrderRepository{pool: pool}
}

func scanOrder(row pgx.Row, extra ...interface{}) (*model.Order, error) {
	var o model.Order
	dest := []interface{}{
		&o.ID, &o.UserID, &o.FullName, &o.Phone, &o.Address,
		&o.Subtotal, &o.DiscountAmount, &o.DeliveryCost, &o.FreeShipping, &o.TotalPrice,
		&o.PromoCodeID, &o.PromoCode, &o.CreatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &o, nil
}

func scanSummaries(rows pgx.Rows) ([]model.OrderSummary, error) {
	defer rows.Close()

	summaries := make([]model.OrderSummary, 0)
	for rows.Next() {
		var count int
		o, err := scanOrder(rows, &count)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		summaries = append(summaries, model.OrderSummary{Order: *o, ItemsCount: count})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}
	return summaries, nil
}

// =====================================================
// CREATE ORDER
// =====================================================

func (r *postgresOrderRepository) CreateTx(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		INSERT INTO orders (
			user_id, full_name, phone, address,
			subtotal, discount_amount, delivery_cost, free_shipping, total_price,
			promo_code_id, promo_code
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at
	`

	err := tx.QueryRow(ctx, query,
		order.UserID,
		order.FullName,
		order.Phone,
		order.Address,
		order.Subtotal,
		order.DiscountAmount,
		order.DeliveryCost,
		order.FreeShipping,
		order.TotalPrice,
		order.PromoCodeID,
		order.PromoCode,
	).Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (r *postgresOrderRepository) CreateItemsTx(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, items []model.OrderItem) error {
	batch := &pgx.Batch{}
	query := `
		INSERT INTO order_items (id, order_id, product_id, product_name, unit_price, quantity, line_total)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	for _, item := range items {
		batch.Queue(query,
			item.ID,
			orderID,
			item.ProductID,
			item.ProductName,
			item.UnitPrice,
			item.Quantity,
			item.LineTotal,
		)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(items); i++ {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to create order item %d: %w", i, err)
		}
	}

	return nil
}

// =====================================================
// GET ORDER
// =====================================================

func (r *postgresOrderRepository) FindByIDForUser(ctx context.Context, orderID, userID uuid.UUID) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders o WHERE o.id = $1 AND o.user_id = $2`

	o, err := scanOrder(r.pool.QueryRow(ctx, query, orderID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return o, nil
}

func (r *postgresOrderRepository) ListItems(ctx context.Context, orderID uuid.UUID) ([]model.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, product_name, unit_price, quantity, line_total
		FROM order_items
		WHERE order_id = $1
		ORDER BY product_name
	`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order items: %w", err)
	}
	defer rows.Close()

	items := make([]model.OrderItem, 0)
	for rows.Next() {
		var item model.OrderItem
		if err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.ProductName,
			&item.UnitPrice,
			&item.Quantity,
			&item.LineTotal,
		); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}
	return items, nil
}

// =====================================================
// LIST ORDERS
// =====================================================

func (r *postgresOrderRepository) ListByUser(ctx context.Context, userID uuid.UUID, page utils.Pagination) ([]model.OrderSummary, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	query := `SELECT ` + summaryColumns + `
		FROM orders o
		WHERE o.user_id = $1
		ORDER BY o.created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, userID, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}

	orders, err := scanSummaries(rows)
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *postgresOrderRepository) ListByUserAndProduct(ctx context.Context, userID, productID uuid.UUID) ([]model.OrderSummary, error) {
	query := `SELECT ` + summaryColumns + `
		FROM orders o
		WHERE o.user_id = $1
		  AND EXISTS (SELECT 1 FROM order_items oi WHERE oi.order_id = o.id AND oi.product_id = $2)
		ORDER BY o.created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list product orders: %w", err)
	}
	return scanSummaries(rows)
}

func (r *postgresOrderRepository) ListAll(ctx context.Context, page utils.Pagination) ([]model.OrderSummary, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	query := `SELECT ` + summaryColumns + `
		FROM orders o
		ORDER BY o.created_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}

	orders, err := scanSummaries(rows)
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}
