package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"grocery-backend/internal/domains/cart/model"
	"grocery-backend/pkg/database"
)

// querier is the part of *pgxpool.Pool and pgx.Tx the cart queries need.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const cartColumns = `id, user_id, session_id, promo_code, created_at, updated_at`

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) CartRepository {
	return &postgresRepository{pool: pool}
}

func scanCart(row pgx.Row) (*model.Cart, error) {
	var cart model.Cart
	err := row.Scan(
		&cart.ID,
		&cart.UserID,
		&cart.SessionID,
		&cart.PromoCode,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// ============================================================
// CARTS
// ============================================================

func (r *postgresRepository) GetOrCreate(ctx context.Context, owner model.Owner) (*model.Cart, error) {
	return getOrCreate(ctx, r.pool, owner)
}

// getOrCreate upserts on the owner's unique key so two first requests
// from the same owner end up with the same cart.
func getOrCreate(ctx context.Context, q querier, owner model.Owner) (*model.Cart, error) {
	if !owner.Valid() {
		return nil, model.ErrCartOwnerMissing
	}

	var query string
	var key interface{}
	if owner.UserID != nil {
		query = `
			INSERT INTO carts (user_id) VALUES ($1)
			ON CONFLICT (user_id) DO UPDATE SET updated_at = carts.updated_at
			RETURNING ` + cartColumns
		key = *owner.UserID
	} else {
		query = `
			INSERT INTO carts (session_id) VALUES ($1)
			ON CONFLICT (session_id) DO UPDATE SET updated_at = carts.updated_at
			RETURNING ` + cartColumns
		key = owner.SessionID
	}

	cart, err := scanCart(q.QueryRow(ctx, query, key))
	if err != nil {
		return nil, fmt.Errorf("get or create cart: %w", err)
	}
	return cart, nil
}

func (r *postgresRepository) FindByOwner(ctx context.Context, owner model.Owner) (*model.Cart, error) {
	if !owner.Valid() {
		return nil, model.ErrCartOwnerMissing
	}

	var (
		cart *model.Cart
		err  error
	)
	if owner.UserID != nil {
		cart, err = scanCart(r.pool.QueryRow(ctx, `SELECT `+cartColumns+` FROM carts WHERE user_id = $1`, *owner.UserID))
	} else {
		cart, err = scanCart(r.pool.QueryRow(ctx, `SELECT `+cartColumns+` FROM carts WHERE session_id = $1`, owner.SessionID))
	}

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find cart: %w", err)
	}
	return cart, nil
}

func (r *postgresRepository) SetPromoCode(ctx context.Context, cartID uuid.UUID, code *string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE carts SET promo_code = $2, updated_at = NOW() WHERE id = $1`,
		cartID, code,
	)
	if err != nil {
		return fmt.Errorf("set cart promo code: %w", err)
	}
	return nil
}

// ============================================================
// ITEMS
// ============================================================

func (r *postgresRepository) ListItems(ctx context.Context, cartID uuid.UUID) ([]*model.CartItem, error) {
	return listItems(ctx, r.pool, cartID)
}

func listItems(ctx context.Context, q querier, cartID uuid.UUID) ([]*model.CartItem, error) {
	rows, err := q.Query(ctx, `
		SELECT id, cart_id, product_id, quantity, created_at, updated_at
		FROM cart_items
		WHERE cart_id = $1
		ORDER BY created_at, id
	`, cartID)
	if err != nil {
		return nil, fmt.Errorf("list cart items: %w", err)
	}
	defer rows.Close()

	items := make([]*model.CartItem, 0)
	for rows.Next() {
		var item model.CartItem
		if err := rows.Scan(
			&item.ID,
			&item.CartID,
			&item.ProductID,
			&item.Quantity,
			&item.CreatedAt,
			&item.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cart items: %w", err)
	}
	return items, nil
}

// AddItem is a single upsert so concurrent adds of the same product both count.
func (r *postgresRepository) AddItem(ctx context.Context, cartID, productID uuid.UUID, quantity int) (*model.CartItem, error) {
	query := `
		INSERT INTO cart_items (cart_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (cart_id, product_id) DO UPDATE
			SET quantity = LEAST(cart_items.quantity + EXCLUDED.quantity, $4),
			    updated_at = NOW()
		RETURNING id, cart_id, product_id, quantity, created_at, updated_at
	`

	var item model.CartItem
	err := r.pool.QueryRow(ctx, query, cartID, productID, quantity, model.MaxItemQuantity).Scan(
		&item.ID,
		&item.CartID,
		&item.ProductID,
		&item.Quantity,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("add cart item: %w", err)
	}

	r.touch(ctx, cartID)
	return &item, nil
}

func (r *postgresRepository) SetItemQuantity(ctx context.Context, cartID, productID uuid.UUID, quantity int) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE cart_items SET quantity = $3, updated_at = NOW()
		WHERE cart_id = $1 AND product_id = $2
	`, cartID, productID, quantity)
	if err != nil {
		return fmt.Errorf("set cart item quantity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCartItemNotFound
	}

	r.touch(ctx, cartID)
	return nil
}

func (r *postgresRepository) RemoveItem(ctx context.Context, cartID, productID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2`,
		cartID, productID,
	)
	if err != nil {
		return fmt.Errorf("remove cart item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCartItemNotFound
	}

	r.touch(ctx, cartID)
	return nil
}

func (r *postgresRepository) Clear(ctx context.Context, cartID uuid.UUID) error {
	return database.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		return clearCart(ctx, tx, cartID)
	})
}

func clearCart(ctx context.Context, q querier, cartID uuid.UUID) error {
	if _, err := q.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return fmt.Errorf("clear cart items: %w", err)
	}
	if _, err := q.Exec(ctx, `UPDATE carts SET promo_code = NULL, updated_at = NOW() WHERE id = $1`, cartID); err != nil {
		return fmt.Errorf("reset cart: %w", err)
	}
	return nil
}

// touch bumps updated_at. Failing to do so never fails the item write.
func (r *postgresRepository) touch(ctx context.Context, cartID uuid.UUID) {
	_, _ = r.pool.Exec(ctx, `UPDATE carts SET updated_at = NOW() WHERE id = $1`, cartID)
}

// ============================================================
// MERGE ON LOGIN
// ============================================================

// MergeSessionIntoUser works like this:
//
//	Lock the anonymous cart (nothing to do if there is none)
//	Get or create the user's cart
//	Add every anonymous line to it, summing quantities up to the cap
//	Keep the user's promo code, else adopt the anonymous one
//	Delete the anonymous cart (items cascade)
func (r *postgresRepository) MergeSessionIntoUser(ctx context.Context, sessionID string, userID uuid.UUID) error {
	return database.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		guest, err := scanCart(tx.QueryRow(ctx,
			`SELECT `+cartColumns+` FROM carts WHERE session_id = $1 FOR UPDATE`, sessionID))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil
			}
			return fmt.Errorf("lock session cart: %w", err)
		}

		target, err := getOrCreate(ctx, tx, model.UserOwner(userID))
		if err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO cart_items (cart_id, product_id, quantity)
			SELECT $1, product_id, quantity FROM cart_items WHERE cart_id = $2
			ON CONFLICT (cart_id, product_id) DO UPDATE
				SET quantity = LEAST(cart_items.quantity + EXCLUDED.quantity, $3),
				    updated_at = NOW()
		`, target.ID, guest.ID, model.MaxItemQuantity); err != nil {
			return fmt.Errorf("merge cart items: %w", err)
		}

		if _, err := tx.Exec(ctx, `
			UPDATE carts SET promo_code = COALESCE(promo_code, $2), updated_at = NOW()
			WHERE id = $1
		`, target.ID, guest.PromoCode); err != nil {
			return fmt.Errorf("merge cart promo code: %w", err)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM carts WHERE id = $1`, guest.ID); err != nil {
			return fmt.Errorf("delete session cart: %w", err)
		}
		return nil
	})
}

// ============================================================
// CHECKOUT (TX)
// ============================================================

// FindByUserTx locks the cart row so two checkouts of the same cart serialize.
func (r *postgresRepository) FindByUserTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*model.Cart, error) {
	cart, err := scanCart(tx.QueryRow(ctx,
		`SELECT `+cartColumns+` FROM carts WHERE user_id = $1 FOR UPDATE`, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("lock user cart: %w", err)
	}
	return cart, nil
}

func (r *postgresRepository) ListItemsTx(ctx context.Context, tx pgx.Tx, cartID uuid.UUID) ([]*model.CartItem, error) {
	return listItems(ctx, tx, cartID)
}

func (r *postgresRepository) ClearTx(ctx context.Context, tx pgx.Tx, cartID uuid.UUID) error {
	return clearCart(ctx, tx, cartID)
}
