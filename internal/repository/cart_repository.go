package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/sthaarun/storefront/internal/domain"
	"github.com/sthaarun/storefront/internal/port"
	"golang.org/x/text/currency"
)

// New active carts expire a fixed interval after creation.
const cartTTL = 7 * 24 * time.Hour

type cartRepository struct {
	db DB
}

func NewCart(pool *pgxpool.Pool) port.CartRepository {
	return &cartRepository{db: pool}
}

func NewCartWithTx(tx pgx.Tx) port.CartRepository {
	return &cartRepository{db: tx}
}

func (r *cartRepository) GetActiveCart(ctx context.Context, customerID string) (domain.Cart, bool, error) {
	var c domain.Cart

	cart, found, err := r.getActiveCartHeader(ctx, customerID)
	if err != nil {
		return c, false, fmt.Errorf("getActiveCartHeader: %w", err)
	}
	if !found {
		return c, false, nil
	}

	items, err := r.getCartItems(ctx, cart.ID)
	if err != nil {
		return c, false, fmt.Errorf("getCartItems: %w", err)
	}
	cart.Items = items

	return cart, true, nil
}

func (r *cartRepository) AddItem(ctx context.Context, customerID string, item domain.CartItem) (domain.Cart, error) {
	var c domain.Cart

	cart, found, err := r.getActiveCartHeader(ctx, customerID)
	if err != nil {
		return c, fmt.Errorf("getActiveCartHeader: %w", err)
	}

	if !found {
		cart, err = r.createActiveCart(ctx, customerID, item.Price.Currency.String())
		if err != nil {
			if isUniqueViolation(err) {
				// Lost the first-cart race; the caller retries against the winner's cart.
				return c, fmt.Errorf("createActiveCart: %w", domain.ErrConflict)
			}
			return c, fmt.Errorf("createActiveCart: %w", err)
		}
	}

	const insertItem = `
		INSERT INTO cart_items (id, cart_id, variant_id, quantity, price_amount, price_currency)
		VALUES ($1, $2, $3, $4, $5, $6)`

	if _, err := r.db.Exec(ctx, insertItem,
		item.ID, cart.ID, item.VariantID, item.Quantity,
		item.Price.Amount, item.Price.Currency.String(),
	); err != nil {
		return c, fmt.Errorf("insert cart_items: %w", err)
	}

	cart, err = r.addToTotal(ctx, cart.ID, item.LineTotal().Amount)
	if err != nil {
		return c, fmt.Errorf("addToTotal: %w", err)
	}

	return cart, nil
}

func (r *cartRepository) DeleteItem(ctx context.Context, customerID string, itemID uuid.UUID) (bool, error) {
	const deleteItem = `
		DELETE FROM cart_items ci
		USING carts c
		WHERE ci.id = $2
		  AND ci.cart_id = c.id
		  AND c.customer_id = $1
		  AND c.cart_type = 'active'
		RETURNING ci.cart_id, ci.price_amount, ci.quantity`

	var (
		cartID      uuid.UUID
		priceAmount decimal.Decimal
		quantity    int32
	)

	err := r.db.QueryRow(ctx, deleteItem, customerID, itemID).Scan(&cartID, &priceAmount, &quantity)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("delete cart_items: %w", err)
	}

	lineTotal := priceAmount.Mul(decimal.NewFromInt32(quantity))
	if _, err := r.addToTotal(ctx, cartID, lineTotal.Neg()); err != nil {
		return false, fmt.Errorf("addToTotal: %w", err)
	}

	return true, nil
}

func (r *cartRepository) DeleteCart(ctx context.Context, cartID uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM carts WHERE id = $1`, cartID)
	if err != nil {
		return fmt.Errorf("delete carts: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("delete carts: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *cartRepository) getActiveCartHeader(ctx context.Context, customerID string) (domain.Cart, bool, error) {
	const query = `
		SELECT id, customer_id, cart_type, total_amount, total_currency, expires_at, created_at, updated_at
		FROM carts
		WHERE customer_id = $1 AND cart_type = 'active'`

	cart, err := scanCart(r.db.QueryRow(ctx, query, customerID))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Cart{}, false, nil
	}
	if err != nil {
		return domain.Cart{}, false, err
	}

	return cart, true, nil
}

func (r *cartRepository) createActiveCart(ctx context.Context, customerID, currencyCode string) (domain.Cart, error) {
	const query = `
		INSERT INTO carts (customer_id, cart_type, total_amount, total_currency, expires_at)
		VALUES ($1, 'active', 0, $2, $3)
		RETURNING id, customer_id, cart_type, total_amount, total_currency, expires_at, created_at, updated_at`

	expiresAt := time.Now().UTC().Add(cartTTL)

	return scanCart(r.db.QueryRow(ctx, query, customerID, currencyCode, expiresAt))
}

// addToTotal increments the running total in SQL so concurrent adds on
// the same cart cannot lose updates.
func (r *cartRepository) addToTotal(ctx context.Context, cartID uuid.UUID, delta decimal.Decimal) (domain.Cart, error) {
	const query = `
		UPDATE carts
		SET total_amount = total_amount + $2, updated_at = now()
		WHERE id = $1
		RETURNING id, customer_id, cart_type, total_amount, total_currency, expires_at, created_at, updated_at`

	return scanCart(r.db.QueryRow(ctx, query, cartID, delta))
}

func (r *cartRepository) getCartItems(ctx context.Context, cartID uuid.UUID) ([]domain.CartItem, error) {
	const query = `
		SELECT id, cart_id, variant_id, quantity, price_amount, price_currency, created_at
		FROM cart_items
		WHERE cart_id = $1
		ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, query, cartID)
	if err != nil {
		return nil, fmt.Errorf("query cart_items: %w", err)
	}
	defer rows.Close()

	var items []domain.CartItem

	for rows.Next() {
		var (
			item         domain.CartItem
			priceAmount  decimal.Decimal
			currencyCode string
		)

		if err := rows.Scan(&item.ID, &item.CartID, &item.VariantID, &item.Quantity,
			&priceAmount, &currencyCode, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan cart_items: %w", err)
		}

		parsedCurrency, err := currency.ParseISO(currencyCode)
		if err != nil {
			return nil, fmt.Errorf("currency[%s] is not valid: %w", currencyCode, err)
		}
		item.Price = domain.Money{Amount: priceAmount, Currency: parsedCurrency}

		items = append(items, item)
	}

	return items, rows.Err()
}

func scanCart(row pgx.Row) (domain.Cart, error) {
	var (
		c            domain.Cart
		cartType     string
		totalAmount  decimal.Decimal
		currencyCode string
	)

	if err := row.Scan(&c.ID, &c.CustomerID, &cartType, &totalAmount, &currencyCode,
		&c.ExpiresAt, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return c, err
	}

	parsedType, err := domain.ToCartType(cartType)
	if err != nil {
		return c, fmt.Errorf("domain.ToCartType[%s]: %w", cartType, err)
	}
	c.Type = parsedType

	parsedCurrency, err := currency.ParseISO(currencyCode)
	if err != nil {
		return c, fmt.Errorf("currency[%s] is not valid: %w", currencyCode, err)
	}
	c.Total = domain.Money{Amount: totalAmount, Currency: parsedCurrency}

	return c, nil
}
