package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/sthaarun/storefront/internal/domain"
	"github.com/sthaarun/storefront/internal/port"
	"golang.org/x/text/currency"
)

type catalogRepository struct {
	db DB
}

func NewCatalog(pool *pgxpool.Pool) port.CatalogRepository {
	return &catalogRepository{db: pool}
}

func NewCatalogWithTx(tx pgx.Tx) port.CatalogRepository {
	return &catalogRepository{db: tx}
}

func (r *catalogRepository) GetVariant(ctx context.Context, variantID uuid.UUID) (domain.Variant, error) {
	const query = `
		SELECT id, product_id, sku, price_amount, price_currency, available, reserved, on_hold
		FROM variants
		WHERE id = $1`

	var (
		v            domain.Variant
		priceAmount  decimal.Decimal
		currencyCode string
	)

	err := r.db.QueryRow(ctx, query, variantID).Scan(
		&v.ID, &v.ProductID, &v.SKU, &priceAmount, &currencyCode,
		&v.Available, &v.Reserved, &v.OnHold,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return v, fmt.Errorf("variants: %w", domain.ErrNotFound)
	}
	if err != nil {
		return v, fmt.Errorf("query variants: %w", err)
	}

	parsedCurrency, err := currency.ParseISO(currencyCode)
	if err != nil {
		return v, fmt.Errorf("currency[%s] is not valid: %w", currencyCode, err)
	}
	v.Price = domain.Money{Amount: priceAmount, Currency: parsedCurrency}

	return v, nil
}

func (r *catalogRepository) GetVariantSnapshots(ctx context.Context, variantIDs []uuid.UUID) (map[uuid.UUID]domain.VariantSnapshot, error) {
	const query = `
		SELECT v.id, v.product_id, p.name
		FROM variants v
		JOIN products p ON p.id = v.product_id
		WHERE v.id = ANY($1)`

	rows, err := r.db.Query(ctx, query, variantIDs)
	if err != nil {
		return nil, fmt.Errorf("query variants: %w", err)
	}
	defer rows.Close()

	snapshots := make(map[uuid.UUID]domain.VariantSnapshot, len(variantIDs))

	for rows.Next() {
		var s domain.VariantSnapshot
		if err := rows.Scan(&s.VariantID, &s.ProductID, &s.Name); err != nil {
			return nil, fmt.Errorf("scan variants: %w", err)
		}
		snapshots[s.VariantID] = s
	}

	return snapshots, rows.Err()
}

// ReserveStock only succeeds when enough stock is available; the guarded
// update makes concurrent checkouts on the same variant serialize instead
// of overselling.
func (r *catalogRepository) ReserveStock(ctx context.Context, variantID uuid.UUID, quantity int32) error {
	const query = `
		UPDATE variants
		SET available = available - $2, reserved = reserved + $2
		WHERE id = $1 AND available >= $2`

	cmdTag, err := r.db.Exec(ctx, query, variantID, quantity)
	if err != nil {
		return fmt.Errorf("update variants: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("variant[%s] x%d: %w", variantID, quantity, domain.ErrInsufficientStock)
	}

	return nil
}

func (r *catalogRepository) ReleaseStock(ctx context.Context, variantID uuid.UUID, quantity int32) error {
	const query = `
		UPDATE variants
		SET available = available + $2, reserved = GREATEST(reserved - $2, 0)
		WHERE id = $1`

	cmdTag, err := r.db.Exec(ctx, query, variantID, quantity)
	if err != nil {
		return fmt.Errorf("update variants: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("variants: %w", domain.ErrNotFound)
	}

	return nil
}
