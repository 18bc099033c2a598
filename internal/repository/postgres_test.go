package repository_test

import (
	"context"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/sthaarun/storefront/internal/repository"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/text/currency"
)

// All fixture rows share one currency; a cart and its order must be
// single-currency anyway.
const testCurrency = "NPR"

var testCurrencyUnit = currency.MustParseISO(testCurrency)

// startPostgres runs a disposable Postgres, applies the embedded
// migrations and returns a connection string for it.
func startPostgres(ctx context.Context) (testcontainers.Container, string, error) {
	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("storefront"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, "", fmt.Errorf("postgres.Run: %w", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return container, "", fmt.Errorf("container.ConnectionString: %w", err)
	}

	if err := repository.RunMigrations(connStr); err != nil {
		return container, "", fmt.Errorf("repository.RunMigrations: %w", err)
	}

	return container, connStr, nil
}

func insertProduct(ctx context.Context, pool *pgxpool.Pool, name string) (uuid.UUID, error) {
	var id uuid.UUID

	err := pool.QueryRow(ctx,
		`INSERT INTO products (name) VALUES ($1) RETURNING id`, name,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert products: %w", err)
	}

	return id, nil
}

func insertVariant(ctx context.Context, pool *pgxpool.Pool, productID uuid.UUID, price decimal.Decimal, available int32) (uuid.UUID, error) {
	var id uuid.UUID

	err := pool.QueryRow(ctx,
		`INSERT INTO variants (product_id, sku, price_amount, price_currency, available)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		productID, gofakeit.UUID(), price, testCurrency, available,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert variants: %w", err)
	}

	return id, nil
}

func insertAddress(ctx context.Context, pool *pgxpool.Pool, customerID string, shippingCost decimal.Decimal) (uuid.UUID, error) {
	var id uuid.UUID

	err := pool.QueryRow(ctx,
		`INSERT INTO addresses (customer_id, shipping_cost_amount, shipping_cost_currency)
		 VALUES ($1, $2, $3)
		 RETURNING id`,
		customerID, shippingCost, testCurrency,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert addresses: %w", err)
	}

	return id, nil
}

func variantStock(ctx context.Context, pool *pgxpool.Pool, variantID uuid.UUID) (available, reserved int32, err error) {
	err = pool.QueryRow(ctx,
		`SELECT available, reserved FROM variants WHERE id = $1`, variantID,
	).Scan(&available, &reserved)
	if err != nil {
		return 0, 0, fmt.Errorf("query variants: %w", err)
	}

	return available, reserved, nil
}
