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

type addressRepository struct {
	db DB
}

func NewAddress(pool *pgxpool.Pool) port.AddressRepository {
	return &addressRepository{db: pool}
}

func NewAddressWithTx(tx pgx.Tx) port.AddressRepository {
	return &addressRepository{db: tx}
}

func (r *addressRepository) GetAddress(ctx context.Context, addressID uuid.UUID) (domain.Address, error) {
	const query = `
		SELECT id, customer_id, shipping_cost_amount, shipping_cost_currency
		FROM addresses
		WHERE id = $1`

	var (
		a            domain.Address
		costAmount   decimal.Decimal
		currencyCode string
	)

	err := r.db.QueryRow(ctx, query, addressID).Scan(&a.ID, &a.CustomerID, &costAmount, &currencyCode)
	if errors.Is(err, pgx.ErrNoRows) {
		return a, fmt.Errorf("addresses: %w", domain.ErrInvalidAddress)
	}
	if err != nil {
		return a, fmt.Errorf("query addresses: %w", err)
	}

	parsedCurrency, err := currency.ParseISO(currencyCode)
	if err != nil {
		return a, fmt.Errorf("currency[%s] is not valid: %w", currencyCode, err)
	}
	a.ShippingCost = domain.Money{Amount: costAmount, Currency: parsedCurrency}

	return a, nil
}
