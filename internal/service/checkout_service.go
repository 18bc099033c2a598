package service

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/sthaarun/storefront/internal/domain"
	"github.com/sthaarun/storefront/internal/port"
	"github.com/sthaarun/storefront/internal/repository"
)

type PlaceOrderRequest struct {
	CustomerID    string
	AddressID     uuid.UUID
	PaymentMethod string
	Notes         string
	TransactionID string
}

func (r PlaceOrderRequest) Validate() error {
	if r.CustomerID == "" {
		return fmt.Errorf("customer id is required: %w", domain.ErrInvalidInput)
	}
	if r.AddressID == uuid.Nil {
		return fmt.Errorf("address id is required: %w", domain.ErrInvalidInput)
	}
	if r.PaymentMethod == "" {
		return fmt.Errorf("payment method is required: %w", domain.ErrInvalidInput)
	}
	if r.TransactionID == "" {
		return fmt.Errorf("transaction id is required: %w", domain.ErrInvalidInput)
	}
	return nil
}

type CheckoutService interface {
	// PlaceOrder converts the customer's active cart into a pending order
	// inside one transaction: snapshot join, totals, shipping cost, stock
	// reservation, order + items insert, cart consumption. On any failure
	// nothing is observable: no order, no items, no cart mutation.
	PlaceOrder(ctx context.Context, req PlaceOrderRequest) (domain.Order, error)
}

type checkoutService struct {
	pool         *pgxpool.Pool
	cache        port.CartCache
	codSurcharge decimal.Decimal
}

func NewCheckout(pool *pgxpool.Pool, cache port.CartCache, codSurcharge decimal.Decimal) CheckoutService {
	return &checkoutService{
		pool:         pool,
		cache:        cache,
		codSurcharge: codSurcharge,
	}
}

func (s *checkoutService) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (domain.Order, error) {
	var o domain.Order

	if err := req.Validate(); err != nil {
		return o, err
	}

	order, err := repository.WithTx(ctx, s.pool, func(tx pgx.Tx) (domain.Order, error) {
		carts := repository.NewCartWithTx(tx)
		catalog := repository.NewCatalogWithTx(tx)
		addresses := repository.NewAddressWithTx(tx)
		orders := repository.NewOrderWithTx(tx)

		cart, found, err := carts.GetActiveCart(ctx, req.CustomerID)
		if err != nil {
			return domain.Order{}, fmt.Errorf("carts.GetActiveCart: %w", err)
		}
		if !found {
			return domain.Order{}, domain.ErrNoActiveCart
		}
		if cart.IsEmpty() {
			return domain.Order{}, domain.ErrEmptyCart
		}

		variantIDs := lo.Map(cart.Items, func(item domain.CartItem, _ int) uuid.UUID {
			return item.VariantID
		})

		snapshots, err := catalog.GetVariantSnapshots(ctx, variantIDs)
		if err != nil {
			return domain.Order{}, fmt.Errorf("catalog.GetVariantSnapshots: %w", err)
		}

		items := make([]domain.OrderItem, 0, len(cart.Items))
		subtotal := domain.Money{Amount: decimal.Zero, Currency: cart.Total.Currency}

		for _, line := range cart.Items {
			snapshot, ok := snapshots[line.VariantID]
			if !ok {
				return domain.Order{}, fmt.Errorf("variant[%s]: %w", line.VariantID, domain.ErrNotFound)
			}

			lineTotal := line.LineTotal()
			subtotal = subtotal.Add(lineTotal.Amount)

			items = append(items, domain.OrderItem{
				ID:        uuid.New(),
				PublicID:  domain.NewOrderItemPublicID(),
				ProductID: snapshot.ProductID,
				VariantID: line.VariantID,
				Name:      snapshot.Name,
				UnitPrice: line.Price,
				Quantity:  line.Quantity,
				LineTotal: lineTotal,
				Status:    domain.OrderItemStatusPaid,
			})

			if err := catalog.ReserveStock(ctx, line.VariantID, line.Quantity); err != nil {
				return domain.Order{}, fmt.Errorf("catalog.ReserveStock: %w", err)
			}
		}

		address, err := addresses.GetAddress(ctx, req.AddressID)
		if err != nil {
			return domain.Order{}, fmt.Errorf("addresses.GetAddress: %w", err)
		}

		shippingCost := address.ShippingCost
		if req.PaymentMethod == domain.PaymentMethodCashOnDelivery {
			shippingCost = shippingCost.Add(s.codSurcharge)
		}

		order := domain.Order{
			PublicID:      domain.NewOrderPublicID(),
			CustomerID:    req.CustomerID,
			TransactionID: req.TransactionID,
			Status:        domain.OrderStatusPending,
			Subtotal:      subtotal,
			ShippingCost:  shippingCost,
			Tax:           domain.Money{Amount: decimal.Zero, Currency: subtotal.Currency},
			Discount:      domain.Money{Amount: decimal.Zero, Currency: subtotal.Currency},
			Total:         subtotal.Add(shippingCost.Amount),
			AddressID:     req.AddressID,
			PaymentMethod: req.PaymentMethod,
			Notes:         req.Notes,
			Items:         items,
		}

		inserted, err := orders.InsertOrder(ctx, order)
		if err != nil {
			return domain.Order{}, fmt.Errorf("orders.InsertOrder: %w", err)
		}

		// The order consumed the cart; items cascade with it.
		if err := carts.DeleteCart(ctx, cart.ID); err != nil {
			return domain.Order{}, fmt.Errorf("carts.DeleteCart: %w", err)
		}

		return inserted, nil
	})
	if err != nil {
		return o, fmt.Errorf("repository.WithTx: %w", err)
	}

	if err := s.cache.Invalidate(ctx, req.CustomerID); err != nil {
		log.Printf("cart cache invalidation failed for customer %s: %v", req.CustomerID, err)
	}

	return order, nil
}
