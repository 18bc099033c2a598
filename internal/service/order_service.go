package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sthaarun/storefront/internal/domain"
	"github.com/sthaarun/storefront/internal/port"
	"github.com/sthaarun/storefront/internal/repository"
)

type OrderService interface {
	// CancelItem cancels one paid line of a paid order, deducting its
	// line total from the order's subtotal and total. When the last line
	// is cancelled the order itself transitions to cancelled. All of it
	// commits or none of it does.
	CancelItem(ctx context.Context, customerID, itemPublicID string) (domain.Order, error)

	GetOrder(ctx context.Context, customerID, publicID string) (domain.Order, error)
	SearchOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error)
}

type orderService struct {
	pool   *pgxpool.Pool
	orders port.OrderRepository
}

func NewOrder(pool *pgxpool.Pool) OrderService {
	return &orderService{
		pool:   pool,
		orders: repository.NewOrder(pool),
	}
}

func (s *orderService) CancelItem(ctx context.Context, customerID, itemPublicID string) (domain.Order, error) {
	var o domain.Order

	if customerID == "" || itemPublicID == "" {
		return o, fmt.Errorf("customer id and item id are required: %w", domain.ErrInvalidInput)
	}

	order, err := repository.WithTx(ctx, s.pool, func(tx pgx.Tx) (domain.Order, error) {
		orders := repository.NewOrderWithTx(tx)
		catalog := repository.NewCatalogWithTx(tx)

		item, err := orders.GetPaidItemByPublicID(ctx, itemPublicID)
		if err != nil {
			return domain.Order{}, fmt.Errorf("orders.GetPaidItemByPublicID: %w", err)
		}

		order, err := orders.GetOrderForUpdate(ctx, item.OrderID)
		if err != nil {
			return domain.Order{}, fmt.Errorf("orders.GetOrderForUpdate: %w", err)
		}

		if order.CustomerID != customerID {
			return domain.Order{}, fmt.Errorf("order[%s]: %w", order.PublicID, domain.ErrUnauthorized)
		}

		if order.Status != domain.OrderStatusPaid || order.PaidAt == nil {
			return domain.Order{}, fmt.Errorf("order[%s] is %s: %w", order.PublicID, order.Status, domain.ErrInvalidState)
		}

		now := time.Now().UTC()

		if err := orders.MarkItemCancelled(ctx, item.ID, now); err != nil {
			return domain.Order{}, fmt.Errorf("orders.MarkItemCancelled: %w", err)
		}

		if err := orders.DeductFromTotals(ctx, order.ID, item.LineTotal.Amount); err != nil {
			return domain.Order{}, fmt.Errorf("orders.DeductFromTotals: %w", err)
		}

		if err := catalog.ReleaseStock(ctx, item.VariantID, item.Quantity); err != nil {
			return domain.Order{}, fmt.Errorf("catalog.ReleaseStock: %w", err)
		}

		remaining, err := orders.CountPaidItems(ctx, order.ID)
		if err != nil {
			return domain.Order{}, fmt.Errorf("orders.CountPaidItems: %w", err)
		}

		if remaining == 0 {
			if err := orders.UpdateStatus(ctx, order.ID, domain.OrderStatusCancelled, now); err != nil {
				return domain.Order{}, fmt.Errorf("orders.UpdateStatus: %w", err)
			}
		}

		updated, err := orders.GetOrder(ctx, order.ID)
		if err != nil {
			return domain.Order{}, fmt.Errorf("orders.GetOrder: %w", err)
		}

		return updated, nil
	})
	if err != nil {
		return o, fmt.Errorf("repository.WithTx: %w", err)
	}

	return order, nil
}

func (s *orderService) GetOrder(ctx context.Context, customerID, publicID string) (domain.Order, error) {
	if customerID == "" || publicID == "" {
		return domain.Order{}, fmt.Errorf("customer id and order id are required: %w", domain.ErrInvalidInput)
	}

	order, err := s.orders.GetOrderByPublicID(ctx, customerID, publicID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("orders.GetOrderByPublicID: %w", err)
	}

	return order, nil
}

func (s *orderService) SearchOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	orders, err := s.orders.SearchOrders(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("orders.SearchOrders: %w", err)
	}

	return orders, nil
}
