package port

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sthaarun/storefront/internal/domain"
)

type OrderRepository interface {
	// InsertOrder persists the order header and bulk-inserts its items.
	// An item insert count differing from len(order.Items) surfaces as
	// domain.ErrPartialWrite; a duplicate transaction id as domain.ErrConflict.
	InsertOrder(ctx context.Context, order domain.Order) (domain.Order, error)

	GetOrder(ctx context.Context, orderID uuid.UUID) (domain.Order, error)
	GetOrderByPublicID(ctx context.Context, customerID, publicID string) (domain.Order, error)
	GetOrderByTransaction(ctx context.Context, customerID, transactionID string) (domain.Order, error)
	GetOrderForUpdate(ctx context.Context, orderID uuid.UUID) (domain.Order, error)

	SearchOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error)

	// MarkPaid transitions a pending order to paid and reports how many
	// rows changed, so duplicate gateway callbacks can be detected.
	MarkPaid(ctx context.Context, orderID uuid.UUID, paidAt time.Time) (int64, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status domain.OrderStatus, at time.Time) error

	// DeletePendingOrders removes every pending order of the customer and
	// returns the removed orders with their items.
	DeletePendingOrders(ctx context.Context, customerID string) ([]domain.Order, error)

	GetPaidItemByPublicID(ctx context.Context, itemPublicID string) (domain.OrderItem, error)
	MarkItemCancelled(ctx context.Context, itemID uuid.UUID, at time.Time) error
	DeductFromTotals(ctx context.Context, orderID uuid.UUID, amount decimal.Decimal) error
	CountPaidItems(ctx context.Context, orderID uuid.UUID) (int64, error)
}
