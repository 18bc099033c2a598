package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/sthaarun/storefront/internal/domain"
	"github.com/sthaarun/storefront/internal/port"
	"golang.org/x/text/currency"
)

const orderColumns = `
	o.id, o.public_id, o.customer_id, o.transaction_id, o.status,
	o.subtotal_amount, o.shipping_amount, o.tax_amount, o.discount_amount, o.total_amount, o.currency,
	o.address_id, o.payment_method, o.notes,
	o.placed_at, o.paid_at, o.shipped_at, o.delivered_at, o.cancelled_at`

const orderItemColumns = `
	i.id, i.public_id, i.order_id, i.product_id, i.variant_id,
	i.name, i.unit_price_amount, i.quantity, i.line_total_amount, i.currency,
	i.status, i.cancelled_at`

type orderRepository struct {
	db DB
}

func NewOrder(pool *pgxpool.Pool) port.OrderRepository {
	return &orderRepository{db: pool}
}

func NewOrderWithTx(tx pgx.Tx) port.OrderRepository {
	return &orderRepository{db: tx}
}

func (r *orderRepository) InsertOrder(ctx context.Context, order domain.Order) (domain.Order, error) {
	var o domain.Order

	if len(order.Items) == 0 {
		return o, fmt.Errorf("no items in order: %w", domain.ErrEmptyCart)
	}

	const insertOrder = `
		INSERT INTO orders (public_id, customer_id, transaction_id, status,
			subtotal_amount, shipping_amount, tax_amount, discount_amount, total_amount, currency,
			address_id, payment_method, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, placed_at`

	err := r.db.QueryRow(ctx, insertOrder,
		order.PublicID, order.CustomerID, order.TransactionID, string(order.Status),
		order.Subtotal.Amount, order.ShippingCost.Amount, order.Tax.Amount, order.Discount.Amount, order.Total.Amount,
		order.Total.Currency.String(),
		order.AddressID, order.PaymentMethod, order.Notes,
	).Scan(&order.ID, &order.PlacedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return o, fmt.Errorf("insert orders: %w", domain.ErrConflict)
		}
		return o, fmt.Errorf("insert orders: %w", err)
	}

	rows := make([][]any, 0, len(order.Items))
	for idx := range order.Items {
		item := &order.Items[idx]
		item.OrderID = order.ID
		rows = append(rows, []any{
			item.ID, item.PublicID, order.ID, item.ProductID, item.VariantID,
			item.Name, item.UnitPrice.Amount, item.Quantity, item.LineTotal.Amount,
			item.UnitPrice.Currency.String(), string(item.Status),
		})
	}

	copied, err := r.db.CopyFrom(ctx,
		pgx.Identifier{"order_items"},
		[]string{"id", "public_id", "order_id", "product_id", "variant_id",
			"name", "unit_price_amount", "quantity", "line_total_amount", "currency", "status"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return o, fmt.Errorf("copy order_items: %w", err)
	}

	// The order is only valid with its full item set.
	if copied != int64(len(order.Items)) {
		return o, fmt.Errorf("copy order_items: inserted %d of %d: %w",
			copied, len(order.Items), domain.ErrPartialWrite)
	}

	return order, nil
}

func (r *orderRepository) GetOrder(ctx context.Context, orderID uuid.UUID) (domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders o WHERE o.id = $1`
	return r.getOrder(ctx, query, orderID)
}

func (r *orderRepository) GetOrderByPublicID(ctx context.Context, customerID, publicID string) (domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders o WHERE o.customer_id = $1 AND o.public_id = $2`
	return r.getOrder(ctx, query, customerID, publicID)
}

func (r *orderRepository) GetOrderByTransaction(ctx context.Context, customerID, transactionID string) (domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders o WHERE o.customer_id = $1 AND o.transaction_id = $2`
	return r.getOrder(ctx, query, customerID, transactionID)
}

// GetOrderForUpdate locks the order header for the rest of the
// transaction; it does not load items.
func (r *orderRepository) GetOrderForUpdate(ctx context.Context, orderID uuid.UUID) (domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders o WHERE o.id = $1 FOR UPDATE`

	order, err := scanOrder(r.db.QueryRow(ctx, query, orderID))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Order{}, fmt.Errorf("orders: %w", domain.ErrNotFound)
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("scanOrder: %w", err)
	}

	return order, nil
}

func (r *orderRepository) getOrder(ctx context.Context, query string, args ...any) (domain.Order, error) {
	var o domain.Order

	order, err := scanOrder(r.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return o, fmt.Errorf("orders: %w", domain.ErrNotFound)
	}
	if err != nil {
		return o, fmt.Errorf("scanOrder: %w", err)
	}

	items, err := r.getOrderItems(ctx, order.ID)
	if err != nil {
		return o, fmt.Errorf("getOrderItems: %w", err)
	}
	order.Items = items

	return order, nil
}

func (r *orderRepository) SearchOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	if err := filter.Validate(); err != nil {
		return nil, fmt.Errorf("filter.Validate: %w", err)
	}

	query := `
		SELECT ` + orderColumns + `, ` + orderItemColumns + `
		FROM orders o
		JOIN order_items i ON i.order_id = o.id
		WHERE ($1::text[] IS NULL OR o.public_id = ANY($1))
		  AND ($2::text[] IS NULL OR o.customer_id = ANY($2))
		  AND ($3::text[] IS NULL OR o.transaction_id = ANY($3))
		  AND ($4::text[] IS NULL OR o.status = ANY($4))
		  AND ($5::timestamptz IS NULL OR o.placed_at >= $5)
		  AND ($6::timestamptz IS NULL OR o.placed_at <= $6)
		ORDER BY o.placed_at, o.id, i.id`

	var statuses []string
	for _, status := range filter.Statuses {
		statuses = append(statuses, string(status))
	}

	var placedAfter, placedBefore *time.Time
	if filter.PlacedAt != nil {
		placedAfter = filter.PlacedAt.After
		placedBefore = filter.PlacedAt.Before
	}

	rows, err := r.db.Query(ctx, query,
		nilSliceIfEmpty(filter.PublicIDs),
		nilSliceIfEmpty(filter.CustomerIDs),
		nilSliceIfEmpty(filter.TransactionIDs),
		nilSliceIfEmpty(statuses),
		placedAfter, placedBefore,
	)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	// Group joined rows into orders and their items.
	orderMap := make(map[uuid.UUID]domain.Order)

	for rows.Next() {
		order, item, err := scanOrderJoinRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scanOrderJoinRow: %w", err)
		}

		if existing, exists := orderMap[order.ID]; exists {
			order = existing
		}
		order.Items = append(order.Items, item)
		orderMap[order.ID] = order
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err: %w", err)
	}

	return lo.Values(orderMap), nil
}

func (r *orderRepository) MarkPaid(ctx context.Context, orderID uuid.UUID, paidAt time.Time) (int64, error) {
	const query = `
		UPDATE orders
		SET status = 'paid', paid_at = $2
		WHERE id = $1 AND status = 'pending'`

	cmdTag, err := r.db.Exec(ctx, query, orderID, paidAt)
	if err != nil {
		return 0, fmt.Errorf("update orders: %w", err)
	}

	return cmdTag.RowsAffected(), nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, orderID uuid.UUID, status domain.OrderStatus, at time.Time) error {
	var query string

	switch status {
	case domain.OrderStatusPaid:
		query = `UPDATE orders SET status = $2, paid_at = $3 WHERE id = $1`
	case domain.OrderStatusShipped:
		query = `UPDATE orders SET status = $2, shipped_at = $3 WHERE id = $1`
	case domain.OrderStatusDelivered:
		query = `UPDATE orders SET status = $2, delivered_at = $3 WHERE id = $1`
	case domain.OrderStatusCancelled, domain.OrderStatusRefunded, domain.OrderStatusReturned:
		query = `UPDATE orders SET status = $2, cancelled_at = $3 WHERE id = $1`
	default:
		query = `UPDATE orders SET status = $2 WHERE id = $1`
	}

	cmdTag, err := r.db.Exec(ctx, query, orderID, string(status), at)
	if err != nil {
		return fmt.Errorf("update orders: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("update orders: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *orderRepository) DeletePendingOrders(ctx context.Context, customerID string) ([]domain.Order, error) {
	orders, err := r.SearchOrders(ctx, domain.OrderFilter{
		CustomerIDs: []string{customerID},
		Statuses:    []domain.OrderStatus{domain.OrderStatusPending},
	})
	if err != nil {
		return nil, fmt.Errorf("SearchOrders: %w", err)
	}

	if len(orders) == 0 {
		return nil, nil
	}

	const query = `DELETE FROM orders WHERE customer_id = $1 AND status = 'pending'`

	cmdTag, err := r.db.Exec(ctx, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("delete orders: %w", err)
	}

	if cmdTag.RowsAffected() != int64(len(orders)) {
		return nil, fmt.Errorf("delete orders: removed %d of %d: %w",
			cmdTag.RowsAffected(), len(orders), domain.ErrPartialWrite)
	}

	return orders, nil
}

func (r *orderRepository) GetPaidItemByPublicID(ctx context.Context, itemPublicID string) (domain.OrderItem, error) {
	query := `SELECT ` + orderItemColumns + ` FROM order_items i WHERE i.public_id = $1 AND i.status = 'paid'`

	item, err := scanOrderItem(r.db.QueryRow(ctx, query, itemPublicID))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.OrderItem{}, fmt.Errorf("order_items: %w", domain.ErrNotFound)
	}
	if err != nil {
		return domain.OrderItem{}, fmt.Errorf("scanOrderItem: %w", err)
	}

	return item, nil
}

func (r *orderRepository) MarkItemCancelled(ctx context.Context, itemID uuid.UUID, at time.Time) error {
	const query = `
		UPDATE order_items
		SET status = 'cancelled', cancelled_at = $2
		WHERE id = $1 AND status = 'paid'`

	cmdTag, err := r.db.Exec(ctx, query, itemID, at)
	if err != nil {
		return fmt.Errorf("update order_items: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("update order_items: %w", domain.ErrNotFound)
	}

	return nil
}

// DeductFromTotals subtracts a cancelled line's total from the order.
// The status predicate keeps the write from touching orders that are not
// in the paid state.
func (r *orderRepository) DeductFromTotals(ctx context.Context, orderID uuid.UUID, amount decimal.Decimal) error {
	const query = `
		UPDATE orders
		SET subtotal_amount = subtotal_amount - $2, total_amount = total_amount - $2
		WHERE id = $1 AND status = 'paid' AND paid_at IS NOT NULL`

	cmdTag, err := r.db.Exec(ctx, query, orderID, amount)
	if err != nil {
		return fmt.Errorf("update orders: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("update orders: %w", domain.ErrInvalidState)
	}

	return nil
}

func (r *orderRepository) CountPaidItems(ctx context.Context, orderID uuid.UUID) (int64, error) {
	const query = `SELECT count(*) FROM order_items WHERE order_id = $1 AND status = 'paid'`

	var count int64
	if err := r.db.QueryRow(ctx, query, orderID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count order_items: %w", err)
	}

	return count, nil
}

func (r *orderRepository) getOrderItems(ctx context.Context, orderID uuid.UUID) ([]domain.OrderItem, error) {
	query := `SELECT ` + orderItemColumns + ` FROM order_items i WHERE i.order_id = $1 ORDER BY i.id`

	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("query order_items: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderItem

	for rows.Next() {
		item, err := scanOrderItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanOrderItem: %w", err)
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

func scanOrder(row pgx.Row) (domain.Order, error) {
	var (
		o            domain.Order
		status       string
		subtotal     decimal.Decimal
		shipping     decimal.Decimal
		tax          decimal.Decimal
		discount     decimal.Decimal
		total        decimal.Decimal
		currencyCode string
	)

	if err := row.Scan(
		&o.ID, &o.PublicID, &o.CustomerID, &o.TransactionID, &status,
		&subtotal, &shipping, &tax, &discount, &total, &currencyCode,
		&o.AddressID, &o.PaymentMethod, &o.Notes,
		&o.PlacedAt, &o.PaidAt, &o.ShippedAt, &o.DeliveredAt, &o.CancelledAt,
	); err != nil {
		return o, err
	}

	parsedStatus, err := domain.ToOrderStatus(status)
	if err != nil {
		return o, fmt.Errorf("domain.ToOrderStatus[%s]: %w", status, err)
	}
	o.Status = parsedStatus

	parsedCurrency, err := currency.ParseISO(currencyCode)
	if err != nil {
		return o, fmt.Errorf("currency[%s] is not valid: %w", currencyCode, err)
	}

	o.Subtotal = domain.Money{Amount: subtotal, Currency: parsedCurrency}
	o.ShippingCost = domain.Money{Amount: shipping, Currency: parsedCurrency}
	o.Tax = domain.Money{Amount: tax, Currency: parsedCurrency}
	o.Discount = domain.Money{Amount: discount, Currency: parsedCurrency}
	o.Total = domain.Money{Amount: total, Currency: parsedCurrency}

	return o, nil
}

func scanOrderItem(row pgx.Row) (domain.OrderItem, error) {
	var (
		item         domain.OrderItem
		unitPrice    decimal.Decimal
		lineTotal    decimal.Decimal
		currencyCode string
		status       string
	)

	if err := row.Scan(
		&item.ID, &item.PublicID, &item.OrderID, &item.ProductID, &item.VariantID,
		&item.Name, &unitPrice, &item.Quantity, &lineTotal, &currencyCode,
		&status, &item.CancelledAt,
	); err != nil {
		return item, err
	}

	parsedCurrency, err := currency.ParseISO(currencyCode)
	if err != nil {
		return item, fmt.Errorf("currency[%s] is not valid: %w", currencyCode, err)
	}

	item.UnitPrice = domain.Money{Amount: unitPrice, Currency: parsedCurrency}
	item.LineTotal = domain.Money{Amount: lineTotal, Currency: parsedCurrency}
	item.Status = domain.OrderItemStatus(status)

	return item, nil
}

func scanOrderJoinRow(rows pgx.Rows) (domain.Order, domain.OrderItem, error) {
	var (
		o            domain.Order
		item         domain.OrderItem
		status       string
		subtotal     decimal.Decimal
		shipping     decimal.Decimal
		tax          decimal.Decimal
		discount     decimal.Decimal
		total        decimal.Decimal
		currencyCode string

		itemUnitPrice    decimal.Decimal
		itemLineTotal    decimal.Decimal
		itemCurrencyCode string
		itemStatus       string
	)

	if err := rows.Scan(
		&o.ID, &o.PublicID, &o.CustomerID, &o.TransactionID, &status,
		&subtotal, &shipping, &tax, &discount, &total, &currencyCode,
		&o.AddressID, &o.PaymentMethod, &o.Notes,
		&o.PlacedAt, &o.PaidAt, &o.ShippedAt, &o.DeliveredAt, &o.CancelledAt,
		&item.ID, &item.PublicID, &item.OrderID, &item.ProductID, &item.VariantID,
		&item.Name, &itemUnitPrice, &item.Quantity, &itemLineTotal, &itemCurrencyCode,
		&itemStatus, &item.CancelledAt,
	); err != nil {
		return o, item, err
	}

	parsedStatus, err := domain.ToOrderStatus(status)
	if err != nil {
		return o, item, fmt.Errorf("domain.ToOrderStatus[%s]: %w", status, err)
	}
	o.Status = parsedStatus

	parsedCurrency, err := currency.ParseISO(currencyCode)
	if err != nil {
		return o, item, fmt.Errorf("currency[%s] is not valid: %w", currencyCode, err)
	}

	o.Subtotal = domain.Money{Amount: subtotal, Currency: parsedCurrency}
	o.ShippingCost = domain.Money{Amount: shipping, Currency: parsedCurrency}
	o.Tax = domain.Money{Amount: tax, Currency: parsedCurrency}
	o.Discount = domain.Money{Amount: discount, Currency: parsedCurrency}
	o.Total = domain.Money{Amount: total, Currency: parsedCurrency}

	parsedItemCurrency, err := currency.ParseISO(itemCurrencyCode)
	if err != nil {
		return o, item, fmt.Errorf("currency[%s] is not valid: %w", itemCurrencyCode, err)
	}

	item.UnitPrice = domain.Money{Amount: itemUnitPrice, Currency: parsedItemCurrency}
	item.LineTotal = domain.Money{Amount: itemLineTotal, Currency: parsedItemCurrency}
	item.Status = domain.OrderItemStatus(itemStatus)

	return o, item, nil
}

func nilSliceIfEmpty[T any](s []T) []T {
	if len(s) == 0 {
		return nil
	}
	return s
}
