package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const PaymentMethodCashOnDelivery = "cash_on_delivery"

// Order is the immutable record produced from an active cart. After
// creation only its status, timestamps and monetary totals change, and
// only through payment confirmation or item cancellation.
type Order struct {
	ID            uuid.UUID
	PublicID      string
	CustomerID    string
	TransactionID string
	Status        OrderStatus

	Subtotal     Money
	ShippingCost Money
	Tax          Money
	Discount     Money
	Total        Money

	AddressID     uuid.UUID
	PaymentMethod string
	Notes         string

	Items []OrderItem

	PlacedAt    time.Time
	PaidAt      *time.Time
	ShippedAt   *time.Time
	DeliveredAt *time.Time
	CancelledAt *time.Time
}

// OrderItem carries the product snapshot captured at order creation.
// Name and unit price are never re-derived from the live catalog.
type OrderItem struct {
	ID        uuid.UUID
	PublicID  string
	OrderID   uuid.UUID
	ProductID uuid.UUID
	VariantID uuid.UUID

	Name      string
	UnitPrice Money
	Quantity  int32
	LineTotal Money

	Status      OrderItemStatus
	CancelledAt *time.Time
}

// NewOrderPublicID returns an opaque customer-facing order identifier.
func NewOrderPublicID() string {
	return "ORD-" + shortID()
}

// NewOrderItemPublicID returns an opaque order-item identifier used by
// the cancellation endpoint.
func NewOrderItemPublicID() string {
	return "ITM-" + shortID()
}

func shortID() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(raw[:12])
}
