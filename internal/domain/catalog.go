package domain

import (
	"time"

	"github.com/google/uuid"
)

// Catalog and address records are owned by external subsystems; this
// core only reads prices, names, shipping costs and stock counters.

type Product struct {
	ID   uuid.UUID
	Name string

	CreatedAt time.Time
}

type Variant struct {
	ID        uuid.UUID
	ProductID uuid.UUID
	SKU       string
	Price     Money

	Available int32
	Reserved  int32
	OnHold    int32
}

// VariantSnapshot is the slice of catalog data frozen into an order item.
type VariantSnapshot struct {
	VariantID uuid.UUID
	ProductID uuid.UUID
	Name      string
}

type Address struct {
	ID           uuid.UUID
	CustomerID   string
	ShippingCost Money
}
