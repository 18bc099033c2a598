package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type CartType string

// remember to add new types to the validCartTypes map
const (
	CartTypeActive   CartType = "active"
	CartTypeSaved    CartType = "saved"
	CartTypeWishlist CartType = "wishlist"
)

var validCartTypes = map[CartType]struct{}{
	CartTypeActive:   {},
	CartTypeSaved:    {},
	CartTypeWishlist: {},
}

func ToCartType(s string) (CartType, error) {
	t := CartType(s)
	if _, ok := validCartTypes[t]; ok {
		return t, nil
	}

	return "", errors.New("invalid cart type")
}

// Cart is a customer's mutable item list. At most one cart per customer
// has type "active"; an order consumes its source cart entirely.
type Cart struct {
	ID         uuid.UUID
	CustomerID string
	Type       CartType
	Total      Money
	Items      []CartItem
	ExpiresAt  time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// CartItem snapshots the variant price at add time. The snapshot is what
// the order pipeline bills, regardless of later catalog changes.
type CartItem struct {
	ID        uuid.UUID
	CartID    uuid.UUID
	VariantID uuid.UUID
	Quantity  int32
	Price     Money

	CreatedAt time.Time
}

func (i CartItem) LineTotal() Money {
	return i.Price.MulInt(i.Quantity)
}
