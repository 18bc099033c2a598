package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/sthaarun/storefront/internal/domain"
)

type CartRepository interface {
	// GetActiveCart returns the customer's active cart with its items.
	// A missing cart is not an error: found is false.
	GetActiveCart(ctx context.Context, customerID string) (cart domain.Cart, found bool, err error)

	// AddItem finds or creates the active cart, inserts the item with its
	// price snapshot and increments the cart total, all against the same
	// connection. Losing an active-cart creation race surfaces as
	// domain.ErrConflict; the caller retries in a fresh transaction.
	AddItem(ctx context.Context, customerID string, item domain.CartItem) (domain.Cart, error)

	// DeleteItem removes one line from the active cart and decrements the
	// cart total. Returns false when no such line exists.
	DeleteItem(ctx context.Context, customerID string, itemID uuid.UUID) (bool, error)

	// DeleteCart consumes the cart entirely; items cascade.
	DeleteCart(ctx context.Context, cartID uuid.UUID) error
}
