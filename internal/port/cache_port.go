package port

import (
	"context"

	"github.com/sthaarun/storefront/internal/domain"
)

// CartCache is a read-through cache for the active cart. Implementations
// must treat every failure as a miss; the database stays authoritative.
type CartCache interface {
	Get(ctx context.Context, customerID string) (cart domain.Cart, found bool, err error)
	Set(ctx context.Context, customerID string, cart domain.Cart) error
	Invalidate(ctx context.Context, customerID string) error
}
