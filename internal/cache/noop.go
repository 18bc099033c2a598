package cache

import (
	"context"

	"github.com/sthaarun/storefront/internal/domain"
	"github.com/sthaarun/storefront/internal/port"
)

// Noop satisfies the cache port when no redis is configured; every read
// is a miss and writes are discarded.
type Noop struct{}

func NewNoop() Noop { return Noop{} }

var _ port.CartCache = Noop{}

func (Noop) Get(context.Context, string) (domain.Cart, bool, error) {
	return domain.Cart{}, false, nil
}

func (Noop) Set(context.Context, string, domain.Cart) error { return nil }

func (Noop) Invalidate(context.Context, string) error { return nil }
