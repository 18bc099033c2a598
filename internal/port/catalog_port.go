package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/sthaarun/storefront/internal/domain"
)

type CatalogRepository interface {
	GetVariant(ctx context.Context, variantID uuid.UUID) (domain.Variant, error)

	// GetVariantSnapshots resolves product identity and display name for
	// each variant, keyed by variant id. Missing variants are absent from
	// the map, not an error.
	GetVariantSnapshots(ctx context.Context, variantIDs []uuid.UUID) (map[uuid.UUID]domain.VariantSnapshot, error)

	// ReserveStock moves quantity from available to reserved, failing with
	// domain.ErrInsufficientStock when not enough is available.
	ReserveStock(ctx context.Context, variantID uuid.UUID, quantity int32) error

	// ReleaseStock returns a reservation to the available pool.
	ReleaseStock(ctx context.Context, variantID uuid.UUID, quantity int32) error
}

type AddressRepository interface {
	// GetAddress fails with domain.ErrInvalidAddress when absent.
	GetAddress(ctx context.Context, addressID uuid.UUID) (domain.Address, error)
}
