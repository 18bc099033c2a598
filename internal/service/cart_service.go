package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sthaarun/storefront/internal/domain"
	"github.com/sthaarun/storefront/internal/port"
	"github.com/sthaarun/storefront/internal/repository"
)

type CartService interface {
	// AddItem snapshots the variant's current price into the customer's
	// active cart, creating the cart when none exists.
	AddItem(ctx context.Context, customerID string, variantID uuid.UUID, quantity int32) (domain.Cart, error)

	// GetActiveCart returns an empty cart when the customer has none.
	GetActiveCart(ctx context.Context, customerID string) (domain.Cart, error)

	RemoveItem(ctx context.Context, customerID string, itemID uuid.UUID) error
}

type cartService struct {
	pool  *pgxpool.Pool
	carts port.CartRepository
	cache port.CartCache
}

func NewCart(pool *pgxpool.Pool, cache port.CartCache) CartService {
	return &cartService{
		pool:  pool,
		carts: repository.NewCart(pool),
		cache: cache,
	}
}

func (s *cartService) AddItem(ctx context.Context, customerID string, variantID uuid.UUID, quantity int32) (domain.Cart, error) {
	var c domain.Cart

	if customerID == "" {
		return c, fmt.Errorf("customer id is required: %w", domain.ErrInvalidInput)
	}
	if quantity < 1 {
		return c, fmt.Errorf("quantity must be at least 1: %w", domain.ErrInvalidInput)
	}

	var err error

	// A lost first-cart creation race aborts the transaction; retry once
	// against the winner's cart.
	for attempt := 0; attempt < 2; attempt++ {
		_, err = repository.WithTx(ctx, s.pool, func(tx pgx.Tx) (domain.Cart, error) {
			catalog := repository.NewCatalogWithTx(tx)
			carts := repository.NewCartWithTx(tx)

			variant, err := catalog.GetVariant(ctx, variantID)
			if err != nil {
				return domain.Cart{}, fmt.Errorf("catalog.GetVariant: %w", err)
			}

			item := domain.CartItem{
				ID:        uuid.New(),
				VariantID: variantID,
				Quantity:  quantity,
				Price:     variant.Price,
			}

			updated, err := carts.AddItem(ctx, customerID, item)
			if err != nil {
				return domain.Cart{}, fmt.Errorf("carts.AddItem: %w", err)
			}

			return updated, nil
		})
		if err == nil || !errors.Is(err, domain.ErrConflict) {
			break
		}
	}
	if err != nil {
		return c, fmt.Errorf("repository.WithTx: %w", err)
	}

	s.invalidateCache(ctx, customerID)

	return s.GetActiveCart(ctx, customerID)
}

func (s *cartService) GetActiveCart(ctx context.Context, customerID string) (domain.Cart, error) {
	if customerID == "" {
		return domain.Cart{}, fmt.Errorf("customer id is required: %w", domain.ErrInvalidInput)
	}

	cached, found, err := s.cache.Get(ctx, customerID)
	if err != nil {
		log.Printf("cart cache read failed for customer %s: %v", customerID, err)
	} else if found {
		return cached, nil
	}

	cart, found, err := s.carts.GetActiveCart(ctx, customerID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("carts.GetActiveCart: %w", err)
	}
	if !found {
		// No active cart is an empty result, not an error.
		return domain.Cart{CustomerID: customerID, Type: domain.CartTypeActive}, nil
	}

	if err := s.cache.Set(ctx, customerID, cart); err != nil {
		log.Printf("cart cache write failed for customer %s: %v", customerID, err)
	}

	return cart, nil
}

func (s *cartService) RemoveItem(ctx context.Context, customerID string, itemID uuid.UUID) error {
	if customerID == "" {
		return fmt.Errorf("customer id is required: %w", domain.ErrInvalidInput)
	}

	_, err := repository.WithTx(ctx, s.pool, func(tx pgx.Tx) (struct{}, error) {
		carts := repository.NewCartWithTx(tx)

		found, err := carts.DeleteItem(ctx, customerID, itemID)
		if err != nil {
			return struct{}{}, fmt.Errorf("carts.DeleteItem: %w", err)
		}
		if !found {
			return struct{}{}, fmt.Errorf("cart item: %w", domain.ErrNotFound)
		}

		return struct{}{}, nil
	})
	if err != nil {
		return fmt.Errorf("repository.WithTx: %w", err)
	}

	s.invalidateCache(ctx, customerID)

	return nil
}

func (s *cartService) invalidateCache(ctx context.Context, customerID string) {
	if err := s.cache.Invalidate(ctx, customerID); err != nil {
		log.Printf("cart cache invalidation failed for customer %s: %v", customerID, err)
	}
}
