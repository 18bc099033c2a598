// Package cache provides the active-cart read-through cache. The
// database stays authoritative: every cache failure degrades to a miss.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sthaarun/storefront/internal/domain"
	"github.com/sthaarun/storefront/internal/port"
	"golang.org/x/text/currency"
)

type RedisCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func NewRedis(client *redis.Client) *RedisCache {
	return &RedisCache{
		client:  client,
		baseTTL: 15 * time.Minute,
	}
}

var _ port.CartCache = (*RedisCache)(nil)

// cachedCart is the wire form of a cart; Money does not marshal directly.
type cachedCart struct {
	ID            uuid.UUID    `json:"id"`
	CustomerID    string       `json:"customer_id"`
	Type          string       `json:"type"`
	TotalAmount   string       `json:"total_amount"`
	TotalCurrency string       `json:"total_currency"`
	ExpiresAt     time.Time    `json:"expires_at"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
	Items         []cachedItem `json:"items"`
}

type cachedItem struct {
	ID            uuid.UUID `json:"id"`
	CartID        uuid.UUID `json:"cart_id"`
	VariantID     uuid.UUID `json:"variant_id"`
	Quantity      int32     `json:"quantity"`
	PriceAmount   string    `json:"price_amount"`
	PriceCurrency string    `json:"price_currency"`
	CreatedAt     time.Time `json:"created_at"`
}

func (r *RedisCache) Get(ctx context.Context, customerID string) (domain.Cart, bool, error) {
	var c domain.Cart

	data, err := r.client.Get(ctx, cacheKey(customerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return c, false, nil
	}
	if err != nil {
		return c, false, fmt.Errorf("redis get: %w", err)
	}

	var cached cachedCart
	if err := json.Unmarshal(data, &cached); err != nil {
		return c, false, fmt.Errorf("unmarshal cart: %w", err)
	}

	cart, err := cached.toDomain()
	if err != nil {
		return c, false, fmt.Errorf("toDomain: %w", err)
	}

	return cart, true, nil
}

func (r *RedisCache) Set(ctx context.Context, customerID string, cart domain.Cart) error {
	data, err := json.Marshal(fromDomain(cart))
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}

	// Jitter spreads expiry so a burst of writes does not expire at once.
	ttl := r.baseTTL + time.Duration(rand.Intn(5))*time.Minute

	if err := r.client.Set(ctx, cacheKey(customerID), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}

	return nil
}

func (r *RedisCache) Invalidate(ctx context.Context, customerID string) error {
	if err := r.client.Del(ctx, cacheKey(customerID)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func cacheKey(customerID string) string {
	return "cart:active:" + customerID
}

func fromDomain(cart domain.Cart) cachedCart {
	cached := cachedCart{
		ID:            cart.ID,
		CustomerID:    cart.CustomerID,
		Type:          string(cart.Type),
		TotalAmount:   cart.Total.Amount.String(),
		TotalCurrency: cart.Total.Currency.String(),
		ExpiresAt:     cart.ExpiresAt,
		CreatedAt:     cart.CreatedAt,
		UpdatedAt:     cart.UpdatedAt,
	}

	for _, item := range cart.Items {
		cached.Items = append(cached.Items, cachedItem{
			ID:            item.ID,
			CartID:        item.CartID,
			VariantID:     item.VariantID,
			Quantity:      item.Quantity,
			PriceAmount:   item.Price.Amount.String(),
			PriceCurrency: item.Price.Currency.String(),
			CreatedAt:     item.CreatedAt,
		})
	}

	return cached
}

func (c cachedCart) toDomain() (domain.Cart, error) {
	cartType, err := domain.ToCartType(c.Type)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("domain.ToCartType[%s]: %w", c.Type, err)
	}

	total, err := parseMoney(c.TotalAmount, c.TotalCurrency)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("parseMoney: %w", err)
	}

	cart := domain.Cart{
		ID:         c.ID,
		CustomerID: c.CustomerID,
		Type:       cartType,
		Total:      total,
		ExpiresAt:  c.ExpiresAt,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}

	for _, item := range c.Items {
		price, err := parseMoney(item.PriceAmount, item.PriceCurrency)
		if err != nil {
			return domain.Cart{}, fmt.Errorf("parseMoney: %w", err)
		}

		cart.Items = append(cart.Items, domain.CartItem{
			ID:        item.ID,
			CartID:    item.CartID,
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
			Price:     price,
			CreatedAt: item.CreatedAt,
		})
	}

	return cart, nil
}

func parseMoney(amount, currencyCode string) (domain.Money, error) {
	parsedAmount, err := decimal.NewFromString(amount)
	if err != nil {
		return domain.Money{}, fmt.Errorf("amount[%s] is not valid: %w", amount, err)
	}

	parsedCurrency, err := currency.ParseISO(currencyCode)
	if err != nil {
		return domain.Money{}, fmt.Errorf("currency[%s] is not valid: %w", currencyCode, err)
	}

	return domain.Money{Amount: parsedAmount, Currency: parsedCurrency}, nil
}
