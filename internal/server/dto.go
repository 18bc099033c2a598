package server

import (
	"time"

	"github.com/google/uuid"
	"github.com/sthaarun/storefront/internal/domain"
)

type CartItemDTO struct {
	ID        string `json:"id"`
	VariantID string `json:"variant_id"`
	Quantity  int32  `json:"quantity"`
	Price     string `json:"price"`
	Currency  string `json:"currency"`
}

type CartDTO struct {
	ID         string        `json:"id,omitempty"`
	CustomerID string        `json:"customer_id"`
	Type       string        `json:"type"`
	Total      string        `json:"total"`
	Currency   string        `json:"currency,omitempty"`
	ExpiresAt  *time.Time    `json:"expires_at,omitempty"`
	Items      []CartItemDTO `json:"items"`
}

type OrderItemDTO struct {
	PublicID    string     `json:"id"`
	ProductID   string     `json:"product_id"`
	VariantID   string     `json:"variant_id"`
	Name        string     `json:"name"`
	UnitPrice   string     `json:"unit_price"`
	Quantity    int32      `json:"quantity"`
	LineTotal   string     `json:"line_total"`
	Status      string     `json:"status"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
}

type OrderDTO struct {
	PublicID      string         `json:"id"`
	TransactionID string         `json:"transaction_id"`
	Status        string         `json:"status"`
	Subtotal      string         `json:"subtotal"`
	ShippingCost  string         `json:"shipping_cost"`
	Tax           string         `json:"tax"`
	Discount      string         `json:"discount"`
	Total         string         `json:"total"`
	Currency      string         `json:"currency"`
	PaymentMethod string         `json:"payment_method"`
	Notes         string         `json:"notes,omitempty"`
	Items         []OrderItemDTO `json:"items"`
	PlacedAt      time.Time      `json:"placed_at"`
	PaidAt        *time.Time     `json:"paid_at,omitempty"`
	ShippedAt     *time.Time     `json:"shipped_at,omitempty"`
	DeliveredAt   *time.Time     `json:"delivered_at,omitempty"`
	CancelledAt   *time.Time     `json:"cancelled_at,omitempty"`
}

func toCartDTO(cart domain.Cart) CartDTO {
	dto := CartDTO{
		CustomerID: cart.CustomerID,
		Type:       string(cart.Type),
		Total:      cart.Total.AmountString(),
		Items:      make([]CartItemDTO, 0, len(cart.Items)),
	}

	if cart.ID != uuid.Nil {
		dto.ID = cart.ID.String()
		dto.Currency = cart.Total.Currency.String()
		expiresAt := cart.ExpiresAt
		dto.ExpiresAt = &expiresAt
	}

	for _, item := range cart.Items {
		dto.Items = append(dto.Items, CartItemDTO{
			ID:        item.ID.String(),
			VariantID: item.VariantID.String(),
			Quantity:  item.Quantity,
			Price:     item.Price.AmountString(),
			Currency:  item.Price.Currency.String(),
		})
	}

	return dto
}

func toOrderDTO(order domain.Order) OrderDTO {
	dto := OrderDTO{
		PublicID:      order.PublicID,
		TransactionID: order.TransactionID,
		Status:        string(order.Status),
		Subtotal:      order.Subtotal.AmountString(),
		ShippingCost:  order.ShippingCost.AmountString(),
		Tax:           order.Tax.AmountString(),
		Discount:      order.Discount.AmountString(),
		Total:         order.Total.AmountString(),
		Currency:      order.Total.Currency.String(),
		PaymentMethod: order.PaymentMethod,
		Notes:         order.Notes,
		Items:         make([]OrderItemDTO, 0, len(order.Items)),
		PlacedAt:      order.PlacedAt,
		PaidAt:        order.PaidAt,
		ShippedAt:     order.ShippedAt,
		DeliveredAt:   order.DeliveredAt,
		CancelledAt:   order.CancelledAt,
	}

	for _, item := range order.Items {
		dto.Items = append(dto.Items, OrderItemDTO{
			PublicID:    item.PublicID,
			ProductID:   item.ProductID.String(),
			VariantID:   item.VariantID.String(),
			Name:        item.Name,
			UnitPrice:   item.UnitPrice.AmountString(),
			Quantity:    item.Quantity,
			LineTotal:   item.LineTotal.AmountString(),
			Status:      string(item.Status),
			CancelledAt: item.CancelledAt,
		})
	}

	return dto
}
