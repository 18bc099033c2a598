package domain

import "errors"

type OrderStatus string

// remember to add new statuses to the validOrderStatuses map
// and to the transition table below
const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusRefunded  OrderStatus = "refunded"
	OrderStatusReturned  OrderStatus = "returned"
	OrderStatusExpired   OrderStatus = "expired"
)

var validOrderStatuses = map[OrderStatus]struct{}{
	OrderStatusPending:   {},
	OrderStatusPaid:      {},
	OrderStatusShipped:   {},
	OrderStatusDelivered: {},
	OrderStatusCancelled: {},
	OrderStatusRefunded:  {},
	OrderStatusReturned:  {},
	OrderStatusExpired:   {},
}

// orderTransitions lists the allowed next statuses. A pending order can
// also be removed entirely by the payment-abort path, which is a delete,
// not a transition.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending: {OrderStatusPaid, OrderStatusExpired},
	OrderStatusPaid:    {OrderStatusShipped, OrderStatusCancelled, OrderStatusRefunded, OrderStatusReturned},
	OrderStatusShipped: {OrderStatusDelivered, OrderStatusCancelled, OrderStatusRefunded, OrderStatusReturned},
}

func ToOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(s)
	if _, ok := validOrderStatuses[status]; ok {
		return status, nil
	}

	return "", errors.New("invalid order status")
}

func OrderStatuses() []OrderStatus {
	result := make([]OrderStatus, 0, len(validOrderStatuses))
	for status := range validOrderStatuses {
		result = append(result, status)
	}
	return result
}

func (s OrderStatus) IsTerminal() bool {
	switch s {
	case OrderStatusDelivered, OrderStatusCancelled, OrderStatusRefunded, OrderStatusReturned, OrderStatusExpired:
		return true
	}
	return false
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type OrderItemStatus string

const (
	OrderItemStatusPaid      OrderItemStatus = "paid"
	OrderItemStatusCancelled OrderItemStatus = "cancelled"
)
