package domain

import (
	"errors"
	"fmt"
	"time"
)

// OrderFilter has AND semantics across fields, OR semantics within each field slice
type OrderFilter struct {
	PublicIDs      []string
	CustomerIDs    []string
	TransactionIDs []string
	Statuses       []OrderStatus
	PlacedAt       *TimeRange
}

func (f OrderFilter) Validate() error {
	if len(f.PublicIDs) == 0 && len(f.CustomerIDs) == 0 && len(f.TransactionIDs) == 0 && len(f.Statuses) == 0 && f.PlacedAt == nil {
		return errors.New("all fields are empty")
	}

	for _, status := range f.Statuses {
		if _, err := ToOrderStatus(string(status)); err != nil {
			return fmt.Errorf("status[%s]: %w", status, err)
		}
	}

	if f.PlacedAt != nil {
		if err := f.PlacedAt.Validate(); err != nil {
			return fmt.Errorf("placedAt: %w", err)
		}
	}

	return nil
}

type TimeRange struct {
	Before *time.Time
	After  *time.Time
}

func (t TimeRange) Validate() error {
	if t.Before == nil && t.After == nil {
		return errors.New("both Before and After are nil")
	}

	if t.Before != nil && t.After != nil {
		if t.Before.Before(*t.After) {
			return fmt.Errorf("before is before After")
		}
	}

	return nil
}
