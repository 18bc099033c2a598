package domain

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// Money is an amount in a single currency. All rows touched by one
// storefront operation share the same currency, so arithmetic does not
// re-check units.
type Money struct {
	Amount   decimal.Decimal
	Currency currency.Unit
}

func NewMoney(amount decimal.Decimal, unit currency.Unit) Money {
	return Money{Amount: amount, Currency: unit}
}

func (m Money) Add(amount decimal.Decimal) Money {
	return Money{Amount: m.Amount.Add(amount), Currency: m.Currency}
}

func (m Money) Sub(amount decimal.Decimal) Money {
	return Money{Amount: m.Amount.Sub(amount), Currency: m.Currency}
}

func (m Money) MulInt(n int32) Money {
	return Money{Amount: m.Amount.Mul(decimal.NewFromInt32(n)), Currency: m.Currency}
}

// AmountString formats the amount with exactly two decimal places,
// the format the payment gateway signs.
func (m Money) AmountString() string {
	return m.Amount.StringFixed(2)
}

func (m Money) IsZero() bool {
	return m.Amount.IsZero()
}
