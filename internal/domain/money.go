package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var ErrNegativeMoney = errors.New("money amount cannot be negative")

// Money is a non-negative decimal amount in the storefront currency.
// It is encoded in JSON as a bare number so payloads match what the
// ordering backend expects.
type Money struct {
	amount decimal.Decimal
}

func NewMoney(d decimal.Decimal) Money {
	return Money{amount: d}
}

func MoneyFromFloat(f float64) Money {
	return Money{amount: decimal.NewFromFloat(f)}
}

func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("parse money %q: %w", s, err)
	}
	if d.IsNegative() {
		return Money{}, ErrNegativeMoney
	}
	return Money{amount: d}, nil
}

// MustMoney is ParseMoney for literals known to be valid.
func MustMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) Add(o Money) Money {
	return Money{amount: m.amount.Add(o.amount)}
}

func (m Money) Mul(quantity int) Money {
	return Money{amount: m.amount.Mul(decimal.NewFromInt(int64(quantity)))}
}

func (m Money) MulRate(rate decimal.Decimal) Money {
	return Money{amount: m.amount.Mul(rate)}
}

// Round2 rounds half away from zero to cents.
func (m Money) Round2() Money {
	return Money{amount: m.amount.Round(2)}
}

func (m Money) Decimal() decimal.Decimal {
	return m.amount
}

func (m Money) Equal(o Money) bool {
	return m.amount.Equal(o.amount)
}

func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

func (m Money) Float64() float64 {
	f, _ := m.amount.Float64()
	return f
}

// String formats the amount with exactly two decimals, for display.
func (m Money) String() string {
	return m.amount.StringFixed(2)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.amount.String()), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("decode money: %w", err)
	}
	if d.IsNegative() {
		return ErrNegativeMoney
	}
	m.amount = d
	return nil
}
