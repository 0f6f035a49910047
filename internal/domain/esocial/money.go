package esocial

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

const moneyScale = 2

// Money is a currency amount held at a fixed scale of two decimal places.
type Money struct {
	value decimal.Decimal
}

var Zero = Money{}

func NewMoney(d decimal.Decimal) Money {
	return Money{value: d.Round(moneyScale)}
}

func MoneyFromCents(cents int64) Money {
	return Money{value: decimal.New(cents, -moneyScale)}
}

// MoneyFromString parses a decimal amount. Amounts that carry a non-zero
// digit beyond the cent are rejected rather than rounded.
func MoneyFromString(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("parse amount %q: %w", s, err)
	}
	if !d.Equal(d.Round(moneyScale)) {
		return Money{}, fmt.Errorf("%w: %q", ErrAmountPrecision, s)
	}
	return NewMoney(d), nil
}

func MustMoney(s string) Money {
	m, err := MoneyFromString(s)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) Decimal() decimal.Decimal { return m.value }
func (m Money) Add(o Money) Money        { return Money{value: m.value.Add(o.value)} }
func (m Money) Sub(o Money) Money        { return Money{value: m.value.Sub(o.value)} }
func (m Money) IsZero() bool             { return m.value.IsZero() }
func (m Money) IsPositive() bool         { return m.value.IsPositive() }
func (m Money) Equal(o Money) bool       { return m.value.Equal(o.value) }

// String renders the amount with exactly two decimals and no separators.
func (m Money) String() string {
	return m.value.StringFixed(moneyScale)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*m = Money{}
		return nil
	}
	raw := string(bytes.Trim(data, `"`))
	parsed, err := MoneyFromString(raw)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
