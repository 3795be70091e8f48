// Package money provides a fixed-point currency amount used for all
// balances and transaction values. Amounts are held as int64 minor units
// at two decimal places so debit/credit pairs never drift through
// floating-point rounding.
package money

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalid  = errors.New("invalid money amount")
	ErrOverflow = errors.New("money amount outside representable range")
)

// Money is an amount in minor units (two decimal places). The zero value
// is 0.00.
type Money struct {
	units int64
}

// FromUnits builds a Money from minor units (e.g. 25000 -> 250.00).
func FromUnits(units int64) Money {
	return Money{units: units}
}

// Units returns the amount in minor units.
func (m Money) Units() int64 {
	return m.units
}

// Parse reads a decimal string such as "250.00" or "0.5". Amounts with
// more than two decimal places are rejected rather than rounded.
func Parse(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("Parse %q: %w", s, ErrInvalid)
	}

	shifted := d.Shift(2)
	if !shifted.IsInteger() {
		return Money{}, fmt.Errorf("Parse %q: more than two decimal places: %w", s, ErrInvalid)
	}

	bi := shifted.BigInt()
	if !bi.IsInt64() {
		return Money{}, fmt.Errorf("Parse %q: %w", s, ErrOverflow)
	}
	return Money{units: bi.Int64()}, nil
}

func (m Money) Add(o Money) (Money, error) {
	sum := m.units + o.units
	if (o.units > 0 && sum < m.units) || (o.units < 0 && sum > m.units) {
		return Money{}, fmt.Errorf("Add: %w", ErrOverflow)
	}
	return Money{units: sum}, nil
}

func (m Money) Sub(o Money) (Money, error) {
	diff := m.units - o.units
	if (o.units < 0 && diff < m.units) || (o.units > 0 && diff > m.units) {
		return Money{}, fmt.Errorf("Sub: %w", ErrOverflow)
	}
	return Money{units: diff}, nil
}

// Cmp returns -1, 0 or 1 as m is less than, equal to, or greater than o.
func (m Money) Cmp(o Money) int {
	switch {
	case m.units < o.units:
		return -1
	case m.units > o.units:
		return 1
	default:
		return 0
	}
}

func (m Money) LessThan(o Money) bool {
	return m.units < o.units
}

func (m Money) IsPositive() bool {
	return m.units > 0
}

func (m Money) IsZero() bool {
	return m.units == 0
}

// String formats the amount with exactly two decimal places.
func (m Money) String() string {
	return decimal.New(m.units, -2).StringFixed(2)
}

// Decimal returns the amount as a shopspring decimal.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.units, -2)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(m.String())), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	s := string(data)
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = unquoted
	}
	parsed, err := Parse(s)
	if err != nil {
		return fmt.Errorf("UnmarshalJSON: %w", err)
	}
	*m = parsed
	return nil
}

// Scan reads the amount from a BIGINT minor-unit column.
func (m *Money) Scan(src any) error {
	switch v := src.(type) {
	case int64:
		m.units = v
		return nil
	case nil:
		m.units = 0
		return nil
	default:
		return fmt.Errorf("Scan: unsupported type %T: %w", src, ErrInvalid)
	}
}

// Value stores the amount as minor units.
func (m Money) Value() (driver.Value, error) {
	return m.units, nil
}
