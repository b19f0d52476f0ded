package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ptr returns a pointer to v
func Ptr[T any](v T) *T {
	return &v
}

// EqualPtr compares two optional values; two nils are equal
func EqualPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// EqualTime compares two optional instants
func EqualTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

// EqualDecimal compares two optional decimals by value
func EqualDecimal(a, b *decimal.Decimal) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

// DecimalOrZero dereferences d, treating nil as zero
func DecimalOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

// IsZeroOrNil reports whether d is absent or zero
func IsZeroOrNil(d *decimal.Decimal) bool {
	return d == nil || d.IsZero()
}

// TruncateDay drops the time of day, keeping the location
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// VATRate is the fixed multiplier from net to gross cost
var VATRate = decimal.RequireFromString("1.2")
