package oracle

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// ToDecimal converts a base-1e18 value into a decimal.
func ToDecimal(v *uint256.Int) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(v.ToBig(), -18)
}

// ParseFixed18 parses a decimal string ("1.5") into a base-1e18 value.
func ParseFixed18(input string) (*uint256.Int, error) {
	d, err := decimal.NewFromString(input)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", input, err)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("negative value %q: %w", input, ErrInvalidInput)
	}
	scaled := d.Shift(18)
	if !scaled.Equal(scaled.Truncate(0)) {
		return nil, fmt.Errorf("more than 18 decimals in %q: %w", input, ErrInvalidInput)
	}
	v, overflow := uint256.FromBig(scaled.BigInt())
	if overflow {
		return nil, fmt.Errorf("parse %q: %w", input, ErrOverflow)
	}
	return v, nil
}

// DeviationBps returns (a-b)/b in basis points. A zero reference b has no
// defined deviation and yields ErrInvalidInput.
func DeviationBps(a, b *uint256.Int) (decimal.Decimal, error) {
	if isZero(b) {
		return decimal.Zero, fmt.Errorf("reference price is zero: %w", ErrInvalidInput)
	}
	if a == nil {
		return decimal.Zero, fmt.Errorf("price is nil: %w", ErrInvalidInput)
	}
	da := decimal.NewFromBigInt(a.ToBig(), 0)
	db := decimal.NewFromBigInt(b.ToBig(), 0)
	return da.Sub(db).Div(db).Mul(decimal.NewFromInt(10_000)), nil
}
