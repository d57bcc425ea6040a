package oracle

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
)

const maxIterations = 255

var (
	// ErrNonConvergence is returned when the cube root iteration runs out of budget.
	ErrNonConvergence = errors.New("cubic root did not converge")
	// ErrInvalidInput is returned for zero inputs where a positive value is required.
	ErrInvalidInput = errors.New("invalid input")
	// ErrOverflow is returned when an intermediate value exceeds 256 bits.
	ErrOverflow = errors.New("fixed point overflow")
	// ErrDegenerateDiscount is returned when the discount reaches 100% and the
	// bound would be negative.
	ErrDegenerateDiscount = errors.New("discount exceeds max price")
)

var (
	precision      = uint256.NewInt(1_000_000_000_000_000_000)
	twoPrecision   = uint256.NewInt(2_000_000_000_000_000_000)
	threePrecision = new(uint256.Int).Mul(precision, uint256.NewInt(3))
	one            = uint256.NewInt(1)
)

// CubicRoot returns the cube root of x, where x is scaled by 1e36 and the
// result by 1e18.
//
// The iteration does not converge for some small inputs: when the product of
// the two prices is below roughly 0.01 squared dollars (both assets under
// $0.1) it may stall and ErrNonConvergence is returned.
func CubicRoot(x *uint256.Int) (*uint256.Int, error) {
	if x == nil || x.IsZero() {
		return nil, fmt.Errorf("cubic root of zero: %w", ErrInvalidInput)
	}

	d := new(uint256.Int).Div(x, precision)
	for i := 0; i < maxIterations; i++ {
		if d.IsZero() {
			return nil, fmt.Errorf("zero estimate at iteration %d: %w", i, ErrNonConvergence)
		}

		next, err := cubicStep(x, d)
		if err != nil {
			return nil, err
		}

		diff := new(uint256.Int)
		if next.Gt(d) {
			diff.Sub(next, d)
		} else {
			diff.Sub(d, next)
		}

		if !diff.Gt(one) {
			return next, nil
		}
		scaled, overflow := new(uint256.Int).MulOverflow(diff, precision)
		if !overflow && scaled.Lt(next) {
			return next, nil
		}
		d = next
	}

	return nil, ErrNonConvergence
}

// cubicStep computes d * (2e18 + x/d*1e18/d*1e18/d) / 3e18 keeping the
// truncation order of the reference implementation.
func cubicStep(x, d *uint256.Int) (*uint256.Int, error) {
	t := new(uint256.Int).Div(x, d)
	if _, overflow := t.MulOverflow(t, precision); overflow {
		return nil, fmt.Errorf("cubic step x/D*1e18: %w", ErrOverflow)
	}
	t.Div(t, d)
	if _, overflow := t.MulOverflow(t, precision); overflow {
		return nil, fmt.Errorf("cubic step x/D^2*1e36: %w", ErrOverflow)
	}
	t.Div(t, d)
	if _, overflow := t.AddOverflow(t, twoPrecision); overflow {
		return nil, fmt.Errorf("cubic step 2e18 + term: %w", ErrOverflow)
	}
	if _, overflow := t.MulOverflow(t, d); overflow {
		return nil, fmt.Errorf("cubic step D*term: %w", ErrOverflow)
	}
	return t.Div(t, threePrecision), nil
}
