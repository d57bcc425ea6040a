package oracle

import (
	"fmt"

	"github.com/holiman/uint256"
)

// Baseline calibration of the tricrypto2 LP oracle.
const (
	DefaultGamma0    uint64 = 28_000_000_000_000     // 2.8e-5
	DefaultA0        uint64 = 2 * 3 * 3 * 3 * 10_000 // 540000
	DefaultDiscount0 uint64 = 1_087_460_000_000_000  // 0.00108746
)

// discountFloor keeps the discount input inside the solver's convergence domain.
var discountFloor = new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(34))

// Params holds the baseline constants of a deployed LP oracle.
type Params struct {
	Gamma0    *uint256.Int
	A0        *uint256.Int
	Discount0 *uint256.Int
}

// DefaultParams returns the constants of the mainnet tricrypto2 oracle.
func DefaultParams() Params {
	return Params{
		Gamma0:    uint256.NewInt(DefaultGamma0),
		A0:        uint256.NewInt(DefaultA0),
		Discount0: uint256.NewInt(DefaultDiscount0),
	}
}

// PoolSnapshot is a point-in-time read of a tricrypto pool.
// All fields are base 1e18 except A.
type PoolSnapshot struct {
	VirtualPrice *uint256.Int
	PriceOracle0 *uint256.Int
	PriceOracle1 *uint256.Int
	A            *uint256.Int
	Gamma        *uint256.Int
}

func (p Params) validate() error {
	if isZero(p.Gamma0) || isZero(p.A0) || isZero(p.Discount0) {
		return fmt.Errorf("params must be positive: %w", ErrInvalidInput)
	}
	return nil
}

func (s PoolSnapshot) validate() error {
	switch {
	case isZero(s.VirtualPrice):
		return fmt.Errorf("virtual price is zero: %w", ErrInvalidInput)
	case isZero(s.PriceOracle0):
		return fmt.Errorf("price oracle 0 is zero: %w", ErrInvalidInput)
	case isZero(s.PriceOracle1):
		return fmt.Errorf("price oracle 1 is zero: %w", ErrInvalidInput)
	case isZero(s.A):
		return fmt.Errorf("A is zero: %w", ErrInvalidInput)
	case isZero(s.Gamma):
		return fmt.Errorf("gamma is zero: %w", ErrInvalidInput)
	}
	return nil
}

// LPPrice returns an upper bound for the price of one LP token, in the unit
// of the virtual price.
func (p Params) LPPrice(s PoolSnapshot) (*uint256.Int, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	if err := s.validate(); err != nil {
		return nil, err
	}

	product, err := mul(s.PriceOracle0, s.PriceOracle1)
	if err != nil {
		return nil, fmt.Errorf("p1*p2: %w", err)
	}
	root, err := CubicRoot(product)
	if err != nil {
		return nil, fmt.Errorf("price root: %w", err)
	}

	maxPrice, err := mul(uint256.NewInt(3), s.VirtualPrice)
	if err != nil {
		return nil, fmt.Errorf("3*vp: %w", err)
	}
	if maxPrice, err = mul(maxPrice, root); err != nil {
		return nil, fmt.Errorf("3*vp*root: %w", err)
	}
	maxPrice.Div(maxPrice, precision)

	raw, err := p.DiscountRaw(s.Gamma, s.A)
	if err != nil {
		return nil, err
	}
	discount, err := CubicRoot(raw)
	if err != nil {
		return nil, fmt.Errorf("discount root: %w", err)
	}
	if discount, err = mul(discount, p.Discount0); err != nil {
		return nil, fmt.Errorf("discount: %w", err)
	}
	discount.Div(discount, precision)

	cut, err := mul(maxPrice, discount)
	if err != nil {
		return nil, fmt.Errorf("max_price*discount: %w", err)
	}
	cut.Div(cut, precision)
	if cut.Gt(maxPrice) {
		return nil, fmt.Errorf("cut %s over max price %s: %w", cut.Dec(), maxPrice.Dec(), ErrDegenerateDiscount)
	}

	return maxPrice.Sub(maxPrice, cut), nil
}

// DiscountRaw returns max(g^2/1e18*a, 1e34) with g = gamma*1e18/Gamma0 and
// a = A*1e18/A0, the 1e36-scaled input of the discount cube root.
func (p Params) DiscountRaw(gamma, a *uint256.Int) (*uint256.Int, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	if gamma == nil || a == nil {
		return nil, fmt.Errorf("gamma and A are required: %w", ErrInvalidInput)
	}

	g, err := mul(gamma, precision)
	if err != nil {
		return nil, fmt.Errorf("gamma*1e18: %w", err)
	}
	g.Div(g, p.Gamma0)

	an, err := mul(a, precision)
	if err != nil {
		return nil, fmt.Errorf("A*1e18: %w", err)
	}
	an.Div(an, p.A0)

	raw, err := mul(g, g)
	if err != nil {
		return nil, fmt.Errorf("g^2: %w", err)
	}
	raw.Div(raw, precision)
	if raw, err = mul(raw, an); err != nil {
		return nil, fmt.Errorf("g^2*a: %w", err)
	}

	if raw.Lt(discountFloor) {
		return new(uint256.Int).Set(discountFloor), nil
	}
	return raw, nil
}

func mul(x, y *uint256.Int) (*uint256.Int, error) {
	z, overflow := new(uint256.Int).MulOverflow(x, y)
	if overflow {
		return nil, ErrOverflow
	}
	return z, nil
}

func isZero(v *uint256.Int) bool {
	return v == nil || v.IsZero()
}
