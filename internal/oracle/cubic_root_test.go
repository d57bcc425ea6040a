package oracle

import (
	"errors"
	"math/big"
	"testing"

	"github.com/holiman/uint256"
)

func u256(t *testing.T, s string) *uint256.Int {
	t.Helper()
	b, ok := new(big.Int).SetString(s, 10)
	if !ok {
		t.Fatalf("invalid int: %s", s)
	}
	v, overflow := uint256.FromBig(b)
	if overflow {
		t.Fatalf("overflow: %s", s)
	}
	return v
}

func TestCubicRootReference(t *testing.T) {
	cases := []struct {
		x    string
		want string
	}{
		{"1000000000000000000000000000000000000", "1000000000000000000"},
		{"8000000000000000000000000000000000000", "1999999999999999999"},
		{"27000000000000000000000000000000000000", "3000000000000000000"},
		{"2000000000000000000000000000000000000", "1259921049894873164"},
		{"3000000000000000000000000000000000000", "1442249570307408381"},
		{"10000000000000000000000000000000000", "215443469003188371"},
		// 30000 * 2000, both base 1e18
		{"60000000000000000000000000000000000000000000", "391486764116886359517"},
		// 0.05 * 0.05
		{"2500000000000000000000000000000000", "135720880829745327"},
	}

	for _, tc := range cases {
		got, err := CubicRoot(u256(t, tc.x))
		if err != nil {
			t.Fatalf("cubic root %s: %v", tc.x, err)
		}
		if got.ToBig().String() != tc.want {
			t.Fatalf("cubic root %s = %s, want %s", tc.x, got.ToBig().String(), tc.want)
		}
	}
}

func TestCubicRootAccuracy(t *testing.T) {
	inputs := []string{
		"10000000000000000000000000000000000",
		"100000000000000000000000000000000000",
		"123456789000000000000000000000000000000",
		"5000000000000000000000000000000000000000",
		"999000000000000000000000000000000000",
		"1000000000000000000000000000000000000000000000",
		"30000000000000000000000000000000000000000000007",
		"1000000000000000000000000000000000000000000000000000000",
		"1000000000000000000000000000000000000000000000000000000000000",
	}
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

	for _, in := range inputs {
		x := u256(t, in)
		r, err := CubicRoot(x)
		if err != nil {
			t.Fatalf("cubic root %s: %v", in, err)
		}

		// allowed error: one unit or 1e-18 relative, plus one for truncation
		tol := new(big.Int).Div(r.ToBig(), scale)
		tol.Add(tol, big.NewInt(2))

		target := new(big.Int).Mul(x.ToBig(), scale)
		lo := new(big.Int).Sub(r.ToBig(), tol)
		hi := new(big.Int).Add(r.ToBig(), tol)
		if cube(lo).Cmp(target) > 0 || cube(hi).Cmp(target) < 0 {
			t.Fatalf("cubic root %s = %s outside tolerance %s", in, r.ToBig(), tol)
		}
	}
}

func cube(v *big.Int) *big.Int {
	out := new(big.Int).Mul(v, v)
	return out.Mul(out, v)
}

func TestCubicRootDeterministic(t *testing.T) {
	x := u256(t, "60000000000000000000000000000000000000000000")
	first, err := CubicRoot(x)
	if err != nil {
		t.Fatalf("cubic root: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := CubicRoot(x)
		if err != nil {
			t.Fatalf("cubic root: %v", err)
		}
		if !again.Eq(first) {
			t.Fatalf("non deterministic result: %s != %s", again.ToBig(), first.ToBig())
		}
	}
	if x.ToBig().String() != "60000000000000000000000000000000000000000000" {
		t.Fatalf("input mutated: %s", x.ToBig())
	}
}

func TestCubicRootSmallPrices(t *testing.T) {
	// products of two sub-$0.1 prices
	cases := []string{
		"100000000000000000000000000000000",  // 0.01 * 0.01
		"8100000000000000000000000000000000", // 0.09 * 0.09
		"2500000000000000000000000000000000", // 0.05 * 0.05
		"5000000000000000000",
		"100000000000000000000",
	}

	for _, in := range cases {
		x := u256(t, in)
		r, err := CubicRoot(x)
		if err != nil {
			if !errors.Is(err, ErrNonConvergence) {
				t.Fatalf("cubic root %s: unexpected error %v", in, err)
			}
			continue
		}
		tol := new(big.Int).Div(r.ToBig(), big.NewInt(1e18))
		tol.Add(tol, big.NewInt(2))
		target := new(big.Int).Mul(x.ToBig(), big.NewInt(1e18))
		lo := new(big.Int).Sub(r.ToBig(), tol)
		hi := new(big.Int).Add(r.ToBig(), tol)
		if cube(lo).Cmp(target) > 0 || cube(hi).Cmp(target) < 0 {
			t.Fatalf("cubic root %s converged to a wrong value %s", in, r.ToBig())
		}
	}
}

func TestCubicRootNonConvergence(t *testing.T) {
	for _, in := range []string{"100000000000000000000000000000000", "5000000000000000000"} {
		if _, err := CubicRoot(u256(t, in)); !errors.Is(err, ErrNonConvergence) {
			t.Fatalf("cubic root %s: expected non-convergence, got %v", in, err)
		}
	}
}

func TestCubicRootInvalid(t *testing.T) {
	if _, err := CubicRoot(uint256.NewInt(0)); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if _, err := CubicRoot(nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input for nil, got %v", err)
	}
	// initial estimate x/1e18 is zero
	if _, err := CubicRoot(uint256.NewInt(1000)); !errors.Is(err, ErrNonConvergence) {
		t.Fatalf("expected non-convergence for tiny input, got %v", err)
	}
}
