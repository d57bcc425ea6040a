package oracle

import (
	"errors"
	"testing"

	"github.com/holiman/uint256"
)

var e18 = uint256.NewInt(1_000_000_000_000_000_000)

func scaled(n uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(n), e18)
}

func baselineSnapshot() PoolSnapshot {
	return PoolSnapshot{
		VirtualPrice: scaled(1),
		PriceOracle0: scaled(1),
		PriceOracle1: scaled(1),
		A:            uint256.NewInt(DefaultA0),
		Gamma:        uint256.NewInt(DefaultGamma0),
	}
}

func TestLPPriceBaseline(t *testing.T) {
	got, err := DefaultParams().LPPrice(baselineSnapshot())
	if err != nil {
		t.Fatalf("lp price: %v", err)
	}
	// 3e18 * (1 - DISCOUNT0/1e18)
	if got.Uint64() != 2_996_737_620_000_000_000 {
		t.Fatalf("baseline lp price = %s", got.ToBig())
	}
}

func TestDiscountRawBaseline(t *testing.T) {
	raw, err := DefaultParams().DiscountRaw(uint256.NewInt(DefaultGamma0), uint256.NewInt(DefaultA0))
	if err != nil {
		t.Fatalf("discount raw: %v", err)
	}
	// g = a = 1e18 gives g^2/1e18*a = 1e36
	want := new(uint256.Int).Mul(e18, e18)
	if !raw.Eq(want) {
		t.Fatalf("discount raw = %s, want %s", raw.ToBig(), want.ToBig())
	}
}

func TestDiscountFloor(t *testing.T) {
	params := DefaultParams()
	raw, err := params.DiscountRaw(uint256.NewInt(DefaultGamma0/100), uint256.NewInt(DefaultA0))
	if err != nil {
		t.Fatalf("discount raw: %v", err)
	}
	if !raw.Eq(discountFloor) {
		t.Fatalf("discount raw = %s, want 1e34", raw.ToBig())
	}

	snap := baselineSnapshot()
	snap.Gamma = uint256.NewInt(DefaultGamma0 / 100)
	got, err := params.LPPrice(snap)
	if err != nil {
		t.Fatalf("lp price: %v", err)
	}
	if got.Uint64() != 2_999_297_141_535_593_379 {
		t.Fatalf("floored lp price = %s", got.ToBig())
	}
}

func TestLPPriceTricrypto(t *testing.T) {
	cases := []struct {
		name string
		p1   uint64
		p2   uint64
		want string
	}{
		{name: "btc 20k eth 1.5k", p1: 20000, p2: 1500, want: "948096956578105370362"},
		{name: "btc 30k eth 2k", p1: 30000, p2: 2000, want: "1194527312934020492764"},
	}

	for _, tc := range cases {
		snap := PoolSnapshot{
			VirtualPrice: uint256.NewInt(1_018_000_000_000_000_000),
			PriceOracle0: scaled(tc.p1),
			PriceOracle1: scaled(tc.p2),
			A:            uint256.NewInt(1707629),
			Gamma:        uint256.NewInt(11809167828997),
		}
		got, err := DefaultParams().LPPrice(snap)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if got.ToBig().String() != tc.want {
			t.Fatalf("%s: lp price = %s, want %s", tc.name, got.ToBig(), tc.want)
		}
	}
}

func TestLPPriceMonotonic(t *testing.T) {
	params := DefaultParams()
	var prev *uint256.Int
	for _, p := range []uint64{1, 2, 3, 10, 1000, 30000} {
		snap := baselineSnapshot()
		snap.PriceOracle0 = scaled(p)
		got, err := params.LPPrice(snap)
		if err != nil {
			t.Fatalf("lp price p1=%d: %v", p, err)
		}

		swapped := baselineSnapshot()
		swapped.PriceOracle1 = scaled(p)
		other, err := params.LPPrice(swapped)
		if err != nil {
			t.Fatalf("lp price p2=%d: %v", p, err)
		}
		if !got.Eq(other) {
			t.Fatalf("asymmetric lp price for %d: %s != %s", p, got.ToBig(), other.ToBig())
		}

		if prev != nil && got.Lt(prev) {
			t.Fatalf("lp price decreased at p1=%d: %s < %s", p, got.ToBig(), prev.ToBig())
		}
		prev = got
	}
	if prev == nil {
		t.Fatalf("no prices computed")
	}
}

func TestLPPriceKnownSteps(t *testing.T) {
	snap := baselineSnapshot()
	snap.PriceOracle0 = scaled(2)
	got, err := DefaultParams().LPPrice(snap)
	if err != nil {
		t.Fatalf("lp price: %v", err)
	}
	if got.Uint64() != 3_775_652_808_449_863_456 {
		t.Fatalf("lp price = %s", got.ToBig())
	}
}

func TestLPPriceInvalidInput(t *testing.T) {
	params := DefaultParams()
	mutations := map[string]func(*PoolSnapshot){
		"vp":    func(s *PoolSnapshot) { s.VirtualPrice = uint256.NewInt(0) },
		"p1":    func(s *PoolSnapshot) { s.PriceOracle0 = nil },
		"p2":    func(s *PoolSnapshot) { s.PriceOracle1 = uint256.NewInt(0) },
		"A":     func(s *PoolSnapshot) { s.A = uint256.NewInt(0) },
		"gamma": func(s *PoolSnapshot) { s.Gamma = nil },
	}
	for name, mutate := range mutations {
		snap := baselineSnapshot()
		mutate(&snap)
		if _, err := params.LPPrice(snap); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%s: expected invalid input, got %v", name, err)
		}
	}

	if _, err := (Params{}).LPPrice(baselineSnapshot()); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input for empty params, got %v", err)
	}
}

func TestLPPriceNonConvergencePropagates(t *testing.T) {
	snap := baselineSnapshot()
	// 0.01 * 0.01
	snap.PriceOracle0 = uint256.NewInt(10_000_000_000_000_000)
	snap.PriceOracle1 = uint256.NewInt(10_000_000_000_000_000)
	if _, err := DefaultParams().LPPrice(snap); !errors.Is(err, ErrNonConvergence) {
		t.Fatalf("expected non-convergence, got %v", err)
	}
}

func TestLPPriceOverflow(t *testing.T) {
	snap := baselineSnapshot()
	max := new(uint256.Int).SetAllOne()
	snap.PriceOracle0 = max
	snap.PriceOracle1 = max
	if _, err := DefaultParams().LPPrice(snap); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected overflow, got %v", err)
	}
}

func TestLPPriceDegenerateDiscount(t *testing.T) {
	snap := baselineSnapshot()
	snap.Gamma = uint256.NewInt(DefaultGamma0 * 10_000)
	snap.A = uint256.NewInt(DefaultA0 * 1000)

	// the unbounded formula gives -12.142626579001657599 here
	got, err := DefaultParams().LPPrice(snap)
	if !errors.Is(err, ErrDegenerateDiscount) {
		t.Fatalf("expected degenerate discount, got %v", err)
	}
	if got != nil {
		t.Fatalf("price must be nil on error, got %s", got.ToBig())
	}
}
