package oracle

import (
	"errors"
	"testing"

	"github.com/holiman/uint256"
)

func TestDeviationBps(t *testing.T) {
	got, err := DeviationBps(scaled(1001), scaled(1000))
	if err != nil {
		t.Fatalf("deviation: %v", err)
	}
	if got.StringFixed(2) != "10.00" {
		t.Fatalf("deviation = %s", got)
	}

	got, err = DeviationBps(scaled(999), scaled(1000))
	if err != nil {
		t.Fatalf("deviation: %v", err)
	}
	if got.StringFixed(2) != "-10.00" {
		t.Fatalf("deviation = %s", got)
	}
}

func TestDeviationBpsZeroReference(t *testing.T) {
	for _, ref := range []*uint256.Int{nil, uint256.NewInt(0)} {
		if _, err := DeviationBps(scaled(1), ref); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("reference %v: expected invalid input, got %v", ref, err)
		}
	}
	if _, err := DeviationBps(nil, scaled(1)); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("nil price: expected invalid input, got %v", err)
	}
}

func TestParseFixed18(t *testing.T) {
	v, err := ParseFixed18("0.00108746")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if v.Uint64() != DefaultDiscount0 {
		t.Fatalf("parsed %s", v.ToBig())
	}
	if _, err := ParseFixed18("-1"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input for negative, got %v", err)
	}
	if _, err := ParseFixed18("0.0000000000000000001"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input for 19 decimals, got %v", err)
	}
}
