package fees

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	vp     *uint256.Int
	tokens map[uint64]*uint256.Int
	reads  int
}

func (f *fakeSource) TokensPerWeek(_ context.Context, _ common.Address, ts uint64) (*uint256.Int, error) {
	f.reads++
	if v, ok := f.tokens[ts]; ok {
		return v, nil
	}
	return uint256.NewInt(0), nil
}

func (f *fakeSource) VirtualPrice(context.Context, common.Address, *big.Int) (*uint256.Int, error) {
	return f.vp, nil
}

func e18(n uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(n), uint256.NewInt(1e18))
}

const week = uint64(7 * 24 * 3600)

func TestWeeklyFeesWalksBack(t *testing.T) {
	current := uint64(1633564800) // a Thursday, week aligned
	src := &fakeSource{
		vp: uint256.NewInt(1_020_000_000_000_000_000),
		tokens: map[uint64]*uint256.Int{
			current - week:   e18(1000),
			current - 2*week: e18(2000),
			current - 3*week: e18(500),
			current - 5*week: e18(9999),
		},
	}

	out, err := WeeklyFees(context.Background(), src, Options{Now: time.Unix(int64(current)+3600, 0)}, nil)
	require.NoError(t, err)
	require.Len(t, out, 3)

	require.Equal(t, time.Unix(int64(current-3*week), 0).UTC(), out[0].WeekStart)
	require.Equal(t, "510.00", out[0].USD)
	require.Equal(t, "2040.00", out[1].USD)
	require.Equal(t, "1020.00", out[2].USD)
	require.Equal(t, "1000000000000000000000", out[2].Tokens)
	require.Equal(t, "1020000000000000000", out[2].VirtualPrice)
	// current, three weeks, then the empty one
	require.Equal(t, 5, src.reads)
}

func TestWeeklyFeesKeepsCurrentWeek(t *testing.T) {
	current := uint64(1633564800)
	src := &fakeSource{
		vp: e18(1),
		tokens: map[uint64]*uint256.Int{
			current:        e18(7),
			current - week: e18(3),
		},
	}
	out, err := WeeklyFees(context.Background(), src, Options{Now: time.Unix(int64(current), 0)}, nil)
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Equal(t, "3.00", out[0].USD)
	require.Equal(t, "7.00", out[1].USD)
}

func TestWeeklyFeesMaxWeeks(t *testing.T) {
	current := uint64(1633564800)
	tokens := map[uint64]*uint256.Int{}
	for i := uint64(0); i < 100; i++ {
		tokens[current-i*week] = e18(1)
	}
	src := &fakeSource{vp: e18(1), tokens: tokens}
	out, err := WeeklyFees(context.Background(), src, Options{Now: time.Unix(int64(current), 0), MaxWeeks: 10}, nil)
	require.NoError(t, err)
	require.Len(t, out, 10)
	require.Equal(t, 10, src.reads)
}

func TestWeeklyFeesNothingDistributed(t *testing.T) {
	src := &fakeSource{vp: e18(1), tokens: map[uint64]*uint256.Int{}}
	out, err := WeeklyFees(context.Background(), src, Options{Now: time.Unix(1633564800, 0)}, nil)
	require.NoError(t, err)
	require.Empty(t, out)
	require.Equal(t, 2, src.reads)
}
