package fees

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"curveOps/internal/model"
	"curveOps/internal/oracle"
)

// Week is the fee distributor epoch length.
const Week = 7 * 24 * time.Hour

const defaultMaxWeeks = 520

// Source reads fee distributor and pool state. *curve.Reader implements it.
type Source interface {
	TokensPerWeek(ctx context.Context, distributor common.Address, ts uint64) (*uint256.Int, error)
	VirtualPrice(ctx context.Context, pool common.Address, block *big.Int) (*uint256.Int, error)
}

type Options struct {
	Distributor common.Address
	// PricePool prices the distributed LP token (3pool for 3CRV).
	PricePool common.Address
	Now       time.Time
	MaxWeeks  int
}

// WeeklyFees walks back from the current week collecting distributed fees
// until it meets an empty week. The current week is dropped while it is
// still empty. Results are oldest first.
func WeeklyFees(ctx context.Context, src Source, opts Options, logger *zap.Logger) ([]model.WeeklyFee, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	maxWeeks := opts.MaxWeeks
	if maxWeeks <= 0 {
		maxWeeks = defaultMaxWeeks
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	vp, err := src.VirtualPrice(ctx, opts.PricePool, nil)
	if err != nil {
		return nil, fmt.Errorf("virtual price: %w", err)
	}
	price := oracle.ToDecimal(vp)

	week := uint64(Week / time.Second)
	t := uint64(now.Unix()) / week * week

	type entry struct {
		ts     uint64
		tokens *uint256.Int
	}
	var collected []entry
	for i := 0; i < maxWeeks; i++ {
		tokens, err := src.TokensPerWeek(ctx, opts.Distributor, t)
		if err != nil {
			return nil, fmt.Errorf("tokens per week %d: %w", t, err)
		}
		if tokens.IsZero() && len(collected) > 0 {
			break
		}
		collected = append(collected, entry{ts: t, tokens: tokens})
		if t < week {
			break
		}
		t -= week
		if i == maxWeeks-1 {
			logger.Warn("weekly fee walk hit max weeks", zap.Int("max_weeks", maxWeeks))
		}
	}
	if len(collected) > 0 && collected[0].tokens.IsZero() {
		collected = collected[1:]
	}

	out := make([]model.WeeklyFee, 0, len(collected))
	for i := len(collected) - 1; i >= 0; i-- {
		e := collected[i]
		out = append(out, model.WeeklyFee{
			WeekStart:    time.Unix(int64(e.ts), 0).UTC(),
			Tokens:       e.tokens.Dec(),
			VirtualPrice: vp.Dec(),
			USD:          oracle.ToDecimal(e.tokens).Mul(price).StringFixed(2),
		})
	}
	return out, nil
}
