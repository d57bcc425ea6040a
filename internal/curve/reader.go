package curve

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"curveOps/internal/oracle"
)

// ContractCaller performs read-only contract calls.
type ContractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Reader reads Curve contract state.
type Reader struct {
	caller ContractCaller
	logger *zap.Logger
}

func NewReader(caller ContractCaller, logger *zap.Logger) *Reader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reader{caller: caller, logger: logger}
}

// ReadPoolSnapshot loads virtual price, A, gamma and both price oracles of a
// tricrypto pool. A nil block reads the latest state.
func (r *Reader) ReadPoolSnapshot(ctx context.Context, pool common.Address, block *big.Int) (oracle.PoolSnapshot, error) {
	poolABI, err := TricryptoABI()
	if err != nil {
		return oracle.PoolSnapshot{}, fmt.Errorf("parse pool abi: %w", err)
	}

	vp, err := r.callUint(ctx, pool, poolABI, block, "get_virtual_price")
	if err != nil {
		return oracle.PoolSnapshot{}, err
	}
	a, err := r.callUint(ctx, pool, poolABI, block, "A")
	if err != nil {
		return oracle.PoolSnapshot{}, err
	}
	gamma, err := r.callUint(ctx, pool, poolABI, block, "gamma")
	if err != nil {
		return oracle.PoolSnapshot{}, err
	}
	p1, err := r.callUint(ctx, pool, poolABI, block, "price_oracle", big.NewInt(0))
	if err != nil {
		return oracle.PoolSnapshot{}, err
	}
	p2, err := r.callUint(ctx, pool, poolABI, block, "price_oracle", big.NewInt(1))
	if err != nil {
		return oracle.PoolSnapshot{}, err
	}

	r.logger.Debug("pool snapshot",
		zap.String("pool", pool.Hex()),
		zap.Stringer("virtual_price", vp),
		zap.Stringer("a", a),
		zap.Stringer("gamma", gamma),
		zap.Stringer("price_oracle_0", p1),
		zap.Stringer("price_oracle_1", p2),
	)

	return oracle.PoolSnapshot{
		VirtualPrice: vp,
		PriceOracle0: p1,
		PriceOracle1: p2,
		A:            a,
		Gamma:        gamma,
	}, nil
}

// OracleLPPrice reads lp_price() from an on-chain LP oracle.
func (r *Reader) OracleLPPrice(ctx context.Context, lpOracle common.Address, block *big.Int) (*uint256.Int, error) {
	oracleABI, err := LPOracleABI()
	if err != nil {
		return nil, fmt.Errorf("parse oracle abi: %w", err)
	}
	return r.callUint(ctx, lpOracle, oracleABI, block, "lp_price")
}

// VirtualPrice reads get_virtual_price() of a pool.
func (r *Reader) VirtualPrice(ctx context.Context, pool common.Address, block *big.Int) (*uint256.Int, error) {
	poolABI, err := TricryptoABI()
	if err != nil {
		return nil, fmt.Errorf("parse pool abi: %w", err)
	}
	return r.callUint(ctx, pool, poolABI, block, "get_virtual_price")
}

// TokensPerWeek reads the fee distributor amount for the week starting at ts.
func (r *Reader) TokensPerWeek(ctx context.Context, distributor common.Address, ts uint64) (*uint256.Int, error) {
	distributorABI, err := FeeDistributorABI()
	if err != nil {
		return nil, fmt.Errorf("parse distributor abi: %w", err)
	}
	return r.callUint(ctx, distributor, distributorABI, nil, "tokens_per_week", new(big.Int).SetUint64(ts))
}

func (r *Reader) callUint(ctx context.Context, contract common.Address, parsed abi.ABI, block *big.Int, method string, args ...interface{}) (*uint256.Int, error) {
	if r.caller == nil {
		return nil, fmt.Errorf("chain client is nil")
	}
	data, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	msg := ethereum.CallMsg{To: &contract, Data: data}
	resp, err := r.caller.CallContract(ctx, msg, block)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	values, err := parsed.Unpack(method, resp)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	if len(values) != 1 {
		return nil, fmt.Errorf("%s return size %d", method, len(values))
	}
	return asUint256(values[0])
}

func asUint256(value interface{}) (*uint256.Int, error) {
	switch v := value.(type) {
	case *big.Int:
		out, overflow := uint256.FromBig(v)
		if overflow || v.Sign() < 0 {
			return nil, fmt.Errorf("value out of uint256 range: %s", v)
		}
		return out, nil
	case uint64:
		return uint256.NewInt(v), nil
	case uint32:
		return uint256.NewInt(uint64(v)), nil
	case uint8:
		return uint256.NewInt(uint64(v)), nil
	default:
		return nil, fmt.Errorf("unsupported int type %T", value)
	}
}
