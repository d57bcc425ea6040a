package main

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"curveOps/internal/chain"
	"curveOps/internal/config"
	"curveOps/internal/curve"
	"curveOps/internal/model"
	"curveOps/internal/oracle"
	"curveOps/internal/retry"
	"curveOps/internal/storage/postgres"
)

func newLPPriceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lp-price",
		Short: "Compare the computed LP price bound with the on-chain LP oracle",
		RunE:  runLPPrice,
	}
	addCommonFlags(cmd, true)
	addPGFlag(cmd)
	cmd.Flags().String("pool", curve.Tricrypto2Pool.Hex(), "tricrypto pool address")
	cmd.Flags().String("oracle", curve.Tricrypto2LPOracle.Hex(), "LP oracle address")
	cmd.Flags().Uint64("block", 0, "block to read, 0 means latest")
	cmd.Flags().String("gamma0", "", "override baseline gamma (raw integer)")
	cmd.Flags().String("a0", "", "override baseline A (raw integer)")
	cmd.Flags().String("discount0", "", "override baseline discount (raw integer, base 1e18)")
	return cmd
}

func runLPPrice(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadLPPrice(configFile(cmd), cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}
	if !common.IsHexAddress(cfg.Pool) || !common.IsHexAddress(cfg.Oracle) {
		return fmt.Errorf("pool and oracle must be addresses")
	}
	pool := common.HexToAddress(cfg.Pool)
	lpOracle := common.HexToAddress(cfg.Oracle)

	params, err := oracleParams(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	chainID, err := chainClient.GetChainID(ctx)
	if err != nil {
		return fmt.Errorf("get chain id: %w", err)
	}
	blockNumber := cfg.Block
	if blockNumber == 0 {
		if blockNumber, err = chainClient.LatestBlockNumber(ctx); err != nil {
			return fmt.Errorf("get latest block: %w", err)
		}
	}
	block := new(big.Int).SetUint64(blockNumber)

	reader := curve.NewReader(chainClient, logger)
	var (
		snap        oracle.PoolSnapshot
		oraclePrice *uint256.Int
		blockTime   uint64
	)
	err = retry.Do(ctx, cfg.Retry(), func(ctx context.Context) error {
		var err error
		if blockTime, err = chainClient.BlockTimestamp(ctx, blockNumber); err != nil {
			return err
		}
		if snap, err = reader.ReadPoolSnapshot(ctx, pool, block); err != nil {
			return err
		}
		oraclePrice, err = reader.OracleLPPrice(ctx, lpOracle, block)
		return err
	})
	if err != nil {
		return fmt.Errorf("read chain state: %w", err)
	}

	check := model.LPPriceCheck{
		ChainID:      chainID.Uint64(),
		Pool:         pool.Hex(),
		Oracle:       lpOracle.Hex(),
		BlockNumber:  blockNumber,
		BlockTime:    time.Unix(int64(blockTime), 0).UTC(),
		VirtualPrice: snap.VirtualPrice.Dec(),
		PriceOracle0: snap.PriceOracle0.Dec(),
		PriceOracle1: snap.PriceOracle1.Dec(),
		A:            snap.A.Dec(),
		Gamma:        snap.Gamma.Dec(),
		OraclePrice:  oraclePrice.Dec(),
		CheckedAt:    time.Now().UTC(),
	}

	price, priceErr := evaluateCheck(&check, params, snap, oraclePrice, logger)
	if priceErr == nil {
		deviation := "n/a"
		if check.DeviationBps != nil {
			deviation = *check.DeviationBps
		}
		fmt.Fprintf(cmd.OutOrStdout(), "block %d\ncomputed %s\noracle   %s\ndiff     %s bps\n",
			blockNumber, oracle.ToDecimal(price).StringFixed(6), oracle.ToDecimal(oraclePrice).StringFixed(6), deviation)
	}

	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
		if err := store.InsertLPPriceCheck(ctx, check); err != nil {
			return err
		}
		logger.Info("price check stored", zap.String("pg_dsn", redact(cfg.PGDSN)))
	}

	if priceErr != nil {
		return fmt.Errorf("compute lp price: %w", priceErr)
	}
	return nil
}

// evaluateCheck computes the price bound for check. A bound that cannot be
// computed is recorded in check.Error and returned. A zero oracle price leaves
// DeviationBps unset rather than reporting parity.
func evaluateCheck(check *model.LPPriceCheck, params oracle.Params, snap oracle.PoolSnapshot, oraclePrice *uint256.Int, logger *zap.Logger) (*uint256.Int, error) {
	price, err := params.LPPrice(snap)
	if err != nil {
		check.Error = err.Error()
		if errors.Is(err, oracle.ErrNonConvergence) || errors.Is(err, oracle.ErrDegenerateDiscount) {
			logger.Error("cannot bound price", zap.Uint64("block", check.BlockNumber), zap.Error(err))
		}
		return nil, err
	}

	computed := price.Dec()
	check.ComputedPrice = &computed

	deviation, err := oracle.DeviationBps(price, oraclePrice)
	if err != nil {
		logger.Warn("no deviation against oracle", zap.Uint64("block", check.BlockNumber), zap.Error(err))
	} else {
		bps := deviation.StringFixed(2)
		check.DeviationBps = &bps
	}

	logger.Info("lp price",
		zap.Uint64("block", check.BlockNumber),
		zap.String("computed", oracle.ToDecimal(price).String()),
		zap.String("oracle", oracle.ToDecimal(oraclePrice).String()),
		zap.Stringp("deviation_bps", check.DeviationBps),
	)
	return price, nil
}

func oracleParams(cfg config.LPPriceConfig) (oracle.Params, error) {
	params := oracle.DefaultParams()
	overrides := []struct {
		name  string
		value string
		dst   **uint256.Int
	}{
		{"gamma0", cfg.Gamma0, &params.Gamma0},
		{"a0", cfg.A0, &params.A0},
		{"discount0", cfg.Discount0, &params.Discount0},
	}
	for _, o := range overrides {
		if o.value == "" {
			continue
		}
		v, err := uint256.FromDecimal(o.value)
		if err != nil {
			return oracle.Params{}, fmt.Errorf("parse %s: %w", o.name, err)
		}
		*o.dst = v
	}
	return params, nil
}
