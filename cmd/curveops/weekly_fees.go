package main

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"curveOps/internal/chain"
	"curveOps/internal/config"
	"curveOps/internal/curve"
	"curveOps/internal/fees"
	"curveOps/internal/storage"
	"curveOps/internal/storage/postgres"
)

func newWeeklyFeesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "weekly-fees",
		Short: "Show fees paid out by the fee distributor per week",
		RunE:  runWeeklyFees,
	}
	addCommonFlags(cmd, true)
	addPGFlag(cmd)
	cmd.Flags().String("distributor", curve.FeeDistributor.Hex(), "fee distributor address")
	cmd.Flags().String("price-pool", curve.ThreePool.Hex(), "pool whose virtual price values the fee token")
	cmd.Flags().Int("max-weeks", 520, "maximum number of weeks to walk back")
	cmd.Flags().String("now", "", "walk back from this time instead of now (unix seconds or RFC3339)")
	cmd.Flags().String("out", "", "optional output JSONL path")
	return cmd
}

func runWeeklyFees(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadWeeklyFees(configFile(cmd), cmd.Flags())
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
	if !common.IsHexAddress(cfg.Distributor) || !common.IsHexAddress(cfg.PricePool) {
		return fmt.Errorf("distributor and price pool must be addresses")
	}
	nowTS, err := config.ParseTimestamp(cfg.Now)
	if err != nil {
		return fmt.Errorf("parse now: %w", err)
	}
	now := time.Now()
	if nowTS > 0 {
		now = time.Unix(int64(nowTS), 0)
	}

	ctx, stop := signalContext()
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	distributor := common.HexToAddress(cfg.Distributor)
	rows, err := fees.WeeklyFees(ctx, curve.NewReader(chainClient, logger), fees.Options{
		Distributor: distributor,
		PricePool:   common.HexToAddress(cfg.PricePool),
		Now:         now,
		MaxWeeks:    cfg.MaxWeeks,
	}, logger)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, row := range rows {
		fmt.Fprintf(out, "%s|\t$%s\n", row.WeekStart.Format("2006-01-02"), row.USD)
	}
	logger.Info("weekly fees", zap.Int("weeks", len(rows)), zap.String("distributor", distributor.Hex()))

	if cfg.Out != "" {
		if err := storage.NewJsonlStorage(cfg.Out).PutWeeklyFees(rows); err != nil {
			return err
		}
	}
	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
		if err := store.UpsertWeeklyFees(ctx, distributor.Hex(), rows); err != nil {
			return err
		}
		logger.Info("weekly fees stored", zap.String("pg_dsn", redact(cfg.PGDSN)))
	}
	return nil
}
