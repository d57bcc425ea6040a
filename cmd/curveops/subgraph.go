package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"curveOps/internal/config"
	"curveOps/internal/indexer"
	"curveOps/internal/subgraph"
)

func newBlockAtCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "block-at",
		Short: "Find the first block mined after a timestamp",
		RunE:  runBlockAt,
	}
	addCommonFlags(cmd, false)
	cmd.Flags().String("blocks-endpoint", subgraph.EthBlocksEndpoint, "blocks subgraph endpoint")
	cmd.Flags().String("timestamp", "", "unix seconds or RFC3339")
	return cmd
}

func runBlockAt(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadSubgraph(configFile(cmd), cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ts, err := config.ParseTimestamp(cfg.Timestamp)
	if err != nil {
		return fmt.Errorf("parse timestamp: %w", err)
	}
	if ts == 0 {
		return fmt.Errorf("timestamp is required")
	}

	ctx, stop := signalContext()
	defer stop()

	client := subgraph.NewClient(cfg.BlocksEndpoint, newHTTPClient(cfg.Common, logger))
	number, found, err := client.BlockForTimestamp(ctx, ts)
	if err != nil {
		return err
	}
	if !found {
		fmt.Fprintln(cmd.OutOrStdout(), "no block found")
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), number)
	return nil
}

func newPoolFeesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pool-fees",
		Short: "List fee snapshots of a pool from the crv-emissions subgraph",
		RunE:  runPoolFees,
	}
	addCommonFlags(cmd, false)
	cmd.Flags().String("emissions-endpoint", subgraph.CRVEmissionsEndpoint, "crv-emissions subgraph endpoint")
	cmd.Flags().String("pool-token", "", "LP token address of the pool")
	return cmd
}

func runPoolFees(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadSubgraph(configFile(cmd), cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	token, err := indexer.ParseOptionalAddress(cfg.PoolToken)
	if err != nil {
		return err
	}
	if token == nil {
		return fmt.Errorf("pool token is required")
	}

	ctx, stop := signalContext()
	defer stop()

	client := subgraph.NewClient(cfg.EmissionsEndpoint, newHTTPClient(cfg.Common, logger))
	snapshots, err := client.PoolFees(ctx, *token)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "block\tfees")
	for _, s := range snapshots {
		fmt.Fprintf(out, "%d\t%g\n", s.Block, s.Fees)
	}
	return nil
}
