package main

import (
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"curveOps/internal/chain"
	"curveOps/internal/config"
	"curveOps/internal/indexer"
	"curveOps/internal/storage"
)

func newReceiptsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "receipts",
		Short: "Fetch transaction receipts in batches into JSONL",
		RunE:  runReceipts,
	}
	addCommonFlags(cmd, true)
	cmd.Flags().StringSlice("hash", nil, "transaction hashes (comma-separated)")
	cmd.Flags().String("in", "", "file with one transaction hash per line")
	cmd.Flags().String("out", "./data/receipts.jsonl", "output JSONL path")
	cmd.Flags().Int("batch-size", 100, "receipts per JSON-RPC batch")
	cmd.Flags().Int("concurrency", 4, "batches in flight")
	return cmd
}

func runReceipts(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadReceipts(configFile(cmd), cmd.Flags())
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
	hashes, err := indexer.ParseHashes(cfg.Hashes)
	if err != nil {
		return err
	}
	if cfg.In != "" {
		fromFile, err := readHashFile(cfg.In)
		if err != nil {
			return err
		}
		hashes = append(hashes, fromFile...)
	}
	if len(hashes) == 0 {
		return fmt.Errorf("at least one transaction hash is required")
	}

	ctx, stop := signalContext()
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	receipts, err := chainClient.TransactionReceipts(ctx, hashes, chain.ReceiptOptions{
		BatchSize:   cfg.BatchSize,
		Concurrency: cfg.Concurrency,
	})
	if err != nil {
		return err
	}
	if err := storage.NewJsonlStorage(cfg.Out).PutReceipts(receipts); err != nil {
		return err
	}
	logger.Info("receipts written", zap.Int("receipts", len(receipts)), zap.String("out", cfg.Out))
	return nil
}

func readHashFile(path string) ([]common.Hash, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open hash file: %w", err)
	}
	defer file.Close()
	return indexer.ReadHashes(file)
}
