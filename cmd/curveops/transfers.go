package main

import (
	"fmt"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"curveOps/internal/alchemy"
	"curveOps/internal/chain"
	"curveOps/internal/config"
	"curveOps/internal/indexer"
	"curveOps/internal/storage"
	"curveOps/internal/storage/postgres"
)

func newTransfersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transfers",
		Short: "Scan asset transfers of an address through Alchemy into JSONL",
		RunE:  runTransfers,
	}
	addCommonFlags(cmd, false)
	addPGFlag(cmd)
	cmd.Flags().String("alchemy-endpoint", alchemy.DefaultEndpoint, "Alchemy endpoint without the API key")
	cmd.Flags().String("from", "", "sender address filter")
	cmd.Flags().String("to", "", "recipient address filter")
	cmd.Flags().Uint64("from-block", 0, "start block (inclusive)")
	cmd.Flags().Uint64("to-block", 0, "end block (inclusive), 0 means latest")
	cmd.Flags().StringSlice("category", nil, "transfer categories (default external,erc20)")
	cmd.Flags().Uint64("batch-size", 100000, "blocks per batch")
	cmd.Flags().String("out", "./data/transfers.jsonl", "output JSONL path")
	cmd.Flags().String("checkpoint", "./data/transfers_checkpoint.json", "checkpoint file path, unused with --pg-dsn")
	cmd.Flags().Bool("checkpoint-enabled", true, "enable checkpointing")
	return cmd
}

func runTransfers(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadTransfers(configFile(cmd), cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.AlchemyAPIKey == "" {
		return fmt.Errorf("alchemy api key is required")
	}
	from, err := indexer.ParseOptionalAddress(cfg.From)
	if err != nil {
		return err
	}
	to, err := indexer.ParseOptionalAddress(cfg.To)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	rpcClient, err := rpc.DialContext(ctx, alchemy.EndpointURL(cfg.AlchemyEndpoint, cfg.AlchemyAPIKey))
	if err != nil {
		return fmt.Errorf("connect alchemy: %w", err)
	}
	chainClient := chain.NewClientFromRPC(rpcClient)
	defer chainClient.Close()

	runCfg := indexer.RunConfig{
		FromBlock:  cfg.FromBlock,
		ToBlock:    cfg.ToBlock,
		From:       from,
		To:         to,
		Categories: cfg.Categories,
		BatchSize:  cfg.BatchSize,
		Retry:      cfg.Retry(),
	}
	scanKey := indexer.ScanKey(runCfg)

	var checkpoint indexer.Checkpointer
	switch {
	case !cfg.CheckpointEnabled:
	case cfg.PGDSN != "":
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
		checkpoint = store.Checkpoint(scanKey)
	default:
		checkpoint = indexer.NewCheckpointStore(cfg.Checkpoint, scanKey, true)
	}

	runner := indexer.NewRunner(runCfg, chainClient, alchemy.NewClient(rpcClient, logger), storage.NewJsonlStorage(cfg.Out), checkpoint, logger)

	logger.Info("transfer scan start",
		zap.String("scan", scanKey),
		zap.String("alchemy_api_key", redact(cfg.AlchemyAPIKey)),
		zap.Uint64("from_block", cfg.FromBlock),
		zap.Uint64("to_block", cfg.ToBlock),
		zap.Uint64("batch_size", cfg.BatchSize),
		zap.String("out", cfg.Out),
		zap.Bool("checkpoint_enabled", cfg.CheckpointEnabled),
		zap.String("pg_dsn", redact(cfg.PGDSN)),
	)

	return runner.Run(ctx)
}
