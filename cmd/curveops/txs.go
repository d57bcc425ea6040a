package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"curveOps/internal/config"
	"curveOps/internal/etherscan"
	"curveOps/internal/indexer"
	"curveOps/internal/model"
	"curveOps/internal/storage"
)

func newTxsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "txs",
		Short: "Fetch normal transactions of an address from Etherscan into JSONL",
		RunE:  runTxs,
	}
	addCommonFlags(cmd, false)
	cmd.Flags().String("etherscan-api", etherscan.DefaultAPI, "Etherscan API endpoint")
	cmd.Flags().String("address", "", "account whose transactions are listed")
	cmd.Flags().String("counterparty", "", "counterparty for --direction from|with")
	cmd.Flags().String("direction", "all", "all, from (sent by counterparty) or with (to or from counterparty)")
	cmd.Flags().Uint64("start-block", 0, "start block (inclusive)")
	cmd.Flags().Uint64("end-block", 0, "end block (inclusive), 0 means latest")
	cmd.Flags().String("sort", "asc", "asc or desc")
	cmd.Flags().String("out", "./data/txs.jsonl", "output JSONL path")
	return cmd
}

func runTxs(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadTxs(configFile(cmd), cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.EtherscanToken == "" {
		return fmt.Errorf("etherscan token is required")
	}
	address, err := indexer.ParseOptionalAddress(cfg.Address)
	if err != nil {
		return err
	}
	if address == nil {
		return fmt.Errorf("address is required")
	}
	counterparty, err := indexer.ParseOptionalAddress(cfg.Counterparty)
	if err != nil {
		return err
	}
	if cfg.Direction != "all" && counterparty == nil {
		return fmt.Errorf("counterparty is required for direction %s", cfg.Direction)
	}

	ctx, stop := signalContext()
	defer stop()

	client := etherscan.NewClient(cfg.EtherscanAPI, cfg.EtherscanToken, newHTTPClient(cfg.Common, logger), logger)
	q := etherscan.Query{
		Address:    *address,
		StartBlock: cfg.StartBlock,
		EndBlock:   cfg.EndBlock,
		Sort:       cfg.Sort,
	}

	var txs []model.EtherscanTx
	switch cfg.Direction {
	case "all":
		txs, err = client.TxList(ctx, q)
	case "from":
		txs, err = client.TxsFrom(ctx, q, *counterparty)
	case "with":
		txs, err = client.TxsWith(ctx, q, *counterparty)
	default:
		return fmt.Errorf("unknown direction %q", cfg.Direction)
	}
	if err != nil {
		return err
	}

	if err := storage.NewJsonlStorage(cfg.Out).PutTxs(txs); err != nil {
		return err
	}
	logger.Info("transactions written",
		zap.String("address", address.Hex()),
		zap.String("direction", cfg.Direction),
		zap.Int("txs", len(txs)),
		zap.String("out", cfg.Out),
	)
	return nil
}
