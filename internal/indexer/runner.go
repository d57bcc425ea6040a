package indexer

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"curveOps/internal/alchemy"
	"curveOps/internal/model"
	"curveOps/internal/retry"
	"curveOps/internal/storage"
)

// RunConfig holds runtime settings for a transfer scan.
type RunConfig struct {
	FromBlock  uint64
	ToBlock    uint64
	From       *common.Address
	To         *common.Address
	Categories []string
	BatchSize  uint64
	Retry      retry.Policy
}

// TransferSource fetches asset transfers for a block range. *alchemy.Client implements it.
type TransferSource interface {
	AssetTransfers(ctx context.Context, q alchemy.Query) ([]model.AssetTransfer, error)
}

// ChainHead reports the chain id and tip. *chain.Client implements it.
type ChainHead interface {
	GetChainID(ctx context.Context) (*big.Int, error)
	LatestBlockNumber(ctx context.Context) (uint64, error)
}

// Runner scans a block range batch by batch and writes transfers to storage.
type Runner struct {
	cfg        RunConfig
	chain      ChainHead
	source     TransferSource
	storage    storage.TransferSink
	logger     *zap.Logger
	seen       map[string]struct{}
	checkpoint Checkpointer
}

// NewRunner builds a Runner with its dependencies. A nil checkpoint always
// starts from cfg.FromBlock.
func NewRunner(cfg RunConfig, chainHead ChainHead, source TransferSource, sink storage.TransferSink, checkpoint Checkpointer, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		cfg:        cfg,
		chain:      chainHead,
		source:     source,
		storage:    sink,
		logger:     logger,
		seen:       make(map[string]struct{}),
		checkpoint: checkpoint,
	}
}

// Run executes the scan loop.
func (r *Runner) Run(ctx context.Context) error {
	if r.chain == nil {
		return fmt.Errorf("chain client is nil")
	}
	if r.source == nil {
		return fmt.Errorf("transfer source is nil")
	}
	if r.storage == nil {
		return fmt.Errorf("storage is nil")
	}
	if r.cfg.BatchSize == 0 {
		return fmt.Errorf("batch size must be greater than zero")
	}
	if r.cfg.From == nil && r.cfg.To == nil {
		return fmt.Errorf("a from or to address is required")
	}

	chainID, err := r.chain.GetChainID(ctx)
	if err != nil {
		return fmt.Errorf("get chain id: %w", err)
	}
	if !chainID.IsUint64() {
		return fmt.Errorf("chain id does not fit in uint64: %s", chainID)
	}
	chainIDValue := chainID.Uint64()

	from := r.cfg.FromBlock
	to := r.cfg.ToBlock
	if to == 0 {
		latest, err := r.chain.LatestBlockNumber(ctx)
		if err != nil {
			return fmt.Errorf("get latest block: %w", err)
		}
		to = latest
	}

	if r.checkpoint != nil {
		last, ok, err := r.checkpoint.Load(ctx)
		if err != nil {
			return err
		}
		if ok && last >= from {
			from = last + 1
			r.logger.Info("resume from checkpoint", zap.Uint64("last_processed", last), zap.Uint64("from", from))
		}
	}

	if from > to {
		r.logger.Info("nothing to sync", zap.Uint64("from", from), zap.Uint64("to", to))
		return nil
	}

	windows, err := Windows(from, to, r.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, blockRange := range windows {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		r.logger.Info("fetch transfers", zap.Uint64("from", blockRange.From), zap.Uint64("to", blockRange.To))

		transfers, err := r.transfersWithRetry(ctx, blockRange)
		if err != nil {
			return fmt.Errorf("asset transfers: %w", err)
		}

		ingestedAt := time.Now().UTC()
		records := make([]model.TransferRecord, 0, len(transfers))
		for _, transfer := range transfers {
			if r.isDuplicate(transfer) {
				continue
			}
			record, err := buildTransferRecord(chainIDValue, transfer, ingestedAt)
			if err != nil {
				return err
			}
			records = append(records, record)
		}

		if err := r.storage.PutTransfers(records); err != nil {
			return fmt.Errorf("store transfers: %w", err)
		}

		if r.checkpoint != nil {
			if err := r.checkpoint.Save(ctx, blockRange.To); err != nil {
				return err
			}
		}

		r.logger.Info("batch complete", zap.Int("transfers", len(records)), zap.Uint64("from", blockRange.From), zap.Uint64("to", blockRange.To))
	}

	return nil
}

func (r *Runner) transfersWithRetry(ctx context.Context, blockRange Window) ([]model.AssetTransfer, error) {
	query := blockRange.Query(alchemy.Query{
		From:       r.cfg.From,
		To:         r.cfg.To,
		Categories: r.cfg.Categories,
	})
	var transfers []model.AssetTransfer
	err := retry.Do(ctx, r.cfg.Retry, func(ctx context.Context) error {
		var err error
		transfers, err = r.source.AssetTransfers(ctx, query)
		if err != nil {
			r.logger.Warn("asset transfers failed", zap.Error(err), zap.Uint64("from", blockRange.From), zap.Uint64("to", blockRange.To))
		}
		return err
	})
	return transfers, err
}

// isDuplicate drops transfers already written in this run. Batches are
// inclusive on both ends, so a provider may repeat edge entries.
func (r *Runner) isDuplicate(transfer model.AssetTransfer) bool {
	id := transfer.UniqueID
	if id == "" {
		id = fmt.Sprintf("%s:%s:%s:%s", transfer.Hash, transfer.Category, transfer.From, transfer.To)
	}
	if _, ok := r.seen[id]; ok {
		return true
	}
	r.seen[id] = struct{}{}
	return false
}

// ScanKey names a scan by its address filters and categories, so checkpoints
// of different scans are kept apart.
func ScanKey(cfg RunConfig) string {
	from, to := "*", "*"
	if cfg.From != nil {
		from = strings.ToLower(cfg.From.Hex())
	}
	if cfg.To != nil {
		to = strings.ToLower(cfg.To.Hex())
	}
	categories := cfg.Categories
	if len(categories) == 0 {
		categories = alchemy.DefaultCategories
	}
	return fmt.Sprintf("transfers:%s:%s:%s", from, to, strings.Join(categories, ","))
}
