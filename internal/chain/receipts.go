package chain

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"
	"golang.org/x/sync/errgroup"
)

// ReceiptOptions controls how receipt lookups are batched.
type ReceiptOptions struct {
	BatchSize   int
	Concurrency int
}

// TransactionReceipts fetches receipts for all hashes over the shared RPC
// connection. Results are returned in input order. A failed or missing
// receipt fails the whole call.
func (c *Client) TransactionReceipts(ctx context.Context, hashes []common.Hash, opts ReceiptOptions) ([]*types.Receipt, error) {
	if len(hashes) == 0 {
		return nil, nil
	}
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}

	receipts := make([]*types.Receipt, len(hashes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for start := 0; start < len(hashes); start += batchSize {
		end := start + batchSize
		if end > len(hashes) {
			end = len(hashes)
		}
		start := start
		g.Go(func() error {
			return c.receiptBatch(gctx, hashes[start:end], receipts[start:end])
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return receipts, nil
}

func (c *Client) receiptBatch(ctx context.Context, hashes []common.Hash, out []*types.Receipt) error {
	elems := make([]rpc.BatchElem, len(hashes))
	for i, hash := range hashes {
		elems[i] = rpc.BatchElem{
			Method: "eth_getTransactionReceipt",
			Args:   []interface{}{hash},
			Result: &out[i],
		}
	}

	if err := c.rpcClient.BatchCallContext(ctx, elems); err != nil {
		return fmt.Errorf("receipt batch: %w", err)
	}
	for i, elem := range elems {
		if elem.Error != nil {
			return fmt.Errorf("receipt %s: %w", hashes[i].Hex(), elem.Error)
		}
		if out[i] == nil {
			return fmt.Errorf("receipt %s: not found", hashes[i].Hex())
		}
	}
	return nil
}
