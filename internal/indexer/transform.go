package indexer

import (
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"curveOps/internal/model"
)

func buildTransferRecord(chainID uint64, transfer model.AssetTransfer, ingestedAt time.Time) (model.TransferRecord, error) {
	blockNumber, err := hexutil.DecodeUint64(transfer.BlockNum)
	if err != nil {
		return model.TransferRecord{}, fmt.Errorf("transfer %s block %q: %w", transfer.Hash, transfer.BlockNum, err)
	}

	transfer.From = strings.ToLower(transfer.From)
	transfer.To = strings.ToLower(transfer.To)

	return model.TransferRecord{
		AssetTransfer: transfer,
		ChainID:       chainID,
		BlockNumber:   blockNumber,
		IngestedAt:    ingestedAt.UTC().Format(time.RFC3339Nano),
	}, nil
}
