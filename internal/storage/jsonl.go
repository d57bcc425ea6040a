package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ethereum/go-ethereum/core/types"

	"curveOps/internal/model"
)

// JsonlStorage appends records to a JSONL file.
type JsonlStorage struct {
	path string
	mu   sync.Mutex
}

func NewJsonlStorage(path string) *JsonlStorage {
	return &JsonlStorage{path: path}
}

// PutTransfers appends a batch of transfer records.
func (s *JsonlStorage) PutTransfers(records []model.TransferRecord) error {
	return appendLines(s, records)
}

// PutReceipts appends transaction receipts in their RPC JSON form.
func (s *JsonlStorage) PutReceipts(receipts []*types.Receipt) error {
	return appendLines(s, receipts)
}

// PutTxs appends Etherscan transactions.
func (s *JsonlStorage) PutTxs(txs []model.EtherscanTx) error {
	return appendLines(s, txs)
}

// PutWeeklyFees appends weekly fee rows.
func (s *JsonlStorage) PutWeeklyFees(fees []model.WeeklyFee) error {
	return appendLines(s, fees)
}

func appendLines[T any](s *JsonlStorage, items []T) error {
	if len(items) == 0 {
		return nil
	}

	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for _, item := range items {
		line, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("marshal record: %w", err)
		}
		if _, err := writer.Write(line); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
		if err := writer.WriteByte('\n'); err != nil {
			return fmt.Errorf("write newline: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}

	return nil
}
