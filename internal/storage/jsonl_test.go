package storage

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"curveOps/internal/model"
)

func readLines(t *testing.T, path string) []string {
	t.Helper()
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer file.Close()
	var lines []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}
	return lines
}

func TestPutTransfersAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "transfers.jsonl")
	store := NewJsonlStorage(path)

	first := []model.TransferRecord{{AssetTransfer: model.AssetTransfer{Hash: "0x01", BlockNum: "0x10"}, BlockNumber: 16, ChainID: 1}}
	second := []model.TransferRecord{{AssetTransfer: model.AssetTransfer{Hash: "0x02", BlockNum: "0x11"}, BlockNumber: 17, ChainID: 1}}
	if err := store.PutTransfers(first); err != nil {
		t.Fatalf("put first: %v", err)
	}
	if err := store.PutTransfers(second); err != nil {
		t.Fatalf("put second: %v", err)
	}
	if err := store.PutTransfers(nil); err != nil {
		t.Fatalf("put empty: %v", err)
	}

	lines := readLines(t, path)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	var decoded model.TransferRecord
	if err := json.Unmarshal([]byte(lines[1]), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Hash != "0x02" || decoded.BlockNumber != 17 {
		t.Fatalf("record mismatch: %+v", decoded)
	}
}

func TestPutReceipts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "receipts.jsonl")
	store := NewJsonlStorage(path)

	receipt := &types.Receipt{
		Status:  types.ReceiptStatusSuccessful,
		TxHash:  common.HexToHash("0xabc"),
		GasUsed: 21000,
		Logs:    []*types.Log{},
	}
	if err := store.PutReceipts([]*types.Receipt{receipt}); err != nil {
		t.Fatalf("put receipts: %v", err)
	}

	lines := readLines(t, path)
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	var fields map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &fields); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if fields["transactionHash"] != common.HexToHash("0xabc").Hex() || fields["status"] != "0x1" {
		t.Fatalf("receipt fields mismatch: %v", fields)
	}
}
