package model

import (
	"encoding/json"
	"testing"
)

func TestAssetTransferDecodesNullValue(t *testing.T) {
	payload := []byte(`{
		"blockNum": "0xc5ca1f",
		"uniqueId": "0xabc:log:12",
		"hash": "0xabc",
		"from": "0x1111111111111111111111111111111111111111",
		"to": "0x2222222222222222222222222222222222222222",
		"value": null,
		"asset": "CRV",
		"category": "erc20",
		"rawContract": {"value": "0x0de0b6b3a7640000", "address": "0xd533a949740bb3306d119cc777fa900ba034cd52", "decimal": "0x12"}
	}`)

	var transfer AssetTransfer
	if err := json.Unmarshal(payload, &transfer); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if transfer.Value != nil {
		t.Fatalf("value should be nil")
	}
	if transfer.RawContract == nil || transfer.RawContract.Value != "0x0de0b6b3a7640000" {
		t.Fatalf("raw contract mismatch: %+v", transfer.RawContract)
	}
	if transfer.Category != "erc20" || transfer.BlockNum != "0xc5ca1f" {
		t.Fatalf("transfer mismatch: %+v", transfer)
	}
}
