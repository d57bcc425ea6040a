package model

// TransferRecord is an asset transfer as written by the transfer scan.
type TransferRecord struct {
	AssetTransfer
	ChainID     uint64 `json:"chain_id"`
	BlockNumber uint64 `json:"block_number"`
	IngestedAt  string `json:"ingested_at"`
}
