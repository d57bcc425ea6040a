package model

// AssetTransfer is one entry of alchemy_getAssetTransfers.
type AssetTransfer struct {
	BlockNum    string       `json:"blockNum"`
	UniqueID    string       `json:"uniqueId"`
	Hash        string       `json:"hash"`
	From        string       `json:"from"`
	To          string       `json:"to"`
	Value       *float64     `json:"value"`
	Asset       string       `json:"asset"`
	Category    string       `json:"category"`
	RawContract *RawContract `json:"rawContract,omitempty"`
}

// RawContract carries the untruncated token amount of a transfer.
type RawContract struct {
	Value   string `json:"value"`
	Address string `json:"address"`
	Decimal string `json:"decimal"`
}
