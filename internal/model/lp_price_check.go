package model

import "time"

// LPPriceCheck compares a computed LP price bound with an on-chain oracle.
type LPPriceCheck struct {
	ChainID       uint64    `json:"chain_id"`
	Pool          string    `json:"pool"`
	Oracle        string    `json:"oracle"`
	BlockNumber   uint64    `json:"block_number"`
	BlockTime     time.Time `json:"block_time"`
	VirtualPrice  string    `json:"virtual_price"`
	PriceOracle0  string    `json:"price_oracle_0"`
	PriceOracle1  string    `json:"price_oracle_1"`
	A             string    `json:"a"`
	Gamma         string    `json:"gamma"`
	OraclePrice   string    `json:"oracle_price"`
	ComputedPrice *string   `json:"computed_price"`
	DeviationBps  *string   `json:"deviation_bps"`
	Error         string    `json:"error,omitempty"`
	CheckedAt     time.Time `json:"checked_at"`
}
