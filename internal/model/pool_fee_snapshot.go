package model

// PoolFeeSnapshot is a fee observation from the crv-emissions subgraph.
type PoolFeeSnapshot struct {
	Block uint64  `json:"block"`
	Fees  float64 `json:"fees"`
}
