package model

// EtherscanTx is a normal transaction as returned by the Etherscan txlist endpoint.
// Numeric fields stay strings, as the API returns them.
type EtherscanTx struct {
	BlockNumber      string `json:"blockNumber"`
	TimeStamp        string `json:"timeStamp"`
	Hash             string `json:"hash"`
	Nonce            string `json:"nonce"`
	BlockHash        string `json:"blockHash"`
	TransactionIndex string `json:"transactionIndex"`
	From             string `json:"from"`
	To               string `json:"to"`
	Value            string `json:"value"`
	Gas              string `json:"gas"`
	GasPrice         string `json:"gasPrice"`
	IsError          string `json:"isError"`
	TxReceiptStatus  string `json:"txreceipt_status"`
	Input            string `json:"input"`
	ContractAddress  string `json:"contractAddress"`
	GasUsed          string `json:"gasUsed"`
	FunctionName     string `json:"functionName,omitempty"`
}
