package curve

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const tricryptoABIJSON = `[
  {"name": "get_virtual_price", "inputs": [], "outputs": [{"name": "", "type": "uint256"}], "stateMutability": "view", "type": "function"},
  {"name": "A", "inputs": [], "outputs": [{"name": "", "type": "uint256"}], "stateMutability": "view", "type": "function"},
  {"name": "gamma", "inputs": [], "outputs": [{"name": "", "type": "uint256"}], "stateMutability": "view", "type": "function"},
  {"name": "price_oracle", "inputs": [{"name": "k", "type": "uint256"}], "outputs": [{"name": "", "type": "uint256"}], "stateMutability": "view", "type": "function"}
]`

const lpOracleABIJSON = `[
  {"name": "lp_price", "inputs": [], "outputs": [{"name": "", "type": "uint256"}], "stateMutability": "view", "type": "function"}
]`

const feeDistributorABIJSON = `[
  {"name": "tokens_per_week", "inputs": [{"name": "arg0", "type": "uint256"}], "outputs": [{"name": "", "type": "uint256"}], "stateMutability": "view", "type": "function"},
  {"name": "time_cursor", "inputs": [], "outputs": [{"name": "", "type": "uint256"}], "stateMutability": "view", "type": "function"}
]`

var (
	tricryptoABI     abi.ABI
	tricryptoABIOnce sync.Once
	tricryptoABIErr  error

	lpOracleABI     abi.ABI
	lpOracleABIOnce sync.Once
	lpOracleABIErr  error

	feeDistributorABI     abi.ABI
	feeDistributorABIOnce sync.Once
	feeDistributorABIErr  error
)

// TricryptoABI returns the parsed tricrypto pool ABI. Its get_virtual_price
// entry also serves plain stableswap pools.
func TricryptoABI() (abi.ABI, error) {
	tricryptoABIOnce.Do(func() {
		tricryptoABI, tricryptoABIErr = abi.JSON(strings.NewReader(tricryptoABIJSON))
	})
	return tricryptoABI, tricryptoABIErr
}

// LPOracleABI returns the parsed LP oracle ABI.
func LPOracleABI() (abi.ABI, error) {
	lpOracleABIOnce.Do(func() {
		lpOracleABI, lpOracleABIErr = abi.JSON(strings.NewReader(lpOracleABIJSON))
	})
	return lpOracleABI, lpOracleABIErr
}

// FeeDistributorABI returns the parsed fee distributor ABI.
func FeeDistributorABI() (abi.ABI, error) {
	feeDistributorABIOnce.Do(func() {
		feeDistributorABI, feeDistributorABIErr = abi.JSON(strings.NewReader(feeDistributorABIJSON))
	})
	return feeDistributorABI, feeDistributorABIErr
}
