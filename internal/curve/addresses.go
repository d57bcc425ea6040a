package curve

import "github.com/ethereum/go-ethereum/common"

// Mainnet deployments.
var (
	Tricrypto2Pool     = common.HexToAddress("0xD51a44d3FaE010294C616388b506AcdA1bfAAE46")
	Tricrypto2LPOracle = common.HexToAddress("0xE8b2989276E2Ca8FDEA2268E3551b2b4B2418950")
	ThreePool          = common.HexToAddress("0xbEbc44782C7dB0a1A60Cb6fe97d0b483032FF1C7")
	FeeDistributor     = common.HexToAddress("0xA464e6DCda8AC41e03616F95f4BC98a13b8922Dc")
)
