package config

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/pflag"

	"curveOps/internal/dao"
)

// LPPriceConfig configures the lp-price command.
type LPPriceConfig struct {
	Common
	Pool      string
	Oracle    string
	Block     uint64
	Gamma0    string
	A0        string
	Discount0 string
}

// LoadLPPrice merges config file, environment variables, and flags into LPPriceConfig.
func LoadLPPrice(cfgFile string, flags *pflag.FlagSet) (LPPriceConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"pool":   "0xD51a44d3FaE010294C616388b506AcdA1bfAAE46",
		"oracle": "0xE8b2989276E2Ca8FDEA2268E3551b2b4B2418950",
	})
	if err != nil {
		return LPPriceConfig{}, err
	}
	return LPPriceConfig{
		Common:    loadCommon(v),
		Pool:      v.GetString("pool"),
		Oracle:    v.GetString("oracle"),
		Block:     v.GetUint64("block"),
		Gamma0:    v.GetString("gamma0"),
		A0:        v.GetString("a0"),
		Discount0: v.GetString("discount0"),
	}, nil
}

// WeeklyFeesConfig configures the weekly-fees command.
type WeeklyFeesConfig struct {
	Common
	Distributor string
	PricePool   string
	MaxWeeks    int
	Now         string
	Out         string
}

// LoadWeeklyFees merges config file, environment variables, and flags into WeeklyFeesConfig.
func LoadWeeklyFees(cfgFile string, flags *pflag.FlagSet) (WeeklyFeesConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"distributor": "0xA464e6DCda8AC41e03616F95f4BC98a13b8922Dc",
		"price-pool":  "0xbEbc44782C7dB0a1A60Cb6fe97d0b483032FF1C7",
		"max-weeks":   520,
	})
	if err != nil {
		return WeeklyFeesConfig{}, err
	}
	return WeeklyFeesConfig{
		Common:      loadCommon(v),
		Distributor: v.GetString("distributor"),
		PricePool:   v.GetString("price-pool"),
		MaxWeeks:    v.GetInt("max-weeks"),
		Now:         v.GetString("now"),
		Out:         v.GetString("out"),
	}, nil
}

// TargetConfig overrides or adds a DAO target from the config file.
type TargetConfig struct {
	Agent     string  `mapstructure:"agent"`
	Voting    string  `mapstructure:"voting"`
	Token     string  `mapstructure:"token"`
	Forwarder string  `mapstructure:"forwarder"`
	Quorum    float64 `mapstructure:"quorum"`
}

// VoteConfig configures the vote command group.
type VoteConfig struct {
	Common
	Target       string
	Actions      []string
	Description  string
	PrivateKey   string
	IPFSAPI      string
	EthplorerAPI string
	EthplorerKey string
	Targets      map[string]TargetConfig
}

// LoadVote merges config file, environment variables, and flags into VoteConfig.
// Actions given as one string (env) are separated by ';'.
func LoadVote(cfgFile string, flags *pflag.FlagSet) (VoteConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"target":        "ownership",
		"ipfs-api":      "https://ipfs.infura.io:5001",
		"ethplorer-api": "https://api.ethplorer.io",
		"ethplorer-key": "freekey",
	})
	if err != nil {
		return VoteConfig{}, err
	}

	var targets map[string]TargetConfig
	if v.IsSet("targets") {
		if err := v.UnmarshalKey("targets", &targets); err != nil {
			return VoteConfig{}, fmt.Errorf("parse targets: %w", err)
		}
	}

	return VoteConfig{
		Common:       loadCommon(v),
		Target:       v.GetString("target"),
		Actions:      getList(v, "action", ";"),
		Description:  v.GetString("description"),
		PrivateKey:   v.GetString("private-key"),
		IPFSAPI:      v.GetString("ipfs-api"),
		EthplorerAPI: v.GetString("ethplorer-api"),
		EthplorerKey: v.GetString("ethplorer-key"),
		Targets:      targets,
	}, nil
}

// DAOTargets returns the built-in targets merged with configured overrides.
func (c VoteConfig) DAOTargets() (map[string]dao.Target, error) {
	targets := dao.Targets()
	for name, tc := range c.Targets {
		name = strings.ToLower(name)
		target := targets[name]
		target.Name = name
		if err := setAddress(&target.Agent, tc.Agent, name, "agent"); err != nil {
			return nil, err
		}
		if err := setAddress(&target.Voting, tc.Voting, name, "voting"); err != nil {
			return nil, err
		}
		if err := setAddress(&target.Token, tc.Token, name, "token"); err != nil {
			return nil, err
		}
		if tc.Forwarder != "" {
			var forwarder common.Address
			if err := setAddress(&forwarder, tc.Forwarder, name, "forwarder"); err != nil {
				return nil, err
			}
			target.Forwarder = &forwarder
		}
		if tc.Quorum > 0 {
			target.Quorum = tc.Quorum
		}
		if target.Agent == (common.Address{}) || target.Voting == (common.Address{}) {
			return nil, fmt.Errorf("target %s: agent and voting are required", name)
		}
		targets[name] = target
	}
	return targets, nil
}

func setAddress(dst *common.Address, input, target, field string) error {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil
	}
	if !common.IsHexAddress(input) {
		return fmt.Errorf("target %s: invalid %s address %q", target, field, input)
	}
	*dst = common.HexToAddress(input)
	return nil
}

// TransfersConfig configures the transfers command.
type TransfersConfig struct {
	Common
	AlchemyAPIKey     string
	AlchemyEndpoint   string
	From              string
	To                string
	FromBlock         uint64
	ToBlock           uint64
	Categories        []string
	BatchSize         uint64
	Out               string
	Checkpoint        string
	CheckpointEnabled bool
}

// LoadTransfers merges config file, environment variables, and flags into TransfersConfig.
func LoadTransfers(cfgFile string, flags *pflag.FlagSet) (TransfersConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"alchemy-endpoint":   "https://eth-mainnet.alchemyapi.io/v2/",
		"batch-size":         uint64(100000),
		"out":                "./data/transfers.jsonl",
		"checkpoint":         "./data/transfers_checkpoint.json",
		"checkpoint-enabled": true,
	})
	if err != nil {
		return TransfersConfig{}, err
	}
	return TransfersConfig{
		Common:            loadCommon(v),
		AlchemyAPIKey:     v.GetString("alchemy-api-key"),
		AlchemyEndpoint:   v.GetString("alchemy-endpoint"),
		From:              v.GetString("from"),
		To:                v.GetString("to"),
		FromBlock:         v.GetUint64("from-block"),
		ToBlock:           v.GetUint64("to-block"),
		Categories:        getStringSlice(v, "category"),
		BatchSize:         v.GetUint64("batch-size"),
		Out:               v.GetString("out"),
		Checkpoint:        v.GetString("checkpoint"),
		CheckpointEnabled: v.GetBool("checkpoint-enabled"),
	}, nil
}

// TxsConfig configures the txs command.
type TxsConfig struct {
	Common
	EtherscanAPI   string
	EtherscanToken string
	Address        string
	Counterparty   string
	Direction      string
	StartBlock     uint64
	EndBlock       uint64
	Sort           string
	Out            string
}

// LoadTxs merges config file, environment variables, and flags into TxsConfig.
func LoadTxs(cfgFile string, flags *pflag.FlagSet) (TxsConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"etherscan-api": "https://api.etherscan.io/api",
		"direction":     "all",
		"sort":          "asc",
		"out":           "./data/txs.jsonl",
	})
	if err != nil {
		return TxsConfig{}, err
	}
	return TxsConfig{
		Common:         loadCommon(v),
		EtherscanAPI:   v.GetString("etherscan-api"),
		EtherscanToken: v.GetString("etherscan-token"),
		Address:        v.GetString("address"),
		Counterparty:   v.GetString("counterparty"),
		Direction:      v.GetString("direction"),
		StartBlock:     v.GetUint64("start-block"),
		EndBlock:       v.GetUint64("end-block"),
		Sort:           v.GetString("sort"),
		Out:            v.GetString("out"),
	}, nil
}

// SubgraphConfig configures the block-at and pool-fees commands.
type SubgraphConfig struct {
	Common
	BlocksEndpoint    string
	EmissionsEndpoint string
	Timestamp         string
	PoolToken         string
}

// LoadSubgraph merges config file, environment variables, and flags into SubgraphConfig.
func LoadSubgraph(cfgFile string, flags *pflag.FlagSet) (SubgraphConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"blocks-endpoint":    "https://api.thegraph.com/subgraphs/name/blocklytics/ethereum-blocks",
		"emissions-endpoint": "https://api.thegraph.com/subgraphs/name/convex-community/crv-emissions",
	})
	if err != nil {
		return SubgraphConfig{}, err
	}
	return SubgraphConfig{
		Common:            loadCommon(v),
		BlocksEndpoint:    v.GetString("blocks-endpoint"),
		EmissionsEndpoint: v.GetString("emissions-endpoint"),
		Timestamp:         v.GetString("timestamp"),
		PoolToken:         v.GetString("pool-token"),
	}, nil
}

// ReceiptsConfig configures the receipts command.
type ReceiptsConfig struct {
	Common
	Hashes      []string
	In          string
	Out         string
	BatchSize   int
	Concurrency int
}

// LoadReceipts merges config file, environment variables, and flags into ReceiptsConfig.
func LoadReceipts(cfgFile string, flags *pflag.FlagSet) (ReceiptsConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"out":         "./data/receipts.jsonl",
		"batch-size":  100,
		"concurrency": 4,
	})
	if err != nil {
		return ReceiptsConfig{}, err
	}
	return ReceiptsConfig{
		Common:      loadCommon(v),
		Hashes:      getStringSlice(v, "hash"),
		In:          v.GetString("in"),
		Out:         v.GetString("out"),
		BatchSize:   v.GetInt("batch-size"),
		Concurrency: v.GetInt("concurrency"),
	}, nil
}
