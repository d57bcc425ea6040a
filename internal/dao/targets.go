package dao

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Target is an Aragon DAO a vote can be created in.
// Forwarder is set for DAOs that only accept new votes through a forwarder.
type Target struct {
	Name      string
	Agent     common.Address
	Voting    common.Address
	Token     common.Address
	Forwarder *common.Address
	Quorum    float64
}

var emergencyForwarder = common.HexToAddress("0xf409Ce40B5bb1e4Ef8e97b1979629859c6d5481f")

var (
	Ownership = Target{
		Name:   "ownership",
		Agent:  common.HexToAddress("0x40907540d8a6c65c637785e8f8b742ae6b0b9968"),
		Voting: common.HexToAddress("0xe478de485ad2fe566d49342cbd03e49ed7db3356"),
		Token:  common.HexToAddress("0x5f3b5DfEb7B28CDbD7FAba78963EE202a494e2A2"),
		Quorum: 30,
	}
	Parameter = Target{
		Name:   "parameter",
		Agent:  common.HexToAddress("0x4eeb3ba4f221ca16ed4a0cc7254e2e32df948c5f"),
		Voting: common.HexToAddress("0xbcff8b0b9419b9a88c44546519b1e909cf330399"),
		Token:  common.HexToAddress("0x5f3b5DfEb7B28CDbD7FAba78963EE202a494e2A2"),
		Quorum: 15,
	}
	Emergency = Target{
		Name:      "emergency",
		Agent:     common.HexToAddress("0x00669DF67E4827FCc0E48A1838a8d5AB79281909"),
		Voting:    common.HexToAddress("0x1115c9b3168563354137cdc60efb66552dd50678"),
		Token:     common.HexToAddress("0x4c0947B16FB1f755A2D32EC21A0c4181f711C500"),
		Forwarder: &emergencyForwarder,
		Quorum:    51,
	}
)

// Targets returns the built-in DAO targets keyed by name.
func Targets() map[string]Target {
	return map[string]Target{
		Ownership.Name: Ownership,
		Parameter.Name: Parameter,
		Emergency.Name: Emergency,
	}
}

// LookupTarget finds a target by name in the given set.
func LookupTarget(targets map[string]Target, name string) (Target, error) {
	t, ok := targets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		names := make([]string, 0, len(targets))
		for n := range targets {
			names = append(names, n)
		}
		sort.Strings(names)
		return Target{}, fmt.Errorf("unknown dao target %q (known: %s)", name, strings.Join(names, ", "))
	}
	return t, nil
}
