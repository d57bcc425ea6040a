package dao

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/crypto"
)

const agentABIJSON = `[
  {"name": "execute", "type": "function", "stateMutability": "nonpayable",
   "inputs": [{"name": "_target", "type": "address"}, {"name": "_ethValue", "type": "uint256"}, {"name": "_data", "type": "bytes"}],
   "outputs": []}
]`

const votingABIJSON = `[
  {"name": "newVote", "type": "function", "stateMutability": "nonpayable",
   "inputs": [{"name": "_executionScript", "type": "bytes"}, {"name": "_metadata", "type": "string"}, {"name": "_castVote", "type": "bool"}, {"name": "_executesIfDecided", "type": "bool"}],
   "outputs": [{"name": "voteId", "type": "uint256"}]},
  {"name": "vote", "type": "function", "stateMutability": "nonpayable",
   "inputs": [{"name": "_voteData", "type": "uint256"}, {"name": "_supports", "type": "bool"}, {"name": "_executesIfDecided", "type": "bool"}],
   "outputs": []},
  {"name": "executeVote", "type": "function", "stateMutability": "nonpayable",
   "inputs": [{"name": "_voteId", "type": "uint256"}],
   "outputs": []}
]`

const forwarderABIJSON = `[
  {"name": "forward", "type": "function", "stateMutability": "nonpayable",
   "inputs": [{"name": "_evmScript", "type": "bytes"}],
   "outputs": []}
]`

// StartVote topics. Curve's voting app emits an extended event; the stock
// Aragon signature is accepted as well.
var (
	startVoteTopic         = crypto.Keccak256Hash([]byte("StartVote(uint256,address,string,uint256,uint256,uint256,uint256)"))
	startVoteTopicStandard = crypto.Keccak256Hash([]byte("StartVote(uint256,address,string)"))
)

var (
	agentABI     abi.ABI
	agentABIOnce sync.Once
	agentABIErr  error

	votingABI     abi.ABI
	votingABIOnce sync.Once
	votingABIErr  error

	forwarderABI     abi.ABI
	forwarderABIOnce sync.Once
	forwarderABIErr  error
)

func AgentABI() (abi.ABI, error) {
	agentABIOnce.Do(func() {
		agentABI, agentABIErr = abi.JSON(strings.NewReader(agentABIJSON))
	})
	return agentABI, agentABIErr
}

func VotingABI() (abi.ABI, error) {
	votingABIOnce.Do(func() {
		votingABI, votingABIErr = abi.JSON(strings.NewReader(votingABIJSON))
	})
	return votingABI, votingABIErr
}

func ForwarderABI() (abi.ABI, error) {
	forwarderABIOnce.Do(func() {
		forwarderABI, forwarderABIErr = abi.JSON(strings.NewReader(forwarderABIJSON))
	})
	return forwarderABI, forwarderABIErr
}
