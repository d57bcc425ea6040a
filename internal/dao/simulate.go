package dao

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"curveOps/internal/ethplorer"
)

const (
	holderLimit   = 50
	quorumMargin  = 5
	votePeriod    = 7 * 24 * time.Hour
	holderBalance = "0x56bc75e2d63100000" // 100 ether
)

// HolderSource lists the largest holders of a token. *ethplorer.Client implements it.
type HolderSource interface {
	TopTokenHolders(ctx context.Context, token common.Address, limit int) ([]ethplorer.Holder, error)
}

// SimulationResult reports a vote passed on a fork.
type SimulationResult struct {
	VoteID  *big.Int
	Voters  []common.Address
	Support float64
}

// Simulate creates the vote on a forked node, votes yes from enough top
// token holders to pass quorum, advances time past the voting period and
// executes the vote.
func (v *Voter) Simulate(ctx context.Context, node NodeBackend, holders HolderSource, target Target, actions []Action, description string) (SimulationResult, error) {
	top, err := holders.TopTokenHolders(ctx, target.Token, holderLimit)
	if err != nil {
		return SimulationResult{}, err
	}
	voters, support, err := SelectVoters(top, target.Quorum+quorumMargin)
	if err != nil {
		return SimulationResult{}, err
	}
	v.logger.Info("voters selected", zap.Int("voters", len(voters)), zap.Float64("support", support))

	for _, voter := range voters {
		if err := node.Call(ctx, nil, "hardhat_impersonateAccount", voter); err != nil {
			return SimulationResult{}, fmt.Errorf("impersonate %s: %w", voter.Hex(), err)
		}
		if err := node.Call(ctx, nil, "hardhat_setBalance", voter, holderBalance); err != nil {
			return SimulationResult{}, fmt.Errorf("fund %s: %w", voter.Hex(), err)
		}
	}

	creator := NewNodeSender(node, voters[0])
	voteID, err := v.MakeVote(ctx, creator, target, actions, description)
	if err != nil {
		return SimulationResult{}, err
	}

	voting, err := VotingABI()
	if err != nil {
		return SimulationResult{}, fmt.Errorf("parse voting abi: %w", err)
	}
	voteData, err := voting.Pack("vote", voteID, true, false)
	if err != nil {
		return SimulationResult{}, fmt.Errorf("pack vote: %w", err)
	}
	for _, voter := range voters {
		if _, err := NewNodeSender(node, voter).Send(ctx, target.Voting, voteData); err != nil {
			return SimulationResult{}, fmt.Errorf("vote from %s: %w", voter.Hex(), err)
		}
	}

	if err := node.Call(ctx, nil, "evm_increaseTime", int64(votePeriod/time.Second)); err != nil {
		return SimulationResult{}, fmt.Errorf("increase time: %w", err)
	}
	if err := node.Call(ctx, nil, "evm_mine"); err != nil {
		return SimulationResult{}, fmt.Errorf("mine: %w", err)
	}

	executeData, err := voting.Pack("executeVote", voteID)
	if err != nil {
		return SimulationResult{}, fmt.Errorf("pack executeVote: %w", err)
	}
	if _, err := creator.Send(ctx, target.Voting, executeData); err != nil {
		return SimulationResult{}, fmt.Errorf("execute vote %s: %w", voteID, err)
	}
	v.logger.Info("vote executed", zap.Stringer("vote_id", voteID))

	return SimulationResult{VoteID: voteID, Voters: voters, Support: support}, nil
}

// SelectVoters takes holders in order until their combined share reaches
// threshold percent.
func SelectVoters(holders []ethplorer.Holder, threshold float64) ([]common.Address, float64, error) {
	var (
		voters []common.Address
		weight float64
	)
	for _, h := range holders {
		if weight >= threshold {
			break
		}
		voters = append(voters, h.Address)
		weight += h.Share
	}
	if weight < threshold {
		return nil, weight, fmt.Errorf("top holders only reach %.2f%% of %.2f%% needed", weight, threshold)
	}
	return voters, weight, nil
}
