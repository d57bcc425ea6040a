package dao

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
)

// Pinner stores vote descriptions. *ipfs.Client implements it.
type Pinner interface {
	Add(ctx context.Context, name string, content []byte) (string, error)
}

// Voter creates votes in Aragon DAOs.
type Voter struct {
	pinner Pinner
	logger *zap.Logger
}

func NewVoter(pinner Pinner, logger *zap.Logger) *Voter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Voter{pinner: pinner, logger: logger}
}

// Plan is a vote ready to be sent: the call target and its calldata.
type Plan struct {
	Target   common.Address
	Script   []byte
	Calldata []byte
	Metadata string
}

// PlanVote pins the description and builds the vote creation call. For
// forwarder targets the call is forward(wrapped script); otherwise it is
// newVote(script, "ipfs:<hash>", false, false).
func (v *Voter) PlanVote(ctx context.Context, target Target, actions []Action, description string) (Plan, error) {
	text, err := json.Marshal(map[string]string{"text": description})
	if err != nil {
		return Plan{}, fmt.Errorf("encode description: %w", err)
	}
	hash, err := v.pinner.Add(ctx, "file", text)
	if err != nil {
		return Plan{}, fmt.Errorf("pin description: %w", err)
	}
	v.logger.Info("description pinned", zap.String("ipfs_hash", hash))

	script, err := PrepareEVMScript(target, actions)
	if err != nil {
		return Plan{}, err
	}

	if target.Forwarder != nil {
		wrapped, err := WrapForwarder(target.Voting, script, description)
		if err != nil {
			return Plan{}, err
		}
		forwarder, err := ForwarderABI()
		if err != nil {
			return Plan{}, fmt.Errorf("parse forwarder abi: %w", err)
		}
		calldata, err := forwarder.Pack("forward", wrapped)
		if err != nil {
			return Plan{}, fmt.Errorf("pack forward: %w", err)
		}
		return Plan{Target: *target.Forwarder, Script: wrapped, Calldata: calldata, Metadata: description}, nil
	}

	voting, err := VotingABI()
	if err != nil {
		return Plan{}, fmt.Errorf("parse voting abi: %w", err)
	}
	metadata := "ipfs:" + hash
	calldata, err := voting.Pack("newVote", script, metadata, false, false)
	if err != nil {
		return Plan{}, fmt.Errorf("pack newVote: %w", err)
	}
	return Plan{Target: target.Voting, Script: script, Calldata: calldata, Metadata: metadata}, nil
}

// MakeVote creates the vote from sender and returns its id.
func (v *Voter) MakeVote(ctx context.Context, sender Sender, target Target, actions []Action, description string) (*big.Int, error) {
	plan, err := v.PlanVote(ctx, target, actions, description)
	if err != nil {
		return nil, err
	}
	v.logger.Info("creating vote",
		zap.String("dao", target.Name),
		zap.String("target", plan.Target.Hex()),
		zap.String("from", sender.From().Hex()),
		zap.String("evm_script", hexutil.Encode(plan.Script)),
	)

	receipt, err := sender.Send(ctx, plan.Target, plan.Calldata)
	if err != nil {
		return nil, fmt.Errorf("create vote: %w", err)
	}
	voteID, err := ParseStartVote(receipt.Logs, target.Voting)
	if err != nil {
		return nil, err
	}
	v.logger.Info("vote created", zap.String("dao", target.Name), zap.Stringer("vote_id", voteID))
	return voteID, nil
}

// ParseStartVote returns the vote id of the first StartVote event emitted by voting.
func ParseStartVote(logs []*types.Log, voting common.Address) (*big.Int, error) {
	for _, l := range logs {
		if l == nil || l.Address != voting || len(l.Topics) < 2 {
			continue
		}
		if l.Topics[0] == startVoteTopic || l.Topics[0] == startVoteTopicStandard {
			return new(big.Int).SetBytes(l.Topics[1].Bytes()), nil
		}
	}
	return nil, fmt.Errorf("no StartVote event from %s", voting.Hex())
}
