package dao

import (
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// scriptSpecID prefixes every Aragon EVM call script (spec id 1).
var scriptSpecID = []byte{0x00, 0x00, 0x00, 0x01}

// PrepareEVMScript builds the call script executed when a vote passes.
// Each action becomes a call from the target's voting app to
// Agent.execute(action target, 0, action calldata).
func PrepareEVMScript(target Target, actions []Action) ([]byte, error) {
	if len(actions) == 0 {
		return nil, fmt.Errorf("no actions")
	}
	agent, err := AgentABI()
	if err != nil {
		return nil, fmt.Errorf("parse agent abi: %w", err)
	}

	script := append([]byte{}, scriptSpecID...)
	for i, action := range actions {
		calldata, err := action.Calldata()
		if err != nil {
			return nil, fmt.Errorf("action %d: %w", i, err)
		}
		execute, err := agent.Pack("execute", action.Target, big.NewInt(0), calldata)
		if err != nil {
			return nil, fmt.Errorf("action %d: pack execute: %w", i, err)
		}
		script = appendCall(script, target.Agent, execute)
	}
	return script, nil
}

// WrapForwarder wraps script in a second call script whose only call is
// Voting.newVote(script, description, false, false). Forwarder-gated DAOs
// accept new votes only in this form.
func WrapForwarder(voting common.Address, script []byte, description string) ([]byte, error) {
	parsed, err := VotingABI()
	if err != nil {
		return nil, fmt.Errorf("parse voting abi: %w", err)
	}
	newVote, err := parsed.Pack("newVote", script, description, false, false)
	if err != nil {
		return nil, fmt.Errorf("pack newVote: %w", err)
	}
	return appendCall(append([]byte{}, scriptSpecID...), voting, newVote), nil
}

// appendCall appends one `address ‖ uint32 length ‖ calldata` entry.
func appendCall(script []byte, to common.Address, calldata []byte) []byte {
	var length [4]byte
	binary.BigEndian.PutUint32(length[:], uint32(len(calldata)))
	script = append(script, to.Bytes()...)
	script = append(script, length[:]...)
	return append(script, calldata...)
}
