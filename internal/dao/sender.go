package dao

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
)

// Sender submits a call and waits for it to be mined.
type Sender interface {
	From() common.Address
	Send(ctx context.Context, to common.Address, data []byte) (*types.Receipt, error)
}

// MainnetPriorityFee is the tip used for transactions on chain id 1.
var MainnetPriorityFee = big.NewInt(2_000_000_000)

// TxBackend is the chain access a KeySender needs. *chain.Client implements it.
type TxBackend interface {
	GetChainID(ctx context.Context) (*big.Int, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)
}

// KeySender signs EIP-1559 transactions with a local private key.
type KeySender struct {
	backend TxBackend
	key     *ecdsa.PrivateKey
	from    common.Address
	logger  *zap.Logger
}

// NewKeySender parses a hex private key, with or without 0x prefix.
func NewKeySender(backend TxBackend, hexKey string, logger *zap.Logger) (*KeySender, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	key, err := crypto.HexToECDSA(trimHexPrefix(hexKey))
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return &KeySender{
		backend: backend,
		key:     key,
		from:    crypto.PubkeyToAddress(key.PublicKey),
		logger:  logger,
	}, nil
}

func (s *KeySender) From() common.Address { return s.from }

func (s *KeySender) Send(ctx context.Context, to common.Address, data []byte) (*types.Receipt, error) {
	chainID, err := s.backend.GetChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("chain id: %w", err)
	}
	nonce, err := s.backend.PendingNonceAt(ctx, s.from)
	if err != nil {
		return nil, fmt.Errorf("nonce: %w", err)
	}

	tip := MainnetPriorityFee
	if chainID.Cmp(big.NewInt(1)) != 0 {
		if tip, err = s.backend.SuggestGasTipCap(ctx); err != nil {
			return nil, fmt.Errorf("suggest tip: %w", err)
		}
	}
	head, err := s.backend.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("latest header: %w", err)
	}
	feeCap := new(big.Int).Set(tip)
	if head.BaseFee != nil {
		feeCap.Add(feeCap, new(big.Int).Mul(head.BaseFee, big.NewInt(2)))
	}

	gas, err := s.backend.EstimateGas(ctx, ethereum.CallMsg{From: s.from, To: &to, Data: data})
	if err != nil {
		return nil, fmt.Errorf("estimate gas: %w", err)
	}
	gas = gas * 12 / 10

	tx, err := types.SignNewTx(s.key, types.LatestSignerForChainID(chainID), &types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     nonce,
		GasTipCap: tip,
		GasFeeCap: feeCap,
		Gas:       gas,
		To:        &to,
		Data:      data,
	})
	if err != nil {
		return nil, fmt.Errorf("sign tx: %w", err)
	}
	if err := s.backend.SendTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("send tx: %w", err)
	}
	s.logger.Info("transaction sent",
		zap.String("hash", tx.Hash().Hex()),
		zap.String("to", to.Hex()),
		zap.Uint64("nonce", nonce),
		zap.Uint64("gas", gas),
	)

	receipt, err := s.backend.WaitMined(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("wait mined %s: %w", tx.Hash().Hex(), err)
	}
	return receipt, checkStatus(receipt)
}

// NodeBackend is raw RPC access to a development node. *chain.Client implements it.
type NodeBackend interface {
	Call(ctx context.Context, result interface{}, method string, args ...interface{}) error
	WaitReceipt(ctx context.Context, hash common.Hash, interval time.Duration) (*types.Receipt, error)
}

// NodeSender sends unsigned transactions through eth_sendTransaction, for
// accounts the node holds or impersonates.
type NodeSender struct {
	backend NodeBackend
	from    common.Address
	poll    time.Duration
}

func NewNodeSender(backend NodeBackend, from common.Address) *NodeSender {
	return &NodeSender{backend: backend, from: from, poll: 200 * time.Millisecond}
}

func (s *NodeSender) From() common.Address { return s.from }

func (s *NodeSender) Send(ctx context.Context, to common.Address, data []byte) (*types.Receipt, error) {
	args := map[string]interface{}{
		"from": s.from,
		"to":   to,
		"data": hexutil.Bytes(data),
	}
	var hash common.Hash
	if err := s.backend.Call(ctx, &hash, "eth_sendTransaction", args); err != nil {
		return nil, fmt.Errorf("eth_sendTransaction from %s: %w", s.from.Hex(), err)
	}
	receipt, err := s.backend.WaitReceipt(ctx, hash, s.poll)
	if err != nil {
		return nil, fmt.Errorf("receipt %s: %w", hash.Hex(), err)
	}
	return receipt, checkStatus(receipt)
}

func checkStatus(receipt *types.Receipt) error {
	if receipt.Status != types.ReceiptStatusSuccessful {
		return fmt.Errorf("transaction %s reverted", receipt.TxHash.Hex())
	}
	return nil
}

func trimHexPrefix(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}
