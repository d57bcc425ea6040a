package etherscan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"curveOps/internal/httpapi"
	"curveOps/internal/model"
)

const (
	DefaultAPI    = "https://api.etherscan.io/api"
	DefaultOffset = 10000
)

// ErrNoTransactions is reported by the API when a page is past the last result.
var ErrNoTransactions = errors.New("no transactions found")

// Query bounds a txlist scan. EndBlock 0 means latest.
type Query struct {
	Address    common.Address
	StartBlock uint64
	EndBlock   uint64
	Sort       string
	Offset     int
}

// Client pages through Etherscan account endpoints.
type Client struct {
	api    string
	apiKey string
	http   *httpapi.Client
	logger *zap.Logger
}

func NewClient(api, apiKey string, httpClient *httpapi.Client, logger *zap.Logger) *Client {
	if api == "" {
		api = DefaultAPI
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{api: api, apiKey: apiKey, http: httpClient, logger: logger}
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

// TxList returns all normal transactions of q.Address, following pages until
// the API reports no more transactions.
func (c *Client) TxList(ctx context.Context, q Query) ([]model.EtherscanTx, error) {
	if q.Sort == "" {
		q.Sort = "asc"
	}
	if q.Offset <= 0 {
		q.Offset = DefaultOffset
	}

	var all []model.EtherscanTx
	for page := 1; ; page++ {
		txs, err := c.txListPage(ctx, q, page)
		if errors.Is(err, ErrNoTransactions) {
			return all, nil
		}
		if err != nil {
			return nil, err
		}
		c.logger.Debug("txlist page", zap.String("address", q.Address.Hex()), zap.Int("page", page), zap.Int("txs", len(txs)))
		if len(txs) == 0 {
			return all, nil
		}
		all = append(all, txs...)
		if len(txs) < q.Offset {
			return all, nil
		}
	}
}

func (c *Client) txListPage(ctx context.Context, q Query, page int) ([]model.EtherscanTx, error) {
	endBlock := "latest"
	if q.EndBlock > 0 {
		endBlock = strconv.FormatUint(q.EndBlock, 10)
	}
	params := url.Values{
		"module":     {"account"},
		"action":     {"txlist"},
		"address":    {q.Address.Hex()},
		"startblock": {strconv.FormatUint(q.StartBlock, 10)},
		"endblock":   {endBlock},
		"page":       {strconv.Itoa(page)},
		"offset":     {strconv.Itoa(q.Offset)},
		"sort":       {q.Sort},
		"apikey":     {c.apiKey},
	}

	var env envelope
	if err := c.http.GetJSON(ctx, c.api, params, &env); err != nil {
		return nil, fmt.Errorf("txlist page %d: %w", page, err)
	}
	if strings.Contains(env.Message, "No transactions found") {
		return nil, ErrNoTransactions
	}
	if env.Status != "1" {
		var reason string
		_ = json.Unmarshal(env.Result, &reason)
		return nil, fmt.Errorf("txlist page %d: %s: %s", page, env.Message, reason)
	}

	var txs []model.EtherscanTx
	if err := json.Unmarshal(env.Result, &txs); err != nil {
		return nil, fmt.Errorf("decode txlist page %d: %w", page, err)
	}
	return txs, nil
}

// TxsFrom returns transactions of q.Address sent by sender.
func (c *Client) TxsFrom(ctx context.Context, q Query, sender common.Address) ([]model.EtherscanTx, error) {
	txs, err := c.TxList(ctx, q)
	if err != nil {
		return nil, err
	}
	return FilterFrom(txs, sender), nil
}

// TxsWith returns transactions of q.Address sent by or to counterparty.
func (c *Client) TxsWith(ctx context.Context, q Query, counterparty common.Address) ([]model.EtherscanTx, error) {
	txs, err := c.TxList(ctx, q)
	if err != nil {
		return nil, err
	}
	return FilterWith(txs, counterparty), nil
}

// FilterFrom keeps transactions whose sender is addr.
func FilterFrom(txs []model.EtherscanTx, addr common.Address) []model.EtherscanTx {
	out := make([]model.EtherscanTx, 0)
	for _, tx := range txs {
		if sameAddress(tx.From, addr) {
			out = append(out, tx)
		}
	}
	return out
}

// FilterWith keeps transactions whose sender or recipient is addr.
func FilterWith(txs []model.EtherscanTx, addr common.Address) []model.EtherscanTx {
	out := make([]model.EtherscanTx, 0)
	for _, tx := range txs {
		if sameAddress(tx.From, addr) || sameAddress(tx.To, addr) {
			out = append(out, tx)
		}
	}
	return out
}

func sameAddress(value string, addr common.Address) bool {
	if !common.IsHexAddress(value) {
		return false
	}
	return common.HexToAddress(value) == addr
}
