package alchemy

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"

	"curveOps/internal/model"
)

// DefaultEndpoint is the mainnet Alchemy JSON-RPC endpoint without the key.
const DefaultEndpoint = "https://eth-mainnet.alchemyapi.io/v2/"

// DefaultCategories are requested when a query does not name any.
var DefaultCategories = []string{"external", "erc20"}

// RPCCaller is satisfied by *rpc.Client.
type RPCCaller interface {
	CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error
}

// Query selects transfers between two blocks. ToBlock 0 means latest.
// Empty From/To addresses are omitted from the request.
type Query struct {
	From       *common.Address
	To         *common.Address
	FromBlock  uint64
	ToBlock    uint64
	Categories []string
}

// Client pages through alchemy_getAssetTransfers.
type Client struct {
	rpc    RPCCaller
	logger *zap.Logger
}

func NewClient(rpc RPCCaller, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{rpc: rpc, logger: logger}
}

// EndpointURL joins the endpoint and API key.
func EndpointURL(endpoint, apiKey string) string {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if !strings.HasSuffix(endpoint, "/") {
		endpoint += "/"
	}
	return endpoint + apiKey
}

type transfersResult struct {
	Transfers []model.AssetTransfer `json:"transfers"`
	PageKey   string                `json:"pageKey,omitempty"`
}

// AssetTransfers returns every transfer matching q, following page keys
// until the provider stops returning one.
func (c *Client) AssetTransfers(ctx context.Context, q Query) ([]model.AssetTransfer, error) {
	if c.rpc == nil {
		return nil, fmt.Errorf("rpc client is nil")
	}

	var all []model.AssetTransfer
	pageKey := ""
	for page := 1; ; page++ {
		var result transfersResult
		if err := c.rpc.CallContext(ctx, &result, "alchemy_getAssetTransfers", buildParams(q, pageKey)); err != nil {
			return nil, fmt.Errorf("asset transfers page %d: %w", page, err)
		}
		all = append(all, result.Transfers...)
		c.logger.Debug("asset transfers page", zap.Int("page", page), zap.Int("transfers", len(result.Transfers)))

		if result.PageKey == "" {
			return all, nil
		}
		if result.PageKey == pageKey {
			return nil, fmt.Errorf("asset transfers: page key %s repeated", pageKey)
		}
		pageKey = result.PageKey
	}
}

func buildParams(q Query, pageKey string) map[string]interface{} {
	toBlock := "latest"
	if q.ToBlock > 0 {
		toBlock = hexutil.EncodeUint64(q.ToBlock)
	}
	categories := q.Categories
	if len(categories) == 0 {
		categories = DefaultCategories
	}

	params := map[string]interface{}{
		"fromBlock": hexutil.EncodeUint64(q.FromBlock),
		"toBlock":   toBlock,
		"category":  categories,
	}
	if q.From != nil {
		params["fromAddress"] = q.From.Hex()
	}
	if q.To != nil {
		params["toAddress"] = q.To.Hex()
	}
	if pageKey != "" {
		params["pageKey"] = pageKey
	}
	return params
}
