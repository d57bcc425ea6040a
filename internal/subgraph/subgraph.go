package subgraph

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"curveOps/internal/httpapi"
	"curveOps/internal/model"
)

const (
	EthBlocksEndpoint    = "https://api.thegraph.com/subgraphs/name/blocklytics/ethereum-blocks"
	CRVEmissionsEndpoint = "https://api.thegraph.com/subgraphs/name/convex-community/crv-emissions"
)

// ErrNoData is returned when a subgraph response carries no data object.
var ErrNoData = errors.New("no data in subgraph")

// Client posts GraphQL queries to a subgraph endpoint.
type Client struct {
	endpoint string
	http     *httpapi.Client
}

func NewClient(endpoint string, httpClient *httpapi.Client) *Client {
	return &Client{endpoint: endpoint, http: httpClient}
}

type request struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type response struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Query runs a GraphQL query and decodes the data object into out.
func (c *Client) Query(ctx context.Context, query string, variables map[string]interface{}, out interface{}) error {
	var resp response
	if err := c.http.PostJSON(ctx, c.endpoint, request{Query: query, Variables: variables}, &resp); err != nil {
		return fmt.Errorf("subgraph query: %w", err)
	}
	if len(resp.Errors) > 0 {
		msgs := make([]string, 0, len(resp.Errors))
		for _, e := range resp.Errors {
			msgs = append(msgs, e.Message)
		}
		return fmt.Errorf("subgraph query: %s", strings.Join(msgs, "; "))
	}
	if len(resp.Data) == 0 || bytes.Equal(resp.Data, []byte("null")) {
		return ErrNoData
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("decode subgraph data: %w", err)
	}
	return nil
}

const blockQuery = `query ($ts: BigInt!) {
  blocks(first: 1, orderBy: timestamp, orderDirection: asc, where: {timestamp_gt: $ts}) {
    id
    number
    timestamp
  }
}`

// BlockForTimestamp returns the first block mined strictly after ts.
// found is false when the subgraph has no such block.
func (c *Client) BlockForTimestamp(ctx context.Context, ts uint64) (number uint64, found bool, err error) {
	var data struct {
		Blocks []struct {
			ID        string      `json:"id"`
			Number    numberValue `json:"number"`
			Timestamp numberValue `json:"timestamp"`
		} `json:"blocks"`
	}
	err = c.Query(ctx, blockQuery, map[string]interface{}{"ts": strconv.FormatUint(ts, 10)}, &data)
	if errors.Is(err, ErrNoData) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	if len(data.Blocks) == 0 {
		return 0, false, nil
	}
	number, err = strconv.ParseUint(string(data.Blocks[0].Number), 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("parse block number %q: %w", data.Blocks[0].Number, err)
	}
	return number, true, nil
}

const poolFeesQuery = `query ($pool: String!) {
  poolSnapshots(where: {pool: $pool}) {
    fees
    block
  }
}`

// PoolFees returns the fee snapshots of a pool. It takes the pool's LP token
// address, not the pool address.
func (c *Client) PoolFees(ctx context.Context, poolToken common.Address) ([]model.PoolFeeSnapshot, error) {
	var data struct {
		PoolSnapshots *[]struct {
			Fees  numberValue `json:"fees"`
			Block numberValue `json:"block"`
		} `json:"poolSnapshots"`
	}
	pool := strings.ToLower(poolToken.Hex())
	if err := c.Query(ctx, poolFeesQuery, map[string]interface{}{"pool": pool}, &data); err != nil {
		if errors.Is(err, ErrNoData) {
			return nil, fmt.Errorf("%w for %s", ErrNoData, pool)
		}
		return nil, err
	}
	if data.PoolSnapshots == nil {
		return nil, fmt.Errorf("%w for %s", ErrNoData, pool)
	}

	out := make([]model.PoolFeeSnapshot, 0, len(*data.PoolSnapshots))
	for _, s := range *data.PoolSnapshots {
		block, err := strconv.ParseUint(string(s.Block), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse block %q: %w", s.Block, err)
		}
		fees, err := strconv.ParseFloat(string(s.Fees), 64)
		if err != nil {
			return nil, fmt.Errorf("parse fees %q: %w", s.Fees, err)
		}
		out = append(out, model.PoolFeeSnapshot{Block: block, Fees: fees})
	}
	return out, nil
}

// numberValue accepts GraphQL BigInt/BigDecimal values sent either as
// strings or as bare JSON numbers.
type numberValue string

func (n *numberValue) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = numberValue(s)
		return nil
	}
	*n = numberValue(b)
	return nil
}
