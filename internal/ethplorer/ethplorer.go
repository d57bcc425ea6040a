package ethplorer

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"curveOps/internal/httpapi"
)

const (
	DefaultAPI = "https://api.ethplorer.io"
	FreeKey    = "freekey"
)

// Holder is one entry of a token's holder list. Share is a percentage.
type Holder struct {
	Address common.Address
	Balance float64
	Share   float64
}

// Client queries the Ethplorer API.
type Client struct {
	api    string
	apiKey string
	http   *httpapi.Client
}

func NewClient(api, apiKey string, httpClient *httpapi.Client) *Client {
	if api == "" {
		api = DefaultAPI
	}
	if apiKey == "" {
		apiKey = FreeKey
	}
	return &Client{api: strings.TrimRight(api, "/"), apiKey: apiKey, http: httpClient}
}

type topHoldersResponse struct {
	Holders []struct {
		Address string  `json:"address"`
		Balance float64 `json:"balance"`
		Share   float64 `json:"share"`
	} `json:"holders"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// TopTokenHolders returns the largest holders of token, largest first.
func (c *Client) TopTokenHolders(ctx context.Context, token common.Address, limit int) ([]Holder, error) {
	if limit <= 0 {
		limit = 50
	}
	query := url.Values{
		"apiKey": {c.apiKey},
		"limit":  {strconv.Itoa(limit)},
	}

	var resp topHoldersResponse
	if err := c.http.GetJSON(ctx, c.api+"/getTopTokenHolders/"+token.Hex(), query, &resp); err != nil {
		return nil, fmt.Errorf("top token holders: %w", err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("top token holders: ethplorer error %d: %s", resp.Error.Code, resp.Error.Message)
	}

	holders := make([]Holder, 0, len(resp.Holders))
	for _, h := range resp.Holders {
		if !common.IsHexAddress(h.Address) {
			return nil, fmt.Errorf("invalid holder address: %s", h.Address)
		}
		holders = append(holders, Holder{
			Address: common.HexToAddress(h.Address),
			Balance: h.Balance,
			Share:   h.Share,
		})
	}
	return holders, nil
}
