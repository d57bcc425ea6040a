package alchemy

import (
	"context"
	"fmt"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/require"

	"curveOps/internal/model"
)

type fakeAlchemy struct {
	requests []map[string]interface{}
}

func (f *fakeAlchemy) GetAssetTransfers(params map[string]interface{}) (map[string]interface{}, error) {
	f.requests = append(f.requests, params)
	pageKey, _ := params["pageKey"].(string)
	switch pageKey {
	case "":
		return map[string]interface{}{
			"transfers": []model.AssetTransfer{{Hash: "0x01", Category: "external"}, {Hash: "0x02", Category: "erc20"}},
			"pageKey":   "page-2",
		}, nil
	case "page-2":
		return map[string]interface{}{
			"transfers": []model.AssetTransfer{{Hash: "0x03", Category: "erc20"}},
		}, nil
	default:
		return nil, fmt.Errorf("unknown page key %s", pageKey)
	}
}

func TestAssetTransfersFollowsPageKey(t *testing.T) {
	svc := &fakeAlchemy{}
	server := rpc.NewServer()
	require.NoError(t, server.RegisterName("alchemy", svc))
	defer server.Stop()
	rpcClient := rpc.DialInProc(server)
	defer rpcClient.Close()

	to := common.HexToAddress("0x40907540d8a6c65c637785e8f8b742ae6b0b9968")
	client := NewClient(rpcClient, nil)
	transfers, err := client.AssetTransfers(context.Background(), Query{To: &to, FromBlock: 11_000_000})
	require.NoError(t, err)
	require.Len(t, transfers, 3)
	require.Equal(t, "0x03", transfers[2].Hash)

	require.Len(t, svc.requests, 2)
	first := svc.requests[0]
	require.Equal(t, "0xa7d8c0", first["fromBlock"])
	require.Equal(t, "latest", first["toBlock"])
	require.Equal(t, to.Hex(), first["toAddress"])
	_, hasFrom := first["fromAddress"]
	require.False(t, hasFrom)
	require.Equal(t, "page-2", svc.requests[1]["pageKey"])
}

func TestBuildParamsBlockRange(t *testing.T) {
	from := common.HexToAddress("0x1111111111111111111111111111111111111111")
	params := buildParams(Query{From: &from, FromBlock: 1, ToBlock: 255, Categories: []string{"internal"}}, "")
	require.Equal(t, "0x1", params["fromBlock"])
	require.Equal(t, "0xff", params["toBlock"])
	require.Equal(t, []string{"internal"}, params["category"])
	_, hasPage := params["pageKey"]
	require.False(t, hasPage)
}

func TestEndpointURL(t *testing.T) {
	require.Equal(t, DefaultEndpoint+"key", EndpointURL("", "key"))
	require.Equal(t, "http://localhost/v2/key", EndpointURL("http://localhost/v2", "key"))
}
