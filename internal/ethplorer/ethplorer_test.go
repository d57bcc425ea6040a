package ethplorer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"curveOps/internal/httpapi"
	"curveOps/internal/retry"
)

func TestTopTokenHolders(t *testing.T) {
	token := common.HexToAddress("0x5f3b5DfEb7B28CDbD7FAba78963EE202a494e2A2")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/getTopTokenHolders/"+token.Hex(), r.URL.Path)
		require.Equal(t, "freekey", r.URL.Query().Get("apiKey"))
		require.Equal(t, "50", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`{"holders":[
			{"address":"0x989aeb4d175e16225e39e87d0d97a3360524ad80","balance":1.5e26,"share":45.2},
			{"address":"0xf147b8125d2ef93fb6965db97d6746952a133934","balance":2e25,"share":6.1}
		]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", httpapi.NewClient(time.Second, retry.Policy{}, nil))
	holders, err := client.TopTokenHolders(context.Background(), token, 0)
	require.NoError(t, err)
	require.Len(t, holders, 2)
	require.Equal(t, common.HexToAddress("0x989aeb4d175e16225e39e87d0d97a3360524ad80"), holders[0].Address)
	require.InDelta(t, 45.2, holders[0].Share, 1e-9)
}

func TestTopTokenHoldersAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":{"code":104,"message":"Invalid address format"}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "key", httpapi.NewClient(time.Second, retry.Policy{}, nil))
	_, err := client.TopTokenHolders(context.Background(), common.Address{}, 10)
	require.ErrorContains(t, err, "Invalid address format")
}
