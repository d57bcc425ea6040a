package etherscan

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"curveOps/internal/httpapi"
	"curveOps/internal/model"
	"curveOps/internal/retry"
)

var (
	dao   = common.HexToAddress("0x40907540d8a6c65c637785e8f8b742ae6b0b9968")
	alice = common.HexToAddress("0x1111111111111111111111111111111111111111")
	bob   = common.HexToAddress("0x2222222222222222222222222222222222222222")
)

func TestTxListPaginates(t *testing.T) {
	pages := map[string]string{
		"1": fmt.Sprintf(`{"status":"1","message":"OK","result":[
			{"blockNumber":"100","hash":"0xa","from":"%s","to":"%s","value":"0"},
			{"blockNumber":"101","hash":"0xb","from":"%s","to":"%s","value":"1"}]}`,
			alice.Hex(), dao.Hex(), dao.Hex(), bob.Hex()),
		"2": fmt.Sprintf(`{"status":"1","message":"OK","result":[
			{"blockNumber":"102","hash":"0xc","from":"%s","to":"%s","value":"2"}]}`,
			bob.Hex(), dao.Hex()),
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		require.Equal(t, "txlist", q.Get("action"))
		require.Equal(t, "latest", q.Get("endblock"))
		require.Equal(t, "secret", q.Get("apikey"))
		body, ok := pages[q.Get("page")]
		if !ok {
			_, _ = w.Write([]byte(`{"status":"0","message":"No transactions found","result":[]}`))
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret", httpapi.NewClient(time.Second, retry.Policy{}, nil), nil)
	txs, err := client.TxList(context.Background(), Query{Address: dao, Offset: 2})
	require.NoError(t, err)
	require.Len(t, txs, 3)
	require.Equal(t, "0xc", txs[2].Hash)

	with, err := client.TxsWith(context.Background(), Query{Address: dao, Offset: 2}, bob)
	require.NoError(t, err)
	require.Len(t, with, 2)

	from, err := client.TxsFrom(context.Background(), Query{Address: dao, Offset: 2}, alice)
	require.NoError(t, err)
	require.Len(t, from, 1)
	require.Equal(t, "0xa", from[0].Hash)
}

func TestTxListAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"0","message":"NOTOK","result":"Invalid API Key"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "bad", httpapi.NewClient(time.Second, retry.Policy{}, nil), nil)
	_, err := client.TxList(context.Background(), Query{Address: dao})
	require.ErrorContains(t, err, "Invalid API Key")
}

func TestFilterWithCaseInsensitive(t *testing.T) {
	txs := []model.EtherscanTx{
		{Hash: "0x1", From: "0x2222222222222222222222222222222222222222", To: dao.Hex()},
		{Hash: "0x2", From: dao.Hex(), To: "0X2222222222222222222222222222222222222222"},
		{Hash: "0x3", From: dao.Hex(), To: ""},
	}
	got := FilterWith(txs, bob)
	require.Len(t, got, 2)
	require.Empty(t, FilterFrom(txs, alice))
}
