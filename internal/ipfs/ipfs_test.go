package ipfs

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"curveOps/internal/httpapi"
	"curveOps/internal/retry"
)

func TestAdd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v0/add", r.URL.Path)
		file, _, err := r.FormFile("file")
		require.NoError(t, err)
		data, err := io.ReadAll(file)
		require.NoError(t, err)
		require.JSONEq(t, `{"text":"Kill gauge"}`, string(data))
		_, _ = w.Write([]byte(`{"Name":"description.json","Hash":"QmTest","Size":"26"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL+"/", httpapi.NewClient(time.Second, retry.Policy{}, nil))
	hash, err := client.Add(context.Background(), "description.json", []byte(`{"text":"Kill gauge"}`))
	require.NoError(t, err)
	require.Equal(t, "QmTest", hash)
}

func TestAddEmptyHash(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, httpapi.NewClient(time.Second, retry.Policy{}, nil))
	_, err := client.Add(context.Background(), "x", []byte("x"))
	require.Error(t, err)
}
