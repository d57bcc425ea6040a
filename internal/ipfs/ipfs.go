package ipfs

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"strings"

	"curveOps/internal/httpapi"
)

// DefaultAPI is the Infura IPFS HTTP API.
const DefaultAPI = "https://ipfs.infura.io:5001"

// Client pins content through an IPFS HTTP API.
type Client struct {
	api  string
	http *httpapi.Client
}

func NewClient(api string, httpClient *httpapi.Client) *Client {
	if api == "" {
		api = DefaultAPI
	}
	return &Client{api: strings.TrimRight(api, "/"), http: httpClient}
}

type addResponse struct {
	Name string `json:"Name"`
	Hash string `json:"Hash"`
	Size string `json:"Size"`
}

// Add uploads content as a single file and returns its content hash.
func (c *Client) Add(ctx context.Context, name string, content []byte) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return "", fmt.Errorf("write form file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close multipart: %w", err)
	}

	var resp addResponse
	if err := c.http.PostBody(ctx, c.api+"/api/v0/add", writer.FormDataContentType(), body.Bytes(), &resp); err != nil {
		return "", fmt.Errorf("ipfs add: %w", err)
	}
	if resp.Hash == "" {
		return "", fmt.Errorf("ipfs add: empty hash")
	}
	return resp.Hash, nil
}
