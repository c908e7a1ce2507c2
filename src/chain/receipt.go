// Package chain talks to the ledger gateway that anchors civic records.
// Receipts are opaque annotation data: nothing in the API waits on them and
// a gateway outage never fails a proposal or complaint operation.
package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aegisai/civicchain/src/webclient"
)

type Client struct {
	endpoint   string
	httpClient *http.Client
}

func NewClient(endpoint string) *Client {
	return &Client{
		endpoint:   endpoint,
		httpClient: webclient.NewDefault(30 * time.Second),
	}
}

// Submit posts a record payload and returns the gateway's transaction
// receipt identifier.
func (c *Client) Submit(ctx context.Context, payload map[string]interface{}) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	status, body, err := webclient.DoWithRetry(ctx, 3, 2*time.Second, func() (int, []byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/v1/records", bytes.NewReader(raw))
		if err != nil {
			return 0, nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return 0, nil, err
		}
		defer resp.Body.Close()
		b, err := io.ReadAll(resp.Body)
		return resp.StatusCode, b, err
	})
	if err != nil {
		return "", err
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return "", fmt.Errorf("chain: status %d", status)
	}

	var out struct {
		Receipt string `json:"receipt"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("chain: decode: %w", err)
	}
	if out.Receipt == "" {
		return "", fmt.Errorf("chain: empty receipt")
	}
	return out.Receipt, nil
}
