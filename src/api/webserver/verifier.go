package webserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/aegisai/civicchain/src/webclient"
)

// SignatureVerifier checks that a wallet signature over the challenge nonce
// belongs to the address. Production delegates to the wallet provider; tests
// plug in a stub.
type SignatureVerifier interface {
	Verify(ctx context.Context, address, nonce, signature string) error
}

type walletVerifier struct {
	url        string
	httpClient *http.Client
}

func NewWalletVerifier(url string) SignatureVerifier {
	return &walletVerifier{url: url, httpClient: webclient.NewDefault(10 * time.Second)}
}

func (w *walletVerifier) Verify(ctx context.Context, address, nonce, signature string) error {
	if w.url == "" {
		return fmt.Errorf("wallet verifier not configured")
	}
	raw, err := json.Marshal(map[string]string{
		"address":   address,
		"message":   nonce,
		"signature": signature,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("wallet verify: status %d", resp.StatusCode)
	}

	var out struct {
		Valid bool `json:"valid"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return err
	}
	if !out.Valid {
		return fmt.Errorf("signature rejected")
	}
	return nil
}
