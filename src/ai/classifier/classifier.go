package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aegisai/civicchain/src/webclient"
)

const defaultMaxTokens = 512

// Request is the complaint text handed to the classifier.
type Request struct {
	Title       string
	Description string
	Location    string
}

// Classification is the structured triage result. Source records whether it
// came from the model or the keyword fallback.
type Classification struct {
	Category    string `json:"category"`
	Priority    int    `json:"priority"`   // 1 (low) .. 5 (critical)
	Confidence  int    `json:"confidence"` // 0 .. 100
	Department  string `json:"department"`
	IsEmergency bool   `json:"isEmergency"`
	Source      string `json:"-"`
}

// Client calls a hosted generative text API and asks it for a strict-JSON
// classification. Callers should treat any error as a signal to use
// Fallback; a classifier outage must never block complaint intake.
type Client struct {
	apiKey     string
	endpoint   string
	model      string
	httpClient *http.Client
}

func New(apiKey, endpoint string) *Client {
	return &Client{
		apiKey:     apiKey,
		endpoint:   endpoint,
		model:      "claude-sonnet-4-20250514",
		httpClient: webclient.NewDefault(15 * time.Second),
	}
}

const systemPrompt = `You triage civic complaints for a city service desk.
Reply with a single JSON object and nothing else:
{"category":"Infrastructure|Environment|Social|Governance|Budget","priority":1-5,"confidence":0-100,"department":"<city department>","isEmergency":true|false}`

func (c *Client) Classify(ctx context.Context, req Request) (Classification, error) {
	if c.apiKey == "" {
		return Classification{}, fmt.Errorf("classifier: API key not configured")
	}

	prompt := fmt.Sprintf("Title: %s\nDescription: %s", req.Title, req.Description)
	if req.Location != "" {
		prompt += "\nLocation: " + req.Location
	}

	body := map[string]interface{}{
		"model":      c.model,
		"system":     systemPrompt,
		"max_tokens": defaultMaxTokens,
		"messages": []map[string]interface{}{
			{
				"role": "user",
				"content": []map[string]string{
					{"type": "text", "text": prompt},
				},
			},
		},
	}

	respBody, err := c.post(ctx, body)
	if err != nil {
		return Classification{}, err
	}

	text := extractText(respBody.Content)
	if text == "" {
		return Classification{}, fmt.Errorf("classifier: empty response")
	}
	return parseClassification(text)
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type apiResponse struct {
	Content []contentBlock `json:"content"`
}

func (c *Client) post(ctx context.Context, payload map[string]interface{}) (apiResponse, error) {
	var out apiResponse
	raw, err := json.Marshal(payload)
	if err != nil {
		return out, err
	}

	status, body, err := webclient.DoWithRetry(ctx, 3, time.Second, func() (int, []byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(raw))
		if err != nil {
			return 0, nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-api-key", c.apiKey)
		req.Header.Set("anthropic-version", "2023-06-01")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return 0, nil, err
		}
		defer resp.Body.Close()
		b, err := io.ReadAll(resp.Body)
		return resp.StatusCode, b, err
	})
	if err != nil {
		return out, err
	}
	if status != http.StatusOK {
		return out, fmt.Errorf("classifier: status %d: %s", status, strings.TrimSpace(string(body)))
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return out, fmt.Errorf("classifier: decode: %w", err)
	}
	return out, nil
}

func extractText(content []contentBlock) string {
	var sb strings.Builder
	for _, c := range content {
		if c.Type == "text" {
			sb.WriteString(c.Text)
		}
	}
	return strings.TrimSpace(sb.String())
}

// parseClassification tolerates fenced or prefixed output around the JSON
// object and clamps out-of-range numbers.
func parseClassification(text string) (Classification, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return Classification{}, fmt.Errorf("classifier: no JSON object in response")
	}

	var out Classification
	if err := json.Unmarshal([]byte(text[start:end+1]), &out); err != nil {
		return Classification{}, fmt.Errorf("classifier: parse: %w", err)
	}
	if out.Category == "" {
		return Classification{}, fmt.Errorf("classifier: missing category")
	}
	out.Priority = clamp(out.Priority, 1, 5)
	out.Confidence = clamp(out.Confidence, 0, 100)
	out.Source = "model"
	return out, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
