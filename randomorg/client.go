// Package randomorg draws true-random integers from the Random.org JSON-RPC API.
package randomorg

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

// DefaultURL is the JSON-RPC endpoint of the Random.org basic API
const DefaultURL = "https://api.random.org/json-rpc/4/invoke"

const maxResponseBytes = 1 << 20

// Client calls generateIntegers with an API key
type Client struct {
	url        string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a Random.org client. An empty url uses DefaultURL.
func NewClient(url, apiKey string) *Client {
	if url == "" {
		url = DefaultURL
	}
	return &Client{
		url:        url,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type rpcRequest struct {
	JSONRPC string         `json:"jsonrpc"`
	Method  string         `json:"method"`
	Params  map[string]any `json:"params"`
	ID      string         `json:"id"`
}

// GenerateIntegers returns n integers in [min, max]
func (c *Client) GenerateIntegers(ctx context.Context, n, min, max int, replacement bool) ([]int, error) {
	payload, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  "generateIntegers",
		Params: map[string]any{
			"apiKey":      c.apiKey,
			"n":           n,
			"min":         min,
			"max":         max,
			"replacement": replacement,
		},
		ID: uuid.NewString(),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("Random.org request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("Random.org request failed: %s", strings.TrimSpace(string(body)))
	}

	return parseIntegers(body)
}

// parseIntegers extracts result.random.data, or the JSON-RPC error message
func parseIntegers(body []byte) ([]int, error) {
	data := gjson.GetBytes(body, "result.random.data")
	if !data.Exists() || !data.IsArray() {
		if message := gjson.GetBytes(body, "error.message"); message.Exists() && message.String() != "" {
			return nil, errors.New(message.String())
		}
		return nil, errors.New("Random.org responded with an error")
	}

	values := data.Array()
	numbers := make([]int, 0, len(values))
	for _, v := range values {
		if v.Type != gjson.Number {
			return nil, fmt.Errorf("Random.org returned a non-numeric value %q", v.Raw)
		}
		numbers = append(numbers, int(v.Int()))
	}

	return numbers, nil
}
