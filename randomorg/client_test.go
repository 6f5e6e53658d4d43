package randomorg

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_GenerateIntegers(t *testing.T) {
	var received map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","result":{"random":{"data":[5,17,42],"completionTime":"2025-01-01 00:00:00Z"},"bitsUsed":20,"requestsLeft":999},"id":"x"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret-key")
	numbers, err := client.GenerateIntegers(context.Background(), 3, 1, 99, false)

	require.NoError(t, err)
	assert.Equal(t, []int{5, 17, 42}, numbers)

	assert.Equal(t, "2.0", received["jsonrpc"])
	assert.Equal(t, "generateIntegers", received["method"])
	assert.NotEmpty(t, received["id"])
	params := received["params"].(map[string]any)
	assert.Equal(t, "secret-key", params["apiKey"])
	assert.Equal(t, float64(3), params["n"])
	assert.Equal(t, float64(1), params["min"])
	assert.Equal(t, float64(99), params["max"])
	assert.Equal(t, false, params["replacement"])
}

func TestClient_GenerateIntegers_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("maintenance\n"))
	}))
	defer server.Close()

	_, err := NewClient(server.URL, "key").GenerateIntegers(context.Background(), 10, 1, 99, false)

	require.Error(t, err)
	assert.Equal(t, "Random.org request failed: maintenance", err.Error())
}

func TestClient_GenerateIntegers_RPCError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","error":{"code":401,"message":"The API key you specified does not exist"},"id":"x"}`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL, "bad").GenerateIntegers(context.Background(), 10, 1, 99, false)

	require.Error(t, err)
	assert.Equal(t, "The API key you specified does not exist", err.Error())
}

func TestParseIntegers(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    []int
		wantErr string
	}{
		{"data", `{"result":{"random":{"data":[1,2]}}}`, []int{1, 2}, ""},
		{"empty data", `{"result":{"random":{"data":[]}}}`, []int{}, ""},
		{"no result no error", `{"jsonrpc":"2.0"}`, nil, "Random.org responded with an error"},
		{"not json", `oops`, nil, "Random.org responded with an error"},
		{"non numeric", `{"result":{"random":{"data":["a"]}}}`, nil, `Random.org returned a non-numeric value "\"a\""`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseIntegers([]byte(tt.body))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
