package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/images/generations", r.URL.Path)
		require.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Equal(t, "dall-e-3", payload["model"])
		require.Equal(t, "1024x1792", payload["size"])
		require.NotEmpty(t, payload["prompt"])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]string{{"url": "https://cdn/x.png"}},
		})
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "sk-test", BaseURL: srv.URL}, nil)
	url, err := c.Generate(context.Background(), "a yacht at sunset")
	require.NoError(t, err)
	require.Equal(t, "https://cdn/x.png", url)
}

func TestGenerateProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"rate limited"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "sk-test", BaseURL: srv.URL}, nil)
	_, err := c.Generate(context.Background(), "a yacht at sunset")
	require.Error(t, err)
	require.Contains(t, err.Error(), "status=429")
}

func TestGenerateEmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"data": []map[string]string{}})
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "sk-test", BaseURL: srv.URL}, nil)
	_, err := c.Generate(context.Background(), "a yacht at sunset")
	require.Error(t, err)
}

func TestGenerateEmptyPrompt(t *testing.T) {
	c := NewClient(Config{APIKey: "sk-test"}, nil)
	_, err := c.Generate(context.Background(), "")
	require.Error(t, err)
}
