package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Client is a minimal Images API client. Only text-to-image generation is
// used: the prompt is synthesized from the charter location alone.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

func NewClient(cfg Config, log *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// Generate submits a single dall-e-3 generation and returns the hosted URL of
// the resulting image. The 1024x1792 size matches the 2:3 print aspect ratio.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", fmt.Errorf("prompt cannot be empty")
	}

	payload := map[string]any{
		"model":   "dall-e-3",
		"prompt":  prompt,
		"n":       1,
		"size":    "1024x1792",
		"quality": "hd",
		"style":   "vivid",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	fullURL := c.baseURL + "/v1/images/generations"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fullURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("post images generation: %w", err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode >= 300 {
		if c.log != nil {
			c.log.Error("image generation failed", "status", resp.StatusCode, "body", truncateBody(rawBody))
		}
		return "", fmt.Errorf("openai error: status=%d body=%s", resp.StatusCode, truncateBody(rawBody))
	}

	var generated struct {
		Data []struct {
			URL string `json:"url"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rawBody, &generated); err != nil {
		return "", fmt.Errorf("decode generation response: %w (body=%s)", err, truncateBody(rawBody))
	}
	if len(generated.Data) == 0 || generated.Data[0].URL == "" {
		return "", fmt.Errorf("no image url in response")
	}

	if c.log != nil {
		c.log.Info("image generated", "url", generated.Data[0].URL)
	}
	return generated.Data[0].URL, nil
}

func truncateBody(body []byte) string {
	const limit = 512
	s := strings.TrimSpace(string(body))
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "…"
}
