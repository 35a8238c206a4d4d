package artwork

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Generated image URLs are short-lived, so the bytes are pulled down right
// after generation and re-hosted in our own bucket.
type Fetcher struct {
	httpClient *http.Client
}

func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &Fetcher{
		httpClient: &http.Client{Timeout: timeout},
	}
}

const maxFetchBytes = 32 << 20

// Fetch downloads the image at url and returns its bytes and content type.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("new request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch artwork: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("fetch artwork: status=%d url=%s", resp.StatusCode, url)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return nil, "", fmt.Errorf("read artwork body: %w", err)
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("empty artwork body")
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/png"
	}
	return data, contentType, nil
}
