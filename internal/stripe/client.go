package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client charges cards through the PaymentIntents API. A memory is never
// marked paid without a succeeded intent coming back from here.
type Client struct {
	secretKey  string
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

type Config struct {
	SecretKey string
	BaseURL   string
	Timeout   time.Duration
}

type ChargeRequest struct {
	AmountMinorUnits int
	Currency         string
	MethodToken      string
	Email            string
	IdempotencyKey   string
}

// Receipt is the confirmed charge. Status is "succeeded" for a captured
// payment; anything else is treated as a decline by the caller.
type Receipt struct {
	ID     string
	Status string
}

func NewClient(cfg Config, log *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.stripe.com"
	}
	return &Client{
		secretKey: cfg.SecretKey,
		baseURL:   baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// Charge creates and confirms a payment intent in one call. The idempotency
// key guards against double charges when a caller retries after a network
// failure.
func (c *Client) Charge(ctx context.Context, req ChargeRequest) (*Receipt, error) {
	if req.AmountMinorUnits <= 0 {
		return nil, fmt.Errorf("charge amount must be positive")
	}
	if req.MethodToken == "" {
		return nil, fmt.Errorf("payment method token is required")
	}

	form := url.Values{}
	form.Set("amount", strconv.Itoa(req.AmountMinorUnits))
	form.Set("currency", strings.ToLower(req.Currency))
	form.Set("payment_method", req.MethodToken)
	form.Set("confirm", "true")
	form.Set("automatic_payment_methods[enabled]", "true")
	form.Set("automatic_payment_methods[allow_redirects]", "never")
	if req.Email != "" {
		form.Set("receipt_email", req.Email)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/payment_intents", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build stripe request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if req.IdempotencyKey != "" {
		httpReq.Header.Set("Idempotency-Key", req.IdempotencyKey)
	}
	httpReq.SetBasicAuth(c.secretKey, "")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("stripe request: %w", err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read stripe response: %w", err)
	}

	if resp.StatusCode >= 300 {
		var failure struct {
			Error struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		_ = json.Unmarshal(rawBody, &failure)
		if c.log != nil {
			c.log.Error("stripe charge declined", "status", resp.StatusCode, "code", failure.Error.Code, "msg", failure.Error.Message)
		}
		if failure.Error.Message != "" {
			return nil, fmt.Errorf("charge declined: %s (code=%s)", failure.Error.Message, failure.Error.Code)
		}
		return nil, fmt.Errorf("stripe error: status=%d", resp.StatusCode)
	}

	var intent struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(rawBody, &intent); err != nil {
		return nil, fmt.Errorf("decode stripe response: %w", err)
	}
	if intent.ID == "" {
		return nil, fmt.Errorf("invalid stripe response (missing intent id)")
	}
	if intent.Status != "succeeded" {
		return nil, fmt.Errorf("charge not captured: status=%s", intent.Status)
	}

	return &Receipt{ID: intent.ID, Status: intent.Status}, nil
}
