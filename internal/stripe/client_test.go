package stripe

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChargeSucceeded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/payment_intents", r.URL.Path)
		user, _, ok := r.BasicAuth()
		require.True(t, ok)
		require.Equal(t, "sk_test", user)
		require.Equal(t, "purchase-m1", r.Header.Get("Idempotency-Key"))

		require.NoError(t, r.ParseForm())
		require.Equal(t, "7900", r.PostForm.Get("amount"))
		require.Equal(t, "usd", r.PostForm.Get("currency"))
		require.Equal(t, "pm_card", r.PostForm.Get("payment_method"))
		require.Equal(t, "true", r.PostForm.Get("confirm"))

		_ = json.NewEncoder(w).Encode(map[string]string{"id": "pi_123", "status": "succeeded"})
	}))
	defer srv.Close()

	c := NewClient(Config{SecretKey: "sk_test", BaseURL: srv.URL}, nil)
	receipt, err := c.Charge(context.Background(), ChargeRequest{
		AmountMinorUnits: 7900,
		Currency:         "USD",
		MethodToken:      "pm_card",
		Email:            "a@b.com",
		IdempotencyKey:   "purchase-m1",
	})
	require.NoError(t, err)
	require.Equal(t, "pi_123", receipt.ID)
	require.Equal(t, "succeeded", receipt.Status)
}

func TestChargeDeclined(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"code": "card_declined", "message": "Your card was declined."},
		})
	}))
	defer srv.Close()

	c := NewClient(Config{SecretKey: "sk_test", BaseURL: srv.URL}, nil)
	_, err := c.Charge(context.Background(), ChargeRequest{AmountMinorUnits: 3900, Currency: "usd", MethodToken: "pm_card"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "card_declined")
}

func TestChargeNotCaptured(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "pi_123", "status": "requires_action"})
	}))
	defer srv.Close()

	c := NewClient(Config{SecretKey: "sk_test", BaseURL: srv.URL}, nil)
	_, err := c.Charge(context.Background(), ChargeRequest{AmountMinorUnits: 3900, Currency: "usd", MethodToken: "pm_card"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "requires_action")
}

func TestChargeRejectsBadInput(t *testing.T) {
	c := NewClient(Config{SecretKey: "sk_test"}, nil)
	_, err := c.Charge(context.Background(), ChargeRequest{AmountMinorUnits: 0, MethodToken: "pm_card"})
	require.Error(t, err)
	_, err = c.Charge(context.Background(), ChargeRequest{AmountMinorUnits: 100})
	require.Error(t, err)
}
