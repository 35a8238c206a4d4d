package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("MYSQL_DSN", "user:pass@tcp(localhost:3306)/boatmemories?parseTime=true")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("STRIPE_SECRET_KEY", "sk_test")
	t.Setenv("S3_REGION", "us-east-1")
	t.Setenv("S3_ACCESS_KEY", "access")
	t.Setenv("S3_SECRET_KEY", "secret")
	t.Setenv("S3_BUCKET", "boatmemories")
	t.Setenv("S3_PUBLIC_BASE_URL", "https://cdn.example")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.ListenAddr)
	require.Equal(t, "https://api.openai.com", cfg.OpenAIBaseURL)
	require.Equal(t, "https://api.stripe.com", cfg.StripeBaseURL)
	require.Equal(t, 120*time.Second, cfg.RequestTimeout)
	require.Equal(t, int64(10<<20), cfg.MaxPhotoBytes)
	require.Equal(t, 3, cfg.MaxPhotos)
	require.Equal(t, "photos", cfg.S3PhotoPrefix)
	require.Equal(t, "artwork", cfg.S3ArtworkPrefix)
}

func TestLoadMissingRequired(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("OPENAI_API_KEY", "")

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "OPENAI_API_KEY")
}

func TestLoadOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("LISTEN_ADDR", ":9090")
	t.Setenv("HTTP_TIMEOUT_SECONDS", "30")
	t.Setenv("MAX_PHOTOS", "2")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.ListenAddr)
	require.Equal(t, 30*time.Second, cfg.RequestTimeout)
	require.Equal(t, 2, cfg.MaxPhotos)
}
