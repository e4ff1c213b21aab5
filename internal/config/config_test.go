package config

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("PASS_INTERVAL", "")
	t.Setenv("LOG_PRETTY", "")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, 5*time.Minute, cfg.PassInterval)
	assert.Equal(t, float64(2), cfg.ResyRPS)
	assert.False(t, cfg.LogPretty)
	assert.True(t, cfg.SingleContext())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("DATABASE_URL", "postgres://x")
	t.Setenv("PASS_INTERVAL", "30s")
	t.Setenv("RESY_RPS", "0.5")
	t.Setenv("RESY_PAYMENT_METHOD_ID", "1234")
	t.Setenv("REDIS_DB", "3")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.PassInterval)
	assert.Equal(t, 0.5, cfg.ResyRPS)
	assert.Equal(t, int64(1234), cfg.PaymentMethodID)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.False(t, cfg.SingleContext())
}

func TestFromEnvRejectsBadValues(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	for k, v := range map[string]string{
		"PASS_INTERVAL": "soon",
		"RESY_BURST":    "many",
		"LOG_PRETTY":    "sometimes",
	} {
		t.Run(k, func(t *testing.T) {
			t.Setenv(k, v)
			_, err := FromEnv()
			assert.ErrorContains(t, err, k)
		})
	}
}

func TestSealKey(t *testing.T) {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}

	got, err := Config{CredEncKey: base64.StdEncoding.EncodeToString(key)}.SealKey()
	require.NoError(t, err)
	assert.Equal(t, key, got)

	got, err = Config{CredEncKey: base64.RawStdEncoding.EncodeToString(key)}.SealKey()
	require.NoError(t, err)
	assert.Equal(t, key, got)

	path := filepath.Join(t.TempDir(), "key")
	require.NoError(t, os.WriteFile(path, []byte(base64.StdEncoding.EncodeToString(key)+"\n"), 0o600))
	got, err = Config{CredEncKey: path}.SealKey()
	require.NoError(t, err)
	assert.Equal(t, key, got)

	_, err = Config{}.SealKey()
	assert.Error(t, err)
	_, err = Config{CredEncKey: base64.StdEncoding.EncodeToString([]byte("short"))}.SealKey()
	assert.ErrorContains(t, err, "32 bytes")
}
