package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env         string
	ListenAddr  string
	DatabaseURL string
	// CredEncKey stays encoded until a DB-backed command asks for it.
	CredEncKey string

	// single context, used when DatabaseURL is empty
	ResyAPIKey    string
	ResyAuthToken string
	AskSource     string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	VenueCacheTTL time.Duration

	ResyRPS         float64
	ResyBurst       int
	PaymentMethodID int64
	HTTPTimeout     time.Duration
	PassInterval    time.Duration

	LogLevel  string
	LogPretty bool
}

// FromEnv reads the configuration from the environment. Outside production a
// .env file in the working directory is loaded first when present; variables
// already set win over it.
func FromEnv() (Config, error) {
	env := envDefault("APP_ENV", "development")
	if env != "production" {
		_ = godotenv.Load()
	}

	cfg := Config{
		Env:           env,
		ListenAddr:    envDefault("LISTEN_ADDR", ":8080"),
		DatabaseURL:   strings.TrimSpace(os.Getenv("DATABASE_URL")),
		CredEncKey:    strings.TrimSpace(os.Getenv("CRED_ENC_KEY")),
		ResyAPIKey:    strings.TrimSpace(os.Getenv("RESY_API_KEY")),
		ResyAuthToken: strings.TrimSpace(os.Getenv("RESY_AUTH_TOKEN")),
		AskSource:     strings.TrimSpace(os.Getenv("RESY_ASK_SOURCE")),
		RedisAddr:     strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		LogLevel:      envDefault("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.RedisDB, err = envInt("REDIS_DB", 0); err != nil {
		return Config{}, err
	}
	if cfg.VenueCacheTTL, err = envDuration("VENUE_CACHE_TTL", 7*24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.ResyRPS, err = envFloat("RESY_RPS", 2); err != nil {
		return Config{}, err
	}
	if cfg.ResyBurst, err = envInt("RESY_BURST", 1); err != nil {
		return Config{}, err
	}
	if cfg.HTTPTimeout, err = envDuration("HTTP_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.PassInterval, err = envDuration("PASS_INTERVAL", 5*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.PassInterval <= 0 {
		return Config{}, fmt.Errorf("PASS_INTERVAL must be positive")
	}
	if cfg.LogPretty, err = envBool("LOG_PRETTY", env != "production"); err != nil {
		return Config{}, err
	}
	pm, err := envInt("RESY_PAYMENT_METHOD_ID", 0)
	if err != nil {
		return Config{}, err
	}
	cfg.PaymentMethodID = int64(pm)

	return cfg, nil
}

// SealKey decodes CRED_ENC_KEY. The value may also be a path to a file
// holding the key (k8s secret mounts).
func (c Config) SealKey() ([]byte, error) {
	if c.CredEncKey == "" {
		return nil, fmt.Errorf("CRED_ENC_KEY is required (base64, 32 bytes)")
	}
	key, err := decodeB64(c.CredEncKey)
	if err != nil {
		return nil, fmt.Errorf("CRED_ENC_KEY: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("CRED_ENC_KEY must decode to 32 bytes (got %d)", len(key))
	}
	return key, nil
}

// SingleContext reports whether the env describes one context directly
// instead of a database of contexts.
func (c Config) SingleContext() bool {
	return c.DatabaseURL == ""
}

func decodeB64(s string) ([]byte, error) {
	if b, err := os.ReadFile(s); err == nil {
		s = string(b)
	}
	s = strings.TrimSpace(s)
	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	return base64.RawStdEncoding.DecodeString(s)
}

func envDefault(k, d string) string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return d
	}
	return v
}

func envInt(k string, d int) (int, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return d, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", k, err)
	}
	return n, nil
}

func envFloat(k string, d float64) (float64, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return d, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", k, err)
	}
	return f, nil
}

func envBool(k string, d bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return d, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", k, err)
	}
	return b, nil
}

func envDuration(k string, d time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return d, nil
	}
	dur, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", k, err)
	}
	return dur, nil
}
