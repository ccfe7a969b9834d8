package app

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Issuer       string        // Issuer claim for access tokens (default: tilldesk-identity)
	Audience     []string      // Audience claim for access tokens (default: tilldesk)
	DatabaseFile string        // Path to SQLite database file (default: ./identity.db)
	PepperFile   string        // Path to file containing pepper for password hashing (default: ./pepper)
	NumKeys      int           // Number of signing keys to generate (default: 3, min: 1, max: 10)
	AccessTTL    time.Duration // Access token lifetime (default: 12h)

	PhoneProofIssuer   string // Expected iss of phone-proof tokens
	PhoneProofAudience string // Expected aud of phone-proof tokens
	PhoneProofLocal    bool   // Serve the built-in SMS code provider
	PhoneProofDevEcho  bool   // Return challenge codes in the response (dev only)

	PINMaxAttempts     int           // Consecutive failures before lockout (default: 3)
	PINLockout         time.Duration // Lockout length (default: 5m)
	SessionIdleTimeout time.Duration // Inactivity before an unlocked session re-locks (default: 15m)

	NotifyWebhookURL   string        // Messaging gateway; empty logs messages instead
	NotifyWebhookToken string        // Bearer token for the gateway
	NotifyTimeout      time.Duration // Per message delivery budget (default: 10s)

	RequestTimeout       time.Duration // Per request context deadline (default: 10s)
	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	LogFile              string        // Optional rotated log file
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Session pruning interval (default: 10m)
}

// env resolves a key from the process environment first and the overlay
// file second.
type env map[string]string

func (e env) get(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return e[key]
}

// ConfigFileFromEnv returns the overlay file named by IDENTITY_CONFIG_FILE.
func ConfigFileFromEnv() string {
	return os.Getenv("IDENTITY_CONFIG_FILE")
}

// LoadConfig reads the configuration from the environment. When file is
// non-empty it is read as a flat YAML map of the same keys and supplies
// values the environment leaves unset.
func LoadConfig(file string) (Config, error) {
	e := env{}
	if file != "" {
		raw, err := os.ReadFile(file)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &e); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", file, err)
		}
	}

	cfg := Config{
		Issuer:       e.getOrDefault("IDENTITY_ISSUER", "tilldesk-identity"),
		Audience:     splitList(e.getOrDefault("IDENTITY_AUDIENCE", "tilldesk")),
		DatabaseFile: e.getOrDefault("IDENTITY_DATABASE_FILE", "identity.db"),
		PepperFile:   e.getOrDefault("IDENTITY_PEPPER_FILE", "pepper"),
		NumKeys:      e.getIntOrDefault("IDENTITY_NUM_KEYS", 3),
		AccessTTL:    e.getDurationOrDefault("IDENTITY_ACCESS_TTL", 12*time.Hour),

		PhoneProofIssuer:   e.get("PHONE_PROOF_ISSUER"),
		PhoneProofAudience: e.get("PHONE_PROOF_AUDIENCE"),
		PhoneProofLocal:    e.getBool("PHONE_PROOF_LOCAL"),
		PhoneProofDevEcho:  e.getBool("PHONE_PROOF_DEV_ECHO"),

		PINMaxAttempts:     e.getIntOrDefault("PIN_MAX_ATTEMPTS", 3),
		PINLockout:         e.getDurationOrDefault("PIN_LOCKOUT", 5*time.Minute),
		SessionIdleTimeout: e.getDurationOrDefault("SESSION_IDLE_TIMEOUT", 15*time.Minute),

		NotifyWebhookURL:   e.get("NOTIFY_WEBHOOK_URL"),
		NotifyWebhookToken: e.get("NOTIFY_WEBHOOK_TOKEN"),
		NotifyTimeout:      e.getDurationOrDefault("NOTIFY_TIMEOUT", 10*time.Second),

		RequestTimeout:       e.getDurationOrDefault("REQUEST_TIMEOUT", 10*time.Second),
		Env:                  e.getOrDefault("ENV", "dev"),
		LogLevel:             e.getOrDefault("LOG_LEVEL", "info"),
		LogFormat:            e.getOrDefault("LOG_FORMAT", "json"),
		LogFile:              e.get("LOG_FILE"),
		Port:                 e.getIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  e.getDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: e.getDurationOrDefault("HOUSEKEEPING_INTERVAL", 10*time.Minute),
	}

	// The local provider signs its own proofs, so it names the claims it
	// expects when nothing else does.
	if cfg.PhoneProofLocal {
		if cfg.PhoneProofIssuer == "" {
			cfg.PhoneProofIssuer = cfg.Issuer + "-phone"
		}
		if cfg.PhoneProofAudience == "" && len(cfg.Audience) > 0 {
			cfg.PhoneProofAudience = cfg.Audience[0]
		}
	}

	return cfg, nil
}

func (e env) getOrDefault(key, defaultValue string) string {
	if value := e.get(key); value != "" {
		return value
	}
	return defaultValue
}

func (e env) getBool(key string) bool {
	v, err := strconv.ParseBool(e.get(key))
	return err == nil && v
}

func (e env) getIntOrDefault(key string, defaultValue int) int {
	value := e.get(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func (e env) getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := e.get(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
