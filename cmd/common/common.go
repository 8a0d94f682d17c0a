// Package common provides shared utilities for the ATP CLI commands:
// koanf-based configuration loading with environment overrides, structured
// logger construction and signing key handling.
package common

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/trebortGolin/agnostic-agent-api/crypto"
	"github.com/trebortGolin/agnostic-agent-api/telemetry"
)

// Config is the shared configuration surface of the service binaries. Each
// binary reads only its own sections.
type Config struct {
	HTTPAddr  string           `koanf:"addr"`
	Log       LogConfig        `koanf:"log"`
	Telemetry telemetry.Config `koanf:"telemetry"`
	Directory DirectoryConfig  `koanf:"directory"`
	Supplier  SupplierConfig   `koanf:"supplier"`
	Shopper   ShopperConfig    `koanf:"shopper"`
	Gateway   GatewayConfig    `koanf:"gateway"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// DirectoryConfig configures the directory binary.
type DirectoryConfig struct {
	Credential string `koanf:"credential"`
	AdminToken string `koanf:"admin_token"`
}

// SupplierConfig configures the supplier binary.
type SupplierConfig struct {
	SupplierID  string        `koanf:"supplier_id"`
	Name        string        `koanf:"name"`
	BaseURL     string        `koanf:"base_url"`
	CatalogPath string        `koanf:"catalog"`
	OfferTTL    time.Duration `koanf:"offer_ttl"`
	// DirectoryURL, when set, makes the supplier announce itself to the
	// directory at startup.
	DirectoryURL string `koanf:"directory_url"`
	// SigningKey is the hex-encoded Ed25519 key the announcement is signed
	// with. Empty means a fresh key per start.
	SigningKey string `koanf:"signing_key"`
}

// ShopperConfig configures the shopper and gateway binaries' buying side.
type ShopperConfig struct {
	DirectoryURL     string        `koanf:"directory_url"`
	RequesterID      string        `koanf:"requester_id"`
	Credential       string        `koanf:"credential"`
	AllowUnverified  bool          `koanf:"allow_unverified"`
	NegotiateTimeout time.Duration `koanf:"negotiate_timeout"`
	SigningKey       string        `koanf:"signing_key"`
}

// GatewayConfig configures the conversational gateway.
type GatewayConfig struct {
	GeminiAPIKey string `koanf:"gemini_api_key"`
	GeminiModel  string `koanf:"gemini_model"`
}

// DefaultConfig returns the baseline configuration.
func DefaultConfig() *Config {
	return &Config{
		HTTPAddr: ":8080",
		Log:      LogConfig{Level: "info", Format: "text"},
		Shopper:  ShopperConfig{RequesterID: "req-local"},
	}
}

// LoadConfig reads a YAML config file and applies ATP_* environment
// overrides (ATP_DIRECTORY_CREDENTIAL -> directory.credential). An empty
// path loads defaults plus environment only.
func LoadConfig(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider("ATP_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, "ATP_")), "_", ".", 1)
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := DefaultConfig()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

// NewLogger builds a slog logger from the log section.
func NewLogger(cfg LogConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.ToLower(cfg.Format) == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// LoadOrGenerateSigningKey loads an Ed25519 private key from a hex string,
// or generates a fresh key pair when hexKey is empty.
func LoadOrGenerateSigningKey(hexKey string) (crypto.PrivateKey, error) {
	if hexKey != "" {
		return crypto.NewPrivateKeyFromString(hexKey)
	}
	_, privKey, err := crypto.GenerateKeyPair()
	return privKey, err
}
