package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Defaults for the dashboard server.
const (
	DefaultPort           = "8080"
	DefaultDataPath       = "Amazon Sale Report.csv"
	DefaultModel          = "gemini-2.0-flash"
	DefaultInsightTimeout = 30 * time.Second
	DefaultMaxUploadBytes = 200 << 20
)

// Credential variables, checked in order.
var credentialEnv = []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"}

// Config is the server configuration. Operational settings come from flags;
// only the service credential is read from the environment.
type Config struct {
	Port           string
	DataPath       string
	Model          string
	InsightTimeout time.Duration
	MaxUploadBytes int64
	LogLevel       string
	EnvFile        string

	// APIKey is the text-generation credential. It is never logged.
	APIKey string
}

// Load parses args (without the program name) and resolves the credential.
func Load(args []string) (*Config, error) {
	cfg := &Config{}

	fs := flag.NewFlagSet("sales-dashboard", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&cfg.Port, "port", DefaultPort, "HTTP server port")
	fs.StringVar(&cfg.DataPath, "data", DefaultDataPath, "Sales report loaded at startup (path, gs:// or bq:// source)")
	fs.StringVar(&cfg.Model, "model", DefaultModel, "Text-generation model for insights")
	fs.DurationVar(&cfg.InsightTimeout, "insight-timeout", DefaultInsightTimeout, "Timeout for a single insight request")
	fs.Int64Var(&cfg.MaxUploadBytes, "max-upload-bytes", DefaultMaxUploadBytes, "Maximum accepted upload size")
	fs.StringVar(&cfg.LogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.EnvFile, "env-file", ".env", "Optional dotenv file holding the API credential")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("Load: parse flags: %w", err)
	}

	if cfg.InsightTimeout <= 0 {
		return nil, fmt.Errorf("Load: insight-timeout must be positive, got %s", cfg.InsightTimeout)
	}
	if cfg.MaxUploadBytes <= 0 {
		return nil, fmt.Errorf("Load: max-upload-bytes must be positive, got %d", cfg.MaxUploadBytes)
	}

	if cfg.EnvFile != "" {
		// godotenv never overrides variables already set in the environment.
		if err := godotenv.Load(cfg.EnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("Load: read %s: %w", cfg.EnvFile, err)
		}
	}
	cfg.APIKey = credential()

	return cfg, nil
}

// HasCredential reports whether insights can be requested.
func (c *Config) HasCredential() bool {
	return c.APIKey != ""
}

func credential() string {
	for _, name := range credentialEnv {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}
