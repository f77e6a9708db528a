package config

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/Reloadly/reloadly-sdk-go/core"
	cerrors "github.com/Reloadly/reloadly-sdk-go/internal/errors"
)

// Config holds all environment-based configuration for the reloadly CLI.
type Config struct {
	// Credentials. Either AccessToken, or ClientID and ClientSecret.
	ClientID     string `env:"RELOADLY_CLIENT_ID"`
	ClientSecret string `env:"RELOADLY_CLIENT_SECRET"`
	AccessToken  string `env:"RELOADLY_ACCESS_TOKEN"`

	// Deployment to talk to: live or sandbox.
	Deployment core.Environment `env:"RELOADLY_ENVIRONMENT" envDefault:"sandbox"`

	// Overrides the token endpoint root. Defaults to the production auth
	// server.
	AuthURL string `env:"RELOADLY_AUTH_URL"`

	// Override the API roots of the deployment, e.g. for a local mock.
	AirtimeURL  string `env:"RELOADLY_AIRTIME_URL"`
	GiftcardURL string `env:"RELOADLY_GIFTCARD_URL"`

	// File the token cache is persisted in. Defaults to
	// ~/.reloadly/state.db.
	StatePath string `env:"RELOADLY_STATE_PATH"`

	// Applied to connect, read and write alike.
	Timeout time.Duration `env:"RELOADLY_TIMEOUT" envDefault:"180s"`

	ProxyURL      string `env:"RELOADLY_PROXY_URL"`
	ProxyUsername string `env:"RELOADLY_PROXY_USERNAME"`
	ProxyPassword string `env:"RELOADLY_PROXY_PASSWORD"`

	// HTTP request/response logging and the headers whose values it hides.
	LogHTTP       bool     `env:"RELOADLY_LOG_HTTP" envDefault:"false"`
	RedactHeaders []string `env:"RELOADLY_REDACT_HEADERS" envSeparator:","`

	// Requests per second, 0 for unlimited.
	RateLimit int `env:"RELOADLY_RATE_LIMIT" envDefault:"0"`

	// Environment controls log format
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
}

// warnInsecureEnvFile checks whether the .env file (if present) has
// overly permissive permissions. On Unix systems, group or world
// readable files risk exposing credentials to other users.
func warnInsecureEnvFile() {
	if runtime.GOOS == "windows" {
		return
	}

	info, err := os.Stat(".env")
	if err != nil {
		return // file does not exist, nothing to check
	}

	mode := info.Mode().Perm()
	if mode&0o077 != 0 {
		log.Printf("WARNING: .env file has insecure permissions %04o; recommended 0600", mode)
	}
}

// Load reads configuration from environment variables.
// It first attempts to load a .env file if present, then parses env vars.
func Load() (*Config, error) {
	_ = godotenv.Load()

	warnInsecureEnvFile()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	if cfg.StatePath == "" {
		path, err := DefaultStatePath()
		if err != nil {
			return nil, err
		}

		cfg.StatePath = path
	}

	absPath, err := filepath.Abs(cfg.StatePath)
	if err != nil {
		return nil, fmt.Errorf("resolving state path to absolute path: %w", err)
	}

	cfg.StatePath = absPath

	return cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.AccessToken) == "" &&
		(strings.TrimSpace(c.ClientID) == "" || strings.TrimSpace(c.ClientSecret) == "") {
		return cerrors.ErrMissingCredentials
	}

	for name, u := range map[string]string{
		"RELOADLY_AUTH_URL":     c.AuthURL,
		"RELOADLY_AIRTIME_URL":  c.AirtimeURL,
		"RELOADLY_GIFTCARD_URL": c.GiftcardURL,
	} {
		if u == "" {
			continue
		}

		if err := core.ValidURL(u, name); err != nil {
			return err
		}
	}

	if proxy := c.proxy(); proxy != nil {
		if err := proxy.Validate(); err != nil {
			return fmt.Errorf("%w: %w", cerrors.ErrInvalidProxy, err)
		}
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("RELOADLY_TIMEOUT must be positive, got %s", c.Timeout)
	}

	if c.RateLimit < 0 {
		return fmt.Errorf("RELOADLY_RATE_LIMIT must not be negative, got %d", c.RateLimit)
	}

	return nil
}

// DefaultStatePath returns the default token cache file:
// ~/.reloadly/state.db
func DefaultStatePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determining home directory: %w", err)
	}

	return filepath.Join(home, ".reloadly", "state.db"), nil
}

// IsProduction returns true when the environment is set to production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Credentials returns the credentials service clients authenticate with.
func (c *Config) Credentials() core.Credentials {
	return core.Credentials{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		AccessToken:  c.AccessToken,
	}
}

func (c *Config) proxy() *core.ProxyOptions {
	if c.ProxyURL == "" && c.ProxyUsername == "" && c.ProxyPassword == "" {
		return nil
	}

	return &core.ProxyOptions{URL: c.ProxyURL, Username: c.ProxyUsername, Password: c.ProxyPassword}
}

// HTTPOptions returns the transport settings.
func (c *Config) HTTPOptions() core.HTTPOptions {
	return core.HTTPOptions{
		ConnectTimeout: c.Timeout,
		ReadTimeout:    c.Timeout,
		WriteTimeout:   c.Timeout,
		Proxy:          c.proxy(),
	}
}

// ClientOptions returns the options every service client is built with.
func (c *Config) ClientOptions(logger *slog.Logger) []core.Option {
	opts := []core.Option{
		core.WithEnvironment(c.Deployment),
		core.WithHTTPOptions(c.HTTPOptions()),
		core.WithLogger(logger),
		core.WithRateLimit(c.RateLimit),
	}

	if c.AuthURL != "" {
		opts = append(opts, core.WithAuthURL(c.AuthURL))
	}

	if c.LogHTTP {
		opts = append(opts, core.WithHTTPLogging(c.RedactHeaders...))
	}

	return opts
}
