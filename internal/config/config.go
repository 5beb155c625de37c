// Package config provides application configuration management with support
// for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App     AppConfig
	Logger  LoggerConfig
	Server  ServerConfig
	Data    DataConfig
	Auth    AuthConfig
	OAuth   OAuthConfig
	Storage StorageConfig
	Audible AudibleConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Name         string
	PublicURL    string        // Base URL for share links and OAuth redirects
	Port         string        // Server port (default: 8080)
	ReadTimeout  time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout time.Duration // HTTP write timeout (default: 30s)
	IdleTimeout  time.Duration // HTTP idle timeout (default: 60s)
}

// DataConfig holds local data storage configuration.
type DataConfig struct {
	// BasePath is the directory for the SQLite database and auth key.
	BasePath string
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	// PASETO v4 symmetric key for session and sync tokens (32 bytes).
	TokenKey []byte
	// SessionDuration is the lifetime of a session token (default: 720h).
	SessionDuration time.Duration
	// SyncTokenDuration is the lifetime of a single-use sync token (default: 15m).
	SyncTokenDuration time.Duration
}

// OAuthConfig holds OAuth identity provider configuration.
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	// RedirectURL is the callback URL registered with the provider.
	// Defaults to {PublicURL}/api/v1/auth/callback.
	RedirectURL string
}

// StorageConfig holds object storage (S3-compatible) configuration.
type StorageConfig struct {
	Endpoint  string // e.g. s3.amazonaws.com or localhost:9000
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
	// PresignExpiry is the lifetime of presigned GET URLs (default: 1h).
	PresignExpiry time.Duration
}

// AudibleConfig holds Audible catalog API configuration.
type AudibleConfig struct {
	// DefaultRegion is the default Audible marketplace (default: us).
	// Valid values: us, uk, de, fr, au, ca, jp, it, in, es.
	DefaultRegion string
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := flag.String("data-path", "", "Base path for data storage")
	serverName := flag.String("server-name", "", "Name for the server")
	publicURL := flag.String("public-url", "", "Public base URL")
	serverPort := flag.String("port", "", "Server port (default: 8080)")
	readTimeout := flag.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := flag.String("write-timeout", "", "HTTP write timeout (default: 30s)")
	idleTimeout := flag.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	sessionDuration := flag.String("session-duration", "", "Session token lifetime (e.g., 720h)")
	envFile := flag.String("env-file", ".env", "Path to .env file")

	flag.Parse()

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Name:      getConfigValue(*serverName, "SERVER_NAME", "Shelfshare"),
			PublicURL: getConfigValue(*publicURL, "PUBLIC_URL", "http://localhost:8080"),
			Port:      getConfigValue(*serverPort, "SERVER_PORT", "8080"),
		},
		Data: DataConfig{
			BasePath: getConfigValue(*dataPath, "DATA_PATH", ""),
		},
		OAuth: OAuthConfig{
			ClientID:     getConfigValue("", "OAUTH_CLIENT_ID", ""),
			ClientSecret: getConfigValue("", "OAUTH_CLIENT_SECRET", ""),
			RedirectURL:  getConfigValue("", "OAUTH_REDIRECT_URL", ""),
		},
		Storage: StorageConfig{
			Endpoint:  getConfigValue("", "S3_ENDPOINT", "localhost:9000"),
			Region:    getConfigValue("", "S3_REGION", "us-east-1"),
			Bucket:    getConfigValue("", "S3_BUCKET", "shelfshare-images"),
			AccessKey: getConfigValue("", "S3_ACCESS_KEY", ""),
			SecretKey: getConfigValue("", "S3_SECRET_KEY", ""),
			UseSSL:    getBoolConfigValue("", "S3_USE_SSL", false),
		},
		Audible: AudibleConfig{
			DefaultRegion: getConfigValue("", "AUDIBLE_DEFAULT_REGION", "us"),
		},
	}

	// Parse durations.
	var err error
	cfg.Auth.SessionDuration, err = parseDurationValue(*sessionDuration, "SESSION_DURATION", "720h")
	if err != nil {
		return nil, err
	}
	cfg.Auth.SyncTokenDuration, err = parseDurationValue("", "SYNC_TOKEN_DURATION", "15m")
	if err != nil {
		return nil, err
	}
	cfg.Server.ReadTimeout, err = parseDurationValue(*readTimeout, "SERVER_READ_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}
	cfg.Server.WriteTimeout, err = parseDurationValue(*writeTimeout, "SERVER_WRITE_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	cfg.Server.IdleTimeout, err = parseDurationValue(*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s")
	if err != nil {
		return nil, err
	}
	cfg.Storage.PresignExpiry, err = parseDurationValue("", "S3_PRESIGN_EXPIRY", "1h")
	if err != nil {
		return nil, err
	}

	// Default OAuth redirect to the server's own callback route.
	if cfg.OAuth.RedirectURL == "" {
		cfg.OAuth.RedirectURL = strings.TrimSuffix(cfg.Server.PublicURL, "/") + "/api/v1/auth/callback"
	}

	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Data.BasePath == "" {
		return errors.New("data base path cannot be empty after expansion")
	}

	validRegions := map[string]bool{
		"us": true, "uk": true, "de": true, "fr": true, "au": true,
		"ca": true, "jp": true, "it": true, "in": true, "es": true,
	}
	if !validRegions[c.Audible.DefaultRegion] {
		return fmt.Errorf("invalid audible region: %s", c.Audible.DefaultRegion)
	}

	// OAuth credentials are required outside development so sign-in works.
	if c.App.Environment != "development" {
		if c.OAuth.ClientID == "" || c.OAuth.ClientSecret == "" {
			return errors.New("OAUTH_CLIENT_ID and OAUTH_CLIENT_SECRET are required")
		}
		if c.Storage.AccessKey == "" || c.Storage.SecretKey == "" {
			return errors.New("S3_ACCESS_KEY and S3_SECRET_KEY are required")
		}
	}

	return nil
}

// expandDataPath expands ~ and makes the path absolute.
// Defaults to ~/Shelfshare/data when unset.
func (c *Config) expandDataPath() error {
	path := c.Data.BasePath
	if path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		c.Data.BasePath = filepath.Join(homeDir, "Shelfshare", "data")
		return nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	c.Data.BasePath = filepath.Clean(path)
	return nil
}

// parseDurationValue resolves a duration from flag, env var, or default.
func parseDurationValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	str := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(str)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", envKey, str, err)
	}
	return d, nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		value = strings.Trim(value, `"'`)

		// Real env vars take precedence over .env file entries.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
