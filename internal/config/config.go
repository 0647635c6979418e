// Package config provides catalog configuration with support for environment variables, command-line flags, and .env files.
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

	"github.com/untdf/catalog/internal/domain"
)

// Config holds the application configuration.
type Config struct {
	App     AppConfig
	Logger  LoggerConfig
	Storage StorageConfig
	Catalog CatalogConfig
	Fetch   FetchConfig
	Admin   AdminConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// StorageConfig holds on-disk locations.
type StorageConfig struct {
	DataPath      string // Base directory (default: ~/catalog)
	UploadsPrefix string // Public prefix for stored asset paths (default: /uploads)
}

// CatalogConfig holds entity store behavior.
type CatalogConfig struct {
	DeletePolicy domain.DeletePolicy // What happens to dependents on category/tag delete (default: orphan)
	SeedFile     string              // Default seed document (default: seed.yml)
}

// FetchConfig holds asset fetcher settings.
type FetchConfig struct {
	Timeout time.Duration // Per-download bound (default: 30s)
	Rate    float64       // Requests per second per host (default: 5)
	Burst   int           // Burst per host (default: 5)
}

// AdminConfig holds the privileged token. Empty disables global wipes.
type AdminConfig struct {
	Token string
}

// DatabasePath returns the SQLite file location.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Storage.DataPath, "catalog.db")
}

// UploadsPath returns the asset directory.
func (c *Config) UploadsPath() string {
	return filepath.Join(c.Storage.DataPath, "uploads")
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig(fs *flag.FlagSet, args []string) (*Config, error) {
	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := fs.String("data-path", "", "Base path for the database and uploads")
	uploadsPrefix := fs.String("uploads-prefix", "", "Public prefix for stored asset paths (default: /uploads)")
	deletePolicy := fs.String("delete-policy", "", "Category/tag delete policy: orphan, restrict, cascade")
	seedFile := fs.String("seed-file", "", "Seed document path (default: seed.yml)")
	fetchTimeout := fs.String("fetch-timeout", "", "Asset download timeout (default: 30s)")
	fetchRate := fs.String("fetch-rate", "", "Asset downloads per second per host (default: 5)")
	fetchBurst := fs.String("fetch-burst", "", "Asset download burst per host (default: 5)")
	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Storage: StorageConfig{
			DataPath:      getConfigValue(*dataPath, "DATA_PATH", ""),
			UploadsPrefix: getConfigValue(*uploadsPrefix, "UPLOADS_URL_PREFIX", "/uploads"),
		},
		Catalog: CatalogConfig{
			DeletePolicy: domain.DeletePolicy(strings.ToLower(getConfigValue(*deletePolicy, "DELETE_POLICY", string(domain.PolicyOrphan)))),
			SeedFile:     getConfigValue(*seedFile, "SEED_FILE", "seed.yml"),
		},
		Fetch: FetchConfig{
			Rate:  getFloatConfigValue(*fetchRate, "FETCH_RATE", 5),
			Burst: getIntConfigValue(*fetchBurst, "FETCH_BURST", 5),
		},
		Admin: AdminConfig{
			Token: getConfigValue("", "ADMIN_TOKEN", ""),
		},
	}

	timeoutStr := getConfigValue(*fetchTimeout, "FETCH_TIMEOUT", "30s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid fetch timeout %q: %w", timeoutStr, err)
	}
	cfg.Fetch.Timeout = timeout

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
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %q (must be development, staging, or production)", c.App.Environment)
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

	if c.Storage.DataPath == "" {
		return errors.New("data path cannot be empty after expansion")
	}

	if !strings.HasPrefix(c.Storage.UploadsPrefix, "/") {
		return fmt.Errorf("uploads prefix must start with /: %q", c.Storage.UploadsPrefix)
	}

	if !c.Catalog.DeletePolicy.Valid() {
		return fmt.Errorf("invalid delete policy: %q (must be orphan, restrict, or cascade)", c.Catalog.DeletePolicy)
	}

	if c.Fetch.Timeout <= 0 {
		return fmt.Errorf("fetch timeout must be positive, got %s", c.Fetch.Timeout)
	}
	if c.Fetch.Rate <= 0 {
		return fmt.Errorf("fetch rate must be positive, got %v", c.Fetch.Rate)
	}
	if c.Fetch.Burst < 1 {
		return fmt.Errorf("fetch burst must be at least 1, got %d", c.Fetch.Burst)
	}

	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty, uses defaultPath.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

func (c *Config) expandDataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	expanded, err := expandPath(c.Storage.DataPath, filepath.Join(homeDir, "catalog"))
	if err != nil {
		return err
	}
	c.Storage.DataPath = expanded
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envKey != "" {
		if envValue := os.Getenv(envKey); envValue != "" {
			return envValue
		}
	}
	return defaultValue
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

// getFloatConfigValue returns a float64 from flag, env var, or default.
func getFloatConfigValue(flagValue, envKey string, defaultValue float64) float64 {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result float64
	if _, err := fmt.Sscanf(strValue, "%g", &result); err != nil {
		return defaultValue
	}
	return result
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
		value := strings.Trim(strings.TrimSpace(parts[1]), `"'`)

		// Env vars take precedence over the .env file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
