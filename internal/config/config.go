package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	secretKeyEnv = "SECRET_KEY"
	apiKeyEnv    = "GOOGLE_API_KEY"

	defaultConfigFile = "config.json"
)

var (
	ErrMissingSecretKey = errors.New(secretKeyEnv + " must be set")
	ErrMissingAPIKey    = errors.New(apiKeyEnv + " must be set")
)

// Config represents runtime configuration for the service.
type Config struct {
	BasicConfig BasicConfig               `json:"basic_config"`
	Databases   map[string]DatabaseConfig `json:"databases"`
	Redis       RedisConfig               `json:"redis"`
	Provider    ProviderConfig            `json:"provider"`

	// SecretKey signs session cookies. Only read from the environment.
	SecretKey string `json:"-"`
	// APIKey authenticates against the model provider. Only read from the environment.
	APIKey string `json:"-"`
}

type BasicConfig struct {
	ServerAddress       string `json:"server_address"`
	StaticDir           string `json:"static_dir"`
	LogLevel            string `json:"log_level"`
	SessionTTLMinutes   int    `json:"session_ttl_minutes"`
	ModelTimeoutSeconds int    `json:"model_timeout_seconds"`
}

type DatabaseConfig struct {
	DSN      string `json:"dsn"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	DBName   string `json:"db_name"`
	Params   string `json:"params"`
}

type RedisConfig struct {
	Enabled  bool   `json:"enabled"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

type ProviderConfig struct {
	Name    string `json:"name"`
	Model   string `json:"model"`
	BaseURL string `json:"base_url"`
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	return &Config{
		BasicConfig: BasicConfig{
			ServerAddress:       ":5000",
			LogLevel:            "info",
			SessionTTLMinutes:   24 * 60,
			ModelTimeoutSeconds: 60,
		},
		Databases: map[string]DatabaseConfig{
			"sqlite3": {DSN: "users.db"},
		},
		Provider: ProviderConfig{
			Name:  "gemini",
			Model: "gemini-1.5-flash",
		},
	}
}

// Load reads configuration from the provided path (defaults to config.json)
// and overlays the required secrets from the environment. A missing default
// config file is not an error; a missing explicit one is.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = defaultConfigFile
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}

	cfg := Default()
	file, err := os.Open(absPath)
	switch {
	case err == nil:
		defer file.Close()
		if err := json.NewDecoder(file).Decode(cfg); err != nil {
			return nil, fmt.Errorf("decode config: %w", err)
		}
		resolveSQLitePath(cfg, filepath.Dir(absPath))
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("open config %s: %w", absPath, err)
	}

	cfg.SecretKey = strings.TrimSpace(os.Getenv(secretKeyEnv))
	cfg.APIKey = strings.TrimSpace(os.Getenv(apiKeyEnv))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports missing settings the process cannot start without.
func (c *Config) Validate() error {
	if c.SecretKey == "" {
		return ErrMissingSecretKey
	}
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	if strings.TrimSpace(c.Provider.Name) == "" {
		return errors.New("provider name must be configured")
	}
	return nil
}

// sqlite paths in a config file are relative to that file.
func resolveSQLitePath(cfg *Config, baseDir string) {
	for _, name := range []string{"sqlite", "sqlite3"} {
		dbCfg, ok := cfg.Databases[name]
		if !ok || dbCfg.DSN == "" || filepath.IsAbs(dbCfg.DSN) {
			continue
		}
		if strings.HasPrefix(dbCfg.DSN, "file:") || strings.Contains(dbCfg.DSN, ":memory:") {
			continue
		}
		dbCfg.DSN = filepath.Join(baseDir, dbCfg.DSN)
		cfg.Databases[name] = dbCfg
	}
}
