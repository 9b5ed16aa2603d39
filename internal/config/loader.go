package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. RENTDESK_HTTP_PORT.
const EnvPrefix = "RENTDESK"

// ModeEnv is the unprefixed environment variable that also sets ai.tools_mode.
const ModeEnv = "AI_TOOLS_MODE"

// Loader handles configuration loading. It keeps its viper instance so
// values that must stay live, such as the tools mode, can be re-read after
// Load.
type Loader struct {
	configPath string

	mu sync.RWMutex
	v  *viper.Viper
}

// NewLoader creates a new config loader
func NewLoader(configPath string) *Loader {
	return &Loader{
		configPath: configPath,
	}
}

// Load loads the configuration from file, environment and defaults. A
// missing config file is not an error.
func (l *Loader) Load() (*Config, error) {
	configPath := l.GetConfigPath()
	if configPath == "" {
		return nil, fmt.Errorf("failed to determine config path")
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("json")
	setDefaults(v, DefaultConfig())

	// Read environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("ai.tools_mode", ModeEnv, EnvPrefix+"_AI_TOOLS_MODE"); err != nil {
		return nil, fmt.Errorf("failed to bind %s: %w", ModeEnv, err)
	}

	if _, err := os.Stat(configPath); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}

	l.mu.Lock()
	l.v = v
	l.mu.Unlock()

	return l.unmarshal()
}

// Reload re-reads the config file into the live viper instance.
func (l *Loader) Reload() (*Config, error) {
	l.mu.Lock()
	if l.v == nil {
		l.mu.Unlock()
		return l.Load()
	}
	err := l.v.ReadInConfig()
	l.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return l.unmarshal()
}

func (l *Loader) unmarshal() (*Config, error) {
	cfg := DefaultConfig()

	l.mu.RLock()
	err := l.v.Unmarshal(cfg)
	l.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Set data directory if not specified
	if cfg.DataDir == "" {
		cfg.DataDir = filepath.Dir(l.GetConfigPath())
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = filepath.Join(cfg.DataDir, "rentdesk.db")
	}
	if cfg.Logging.File == "" {
		cfg.Logging.File = filepath.Join(cfg.DataDir, "rentdesk.log")
	}
	if cfg.Audit.File == "" {
		cfg.Audit.File = filepath.Join(cfg.DataDir, "audit.log")
	}

	return cfg, nil
}

// GetString returns the live value of key. It returns "" before Load.
func (l *Loader) GetString(key string) string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.v == nil {
		return ""
	}
	return l.v.GetString(key)
}

// Save saves the configuration to file
func (l *Loader) Save(cfg *Config) error {
	configPath := l.GetConfigPath()

	// Ensure directory exists
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("json")

	v.Set("ai", cfg.AI)
	v.Set("http", cfg.HTTP)
	v.Set("database", cfg.Database)
	v.Set("logging", cfg.Logging)
	v.Set("audit", cfg.Audit)
	v.Set("company", cfg.Company)
	v.Set("data_dir", cfg.DataDir)

	if err := v.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetConfigPath returns the config file path
func (l *Loader) GetConfigPath() string {
	if l.configPath != "" {
		return l.configPath
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".rentdesk", "rentdesk.json")
}

// setDefaults registers every key so environment overrides reach Unmarshal.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("ai.tools_mode", cfg.AI.ToolsMode)
	v.SetDefault("ai.max_tools", cfg.AI.MaxTools)

	v.SetDefault("http.host", cfg.HTTP.Host)
	v.SetDefault("http.port", cfg.HTTP.Port)
	v.SetDefault("http.shared_secret", cfg.HTTP.SharedSecret)
	v.SetDefault("http.requests_per_minute", cfg.HTTP.RequestsPerMinute)
	v.SetDefault("http.max_concurrent", cfg.HTTP.MaxConcurrent)
	v.SetDefault("http.shutdown_timeout", cfg.HTTP.ShutdownTimeout)

	v.SetDefault("database.path", cfg.Database.Path)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.pretty", cfg.Logging.Pretty)
	v.SetDefault("logging.max_size", cfg.Logging.MaxSize)
	v.SetDefault("logging.max_age", cfg.Logging.MaxAge)
	v.SetDefault("logging.compress", cfg.Logging.Compress)
	v.SetDefault("logging.redaction", cfg.Logging.Redaction)

	v.SetDefault("audit.file", cfg.Audit.File)

	v.SetDefault("company.id", cfg.Company.ID)
	v.SetDefault("company.seed", cfg.Company.Seed)

	v.SetDefault("data_dir", cfg.DataDir)
}

// Load is a convenience function that creates a loader and loads the config
func Load(configPath string) (*Config, error) {
	loader := NewLoader(configPath)
	return loader.Load()
}
