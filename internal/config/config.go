package config

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/harun/rentdesk/pkg/aitools"
)

// Config represents the rentdesk configuration
type Config struct {
	// AI tool gateway
	AI AIConfig `json:"ai" mapstructure:"ai"`

	// HTTP and WebSocket surface
	HTTP HTTPConfig `json:"http" mapstructure:"http"`

	// Property store
	Database DatabaseConfig `json:"database" mapstructure:"database"`

	// Logging
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`

	// Audit log
	Audit AuditConfig `json:"audit" mapstructure:"audit"`

	// Demo company data
	Company CompanyConfig `json:"company" mapstructure:"company"`

	// Data directory
	DataDir string `json:"data_dir" mapstructure:"data_dir"`
}

// AIConfig holds the tool gateway settings
type AIConfig struct {
	// ToolsMode is NONE, READONLY or FULL. Read live on every tool call.
	ToolsMode string `json:"tools_mode" mapstructure:"tools_mode"`
	MaxTools  int    `json:"max_tools" mapstructure:"max_tools"`
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	Host         string `json:"host" mapstructure:"host"`
	Port         int    `json:"port" mapstructure:"port"`
	SharedSecret string `json:"shared_secret" mapstructure:"shared_secret"`
	// Per WebSocket connection limits
	RequestsPerMinute int `json:"requests_per_minute" mapstructure:"requests_per_minute"`
	MaxConcurrent     int `json:"max_concurrent" mapstructure:"max_concurrent"`
	ShutdownTimeout   int `json:"shutdown_timeout" mapstructure:"shutdown_timeout"` // seconds
}

// DatabaseConfig holds the sqlite store location
type DatabaseConfig struct {
	Path string `json:"path" mapstructure:"path"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level     string `json:"level" mapstructure:"level"`
	File      string `json:"file" mapstructure:"file"`
	Pretty    bool   `json:"pretty" mapstructure:"pretty"`
	MaxSize   int    `json:"max_size" mapstructure:"max_size"` // MB
	MaxAge    int    `json:"max_age" mapstructure:"max_age"`   // days
	Compress  bool   `json:"compress" mapstructure:"compress"`
	Redaction bool   `json:"redaction" mapstructure:"redaction"`
}

// AuditConfig holds audit log configuration
type AuditConfig struct {
	File string `json:"file" mapstructure:"file"`
}

// CompanyConfig selects the company the demo data is seeded for
type CompanyConfig struct {
	ID   string `json:"id" mapstructure:"id"`
	Seed bool   `json:"seed" mapstructure:"seed"`
}

// DefaultConfig returns a config with default values
func DefaultConfig() *Config {
	return &Config{
		AI: AIConfig{
			ToolsMode: "NONE",
			MaxTools:  aitools.DefaultMaxTools,
		},
		HTTP: HTTPConfig{
			Host:              "127.0.0.1",
			Port:              8080,
			RequestsPerMinute: 60,
			MaxConcurrent:     10,
			ShutdownTimeout:   30,
		},
		Logging: LoggingConfig{
			Level:     "info",
			MaxSize:   100,
			MaxAge:    7,
			Compress:  true,
			Redaction: true,
		},
		Company: CompanyConfig{
			ID:   "cmp_demo",
			Seed: true,
		},
	}
}

// Mode returns the configured tool mode.
func (c *Config) Mode() aitools.Mode {
	return aitools.ParseMode(c.AI.ToolsMode)
}

// String returns a JSON representation of the config with the shared
// secret masked.
func (c *Config) String() string {
	masked := *c
	if masked.HTTP.SharedSecret != "" {
		masked.HTTP.SharedSecret = "[REDACTED]"
	}
	data, _ := json.MarshalIndent(masked, "", "  ")
	return string(data)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if errs := NewValidator().ValidateConfig(c); len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, err := range errs {
			msgs[i] = err.Error()
		}
		return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
	}
	return nil
}
