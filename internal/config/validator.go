package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Validator validates configuration values
type Validator struct{}

// NewValidator creates a new validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateToolsMode validates the AI tools mode. Empty means NONE.
func (v *Validator) ValidateToolsMode(mode string) error {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "none", "readonly", "read-only", "read_only", "full":
		return nil
	}
	return fmt.Errorf("invalid ai.tools_mode: %s (must be one of: NONE, READONLY, FULL)", mode)
}

// ValidateMaxTools validates the manifest cap
func (v *Validator) ValidateMaxTools(n int) error {
	if n < 0 {
		return fmt.Errorf("ai.max_tools must be >= 0, got %d", n)
	}
	return nil
}

// ValidatePort validates a TCP port. Zero picks a free port.
func (v *Validator) ValidatePort(port int) error {
	if port < 0 || port > 65535 {
		return fmt.Errorf("http.port must be between 0 and 65535, got %d", port)
	}
	return nil
}

// ValidateLogLevel validates log level
func (v *Validator) ValidateLogLevel(level string) error {
	validLevels := []string{"debug", "info", "warn", "error"}
	for _, valid := range validLevels {
		if level == valid {
			return nil
		}
	}
	return fmt.Errorf("invalid log level: %s (must be one of: %s)", level, strings.Join(validLevels, ", "))
}

// ValidateDatabasePath validates the sqlite file path
func (v *Validator) ValidateDatabasePath(path string) error {
	if path == "" {
		return fmt.Errorf("database.path cannot be empty")
	}
	if strings.HasSuffix(path, string(filepath.Separator)) {
		return fmt.Errorf("database.path must be a file, got directory %s", path)
	}
	return nil
}

// ValidateConfig performs comprehensive validation
func (v *Validator) ValidateConfig(cfg *Config) []error {
	var errors []error

	if err := v.ValidateToolsMode(cfg.AI.ToolsMode); err != nil {
		errors = append(errors, err)
	}
	if err := v.ValidateMaxTools(cfg.AI.MaxTools); err != nil {
		errors = append(errors, err)
	}

	if err := v.ValidatePort(cfg.HTTP.Port); err != nil {
		errors = append(errors, err)
	}
	if cfg.HTTP.RequestsPerMinute < 0 {
		errors = append(errors, fmt.Errorf("http.requests_per_minute must be >= 0"))
	}
	if cfg.HTTP.MaxConcurrent < 0 {
		errors = append(errors, fmt.Errorf("http.max_concurrent must be >= 0"))
	}
	if cfg.HTTP.ShutdownTimeout < 0 {
		errors = append(errors, fmt.Errorf("http.shutdown_timeout must be >= 0"))
	}

	if err := v.ValidateDatabasePath(cfg.Database.Path); err != nil {
		errors = append(errors, err)
	}

	if cfg.Company.Seed && strings.TrimSpace(cfg.Company.ID) == "" {
		errors = append(errors, fmt.Errorf("company.id is required when company.seed is enabled"))
	}

	if err := v.ValidateLogLevel(cfg.Logging.Level); err != nil {
		errors = append(errors, err)
	}

	return errors
}
