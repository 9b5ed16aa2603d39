package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateToolsMode(t *testing.T) {
	v := NewValidator()

	for _, mode := range []string{"", "NONE", "readonly", "Read-Only", "read_only", "FULL", " full "} {
		assert.NoError(t, v.ValidateToolsMode(mode), mode)
	}
	for _, mode := range []string{"all", "write", "on"} {
		assert.Error(t, v.ValidateToolsMode(mode), mode)
	}
}

func TestValidatePort(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		port    int
		wantErr bool
	}{
		{0, false},
		{8080, false},
		{65535, false},
		{-1, true},
		{65536, true},
	}
	for _, tt := range tests {
		err := v.ValidatePort(tt.port)
		if tt.wantErr {
			assert.Error(t, err, tt.port)
		} else {
			assert.NoError(t, err, tt.port)
		}
	}
}

func TestValidateLogLevel(t *testing.T) {
	v := NewValidator()

	for _, level := range []string{"debug", "info", "warn", "error"} {
		assert.NoError(t, v.ValidateLogLevel(level))
	}
	assert.Error(t, v.ValidateLogLevel("trace"))
	assert.Error(t, v.ValidateLogLevel(""))
}

func TestValidateDatabasePath(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.ValidateDatabasePath("/var/lib/rentdesk/rentdesk.db"))
	assert.Error(t, v.ValidateDatabasePath(""))
	assert.Error(t, v.ValidateDatabasePath("/var/lib/rentdesk/"))
}

func TestValidateConfig(t *testing.T) {
	v := NewValidator()

	cfg := DefaultConfig()
	cfg.Database.Path = "rentdesk.db"
	assert.Empty(t, v.ValidateConfig(cfg))

	cfg.AI.MaxTools = -1
	cfg.HTTP.MaxConcurrent = -2
	cfg.Company.ID = " "
	errs := v.ValidateConfig(cfg)
	assert.Len(t, errs, 3)
}
