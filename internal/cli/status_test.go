package cli

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harun/rentdesk/internal/config"
)

func TestStatusCommand_Stopped(t *testing.T) {
	out, err := runCLI(t, "", "--config", testConfig(t, "none"), "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Status: stopped")
}

func TestStopCommand_NotRunning(t *testing.T) {
	out, err := runCLI(t, "", "--config", testConfig(t, "none"), "stop")
	require.NoError(t, err)
	assert.Contains(t, out, "not running")
}

func TestPIDFile(t *testing.T) {
	cfg := &config.Config{DataDir: t.TempDir()}
	pidFile := getPIDFilePath(cfg)
	assert.Equal(t, filepath.Join(cfg.DataDir, "rentdesk.pid"), pidFile)

	assert.False(t, isRunning(pidFile))

	require.NoError(t, writePIDFile(pidFile))
	pid, err := readPID(pidFile)
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)
	assert.True(t, isRunning(pidFile))

	require.NoError(t, os.WriteFile(pidFile, []byte("garbage"), 0644))
	assert.False(t, isRunning(pidFile))
}

func TestFetchHealth(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","mode":"READONLY"}`))
	}))
	defer ts.Close()

	health, err := fetchHealth(ts.URL + "/healthz")
	require.NoError(t, err)
	assert.Equal(t, "READONLY", health["mode"])

	_, err = fetchHealth("http://127.0.0.1:1/healthz")
	assert.Error(t, err)
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		expected string
	}{
		{"seconds only", 45 * time.Second, "45s"},
		{"minutes and seconds", 2*time.Minute + 30*time.Second, "2m30s"},
		{"hours minutes seconds", 3*time.Hour + 15*time.Minute + 20*time.Second, "3h15m20s"},
		{"zero", 0, "0s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatDuration(tt.duration))
		})
	}
}
