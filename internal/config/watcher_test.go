package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harun/rentdesk/pkg/aitools"
)

func TestNewWatcher_RequiresLoader(t *testing.T) {
	_, err := NewWatcher(WatcherConfig{})
	assert.Error(t, err)
}

func TestWatcher_ReloadsModeOnWrite(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "rentdesk.json")
	writeConfig(t, configPath, `{"ai": {"tools_mode": "readonly"}}`)

	loader := NewLoader(configPath)
	_, err := loader.Load()
	require.NoError(t, err)
	provider := NewModeProvider(loader)

	changes := make(chan *Config, 4)
	watcher, err := NewWatcher(WatcherConfig{
		Loader:             loader,
		StabilityThreshold: 20 * time.Millisecond,
		OnChange:           func(cfg *Config) { changes <- cfg },
		Logger:             zerolog.Nop(),
	})
	require.NoError(t, err)
	require.NoError(t, watcher.Start())
	defer watcher.Stop()

	writeConfig(t, configPath, `{"ai": {"tools_mode": "full"}}`)

	select {
	case cfg := <-changes:
		assert.Equal(t, aitools.ModeFull, cfg.Mode())
	case <-time.After(5 * time.Second):
		t.Fatal("config change not observed")
	}
	assert.Equal(t, aitools.ModeFull, provider.CurrentMode())
}

func TestWatcher_KeepsLastGoodConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "rentdesk.json")
	writeConfig(t, configPath, `{"ai": {"tools_mode": "readonly"}}`)

	loader := NewLoader(configPath)
	_, err := loader.Load()
	require.NoError(t, err)

	watcher, err := NewWatcher(WatcherConfig{Loader: loader, Logger: zerolog.Nop()})
	require.NoError(t, err)

	writeConfig(t, configPath, `{"ai": `)
	watcher.reload()

	assert.Equal(t, aitools.ModeReadOnly, NewModeProvider(loader).CurrentMode())
	require.NoError(t, watcher.Stop())
	require.NoError(t, watcher.Stop())
}
