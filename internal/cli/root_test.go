package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCLI executes the root command with fresh flag values and returns what
// it wrote to stdout.
func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	cfgFile, logLevel = "", ""
	toolsMode, toolsOutput, toolsHint, toolsProvider = "", "json", "", "raw"
	toolsArgs, toolsUser, toolsRole, toolsCompany = "{}", "", "manager", ""
	stopTimeout = 30

	cmd := GetRootCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

// testConfig writes a config file under a temp dir and returns its path.
func testConfig(t *testing.T, mode string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "rentdesk.json")
	body := `{
		"ai": {"tools_mode": "` + mode + `"},
		"database": {"path": "` + filepath.ToSlash(filepath.Join(dir, "rentdesk.db")) + `"},
		"audit": {"file": "` + filepath.ToSlash(filepath.Join(dir, "audit.log")) + `"},
		"logging": {"level": "error"},
		"company": {"id": "cmp_test", "seed": true}
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestRootCommand(t *testing.T) {
	t.Run("version flag", func(t *testing.T) {
		out, err := runCLI(t, "", "--version")
		require.NoError(t, err)

		assert.Contains(t, out, "rentdesk version")
		assert.Contains(t, out, GetVersion())
	})

	t.Run("global flags", func(t *testing.T) {
		cmd := GetRootCmd()

		configFlag := cmd.PersistentFlags().Lookup("config")
		require.NotNil(t, configFlag)
		assert.Equal(t, "", configFlag.DefValue)

		logLevelFlag := cmd.PersistentFlags().Lookup("log-level")
		require.NotNil(t, logLevelFlag)
	})

	t.Run("subcommands", func(t *testing.T) {
		names := map[string]bool{}
		for _, c := range GetRootCmd().Commands() {
			names[c.Name()] = true
		}
		for _, want := range []string{"serve", "status", "stop", "configure", "tools"} {
			assert.True(t, names[want], "%s command should exist", want)
		}
	})
}

func TestGetVersion(t *testing.T) {
	version := GetVersion()
	assert.NotEmpty(t, version)
	assert.True(t, strings.HasPrefix(version, "0."))
}

func TestLoadConfig_LogLevelOverride(t *testing.T) {
	cfgFile = testConfig(t, "readonly")
	logLevel = "debug"
	defer func() { cfgFile, logLevel = "", "" }()

	_, cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)

	logLevel = "loud"
	_, _, err = loadConfig()
	assert.Error(t, err)
}
