package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/harun/rentdesk/internal/config"
	"github.com/harun/rentdesk/internal/metrics"
	"github.com/harun/rentdesk/internal/tracing"
	"github.com/harun/rentdesk/pkg/httpapi"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the AI tool gateway",
	Long: `Run the AI tool gateway in the foreground.
The gateway serves /api/ai/tools over HTTP, JSON-RPC over /ws, /metrics and
/healthz. The tools mode is re-read on every call; edits to the config file
and the AI_TOOLS_MODE environment variable apply without a restart.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	loader, cfg, err := loadConfig()
	if err != nil {
		return err
	}

	pidFile := getPIDFilePath(cfg)
	if isRunning(pidFile) {
		return fmt.Errorf("gateway is already running (PID file: %s)", pidFile)
	}

	lg, err := newLogger(cfg, true)
	if err != nil {
		return err
	}
	defer lg.Close()
	log := lg.GetZerolog()

	if err := tracing.InitOpenTelemetry(tracing.Config{ServiceName: "rentdesk", ServiceVersion: version}); err != nil {
		log.Warn().Err(err).Msg("OpenTelemetry disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	modes := config.NewModeProvider(loader)
	gw, err := buildGateway(ctx, cfg, modes, log)
	if err != nil {
		return err
	}
	defer gw.Close()

	watcher, err := config.NewWatcher(config.WatcherConfig{Loader: loader, Logger: log})
	if err != nil {
		return err
	}
	if err := watcher.Start(); err != nil {
		log.Warn().Err(err).Msg("Config file changes will not be picked up")
	} else {
		defer watcher.Stop()
	}

	var auth httpapi.Authenticator
	if cfg.HTTP.SharedSecret != "" {
		auth = httpapi.HeaderAuthenticator{SharedSecret: cfg.HTTP.SharedSecret}
	}

	server, err := httpapi.NewServer(httpapi.Config{
		Host:              cfg.HTTP.Host,
		Port:              cfg.HTTP.Port,
		Registry:          gw.registry,
		Authenticator:     auth,
		Metrics:           metrics.NewMetrics(),
		Ping:              gw.store.Ping,
		RequestsPerMinute: cfg.HTTP.RequestsPerMinute,
		MaxConcurrent:     cfg.HTTP.MaxConcurrent,
		ShutdownTimeout:   time.Duration(cfg.HTTP.ShutdownTimeout) * time.Second,
		Logger:            log,
	})
	if err != nil {
		return err
	}
	if err := server.Start(); err != nil {
		return err
	}

	if err := writePIDFile(pidFile); err != nil {
		log.Warn().Err(err).Str("pid_file", pidFile).Msg("Failed to write PID file")
	}
	defer os.Remove(pidFile)

	log.Info().
		Str("addr", server.Addr()).
		Str("mode", modes.CurrentMode().String()).
		Int("tools", gw.catalog.Len()).
		Msg("rentdesk gateway ready")

	<-ctx.Done()
	log.Info().Msg("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownTimeout+5)*time.Second)
	defer cancel()

	if err := server.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Failed to stop HTTP server")
	}
	if err := tracing.ShutdownOpenTelemetry(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("Failed to flush traces")
	}
	return nil
}

func getPIDFilePath(cfg *config.Config) string {
	if cfg != nil && cfg.DataDir != "" {
		return filepath.Join(cfg.DataDir, "rentdesk.pid")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "rentdesk.pid")
	}
	return filepath.Join(home, ".rentdesk", "rentdesk.pid")
}

func writePIDFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0644)
}

func readPID(pidFile string) (int, error) {
	data, err := os.ReadFile(pidFile)
	if err != nil {
		return 0, fmt.Errorf("failed to read PID file: %w", err)
	}

	var pid int
	if _, err := fmt.Sscanf(string(data), "%d", &pid); err != nil {
		return 0, fmt.Errorf("invalid PID file: %w", err)
	}
	return pid, nil
}

func isRunning(pidFile string) bool {
	pid, err := readPID(pidFile)
	if err != nil {
		return false
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}

	// On Unix, FindProcess always succeeds, so we need to send signal 0
	return process.Signal(syscall.Signal(0)) == nil
}
