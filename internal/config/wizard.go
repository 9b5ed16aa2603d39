package config

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/harun/rentdesk/pkg/aitools"
)

// Wizard provides an interactive configuration wizard
type Wizard struct {
	reader *bufio.Reader
	out    io.Writer
}

// NewWizard creates a wizard reading answers from in and prompting on out.
func NewWizard(in io.Reader, out io.Writer) *Wizard {
	return &Wizard{
		reader: bufio.NewReader(in),
		out:    out,
	}
}

// Run runs the interactive configuration wizard. Every question has a
// default taken from base; an empty answer keeps it.
func (w *Wizard) Run(base *Config) (*Config, error) {
	if base == nil {
		base = DefaultConfig()
	}
	cfg := *base
	validator := NewValidator()

	fmt.Fprintln(w.out, "=== rentdesk Configuration Wizard ===")
	fmt.Fprintln(w.out)

	// Tools mode
	fmt.Fprintln(w.out, "AI tools mode:")
	fmt.Fprintln(w.out, "  NONE     - no tool may run (default)")
	fmt.Fprintln(w.out, "  READONLY - only read-only tools run")
	fmt.Fprintln(w.out, "  FULL     - every tool the caller's role allows")
	for {
		mode, err := w.ask("Mode", cfg.AI.ToolsMode)
		if err != nil {
			return nil, err
		}
		if err := validator.ValidateToolsMode(mode); err != nil {
			fmt.Fprintf(w.out, "Error: %v\n", err)
			continue
		}
		cfg.AI.ToolsMode = aitools.ParseMode(mode).String()
		break
	}

	fmt.Fprintln(w.out)

	// HTTP
	fmt.Fprintln(w.out, "HTTP server:")
	host, err := w.ask("Host", cfg.HTTP.Host)
	if err != nil {
		return nil, err
	}
	cfg.HTTP.Host = host

	for {
		raw, err := w.ask("Port", strconv.Itoa(cfg.HTTP.Port))
		if err != nil {
			return nil, err
		}
		port, convErr := strconv.Atoi(raw)
		if convErr == nil {
			convErr = validator.ValidatePort(port)
		}
		if convErr != nil {
			fmt.Fprintf(w.out, "Error: %v\n", convErr)
			continue
		}
		cfg.HTTP.Port = port
		break
	}

	secret, err := w.ask("Shared secret for identity headers (empty for none)", cfg.HTTP.SharedSecret)
	if err != nil {
		return nil, err
	}
	cfg.HTTP.SharedSecret = secret

	fmt.Fprintln(w.out)

	// Store
	fmt.Fprintln(w.out, "Property store:")
	dbPath, err := w.ask("SQLite file (empty for the data directory)", cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	cfg.Database.Path = dbPath

	company, err := w.ask("Demo company id", cfg.Company.ID)
	if err != nil {
		return nil, err
	}
	cfg.Company.ID = company

	fmt.Fprintln(w.out)

	// Log Level
	fmt.Fprintln(w.out, "Logging:")
	level, err := w.ask("Log level (debug/info/warn/error)", cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	if err := validator.ValidateLogLevel(level); err != nil {
		fmt.Fprintf(w.out, "Warning: %v, keeping %s\n", err, cfg.Logging.Level)
	} else {
		cfg.Logging.Level = level
	}

	fmt.Fprintln(w.out)
	fmt.Fprintln(w.out, "Configuration complete!")

	return &cfg, nil
}

// ask prompts for one value. EOF counts as an empty answer so piped input
// may stop early.
func (w *Wizard) ask(prompt, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(w.out, "%s [%s]: ", prompt, def)
	} else {
		fmt.Fprintf(w.out, "%s: ", prompt)
	}

	line, err := w.reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return def, nil
	}
	return line, nil
}
