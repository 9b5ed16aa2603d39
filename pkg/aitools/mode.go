package aitools

import (
	"os"
	"strings"
)

// Mode bounds which tools may execute, regardless of role.
type Mode int

const (
	// ModeNone disables every tool.
	ModeNone Mode = iota
	// ModeReadOnly allows read-only tools only.
	ModeReadOnly
	// ModeFull allows every tool the caller's role permits.
	ModeFull
)

// DefaultModeEnv is the environment variable read by EnvModeProvider.
const DefaultModeEnv = "AI_TOOLS_MODE"

// String implements fmt.Stringer.
func (m Mode) String() string {
	switch m {
	case ModeReadOnly:
		return "READONLY"
	case ModeFull:
		return "FULL"
	default:
		return "NONE"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler with ParseMode
// semantics: unrecognized text decodes to ModeNone.
func (m *Mode) UnmarshalText(text []byte) error {
	*m = ParseMode(string(text))
	return nil
}

// ParseMode maps a configuration value to a Mode. Unset or unrecognized
// values yield ModeNone.
func ParseMode(s string) Mode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "full":
		return ModeFull
	case "readonly", "read-only", "read_only":
		return ModeReadOnly
	default:
		return ModeNone
	}
}

// Allows reports whether a tool with the given mutability may run in mode m.
func (m Mode) Allows(mutability Mutability) bool {
	switch m {
	case ModeFull:
		return true
	case ModeReadOnly:
		return mutability == ReadOnly
	default:
		return false
	}
}

// ModeProvider supplies the current mode. It is consulted on every call so
// configuration changes apply without a restart.
type ModeProvider interface {
	CurrentMode() Mode
}

// StaticMode is a ModeProvider that always returns the same mode.
type StaticMode Mode

// CurrentMode implements ModeProvider.
func (s StaticMode) CurrentMode() Mode { return Mode(s) }

// ModeFunc adapts a function to ModeProvider.
type ModeFunc func() Mode

// CurrentMode implements ModeProvider.
func (f ModeFunc) CurrentMode() Mode { return f() }

// EnvModeProvider reads the mode from an environment variable on every call.
type EnvModeProvider struct {
	Key string
}

// CurrentMode implements ModeProvider.
func (p EnvModeProvider) CurrentMode() Mode {
	key := p.Key
	if key == "" {
		key = DefaultModeEnv
	}
	return ParseMode(os.Getenv(key))
}
