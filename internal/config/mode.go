package config

import (
	"github.com/harun/rentdesk/pkg/aitools"
)

// ModeProvider reads ai.tools_mode from the loader on every call, so a
// changed environment or an edited config file applies to the next tool
// call without a restart.
type ModeProvider struct {
	loader *Loader
}

// NewModeProvider returns a ModeProvider over a loaded Loader.
func NewModeProvider(loader *Loader) *ModeProvider {
	return &ModeProvider{loader: loader}
}

// CurrentMode implements aitools.ModeProvider. Unknown values fail closed.
func (p *ModeProvider) CurrentMode() aitools.Mode {
	if p == nil || p.loader == nil {
		return aitools.ModeNone
	}
	return aitools.ParseMode(p.loader.GetString("ai.tools_mode"))
}

var _ aitools.ModeProvider = (*ModeProvider)(nil)
