package aitools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// ManifestEntry is one tool offered to the LLM, bound to the caller's
// execution context.
type ManifestEntry struct {
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description" yaml:"description"`
	Parameters  map[string]any `json:"parameters" yaml:"parameters"`

	executor *Executor
	ec       ExecutionContext
}

// Invoke runs the tool through the executor with the bound context. The
// raw arguments are validated against the tool's original schema, not the
// translated one in Parameters.
func (e ManifestEntry) Invoke(ctx context.Context, rawArgs any) (any, error) {
	if e.executor == nil {
		return nil, fmt.Errorf("manifest entry %s is not bound", e.Name)
	}
	return e.executor.Execute(ctx, e.Name, rawArgs, e.ec)
}

// Context returns the execution context the entry is bound to.
func (e ManifestEntry) Context() ExecutionContext {
	return e.ec
}

// Manifest is the per-request set of bindable tools.
type Manifest struct {
	Entries []ManifestEntry `json:"tools" yaml:"tools"`
	// Dropped counts catalog tools left out by the size cap.
	Dropped int `json:"dropped" yaml:"dropped"`
}

// Len returns the number of entries.
func (m *Manifest) Len() int {
	return len(m.Entries)
}

// Names lists entry names in manifest order.
func (m *Manifest) Names() []string {
	names := make([]string, len(m.Entries))
	for i, entry := range m.Entries {
		names[i] = entry.Name
	}
	return names
}

// Lookup finds an entry by tool name.
func (m *Manifest) Lookup(name string) (ManifestEntry, bool) {
	for _, entry := range m.Entries {
		if entry.Name == name {
			return entry, true
		}
	}
	return ManifestEntry{}, false
}

// Dispatch runs a tool call as emitted by an LLM: a tool name and its
// arguments as a JSON string. Malformed JSON is repaired when possible.
func (m *Manifest) Dispatch(ctx context.Context, name, arguments string) (any, error) {
	entry, ok := m.Lookup(name)
	if !ok {
		return nil, notFound(name)
	}

	args, err := DecodeArguments(arguments)
	if err != nil {
		return nil, invalidArguments(name, err)
	}
	return entry.Invoke(ctx, args)
}

// DecodeArguments parses LLM-produced argument JSON. Empty input is an
// empty object; input that fails to parse is run through jsonrepair first.
func DecodeArguments(arguments string) (any, error) {
	trimmed := strings.TrimSpace(arguments)
	if trimmed == "" {
		return map[string]any{}, nil
	}

	var args any
	if err := json.Unmarshal([]byte(trimmed), &args); err == nil {
		return args, nil
	}

	repaired, err := jsonrepair.JSONRepair(trimmed)
	if err != nil {
		return nil, fmt.Errorf("repair arguments: %w", err)
	}
	if err := json.Unmarshal([]byte(repaired), &args); err != nil {
		return nil, fmt.Errorf("decode arguments: %w", err)
	}
	return args, nil
}
