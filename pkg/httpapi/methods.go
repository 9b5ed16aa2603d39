package httpapi

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/harun/rentdesk/pkg/aitools"
)

// registerBuiltinMethods registers the tool RPC methods
func (s *Server) registerBuiltinMethods() {
	_ = s.rpc.RegisterMethod("tools.list", s.handleToolsList)
	_ = s.rpc.RegisterMethod("tools.manifest", s.handleToolsManifest)
	_ = s.rpc.RegisterMethod("tools.execute", s.handleToolsExecute)
}

type manifestParams struct {
	Hint     string `json:"hint"`
	Provider string `json:"provider"`
}

// executeParams carries the tool name and its arguments. Arguments may be
// a JSON object or, as LLM tool calls deliver them, a JSON-encoded string.
type executeParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

func decodeParams(params json.RawMessage, target any) error {
	if len(params) == 0 || string(params) == "null" {
		return nil
	}
	if err := json.Unmarshal(params, target); err != nil {
		return &RPCError{Code: InvalidParams, Message: "invalid params", Data: err.Error()}
	}
	return nil
}

// handleToolsList handles tools.list RPC method
func (s *Server) handleToolsList(_ context.Context, _ aitools.ExecutionContext, _ json.RawMessage) (any, error) {
	return s.listTools(), nil
}

// handleToolsManifest handles tools.manifest RPC method
func (s *Server) handleToolsManifest(ctx context.Context, ec aitools.ExecutionContext, params json.RawMessage) (any, error) {
	var p manifestParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	return s.manifest(ctx, ec, p.Hint, p.Provider)
}

// handleToolsExecute handles tools.execute RPC method
func (s *Server) handleToolsExecute(ctx context.Context, ec aitools.ExecutionContext, params json.RawMessage) (any, error) {
	var p executeParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if strings.TrimSpace(p.Name) == "" {
		return nil, &RPCError{Code: InvalidParams, Message: "name parameter is required"}
	}

	var args any
	trimmed := strings.TrimSpace(string(p.Arguments))
	switch {
	case trimmed == "" || trimmed == "null":
	case strings.HasPrefix(trimmed, `"`):
		var encoded string
		if err := json.Unmarshal(p.Arguments, &encoded); err != nil {
			return nil, &RPCError{Code: InvalidParams, Message: "invalid arguments", Data: err.Error()}
		}
		decoded, err := aitools.DecodeArguments(encoded)
		if err != nil {
			return nil, &RPCError{Code: InvalidParams, Message: "invalid arguments", Data: err.Error()}
		}
		args = decoded
	default:
		args = p.Arguments
	}

	result, err := s.execute(ctx, p.Name, args, ec)
	if err != nil {
		return nil, err
	}
	return ExecuteResponse{Tool: p.Name, Result: result}, nil
}
