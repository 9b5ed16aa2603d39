package aitools

import (
	"bytes"
	"encoding/json"

	"github.com/harun/rentdesk/pkg/schema"
)

// NormalizeNulls returns a copy of v in which explicit nulls that node
// would reject are treated as absent values. Nulls at positions whose schema
// accepts null, such as a required Nullable field, are kept. Positions with
// no structural schema (JSON documents, Any, Unknown) fall back to
// StripNulls. The second result reports whether anything changed.
func NormalizeNulls(node *schema.Node, v any) (any, bool) {
	return normalizeNulls(node, v, map[*schema.Node]int{})
}

// maxLazyDepth bounds how often one lazy node is expanded along a path.
const maxLazyDepth = 32

func normalizeNulls(node *schema.Node, v any, lazy map[*schema.Node]int) (any, bool) {
	if node == nil {
		return StripNulls(v)
	}

	switch node.Kind {
	case schema.KindLazy:
		if lazy[node] >= maxLazyDepth {
			return v, false
		}
		lazy[node]++
		defer func() { lazy[node]-- }()
		return normalizeNulls(node.Resolve(), v, lazy)
	case schema.KindOptional, schema.KindNullable, schema.KindDefault,
		schema.KindReadonly, schema.KindCatch, schema.KindTransform, schema.KindPipe:
		return normalizeNulls(node.Inner, v, lazy)
	case schema.KindObject:
		m, ok := v.(map[string]any)
		if !ok {
			return v, false
		}
		declared := make(map[string]*schema.Node, len(node.Fields))
		for _, f := range node.Fields {
			declared[f.Name] = f.Schema
		}
		out := make(map[string]any, len(m))
		changed := false
		for key, val := range m {
			field, ok := declared[key]
			if !ok {
				field = node.Catchall
			}
			if field == nil {
				out[key] = val
				continue
			}
			if val == nil {
				if rejectsNull(field) {
					changed = true
					continue
				}
				out[key] = nil
				continue
			}
			normalized, sub := normalizeNulls(field, val, lazy)
			changed = changed || sub
			out[key] = normalized
		}
		return out, changed
	case schema.KindArray:
		return normalizeElements(v, func(int) *schema.Node { return node.Elem }, lazy)
	case schema.KindTuple:
		return normalizeElements(v, func(i int) *schema.Node {
			if i < len(node.Items) {
				return node.Items[i]
			}
			return node.Rest
		}, lazy)
	case schema.KindRecord:
		m, ok := v.(map[string]any)
		if !ok {
			return v, false
		}
		out := make(map[string]any, len(m))
		changed := false
		for key, val := range m {
			if val == nil {
				if rejectsNull(node.Value) {
					changed = true
					continue
				}
				out[key] = nil
				continue
			}
			normalized, sub := normalizeNulls(node.Value, val, lazy)
			changed = changed || sub
			out[key] = normalized
		}
		return out, changed
	case schema.KindIntersection:
		left, lchanged := normalizeNulls(node.Left, v, lazy)
		right, rchanged := normalizeNulls(node.Right, left, lazy)
		return right, lchanged || rchanged
	case schema.KindUnion:
		for _, option := range node.Options {
			normalized, changed := normalizeNulls(option, v, lazy)
			if option.Validate(normalized) == nil {
				return normalized, changed
			}
		}
		return StripNulls(v)
	case schema.KindJSON, schema.KindAny, schema.KindUnknown:
		return StripNulls(v)
	}
	return v, false
}

func normalizeElements(v any, elem func(int) *schema.Node, lazy map[*schema.Node]int) (any, bool) {
	items, ok := v.([]any)
	if !ok {
		return v, false
	}
	out := make([]any, len(items))
	changed := false
	for i, item := range items {
		node := elem(i)
		if item == nil {
			if node != nil && rejectsNull(node) {
				out[i] = schema.Undefined
				changed = true
				continue
			}
			out[i] = nil
			continue
		}
		normalized, sub := normalizeNulls(node, item, lazy)
		changed = changed || sub
		out[i] = normalized
	}
	return out, changed
}

func rejectsNull(node *schema.Node) bool {
	return node.Validate(nil) != nil
}

// StripNulls returns a copy of v in which every explicit null is treated as
// absent: nil object entries are removed and nil array elements become
// schema.Undefined. The second result reports whether anything changed.
func StripNulls(v any) (any, bool) {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		changed := false
		for key, val := range t {
			if val == nil {
				changed = true
				continue
			}
			normalized, sub := StripNulls(val)
			changed = changed || sub
			out[key] = normalized
		}
		return out, changed
	case []any:
		out := make([]any, len(t))
		changed := false
		for i, val := range t {
			if val == nil {
				out[i] = schema.Undefined
				changed = true
				continue
			}
			normalized, sub := StripNulls(val)
			changed = changed || sub
			out[i] = normalized
		}
		return out, changed
	}
	return v, false
}

// coerceArguments turns raw JSON payloads into generic values. A nil payload
// is an empty argument object.
func coerceArguments(raw any) (any, error) {
	switch t := raw.(type) {
	case nil:
		return map[string]any{}, nil
	case json.RawMessage:
		return decodeJSON(t)
	case []byte:
		return decodeJSON(t)
	}
	return raw, nil
}

func decodeJSON(data []byte) (any, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return map[string]any{}, nil
	}
	var out any
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return nil, err
	}
	return out, nil
}
