package llmschema

import (
	"fmt"

	"github.com/harun/rentdesk/pkg/schema"
)

// Render produces the JSON Schema document for a translated node. Recursive
// references become entries under "definitions" addressed with "$ref".
func Render(n *schema.Node) map[string]any {
	r := &renderer{
		names: make(map[*schema.Node]string),
		defs:  make(map[string]any),
	}
	out := r.render(n)
	if len(r.defs) > 0 {
		out["definitions"] = r.defs
	}
	return out
}

type renderer struct {
	names map[*schema.Node]string
	defs  map[string]any
}

func (r *renderer) render(n *schema.Node) map[string]any {
	if n == nil {
		return map[string]any{}
	}
	out := r.renderKind(n)
	if n.Description != "" {
		out["description"] = n.Description
	}
	return out
}

func (r *renderer) renderKind(n *schema.Node) map[string]any {
	switch n.Kind {
	case schema.KindString:
		out := map[string]any{"type": "string"}
		for _, check := range n.Checks {
			switch check.Kind {
			case schema.CheckMinLength:
				out["minLength"] = int(check.Value)
			case schema.CheckMaxLength:
				out["maxLength"] = int(check.Value)
			case schema.CheckPattern:
				if check.Pattern != nil {
					out["pattern"] = check.Pattern.String()
				}
			case schema.CheckEmail:
				out["format"] = "email"
			case schema.CheckUUID:
				out["format"] = "uuid"
			}
		}
		return out

	case schema.KindNumber:
		out := map[string]any{"type": "number"}
		for _, check := range n.Checks {
			switch check.Kind {
			case schema.CheckInt:
				out["type"] = "integer"
			case schema.CheckMin:
				out["minimum"] = check.Value
			case schema.CheckMax:
				out["maximum"] = check.Value
			}
		}
		return out

	case schema.KindBoolean:
		return map[string]any{"type": "boolean"}

	case schema.KindNull:
		return map[string]any{"type": "null"}

	case schema.KindDate:
		return map[string]any{"type": "string", "format": "date-time"}

	case schema.KindAny, schema.KindUnknown:
		return map[string]any{}

	case schema.KindNever:
		return map[string]any{"not": map[string]any{}}

	case schema.KindLiteral:
		out := map[string]any{"enum": append([]any(nil), n.Values...)}
		if len(n.Values) == 1 {
			if t := jsonType(n.Values[0]); t != "" {
				out["type"] = t
			}
		}
		return out

	case schema.KindEnum:
		return map[string]any{"type": "string", "enum": append([]any(nil), n.Values...)}

	case schema.KindObject:
		return r.renderObject(n)

	case schema.KindArray:
		out := map[string]any{"type": "array", "items": r.render(n.Elem)}
		for _, check := range n.Checks {
			switch check.Kind {
			case schema.CheckMinLength:
				out["minItems"] = int(check.Value)
			case schema.CheckMaxLength:
				out["maxItems"] = int(check.Value)
			}
		}
		return out

	case schema.KindTuple:
		items := make([]any, len(n.Items))
		for i, item := range n.Items {
			items[i] = r.render(item)
		}
		out := map[string]any{
			"type":     "array",
			"items":    items,
			"minItems": len(n.Items),
		}
		if n.Rest != nil {
			out["additionalItems"] = r.render(n.Rest)
		} else {
			out["additionalItems"] = false
			out["maxItems"] = len(n.Items)
		}
		return out

	case schema.KindUnion:
		options := make([]any, len(n.Options))
		for i, option := range n.Options {
			options[i] = r.render(option)
		}
		return map[string]any{"anyOf": options}

	case schema.KindIntersection:
		return map[string]any{"allOf": []any{r.render(n.Left), r.render(n.Right)}}

	case schema.KindRecord:
		out := map[string]any{"type": "object", "additionalProperties": r.render(n.Value)}
		if n.Key != nil && (n.Key.Kind != schema.KindString || len(n.Key.Checks) > 0) {
			out["propertyNames"] = r.render(n.Key)
		}
		return out

	case schema.KindNullable:
		inner := r.render(n.Inner)
		if options, ok := inner["anyOf"].([]any); ok && len(inner) == 1 {
			return map[string]any{"anyOf": append(options, map[string]any{"type": "null"})}
		}
		return map[string]any{"anyOf": []any{inner, map[string]any{"type": "null"}}}

	case schema.KindOptional, schema.KindDefault, schema.KindReadonly, schema.KindCatch,
		schema.KindTransform, schema.KindPipe:
		return r.render(n.Inner)

	case schema.KindLazy:
		return r.renderLazy(n)

	case schema.KindJSON:
		return copyDocument(n.Document)
	}

	return map[string]any{}
}

func (r *renderer) renderObject(n *schema.Node) map[string]any {
	properties := make(map[string]any, len(n.Fields))
	required := make([]string, 0, len(n.Fields))
	for _, f := range n.Fields {
		properties[f.Name] = r.render(f.Schema)
		if isRequired(f.Schema) {
			required = append(required, f.Name)
		}
	}

	out := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		out["required"] = required
	}

	switch {
	case n.Catchall != nil:
		out["additionalProperties"] = r.render(n.Catchall)
	case n.UnknownKeys == schema.UnknownKeysStrict:
		out["additionalProperties"] = false
	case n.UnknownKeys == schema.UnknownKeysPassthrough:
		out["additionalProperties"] = true
	}
	return out
}

func (r *renderer) renderLazy(n *schema.Node) map[string]any {
	name, ok := r.names[n]
	if !ok {
		name = fmt.Sprintf("ref%d", len(r.names)+1)
		r.names[n] = name
		r.defs[name] = r.render(n.Resolve())
	}
	return map[string]any{"$ref": "#/definitions/" + name}
}

func isRequired(n *schema.Node) bool {
	for n != nil {
		switch n.Kind {
		case schema.KindOptional, schema.KindDefault:
			return false
		case schema.KindNullable, schema.KindReadonly, schema.KindCatch:
			n = n.Inner
		default:
			return true
		}
	}
	return true
}

func jsonType(v any) string {
	switch v.(type) {
	case string:
		return "string"
	case bool:
		return "boolean"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return "integer"
	case float32, float64:
		return "number"
	case nil:
		return "null"
	}
	return ""
}

func copyDocument(doc map[string]any) map[string]any {
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return copyDocument(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = copyValue(item)
		}
		return out
	}
	return v
}
