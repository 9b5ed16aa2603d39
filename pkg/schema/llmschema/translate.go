// Package llmschema converts validation schemas into the restricted shape
// LLM function-calling APIs accept, and renders that shape as JSON Schema.
//
// Translation is lossy on purpose: refinements, transforms, defaults and
// catch values have no representation in the target format. The translated
// schema only guides argument generation; the original schema stays the
// authority when arguments are validated.
package llmschema

import (
	"sync"

	"github.com/harun/rentdesk/pkg/schema"
)

const dateDescription = "ISO 8601 date or date-time string"

// UnknownShape is the bounded stand-in for "any value": every JSON primitive,
// arrays and maps of primitives, or null.
func UnknownShape() *schema.Node {
	scalar := schema.Union(schema.String(), schema.Number(), schema.Boolean()).Nullable()
	return schema.Union(
		schema.String(),
		schema.Number(),
		schema.Boolean(),
		schema.Array(scalar),
		schema.Record(schema.String(), scalar),
	).Nullable()
}

// PassthroughObject is the permissive object schema used when a tool's
// parameters cannot be described faithfully.
func PassthroughObject() *schema.Node {
	return schema.Object().Passthrough()
}

// Translate converts n into a node built only from kinds an LLM schema can
// express. Lazy nodes become lazy wrappers whose getters run on first use, so
// recursive schemas are safe to translate. A pipeline is the exception: its
// sides are inspected for transforms, which resolves lazy getters inside it.
func Translate(n *schema.Node) *schema.Node {
	t := &translator{lazies: make(map[*schema.Node]*schema.Node)}
	return t.translate(n)
}

type translator struct {
	mu     sync.Mutex
	lazies map[*schema.Node]*schema.Node
}

func (t *translator) translate(n *schema.Node) *schema.Node {
	if n == nil {
		return UnknownShape()
	}
	return describe(t.translateKind(n), n.Description)
}

func (t *translator) translateKind(n *schema.Node) *schema.Node {
	switch n.Kind {
	case schema.KindString, schema.KindNumber, schema.KindBoolean, schema.KindNull,
		schema.KindLiteral, schema.KindEnum, schema.KindNever:
		return representable(n)

	case schema.KindDate:
		out := schema.String().NonEmpty()
		if n.Description == "" {
			out = out.Describe(dateDescription)
		}
		return out

	case schema.KindAny, schema.KindUnknown:
		return UnknownShape()

	case schema.KindOptional, schema.KindNullable, schema.KindDefault, schema.KindCatch:
		return nullable(t.translate(n.Inner))

	case schema.KindReadonly:
		return t.translate(n.Inner).Readonly()

	case schema.KindArray:
		out := representable(n)
		out.Elem = t.translate(n.Elem)
		return out

	case schema.KindTuple:
		items := make([]*schema.Node, len(n.Items))
		for i, item := range n.Items {
			items[i] = t.translate(item)
		}
		out := schema.Tuple(items...)
		if n.Rest != nil {
			out = out.WithRest(t.translate(n.Rest))
		}
		return out

	case schema.KindUnion:
		return t.translateUnion(n)

	case schema.KindIntersection:
		return schema.Intersection(t.translate(n.Left), t.translate(n.Right))

	case schema.KindRecord:
		key := schema.String()
		if n.Key != nil {
			key = t.translate(n.Key)
		}
		return schema.Record(key, t.translate(n.Value))

	case schema.KindLazy:
		return t.lazy(n)

	case schema.KindObject:
		return t.translateObject(n)

	case schema.KindTransform:
		return t.translate(n.Inner)

	case schema.KindPipe:
		return t.translatePipe(n)

	case schema.KindJSON:
		return n
	}

	return UnknownShape()
}

func (t *translator) translateUnion(n *schema.Node) *schema.Node {
	options := make([]*schema.Node, 0, len(n.Options))
	for _, option := range n.Options {
		translated := t.translate(option)
		if translated.Kind == schema.KindNever {
			continue
		}
		options = append(options, translated)
	}

	switch len(options) {
	case 0:
		return schema.Never()
	case 1:
		return options[0]
	}
	return schema.Union(options...)
}

func (t *translator) translateObject(n *schema.Node) *schema.Node {
	fields := make([]schema.Field, len(n.Fields))
	for i, f := range n.Fields {
		fields[i] = schema.Prop(f.Name, t.translate(f.Schema))
	}
	out := schema.Object(fields...)

	switch {
	case n.Catchall != nil && n.Catchall.Kind == schema.KindNever:
		out = out.Strict()
	case n.Catchall != nil:
		out = out.WithCatchall(t.translate(n.Catchall))
	case n.UnknownKeys == schema.UnknownKeysStrict:
		out = out.Strict()
	case n.UnknownKeys == schema.UnknownKeysPassthrough:
		out = out.Passthrough()
	}
	return out
}

// translatePipe keeps whichever side of the pipeline is free of transforms,
// preferring the input side. When both sides reshape data the pipeline is
// described as UnknownShape and the original schema does the real checking.
func (t *translator) translatePipe(n *schema.Node) *schema.Node {
	switch {
	case !n.Inner.HasTransform():
		return t.translate(n.Inner)
	case !n.Out.HasTransform():
		return t.translate(n.Out)
	}
	return UnknownShape()
}

func (t *translator) lazy(n *schema.Node) *schema.Node {
	t.mu.Lock()
	defer t.mu.Unlock()

	if existing, ok := t.lazies[n]; ok {
		return existing
	}

	var (
		once     sync.Once
		resolved *schema.Node
	)
	out := schema.Lazy(func() *schema.Node {
		once.Do(func() {
			resolved = t.translate(n.Resolve())
		})
		return resolved
	})
	t.lazies[n] = out
	return out
}

// representable copies n without the checks the target format cannot carry.
func representable(n *schema.Node) *schema.Node {
	out := *n
	out.Checks = nil
	for _, check := range n.Checks {
		if check.Kind == schema.CheckRefine {
			continue
		}
		out.Checks = append(out.Checks, check)
	}
	return &out
}

func nullable(n *schema.Node) *schema.Node {
	if n.Kind == schema.KindNullable {
		return n
	}
	return n.Nullable()
}

func describe(n *schema.Node, description string) *schema.Node {
	if description == "" || n.Description != "" || n.Kind == schema.KindLazy {
		return n
	}
	return n.Describe(description)
}
