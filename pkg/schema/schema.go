package schema

import (
	"fmt"
	"regexp"

	"github.com/xeipuuv/gojsonschema"
)

// Kind identifies the node variant of a schema.
type Kind int

const (
	KindInvalid Kind = iota
	KindString
	KindNumber
	KindBoolean
	KindDate
	KindNull
	KindAny
	KindUnknown
	KindNever
	KindLiteral
	KindEnum
	KindObject
	KindArray
	KindTuple
	KindUnion
	KindIntersection
	KindRecord
	KindOptional
	KindNullable
	KindDefault
	KindReadonly
	KindCatch
	KindLazy
	KindTransform
	KindPipe
	KindJSON
)

var kindNames = map[Kind]string{
	KindString:       "string",
	KindNumber:       "number",
	KindBoolean:      "boolean",
	KindDate:         "date",
	KindNull:         "null",
	KindAny:          "any",
	KindUnknown:      "unknown",
	KindNever:        "never",
	KindLiteral:      "literal",
	KindEnum:         "enum",
	KindObject:       "object",
	KindArray:        "array",
	KindTuple:        "tuple",
	KindUnion:        "union",
	KindIntersection: "intersection",
	KindRecord:       "record",
	KindOptional:     "optional",
	KindNullable:     "nullable",
	KindDefault:      "default",
	KindReadonly:     "readonly",
	KindCatch:        "catch",
	KindLazy:         "lazy",
	KindTransform:    "transform",
	KindPipe:         "pipe",
	KindJSON:         "json",
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// IsWrapper reports whether the kind only decorates an inner schema.
func (k Kind) IsWrapper() bool {
	switch k {
	case KindOptional, KindNullable, KindDefault, KindReadonly, KindCatch:
		return true
	}
	return false
}

// UnknownKeys controls how an object treats properties it does not declare.
type UnknownKeys int

const (
	// UnknownKeysStrip drops undeclared properties from the parsed value.
	UnknownKeysStrip UnknownKeys = iota
	// UnknownKeysStrict rejects undeclared properties.
	UnknownKeysStrict
	// UnknownKeysPassthrough keeps undeclared properties untouched.
	UnknownKeysPassthrough
)

// CheckKind identifies a constraint attached to a node.
type CheckKind int

const (
	CheckMinLength CheckKind = iota + 1
	CheckMaxLength
	CheckPattern
	CheckEmail
	CheckUUID
	CheckInt
	CheckMin
	CheckMax
	CheckRefine
)

// Check is a constraint evaluated after the node's type check succeeds.
type Check struct {
	Kind    CheckKind
	Value   float64
	Pattern *regexp.Regexp
	Fn      func(any) bool
	Message string
}

// Field is a named object property.
type Field struct {
	Name   string
	Schema *Node
}

// Prop builds an object field.
func Prop(name string, node *Node) Field {
	return Field{Name: name, Schema: node}
}

// TransformFunc reshapes a value after its input schema accepted it.
type TransformFunc func(any) (any, error)

// Node is one vertex of a validation schema graph. Nodes are built with the
// constructors in this package and treated as immutable afterwards; every
// modifier returns a copy.
type Node struct {
	Kind        Kind
	Description string
	Checks      []Check

	// Literal and Enum
	Values []any

	// Object
	Fields      []Field
	UnknownKeys UnknownKeys
	Catchall    *Node

	// Array (Elem), Tuple (Items, Rest)
	Elem  *Node
	Items []*Node
	Rest  *Node

	// Union
	Options []*Node

	// Intersection
	Left  *Node
	Right *Node

	// Record
	Key   *Node
	Value *Node

	// Wrappers, Transform and the input side of Pipe
	Inner        *Node
	DefaultValue any
	CatchValue   any
	Fn           TransformFunc
	Out          *Node

	// Lazy
	Getter func() *Node

	// JSON
	Document map[string]any
	compiled *gojsonschema.Schema
}

func newNode(kind Kind) *Node {
	return &Node{Kind: kind}
}

func (n *Node) clone() *Node {
	c := *n
	c.Checks = append([]Check(nil), n.Checks...)
	return &c
}

func (n *Node) withCheck(check Check) *Node {
	c := n.clone()
	c.Checks = append(c.Checks, check)
	return c
}

func wrap(kind Kind, inner *Node) *Node {
	node := newNode(kind)
	node.Inner = inner
	return node
}

// String accepts string values.
func String() *Node { return newNode(KindString) }

// Number accepts finite numeric values.
func Number() *Node { return newNode(KindNumber) }

// Integer accepts whole numbers.
func Integer() *Node { return Number().Int() }

// Boolean accepts true or false.
func Boolean() *Node { return newNode(KindBoolean) }

// Date accepts time.Time values and ISO-8601 strings, producing time.Time.
func Date() *Node { return newNode(KindDate) }

// Null accepts only nil.
func Null() *Node { return newNode(KindNull) }

// Any accepts everything, including an absent value.
func Any() *Node { return newNode(KindAny) }

// Unknown accepts everything, including an absent value.
func Unknown() *Node { return newNode(KindUnknown) }

// Never rejects everything.
func Never() *Node { return newNode(KindNever) }

// Literal accepts exactly one value.
func Literal(value any) *Node {
	node := newNode(KindLiteral)
	node.Values = []any{value}
	return node
}

// Enum accepts one of a fixed set of strings.
func Enum(values ...string) *Node {
	node := newNode(KindEnum)
	node.Values = make([]any, len(values))
	for i, v := range values {
		node.Values[i] = v
	}
	return node
}

// Object accepts maps with the given properties, in declaration order.
func Object(fields ...Field) *Node {
	node := newNode(KindObject)
	node.Fields = append([]Field(nil), fields...)
	return node
}

// Array accepts slices whose elements match elem.
func Array(elem *Node) *Node {
	node := newNode(KindArray)
	node.Elem = elem
	return node
}

// Tuple accepts fixed-position slices.
func Tuple(items ...*Node) *Node {
	node := newNode(KindTuple)
	node.Items = append([]*Node(nil), items...)
	return node
}

// Union accepts a value matching any option; the first match wins.
func Union(options ...*Node) *Node {
	node := newNode(KindUnion)
	node.Options = append([]*Node(nil), options...)
	return node
}

// Intersection accepts values matching both sides and merges the results.
func Intersection(left, right *Node) *Node {
	node := newNode(KindIntersection)
	node.Left = left
	node.Right = right
	return node
}

// Record accepts maps whose keys match key and values match value.
func Record(key, value *Node) *Node {
	node := newNode(KindRecord)
	node.Key = key
	node.Value = value
	return node
}

// Lazy defers schema construction, allowing recursive schemas. The getter
// must return the same node on every call.
func Lazy(getter func() *Node) *Node {
	node := newNode(KindLazy)
	node.Getter = getter
	return node
}

// Pipe parses with in, then parses the result with out.
func Pipe(in, out *Node) *Node {
	node := wrap(KindPipe, in)
	node.Out = out
	return node
}

// JSON accepts values valid under a raw JSON Schema document.
func JSON(document map[string]any) (*Node, error) {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(document))
	if err != nil {
		return nil, fmt.Errorf("compile json schema: %w", err)
	}
	node := newNode(KindJSON)
	node.Document = document
	node.compiled = compiled
	return node, nil
}

// MustJSON is JSON that panics on an invalid document.
func MustJSON(document map[string]any) *Node {
	node, err := JSON(document)
	if err != nil {
		panic(err)
	}
	return node
}

// Resolve returns the node a Lazy schema stands for, or n itself.
func (n *Node) Resolve() *Node {
	if n == nil || n.Kind != KindLazy || n.Getter == nil {
		return n
	}
	return n.Getter()
}

// Describe attaches a human readable description.
func (n *Node) Describe(description string) *Node {
	c := n.clone()
	c.Description = description
	return c
}

// Optional allows the value to be absent.
func (n *Node) Optional() *Node { return wrap(KindOptional, n) }

// Nullable allows the value to be nil.
func (n *Node) Nullable() *Node { return wrap(KindNullable, n) }

// Nullish allows the value to be nil or absent.
func (n *Node) Nullish() *Node { return n.Nullable().Optional() }

// Readonly marks the value as immutable; parsing is unchanged.
func (n *Node) Readonly() *Node { return wrap(KindReadonly, n) }

// Default substitutes value when the input is absent.
func (n *Node) Default(value any) *Node {
	node := wrap(KindDefault, n)
	node.DefaultValue = value
	return node
}

// Catch substitutes value when the inner schema rejects the input.
func (n *Node) Catch(value any) *Node {
	node := wrap(KindCatch, n)
	node.CatchValue = value
	return node
}

// Transform reshapes the parsed value with fn.
func (n *Node) Transform(fn TransformFunc) *Node {
	node := wrap(KindTransform, n)
	node.Fn = fn
	return node
}

// Pipe parses with n, then with out.
func (n *Node) Pipe(out *Node) *Node { return Pipe(n, out) }

// Strict rejects undeclared object properties.
func (n *Node) Strict() *Node {
	c := n.clone()
	c.UnknownKeys = UnknownKeysStrict
	return c
}

// Passthrough keeps undeclared object properties.
func (n *Node) Passthrough() *Node {
	c := n.clone()
	c.UnknownKeys = UnknownKeysPassthrough
	return c
}

// WithCatchall validates undeclared object properties with extra.
func (n *Node) WithCatchall(extra *Node) *Node {
	c := n.clone()
	c.Catchall = extra
	return c
}

// WithRest validates tuple elements past the fixed positions with rest.
func (n *Node) WithRest(rest *Node) *Node {
	c := n.clone()
	c.Rest = rest
	return c
}

// MinLen requires at least size characters (strings) or elements (arrays).
func (n *Node) MinLen(size int) *Node {
	return n.withCheck(Check{Kind: CheckMinLength, Value: float64(size)})
}

// MaxLen allows at most size characters (strings) or elements (arrays).
func (n *Node) MaxLen(size int) *Node {
	return n.withCheck(Check{Kind: CheckMaxLength, Value: float64(size)})
}

// NonEmpty requires at least one character or element.
func (n *Node) NonEmpty() *Node { return n.MinLen(1) }

// Matches requires the string to match re.
func (n *Node) Matches(re *regexp.Regexp) *Node {
	return n.withCheck(Check{Kind: CheckPattern, Pattern: re})
}

// Email requires an email-shaped string.
func (n *Node) Email() *Node { return n.withCheck(Check{Kind: CheckEmail}) }

// UUID requires a UUID-shaped string.
func (n *Node) UUID() *Node { return n.withCheck(Check{Kind: CheckUUID}) }

// Int requires a whole number.
func (n *Node) Int() *Node { return n.withCheck(Check{Kind: CheckInt}) }

// Min requires a number >= value.
func (n *Node) Min(value float64) *Node {
	return n.withCheck(Check{Kind: CheckMin, Value: value})
}

// Max requires a number <= value.
func (n *Node) Max(value float64) *Node {
	return n.withCheck(Check{Kind: CheckMax, Value: value})
}

// Positive requires a number > 0.
func (n *Node) Positive() *Node {
	return n.Refine(func(v any) bool {
		f, ok := toFloat(v)
		return ok && f > 0
	}, "must be greater than 0")
}

// Refine adds an arbitrary predicate. Refinements cannot be described to an
// LLM and only take part in parsing.
func (n *Node) Refine(fn func(any) bool, message string) *Node {
	return n.withCheck(Check{Kind: CheckRefine, Fn: fn, Message: message})
}

// HasTransform reports whether parsing n can reshape data.
func (n *Node) HasTransform() bool {
	return hasTransform(n, map[*Node]bool{})
}

func hasTransform(n *Node, seen map[*Node]bool) bool {
	if n == nil || seen[n] {
		return false
	}
	seen[n] = true

	switch n.Kind {
	case KindTransform:
		return true
	case KindPipe:
		return hasTransform(n.Inner, seen) || hasTransform(n.Out, seen)
	case KindLazy:
		return hasTransform(n.Resolve(), seen)
	}

	children := []*Node{n.Inner, n.Elem, n.Rest, n.Left, n.Right, n.Key, n.Value, n.Catchall}
	children = append(children, n.Items...)
	children = append(children, n.Options...)
	for _, f := range n.Fields {
		children = append(children, f.Schema)
	}
	for _, child := range children {
		if hasTransform(child, seen) {
			return true
		}
	}
	return false
}
