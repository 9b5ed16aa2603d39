package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xeipuuv/gojsonschema"
)

type undefined struct{}

// Undefined stands for an absent value: a missing object property or a
// tuple position past the end of the input. It is distinct from nil, which is
// an explicit null.
var Undefined any = undefined{}

// IsUndefined reports whether v is the absent marker.
func IsUndefined(v any) bool {
	_, ok := v.(undefined)
	return ok
}

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	uuidPattern  = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
	dateLayouts  = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}
)

// Parse validates v against n and returns the parsed value: defaults filled
// in, undeclared object keys stripped, dates converted to time.Time and
// transforms applied. An absent result is returned as nil.
func (n *Node) Parse(v any) (any, error) {
	p := &parser{}
	out := p.parse(n, v, nil)
	if len(p.issues) > 0 {
		return nil, &ValidationError{Issues: p.issues}
	}
	if IsUndefined(out) {
		return nil, nil
	}
	return out, nil
}

// Validate reports whether v satisfies n.
func (n *Node) Validate(v any) error {
	_, err := n.Parse(v)
	return err
}

type parser struct {
	issues []Issue
}

func (p *parser) fail(path []string, code, format string, args ...any) {
	p.issues = append(p.issues, Issue{
		Path:    append([]string(nil), path...),
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	})
}

func (p *parser) typeMismatch(path []string, expected string, v any) {
	p.fail(path, CodeInvalidType, "expected %s, received %s", expected, typeName(v))
}

func child(path []string, segment string) []string {
	out := make([]string, len(path), len(path)+1)
	copy(out, path)
	return append(out, segment)
}

func (p *parser) parse(n *Node, v any, path []string) any {
	if n == nil {
		p.fail(path, CodeInvalidType, "schema is not defined")
		return v
	}

	start := len(p.issues)
	out := p.parseKind(n, v, path)
	if len(p.issues) == start && len(n.Checks) > 0 && !IsUndefined(out) {
		p.runChecks(n, out, path)
	}
	return out
}

func (p *parser) parseKind(n *Node, v any, path []string) any {
	switch n.Kind {
	case KindOptional:
		if IsUndefined(v) {
			return Undefined
		}
		return p.parse(n.Inner, v, path)
	case KindNullable:
		if v == nil {
			return nil
		}
		return p.parse(n.Inner, v, path)
	case KindDefault:
		if IsUndefined(v) {
			v = n.DefaultValue
		}
		return p.parse(n.Inner, v, path)
	case KindReadonly:
		return p.parse(n.Inner, v, path)
	case KindCatch:
		sub := &parser{}
		out := sub.parse(n.Inner, v, path)
		if len(sub.issues) > 0 {
			return n.CatchValue
		}
		return out
	case KindLazy:
		return p.parse(n.Resolve(), v, path)
	case KindTransform:
		start := len(p.issues)
		out := p.parse(n.Inner, v, path)
		if len(p.issues) > start || n.Fn == nil {
			return out
		}
		res, err := n.Fn(out)
		if err != nil {
			p.fail(path, CodeCustom, "%s", err.Error())
			return out
		}
		return res
	case KindPipe:
		start := len(p.issues)
		mid := p.parse(n.Inner, v, path)
		if len(p.issues) > start {
			return mid
		}
		return p.parse(n.Out, mid, path)
	case KindAny, KindUnknown:
		return v
	case KindUnion:
		return p.parseUnion(n, v, path)
	case KindIntersection:
		return p.parseIntersection(n, v, path)
	}

	if IsUndefined(v) {
		p.fail(path, CodeRequired, "required")
		return v
	}

	switch n.Kind {
	case KindString:
		s, ok := v.(string)
		if !ok {
			p.typeMismatch(path, "string", v)
			return v
		}
		return s
	case KindNumber:
		f, ok := toFloat(v)
		if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
			p.typeMismatch(path, "number", v)
			return v
		}
		return f
	case KindBoolean:
		b, ok := v.(bool)
		if !ok {
			p.typeMismatch(path, "boolean", v)
			return v
		}
		return b
	case KindDate:
		return p.parseDate(v, path)
	case KindNull:
		if v != nil {
			p.typeMismatch(path, "null", v)
		}
		return nil
	case KindNever:
		p.fail(path, CodeNever, "no value is allowed here")
		return v
	case KindLiteral:
		if len(n.Values) == 0 || !equalValues(v, n.Values[0]) {
			var expected any
			if len(n.Values) > 0 {
				expected = n.Values[0]
			}
			p.fail(path, CodeInvalidLiteral, "expected %v", expected)
		}
		return v
	case KindEnum:
		for _, allowed := range n.Values {
			if equalValues(v, allowed) {
				return v
			}
		}
		p.fail(path, CodeInvalidEnum, "expected one of %s", joinValues(n.Values))
		return v
	case KindObject:
		return p.parseObject(n, v, path)
	case KindArray:
		return p.parseArray(n, v, path)
	case KindTuple:
		return p.parseTuple(n, v, path)
	case KindRecord:
		return p.parseRecord(n, v, path)
	case KindJSON:
		return p.parseJSON(n, v, path)
	}

	p.fail(path, CodeInvalidType, "unsupported schema kind %s", n.Kind)
	return v
}

func (p *parser) parseDate(v any, path []string) any {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed
			}
		}
		p.fail(path, CodeInvalidDate, "invalid date %q", t)
		return v
	}
	p.typeMismatch(path, "date", v)
	return v
}

func (p *parser) parseObject(n *Node, v any, path []string) any {
	m, ok := asMap(v)
	if !ok {
		p.typeMismatch(path, "object", v)
		return v
	}

	out := make(map[string]any, len(m))
	declared := make(map[string]bool, len(n.Fields))
	for _, f := range n.Fields {
		declared[f.Name] = true
		raw, present := m[f.Name]
		if !present {
			raw = Undefined
		}
		val := p.parse(f.Schema, raw, child(path, f.Name))
		if !IsUndefined(val) {
			out[f.Name] = val
		}
	}

	var extras []string
	for key := range m {
		if !declared[key] {
			extras = append(extras, key)
		}
	}
	sort.Strings(extras)

	switch {
	case len(extras) == 0:
	case n.Catchall != nil:
		for _, key := range extras {
			val := p.parse(n.Catchall, m[key], child(path, key))
			if !IsUndefined(val) {
				out[key] = val
			}
		}
	case n.UnknownKeys == UnknownKeysStrict:
		p.fail(path, CodeUnrecognizedKeys, "unrecognized keys: %s", strings.Join(extras, ", "))
	case n.UnknownKeys == UnknownKeysPassthrough:
		for _, key := range extras {
			out[key] = m[key]
		}
	}

	return out
}

func (p *parser) parseArray(n *Node, v any, path []string) any {
	items, ok := asSlice(v)
	if !ok {
		p.typeMismatch(path, "array", v)
		return v
	}

	out := make([]any, len(items))
	for i, item := range items {
		val := p.parse(n.Elem, item, child(path, strconv.Itoa(i)))
		if IsUndefined(val) {
			val = nil
		}
		out[i] = val
	}
	return out
}

func (p *parser) parseTuple(n *Node, v any, path []string) any {
	items, ok := asSlice(v)
	if !ok {
		p.typeMismatch(path, "array", v)
		return v
	}
	if len(items) > len(n.Items) && n.Rest == nil {
		p.fail(path, CodeTooBig, "expected at most %d items, received %d", len(n.Items), len(items))
		return v
	}

	out := make([]any, 0, len(items))
	for i, item := range n.Items {
		raw := Undefined
		if i < len(items) {
			raw = items[i]
		}
		val := p.parse(item, raw, child(path, strconv.Itoa(i)))
		if IsUndefined(val) {
			if i >= len(items) {
				continue
			}
			val = nil
		}
		out = append(out, val)
	}
	for i := len(n.Items); i < len(items); i++ {
		val := p.parse(n.Rest, items[i], child(path, strconv.Itoa(i)))
		if IsUndefined(val) {
			val = nil
		}
		out = append(out, val)
	}
	return out
}

func (p *parser) parseRecord(n *Node, v any, path []string) any {
	m, ok := asMap(v)
	if !ok {
		p.typeMismatch(path, "object", v)
		return v
	}

	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make(map[string]any, len(m))
	for _, key := range keys {
		outKey := key
		if n.Key != nil {
			parsedKey := p.parse(n.Key, key, child(path, key))
			if s, ok := parsedKey.(string); ok {
				outKey = s
			}
		}
		val := p.parse(n.Value, m[key], child(path, key))
		if !IsUndefined(val) {
			out[outKey] = val
		}
	}
	return out
}

func (p *parser) parseUnion(n *Node, v any, path []string) any {
	for _, option := range n.Options {
		sub := &parser{}
		out := sub.parse(option, v, path)
		if len(sub.issues) == 0 {
			return out
		}
	}
	p.fail(path, CodeInvalidUnion, "value does not match any allowed shape")
	return v
}

func (p *parser) parseIntersection(n *Node, v any, path []string) any {
	start := len(p.issues)
	left := p.parse(n.Left, v, path)
	right := p.parse(n.Right, v, path)
	if len(p.issues) > start {
		return v
	}

	merged, ok := mergeValues(left, right)
	if !ok {
		p.fail(path, CodeInvalidIntersection, "intersection results could not be merged")
		return v
	}
	return merged
}

func (p *parser) parseJSON(n *Node, v any, path []string) any {
	if n.compiled == nil {
		p.fail(path, CodeInvalidType, "json schema is not compiled")
		return v
	}

	result, err := n.compiled.Validate(gojsonschema.NewGoLoader(v))
	if err != nil {
		p.fail(path, CodeInvalidType, "%s", err.Error())
		return v
	}
	for _, resultErr := range result.Errors() {
		issuePath := path
		if field := resultErr.Field(); field != "" && field != "(root)" {
			for _, segment := range strings.Split(field, ".") {
				issuePath = child(issuePath, segment)
			}
		}
		p.fail(issuePath, resultErr.Type(), "%s", resultErr.Description())
	}
	return v
}

func (p *parser) runChecks(n *Node, v any, path []string) {
	for _, check := range n.Checks {
		switch check.Kind {
		case CheckMinLength, CheckMaxLength:
			size, unit, ok := lengthOf(v)
			if !ok {
				continue
			}
			if check.Kind == CheckMinLength && float64(size) < check.Value {
				p.fail(path, CodeTooSmall, "must contain at least %d %s", int(check.Value), unit)
			}
			if check.Kind == CheckMaxLength && float64(size) > check.Value {
				p.fail(path, CodeTooBig, "must contain at most %d %s", int(check.Value), unit)
			}
		case CheckPattern:
			if s, ok := v.(string); ok && check.Pattern != nil && !check.Pattern.MatchString(s) {
				p.fail(path, CodeInvalidString, "must match pattern %s", check.Pattern.String())
			}
		case CheckEmail:
			if s, ok := v.(string); ok && !emailPattern.MatchString(s) {
				p.fail(path, CodeInvalidString, "invalid email")
			}
		case CheckUUID:
			if s, ok := v.(string); ok && !uuidPattern.MatchString(s) {
				p.fail(path, CodeInvalidString, "invalid uuid")
			}
		case CheckInt:
			if f, ok := toFloat(v); ok && f != math.Trunc(f) {
				p.fail(path, CodeNotInteger, "expected integer, received float")
			}
		case CheckMin:
			if f, ok := toFloat(v); ok && f < check.Value {
				p.fail(path, CodeTooSmall, "must be greater than or equal to %v", check.Value)
			}
		case CheckMax:
			if f, ok := toFloat(v); ok && f > check.Value {
				p.fail(path, CodeTooBig, "must be less than or equal to %v", check.Value)
			}
		case CheckRefine:
			if check.Fn != nil && !check.Fn(v) {
				message := check.Message
				if message == "" {
					message = "invalid value"
				}
				p.fail(path, CodeCustom, "%s", message)
			}
		}
	}
}

func lengthOf(v any) (int, string, bool) {
	if s, ok := v.(string); ok {
		return utf8.RuneCountInString(s), "character(s)", true
	}
	if items, ok := asSlice(v); ok {
		return len(items), "element(s)", true
	}
	return 0, "", false
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case nil:
		return nil, false
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

func asSlice(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case nil, string:
		return nil, false
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case undefined:
		return "undefined"
	case string:
		return "string"
	case bool:
		return "boolean"
	case time.Time:
		return "date"
	}
	if _, ok := toFloat(v); ok {
		return "number"
	}
	if _, ok := asMap(v); ok {
		return "object"
	}
	if _, ok := asSlice(v); ok {
		return "array"
	}
	return fmt.Sprintf("%T", v)
}

func equalValues(a, b any) bool {
	fa, okA := toFloat(a)
	fb, okB := toFloat(b)
	if okA && okB {
		return fa == fb
	}
	return reflect.DeepEqual(a, b)
}

func joinValues(values []any) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%v", v)
	}
	return strings.Join(parts, ", ")
}

func mergeValues(a, b any) (any, bool) {
	if IsUndefined(a) && IsUndefined(b) {
		return Undefined, true
	}

	ma, okA := a.(map[string]any)
	mb, okB := b.(map[string]any)
	if okA && okB {
		out := make(map[string]any, len(ma)+len(mb))
		for key, val := range ma {
			out[key] = val
		}
		for key, val := range mb {
			existing, shared := out[key]
			if !shared {
				out[key] = val
				continue
			}
			merged, ok := mergeValues(existing, val)
			if !ok {
				return nil, false
			}
			out[key] = merged
		}
		return out, true
	}

	sa, okA := a.([]any)
	sb, okB := b.([]any)
	if okA && okB {
		if len(sa) != len(sb) {
			return nil, false
		}
		out := make([]any, len(sa))
		for i := range sa {
			merged, ok := mergeValues(sa[i], sb[i])
			if !ok {
				return nil, false
			}
			out[i] = merged
		}
		return out, true
	}

	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta, ta.Equal(tb)
		}
	}

	if equalValues(a, b) {
		return a, true
	}
	return nil, false
}
