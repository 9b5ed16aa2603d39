package aitools

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// SensitiveKeys are property names removed from every tool result, compared
// case-insensitively.
var SensitiveKeys = []string{
	"password",
	"passwordHash",
	"password_hash",
	"hashedPassword",
	"hashed_password",
}

var sensitiveKeySet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(SensitiveKeys))
	for _, key := range SensitiveKeys {
		set[strings.ToLower(key)] = struct{}{}
	}
	return set
}()

func isSensitiveKey(key string) bool {
	_, ok := sensitiveKeySet[strings.ToLower(key)]
	return ok
}

// Sanitize removes sensitive properties from v at every depth, including
// inside arrays. Generic maps and slices are copied with their other values
// untouched; structs and typed collections are first converted through their
// JSON form so tagged fields are caught too.
func Sanitize(v any) (any, error) {
	switch t := v.(type) {
	case nil, string, bool, float64, float32, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, json.Number, time.Time:
		return v, nil
	case map[string]any:
		out := make(map[string]any, len(t))
		for key, val := range t {
			if isSensitiveKey(key) {
				continue
			}
			clean, err := Sanitize(val)
			if err != nil {
				return nil, err
			}
			out[key] = clean
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			clean, err := Sanitize(val)
			if err != nil {
				return nil, err
			}
			out[i] = clean
		}
		return out, nil
	case []map[string]any:
		out := make([]any, len(t))
		for i, val := range t {
			clean, err := Sanitize(val)
			if err != nil {
				return nil, err
			}
			out[i] = clean
		}
		return out, nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}
	return Sanitize(generic)
}
