// Package pageutil holds the typed accessors generated page types use to read
// and write JSON documents.
//
// Documents are the generic decoding of a JSON object (map[string]any). Numbers
// may be float64 (encoding/json default), json.Number (decoder with UseNumber),
// or any Go integer/float type when a document was built in memory. A missing
// key and an explicit null both read as the zero value; a value of the wrong
// type is an error.
package pageutil

import (
	"encoding/json"
	"fmt"
	"math"
)

// TypeError reports a document value which could not be read as the expected type.
type TypeError struct {
	Key   string
	Want  string
	Value any
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("value for %q is not %s: %T", e.Key, e.Want, e.Value)
}

func GetBool(doc map[string]any, key string) (bool, error) {
	v, ok := doc[key]
	if !ok || v == nil {
		return false, nil
	}
	return asBool(key, v)
}

func GetInt(doc map[string]any, key string) (int64, error) {
	v, ok := doc[key]
	if !ok || v == nil {
		return 0, nil
	}
	return asInt(key, v)
}

func GetFloat(doc map[string]any, key string) (float32, error) {
	v, ok := doc[key]
	if !ok || v == nil {
		return 0, nil
	}
	f, err := asDouble(key, v)
	return float32(f), err
}

func GetDouble(doc map[string]any, key string) (float64, error) {
	v, ok := doc[key]
	if !ok || v == nil {
		return 0, nil
	}
	return asDouble(key, v)
}

func GetString(doc map[string]any, key string) (string, error) {
	v, ok := doc[key]
	if !ok || v == nil {
		return "", nil
	}
	return asString(key, v)
}

// GetArray returns the array under key, or nil when it is missing or null.
func GetArray(doc map[string]any, key string) ([]any, error) {
	v, ok := doc[key]
	if !ok || v == nil {
		return nil, nil
	}
	arr, ok := v.([]any)
	if !ok {
		return nil, &TypeError{Key: key, Want: "an array", Value: v}
	}
	return arr, nil
}

// GetObject returns the object under key, or nil when it is missing or null.
func GetObject(doc map[string]any, key string) (map[string]any, error) {
	v, ok := doc[key]
	if !ok || v == nil {
		return nil, nil
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, &TypeError{Key: key, Want: "an object", Value: v}
	}
	return obj, nil
}

func asBool(key string, v any) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, &TypeError{Key: key, Want: "a boolean", Value: v}
	}
	return b, nil
}

func asString(key string, v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", &TypeError{Key: key, Want: "a string", Value: v}
	}
	return s, nil
}

func asInt(key string, v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, fmt.Errorf("value for %q is not an integer: %w", key, err)
		}
		return i, nil
	case float64:
		// float64(math.MaxInt64) rounds up to 1<<63, which does not fit
		if n != math.Trunc(n) || n >= 1<<63 || n < math.MinInt64 {
			return 0, &TypeError{Key: key, Want: "an integer", Value: v}
		}
		return int64(n), nil
	case float32:
		return asInt(key, float64(n))
	}
	return 0, &TypeError{Key: key, Want: "an integer", Value: v}
}

func asDouble(key string, v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("value for %q is not a number: %w", key, err)
		}
		return f, nil
	}
	return 0, &TypeError{Key: key, Want: "a number", Value: v}
}
