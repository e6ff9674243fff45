package domain

import (
	"fmt"
	"sort"
)

// Payload is the flat wire form of a submission: string keys to string or integer values
type Payload map[string]any

// Clone returns a shallow copy; values are scalars so this is a full copy
func (p Payload) Clone() Payload {
	out := make(Payload, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// String returns the value as a string, "" when absent
func (p Payload) String(key string) string {
	v, ok := p[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Int returns the value as an int64, 0 when absent or not numeric
func (p Payload) Int(key string) int64 {
	switch v := p[key].(type) {
	case int:
		return int64(v)
	case int64:
		return v
	case float64:
		return int64(v)
	default:
		return 0
	}
}

// Keys returns the keys in sorted order
func (p Payload) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
