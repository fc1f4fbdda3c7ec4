package utils

import (
	"strconv"
	"strings"
	"time"
)

// ExtractByPath walks a dot-separated path ("data.devices") through nested
// JSON objects decoded into map[string]any.
func ExtractByPath(raw map[string]any, path string) (any, bool) {
	if raw == nil {
		return nil, false
	}
	cur := any(raw)
	for _, key := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// FirstArray tries the candidate paths in order and returns the first value
// that is a JSON array, possibly empty. The second result reports whether any
// array was found at all.
func FirstArray(raw map[string]any, paths ...string) ([]any, bool) {
	for _, p := range paths {
		v, ok := ExtractByPath(raw, p)
		if !ok {
			continue
		}
		if arr, ok := v.([]any); ok {
			return arr, true
		}
	}
	return nil, false
}

// FirstString returns the first non-empty string-convertible value under any
// of the candidate keys. Numeric identifiers are stringified.
func FirstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		v, ok := m[k]
		if !ok {
			continue
		}
		if s := Stringify(v); s != "" {
			return s
		}
	}
	return ""
}

// FirstStringPath is FirstString over dot-separated paths.
func FirstStringPath(raw map[string]any, paths ...string) string {
	for _, p := range paths {
		v, ok := ExtractByPath(raw, p)
		if !ok {
			continue
		}
		if s := Stringify(v); s != "" {
			return s
		}
	}
	return ""
}

// Stringify renders scalar JSON values as identifier strings.
func Stringify(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}

// Truthy interprets heterogeneous boolean encodings: real booleans, non-zero
// numbers and the usual string spellings, case-insensitively.
func Truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case int64:
		return t != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "1", "yes", "y", "on":
			return true
		}
	}
	return false
}

// TruthyField reports whether any of the candidate keys holds a truthy value.
func TruthyField(m map[string]any, keys ...string) bool {
	for _, k := range keys {
		if v, ok := m[k]; ok && Truthy(v) {
			return true
		}
	}
	return false
}

// EpochMillis normalizes timestamps that may arrive as epoch seconds, epoch
// milliseconds, numeric strings or RFC3339 text. Returns 0 when unparseable.
func EpochMillis(v any) int64 {
	switch t := v.(type) {
	case float64:
		return normalizeEpoch(int64(t))
	case int64:
		return normalizeEpoch(t)
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return normalizeEpoch(n)
		}
		if ts, err := time.Parse(time.RFC3339, s); err == nil {
			return ts.UnixMilli()
		}
		if ts, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
			return ts.UnixMilli()
		}
	}
	return 0
}

func normalizeEpoch(n int64) int64 {
	if n <= 0 {
		return 0
	}
	// values below ~2001-09 in milliseconds are taken as seconds
	if n < 1e12 {
		return n * 1000
	}
	return n
}
