package config

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Options is a free-form option block such as "minimizer" or "optimizer".
// Keys are lower-case.
type Options map[string]any

// Has reports whether key is present with a non-nil value.
func (o Options) Has(key string) bool {
	v, ok := o[key]
	return ok && v != nil
}

// Float extracts a numeric option, returning def if missing or invalid.
func (o Options) Float(key string, def float64) float64 {
	v, ok := toFloat(o[key])
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}

	return v
}

// Int extracts an integral option, returning def if missing or invalid.
func (o Options) Int(key string, def int) int {
	v, ok := toFloat(o[key])
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
		return def
	}

	return int(v)
}

// String extracts a string option, returning def if missing or not a string.
func (o Options) String(key, def string) string {
	s, ok := o[key].(string)
	if !ok {
		return def
	}

	return s
}

// Bool extracts a boolean option, returning def if missing or not a bool.
func (o Options) Bool(key string, def bool) bool {
	b, ok := o[key].(bool)
	if !ok {
		return def
	}

	return b
}

// Clone returns a shallow copy of o.
func (o Options) Clone() Options {
	if o == nil {
		return nil
	}

	out := make(Options, len(o))
	for k, v := range o {
		out[k] = v
	}

	return out
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		// YAML and TOML users write "inf" and "-inf" for open bounds.
		switch strings.ToLower(strings.TrimSpace(n)) {
		case "inf", "+inf", "infinity":
			return math.Inf(1), true
		case "-inf", "-infinity":
			return math.Inf(-1), true
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
