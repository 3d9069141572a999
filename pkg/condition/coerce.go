package condition

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ToString renders a scalar as text for substring and prefix checks.
func ToString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case bool:
		if v {
			return "true"
		}
		return "false"
	default:
		if f, ok := toFloat(value); ok {
			return formatNumber(f)
		}
		return fmt.Sprint(value)
	}
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case math.Abs(f) >= 1e21:
		return strconv.FormatFloat(f, 'g', -1, 64)
	default:
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
}

// toFloat converts Go numeric kinds only; strings are not parsed here.
func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	default:
		return 0, false
	}
}

// ToNumber coerces an answer or rule value for numeric comparison. Values
// that are not numbers (including the empty string and nil) become NaN so
// every ordering comparison against them is false.
func ToNumber(value any) float64 {
	if f, ok := toFloat(value); ok {
		return f
	}
	switch v := value.(type) {
	case bool:
		if v {
			return 1
		}
		return 0
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		// ParseFloat also accepts "inf", "infinity" and "nan".
		if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

// strictEqual compares scalars by kind and value: "5" never equals 5, while
// any two Go numeric kinds holding the same number are equal.
func strictEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		return ok && fa == fb
	}
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	default:
		return false
	}
}

// falsy reports whether a scalar counts as empty.
func falsy(value any) bool {
	if value == nil {
		return true
	}
	if f, ok := toFloat(value); ok {
		return f == 0 || math.IsNaN(f)
	}
	switch v := value.(type) {
	case string:
		return v == ""
	case bool:
		return !v
	default:
		return false
	}
}

// Truthy reports whether value counts as answered for progress tracking.
// Lists are truthy even when empty.
func Truthy(value any) bool {
	switch value.(type) {
	case []string, []any:
		return true
	default:
		return !falsy(value)
	}
}
