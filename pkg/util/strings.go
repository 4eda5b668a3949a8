package util

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatValue renders a decoded JSON property as text. Numbers print without
// exponent or trailing zeros so 30321431.0 and "30321431" compare equal.
func FormatValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ""
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return FormatValue(float64(v))
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	}

	return strings.TrimSpace(fmt.Sprint(value))
}

// ParseNumber coerces a decoded JSON property to a float. ok is false for
// values that are present but not numeric.
func ParseNumber(value interface{}) (number float64, ok bool) {
	switch v := value.(type) {
	case nil:
		return 0, true
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	case float32:
		return ParseNumber(float64(v))
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return 0, true
		}
		parsed, err := strconv.ParseFloat(strings.Replace(trimmed, ",", ".", 1), 64)
		if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
			return 0, false
		}
		return parsed, true
	}

	return 0, false
}
