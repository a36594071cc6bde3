package models

import (
	"math"
	"strconv"
	"strings"
)

// Float returns the numeric value of a cell.
func Float(v any) (float64, bool) {
	f, ok := v.(float64)
	if !ok || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// Number returns the numeric value of a cell, parsing numeric text.
// Text that does not parse is not a number.
func Number(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return Float(x)
	case string:
		s := strings.TrimSpace(x)
		if !reNumeric.MatchString(s) {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// IsNull reports whether a cell holds no value.
func IsNull(v any) bool {
	if v == nil {
		return true
	}
	if f, ok := v.(float64); ok && math.IsNaN(f) {
		return true
	}
	return false
}

// FormatCell renders a cell the way it is written to CSV files.
// Numbers keep a trailing ".0" when integral, nulls become empty strings.
func FormatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case float64:
		return pythonLikeFloatString(x)
	case string:
		return x
	default:
		return ""
	}
}

// KeyText renders a cell as a join key. Numbers compare by value, so 1 and 1.0
// produce the same key text.
func KeyText(v any) string {
	switch x := v.(type) {
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case string:
		return x
	default:
		return ""
	}
}

func pythonLikeFloatString(f float64) string {
	if math.IsNaN(f) {
		return ""
	}
	abs := math.Abs(f)
	if f != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		// str(float) keeps a .0 for integral values.
		return s + ".0"
	}
	return s
}
