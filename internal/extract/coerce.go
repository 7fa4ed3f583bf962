package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	nonDigits      = regexp.MustCompile(`[^\d]`)
	nonNumeric     = regexp.MustCompile(`[^\d.]`)
	firstDigits    = regexp.MustCompile(`\d+`)
	listSeparators = regexp.MustCompile(`[,;|]`)
)

var placeholders = map[string]bool{
	"null":          true,
	"none":          true,
	"n/a":           true,
	"not specified": true,
}

// dateLayouts are tried in order; the first that parses wins.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z",
	"01/02/2006",
	"02/01/2006",
	"January 2, 2006",
	"Jan 2, 2006",
}

// toText renders a scalar as trimmed text. Placeholder values become "".
func toText(v any) string {
	var s string
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		s = t
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		s = strconv.FormatBool(t)
	case []any, map[string]any:
		return ""
	default:
		s = fmt.Sprint(t)
	}
	s = strings.TrimSpace(s)
	if placeholders[strings.ToLower(s)] {
		return ""
	}
	return s
}

// toBool accepts booleans, numbers (non-zero is true) and the strings true,
// yes, 1, on and enabled.
func toBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case int:
		return t != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "yes", "1", "on", "enabled":
			return true
		}
	}
	return false
}

// toInt accepts numbers (floats truncate) and strings such as "$120,000" or
// "120k". Strings keep only their digits; a k anywhere multiplies by 1000.
func toInt(v any) (int, bool) {
	switch t := v.(type) {
	case float64:
		return int(t), true
	case int:
		return t, true
	case string:
		digits := nonDigits.ReplaceAllString(t, "")
		if digits == "" {
			return 0, false
		}
		n, err := strconv.Atoi(digits)
		if err != nil {
			return 0, false
		}
		if strings.ContainsAny(t, "kK") {
			n *= 1000
		}
		return n, true
	}
	return 0, false
}

// toFloat accepts numbers and strings such as "0.5%".
func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case string:
		clean := nonNumeric.ReplaceAllString(t, "")
		if clean == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(clean, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// toList accepts a JSON array or a string separated by commas, semicolons or
// pipes. Items are trimmed and empties dropped.
func toList(v any) []string {
	var parts []string
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			parts = append(parts, toText(item))
		}
	case []string:
		parts = t
	case string:
		parts = listSeparators.Split(t, -1)
	default:
		return nil
	}
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// toDate parses the first matching layout.
func toDate(v any) (time.Time, bool) {
	s, isStr := v.(string)
	if !isStr {
		return time.Time{}, false
	}
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// toJobCount reads counts such as 5, "5" or "5 jobs". Anything else is 0.
func toJobCount(v any) int {
	var n int
	switch t := v.(type) {
	case float64:
		n = int(t)
	case int:
		n = t
	case string:
		m := firstDigits.FindString(t)
		if m == "" {
			return 0
		}
		n, _ = strconv.Atoi(m)
	}
	return max(n, 0)
}

func isHTTPURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }
