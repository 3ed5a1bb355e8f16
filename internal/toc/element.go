package toc

import (
	"strconv"
	"strings"
)

var (
	roleKeys   = []string{"Role", "role"}
	textKeys   = []string{"Text", "text"}
	pageKeys   = []string{"Page", "page"}
	boundsKeys = []string{"Bounds", "bounds"}

	headingRoles = map[string]struct{}{
		"H1": {}, "H2": {}, "H3": {}, "H4": {}, "H5": {}, "H6": {},
	}
)

// RawElement is a structural element after key aliases have been resolved.
type RawElement struct {
	Role   string
	Text   string
	Page   int
	Bounds []any
}

// NormalizeElement maps a decoded JSON object onto RawElement. Each field is
// looked up through its alias list, first match wins. Role is upper-cased and
// Text trimmed; Page is 0 when absent or unusable; Bounds is nil unless the
// matched value is an array.
func NormalizeElement(el map[string]any) RawElement {
	var out RawElement

	for _, key := range roleKeys {
		if s, ok := el[key].(string); ok && s != "" {
			out.Role = strings.ToUpper(s)
			break
		}
	}

	for _, key := range textKeys {
		if s, ok := el[key].(string); ok {
			if trimmed := strings.TrimSpace(s); trimmed != "" {
				out.Text = trimmed
				break
			}
		}
	}

	for _, key := range pageKeys {
		if v, ok := el[key]; ok {
			out.Page = toInt(v)
			break
		}
	}

	for _, key := range boundsKeys {
		v := el[key]
		if isEmptyValue(v) {
			continue
		}
		if arr, ok := v.([]any); ok {
			out.Bounds = arr
		}
		break
	}

	return out
}

// IsHeading reports whether the element's role is one of H1..H6.
func (e RawElement) IsHeading() bool {
	_, ok := headingRoles[e.Role]
	return ok
}

// Heading converts the element into a Heading. Page falls back to 1.
func (e RawElement) Heading() Heading {
	page := e.Page
	if page <= 0 {
		page = 1
	}
	return Heading{
		Title:      e.Text,
		PageNumber: page,
		Y:          verticalPosition(e.Bounds),
	}
}

// verticalPosition returns y1 from a [x1, y1, x2, y2] box.
func verticalPosition(bounds []any) *float64 {
	if len(bounds) < 2 {
		return nil
	}
	y, ok := toFloat(bounds[1])
	if !ok {
		return nil
	}
	return &y
}

func toInt(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

func isEmptyValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	case string:
		return t == ""
	case float64:
		return t == 0
	case bool:
		return !t
	default:
		return false
	}
}
