package datatable

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// FormatValue converts an accessor value to display text. Nil renders empty.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case time.Time:
		if x.IsZero() {
			return ""
		}
		return x.Format(time.DateTime)
	case *time.Time:
		if x == nil {
			return ""
		}
		return FormatValue(*x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// toFloat extracts a number from numeric values and numeric strings.
func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case float32:
		return float64(x), true
	case float64:
		return x, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func toTime(v any) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x, !x.IsZero()
	case *time.Time:
		if x == nil {
			return time.Time{}, false
		}
		return *x, !x.IsZero()
	case string:
		for _, layout := range []string{time.RFC3339, time.DateTime, time.DateOnly} {
			if t, err := time.Parse(layout, x); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// matcher holds the language-sensitive helpers used by sorting and filtering.
// collate.Collator and cases.Caser keep internal buffers, so a matcher belongs
// to one table and is only used under the table's lock.
type matcher struct {
	collator *collate.Collator
	folder   cases.Caser
}

func newMatcher(tag language.Tag) *matcher {
	return &matcher{
		collator: collate.New(tag, collate.Loose, collate.Numeric),
		folder:   cases.Fold(),
	}
}

func (m *matcher) fold(s string) string {
	return m.folder.String(s)
}

func (m *matcher) contains(haystack, needle string) bool {
	return strings.Contains(m.fold(haystack), m.fold(needle))
}

// compare orders two accessor values. Nil sorts before everything so that the
// ascending order lists blanks first.
func (m *matcher) compare(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	if ta, ok := toTime(a); ok {
		if tb, ok := toTime(b); ok {
			return ta.Compare(tb)
		}
	}
	if ba, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			switch {
			case ba == bb:
				return 0
			case !ba:
				return -1
			default:
				return 1
			}
		}
	}
	_, aString := a.(string)
	_, bString := b.(string)
	if !aString && !bString {
		if fa, ok := toFloat(a); ok {
			if fb, ok := toFloat(b); ok {
				return cmp.Compare(fa, fb)
			}
		}
	}
	return m.collator.CompareString(FormatValue(a), FormatValue(b))
}

// matchFilter applies one column filter to an accessor value.
func (m *matcher) matchFilter(kind FilterKind, v any, f FilterValue) bool {
	if f.IsZero() {
		return true
	}
	switch kind {
	case FilterText:
		return m.contains(FormatValue(v), f.Text)
	case FilterSelect:
		return f.Equals == "" || FormatValue(v) == f.Equals
	case FilterDate:
		t, ok := toTime(v)
		if !ok {
			return false
		}
		if !f.From.IsZero() && t.Before(f.From) {
			return false
		}
		if !f.To.IsZero() && t.After(f.To) {
			return false
		}
		return true
	case FilterNumber:
		n, ok := toFloat(v)
		if !ok {
			return false
		}
		if f.Min != nil && n < *f.Min {
			return false
		}
		if f.Max != nil && n > *f.Max {
			return false
		}
		return true
	default:
		return true
	}
}
