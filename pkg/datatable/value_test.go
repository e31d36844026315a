package datatable

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

type sku string

func (s sku) String() string { return "SKU-" + string(s) }

func TestFormatValue(t *testing.T) {
	ts := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string", "mug", "mug"},
		{"bytes", []byte("raw"), "raw"},
		{"int", 42, "42"},
		{"float", 19.99, "19.99"},
		{"whole float", 20.0, "20"},
		{"bool", true, "true"},
		{"time", ts, "2024-05-06 07:08:09"},
		{"zero time", time.Time{}, ""},
		{"time pointer", &ts, "2024-05-06 07:08:09"},
		{"nil time pointer", (*time.Time)(nil), ""},
		{"stringer", sku("42"), "SKU-42"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatValue(tt.in))
		})
	}
}

func TestMatcher_Compare(t *testing.T) {
	m := newMatcher(language.English)
	early := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		a, b any
		want int
	}{
		{"nil first", nil, "a", -1},
		{"both nil", nil, nil, 0},
		{"ints", 2, 10, -1},
		{"mixed numbers", int64(3), 2.5, 1},
		{"numeric strings collate naturally", "item 2", "item 10", -1},
		{"case is ignored", "apple", "Apple", 0},
		{"times", early, early.Add(time.Hour), -1},
		{"bools", true, false, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.compare(tt.a, tt.b)
			switch {
			case tt.want < 0:
				assert.Negative(t, got)
			case tt.want > 0:
				assert.Positive(t, got)
			default:
				assert.Zero(t, got)
			}
		})
	}
}

func TestMatcher_FoldsCase(t *testing.T) {
	m := newMatcher(language.German)
	assert.True(t, m.contains("Große Tasse", "GROSSE"))
	assert.False(t, m.contains("Tasse", "becher"))
}
