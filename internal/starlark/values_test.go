package starlark

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.starlark.net/starlark"
)

type productStatus string

type cents int64

func TestToValue(t *testing.T) {
	n := 7
	var missing *int

	tests := []struct {
		name    string
		in      any
		want    string
		wantErr bool
	}{
		{name: "nil", in: nil, want: "None"},
		{name: "string", in: "mug", want: `"mug"`},
		{name: "named string", in: productStatus("draft"), want: `"draft"`},
		{name: "named int", in: cents(1250), want: "1250"},
		{name: "uint", in: uint8(3), want: "3"},
		{name: "float", in: 2.5, want: "2.5"},
		{name: "bool", in: true, want: "True"},
		{name: "time", in: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC), want: `"2026-03-01 09:30:00"`},
		{name: "zero time", in: time.Time{}, want: "None"},
		{name: "pointer", in: &n, want: "7"},
		{name: "nil pointer", in: missing, want: "None"},
		{name: "slice", in: []string{"a", "b"}, want: `["a", "b"]`},
		{name: "map", in: map[string]any{"qty": 2}, want: `{"qty": 2}`},
		{name: "starlark value", in: starlark.MakeInt(4), want: "4"},
		{name: "int map keys", in: map[int]string{1: "x"}, wantErr: true},
		{name: "func", in: func() {}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := toValue(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestFromValue(t *testing.T) {
	dict := starlark.NewDict(1)
	require.NoError(t, dict.SetKey(starlark.String("sku"), starlark.String("MUG-1")))
	badDict := starlark.NewDict(1)
	require.NoError(t, badDict.SetKey(starlark.MakeInt(1), starlark.None))
	huge := starlark.MakeInt(1).Lsh(80)

	tests := []struct {
		name    string
		in      starlark.Value
		want    any
		wantErr bool
	}{
		{name: "none", in: starlark.None, want: nil},
		{name: "string", in: starlark.String("x"), want: "x"},
		{name: "int", in: starlark.MakeInt(42), want: int64(42)},
		{name: "huge int", in: huge, want: "1208925819614629174706176"},
		{name: "float", in: starlark.Float(0.5), want: 0.5},
		{name: "bool", in: starlark.False, want: false},
		{name: "list", in: starlark.NewList([]starlark.Value{starlark.MakeInt(1), starlark.String("a")}), want: []any{int64(1), "a"}},
		{name: "tuple", in: starlark.Tuple{starlark.True}, want: []any{true}},
		{name: "dict", in: dict, want: map[string]any{"sku": "MUG-1"}},
		{name: "non-string key", in: badDict, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := fromValue(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
