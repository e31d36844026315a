package starlark

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.starlark.net/starlark"
)

func TestProgram_Eval(t *testing.T) {
	env := NewEnv()
	params := []string{"price_cents", "stock", "name", "status", "created_at"}
	args := map[string]any{
		"price_cents": int64(1250),
		"stock":       4,
		"name":        "Enamel Mug",
		"status":      productStatus("active"),
		"created_at":  time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}

	tests := []struct {
		name string
		expr string
		want string
	}{
		{"arithmetic", "price_cents * stock", "5000"},
		{"money builtin", "money(price_cents * stock)", "$50.00"},
		{"money currency", `money(price_cents, currency="EUR")`, "€12.50"},
		{"conditional", `"low" if stock < 5 else "ok"`, "low"},
		{"string methods", "name.upper()", "ENAMEL MUG"},
		{"truncate", "truncate(name, 6)", "Enamel…"},
		{"percent", "percent(stock, 16)", "25%"},
		{"time as text", "created_at[:10]", "2024-03-01"},
		{"coalesce", `coalesce(None, "", status)`, "active"},
		{"none renders empty", "None", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog, err := env.Compile(tt.name, tt.expr, params)
			require.NoError(t, err)
			got, err := prog.EvalString(args)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProgram_MissingArgsAreNone(t *testing.T) {
	prog, err := NewEnv().Compile("stock", `"n/a" if stock == None else stock`, []string{"stock"})
	require.NoError(t, err)
	got, err := prog.EvalString(nil)
	require.NoError(t, err)
	assert.Equal(t, "n/a", got)
}

func TestEnv_Compile_Errors(t *testing.T) {
	env := NewEnv()
	tests := []struct {
		name   string
		expr   string
		params []string
	}{
		{"empty", "  ", nil},
		{"syntax", "price *", []string{"price"}},
		{"undefined name", "cost * 2", []string{"price"}},
		{"bad parameter", "1", []string{"unit-price"}},
		{"statement list", "1, 2", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.Compile(tt.name, tt.expr, tt.params)
			assert.Error(t, err)
		})
	}
}

func TestProgram_RuntimeError(t *testing.T) {
	prog, err := NewEnv().Compile("ratio", "a // b", []string{"a", "b"})
	require.NoError(t, err)

	_, err = prog.Eval(map[string]any{"a": 1, "b": 0})
	var evalErr *EvalError
	require.True(t, errors.As(err, &evalErr))
	assert.Equal(t, "ratio", evalErr.Name)
	assert.Contains(t, err.Error(), "division by zero")
}

func TestProgram_StepLimit(t *testing.T) {
	env := NewEnv(WithMaxSteps(1000))
	prog, err := env.Compile("spin", "len([x for x in range(n)])", []string{"n"})
	require.NoError(t, err)

	got, err := prog.EvalString(map[string]any{"n": 10})
	require.NoError(t, err)
	assert.Equal(t, "10", got)

	_, err = prog.Eval(map[string]any{"n": 1_000_000})
	assert.Error(t, err)

	// The limit applies per evaluation, not per thread lifetime.
	got, err = prog.EvalString(map[string]any{"n": 10})
	require.NoError(t, err)
	assert.Equal(t, "10", got)
}

func TestWithGlobals(t *testing.T) {
	env := NewEnv(WithGlobals(starlark.StringDict{"currency": starlark.String("GBP")}))
	prog, err := env.Compile("total", "money(cents, currency)", []string{"cents"})
	require.NoError(t, err)
	got, err := prog.EvalString(map[string]any{"cents": 999})
	require.NoError(t, err)
	assert.Equal(t, "£9.99", got)
	assert.True(t, env.Globals().Has("money"))
}

func TestProgram_Concurrent(t *testing.T) {
	prog, err := NewEnv().Compile("double", "n * 2", []string{"n"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]any, 16)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], _ = prog.Eval(map[string]any{"n": i})
		}()
	}
	wg.Wait()
	for i, r := range results {
		assert.Equal(t, int64(i*2), r)
	}
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "$0.05", FormatMoney(5, "usd"))
	assert.Equal(t, "-£12.00", FormatMoney(-1200, "GBP"))
	assert.Equal(t, "3.10 CHF", FormatMoney(310, "CHF"))
}
