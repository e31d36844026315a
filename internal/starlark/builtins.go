package starlark

import (
	"fmt"
	"math"
	"strings"

	"go.starlark.net/starlark"
)

var currencySymbols = map[string]string{"USD": "$", "EUR": "€", "GBP": "£"}

// Predeclared returns the builtins available to every column expression:
//
//	money(cents, currency="USD")   -> "$12.34"
//	percent(part, whole, digits=0) -> "42%"
//	truncate(s, n)                 -> s cut to n runes with an ellipsis
//	coalesce(*values)              -> the first value that is not None or ""
func Predeclared() starlark.StringDict {
	return starlark.StringDict{
		"money":    starlark.NewBuiltin("money", money),
		"percent":  starlark.NewBuiltin("percent", percent),
		"truncate": starlark.NewBuiltin("truncate", truncate),
		"coalesce": starlark.NewBuiltin("coalesce", coalesce),
	}
}

// FormatMoney renders cents with the currency symbol, or the code as a suffix
// when the symbol is unknown.
func FormatMoney(cents int64, currency string) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	amount := fmt.Sprintf("%d.%02d", cents/100, cents%100)
	if sym, ok := currencySymbols[strings.ToUpper(currency)]; ok {
		return sign + sym + amount
	}
	return sign + amount + " " + currency
}

func money(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var cents starlark.Value
	currency := "USD"
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "cents", &cents, "currency?", &currency); err != nil {
		return nil, err
	}
	switch c := cents.(type) {
	case starlark.Int:
		n, ok := c.Int64()
		if !ok {
			return nil, fmt.Errorf("%s: amount out of range", b.Name())
		}
		return starlark.String(FormatMoney(n, currency)), nil
	case starlark.Float:
		return starlark.String(FormatMoney(int64(math.Round(float64(c))), currency)), nil
	case starlark.NoneType:
		return starlark.String(""), nil
	}
	return nil, fmt.Errorf("%s: got %s, want int", b.Name(), cents.Type())
}

func percent(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var part, whole starlark.Value
	digits := 0
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "part", &part, "whole", &whole, "digits?", &digits); err != nil {
		return nil, err
	}
	p, ok1 := starlark.AsFloat(part)
	w, ok2 := starlark.AsFloat(whole)
	if !ok1 || !ok2 {
		return nil, fmt.Errorf("%s: arguments must be numbers", b.Name())
	}
	if w == 0 {
		return starlark.String(""), nil
	}
	return starlark.String(fmt.Sprintf("%.*f%%", digits, p/w*100)), nil
}

func truncate(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var s string
	var n int
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "s", &s, "n", &n); err != nil {
		return nil, err
	}
	r := []rune(s)
	if n < 1 || len(r) <= n {
		return starlark.String(s), nil
	}
	return starlark.String(string(r[:n]) + "…"), nil
}

func coalesce(_ *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, _ []starlark.Tuple) (starlark.Value, error) {
	for _, v := range args {
		if v == starlark.None {
			continue
		}
		if s, ok := v.(starlark.String); ok && s == "" {
			continue
		}
		return v, nil
	}
	return starlark.None, nil
}
