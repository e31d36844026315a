package starlark

import (
	"fmt"
	"maps"
	"strings"
	"unicode"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// DefaultMaxSteps bounds the work of one expression evaluation.
const DefaultMaxSteps = 100_000

// Env holds the globals shared by every column expression and compiles
// expressions into programs.
type Env struct {
	globals  starlark.StringDict
	threads  *threads
	maxSteps uint64
}

// EnvOption configures an Env.
type EnvOption func(*Env)

// WithGlobals adds globals next to the builtins. Builtins with the same name
// are replaced.
func WithGlobals(globals starlark.StringDict) EnvOption {
	return func(e *Env) {
		maps.Copy(e.globals, globals)
	}
}

// WithMaxSteps overrides DefaultMaxSteps.
func WithMaxSteps(n uint64) EnvOption {
	return func(e *Env) {
		e.maxSteps = n
	}
}

// NewEnv creates an environment with the Predeclared builtins.
func NewEnv(opts ...EnvOption) *Env {
	e := &Env{
		globals:  Predeclared(),
		threads:  newThreads(),
		maxSteps: DefaultMaxSteps,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.globals.Freeze()
	return e
}

// Globals returns the environment's globals.
func (e *Env) Globals() starlark.StringDict {
	return e.globals
}

// Program is a compiled expression over a fixed list of named parameters.
type Program struct {
	Name   string
	Expr   string
	params []string
	fn     *starlark.Function
	env    *Env
}

// Compile turns expr into a program whose free variables are params. The
// expression is wrapped in a lambda so it is parsed and resolved once.
func (e *Env) Compile(name, expr string, params []string) (*Program, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, &EvalError{Name: name, Expr: expr, Message: "empty expression"}
	}
	for _, p := range params {
		if !isIdent(p) {
			return nil, fmt.Errorf("%s: %q is not a valid parameter name", name, p)
		}
	}

	src := "lambda " + strings.Join(params, ", ") + ": " + expr
	thread := e.threads.get(name, 0)
	v, err := starlark.EvalOptions(&syntax.FileOptions{}, thread, name, src, e.globals)
	e.threads.put(thread, err != nil)
	if err != nil {
		return nil, &EvalError{Name: name, Expr: expr, Message: err.Error()}
	}
	fn, ok := v.(*starlark.Function)
	if !ok {
		return nil, &EvalError{Name: name, Expr: expr, Message: "not an expression"}
	}
	fn.Freeze()
	return &Program{Name: name, Expr: expr, params: params, fn: fn, env: e}, nil
}

// Params returns the parameter names in call order.
func (p *Program) Params() []string { return p.params }

// Eval runs the program with args keyed by parameter name. Missing args are
// None.
func (p *Program) Eval(args map[string]any) (any, error) {
	tuple := make(starlark.Tuple, len(p.params))
	for i, name := range p.params {
		v, err := toValue(args[name])
		if err != nil {
			return nil, &EvalError{Name: p.Name, Expr: p.Expr, Message: fmt.Sprintf("argument %s: %v", name, err)}
		}
		tuple[i] = v
	}

	thread := p.env.threads.get(p.Name, p.env.maxSteps)
	result, err := starlark.Call(thread, p.fn, tuple, nil)
	p.env.threads.put(thread, err != nil)
	if err != nil {
		return nil, &EvalError{Name: p.Name, Expr: p.Expr, Message: err.Error()}
	}
	return fromValue(result)
}

// EvalString runs the program and renders the result as text. None renders
// as the empty string.
func (p *Program) EvalString(args map[string]any) (string, error) {
	v, err := p.Eval(args)
	if err != nil {
		return "", err
	}
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	default:
		return fmt.Sprint(x), nil
	}
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return false
	}
	return true
}

// EvalError represents an error while compiling or evaluating an expression.
type EvalError struct {
	Name    string
	Expr    string
	Message string
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("%s: error evaluating %q: %s", e.Name, e.Expr, e.Message)
}
