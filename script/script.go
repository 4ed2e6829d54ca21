// Package script runs tengo hooks when a sprite's state machines change
// state.
package script

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"

	"github.com/qvajs/ebiten-rive/rive"
	"github.com/qvajs/ebiten-rive/sprite"
)

// Target is what a hook may drive. *sprite.Sprite satisfies it.
type Target interface {
	SetBool(name string, v bool)
	SetNumber(name string, v float64)
	FireTrigger(name string)
	InputValue(name string) (sprite.Value, bool)
	PlayAnimations(names ...string)
	StopAnimation(name string)
}

var _ Target = (*sprite.Sprite)(nil)

// Hook is a compiled script. Run is safe for concurrent use.
type Hook struct {
	path     string
	mu       sync.Mutex
	compiled *tengo.Compiled
}

// Compile builds a hook from source.
func Compile(src []byte) (*Hook, error) {
	return compile("<inline>", src)
}

// Load reads and compiles the script at path.
func Load(path string) (*Hook, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("script: load %s: %w", path, err)
	}
	return compile(path, src)
}

func compile(path string, src []byte) (*Hook, error) {
	s := tengo.NewScript(src)
	_ = s.Add("states", []any{})
	_ = s.Add("sprite", map[string]any{})
	s.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := s.Compile()
	if err != nil {
		return nil, fmt.Errorf("script: compile %s: %w", path, err)
	}
	return &Hook{path: path, compiled: compiled}, nil
}

// Path is the file the hook was loaded from.
func (h *Hook) Path() string { return h.path }

// Run executes the hook with the states entered during one tick.
func (h *Hook) Run(target Target, states []string) error {
	if h == nil || h.compiled == nil {
		return fmt.Errorf("script: nil hook")
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	names := make([]tengo.Object, 0, len(states))
	for _, s := range states {
		names = append(names, &tengo.String{Value: s})
	}
	if err := h.compiled.Set("states", &tengo.ImmutableArray{Value: names}); err != nil {
		return fmt.Errorf("script: %s: %w", h.path, err)
	}
	if err := h.compiled.Set("sprite", spriteModule(target)); err != nil {
		return fmt.Errorf("script: %s: %w", h.path, err)
	}
	if err := h.compiled.Run(); err != nil {
		return fmt.Errorf("script: run %s: %w", h.path, err)
	}
	return nil
}

// Get returns a global as of the last run, or nil when undefined.
func (h *Hook) Get(name string) any {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.compiled.IsDefined(name) {
		return nil
	}
	return h.compiled.Get(name).Value()
}

func spriteModule(target Target) *tengo.ImmutableMap {
	values := map[string]tengo.Object{}

	values["set_bool"] = &tengo.UserFunction{Name: "set_bool", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if target == nil || len(args) < 2 {
			return tengo.FalseValue, nil
		}
		name := objectAsString(args[0])
		if kind, ok := target.InputValue(name); !ok || kind.Kind != rive.InputBool {
			return tengo.FalseValue, nil
		}
		target.SetBool(name, !args[1].IsFalsy())
		return tengo.TrueValue, nil
	}}

	values["set_number"] = &tengo.UserFunction{Name: "set_number", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if target == nil || len(args) < 2 {
			return tengo.FalseValue, nil
		}
		name := objectAsString(args[0])
		if v, ok := target.InputValue(name); !ok || v.Kind != rive.InputNumber {
			return tengo.FalseValue, nil
		}
		n, ok := tengo.ToFloat64(args[1])
		if !ok {
			return tengo.FalseValue, nil
		}
		target.SetNumber(name, n)
		return tengo.TrueValue, nil
	}}

	values["fire"] = &tengo.UserFunction{Name: "fire", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if target == nil || len(args) < 1 {
			return tengo.FalseValue, nil
		}
		name := objectAsString(args[0])
		if v, ok := target.InputValue(name); !ok || v.Kind != rive.InputTrigger {
			return tengo.FalseValue, nil
		}
		target.FireTrigger(name)
		return tengo.TrueValue, nil
	}}

	values["get"] = &tengo.UserFunction{Name: "get", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if target == nil || len(args) < 1 {
			return tengo.UndefinedValue, nil
		}
		v, ok := target.InputValue(objectAsString(args[0]))
		if !ok {
			return tengo.UndefinedValue, nil
		}
		switch v.Kind {
		case rive.InputBool:
			if v.Bool {
				return tengo.TrueValue, nil
			}
			return tengo.FalseValue, nil
		case rive.InputNumber:
			return &tengo.Float{Value: v.Number}, nil
		default:
			return tengo.UndefinedValue, nil
		}
	}}

	values["play"] = &tengo.UserFunction{Name: "play", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if target == nil || len(args) < 1 {
			return tengo.FalseValue, nil
		}
		names := make([]string, 0, len(args))
		for _, a := range args {
			if n := objectAsString(a); n != "" {
				names = append(names, n)
			}
		}
		if len(names) == 0 {
			return tengo.FalseValue, nil
		}
		target.PlayAnimations(names...)
		return tengo.TrueValue, nil
	}}

	values["stop"] = &tengo.UserFunction{Name: "stop", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if target == nil || len(args) < 1 {
			return tengo.FalseValue, nil
		}
		target.StopAnimation(objectAsString(args[0]))
		return tengo.TrueValue, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

func objectAsString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	switch v := obj.(type) {
	case *tengo.String:
		return strings.TrimSpace(v.Value)
	default:
		return strings.TrimSpace(strings.Trim(v.String(), "\""))
	}
}
