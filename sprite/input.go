package sprite

import (
	"sort"

	"github.com/qvajs/ebiten-rive/rive"
)

// Value is the current value of a state machine input. Only the field
// matching Kind is meaningful; triggers carry no value.
type Value struct {
	Kind   rive.InputKind
	Bool   bool
	Number float64
}

func BoolValue(v bool) Value      { return Value{Kind: rive.InputBool, Bool: v} }
func NumberValue(v float64) Value { return Value{Kind: rive.InputNumber, Number: v} }

// rebuildInputs indexes the inputs of every active state machine by name.
// Later machines shadow earlier ones on name collisions.
func (s *Sprite) rebuildInputs() {
	clear(s.inputs)
	for _, m := range s.stateMachines {
		for i := 0; i < m.InputCount(); i++ {
			in, ok := m.Input(i)
			if !ok {
				continue
			}
			s.inputs[in.Name()] = in
		}
	}
}

// Inputs returns the input names, sorted.
func (s *Sprite) Inputs() []string {
	names := make([]string, 0, len(s.inputs))
	for name := range s.inputs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// InputKind returns the kind of the named input.
func (s *Sprite) InputKind(name string) (rive.InputKind, bool) {
	in, ok := s.inputs[name]
	if !ok {
		return 0, false
	}
	return in.Kind(), true
}

// InputValue returns the value of the named input. Triggers report their
// kind only.
func (s *Sprite) InputValue(name string) (Value, bool) {
	in, ok := s.inputs[name]
	if !ok {
		return Value{}, false
	}
	switch in.Kind() {
	case rive.InputBool:
		return BoolValue(in.Bool()), true
	case rive.InputNumber:
		return NumberValue(in.Number()), true
	default:
		return Value{Kind: in.Kind()}, true
	}
}

// SetInput assigns v to the named input. Missing inputs, triggers and
// kind mismatches are ignored.
func (s *Sprite) SetInput(name string, v Value) {
	in, ok := s.inputs[name]
	if !ok || in.Kind() != v.Kind {
		return
	}
	switch v.Kind {
	case rive.InputBool:
		in.SetBool(v.Bool)
	case rive.InputNumber:
		in.SetNumber(v.Number)
	}
}

func (s *Sprite) SetBool(name string, v bool)      { s.SetInput(name, BoolValue(v)) }
func (s *Sprite) SetNumber(name string, v float64) { s.SetInput(name, NumberValue(v)) }

// FireTrigger fires the named input if it is a trigger.
func (s *Sprite) FireTrigger(name string) {
	in, ok := s.inputs[name]
	if !ok || in.Kind() != rive.InputTrigger {
		return
	}
	in.Fire()
}
