package wasm

import (
	"github.com/tetratelabs/wazero/api"

	"github.com/qvajs/ebiten-rive/rive"
)

func f64(v float64) uint64 { return api.EncodeF64(v) }

type file struct {
	rt      *Runtime
	h       uint32
	deleted bool
}

func (f *file) ArtboardCount() int {
	return int(f.rt.callU32(fnFileArtboardCount, uint64(f.h)))
}

func (f *file) ArtboardByIndex(i int) (rive.Artboard, bool) {
	if i < 0 {
		return nil, false
	}
	return f.artboard(f.rt.callU32(fnFileArtboardByIndex, uint64(f.h), uint64(i)))
}

func (f *file) ArtboardByName(name string) (rive.Artboard, bool) {
	return f.artboard(f.rt.callName(fnFileArtboardByName, f.h, name))
}

func (f *file) DefaultArtboard() (rive.Artboard, bool) {
	return f.artboard(f.rt.callU32(fnFileArtboardDefault, uint64(f.h)))
}

func (f *file) artboard(h uint32) (rive.Artboard, bool) {
	if h == 0 {
		return nil, false
	}
	return &artboard{rt: f.rt, h: h}, true
}

func (f *file) Delete() {
	if f.deleted {
		return
	}
	f.deleted = true
	f.rt.call(fnFileDelete, uint64(f.h))
}

type artboard struct {
	rt      *Runtime
	h       uint32
	deleted bool
}

func (a *artboard) Name() string { return a.rt.callString(fnArtboardName, uint64(a.h)) }

func (a *artboard) Bounds() rive.AABB { return a.rt.readBounds(a.h) }

func (a *artboard) AnimationCount() int {
	return int(a.rt.callU32(fnArtboardAnimationCount, uint64(a.h)))
}

func (a *artboard) AnimationByIndex(i int) (rive.Animation, bool) {
	if i < 0 {
		return nil, false
	}
	return a.animation(a.rt.callU32(fnArtboardAnimationByIndex, uint64(a.h), uint64(i)))
}

func (a *artboard) AnimationByName(name string) (rive.Animation, bool) {
	return a.animation(a.rt.callName(fnArtboardAnimationByName, a.h, name))
}

func (a *artboard) animation(h uint32) (rive.Animation, bool) {
	if h == 0 {
		return nil, false
	}
	return &definition{rt: a.rt, h: h, nameFn: fnAnimationName}, true
}

func (a *artboard) StateMachineCount() int {
	return int(a.rt.callU32(fnArtboardStateMachineCount, uint64(a.h)))
}

func (a *artboard) StateMachineByIndex(i int) (rive.StateMachine, bool) {
	if i < 0 {
		return nil, false
	}
	return a.stateMachine(a.rt.callU32(fnArtboardStateMachineByIndex, uint64(a.h), uint64(i)))
}

func (a *artboard) StateMachineByName(name string) (rive.StateMachine, bool) {
	return a.stateMachine(a.rt.callName(fnArtboardStateMachineByName, a.h, name))
}

func (a *artboard) stateMachine(h uint32) (rive.StateMachine, bool) {
	if h == 0 {
		return nil, false
	}
	return &definition{rt: a.rt, h: h, nameFn: fnStateMachineName}, true
}

func (a *artboard) NewAnimationInstance(def rive.Animation) rive.LinearAnimationInstance {
	d, ok := def.(*definition)
	if !ok || d.rt != a.rt {
		return nil
	}
	h := a.rt.callU32(fnAnimationInstanceNew, uint64(d.h), uint64(a.h))
	if h == 0 {
		return nil
	}
	return &animationInstance{rt: a.rt, h: h, name: d.Name()}
}

func (a *artboard) NewStateMachineInstance(def rive.StateMachine) rive.StateMachineInstance {
	d, ok := def.(*definition)
	if !ok || d.rt != a.rt {
		return nil
	}
	h := a.rt.callU32(fnStateMachineInstanceNew, uint64(d.h), uint64(a.h))
	if h == 0 {
		return nil
	}
	return &stateMachineInstance{rt: a.rt, h: h, name: d.Name()}
}

func (a *artboard) Advance(seconds float64) bool {
	return a.rt.callU32(fnArtboardAdvance, uint64(a.h), f64(seconds)) != 0
}

func (a *artboard) Draw(r *rive.Renderer) {
	if r.Deleted() {
		return
	}
	a.rt.draw(a.h, r)
}

func (a *artboard) Delete() {
	if a.deleted {
		return
	}
	a.deleted = true
	a.rt.call(fnArtboardDelete, uint64(a.h))
}

// definition is an animation or state machine owned by its artboard.
type definition struct {
	rt     *Runtime
	h      uint32
	nameFn string
}

func (d *definition) Name() string { return d.rt.callString(d.nameFn, uint64(d.h)) }

type animationInstance struct {
	rt      *Runtime
	h       uint32
	name    string
	deleted bool
}

func (a *animationInstance) Name() string { return a.name }

func (a *animationInstance) Time() float64 {
	return a.rt.callF64(fnAnimationInstanceTime, uint64(a.h))
}

func (a *animationInstance) Advance(seconds float64) bool {
	return a.rt.callU32(fnAnimationInstanceAdvance, uint64(a.h), f64(seconds)) != 0
}

func (a *animationInstance) Apply(mix float64) {
	a.rt.call(fnAnimationInstanceApply, uint64(a.h), f64(mix))
}

func (a *animationInstance) Delete() {
	if a.deleted {
		return
	}
	a.deleted = true
	a.rt.call(fnAnimationInstanceDelete, uint64(a.h))
}

type stateMachineInstance struct {
	rt      *Runtime
	h       uint32
	name    string
	deleted bool
}

func (m *stateMachineInstance) Name() string { return m.name }

func (m *stateMachineInstance) Advance(seconds float64) bool {
	return m.rt.callU32(fnStateMachineInstanceAdvance, uint64(m.h), f64(seconds)) != 0
}

func (m *stateMachineInstance) InputCount() int {
	return int(m.rt.callU32(fnStateMachineInputCount, uint64(m.h)))
}

func (m *stateMachineInstance) Input(i int) (rive.Input, bool) {
	if i < 0 {
		return nil, false
	}
	h := m.rt.callU32(fnStateMachineInput, uint64(m.h), uint64(i))
	if h == 0 {
		return nil, false
	}
	kind := inputKind(m.rt.callU32(fnInputType, uint64(h)))
	if kind == 0 {
		return nil, false
	}
	return &input{
		rt:   m.rt,
		h:    h,
		name: m.rt.callString(fnInputName, uint64(h)),
		kind: kind,
	}, true
}

func (m *stateMachineInstance) StateChangedCount() int {
	return int(m.rt.callU32(fnStateMachineChangedCount, uint64(m.h)))
}

func (m *stateMachineInstance) StateChangedNameByIndex(i int) string {
	return m.rt.callString(fnStateMachineChangedName, uint64(m.h), uint64(i))
}

func (m *stateMachineInstance) PointerDown(x, y float64) {
	m.rt.call(fnStateMachinePointerDown, uint64(m.h), f64(x), f64(y))
}

func (m *stateMachineInstance) PointerUp(x, y float64) {
	m.rt.call(fnStateMachinePointerUp, uint64(m.h), f64(x), f64(y))
}

func (m *stateMachineInstance) PointerMove(x, y float64) {
	m.rt.call(fnStateMachinePointerMove, uint64(m.h), f64(x), f64(y))
}

func (m *stateMachineInstance) Delete() {
	if m.deleted {
		return
	}
	m.deleted = true
	m.rt.call(fnStateMachineInstanceDelete, uint64(m.h))
}

// input is owned by its state machine instance and has no Delete.
type input struct {
	rt   *Runtime
	h    uint32
	name string
	kind rive.InputKind
}

func (in *input) Name() string         { return in.name }
func (in *input) Kind() rive.InputKind { return in.kind }

func (in *input) Bool() bool {
	if in.kind != rive.InputBool {
		return false
	}
	return in.rt.callU32(fnInputGetBool, uint64(in.h)) != 0
}

func (in *input) SetBool(v bool) {
	if in.kind != rive.InputBool {
		return
	}
	var b uint64
	if v {
		b = 1
	}
	in.rt.call(fnInputSetBool, uint64(in.h), b)
}

func (in *input) Number() float64 {
	if in.kind != rive.InputNumber {
		return 0
	}
	return in.rt.callF64(fnInputGetNumber, uint64(in.h))
}

func (in *input) SetNumber(v float64) {
	if in.kind != rive.InputNumber {
		return
	}
	in.rt.call(fnInputSetNumber, uint64(in.h), f64(v))
}

func (in *input) Fire() {
	if in.kind != rive.InputTrigger {
		return
	}
	in.rt.call(fnInputFire, uint64(in.h))
}
