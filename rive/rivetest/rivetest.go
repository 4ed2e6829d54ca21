// Package rivetest provides an in-memory rive.Runtime for tests and
// headless runs. Files are described by FileSpec values instead of binary
// assets, and every native handle records its deletion.
package rivetest

import (
	"context"
	"encoding/json"
	"fmt"
	"image/color"
	"sync"

	"github.com/qvajs/ebiten-rive/rive"
)

// FileSpec describes a fake animation file.
type FileSpec struct {
	Artboards []ArtboardSpec `json:"artboards"`
}

// ArtboardSpec describes one artboard. The first artboard is the default.
type ArtboardSpec struct {
	Name          string        `json:"name"`
	Width         float64       `json:"width"`
	Height        float64       `json:"height"`
	Animations    []string      `json:"animations"`
	StateMachines []MachineSpec `json:"state_machines"`
}

// MachineSpec describes a state machine and its inputs.
type MachineSpec struct {
	Name   string      `json:"name"`
	Inputs []InputSpec `json:"inputs"`
}

// InputSpec describes a state machine input.
type InputSpec struct {
	Name   string         `json:"name"`
	Kind   rive.InputKind `json:"kind"`
	Bool   bool           `json:"bool"`
	Number float64        `json:"number"`
}

// Encode serializes spec so it can be handed to Runtime.Load as asset bytes.
func Encode(spec FileSpec) []byte {
	b, _ := json.Marshal(spec)
	return b
}

// Runtime is a fake rive.Runtime.
type Runtime struct {
	mu        sync.Mutex
	fallback  *FileSpec
	scheduler rive.FrameScheduler
	events    []string
	closed    bool
	nextID    int

	files     []*File
	artboards []*Artboard
	machines  []*StateMachineInstance
	anims     []*AnimationInstance
	renderers []*rive.Renderer
}

var _ rive.Runtime = (*Runtime)(nil)

// New returns a runtime. When fallback is non-nil, Load returns it for any
// bytes that are not an encoded FileSpec.
func New(fallback *FileSpec) *Runtime {
	return &Runtime{fallback: fallback}
}

// Factory adapts New to rive.Factory.
func Factory(fallback *FileSpec) rive.Factory {
	return func(context.Context, string) (rive.Runtime, error) {
		return New(fallback), nil
	}
}

func (r *Runtime) record(format string, args ...any) {
	r.mu.Lock()
	r.events = append(r.events, fmt.Sprintf(format, args...))
	r.mu.Unlock()
}

func (r *Runtime) id() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	return r.nextID
}

// Events returns the recorded lifecycle events in order, e.g.
// "delete artboard main#2".
func (r *Runtime) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

// ResetEvents clears the recorded events.
func (r *Runtime) ResetEvents() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}

func (r *Runtime) Load(ctx context.Context, data []byte) (rive.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var spec FileSpec
	if err := json.Unmarshal(data, &spec); err != nil || len(spec.Artboards) == 0 {
		if r.fallback == nil {
			return nil, fmt.Errorf("rivetest: unrecognized file data (%d bytes)", len(data))
		}
		spec = *r.fallback
	}
	f := &File{rt: r, spec: spec, id: r.id()}
	r.mu.Lock()
	r.files = append(r.files, f)
	r.mu.Unlock()
	r.record("load file#%d", f.id)
	return f, nil
}

func (r *Runtime) MakeRenderer(surface *rive.Surface) *rive.Renderer {
	rr := rive.NewRenderer(surface)
	id := r.id()
	rr.OnDelete(func() { r.record("delete renderer#%d", id) })
	r.mu.Lock()
	r.renderers = append(r.renderers, rr)
	r.mu.Unlock()
	r.record("make renderer#%d", id)
	return rr
}

func (r *Runtime) ComputeAlignment(fit rive.Fit, align rive.Alignment, frame, content rive.AABB) rive.Mat2D {
	return rive.ComputeAlignment(fit, align, frame, content)
}

func (r *Runtime) RequestAnimationFrame(cb rive.FrameCallback) rive.FrameID {
	return r.scheduler.Request(cb)
}

func (r *Runtime) CancelAnimationFrame(id rive.FrameID) {
	r.scheduler.Cancel(id)
}

func (r *Runtime) RunFrames(now float64) int {
	return r.scheduler.Run(now)
}

// PendingFrames reports queued scheduler callbacks.
func (r *Runtime) PendingFrames() int {
	return r.scheduler.Pending()
}

func (r *Runtime) Close(context.Context) error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	r.record("close runtime")
	return nil
}

// Closed reports whether Close was called.
func (r *Runtime) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// Files returns every file loaded so far.
func (r *Runtime) Files() []*File {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*File(nil), r.files...)
}

// Artboards returns every artboard instance created so far.
func (r *Runtime) Artboards() []*Artboard {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*Artboard(nil), r.artboards...)
}

// StateMachines returns every state machine instance created so far.
func (r *Runtime) StateMachines() []*StateMachineInstance {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*StateMachineInstance(nil), r.machines...)
}

// Animations returns every animation instance created so far.
func (r *Runtime) Animations() []*AnimationInstance {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*AnimationInstance(nil), r.anims...)
}

// Renderers returns every renderer created so far.
func (r *Runtime) Renderers() []*rive.Renderer {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*rive.Renderer(nil), r.renderers...)
}

// File is a fake rive.File.
type File struct {
	rt      *Runtime
	spec    FileSpec
	id      int
	Deletes int
}

func (f *File) ArtboardCount() int { return len(f.spec.Artboards) }

func (f *File) ArtboardByIndex(i int) (rive.Artboard, bool) {
	if i < 0 || i >= len(f.spec.Artboards) {
		return nil, false
	}
	return f.instance(f.spec.Artboards[i]), true
}

func (f *File) ArtboardByName(name string) (rive.Artboard, bool) {
	for _, a := range f.spec.Artboards {
		if a.Name == name {
			return f.instance(a), true
		}
	}
	return nil, false
}

func (f *File) DefaultArtboard() (rive.Artboard, bool) {
	return f.ArtboardByIndex(0)
}

func (f *File) instance(spec ArtboardSpec) *Artboard {
	a := &Artboard{rt: f.rt, spec: spec, id: f.rt.id()}
	f.rt.mu.Lock()
	f.rt.artboards = append(f.rt.artboards, a)
	f.rt.mu.Unlock()
	return a
}

func (f *File) Delete() {
	f.Deletes++
	f.rt.record("delete file#%d", f.id)
}

type definition string

func (d definition) Name() string { return string(d) }

// Artboard is a fake rive.Artboard. Draw fills its bounds.
type Artboard struct {
	rt      *Runtime
	spec    ArtboardSpec
	id      int
	Elapsed float64
	Draws   int
	Deletes int
}

func (a *Artboard) Name() string { return a.spec.Name }

func (a *Artboard) Bounds() rive.AABB {
	return rive.AABB{MaxX: a.spec.Width, MaxY: a.spec.Height}
}

func (a *Artboard) AnimationCount() int { return len(a.spec.Animations) }

func (a *Artboard) AnimationByIndex(i int) (rive.Animation, bool) {
	if i < 0 || i >= len(a.spec.Animations) {
		return nil, false
	}
	return definition(a.spec.Animations[i]), true
}

func (a *Artboard) AnimationByName(name string) (rive.Animation, bool) {
	for _, n := range a.spec.Animations {
		if n == name {
			return definition(n), true
		}
	}
	return nil, false
}

func (a *Artboard) StateMachineCount() int { return len(a.spec.StateMachines) }

func (a *Artboard) StateMachineByIndex(i int) (rive.StateMachine, bool) {
	if i < 0 || i >= len(a.spec.StateMachines) {
		return nil, false
	}
	return definition(a.spec.StateMachines[i].Name), true
}

func (a *Artboard) StateMachineByName(name string) (rive.StateMachine, bool) {
	for _, m := range a.spec.StateMachines {
		if m.Name == name {
			return definition(m.Name), true
		}
	}
	return nil, false
}

func (a *Artboard) NewAnimationInstance(def rive.Animation) rive.LinearAnimationInstance {
	inst := &AnimationInstance{rt: a.rt, name: def.Name(), id: a.rt.id()}
	a.rt.mu.Lock()
	a.rt.anims = append(a.rt.anims, inst)
	a.rt.mu.Unlock()
	a.rt.record("new animation %s#%d", inst.name, inst.id)
	return inst
}

func (a *Artboard) NewStateMachineInstance(def rive.StateMachine) rive.StateMachineInstance {
	inst := &StateMachineInstance{rt: a.rt, name: def.Name(), id: a.rt.id()}
	for _, m := range a.spec.StateMachines {
		if m.Name != def.Name() {
			continue
		}
		for _, in := range m.Inputs {
			inst.inputs = append(inst.inputs, &Input{spec: in, boolValue: in.Bool, number: in.Number})
		}
	}
	a.rt.mu.Lock()
	a.rt.machines = append(a.rt.machines, inst)
	a.rt.mu.Unlock()
	a.rt.record("new statemachine %s#%d", inst.name, inst.id)
	return inst
}

func (a *Artboard) Advance(seconds float64) bool {
	a.Elapsed += seconds
	return true
}

func (a *Artboard) Draw(r *rive.Renderer) {
	a.Draws++
	r.MoveTo(0, 0)
	r.LineTo(a.spec.Width, 0)
	r.LineTo(a.spec.Width, a.spec.Height)
	r.LineTo(0, a.spec.Height)
	r.Close()
	r.Fill(color.RGBA{R: 0x33, G: 0x99, B: 0xff, A: 0xff}, rive.FillNonZero)
}

func (a *Artboard) Delete() {
	a.Deletes++
	a.rt.record("delete artboard %s#%d", a.spec.Name, a.id)
}

// AnimationInstance is a fake rive.LinearAnimationInstance.
type AnimationInstance struct {
	rt      *Runtime
	name    string
	id      int
	time    float64
	LastMix float64
	Applies int
	Deletes int
}

func (a *AnimationInstance) Name() string  { return a.name }
func (a *AnimationInstance) Time() float64 { return a.time }

func (a *AnimationInstance) Advance(seconds float64) bool {
	a.time += seconds
	return true
}

func (a *AnimationInstance) Apply(mix float64) {
	a.LastMix = mix
	a.Applies++
}

func (a *AnimationInstance) Delete() {
	a.Deletes++
	a.rt.record("delete animation %s#%d", a.name, a.id)
}

// PointerCall records a forwarded pointer event.
type PointerCall struct {
	Kind string
	X, Y float64
}

// StateMachineInstance is a fake rive.StateMachineInstance. Queue state
// names with QueueStateChanges; they are reported by the next Advance.
type StateMachineInstance struct {
	rt       *Runtime
	name     string
	id       int
	inputs   []*Input
	queued   []string
	changed  []string
	Elapsed  float64
	Pointers []PointerCall
	Deletes  int
}

func (m *StateMachineInstance) Name() string { return m.name }

// QueueStateChanges makes the next Advance report names as transitioned.
func (m *StateMachineInstance) QueueStateChanges(names ...string) {
	m.queued = append(m.queued, names...)
}

func (m *StateMachineInstance) Advance(seconds float64) bool {
	m.Elapsed += seconds
	m.changed = m.queued
	m.queued = nil
	return true
}

func (m *StateMachineInstance) InputCount() int { return len(m.inputs) }

func (m *StateMachineInstance) Input(i int) (rive.Input, bool) {
	if i < 0 || i >= len(m.inputs) {
		return nil, false
	}
	return m.inputs[i], true
}

// FakeInput returns the concrete input by name.
func (m *StateMachineInstance) FakeInput(name string) *Input {
	for _, in := range m.inputs {
		if in.spec.Name == name {
			return in
		}
	}
	return nil
}

func (m *StateMachineInstance) StateChangedCount() int { return len(m.changed) }

func (m *StateMachineInstance) StateChangedNameByIndex(i int) string {
	if i < 0 || i >= len(m.changed) {
		return ""
	}
	return m.changed[i]
}

func (m *StateMachineInstance) PointerDown(x, y float64) {
	m.Pointers = append(m.Pointers, PointerCall{Kind: "down", X: x, Y: y})
}

func (m *StateMachineInstance) PointerUp(x, y float64) {
	m.Pointers = append(m.Pointers, PointerCall{Kind: "up", X: x, Y: y})
}

func (m *StateMachineInstance) PointerMove(x, y float64) {
	m.Pointers = append(m.Pointers, PointerCall{Kind: "move", X: x, Y: y})
}

func (m *StateMachineInstance) Delete() {
	m.Deletes++
	m.rt.record("delete statemachine %s#%d", m.name, m.id)
}

// Input is a fake rive.Input. Accessors not matching the kind are ignored.
type Input struct {
	spec      InputSpec
	boolValue bool
	number    float64
	Fires     int
	Sets      int
}

func (in *Input) Name() string         { return in.spec.Name }
func (in *Input) Kind() rive.InputKind { return in.spec.Kind }

func (in *Input) Bool() bool {
	return in.spec.Kind == rive.InputBool && in.boolValue
}

func (in *Input) SetBool(v bool) {
	if in.spec.Kind != rive.InputBool {
		return
	}
	in.boolValue = v
	in.Sets++
}

func (in *Input) Number() float64 {
	if in.spec.Kind != rive.InputNumber {
		return 0
	}
	return in.number
}

func (in *Input) SetNumber(v float64) {
	if in.spec.Kind != rive.InputNumber {
		return
	}
	in.number = v
	in.Sets++
}

func (in *Input) Fire() {
	if in.spec.Kind != rive.InputTrigger {
		return
	}
	in.Fires++
}
