// Package rive describes the external vector-animation runtime: the file,
// artboard, animation and state-machine handles it hands out, the renderer
// it draws through, and its own animation-frame scheduler.
//
// Every handle is owned natively by the runtime and must be released with
// Delete exactly once. Implementations live in rive/wasm (wazero) and
// rive/rivetest (in-memory fake).
package rive

import "context"

// Runtime is a loaded animation runtime.
type Runtime interface {
	// Load parses an animation file.
	Load(ctx context.Context, data []byte) (File, error)
	// MakeRenderer creates a render target drawing into surface.
	MakeRenderer(surface *Surface) *Renderer
	// ComputeAlignment maps content into frame.
	ComputeAlignment(fit Fit, align Alignment, frame, content AABB) Mat2D
	// RequestAnimationFrame queues cb on the runtime scheduler.
	RequestAnimationFrame(cb FrameCallback) FrameID
	// CancelAnimationFrame drops a queued callback.
	CancelAnimationFrame(id FrameID)
	// RunFrames drains the scheduler with the given timestamp in milliseconds.
	RunFrames(now float64) int
	Close(ctx context.Context) error
}

// File is a parsed animation file.
type File interface {
	ArtboardCount() int
	// ArtboardByIndex, ArtboardByName and DefaultArtboard return a new
	// artboard instance owned by the caller.
	ArtboardByIndex(i int) (Artboard, bool)
	ArtboardByName(name string) (Artboard, bool)
	DefaultArtboard() (Artboard, bool)
	Delete()
}

// Artboard is a drawable canvas instance.
type Artboard interface {
	Name() string
	Bounds() AABB

	AnimationCount() int
	AnimationByIndex(i int) (Animation, bool)
	AnimationByName(name string) (Animation, bool)
	StateMachineCount() int
	StateMachineByIndex(i int) (StateMachine, bool)
	StateMachineByName(name string) (StateMachine, bool)

	NewAnimationInstance(a Animation) LinearAnimationInstance
	NewStateMachineInstance(m StateMachine) StateMachineInstance

	Advance(seconds float64) bool
	Draw(r *Renderer)
	Delete()
}

// Animation is a linear animation definition.
type Animation interface {
	Name() string
}

// StateMachine is a state machine definition.
type StateMachine interface {
	Name() string
}

// LinearAnimationInstance is a playback cursor over an animation.
type LinearAnimationInstance interface {
	Name() string
	Time() float64
	Advance(seconds float64) bool
	// Apply writes the current pose to the artboard at the given mix.
	Apply(mix float64)
	Delete()
}

// StateMachineInstance executes a state machine over an artboard.
type StateMachineInstance interface {
	Name() string
	Advance(seconds float64) bool

	InputCount() int
	Input(i int) (Input, bool)

	// StateChangedCount reports the transitions of the last Advance.
	StateChangedCount() int
	StateChangedNameByIndex(i int) string

	PointerDown(x, y float64)
	PointerUp(x, y float64)
	PointerMove(x, y float64)

	Delete()
}

// InputKind discriminates state-machine inputs.
type InputKind uint8

const (
	InputNumber InputKind = iota + 1
	InputBool
	InputTrigger
)

func (k InputKind) String() string {
	switch k {
	case InputNumber:
		return "number"
	case InputBool:
		return "bool"
	case InputTrigger:
		return "trigger"
	default:
		return "unknown"
	}
}

// Input is a named control exposed by a state machine instance. Only the
// accessors matching Kind have an effect.
type Input interface {
	Name() string
	Kind() InputKind
	Bool() bool
	SetBool(v bool)
	Number() float64
	SetNumber(v float64)
	Fire()
}
