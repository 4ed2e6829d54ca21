package sprite

import (
	"go.uber.org/zap"

	"github.com/qvajs/ebiten-rive/assets"
	"github.com/qvajs/ebiten-rive/rive"
)

// Options configures a Sprite.
type Options struct {
	// Asset is the animation file, as a reference or raw bytes.
	Asset assets.Source

	Debug       bool
	AutoPlay    bool
	Interactive bool

	// Artboard selects an artboard by name. Empty uses the default.
	Artboard string
	// Animations to play. Empty plays the first animation when no state
	// machine is active.
	Animations []string
	// StateMachines to run. Empty runs the first state machine.
	StateMachines []string

	// OnStateChange receives the states one machine entered during a tick.
	OnStateChange func(states []string)
	// OnReady runs on the Poll caller once the initial selection is done.
	OnReady func(rt rive.Runtime)
	// OnError receives a load failure.
	OnError func(err error)

	// Runtime bypasses the shared handle from rive.Acquire.
	Runtime rive.Runtime
	// Assets resolves Asset. Nil uses assets.Default.
	Assets assets.Resolver

	Fit       rive.Fit
	Alignment rive.Alignment
	// MaxWidth and MaxHeight override the artboard size when non-zero.
	MaxWidth, MaxHeight float64

	Logger *zap.Logger
}
