// Package sprite binds an animation file to a scene node. A Sprite owns
// its drawing surface, render target and texture, runs a frame loop on the
// runtime scheduler, and forwards pointer input to active state machines.
//
// A Sprite is not safe for concurrent use. Loading happens on a background
// goroutine; its result is applied by Poll on the caller's goroutine.
package sprite

import (
	"context"
	"errors"
	"math"

	"go.uber.org/zap"

	"github.com/qvajs/ebiten-rive/assets"
	"github.com/qvajs/ebiten-rive/rive"
	"github.com/qvajs/ebiten-rive/scene"
)

// ErrDestroyed is reported when a sprite is destroyed before its load
// completed.
var ErrDestroyed = errors.New("sprite: destroyed before load completed")

// Initial surface size before an artboard is bound.
const initialSize = 100

type loadResult struct {
	rt   rive.Runtime
	file rive.File
	err  error
}

// Sprite is an animated scene node.
type Sprite struct {
	opts Options
	log  *zap.Logger

	node    *scene.Node
	texture *scene.Texture
	surface *rive.Surface
	handles []scene.Handle

	rt       rive.Runtime
	file     rive.File
	renderer *rive.Renderer
	artboard rive.Artboard
	aligned  *rive.Mat2D

	animations    []rive.LinearAnimationInstance
	stateMachines []rive.StateMachineInstance
	inputs        map[string]rive.Input

	fit       rive.Fit
	align     rive.Alignment
	maxWidth  float64
	maxHeight float64

	enabled  bool
	frame    rive.FrameID
	lastTime float64
	hasLast  bool

	loadCh    chan loadResult
	cancel    context.CancelFunc
	ready     chan struct{}
	done      chan struct{}
	err       error
	settled   bool
	destroyed bool
}

// New creates the sprite and starts loading opts.Asset in the background.
// Call Poll every tick to apply the load result.
func New(ctx context.Context, opts Options) *Sprite {
	s := newSprite(opts)
	ctx, s.cancel = context.WithCancel(ctx)
	s.loadCh = make(chan loadResult, 1)
	go func() {
		s.loadCh <- s.fetch(ctx)
	}()
	return s
}

// Load creates the sprite and loads it synchronously.
func Load(ctx context.Context, opts Options) (*Sprite, error) {
	s := newSprite(opts)
	s.apply(s.fetch(ctx))
	if s.err != nil {
		err := s.err
		s.Destroy()
		return nil, err
	}
	return s, nil
}

func newSprite(opts Options) *Sprite {
	log := opts.Logger
	if log == nil {
		log = rive.Logger()
	}
	s := &Sprite{
		opts:      opts,
		log:       log.With(zap.String("asset", opts.Asset.String())),
		node:      scene.NewNode("sprite"),
		surface:   rive.NewSurface(initialSize, initialSize),
		inputs:    map[string]rive.Input{},
		fit:       opts.Fit,
		align:     opts.Alignment,
		maxWidth:  opts.MaxWidth,
		maxHeight: opts.MaxHeight,
		ready:     make(chan struct{}),
		done:      make(chan struct{}),
	}
	s.texture = scene.NewTexture(s.surface)
	s.node.SetTexture(s.texture)
	if opts.Interactive {
		s.bindEvents()
	}
	return s
}

// fetch resolves the asset, the runtime and the file. It runs off the
// caller's goroutine and touches no sprite state besides opts.
func (s *Sprite) fetch(ctx context.Context) loadResult {
	resolver := s.opts.Assets
	if resolver == nil {
		resolver = assets.Default()
	}
	data, err := resolver.Load(ctx, s.opts.Asset)
	if err != nil {
		return loadResult{err: err}
	}

	rt := s.opts.Runtime
	if rt == nil {
		if rt, err = rive.Acquire(ctx); err != nil {
			return loadResult{err: err}
		}
	}

	f, err := rt.Load(ctx, data)
	if err != nil {
		return loadResult{err: err}
	}
	return loadResult{rt: rt, file: f}
}

// Poll applies a finished background load. It reports whether a result
// was applied during this call.
func (s *Sprite) Poll() bool {
	if s.loadCh == nil {
		return false
	}
	select {
	case res := <-s.loadCh:
		s.loadCh = nil
		s.apply(res)
		return true
	default:
		return false
	}
}

func (s *Sprite) apply(res loadResult) {
	if s.destroyed {
		s.discard(res)
		return
	}
	if res.err != nil {
		s.log.Error("load failed", zap.Error(res.err))
		s.settle(res.err)
		if s.opts.OnError != nil {
			s.opts.OnError(res.err)
		}
		return
	}

	s.rt = res.rt
	s.file = res.file
	s.renderer = s.rt.MakeRenderer(s.surface)

	s.LoadArtboard(s.opts.Artboard)
	s.LoadStateMachines(s.opts.StateMachines...)
	s.PlayAnimations(s.opts.Animations...)
	if s.opts.AutoPlay {
		s.Enable()
	} else {
		s.schedule()
	}
	s.log.Debug("loaded",
		zap.String("artboard", s.ArtboardName()),
		zap.Strings("state_machines", s.StateMachines()),
		zap.Strings("animations", s.Animations()))

	if s.opts.OnReady != nil {
		s.opts.OnReady(s.rt)
	}
	close(s.ready)
	s.settle(nil)
}

// discard releases the result of a load that finished after Destroy.
func (s *Sprite) discard(res loadResult) {
	if res.file != nil {
		res.file.Delete()
	}
	s.settle(ErrDestroyed)
}

func (s *Sprite) settle(err error) {
	if s.settled {
		return
	}
	s.settled = true
	s.err = err
	close(s.done)
}

// Ready is closed once the sprite loaded and OnReady ran.
func (s *Sprite) Ready() <-chan struct{} { return s.ready }

// Done is closed once loading finished, successfully or not.
func (s *Sprite) Done() <-chan struct{} { return s.done }

// Err returns the load failure. It is only valid after Done is closed.
func (s *Sprite) Err() error { return s.err }

func (s *Sprite) Node() *scene.Node       { return s.node }
func (s *Sprite) Texture() *scene.Texture { return s.texture }
func (s *Sprite) Surface() *rive.Surface  { return s.surface }

// Runtime returns the runtime once loaded.
func (s *Sprite) Runtime() rive.Runtime { return s.rt }

// File returns the loaded file, or nil.
func (s *Sprite) File() rive.File { return s.file }

// Artboard returns the bound artboard, or nil.
func (s *Sprite) Artboard() rive.Artboard { return s.artboard }

// ArtboardName returns the bound artboard name, or "".
func (s *Sprite) ArtboardName() string {
	if s.artboard == nil {
		return ""
	}
	return s.artboard.Name()
}

// AlignedTransform returns the last computed fit/alignment transform.
func (s *Sprite) AlignedTransform() (rive.Mat2D, bool) {
	if s.aligned == nil {
		return rive.Identity(), false
	}
	return *s.aligned, true
}

func (s *Sprite) Fit() rive.Fit             { return s.fit }
func (s *Sprite) Alignment() rive.Alignment { return s.align }

// SetFit changes the fit policy and recomputes the layout.
func (s *Sprite) SetFit(f rive.Fit) {
	s.fit = f
	s.UpdateSize()
}

// SetAlignment changes the alignment and recomputes the layout.
func (s *Sprite) SetAlignment(a rive.Alignment) {
	s.align = a
	s.UpdateSize()
}

// SetMaxSize overrides the surface size. Zero falls back to the artboard
// size for that axis.
func (s *Sprite) SetMaxSize(w, h float64) {
	s.maxWidth, s.maxHeight = w, h
	s.UpdateSize()
}

// UpdateSize resizes the surface to the frame size and recomputes the
// aligned transform. It is a no-op until an artboard is bound.
func (s *Sprite) UpdateSize() {
	if s.artboard == nil || s.renderer == nil || s.rt == nil {
		return
	}
	bounds := s.artboard.Bounds()
	w, h := s.maxWidth, s.maxHeight
	if w == 0 {
		w = bounds.Width()
	}
	if h == 0 {
		h = bounds.Height()
	}
	frame := rive.AABB{MaxX: w, MaxY: h}

	if err := s.surface.Resize(int(math.Ceil(w)), int(math.Ceil(h))); err != nil {
		s.log.Warn("resize surface", zap.Float64("width", w), zap.Float64("height", h), zap.Error(err))
	}
	aligned := s.rt.ComputeAlignment(s.fit, s.align, frame, bounds)
	s.aligned = &aligned
	s.renderer.Align(s.fit, s.align, frame, bounds)
	s.texture.MarkDirty()
}

// AvailableArtboards lists the artboard names of the file.
func (s *Sprite) AvailableArtboards() []string {
	if s.file == nil {
		return nil
	}
	n := s.file.ArtboardCount()
	names := make([]string, 0, n)
	for i := 0; i < n; i++ {
		a, ok := s.file.ArtboardByIndex(i)
		if !ok {
			continue
		}
		names = append(names, a.Name())
		a.Delete()
	}
	return names
}

// AvailableStateMachines lists the state machine names of the artboard.
func (s *Sprite) AvailableStateMachines() []string {
	if s.artboard == nil {
		return nil
	}
	n := s.artboard.StateMachineCount()
	names := make([]string, 0, n)
	for i := 0; i < n; i++ {
		if m, ok := s.artboard.StateMachineByIndex(i); ok {
			names = append(names, m.Name())
		}
	}
	return names
}

// AvailableAnimations lists the animation names of the artboard.
func (s *Sprite) AvailableAnimations() []string {
	if s.artboard == nil {
		return nil
	}
	n := s.artboard.AnimationCount()
	names := make([]string, 0, n)
	for i := 0; i < n; i++ {
		if a, ok := s.artboard.AnimationByIndex(i); ok {
			names = append(names, a.Name())
		}
	}
	return names
}

// Destroy stops the loop and releases every native handle in order: state
// machines, animations, artboard, renderer, file. The node is released
// last. A load still in flight is cancelled and its file deleted when it
// arrives; Done closes with ErrDestroyed. Repeated calls are no-ops.
func (s *Sprite) Destroy() {
	if s.destroyed {
		return
	}
	s.destroyed = true
	if s.cancel != nil {
		s.cancel()
	}
	if ch := s.loadCh; ch != nil {
		// Nothing polls a destroyed sprite, so the pending result is
		// released here or by the goroutine once it arrives.
		s.loadCh = nil
		select {
		case res := <-ch:
			s.discard(res)
		default:
			go func() { s.discard(<-ch) }()
		}
	}

	s.Disable()
	if s.frame != 0 && s.rt != nil {
		s.rt.CancelAnimationFrame(s.frame)
		s.frame = 0
	}
	for _, m := range s.stateMachines {
		m.Delete()
	}
	s.stateMachines = nil
	for _, a := range s.animations {
		a.Delete()
	}
	s.animations = nil
	clear(s.inputs)
	if s.artboard != nil {
		s.artboard.Delete()
		s.artboard = nil
	}
	if s.renderer != nil {
		s.renderer.Delete()
		s.renderer = nil
	}
	if s.file != nil {
		s.file.Delete()
		s.file = nil
	}

	for _, h := range s.handles {
		h.Remove()
	}
	s.handles = nil
	s.node.Destroy()
	s.texture.Dispose()
	if err := s.surface.Close(); err != nil {
		s.log.Debug("close surface", zap.Error(err))
	}
}

// Destroyed reports whether Destroy was called.
func (s *Sprite) Destroyed() bool { return s.destroyed }
