package wasm

import (
	"context"
	"fmt"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"go.uber.org/zap"

	"github.com/qvajs/ebiten-rive/assets"
	"github.com/qvajs/ebiten-rive/rive"
)

func init() {
	rive.SetFactory(Factory)
}

// Factory fetches the runtime binary at wasmPath and instantiates it.
func Factory(ctx context.Context, wasmPath string) (rive.Runtime, error) {
	data, err := assets.Fetch(ctx, wasmPath)
	if err != nil {
		return nil, fmt.Errorf("wasm: fetch runtime: %w", err)
	}
	return New(ctx, data)
}

// Runtime is a rive.Runtime backed by a wazero module instance. Guest
// calls are serialized.
type Runtime struct {
	mu    sync.Mutex
	ctx   context.Context
	wr    wazero.Runtime
	mod   api.Module
	funcs map[string]api.Function

	scheduler rive.FrameScheduler

	renderers    map[uint32]*rive.Renderer
	rendererIDs  map[*rive.Renderer]uint32
	nextRenderer uint32
	closed       bool
}

var _ rive.Runtime = (*Runtime)(nil)

// New compiles and instantiates the runtime binary. Modules that import
// anything besides WASI and the renderer host, or whose exports differ
// from the flat ABI, fail with ErrABIMismatch before they run.
func New(ctx context.Context, wasmBytes []byte) (*Runtime, error) {
	r := &Runtime{
		ctx:         context.WithoutCancel(ctx),
		wr:          wazero.NewRuntime(ctx),
		funcs:       make(map[string]api.Function, len(requiredExports)),
		renderers:   make(map[uint32]*rive.Renderer),
		rendererIDs: make(map[*rive.Renderer]uint32),
	}

	if _, err := wasi_snapshot_preview1.Instantiate(ctx, r.wr); err != nil {
		_ = r.wr.Close(ctx)
		return nil, fmt.Errorf("wasm: instantiate wasi: %w", err)
	}
	if err := r.instantiateRendererHost(ctx); err != nil {
		_ = r.wr.Close(ctx)
		return nil, fmt.Errorf("wasm: instantiate %s: %w", hostModule, err)
	}

	compiled, err := r.wr.CompileModule(ctx, wasmBytes)
	if err != nil {
		_ = r.wr.Close(ctx)
		return nil, fmt.Errorf("wasm: compile: %w", err)
	}
	if err := checkABI(compiled); err != nil {
		_ = r.wr.Close(ctx)
		return nil, err
	}

	cfg := wazero.NewModuleConfig().
		WithName("rive").
		WithStartFunctions("_initialize")
	mod, err := r.wr.InstantiateModule(ctx, compiled, cfg)
	if err != nil {
		_ = r.wr.Close(ctx)
		return nil, fmt.Errorf("wasm: instantiate: %w", err)
	}
	r.mod = mod

	for _, name := range requiredExports {
		r.funcs[name] = mod.ExportedFunction(name)
	}

	rive.Logger().Debug("runtime instantiated",
		zap.Int("bytes", len(wasmBytes)),
		zap.Uint32("memory", mod.Memory().Size()))
	return r, nil
}

func (r *Runtime) Close(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	return r.wr.Close(ctx)
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

func (r *Runtime) ComputeAlignment(fit rive.Fit, align rive.Alignment, frame, content rive.AABB) rive.Mat2D {
	return rive.ComputeAlignment(fit, align, frame, content)
}

func (r *Runtime) MakeRenderer(surface *rive.Surface) *rive.Renderer {
	rr := rive.NewRenderer(surface)

	r.mu.Lock()
	r.nextRenderer++
	id := r.nextRenderer
	r.renderers[id] = rr
	r.rendererIDs[rr] = id
	r.mu.Unlock()

	rr.OnDelete(func() {
		r.mu.Lock()
		delete(r.renderers, id)
		delete(r.rendererIDs, rr)
		r.mu.Unlock()
	})
	return rr
}

func (r *Runtime) Load(ctx context.Context, data []byte) (rive.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, rive.ErrClosed
	}

	var h uint32
	err := r.withBytesLocked(ctx, data, func(ptr, n uint32) error {
		res, err := r.funcs[fnFileLoad].Call(ctx, uint64(ptr), uint64(n))
		if err != nil {
			return err
		}
		h = uint32(res[0])
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("wasm: load file: %w", err)
	}
	if h == 0 {
		return nil, fmt.Errorf("wasm: load file: runtime rejected %d bytes", len(data))
	}
	return &file{rt: r, h: h}, nil
}

// call invokes a guest export. Failures are logged and yield nil.
func (r *Runtime) call(name string, args ...uint64) []uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.callLocked(name, args...)
}

func (r *Runtime) callLocked(name string, args ...uint64) []uint64 {
	if r.closed {
		return nil
	}
	res, err := r.funcs[name].Call(r.ctx, args...)
	if err != nil {
		rive.Logger().Warn("guest call failed", zap.String("export", name), zap.Error(err))
		return nil
	}
	return res
}

func (r *Runtime) callU32(name string, args ...uint64) uint32 {
	res := r.call(name, args...)
	if len(res) == 0 {
		return 0
	}
	return uint32(res[0])
}

func (r *Runtime) callF64(name string, args ...uint64) float64 {
	res := r.call(name, args...)
	if len(res) == 0 {
		return 0
	}
	return api.DecodeF64(res[0])
}

func (r *Runtime) callString(name string, args ...uint64) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := r.callLocked(name, args...)
	if len(res) == 0 {
		return ""
	}
	ptr, n := unpackString(res[0])
	if n == 0 {
		return ""
	}
	b, ok := r.mod.Memory().Read(ptr, n)
	if !ok {
		rive.Logger().Warn("guest string out of range",
			zap.String("export", name), zap.Uint32("ptr", ptr), zap.Uint32("len", n))
		return ""
	}
	return string(b)
}

// callName passes s to a guest export as (handle, ptr, len) and returns the
// resulting handle.
func (r *Runtime) callName(name string, h uint32, s string) uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return 0
	}
	var out uint32
	err := r.withBytesLocked(r.ctx, []byte(s), func(ptr, n uint32) error {
		res := r.callLocked(name, uint64(h), uint64(ptr), uint64(n))
		if len(res) > 0 {
			out = uint32(res[0])
		}
		return nil
	})
	if err != nil {
		rive.Logger().Warn("guest name call failed", zap.String("export", name), zap.Error(err))
	}
	return out
}

// withBytesLocked copies data into guest memory for the duration of fn.
func (r *Runtime) withBytesLocked(ctx context.Context, data []byte, fn func(ptr, n uint32) error) error {
	n := uint32(len(data))
	res, err := r.funcs[fnAlloc].Call(ctx, uint64(max(n, 1)))
	if err != nil {
		return fmt.Errorf("alloc %d: %w", n, err)
	}
	ptr := uint32(res[0])
	if ptr == 0 {
		return fmt.Errorf("alloc %d: out of memory", n)
	}
	defer func() {
		if _, err := r.funcs[fnFree].Call(ctx, uint64(ptr)); err != nil {
			rive.Logger().Warn("guest free failed", zap.Uint32("ptr", ptr), zap.Error(err))
		}
	}()
	if n > 0 && !r.mod.Memory().Write(ptr, data) {
		return fmt.Errorf("write %d bytes at %d: out of range", n, ptr)
	}
	return fn(ptr, n)
}

// readBounds asks the guest to write four f32 values and reads them back.
func (r *Runtime) readBounds(h uint32) rive.AABB {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return rive.AABB{}
	}
	var b rive.AABB
	err := r.withBytesLocked(r.ctx, make([]byte, 16), func(ptr, _ uint32) error {
		if res := r.callLocked(fnArtboardBounds, uint64(h), uint64(ptr)); res == nil {
			return fmt.Errorf("bounds call failed")
		}
		mem := r.mod.Memory()
		vals := [4]float64{}
		for i := range vals {
			v, ok := mem.ReadFloat32Le(ptr + uint32(i*4))
			if !ok {
				return fmt.Errorf("read bounds: out of range")
			}
			vals[i] = float64(v)
		}
		b = rive.AABB{MinX: vals[0], MinY: vals[1], MaxX: vals[2], MaxY: vals[3]}
		return nil
	})
	if err != nil {
		rive.Logger().Warn("artboard bounds failed", zap.Uint32("artboard", h), zap.Error(err))
	}
	return b
}

func (r *Runtime) draw(artboard uint32, rr *rive.Renderer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.rendererIDs[rr]
	if !ok {
		return
	}
	r.callLocked(fnArtboardDraw, uint64(artboard), uint64(id))
}
