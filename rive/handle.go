package rive

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultWASMPath is where the runtime binary is looked up when none is
// configured: a rive.wasm built for the flat ABI described in package
// rive/wasm, next to the working directory. The Emscripten builds published
// for browsers do not implement that ABI.
const DefaultWASMPath = "rive.wasm"

var (
	ErrNoFactory = errors.New("rive: no runtime factory registered")
	ErrClosed    = errors.New("rive: runtime closed")
)

// Factory creates a runtime from the binary located at wasmPath.
type Factory func(ctx context.Context, wasmPath string) (Runtime, error)

var (
	handleMu sync.Mutex
	wasmPath = DefaultWASMPath
	factory  Factory
	shared   Runtime
	inits    singleflight.Group

	// generation advances on Shutdown so initializations started before it
	// do not publish their runtime.
	generation uint64
)

// SetWASMPath sets where the runtime binary is fetched from. It only
// affects runtimes created after the call.
func SetWASMPath(path string) {
	handleMu.Lock()
	wasmPath = path
	handleMu.Unlock()
}

// WASMPath returns the configured runtime binary location.
func WASMPath() string {
	handleMu.Lock()
	defer handleMu.Unlock()
	return wasmPath
}

// SetFactory installs the runtime factory used by Acquire.
func SetFactory(f Factory) {
	handleMu.Lock()
	factory = f
	handleMu.Unlock()
}

// Loaded reports whether a shared runtime is cached.
func Loaded() bool {
	handleMu.Lock()
	defer handleMu.Unlock()
	return shared != nil
}

// Acquire returns the process-wide runtime, creating it on first use.
// Concurrent first callers share one initialization. A failed
// initialization is not cached.
func Acquire(ctx context.Context) (Runtime, error) {
	handleMu.Lock()
	if shared != nil {
		rt := shared
		handleMu.Unlock()
		return rt, nil
	}
	f, path, gen := factory, wasmPath, generation
	handleMu.Unlock()

	if f == nil {
		return nil, ErrNoFactory
	}

	// Initialization outlives any single caller's cancellation.
	initCtx := context.WithoutCancel(ctx)
	ch := inits.DoChan(fmt.Sprintf("runtime-%d", gen), func() (any, error) {
		handleMu.Lock()
		if shared != nil {
			rt := shared
			handleMu.Unlock()
			return rt, nil
		}
		handleMu.Unlock()

		Logger().Info("loading runtime", zap.String("wasm_path", path))
		rt, err := f(initCtx, path)
		if err != nil {
			return nil, fmt.Errorf("rive: init runtime: %w", err)
		}

		handleMu.Lock()
		if generation != gen {
			handleMu.Unlock()
			if err := rt.Close(initCtx); err != nil {
				Logger().Warn("close abandoned runtime", zap.Error(err))
			}
			return nil, fmt.Errorf("rive: shut down during initialization: %w", ErrClosed)
		}
		shared = rt
		handleMu.Unlock()
		return rt, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(Runtime), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Shutdown closes the shared runtime. The next Acquire creates a new one.
// An initialization still in flight is closed when it completes and its
// callers receive ErrClosed.
func Shutdown(ctx context.Context) error {
	handleMu.Lock()
	generation++
	rt := shared
	shared = nil
	handleMu.Unlock()
	if rt == nil {
		return nil
	}
	return rt.Close(ctx)
}
