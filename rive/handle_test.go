package rive_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/qvajs/ebiten-rive/rive"
	"github.com/qvajs/ebiten-rive/rive/rivetest"
)

func resetHandle(t *testing.T) {
	t.Helper()
	_ = rive.Shutdown(context.Background())
	rive.SetFactory(nil)
	rive.SetWASMPath(rive.DefaultWASMPath)
	t.Cleanup(func() {
		_ = rive.Shutdown(context.Background())
		rive.SetFactory(nil)
		rive.SetWASMPath(rive.DefaultWASMPath)
	})
}

func TestAcquireWithoutFactory(t *testing.T) {
	resetHandle(t)
	if _, err := rive.Acquire(context.Background()); !errors.Is(err, rive.ErrNoFactory) {
		t.Fatalf("expected ErrNoFactory, got %v", err)
	}
}

func TestAcquireConvergesOnOneInit(t *testing.T) {
	resetHandle(t)

	var calls atomic.Int32
	release := make(chan struct{})
	rive.SetFactory(func(ctx context.Context, path string) (rive.Runtime, error) {
		calls.Add(1)
		<-release
		return rivetest.New(nil), nil
	})

	const n = 8
	var wg sync.WaitGroup
	results := make([]rive.Runtime, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = rive.Acquire(context.Background())
		}(i)
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if calls.Load() != 1 {
		t.Fatalf("expected one initialization, got %d", calls.Load())
	}
	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("acquire %d failed: %v", i, errs[i])
		}
		if results[i] != results[0] {
			t.Fatalf("acquire %d returned a different runtime", i)
		}
	}

	again, err := rive.Acquire(context.Background())
	if err != nil || again != results[0] {
		t.Fatalf("cached runtime expected, got %v, %v", again, err)
	}
	if calls.Load() != 1 {
		t.Fatalf("cached acquire should not re-initialize")
	}
}

func TestAcquirePassesWASMPath(t *testing.T) {
	resetHandle(t)
	var got string
	rive.SetWASMPath("file:///opt/rive.wasm")
	rive.SetFactory(func(ctx context.Context, path string) (rive.Runtime, error) {
		got = path
		return rivetest.New(nil), nil
	})
	if _, err := rive.Acquire(context.Background()); err != nil {
		t.Fatalf("acquire failed: %v", err)
	}
	if got != "file:///opt/rive.wasm" {
		t.Fatalf("expected configured wasm path, got %q", got)
	}
	if rive.WASMPath() != "file:///opt/rive.wasm" {
		t.Fatalf("WASMPath() = %q", rive.WASMPath())
	}
}

func TestAcquireFailureIsNotCached(t *testing.T) {
	resetHandle(t)
	boom := errors.New("boom")
	fail := true
	rive.SetFactory(func(ctx context.Context, path string) (rive.Runtime, error) {
		if fail {
			return nil, boom
		}
		return rivetest.New(nil), nil
	})

	if _, err := rive.Acquire(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped boom, got %v", err)
	}
	if rive.Loaded() {
		t.Fatalf("failed init should not cache a runtime")
	}

	fail = false
	if _, err := rive.Acquire(context.Background()); err != nil {
		t.Fatalf("second acquire failed: %v", err)
	}
	if !rive.Loaded() {
		t.Fatalf("expected cached runtime")
	}
}

func TestShutdownClosesRuntime(t *testing.T) {
	resetHandle(t)
	fake := rivetest.New(nil)
	rive.SetFactory(func(context.Context, string) (rive.Runtime, error) { return fake, nil })

	if _, err := rive.Acquire(context.Background()); err != nil {
		t.Fatalf("acquire failed: %v", err)
	}
	if err := rive.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}
	if !fake.Closed() {
		t.Fatalf("runtime should be closed")
	}
	if rive.Loaded() {
		t.Fatalf("handle should be reset")
	}
	if err := rive.Shutdown(context.Background()); err != nil {
		t.Fatalf("second shutdown should be a no-op, got %v", err)
	}
}

func TestAcquireHonoursCallerContext(t *testing.T) {
	resetHandle(t)
	release := make(chan struct{})
	rive.SetFactory(func(ctx context.Context, path string) (rive.Runtime, error) {
		<-release
		return rivetest.New(nil), nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := rive.Acquire(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}

	// The abandoned initialization still completes for later callers.
	close(release)
	if _, err := rive.Acquire(context.Background()); err != nil {
		t.Fatalf("acquire after release failed: %v", err)
	}
	if !rive.Loaded() {
		t.Fatalf("expected runtime cached by the first initialization")
	}
}

func TestShutdownDuringInitialization(t *testing.T) {
	resetHandle(t)
	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	first := rivetest.New(nil)
	rive.SetFactory(func(ctx context.Context, path string) (rive.Runtime, error) {
		if calls.Add(1) == 1 {
			close(started)
			<-release
			return first, nil
		}
		return rivetest.New(nil), nil
	})

	errc := make(chan error, 1)
	go func() {
		_, err := rive.Acquire(context.Background())
		errc <- err
	}()

	<-started
	if err := rive.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}
	close(release)

	if err := <-errc; !errors.Is(err, rive.ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if !first.Closed() {
		t.Fatalf("runtime finished after shutdown should be closed")
	}
	if rive.Loaded() {
		t.Fatalf("runtime finished after shutdown should not be cached")
	}

	rt, err := rive.Acquire(context.Background())
	if err != nil {
		t.Fatalf("acquire after shutdown failed: %v", err)
	}
	if rt == rive.Runtime(first) || calls.Load() != 2 {
		t.Fatalf("expected a fresh runtime, calls=%d", calls.Load())
	}
}
