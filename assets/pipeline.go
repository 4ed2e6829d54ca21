package assets

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

var ErrNoLoader = errors.New("assets: no loader for reference")

// Loader fetches references it recognises.
type Loader interface {
	Test(ref string) bool
	Load(ctx context.Context, ref string) ([]byte, error)
}

// Resolver turns a Source into file contents. Pipeline and Cache
// implement it.
type Resolver interface {
	Load(ctx context.Context, src Source) ([]byte, error)
}

// Priority orders loaders within a Pipeline. Higher runs first.
type Priority int

const (
	PriorityLow    Priority = -1
	PriorityNormal Priority = 0
	PriorityHigh   Priority = 1
)

type registration struct {
	loader   Loader
	priority Priority
}

// Pipeline dispatches references to the first loader that accepts them.
type Pipeline struct {
	mu      sync.RWMutex
	loaders []registration
}

// NewPipeline returns an empty pipeline.
func NewPipeline() *Pipeline { return &Pipeline{} }

// Register adds l. Loaders of equal priority keep registration order.
func (p *Pipeline) Register(l Loader, prio Priority) {
	if l == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loaders = append(p.loaders, registration{loader: l, priority: prio})
	sort.SliceStable(p.loaders, func(i, j int) bool {
		return p.loaders[i].priority > p.loaders[j].priority
	})
}

// Load returns byte sources unchanged and resolves references through the
// registered loaders.
func (p *Pipeline) Load(ctx context.Context, src Source) ([]byte, error) {
	if src.IsBytes() {
		return src.Bytes(), nil
	}
	ref := src.Ref()
	l := p.loaderFor(ref)
	if l == nil {
		return nil, fmt.Errorf("assets: load %s: %w", ref, ErrNoLoader)
	}
	b, err := l.Load(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("assets: load %s: %w", ref, err)
	}
	return b, nil
}

func (p *Pipeline) loaderFor(ref string) Loader {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, r := range p.loaders {
		if r.loader.Test(ref) {
			return r.loader
		}
	}
	return nil
}

var (
	defaultOnce     sync.Once
	defaultPipeline *Pipeline
)

// Default returns the process pipeline with RiveLoader registered at high
// priority.
func Default() *Pipeline {
	defaultOnce.Do(func() {
		defaultPipeline = NewPipeline()
		defaultPipeline.Register(&RiveLoader{FS: Embedded()}, PriorityHigh)
	})
	return defaultPipeline
}

// Load resolves src through Default.
func Load(ctx context.Context, src Source) ([]byte, error) {
	return Default().Load(ctx, src)
}
