package main

import (
	"context"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"time"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"go.uber.org/zap"

	"github.com/qvajs/ebiten-rive/assets"
	"github.com/qvajs/ebiten-rive/config"
	"github.com/qvajs/ebiten-rive/rive"
	"github.com/qvajs/ebiten-rive/scene"
	"github.com/qvajs/ebiten-rive/script"
	"github.com/qvajs/ebiten-rive/sprite"
)

type Game struct {
	ctx    context.Context
	cancel context.CancelFunc
	log    *zap.Logger

	cfg        *config.Config
	configPath string
	scene      *scene.Scene
	cache      *assets.Cache
	watcher    *config.Watcher

	entries []*entry
	start   time.Time
	frames  int

	// inspector is non-nil while the panel is open.
	inspector *ebitenui.UI
}

// inspectorRefresh is how many frames pass between inspector rebuilds.
const inspectorRefresh = 30

// entry is one configured sprite and its optional state-change hook.
type entry struct {
	spec   config.SpriteSpec
	sprite *sprite.Sprite
	hook   *script.Hook
	remove func()
}

func NewGame(ctx context.Context, cfg *config.Config, configPath string, watch bool, logger *zap.Logger) (*Game, error) {
	ctx, cancel := context.WithCancel(ctx)
	g := &Game{
		ctx:        ctx,
		cancel:     cancel,
		log:        logger,
		cfg:        cfg,
		configPath: configPath,
		scene:      scene.New(),
		cache:      assets.NewCache(nil),
		start:      time.Now(),
	}
	g.build()

	if watch {
		dirs := cfg.WatchDirs()
		if len(dirs) == 0 {
			logger.Warn("nothing on disk to watch")
		} else {
			w, err := config.NewWatcher(dirs...)
			if err != nil {
				cancel()
				return nil, fmt.Errorf("riveplayer: watch: %w", err)
			}
			g.watcher = w
			logger.Info("watching for changes", zap.Strings("dirs", dirs))
		}
	}
	return g, nil
}

func (g *Game) build() {
	for _, spec := range g.cfg.Sprites {
		g.entries = append(g.entries, g.addSprite(spec))
	}
}

func (g *Game) addSprite(spec config.SpriteSpec) *entry {
	e := &entry{spec: spec}
	if spec.Script != "" {
		h, err := script.Load(g.cfg.Resolve(spec.Script))
		if err != nil {
			g.log.Error("script failed to load", zap.String("sprite", spec.Name), zap.Error(err))
		} else {
			e.hook = h
		}
	}

	e.sprite = sprite.New(g.ctx, sprite.Options{
		Asset:         assets.FromRef(g.assetRef(spec.Asset)),
		Debug:         spec.Debug,
		AutoPlay:      spec.AutoPlay,
		Interactive:   spec.Interactive,
		Artboard:      spec.Artboard,
		Animations:    spec.Animation,
		StateMachines: spec.StateMachine,
		OnStateChange: func(states []string) { g.runHook(e, states) },
		Assets:        g.cache,
		Fit:           rive.Fit(spec.Fit),
		Alignment:     rive.Alignment(spec.Alignment),
		MaxWidth:      spec.MaxWidth,
		MaxHeight:     spec.MaxHeight,
		Logger:        g.log.With(zap.String("sprite", spec.Name)),
	})

	n := e.sprite.Node()
	n.Name = spec.Name
	n.X, n.Y = spec.X, spec.Y
	g.scene.Root().AddChild(n)
	e.remove = g.scene.AddUpdater(func() { e.sprite.Poll() })
	return e
}

func (g *Game) removeSprite(e *entry) {
	e.remove()
	e.sprite.Destroy()
}

func (g *Game) runHook(e *entry, states []string) {
	if e.hook == nil {
		return
	}
	if err := e.hook.Run(e.sprite, states); err != nil {
		g.log.Error("script failed", zap.String("sprite", e.spec.Name), zap.Error(err))
	}
}

// assetRef prefers files on disk over the bundled assets.
func (g *Game) assetRef(p string) string {
	resolved := g.cfg.Resolve(p)
	if _, err := os.Stat(resolved); err == nil {
		if abs, err := filepath.Abs(resolved); err == nil {
			return "file://" + filepath.ToSlash(abs)
		}
	}
	return resolved
}

func (g *Game) Update() error {
	g.frames++

	now := float64(time.Since(g.start).Microseconds()) / 1000
	seen := map[rive.Runtime]bool{}
	for _, e := range g.entries {
		rt := e.sprite.Runtime()
		if rt == nil || seen[rt] {
			continue
		}
		seen[rt] = true
		rt.RunFrames(now)
	}

	g.scene.Update()
	g.drainWatcher()
	g.updateInspector()
	return nil
}

// updateInspector toggles the panel on Tab and rebuilds it while open so
// it follows loads and reloads.
func (g *Game) updateInspector() {
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		if g.inspector != nil {
			g.inspector = nil
			return
		}
		g.inspector = NewInspectorUI(inspectorLines(g.entries))
	} else if g.inspector != nil && g.frames%inspectorRefresh == 0 {
		g.inspector = NewInspectorUI(inspectorLines(g.entries))
	}
	if g.inspector != nil {
		g.inspector.Update()
	}
}

func (g *Game) drainWatcher() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case p, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				return
			}
			g.reload(p)
		case err, ok := <-g.watcher.Errors:
			if ok {
				g.log.Warn("watch error", zap.Error(err))
			}
		default:
			return
		}
	}
}

func (g *Game) reload(changed string) {
	switch {
	case config.IsConfigFile(changed):
		if g.configPath == "" || !sameFile(changed, g.configPath) {
			return
		}
		cfg, err := config.Load(g.configPath)
		if err != nil {
			g.log.Error("config reload failed", zap.Error(err))
			return
		}
		for _, e := range g.entries {
			g.removeSprite(e)
		}
		g.entries = nil
		g.cfg = cfg
		g.build()
		g.log.Info("config reloaded", zap.Int("sprites", len(cfg.Sprites)))

	case config.IsScriptFile(changed):
		for _, e := range g.entries {
			if e.spec.Script == "" || !sameFile(changed, g.cfg.Resolve(e.spec.Script)) {
				continue
			}
			h, err := script.Load(changed)
			if err != nil {
				g.log.Error("script reload failed", zap.String("sprite", e.spec.Name), zap.Error(err))
				continue
			}
			e.hook = h
			g.log.Info("script reloaded", zap.String("sprite", e.spec.Name))
		}

	default:
		for i, e := range g.entries {
			if !sameFile(changed, g.cfg.Resolve(e.spec.Asset)) {
				continue
			}
			g.cache.Invalidate(g.assetRef(e.spec.Asset))
			g.removeSprite(e)
			g.entries[i] = g.addSprite(e.spec)
			g.log.Info("asset reloaded", zap.String("sprite", e.spec.Name))
		}
	}
}

func sameFile(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}

func (g *Game) Draw(screen *ebiten.Image) {
	if bg := g.cfg.Window.Background.Color; bg != nil {
		screen.Fill(bg)
	} else {
		screen.Fill(color.Black)
	}
	g.scene.Draw(screen)
	if g.inspector != nil {
		g.inspector.Draw(screen)
	}
	ebitenutil.DebugPrint(screen, fmt.Sprintf("Frames: %d    FPS: %.2f    Tab: inspector", g.frames, ebiten.ActualFPS()))
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

// Close destroys every sprite and releases the shared runtime.
func (g *Game) Close() {
	g.cancel()
	if g.watcher != nil {
		_ = g.watcher.Close()
	}
	for _, e := range g.entries {
		g.removeSprite(e)
	}
	g.entries = nil
	if err := rive.Shutdown(context.Background()); err != nil {
		g.log.Warn("runtime shutdown", zap.Error(err))
	}
}
