// Command riveplayer shows animation files in an ebiten window.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"

	"github.com/qvajs/ebiten-rive/assets"
	"github.com/qvajs/ebiten-rive/config"
	"github.com/qvajs/ebiten-rive/rive"
	"github.com/qvajs/ebiten-rive/rive/rivetest"
	_ "github.com/qvajs/ebiten-rive/rive/wasm"
)

const demoAsset = "assets/demo.riv"

type flags struct {
	configPath   string
	asset        string
	artboard     string
	animation    string
	stateMachine string
	wasm         string
	debug        bool
	headless     bool
	watch        bool
	interactive  bool
}

func main() {
	var f flags
	flag.StringVar(&f.configPath, "config", "", "player config YAML")
	flag.StringVar(&f.asset, "asset", demoAsset, "animation file when no config is given (path or URL)")
	flag.StringVar(&f.artboard, "artboard", "", "artboard name")
	flag.StringVar(&f.animation, "animation", "", "comma-separated animations to play")
	flag.StringVar(&f.stateMachine, "state-machine", "", "comma-separated state machines to run")
	flag.StringVar(&f.wasm, "wasm", "", "runtime binary location (overrides the config)")
	flag.BoolVar(&f.debug, "debug", false, "enable debug logging and bounds overlay")
	flag.BoolVar(&f.headless, "headless", false, "use the in-memory runtime instead of WASM")
	flag.BoolVar(&f.watch, "watch", false, "reload assets, scripts and config on change")
	flag.BoolVar(&f.interactive, "interactive", true, "forward pointer events to state machines")
	flag.Parse()

	logger := newLogger(f.debug)
	defer func() { _ = logger.Sync() }()
	rive.SetLogger(logger)

	cfg, err := loadConfig(f)
	if err != nil {
		log.Fatal(err)
	}

	if cfg.WASMPath != "" {
		rive.SetWASMPath(cfg.WASMPath)
	}
	if cfg.Headless {
		fallback, err := demoSpec(context.Background())
		if err != nil {
			log.Fatal(err)
		}
		rive.SetFactory(rivetest.Factory(fallback))
		logger.Info("using in-memory runtime")
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowTitle(cfg.Window.Title)

	game, err := NewGame(context.Background(), cfg, f.configPath, f.watch, logger)
	if err != nil {
		log.Fatal(err)
	}
	defer game.Close()

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}

func newLogger(debug bool) *zap.Logger {
	var (
		l   *zap.Logger
		err error
	)
	if debug {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		return zap.NewNop()
	}
	return l
}

// loadConfig reads -config, or builds a single-sprite config from the
// other flags. Flags always override the file.
func loadConfig(f flags) (*config.Config, error) {
	var cfg *config.Config
	if f.configPath != "" {
		c, err := config.Load(f.configPath)
		if err != nil {
			return nil, err
		}
		cfg = c
	} else {
		c, err := config.Parse(nil)
		if err != nil {
			return nil, err
		}
		c.Sprites = []config.SpriteSpec{{
			Name:         "main",
			Asset:        f.asset,
			Artboard:     f.artboard,
			Animation:    splitList(f.animation),
			StateMachine: splitList(f.stateMachine),
			AutoPlay:     true,
			Interactive:  f.interactive,
		}}
		cfg = c
	}

	if f.wasm != "" {
		cfg.WASMPath = f.wasm
	}
	if f.headless {
		cfg.Headless = true
	}
	if f.debug {
		for i := range cfg.Sprites {
			cfg.Sprites[i].Debug = true
		}
	}
	return cfg, cfg.Validate()
}

func splitList(s string) config.StringList {
	var out config.StringList
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// demoSpec decodes the bundled demo so the in-memory runtime can stand in
// for files it cannot parse.
func demoSpec(ctx context.Context) (*rivetest.FileSpec, error) {
	b, err := assets.Load(ctx, assets.FromRef(demoAsset))
	if err != nil {
		return nil, err
	}
	var spec rivetest.FileSpec
	if err := json.Unmarshal(b, &spec); err != nil {
		return nil, err
	}
	return &spec, nil
}
