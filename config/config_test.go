package config

import (
	"image/color"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/qvajs/ebiten-rive/rive"
)

func TestParse(t *testing.T) {
	src := `
window:
  title: demo
  width: 640
  background: "#10203080"
wasm_path: file:///opt/rive.wasm
sprites:
  - name: car
    asset: https://cdn.rive.app/animations/vehicles.riv
    animation: car
    auto_play: true
    fit: cover
    alignment: bottomRight
    max_width: 320
  - asset: assets/demo.riv
    state_machine: [Button, Overlay]
    interactive: true
    script: scripts/button.tengo
    x: 100
    y: 50
`
	cfg, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if cfg.Window.Title != "demo" || cfg.Window.Width != 640 || cfg.Window.Height != DefaultHeight {
		t.Fatalf("unexpected window %+v", cfg.Window)
	}
	if cfg.Window.Background.Color != (color.NRGBA{R: 0x10, G: 0x20, B: 0x30, A: 0x80}) {
		t.Fatalf("unexpected background %v", cfg.Window.Background.Color)
	}
	if cfg.WASMPath != "file:///opt/rive.wasm" {
		t.Fatalf("wasm path = %q", cfg.WASMPath)
	}
	if len(cfg.Sprites) != 2 {
		t.Fatalf("expected 2 sprites, got %d", len(cfg.Sprites))
	}

	car := cfg.Sprites[0]
	if !reflect.DeepEqual([]string(car.Animation), []string{"car"}) || car.StateMachine != nil {
		t.Fatalf("scalar animation not decoded: %+v", car)
	}
	if rive.Fit(car.Fit) != rive.FitCover || rive.Alignment(car.Alignment) != rive.AlignBottomRight {
		t.Fatalf("fit/alignment = %v/%v", rive.Fit(car.Fit), rive.Alignment(car.Alignment))
	}
	if !car.AutoPlay || car.MaxWidth != 320 {
		t.Fatalf("unexpected car spec %+v", car)
	}

	button := cfg.Sprites[1]
	if button.Name != "sprite-1" {
		t.Fatalf("default name = %q", button.Name)
	}
	if !reflect.DeepEqual([]string(button.StateMachine), []string{"Button", "Overlay"}) {
		t.Fatalf("state machines = %v", button.StateMachine)
	}
	if rive.Fit(button.Fit) != rive.FitContain || rive.Alignment(button.Alignment) != rive.AlignCenter {
		t.Fatalf("defaults should be contain/center")
	}
	if !button.Interactive || button.X != 100 || button.Y != 50 {
		t.Fatalf("unexpected button spec %+v", button)
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"bad_fit", "sprites:\n  - asset: a.riv\n    fit: stretch\n", "unknown fit"},
		{"bad_alignment", "sprites:\n  - asset: a.riv\n    alignment: middle\n", "unknown alignment"},
		{"missing_asset", "sprites:\n  - name: x\n", "asset is required"},
		{"duplicate_name", "sprites:\n  - {name: a, asset: a.riv}\n  - {name: a, asset: b.riv}\n", "duplicate name"},
		{"negative_size", "sprites:\n  - {asset: a.riv, max_width: -1}\n", "negative max size"},
		{"bad_color", "window:\n  background: \"#12\"\n", "invalid color"},
		{"bad_list", "sprites:\n  - asset: a.riv\n    animation: {a: b}\n", "expected string or list"},
		{"bad_yaml", "sprites: [", "unmarshal"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Parse([]byte(c.src))
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), c.want) {
				t.Fatalf("expected %q in %v", c.want, err)
			}
		})
	}
}

func TestNamedColor(t *testing.T) {
	cfg, err := Parse([]byte("window:\n  background: CornflowerBlue\n"))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if cfg.Window.Background.Color != (color.RGBA{R: 0x64, G: 0x95, B: 0xed, A: 0xff}) {
		t.Fatalf("unexpected color %v", cfg.Window.Background.Color)
	}
}

func TestLoadResolvesRelativePaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "player.yaml")
	if err := os.WriteFile(path, []byte("sprites:\n  - asset: anim/hero.riv\n    script: hero.tengo\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.Mkdir(filepath.Join(dir, "anim"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got := cfg.Resolve(cfg.Sprites[0].Asset); got != filepath.Join(dir, "anim", "hero.riv") {
		t.Fatalf("resolve = %q", got)
	}
	if got := cfg.Resolve("https://cdn.test/a.riv"); got != "https://cdn.test/a.riv" {
		t.Fatalf("urls should be unchanged, got %q", got)
	}
	if got := cfg.Resolve("/abs/a.riv"); got != "/abs/a.riv" {
		t.Fatalf("absolute paths should be unchanged, got %q", got)
	}

	dirs := cfg.WatchDirs()
	want := []string{dir, filepath.Join(dir, "anim")}
	if !reflect.DeepEqual(dirs, want) {
		t.Fatalf("watch dirs = %v, want %v", dirs, want)
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestIsWatchedFile(t *testing.T) {
	cases := map[string]bool{
		"a.riv":          true,
		"b.YAML":         true,
		"c.yml":          true,
		"d.tengo":        true,
		"e.png":          false,
		"f":              false,
		"dir/g.riv.swp":  false,
		"dir/h.riv~":     false,
		"/tmp/x/config":  false,
		"/tmp/x/ok.riv":  true,
		"/tmp/x/s.Tengo": true,
	}
	for p, want := range cases {
		if got := IsWatchedFile(p); got != want {
			t.Fatalf("IsWatchedFile(%q) = %v, want %v", p, got, want)
		}
	}
	if !IsScriptFile("a.tengo") || IsScriptFile("a.riv") {
		t.Fatalf("IsScriptFile misclassified")
	}
	if !IsConfigFile("a.yml") || IsConfigFile("a.tengo") {
		t.Fatalf("IsConfigFile misclassified")
	}
}

func TestWatcher(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir, dir)
	if err != nil {
		t.Fatalf("watcher: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	target := filepath.Join(dir, "hero.riv")
	if err := os.WriteFile(target, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case got := <-w.Events:
		if got != target {
			t.Fatalf("expected %s, got %s", target, got)
		}
	case err := <-w.Errors:
		t.Fatalf("watch error: %v", err)
	case <-time.After(3 * time.Second):
		t.Fatalf("no event for %s", target)
	}

	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second close should be a no-op: %v", err)
	}
	for range w.Events {
	}
}

func TestNewWatcherMissingDir(t *testing.T) {
	if _, err := NewWatcher(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatalf("expected error for missing directory")
	}
}
