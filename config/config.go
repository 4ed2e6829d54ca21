// Package config loads the player configuration from YAML and watches the
// files it references for changes.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
	"gopkg.in/yaml.v3"

	"github.com/qvajs/ebiten-rive/rive"
)

const (
	DefaultTitle  = "riveplayer"
	DefaultWidth  = 800
	DefaultHeight = 600
)

// Config is the player configuration file.
type Config struct {
	Window WindowSpec `yaml:"window"`
	// WASMPath overrides where the runtime binary is fetched from.
	WASMPath string `yaml:"wasm_path"`
	// Headless runs sprites on the in-memory runtime.
	Headless bool         `yaml:"headless"`
	Sprites  []SpriteSpec `yaml:"sprites"`

	// Dir is the directory relative paths resolve against.
	Dir string `yaml:"-"`
}

type WindowSpec struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Background Color  `yaml:"background"`
}

// SpriteSpec describes one sprite added to the scene.
type SpriteSpec struct {
	Name         string     `yaml:"name"`
	Asset        string     `yaml:"asset"`
	Artboard     string     `yaml:"artboard"`
	Animation    StringList `yaml:"animation"`
	StateMachine StringList `yaml:"state_machine"`
	AutoPlay     bool       `yaml:"auto_play"`
	Interactive  bool       `yaml:"interactive"`
	Debug        bool       `yaml:"debug"`
	Fit          Fit        `yaml:"fit"`
	Alignment    Alignment  `yaml:"alignment"`
	MaxWidth     float64    `yaml:"max_width"`
	MaxHeight    float64    `yaml:"max_height"`
	X            float64    `yaml:"x"`
	Y            float64    `yaml:"y"`
	Script       string     `yaml:"script"`
}

// Load reads and validates the file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: load %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	cfg.Dir = filepath.Dir(path)
	return cfg, nil
}

// Parse decodes data, fills defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Window.Title == "" {
		c.Window.Title = DefaultTitle
	}
	if c.Window.Width <= 0 {
		c.Window.Width = DefaultWidth
	}
	if c.Window.Height <= 0 {
		c.Window.Height = DefaultHeight
	}
	for i := range c.Sprites {
		if c.Sprites[i].Name == "" {
			c.Sprites[i].Name = fmt.Sprintf("sprite-%d", i)
		}
	}
}

// Validate reports every sprite without an asset and duplicate names.
func (c *Config) Validate() error {
	var errs []error
	seen := map[string]bool{}
	for i, s := range c.Sprites {
		if strings.TrimSpace(s.Asset) == "" {
			errs = append(errs, fmt.Errorf("config: sprites[%d] (%s): asset is required", i, s.Name))
		}
		if seen[s.Name] {
			errs = append(errs, fmt.Errorf("config: sprites[%d]: duplicate name %q", i, s.Name))
		}
		seen[s.Name] = true
		if s.MaxWidth < 0 || s.MaxHeight < 0 {
			errs = append(errs, fmt.Errorf("config: sprites[%d] (%s): negative max size", i, s.Name))
		}
	}
	return errors.Join(errs...)
}

// Resolve makes a disk path relative to the config directory. URLs and
// absolute paths are returned unchanged.
func (c *Config) Resolve(p string) string {
	if p == "" || strings.Contains(p, "://") || filepath.IsAbs(p) || c.Dir == "" {
		return p
	}
	return filepath.Join(c.Dir, filepath.FromSlash(p))
}

// WatchDirs returns the directories holding the config file, the sprite
// assets on disk and their scripts.
func (c *Config) WatchDirs() []string {
	var dirs []string
	seen := map[string]bool{}
	add := func(p string) {
		if p == "" || strings.Contains(p, "://") {
			return
		}
		d := filepath.Dir(p)
		if _, err := os.Stat(d); err != nil || seen[d] {
			return
		}
		seen[d] = true
		dirs = append(dirs, d)
	}
	if c.Dir != "" {
		add(filepath.Join(c.Dir, "config.yaml"))
	}
	for _, s := range c.Sprites {
		add(c.Resolve(s.Asset))
		add(c.Resolve(s.Script))
	}
	return dirs
}

// StringList accepts a scalar or a sequence.
type StringList []string

func (l *StringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Value == "" {
			*l = nil
			return nil
		}
		*l = StringList{value.Value}
		return nil
	case yaml.SequenceNode:
		var out []string
		if err := value.Decode(&out); err != nil {
			return err
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("line %d: expected string or list of strings", value.Line)
	}
}

type Fit rive.Fit

func (f *Fit) UnmarshalYAML(value *yaml.Node) error {
	v, err := rive.ParseFit(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*f = Fit(v)
	return nil
}

type Alignment rive.Alignment

func (a *Alignment) UnmarshalYAML(value *yaml.Node) error {
	v, err := rive.ParseAlignment(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*a = Alignment(v)
	return nil
}

// Color accepts "#rrggbb", "#rrggbbaa" or an SVG colour name.
type Color struct {
	color.Color
}

func (c *Color) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: color must be a string", value.Line)
	}
	if named, ok := colornames.Map[strings.ToLower(value.Value)]; ok {
		c.Color = named
		return nil
	}

	s := strings.TrimPrefix(value.Value, "#")
	if len(s) != 6 && len(s) != 8 {
		return fmt.Errorf("line %d: invalid color format: %s", value.Line, value.Value)
	}
	parse := func(start int) (uint8, error) {
		v, err := strconv.ParseUint(s[start:start+2], 16, 8)
		return uint8(v), err
	}
	var rgba [4]uint8
	rgba[3] = 255
	for i := 0; i < len(s)/2; i++ {
		v, err := parse(i * 2)
		if err != nil {
			return fmt.Errorf("line %d: invalid color %s: %w", value.Line, value.Value, err)
		}
		rgba[i] = v
	}
	c.Color = color.NRGBA{R: rgba[0], G: rgba[1], B: rgba[2], A: rgba[3]}
	return nil
}
