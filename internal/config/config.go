// Package config loads the YAML settings shared by every frontend.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"matrix-rain/internal/rain"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Range is an inclusive pair of bounds.
type Range[T any] struct {
	Min T `yaml:"min"`
	Max T `yaml:"max"`
}

// ColorBounds limits the channel values cells may take.
type ColorBounds struct {
	Min  int `yaml:"min"`
	Max  int `yaml:"max"`
	Step int `yaml:"step"` // per-frame decay
}

// Wallpaper selects the image colors are sampled from. Path "auto" asks
// the desktop for its current wallpaper.
type Wallpaper struct {
	Path     string `yaml:"path"`
	Fallback Color  `yaml:"fallback"`
	Watch    bool   `yaml:"watch"`
}

// Server holds the SSH frontend settings.
type Server struct {
	Addr        string `yaml:"addr"`
	HostKey     string `yaml:"host_key"`
	MaxSessions int    `yaml:"max_sessions"`
}

// Config is the full settings file. Every key is optional.
type Config struct {
	Theme       string               `yaml:"theme"`
	FPS         int                  `yaml:"fps"`
	CellSize    int                  `yaml:"cell_size"`
	PartialRow  bool                 `yaml:"partial_row"`
	Delay       Range[time.Duration] `yaml:"delay"`
	Factors     Range[float64]       `yaml:"factors"`
	Color       ColorBounds          `yaml:"color"`
	Alphabet    string               `yaml:"alphabet"`
	Trails      Range[int]           `yaml:"trails"`
	ResetPolicy string               `yaml:"reset_policy"`
	Background  Color                `yaml:"background"`
	Wallpaper   Wallpaper            `yaml:"wallpaper"`
	Server      Server               `yaml:"server"`
}

// Defaults returns the classic settings: 60 FPS, 8 unit cells, delays up
// to 384ms and katakana glyphs over black.
func Defaults() Config {
	p := rain.DefaultParams()
	c := Config{
		Theme:       "wallpaper",
		FPS:         60,
		CellSize:    p.CellSize,
		Delay:       Range[time.Duration]{p.MinDelay, p.MaxDelay},
		Color:       ColorBounds{Min: int(p.MinColor), Max: int(p.MaxColor), Step: int(p.DeltaColor)},
		Alphabet:    "katakana",
		Trails:      Range[int]{p.MinTrails, p.MaxTrails},
		ResetPolicy: p.Policy.String(),
		Wallpaper:   Wallpaper{Watch: true},
		Server:      Server{Addr: ":2222", HostKey: "host_key", MaxSessions: 32},
	}
	c.applyTheme(themes["wallpaper"])
	return c
}

// LoadFromFile reads a YAML config. The theme key is applied first so the
// rest of the file can override what it sets. An empty path returns the
// defaults.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()
	if path == "" {
		return cfg, nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.decode(content); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) decode(content []byte) error {
	var head struct {
		Theme string `yaml:"theme"`
	}
	if err := yaml.Unmarshal(content, &head); err != nil {
		return err
	}
	if head.Theme != "" {
		if err := c.SetTheme(head.Theme); err != nil {
			return err
		}
	}

	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate reports the first setting that cannot be used.
func (c Config) Validate() error {
	switch {
	case c.FPS < 1 || c.FPS > 240:
		return fmt.Errorf("%w: fps %d outside 1..240", ErrInvalid, c.FPS)
	case c.Color.Min < 0 || c.Color.Max > 255 || c.Color.Min > c.Color.Max:
		return fmt.Errorf("%w: color range %d..%d", ErrInvalid, c.Color.Min, c.Color.Max)
	case c.Color.Step < 0 || c.Color.Step > 255:
		return fmt.Errorf("%w: color step %d", ErrInvalid, c.Color.Step)
	case c.Server.MaxSessions < 0:
		return fmt.Errorf("%w: max_sessions %d", ErrInvalid, c.Server.MaxSessions)
	}
	p, err := c.Params()
	if err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// Params converts the animation settings for the rain grid.
func (c Config) Params() (rain.Params, error) {
	policy, err := rain.ParseResetPolicy(c.ResetPolicy)
	if err != nil {
		return rain.Params{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return rain.Params{
		CellSize:   c.CellSize,
		MinDelay:   c.Delay.Min,
		MaxDelay:   c.Delay.Max,
		MinFactor:  c.Factors.Min,
		MaxFactor:  c.Factors.Max,
		MinColor:   uint8(c.Color.Min),
		MaxColor:   uint8(c.Color.Max),
		DeltaColor: uint8(c.Color.Step),
		Alphabet:   ResolveAlphabet(c.Alphabet),
		MinTrails:  c.Trails.Min,
		MaxTrails:  c.Trails.Max,
		Policy:     policy,
	}, nil
}

// FrameInterval returns the time between frames at the configured FPS.
func (c Config) FrameInterval() time.Duration {
	if c.FPS < 1 {
		return time.Second
	}
	return time.Second / time.Duration(c.FPS)
}
