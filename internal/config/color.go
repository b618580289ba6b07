package config

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"

	"matrix-rain/internal/rain"
)

// colorNames maps the color names accepted in the config file to hex.
var colorNames = map[string]string{
	"black":  "#000000",
	"white":  "#ffffff",
	"gray":   "#808080",
	"grey":   "#808080",
	"red":    "#ff0000",
	"green":  "#00ff00",
	"blue":   "#0000ff",
	"cyan":   "#00ffff",
	"matrix": "#00ff41",
	"amber":  "#ffb000",
}

// Color is an sRGB color written as #rrggbb, #rgb or a name.
type Color rain.RGB

// ParseColor resolves a name or hex string.
func ParseColor(s string) (Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if hex, ok := colorNames[s]; ok {
		s = hex
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, fmt.Errorf("%w: color %q", ErrInvalid, s)
	}
	r, g, b := c.RGB255()
	return Color{R: r, G: g, B: b}, nil
}

// RGB returns the color for the rain packages.
func (c Color) RGB() rain.RGB { return rain.RGB(c) }

func (c Color) String() string {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}.Hex()
}

func (c *Color) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseColor(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*c = parsed
	return nil
}

func (c Color) MarshalYAML() (any, error) {
	return c.String(), nil
}

// Set implements flag.Value.
func (c *Color) Set(s string) error {
	parsed, err := ParseColor(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
