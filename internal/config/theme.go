package config

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"matrix-rain/internal/rain"
)

type theme struct {
	factors  Range[float64]
	fallback Color
}

// Themes seed the color factors and the solid fallback used when no
// wallpaper is available. wallpaper keeps the image colors close to the
// source; phosphor and amber mimic monochrome CRTs on the solid fallback.
var themes = map[string]theme{
	"wallpaper": {Range[float64]{0.75, 2.75}, Color{0, 128, 43}},
	"phosphor":  {Range[float64]{0.15, 2.0}, Color{40, 160, 70}},
	"amber":     {Range[float64]{0.2, 2.0}, Color{128, 85, 0}},
}

// Themes lists the preset names.
func Themes() []string {
	return slices.Sorted(maps.Keys(themes))
}

// SetTheme applies a preset by name.
func (c *Config) SetTheme(name string) error {
	t, ok := themes[strings.ToLower(name)]
	if !ok {
		return fmt.Errorf("%w: unknown theme %q (have %s)", ErrInvalid, name, strings.Join(Themes(), ", "))
	}
	c.Theme = strings.ToLower(name)
	c.applyTheme(t)
	return nil
}

func (c *Config) applyTheme(t theme) {
	c.Factors = t.factors
	c.Wallpaper.Fallback = t.fallback
}

// Terminal adapts the settings for a character grid: every cell is one
// terminal column and full-width katakana is swapped for the half-width
// forms.
func (c Config) Terminal() Config {
	c.CellSize = 1
	c.PartialRow = false
	if strings.EqualFold(c.Alphabet, "katakana") {
		c.Alphabet = "halfwidth"
	}
	return c
}

var alphabets = map[string]func() []rune{
	"katakana":  rain.Katakana,
	"halfwidth": rain.HalfwidthKatakana,
	"binary":    func() []rune { return []rune("01") },
	"digits":    func() []rune { return []rune("0123456789") },
	"latin":     func() []rune { return []rune("ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz") },
}

// ResolveAlphabet returns a named glyph set, or the runes of name itself
// when it is not one of the known sets.
func ResolveAlphabet(name string) []rune {
	if f, ok := alphabets[strings.ToLower(name)]; ok {
		return f()
	}
	return []rune(name)
}
