package config

import (
	"flag"
)

// Flags binds the common command-line overrides. Values given on the
// command line win over the config file.
type Flags struct {
	Path string

	fs  *flag.FlagSet
	set Config
}

// NewFlags registers -config and the override flags on fs.
func NewFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{fs: fs}
	fs.StringVar(&f.Path, "config", "", "YAML settings file")
	fs.StringVar(&f.set.Theme, "theme", "", "color theme: wallpaper, phosphor or amber")
	fs.IntVar(&f.set.FPS, "fps", 0, "frames per second")
	fs.IntVar(&f.set.CellSize, "cell-size", 0, "glyph box size in pixels")
	fs.BoolVar(&f.set.PartialRow, "partial-row", false, "draw a trailing partial row")
	fs.StringVar(&f.set.Alphabet, "alphabet", "", "glyph set name or literal glyphs")
	fs.StringVar(&f.set.ResetPolicy, "reset-policy", "", "trail timer reset: on-wrap, every-fire or none")
	fs.StringVar(&f.set.Wallpaper.Path, "wallpaper", "", "wallpaper image, or auto for the desktop one")
	fs.Var(&f.set.Background, "background", "background color")
	return f
}

// Load reads the config file and applies the flags that were set.
func (f *Flags) Load() (Config, error) {
	cfg, err := LoadFromFile(f.Path)
	if err != nil {
		return Config{}, err
	}

	set := map[string]bool{}
	f.fs.Visit(func(fl *flag.Flag) { set[fl.Name] = true })

	if set["theme"] {
		if err := cfg.SetTheme(f.set.Theme); err != nil {
			return Config{}, err
		}
	}
	if set["fps"] {
		cfg.FPS = f.set.FPS
	}
	if set["cell-size"] {
		cfg.CellSize = f.set.CellSize
	}
	if set["partial-row"] {
		cfg.PartialRow = f.set.PartialRow
	}
	if set["alphabet"] {
		cfg.Alphabet = f.set.Alphabet
	}
	if set["reset-policy"] {
		cfg.ResetPolicy = f.set.ResetPolicy
	}
	if set["wallpaper"] {
		cfg.Wallpaper.Path = f.set.Wallpaper.Path
	}
	if set["background"] {
		cfg.Background = f.set.Background
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
