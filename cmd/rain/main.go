package main

import (
	"context"
	"flag"
	"log"

	"matrix-rain/internal/config"
	"matrix-rain/internal/loop"
	"matrix-rain/internal/wallpaper"
	"matrix-rain/internal/window"
)

func main() {
	log.SetFlags(log.Ltime | log.Lshortfile)

	flags := config.NewFlags(flag.CommandLine)
	fontPath := flag.String("font", "", "TrueType font for the glyphs (default: bundled M+ 1p)")
	windowed := flag.Bool("windowed", false, "start in a window instead of fullscreen")
	flag.Parse()

	cfg, err := flags.Load()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}
	params, err := cfg.Params()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}
	log.Printf("Config loaded: theme %s, %d fps, alphabet %s", cfg.Theme, cfg.FPS, cfg.Alphabet)

	face, err := window.LoadFace(*fontPath, float64(params.CellSize))
	if err != nil {
		log.Fatalf("Font error: %v", err)
	}

	src := wallpaper.NewSource(cfg.Wallpaper.Path, cfg.Wallpaper.Fallback.RGB())
	if cfg.Wallpaper.Watch && src.Path() != "" {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() {
			if err := src.Watch(ctx); err != nil {
				log.Printf("Wallpaper watch stopped: %v", err)
			}
		}()
	}

	game := window.New(window.Options{
		Builder:    loop.GridBuilder{Params: params, PartialRow: cfg.PartialRow, Wallpaper: src},
		Background: cfg.Background.RGB(),
		Face:       face,
		Fullscreen: !*windowed,
	})
	if err := window.Run(game, cfg.FPS); err != nil {
		log.Fatalf("Window error: %v", err)
	}
}
