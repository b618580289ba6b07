package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"

	"matrix-rain/internal/config"
	"matrix-rain/internal/loop"
	"matrix-rain/internal/termui"
	"matrix-rain/internal/wallpaper"
)

func main() {
	log.SetFlags(log.Ltime | log.Lshortfile)

	flags := config.NewFlags(flag.CommandLine)
	logPath := flag.String("log", "", "write the log to this file (the screen is busy)")
	flag.Parse()

	// stderr shares the screen, so logs are discarded unless -log is set.
	log.SetOutput(io.Discard)
	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open log: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		log.SetOutput(f)
	}

	if err := run(flags); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(flags *config.Flags) error {
	cfg, err := flags.Load()
	if err != nil {
		return err
	}
	cfg = cfg.Terminal()
	params, err := cfg.Params()
	if err != nil {
		return err
	}
	log.Printf("Config loaded: theme %s, %d fps, alphabet %s", cfg.Theme, cfg.FPS, cfg.Alphabet)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src := wallpaper.NewSource(cfg.Wallpaper.Path, cfg.Wallpaper.Fallback.RGB())
	if cfg.Wallpaper.Watch && src.Path() != "" {
		go watchWallpaper(ctx, src)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("open terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init terminal: %w", err)
	}
	defer screen.Fini()

	builder := loop.GridBuilder{Params: params, Wallpaper: src}
	app, err := termui.NewApp(screen, builder, cfg.Background.RGB(), cfg.FrameInterval())
	if err != nil {
		return err
	}
	return app.Run(ctx)
}

// watchWallpaper follows the wallpaper file until ctx ends and logs why
// the watch stopped early.
func watchWallpaper(ctx context.Context, src *wallpaper.Source) {
	if err := src.Watch(ctx); err != nil {
		log.Printf("Wallpaper watch stopped: %v", err)
	}
}
