package main

import (
	"flag"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"
	"time"

	"matrix-rain/internal/config"
	"matrix-rain/internal/loop"
	"matrix-rain/internal/rain"
	"matrix-rain/internal/render"
	"matrix-rain/internal/wallpaper"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "validate":
		if len(args) == 0 {
			fmt.Fprintln(os.Stderr, "Usage: raintools validate <config.yaml>...")
			os.Exit(1)
		}
		os.Exit(runValidate(os.Stdout, args))
	case "viz", "stats":
		opts, err := parseSimFlags(cmd, args)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		run := runViz
		if cmd == "stats" {
			run = runStats
		}
		if err := run(os.Stdout, opts); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: raintools <command> [flags] <config>

Commands:
  validate <config>...   Check config files
  viz      <config>      Simulate the rain and print the last frame
  stats    <config>      Simulate the rain and show the brightness spread

Flags for viz and stats:
  -size WxH    terminal size in cells (default 80x24)
  -frames N    frames to simulate (default 300)
  -seed N      random seed (default 1)

An empty config path ("") uses the built-in defaults.`)
}

// --- validate ---

func runValidate(out io.Writer, paths []string) int {
	errors := 0
	for _, path := range paths {
		fmt.Fprintf(out, "Validating %q...\n", path)
		cfg, err := config.LoadFromFile(path)
		if err != nil {
			fmt.Fprintf(out, "  ERROR: %v\n", err)
			errors++
			continue
		}
		fmt.Fprintf(out, "  OK (theme %s, %d fps, trails %d..%d, policy %s)\n",
			cfg.Theme, cfg.FPS, cfg.Trails.Min, cfg.Trails.Max, cfg.ResetPolicy)
	}

	if errors > 0 {
		fmt.Fprintf(out, "\n%d error(s) found\n", errors)
		return 1
	}
	fmt.Fprintf(out, "\nAll %d configs valid\n", len(paths))
	return 0
}

// --- simulation ---

type simOptions struct {
	path   string
	width  int
	height int
	frames int
	seed   uint64
}

func parseSimFlags(cmd string, args []string) (simOptions, error) {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	size := fs.String("size", "80x24", "terminal size as WxH")
	frames := fs.Int("frames", 300, "frames to simulate")
	seed := fs.Uint64("seed", 1, "random seed")
	if err := fs.Parse(args); err != nil {
		return simOptions{}, err
	}
	if fs.NArg() != 1 {
		return simOptions{}, fmt.Errorf("expected one config path, got %d", fs.NArg())
	}
	if *frames < 1 {
		return simOptions{}, fmt.Errorf("invalid frame count %d", *frames)
	}
	w, h, err := parseSize(*size)
	if err != nil {
		return simOptions{}, err
	}
	return simOptions{path: fs.Arg(0), width: w, height: h, frames: *frames, seed: *seed}, nil
}

func parseSize(s string) (int, int, error) {
	parts := strings.SplitN(s, "x", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid size %q (expected WxH)", s)
	}
	w, err := strconv.Atoi(parts[0])
	if err != nil || w < 1 {
		return 0, 0, fmt.Errorf("invalid width %q", parts[0])
	}
	h, err := strconv.Atoi(parts[1])
	if err != nil || h < 1 {
		return 0, 0, fmt.Errorf("invalid height %q", parts[1])
	}
	return w, h, nil
}

// simulate runs the terminal rendition of the config headless and returns
// the renderer holding the last frame.
func simulate(opts simOptions) (*loop.Animation, *render.Engine, config.Config, error) {
	cfg, err := config.LoadFromFile(opts.path)
	if err != nil {
		return nil, nil, config.Config{}, err
	}
	cfg = cfg.Terminal()
	params, err := cfg.Params()
	if err != nil {
		return nil, nil, config.Config{}, err
	}

	engine := render.NewEngine(io.Discard, opts.width, opts.height)
	builder := loop.GridBuilder{
		Params:    params,
		Wallpaper: wallpaper.NewSource(cfg.Wallpaper.Path, cfg.Wallpaper.Fallback.RGB()),
		Rand:      rand.New(rand.NewPCG(opts.seed, opts.seed^0x9e3779b97f4a7c15)),
	}
	anim, err := loop.NewAnimation(engine, engine, builder, cfg.Background.RGB(), opts.width, opts.height)
	if err != nil {
		return nil, nil, config.Config{}, err
	}

	interval := cfg.FrameInterval()
	for range opts.frames {
		if err := anim.Step(interval); err != nil {
			return nil, nil, config.Config{}, err
		}
	}
	return anim, engine, cfg, nil
}

// --- viz ---

func runViz(out io.Writer, opts simOptions) error {
	_, engine, cfg, err := simulate(opts)
	if err != nil {
		return err
	}
	elapsed := time.Duration(opts.frames) * cfg.FrameInterval()
	fmt.Fprintf(out, "%dx%d after %d frames (%s)\n", opts.width, opts.height, opts.frames, elapsed)
	_, err = io.WriteString(out, engine.Snapshot())
	return err
}

// --- stats ---

// brightnessBuckets splits cell brightness into 8 bands of 32.
const brightnessBuckets = 8

func runStats(out io.Writer, opts simOptions) error {
	anim, _, _, err := simulate(opts)
	if err != nil {
		return err
	}
	grid := anim.Grid()
	st := grid.Stats()
	total := grid.Width() * grid.Length()

	fmt.Fprintf(out, "%dx%d = %d cells after %d frames\n\n", grid.Width(), grid.Length(), total, opts.frames)

	var counts [brightnessBuckets]int
	for x := range grid.Width() {
		col := grid.Column(x)
		for y := range col.Len() {
			counts[brightness(col.Cell(y).Color)*brightnessBuckets/256]++
		}
	}

	for i, n := range counts {
		pct := float64(n) / float64(total) * 100
		bar := strings.Repeat("█", int(pct/2))
		lo := i * 256 / brightnessBuckets
		fmt.Fprintf(out, "  %3d-%-3d %5d (%5.1f%%) %s\n", lo, lo+256/brightnessBuckets-1, n, pct, bar)
	}

	fmt.Fprintf(out, "\nTrails:  %d in %d columns\n", st.Trails, st.Columns)
	fmt.Fprintf(out, "Seeded:  %d/%d (%.1f%%)\n", st.Seeded, total, float64(st.Seeded)/float64(total)*100)
	fmt.Fprintf(out, "Floored: %d/%d (%.1f%%)\n", st.Floored, total, float64(st.Floored)/float64(total)*100)
	return nil
}

func brightness(c rain.RGB) int {
	return int(max(c.R, c.G, c.B))
}
