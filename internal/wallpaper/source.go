package wallpaper

import (
	"context"
	"fmt"
	"image"
	"log"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"matrix-rain/internal/rain"
)

// reloadSettle is how long Watch waits for a burst of file events to stop
// before re-reading the wallpaper.
const reloadSettle = 150 * time.Millisecond

type snapshot struct {
	img     image.Image // nil means solid fallback
	version uint64
}

// Source holds the current wallpaper and hands out samplers scaled to a
// surface. It is safe for concurrent use.
type Source struct {
	path     string
	fallback rain.RGB
	current  atomic.Pointer[snapshot]
}

// AutoPath asks NewSource to use the current desktop wallpaper.
const AutoPath = "auto"

// NewSource loads path, or uses a solid fallback color when path is empty
// or cannot be decoded. AutoPath is resolved with Discover.
func NewSource(path string, fallback rain.RGB) *Source {
	if path == AutoPath {
		found, err := Discover()
		if err != nil {
			log.Printf("Warning: %v", err)
		}
		path = found
	}
	s := &Source{path: path, fallback: fallback}
	s.current.Store(&snapshot{})
	if path == "" {
		log.Printf("No wallpaper configured, using solid %v", fallback)
		return s
	}
	if err := s.Reload(); err != nil {
		log.Printf("Warning: %v; using solid %v", err, fallback)
	}
	return s
}

// Path returns the wallpaper file path, empty for a solid source.
func (s *Source) Path() string { return s.path }

// Version increases every time a new image is loaded.
func (s *Source) Version() uint64 { return s.current.Load().version }

// Sampler returns the wallpaper scaled to w x h.
func (s *Source) Sampler(w, h int) *Image {
	snap := s.current.Load()
	if snap.img == nil {
		return Fill(w, h, s.fallback)
	}
	return Scale(snap.img, w, h)
}

// Reload re-reads the wallpaper file. On failure the previous image stays
// in place.
func (s *Source) Reload() error {
	if s.path == "" {
		return nil
	}
	img, err := Load(s.path)
	if err != nil {
		return fmt.Errorf("load wallpaper: %w", err)
	}
	prev := s.current.Load()
	s.current.Store(&snapshot{img: img, version: prev.version + 1})
	b := img.Bounds()
	log.Printf("Loaded wallpaper %s (%dx%d)", s.path, b.Dx(), b.Dy())
	return nil
}

// Watch reloads the wallpaper whenever its file is written or replaced. It
// blocks until ctx is cancelled. The parent directory is watched so that
// editors that save by rename are picked up too.
func (s *Source) Watch(ctx context.Context) error {
	if s.path == "" {
		<-ctx.Done()
		return nil
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch wallpaper: %w", err)
	}
	defer w.Close()

	target := filepath.Clean(s.path)
	if err := w.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}

	settle := time.NewTimer(reloadSettle)
	settle.Stop()
	defer settle.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			settle.Reset(reloadSettle)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Printf("Wallpaper watch error: %v", err)
		case <-settle.C:
			if err := s.Reload(); err != nil {
				log.Printf("Warning: %v", err)
			}
		}
	}
}
