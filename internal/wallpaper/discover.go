package wallpaper

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrUnsupportedDesktop is returned by Discover when the running desktop
// has no known way of reporting its wallpaper.
var ErrUnsupportedDesktop = errors.New("unsupported desktop")

// Discover returns the path of the current desktop wallpaper.
func Discover() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("discover wallpaper: %w", err)
	}
	d := desktop{
		session: os.Getenv("DESKTOP_SESSION"),
		current: os.Getenv("XDG_CURRENT_DESKTOP"),
		home:    home,
		gsettings: func() (string, error) {
			out, err := exec.Command("gsettings", "get", "org.gnome.desktop.background", "picture-uri").Output()
			return string(out), err
		},
	}
	return d.wallpaper()
}

type desktop struct {
	session   string
	current   string
	home      string
	gsettings func() (string, error)
}

func (d desktop) is(name string) bool {
	name = strings.ToLower(name)
	return strings.Contains(strings.ToLower(d.session), name) ||
		strings.Contains(strings.ToLower(d.current), name)
}

func (d desktop) wallpaper() (string, error) {
	switch {
	case d.is("plasma") || d.is("kde"):
		return d.kde()
	case d.is("gnome") || d.is("ubuntu"):
		return d.gnome()
	}
	return "", fmt.Errorf("%w: session %q", ErrUnsupportedDesktop, d.session)
}

func (d desktop) kde() (string, error) {
	path := filepath.Join(d.home, ".config", "plasma-org.kde.plasma.desktop-appletsrc")
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("kde wallpaper: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if v, ok := strings.CutPrefix(sc.Text(), "Image="); ok {
			return cleanURI(v), nil
		}
	}
	if err := sc.Err(); err != nil {
		return "", fmt.Errorf("kde wallpaper: %w", err)
	}
	return "", fmt.Errorf("kde wallpaper: no Image= entry in %s", path)
}

func (d desktop) gnome() (string, error) {
	out, err := d.gsettings()
	if err != nil {
		return "", fmt.Errorf("gnome wallpaper: %w", err)
	}
	p := cleanURI(out)
	if p == "" {
		return "", errors.New("gnome wallpaper: empty picture-uri")
	}
	return p, nil
}

func cleanURI(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `'"`)
	return strings.TrimPrefix(s, "file://")
}
