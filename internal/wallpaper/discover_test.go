package wallpaper

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDiscoverKDE(t *testing.T) {
	home := t.TempDir()
	cfg := filepath.Join(home, ".config")
	if err := os.MkdirAll(cfg, 0o755); err != nil {
		t.Fatal(err)
	}
	content := "[Containments][1][Wallpaper][org.kde.image][General]\n" +
		"Image=file:///home/neo/Pictures/rabbit.jpg\n" +
		"Image=file:///home/neo/Pictures/other.jpg\n"
	if err := os.WriteFile(filepath.Join(cfg, "plasma-org.kde.plasma.desktop-appletsrc"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	d := desktop{session: "plasma", home: home}
	got, err := d.wallpaper()
	if err != nil {
		t.Fatalf("wallpaper: %v", err)
	}
	if got != "/home/neo/Pictures/rabbit.jpg" {
		t.Errorf("unexpected path %q", got)
	}
}

func TestDiscoverGNOME(t *testing.T) {
	tests := []struct {
		name    string
		out     string
		err     error
		want    string
		wantErr bool
	}{
		{"quoted uri", "'file:///usr/share/backgrounds/gnome/adwaita-l.webp'\n", nil, "/usr/share/backgrounds/gnome/adwaita-l.webp", false},
		{"plain path", "/tmp/wall.png", nil, "/tmp/wall.png", false},
		{"empty", "''\n", nil, "", true},
		{"command failed", "", errors.New("exit status 1"), "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := desktop{
				current:   "ubuntu:GNOME",
				gsettings: func() (string, error) { return tt.out, tt.err },
			}
			got, err := d.wallpaper()
			if (err != nil) != tt.wantErr {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestDiscoverUnsupported(t *testing.T) {
	d := desktop{session: "i3"}
	if _, err := d.wallpaper(); !errors.Is(err, ErrUnsupportedDesktop) {
		t.Errorf("expected ErrUnsupportedDesktop, got %v", err)
	}
}
