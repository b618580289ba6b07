package server

import (
	"bytes"
	"context"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	gossh "golang.org/x/crypto/ssh"

	"matrix-rain/internal/config"
	"matrix-rain/internal/rain"
	"matrix-rain/internal/wallpaper"
)

func TestParseInput(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want action
	}{
		{"q", "q", actionQuit},
		{"Q", "Q", actionQuit},
		{"ctrl-c", "\x03", actionQuit},
		{"lone escape", "\x1b", actionQuit},
		{"typing then q", "abcq", actionQuit},
		{"arrow key", "\x1b[A", actionNone},
		{"modified arrow", "\x1b[1;5C", actionNone},
		{"function key", "\x1bOP", actionNone},
		{"arrow then q", "\x1b[Bq", actionQuit},
		{"alt-x", "\x1bx", actionNone},
		{"plain text", "hello", actionNone},
		{"empty", "", actionNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseInput([]byte(tt.in)); got != tt.want {
				t.Errorf("parseInput(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestEnsureHostKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys", "host_key")
	if err := EnsureHostKey(path); err != nil {
		t.Fatal(err)
	}
	first := readFile(t, path)
	if _, err := gossh.ParsePrivateKey(first); err != nil {
		t.Fatalf("generated key does not parse: %v", err)
	}
	if err := EnsureHostKey(path); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, readFile(t, path)) {
		t.Error("existing key was overwritten")
	}
}

func TestAdmit(t *testing.T) {
	s := &SSHServer{maxSessions: 2}
	if !s.admit() || !s.admit() {
		t.Fatal("expected two sessions admitted")
	}
	if s.admit() {
		t.Error("third session admitted past the limit")
	}
	if s.Active() != 2 {
		t.Errorf("expected 2 active, got %d", s.Active())
	}

	unlimited := &SSHServer{}
	for range 100 {
		if !unlimited.admit() {
			t.Fatal("zero max_sessions should not limit")
		}
	}
}

func startServer(t *testing.T, maxSessions int) string {
	t.Helper()
	cfg := config.Defaults()
	cfg.FPS = 120
	cfg.Server.HostKey = filepath.Join(t.TempDir(), "host_key")
	cfg.Server.MaxSessions = maxSessions
	if err := EnsureHostKey(cfg.Server.HostKey); err != nil {
		t.Fatal(err)
	}

	srv, err := NewSSHServer(cfg, wallpaper.NewSource("", rain.RGB{G: 120}))
	if err != nil {
		t.Fatalf("NewSSHServer: %v", err)
	}
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	go srv.Serve(l)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	})
	return l.Addr().String()
}

type client struct {
	conn  *gossh.Client
	sess  *gossh.Session
	stdin io.WriteCloser

	mu  sync.Mutex
	out bytes.Buffer
}

func dial(t *testing.T, addr string, pty bool) *client {
	t.Helper()
	conn, err := gossh.Dial("tcp", addr, &gossh.ClientConfig{
		User:            "neo",
		HostKeyCallback: gossh.InsecureIgnoreHostKey(),
		Timeout:         5 * time.Second,
	})
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	sess, err := conn.NewSession()
	if err != nil {
		t.Fatal(err)
	}
	if pty {
		if err := sess.RequestPty("xterm-256color", 12, 40, gossh.TerminalModes{}); err != nil {
			t.Fatalf("pty: %v", err)
		}
	}
	c := &client{conn: conn, sess: sess}
	if c.stdin, err = sess.StdinPipe(); err != nil {
		t.Fatal(err)
	}
	stdout, err := sess.StdoutPipe()
	if err != nil {
		t.Fatal(err)
	}
	go func() {
		buf := make([]byte, 4096)
		for {
			n, err := stdout.Read(buf)
			c.mu.Lock()
			c.out.Write(buf[:n])
			c.mu.Unlock()
			if err != nil {
				return
			}
		}
	}()
	if err := sess.Shell(); err != nil {
		t.Fatalf("shell: %v", err)
	}
	return c
}

func (c *client) waitFor(t *testing.T, substr string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		c.mu.Lock()
		found := strings.Contains(c.out.String(), substr)
		c.mu.Unlock()
		if found {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	t.Fatalf("timed out waiting for %q in %q", substr, c.out.String())
}

func (c *client) waitExit(t *testing.T) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		c.sess.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("session did not end")
	}
}

func TestSessionRainsAndQuits(t *testing.T) {
	addr := startServer(t, 0)
	c := dial(t, addr, true)

	c.waitFor(t, "\x1b[?1049h")
	c.waitFor(t, "\x1b[0;38;2;")

	if _, err := c.stdin.Write([]byte("q")); err != nil {
		t.Fatal(err)
	}
	c.waitExit(t)
	c.waitFor(t, "\x1b[?1049l")
}

func TestSessionResize(t *testing.T) {
	addr := startServer(t, 0)
	c := dial(t, addr, true)
	c.waitFor(t, "\x1b[0;38;2;")

	if err := c.sess.WindowChange(30, 80); err != nil {
		t.Fatal(err)
	}
	// Rows past the initial 12 only appear once the grid is rebuilt.
	c.waitFor(t, "\x1b[25;")

	c.stdin.Write([]byte{3})
	c.waitExit(t)
}

func TestSessionRequiresPTY(t *testing.T) {
	addr := startServer(t, 0)
	c := dial(t, addr, false)
	c.waitFor(t, "PTY required")
	c.waitExit(t)
}

func TestSessionLimit(t *testing.T) {
	addr := startServer(t, 1)
	first := dial(t, addr, true)
	first.waitFor(t, "\x1b[0;38;2;")

	second := dial(t, addr, true)
	second.waitFor(t, "Server full")
	second.waitExit(t)

	first.stdin.Write([]byte("\x1b"))
	first.waitExit(t)
}

func readFile(t *testing.T, path string) []byte {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return b
}
